package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitlearn/quizlab-backend/internal/model"
)

// MemberResult combines member data with their session outcome for one quiz.
type MemberResult struct {
	MemberID     int                 `json:"member_id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Status       model.SessionStatus `json:"status"`
	Score        *int                `json:"score"`
	ScorePercent *float64            `json:"score_percent"`
	Passed       *bool               `json:"passed"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at"`
}

// SessionRepository handles quiz session and answer data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// GetByQuizAndMember retrieves a session for a specific quiz-member combination.
func (r *SessionRepository) GetByQuizAndMember(ctx context.Context, quizID uuid.UUID, memberID int) (*model.QuizSession, error) {
	s := &model.QuizSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, quiz_id, member_id, status, started_at, finished_at,
		        score, score_percent, passed, time_spent_seconds
		 FROM quiz_sessions
		 WHERE quiz_id = $1 AND member_id = $2`, quizID, memberID,
	).Scan(&s.ID, &s.QuizID, &s.MemberID, &s.Status, &s.StartedAt, &s.FinishedAt,
		&s.Score, &s.ScorePercent, &s.Passed, &s.TimeSpentSeconds)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a new session (member starts the quiz). Returns
// pgx.ErrNoRows when a session for this quiz-member pair already exists.
func (r *SessionRepository) Create(ctx context.Context, s *model.QuizSession) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO quiz_sessions (quiz_id, member_id, status, started_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (quiz_id, member_id) DO NOTHING
		 RETURNING id`,
		s.QuizID, s.MemberID, model.SessionStatusInProgress, s.StartedAt,
	).Scan(&s.ID)
}

// Complete marks a session submitted with the submission's outcome.
func (r *SessionRepository) Complete(ctx context.Context, sub model.Submission) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quiz_sessions
		 SET status = $1, score = $2, score_percent = $3, passed = $4,
		     time_spent_seconds = $5, finished_at = $6
		 WHERE quiz_id = $7 AND member_id = $8`,
		model.SessionStatusSubmitted, sub.Score, sub.ScorePercent, sub.Passed,
		sub.TimeSpentSeconds, sub.SubmittedAt, sub.QuizID, sub.MemberID)
	return err
}

// ListByMember retrieves all sessions for a given member, newest first.
func (r *SessionRepository) ListByMember(ctx context.Context, memberID int) ([]model.QuizSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, member_id, status, started_at, finished_at,
		        score, score_percent, passed, time_spent_seconds
		 FROM quiz_sessions
		 WHERE member_id = $1
		 ORDER BY started_at DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.QuizSession
	for rows.Next() {
		var s model.QuizSession
		if err := rows.Scan(&s.ID, &s.QuizID, &s.MemberID, &s.Status, &s.StartedAt, &s.FinishedAt,
			&s.Score, &s.ScorePercent, &s.Passed, &s.TimeSpentSeconds); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListByQuiz retrieves member results for a quiz with pagination. Authors use
// this to review how their quiz performs.
func (r *SessionRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID, limit, offset int) ([]MemberResult, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quiz_sessions WHERE quiz_id = $1`, quizID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.name, m.email,
		        qs.status, qs.score, qs.score_percent, qs.passed, qs.started_at, qs.finished_at
		 FROM quiz_sessions qs
		 JOIN members m ON qs.member_id = m.id
		 WHERE qs.quiz_id = $1
		 ORDER BY qs.started_at DESC
		 LIMIT $2 OFFSET $3`, quizID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []MemberResult
	for rows.Next() {
		var mr MemberResult
		if err := rows.Scan(&mr.MemberID, &mr.Name, &mr.Email,
			&mr.Status, &mr.Score, &mr.ScorePercent, &mr.Passed, &mr.StartedAt, &mr.FinishedAt); err != nil {
			return nil, 0, err
		}
		results = append(results, mr)
	}
	return results, total, rows.Err()
}

// UpsertAnswer creates or updates one answer row without locking.
func (r *SessionRepository) UpsertAnswer(ctx context.Context, quizID uuid.UUID, memberID int, a model.Answer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO answers (quiz_id, member_id, question_id, selected_index, answer_text, is_correct)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (quiz_id, member_id, question_id) DO UPDATE
		 SET selected_index = EXCLUDED.selected_index,
		     answer_text = EXCLUDED.answer_text,
		     is_correct = EXCLUDED.is_correct,
		     updated_at = NOW()`,
		quizID, memberID, a.QuestionID, a.SelectedIndex, a.Text, a.IsCorrect)
	return err
}

// ListAnswers retrieves a member's answers for a quiz, in question order.
func (r *SessionRepository) ListAnswers(ctx context.Context, quizID uuid.UUID, memberID int) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.question_id, a.selected_index, a.answer_text, a.is_correct
		 FROM answers a
		 JOIN questions q ON a.question_id = q.id
		 WHERE a.quiz_id = $1 AND a.member_id = $2
		 ORDER BY q.order_num`, quizID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.QuestionID, &a.SelectedIndex, &a.Text, &a.IsCorrect); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// Restart resets a submitted session for a new attempt. The previous
// outcome stays recorded in the submissions pushed to the catalog and the
// persistence queue; the row simply tracks the newest attempt.
func (r *SessionRepository) Restart(ctx context.Context, quizID uuid.UUID, memberID int, startedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quiz_sessions
		 SET status = $1, started_at = $2, finished_at = NULL,
		     score = NULL, score_percent = NULL, passed = NULL, time_spent_seconds = NULL
		 WHERE quiz_id = $3 AND member_id = $4`,
		model.SessionStatusInProgress, startedAt, quizID, memberID)
	return err
}

// DeleteAnswers clears a member's answer rows for a quiz ahead of a retake.
func (r *SessionRepository) DeleteAnswers(ctx context.Context, quizID uuid.UUID, memberID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM answers WHERE quiz_id = $1 AND member_id = $2`,
		quizID, memberID)
	return err
}
