package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitlearn/quizlab-backend/internal/catalog"
	"github.com/fitlearn/quizlab-backend/internal/model"
)

// QuizRepository handles quiz and question data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

// GetByID retrieves a quiz with its questions, ordered by order_num.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, author_id, total_points, time_limit_minutes,
		        passing_score_percent, status, created_at, updated_at
		 FROM quizzes WHERE id = $1`, id,
	).Scan(&q.ID, &q.Title, &q.Description, &q.AuthorID, &q.TotalPoints, &q.TimeLimitMinutes,
		&q.PassingScorePercent, &q.Status, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}

	questions, err := r.listQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Questions = questions
	return q, nil
}

// LoadQuiz implements catalog.QuizLoader over GetByID.
func (r *QuizRepository) LoadQuiz(ctx context.Context, id uuid.UUID) (model.Quiz, error) {
	q, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Quiz{}, catalog.ErrQuizNotFound
		}
		return model.Quiz{}, err
	}
	return *q, nil
}

// ListByAuthorPaginated retrieves an author's quizzes with pagination and an
// optional case-insensitive search against title and description. Question
// rows are not loaded.
func (r *QuizRepository) ListByAuthorPaginated(ctx context.Context, authorID int, search string, limit, offset int) ([]model.Quiz, int, error) {
	countQuery := `SELECT COUNT(*) FROM quizzes WHERE author_id = $1`
	countArgs := []interface{}{authorID}
	if search != "" {
		countQuery += ` AND (title ILIKE $2 OR description ILIKE $2)`
		countArgs = append(countArgs, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, title, description, author_id, total_points, time_limit_minutes,
	                  passing_score_percent, status, created_at, updated_at
	           FROM quizzes WHERE author_id = $1`
	args := []interface{}{authorID}
	argIdx := 2

	if search != "" {
		query += ` AND (title ILIKE $2 OR description ILIKE $2)`
		args = append(args, "%"+search+"%")
		argIdx++
	}

	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.AuthorID, &q.TotalPoints, &q.TimeLimitMinutes,
			&q.PassingScorePercent, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, 0, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, total, rows.Err()
}

// ListPublished returns all PUBLISHED quizzes with their questions loaded.
// Used for cache and catalog prewarming on application startup.
func (r *QuizRepository) ListPublished(ctx context.Context) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, author_id, total_points, time_limit_minutes,
		        passing_score_percent, status, created_at, updated_at
		 FROM quizzes WHERE status = $1
		 ORDER BY created_at`, model.QuizStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.AuthorID, &q.TotalPoints, &q.TimeLimitMinutes,
			&q.PassingScorePercent, &q.Status, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range quizzes {
		questions, err := r.listQuestions(ctx, quizzes[i].ID)
		if err != nil {
			return nil, err
		}
		quizzes[i].Questions = questions
	}
	return quizzes, nil
}

// Create inserts a quiz and its questions in one transaction.
func (r *QuizRepository) Create(ctx context.Context, q *model.Quiz) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO quizzes (id, title, description, author_id, total_points, time_limit_minutes,
		                      passing_score_percent, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		q.ID, q.Title, q.Description, q.AuthorID, q.TotalPoints, q.TimeLimitMinutes,
		q.PassingScorePercent, q.Status, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertQuestions(ctx, tx, q.ID, q.Questions); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Save replaces a quiz's metadata and question set in one transaction. The
// builder hands over the whole draft, so questions are rewritten rather than
// diffed.
func (r *QuizRepository) Save(ctx context.Context, q *model.Quiz) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE quizzes
		 SET title = $1, description = $2, total_points = $3, time_limit_minutes = $4,
		     passing_score_percent = $5, updated_at = $6
		 WHERE id = $7`,
		q.Title, q.Description, q.TotalPoints, q.TimeLimitMinutes,
		q.PassingScorePercent, q.UpdatedAt, q.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, q.ID); err != nil {
		return err
	}
	if err := insertQuestions(ctx, tx, q.ID, q.Questions); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateStatus moves a quiz through its lifecycle.
func (r *QuizRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.QuizStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	return err
}

// Delete removes a quiz; questions, sessions and answers cascade.
func (r *QuizRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}

func (r *QuizRepository) listQuestions(ctx context.Context, quizID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question_type, question_text, points, options, correct_index,
		        explanation, order_num
		 FROM questions WHERE quiz_id = $1
		 ORDER BY order_num`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Type, &q.Text, &q.Points, &q.Options,
			&q.CorrectIndex, &q.Explanation, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func insertQuestions(ctx context.Context, tx pgx.Tx, quizID uuid.UUID, questions []model.Question) error {
	for _, q := range questions {
		_, err := tx.Exec(ctx,
			`INSERT INTO questions (id, quiz_id, question_type, question_text, points, options,
			                        correct_index, explanation, order_num)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			q.ID, quizID, q.Type, q.Text, q.Points, q.Options, q.CorrectIndex, q.Explanation, q.OrderNum)
		if err != nil {
			return err
		}
	}
	return nil
}
