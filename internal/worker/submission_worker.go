package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fitlearn/quizlab-backend/internal/config"
	"github.com/fitlearn/quizlab-backend/internal/model"
)

const (
	SubmissionBatchSize    = 50
	SubmissionBatchTimeout = 2 * time.Second
	SubmissionPollTimeout  = 1 * time.Second
)

// SubmissionWorker consumes graded submissions and persists their outcome:
// the session row is completed and every answer's correctness is recorded.
type SubmissionWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewSubmissionWorker creates a new SubmissionWorker.
func NewSubmissionWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *SubmissionWorker {
	return &SubmissionWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "submission_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *SubmissionWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SubmissionWorker started")

	batch := make([]*model.Submission, 0, SubmissionBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= SubmissionBatchSize || time.Since(lastFlush) >= SubmissionBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, SubmissionPollTimeout, config.WorkerKey.PersistSubmissionsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var sub model.Submission
			if err := json.Unmarshal([]byte(item[1]), &sub); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &sub)
		}
	}
}

// ----------------------------------------------------------------
// Batch update wrapper
// ----------------------------------------------------------------

func (w *SubmissionWorker) flushSafe(ctx context.Context, batch []*model.Submission) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkCompleteSessions(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk session update failed, using fallback")

		for _, sub := range batch {
			if err := w.persistSingle(ctx, sub); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(sub)
				w.rdb.RPush(ctx, config.WorkerKey.PersistSubmissionsQueue, raw)
			}
		}
		return
	}

	// Grades ride along with the graded answers.
	for _, sub := range batch {
		if err := w.persistAnswerGrades(ctx, sub); err != nil {
			w.log.Error().Err(err).
				Str("quiz_id", sub.QuizID.String()).
				Int("member_id", sub.MemberID).
				Msg("Failed to persist answer grades")
		}
	}

	// After successful updates → autosave buffers in Redis are obsolete.
	w.bulkClearBufferedAnswers(ctx, batch)
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPDATE using UNNEST + alias
// ----------------------------------------------------------------

func (w *SubmissionWorker) bulkCompleteSessions(ctx context.Context, batch []*model.Submission) error {
	n := len(batch)

	quizIDs := make([]uuid.UUID, 0, n)
	members := make([]int, 0, n)
	scores := make([]int, 0, n)
	percents := make([]float64, 0, n)
	passeds := make([]bool, 0, n)
	timeSpents := make([]int, 0, n)
	finishedAts := make([]time.Time, 0, n)

	for _, sub := range batch {
		quizIDs = append(quizIDs, sub.QuizID)
		members = append(members, sub.MemberID)
		scores = append(scores, sub.Score)
		percents = append(percents, sub.ScorePercent)
		passeds = append(passeds, sub.Passed)
		timeSpents = append(timeSpents, sub.TimeSpentSeconds)
		finishedAts = append(finishedAts, sub.SubmittedAt)
	}

	query := `
		UPDATE quiz_sessions AS s
		SET status = 'SUBMITTED',
		    score = t.score,
		    score_percent = t.score_percent,
		    passed = t.passed,
		    time_spent_seconds = t.time_spent_seconds,
		    finished_at = t.finished_at
		FROM (
			SELECT
				u.quiz_id,
				u.member_id,
				u.score,
				u.score_percent,
				u.passed,
				u.time_spent_seconds,
				u.finished_at
			FROM UNNEST(
				$1::uuid[],
				$2::int[],
				$3::int[],
				$4::float8[],
				$5::bool[],
				$6::int[],
				$7::timestamptz[]
			) AS u (quiz_id, member_id, score, score_percent, passed, time_spent_seconds, finished_at)
		) AS t
		WHERE s.quiz_id = t.quiz_id
		  AND s.member_id = t.member_id
	`

	_, err := w.pool.Exec(ctx, query, quizIDs, members, scores, percents, passeds, timeSpents, finishedAts)
	return err
}

// persistAnswerGrades UPSERTs the final answer rows with their is_correct
// verdicts, covering answers that never made it through the autosave queue.
func (w *SubmissionWorker) persistAnswerGrades(ctx context.Context, sub *model.Submission) error {
	for _, a := range sub.Answers {
		_, err := w.pool.Exec(ctx,
			`INSERT INTO answers (quiz_id, member_id, question_id, selected_index, answer_text, is_correct)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (quiz_id, member_id, question_id) DO UPDATE
			 SET selected_index = EXCLUDED.selected_index,
			     answer_text = EXCLUDED.answer_text,
			     is_correct = EXCLUDED.is_correct,
			     updated_at = NOW()`,
			sub.QuizID, sub.MemberID, a.QuestionID, a.SelectedIndex, a.Text, a.IsCorrect)
		if err != nil {
			return err
		}
	}
	return nil
}

// ----------------------------------------------------------------
// BULK Redis DEL for clearing buffered answers
// ----------------------------------------------------------------

func (w *SubmissionWorker) bulkClearBufferedAnswers(ctx context.Context, batch []*model.Submission) {
	pipe := w.rdb.Pipeline()

	for _, sub := range batch {
		key := config.CacheKey.MemberAnswersKey(sub.QuizID.String(), sub.MemberID)
		pipe.Del(ctx, key)
	}

	_, _ = pipe.Exec(ctx)
}

// ----------------------------------------------------------------
// FALLBACK single update
// ----------------------------------------------------------------

func (w *SubmissionWorker) persistSingle(ctx context.Context, sub *model.Submission) error {
	_, err := w.pool.Exec(ctx,
		`UPDATE quiz_sessions
		 SET status = 'SUBMITTED',
		     score = $1,
		     score_percent = $2,
		     passed = $3,
		     time_spent_seconds = $4,
		     finished_at = $5
		 WHERE quiz_id = $6 AND member_id = $7`,
		sub.Score, sub.ScorePercent, sub.Passed, sub.TimeSpentSeconds, sub.SubmittedAt,
		sub.QuizID, sub.MemberID,
	)
	if err != nil {
		return err
	}
	return w.persistAnswerGrades(ctx, sub)
}
