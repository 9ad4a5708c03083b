package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fitlearn/quizlab-backend/internal/catalog"
	"github.com/fitlearn/quizlab-backend/internal/config"
	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/fitlearn/quizlab-backend/internal/quiz"
	"github.com/fitlearn/quizlab-backend/internal/repository"
	"github.com/fitlearn/quizlab-backend/internal/response"
)

// Domain errors.
var (
	ErrNotQuizAuthor    = errors.New("not the author of this quiz")
	ErrNoQuestions      = errors.New("quiz has no questions, cannot publish")
	ErrQuizNotDraft     = errors.New("quiz status is not DRAFT")
	ErrQuizNotPublished = errors.New("quiz status is not PUBLISHED")
	ErrQuestionNotFound = errors.New("question not found in this quiz")
)

// QuizValidationError carries per-question field problems that block a publish.
type QuizValidationError struct {
	Problems map[uuid.UUID]map[string]string
}

func (e *QuizValidationError) Error() string {
	return fmt.Sprintf("%d question(s) are invalid", len(e.Problems))
}

// QuizService handles quiz authoring, publishing and cache warming. Every
// structural edit goes through the builder, so total points are always
// recomputed before a draft is persisted.
type QuizService struct {
	quizRepo *repository.QuizRepository
	catalog  *catalog.Catalog
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	quizRepo *repository.QuizRepository,
	cat *catalog.Catalog,
	rdb *redis.Client,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		quizRepo: quizRepo,
		catalog:  cat,
		rdb:      rdb,
		log:      log.With().Str("component", "quiz_service").Logger(),
	}
}

// GetForAuthor retrieves a quiz with its questions, enforcing ownership.
func (s *QuizService) GetForAuthor(ctx context.Context, quizID uuid.UUID, authorID int) (*model.Quiz, error) {
	q, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q.AuthorID != authorID {
		return nil, ErrNotQuizAuthor
	}
	return q, nil
}

// ListByAuthor retrieves an author's quizzes with pagination and search.
func (s *QuizService) ListByAuthor(ctx context.Context, authorID, page, perPage int, search string) ([]model.Quiz, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	limit := perPage
	offset := (page - 1) * perPage

	quizzes, total, err := s.quizRepo.ListByAuthorPaginated(ctx, authorID, search, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}

	return quizzes, response.NewPagination(page, perPage, total), nil
}

// Create starts a new draft quiz from metadata. The draft has no questions
// yet; it becomes savable and publishable as the author builds it out.
func (s *QuizService) Create(ctx context.Context, authorID int, req model.CreateQuizRequest) (*model.Quiz, error) {
	b := quiz.NewBuilder(authorID)
	b.SetTitle(req.Title)
	b.SetDescription(req.Description)
	b.SetTimeLimit(req.TimeLimitMinutes)
	b.SetPassingScore(req.PassingScorePercent)

	draft := b.Quiz()
	if err := s.quizRepo.Create(ctx, &draft); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return &draft, nil
}

// UpdateMetadata edits a draft's title, description, time limit or passing score.
func (s *QuizService) UpdateMetadata(ctx context.Context, quizID uuid.UUID, authorID int, req model.UpdateQuizRequest) (*model.Quiz, error) {
	return s.edit(ctx, quizID, authorID, func(b *quiz.Builder) error {
		if req.Title != nil {
			b.SetTitle(*req.Title)
		}
		if req.Description != nil {
			b.SetDescription(*req.Description)
		}
		if req.TimeLimitMinutes != nil {
			b.SetTimeLimit(req.TimeLimitMinutes)
		}
		if req.PassingScorePercent != nil {
			b.SetPassingScore(*req.PassingScorePercent)
		}
		return nil
	})
}

// AddQuestion appends a default question of the given type to a draft.
func (s *QuizService) AddQuestion(ctx context.Context, quizID uuid.UUID, authorID int, qType model.QuestionType) (*model.Quiz, error) {
	return s.edit(ctx, quizID, authorID, func(b *quiz.Builder) error {
		b.AddQuestion(qType)
		return nil
	})
}

// UpdateQuestion merges a partial edit into one question.
func (s *QuizService) UpdateQuestion(ctx context.Context, quizID uuid.UUID, authorID int, questionID uuid.UUID, req model.UpdateQuestionRequest) (*model.Quiz, error) {
	return s.edit(ctx, quizID, authorID, func(b *quiz.Builder) error {
		if !b.UpdateQuestion(questionID, req) {
			return ErrQuestionNotFound
		}
		return nil
	})
}

// DeleteQuestion removes one question from a draft.
func (s *QuizService) DeleteQuestion(ctx context.Context, quizID uuid.UUID, authorID int, questionID uuid.UUID) (*model.Quiz, error) {
	return s.edit(ctx, quizID, authorID, func(b *quiz.Builder) error {
		b.DeleteQuestion(questionID)
		return nil
	})
}

// AddOption appends an option to a multiple-choice question.
func (s *QuizService) AddOption(ctx context.Context, quizID uuid.UUID, authorID int, questionID uuid.UUID) (*model.Quiz, error) {
	return s.edit(ctx, quizID, authorID, func(b *quiz.Builder) error {
		return b.AddOption(questionID)
	})
}

// UpdateOption sets one option's text.
func (s *QuizService) UpdateOption(ctx context.Context, quizID uuid.UUID, authorID int, questionID uuid.UUID, index int, value string) (*model.Quiz, error) {
	return s.edit(ctx, quizID, authorID, func(b *quiz.Builder) error {
		return b.UpdateOption(questionID, index, value)
	})
}

// DeleteOption removes one option from a multiple-choice question.
func (s *QuizService) DeleteOption(ctx context.Context, quizID uuid.UUID, authorID int, questionID uuid.UUID, index int) (*model.Quiz, error) {
	return s.edit(ctx, quizID, authorID, func(b *quiz.Builder) error {
		return b.DeleteOption(questionID, index)
	})
}

// MoveQuestion reorders a question one position up or down.
func (s *QuizService) MoveQuestion(ctx context.Context, quizID uuid.UUID, authorID int, questionID uuid.UUID, dir quiz.MoveDirection) (*model.Quiz, error) {
	return s.edit(ctx, quizID, authorID, func(b *quiz.Builder) error {
		b.MoveQuestion(questionID, dir)
		return nil
	})
}

// edit loads a draft into a builder, applies op, and persists the result.
func (s *QuizService) edit(ctx context.Context, quizID uuid.UUID, authorID int, op func(*quiz.Builder) error) (*model.Quiz, error) {
	existing, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != authorID {
		return nil, ErrNotQuizAuthor
	}
	if existing.Status != model.QuizStatusDraft {
		return nil, ErrQuizNotDraft
	}

	b := quiz.EditBuilder(*existing)
	if err := op(b); err != nil {
		return nil, err
	}

	updated := b.Quiz()
	updated.UpdatedAt = time.Now()
	if err := s.quizRepo.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}
	return &updated, nil
}

// Validate returns per-question problems for a draft, keyed by question id.
// A nil map means the draft would publish cleanly.
func (s *QuizService) Validate(ctx context.Context, quizID uuid.UUID, authorID int) (map[uuid.UUID]map[string]string, error) {
	existing, err := s.GetForAuthor(ctx, quizID, authorID)
	if err != nil {
		return nil, err
	}
	return quiz.EditBuilder(*existing).Validate(), nil
}

// Publish moves a draft to PUBLISHED: the quiz must be savable and every
// question valid. The member payload and answer key are cached in Redis and
// the quiz enters the catalog, after which it is immutable.
func (s *QuizService) Publish(ctx context.Context, quizID uuid.UUID, authorID int) error {
	existing, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return fmt.Errorf("get quiz: %w", err)
	}
	if existing.AuthorID != authorID {
		return ErrNotQuizAuthor
	}
	if existing.Status != model.QuizStatusDraft {
		return ErrQuizNotDraft
	}
	if len(existing.Questions) == 0 {
		return ErrNoQuestions
	}
	if !model.IsQuizSavable(existing) {
		return quiz.ErrNotSavable
	}
	if problems := quiz.EditBuilder(*existing).Validate(); problems != nil {
		return &QuizValidationError{Problems: problems}
	}

	if err := s.WarmQuizCache(ctx, existing); err != nil {
		return err
	}

	if err := s.quizRepo.UpdateStatus(ctx, quizID, model.QuizStatusPublished); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	existing.Status = model.QuizStatusPublished
	s.catalog.Put(*existing)

	s.log.Info().Str("quiz_id", quizID.String()).Msg("Quiz published")
	return nil
}

// Archive retires a published quiz. It leaves the catalog and its Redis
// payload is dropped; recorded submissions stay queryable.
func (s *QuizService) Archive(ctx context.Context, quizID uuid.UUID, authorID int) error {
	existing, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return fmt.Errorf("get quiz: %w", err)
	}
	if existing.AuthorID != authorID {
		return ErrNotQuizAuthor
	}
	if existing.Status != model.QuizStatusPublished {
		return ErrQuizNotPublished
	}

	if err := s.quizRepo.UpdateStatus(ctx, quizID, model.QuizStatusArchived); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	s.catalog.Remove(quizID)

	id := quizID.String()
	pipe := s.rdb.Pipeline()
	pipe.Del(ctx, config.CacheKey.QuizPayloadKey(id))
	pipe.Del(ctx, config.CacheKey.QuizAnswerKey(id))
	pipe.Del(ctx, config.CacheKey.QuizTimeLimitKey(id))
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", id).Msg("Failed to drop cached quiz")
	}

	s.log.Info().Str("quiz_id", id).Msg("Quiz archived")
	return nil
}

// Delete removes a draft quiz. Published quizzes are archived, never deleted.
func (s *QuizService) Delete(ctx context.Context, quizID uuid.UUID, authorID int) error {
	existing, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return err
	}
	if existing.AuthorID != authorID {
		return ErrNotQuizAuthor
	}
	if existing.Status != model.QuizStatusDraft {
		return ErrQuizNotDraft
	}
	return s.quizRepo.Delete(ctx, quizID)
}

// WarmQuizCache loads a quiz's member payload, answer key and time limit
// into Redis. Core cache-warming logic used by Publish and PrewarmAllCaches.
func (s *QuizService) WarmQuizCache(ctx context.Context, q *model.Quiz) error {
	if len(q.Questions) == 0 {
		return ErrNoQuestions
	}

	payload := q.MemberPayload()
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Answer key map for RAM grading: question id -> correct index.
	// Open-ended questions have no entry; they are never auto-graded.
	answerKey := make(map[string]interface{}, len(q.Questions))
	for _, question := range q.Questions {
		if question.Type.AutoGraded() && question.CorrectIndex != nil {
			answerKey[question.ID.String()] = *question.CorrectIndex
		}
	}

	id := q.ID.String()
	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.QuizPayloadKey(id), payloadJSON, 0)
	pipe.Del(ctx, config.CacheKey.QuizAnswerKey(id))
	if len(answerKey) > 0 {
		pipe.HSet(ctx, config.CacheKey.QuizAnswerKey(id), answerKey)
	}
	timeLimit := 0
	if q.TimeLimitMinutes != nil {
		timeLimit = *q.TimeLimitMinutes
	}
	pipe.Set(ctx, config.CacheKey.QuizTimeLimitKey(id), timeLimit, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("quiz_id", id).
		Int("questions", len(q.Questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all published quizzes into Redis and the in-memory
// catalog on application startup, so the first member request never pays a
// cold-cache penalty.
func (s *QuizService) PrewarmAllCaches(ctx context.Context) error {
	quizzes, err := s.quizRepo.ListPublished(ctx)
	if err != nil {
		return fmt.Errorf("list published quizzes: %w", err)
	}

	if len(quizzes) == 0 {
		s.log.Info().Msg("No published quizzes to prewarm")
		return nil
	}

	s.log.Info().Int("count", len(quizzes)).Msg("Prewarming published quizzes...")

	warmed := 0
	for i := range quizzes {
		if err := s.WarmQuizCache(ctx, &quizzes[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("quiz_id", quizzes[i].ID.String()).
				Msg("Failed to warm quiz, skipping")
			continue
		}
		s.catalog.Put(quizzes[i])
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(quizzes)).
		Msg("Prewarming complete")
	return nil
}

// GetQuizPayload retrieves the cached member payload from Redis.
func (s *QuizService) GetQuizPayload(ctx context.Context, quizID uuid.UUID) (*model.QuizPayload, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.QuizPayloadKey(quizID.String())).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQuizNotPublished
		}
		return nil, fmt.Errorf("get payload: %w", err)
	}

	var payload model.QuizPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &payload, nil
}
