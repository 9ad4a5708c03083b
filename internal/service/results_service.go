package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/fitlearn/quizlab-backend/internal/catalog"
	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/fitlearn/quizlab-backend/internal/quiz"
	"github.com/fitlearn/quizlab-backend/internal/repository"
	"github.com/fitlearn/quizlab-backend/internal/response"
)

// ErrNoSubmission is returned when results are requested before a submit.
var ErrNoSubmission = errors.New("no submission recorded for this quiz")

// ResultsService serves per-question reviews and catalog statistics.
type ResultsService struct {
	sessionRepo *repository.SessionRepository
	quizRepo    *repository.QuizRepository
	quizCache   *catalog.QuizCache
	catalog     *catalog.Catalog
	log         zerolog.Logger
}

// NewResultsService creates a new ResultsService.
func NewResultsService(
	sessionRepo *repository.SessionRepository,
	quizRepo *repository.QuizRepository,
	quizCache *catalog.QuizCache,
	cat *catalog.Catalog,
	log zerolog.Logger,
) *ResultsService {
	return &ResultsService{
		sessionRepo: sessionRepo,
		quizRepo:    quizRepo,
		quizCache:   quizCache,
		catalog:     cat,
		log:         log.With().Str("component", "results_service").Logger(),
	}
}

// Review builds a member's per-question review of their latest submission.
// The catalog copy is preferred; after a restart the submission is
// reconstructed from the persisted session row and answers.
func (s *ResultsService) Review(ctx context.Context, quizID uuid.UUID, memberID int) (*quiz.Review, error) {
	q, err := s.quizCache.Get(ctx, quizID)
	if err != nil {
		if errors.Is(err, catalog.ErrQuizNotFound) {
			// Archived quizzes leave the cache but keep their results.
			loaded, dbErr := s.quizRepo.GetByID(ctx, quizID)
			if dbErr != nil {
				return nil, dbErr
			}
			q = *loaded
		} else {
			return nil, err
		}
	}

	sub, err := s.latestSubmission(ctx, quizID, memberID)
	if err != nil {
		return nil, err
	}

	review := quiz.BuildReview(q, *sub)
	return &review, nil
}

// QuizStats returns the member-portal statistics for one quiz: the latest
// submission's outcome and attempt count.
func (s *ResultsService) QuizStats(quizID uuid.UUID) (*catalog.QuizStats, error) {
	stats, ok := s.catalog.StatsFor(quizID)
	if !ok {
		return nil, ErrNoSubmission
	}
	return &stats, nil
}

// Overview returns catalog-wide statistics.
func (s *ResultsService) Overview() catalog.GlobalStats {
	return s.catalog.Overview()
}

// ListQuizResults returns the paginated member results for an author's quiz.
func (s *ResultsService) ListQuizResults(ctx context.Context, quizID uuid.UUID, authorID, page, perPage int) ([]repository.MemberResult, *response.Pagination, error) {
	q, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	if q.AuthorID != authorID {
		return nil, nil, ErrNotQuizAuthor
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	results, total, err := s.sessionRepo.ListByQuiz(ctx, quizID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if results == nil {
		results = []repository.MemberResult{}
	}

	return results, response.NewPagination(page, perPage, int(total)), nil
}

// latestSubmission prefers the in-memory catalog and falls back to the
// persisted session row plus answer rows.
func (s *ResultsService) latestSubmission(ctx context.Context, quizID uuid.UUID, memberID int) (*model.Submission, error) {
	subs := s.catalog.Submissions(quizID)
	for i := len(subs) - 1; i >= 0; i-- {
		if subs[i].MemberID == memberID {
			return &subs[i], nil
		}
	}

	row, err := s.sessionRepo.GetByQuizAndMember(ctx, quizID, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSubmission
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if row.Status != model.SessionStatusSubmitted || row.Score == nil {
		return nil, ErrNoSubmission
	}

	answers, err := s.sessionRepo.ListAnswers(ctx, quizID, memberID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	sub := &model.Submission{
		ID:        row.ID,
		QuizID:    quizID,
		MemberID:  memberID,
		Answers:   answers,
		Score:     *row.Score,
		StartedAt: row.StartedAt,
	}
	if row.ScorePercent != nil {
		sub.ScorePercent = *row.ScorePercent
	}
	if row.Passed != nil {
		sub.Passed = *row.Passed
	}
	if row.FinishedAt != nil {
		sub.SubmittedAt = *row.FinishedAt
	}
	if row.TimeSpentSeconds != nil {
		sub.TimeSpentSeconds = *row.TimeSpentSeconds
	}
	return sub, nil
}
