package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fitlearn/quizlab-backend/internal/catalog"
	"github.com/fitlearn/quizlab-backend/internal/config"
	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/fitlearn/quizlab-backend/internal/quiz"
	"github.com/fitlearn/quizlab-backend/internal/repository"
)

// Session errors.
var (
	ErrQuizNotAvailable  = errors.New("quiz is not available for taking")
	ErrSessionNotStarted = errors.New("no session started for this quiz")
	ErrAlreadySubmitted  = errors.New("quiz already submitted")
)

// LobbyStatus is a quiz's state relative to one member.
type LobbyStatus string

const (
	LobbyStatusAvailable  LobbyStatus = "AVAILABLE"
	LobbyStatusInProgress LobbyStatus = "IN_PROGRESS"
	LobbyStatusCompleted  LobbyStatus = "COMPLETED"
)

// LobbyQuiz is a catalog entry as displayed in the member portal: the quiz
// metadata (never the answers) plus the member's attempt status.
type LobbyQuiz struct {
	ID                  uuid.UUID   `json:"id"`
	Title               string      `json:"title"`
	Description         string      `json:"description"`
	QuestionCount       int         `json:"question_count"`
	TotalPoints         int         `json:"total_points"`
	TimeLimitMinutes    *int        `json:"time_limit_minutes,omitempty"`
	PassingScorePercent int         `json:"passing_score_percent"`
	LobbyStatus         LobbyStatus `json:"lobby_status"`
	ScorePercent        *float64    `json:"score_percent,omitempty"`
	Passed              *bool       `json:"passed,omitempty"`
}

// SessionState is what a member sees when resuming a quiz: saved answers and
// the countdown, whichever store still has them.
type SessionState struct {
	Status           model.SessionStatus     `json:"status"`
	RemainingSeconds int                     `json:"remaining_seconds"`
	CurrentIndex     int                     `json:"current_index"`
	Answers          map[string]model.Answer `json:"answers"`
}

// StartResult is returned when a member starts (or resumes) a quiz.
type StartResult struct {
	Payload *model.QuizPayload `json:"quiz"`
	State   SessionState       `json:"state"`
}

// SessionService runs member quiz sessions. Each started quiz gets a live
// in-process session owning its own countdown; Redis buffers autosaved
// answers and workers persist them to PostgreSQL off the request path.
type SessionService struct {
	sessionRepo *repository.SessionRepository
	quizCache   *catalog.QuizCache
	catalog     *catalog.Catalog
	store       *quiz.SessionStore
	rdb         *redis.Client
	log         zerolog.Logger

	// runCtx bounds session countdown goroutines to the process lifetime.
	runCtx context.Context
}

// NewSessionService creates a new SessionService. runCtx should be the
// process context; cancelling it stops every live countdown.
func NewSessionService(
	runCtx context.Context,
	sessionRepo *repository.SessionRepository,
	quizCache *catalog.QuizCache,
	cat *catalog.Catalog,
	store *quiz.SessionStore,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		quizCache:   quizCache,
		catalog:     cat,
		store:       store,
		rdb:         rdb,
		log:         log.With().Str("component", "session_service").Logger(),
		runCtx:      runCtx,
	}
}

func sessionKey(quizID uuid.UUID, memberID int) string {
	return quizID.String() + ":" + strconv.Itoa(memberID)
}

// GetLobby lists the catalog for one member: published quizzes matching the
// search query, narrowed by the member's own attempt status.
func (s *SessionService) GetLobby(ctx context.Context, memberID int, query string, filter catalog.StatusFilter) ([]LobbyQuiz, error) {
	sessions, err := s.sessionRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessionMap := make(map[uuid.UUID]*model.QuizSession, len(sessions))
	for i := range sessions {
		sessionMap[sessions[i].QuizID] = &sessions[i]
	}

	lobby := []LobbyQuiz{}
	for _, q := range s.catalog.List(query, catalog.FilterAll) {
		entry := LobbyQuiz{
			ID:                  q.ID,
			Title:               q.Title,
			Description:         q.Description,
			QuestionCount:       len(q.Questions),
			TotalPoints:         q.TotalPoints,
			TimeLimitMinutes:    q.TimeLimitMinutes,
			PassingScorePercent: q.PassingScorePercent,
			LobbyStatus:         LobbyStatusAvailable,
		}

		if sess, ok := sessionMap[q.ID]; ok {
			switch sess.Status {
			case model.SessionStatusSubmitted:
				entry.LobbyStatus = LobbyStatusCompleted
				entry.ScorePercent = sess.ScorePercent
				entry.Passed = sess.Passed
			default:
				entry.LobbyStatus = LobbyStatusInProgress
			}
		}

		switch filter {
		case catalog.FilterCompleted:
			if entry.LobbyStatus != LobbyStatusCompleted {
				continue
			}
		case catalog.FilterPending:
			if entry.LobbyStatus == LobbyStatusCompleted {
				continue
			}
		}

		lobby = append(lobby, entry)
	}
	return lobby, nil
}

// StartSession starts a member's attempt, or resumes the in-progress one.
// A submitted session starts over as a fresh attempt.
func (s *SessionService) StartSession(ctx context.Context, quizID uuid.UUID, memberID int) (*StartResult, error) {
	q, err := s.quizCache.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q.Status != model.QuizStatusPublished {
		return nil, ErrQuizNotAvailable
	}

	now := time.Now()
	existing, err := s.sessionRepo.GetByQuizAndMember(ctx, quizID, memberID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing session: %w", err)
	}

	switch {
	case existing == nil:
		row := &model.QuizSession{QuizID: quizID, MemberID: memberID, StartedAt: now}
		if err := s.sessionRepo.Create(ctx, row); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("create session: %w", err)
		}
	case existing.Status == model.SessionStatusSubmitted:
		// Retake: reset the row and clear the previous attempt's buffers.
		if err := s.sessionRepo.Restart(ctx, quizID, memberID, now); err != nil {
			return nil, fmt.Errorf("restart session: %w", err)
		}
		if err := s.sessionRepo.DeleteAnswers(ctx, quizID, memberID); err != nil {
			return nil, fmt.Errorf("clear answers: %w", err)
		}
		s.store.Delete(sessionKey(quizID, memberID))
		s.rdb.Del(ctx, config.CacheKey.MemberAnswersKey(quizID.String(), memberID))
	default:
		// Resuming; keep the original start time for the countdown.
		now = existing.StartedAt
	}

	startKey := config.CacheKey.MemberSessionStartKey(quizID.String(), memberID)
	if err := s.rdb.Set(ctx, startKey, now.Unix(), 0).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to cache session start time")
	}

	live := s.store.GetOrCreate(sessionKey(quizID, memberID), func() *quiz.Session {
		sess := quiz.NewSession(q, memberID,
			quiz.WithStartedAt(now),
			quiz.WithSubmitHandler(s.onSubmit),
		)
		go sess.Run(s.runCtx)
		return sess
	})

	payload := q.MemberPayload()
	return &StartResult{
		Payload: &payload,
		State:   s.liveState(live),
	}, nil
}

// Answer records one answer: the live session captures it, Redis buffers it
// for crash recovery, and the autosave queue carries it to PostgreSQL.
func (s *SessionService) Answer(ctx context.Context, quizID uuid.UUID, memberID int, req model.AnswerRequest) error {
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		return fmt.Errorf("parse question id: %w", err)
	}

	live, ok := s.store.Get(sessionKey(quizID, memberID))
	if !ok {
		return ErrSessionNotStarted
	}
	if live.State() == quiz.StateSubmitted {
		return ErrAlreadySubmitted
	}

	value := quiz.AnswerValue{SelectedIndex: req.SelectedIndex, Text: req.Text}
	live.Answer(questionID, value)

	answer := model.Answer{QuestionID: questionID, SelectedIndex: req.SelectedIndex, Text: req.Text}
	raw, err := json.Marshal(answer)
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}

	answersKey := config.CacheKey.MemberAnswersKey(quizID.String(), memberID)
	if err := s.rdb.HSet(ctx, answersKey, questionID.String(), raw).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to buffer answer in redis")
	}

	queued, err := json.Marshal(answerQueuePayload{
		QuizID:        quizID.String(),
		MemberID:      memberID,
		QuestionID:    questionID.String(),
		SelectedIndex: req.SelectedIndex,
		Text:          req.Text,
	})
	if err != nil {
		return fmt.Errorf("marshal queue payload: %w", err)
	}
	return s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, queued).Err()
}

// Navigate moves the live session's position: "next", "previous", or an
// explicit zero-based index.
func (s *SessionService) Navigate(quizID uuid.UUID, memberID int, action string, index int) error {
	live, ok := s.store.Get(sessionKey(quizID, memberID))
	if !ok {
		return ErrSessionNotStarted
	}
	switch action {
	case "next":
		live.Next()
	case "previous":
		live.Previous()
	default:
		live.GoTo(index)
	}
	return nil
}

// State returns the member's current session view. The live session is the
// source of truth; after a process restart the state is rebuilt from Redis
// with PostgreSQL as the final fallback.
func (s *SessionService) State(ctx context.Context, quizID uuid.UUID, memberID int) (*SessionState, error) {
	if live, ok := s.store.Get(sessionKey(quizID, memberID)); ok {
		state := s.liveState(live)
		return &state, nil
	}
	return s.rebuildState(ctx, quizID, memberID)
}

// Submit finalizes the member's attempt and returns the graded submission.
func (s *SessionService) Submit(ctx context.Context, quizID uuid.UUID, memberID int) (*model.Submission, error) {
	live, ok := s.store.Get(sessionKey(quizID, memberID))
	if !ok {
		// Process restarted mid-attempt: rebuild the session from the
		// persisted answers, then grade it as usual.
		rebuilt, err := s.rebuildLiveSession(ctx, quizID, memberID)
		if err != nil {
			return nil, err
		}
		live = rebuilt
	}

	sub := live.Submit()
	return &sub, nil
}

// LiveSession exposes the in-process session, for the websocket stream.
func (s *SessionService) LiveSession(quizID uuid.UUID, memberID int) (*quiz.Session, bool) {
	return s.store.Get(sessionKey(quizID, memberID))
}

// onSubmit runs exactly once per submission: the outcome is queued for
// asynchronous persistence and recorded in the catalog.
func (s *SessionService) onSubmit(sub model.Submission) {
	ctx := context.Background()

	raw, err := json.Marshal(sub)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal submission")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistSubmissionsQueue, raw).Err(); err != nil {
		s.log.Error().Err(err).
			Str("quiz_id", sub.QuizID.String()).
			Int("member_id", sub.MemberID).
			Msg("Failed to queue submission")
	}

	s.catalog.AddSubmission(sub)

	s.log.Info().
		Str("quiz_id", sub.QuizID.String()).
		Int("member_id", sub.MemberID).
		Int("score", sub.Score).
		Bool("passed", sub.Passed).
		Msg("Submission recorded")
}

type answerQueuePayload struct {
	QuizID        string `json:"quiz_id"`
	MemberID      int    `json:"member_id"`
	QuestionID    string `json:"question_id"`
	SelectedIndex *int   `json:"selected_index,omitempty"`
	Text          string `json:"text,omitempty"`
}

func (s *SessionService) liveState(live *quiz.Session) SessionState {
	status := model.SessionStatusInProgress
	if live.State() == quiz.StateSubmitted {
		status = model.SessionStatusSubmitted
	}

	answers := make(map[string]model.Answer)
	for id, value := range live.Answers() {
		answers[id.String()] = model.Answer{
			QuestionID:    id,
			SelectedIndex: value.SelectedIndex,
			Text:          value.Text,
		}
	}

	return SessionState{
		Status:           status,
		RemainingSeconds: live.RemainingSeconds(),
		CurrentIndex:     live.CurrentIndex(),
		Answers:          answers,
	}
}

// rebuildState recovers a session view without a live session in memory.
func (s *SessionService) rebuildState(ctx context.Context, quizID uuid.UUID, memberID int) (*SessionState, error) {
	row, err := s.sessionRepo.GetByQuizAndMember(ctx, quizID, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotStarted
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	state := &SessionState{
		Status:  row.Status,
		Answers: make(map[string]model.Answer),
	}

	answers, err := s.bufferedAnswers(ctx, quizID, memberID)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		state.Answers[a.QuestionID.String()] = a
	}

	state.RemainingSeconds, err = s.remainingSeconds(ctx, quizID, memberID, row)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// bufferedAnswers reads the Redis answer buffer, falling back to PostgreSQL.
func (s *SessionService) bufferedAnswers(ctx context.Context, quizID uuid.UUID, memberID int) ([]model.Answer, error) {
	answersKey := config.CacheKey.MemberAnswersKey(quizID.String(), memberID)
	buffered, err := s.rdb.HGetAll(ctx, answersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("get buffered answers: %w", err)
	}

	if len(buffered) > 0 {
		answers := make([]model.Answer, 0, len(buffered))
		for _, raw := range buffered {
			var a model.Answer
			if err := json.Unmarshal([]byte(raw), &a); err != nil {
				s.log.Warn().Err(err).Msg("Skipping malformed buffered answer")
				continue
			}
			answers = append(answers, a)
		}
		return answers, nil
	}

	return s.sessionRepo.ListAnswers(ctx, quizID, memberID)
}

// remainingSeconds recomputes the countdown from the session start time,
// self-healing the Redis start key from PostgreSQL when it was evicted.
func (s *SessionService) remainingSeconds(ctx context.Context, quizID uuid.UUID, memberID int, row *model.QuizSession) (int, error) {
	q, err := s.quizCache.Get(ctx, quizID)
	if err != nil {
		return 0, err
	}
	if q.TimeLimitMinutes == nil {
		return -1, nil
	}

	startKey := config.CacheKey.MemberSessionStartKey(quizID.String(), memberID)
	var startUnix int64

	val, err := s.rdb.Get(ctx, startKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
		startUnix = row.StartedAt.Unix()
		_ = s.rdb.Set(ctx, startKey, startUnix, 0)
	case err != nil:
		return 0, fmt.Errorf("get start time: %w", err)
	default:
		startUnix, err = strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid start time in redis: %w", err)
		}
	}

	elapsed := int(time.Now().Unix() - startUnix)
	remaining := *q.TimeLimitMinutes*60 - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// rebuildLiveSession reconstructs an in-progress session after a restart so
// it can still be graded. Expired countdowns submit immediately.
func (s *SessionService) rebuildLiveSession(ctx context.Context, quizID uuid.UUID, memberID int) (*quiz.Session, error) {
	row, err := s.sessionRepo.GetByQuizAndMember(ctx, quizID, memberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotStarted
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if row.Status == model.SessionStatusSubmitted {
		return nil, ErrAlreadySubmitted
	}

	q, err := s.quizCache.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}

	live := s.store.GetOrCreate(sessionKey(quizID, memberID), func() *quiz.Session {
		return quiz.NewSession(q, memberID,
			quiz.WithStartedAt(row.StartedAt),
			quiz.WithSubmitHandler(s.onSubmit),
		)
	})

	answers, err := s.bufferedAnswers(ctx, quizID, memberID)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		live.Answer(a.QuestionID, quiz.AnswerValue{SelectedIndex: a.SelectedIndex, Text: a.Text})
	}
	return live, nil
}
