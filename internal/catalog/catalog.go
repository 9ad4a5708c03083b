package catalog

import (
	"strings"
	"sync"

	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/google/uuid"
)

// StatusFilter narrows a catalog listing by attempt status.
type StatusFilter string

const (
	FilterAll StatusFilter = "all"
	// FilterCompleted keeps quizzes with at least one submission.
	FilterCompleted StatusFilter = "completed"
	// FilterPending keeps quizzes with none.
	FilterPending StatusFilter = "pending"
)

// QuizStats summarizes the most recent submission for a quiz
// (last-submission-wins, not best-of).
type QuizStats struct {
	ScorePercent float64 `json:"score_percent"`
	Passed       bool    `json:"passed"`
	Attempts     int     `json:"attempts"`
}

// GlobalStats aggregates the whole catalog.
type GlobalStats struct {
	TotalQuizzes     int `json:"total_quizzes"`
	AttemptedQuizzes int `json:"attempted_quizzes"`
	// PassedQuizzes counts quizzes whose latest submission passed.
	PassedQuizzes int `json:"passed_quizzes"`
	// AverageScorePercent is the mean over every submission of every quiz,
	// not per-quiz latest. Zero when no submissions exist.
	AverageScorePercent float64 `json:"average_score_percent"`
}

// Catalog is the in-memory store of quizzes and their submissions. It wires
// the builder's output to taker sessions and results, and serves search,
// filtering and statistics without touching the database.
type Catalog struct {
	mu          sync.RWMutex
	quizzes     map[uuid.UUID]model.Quiz
	order       []uuid.UUID
	submissions map[uuid.UUID][]model.Submission
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		quizzes:     make(map[uuid.UUID]model.Quiz),
		submissions: make(map[uuid.UUID][]model.Submission),
	}
}

// Put inserts or replaces a quiz.
func (c *Catalog) Put(q model.Quiz) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.quizzes[q.ID]; !exists {
		c.order = append(c.order, q.ID)
	}
	c.quizzes[q.ID] = q
}

// Remove deletes a quiz and its submissions. Deleting a quiz discards its
// questions with it; submissions referencing it are dropped from the catalog.
func (c *Catalog) Remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.quizzes[id]; !exists {
		return
	}
	delete(c.quizzes, id)
	delete(c.submissions, id)
	for i, qid := range c.order {
		if qid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Get returns a quiz by id.
func (c *Catalog) Get(id uuid.UUID) (model.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	q, ok := c.quizzes[id]
	return q, ok
}

// AddSubmission records a completed attempt. Submissions arrive in
// completion order; the latest one drives StatsFor.
func (c *Catalog) AddSubmission(sub model.Submission) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.quizzes[sub.QuizID]; !exists {
		return
	}
	c.submissions[sub.QuizID] = append(c.submissions[sub.QuizID], sub)
}

// Submissions returns the attempts recorded for a quiz, oldest first.
func (c *Catalog) Submissions(quizID uuid.UUID) []model.Submission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Submission(nil), c.submissions[quizID]...)
}

// List returns quizzes matching a case-insensitive substring query against
// title and description, narrowed by the status filter, in insertion order.
// An empty query matches everything.
func (c *Catalog) List(query string, filter StatusFilter) []model.Quiz {
	c.mu.RLock()
	defer c.mu.RUnlock()

	needle := strings.ToLower(query)
	var out []model.Quiz
	for _, id := range c.order {
		q := c.quizzes[id]
		if needle != "" &&
			!strings.Contains(strings.ToLower(q.Title), needle) &&
			!strings.Contains(strings.ToLower(q.Description), needle) {
			continue
		}
		attempted := len(c.submissions[id]) > 0
		switch filter {
		case FilterCompleted:
			if !attempted {
				continue
			}
		case FilterPending:
			if attempted {
				continue
			}
		}
		out = append(out, q)
	}
	return out
}

// StatsFor returns the latest submission's outcome for a quiz. The second
// return is false when the quiz is unknown or has no submissions yet.
func (c *Catalog) StatsFor(quizID uuid.UUID) (QuizStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	subs := c.submissions[quizID]
	if len(subs) == 0 {
		return QuizStats{}, false
	}
	latest := subs[len(subs)-1]
	return QuizStats{
		ScorePercent: latest.ScorePercent,
		Passed:       latest.Passed,
		Attempts:     len(subs),
	}, true
}

// Overview aggregates catalog-wide statistics.
func (c *Catalog) Overview() GlobalStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := GlobalStats{TotalQuizzes: len(c.quizzes)}
	sum := 0.0
	count := 0
	for id := range c.quizzes {
		subs := c.submissions[id]
		if len(subs) == 0 {
			continue
		}
		stats.AttemptedQuizzes++
		if subs[len(subs)-1].Passed {
			stats.PassedQuizzes++
		}
		for _, sub := range subs {
			sum += sub.ScorePercent
			count++
		}
	}
	if count > 0 {
		stats.AverageScorePercent = sum / float64(count)
	}
	return stats
}

// IDs returns the quiz ids in insertion order. Mainly for diagnostics.
func (c *Catalog) IDs() []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]uuid.UUID(nil), c.order...)
}
