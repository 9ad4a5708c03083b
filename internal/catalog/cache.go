package catalog

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// ErrQuizNotFound indicates the backing store has no such published quiz.
var ErrQuizNotFound = errors.New("quiz not found")

// QuizLoader fetches quiz content from a backing store (PostgreSQL in
// production, a static map in tests).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID uuid.UUID) (model.Quiz, error)
}

// QuizCache is a read-through, TTL-bounded quiz cache. Concurrent misses for
// the same quiz collapse into a single load via singleflight; expirations are
// jittered so a burst of loads does not expire in lockstep.
type QuizCache struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[uuid.UUID]cachedQuiz
}

type cachedQuiz struct {
	quiz      model.Quiz
	expiresAt time.Time
}

// NewQuizCache creates a cache over loader with the given TTL.
func NewQuizCache(loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[uuid.UUID]cachedQuiz),
	}
}

// Get returns the quiz, loading and caching it on a miss or after expiry.
func (c *QuizCache) Get(ctx context.Context, quizID uuid.UUID) (model.Quiz, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(quizID.String(), func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return model.Quiz{}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedQuiz{
			quiz:      quiz,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return model.Quiz{}, err
	}
	return result.(model.Quiz), nil
}

// Invalidate drops a quiz from the cache (after republish or archive).
func (c *QuizCache) Invalidate(quizID uuid.UUID) {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.mu.Unlock()
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticQuizLoader is a loader backed by an in-memory map (tests/demos).
type StaticQuizLoader struct {
	quizzes map[uuid.UUID]model.Quiz
}

// NewStaticQuizLoader wraps a fixed quiz map.
func NewStaticQuizLoader(quizzes map[uuid.UUID]model.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

// LoadQuiz implements QuizLoader.
func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID uuid.UUID) (model.Quiz, error) {
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return model.Quiz{}, ErrQuizNotFound
}
