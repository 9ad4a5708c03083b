package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fitlearn/quizlab-backend/internal/config"
	"github.com/fitlearn/quizlab-backend/internal/database"
	"github.com/fitlearn/quizlab-backend/internal/logger"
	"github.com/fitlearn/quizlab-backend/internal/model"
	"github.com/fitlearn/quizlab-backend/internal/quiz"
	"github.com/fitlearn/quizlab-backend/internal/repository"
)

// mcSpec describes one multiple-choice question to seed.
type mcSpec struct {
	text    string
	options []string
	correct int
	points  int
	explain string
}

// tfSpec describes one true/false question to seed.
type tfSpec struct {
	text    string
	correct int // 0 = True, 1 = False
	points  int
	explain string
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	authorRepo := repository.NewAuthorRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)

	fmt.Println("=== Seeding Demo Authors, Members and Quizzes ===")

	authorID := seedAuthor(ctx, authorRepo, cfg.BcryptCost, log)
	seedMembers(ctx, memberRepo, cfg.BcryptCost)

	// ─── Quiz 1: HIIT Fundamentals ─────────────────────────────────────
	timeLimit := 10
	b := quiz.NewBuilder(authorID)
	b.SetTitle("HIIT Fundamentals")
	b.SetDescription("Core concepts of high-intensity interval training: work-to-rest ratios, intensity zones and recovery.")
	b.SetTimeLimit(&timeLimit)
	b.SetPassingScore(70)

	addMC(b, mcSpec{
		text:    "What does HIIT alternate between?",
		options: []string{"Intense bursts and recovery periods", "Cardio and strength days", "Morning and evening sessions", "Fasted and fed workouts"},
		correct: 0,
		points:  2,
		explain: "HIIT alternates short bursts of near-maximal effort with lower-intensity recovery periods.",
	})
	addMC(b, mcSpec{
		text:    "A common work-to-rest ratio for beginners is:",
		options: []string{"1:2", "4:1", "10:1"},
		correct: 0,
		points:  2,
		explain: "Beginners usually start with twice as much recovery as work, e.g. 30s on / 60s off.",
	})
	addTF(b, tfSpec{
		text:    "HIIT sessions should be performed every day for best results.",
		correct: 1,
		points:  1,
		explain: "High-intensity work needs around 48 hours of recovery; daily HIIT invites overtraining.",
	})
	addOpen(b, "Describe how you would scale a 20-minute HIIT session for a client recovering from a knee injury.", 5)

	seedQuiz(ctx, quizRepo, b, log)

	// ─── Quiz 2: Nutrition Basics ──────────────────────────────────────
	b = quiz.NewBuilder(authorID)
	b.SetTitle("Nutrition Basics")
	b.SetDescription("Macronutrients, hydration and meal timing for active people. Untimed.")
	b.SetPassingScore(60)

	addMC(b, mcSpec{
		text:    "Which macronutrient is the primary fuel for high-intensity exercise?",
		options: []string{"Carbohydrates", "Fat", "Protein", "Fiber"},
		correct: 0,
		points:  2,
		explain: "Glycogen from carbohydrates powers glycolytic work; fat dominates at low intensities.",
	})
	addTF(b, tfSpec{
		text:    "Protein intake matters only on training days.",
		correct: 1,
		points:  1,
		explain: "Muscle repair continues for days after a session, so daily protein targets apply throughout.",
	})
	addMC(b, mcSpec{
		text:    "Roughly how much water is recommended per hour of intense training?",
		options: []string{"0.5 to 1 liter", "3 liters", "None until thirsty"},
		correct: 0,
		points:  2,
		explain: "Around 500 to 1000 ml per hour replaces typical sweat losses.",
	})

	seedQuiz(ctx, quizRepo, b, log)

	fmt.Println("\nSeed completed!")
}

// seedAuthor creates the demo coach account, reusing it when already present.
func seedAuthor(ctx context.Context, repo *repository.AuthorRepository, bcryptCost int, log zerolog.Logger) int {
	if existing, err := repo.GetByEmail(ctx, "coach@quizlab.fit"); err == nil {
		fmt.Printf("Found existing author with ID: %d\n", existing.ID)
		return existing.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("trainhard"), bcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash author password")
	}

	author := &model.Author{
		Name:         "Coach Dana",
		Email:        "coach@quizlab.fit",
		PasswordHash: string(hash),
	}
	if err := repo.Create(ctx, author); err != nil {
		log.Fatal().Err(err).Msg("Failed to create author")
	}

	fmt.Printf("Created author with ID: %d\n", author.ID)
	return author.ID
}

func seedMembers(ctx context.Context, repo *repository.MemberRepository, bcryptCost int) {
	names := []string{
		"Alex Morgan", "Jordan Lee", "Sam Rivera", "Casey Nguyen", "Riley Chen",
		"Taylor Brooks", "Morgan Diaz", "Jamie Patel", "Drew Kim", "Robin Walsh",
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("quizlab123"), bcryptCost)
	if err != nil {
		fmt.Printf("Error hashing member password: %v\n", err)
		return
	}

	successCount := 0
	for i, name := range names {
		member := &model.Member{
			Name:         name,
			Email:        fmt.Sprintf("member%d@quizlab.fit", i+1),
			PasswordHash: string(hash),
		}
		if err := repo.Create(ctx, member); err != nil {
			fmt.Printf("Error creating member %s: %v\n", member.Email, err)
			continue
		}
		successCount++
	}
	fmt.Printf("Created %d/%d members\n", successCount, len(names))
}

// addMC seeds one multiple-choice question through the builder, so option
// counts, order numbers and total points follow the same rules as the API.
func addMC(b *quiz.Builder, spec mcSpec) {
	q := b.AddQuestion(model.QuestionTypeMultipleChoice)
	// A fresh multiple-choice question starts with two blank options.
	for i := len(q.Options); i < len(spec.options); i++ {
		if err := b.AddOption(q.ID); err != nil {
			fmt.Printf("Error adding option: %v\n", err)
			return
		}
	}
	for i, opt := range spec.options {
		if err := b.UpdateOption(q.ID, i, opt); err != nil {
			fmt.Printf("Error setting option: %v\n", err)
			return
		}
	}
	b.UpdateQuestion(q.ID, model.UpdateQuestionRequest{
		Text:         &spec.text,
		Points:       &spec.points,
		CorrectIndex: &spec.correct,
		Explanation:  &spec.explain,
	})
}

func addTF(b *quiz.Builder, spec tfSpec) {
	q := b.AddQuestion(model.QuestionTypeTrueFalse)
	b.UpdateQuestion(q.ID, model.UpdateQuestionRequest{
		Text:         &spec.text,
		Points:       &spec.points,
		CorrectIndex: &spec.correct,
		Explanation:  &spec.explain,
	})
}

func addOpen(b *quiz.Builder, text string, points int) {
	q := b.AddQuestion(model.QuestionTypeOpenEnded)
	b.UpdateQuestion(q.ID, model.UpdateQuestionRequest{
		Text:   &text,
		Points: &points,
	})
}

// seedQuiz persists the built quiz and publishes it. The server warms Redis
// for all published quizzes on startup.
func seedQuiz(ctx context.Context, repo *repository.QuizRepository, b *quiz.Builder, log zerolog.Logger) {
	q := b.Quiz()

	if problems := b.Validate(); problems != nil {
		log.Fatal().Int("questions", len(problems)).Str("title", q.Title).Msg("Seed quiz failed validation")
	}

	if err := repo.Create(ctx, &q); err != nil {
		log.Fatal().Err(err).Str("title", q.Title).Msg("Failed to create quiz")
	}
	if err := repo.UpdateStatus(ctx, q.ID, model.QuizStatusPublished); err != nil {
		log.Fatal().Err(err).Str("title", q.Title).Msg("Failed to publish quiz")
	}

	fmt.Printf("Published quiz '%s' (%d questions, %d points)\n", q.Title, len(q.Questions), q.TotalPoints)
}
