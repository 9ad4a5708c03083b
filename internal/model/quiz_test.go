package model

import "testing"

func TestComputeTotalPoints(t *testing.T) {
	questions := []Question{{Points: 1}, {Points: 2}, {Points: 5}}
	if got := ComputeTotalPoints(questions); got != 8 {
		t.Fatalf("expected 8 total points, got %d", got)
	}
	if got := ComputeTotalPoints(nil); got != 0 {
		t.Fatalf("expected 0 total points for no questions, got %d", got)
	}
}

func TestIsQuizSavable(t *testing.T) {
	tests := []struct {
		name string
		quiz Quiz
		want bool
	}{
		{"title and question", Quiz{Title: "Form Check", Questions: []Question{{}}}, true},
		{"missing title", Quiz{Questions: []Question{{}}}, false},
		{"no questions", Quiz{Title: "Form Check"}, false},
		{"empty", Quiz{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuizSavable(&tt.quiz); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMemberPayloadStripsAnswers(t *testing.T) {
	quiz := Quiz{
		Title:       "Nutrition Basics",
		TotalPoints: 3,
		Questions: []Question{
			{
				Type:         QuestionTypeMultipleChoice,
				Text:         "Which is a lean protein?",
				Points:       3,
				Options:      []string{"Butter", "Chicken breast"},
				CorrectIndex: intPtr(1),
				Explanation:  "Chicken breast is low in fat.",
			},
		},
	}

	payload := quiz.MemberPayload()
	if len(payload.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(payload.Questions))
	}
	q := payload.Questions[0]
	if q.Text != "Which is a lean protein?" || len(q.Options) != 2 {
		t.Fatalf("unexpected member question: %+v", q)
	}
	if payload.TotalPoints != 3 {
		t.Fatalf("expected total points carried, got %d", payload.TotalPoints)
	}
}
