package model

import "testing"

func intPtr(v int) *int { return &v }

func TestNewQuestionDefaults(t *testing.T) {
	mc := NewQuestion(QuestionTypeMultipleChoice)
	if len(mc.Options) != 2 {
		t.Fatalf("expected 2 default options, got %d", len(mc.Options))
	}
	if mc.CorrectIndex != nil {
		t.Fatalf("expected no correct index preselected")
	}
	if mc.Points != 1 {
		t.Fatalf("expected 1 default point, got %d", mc.Points)
	}

	tf := NewQuestion(QuestionTypeTrueFalse)
	if len(tf.Options) != 2 || tf.Options[0] != "True" || tf.Options[1] != "False" {
		t.Fatalf("expected fixed True/False pair, got %v", tf.Options)
	}
	if tf.CorrectIndex != nil {
		t.Fatalf("expected no correct index preselected")
	}

	oe := NewQuestion(QuestionTypeOpenEnded)
	if len(oe.Options) != 0 {
		t.Fatalf("expected no options on open-ended, got %v", oe.Options)
	}
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question Question
		badField string
	}{
		{
			name: "valid multiple choice",
			question: Question{
				Type:         QuestionTypeMultipleChoice,
				Text:         "Which macronutrient has 9 kcal per gram?",
				Points:       2,
				Options:      []string{"Protein", "Fat", "Carbohydrate"},
				CorrectIndex: intPtr(1),
			},
		},
		{
			name: "multiple choice with one option",
			question: Question{
				Type:         QuestionTypeMultipleChoice,
				Text:         "Pick one",
				Points:       1,
				Options:      []string{"Only"},
				CorrectIndex: intPtr(0),
			},
			badField: "options",
		},
		{
			name: "multiple choice missing correct index",
			question: Question{
				Type:    QuestionTypeMultipleChoice,
				Text:    "Pick one",
				Points:  1,
				Options: []string{"A", "B"},
			},
			badField: "correct_index",
		},
		{
			name: "multiple choice correct index out of range",
			question: Question{
				Type:         QuestionTypeMultipleChoice,
				Text:         "Pick one",
				Points:       1,
				Options:      []string{"A", "B"},
				CorrectIndex: intPtr(2),
			},
			badField: "correct_index",
		},
		{
			name: "valid true false",
			question: Question{
				Type:         QuestionTypeTrueFalse,
				Text:         "Stretching prevents all injuries.",
				Points:       1,
				Options:      []string{"True", "False"},
				CorrectIndex: intPtr(1),
			},
		},
		{
			name: "true false with tampered options",
			question: Question{
				Type:         QuestionTypeTrueFalse,
				Text:         "Water is wet.",
				Points:       1,
				Options:      []string{"Yes", "No"},
				CorrectIndex: intPtr(0),
			},
			badField: "options",
		},
		{
			name: "valid open ended",
			question: Question{
				Type:   QuestionTypeOpenEnded,
				Text:   "Describe your warm-up routine.",
				Points: 5,
			},
		},
		{
			name: "open ended with options",
			question: Question{
				Type:    QuestionTypeOpenEnded,
				Text:    "Explain.",
				Points:  1,
				Options: []string{"A"},
			},
			badField: "options",
		},
		{
			name: "open ended with correct index",
			question: Question{
				Type:         QuestionTypeOpenEnded,
				Text:         "Explain.",
				Points:       1,
				CorrectIndex: intPtr(0),
			},
			badField: "correct_index",
		},
		{
			name: "empty text",
			question: Question{
				Type:         QuestionTypeTrueFalse,
				Points:       1,
				Options:      []string{"True", "False"},
				CorrectIndex: intPtr(0),
			},
			badField: "text",
		},
		{
			name: "zero points",
			question: Question{
				Type:         QuestionTypeTrueFalse,
				Text:         "Zero?",
				Options:      []string{"True", "False"},
				CorrectIndex: intPtr(0),
			},
			badField: "points",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := ValidateQuestion(tt.question)
			if tt.badField == "" {
				if fields != nil {
					t.Fatalf("expected valid, got %v", fields)
				}
				return
			}
			if fields == nil {
				t.Fatalf("expected %q problem, got none", tt.badField)
			}
			if _, ok := fields[tt.badField]; !ok {
				t.Fatalf("expected %q problem, got %v", tt.badField, fields)
			}
		})
	}
}
