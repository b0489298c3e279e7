package domain

import (
	"fmt"
	"testing"
)

func validQuizQuestions() []QuizQuestion {
	questions := make([]QuizQuestion, QuestionSetSize)
	for i := range questions {
		correct := fmt.Sprintf("right %d", i)
		questions[i] = QuizQuestion{
			ID:       i,
			Question: fmt.Sprintf("Question %d?", i),
			Options: []QuizOption{
				{AnswerText: correct},
				{AnswerText: fmt.Sprintf("wrong %d-a", i)},
				{AnswerText: fmt.Sprintf("wrong %d-b", i)},
				{AnswerText: fmt.Sprintf("wrong %d-c", i)},
			},
			CorrectAnswer: correct,
		}
	}
	return questions
}

func validPlayerQuestions() []PlayerQuizQuestion {
	questions := make([]PlayerQuizQuestion, QuestionSetSize)
	for i := range questions {
		correct := fmt.Sprintf("player %d", i)
		questions[i] = PlayerQuizQuestion{
			ID:    i,
			Image: "data:image/png;base64,aW1n",
			Options: []string{
				correct,
				fmt.Sprintf("other %d-a", i),
				fmt.Sprintf("other %d-b", i),
				fmt.Sprintf("other %d-c", i),
			},
			CorrectAnswer: correct,
		}
	}
	return questions
}

func TestValidateQuizQuestionsAccepts(t *testing.T) {
	if err := ValidateQuizQuestions(validQuizQuestions()); err != nil {
		t.Fatalf("expected valid set, got %v", err)
	}
}

func TestValidateQuizQuestionsWrongCount(t *testing.T) {
	if err := ValidateQuizQuestions(validQuizQuestions()[:7]); err == nil {
		t.Fatalf("expected error for 7 questions")
	}
}

func TestValidateQuizQuestionsDuplicateOption(t *testing.T) {
	questions := validQuizQuestions()
	questions[3].Options[2].AnswerText = questions[3].Options[1].AnswerText
	if err := ValidateQuizQuestions(questions); err == nil {
		t.Fatalf("expected error for duplicate option")
	}
}

func TestValidateQuizQuestionsAnswerNotPresent(t *testing.T) {
	questions := validQuizQuestions()
	questions[0].CorrectAnswer = "missing"
	if err := ValidateQuizQuestions(questions); err == nil {
		t.Fatalf("expected error for answer outside options")
	}
}

func TestValidatePlayerQuestionsMissingImage(t *testing.T) {
	questions := validPlayerQuestions()
	questions[5].Image = ""
	if err := ValidatePlayerQuizQuestions(questions); err == nil {
		t.Fatalf("expected error for missing image")
	}
}

func TestValidateQuestionSetModeMismatch(t *testing.T) {
	set := QuestionSet{Quiz: validQuizQuestions()}
	if err := ValidateQuestionSet(ModePlayerGuess, set); err == nil {
		t.Fatalf("expected error for trivia questions in player mode")
	}
	if err := ValidateQuestionSet(ModeTrivia, set); err != nil {
		t.Fatalf("expected trivia set to validate, got %v", err)
	}
	if err := ValidateQuestionSet(GameMode("bogus"), set); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
