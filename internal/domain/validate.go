package domain

import "fmt"

// ValidateQuizQuestions checks generated trivia content before it is
// accepted into a session: exactly QuestionSetSize questions, four
// distinct options each, and a correct answer matching exactly one
// option's text.
func ValidateQuizQuestions(questions []QuizQuestion) error {
	if len(questions) != QuestionSetSize {
		return fmt.Errorf("expected %d questions, got %d", QuestionSetSize, len(questions))
	}
	for i, q := range questions {
		if q.Question == "" {
			return fmt.Errorf("question %d: empty prompt", i)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("question %d: expected 4 options, got %d", i, len(q.Options))
		}
		seen := make(map[string]bool, 4)
		matches := 0
		for _, opt := range q.Options {
			if opt.AnswerText == "" {
				return fmt.Errorf("question %d: empty option", i)
			}
			if seen[opt.AnswerText] {
				return fmt.Errorf("question %d: duplicate option %q", i, opt.AnswerText)
			}
			seen[opt.AnswerText] = true
			if opt.AnswerText == q.CorrectAnswer {
				matches++
			}
		}
		if matches != 1 {
			return fmt.Errorf("question %d: correct answer %q matches %d options", i, q.CorrectAnswer, matches)
		}
	}
	return nil
}

// ValidatePlayerQuizQuestions checks "guess the player" content: exactly
// QuestionSetSize questions with an image reference, four distinct name
// options, and the correct player among them.
func ValidatePlayerQuizQuestions(questions []PlayerQuizQuestion) error {
	if len(questions) != QuestionSetSize {
		return fmt.Errorf("expected %d questions, got %d", QuestionSetSize, len(questions))
	}
	for i, q := range questions {
		if q.Image == "" {
			return fmt.Errorf("question %d: missing image", i)
		}
		if len(q.Options) != 4 {
			return fmt.Errorf("question %d: expected 4 options, got %d", i, len(q.Options))
		}
		seen := make(map[string]bool, 4)
		found := false
		for _, opt := range q.Options {
			if opt == "" {
				return fmt.Errorf("question %d: empty option", i)
			}
			if seen[opt] {
				return fmt.Errorf("question %d: duplicate option %q", i, opt)
			}
			seen[opt] = true
			if opt == q.CorrectAnswer {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("question %d: correct answer %q not among options", i, q.CorrectAnswer)
		}
	}
	return nil
}

// ValidateQuestionSet dispatches to the mode-appropriate validator and
// checks that the populated variant matches the mode.
func ValidateQuestionSet(mode GameMode, set QuestionSet) error {
	switch mode {
	case ModePlayerGuess:
		if len(set.Quiz) > 0 {
			return fmt.Errorf("player mode carries trivia questions")
		}
		return ValidatePlayerQuizQuestions(set.Player)
	case ModeTrivia, ModeFastestFinger:
		if len(set.Player) > 0 {
			return fmt.Errorf("%s mode carries player questions", mode)
		}
		return ValidateQuizQuestions(set.Quiz)
	default:
		return fmt.Errorf("unknown game mode %q", mode)
	}
}
