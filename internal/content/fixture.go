package content

import (
	"context"
	"fmt"

	"ballknowledge-game-service/internal/domain"
)

// Fixture is a deterministic generator for demos (no API key configured)
// and tests. Every topic yields a valid ten-question set.
type Fixture struct{}

func NewFixture() *Fixture { return &Fixture{} }

func (f *Fixture) QuizQuestions(_ context.Context, topic string) ([]domain.QuizQuestion, error) {
	questions := make([]domain.QuizQuestion, domain.QuestionSetSize)
	for i := range questions {
		correct := fmt.Sprintf("%s answer %d", topic, i)
		questions[i] = domain.QuizQuestion{
			ID:       i,
			Question: fmt.Sprintf("Sample question %d about %s?", i+1, topic),
			Options: []domain.QuizOption{
				{AnswerText: correct},
				{AnswerText: fmt.Sprintf("distractor %d-a", i)},
				{AnswerText: fmt.Sprintf("distractor %d-b", i)},
				{AnswerText: fmt.Sprintf("distractor %d-c", i)},
			},
			CorrectAnswer: correct,
		}
	}
	return questions, nil
}

func (f *Fixture) PlayerQuizQuestions(_ context.Context, topic string) ([]domain.PlayerQuizQuestion, error) {
	questions := make([]domain.PlayerQuizQuestion, domain.QuestionSetSize)
	for i := range questions {
		correct := fmt.Sprintf("%s player %d", topic, i)
		questions[i] = domain.PlayerQuizQuestion{
			ID:    i,
			Image: fmt.Sprintf("data:image/png;base64,Zml4dHVyZS0lZA==#%d", i),
			Options: []string{
				correct,
				fmt.Sprintf("lookalike %d-a", i),
				fmt.Sprintf("lookalike %d-b", i),
				fmt.Sprintf("lookalike %d-c", i),
			},
			CorrectAnswer: correct,
		}
	}
	return questions, nil
}
