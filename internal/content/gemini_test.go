package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ballknowledge-game-service/internal/domain"
)

func testClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewGeminiClient("test-key", "", "")
	client.baseURL = server.URL
	return client
}

func textResponse(text string) string {
	data, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{
				"parts": []any{map[string]any{"text": text}},
			}},
		},
	})
	return string(data)
}

func quizBody(n int) string {
	questions := make([]domain.QuizQuestion, n)
	for i := range questions {
		correct := fmt.Sprintf("right %d", i)
		questions[i] = domain.QuizQuestion{
			Question: fmt.Sprintf("Question %d?", i),
			Options: []domain.QuizOption{
				{AnswerText: correct},
				{AnswerText: "wrong a"},
				{AnswerText: "wrong b"},
				{AnswerText: "wrong c"},
			},
			CorrectAnswer: correct,
		}
	}
	data, _ := json.Marshal(map[string]any{"questions": questions})
	return string(data)
}

func TestQuizQuestionsParsesResponse(t *testing.T) {
	var gotKey, gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		w.Write([]byte(textResponse(quizBody(10))))
	})

	questions, err := client.QuizQuestions(context.Background(), "football")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if !strings.Contains(gotPath, defaultModel+":generateContent") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if len(questions) != domain.QuestionSetSize {
		t.Fatalf("expected %d questions, got %d", domain.QuestionSetSize, len(questions))
	}
	for i, q := range questions {
		if q.ID != i {
			t.Fatalf("question %d: expected assigned ID, got %d", i, q.ID)
		}
	}
}

func TestQuizQuestionsTrimsOversizedSet(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textResponse(quizBody(13))))
	})
	questions, err := client.QuizQuestions(context.Background(), "football")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != domain.QuestionSetSize {
		t.Fatalf("expected trim to %d, got %d", domain.QuestionSetSize, len(questions))
	}
}

func TestQuizQuestionsRejectsShortSet(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(textResponse(quizBody(6))))
	})
	_, err := client.QuizQuestions(context.Background(), "football")
	if !errors.Is(err, domain.ErrContentGeneration) {
		t.Fatalf("expected ErrContentGeneration, got %v", err)
	}
}

func TestCallSurfacesHTTPFailure(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	_, err := client.QuizQuestions(context.Background(), "football")
	if !errors.Is(err, domain.ErrContentGeneration) {
		t.Fatalf("expected ErrContentGeneration, got %v", err)
	}
}

func TestCallRequiresAPIKey(t *testing.T) {
	client := NewGeminiClient("", "", "")
	_, err := client.QuizQuestions(context.Background(), "football")
	if !errors.Is(err, domain.ErrContentGeneration) {
		t.Fatalf("expected ErrContentGeneration without key, got %v", err)
	}
}

func TestPlayerQuizQuestionsAttachesPortraits(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, defaultImageModel) {
			data, _ := json.Marshal(map[string]any{
				"candidates": []any{
					map[string]any{"content": map[string]any{
						"parts": []any{map[string]any{"inlineData": map[string]any{
							"mimeType": "image/png",
							"data":     "aW1n",
						}}},
					}},
				},
			})
			w.Write(data)
			return
		}
		type pq struct {
			Options       []string `json:"options"`
			CorrectAnswer string   `json:"correctAnswer"`
		}
		questions := make([]pq, domain.QuestionSetSize)
		for i := range questions {
			correct := fmt.Sprintf("player %d", i)
			questions[i] = pq{
				Options:       []string{correct, "other a", "other b", "other c"},
				CorrectAnswer: correct,
			}
		}
		body, _ := json.Marshal(map[string]any{"questions": questions})
		w.Write([]byte(textResponse(string(body))))
	})

	questions, err := client.PlayerQuizQuestions(context.Background(), "premier league")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(questions) != domain.QuestionSetSize {
		t.Fatalf("expected %d questions, got %d", domain.QuestionSetSize, len(questions))
	}
	for i, q := range questions {
		if q.Image != "data:image/png;base64,aW1n" {
			t.Fatalf("question %d: unexpected image %q", i, q.Image)
		}
	}
}

func TestPlayerQuizQuestionsFailsWhenPortraitFails(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, defaultImageModel) {
			http.Error(w, "image backend down", http.StatusInternalServerError)
			return
		}
		type pq struct {
			Options       []string `json:"options"`
			CorrectAnswer string   `json:"correctAnswer"`
		}
		questions := make([]pq, domain.QuestionSetSize)
		for i := range questions {
			correct := fmt.Sprintf("player %d", i)
			questions[i] = pq{
				Options:       []string{correct, "other a", "other b", "other c"},
				CorrectAnswer: correct,
			}
		}
		body, _ := json.Marshal(map[string]any{"questions": questions})
		w.Write([]byte(textResponse(string(body))))
	})

	_, err := client.PlayerQuizQuestions(context.Background(), "premier league")
	if !errors.Is(err, domain.ErrContentGeneration) {
		t.Fatalf("expected ErrContentGeneration when a portrait fails, got %v", err)
	}
}

func TestChatSendsHistoryAndSystemInstruction(t *testing.T) {
	var captured generateRequest
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(textResponse("France won in 1998.")))
	})

	history := []domain.ChatMessage{
		{Role: "user", Text: "Hi"},
		{Role: "model", Text: "Hello! Ask me anything about sports."},
	}
	reply, err := client.Chat(context.Background(), history, "Who won the 1998 World Cup?")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "France won in 1998." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if len(captured.Contents) != 3 {
		t.Fatalf("expected history plus prompt, got %d contents", len(captured.Contents))
	}
	if captured.Contents[2].Role != "user" {
		t.Fatalf("prompt must be the trailing user turn, got %q", captured.Contents[2].Role)
	}
	if captured.SystemInstruction == nil || len(captured.SystemInstruction.Parts) == 0 {
		t.Fatalf("system instruction missing")
	}
}
