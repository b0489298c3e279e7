// Package content acquires AI-generated quiz material. The Gemini client
// is the production generator; Fixture serves demos and tests, and Cache
// keeps generated sets warm per mode and topic.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"ballknowledge-game-service/internal/domain"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel      = "gemini-2.5-flash"
	defaultImageModel = "gemini-2.5-flash-image"

	systemInstruction = "You are an expert AI assistant specializing in sports. Your knowledge comes from a comprehensive, up-to-date sports dataset. Your name is 'BallKnowledgeAI'. Answer user questions accurately and concisely based on your specialized knowledge base. Do not mention that you are a language model."
)

// Generator produces question sets for a topic.
type Generator interface {
	QuizQuestions(ctx context.Context, topic string) ([]domain.QuizQuestion, error)
	PlayerQuizQuestions(ctx context.Context, topic string) ([]domain.PlayerQuizQuestion, error)
}

// GeminiClient calls the Gemini generateContent API for questions,
// player portraits, and assistant chat replies.
type GeminiClient struct {
	apiKey     string
	model      string
	imageModel string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiClient(apiKey, model, imageModel string) *GeminiClient {
	if model == "" {
		model = defaultModel
	}
	if imageModel == "" {
		imageModel = defaultImageModel
	}
	return &GeminiClient{
		apiKey:     apiKey,
		model:      model,
		imageModel: imageModel,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents          []generateContent `json:"contents"`
	SystemInstruction *generateContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) call(ctx context.Context, model string, req generateRequest) (*generateResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", domain.ErrContentGeneration)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrContentGeneration, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrContentGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrContentGeneration, resp.StatusCode, truncate(string(data), 200))
	}
	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrContentGeneration, err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrContentGeneration)
	}
	return &parsed, nil
}

func (c *GeminiClient) text(ctx context.Context, model, prompt string, jsonOut bool) (string, error) {
	req := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	}
	if jsonOut {
		req.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}
	resp, err := c.call(ctx, model, req)
	if err != nil {
		return "", err
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			return strings.TrimSpace(part.Text), nil
		}
	}
	return "", fmt.Errorf("%w: no text in response", domain.ErrContentGeneration)
}

// QuizQuestions generates ten multiple-choice questions about topic.
func (c *GeminiClient) QuizQuestions(ctx context.Context, topic string) ([]domain.QuizQuestion, error) {
	prompt := fmt.Sprintf("Generate %d challenging multiple-choice quiz questions about %s. "+
		"Each question must have exactly 4 options. Respond with JSON of the form "+
		`{"questions":[{"question":"...","options":[{"answerText":"..."}],"correctAnswer":"..."}]}. `+
		"Ensure the correct answer is one of the options.", domain.QuestionSetSize, topic)
	raw, err := c.text(ctx, c.model, prompt, true)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Questions []domain.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid question format: %v", domain.ErrContentGeneration, err)
	}
	if len(parsed.Questions) < domain.QuestionSetSize {
		return nil, fmt.Errorf("%w: got %d questions", domain.ErrContentGeneration, len(parsed.Questions))
	}
	questions := parsed.Questions[:domain.QuestionSetSize]
	for i := range questions {
		questions[i].ID = i
	}
	return questions, nil
}

// PlayerQuizQuestions generates ten guess-the-player questions and a
// portrait for each. Portrait requests fan out together and the whole
// set fails if any one of them does; there are no partial games.
func (c *GeminiClient) PlayerQuizQuestions(ctx context.Context, topic string) ([]domain.PlayerQuizQuestion, error) {
	prompt := fmt.Sprintf("Generate %d 'guess the player' multiple-choice quiz questions about famous "+
		"football players from the %s. For each question provide exactly 4 player names as options; one must "+
		"be the correct player and the other three plausible distractors from the same league. Respond with "+
		`JSON of the form {"questions":[{"options":["..."],"correctAnswer":"..."}]}.`, domain.QuestionSetSize, topic)
	raw, err := c.text(ctx, c.model, prompt, true)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Questions []struct {
			Options       []string `json:"options"`
			CorrectAnswer string   `json:"correctAnswer"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("%w: invalid question format: %v", domain.ErrContentGeneration, err)
	}
	if len(parsed.Questions) < domain.QuestionSetSize {
		return nil, fmt.Errorf("%w: got %d questions", domain.ErrContentGeneration, len(parsed.Questions))
	}

	questions := make([]domain.PlayerQuizQuestion, domain.QuestionSetSize)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(domain.QuestionSetSize)
	for i := 0; i < domain.QuestionSetSize; i++ {
		i := i
		q := parsed.Questions[i]
		g.Go(func() error {
			image, err := c.generateImage(gctx, fmt.Sprintf(
				"A high-quality, realistic photograph of the football player %s in his team kit. "+
					"The image should be a clear portrait or action shot. No text or logos should be visible.",
				q.CorrectAnswer))
			if err != nil {
				return err
			}
			questions[i] = domain.PlayerQuizQuestion{
				ID:            i,
				Image:         image,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return questions, nil
}

// generateImage returns a data URI for the first inline image part.
func (c *GeminiClient) generateImage(ctx context.Context, prompt string) (string, error) {
	resp, err := c.call(ctx, c.imageModel, generateRequest{
		Contents:         []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseModalities: []string{"IMAGE"}},
	})
	if err != nil {
		return "", err
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && strings.HasPrefix(part.InlineData.MimeType, "image/") {
			return fmt.Sprintf("data:%s;base64,%s", part.InlineData.MimeType, part.InlineData.Data), nil
		}
	}
	return "", fmt.Errorf("%w: no image in response", domain.ErrContentGeneration)
}

// Chat produces one assistant reply for the conversation so far.
func (c *GeminiClient) Chat(ctx context.Context, history []domain.ChatMessage, prompt string) (string, error) {
	contents := make([]generateContent, 0, len(history)+1)
	for _, msg := range history {
		contents = append(contents, generateContent{
			Role:  msg.Role,
			Parts: []generatePart{{Text: msg.Text}},
		})
	}
	contents = append(contents, generateContent{
		Role:  "user",
		Parts: []generatePart{{Text: prompt}},
	})
	resp, err := c.call(ctx, c.model, generateRequest{
		Contents:          contents,
		SystemInstruction: &generateContent{Parts: []generatePart{{Text: systemInstruction}}},
	})
	if err != nil {
		return "", err
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", fmt.Errorf("no text in chat response")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
