// Package webhook reaches the external AI workflow engine over plain
// HTTP webhooks. This is the default provider.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Deekshi05/AceAI/internal/ai"
)

const (
	defaultQuestionURL = "http://localhost:5678/webhook/generate-interview-questions"
	defaultFeedbackURL = "http://localhost:5678/webhook/generate-feedback"

	// question generation runs a multi-step workflow and needs far
	// longer than the per-answer feedback call
	defaultQuestionTimeout = 120 * time.Second
	defaultFeedbackTimeout = 15 * time.Second
)

type Config struct {
	QuestionURL     string
	FeedbackURL     string
	QuestionTimeout time.Duration
	FeedbackTimeout time.Duration
}

func NewConfig() *Config {
	return &Config{
		QuestionURL:     getEnvOrDefault("AI_QUESTION_WEBHOOK_URL", defaultQuestionURL),
		FeedbackURL:     getEnvOrDefault("AI_FEEDBACK_WEBHOOK_URL", defaultFeedbackURL),
		QuestionTimeout: getEnvDuration("AI_QUESTION_TIMEOUT", defaultQuestionTimeout),
		FeedbackTimeout: getEnvDuration("AI_FEEDBACK_TIMEOUT", defaultFeedbackTimeout),
	}
}

type Client struct {
	config *Config
	http   *http.Client
}

func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		http:   &http.Client{},
	}
}

func (c *Client) GenerateQuestions(ctx context.Context, req ai.QuestionRequest) ([]ai.GeneratedQuestion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.QuestionTimeout)
	defer cancel()

	var body struct {
		Questions []ai.GeneratedQuestion `json:"questions"`
	}
	if err := c.post(ctx, c.config.QuestionURL, req, &body); err != nil {
		return nil, err
	}
	if len(body.Questions) == 0 {
		return nil, &ai.ProviderError{
			Provider: "webhook",
			Code:     ai.ErrCodeMalformed,
			Message:  "workflow returned no questions",
		}
	}
	for _, q := range body.Questions {
		if q.Question == "" {
			return nil, &ai.ProviderError{
				Provider: "webhook",
				Code:     ai.ErrCodeMalformed,
				Message:  "workflow returned a question without text",
			}
		}
	}
	return body.Questions, nil
}

func (c *Client) RespondToAnswer(ctx context.Context, req ai.FeedbackRequest) (*ai.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.FeedbackTimeout)
	defer cancel()

	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now().UTC()
	}

	var reply ai.Reply
	if err := c.post(ctx, c.config.FeedbackURL, req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *Client) GetProviderName() string { return "webhook" }

func (c *Client) post(ctx context.Context, url string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return &ai.ProviderError{Provider: "webhook", Code: ai.ErrCodeInvalidInput, Message: "failed to encode request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &ai.ProviderError{Provider: "webhook", Code: ai.ErrCodeInvalidInput, Message: "failed to build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		code := ai.ErrCodeServiceDown
		if errors.Is(err, context.DeadlineExceeded) {
			code = ai.ErrCodeTimeout
		}
		return &ai.ProviderError{Provider: "webhook", Code: code, Message: "workflow engine unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ai.ProviderError{
			Provider: "webhook",
			Code:     ai.ErrCodeServiceDown,
			Message:  fmt.Sprintf("workflow engine returned status %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ai.ProviderError{Provider: "webhook", Code: ai.ErrCodeMalformed, Message: "failed to decode workflow response", Err: err}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func init() {
	ai.RegisterProvider("webhook", func() (ai.Provider, error) {
		return NewClient(NewConfig()), nil
	})
}
