// Package gemini is an alternative provider that talks to the Gemini API
// directly instead of going through a webhook workflow.
package gemini

import (
	"context"
	"encoding/json"
	"strings"

	"google.golang.org/genai"

	"github.com/Deekshi05/AceAI/internal/ai"
	"github.com/Deekshi05/AceAI/internal/prompts"
)

type Client struct {
	client  *genai.Client
	config  *Config
	prompts *prompts.PromptManager
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	pm, err := prompts.NewPromptManager()
	if err != nil {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "Failed to load prompt templates",
			Err:      err,
		}
	}

	return &Client{
		client:  client,
		config:  config,
		prompts: pm,
	}, nil
}

func (c *Client) GenerateQuestions(ctx context.Context, req ai.QuestionRequest) ([]ai.GeneratedQuestion, error) {
	prompt, err := c.prompts.BuildPrompt("questions", prompts.Vars{
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
	})
	if err != nil {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "Failed to build prompt",
			Err:      err,
		}
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var questions []ai.GeneratedQuestion
	if err := json.Unmarshal([]byte(StripFences(text)), &questions); err != nil {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeMalformed,
			Message:  "Model did not return a JSON question array",
			Err:      err,
		}
	}
	if len(questions) == 0 {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeMalformed,
			Message:  "Model returned an empty question array",
		}
	}
	return questions, nil
}

func (c *Client) RespondToAnswer(ctx context.Context, req ai.FeedbackRequest) (*ai.Reply, error) {
	task := "feedback"
	if req.Type == ai.RequestTypeUserQuery {
		task = "clarify"
	}

	prompt, err := c.prompts.BuildPrompt(task, prompts.Vars{
		Question:       req.Question,
		ExpectedAnswer: req.ExpectedAnswer,
		UserAnswer:     req.UserResponse,
		UserQuery:      req.UserQuery,
	})
	if err != nil {
		return nil, &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeInvalidInput,
			Message:  "Failed to build prompt",
			Err:      err,
		}
	}

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var reply ai.Reply
	if err := json.Unmarshal([]byte(StripFences(text)), &reply); err != nil {
		// some model turns come back as bare prose; keep it and let
		// classification sort it out downstream
		reply = ai.Reply{Message: text}
	}
	return &reply, nil
}

func (c *Client) GetProviderName() string {
	return "gemini"
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(
		ctx,
		c.config.Model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		return "", &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeServiceDown,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}
	if result == nil {
		return "", &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeMalformed,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return "", &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeMalformed,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}
	if text == "" {
		return "", &ai.ProviderError{
			Provider: "gemini",
			Code:     ai.ErrCodeMalformed,
			Message:  "Empty response generated",
		}
	}
	return text, nil
}

// StripFences removes a markdown code fence the model sometimes wraps
// its JSON in.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
