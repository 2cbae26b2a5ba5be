package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient implements CompletionClient with the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration, log *zap.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, timeout: timeout, log: log.Named("gemini")}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userInput string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(userInput))
	elapsed := time.Since(start)
	completionDuration.WithLabelValues("gemini", c.model).Observe(elapsed.Seconds())

	if err != nil {
		err = classifyGeminiError(err)
		completionRequestsTotal.WithLabelValues("gemini", c.model, outcomeLabel(err)).Inc()
		c.log.Error("completion request failed", zap.String("model", c.model), zap.Duration("latency", elapsed), zap.Error(err))
		return "", err
	}

	text := geminiText(resp)
	if strings.TrimSpace(text) == "" {
		completionRequestsTotal.WithLabelValues("gemini", c.model, "empty").Inc()
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	completionRequestsTotal.WithLabelValues("gemini", c.model, "success").Inc()
	return text, nil
}

// geminiText joins the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

func classifyGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return statusError(gerr.Code, err)
	}
	var aerr *apierror.APIError
	if errors.As(err, &aerr) && aerr.HTTPCode() > 0 {
		return statusError(aerr.HTTPCode(), err)
	}
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}
