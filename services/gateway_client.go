package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GatewayConfig configures an OpenAI-compatible chat completions endpoint.
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// HTTPClient is optional; tests inject a mocked transport through it.
	HTTPClient *http.Client
}

// GatewayClient implements CompletionClient on top of go-openai.
type GatewayClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

func NewGatewayClient(cfg GatewayConfig, log *zap.Logger) *GatewayClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}
	return &GatewayClient{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		log:     log.Named("gateway"),
	}
}

func (c *GatewayClient) Complete(ctx context.Context, systemPrompt, userInput string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userInput},
		},
	})
	elapsed := time.Since(start)
	completionDuration.WithLabelValues("gateway", c.model).Observe(elapsed.Seconds())

	if err != nil {
		err = classifyGatewayError(err)
		completionRequestsTotal.WithLabelValues("gateway", c.model, outcomeLabel(err)).Inc()
		c.log.Error("completion request failed", zap.String("model", c.model), zap.Duration("latency", elapsed), zap.Error(err))
		return "", err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		completionRequestsTotal.WithLabelValues("gateway", c.model, "empty").Inc()
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}

	completionRequestsTotal.WithLabelValues("gateway", c.model, "success").Inc()
	c.log.Debug("completion received",
		zap.String("model", c.model),
		zap.Duration("latency", elapsed),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

func classifyGatewayError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, err)
	}
	// transport failures, timeouts, cancellation
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}
