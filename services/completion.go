package services

import (
	"context"
	"fmt"
	"net/http"
)

// CompletionClient sends one system instruction and one user message to a
// text-generation backend and returns the first generated message.
//
// Implementations wrap failures with ErrRateLimited (HTTP 429),
// ErrPaymentRequired (HTTP 402) or ErrGenerationFailed (everything else,
// including empty responses and timeouts).
type CompletionClient interface {
	Complete(ctx context.Context, systemPrompt, userInput string) (string, error)
}

// statusError classifies a non-success HTTP status from a completion backend.
func statusError(status int, cause error) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d: %w", ErrRateLimited, status, cause)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%w: status %d: %w", ErrPaymentRequired, status, cause)
	default:
		return fmt.Errorf("%w: status %d: %w", ErrGenerationFailed, status, cause)
	}
}
