package openai

import (
	"context"
	"errors"
	"fmt"

	openaiapi "github.com/sashabaranov/go-openai"

	"github.com/flemzord/relaychat/internal/provider"
)

// mapError maps go-openai errors to provider sentinel errors. Context
// errors pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *openaiapi.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "context_length_exceeded" {
			return fmt.Errorf("%w: %s", provider.ErrContextLength, apiErr.Message)
		}
		return provider.StatusError(apiErr.HTTPStatusCode, []byte(apiErr.Message))
	}

	var reqErr *openaiapi.RequestError
	if errors.As(err, &reqErr) {
		return provider.StatusError(reqErr.HTTPStatusCode, reqErr.Body)
	}

	return fmt.Errorf("%w: openai: %w", provider.ErrProviderDown, err)
}
