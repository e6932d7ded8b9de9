package anthropic

import (
	"log/slog"
	"strings"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/flemzord/relaychat/internal/provider"
)

// convertRequest transforms a CompletionRequest into Anthropic SDK
// parameters. Leading system messages move to the dedicated System field.
func convertRequest(req provider.CompletionRequest, cfg *Config, logger *slog.Logger) sdkanthropic.MessageNewParams {
	system, messages := splitSystemMessages(req.Messages)

	return sdkanthropic.MessageNewParams{
		Model:     sdkanthropic.Model(cfg.Model),
		MaxTokens: int64(cfg.MaxTokens),
		Messages:  convertMessages(messages, logger),
		System:    system,
	}
}

// splitSystemMessages extracts leading system messages into Anthropic's
// System parameter format and returns the remaining messages.
func splitSystemMessages(msgs []provider.Message) ([]sdkanthropic.TextBlockParam, []provider.Message) {
	var system []sdkanthropic.TextBlockParam
	idx := 0
	for ; idx < len(msgs) && msgs[idx].Role == provider.MessageRoleSystem; idx++ {
		system = append(system, sdkanthropic.TextBlockParam{Text: msgs[idx].Content})
	}
	return system, msgs[idx:]
}

// convertMessages maps user and assistant turns one to one. The API has no
// inline system role, so later system messages are dropped with a warning.
func convertMessages(msgs []provider.Message, logger *slog.Logger) []sdkanthropic.MessageParam {
	result := make([]sdkanthropic.MessageParam, 0, len(msgs))
	for i, msg := range msgs {
		switch msg.Role {
		case provider.MessageRoleUser:
			result = append(result, sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock(msg.Content)))
		case provider.MessageRoleAssistant:
			result = append(result, sdkanthropic.NewAssistantMessage(sdkanthropic.NewTextBlock(msg.Content)))
		default:
			if logger != nil {
				logger.Warn("dropping message with unsupported role", "index", i, "role", string(msg.Role))
			}
		}
	}
	return result
}

// convertResponse joins the text blocks of msg into a single reply.
func convertResponse(msg *sdkanthropic.Message) (provider.CompletionResponse, error) {
	var parts []string
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(sdkanthropic.TextBlock); ok {
			parts = append(parts, v.Text)
		}
	}
	if len(parts) == 0 {
		return provider.CompletionResponse{}, provider.ErrEmptyResponse
	}

	return provider.CompletionResponse{
		Content: strings.Join(parts, "\n"),
		Usage: provider.TokenUsage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}
