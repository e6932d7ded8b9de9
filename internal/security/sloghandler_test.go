package security

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(r *Redactor, level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactingHandler(inner, r)), &buf
}

func TestRedactingHandler_Redacts(t *testing.T) {
	t.Parallel()

	const secret = "cf-secret-token-value"

	tests := []struct {
		name string
		log  func(l *slog.Logger)
	}{
		{"message", func(l *slog.Logger) { l.Info("using " + secret) }},
		{"attribute", func(l *slog.Logger) { l.Info("request", "api_key", secret) }},
		{"with attrs", func(l *slog.Logger) { l.With("api_key", secret).Info("request") }},
		{"with group", func(l *slog.Logger) { l.WithGroup("provider").Info("request", "key", secret) }},
		{"group attr", func(l *slog.Logger) {
			l.Info("request", slog.Group("auth", slog.String("token", secret)))
		}},
		{"error value", func(l *slog.Logger) {
			l.Error("inference failed", "error", errors.New("401 for token "+secret))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRedactor()
			r.AddLiteral(secret)
			logger, buf := newTestLogger(r, slog.LevelDebug)

			tt.log(logger)

			out := buf.String()
			if strings.Contains(out, secret) {
				t.Errorf("secret found in log output: %s", out)
			}
			if !strings.Contains(out, RedactPlaceholder) {
				t.Errorf("expected placeholder in output: %s", out)
			}
		})
	}
}

func TestRedactingHandler_Enabled(t *testing.T) {
	t.Parallel()

	handler := NewRedactingHandler(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}), NewRedactor())

	if handler.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be disabled with warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled with warn level")
	}
}

func TestRedactingHandler_NoSecrets(t *testing.T) {
	t.Parallel()

	logger, buf := newTestLogger(NewRedactor(), slog.LevelDebug)
	logger.Info("chat turn", "session", "default", "history_len", 2)

	out := buf.String()
	if strings.Contains(out, RedactPlaceholder) {
		t.Errorf("unexpected redaction in output: %s", out)
	}
	if !strings.Contains(out, "session=default") || !strings.Contains(out, "history_len=2") {
		t.Errorf("attributes missing from output: %s", out)
	}
}
