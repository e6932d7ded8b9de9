package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/flemzord/relaychat/internal/provider"
	"github.com/flemzord/relaychat/internal/session"
)

// chatRequest is the body of POST /chat.
type chatRequest struct {
	Message   *string `json:"message"`
	SessionID string  `json:"sessionId"`
}

// clearRequest is the body of POST /clear.
type clearRequest struct {
	SessionID string `json:"sessionId"`
}

// errorResponse is the body of a 400 reply.
type errorResponse struct {
	Error string `json:"error"`
}

var errMissingMessage = errors.New(`"message" must be a string`)

// handleChat returns an http.HandlerFunc for POST /chat.
func (g *Gateway) handleChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := g.decode(w, r, &req); err != nil {
			writeBadRequest(w, err)
			return
		}
		if req.Message == nil {
			writeBadRequest(w, errMissingMessage)
			return
		}

		id := g.sessionID(req.SessionID)
		res, err := g.sessions.Chat(detached(r), id, *req.Message)
		if err != nil {
			g.fail(w, "chat", id, err)
			return
		}

		g.metrics.turns.Inc()
		writeJSON(w, http.StatusOK, res)
	}
}

// handleClear returns an http.HandlerFunc for POST /clear.
func (g *Gateway) handleClear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clearRequest
		if err := g.decode(w, r, &req); err != nil {
			writeBadRequest(w, err)
			return
		}

		id := g.sessionID(req.SessionID)
		res, err := g.sessions.Clear(detached(r), id)
		if err != nil {
			g.fail(w, "clear", id, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Not found", http.StatusNotFound)
}

// sessionID resolves the identifier named in a request body.
func (g *Gateway) sessionID(raw string) string {
	if raw == "" {
		return g.config.DefaultSession
	}
	return raw
}

// decode reads a single JSON value of at most MaxBodyBytes into dst.
// Anything but whitespace after that value is rejected.
func (g *Gateway) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, g.config.MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON body: unexpected data after the JSON object")
	}
	return nil
}

// fail logs err, counts it and replies 500 without leaking details.
func (g *Gateway) fail(w http.ResponseWriter, op, id string, err error) {
	kind := "storage"
	if errors.Is(err, session.ErrInference) {
		kind = provider.Kind(err)
	}
	g.metrics.errors.WithLabelValues(kind).Inc()
	g.logger.Error("request failed", "op", op, "session", id, "kind", kind, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
