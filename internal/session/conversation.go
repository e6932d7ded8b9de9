// Package session owns per-session conversation state: the transcript held
// in memory, its persisted copy, and the serialization of work per session
// identifier.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/flemzord/relaychat/internal/memory"
	"github.com/flemzord/relaychat/internal/provider"
)

// DefaultID is the session identifier used when a request names none.
const DefaultID = "default"

// ErrInference marks errors returned by the inference provider, as
// opposed to storage failures.
var ErrInference = errors.New("inference failed")

// SendResult is the outcome of a successful Send.
type SendResult struct {
	Response string             `json:"response"`
	History  []provider.Message `json:"history"`
}

// ClearResult is the outcome of a successful Clear.
type ClearResult struct {
	Success bool `json:"success"`
}

// Conversation is the live state of one session. It is not safe for
// concurrent use; Manager serializes access per identifier.
//
// The in-memory history always equals the last successfully persisted
// history: a turn that fails during inference or persistence leaves no
// trace.
type Conversation struct {
	id        string
	store     memory.KV
	inference provider.Provider
	history   []provider.Message
}

// Open loads the persisted history for id and returns a live Conversation.
// A session that was never written starts empty. The load happens exactly
// once; later changes to the store are not picked up.
func Open(ctx context.Context, id string, store memory.KV, inference provider.Provider) (*Conversation, error) {
	history, err := memory.LoadHistory(ctx, store, id)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", id, err)
	}
	return &Conversation{
		id:        id,
		store:     store,
		inference: inference,
		history:   history,
	}, nil
}

// fresh returns a Conversation with an empty history, skipping the load.
func fresh(id string, store memory.KV, inference provider.Provider) *Conversation {
	return &Conversation{
		id:        id,
		store:     store,
		inference: inference,
		history:   []provider.Message{},
	}
}

// ID returns the session identifier.
func (c *Conversation) ID() string { return c.id }

// Len returns the number of messages in the history.
func (c *Conversation) Len() int { return len(c.history) }

// History returns a copy of the full history.
func (c *Conversation) History() []provider.Message {
	return slices.Clone(c.history)
}

// Send appends message as a user turn, asks the inference provider for a
// reply using the complete history, appends the reply and persists the
// whole transcript.
func (c *Conversation) Send(ctx context.Context, message string) (SendResult, error) {
	mark := len(c.history)
	c.history = append(c.history, provider.UserMessage(message))

	resp, err := c.inference.Complete(ctx, provider.CompletionRequest{
		Messages: slices.Clone(c.history),
	})
	if err != nil {
		c.history = c.history[:mark]
		return SendResult{}, fmt.Errorf("session %q: %w: %w", c.id, ErrInference, err)
	}

	c.history = append(c.history, provider.AssistantMessage(resp.Content))

	if err := memory.SaveHistory(ctx, c.store, c.id, c.history); err != nil {
		c.history = c.history[:mark]
		return SendResult{}, fmt.Errorf("session %q: %w", c.id, err)
	}

	return SendResult{
		Response: resp.Content,
		History:  slices.Clone(c.history),
	}, nil
}

// Clear empties the history and removes everything stored for the session.
// Clearing an empty session succeeds.
func (c *Conversation) Clear(ctx context.Context) (ClearResult, error) {
	c.history = []provider.Message{}
	if err := c.store.DeleteAll(ctx, c.id); err != nil {
		return ClearResult{}, fmt.Errorf("session %q: clear: %w", c.id, err)
	}
	return ClearResult{Success: true}, nil
}
