package session

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/relaychat/internal/memory"
	"github.com/flemzord/relaychat/internal/provider"
)

const tracerName = "github.com/flemzord/relaychat/internal/session"

// Manager maps session identifiers to live Conversations and runs every
// operation for a given identifier one at a time. Identifiers are compared
// by exact string equality; different identifiers run in parallel.
type Manager struct {
	store     memory.KV
	inference provider.Provider
	lanes     *laneLock
	tracer    trace.Tracer

	mu    sync.Mutex
	convs map[string]*Conversation
}

// NewManager creates a Manager backed by store and inference.
func NewManager(store memory.KV, inference provider.Provider) *Manager {
	return &Manager{
		store:     store,
		inference: inference,
		lanes:     newLaneLock(),
		tracer:    otel.Tracer(tracerName),
		convs:     make(map[string]*Conversation),
	}
}

// Chat sends message on the session named id.
func (m *Manager) Chat(ctx context.Context, id, message string) (SendResult, error) {
	ctx, span := m.tracer.Start(ctx, "session.chat",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	m.lanes.acquire(id)
	defer m.lanes.release(id)

	conv, err := m.conversation(ctx, id)
	if err != nil {
		return SendResult{}, spanError(span, err)
	}

	res, err := conv.Send(ctx, message)
	span.SetAttributes(attribute.Int("history.len", conv.Len()))
	if err != nil {
		return SendResult{}, spanError(span, err)
	}
	return res, nil
}

// Clear erases the session named id.
func (m *Manager) Clear(ctx context.Context, id string) (ClearResult, error) {
	ctx, span := m.tracer.Start(ctx, "session.clear",
		trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	m.lanes.acquire(id)
	defer m.lanes.release(id)

	// Clearing discards whatever would have been loaded, so a session
	// that is not live yet starts out empty instead of reading storage.
	m.mu.Lock()
	conv, ok := m.convs[id]
	if !ok {
		conv = fresh(id, m.store, m.inference)
		m.convs[id] = conv
	}
	m.mu.Unlock()

	res, err := conv.Clear(ctx)
	span.SetAttributes(attribute.Int("history.len", conv.Len()))
	if err != nil {
		return ClearResult{}, spanError(span, err)
	}
	return res, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.convs)
}

// conversation returns the live Conversation for id, opening it on first
// use. The caller must hold the lane for id, so Open runs at most once per
// identifier. A failed Open caches nothing and the next call retries.
func (m *Manager) conversation(ctx context.Context, id string) (*Conversation, error) {
	m.mu.Lock()
	conv, ok := m.convs[id]
	m.mu.Unlock()
	if ok {
		return conv, nil
	}

	conv, err := Open(ctx, id, m.store, m.inference)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.convs[id] = conv
	m.mu.Unlock()
	return conv, nil
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
