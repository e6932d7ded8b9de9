// Package provider defines the inference contract used by conversation
// sessions. Concrete backends live in modules/provider/* and register
// themselves as the "provider.inference" service.
package provider

import "context"

// ServiceName is the service registry key under which the active
// inference provider is published.
const ServiceName = "provider.inference"

// Provider is the interface for communicating with an LLM.
// Implementations receive the full conversation on every call and return
// a single reply. They must not add retries or timeouts of their own.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// HealthChecker is an optional interface that providers may implement
// so the gateway health endpoint can check them.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
