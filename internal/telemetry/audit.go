package telemetry

import (
	"context"
	"time"

	"linkup-service/internal/logger"
)

// Publisher is the slice of the event publisher the audit trail needs.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}, headers map[string]string) error
}

// AuditEmitter writes audit records for sensitive user actions (account
// creation, follow decisions, job posting changes) to the event broker.
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	environment string
}

// AuditEnvelope is the broker-side audit record shape.
type AuditEnvelope struct {
	SchemaVersion int    `json:"schema_version"`
	EventType     string `json:"event_type"`
	OccurredAt    string `json:"occurred_at"`
	Service       string `json:"service"`
	Environment   string `json:"environment"`
	RequestID     string `json:"request_id"`
	UserID        *int   `json:"user_id,omitempty"`
	Action        string `json:"action"`
	Detail        string `json:"detail"`
}

// NewAuditEmitter constructs an AuditEmitter.
func NewAuditEmitter(publisher Publisher, routingKey, environment string) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  routingKey,
		environment: environment,
	}
}

// Emit publishes an audit record. Best effort: failures are logged, never
// surfaced to the request path.
func (e *AuditEmitter) Emit(ctx context.Context, action, detail, requestID string, userID *int) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       "linkup-service",
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Action:        action,
		Detail:        detail,
	}

	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if err := e.publisher.Publish(ctx, e.routingKey, envelope, headers); err != nil {
		logger.Log.WithError(err).Warn("audit publish failed")
	}
}
