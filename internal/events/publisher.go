package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"linkup-service/internal/logger"
	"linkup-service/internal/observability"
)

// Envelope wraps every event published to the broker.
type Envelope struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventName     string      `json:"event_name"`
	OccurredAt    string      `json:"occurred_at"`
	Service       string      `json:"service"`
	Payload       interface{} `json:"payload"`
}

// NewEnvelope builds a versioned envelope stamped with the current time.
func NewEnvelope(eventType, eventName string, payload interface{}) Envelope {
	return Envelope{
		SchemaVersion: 1,
		EventType:     eventType,
		EventName:     eventName,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       "linkup-service",
		Payload:       payload,
	}
}

// Publisher publishes service events to a topic exchange.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}, headers map[string]string) error
	Close() error
}

// NewPublisher connects to RabbitMQ, falling back to a noop publisher when
// AMQP is disabled or unreachable. Event publishing is best effort; the
// service never refuses to start because the broker is down.
func NewPublisher(amqpURL, exchange string) Publisher {
	if amqpURL == "" {
		logger.Log.Info("amqp disabled, events use noop publisher")
		return noopPublisher{reason: "empty amqp url"}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		logger.Log.WithError(err).Warn("amqp unavailable, events use noop publisher")
		return noopPublisher{reason: err.Error()}
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		logger.Log.WithError(err).Warn("amqp unavailable, events use noop publisher")
		return noopPublisher{reason: err.Error()}
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		logger.Log.WithError(err).Warn("amqp unavailable, events use noop publisher")
		return noopPublisher{reason: err.Error()}
	}

	logger.Log.WithField("exchange", exchange).Info("amqp connected")
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, event interface{}, headers map[string]string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	amqpHeaders := amqp.Table{}
	for key, value := range headers {
		amqpHeaders[key] = value
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      amqpHeaders,
		Body:         body,
	})
	if err != nil {
		logger.Log.WithError(err).Warn("amqp publish failed")
	}
	return err
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type noopPublisher struct {
	reason string
}

func (noopPublisher) Publish(ctx context.Context, routingKey string, event interface{}, headers map[string]string) error {
	logger.Log.WithField("routing_key", routingKey).Debug("noop event publish")
	return nil
}

func (noopPublisher) Close() error { return nil }

var defaultPublisher Publisher

// SetPublisher installs the process-wide publisher.
func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

// Publish sends an event through the installed publisher. A nil publisher is
// a silent no-op so call sites never need a guard.
func Publish(ctx context.Context, routingKey string, event interface{}, headers map[string]string) error {
	if defaultPublisher == nil {
		return nil
	}
	err := defaultPublisher.Publish(ctx, routingKey, event, headers)
	if err != nil {
		observability.IncAMQPPublishError()
	}
	return err
}

// BuildHeaders assembles trace propagation headers for an event.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
