// Package events publishes domain events to Pub/Sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
)

type Type string

const (
	TypeOrderCreated       Type = "order.created"
	TypeOrderStatusChanged Type = "order.status_changed"
	TypePaymentConfirmed   Type = "payment.confirmed"
	TypePaymentFailed      Type = "payment.failed"
)

// Event is a fact about one aggregate.
type Event struct {
	Type        Type
	AggregateID uuid.UUID
	Payload     any
}

// Envelope is the JSON body written to the topic.
type Envelope struct {
	Version     int             `json:"version"`
	EventID     string          `json:"eventId"`
	Type        Type            `json:"type"`
	AggregateID uuid.UUID       `json:"aggregateId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Data        json.RawMessage `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
	ResumePublish(orderingKey string)
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

// PubSubPublisher writes envelopes to one topic and waits for the server id.
// Messages are keyed by aggregate id, so every event for one order is
// delivered in publish order when the topic publisher has ordering enabled.
type PubSubPublisher struct {
	topic topicPublisher
	now   func() time.Time
}

func NewPubSubPublisher(topic *gcppubsub.Publisher) (*PubSubPublisher, error) {
	if topic == nil {
		return nil, fmt.Errorf("pubsub topic publisher required")
	}
	return &PubSubPublisher{topic: gcpTopic{topic}, now: time.Now}, nil
}

func (p *PubSubPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event.Type, err)
	}
	env := Envelope{
		Version:     1,
		EventID:     uuid.NewString(),
		Type:        event.Type,
		AggregateID: event.AggregateID,
		OccurredAt:  p.now().UTC(),
		Data:        data,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", event.Type, err)
	}
	key := event.AggregateID.String()
	msg := &gcppubsub.Message{
		Data:        body,
		OrderingKey: key,
		Attributes: map[string]string{
			"event_id":     env.EventID,
			"event_type":   string(event.Type),
			"aggregate_id": key,
			"created_at":   env.OccurredAt.Format(time.RFC3339Nano),
		},
	}
	res := p.topic.Publish(ctx, msg)
	if res == nil {
		return fmt.Errorf("publish %s: no result", event.Type)
	}
	if _, err := res.Get(ctx); err != nil {
		// a failed ordered publish pauses the key until resumed.
		p.topic.ResumePublish(key)
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

type gcpTopic struct {
	*gcppubsub.Publisher
}

func (t gcpTopic) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return t.Publisher.Publish(ctx, msg)
}

// Nop drops every event. It is used when no topic is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
