// Package notify turns pipeline events into staff notifications.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-custom-goods/internal/kafka"
	"github.com/ariefcatur/go-custom-goods/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Deduper is satisfied by *redisx.Deduper.
type Deduper interface {
	Claim(ctx context.Context, id string) (bool, error)
}

// Notification is what gets delivered for one event.
type Notification struct {
	EventID    string `json:"event_id"`
	CustomerID int    `json:"customer_id"`
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	Closed     bool   `json:"closed"`
	TraceID    string `json:"trace_id,omitempty"`
}

// Sink delivers notifications. LogSink is the only implementation so far.
type Sink interface {
	Notify(ctx context.Context, n Notification) error
}

type Service struct {
	Dedup Deduper
	Sink  Sink
	Log   *zap.Logger
}

// HandleEvent is installed as the consumer handler. Unknown event types and
// duplicates are acknowledged without a notification.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env pipeline.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// a poison message would otherwise block the partition
		s.Log.Warn("dropping undecodable event", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}

	n, ok, err := build(env)
	if err != nil {
		s.Log.Warn("dropping event with bad payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}

	if s.Dedup != nil && env.EventID != "" {
		first, err := s.Dedup.Claim(ctx, env.EventID)
		if err != nil {
			return fmt.Errorf("dedup %s: %w", env.EventID, err)
		}
		if !first {
			s.Log.Debug("duplicate event", zap.String("event_id", env.EventID))
			return nil
		}
	}
	return s.Sink.Notify(ctx, n)
}

func build(env pipeline.Envelope) (Notification, bool, error) {
	n := Notification{EventID: env.EventID, Kind: env.EventType, TraceID: env.TraceID}
	switch env.EventType {
	case pipeline.EventCustomerCreated:
		p, err := kafkax.UnwrapPayload[pipeline.CustomerCreatedPayload](env.Payload)
		if err != nil {
			return n, false, err
		}
		n.CustomerID = p.CustomerID
		n.Text = fmt.Sprintf("New customer %s", p.Name)
		if p.Stage != nil {
			n.Text += " in " + *p.Stage
		}
	case pipeline.EventCustomerMoved:
		p, err := kafkax.UnwrapPayload[pipeline.CustomerMovedPayload](env.Payload)
		if err != nil {
			return n, false, err
		}
		n.CustomerID = p.CustomerID
		n.Closed = pipeline.Terminal(p.ToStage)
		n.Text = fmt.Sprintf("%s moved to %s", p.Name, p.ToStage)
	case pipeline.EventCustomerDeleted:
		p, err := kafkax.UnwrapPayload[pipeline.CustomerDeletedPayload](env.Payload)
		if err != nil {
			return n, false, err
		}
		n.CustomerID = p.CustomerID
		n.Text = fmt.Sprintf("Customer %d removed", p.CustomerID)
	default:
		return n, false, nil
	}
	return n, true, nil
}

// LogSink writes notifications to the structured log. Closed orders are
// logged at warn so they stand out.
type LogSink struct{ Log *zap.Logger }

func (l LogSink) Notify(ctx context.Context, n Notification) error {
	fields := []zap.Field{
		zap.String("event_id", n.EventID),
		zap.String("kind", n.Kind),
		zap.Int("customer_id", n.CustomerID),
		zap.String("trace_id", n.TraceID),
	}
	if n.Closed {
		l.Log.Warn("order closed: "+n.Text, fields...)
		return nil
	}
	l.Log.Info(n.Text, fields...)
	return nil
}
