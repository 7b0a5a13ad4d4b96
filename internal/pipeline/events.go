package pipeline

import (
	"encoding/json"
	"time"
)

const (
	EventCustomerCreated = "CustomerCreated"
	EventCustomerMoved   = "CustomerMoved"
	EventCustomerDeleted = "CustomerDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // customer id
	Payload       json.RawMessage `json:"payload"`
}

type CustomerCreatedPayload struct {
	CustomerID int     `json:"customer_id"`
	Name       string  `json:"name"`
	StageID    *int    `json:"stage_id,omitempty"`
	Stage      *string `json:"stage,omitempty"`
}

type CustomerMovedPayload struct {
	CustomerID  int    `json:"customer_id"`
	Name        string `json:"name"`
	FromStageID *int   `json:"from_stage_id,omitempty"`
	ToStageID   int    `json:"to_stage_id"`
	ToStage     string `json:"to_stage"`
}

type CustomerDeletedPayload struct {
	CustomerID int `json:"customer_id"`
}
