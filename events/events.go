package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event types published by the API.
const (
	OrderPlaced  = "order.placed"
	OrderStatus  = "order.status"
	OrderPayment = "order.payment"
	AuthOTP      = "auth.otp"
)

type Event struct {
	Type    string          `json:"type"`
	TeamID  string          `json:"team_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// New builds an event with a JSON payload.
func New(typ, teamID string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{Type: typ, TeamID: teamID, Payload: b, At: time.Now().UTC()}, nil
}

// OrdersTopic is the realtime channel carrying one team's order changes.
func OrdersTopic(teamID string) string {
	return "team:" + teamID + ":orders"
}

type Publisher interface {
	Publish(ctx context.Context, topic string, e Event) error
}

// Subscriber delivers events for a topic until the returned cancel func is called.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan Event, func(), error)
}

type Bus interface {
	Publisher
	Subscriber
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) error { return nil }
