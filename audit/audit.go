// Package audit emits session lifecycle events to a pluggable sink.
// The backend keeps its own audit log; this is the client-side half used
// by services embedding the SDK that feed the shared audit pipeline.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventLogin         EventType = "auth.login"
	EventLogout        EventType = "auth.logout"
	EventOTPVerified   EventType = "auth.otp_verified"
	EventOAuthMigrated EventType = "auth.oauth_migrated"
	EventTokensRotated EventType = "auth.tokens_rotated"
)

type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    uint64    `json:"userId,omitempty"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps an event with a fresh ID and the current time.
func NewEvent(eventType EventType, userID uint64, email string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Email:     email,
		Timestamp: time.Now().UTC(),
	}
}

// Sink receives events. Emission is best-effort from the session
// controller's point of view; a failing sink never blocks auth flows.
type Sink interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) error { return nil }
func (NopSink) Close() error                      { return nil }
