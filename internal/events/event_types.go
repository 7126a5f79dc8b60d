package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAuthCodeIssued    EventType = "authcode_issued"
	EventAccountRegistered EventType = "account_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AuthCodeIssuedPayload carries what a mailer needs to deliver the code.
type AuthCodeIssuedPayload struct {
	AuthCodeID string    `json:"authcode_id"`
	Email      string    `json:"email"`
	Code       string    `json:"-"`
	ExpiresAt  time.Time `json:"expire_datetime"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	AccountID int64  `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}
