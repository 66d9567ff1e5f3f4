package chat

import (
	"errors"
	"time"
)

// Message statuses. A user message starts pending and is marked success or
// failed once the provider call settles.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// HistoryLimit caps how many prior messages feed the next exchange.
const HistoryLimit = 10

// DefaultSession is used when the caller does not supply a session id.
const DefaultSession = "default"

// ErrNoActiveProvider is returned when chat is attempted before provider
// credentials are configured.
var ErrNoActiveProvider = errors.New("no active provider configured")

// Message is one persisted chat record. IsValidation marks key-validation
// artifacts so history fetches can exclude them by flag.
type Message struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"sessionId"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Status       string    `json:"status"`
	IsValidation bool      `json:"isValidation,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
