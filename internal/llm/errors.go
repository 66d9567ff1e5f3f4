package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedProvider is returned by the factory for unknown kinds.
	ErrUnsupportedProvider = errors.New("unsupported provider")
	// ErrMissingCredentials is returned when kind or API key is empty.
	ErrMissingCredentials = errors.New("missing provider credentials")
	// ErrEmptyMessages is returned when a chat call carries no messages.
	ErrEmptyMessages = errors.New("messages must not be empty")
	// ErrEmptyReply is returned when a provider answered without content.
	ErrEmptyReply = errors.New("provider returned empty reply")
)

// TransientError marks a provider failure that was retried and may succeed
// later (rate limiting, upstream 5xx).
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transient provider error (http %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("transient provider error (http %d)", e.Status)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err wraps a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
