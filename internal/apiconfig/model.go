package apiconfig

import (
	"errors"
	"time"
)

// ErrNotConfigured is returned when no provider credentials have been saved.
var ErrNotConfigured = errors.New("no provider configured")

// Config holds the active LLM provider credentials. The most recently
// updated row wins; earlier rows are kept as history.
type Config struct {
	ID          int64     `json:"id"`
	ServiceType string    `json:"serviceType"`
	APIKey      string    `json:"-"`
	BaseURL     string    `json:"baseUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MaskedKey returns the API key with all but the last four characters hidden.
func (c Config) MaskedKey() string {
	const visible = 4
	runes := []rune(c.APIKey)
	if len(runes) <= visible {
		return "****"
	}
	masked := make([]rune, len(runes))
	for i := range runes {
		if i < len(runes)-visible {
			masked[i] = '*'
		} else {
			masked[i] = runes[i]
		}
	}
	return string(masked)
}
