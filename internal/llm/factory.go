package llm

import (
	"fmt"
	"strings"
)

// Credentials identifies a provider and how to authenticate against it.
// BaseURL is optional and overrides the provider's default endpoint.
type Credentials struct {
	Kind    string
	APIKey  string
	BaseURL string
}

// Constructor builds a Client from credentials.
type Constructor func(creds Credentials) (Client, error)

// Factory maps provider kinds to constructors. New provider kinds are added
// by registering a constructor, not by editing caller code.
type Factory map[string]Constructor

// Register adds a constructor for kind, replacing any previous one.
func (f Factory) Register(kind string, build Constructor) {
	f[strings.ToLower(strings.TrimSpace(kind))] = build
}

// Create builds a client for the named provider. It returns
// ErrMissingCredentials when kind or API key is empty and
// ErrUnsupportedProvider for unknown kinds; it never panics past this
// boundary.
func (f Factory) Create(creds Credentials) (Client, error) {
	kind := strings.ToLower(strings.TrimSpace(creds.Kind))
	if kind == "" || strings.TrimSpace(creds.APIKey) == "" {
		return nil, ErrMissingCredentials
	}
	build, ok := f[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, kind)
	}
	client, err := build(creds)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", kind, err)
	}
	return client, nil
}
