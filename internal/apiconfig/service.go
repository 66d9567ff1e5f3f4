package apiconfig

import (
	"context"
	"fmt"
	"strings"

	"datalab-backend/internal/llm"
)

// Service manages provider credentials and builds LLM clients from them.
type Service struct {
	Repo    Repo
	Factory llm.Factory
}

// NewService constructs a Service.
func NewService(repo Repo, factory llm.Factory) *Service {
	return &Service{Repo: repo, Factory: factory}
}

// Current returns the active credentials.
func (s *Service) Current(ctx context.Context) (Config, error) {
	return s.Repo.Latest(ctx)
}

// Save persists credentials and verifies them with a round trip to the
// provider. The credentials are kept even when verification fails so the
// operator can correct a transient outage without re-entering the key.
func (s *Service) Save(ctx context.Context, cfg Config) (Config, error) {
	cfg.ServiceType = strings.ToLower(strings.TrimSpace(cfg.ServiceType))
	if _, ok := s.Factory[cfg.ServiceType]; !ok {
		return Config{}, fmt.Errorf("%w: %s", llm.ErrUnsupportedProvider, cfg.ServiceType)
	}

	saved, err := s.Repo.Upsert(ctx, cfg)
	if err != nil {
		return Config{}, err
	}

	client, err := s.clientFor(saved)
	if err != nil {
		return saved, err
	}
	if err := client.ValidateAPIKey(ctx); err != nil {
		return saved, fmt.Errorf("api key validation failed: %w", err)
	}
	return saved, nil
}

// ActiveClient builds an LLM client from the stored credentials.
func (s *Service) ActiveClient(ctx context.Context) (llm.Client, Config, error) {
	cfg, err := s.Repo.Latest(ctx)
	if err != nil {
		return nil, Config{}, err
	}
	client, err := s.clientFor(cfg)
	if err != nil {
		return nil, Config{}, err
	}
	return client, cfg, nil
}

func (s *Service) clientFor(cfg Config) (llm.Client, error) {
	return s.Factory.Create(llm.Credentials{
		Kind:    cfg.ServiceType,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
	})
}
