package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"datalab-backend/internal/apiconfig"
	"datalab-backend/internal/llm"
	"datalab-backend/internal/prompts"
	"datalab-backend/internal/shared/telemetry"
)

// historyTokenBudget bounds the token cost of the outbound message list.
// Oldest history is dropped first; the system prompt survives truncation.
const historyTokenBudget = 3072

// Reply is the synchronous result of one chat turn.
type Reply struct {
	Reply      string `json:"reply"`
	Status     string `json:"status"`
	TokensUsed int    `json:"tokens_used"`
	MaxTokens  int    `json:"max_tokens"`
}

// Service runs the multi-turn chat flow on the shared provider layer.
type Service struct {
	Repo      Repo
	Prompts   prompts.Repo
	Providers *apiconfig.Service
}

// NewService constructs a Service.
func NewService(repo Repo, promptRepo prompts.Repo, providers *apiconfig.Service) *Service {
	return &Service{Repo: repo, Prompts: promptRepo, Providers: providers}
}

// Send runs one chat turn: bounded prior history plus the new user message,
// with the default chat system prompt prepended when one exists. Both the
// user message and the assistant reply are persisted with an outcome status.
// A missing provider aborts before anything is persisted.
func (s *Service) Send(ctx context.Context, sessionID, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, errors.New("message is required")
	}
	if sessionID = strings.TrimSpace(sessionID); sessionID == "" {
		sessionID = DefaultSession
	}

	client, _, err := s.Providers.ActiveClient(ctx)
	if err != nil {
		if errors.Is(err, apiconfig.ErrNotConfigured) || errors.Is(err, llm.ErrMissingCredentials) {
			return Reply{}, ErrNoActiveProvider
		}
		return Reply{}, err
	}

	history, err := s.Repo.ListRecent(ctx, sessionID, HistoryLimit)
	if err != nil {
		return Reply{}, fmt.Errorf("load history: %w", err)
	}

	var messages []llm.Message
	if prompt, err := s.Prompts.Default(ctx, prompts.TypeChat); err == nil {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: prompt.Content})
	} else if !errors.Is(err, prompts.ErrNotFound) {
		return Reply{}, fmt.Errorf("resolve chat prompt: %w", err)
	}
	for _, m := range history {
		messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})
	messages = llm.TruncateMessages(messages, historyTokenBudget)

	userMsg, err := s.Repo.Create(ctx, Message{
		SessionID: sessionID,
		Role:      llm.RoleUser,
		Content:   message,
		Status:    StatusPending,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("persist user message: %w", err)
	}

	reply, err := client.ChatCompletion(ctx, messages, llm.TaskChat)
	if err != nil {
		if uerr := s.Repo.UpdateStatus(ctx, userMsg.ID, StatusFailed); uerr != nil {
			telemetry.Warn("chat.status_update_failed", map[string]any{
				"session_id": sessionID,
				"message_id": userMsg.ID,
				"error":      uerr.Error(),
			})
		}
		return Reply{}, fmt.Errorf("chat completion: %w", err)
	}

	if err := s.Repo.UpdateStatus(ctx, userMsg.ID, StatusSuccess); err != nil {
		telemetry.Warn("chat.status_update_failed", map[string]any{
			"session_id": sessionID,
			"message_id": userMsg.ID,
			"error":      err.Error(),
		})
	}
	if _, err := s.Repo.Create(ctx, Message{
		SessionID: sessionID,
		Role:      llm.RoleAssistant,
		Content:   reply,
		Status:    StatusSuccess,
	}); err != nil {
		telemetry.Warn("chat.persist_reply_failed", map[string]any{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	return Reply{
		Reply:      reply,
		Status:     StatusSuccess,
		TokensUsed: llm.CountMessageTokens(messages) + llm.CountTokens(reply),
		MaxTokens:  llm.MaxOutputTokens,
	}, nil
}

// Clear deletes all messages of a session and reports the count.
func (s *Service) Clear(ctx context.Context, sessionID string) (int64, error) {
	if sessionID = strings.TrimSpace(sessionID); sessionID == "" {
		sessionID = DefaultSession
	}
	return s.Repo.DeleteBySession(ctx, sessionID)
}

// History returns every message of a session in chronological order.
func (s *Service) History(ctx context.Context, sessionID string) ([]Message, error) {
	if sessionID = strings.TrimSpace(sessionID); sessionID == "" {
		sessionID = DefaultSession
	}
	return s.Repo.ListBySession(ctx, sessionID)
}
