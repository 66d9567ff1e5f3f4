package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestTemperatureFor(t *testing.T) {
	cases := []struct {
		task string
		want float32
	}{
		{TaskCleaning, 0.2},
		{TaskLabeling, 0.2},
		{TaskChat, 0.9},
		{"unknown", 0.8},
		{"", 0.8},
	}
	for _, tc := range cases {
		if got := TemperatureFor(tc.task); got != tc.want {
			t.Fatalf("TemperatureFor(%q) = %v, want %v", tc.task, got, tc.want)
		}
	}
}

type stubClient struct{}

func (stubClient) ChatCompletion(ctx context.Context, messages []Message, taskType string) (string, error) {
	return "ok", nil
}

func (stubClient) ValidateAPIKey(ctx context.Context) error { return nil }

func TestFactoryCreate(t *testing.T) {
	factory := Factory{}
	factory.Register("stub", func(creds Credentials) (Client, error) {
		return stubClient{}, nil
	})

	client, err := factory.Create(Credentials{Kind: "stub", APIKey: "key"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if client == nil {
		t.Fatal("expected client")
	}
}

func TestFactoryCreateNormalizesKind(t *testing.T) {
	factory := Factory{}
	factory.Register("Stub", func(creds Credentials) (Client, error) {
		return stubClient{}, nil
	})

	if _, err := factory.Create(Credentials{Kind: " STUB ", APIKey: "key"}); err != nil {
		t.Fatalf("Create with unnormalized kind: %v", err)
	}
}

func TestFactoryCreateUnknownKind(t *testing.T) {
	factory := Factory{}

	_, err := factory.Create(Credentials{Kind: "nope", APIKey: "key"})
	if !errors.Is(err, ErrUnsupportedProvider) {
		t.Fatalf("expected ErrUnsupportedProvider, got %v", err)
	}
}

func TestFactoryCreateMissingCredentials(t *testing.T) {
	factory := Factory{}
	factory.Register("stub", func(creds Credentials) (Client, error) {
		return stubClient{}, nil
	})

	if _, err := factory.Create(Credentials{Kind: "", APIKey: "key"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials for empty kind, got %v", err)
	}
	if _, err := factory.Create(Credentials{Kind: "stub", APIKey: "  "}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials for empty key, got %v", err)
	}
}

func TestTruncateMessagesKeepsSystemMessage(t *testing.T) {
	long := strings.Repeat("word ", 200)
	messages := []Message{
		{Role: RoleSystem, Content: "system prompt"},
		{Role: RoleUser, Content: long},
		{Role: RoleAssistant, Content: long},
		{Role: RoleUser, Content: "latest question"},
	}

	budget := CountMessageTokens([]Message{messages[0], messages[3]}) + CountTokens(long)/2
	truncated := TruncateMessages(messages, budget)

	if len(truncated) == 0 {
		t.Fatal("expected messages to survive truncation")
	}
	if truncated[0].Role != RoleSystem {
		t.Fatalf("expected leading system message to survive, got role %q", truncated[0].Role)
	}
	if CountMessageTokens(truncated) > budget {
		t.Fatalf("expected truncated history to fit budget %d, got %d", budget, CountMessageTokens(truncated))
	}
	last := truncated[len(truncated)-1]
	if last.Content != "latest question" {
		t.Fatalf("expected newest message to survive, got %q", last.Content)
	}
}

func TestTruncateMessagesKeepsFinalExchange(t *testing.T) {
	long := strings.Repeat("word ", 400)
	messages := []Message{
		{Role: RoleSystem, Content: "system prompt"},
		{Role: RoleUser, Content: long},
	}

	// Budget far below the pair's cost: neither the system message nor the
	// current user turn may be dropped.
	truncated := TruncateMessages(messages, 10)

	if len(truncated) != 2 {
		t.Fatalf("expected system and user messages to survive, got %+v", truncated)
	}
	if truncated[0].Role != RoleSystem || truncated[1].Role != RoleUser {
		t.Fatalf("unexpected roles after truncation: %+v", truncated)
	}

	lone := TruncateMessages([]Message{{Role: RoleUser, Content: long}}, 10)
	if len(lone) != 1 {
		t.Fatalf("expected a lone message to survive, got %+v", lone)
	}
}

func TestTruncateMessagesNoSystem(t *testing.T) {
	long := strings.Repeat("word ", 200)
	messages := []Message{
		{Role: RoleUser, Content: long},
		{Role: RoleUser, Content: "recent"},
	}

	budget := CountMessageTokens([]Message{{Role: RoleUser, Content: "recent"}}) + 4
	truncated := TruncateMessages(messages, budget)

	if len(truncated) != 1 || truncated[0].Content != "recent" {
		t.Fatalf("expected only the newest message, got %+v", truncated)
	}
}
