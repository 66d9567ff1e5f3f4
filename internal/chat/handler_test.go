package chat_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"datalab-backend/internal/chat"
	"datalab-backend/internal/llm"
)

func newChatRouter(t *testing.T, client llm.Client, configured bool) (*gin.Engine, *chat.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, repo := newChatService(t, client, configured)
	router := gin.New()
	chat.NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router, repo
}

func postJSON(router *gin.Engine, path, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestChatEndpointRepliesSynchronously(t *testing.T) {
	router, _ := newChatRouter(t, &stubClient{reply: "sure thing"}, true)

	resp := postJSON(router, "/api/v1/chat", `{"message": "hello", "session_id": "s1"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body chat.Reply
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Reply != "sure thing" || body.Status != chat.StatusSuccess {
		t.Fatalf("unexpected reply payload: %+v", body)
	}
	if body.MaxTokens != llm.MaxOutputTokens {
		t.Fatalf("expected max_tokens %d, got %d", llm.MaxOutputTokens, body.MaxTokens)
	}
}

func TestChatEndpointWithoutProvider(t *testing.T) {
	router, _ := newChatRouter(t, &stubClient{}, false)

	resp := postJSON(router, "/api/v1/chat", `{"message": "hello"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "no active provider configured") {
		t.Fatalf("expected provider error in body, got %s", resp.Body.String())
	}
}

func TestChatEndpointEmptyMessage(t *testing.T) {
	router, _ := newChatRouter(t, &stubClient{}, true)

	resp := postJSON(router, "/api/v1/chat", `{"message": ""}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestChatClearEndpoint(t *testing.T) {
	router, _ := newChatRouter(t, &stubClient{}, true)

	if resp := postJSON(router, "/api/v1/chat", `{"message": "hello", "session_id": "s1"}`); resp.Code != http.StatusOK {
		t.Fatalf("chat send failed: %d", resp.Code)
	}

	resp := postJSON(router, "/api/v1/chat/clear", `{"session_id": "s1"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Deleted != 2 {
		t.Fatalf("expected 2 deleted messages, got %d", body.Deleted)
	}
}

func TestChatExportEndpoint(t *testing.T) {
	router, _ := newChatRouter(t, &stubClient{reply: "exported"}, true)

	if resp := postJSON(router, "/api/v1/chat", `{"message": "hello", "session_id": "s1"}`); resp.Code != http.StatusOK {
		t.Fatalf("chat send failed: %d", resp.Code)
	}

	resp := postJSON(router, "/api/v1/chat/export", `{"session_id": "s1"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if disposition := resp.Header().Get("Content-Disposition"); !strings.Contains(disposition, "chat_history_") {
		t.Fatalf("expected attachment disposition, got %q", disposition)
	}
	var body struct {
		Messages []chat.Message `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Fatalf("expected 2 exported messages, got %d", len(body.Messages))
	}
}
