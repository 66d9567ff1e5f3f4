package processing_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"datalab-backend/internal/processing"
)

func newProcessRouter(t *testing.T, client *scriptedClient, store processing.StatusStore) (*gin.Engine, *processing.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newService(t, client, store)
	router := gin.New()
	processing.NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router, svc
}

func TestSubmitReturnsAcceptedWithKey(t *testing.T) {
	router, svc := newProcessRouter(t, &scriptedClient{}, newRecordingStore())

	payload := `{"content": "Hello.", "process_type": "cleaning", "dimensions": [1, 2]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		ProcessingKey string `json:"processing_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(body.ProcessingKey, "process_") {
		t.Fatalf("unexpected processing key %q", body.ProcessingKey)
	}

	// The accepted job runs to completion and becomes pollable.
	snap := waitForTerminal(t, svc, body.ProcessingKey)
	if snap.Status != processing.StatusCompleted {
		t.Fatalf("expected completed, got %s", snap.Status)
	}
}

func TestSubmitMissingContent(t *testing.T) {
	router, _ := newProcessRouter(t, &scriptedClient{}, newRecordingStore())

	payload := `{"process_type": "cleaning"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestSubmitMissingDimensions(t *testing.T) {
	router, _ := newProcessRouter(t, &scriptedClient{}, newRecordingStore())

	payload := `{"content": "Hello.", "process_type": "cleaning"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "dimensions") {
		t.Fatalf("expected dimensions error, got %s", resp.Body.String())
	}
}

func TestStatusEndpointAbsentKey(t *testing.T) {
	router, _ := newProcessRouter(t, &scriptedClient{}, newRecordingStore())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/process/process_0_unknown/status", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var snap processing.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Status != processing.StatusProcessing {
		t.Fatalf("expected processing for absent key, got %s", snap.Status)
	}
}

func TestExportReturnsAttachment(t *testing.T) {
	router, _ := newProcessRouter(t, &scriptedClient{}, newRecordingStore())

	payload := `{
		"process_type": "labeling",
		"dimensions": ["Intent", "Sentiment"],
		"original_data": "Hello.",
		"processed_result": [{"intent": "greeting"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process/export", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}
	disposition := resp.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "attachment") || !strings.Contains(disposition, "processed_data_") {
		t.Fatalf("expected attachment disposition, got %q", disposition)
	}
	var body struct {
		ProcessType     string `json:"process_type"`
		ProcessedResult []any  `json:"processed_result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if body.ProcessType != "labeling" || len(body.ProcessedResult) != 1 {
		t.Fatalf("unexpected export payload: %+v", body)
	}
}

func TestExportRequiresProcessedResult(t *testing.T) {
	router, _ := newProcessRouter(t, &scriptedClient{}, newRecordingStore())

	payload := `{"process_type": "labeling", "original_data": "Hello."}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/process/export", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
