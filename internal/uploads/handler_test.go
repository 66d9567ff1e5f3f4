package uploads_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"datalab-backend/internal/uploads"
)

func newUploadRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	uploads.NewHandler().RegisterRoutes(router.Group("/api/v1"))
	return router
}

func uploadFile(t *testing.T, router *gin.Engine, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestUploadPlainText(t *testing.T) {
	router := newUploadRouter()

	resp := uploadFile(t, router, "notes.txt", []byte("Hello. World."))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Filename != "notes.txt" || body.Content != "Hello. World." {
		t.Fatalf("unexpected response: %+v", body)
	}
}

func TestUploadInvalidJSONAcceptedWithWarning(t *testing.T) {
	router := newUploadRouter()

	resp := uploadFile(t, router, "data.json", []byte(`{"broken":`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Message == "file uploaded" {
		t.Fatalf("expected warning message for invalid JSON")
	}
}

func TestUploadValidJSONNoWarning(t *testing.T) {
	router := newUploadRouter()

	resp := uploadFile(t, router, "data.json", []byte(`{"ok": true}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Message != "file uploaded" {
		t.Fatalf("expected plain success message, got %q", body.Message)
	}
}

func TestUploadRejectsNonUTF8(t *testing.T) {
	router := newUploadRouter()

	resp := uploadFile(t, router, "binary.txt", []byte{0xff, 0xfe, 0x00, 0x80})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	router := newUploadRouter()

	resp := uploadFile(t, router, "archive.zip", []byte("PK"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestUploadRequiresFile(t *testing.T) {
	router := newUploadRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
