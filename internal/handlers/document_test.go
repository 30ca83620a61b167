package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"docchat/internal/handlers"
	"docchat/internal/service"
	"docchat/internal/service/mocks"
	"docchat/internal/storage"
)

type documentFixture struct {
	ingest *mocks.MockIngestService
	chat   *mocks.MockChatService
	router chi.Router
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &documentFixture{
		ingest: mocks.NewMockIngestService(ctrl),
		chat:   mocks.NewMockChatService(ctrl),
	}
	handler := handlers.NewDocumentHandler(f.ingest, f.chat)

	r := chi.NewRouter()
	r.Get("/documents", handler.List)
	r.Post("/documents/upload", handler.Upload)
	r.Get("/documents/{documentID}", handler.Get)
	r.Delete("/documents/{documentID}", handler.Delete)
	r.Post("/documents/{documentID}/chat", handler.Chat)
	r.Post("/documents/{documentID}/query", handler.Query)
	r.Get("/documents/{documentID}/conversations", handler.Conversations)
	f.router = r
	return f
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestDocumentHandlerUpload(t *testing.T) {
	f := newDocumentFixture(t)

	f.ingest.EXPECT().Ingest(gomock.Any(), "report.pdf", []byte("%PDF-data"), "secret-key").
		Return(service.IngestResult{ID: "doc-1", Status: "complete", Chunks: 4, TextPreview: "first chunk"}, nil)

	body, contentType := multipartBody(t, "file", "report.pdf", []byte("%PDF-data"))
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("apiKey", "secret-key")
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	for _, want := range []string{`"id":"doc-1"`, `"chunks":4`, `"textPreview":"first chunk"`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("body %q missing %q", rec.Body.String(), want)
		}
	}
}

func TestDocumentHandlerUploadRejectsNonPDF(t *testing.T) {
	f := newDocumentFixture(t)

	f.ingest.EXPECT().Ingest(gomock.Any(), "notes.txt", gomock.Any(), gomock.Any()).
		Return(service.IngestResult{}, &service.ValidationError{Field: "file", Message: "only PDF files are supported"})

	body, contentType := multipartBody(t, "file", "notes.txt", []byte("text"))
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rec.Code)
	}
}

func TestDocumentHandlerUploadMissingFile(t *testing.T) {
	f := newDocumentFixture(t)

	body, contentType := multipartBody(t, "wrong_field", "report.pdf", []byte("%PDF-data"))
	req := httptest.NewRequest(http.MethodPost, "/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rec.Code)
	}
}

func TestDocumentHandlerChat(t *testing.T) {
	f := newDocumentFixture(t)

	f.chat.EXPECT().DocumentChat(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req service.DocumentChatRequest) (service.DocumentChatResponse, error) {
			if req.DocumentID != "doc-1" {
				t.Errorf("got document id %q, want doc-1", req.DocumentID)
			}
			if req.APIKey != "secret-key" {
				t.Errorf("api key header not forwarded")
			}
			return service.DocumentChatResponse{
				Response:       "30 days.",
				ConversationID: "doc-doc-1",
				Title:          "Refunds",
				ContextSources: []service.ContextSource{{Content: "Refunds within 30 days."}},
			}, nil
		})

	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/chat",
		strings.NewReader(`{"question":"refund policy?","num_context":2}`))
	req.Header.Set("apiKey", "secret-key")
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	for _, want := range []string{`"response":"30 days."`, `"contextSources"`, `"conversation_id":"doc-doc-1"`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("body %q missing %q", rec.Body.String(), want)
		}
	}
}

func TestDocumentHandlerChatProcessingConflict(t *testing.T) {
	f := newDocumentFixture(t)

	f.chat.EXPECT().DocumentChat(gomock.Any(), gomock.Any()).
		Return(service.DocumentChatResponse{}, service.ErrInvalidState)

	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/chat",
		strings.NewReader(`{"question":"anything"}`))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("got status %d, want 409", rec.Code)
	}
}

func TestDocumentHandlerQuery(t *testing.T) {
	f := newDocumentFixture(t)

	f.chat.EXPECT().DocumentQuery(gomock.Any(), gomock.Any()).
		Return([]service.QueryResult{{Content: "chunk text", Score: 0.9}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/documents/doc-1/query",
		strings.NewReader(`{"query":"refunds","num_results":2}`))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"results"`) {
		t.Errorf("body missing results: %s", rec.Body.String())
	}
}

func TestDocumentHandlerGetNotFound(t *testing.T) {
	f := newDocumentFixture(t)

	f.ingest.EXPECT().GetDocument(gomock.Any(), "missing").Return(nil, service.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/documents/missing", nil)
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", rec.Code)
	}
}

func TestDocumentHandlerListAndDelete(t *testing.T) {
	f := newDocumentFixture(t)

	f.ingest.EXPECT().ListDocuments(gomock.Any()).Return([]storage.DocumentRecord{
		{ID: "doc-1", Filename: "a.pdf", Status: storage.StatusComplete},
	}, nil)
	f.ingest.EXPECT().DeleteDocument(gomock.Any(), "doc-1").Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"documents"`) {
		t.Errorf("list failed: %d %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/documents/doc-1", nil)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"deleted":"doc-1"`) {
		t.Errorf("delete failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestDocumentHandlerConversations(t *testing.T) {
	f := newDocumentFixture(t)

	f.chat.EXPECT().DocumentConversations(gomock.Any(), "doc-1").
		Return([]storage.ConversationRecord{{ID: "doc-doc-1", Title: "Refunds"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/documents/doc-1/conversations", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"conversations"`) {
		t.Errorf("conversations failed: %d %s", rec.Code, rec.Body.String())
	}
}
