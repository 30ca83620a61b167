package http

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/mock/gomock"

	"docchat/internal/service/mocks"
	"docchat/internal/storage"
)

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockChatService, *mocks.MockIngestService) {
	t.Helper()
	ctrl := gomock.NewController(t)

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	chatSvc := mocks.NewMockChatService(ctrl)
	ingestSvc := mocks.NewMockIngestService(ctrl)
	router := NewRouter(&Deps{
		ChatService:   chatSvc,
		IngestService: ingestSvc,
		DB:            db,
	})
	return router, chatSvc, ingestSvc
}

func TestRouterHealthz(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, want 200", rec.Code)
	}
}

func TestRouterRoutesAreRegistered(t *testing.T) {
	router, chatSvc, ingestSvc := newTestRouter(t)

	chatSvc.EXPECT().Conversations(gomock.Any()).Return(nil, nil)
	ingestSvc.EXPECT().ListDocuments(gomock.Any()).Return(nil, nil)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/chat/conversations"},
		{http.MethodGet, "/api/v1/documents/"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code == http.StatusNotFound || rec.Code == http.StatusMethodNotAllowed {
			t.Errorf("%s %s not routed: %d", tt.method, tt.path, rec.Code)
		}
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("got status %d, want 404", rec.Code)
	}
}
