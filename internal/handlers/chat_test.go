package handlers_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docchat/internal/handlers"
	"docchat/internal/service"
	"docchat/internal/service/mocks"
	"docchat/internal/storage"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestChatHandlerChat(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		query      string
		mockSetup  func(m *mocks.MockChatService)
		wantStatus int
		wantInBody string
	}{
		{
			name: "successful chat",
			body: `{"message":"hello"}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().Chat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{Response: "hi there", ConversationID: "conv-1", Title: "Greeting"}, nil)
			},
			wantStatus: http.StatusOK,
			wantInBody: `"status":"success"`,
		},
		{
			name: "conversation id forwarded from query",
			body: `{"message":"hello"}`,
			query: "?conversationId=conv-9",
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().Chat(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ any, req service.ChatRequest) (service.ChatResponse, error) {
						if req.ConversationID != "conv-9" {
							t.Errorf("got conversation id %q, want conv-9", req.ConversationID)
						}
						return service.ChatResponse{Response: "ok", ConversationID: "conv-9"}, nil
					})
			},
			wantStatus: http.StatusOK,
			wantInBody: `"conversation_id":"conv-9"`,
		},
		{
			name:       "invalid json body",
			body:       `{not json`,
			mockSetup:  func(m *mocks.MockChatService) {},
			wantStatus: http.StatusBadRequest,
			wantInBody: `"status":"error"`,
		},
		{
			name: "validation error maps to 400",
			body: `{"message":""}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().Chat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, &service.ValidationError{Field: "message", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
			wantInBody: "Validation error",
		},
		{
			name: "upstream model error maps to 502",
			body: `{"message":"hello"}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().Chat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, service.ErrUpstreamModel)
			},
			wantStatus: http.StatusBadGateway,
			wantInBody: "Model provider error",
		},
		{
			name: "storage error maps to 500",
			body: `{"message":"hello"}`,
			mockSetup: func(m *mocks.MockChatService) {
				m.EXPECT().Chat(gomock.Any(), gomock.Any()).
					Return(service.ChatResponse{}, errors.New("something broke"))
			},
			wantStatus: http.StatusInternalServerError,
			wantInBody: `"status":"error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockChat := mocks.NewMockChatService(ctrl)
			tt.mockSetup(mockChat)

			handler := handlers.NewChatHandler(mockChat)
			req := httptest.NewRequest(http.MethodPost, "/chat"+tt.query, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.Chat(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantInBody) {
				t.Errorf("body %q missing %q", rec.Body.String(), tt.wantInBody)
			}
		})
	}
}

func TestChatHandlerStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockChat := mocks.NewMockChatService(ctrl)

	events := make(chan service.StreamEvent, 4)
	events <- service.StreamEvent{Type: service.EventMetadata, Title: "T", ConversationID: "conv-1"}
	events <- service.StreamEvent{Type: service.EventContent, Content: "Hel"}
	events <- service.StreamEvent{Type: service.EventContent, Content: "lo"}
	events <- service.StreamEvent{Type: service.EventEnd, Status: "done"}
	close(events)

	var recv <-chan service.StreamEvent = events
	mockChat.EXPECT().StreamChat(gomock.Any(), gomock.Any()).Return(recv, nil)

	handler := handlers.NewChatHandler(mockChat)
	req := httptest.NewRequest(http.MethodPost, "/chat/stream", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()

	handler.Stream(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Errorf("got content type %q", ct)
	}

	var frames []service.StreamEvent
	scanner := bufio.NewScanner(bytes.NewReader(rec.Body.Bytes()))
	for scanner.Scan() {
		var frame service.StreamEvent
		if err := json.Unmarshal(scanner.Bytes(), &frame); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", scanner.Text(), err)
		}
		frames = append(frames, frame)
	}
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}
	if frames[0].Type != service.EventMetadata || frames[3].Type != service.EventEnd {
		t.Errorf("unexpected frame order: %+v", frames)
	}
}

func TestChatHandlerStreamValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockChat := mocks.NewMockChatService(ctrl)

	mockChat.EXPECT().StreamChat(gomock.Any(), gomock.Any()).
		Return(nil, &service.ValidationError{Field: "message", Message: "cannot be empty"})

	handler := handlers.NewChatHandler(mockChat)
	req := httptest.NewRequest(http.MethodPost, "/chat/stream", strings.NewReader(`{"message":""}`))
	rec := httptest.NewRecorder()

	handler.Stream(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want 400", rec.Code)
	}
}

func TestChatHandlerHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockChat := mocks.NewMockChatService(ctrl)

	mockChat.EXPECT().History(gomock.Any(), "conv-1").Return([]storage.ChatMessage{
		{Role: "user", Content: "q"},
		{Role: "assistant", Content: "a"},
	}, nil)

	handler := handlers.NewChatHandler(mockChat)
	req := httptest.NewRequest(http.MethodGet, "/chat/history?conversationId=conv-1", nil)
	rec := httptest.NewRecorder()

	handler.History(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"messages"`) {
		t.Errorf("body missing messages: %s", rec.Body.String())
	}
}

func TestChatHandlerConversations(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockChat := mocks.NewMockChatService(ctrl)

	mockChat.EXPECT().Conversations(gomock.Any()).Return([]storage.ConversationRecord{
		{ID: "conv-1", Title: "first"},
	}, nil)

	handler := handlers.NewChatHandler(mockChat)
	req := httptest.NewRequest(http.MethodGet, "/chat/conversations", nil)
	rec := httptest.NewRecorder()

	handler.Conversations(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"conversations"`) {
		t.Errorf("body missing conversations: %s", rec.Body.String())
	}
}
