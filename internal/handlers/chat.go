package handlers

import (
	"encoding/json"
	"net/http"

	"docchat/internal/contextutil"
	"docchat/internal/service"
)

// ChatHandler handles HTTP requests for general chat, streaming, and
// conversation lookups.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// ChatRequest is the HTTP payload for a chat turn.
type ChatRequest struct {
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.chatService.Chat(ctx, service.ChatRequest{
		Message:        req.Message,
		Provider:       req.Provider,
		Model:          req.Model,
		APIKey:         r.Header.Get(apiKeyHeader),
		ConversationID: r.URL.Query().Get("conversationId"),
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process chat request")
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"response":        resp.Response,
		"conversation_id": resp.ConversationID,
		"title":           resp.Title,
	})
}

// Stream handles POST /chat/stream, replying with newline-delimited JSON
// frames: one metadata frame, content frames, then an end or error frame.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body for streaming", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	events, err := h.chatService.StreamChat(ctx, service.ChatRequest{
		Message:        req.Message,
		Provider:       req.Provider,
		Model:          req.Model,
		APIKey:         r.Header.Get(apiKeyHeader),
		ConversationID: r.URL.Query().Get("conversationId"),
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to start chat stream")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(w)
	for event := range events {
		if err := encoder.Encode(event); err != nil {
			// Client went away; the producer stops via context cancellation.
			logger.WarnContext(ctx, "failed to write stream frame", "error", err)
			return
		}
		flusher.Flush()
	}
}

// History handles GET /chat/history?conversationId=.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	messages, err := h.chatService.History(ctx, r.URL.Query().Get("conversationId"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load history")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"messages": messages})
}

// Conversations handles GET /chat/conversations.
func (h *ChatHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	convs, err := h.chatService.Conversations(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list conversations")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"conversations": convs})
}
