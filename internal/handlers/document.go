package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docchat/internal/contextutil"
	"docchat/internal/service"
)

// maxUploadBytes bounds how much of an upload is read into memory.
const maxUploadBytes = 50 << 20 // 50 MiB

// apiKeyHeader carries the caller's provider credential.
const apiKeyHeader = "apiKey"

// DocumentHandler handles HTTP requests for documents: upload, lookup,
// deletion, and document-grounded chat and retrieval.
type DocumentHandler struct {
	ingestService service.IngestService
	chatService   service.ChatService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(ingestService service.IngestService, chatService service.ChatService) *DocumentHandler {
	return &DocumentHandler{
		ingestService: ingestService,
		chatService:   chatService,
	}
}

// UploadResponse is the payload returned for a completed upload.
type UploadResponse struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Chunks      int    `json:"chunks"`
	TextPreview string `json:"textPreview"`
}

// DocumentChatRequest is the HTTP payload for document-grounded chat.
type DocumentChatRequest struct {
	Question   string `json:"question"`
	NumContext int    `json:"num_context"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
}

// DocumentQueryRequest is the HTTP payload for raw retrieval.
type DocumentQueryRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results"`
}

// Upload handles POST /documents/upload (multipart, field "file").
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing file field", "error", err)
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	result, err := h.ingestService.Ingest(ctx, header.Filename, data, r.Header.Get(apiKeyHeader))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to ingest document")
		return
	}

	writeSuccess(ctx, w, http.StatusOK, UploadResponse{
		ID:          result.ID,
		Status:      result.Status,
		Chunks:      result.Chunks,
		TextPreview: result.TextPreview,
	})
}

// List handles GET /documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.ingestService.ListDocuments(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list documents")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"documents": docs})
}

// Get handles GET /documents/{documentID}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := h.ingestService.GetDocument(ctx, chi.URLParam(r, "documentID"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get document")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"document": doc})
}

// Delete handles DELETE /documents/{documentID}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	documentID := chi.URLParam(r, "documentID")
	if err := h.ingestService.DeleteDocument(ctx, documentID); err != nil {
		handleServiceError(ctx, w, err, "Failed to delete document")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"deleted": documentID})
}

// Chat handles POST /documents/{documentID}/chat.
func (h *DocumentHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req DocumentChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.chatService.DocumentChat(ctx, service.DocumentChatRequest{
		DocumentID:     chi.URLParam(r, "documentID"),
		Question:       req.Question,
		NumContext:     req.NumContext,
		Provider:       req.Provider,
		Model:          req.Model,
		APIKey:         r.Header.Get(apiKeyHeader),
		ConversationID: r.URL.Query().Get("conversationId"),
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to process document chat")
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"response":        resp.Response,
		"conversation_id": resp.ConversationID,
		"title":           resp.Title,
		"contextSources":  resp.ContextSources,
	})
}

// Query handles POST /documents/{documentID}/query.
func (h *DocumentHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req DocumentQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	results, err := h.chatService.DocumentQuery(ctx, service.DocumentQueryRequest{
		DocumentID: chi.URLParam(r, "documentID"),
		Query:      req.Query,
		NumResults: req.NumResults,
		APIKey:     r.Header.Get(apiKeyHeader),
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to query document")
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"results": results})
}

// Conversations handles GET /documents/{documentID}/conversations.
func (h *DocumentHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	convs, err := h.chatService.DocumentConversations(ctx, chi.URLParam(r, "documentID"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list conversations")
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"conversations": convs})
}
