package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_model_factory.go -package=mocks docchat/internal/service ModelFactory
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_service.go -package=mocks -mock_names=ChatService=MockChatService docchat/internal/service ChatService

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docchat/internal/contextutil"
	"docchat/internal/llm"
	"docchat/internal/storage"
	"docchat/internal/vectorstore"
)

// Prompts carried over from the desktop app this service replaces.
const (
	systemPrompt = "You are a helpful assistant. Provide clear and concise responses."
	titlePrompt  = "Generate very very very short title based on context, just few words, no punctuation. max 3 words"

	documentPromptFormat = "Answer questions based on this context:\n%s\n\nIf unsure, say you don't know."
)

// Defaults applied when a request leaves a knob unset.
const (
	DefaultNumContext = 3
	DefaultNumResults = 5
)

const titleFallbackLimit = 40

// ModelFactory builds a chat model for a provider/model/credential triple.
// This interface is defined from the service layer's perspective (consumer-first).
type ModelFactory interface {
	ForProvider(provider, model, apiKey string) (llm.Model, error)
}

// ChatRequest is a general chat turn.
type ChatRequest struct {
	Message        string
	Provider       string
	Model          string
	APIKey         string
	ConversationID string
}

// ChatResponse is the reply to a general chat turn.
type ChatResponse struct {
	Response       string
	ConversationID string
	Title          string
}

// DocumentChatRequest is a chat turn grounded on one ingested document.
type DocumentChatRequest struct {
	DocumentID     string
	Question       string
	NumContext     int
	Provider       string
	Model          string
	APIKey         string
	ConversationID string
}

// ContextSource is one retrieved chunk the reply was grounded on.
type ContextSource struct {
	Content string `json:"content"`
}

// DocumentChatResponse is the reply to a document chat turn.
type DocumentChatResponse struct {
	Response       string
	ConversationID string
	Title          string
	ContextSources []ContextSource
}

// DocumentQueryRequest is a raw retrieval request against one document.
type DocumentQueryRequest struct {
	DocumentID string
	Query      string
	NumResults int
	APIKey     string
}

// QueryResult is one retrieval hit.
type QueryResult struct {
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

// ChatService provides chat, retrieval and conversation functionality.
type ChatService interface {
	// Chat processes a general chat turn and returns the full reply.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// StreamChat processes a general chat turn, delivering the reply as
	// stream events. Validation failures are returned synchronously;
	// everything after that arrives as frames on the channel.
	StreamChat(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error)
	// DocumentChat answers a question grounded on one ingested document.
	DocumentChat(ctx context.Context, req DocumentChatRequest) (DocumentChatResponse, error)
	// DocumentQuery runs a raw similarity search against one document.
	DocumentQuery(ctx context.Context, req DocumentQueryRequest) ([]QueryResult, error)
	// History returns a conversation's messages in order. Unknown
	// conversations yield an empty list.
	History(ctx context.Context, conversationID string) ([]storage.ChatMessage, error)
	// Conversations returns all conversations.
	Conversations(ctx context.Context) ([]storage.ConversationRecord, error)
	// DocumentConversations returns conversations scoped to one document.
	DocumentConversations(ctx context.Context, documentID string) ([]storage.ConversationRecord, error)
}

// Defaults are applied when a request leaves the corresponding knob unset.
// Zero fields fall back to the package defaults.
type Defaults struct {
	Provider   string
	Model      string
	NumContext int
	NumResults int
}

func (d Defaults) normalized() Defaults {
	if d.NumContext <= 0 {
		d.NumContext = DefaultNumContext
	}
	if d.NumResults <= 0 {
		d.NumResults = DefaultNumResults
	}
	return d
}

// chatService implements ChatService.
type chatService struct {
	models   ModelFactory
	embedder llm.Embedder
	vectors  vectorstore.Store
	docs     storage.DocumentStore
	convs    storage.ConversationStore
	defaults Defaults
	turns    *keyedMutex
}

// NewChatService creates a new ChatService.
func NewChatService(
	models ModelFactory,
	embedder llm.Embedder,
	vectors vectorstore.Store,
	docs storage.DocumentStore,
	convs storage.ConversationStore,
	defaults Defaults,
) ChatService {
	return &chatService{
		models:   models,
		embedder: embedder,
		vectors:  vectors,
		docs:     docs,
		convs:    convs,
		defaults: defaults.normalized(),
		turns:    newKeyedMutex(),
	}
}

// Chat processes a general chat turn.
func (s *chatService) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Message) == "" {
		logger.WarnContext(ctx, "empty message in chat request")
		return ChatResponse{}, &ValidationError{Field: "message", Message: "cannot be empty"}
	}

	model, err := s.resolveModel(req.Provider, req.Model, req.APIKey)
	if err != nil {
		return ChatResponse{}, err
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	unlock := s.turns.lock(conversationID)
	defer unlock()

	conv, history, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return ChatResponse{}, err
	}

	messages := buildMessages(systemPrompt, history, req.Message)
	reply, err := model.Invoke(ctx, messages)
	if err != nil {
		logger.ErrorContext(ctx, "model call failed", "conversation_id", conversationID, "error", err)
		return ChatResponse{}, fmt.Errorf("%w: %v", ErrUpstreamModel, err)
	}

	title, err := s.persistTurn(ctx, model, conv, conversationID, req.Message, reply)
	if err != nil {
		return ChatResponse{}, err
	}

	logger.InfoContext(ctx, "chat turn processed", "conversation_id", conversationID, "reply_length", len(reply))
	return ChatResponse{
		Response:       reply,
		ConversationID: conversationID,
		Title:          title,
	}, nil
}

// StreamChat processes a general chat turn as a frame stream.
func (s *chatService) StreamChat(ctx context.Context, req ChatRequest) (<-chan StreamEvent, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Message) == "" {
		logger.WarnContext(ctx, "empty message in streaming chat request")
		return nil, &ValidationError{Field: "message", Message: "cannot be empty"}
	}

	model, err := s.resolveModel(req.Provider, req.Model, req.APIKey)
	if err != nil {
		return nil, err
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}

	events := make(chan StreamEvent, streamBuffer)

	go func() {
		defer close(events)

		unlock := s.turns.lock(conversationID)
		defer unlock()

		conv, history, err := s.loadConversation(ctx, conversationID)
		if err != nil {
			logger.ErrorContext(ctx, "failed to load conversation", "conversation_id", conversationID, "error", err)
			s.emit(ctx, events, StreamEvent{Type: EventError, Message: "failed to load conversation"})
			return
		}

		title := ""
		if conv != nil {
			title = conv.Title
		} else {
			title = s.generateTitle(ctx, model, req.Message)
		}
		if !s.emit(ctx, events, StreamEvent{Type: EventMetadata, Title: title, ConversationID: conversationID}) {
			return
		}

		messages := buildMessages(systemPrompt, history, req.Message)

		var full strings.Builder
		streamErr := model.Stream(ctx, messages, func(delta string) error {
			full.WriteString(delta)
			if !s.emit(ctx, events, StreamEvent{Type: EventContent, Content: delta}) {
				return ctx.Err()
			}
			return nil
		})
		if streamErr != nil {
			// Partial replies are never persisted.
			logger.ErrorContext(ctx, "model stream failed", "conversation_id", conversationID, "error", streamErr)
			s.emit(ctx, events, StreamEvent{Type: EventError, Message: "model stream failed"})
			return
		}

		if err := s.persistTurnWithTitle(ctx, conv, conversationID, title, req.Message, full.String()); err != nil {
			logger.ErrorContext(ctx, "failed to persist turn", "conversation_id", conversationID, "error", err)
			s.emit(ctx, events, StreamEvent{Type: EventError, Message: "failed to save conversation"})
			return
		}

		s.emit(ctx, events, StreamEvent{Type: EventEnd, Status: "done"})
	}()

	return events, nil
}

// DocumentChat answers a question grounded on one ingested document.
func (s *chatService) DocumentChat(ctx context.Context, req DocumentChatRequest) (DocumentChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.Question) == "" {
		return DocumentChatResponse{}, &ValidationError{Field: "question", Message: "cannot be empty"}
	}
	numContext := req.NumContext
	if numContext <= 0 {
		numContext = s.defaults.NumContext
	}

	doc, err := s.getChattableDocument(ctx, req.DocumentID)
	if err != nil {
		return DocumentChatResponse{}, err
	}

	model, err := s.resolveModel(req.Provider, req.Model, req.APIKey)
	if err != nil {
		return DocumentChatResponse{}, err
	}

	results, err := s.retrieve(ctx, doc.ID, req.Question, req.APIKey, numContext)
	if err != nil {
		return DocumentChatResponse{}, err
	}

	sources := make([]ContextSource, 0, len(results))
	contents := make([]string, 0, len(results))
	for _, r := range results {
		sources = append(sources, ContextSource{Content: r.Chunk.Content})
		contents = append(contents, r.Chunk.Content)
	}
	prompt := fmt.Sprintf(documentPromptFormat, strings.Join(contents, "\n\n"))

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = documentConversationID(doc.ID)
	}

	unlock := s.turns.lock(conversationID)
	defer unlock()

	conv, history, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return DocumentChatResponse{}, err
	}

	messages := buildMessages(prompt, history, req.Question)
	reply, err := model.Invoke(ctx, messages)
	if err != nil {
		logger.ErrorContext(ctx, "model call failed", "document_id", doc.ID, "conversation_id", conversationID, "error", err)
		return DocumentChatResponse{}, fmt.Errorf("%w: %v", ErrUpstreamModel, err)
	}

	title, err := s.persistTurn(ctx, model, conv, conversationID, req.Question, reply)
	if err != nil {
		return DocumentChatResponse{}, err
	}

	logger.InfoContext(ctx, "document chat turn processed",
		"document_id", doc.ID, "conversation_id", conversationID, "context_chunks", len(sources))
	return DocumentChatResponse{
		Response:       reply,
		ConversationID: conversationID,
		Title:          title,
		ContextSources: sources,
	}, nil
}

// DocumentQuery runs a raw similarity search against one document.
func (s *chatService) DocumentQuery(ctx context.Context, req DocumentQueryRequest) ([]QueryResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	numResults := req.NumResults
	if numResults <= 0 {
		numResults = s.defaults.NumResults
	}

	doc, err := s.getChattableDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	results, err := s.retrieve(ctx, doc.ID, req.Query, req.APIKey, numResults)
	if err != nil {
		return nil, err
	}

	out := make([]QueryResult, 0, len(results))
	for _, r := range results {
		out = append(out, QueryResult{Content: r.Chunk.Content, Score: r.Score})
	}
	return out, nil
}

// History returns a conversation's messages in order.
func (s *chatService) History(ctx context.Context, conversationID string) ([]storage.ChatMessage, error) {
	if conversationID == "" {
		return nil, &ValidationError{Field: "conversationId", Message: "is required"}
	}
	messages, err := s.convs.GetHistory(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return messages, nil
}

// Conversations returns all conversations.
func (s *chatService) Conversations(ctx context.Context) ([]storage.ConversationRecord, error) {
	convs, err := s.convs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return convs, nil
}

// DocumentConversations returns conversations scoped to one document.
func (s *chatService) DocumentConversations(ctx context.Context, documentID string) ([]storage.ConversationRecord, error) {
	convs, err := s.convs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	prefix := documentConversationID(documentID)
	scoped := make([]storage.ConversationRecord, 0)
	for _, conv := range convs {
		if strings.HasPrefix(conv.ID, prefix) {
			scoped = append(scoped, conv)
		}
	}
	return scoped, nil
}

// resolveModel builds the chat model for the request, falling back to the
// configured defaults when the request leaves provider or model unset.
func (s *chatService) resolveModel(provider, modelName, apiKey string) (llm.Model, error) {
	if provider == "" {
		provider = s.defaults.Provider
	}
	if modelName == "" {
		modelName = s.defaults.Model
	}
	model, err := s.models.ForProvider(provider, modelName, apiKey)
	if err != nil {
		if errors.Is(err, llm.ErrUnknownProvider) {
			return nil, &ValidationError{Field: "provider", Message: fmt.Sprintf("unsupported provider %q", provider)}
		}
		return nil, WrapError(err, "failed to build model client")
	}
	return model, nil
}

// getChattableDocument loads a document and checks it is ready for retrieval.
func (s *chatService) getChattableDocument(ctx context.Context, documentID string) (*storage.DocumentRecord, error) {
	if documentID == "" {
		return nil, &ValidationError{Field: "documentId", Message: "is required"}
	}
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if doc.Status != storage.StatusComplete {
		return nil, fmt.Errorf("%w: document is %s", ErrInvalidState, doc.Status)
	}
	return doc, nil
}

// retrieve embeds the query and searches the document's collection.
func (s *chatService) retrieve(ctx context.Context, documentID, query, apiKey string, k int) ([]vectorstore.Result, error) {
	vec, err := s.embedder.EmbedQuery(ctx, query, apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamModel, err)
	}
	results, err := s.vectors.Search(ctx, documentID, vec, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return results, nil
}

// loadConversation returns the conversation record (nil when new) and its
// history.
func (s *chatService) loadConversation(ctx context.Context, conversationID string) (*storage.ConversationRecord, []storage.ChatMessage, error) {
	conv, err := s.convs.Get(ctx, conversationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	history, err := s.convs.GetHistory(ctx, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return conv, history, nil
}

// persistTurn stores the exchange, creating the conversation (with a
// generated title) when it did not exist yet. Returns the conversation title.
func (s *chatService) persistTurn(ctx context.Context, model llm.Model, conv *storage.ConversationRecord, conversationID, userMsg, reply string) (string, error) {
	title := ""
	if conv != nil {
		title = conv.Title
	} else {
		title = s.generateTitle(ctx, model, userMsg)
	}
	if err := s.persistTurnWithTitle(ctx, conv, conversationID, title, userMsg, reply); err != nil {
		return "", err
	}
	return title, nil
}

func (s *chatService) persistTurnWithTitle(ctx context.Context, conv *storage.ConversationRecord, conversationID, title, userMsg, reply string) error {
	if conv == nil {
		record := &storage.ConversationRecord{ID: conversationID, Title: title}
		if err := s.convs.Create(ctx, record); err != nil {
			return fmt.Errorf("%w: %v", ErrStorage, err)
		}
	}
	if err := s.convs.AppendTurn(ctx, conversationID, userMsg, reply); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// generateTitle asks the model for a short conversation title. A failed or
// empty title call falls back to a truncation of the first message.
func (s *chatService) generateTitle(ctx context.Context, model llm.Model, firstMessage string) string {
	logger := contextutil.LoggerFromContext(ctx)

	title, err := model.Invoke(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: titlePrompt},
		{Role: llm.RoleUser, Content: firstMessage},
	})
	if err != nil {
		logger.WarnContext(ctx, "title generation failed, using fallback", "error", err)
		return fallbackTitle(firstMessage)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return fallbackTitle(firstMessage)
	}
	return title
}

func fallbackTitle(message string) string {
	title := strings.Join(strings.Fields(message), " ")
	runes := []rune(title)
	if len(runes) > titleFallbackLimit {
		title = string(runes[:titleFallbackLimit])
	}
	if title == "" {
		title = "New conversation"
	}
	return title
}

// emit sends one frame, giving up when the consumer went away.
func (s *chatService) emit(ctx context.Context, events chan<- StreamEvent, event StreamEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func documentConversationID(documentID string) string {
	return "doc-" + documentID
}

// buildMessages assembles the prompt: system first, then the stored history
// with roles preserved, then the new user message.
func buildMessages(system string, history []storage.ChatMessage, userMsg string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, msg := range history {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMsg})
	return messages
}
