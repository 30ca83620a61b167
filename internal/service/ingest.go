package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingest_service.go -package=mocks -mock_names=IngestService=MockIngestService docchat/internal/service IngestService
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_text_extractor.go -package=mocks docchat/internal/service TextExtractor,Splitter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"docchat/internal/contextutil"
	"docchat/internal/llm"
	"docchat/internal/storage"
	"docchat/internal/vectorstore"
)

const textPreviewLimit = 500

// TextExtractor pulls plain text out of an uploaded file.
// This interface is defined from the service layer's perspective (consumer-first).
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Splitter cuts extracted text into chunks.
type Splitter interface {
	Split(text string) []string
}

// IngestResult summarizes a completed ingestion.
type IngestResult struct {
	ID          string
	Status      string
	Chunks      int
	TextPreview string
}

// IngestService manages the document lifecycle: ingestion, lookup, deletion.
type IngestService interface {
	// Ingest extracts, chunks, embeds and indexes an uploaded PDF. The
	// returned record is marked complete on success and failed (with the
	// error recorded) otherwise.
	Ingest(ctx context.Context, filename string, data []byte, apiKey string) (IngestResult, error)
	// GetDocument returns one registry record.
	GetDocument(ctx context.Context, documentID string) (*storage.DocumentRecord, error)
	// ListDocuments returns all registry records.
	ListDocuments(ctx context.Context) ([]storage.DocumentRecord, error)
	// DeleteDocument removes the document's registry record and collection.
	DeleteDocument(ctx context.Context, documentID string) error
}

// ingestService implements IngestService.
type ingestService struct {
	docs      storage.DocumentStore
	extractor TextExtractor
	splitter  Splitter
	embedder  llm.Embedder
	vectors   vectorstore.Store
}

// NewIngestService creates a new IngestService.
func NewIngestService(
	docs storage.DocumentStore,
	extractor TextExtractor,
	splitter Splitter,
	embedder llm.Embedder,
	vectors vectorstore.Store,
) IngestService {
	return &ingestService{
		docs:      docs,
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		vectors:   vectors,
	}
}

// Ingest runs the full pipeline for one uploaded PDF.
func (s *ingestService) Ingest(ctx context.Context, filename string, data []byte, apiKey string) (IngestResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return IngestResult{}, &ValidationError{Field: "file", Message: "only PDF files are supported"}
	}
	if len(data) == 0 {
		return IngestResult{}, &ValidationError{Field: "file", Message: "is empty"}
	}

	documentID := uuid.New().String()
	record := &storage.DocumentRecord{
		ID:       documentID,
		Filename: filename,
		Status:   storage.StatusProcessing,
	}
	if err := s.docs.Create(ctx, record); err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	text, err := s.extractor.Extract(ctx, data)
	if err != nil {
		return IngestResult{}, s.fail(ctx, documentID, WrapError(err, "failed to extract text"))
	}

	chunks := s.splitter.Split(text)
	trimmed := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if c := strings.TrimSpace(chunk); c != "" {
			trimmed = append(trimmed, c)
		}
	}
	if len(trimmed) == 0 {
		return IngestResult{}, s.fail(ctx, documentID, errors.New("document produced no chunks"))
	}

	vectors, err := s.embedder.EmbedTexts(ctx, trimmed, apiKey)
	if err != nil {
		return IngestResult{}, s.fail(ctx, documentID, fmt.Errorf("%w: %v", ErrUpstreamModel, err))
	}

	points := make([]vectorstore.Chunk, len(trimmed))
	for i, content := range trimmed {
		points[i] = vectorstore.Chunk{
			ID:         uuid.New().String(),
			ChunkIndex: i,
			Content:    content,
			Vector:     vectors[i],
		}
	}
	if err := s.vectors.CreateCollection(ctx, documentID, points); err != nil {
		return IngestResult{}, s.fail(ctx, documentID, fmt.Errorf("%w: %v", ErrStorage, err))
	}

	if err := s.docs.UpdateStatus(ctx, documentID, storage.StatusComplete, len(points), ""); err != nil {
		return IngestResult{}, s.fail(ctx, documentID, fmt.Errorf("%w: %v", ErrStorage, err))
	}

	logger.InfoContext(ctx, "document ingested", "document_id", documentID, "filename", filename, "chunks", len(points))
	return IngestResult{
		ID:          documentID,
		Status:      storage.StatusComplete,
		Chunks:      len(points),
		TextPreview: preview(trimmed[0]),
	}, nil
}

// fail marks the document failed with the error message and passes the error
// through.
func (s *ingestService) fail(ctx context.Context, documentID string, cause error) error {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "ingestion failed", "document_id", documentID, "error", cause)

	if err := s.docs.UpdateStatus(ctx, documentID, storage.StatusFailed, 0, cause.Error()); err != nil {
		logger.ErrorContext(ctx, "failed to mark document failed", "document_id", documentID, "error", err)
	}
	return cause
}

// GetDocument returns one registry record.
func (s *ingestService) GetDocument(ctx context.Context, documentID string) (*storage.DocumentRecord, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return doc, nil
}

// ListDocuments returns all registry records.
func (s *ingestService) ListDocuments(ctx context.Context) ([]storage.DocumentRecord, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return docs, nil
}

// DeleteDocument removes the document's registry record and collection.
func (s *ingestService) DeleteDocument(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if _, err := s.docs.Get(ctx, documentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: document %s", ErrNotFound, documentID)
		}
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// A failed ingestion may never have built a collection.
	if err := s.vectors.DropCollection(ctx, documentID); err != nil && !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.docs.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	logger.InfoContext(ctx, "document deleted", "document_id", documentID)
	return nil
}

func preview(chunk string) string {
	runes := []rune(chunk)
	if len(runes) > textPreviewLimit {
		return string(runes[:textPreviewLimit])
	}
	return chunk
}
