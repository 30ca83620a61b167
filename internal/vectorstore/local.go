package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"docchat/internal/contextutil"
)

// LocalStore is a file-backed vector store. Each document's collection is one
// immutable in-memory snapshot plus a JSON file on disk for restarts. Writers
// build the full replacement off to the side and swap a pointer under the
// lock, so readers never observe a half-built collection.
type LocalStore struct {
	dataDir string
	dims    int

	mu          sync.RWMutex
	collections map[string]*localCollection
}

type localCollection struct {
	DocumentID string  `json:"document_id"`
	Chunks     []Chunk `json:"chunks"`
}

// NewLocalStore opens (or creates) a local store rooted at dataDir and loads
// any collections persisted by a previous run.
func NewLocalStore(dataDir string, dims int) (*LocalStore, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("dims must be greater than 0")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	s := &LocalStore{
		dataDir:     dataDir,
		dims:        dims,
		collections: make(map[string]*localCollection),
	}
	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *LocalStore) loadAll() error {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return fmt.Errorf("failed to read data dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dataDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		var col localCollection
		if err := json.Unmarshal(data, &col); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if col.DocumentID == "" {
			continue
		}
		s.collections[col.DocumentID] = &col
	}
	return nil
}

// CreateCollection builds and persists a fresh collection, replacing any
// previous one for the document in a single swap.
func (s *LocalStore) CreateCollection(ctx context.Context, documentID string, chunks []Chunk) error {
	logger := contextutil.LoggerFromContext(ctx)

	if documentID == "" {
		return fmt.Errorf("document id is required")
	}
	for i, chunk := range chunks {
		if len(chunk.Vector) != s.dims {
			return fmt.Errorf("%w: chunk %d has %d dims, expected %d", ErrDimensionMismatch, i, len(chunk.Vector), s.dims)
		}
	}

	col := &localCollection{
		DocumentID: documentID,
		Chunks:     make([]Chunk, len(chunks)),
	}
	copy(col.Chunks, chunks)

	if err := s.persist(col); err != nil {
		return err
	}

	s.mu.Lock()
	s.collections[documentID] = col
	s.mu.Unlock()

	logger.InfoContext(ctx, "collection created", "document_id", documentID, "chunks", len(chunks))
	return nil
}

// persist writes the collection to a temp file and renames it into place, so
// the on-disk snapshot is always a complete one.
func (s *LocalStore) persist(col *localCollection) error {
	data, err := json.Marshal(col)
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %w", err)
	}

	final := s.collectionPath(col.DocumentID)
	tmp := final + ".tmp-" + uuid.New().String()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write collection file: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace collection file: %w", err)
	}
	return nil
}

func (s *LocalStore) collectionPath(documentID string) string {
	return filepath.Join(s.dataDir, documentID+".json")
}

// Search scans the document's snapshot and returns the top k chunks by cosine
// similarity, ties broken by ascending chunk index.
func (s *LocalStore) Search(ctx context.Context, documentID string, query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be greater than 0", ErrBadQuery)
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", ErrBadQuery)
	}
	if len(query) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dims, expected %d", ErrDimensionMismatch, len(query), s.dims)
	}

	s.mu.RLock()
	col, ok := s.collections[documentID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, documentID)
	}

	// The snapshot is immutable after the swap, so scoring runs lock-free.
	results := make([]Result, 0, len(col.Chunks))
	for _, chunk := range col.Chunks {
		results = append(results, Result{
			Chunk: chunk,
			Score: cosineSimilarity(query, chunk.Vector),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.ChunkIndex < results[j].Chunk.ChunkIndex
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// DropCollection removes the document's collection from memory and disk.
func (s *LocalStore) DropCollection(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	s.mu.Lock()
	_, ok := s.collections[documentID]
	if ok {
		delete(s.collections, documentID)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, documentID)
	}

	if err := os.Remove(s.collectionPath(documentID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove collection file: %w", err)
	}

	logger.InfoContext(ctx, "collection dropped", "document_id", documentID)
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
