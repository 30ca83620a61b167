package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks docchat/internal/vectorstore Store

import (
	"context"
	"errors"
)

var (
	// ErrCollectionNotFound is returned when no collection exists for a document.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDimensionMismatch is returned when a vector's length differs from the
	// store's configured dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrBadQuery is returned for malformed search input (k <= 0, empty vector).
	ErrBadQuery = errors.New("bad query")
)

// Chunk is one embedded fragment of a document.
type Chunk struct {
	ID         string    `json:"id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Vector     []float32 `json:"vector"`
}

// Result is one search hit: the chunk plus its similarity score.
type Result struct {
	Chunk Chunk
	Score float32
}

// Store holds one collection of embedded chunks per document. Re-creating a
// collection for the same document replaces the previous contents atomically:
// concurrent searches see either the old set or the new set, never a mix.
type Store interface {
	// CreateCollection builds a collection for the document from the given
	// chunks, replacing any existing collection for that document.
	CreateCollection(ctx context.Context, documentID string, chunks []Chunk) error

	// Search returns up to k chunks most similar to the query vector, ordered
	// by descending similarity. Ties break by ascending chunk index.
	Search(ctx context.Context, documentID string, query []float32, k int) ([]Result, error)

	// DropCollection removes the document's collection.
	DropCollection(ctx context.Context, documentID string) error
}
