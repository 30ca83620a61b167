package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks docchat/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document registry operations.
type DocumentStore interface {
	// Create inserts a new document record.
	Create(ctx context.Context, doc *DocumentRecord) error
	// Get gets a document by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*DocumentRecord, error)
	// List returns all documents, newest first.
	List(ctx context.Context) ([]DocumentRecord, error)
	// UpdateStatus sets the document's status, chunk count and error message.
	// Returns ErrNotFound if the document does not exist.
	UpdateStatus(ctx context.Context, id, status string, chunkCount int, errorMsg string) error
	// Delete removes a document. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// DocumentRepo provides methods for document registry operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Create inserts a new document record.
func (r *DocumentRepo) Create(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, filename, status, chunk_count, error)
		 VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Filename, doc.Status, doc.ChunkCount, doc.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// Get gets a document by ID. Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) Get(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, filename, status, chunk_count, error, created_at, updated_at
		 FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

// List returns all documents, newest first.
func (r *DocumentRepo) List(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, filename, status, chunk_count, error, created_at, updated_at
		 FROM documents ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := make([]DocumentRecord, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// UpdateStatus sets the document's status, chunk count and error message.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id, status string, chunkCount int, errorMsg string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, chunk_count = ?, error = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status, chunkCount, errorMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document. Returns ErrNotFound if it does not exist.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*DocumentRecord, error) {
	var doc DocumentRecord
	var createdAtStr, updatedAtStr string

	err := row.Scan(&doc.ID, &doc.Filename, &doc.Status, &doc.ChunkCount, &doc.Error, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, err
	}

	doc.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	doc.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}
	return &doc, nil
}

// parseTimestamp handles both DATETIME formats SQLite may emit.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
