package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

func TestDocumentRepoCreateAndGet(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	doc := &DocumentRecord{
		ID:       uuid.New().String(),
		Filename: "report.pdf",
		Status:   StatusProcessing,
	}
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.Get(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Filename != "report.pdf" {
		t.Errorf("got filename %q, want %q", got.Filename, "report.pdf")
	}
	if got.Status != StatusProcessing {
		t.Errorf("got status %q, want %q", got.Status, StatusProcessing)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestDocumentRepoGetNotFound(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDocumentRepoUpdateStatus(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	doc := &DocumentRecord{ID: uuid.New().String(), Filename: "a.pdf", Status: StatusProcessing}
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name       string
		id         string
		status     string
		chunkCount int
		errorMsg   string
		wantErr    error
	}{
		{name: "mark complete", id: doc.ID, status: StatusComplete, chunkCount: 4},
		{name: "mark failed", id: doc.ID, status: StatusFailed, errorMsg: "extraction failed"},
		{name: "unknown document", id: "missing", status: StatusComplete, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpdateStatus(ctx, tt.id, tt.status, tt.chunkCount, tt.errorMsg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("update: %v", err)
			}

			got, err := repo.Get(ctx, tt.id)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Status != tt.status {
				t.Errorf("got status %q, want %q", got.Status, tt.status)
			}
			if got.ChunkCount != tt.chunkCount {
				t.Errorf("got chunk count %d, want %d", got.ChunkCount, tt.chunkCount)
			}
			if got.Error != tt.errorMsg {
				t.Errorf("got error %q, want %q", got.Error, tt.errorMsg)
			}
		})
	}
}

func TestDocumentRepoListAndDelete(t *testing.T) {
	repo := NewDocumentRepo(newTestDB(t))
	ctx := context.Background()

	ids := []string{uuid.New().String(), uuid.New().String()}
	for _, id := range ids {
		if err := repo.Create(ctx, &DocumentRecord{ID: id, Filename: id + ".pdf", Status: StatusComplete}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	if err := repo.Delete(ctx, ids[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, ids[0]); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	docs, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected 1 document after delete, got %d", len(docs))
	}
}
