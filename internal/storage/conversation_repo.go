package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_conversation_store.go -package=mocks docchat/internal/storage ConversationStore

import (
	"context"
	"database/sql"
	"fmt"
)

// ConversationStore defines the interface for conversation persistence.
type ConversationStore interface {
	// Create inserts a new conversation.
	Create(ctx context.Context, conv *ConversationRecord) error
	// Get gets a conversation by ID. Returns nil and ErrNotFound if not found.
	Get(ctx context.Context, id string) (*ConversationRecord, error)
	// List returns all conversations, most recently updated first.
	List(ctx context.Context) ([]ConversationRecord, error)
	// AppendTurn stores one user/assistant exchange in a single transaction.
	// Returns ErrNotFound if the conversation does not exist.
	AppendTurn(ctx context.Context, conversationID, userContent, assistantContent string) error
	// GetHistory returns the conversation's messages in insertion order.
	// An unknown conversation yields an empty slice, not an error.
	GetHistory(ctx context.Context, conversationID string) ([]ChatMessage, error)
	// Delete removes a conversation and its messages.
	Delete(ctx context.Context, id string) error
}

// ConversationRepo provides methods for conversation operations.
// It implements the ConversationStore interface.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates a new ConversationRepo.
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// Create inserts a new conversation.
func (r *ConversationRepo) Create(ctx context.Context, conv *ConversationRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO conversations (id, title) VALUES (?, ?)",
		conv.ID, conv.Title,
	)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

// Get gets a conversation by ID. Returns nil and ErrNotFound if not found.
func (r *ConversationRepo) Get(ctx context.Context, id string) (*ConversationRecord, error) {
	var conv ConversationRecord
	var createdAtStr, updatedAtStr string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations WHERE id = ?", id,
	).Scan(&conv.ID, &conv.Title, &createdAtStr, &updatedAtStr)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	conv.CreatedAt, err = parseTimestamp(createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	conv.UpdatedAt, err = parseTimestamp(updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}
	return &conv, nil
}

// List returns all conversations, most recently updated first.
func (r *ConversationRepo) List(ctx context.Context) ([]ConversationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, created_at, updated_at FROM conversations ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	convs := make([]ConversationRecord, 0)
	for rows.Next() {
		var conv ConversationRecord
		var createdAtStr, updatedAtStr string
		if err := rows.Scan(&conv.ID, &conv.Title, &createdAtStr, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conv.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		conv.UpdatedAt, err = parseTimestamp(updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return convs, nil
}

// AppendTurn stores one user/assistant exchange in a single transaction, so a
// half-written turn never becomes visible.
func (r *ConversationRepo) AppendTurn(ctx context.Context, conversationID, userContent, assistantContent string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM conversations WHERE id = ?", conversationID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check conversation: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, role, content) VALUES (?, ?, ?)",
		conversationID, "user", userContent,
	); err != nil {
		return fmt.Errorf("failed to insert user message: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, role, content) VALUES (?, ?, ?)",
		conversationID, "assistant", assistantContent,
	); err != nil {
		return fmt.Errorf("failed to insert assistant message: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		conversationID,
	); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit turn: %w", err)
	}
	return nil
}

// GetHistory returns the conversation's messages in insertion order.
func (r *ConversationRepo) GetHistory(ctx context.Context, conversationID string) ([]ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY id`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	messages := make([]ChatMessage, 0)
	for rows.Next() {
		var msg ChatMessage
		var createdAtStr string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.CreatedAt, err = parseTimestamp(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

// Delete removes a conversation and its messages.
func (r *ConversationRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
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
