package storage

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/mock_conversation_store.go -package=mocks kaspabot/internal/storage ConversationStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// ConversationStore defines the interface for conversation persistence.
type ConversationStore interface {
	// Create starts a conversation, generating an id when none is given.
	// Creating an existing conversation is not an error; the id is returned.
	Create(ctx context.Context, id, title, userID string) (string, error)
	// Append stores one turn, creating the conversation if absent.
	Append(ctx context.Context, id, role, content string, metadata map[string]any) error
	// GetContext returns up to maxTurns turns, oldest first.
	GetContext(ctx context.Context, id string, maxTurns int) ([]Turn, error)
	// Exists reports whether a conversation exists.
	Exists(ctx context.Context, id string) (bool, error)
	// Get returns a conversation summary including its message count.
	// Returns ErrNotFound if the conversation does not exist.
	Get(ctx context.Context, id string) (*ConversationRecord, error)
	// List returns recent conversations, optionally filtered by user.
	List(ctx context.Context, userID string, limit int) ([]ConversationRecord, error)
	// ListTurns returns up to limit full message records, oldest first.
	ListTurns(ctx context.Context, id string, limit int) ([]MessageRecord, error)
	// UpdateTitle sets the conversation title.
	UpdateTitle(ctx context.Context, id, title string) error
	// Delete removes a conversation and all of its messages.
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

// Create starts a conversation. An empty id gets a generated UUID. If the
// conversation already exists the existing id is returned unchanged.
func (r *ConversationRepo) Create(ctx context.Context, id, title, userID string) (string, error) {
	if id == "" {
		id = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conversations (conversation_id, title, user_id) VALUES (?, ?, ?)
		 ON CONFLICT (conversation_id) DO NOTHING`,
		id, title, userID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}

	return id, nil
}

// Append stores one turn. A missing conversation is created first so a
// write never fails just because Create was skipped.
func (r *ConversationRepo) Append(ctx context.Context, id, role, content string, metadata map[string]any) error {
	if id == "" {
		return fmt.Errorf("conversation id is required")
	}
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("invalid role %q", role)
	}

	exists, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := r.Create(ctx, id, "", ""); err != nil {
			return err
		}
	}

	var metadataJSON any
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadataJSON = string(raw)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO messages (conversation_id, role, content, metadata) VALUES (?, ?, ?, ?)",
		id, role, content, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"UPDATE conversations SET last_updated = CURRENT_TIMESTAMP WHERE conversation_id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to bump last_updated: %w", err)
	}

	return nil
}

// GetContext returns up to maxTurns turns, oldest first. The id column
// breaks ties between messages stored within the same timestamp tick.
func (r *ConversationRepo) GetContext(ctx context.Context, id string, maxTurns int) ([]Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT role, content FROM messages
		 WHERE conversation_id = ?
		 ORDER BY timestamp ASC, id ASC
		 LIMIT ?`,
		id, maxTurns,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query context: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	turns := []Turn{}
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Exists reports whether a conversation exists.
func (r *ConversationRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM conversations WHERE conversation_id = ?", id,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check conversation: %w", err)
	}
	return true, nil
}

// Get returns a conversation summary including its message count.
func (r *ConversationRepo) Get(ctx context.Context, id string) (*ConversationRecord, error) {
	var rec ConversationRecord
	var title, userID sql.NullString
	var createdAtStr, lastUpdatedStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT c.conversation_id, c.title, c.user_id, c.created_at, c.last_updated,
		        (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.conversation_id)
		 FROM conversations c WHERE c.conversation_id = ?`,
		id,
	).Scan(&rec.ID, &title, &userID, &createdAtStr, &lastUpdatedStr, &rec.MessageCount)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}

	rec.Title = title.String
	rec.UserID = userID.String
	if rec.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
		return nil, err
	}
	if rec.LastUpdated, err = parseTimestamp(lastUpdatedStr); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the most recently updated conversations. An empty userID
// lists across all users.
func (r *ConversationRepo) List(ctx context.Context, userID string, limit int) ([]ConversationRecord, error) {
	query := `SELECT c.conversation_id, c.title, c.user_id, c.created_at, c.last_updated,
	                 (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.conversation_id)
	          FROM conversations c`
	args := []any{}
	if userID != "" {
		query += " WHERE c.user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY c.last_updated DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []ConversationRecord{}
	for rows.Next() {
		var rec ConversationRecord
		var title, user sql.NullString
		var createdAtStr, lastUpdatedStr string
		if err := rows.Scan(&rec.ID, &title, &user, &createdAtStr, &lastUpdatedStr, &rec.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		rec.Title = title.String
		rec.UserID = user.String
		if rec.CreatedAt, err = parseTimestamp(createdAtStr); err != nil {
			return nil, err
		}
		if rec.LastUpdated, err = parseTimestamp(lastUpdatedStr); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListTurns returns up to limit full message records, oldest first.
func (r *ConversationRepo) ListTurns(ctx context.Context, id string, limit int) ([]MessageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, conversation_id, role, content, metadata, timestamp FROM messages
		 WHERE conversation_id = ?
		 ORDER BY timestamp ASC, id ASC
		 LIMIT ?`,
		id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	messages := []MessageRecord{}
	for rows.Next() {
		var msg MessageRecord
		var metadataJSON sql.NullString
		var timestampStr string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Role, &msg.Content, &metadataJSON, &timestampStr); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &msg.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		if msg.Timestamp, err = parseTimestamp(timestampStr); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// UpdateTitle sets the conversation title.
func (r *ConversationRepo) UpdateTitle(ctx context.Context, id, title string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE conversations SET title = ? WHERE conversation_id = ?",
		title, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update title: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a conversation; the foreign key cascades to its messages.
func (r *ConversationRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM conversations WHERE conversation_id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// parseTimestamp handles both SQLite DATETIME formats.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
