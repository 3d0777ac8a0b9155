package conversation

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// HistoryStore persists per-persona conversation state on the client side.
type HistoryStore interface {
	// Load returns the stored message list, nil when none exists.
	Load(personaID string) ([]Message, error)
	// Save replaces the stored message list.
	Save(personaID string, messages []Message) error
	// Visited reports whether the persona has been marked visited.
	Visited(personaID string) (bool, error)
	// MarkVisited records the first visit.
	MarkVisited(personaID string) error
	Close() error
}

// SQLiteHistory is the durable local store backing HistoryStore.
type SQLiteHistory struct {
	db *sql.DB
}

var _ HistoryStore = (*SQLiteHistory)(nil)

// OpenSQLiteHistory opens (and initializes) the history database at path.
func OpenSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	h := &SQLiteHistory{db: db}
	if err = h.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return h, nil
}

func (h *SQLiteHistory) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS chat_histories (
        persona_id TEXT PRIMARY KEY,
        messages_json TEXT NOT NULL,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS persona_visits (
        persona_id TEXT PRIMARY KEY,
        visited_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := h.db.Exec(schema)
	return err
}

func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}

func (h *SQLiteHistory) Load(personaID string) ([]Message, error) {
	var raw string
	err := h.db.QueryRow(
		"SELECT messages_json FROM chat_histories WHERE persona_id = ?", personaID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil, fmt.Errorf("failed to parse stored history: %w", err)
	}
	return messages, nil
}

func (h *SQLiteHistory) Save(personaID string, messages []Message) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	_, err = h.db.Exec(`
        INSERT INTO chat_histories (persona_id, messages_json, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(persona_id) DO UPDATE SET
            messages_json = excluded.messages_json,
            updated_at = CURRENT_TIMESTAMP`,
		personaID, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}

func (h *SQLiteHistory) Visited(personaID string) (bool, error) {
	var count int
	err := h.db.QueryRow(
		"SELECT COUNT(1) FROM persona_visits WHERE persona_id = ?", personaID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query visits: %w", err)
	}
	return count > 0, nil
}

func (h *SQLiteHistory) MarkVisited(personaID string) error {
	_, err := h.db.Exec(
		"INSERT OR IGNORE INTO persona_visits (persona_id) VALUES (?)", personaID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark visit: %w", err)
	}
	return nil
}
