package chatlog

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/mahtabthestranger/Mdilink/internal/model/chat"
)

// SQLiteStore persists exchanges in a chat_messages table.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = &SQLiteStore{}

// NewSQLiteStore opens dsn and creates the schema if needed.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("sqlite chat log: empty dsn")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite chat log: open")
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			user_type TEXT NOT NULL,
			message TEXT NOT NULL,
			response TEXT NOT NULL,
			created_at_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS chat_messages_by_user ON chat_messages(user_id, user_type, created_at_ms DESC);`,
	}
	for _, st := range stmts {
		if _, err := s.db.Exec(st); err != nil {
			return errors.Wrap(err, "sqlite chat log: migrate")
		}
	}
	return nil
}

// Save inserts exchange.
func (s *SQLiteStore) Save(ctx context.Context, exchange chat.Exchange) error {
	createdAt := exchange.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (user_id, user_type, message, response, created_at_ms) VALUES (?, ?, ?, ?, ?)`,
		exchange.UserID, exchange.UserType, exchange.Message, exchange.Response, createdAt.UnixMilli(),
	)
	return errors.Wrap(err, "sqlite chat log: insert")
}

// History returns up to limit exchanges of the given user, oldest first.
func (s *SQLiteStore) History(ctx context.Context, userID, userType string, limit int) ([]chat.Exchange, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, user_type, message, response, created_at_ms
		FROM chat_messages
		WHERE user_id = ? AND user_type = ?
		ORDER BY created_at_ms DESC, id DESC
		LIMIT ?`,
		userID, userType, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite chat log: query history")
	}
	defer rows.Close()

	var out []chat.Exchange
	for rows.Next() {
		var (
			ex          chat.Exchange
			createdAtMs int64
		)
		if err := rows.Scan(&ex.UserID, &ex.UserType, &ex.Message, &ex.Response, &createdAtMs); err != nil {
			return nil, errors.Wrap(err, "sqlite chat log: scan history")
		}
		ex.CreatedAt = time.UnixMilli(createdAtMs).UTC()
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sqlite chat log: iterate history")
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
