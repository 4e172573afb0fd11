package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dafibh/paydesk/paydesk-client/internal/domain"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

// Session keys
const (
	keyUser        = "user"
	keyToken       = "token"
	keyOutstanding = "outstanding"
)

// Ensure SessionRepository implements domain.SessionStore
var _ domain.SessionStore = (*SessionRepository)(nil)

// SessionRepository implements domain.SessionStore as a key-value table in SQLite
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository opens (creating if needed) the database at dbPath and migrates it
func NewSessionRepository(dbPath string) (*SessionRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &SessionRepository{db: db}, nil
}

// Close releases the database
func (r *SessionRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the stored session. Missing keys leave their fields empty.
func (r *SessionRepository) Load(ctx context.Context) (domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM session_kv`)
	if err != nil {
		return domain.Session{}, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	var session domain.Session
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return domain.Session{}, fmt.Errorf("scan session: %w", err)
		}
		switch key {
		case keyUser:
			session.User = value
		case keyToken:
			session.Token = value
		case keyOutstanding:
			if err := json.Unmarshal([]byte(value), &session.Outstanding); err != nil {
				// A corrupt cache only costs a refetch
				log.Warn().Err(err).Msg("Discarding unreadable outstanding bills cache")
				session.Outstanding = nil
			}
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Session{}, fmt.Errorf("read session: %w", err)
	}
	return session, nil
}

// Save replaces the stored session
func (r *SessionRepository) Save(ctx context.Context, session domain.Session) error {
	values := map[string]string{
		keyUser:  session.User,
		keyToken: session.Token,
	}
	if session.Outstanding != nil {
		encoded, err := json.Marshal(session.Outstanding)
		if err != nil {
			return fmt.Errorf("encode outstanding bills: %w", err)
		}
		values[keyOutstanding] = string(encoded)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_kv`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	now := time.Now().UTC()
	for key, value := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, ?)`,
			key, value, now,
		); err != nil {
			return fmt.Errorf("store %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Clear removes everything stored for the session
func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_kv`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
