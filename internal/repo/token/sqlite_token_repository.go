package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/disastermap/internal/domain"
	"github.com/mkrupp/disastermap/internal/infra/logging"
)

// SQLiteTokenRepositoryConfig holds configuration for the SQLite token repository.
type SQLiteTokenRepositoryConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/disastermap.db"`
	// Slot names the row holding the token, so several profiles can share one file
	Slot string `env:"SLOT" default:"default"`
}

// SQLiteTokenRepository implements Repository using SQLite as the storage backend.
type SQLiteTokenRepository struct {
	db        *sql.DB
	slot      string
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteTokenRepository)(nil)

// SQLiteTokenRepositoryFactory creates a factory function that returns a new SQLiteTokenRepository.
// The factory function implements the RepositoryFactory type.
func SQLiteTokenRepositoryFactory(cfg SQLiteTokenRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteTokenRepository(cfg)
	}
}

// NewSQLiteTokenRepository creates a new SQLiteTokenRepository with the given configuration.
// It creates the parent directory, opens the database and creates the schema if needed.
func NewSQLiteTokenRepository(cfg SQLiteTokenRepositoryConfig) (*SQLiteTokenRepository, error) {
	log := logging.GetLogger("repo.token.sqlite_token_repository").With(
		logging.Group("db", "path", cfg.DatabasePath, "slot", cfg.Slot),
	)

	if cfg.Slot == "" {
		cfg.Slot = "default"
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil { //nolint:mnd
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping db: %w", classify(err))
	}

	if err := initializeDB(db); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("initialize db: %w", classify(err))
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteTokenRepository{
		db:        db,
		slot:      cfg.Slot,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS auth_tokens (
			slot      TEXT    PRIMARY KEY,
			token     TEXT    NOT NULL,
			stored_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// GetToken implements Repository.GetToken using SQLite.
func (r *SQLiteTokenRepository) GetToken(ctx context.Context) (domain.AuthToken, bool, error) {
	var token string

	err := r.db.QueryRowContext(ctx,
		"SELECT token FROM auth_tokens WHERE slot = ?",
		r.slot,
	).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("query token: %w", classify(err))
	}

	return domain.AuthToken(token), token != "", nil
}

// StoreToken implements Repository.StoreToken using SQLite.
func (r *SQLiteTokenRepository) StoreToken(ctx context.Context, token domain.AuthToken) error {
	if token == "" {
		return r.ClearToken(ctx)
	}

	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_tokens (slot, token, stored_at) VALUES (?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET token = excluded.token, stored_at = excluded.stored_at`,
		r.slot,
		string(token),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert token: %w", classify(err))
	}

	r.log.DebugContext(ctx, "token stored")

	return nil
}

// ClearToken implements Repository.ClearToken using SQLite.
func (r *SQLiteTokenRepository) ClearToken(ctx context.Context) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM auth_tokens WHERE slot = ?", r.slot); err != nil {
		return fmt.Errorf("delete token: %w", classify(err))
	}

	r.log.DebugContext(ctx, "token cleared")

	return nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteTokenRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}

// classify marks errors that mean the token file cannot be used at all.
func classify(err error) error {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return err
	}

	switch liteErr.Code() & 0xff { //nolint:mnd
	case sqlite3.SQLITE_READONLY, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_PERM:
		return errors.Join(domain.ErrTokenStoreUnavailable, err)
	default:
		return err
	}
}
