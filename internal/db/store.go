package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Store is the sqlite-backed client-local key/value storage. It satisfies
// session.Storage.
type Store struct {
	DB *sql.DB
}

type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(key string) (string, bool, error) {
	return s.GetValue(context.Background(), key)
}

func (s *Store) Set(key, value string) error {
	return s.SetValue(context.Background(), key, value)
}

func (s *Store) Remove(key string) error {
	return s.RemoveValue(context.Background(), key)
}

func (s *Store) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *Store) SetValue(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	return err
}

func (s *Store) RemoveValue(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}

func (s *Store) ListEntries(ctx context.Context) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT key, value, updated_at FROM kv ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.Value, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
