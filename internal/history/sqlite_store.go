package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/pkg/filesystem"
	"github.com/quillworks/quillai/internal/ports"
)

// SQLiteStore persists usage records in a SQLite database.
type SQLiteStore struct {
	db         *sql.DB
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewSQLiteStore creates (or opens) a usage database at path, defaulting to
// ~/.quillai/history/usage.db. When the database cannot be opened the store
// degrades to the jsonl file next to it.
func NewSQLiteStore(path string, maxEntries int) *SQLiteStore {
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".quillai", "history", "usage.db")
	}
	_ = os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path, maxEntries: maxEntries}
	}
	store := &SQLiteStore{db: db, path: path, maxEntries: maxEntries}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path, maxEntries: maxEntries}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS usage_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		action_name TEXT,
		model_id TEXT,
		prompt_char_count INTEGER,
		response_char_count INTEGER,
		prompt_preview TEXT,
		response_preview TEXT,
		estimated_tokens INTEGER,
		estimated_cost REAL
	);`)
	return err
}

func (s *SQLiteStore) fallback() *FileStore {
	return NewFileStore(s.path+".jsonl", s.maxEntries)
}

// Append inserts one record and trims the oldest rows beyond the cap.
func (s *SQLiteStore) Append(record domain.UsageRecord) error {
	if s.db == nil {
		return s.fallback().Append(record)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO usage_records
		(timestamp, action_name, model_id, prompt_char_count, response_char_count,
		 prompt_preview, response_preview, estimated_tokens, estimated_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Timestamp.Format(domain.TimestampFormat),
		record.ActionName,
		record.ModelID,
		record.PromptCharCount,
		record.ResponseCharCount,
		record.PromptPreview,
		record.ResponsePreview,
		record.EstimatedTokens,
		record.EstimatedCost,
	)
	if err != nil {
		return err
	}
	if s.maxEntries > 0 {
		_, err = s.db.Exec(`DELETE FROM usage_records WHERE id NOT IN (
			SELECT id FROM usage_records ORDER BY id DESC LIMIT ?)`, s.maxEntries)
	}
	return err
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (s *SQLiteStore) Recent(limit int) ([]domain.UsageRecord, error) {
	if s.db == nil {
		return s.fallback().Recent(limit)
	}
	query := `SELECT timestamp, action_name, model_id, prompt_char_count, response_char_count,
		prompt_preview, response_preview, estimated_tokens, estimated_cost
		FROM usage_records ORDER BY id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.UsageRecord
	for rows.Next() {
		var rec domain.UsageRecord
		var ts string
		if err := rows.Scan(&ts, &rec.ActionName, &rec.ModelID, &rec.PromptCharCount,
			&rec.ResponseCharCount, &rec.PromptPreview, &rec.ResponsePreview,
			&rec.EstimatedTokens, &rec.EstimatedCost); err != nil {
			return nil, err
		}
		if t, err := time.Parse(domain.TimestampFormat, ts); err == nil {
			rec.Timestamp = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all usage records.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback().Clear()
	}
	_, err := s.db.Exec("DELETE FROM usage_records")
	return err
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

var _ ports.UsageStore = (*SQLiteStore)(nil)
