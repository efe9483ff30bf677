// Package history provides the persistent adapters behind ports.UsageStore:
// a JSONL file store and a SQLite store.
package history

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/pkg/filesystem"
	"github.com/quillworks/quillai/internal/ports"
)

// FileStore appends usage records to a jsonl file.
type FileStore struct {
	path       string
	maxEntries int
	mu         sync.Mutex
}

// NewFileStore creates a usage store at path, or under
// ~/.quillai/history/usage.jsonl when path is empty. maxEntries <= 0 keeps
// the file unbounded.
func NewFileStore(path string, maxEntries int) *FileStore {
	if path == "" {
		path = filepath.Join(filesystem.UserHomeDir(), ".quillai", "history", "usage.jsonl")
	}
	return &FileStore{path: path, maxEntries: maxEntries}
}

// Append implements ports.UsageStore.
func (f *FileStore) Append(record domain.UsageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}

	records, err := f.readAll()
	if err != nil {
		return err
	}
	records = append(records, record)
	if f.maxEntries > 0 && len(records) > f.maxEntries {
		records = records[len(records)-f.maxEntries:]
	}
	return f.writeAll(records)
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (f *FileStore) Recent(limit int) ([]domain.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records, err := f.readAll()
	if err != nil {
		return nil, err
	}
	// reverse to newest-first
	out := make([]domain.UsageRecord, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		out = append(out, records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Clear removes the history file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) readAll() ([]domain.UsageRecord, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	var records []domain.UsageRecord
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		var rec domain.UsageRecord
		if err := json.Unmarshal(line, &rec); err == nil {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (f *FileStore) writeAll(records []domain.UsageRecord) error {
	var buf bytes.Buffer
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			continue
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return os.WriteFile(f.path, buf.Bytes(), 0o644)
}

var _ ports.UsageStore = (*FileStore)(nil)
