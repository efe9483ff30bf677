package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/ports"
)

func sampleRecord(action string) domain.UsageRecord {
	return domain.UsageRecord{
		Timestamp:         time.Now().UTC().Truncate(time.Second),
		ActionName:        action,
		ModelID:           "model-1",
		PromptCharCount:   12,
		ResponseCharCount: 34,
		PromptPreview:     "hello",
		ResponsePreview:   "world",
		EstimatedTokens:   11,
		EstimatedCost:     0.022,
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "usage.jsonl"), 0)
	testRoundTrip(t, store)
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "usage.db"), 0)
	testRoundTrip(t, store)
}

func testRoundTrip(t *testing.T, store ports.UsageStore) {
	t.Helper()
	first := sampleRecord("rewrite")
	second := sampleRecord("summarize")
	if err := store.Append(first); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := store.Append(second); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	got, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	want := []domain.UsageRecord{second, first} // newest first
	if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(time.Second)); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}

	limited, err := store.Recent(1)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(limited) != 1 || limited[0].ActionName != "summarize" {
		t.Fatalf("Recent(1) = %+v", limited)
	}
}

func TestFileStoreCapIsFIFO(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "usage.jsonl"), 2)
	testCapIsFIFO(t, store)
}

func TestSQLiteStoreCapIsFIFO(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "usage.db"), 2)
	testCapIsFIFO(t, store)
}

func testCapIsFIFO(t *testing.T, store ports.UsageStore) {
	t.Helper()
	for _, action := range []string{"a", "b", "c"} {
		if err := store.Append(sampleRecord(action)); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}
	got, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected cap of 2, got %d records", len(got))
	}
	if got[0].ActionName != "c" || got[1].ActionName != "b" {
		t.Fatalf("oldest record should be evicted first, got %+v", got)
	}
}

func TestClearEmptiesStore(t *testing.T) {
	stores := map[string]ports.UsageStore{
		"file":   NewFileStore(filepath.Join(t.TempDir(), "usage.jsonl"), 0),
		"sqlite": NewSQLiteStore(filepath.Join(t.TempDir(), "usage.db"), 0),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			if err := store.Append(sampleRecord("x")); err != nil {
				t.Fatalf("Append error: %v", err)
			}
			if err := store.Clear(); err != nil {
				t.Fatalf("Clear error: %v", err)
			}
			got, err := store.Recent(0)
			if err != nil {
				t.Fatalf("Recent error: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("expected empty store, got %+v", got)
			}
		})
	}
}

func TestRecentOnEmptyStore(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "usage.jsonl"), 0)
	got, err := store.Recent(5)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %+v", got)
	}
}
