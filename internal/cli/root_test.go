package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quillworks/quillai/internal/domain"
)

// writeTestConfig points QUILLAI_CONFIG at a private-mode config so commands
// exercise the full command path and fail deterministically before any
// network call.
func writeTestConfig(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "api_key: key\nmodel_id: model-1\nprivate_mode: true\nhistory:\n  store: jsonl\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUILLAI_CONFIG", path)
}

func TestRootRunsBarePromptAsAsk(t *testing.T) {
	writeTestConfig(t)

	root, err := NewRootCmd(context.Background(), Options{})
	if err != nil {
		t.Fatalf("NewRootCmd: %v", err)
	}
	root.SetOut(new(strings.Builder))
	root.SetErr(new(strings.Builder))
	root.SetArgs([]string{"hello", "there"})

	err = root.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("expected the private-mode refusal to propagate")
	}
	if strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("bare prompt was not routed to ask: %v", err)
	}
	var blocked domain.PrivateModeBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected PrivateModeBlockedError, got %v", err)
	}
}

func TestRootWithoutArgsPrintsHelp(t *testing.T) {
	writeTestConfig(t)

	root, err := NewRootCmd(context.Background(), Options{})
	if err != nil {
		t.Fatalf("NewRootCmd: %v", err)
	}
	out := new(strings.Builder)
	root.SetOut(out)
	root.SetErr(new(strings.Builder))
	root.SetArgs(nil)

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Fatalf("expected help output, got %q", out.String())
	}
}
