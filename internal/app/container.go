package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quillworks/quillai/internal/backend"
	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/history"
	"github.com/quillworks/quillai/internal/orchestrator"
	"github.com/quillworks/quillai/internal/pkg/logger"
	"github.com/quillworks/quillai/internal/ports"
	"github.com/quillworks/quillai/internal/settings"
	"github.com/quillworks/quillai/internal/usage"
)

// Container wires the orchestrator with its infrastructure adapters.
type Container struct {
	Orchestrator   *orchestrator.Orchestrator
	SettingsLoader *settings.FileLoader
	Recorder       *usage.Recorder
	UsageStore     ports.UsageStore
	Log            zerolog.Logger
}

// BuildContainer constructs the dependency graph. The confirmer is supplied
// by the caller because the surface (terminal prompt, editor dialog) owns it.
func BuildContainer(ctx context.Context, verbose bool, confirmer ports.RedactionConfirmer) (*Container, error) {
	loader := settings.NewFileLoader("")
	cfg, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(verbose)

	chain := backend.NewChain(log,
		backend.NewChatClient(cfg.Backends.ChatEndpoint, nil),
		backend.NewLegacyClient(cfg.Backends.LegacyEndpoint, nil),
	)

	store := buildStore(cfg.History)
	recorder := usage.NewRecorder(store, log, cfg.CostPer1KTokens, cfg.History.MaxEntries, cfg.History.PreviewChars)

	orch := orchestrator.New(loader, chain, recorder, confirmer, log)

	return &Container{
		Orchestrator:   orch,
		SettingsLoader: loader,
		Recorder:       recorder,
		UsageStore:     store,
		Log:            log,
	}, nil
}

func buildStore(cfg domain.History) ports.UsageStore {
	if cfg.Store == "jsonl" {
		return history.NewFileStore("", cfg.MaxEntries)
	}
	return history.NewSQLiteStore("", cfg.MaxEntries)
}

// Close releases the orchestrator's dispatch resources.
func (c *Container) Close() {
	c.Orchestrator.Close()
}
