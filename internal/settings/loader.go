package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quillworks/quillai/assets"
	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/pkg/filesystem"
	"github.com/quillworks/quillai/internal/ports"
)

const apiKeyEnvVar = "QUILLAI_API_KEY"

// FileLoader loads YAML settings from ~/.quillai/config.yaml (overridable via QUILLAI_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.SettingsProvider.
func (l *FileLoader) Load(context.Context) (domain.Settings, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Settings{}, fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultSettings()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Settings{}, err
			}
			return hydrateEnv(cfg), nil
		}
		return domain.Settings{}, err
	}

	var cfg domain.Settings
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Settings{}, err
	}

	return hydrateEnv(hydrateDefaults(cfg)), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("QUILLAI_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".quillai", "config.yaml")
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Save writes the given settings back to disk.
func (l *FileLoader) Save(cfg domain.Settings) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := ensureConfigDir(l.resolvePath()); err != nil {
		return err
	}
	return os.WriteFile(l.resolvePath(), raw, domain.SecureFilePermissions)
}

// Reset overwrites the settings file with defaults and returns the default snapshot.
func (l *FileLoader) Reset() (domain.Settings, error) {
	cfg := defaultSettings()
	if err := l.Save(cfg); err != nil {
		return domain.Settings{}, err
	}
	return cfg, nil
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func writeDefault(path string, cfg domain.Settings) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

func defaultSettings() domain.Settings {
	var cfg domain.Settings
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		// Fallback if the embedded YAML is ever corrupted.
		return hydrateDefaults(domain.Settings{ConfigFormatVersion: "1"})
	}
	return hydrateDefaults(cfg)
}

func hydrateDefaults(cfg domain.Settings) domain.Settings {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.History.MaxEntries <= 0 {
		cfg.History.MaxEntries = domain.DefaultHistoryMaxEntries
	}
	if cfg.History.PreviewChars <= 0 {
		cfg.History.PreviewChars = domain.DefaultPreviewChars
	}
	if cfg.History.Store == "" {
		cfg.History.Store = "sqlite"
	}
	return cfg
}

// hydrateEnv overlays credentials the user keeps out of the config file.
func hydrateEnv(cfg domain.Settings) domain.Settings {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(apiKeyEnvVar)
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

// DefaultSettings exposes the bootstrap settings template.
func DefaultSettings() domain.Settings {
	return defaultSettings()
}

var _ ports.SettingsProvider = (*FileLoader)(nil)
