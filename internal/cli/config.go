package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quillworks/quillai/internal/app"
	"github.com/quillworks/quillai/internal/domain"
	"github.com/quillworks/quillai/internal/settings"
)

const msgNoDifferencesFromDefault = "No differences from default configuration."

func newConfigCommand(container *app.Container) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect QuillAI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}

	configCmd.AddCommand(
		newConfigShowCommand(container),
		newConfigSetCommand(container),
		newConfigPathCommand(container),
		newConfigResetCommand(container),
		newConfigDiffCommand(container),
	)

	return configCmd
}

func newConfigShowCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show full configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), container)
		},
	}
}

func newConfigSetCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value (value accepts YAML syntax)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := strings.Join(args[1:], " ")
			return setConfigurationValue(cmd.Context(), container, key, value)
		},
	}
}

func newConfigPathCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), container.SettingsLoader.Path())
			return nil
		},
	}
}

func newConfigResetCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.SettingsLoader.Reset()
			if err != nil {
				return fmt.Errorf("failed to reset configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration reset at %s\n", container.SettingsLoader.Path())
			data, _ := yaml.Marshal(cfg)
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigDiffCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show diff versus default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := container.SettingsLoader.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load current configuration: %w", err)
			}
			diff := cmp.Diff(settings.DefaultSettings(), current)
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), msgNoDifferencesFromDefault)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), diff)
			return nil
		},
	}
}

func showConfiguration(ctx context.Context, out io.Writer, container *app.Container) error {
	cfg, err := container.SettingsLoader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	fmt.Fprint(out, string(data))
	return nil
}

func setConfigurationValue(ctx context.Context, container *app.Container, keyPath, value string) error {
	cfg, err := container.SettingsLoader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfgMap, err := settingsToMap(cfg)
	if err != nil {
		return err
	}

	var parsed interface{}
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		return fmt.Errorf("failed to parse value: %w", err)
	}

	if !setNestedMapValue(cfgMap, strings.Split(keyPath, "."), parsed) {
		return fmt.Errorf("unable to set key %s", keyPath)
	}

	updated, err := mapToSettings(cfgMap)
	if err != nil {
		return err
	}

	return container.SettingsLoader.Save(updated)
}

func settingsToMap(cfg domain.Settings) (map[string]interface{}, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	var cfgMap map[string]interface{}
	if err := yaml.Unmarshal(raw, &cfgMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to map: %w", err)
	}
	return cfgMap, nil
}

func mapToSettings(cfgMap map[string]interface{}) (domain.Settings, error) {
	raw, err := yaml.Marshal(cfgMap)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to marshal updated map: %w", err)
	}
	var updated domain.Settings
	if err := yaml.Unmarshal(raw, &updated); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return updated, nil
}

func setNestedMapValue(m map[string]interface{}, keys []string, value interface{}) bool {
	if len(keys) == 0 {
		return false
	}
	if len(keys) == 1 {
		m[keys[0]] = value
		return true
	}
	child, ok := m[keys[0]].(map[string]interface{})
	if !ok {
		return false
	}
	return setNestedMapValue(child, keys[1:], value)
}
