package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillworks/quillai/internal/app"
	"github.com/quillworks/quillai/internal/redact"
)

func newRedactCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "redact [text]",
		Short: "Show how a prompt would be scrubbed before sending",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.SettingsLoader.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			outcome := redact.Redact(strings.Join(args, " "), redact.Options{
				Emails: cfg.Redaction.Emails,
				Paths:  cfg.Redaction.Paths,
				Tokens: cfg.Redaction.TokensEnabled(),
			})

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, outcome.Text)
			if !outcome.Changed() {
				fmt.Fprintln(out, "(nothing redacted)")
				return nil
			}
			for _, applied := range outcome.Applied {
				fmt.Fprintf(out, "%s: %d\n", applied.Category, applied.Count)
			}
			return nil
		},
	}
}
