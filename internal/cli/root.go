// Package cli wires the cobra command tree around the request orchestrator.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/quillworks/quillai/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose, NewPrompter(nil, nil))
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "quillai [prompt]",
		Short: "QuillAI - AI writing assistant",
		Long:  "QuillAI sends editor prompts to an AI backend with credential scrubbing, fallback and usage accounting.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runAsk(cmd.Context(), container, cmd.OutOrStdout(), args, "ask")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentPostRun = func(*cobra.Command, []string) {
		container.Close()
	}

	root.AddCommand(newAskCommand(container))
	root.AddCommand(newStreamCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newRedactCommand(container))
	return root, nil
}
