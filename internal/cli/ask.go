package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillworks/quillai/internal/app"
)

func newAskCommand(container *app.Container) *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a prompt and print the full response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), container, cmd.OutOrStdout(), args, action)
		},
	}

	cmd.Flags().StringVarP(&action, "action", "a", "ask", "Action name recorded in usage history")
	return cmd
}

// runAsk is the shared synchronous-request path, used by the ask subcommand
// and by the root command's bare-prompt shortcut.
func runAsk(ctx context.Context, container *app.Container, out io.Writer, args []string, action string) error {
	prompt := strings.Join(args, " ")
	done := make(chan error, 1)

	container.Orchestrator.Generate(prompt, action,
		func(result string) {
			fmt.Fprintln(out, result)
			done <- nil
		},
		func(err error) {
			done <- err
		},
	)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
