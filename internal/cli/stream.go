package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quillworks/quillai/internal/app"
	"github.com/quillworks/quillai/internal/orchestrator"
)

func newStreamCommand(container *app.Container) *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "stream [prompt]",
		Short: "Send a prompt and print chunks as they arrive (Ctrl-C cancels)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			writer := NewStreamWriter(out)
			done := make(chan error, 1)

			err := container.Orchestrator.GenerateStream(prompt, action, orchestrator.StreamCallbacks{
				OnChunk: writer.WriteChunk,
				OnDone: func(string) {
					writer.Done()
					done <- nil
				},
				OnCancel: func(string) {
					fmt.Fprintln(out, "\n[cancelled]")
					done <- nil
				},
				OnError: func(err error) {
					done <- err
				},
			})
			if err != nil {
				return err
			}

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)
			defer signal.Stop(interrupt)

			for {
				select {
				case <-interrupt:
					container.Orchestrator.CancelActiveStream()
				case <-cmd.Context().Done():
					container.Orchestrator.CancelActiveStream()
					return <-done
				case err := <-done:
					return err
				}
			}
		},
	}

	cmd.Flags().StringVarP(&action, "action", "a", "stream", "Action name recorded in usage history")
	return cmd
}
