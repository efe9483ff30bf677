package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/quillworks/quillai/internal/app"
	"github.com/quillworks/quillai/internal/domain"
)

const msgNoUsageRecorded = "No usage recorded yet."

func newHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect usage history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
	)

	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent usage entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listUsageEntries(cmd.OutOrStdout(), container, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryListLimit, "Max entries to show")
	return cmd
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear usage history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.UsageStore.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			return nil
		},
	}
}

func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export usage history to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportUsageEntries(container, args[0])
		},
	}
}

func listUsageEntries(out io.Writer, container *app.Container, limit int) error {
	records := container.Recorder.Recent(limit)
	if len(records) == 0 {
		fmt.Fprintln(out, msgNoUsageRecorded)
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(out, "%s | %s | %s | %s tokens | $%.4f | %s\n",
			humanize.Time(rec.Timestamp),
			rec.ActionName,
			rec.ModelID,
			humanize.Comma(int64(rec.EstimatedTokens)),
			rec.EstimatedCost,
			rec.PromptPreview)
	}
	return nil
}

func exportUsageEntries(container *app.Container, path string) error {
	records, err := container.UsageStore.Recent(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve usage records: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	// oldest first so the export reads chronologically
	for i := len(records) - 1; i >= 0; i-- {
		if err := enc.Encode(records[i]); err != nil {
			return fmt.Errorf("failed to export history to %s: %w", path, err)
		}
	}
	return nil
}
