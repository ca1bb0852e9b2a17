package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/kharcha/internal/cli"
	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/engine"
	"github.com/Veraticus/kharcha/internal/server"
	"github.com/Veraticus/kharcha/internal/storage"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent extractions from the audit log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return common.NewUserError("--limit must be positive", errors.New("invalid limit"))
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if !settings.AuditEnabled {
				return common.NewUserError("The audit log is disabled (audit.enabled: false).", nil)
			}

			db, err := storage.Open(cmd.Context(), settings.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open audit log: %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			records, err := db.RecentExtractions(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				entries := make([]server.HistoryEntry, 0, len(records))
				for _, r := range records {
					entries = append(entries, server.NewHistoryEntry(r))
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			counts, err := db.CountByStatus(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprint(out, cli.RenderHistory(records)); err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf(
				"%d accepted, %d retry suggested, %d rejected in total",
				counts[engine.StatusAccepted], counts[engine.StatusRetrySuggested], counts[engine.StatusRejected])))
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")

	return cmd
}
