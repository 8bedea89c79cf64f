package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/JustJay7/court-records-ingest/internal/markers"
	"github.com/spf13/cobra"
)

var clearMarkers bool

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "List downloads interrupted before they completed",
	Long: `Markers lists case and attachment downloads that started but never
finished. Their next fetch bypasses the response cache.

--clear resets every marker so the cache is trusted again.`,
	RunE: runMarkers,
}

func init() {
	rootCmd.AddCommand(markersCmd)
	markersCmd.Flags().BoolVar(&clearMarkers, "clear", false, "Reset every marker")
}

func runMarkers(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	out := cmd.OutOrStdout()
	for _, file := range []string{markers.CaseFile, markers.AttachmentFile} {
		store, err := markers.Open(filepath.Join(cfg.OutputDir, file), log)
		if err != nil {
			return err
		}

		pending := store.Pending()
		fmt.Fprintf(out, "%s: %d pending\n", store.Path(), len(pending))
		for _, key := range pending {
			fmt.Fprintf(out, "  %s\n", key)
		}

		if clearMarkers {
			if err := store.Reset(); err != nil {
				return err
			}
			log.Info("Markers cleared", "path", store.Path(), "count", len(pending))
		}
	}
	return nil
}
