package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JustJay7/court-records-ingest/internal/ingest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

var fetchFile string

var fetchCmd = &cobra.Command{
	Use:   "fetch [case-id...]",
	Short: "Fetch cases and merge them into the output stores",
	Long: `Fetch requests each case in turn, saves the raw page, downloads the
attachments linked from its register of actions and merges the results into
summary.csv and actions.csv in the output directory.

A failed case is logged and counted; the remaining cases are still fetched.

Examples:
  # Fetch two cases
  court-ingest fetch CR2100001 TR2200002

  # Fetch every id listed in a file, one per line
  court-ingest fetch --file ids.txt

  # Do not refetch cases whose raw page is already saved
  court-ingest fetch --skip-existing --file ids.txt`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchFile, "file", "f", "", "File with one case id per line")
	fetchCmd.Flags().Bool("skip-existing", false, "Skip cases whose raw page already exists (SKIP_EXISTING)")
	fetchCmd.Flags().Int("interval", 0, "Minimum milliseconds between requests (REQUEST_INTERVAL)")

	viper.BindPFlag("skip_existing", fetchCmd.Flags().Lookup("skip-existing"))
	viper.BindPFlag("request_interval", fetchCmd.Flags().Lookup("interval"))
}

func runFetch(cmd *cobra.Command, args []string) (err error) {
	ids := args
	if fetchFile != "" {
		fromFile, err := readIDs(fetchFile)
		if err != nil {
			return err
		}
		ids = append(ids, fromFile...)
	}
	if len(ids) == 0 {
		return errors.New("no case ids given")
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	pipeline, err := ingest.NewPipeline(cfg, log)
	if err != nil {
		log.Error("Failed to start fetch", "error", err)
		return err
	}
	defer func() {
		err = multierr.Append(err, pipeline.Close())
	}()

	log.Info("Starting fetch", "cases", len(ids), "output_dir", cfg.OutputDir)

	stats, err := pipeline.Run(cmd.Context(), ids)
	if stats != nil {
		printStats(cmd.OutOrStdout(), stats)
	}
	if errors.Is(err, context.Canceled) {
		log.Warn("Fetch interrupted")
	}
	return err
}

func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open id file: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, scanner.Err()
}

func printStats(w io.Writer, stats *ingest.Stats) {
	fmt.Fprintln(w, "\n=== Fetch Summary ===")
	fmt.Fprintf(w, "Total cases:         %d\n", stats.Total)
	fmt.Fprintf(w, "Fetched:             %d\n", stats.Fetched)
	fmt.Fprintf(w, "Skipped:             %d\n", stats.Skipped)
	fmt.Fprintf(w, "Not found:           %d\n", stats.NotFound)
	fmt.Fprintf(w, "Failed:              %d\n", stats.Failed)
	fmt.Fprintf(w, "Attachments:         %d\n", stats.Attachments)
	fmt.Fprintf(w, "Attachment failures: %d\n", stats.AttachmentFailures)
}
