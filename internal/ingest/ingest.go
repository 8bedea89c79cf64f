// Package ingest runs case fetches one after another and writes what they
// produce to per-case artifacts and the shared summary and action stores.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JustJay7/court-records-ingest/internal/database"
	"github.com/JustJay7/court-records-ingest/internal/scraper"
	"github.com/JustJay7/court-records-ingest/internal/table"
	"github.com/JustJay7/court-records-ingest/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	SummaryFile = "summary.csv"
	ActionsFile = "actions.csv"
)

// Stats tracks ingest statistics
type Stats struct {
	Total              int `json:"total"`
	Fetched            int `json:"fetched"`
	Skipped            int `json:"skipped"`
	Failed             int `json:"failed"`
	NotFound           int `json:"not_found"`
	Attachments        int `json:"attachments"`
	AttachmentFailures int `json:"attachment_failures"`
}

// Fetcher fetches one case
type Fetcher interface {
	FetchCase(ctx context.Context, id string) (*scraper.Result, error)
}

// Ingestor orchestrates a batch of case fetches
type Ingestor struct {
	fetcher   Fetcher
	db        *gorm.DB
	outputDir string
	summary   *table.Store
	actions   *table.Store
	logger    *logger.Logger
}

// NewIngestor creates a new Ingestor. db may be nil, in which case no fetch
// log is kept.
func NewIngestor(outputDir string, fetcher Fetcher, db *gorm.DB, logger *logger.Logger) *Ingestor {
	return &Ingestor{
		fetcher:   fetcher,
		db:        db,
		outputDir: outputDir,
		summary:   table.NewStore(filepath.Join(outputDir, SummaryFile), "id", table.SummaryColumns...),
		actions:   table.NewStore(filepath.Join(outputDir, ActionsFile), "id", table.ActionColumns...),
		logger:    logger,
	}
}

// Run fetches every id in order. A failed case is logged and counted and
// the batch moves on; only cancellation of ctx stops it early.
func (i *Ingestor) Run(ctx context.Context, ids []string) (*Stats, error) {
	stats := &Stats{Total: len(ids)}

	for idx, id := range ids {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		progress := fmt.Sprintf("%d/%d", idx+1, stats.Total)
		i.logger.Info("Fetching case", "case", id, "progress", progress)

		start := time.Now()
		result, err := i.fetcher.FetchCase(ctx, id)
		if err == nil {
			err = i.store(result)
		}
		i.record(id, result, err, time.Since(start))

		var searchErr *scraper.SearchError
		switch {
		case err == nil:
			stats.Fetched++
			stats.Attachments += len(result.Attachments)
			stats.AttachmentFailures += len(multierr.Errors(result.AttachmentErr))
		case errors.Is(err, scraper.ErrAlreadyFetched):
			i.logger.Info("Case already fetched, skipping", "case", id)
			stats.Skipped++
		case errors.As(err, &searchErr):
			i.logger.Warn("Case not found", "case", id, "message", searchErr.Message)
			stats.NotFound++
		default:
			i.logger.Error("Failed to fetch case", "case", id, "kind", scraper.ErrorKind(err), "error", err)
			stats.Failed++
		}
	}

	return stats, nil
}

// store writes the per-case artifacts and merges the case into the shared
// stores
func (i *Ingestor) store(result *scraper.Result) error {
	record := result.CaseRecord
	dir := scraper.CaseDir(i.outputDir, record.ID)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode case %s: %w", record.ID, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create case directory: %w", err)
	}
	if err := os.WriteFile(JSONPath(i.outputDir, record.ID), data, 0644); err != nil {
		return fmt.Errorf("failed to write case %s: %w", record.ID, err)
	}

	summaryRows := []table.Row{table.SummaryRow(record)}
	actionRows := table.ActionRows(record.ID, record.Actions)
	costRows := table.CostRows(record.ID, record.Costs)

	artifacts := []struct {
		suffix  string
		columns []string
		rows    []table.Row
	}{
		{"_summary.csv", table.SummaryColumns, summaryRows},
		{"_actions.csv", table.ActionColumns, actionRows},
		{"_costs.csv", table.CostColumns, costRows},
	}
	for _, a := range artifacts {
		path := filepath.Join(dir, record.ID+a.suffix)
		if err := table.WriteFile(path, table.Header("id", a.columns, a.rows), a.rows); err != nil {
			return err
		}
	}

	if err := i.merge(i.summary, summaryRows, ""); err != nil {
		return err
	}
	// actions of a re-fetched case replace the old ones wholesale
	return i.merge(i.actions, actionRows, record.ID)
}

func (i *Ingestor) merge(store *table.Store, rows []table.Row, replaceCase string) error {
	t, err := store.Load()
	if err != nil {
		return err
	}
	if replaceCase != "" {
		t.DeleteWhere("case_id", replaceCase)
	}
	for _, row := range rows {
		store.Upsert(t, row)
	}
	return store.Save(t)
}

func (i *Ingestor) record(id string, result *scraper.Result, err error, elapsed time.Duration) {
	if i.db == nil {
		return
	}

	entry := &database.FetchLog{
		CaseID:    id,
		Success:   err == nil,
		Skipped:   errors.Is(err, scraper.ErrAlreadyFetched),
		ErrorKind: scraper.ErrorKind(err),
		FetchTime: time.Now(),
		Duration:  elapsed.Milliseconds(),
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	}
	var reqErr *scraper.RequestError
	if errors.As(err, &reqErr) {
		entry.StatusCode = reqErr.StatusCode
	}
	if result != nil {
		entry.Actions = len(result.Actions)
		entry.Attachments = len(result.Attachments)
	}

	if dbErr := database.RecordFetch(i.db, entry); dbErr != nil {
		i.logger.Warn("Failed to record fetch", "case", id, "error", dbErr)
	}
}

// JSONPath is the per-case JSON document
func JSONPath(outputDir, caseID string) string {
	return filepath.Join(scraper.CaseDir(outputDir, caseID), caseID+".json")
}
