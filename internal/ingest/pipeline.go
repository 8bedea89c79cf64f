package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/JustJay7/court-records-ingest/internal/cache"
	"github.com/JustJay7/court-records-ingest/internal/config"
	"github.com/JustJay7/court-records-ingest/internal/database"
	"github.com/JustJay7/court-records-ingest/internal/markers"
	"github.com/JustJay7/court-records-ingest/internal/scraper"
	"github.com/JustJay7/court-records-ingest/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Pipeline owns every resource a fetch run needs
type Pipeline struct {
	cfg    *config.Config
	logger *logger.Logger

	Cache             cache.Cache
	DB                *gorm.DB
	CaseMarkers       *markers.Store
	AttachmentMarkers *markers.Store
	Scraper           *scraper.Scraper
	Ingestor          *Ingestor
}

// NewPipeline validates cfg and opens the cache, marker files, fetch log and
// HTTP client. Nothing is fetched.
func NewPipeline(cfg *config.Config, log *logger.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cache.NewCache(cfg.CacheSize, 10*time.Minute)
	if err := c.Load(cfg.CachePath); err != nil {
		// a broken cache only costs extra requests
		log.Warn("Failed to load response cache", "path", cfg.CachePath, "error", err)
	}

	caseMarkers, err := markers.Open(filepath.Join(cfg.OutputDir, markers.CaseFile), log)
	if err != nil {
		return nil, err
	}
	attachmentMarkers, err := markers.Open(filepath.Join(cfg.OutputDir, markers.AttachmentFile), log)
	if err != nil {
		return nil, err
	}

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fetch log: %w", err)
	}

	client, err := scraper.NewClient(cfg, c, log)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("failed to create http client: %w", err), database.Close(db))
	}

	s := scraper.NewScraper(cfg, client, caseMarkers, attachmentMarkers, log)

	return &Pipeline{
		cfg:               cfg,
		logger:            log,
		Cache:             c,
		DB:                db,
		CaseMarkers:       caseMarkers,
		AttachmentMarkers: attachmentMarkers,
		Scraper:           s,
		Ingestor:          NewIngestor(cfg.OutputDir, s, db, log),
	}, nil
}

// Run logs in once and ingests ids. A login failure aborts before any case
// is attempted.
func (p *Pipeline) Run(ctx context.Context, ids []string) (*Stats, error) {
	if err := p.Scraper.Login(ctx); err != nil {
		return nil, err
	}
	return p.Ingestor.Run(ctx, ids)
}

// Close persists the response cache and closes the fetch log
func (p *Pipeline) Close() error {
	stats := p.Cache.Stats()
	p.logger.Info("Response cache statistics", "hits", stats.Hits, "misses", stats.Misses, "size", stats.Size)

	return multierr.Combine(
		p.Cache.Save(p.cfg.CachePath),
		database.Close(p.DB),
	)
}
