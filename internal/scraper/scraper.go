package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/JustJay7/court-records-ingest/internal/config"
	"github.com/JustJay7/court-records-ingest/internal/database"
	"github.com/JustJay7/court-records-ingest/internal/markers"
	"github.com/JustJay7/court-records-ingest/internal/narrative"
	"github.com/JustJay7/court-records-ingest/pkg/logger"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/multierr"
)

// Result is a fetched case with the outcome of its attachment downloads
type Result struct {
	*database.CaseRecord

	// Attachments holds the paths of saved attachment files
	Attachments []string
	// AttachmentErr combines every attachment failure; it never fails the case
	AttachmentErr error
}

// Scraper fetches case pages and their attachments from the court site
type Scraper struct {
	cfg       *config.Config
	client    *Client
	parser    *Parser
	narrative *narrative.Parser
	logger    *logger.Logger

	caseMarkers       *markers.Store
	attachmentMarkers *markers.Store

	mu       sync.Mutex
	loggedIn bool
}

// NewScraper creates a new scraper instance
func NewScraper(cfg *config.Config, client *Client, caseMarkers, attachmentMarkers *markers.Store, logger *logger.Logger) *Scraper {
	return &Scraper{
		cfg:               cfg,
		client:            client,
		parser:            NewParser(logger),
		narrative:         narrative.NewParser(logger),
		logger:            logger,
		caseMarkers:       caseMarkers,
		attachmentMarkers: attachmentMarkers,
	}
}

// CaseDir is where the raw page and attachments of a case are kept
func CaseDir(outputDir, caseID string) string {
	return filepath.Join(outputDir, "cases", caseID)
}

// RawPath is the snapshot of the case page exactly as received
func RawPath(outputDir, caseID string) string {
	return filepath.Join(CaseDir(outputDir, caseID), caseID+".html")
}

// FetchCase requests one case page, keeps a raw snapshot, extracts its
// panels and narrative actions and downloads the attachments it links.
func (s *Scraper) FetchCase(ctx context.Context, id string) (*Result, error) {
	caseID, err := ParseCaseID(id)
	if err != nil {
		return nil, err
	}

	rawPath := RawPath(s.cfg.OutputDir, id)
	if s.cfg.SkipExisting {
		if _, err := os.Stat(rawPath); err == nil {
			return nil, ErrAlreadyFetched
		}
	}

	if err := s.Login(ctx); err != nil {
		return nil, err
	}

	ttl := s.cfg.CacheTTL
	if s.caseMarkers.ShouldForceRefresh(id) {
		s.logger.Info("Previous download interrupted, bypassing cache", "case", id)
		ttl = 0
	}

	if err := s.caseMarkers.Begin(id); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		URL:    s.cfg.CasePath,
		Form:   caseID.FormData(),
		TTL:    ttl,
	})
	if err != nil {
		return nil, err
	}

	if err := writeFile(rawPath, resp.Body); err != nil {
		return nil, fmt.Errorf("failed to save case page: %w", err)
	}
	if err := s.caseMarkers.End(id); err != nil {
		return nil, err
	}

	s.logger.Info("Case page saved",
		"case", id,
		"bytes", len(resp.Body),
		"cached", resp.FromCache,
		"duration", time.Since(start))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse case page: %w", err)
	}

	if msg, found := s.parser.ErrorBanner(doc); found {
		return nil, &SearchError{CaseID: id, Message: msg}
	}

	record, parseErrs := s.parser.ExtractCase(doc, id)
	for _, perr := range parseErrs {
		s.logger.Warn("Case panel could not be read", "case", id, "error", perr)
	}
	record.Actions = s.narrative.Parse(id, record.Narrative)

	result := &Result{CaseRecord: record}

	pageURL, err := s.pageURL()
	if err != nil {
		s.logger.Warn("Cannot resolve attachment links", "case", id, "error", err)
		return result, nil
	}

	for _, link := range s.parser.AttachmentLinks(doc, pageURL) {
		if ctx.Err() != nil {
			result.AttachmentErr = multierr.Append(result.AttachmentErr, ctx.Err())
			break
		}

		path, err := s.DownloadAttachment(ctx, AttachmentRequest{
			CaseID:       id,
			URL:          link.URL,
			AttachmentID: link.ID,
			Actions:      record.Actions,
			OutputDir:    filepath.Join(CaseDir(s.cfg.OutputDir, id), "attachments"),
		})
		if err != nil {
			s.logger.Warn("Attachment download failed",
				"case", id,
				"attachment", link.ID,
				"error", err)
			result.AttachmentErr = multierr.Append(result.AttachmentErr, err)
			continue
		}
		result.Attachments = append(result.Attachments, path)
	}

	return result, nil
}

// pageURL is the absolute address of the case search page
func (s *Scraper) pageURL() (*url.URL, error) {
	base := strings.TrimRight(s.client.BaseURL(), "/")
	u, err := url.Parse(base + s.cfg.CasePath)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, errors.New("court base url is not absolute")
	}
	return u, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
