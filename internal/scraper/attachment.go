package scraper

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JustJay7/court-records-ingest/internal/database"
)

// AttachmentRequest describes one document linked from a case page
type AttachmentRequest struct {
	CaseID       string
	URL          string
	AttachmentID string
	// Actions are searched for the attachment's date
	Actions   []database.ActionRecord
	OutputDir string
}

// Known content types, checked before the system mime table so names stay
// stable across machines
var extensions = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"image/tiff":         ".tif",
	"image/jpeg":         ".jpg",
	"image/png":          ".png",
	"image/gif":          ".gif",
	"text/html":          ".html",
	"text/plain":         ".txt",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

// DownloadAttachment saves one attachment under the same marker discipline
// as case pages and returns the path of the written file
func (s *Scraper) DownloadAttachment(ctx context.Context, req AttachmentRequest) (string, error) {
	if !attachmentIDPattern.MatchString(req.AttachmentID) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeAttachmentID, req.AttachmentID)
	}

	key := AttachmentKey(req.CaseID, req.AttachmentID)

	ttl := s.cfg.CacheTTL
	if s.attachmentMarkers.ShouldForceRefresh(key) {
		s.logger.Info("Previous attachment download interrupted, bypassing cache", "key", key)
		ttl = 0
	}

	if err := s.attachmentMarkers.Begin(key); err != nil {
		return "", err
	}

	resp, err := s.client.Do(ctx, Request{
		Method: http.MethodGet,
		URL:    req.URL,
		TTL:    ttl,
	})
	if err != nil {
		return "", err
	}

	date := attachmentDate(req.Actions, req.AttachmentID)
	name := AttachmentFileName(date, req.CaseID, req.AttachmentID, extensionFor(resp.ContentType))
	path := filepath.Join(req.OutputDir, name)
	if filepath.Dir(path) != filepath.Clean(req.OutputDir) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeAttachmentID, req.AttachmentID)
	}

	if err := writeFile(path, resp.Body); err != nil {
		return "", fmt.Errorf("failed to save attachment: %w", err)
	}
	if err := s.attachmentMarkers.End(key); err != nil {
		return "", err
	}

	s.logger.Info("Attachment downloaded",
		"case", req.CaseID,
		"attachment", req.AttachmentID,
		"size", len(resp.Body),
		"path", path)

	return path, nil
}

// AttachmentKey is the marker key of an attachment
func AttachmentKey(caseID, attachmentID string) string {
	return caseID + "-" + attachmentID
}

// AttachmentFileName builds {date}_{case}_{attachment}{ext}; an unknown date
// is written as "unknown-date"
func AttachmentFileName(date database.Date, caseID, attachmentID, ext string) string {
	prefix := "unknown-date"
	if !date.IsZero() {
		prefix = date.String()
	}
	return fmt.Sprintf("%s_%s_%s%s", prefix, caseID, attachmentID, ext)
}

func attachmentDate(actions []database.ActionRecord, attachmentID string) database.Date {
	for _, action := range actions {
		if strings.EqualFold(action.AttachmentID, attachmentID) {
			return action.Date
		}
	}
	return database.Date{}
}

func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	if ext, ok := extensions[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
