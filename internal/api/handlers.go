package api

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/JustJay7/court-records-ingest/internal/cache"
	"github.com/JustJay7/court-records-ingest/internal/config"
	"github.com/JustJay7/court-records-ingest/internal/database"
	"github.com/JustJay7/court-records-ingest/internal/ingest"
	"github.com/JustJay7/court-records-ingest/internal/markers"
	"github.com/JustJay7/court-records-ingest/internal/scraper"
	"github.com/JustJay7/court-records-ingest/internal/table"
	"github.com/JustJay7/court-records-ingest/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxFetches = 500

// Handlers serves the ingest output read-only
type Handlers struct {
	db     *gorm.DB
	cache  cache.Cache
	logger *logger.Logger
	cfg    *config.Config
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, cache cache.Cache, logger *logger.Logger, cfg *config.Config) *Handlers {
	return &Handlers{
		db:     db,
		cache:  cache,
		logger: logger,
		cfg:    cfg,
	}
}

// HealthCheck returns the health status
func (h *Handlers) HealthCheck(c *gin.Context) {
	var count int64
	dbHealthy := h.db.Model(&database.FetchLog{}).Count(&count).Error == nil

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": dbHealthy,
		"fetches":  count,
		"time":     time.Now().Unix(),
	})
}

// ListCases returns the merged summary table, ordered by case id
func (h *Handlers) ListCases(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	rows, err := h.loadTable(ingest.SummaryFile)
	if err != nil {
		h.fail(c, err)
		return
	}

	// compared by division so large page or limit values cannot overflow
	total := len(rows)
	start := total
	if page-1 <= total/limit {
		start = min((page-1)*limit, total)
	}
	end := total
	if limit < total-start {
		end = start + limit
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rows[start:end],
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetCase returns the stored JSON document of one case
func (h *Handlers) GetCase(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}

	data, err := os.ReadFile(ingest.JSONPath(h.cfg.OutputDir, id))
	if errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "case not found",
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// GetCaseActions returns the merged action rows of one case in order
func (h *Handlers) GetCaseActions(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}

	rows, err := h.loadTable(ingest.ActionsFile)
	if err != nil {
		h.fail(c, err)
		return
	}

	var actions []table.Row
	for i := 0; ; i++ {
		row, found := findRow(rows, table.ActionID(id, i))
		if !found {
			break
		}
		actions = append(actions, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    actions,
	})
}

// LatestFetch returns the newest fetch log entry of one case
func (h *Handlers) LatestFetch(c *gin.Context) {
	id, ok := h.caseID(c)
	if !ok {
		return
	}

	entry, err := database.LatestFetch(h.db, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "case was never fetched",
		})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}

// Markers lists downloads that were interrupted and will bypass the cache
func (h *Handlers) Markers(c *gin.Context) {
	result := gin.H{"success": true}
	for name, file := range map[string]string{
		"cases":       markers.CaseFile,
		"attachments": markers.AttachmentFile,
	} {
		store, err := markers.Open(filepath.Join(h.cfg.OutputDir, file), h.logger)
		if err != nil {
			h.fail(c, err)
			return
		}
		pending := store.Pending()
		if pending == nil {
			pending = []string{}
		}
		result[name] = pending
	}
	c.JSON(http.StatusOK, result)
}

// RecentFetches returns the fetch log, newest first
func (h *Handlers) RecentFetches(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > maxFetches {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "limit must be between 1 and 500",
		})
		return
	}

	logs, err := database.RecentFetches(h.db, limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
	})
}

// CacheStats returns response cache statistics
func (h *Handlers) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.cache.Stats(),
	})
}

func (h *Handlers) caseID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := scraper.ParseCaseID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return "", false
	}
	return id, true
}

// loadTable reads a merged store as rows sorted by key
func (h *Handlers) loadTable(name string) ([]table.Row, error) {
	t, err := table.NewStore(filepath.Join(h.cfg.OutputDir, name), "id").Load()
	if err != nil {
		return nil, err
	}

	rows := make([]table.Row, 0, len(t))
	for _, row := range t {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i]["id"] < rows[j]["id"]
	})
	return rows, nil
}

func (h *Handlers) fail(c *gin.Context, err error) {
	h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "internal error",
	})
}

func findRow(rows []table.Row, id string) (table.Row, bool) {
	i := sort.Search(len(rows), func(i int) bool {
		return rows[i]["id"] >= id
	})
	if i < len(rows) && rows[i]["id"] == id {
		return rows[i], true
	}
	return nil, false
}
