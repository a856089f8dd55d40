package rest

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nordicgem/diamond-indexer/internal/api/rest/dto"
	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/search"
	"github.com/nordicgem/diamond-indexer/internal/store"
)

// MAX_PAGE_SIZE caps a single result page
const MAX_PAGE_SIZE = 200

// Refresher triggers background catalog refreshes
type Refresher interface {
	// RefreshAsync starts a fire-and-forget refresh for a feed type. Returns
	// domain.ErrRefreshInProgress when one is already running.
	RefreshAsync(feedType domain.FeedType) error
}

// TierCache is the pricing engine's cache surface; a markup ladder update
// must push the new bands into effect without waiting for the TTL
type TierCache interface {
	Invalidate(feedType domain.FeedType)
}

// Handler defines the interface for REST API handlers
type Handler interface {
	// SearchDiamonds retrieves diamonds matching the facet selections
	// GET /api/v1/diamonds?type=<type>&shape=<shape>&minCarat=&maxCarat=&minColour=&maxColour=&minClarity=&maxClarity=&minPriceSek=&maxPriceSek=&fancyColours=&gradingLab=&limit=&offset=...
	SearchDiamonds(c *gin.Context)

	// ListDiamondsByType retrieves one feed type's catalog, paginated
	// GET /api/v1/diamonds/:type?limit=<limit>&offset=<offset>
	ListDiamondsByType(c *gin.Context)

	// TriggerImport starts a background refresh for a feed type (requires authentication)
	// POST /api/v1/imports/:type
	TriggerImport(c *gin.Context)

	// GetImportJob retrieves one import job by ID
	// GET /api/v1/imports/jobs/:id
	GetImportJob(c *gin.Context)

	// ListImportJobs retrieves recent import jobs, newest first
	// GET /api/v1/imports/jobs?limit=<limit>
	ListImportJobs(c *gin.Context)

	// GetMarkupIntervals retrieves the markup ladder for a feed type
	// GET /api/v1/markup-intervals?type=<type>
	GetMarkupIntervals(c *gin.Context)

	// ReplaceMarkupIntervals replaces the markup ladder for a feed type (requires authentication)
	// PUT /api/v1/markup-intervals
	ReplaceMarkupIntervals(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	store     store.Store
	refresher Refresher
	tiers     TierCache
}

// NewHandler creates a new REST API handler
func NewHandler(s store.Store, refresher Refresher, tiers TierCache) Handler {
	return &handler{
		store:     s,
		refresher: refresher,
		tiers:     tiers,
	}
}

// SearchDiamonds retrieves diamonds matching the facet selections
func (h *handler) SearchDiamonds(c *gin.Context) {
	var filters search.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if filters.Limit > MAX_PAGE_SIZE {
		filters.Limit = MAX_PAGE_SIZE
	}

	query := filters.Resolve()
	diamonds, total, err := h.store.SearchDiamonds(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err, "Failed to search diamonds")
		return
	}

	c.JSON(http.StatusOK, dto.SearchDiamondsResponse{
		Diamonds:   dto.FromDiamonds(diamonds),
		TotalCount: total,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
}

// ListDiamondsByType retrieves one feed type's catalog, paginated
func (h *handler) ListDiamondsByType(c *gin.Context) {
	feedType := domain.FeedType(c.Param("type"))
	if !feedType.Valid() {
		respondBadRequest(c, fmt.Sprintf("unknown diamond type %q", c.Param("type")))
		return
	}

	var page struct {
		Limit  int `form:"limit,default=50"`
		Offset int `form:"offset,default=0"`
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if page.Limit <= 0 || page.Limit > MAX_PAGE_SIZE {
		page.Limit = 50
	}

	query := store.DiamondQuery{
		Type:   feedType,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	diamonds, total, err := h.store.SearchDiamonds(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err, "Failed to list diamonds",
			zap.String("type", string(feedType)))
		return
	}

	c.JSON(http.StatusOK, dto.SearchDiamondsResponse{
		Diamonds:   dto.FromDiamonds(diamonds),
		TotalCount: total,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
}

// TriggerImport starts a background refresh for a feed type
func (h *handler) TriggerImport(c *gin.Context) {
	feedType := domain.FeedType(c.Param("type"))
	if !feedType.Valid() {
		respondBadRequest(c, fmt.Sprintf("unknown diamond type %q", c.Param("type")))
		return
	}

	// Body is optional; force is accepted but a refresh runs unconditionally
	var req dto.TriggerImportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
			return
		}
	}

	err := h.refresher.RefreshAsync(feedType)
	if errors.Is(err, domain.ErrRefreshInProgress) {
		// An already-running refresh is an expected outcome, not a server
		// error; the caller gets the same result shape with success=false
		c.JSON(http.StatusConflict, domain.RefreshResult{
			Type:      feedType,
			Success:   false,
			Message:   fmt.Sprintf("import already in progress for %s diamonds", feedType),
			Timestamp: time.Now().UTC(),
		})
		return
	}
	if err != nil {
		respondInternalError(c, err, "Failed to trigger import",
			zap.String("type", string(feedType)))
		return
	}

	c.JSON(http.StatusAccepted, domain.RefreshResult{
		Type:      feedType,
		Success:   true,
		Message:   fmt.Sprintf("started refresh of %s diamonds", feedType),
		Timestamp: time.Now().UTC(),
	})
}

// GetImportJob retrieves one import job by ID
func (h *handler) GetImportJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Invalid job ID")
		return
	}

	job, err := h.store.GetImportJob(c.Request.Context(), id)
	if errors.Is(err, domain.ErrJobNotFound) {
		respondNotFound(c, "Import job not found")
		return
	}
	if err != nil {
		respondInternalError(c, err, "Failed to get import job",
			zap.String("job_id", id.String()))
		return
	}

	c.JSON(http.StatusOK, dto.FromImportJob(job))
}

// ListImportJobs retrieves recent import jobs, newest first
func (h *handler) ListImportJobs(c *gin.Context) {
	var page struct {
		Limit int `form:"limit,default=20"`
	}
	if err := c.ShouldBindQuery(&page); err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if page.Limit <= 0 || page.Limit > MAX_PAGE_SIZE {
		page.Limit = 20
	}

	jobs, err := h.store.ListImportJobs(c.Request.Context(), page.Limit)
	if err != nil {
		respondInternalError(c, err, "Failed to list import jobs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": dto.FromImportJobs(jobs)})
}

// GetMarkupIntervals retrieves the markup ladder for a feed type
func (h *handler) GetMarkupIntervals(c *gin.Context) {
	feedType := domain.FeedType(c.Query("type"))
	if !feedType.Valid() {
		respondBadRequest(c, "Query parameter 'type' must be natural or lab")
		return
	}

	intervals, err := h.store.ListMarkupIntervals(c.Request.Context(), feedType)
	if err != nil {
		respondInternalError(c, err, "Failed to list markup intervals",
			zap.String("type", string(feedType)))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type":      feedType,
		"intervals": dto.FromMarkupIntervals(intervals),
	})
}

// ReplaceMarkupIntervals replaces the markup ladder for a feed type
func (h *handler) ReplaceMarkupIntervals(c *gin.Context) {
	var req dto.ReplaceMarkupIntervalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	err := h.store.ReplaceMarkupIntervals(c.Request.Context(), req.Type, dto.ToSchemaIntervals(req.Intervals))
	if err != nil {
		respondInternalError(c, err, "Failed to replace markup intervals",
			zap.String("type", string(req.Type)))
		return
	}

	// New bands take effect on the next price calculation, not the next TTL
	h.tiers.Invalidate(req.Type)

	c.JSON(http.StatusOK, gin.H{
		"type":      req.Type,
		"intervals": req.Intervals,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "diamond-indexer-api",
	})
}
