package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nestlings/planner/internal/domain"
	"github.com/nestlings/planner/internal/platform/logger"
	"github.com/nestlings/planner/internal/usecase"
)

const (
	serviceName    = "nestlings-planner"
	serviceVersion = "1.0.0"
)

// HistoryReader lists recommendations previously served to a caller
type HistoryReader interface {
	RecommendationsForUser(ctx context.Context, userID string, limit int) ([]domain.RecommendationRecord, error)
}

// Services bundles the usecases the handlers delegate to
type Services struct {
	Catalog         *usecase.CatalogService
	Recommendations *usecase.RecommendationService
	Curation        *usecase.CurationService
	Ingestion       *usecase.IngestionService
	Milestones      domain.MilestoneRepository
	History         HistoryReader
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	services Services
	log      *logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(services Services, baseLog *logger.Logger) *Handler {
	return &Handler{
		services: services,
		log:      baseLog.With("handler", "http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// ListProducts runs the product query engine over the query string
func (h *Handler) ListProducts(c *gin.Context) {
	query := usecase.ParseProductQuery(c.Request.URL.Query())

	page, err := h.services.Catalog.ListProducts(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProduct returns a single product with its milestone and AI category ids
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.services.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product and everything that references it
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.services.Catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReviewRequest is the body of a review submission
type ReviewRequest struct {
	Rating *float64 `json:"rating" binding:"required"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
}

// AddReview stores a review by the authenticated caller
func (h *Handler) AddReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating is required"})
		return
	}

	review := &domain.Review{
		ProductID: c.Param("id"),
		UserID:    callerID(c),
		Rating:    *req.Rating,
		Title:     strings.TrimSpace(req.Title),
		Body:      strings.TrimSpace(req.Body),
	}
	if err := h.services.Catalog.AddReview(c.Request.Context(), review); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// InteractionRequest is the body of an interaction event
type InteractionRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// RecordInteraction stores a view, save, click or purchase event
func (h *Handler) RecordInteraction(c *gin.Context) {
	var req InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind is required"})
		return
	}

	interaction := &domain.Interaction{
		UserID:    callerID(c),
		ProductID: c.Param("id"),
		Kind:      domain.InteractionKind(strings.ToLower(strings.TrimSpace(req.Kind))),
	}
	if err := h.services.Catalog.RecordInteraction(c.Request.Context(), interaction); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, interaction)
}

// IngestRequest lists product page URLs to ingest
type IngestRequest struct {
	URLs []string `json:"urls" binding:"required"`
}

// IngestProducts extracts and saves products from retailer pages
func (h *Handler) IngestProducts(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "urls is required"})
		return
	}

	results, err := h.services.Ingestion.IngestBatch(c.Request.Context(), req.URLs)
	if err != nil {
		h.respondError(c, err)
		return
	}

	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}

	status := http.StatusOK
	if succeeded == 0 {
		status = http.StatusBadGateway
	} else if succeeded < len(results) {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"results":   results,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}

// Recommend ranks catalog products against a preference profile
func (h *Handler) Recommend(c *gin.Context) {
	var req usecase.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recommendation request"})
		return
	}
	req.UserID = callerID(c)

	recs, err := h.services.Recommendations.Recommend(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// CurateBundle asks the curator for a milestone bundle
func (h *Handler) CurateBundle(c *gin.Context) {
	var req usecase.CurateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid curation request"})
		return
	}
	req.UserID = callerID(c)

	bundle, err := h.services.Curation.CurateBundle(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

// RecommendationHistory lists the caller's most recent recommendation lines
func (h *Handler) RecommendationHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > domain.MaxLimit {
		limit = domain.MaxLimit
	}

	records, err := h.services.History.RecommendationsForUser(c.Request.Context(), callerID(c), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}

// ListMilestones returns the developmental timeline in order
func (h *Handler) ListMilestones(c *gin.Context) {
	milestones, err := h.services.Milestones.ListMilestones(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}

// respondError maps domain errors onto status codes. Unexpected errors are
// logged and answered with an opaque message.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrMilestoneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, domain.ErrLLMUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "product ingestion and curation are not configured"})
	case errors.Is(err, domain.ErrLLMFailure), errors.Is(err, domain.ErrSourceFetch):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		_ = c.Error(err)
		h.log.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
