package enhance

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/runs"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/model"
)

const maxDocumentBytes = 1 << 20

// Handler wires HTTP handlers to the enhancement service and run ledger.
type Handler struct {
	Svc  *Service
	Runs runs.Repo
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, repo runs.Repo) *Handler {
	return &Handler{Svc: svc, Runs: repo}
}

// RegisterRoutes attaches enhancement routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/enhance", h.enhance)
	rg.GET("/runs", h.listRuns)
	rg.GET("/runs/:id", h.getRun)
}

func (h *Handler) enhance(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxDocumentBytes+1))
	if err != nil || len(raw) > maxDocumentBytes {
		respond.Failure(c, http.StatusBadRequest, "invalid_request", "Invalid request format", false, respond.FailureDetail{})
		return
	}
	doc, err := model.Decode(raw)
	if err != nil {
		detail := respond.FailureDetail{}
		var schemaErr *model.SchemaError
		if errors.As(err, &schemaErr) {
			detail.Violations = schemaErr.Errors
		}
		respond.Failure(c, http.StatusBadRequest, "invalid_request", "Invalid request format", false, detail)
		return
	}

	var runID string
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	ctx = WithRunIDSink(ctx, &runID)

	enhanced, err := h.Svc.Enhance(ctx, doc)
	c.Set(middleware.RunIDKey, runID)
	if err != nil {
		WriteFailure(c, err)
		return
	}
	respond.Success(c, enhanced)
}

func (h *Handler) listRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.Runs.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list runs", nil)
		return
	}
	respond.OK(c, gin.H{"runs": list, "limit": limit, "offset": offset})
}

func (h *Handler) getRun(c *gin.Context) {
	run, err := h.Runs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, runs.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load run", nil)
		return
	}
	respond.OK(c, run)
}
