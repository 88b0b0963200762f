package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/ai-summarizer/internal/domain/summarizer"
)

// RunService is the async run surface the handlers depend on.
type RunService interface {
	Submit(ctx context.Context, req summarizer.Request) (summarizer.Run, error)
	Get(ctx context.Context, id uuid.UUID) (summarizer.Run, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	summarizerSvc summarizer.Service
	runs          RunService
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(summarySvc summarizer.Service, runs RunService, logger *slog.Logger) *Handler {
	return &Handler{
		summarizerSvc: summarySvc,
		runs:          runs,
		logger:        logger.With("component", "http.handler"),
	}
}

// Summarize runs the whole summarization inside the request.
func (h *Handler) Summarize(c *gin.Context) {
	var req summarizer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	h.logCaller(c, "summarize")

	resp, err := h.summarizerSvc.Summarize(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SubmitJob queues a run and answers immediately.
func (h *Handler) SubmitJob(c *gin.Context) {
	var req summarizer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	h.logCaller(c, "submit_job")

	run, err := h.runs.Submit(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"runId": run.ID, "status": run.Status})
}

// GetJob returns the current state of a run.
func (h *Handler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "run id must be a uuid", err))
		return
	}

	run, err := h.runs.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromAppError(err))
		return
	}

	c.JSON(http.StatusOK, run)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) logCaller(c *gin.Context, action string) {
	if claims, ok := getClaims(c); ok {
		h.logger.Info("authenticated request", "action", action, "subject", claims.Subject)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
