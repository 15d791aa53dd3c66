package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/breaker"
	"github.com/verustcode/verustcode/internal/reviewer"
	"github.com/verustcode/verustcode/internal/reviewmodel"
	pkgerrors "github.com/verustcode/verustcode/pkg/errors"
	"github.com/verustcode/verustcode/pkg/logger"
)

// prWebhookPayload is the JSON body accepted at POST
// /pr-webhook: a PR event plus its identifying fields, decoupled from
// any one Git platform's native webhook schema (no platform-native
// webhook payload is parsed anywhere in this service).
type prWebhookPayload struct {
	EventType      string   `json:"event_type" binding:"required"`
	PRID           int      `json:"pr_id" binding:"required"`
	ProjectID      string   `json:"project_id"`
	ProjectName    string   `json:"project_name"`
	RepositoryID   string   `json:"repository_id"`
	RepositoryName string   `json:"repository_name" binding:"required"`
	Title          string   `json:"title" binding:"required"`
	AuthorEmail    string   `json:"author_email"`
	SourceRef      string   `json:"source_ref" binding:"required"`
	TargetRef      string   `json:"target_ref" binding:"required"`
	SourceCommitID string   `json:"source_commit_id" binding:"required"`
	ChangedFiles   []string `json:"changed_files"`
	Owner          string   `json:"owner" binding:"required"`
	Repo           string   `json:"repo" binding:"required"`
}

// ReviewWebhookHandler handles the automated-review pipeline's inbound
// webhook and reliability-admin endpoints, separate from
// the liveness check. One Orchestrator is kept per configured
// Git-provider type, keyed by provider type name.
type ReviewWebhookHandler struct {
	orchestrators map[string]*reviewer.Orchestrator
	breakers      *breaker.Manager
}

// NewReviewWebhookHandler constructs a ReviewWebhookHandler.
func NewReviewWebhookHandler(orchestrators map[string]*reviewer.Orchestrator, breakers *breaker.Manager) *ReviewWebhookHandler {
	return &ReviewWebhookHandler{orchestrators: orchestrators, breakers: breakers}
}

// HandlePRWebhook handles POST /pr-webhook/:provider.
func (h *ReviewWebhookHandler) HandlePRWebhook(c *gin.Context) {
	providerType := c.Param("provider")
	orchestrator, ok := h.orchestrators[providerType]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    pkgerrors.ErrCodeValidation,
			"message": "no provider configured for type: " + providerType,
		})
		return
	}

	var payload prWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    pkgerrors.ErrCodeValidation,
			"message": "invalid pr webhook payload: " + err.Error(),
		})
		return
	}

	eventType := reviewmodel.PREventCreated
	if payload.EventType == string(reviewmodel.PREventUpdated) {
		eventType = reviewmodel.PREventUpdated
	}

	event, err := reviewmodel.NewPREvent(
		eventType, payload.PRID, payload.ProjectID, payload.ProjectName,
		payload.RepositoryID, payload.RepositoryName, payload.Title, payload.AuthorEmail,
		payload.SourceRef, payload.TargetRef, payload.SourceCommitID, payload.ChangedFiles,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    pkgerrors.ErrCodeValidation,
			"message": err.Error(),
		})
		return
	}

	result, duplicate, err := orchestrator.HandlePREvent(c.Request.Context(), reviewer.Request{
		Owner: payload.Owner,
		Repo:  payload.Repo,
		Event: event,
	})
	if err != nil {
		status, code, message := classifyHandlerError(err)
		logger.Warn("pr webhook: handling failed",
			zap.Int("pr_id", payload.PRID), zap.String("repository", payload.RepositoryName), zap.Error(err))
		c.JSON(status, gin.H{"code": code, "message": message})
		return
	}

	if duplicate {
		// Duplicate delivery short-circuited by the idempotency store
		//: acknowledge with the first delivery's
		// stored result summary instead of re-running the pipeline.
		c.JSON(http.StatusOK, gin.H{
			"message":        "duplicate delivery, returning stored result",
			"recommendation": result.Recommendation,
			"issue_count":    result.TotalIssueCount(),
			"tokens_used":    result.TokensUsed,
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":        "review completed",
		"recommendation": result.Recommendation,
		"issue_count":    len(result.Issues),
		"tokens_used":    result.TokensUsed,
	})
}

// classifyHandlerError maps an orchestrator error to a response status,
// using *errors.AppError's own HTTPStatus when present and falling back
// to 500 for anything unrecognized.
func classifyHandlerError(err error) (status int, code pkgerrors.ErrorCode, message string) {
	if appErr, ok := err.(*pkgerrors.AppError); ok {
		return appErr.HTTPStatus(), appErr.Code, appErr.Message
	}
	return http.StatusInternalServerError, pkgerrors.ErrCodeInternal, "internal error"
}

// HandleHealth handles GET /health: a liveness check with no dependency
// probing, kept deliberately cheap.
func (h *ReviewWebhookHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleReliabilityHealth handles GET /reliability-health: a snapshot of
// every circuit breaker's state, for dashboards and alerting.
func (h *ReviewWebhookHandler) HandleReliabilityHealth(c *gin.Context) {
	states := h.breakers.ListStates()
	degraded := false
	for _, s := range states {
		if s.State != reviewmodel.BreakerClosed {
			degraded = true
			break
		}
	}
	status := http.StatusOK
	if degraded {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"breakers": states})
}

// circuitBreakerAdminRequest is POST /circuit-breaker-admin's body: reset
// one named breaker, or all of them when Service is empty.
type circuitBreakerAdminRequest struct {
	Service string `json:"service"`
}

// HandleCircuitBreakerAdmin handles POST /circuit-breaker-admin.
func (h *ReviewWebhookHandler) HandleCircuitBreakerAdmin(c *gin.Context) {
	var req circuitBreakerAdminRequest
	_ = c.ShouldBindJSON(&req) // an empty body resets all breakers

	if req.Service == "" {
		h.breakers.ResetAll()
		c.JSON(http.StatusOK, gin.H{"message": "all circuit breakers reset"})
		return
	}
	h.breakers.Reset(req.Service)
	c.JSON(http.StatusOK, gin.H{"message": "circuit breaker reset", "service": req.Service})
}
