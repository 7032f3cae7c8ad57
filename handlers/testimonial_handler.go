package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	apperrors "github.com/jmrodillon/portfolio-backend/errors"
	"github.com/jmrodillon/portfolio-backend/services"
	"github.com/jmrodillon/portfolio-backend/types"
)

// TestimonialServiceInterface defines the service methods needed by the
// testimonial handlers.
type TestimonialServiceInterface interface {
	Submit(ctx context.Context, draft types.TestimonialDraft, clientIP string) (*services.SubmitResult, error)
	Moderate(ctx context.Context, id, action string) error
	ListApproved(ctx context.Context) ([]types.ApprovedEntry, error)
	ListPending(ctx context.Context) ([]types.PendingEntry, error)
	DeleteApproved(ctx context.Context, id string) error
}

// TestimonialHandler handles the testimonial submission, read, and
// moderation endpoints.
type TestimonialHandler struct {
	svc TestimonialServiceInterface
}

// NewTestimonialHandler creates a new TestimonialHandler.
func NewTestimonialHandler(svc TestimonialServiceInterface) *TestimonialHandler {
	return &TestimonialHandler{svc: svc}
}

// ListApproved serves the public testimonials.
func (h *TestimonialHandler) ListApproved(c *gin.Context) {
	approved, err := h.svc.ListApproved(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.ApprovedListResponse{OK: true, Testimonials: approved})
}

// Submit accepts a testimonial draft as JSON, form-urlencoded, or multipart
// form data and queues it for moderation.
func (h *TestimonialHandler) Submit(c *gin.Context) {
	draft, ok := parseDraft(c)
	if !ok {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", ""))
		return
	}

	result, err := h.svc.Submit(c.Request.Context(), draft, clientIP(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	if result.Deflected {
		// Indistinguishable from a stored submission, minus the id.
		c.JSON(http.StatusOK, types.OKResponse{OK: true})
		return
	}
	c.JSON(http.StatusOK, types.SubmitResponse{OK: true, ID: result.ID})
}

// ListPending serves the operator review queue. Auth is enforced by the
// route's AdminAuthMiddleware.
func (h *TestimonialHandler) ListPending(c *gin.Context) {
	pending, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.PendingListResponse{OK: true, Pending: pending})
}

// Moderate approves or declines a pending testimonial.
func (h *TestimonialHandler) Moderate(c *gin.Context) {
	var req types.ModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}
	if req.ID == "" {
		_ = c.Error(apperrors.ValidationFailed("Missing id", ""))
		return
	}

	if err := h.svc.Moderate(c.Request.Context(), req.ID, req.Action); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.OKResponse{OK: true})
}

// DeleteApproved removes a published testimonial.
func (h *TestimonialHandler) DeleteApproved(c *gin.Context) {
	var req types.DeleteApprovedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.ValidationFailed("Invalid request body", err.Error()))
		return
	}
	if req.ID == "" {
		_ = c.Error(apperrors.ValidationFailed("Missing id", ""))
		return
	}

	if err := h.svc.DeleteApproved(c.Request.Context(), req.ID); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, types.OKResponse{OK: true})
}

// parseDraft decodes the submission body by content type: JSON,
// form-urlencoded, or (as fallback) multipart form data.
func parseDraft(c *gin.Context) (types.TestimonialDraft, bool) {
	var draft types.TestimonialDraft

	switch c.ContentType() {
	case "application/json":
		if err := c.ShouldBindJSON(&draft); err != nil {
			return draft, false
		}
	case "application/x-www-form-urlencoded":
		if err := c.ShouldBindWith(&draft, binding.Form); err != nil {
			return draft, false
		}
	default:
		if err := c.ShouldBindWith(&draft, binding.FormMultipart); err != nil {
			return draft, false
		}
	}
	return draft, true
}

// clientIP resolves the submitter address for rate limiting: the
// proxy-supplied client connection header first, else the first entry of the
// forwarded-for list. An empty result means the submitter cannot be
// identified and the rate limiter will not apply.
func clientIP(c *gin.Context) string {
	if real := strings.TrimSpace(c.GetHeader("X-Real-IP")); real != "" {
		return real
	}

	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		// x-forwarded-for may contain a list. Take the first value.
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}

	return ""
}
