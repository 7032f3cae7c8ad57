package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/jmrodillon/portfolio-backend/errors"
	"github.com/jmrodillon/portfolio-backend/logger"
	"github.com/jmrodillon/portfolio-backend/store"
	"github.com/jmrodillon/portfolio-backend/types"
)

// Document keys inside the testimonials namespace.
const (
	keyPending  = "pending"
	keyApproved = "approved"
)

// Loose shape check, local@domain.tld. Full RFC parsing is not needed here.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TestimonialService implements the moderated submission queue: intake into
// the pending list, operator moderation into the approved list, public and
// operator reads, and deletion of published entries. All state lives in the
// blob store; the service caches nothing across calls.
type TestimonialService struct {
	store   store.BlobStore
	limiter *RateLimitService
	log     *zap.SugaredLogger

	now   func() time.Time
	newID func() string
}

// NewTestimonialService wires the service with its store and rate limiter.
func NewTestimonialService(blobStore store.BlobStore, limiter *RateLimitService) *TestimonialService {
	return &TestimonialService{
		store:   blobStore,
		limiter: limiter,
		log:     logger.GetLogger(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// SubmitResult reports the outcome of a submission. Deflected submissions
// (honeypot hits) are acknowledged to the caller exactly like stored ones,
// minus the id.
type SubmitResult struct {
	ID        string
	Deflected bool
}

// clamp trims s and truncates it to at most maxLen runes.
func clamp(s string, maxLen int) string {
	text := strings.TrimSpace(s)
	runes := []rune(text)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return text
}

func isValidEmail(email string) bool {
	if email == "" {
		return true
	}
	if len([]rune(email)) > types.MaxEmailLen {
		return false
	}
	return emailPattern.MatchString(email)
}

// Submit validates and normalizes a draft, enforces the per-IP rate limit,
// and appends the entry to the pending list. clientIP may be empty when the
// submitter could not be identified; the rate limiter then allows the
// request.
func (s *TestimonialService) Submit(ctx context.Context, draft types.TestimonialDraft, clientIP string) (*SubmitResult, error) {
	// Honeypot: legitimate users never fill this field. Respond with an
	// indistinguishable success and persist nothing.
	if strings.TrimSpace(draft.BotField) != "" {
		submissionsTotal.WithLabelValues("deflected").Inc()
		s.log.Infow("Deflected bot submission", "client_ip", clientIP)
		return &SubmitResult{Deflected: true}, nil
	}

	name := clamp(draft.Name, types.MaxNameLen)
	email := clamp(draft.Email, types.MaxEmailLen)
	role := clamp(draft.Role, types.MaxRoleLen)
	company := clamp(draft.Company, types.MaxCompanyLen)
	project := clamp(draft.Project, types.MaxProjectLen)
	message := strings.TrimSpace(draft.Message)

	if name == "" {
		submissionsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.ValidationFailed("Name is required", "")
	}
	if message == "" {
		submissionsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.ValidationFailed("Testimonial is required", "")
	}
	// The message is the one field that is rejected rather than truncated
	// when over its ceiling.
	if len([]rune(message)) > types.MaxMessageLen {
		submissionsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.ValidationFailed("Testimonial is too long", "")
	}
	if !isValidEmail(email) {
		submissionsTotal.WithLabelValues("rejected").Inc()
		return nil, apperrors.ValidationFailed("Invalid email", "")
	}

	if err := s.limiter.CheckAndIncrement(ctx, clientIP); err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.RateLimitError {
			submissionsTotal.WithLabelValues("rate_limited").Inc()
		}
		return nil, err
	}

	entry := types.PendingEntry{
		ID:        s.newID(),
		Name:      name,
		Email:     email,
		Role:      role,
		Company:   company,
		Project:   project,
		Message:   message,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}

	pending := []types.PendingEntry{}
	if _, err := s.store.GetJSON(ctx, keyPending, store.Strong, &pending); err != nil {
		if store.IsDecodeError(err) {
			return nil, apperrors.StorageCorrupted(keyPending)
		}
		return nil, apperrors.NewStorageError(err)
	}

	// Newest first; evict the oldest once over the cap.
	pending = append([]types.PendingEntry{entry}, pending...)
	if len(pending) > types.MaxPendingEntries {
		pending = pending[:types.MaxPendingEntries]
	}

	if err := s.store.SetJSON(ctx, keyPending, pending); err != nil {
		return nil, apperrors.NewStorageError(err)
	}

	submissionsTotal.WithLabelValues("stored").Inc()
	s.log.Infow("Stored testimonial submission",
		"id", entry.ID,
		"email", logger.MaskEmail(entry.Email),
		"pending_count", len(pending),
	)
	return &SubmitResult{ID: entry.ID}, nil
}

// Moderate removes the identified entry from the pending list and, on
// approve, republishes it at the head of the approved list with the email
// dropped. The pending removal is persisted regardless of the action; there
// is no rollback if the approved write fails afterwards.
func (s *TestimonialService) Moderate(ctx context.Context, id, action string) error {
	if action != types.ActionApprove && action != types.ActionDecline {
		return apperrors.InvalidAction(action)
	}

	pending := []types.PendingEntry{}
	if _, err := s.store.GetJSON(ctx, keyPending, store.Strong, &pending); err != nil {
		if store.IsDecodeError(err) {
			return apperrors.StorageCorrupted(keyPending)
		}
		return apperrors.NewStorageError(err)
	}

	idx := -1
	for i, entry := range pending {
		if entry.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperrors.NotFound("Testimonial", id)
	}

	item := pending[idx]
	pending = append(pending[:idx], pending[idx+1:]...)
	if err := s.store.SetJSON(ctx, keyPending, pending); err != nil {
		return apperrors.NewStorageError(err)
	}

	if action == types.ActionDecline {
		moderationsTotal.WithLabelValues(types.ActionDecline).Inc()
		s.log.Infow("Declined testimonial", "id", id)
		return nil
	}

	approved := []types.ApprovedEntry{}
	if _, err := s.store.GetJSON(ctx, keyApproved, store.Strong, &approved); err != nil {
		if store.IsDecodeError(err) {
			return apperrors.StorageCorrupted(keyApproved)
		}
		return apperrors.NewStorageError(err)
	}

	// Email is deliberately dropped: it is never republished.
	approved = append([]types.ApprovedEntry{{
		ID:         item.ID,
		Name:       item.Name,
		Role:       item.Role,
		Company:    item.Company,
		Project:    item.Project,
		Message:    item.Message,
		CreatedAt:  item.CreatedAt,
		ApprovedAt: s.now().UTC().Format(time.RFC3339),
	}}, approved...)
	if len(approved) > types.MaxApprovedEntries {
		approved = approved[:types.MaxApprovedEntries]
	}

	if err := s.store.SetJSON(ctx, keyApproved, approved); err != nil {
		return apperrors.NewStorageError(err)
	}

	moderationsTotal.WithLabelValues(types.ActionApprove).Inc()
	s.log.Infow("Approved testimonial", "id", id, "approved_count", len(approved))
	return nil
}

// ListApproved returns the public testimonials, newest first. This is the
// read-only display path: malformed storage is coerced to an empty list
// instead of erroring, and the read tolerates staleness.
func (s *TestimonialService) ListApproved(ctx context.Context) ([]types.ApprovedEntry, error) {
	approved := []types.ApprovedEntry{}
	if _, err := s.store.GetJSON(ctx, keyApproved, store.Eventual, &approved); err != nil {
		if store.IsDecodeError(err) {
			s.log.Warnw("Approved list malformed, serving empty", "error", err)
			return []types.ApprovedEntry{}, nil
		}
		return nil, apperrors.NewStorageError(err)
	}
	return approved, nil
}

// ListPending returns the operator review queue. Unlike the public read,
// malformed storage is fatal here: operators must know the store is broken.
func (s *TestimonialService) ListPending(ctx context.Context) ([]types.PendingEntry, error) {
	pending := []types.PendingEntry{}
	if _, err := s.store.GetJSON(ctx, keyPending, store.Strong, &pending); err != nil {
		if store.IsDecodeError(err) {
			return nil, apperrors.StorageCorrupted(keyPending)
		}
		return nil, apperrors.NewStorageError(err)
	}
	return pending, nil
}

// DeleteApproved removes a published entry by id. A malformed approved list
// behaves like an empty one here: the id cannot be found and nothing is
// written, so no data is destroyed.
func (s *TestimonialService) DeleteApproved(ctx context.Context, id string) error {
	approved := []types.ApprovedEntry{}
	if _, err := s.store.GetJSON(ctx, keyApproved, store.Strong, &approved); err != nil {
		if store.IsDecodeError(err) {
			approved = []types.ApprovedEntry{}
		} else {
			return apperrors.NewStorageError(err)
		}
	}

	idx := -1
	for i, entry := range approved {
		if entry.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperrors.NotFound("Testimonial", id)
	}

	approved = append(approved[:idx], approved[idx+1:]...)
	if err := s.store.SetJSON(ctx, keyApproved, approved); err != nil {
		return apperrors.NewStorageError(err)
	}

	approvedDeletesTotal.Inc()
	s.log.Infow("Deleted approved testimonial", "id", id)
	return nil
}
