// Package types defines the data model for the testimonial submission and
// moderation workflow.
package types

// Field length limits applied during submission intake. Values longer than
// the limit are truncated, except Message which is rejected outright.
const (
	MaxNameLen    = 80
	MaxEmailLen   = 120
	MaxRoleLen    = 80
	MaxCompanyLen = 80
	MaxProjectLen = 80
	MaxMessageLen = 1200
)

// Hard caps on the stored lists, enforced at write time.
const (
	MaxPendingEntries  = 200
	MaxApprovedEntries = 100
)

// TestimonialDraft is the raw submission payload. The BotField honeypot is a
// hidden form field; any non-empty value marks the submission as automated.
type TestimonialDraft struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Role     string `json:"role" form:"role"`
	Company  string `json:"company" form:"company"`
	Project  string `json:"project" form:"project"`
	Message  string `json:"message" form:"message"`
	BotField string `json:"bot-field" form:"bot-field"`
}

// PendingEntry is a submitted testimonial awaiting operator review. Entries
// are never mutated in place; they are only removed by moderation or evicted
// when the pending list exceeds its cap.
type PendingEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	Company   string `json:"company,omitempty"`
	Project   string `json:"project,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// ApprovedEntry is a testimonial cleared for public display. It carries no
// email field at all, so the submitter's email can never reach the public
// payload.
type ApprovedEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Company    string `json:"company,omitempty"`
	Project    string `json:"project,omitempty"`
	Message    string `json:"message"`
	CreatedAt  string `json:"createdAt"`
	ApprovedAt string `json:"approvedAt"`
}

// RateLimitState is the persisted per-IP submission counter. ResetAt is
// epoch milliseconds; the window rolls over lazily on first use after expiry.
type RateLimitState struct {
	Count   int   `json:"count"`
	ResetAt int64 `json:"resetAt"`
}

// Moderation actions.
const (
	ActionApprove = "approve"
	ActionDecline = "decline"
)

// ModerateRequest is the payload for the moderation endpoint.
type ModerateRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

// DeleteApprovedRequest is the payload for deleting a published entry.
type DeleteApprovedRequest struct {
	ID string `json:"id"`
}
