package types

// OKResponse is the bare success envelope.
type OKResponse struct {
	OK bool `json:"ok"`
}

// SubmitResponse acknowledges a stored submission with its generated id.
// Honeypot-deflected submissions return OKResponse instead, indistinguishable
// from success.
type SubmitResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// ApprovedListResponse is the public read payload.
type ApprovedListResponse struct {
	OK           bool            `json:"ok"`
	Testimonials []ApprovedEntry `json:"testimonials"`
}

// PendingListResponse is the operator-facing queue payload.
type PendingListResponse struct {
	OK      bool           `json:"ok"`
	Pending []PendingEntry `json:"pending"`
}

// ErrorResponse is the failure envelope shared by all endpoints.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
