package cartarev

import (
	"context"
	"time"
)

// ReviewStatus is the lifecycle state of a review. Reviews only move
// forward: DRAFT -> SUBMITTED -> DOWNLOADED.
type ReviewStatus string

// Review statuses.
const (
	StatusDraft      ReviewStatus = "DRAFT"
	StatusSubmitted  ReviewStatus = "SUBMITTED"
	StatusDownloaded ReviewStatus = "DOWNLOADED"
)

// Audit actions recorded on a review.
const (
	AuditCreate             = "create"
	AuditFieldUpdate        = "field_update"
	AuditUnauthorizedField  = "unauthorized_field_attempt"
	AuditSubmit             = "submit"
	AuditAuthorizeSuccess   = "authorize_success"
	AuditAuthorizeFailed    = "authorize_failed"
	AuditDownload           = "download"
)

// AuditEntry is a single audit log record attached to a review.
type AuditEntry struct {
	Time      time.Time `json:"time"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Field     string    `json:"field,omitempty"`
	OldValue  string    `json:"oldValue,omitempty"`
	NewValue  string    `json:"newValue,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Review is a document draft under controlled editing. The employee edits
// whitelisted fields while the review is in DRAFT, then submits it; only a
// submitted review can be downloaded by a supervisor.
type Review struct {
	ID           string         `json:"id"`
	DocType      string         `json:"docType"`
	Status       ReviewStatus   `json:"status"`
	Data         map[string]any `json:"data"`
	CreatedBy    string         `json:"createdBy"`
	CreatedAt    time.Time      `json:"createdAt"`
	SubmittedAt  *time.Time     `json:"submittedAt,omitempty"`
	DownloadedAt *time.Time     `json:"downloadedAt,omitempty"`
	DownloadedBy string         `json:"downloadedBy,omitempty"`
}

// Validate returns an error if the review contains invalid fields.
func (r *Review) Validate() error {
	if r.DocType == "" {
		return Errorf(EINVALID, "review doc type required")
	}
	if r.CreatedBy == "" {
		return Errorf(EINVALID, "review creator required")
	}
	return nil
}

// CanEdit reports whether the review accepts field updates.
func (r *Review) CanEdit() bool { return r.Status == StatusDraft }

// CanSubmit reports whether the review can be submitted.
func (r *Review) CanSubmit() bool { return r.Status == StatusDraft }

// CanDownload reports whether the review's document can be downloaded.
func (r *Review) CanDownload() bool {
	return r.Status == StatusSubmitted || r.Status == StatusDownloaded
}

// ManagerLink returns the supervisor entry URL for this review.
func (r *Review) ManagerLink(baseURL string) string {
	return baseURL + "/manager/reviews/" + r.ID
}

// ReviewFilter represents a filter for FindReviews.
type ReviewFilter struct {
	ID        *string       `json:"id"`
	DocType   *string       `json:"docType"`
	Status    *ReviewStatus `json:"status"`
	CreatedBy *string       `json:"createdBy"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ReviewUpdate carries validated field changes applied to a review's data.
type ReviewUpdate struct {
	Fields map[string]any

	// Actor and IP are recorded in the audit log.
	Actor string
	IP    string
}

// ReviewService represents a service for managing reviews and their audit
// trail.
type ReviewService interface {
	// CreateReview creates a new review in DRAFT status and records the
	// creation in the audit log.
	CreateReview(ctx context.Context, review *Review) error

	// FindReviewByID retrieves a review by ID.
	// Returns ENOTFOUND if the review does not exist.
	FindReviewByID(ctx context.Context, id string) (*Review, error)

	// FindReviews retrieves reviews matching the filter, newest first.
	FindReviews(ctx context.Context, filter ReviewFilter) ([]*Review, error)

	// UpdateReviewData applies validated field values to a DRAFT review,
	// auditing each change. Returns ECONFLICT if the review is not editable.
	UpdateReviewData(ctx context.Context, id string, upd ReviewUpdate) (*Review, error)

	// SubmitReview freezes a DRAFT review.
	// Returns ECONFLICT if the review was already submitted or downloaded.
	SubmitReview(ctx context.Context, id, actor, ip string) (*Review, error)

	// MarkDownloaded transitions a SUBMITTED review to DOWNLOADED.
	// Returns ECONFLICT if the review is not in SUBMITTED status.
	MarkDownloaded(ctx context.Context, id, actor, ip, userAgent string) (*Review, error)

	// AppendAudit records an audit entry that is not tied to a field change,
	// such as failed authorization attempts.
	AppendAudit(ctx context.Context, id string, entry AuditEntry) error

	// AuditLog returns the audit trail of a review, oldest first.
	AuditLog(ctx context.Context, id string) ([]AuditEntry, error)

	// DeleteReview permanently removes a review and its audit trail.
	// Returns ENOTFOUND if the review does not exist.
	DeleteReview(ctx context.Context, id string) error
}
