package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JimmyYuu29/cartarev"
)

// Compile-time interface verification.
var _ cartarev.ReviewService = (*ReviewService)(nil)

// ReviewService implements cartarev.ReviewService using SQLite. Review form
// data is stored as a JSON document; the audit trail is a separate
// append-only table removed together with its review.
type ReviewService struct {
	db *DB
}

// NewReviewService creates a new ReviewService.
func NewReviewService(db *DB) *ReviewService {
	return &ReviewService{db: db}
}

// CreateReview creates a new review in DRAFT status and audits the creation.
func (s *ReviewService) CreateReview(ctx context.Context, review *cartarev.Review) error {
	if err := review.Validate(); err != nil {
		return err
	}

	review.ID = uuid.New().String()
	review.Status = cartarev.StatusDraft
	review.CreatedAt = time.Now().UTC()
	if review.Data == nil {
		review.Data = make(map[string]any)
	}

	data, err := json.Marshal(review.Data)
	if err != nil {
		return fmt.Errorf("encoding review data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, doc_type, status, data, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, review.ID, review.DocType, review.Status, string(data), review.CreatedBy,
		review.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	return s.insertAudit(ctx, review.ID, cartarev.AuditEntry{
		Time:   review.CreatedAt,
		Action: cartarev.AuditCreate,
		Actor:  review.CreatedBy,
	})
}

// FindReviewByID retrieves a review by ID.
func (s *ReviewService) FindReviewByID(ctx context.Context, id string) (*cartarev.Review, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, doc_type, status, data, created_by, created_at, submitted_at, downloaded_at, downloaded_by
		FROM reviews
		WHERE id = ?
	`, id)
	return scanReview(row.Scan)
}

// FindReviews retrieves reviews matching the filter, newest first.
func (s *ReviewService) FindReviews(ctx context.Context, filter cartarev.ReviewFilter) ([]*cartarev.Review, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, doc_type, status, data, created_by, created_at, submitted_at, downloaded_at, downloaded_by FROM reviews WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.DocType != nil {
		query.WriteString(" AND doc_type = ?")
		args = append(args, *filter.DocType)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.CreatedBy != nil {
		query.WriteString(" AND created_by = ?")
		args = append(args, *filter.CreatedBy)
	}

	query.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*cartarev.Review
	for rows.Next() {
		review, err := scanReview(rows.Scan)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// UpdateReviewData applies validated field values to a DRAFT review and
// audits every change.
func (s *ReviewService) UpdateReviewData(ctx context.Context, id string, upd cartarev.ReviewUpdate) (*cartarev.Review, error) {
	review, err := s.FindReviewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.CanEdit() {
		return nil, cartarev.Errorf(cartarev.ECONFLICT, "review is %s and no longer editable", review.Status)
	}

	now := time.Now().UTC()
	for name, value := range upd.Fields {
		old := review.Data[name]
		review.Data[name] = value
		if err := s.insertAudit(ctx, id, cartarev.AuditEntry{
			Time:     now,
			Action:   cartarev.AuditFieldUpdate,
			Actor:    upd.Actor,
			Field:    name,
			OldValue: auditValue(old),
			NewValue: auditValue(value),
			IP:       upd.IP,
		}); err != nil {
			return nil, err
		}
	}

	data, err := json.Marshal(review.Data)
	if err != nil {
		return nil, fmt.Errorf("encoding review data: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		"UPDATE reviews SET data = ? WHERE id = ?", string(data), id); err != nil {
		return nil, err
	}
	return review, nil
}

// SubmitReview freezes a DRAFT review.
func (s *ReviewService) SubmitReview(ctx context.Context, id, actor, ip string) (*cartarev.Review, error) {
	review, err := s.FindReviewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.CanSubmit() {
		return nil, cartarev.Errorf(cartarev.ECONFLICT, "review was already submitted")
	}

	now := time.Now().UTC()
	review.Status = cartarev.StatusSubmitted
	review.SubmittedAt = &now

	if _, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET status = ?, submitted_at = ? WHERE id = ?
	`, review.Status, now.Format(time.RFC3339), id); err != nil {
		return nil, err
	}

	if err := s.insertAudit(ctx, id, cartarev.AuditEntry{
		Time:   now,
		Action: cartarev.AuditSubmit,
		Actor:  actor,
		IP:     ip,
	}); err != nil {
		return nil, err
	}
	return review, nil
}

// MarkDownloaded transitions a SUBMITTED review to DOWNLOADED.
func (s *ReviewService) MarkDownloaded(ctx context.Context, id, actor, ip, userAgent string) (*cartarev.Review, error) {
	review, err := s.FindReviewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.Status != cartarev.StatusSubmitted {
		return nil, cartarev.Errorf(cartarev.ECONFLICT, "review is %s, not SUBMITTED", review.Status)
	}

	now := time.Now().UTC()
	review.Status = cartarev.StatusDownloaded
	review.DownloadedAt = &now
	review.DownloadedBy = actor

	if _, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET status = ?, downloaded_at = ?, downloaded_by = ? WHERE id = ?
	`, review.Status, now.Format(time.RFC3339), actor, id); err != nil {
		return nil, err
	}

	if err := s.insertAudit(ctx, id, cartarev.AuditEntry{
		Time:      now,
		Action:    cartarev.AuditDownload,
		Actor:     actor,
		IP:        ip,
		UserAgent: userAgent,
	}); err != nil {
		return nil, err
	}
	return review, nil
}

// AppendAudit records an audit entry that is not tied to a field change.
func (s *ReviewService) AppendAudit(ctx context.Context, id string, entry cartarev.AuditEntry) error {
	if _, err := s.FindReviewByID(ctx, id); err != nil {
		return err
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}
	return s.insertAudit(ctx, id, entry)
}

// AuditLog returns the audit trail of a review, oldest first.
func (s *ReviewService) AuditLog(ctx context.Context, id string) ([]cartarev.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT time, action, actor, field, old_value, new_value, ip, user_agent, details
		FROM audit_log
		WHERE review_id = ?
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []cartarev.AuditEntry
	for rows.Next() {
		var entry cartarev.AuditEntry
		var ts string
		if err := rows.Scan(&ts, &entry.Action, &entry.Actor, &entry.Field,
			&entry.OldValue, &entry.NewValue, &entry.IP, &entry.UserAgent, &entry.Details); err != nil {
			return nil, err
		}
		entry.Time, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse audit time: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteReview permanently removes a review and its audit trail.
func (s *ReviewService) DeleteReview(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return cartarev.Errorf(cartarev.ENOTFOUND, "review not found")
	}
	return nil
}

func (s *ReviewService) insertAudit(ctx context.Context, reviewID string, entry cartarev.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (review_id, time, action, actor, field, old_value, new_value, ip, user_agent, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, reviewID, entry.Time.Format(time.RFC3339), entry.Action, entry.Actor, entry.Field,
		entry.OldValue, entry.NewValue, entry.IP, entry.UserAgent, entry.Details)
	return err
}

type scanFunc func(dest ...any) error

func scanReview(scan scanFunc) (*cartarev.Review, error) {
	var review cartarev.Review
	var data, createdAt string
	var submittedAt, downloadedAt sql.NullString

	err := scan(&review.ID, &review.DocType, &review.Status, &data, &review.CreatedBy,
		&createdAt, &submittedAt, &downloadedAt, &review.DownloadedBy)
	if err == sql.ErrNoRows {
		return nil, cartarev.Errorf(cartarev.ENOTFOUND, "review not found")
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(data), &review.Data); err != nil {
		return nil, fmt.Errorf("decoding review data: %w", err)
	}
	review.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if submittedAt.Valid {
		t, err := time.Parse(time.RFC3339, submittedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse submitted_at: %w", err)
		}
		review.SubmittedAt = &t
	}
	if downloadedAt.Valid {
		t, err := time.Parse(time.RFC3339, downloadedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse downloaded_at: %w", err)
		}
		review.DownloadedAt = &t
	}
	return &review, nil
}

// auditValue renders a field value for the audit log. JSON keeps lists and
// maps readable and distinguishes "" from absent.
func auditValue(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
