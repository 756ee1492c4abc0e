// Package slog provides logging decorators for cartarev services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/JimmyYuu29/cartarev"
)

// Ensure LoggingReviewService implements cartarev.ReviewService.
var _ cartarev.ReviewService = (*LoggingReviewService)(nil)

// LoggingReviewService wraps a ReviewService with structured logging of the
// lifecycle transitions. Read paths delegate silently.
type LoggingReviewService struct {
	next   cartarev.ReviewService
	logger *slog.Logger
}

// NewLoggingReviewService creates a new LoggingReviewService.
func NewLoggingReviewService(next cartarev.ReviewService, logger *slog.Logger) *LoggingReviewService {
	return &LoggingReviewService{next: next, logger: logger}
}

// CreateReview creates the review and logs the assigned ID.
func (s *LoggingReviewService) CreateReview(ctx context.Context, review *cartarev.Review) error {
	begin := time.Now()
	err := s.next.CreateReview(ctx, review)
	if err != nil {
		s.logger.Error("review creation failed",
			"doc_type", review.DocType,
			"error", err,
		)
		return err
	}
	s.logger.Info("review created",
		"review_id", review.ID,
		"doc_type", review.DocType,
		"created_by", review.CreatedBy,
		"duration", time.Since(begin),
	)
	return nil
}

// FindReviewByID delegates to the wrapped service.
func (s *LoggingReviewService) FindReviewByID(ctx context.Context, id string) (*cartarev.Review, error) {
	return s.next.FindReviewByID(ctx, id)
}

// FindReviews delegates to the wrapped service.
func (s *LoggingReviewService) FindReviews(ctx context.Context, filter cartarev.ReviewFilter) ([]*cartarev.Review, error) {
	return s.next.FindReviews(ctx, filter)
}

// UpdateReviewData applies the update and logs the touched fields.
func (s *LoggingReviewService) UpdateReviewData(ctx context.Context, id string, upd cartarev.ReviewUpdate) (*cartarev.Review, error) {
	review, err := s.next.UpdateReviewData(ctx, id, upd)
	if err != nil {
		s.logger.Error("review update failed", "review_id", id, "error", err)
		return nil, err
	}
	fields := make([]string, 0, len(upd.Fields))
	for name := range upd.Fields {
		fields = append(fields, name)
	}
	s.logger.Info("review updated",
		"review_id", id,
		"fields", fields,
		"actor", upd.Actor,
	)
	return review, nil
}

// SubmitReview submits the review and logs the transition.
func (s *LoggingReviewService) SubmitReview(ctx context.Context, id, actor, ip string) (*cartarev.Review, error) {
	review, err := s.next.SubmitReview(ctx, id, actor, ip)
	if err != nil {
		s.logger.Error("review submit failed", "review_id", id, "error", err)
		return nil, err
	}
	s.logger.Info("review submitted", "review_id", id, "actor", actor)
	return review, nil
}

// MarkDownloaded marks the download and logs who downloaded.
func (s *LoggingReviewService) MarkDownloaded(ctx context.Context, id, actor, ip, userAgent string) (*cartarev.Review, error) {
	review, err := s.next.MarkDownloaded(ctx, id, actor, ip, userAgent)
	if err != nil {
		s.logger.Error("review download mark failed", "review_id", id, "error", err)
		return nil, err
	}
	s.logger.Info("review downloaded", "review_id", id, "actor", actor)
	return review, nil
}

// AppendAudit delegates to the wrapped service.
func (s *LoggingReviewService) AppendAudit(ctx context.Context, id string, entry cartarev.AuditEntry) error {
	return s.next.AppendAudit(ctx, id, entry)
}

// AuditLog delegates to the wrapped service.
func (s *LoggingReviewService) AuditLog(ctx context.Context, id string) ([]cartarev.AuditEntry, error) {
	return s.next.AuditLog(ctx, id)
}

// DeleteReview deletes the review and logs the removal.
func (s *LoggingReviewService) DeleteReview(ctx context.Context, id string) error {
	if err := s.next.DeleteReview(ctx, id); err != nil {
		return err
	}
	s.logger.Info("review deleted", "review_id", id)
	return nil
}
