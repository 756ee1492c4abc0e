package mock

import (
	"context"

	"github.com/JimmyYuu29/cartarev"
)

var _ cartarev.ReviewService = (*ReviewService)(nil)

// ReviewService is a mock implementation of cartarev.ReviewService.
type ReviewService struct {
	CreateReviewFn     func(ctx context.Context, review *cartarev.Review) error
	FindReviewByIDFn   func(ctx context.Context, id string) (*cartarev.Review, error)
	FindReviewsFn      func(ctx context.Context, filter cartarev.ReviewFilter) ([]*cartarev.Review, error)
	UpdateReviewDataFn func(ctx context.Context, id string, upd cartarev.ReviewUpdate) (*cartarev.Review, error)
	SubmitReviewFn     func(ctx context.Context, id, actor, ip string) (*cartarev.Review, error)
	MarkDownloadedFn   func(ctx context.Context, id, actor, ip, userAgent string) (*cartarev.Review, error)
	AppendAuditFn      func(ctx context.Context, id string, entry cartarev.AuditEntry) error
	AuditLogFn         func(ctx context.Context, id string) ([]cartarev.AuditEntry, error)
	DeleteReviewFn     func(ctx context.Context, id string) error
}

func (s *ReviewService) CreateReview(ctx context.Context, review *cartarev.Review) error {
	return s.CreateReviewFn(ctx, review)
}

func (s *ReviewService) FindReviewByID(ctx context.Context, id string) (*cartarev.Review, error) {
	return s.FindReviewByIDFn(ctx, id)
}

func (s *ReviewService) FindReviews(ctx context.Context, filter cartarev.ReviewFilter) ([]*cartarev.Review, error) {
	return s.FindReviewsFn(ctx, filter)
}

func (s *ReviewService) UpdateReviewData(ctx context.Context, id string, upd cartarev.ReviewUpdate) (*cartarev.Review, error) {
	return s.UpdateReviewDataFn(ctx, id, upd)
}

func (s *ReviewService) SubmitReview(ctx context.Context, id, actor, ip string) (*cartarev.Review, error) {
	return s.SubmitReviewFn(ctx, id, actor, ip)
}

func (s *ReviewService) MarkDownloaded(ctx context.Context, id, actor, ip, userAgent string) (*cartarev.Review, error) {
	return s.MarkDownloadedFn(ctx, id, actor, ip, userAgent)
}

func (s *ReviewService) AppendAudit(ctx context.Context, id string, entry cartarev.AuditEntry) error {
	return s.AppendAuditFn(ctx, id, entry)
}

func (s *ReviewService) AuditLog(ctx context.Context, id string) ([]cartarev.AuditEntry, error) {
	return s.AuditLogFn(ctx, id)
}

func (s *ReviewService) DeleteReview(ctx context.Context, id string) error {
	return s.DeleteReviewFn(ctx, id)
}
