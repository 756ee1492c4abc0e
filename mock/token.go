package mock

import (
	"context"
	"time"

	"github.com/JimmyYuu29/cartarev"
)

var _ cartarev.TokenService = (*TokenService)(nil)

// TokenService is a mock implementation of cartarev.TokenService.
type TokenService struct {
	CreateTokenFn         func(ctx context.Context, reviewID string, ttl time.Duration) (*cartarev.DownloadToken, error)
	FindTokenFn           func(ctx context.Context, token string) (*cartarev.DownloadToken, error)
	ConsumeTokenFn        func(ctx context.Context, token, reviewID string) error
	DeleteExpiredTokensFn func(ctx context.Context) (int, error)
}

func (s *TokenService) CreateToken(ctx context.Context, reviewID string, ttl time.Duration) (*cartarev.DownloadToken, error) {
	return s.CreateTokenFn(ctx, reviewID, ttl)
}

func (s *TokenService) FindToken(ctx context.Context, token string) (*cartarev.DownloadToken, error) {
	return s.FindTokenFn(ctx, token)
}

func (s *TokenService) ConsumeToken(ctx context.Context, token, reviewID string) error {
	return s.ConsumeTokenFn(ctx, token, reviewID)
}

func (s *TokenService) DeleteExpiredTokens(ctx context.Context) (int, error) {
	return s.DeleteExpiredTokensFn(ctx)
}

var _ cartarev.ApprovalCodeService = (*ApprovalCodeService)(nil)

// ApprovalCodeService is a mock implementation of cartarev.ApprovalCodeService.
type ApprovalCodeService struct {
	CreateCodeFn         func(ctx context.Context, reviewID, supervisorID string, ttl time.Duration) (*cartarev.ApprovalCode, error)
	FindCodeFn           func(ctx context.Context, code string) (*cartarev.ApprovalCode, error)
	ConsumeCodeFn        func(ctx context.Context, code string) error
	CodesForReviewFn     func(ctx context.Context, reviewID string) ([]*cartarev.ApprovalCode, error)
	DeleteExpiredCodesFn func(ctx context.Context) (int, error)
}

func (s *ApprovalCodeService) CreateCode(ctx context.Context, reviewID, supervisorID string, ttl time.Duration) (*cartarev.ApprovalCode, error) {
	return s.CreateCodeFn(ctx, reviewID, supervisorID, ttl)
}

func (s *ApprovalCodeService) FindCode(ctx context.Context, code string) (*cartarev.ApprovalCode, error) {
	return s.FindCodeFn(ctx, code)
}

func (s *ApprovalCodeService) ConsumeCode(ctx context.Context, code string) error {
	return s.ConsumeCodeFn(ctx, code)
}

func (s *ApprovalCodeService) CodesForReview(ctx context.Context, reviewID string) ([]*cartarev.ApprovalCode, error) {
	return s.CodesForReviewFn(ctx, reviewID)
}

func (s *ApprovalCodeService) DeleteExpiredCodes(ctx context.Context) (int, error) {
	return s.DeleteExpiredCodesFn(ctx)
}

var _ cartarev.SupervisorDirectory = (*SupervisorDirectory)(nil)

// SupervisorDirectory is a mock implementation of cartarev.SupervisorDirectory.
type SupervisorDirectory struct {
	SupervisorFn     func(id string) (*cartarev.Supervisor, error)
	SupervisorsFn    func() []*cartarev.Supervisor
	VerifyPasswordFn func(id, password string) error
}

func (d *SupervisorDirectory) Supervisor(id string) (*cartarev.Supervisor, error) {
	return d.SupervisorFn(id)
}

func (d *SupervisorDirectory) Supervisors() []*cartarev.Supervisor {
	return d.SupervisorsFn()
}

func (d *SupervisorDirectory) VerifyPassword(id, password string) error {
	return d.VerifyPasswordFn(id, password)
}
