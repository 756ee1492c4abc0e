// Package auth implements supervisor authorization: issuing one-time
// approval codes and redeeming them, together with the supervisor's
// password, for a single-use download token.
package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JimmyYuu29/cartarev"
)

// AttemptLimiter throttles authorization attempts per client address using
// token buckets. A separate limiter per address keeps one client's failed
// attempts from slowing everyone else down.
type AttemptLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewAttemptLimiter creates an AttemptLimiter allowing rps attempts per
// second with the given burst per client address.
func NewAttemptLimiter(rps float64, burst int) *AttemptLimiter {
	return &AttemptLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

// Allow reports whether an attempt from addr may proceed now.
func (l *AttemptLimiter) Allow(addr string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[addr]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.limiters[addr] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// Service coordinates the approval flow: a code is issued for a submitted
// review and addressed to one supervisor; that supervisor redeems it with
// their password. Every outcome lands in the review's audit trail.
type Service struct {
	ReviewService cartarev.ReviewService
	Codes         cartarev.ApprovalCodeService
	Tokens        cartarev.TokenService
	Supervisors   cartarev.SupervisorDirectory
	Limiter       *AttemptLimiter

	// TTLs default to the package-level defaults when zero.
	CodeTTL  time.Duration
	TokenTTL time.Duration
}

// NewService creates a Service with default TTLs and a limiter of one
// attempt per two seconds, burst five, per client address.
func NewService(reviews cartarev.ReviewService, codes cartarev.ApprovalCodeService, tokens cartarev.TokenService, supervisors cartarev.SupervisorDirectory) *Service {
	return &Service{
		ReviewService: reviews,
		Codes:         codes,
		Tokens:        tokens,
		Supervisors:   supervisors,
		Limiter:       NewAttemptLimiter(0.5, 5),
		CodeTTL:       cartarev.DefaultCodeTTL,
		TokenTTL:      cartarev.DefaultTokenTTL,
	}
}

// IssueCode creates an approval code for a submitted review, addressed to
// one supervisor. Returns ECONFLICT if the review is still a draft.
func (s *Service) IssueCode(ctx context.Context, reviewID, supervisorID string) (*cartarev.ApprovalCode, error) {
	review, err := s.ReviewService.FindReviewByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.CanDownload() {
		return nil, cartarev.Errorf(cartarev.ECONFLICT, "review must be submitted before approval")
	}
	if _, err := s.Supervisors.Supervisor(supervisorID); err != nil {
		return nil, err
	}
	return s.Codes.CreateCode(ctx, reviewID, supervisorID, s.CodeTTL)
}

// Redeem exchanges a valid code plus the supervisor's password for a
// single-use download token. All failures return EUNAUTHORIZED without
// revealing which check failed, and failed attempts are audited on the
// review when it can be identified.
func (s *Service) Redeem(ctx context.Context, reviewID, supervisorID, code, password, clientAddr string) (*cartarev.DownloadToken, error) {
	if s.Limiter != nil && !s.Limiter.Allow(clientAddr) {
		return nil, cartarev.Errorf(cartarev.EUNAUTHORIZED, "too many attempts, try again later")
	}

	fail := func(details string) error {
		s.audit(ctx, reviewID, cartarev.AuditEntry{
			Action:  cartarev.AuditAuthorizeFailed,
			Actor:   supervisorID,
			IP:      clientAddr,
			Details: details,
		})
		return cartarev.Errorf(cartarev.EUNAUTHORIZED, "invalid code or credentials")
	}

	if err := s.Supervisors.VerifyPassword(supervisorID, password); err != nil {
		return nil, fail("password verification failed")
	}

	found, err := s.Codes.FindCode(ctx, code)
	if err != nil {
		return nil, fail("unknown code")
	}
	if found.ReviewID != reviewID || found.SupervisorID != supervisorID {
		return nil, fail("code does not match review or supervisor")
	}
	if err := s.Codes.ConsumeCode(ctx, code); err != nil {
		return nil, fail("code expired or already used")
	}

	token, err := s.Tokens.CreateToken(ctx, reviewID, s.TokenTTL)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, reviewID, cartarev.AuditEntry{
		Action: cartarev.AuditAuthorizeSuccess,
		Actor:  supervisorID,
		IP:     clientAddr,
	})
	return token, nil
}

// audit records an entry, ignoring failures: a broken audit write must not
// mask the authorization outcome.
func (s *Service) audit(ctx context.Context, reviewID string, entry cartarev.AuditEntry) {
	_ = s.ReviewService.AppendAudit(ctx, reviewID, entry)
}
