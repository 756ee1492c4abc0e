package cartarev

import (
	"context"
	"time"
)

// Default lifetimes for download tokens and approval codes.
const (
	DefaultTokenTTL = 5 * time.Minute
	DefaultCodeTTL  = 72 * time.Hour
)

// DownloadToken authorizes a single document download for a short period.
// Tokens are bound to one review and consumed on use.
type DownloadToken struct {
	Token     string     `json:"token"`
	ReviewID  string     `json:"reviewId"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
}

// Valid reports whether the token is unused and unexpired at now.
func (t *DownloadToken) Valid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}

// TokenService manages short-lived, single-use download tokens.
type TokenService interface {
	// CreateToken issues a new token for a review.
	CreateToken(ctx context.Context, reviewID string, ttl time.Duration) (*DownloadToken, error)

	// FindToken retrieves a token without consuming it.
	// Returns ENOTFOUND if the token does not exist.
	FindToken(ctx context.Context, token string) (*DownloadToken, error)

	// ConsumeToken validates a token against a review and marks it used.
	// Returns EUNAUTHORIZED if the token is unknown, expired, already used,
	// or bound to a different review.
	ConsumeToken(ctx context.Context, token, reviewID string) error

	// DeleteExpiredTokens removes expired unused tokens and returns the
	// number removed.
	DeleteExpiredTokens(ctx context.Context) (int, error)
}

// ApprovalCode is the one-time code an employee routes to a supervisor.
// The supervisor redeems it, together with their password, to obtain a
// download token.
type ApprovalCode struct {
	Code         string     `json:"code"`
	ReviewID     string     `json:"reviewId"`
	SupervisorID string     `json:"supervisorId"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	Used         bool       `json:"used"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
}

// Expired reports whether the code has expired at now.
func (c *ApprovalCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Valid reports whether the code is unused and unexpired at now.
func (c *ApprovalCode) Valid(now time.Time) bool {
	return !c.Used && !c.Expired(now)
}

// ApprovalCodeService manages one-time approval codes.
type ApprovalCodeService interface {
	// CreateCode issues a new code for a review and supervisor.
	CreateCode(ctx context.Context, reviewID, supervisorID string, ttl time.Duration) (*ApprovalCode, error)

	// FindCode retrieves a code without consuming it. Lookup is
	// case-insensitive on the code string.
	// Returns ENOTFOUND if the code does not exist.
	FindCode(ctx context.Context, code string) (*ApprovalCode, error)

	// ConsumeCode marks a valid code as used.
	// Returns EUNAUTHORIZED if the code is unknown, expired or already used.
	ConsumeCode(ctx context.Context, code string) error

	// CodesForReview returns all codes issued for a review, newest first.
	CodesForReview(ctx context.Context, reviewID string) ([]*ApprovalCode, error)

	// DeleteExpiredCodes removes expired unused codes, keeping used codes
	// for the audit trail. Returns the number removed.
	DeleteExpiredCodes(ctx context.Context) (int, error)
}

// Supervisor is a person allowed to approve and download documents.
// Passwords are stored as SHA-256 hashes only; the directory never holds
// plaintext credentials.
type Supervisor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Active       bool   `json:"active"`
}

// SupervisorDirectory resolves supervisor identities and verifies their
// credentials.
type SupervisorDirectory interface {
	// Supervisor returns an active supervisor by ID.
	// Returns ENOTFOUND if the supervisor is unknown or inactive.
	Supervisor(id string) (*Supervisor, error)

	// Supervisors returns all active supervisors, without credentials.
	Supervisors() []*Supervisor

	// VerifyPassword checks a supervisor's password against the stored hash.
	// Returns EUNAUTHORIZED on mismatch, unknown ID or inactive supervisor.
	VerifyPassword(id, password string) error
}
