package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/JimmyYuu29/cartarev"
)

// Compile-time interface verification.
var _ cartarev.TokenService = (*TokenService)(nil)

// TokenService implements cartarev.TokenService using SQLite.
type TokenService struct {
	db *DB
}

// NewTokenService creates a new TokenService.
func NewTokenService(db *DB) *TokenService {
	return &TokenService{db: db}
}

// CreateToken issues a new single-use download token for a review.
func (s *TokenService) CreateToken(ctx context.Context, reviewID string, ttl time.Duration) (*cartarev.DownloadToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	now := time.Now().UTC()
	token := &cartarev.DownloadToken{
		Token:     base64.RawURLEncoding.EncodeToString(raw),
		ReviewID:  reviewID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO download_tokens (token, review_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, token.Token, token.ReviewID, now.Format(time.RFC3339), token.ExpiresAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return token, nil
}

// FindToken retrieves a token without consuming it.
func (s *TokenService) FindToken(ctx context.Context, token string) (*cartarev.DownloadToken, error) {
	var t cartarev.DownloadToken
	var createdAt, expiresAt string
	var usedAt sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT token, review_id, created_at, expires_at, used, used_at
		FROM download_tokens
		WHERE token = ?
	`, token).Scan(&t.Token, &t.ReviewID, &createdAt, &expiresAt, &t.Used, &usedAt)
	if err == sql.ErrNoRows {
		return nil, cartarev.Errorf(cartarev.ENOTFOUND, "token not found")
	}
	if err != nil {
		return nil, err
	}

	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if t.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if usedAt.Valid {
		ts, err := time.Parse(time.RFC3339, usedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse used_at: %w", err)
		}
		t.UsedAt = &ts
	}
	return &t, nil
}

// ConsumeToken validates a token against a review and marks it used in one
// statement, so a token can never authorize two downloads.
func (s *TokenService) ConsumeToken(ctx context.Context, token, reviewID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, `
		UPDATE download_tokens
		SET used = 1, used_at = ?
		WHERE token = ? AND review_id = ? AND used = 0 AND expires_at > ?
	`, now, token, reviewID, now)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return cartarev.Errorf(cartarev.EUNAUTHORIZED, "invalid or expired download token")
	}
	return nil
}

// DeleteExpiredTokens removes expired unused tokens.
func (s *TokenService) DeleteExpiredTokens(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM download_tokens WHERE used = 0 AND expires_at <= ?",
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	return int(rows), err
}

// Compile-time interface verification.
var _ cartarev.ApprovalCodeService = (*ApprovalCodeService)(nil)

// ApprovalCodeService implements cartarev.ApprovalCodeService using SQLite.
type ApprovalCodeService struct {
	db *DB
}

// NewApprovalCodeService creates a new ApprovalCodeService.
func NewApprovalCodeService(db *DB) *ApprovalCodeService {
	return &ApprovalCodeService{db: db}
}

// codeAlphabet excludes nothing: codes are 8 characters of A-Z and 0-9,
// matched case-insensitively on redemption.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomCode draws n characters uniformly from codeAlphabet. Bytes at or
// above the largest multiple of the alphabet size are rejected so the
// reduction carries no modulo bias.
func randomCode(n int) (string, error) {
	const limit = 256 - 256%len(codeAlphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}

// CreateCode issues a new one-time approval code.
func (s *ApprovalCodeService) CreateCode(ctx context.Context, reviewID, supervisorID string, ttl time.Duration) (*cartarev.ApprovalCode, error) {
	generated, err := randomCode(8)
	if err != nil {
		return nil, fmt.Errorf("generating code: %w", err)
	}

	now := time.Now().UTC()
	code := &cartarev.ApprovalCode{
		Code:         generated,
		ReviewID:     reviewID,
		SupervisorID: supervisorID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO approval_codes (code, review_id, supervisor_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, code.Code, code.ReviewID, code.SupervisorID,
		now.Format(time.RFC3339), code.ExpiresAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	return code, nil
}

// FindCode retrieves a code without consuming it.
func (s *ApprovalCodeService) FindCode(ctx context.Context, code string) (*cartarev.ApprovalCode, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT code, review_id, supervisor_id, created_at, expires_at, used, used_at
		FROM approval_codes
		WHERE code = ?
	`, strings.ToUpper(strings.TrimSpace(code)))
	return scanCode(row.Scan)
}

// ConsumeCode marks a valid code as used in one statement.
func (s *ApprovalCodeService) ConsumeCode(ctx context.Context, code string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, `
		UPDATE approval_codes
		SET used = 1, used_at = ?
		WHERE code = ? AND used = 0 AND expires_at > ?
	`, now, strings.ToUpper(strings.TrimSpace(code)), now)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return cartarev.Errorf(cartarev.EUNAUTHORIZED, "invalid or expired approval code")
	}
	return nil
}

// CodesForReview returns all codes issued for a review, newest first.
func (s *ApprovalCodeService) CodesForReview(ctx context.Context, reviewID string) ([]*cartarev.ApprovalCode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, review_id, supervisor_id, created_at, expires_at, used, used_at
		FROM approval_codes
		WHERE review_id = ?
		ORDER BY created_at DESC, code DESC
	`, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*cartarev.ApprovalCode
	for rows.Next() {
		code, err := scanCode(rows.Scan)
		if err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// DeleteExpiredCodes removes expired unused codes. Used codes stay for the
// audit trail.
func (s *ApprovalCodeService) DeleteExpiredCodes(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM approval_codes WHERE used = 0 AND expires_at <= ?",
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	return int(rows), err
}

func scanCode(scan scanFunc) (*cartarev.ApprovalCode, error) {
	var c cartarev.ApprovalCode
	var createdAt, expiresAt string
	var usedAt sql.NullString

	err := scan(&c.Code, &c.ReviewID, &c.SupervisorID, &createdAt, &expiresAt, &c.Used, &usedAt)
	if err == sql.ErrNoRows {
		return nil, cartarev.Errorf(cartarev.ENOTFOUND, "approval code not found")
	}
	if err != nil {
		return nil, err
	}

	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if c.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if usedAt.Valid {
		ts, err := time.Parse(time.RFC3339, usedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse used_at: %w", err)
		}
		c.UsedAt = &ts
	}
	return &c, nil
}
