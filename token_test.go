package cartarev_test

import (
	"testing"
	"time"

	"github.com/JimmyYuu29/cartarev"
	"github.com/stretchr/testify/assert"
)

func TestDownloadTokenValid(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fresh token is valid", func(t *testing.T) {
		t.Parallel()

		tok := &cartarev.DownloadToken{ExpiresAt: now.Add(cartarev.DefaultTokenTTL)}
		assert.True(t, tok.Valid(now))
	})

	t.Run("used token is invalid", func(t *testing.T) {
		t.Parallel()

		tok := &cartarev.DownloadToken{ExpiresAt: now.Add(time.Minute), Used: true}
		assert.False(t, tok.Valid(now))
	})

	t.Run("expired token is invalid", func(t *testing.T) {
		t.Parallel()

		tok := &cartarev.DownloadToken{ExpiresAt: now.Add(-time.Second)}
		assert.False(t, tok.Valid(now))
	})
}

func TestApprovalCodeValid(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("fresh code is valid", func(t *testing.T) {
		t.Parallel()

		code := &cartarev.ApprovalCode{ExpiresAt: now.Add(cartarev.DefaultCodeTTL)}
		assert.True(t, code.Valid(now))
		assert.False(t, code.Expired(now))
	})

	t.Run("used code is invalid", func(t *testing.T) {
		t.Parallel()

		code := &cartarev.ApprovalCode{ExpiresAt: now.Add(time.Hour), Used: true}
		assert.False(t, code.Valid(now))
	})

	t.Run("expired code is invalid", func(t *testing.T) {
		t.Parallel()

		code := &cartarev.ApprovalCode{ExpiresAt: now.Add(-time.Hour)}
		assert.True(t, code.Expired(now))
		assert.False(t, code.Valid(now))
	})
}
