package sqlite_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JimmyYuu29/cartarev"
	"github.com/JimmyYuu29/cartarev/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	t.Parallel()

	t.Run("create and consume", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewTokenService(db)
		ctx := context.Background()

		token, err := svc.CreateToken(ctx, review.ID, cartarev.DefaultTokenTTL)
		require.NoError(t, err)
		assert.NotEmpty(t, token.Token)
		assert.True(t, token.Valid(time.Now()))

		require.NoError(t, svc.ConsumeToken(ctx, token.Token, review.ID))

		found, err := svc.FindToken(ctx, token.Token)
		require.NoError(t, err)
		assert.True(t, found.Used)
		require.NotNil(t, found.UsedAt)
	})

	t.Run("token is single use", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewTokenService(db)
		ctx := context.Background()

		token, err := svc.CreateToken(ctx, review.ID, cartarev.DefaultTokenTTL)
		require.NoError(t, err)

		require.NoError(t, svc.ConsumeToken(ctx, token.Token, review.ID))
		err = svc.ConsumeToken(ctx, token.Token, review.ID)
		assert.Equal(t, cartarev.EUNAUTHORIZED, cartarev.ErrorCode(err))
	})

	t.Run("token is bound to its review", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		other := createTestReview(t, db)
		svc := sqlite.NewTokenService(db)
		ctx := context.Background()

		token, err := svc.CreateToken(ctx, review.ID, cartarev.DefaultTokenTTL)
		require.NoError(t, err)

		err = svc.ConsumeToken(ctx, token.Token, other.ID)
		assert.Equal(t, cartarev.EUNAUTHORIZED, cartarev.ErrorCode(err))
	})

	t.Run("expired token cannot be consumed", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewTokenService(db)
		ctx := context.Background()

		token, err := svc.CreateToken(ctx, review.ID, -time.Minute)
		require.NoError(t, err)

		err = svc.ConsumeToken(ctx, token.Token, review.ID)
		assert.Equal(t, cartarev.EUNAUTHORIZED, cartarev.ErrorCode(err))
	})

	t.Run("unknown token is ENOTFOUND on lookup", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewTokenService(db)

		_, err := svc.FindToken(context.Background(), "missing")
		assert.Equal(t, cartarev.ENOTFOUND, cartarev.ErrorCode(err))
	})

	t.Run("DeleteExpiredTokens keeps valid and used tokens", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewTokenService(db)
		ctx := context.Background()

		_, err := svc.CreateToken(ctx, review.ID, -time.Minute)
		require.NoError(t, err)
		valid, err := svc.CreateToken(ctx, review.ID, time.Hour)
		require.NoError(t, err)

		removed, err := svc.DeleteExpiredTokens(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		_, err = svc.FindToken(ctx, valid.Token)
		assert.NoError(t, err)
	})
}

func TestApprovalCodeService(t *testing.T) {
	t.Parallel()

	t.Run("creates 8-character codes", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewApprovalCodeService(db)

		code, err := svc.CreateCode(context.Background(), review.ID, "mgarcia", cartarev.DefaultCodeTTL)
		require.NoError(t, err)
		assert.Len(t, code.Code, 8)
		assert.Regexp(t, "^[A-Z0-9]{8}$", code.Code)
		assert.Equal(t, "mgarcia", code.SupervisorID)
	})

	t.Run("codes cover the whole alphabet", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewApprovalCodeService(db)
		ctx := context.Background()

		// 200 codes yield 1600 characters; a character unreachable by the
		// generator would leave a gap here.
		seen := make(map[rune]bool)
		for i := 0; i < 200; i++ {
			code, err := svc.CreateCode(ctx, review.ID, "mgarcia", cartarev.DefaultCodeTTL)
			require.NoError(t, err)
			assert.Regexp(t, "^[A-Z0-9]{8}$", code.Code)
			for _, r := range code.Code {
				seen[r] = true
			}
		}
		assert.Len(t, seen, 36)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewApprovalCodeService(db)
		ctx := context.Background()

		code, err := svc.CreateCode(ctx, review.ID, "mgarcia", cartarev.DefaultCodeTTL)
		require.NoError(t, err)

		found, err := svc.FindCode(ctx, " "+strings.ToLower(code.Code)+" ")
		require.NoError(t, err)
		assert.Equal(t, code.Code, found.Code)
	})

	t.Run("code is single use", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewApprovalCodeService(db)
		ctx := context.Background()

		code, err := svc.CreateCode(ctx, review.ID, "mgarcia", cartarev.DefaultCodeTTL)
		require.NoError(t, err)

		require.NoError(t, svc.ConsumeCode(ctx, code.Code))
		err = svc.ConsumeCode(ctx, code.Code)
		assert.Equal(t, cartarev.EUNAUTHORIZED, cartarev.ErrorCode(err))
	})

	t.Run("expired code cannot be consumed", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewApprovalCodeService(db)
		ctx := context.Background()

		code, err := svc.CreateCode(ctx, review.ID, "mgarcia", -time.Minute)
		require.NoError(t, err)

		err = svc.ConsumeCode(ctx, code.Code)
		assert.Equal(t, cartarev.EUNAUTHORIZED, cartarev.ErrorCode(err))
	})

	t.Run("CodesForReview lists issued codes", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewApprovalCodeService(db)
		ctx := context.Background()

		_, err := svc.CreateCode(ctx, review.ID, "mgarcia", cartarev.DefaultCodeTTL)
		require.NoError(t, err)
		_, err = svc.CreateCode(ctx, review.ID, "jlopez", cartarev.DefaultCodeTTL)
		require.NoError(t, err)

		codes, err := svc.CodesForReview(ctx, review.ID)
		require.NoError(t, err)
		assert.Len(t, codes, 2)
	})

	t.Run("DeleteExpiredCodes keeps used codes for the audit trail", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		review := createTestReview(t, db)
		svc := sqlite.NewApprovalCodeService(db)
		ctx := context.Background()

		used, err := svc.CreateCode(ctx, review.ID, "mgarcia", cartarev.DefaultCodeTTL)
		require.NoError(t, err)
		require.NoError(t, svc.ConsumeCode(ctx, used.Code))
		_, err = svc.CreateCode(ctx, review.ID, "mgarcia", -time.Minute)
		require.NoError(t, err)

		removed, err := svc.DeleteExpiredCodes(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		_, err = svc.FindCode(ctx, used.Code)
		assert.NoError(t, err)
	})
}
