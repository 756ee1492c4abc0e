package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/JimmyYuu29/cartarev"
	main "github.com/JimmyYuu29/cartarev/cmd/cartarev"
	"github.com/JimmyYuu29/cartarev/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeps() (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	deps := &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
	}
	return deps, stdout, stderr
}

func TestCmdList(t *testing.T) {
	t.Parallel()

	t.Run("prints one line per review", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := testDeps()
		deps.Reviews = &mock.ReviewService{
			FindReviewsFn: func(ctx context.Context, filter cartarev.ReviewFilter) ([]*cartarev.Review, error) {
				return []*cartarev.Review{
					{
						ID:      "rev-1",
						DocType: "carta_manifestaciones",
						Status:  cartarev.StatusSubmitted,
						Data:    map[string]any{"Nombre_Cliente": "ACME S.L."},
					},
				}, nil
			},
		}

		cmd := &main.ListCmd{}
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "rev-1")
		assert.Contains(t, stdout.String(), "SUBMITTED")
		assert.Contains(t, stdout.String(), "ACME S.L.")
	})

	t.Run("passes the status filter through", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := testDeps()
		var got cartarev.ReviewFilter
		deps.Reviews = &mock.ReviewService{
			FindReviewsFn: func(ctx context.Context, filter cartarev.ReviewFilter) ([]*cartarev.Review, error) {
				got = filter
				return nil, nil
			},
		}

		cmd := &main.ListCmd{Status: "DRAFT"}
		require.NoError(t, cmd.Run(deps))
		require.NotNil(t, got.Status)
		assert.Equal(t, cartarev.StatusDraft, *got.Status)
		assert.Contains(t, stdout.String(), "No reviews found")
	})
}

func TestCmdSchemas(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := testDeps()
	deps.Schemas = &mock.SchemaRegistry{
		DocTypesFn: func() []string { return []string{"carta_manifestaciones"} },
		SchemaFn: func(docType string) (*cartarev.DocumentSchema, error) {
			return &cartarev.DocumentSchema{
				DocType: docType,
				Title:   "Carta de Manifestaciones",
				Fields:  map[string]cartarev.FieldSpec{"Nombre_Cliente": {Type: cartarev.FieldString}},
				Blocks:  []cartarev.BlockDefinition{{Key: "alcance"}},
			}, nil
		},
	}

	cmd := &main.SchemasCmd{}
	require.NoError(t, cmd.Run(deps))
	assert.Contains(t, stdout.String(), "carta_manifestaciones")
	assert.Contains(t, stdout.String(), "1 fields, 1 blocks")
}

func TestCmdCleanup(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := testDeps()
	deps.Codes = &mock.ApprovalCodeService{
		DeleteExpiredCodesFn: func(ctx context.Context) (int, error) { return 3, nil },
	}
	deps.Tokens = &mock.TokenService{
		DeleteExpiredTokensFn: func(ctx context.Context) (int, error) { return 2, nil },
	}

	cmd := &main.CleanupCmd{}
	require.NoError(t, cmd.Run(deps))
	assert.Contains(t, stdout.String(), "removed 3 expired codes and 2 expired tokens")
}

func TestCmdHashPassword(t *testing.T) {
	t.Parallel()

	deps, stdout, _ := testDeps()
	cmd := &main.HashPasswordCmd{Password: "secreto1"}
	require.NoError(t, cmd.Run(deps))

	// SHA-256 of "secreto1", hex-encoded.
	assert.Len(t, bytes.TrimSpace(stdout.Bytes()), 64)
}
