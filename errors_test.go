package cartarev_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JimmyYuu29/cartarev"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("application error", func(t *testing.T) {
		t.Parallel()

		err := cartarev.Errorf(cartarev.ENOTFOUND, "review not found")
		assert.Equal(t, cartarev.ENOTFOUND, cartarev.ErrorCode(err))
	})

	t.Run("wrapped application error", func(t *testing.T) {
		t.Parallel()

		err := fmt.Errorf("loading schema: %w", cartarev.Errorf(cartarev.EINVALID, "bad schema"))
		assert.Equal(t, cartarev.EINVALID, cartarev.ErrorCode(err))
	})

	t.Run("non-application error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, cartarev.EINTERNAL, cartarev.ErrorCode(errors.New("boom")))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", cartarev.ErrorCode(nil))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("application error", func(t *testing.T) {
		t.Parallel()

		err := cartarev.Errorf(cartarev.ECONFLICT, "review already submitted")
		assert.Equal(t, "review already submitted", cartarev.ErrorMessage(err))
	})

	t.Run("non-application error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "Internal error.", cartarev.ErrorMessage(errors.New("boom")))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "", cartarev.ErrorMessage(nil))
	})
}
