package medreg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/medreg"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := medreg.Errorf(medreg.ENOTFOUND, "unknown spider %q", "test")

	assert.Equal(t, medreg.ENOTFOUND, medreg.ErrorCode(err))
	assert.Equal(t, "unknown spider \"test\"", medreg.ErrorMessage(err))
}

func TestErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("flush: %w", medreg.Errorf(medreg.ETIMEOUT, "flush timed out"))

	assert.Equal(t, medreg.ETIMEOUT, medreg.ErrorCode(err))
	assert.Equal(t, "flush timed out", medreg.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, medreg.EINTERNAL, medreg.ErrorCode(err))
	assert.Equal(t, "Internal error.", medreg.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, medreg.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, medreg.ErrorMessage(nil))
}
