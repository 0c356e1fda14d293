package docharvest_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/docharvest"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := docharvest.Errorf(docharvest.ENOTFOUND, "package %q not found", "test")

	assert.Equal(t, docharvest.ENOTFOUND, docharvest.ErrorCode(err))
	assert.Equal(t, "package \"test\" not found", docharvest.ErrorMessage(err))
}

func TestWrapErrorf(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := docharvest.WrapErrorf(cause, docharvest.EDISCOVERY, "fetch package info for %q", "requests")

	assert.Equal(t, docharvest.EDISCOVERY, docharvest.ErrorCode(err))
	assert.Equal(t, "fetch package info for \"requests\"", docharvest.ErrorMessage(err))
	assert.ErrorIs(t, err, cause)
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, docharvest.EINTERNAL, docharvest.ErrorCode(errors.New("boom")))
}

func TestErrorCode_Wrapped(t *testing.T) {
	t.Parallel()

	inner := docharvest.Errorf(docharvest.EFETCH, "clone failed")
	err := fmt.Errorf("harvest: %w", inner)

	assert.Equal(t, docharvest.EFETCH, docharvest.ErrorCode(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docharvest.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docharvest.ErrorMessage(nil))
}
