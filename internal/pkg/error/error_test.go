package error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	notFound := NotFound("key not found")
	assert.Same(t, notFound, From(notFound))
	assert.Same(t, notFound, From(fmt.Errorf("lookup: %w", notFound)))

	plain := From(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, plain.HttpCode())
	assert.Equal(t, INTERNAL_ERROR, plain.ErrorCode())
	assert.Equal(t, "unexpected error", plain.ErrorDesc())
	assert.NotContains(t, plain.ErrorDesc(), "boom")
}

func TestTaxonomy(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
		code   int
	}{
		{MissingFields("scriptId"), http.StatusBadRequest, MISSING_FIELDS},
		{OwnerMismatch("not yours"), http.StatusForbidden, OWNER_MISMATCH},
		{Conflict("not running"), http.StatusConflict, CONFLICT},
		{RateLimitExceeded("slow down"), http.StatusTooManyRequests, RATE_LIMIT_EXCEEDED},
		{StorageUnavailable("down"), http.StatusServiceUnavailable, STORAGE_UNAVAILABLE},
		{StorageTimeout("slow"), http.StatusServiceUnavailable, STORAGE_TIMEOUT},
		{DatabaseError("bad record"), http.StatusInternalServerError, DATABASE_ERROR},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.HttpCode(), tc.err.Error())
		assert.Equal(t, tc.code, tc.err.ErrorCode(), tc.err.Error())
	}
}

func TestMapHttpStatusToError(t *testing.T) {
	assert.Equal(t, NOT_FOUND, MapHttpStatusToError(http.StatusNotFound, "x").ErrorCode())
	assert.Equal(t, INTERNAL_ERROR, MapHttpStatusToError(http.StatusTeapot, "x").ErrorCode())
}

func TestWrappedCauseAndIs(t *testing.T) {
	cause := errors.New("redis: connection refused")
	wrapped := From(cause)
	assert.ErrorIs(t, wrapped, cause)

	assert.ErrorIs(t, fmt.Errorf("claim: %w", NotFound("a")), NotFound("b"))
	assert.NotErrorIs(t, NotFound("a"), Conflict("a"))
	assert.Equal(t, OWNER_MISMATCH, Forbidden("x", OWNER_MISMATCH).ErrorCode())
}
