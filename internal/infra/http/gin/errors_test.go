package ginserver

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	blocksapp "growshare/internal/app/handlers/blocks"
	bookingapp "growshare/internal/app/handlers/booking"
	domainavailability "growshare/internal/domain/availability"
	domainbooking "growshare/internal/domain/booking"
	domainplot "growshare/internal/domain/plot"
	"growshare/internal/domain/shared/daterange"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domainavailability.ErrRangeUnavailable, http.StatusConflict, CodeConflict},
		{domainavailability.ErrConcurrentUpdate, http.StatusConflict, CodeConflict},
		{bookingapp.ErrVerificationRequired, http.StatusForbidden, CodeVerificationRequired},
		{blocksapp.ErrNotPlotOwner, http.StatusForbidden, CodeForbidden},
		{bookingapp.ErrNotBookingParty, http.StatusForbidden, CodeForbidden},
		{domainplot.ErrPlotNotFound, http.StatusNotFound, CodeNotFound},
		{domainbooking.ErrBookingNotFound, http.StatusNotFound, CodeNotFound},
		{domainavailability.ErrBlockNotFound, http.StatusNotFound, CodeNotFound},
		{daterange.ErrInvalidRange, http.StatusBadRequest, CodeValidationFailed},
		{domainavailability.ErrStartInPast, http.StatusBadRequest, CodeValidationFailed},
		{domainavailability.ErrBelowMinimumLease, http.StatusBadRequest, CodeValidationFailed},
		{domainavailability.ErrWindowTooLarge, http.StatusBadRequest, CodeValidationFailed},
		{errors.New("anything else"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		status, code := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestClassifyWrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("save failed"), domainavailability.ErrConcurrentUpdate)
	status, code := classify(wrapped)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, CodeConflict, code)
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", extractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", extractBearerToken("bearer abc"))
	assert.Equal(t, "", extractBearerToken(""))
	assert.Equal(t, "", extractBearerToken("Basic abc"))
}
