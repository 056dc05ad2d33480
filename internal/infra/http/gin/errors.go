package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	blocksapp "growshare/internal/app/handlers/blocks"
	bookingapp "growshare/internal/app/handlers/booking"
	"growshare/internal/app/middleware"
	domainavailability "growshare/internal/domain/availability"
	domainbooking "growshare/internal/domain/booking"
	domainplot "growshare/internal/domain/plot"
	"growshare/internal/domain/shared/daterange"
)

// Machine-readable error codes the UI branches on: a conflict prompts a
// calendar refresh, verification_required surfaces a remediation link, and
// only internal errors are worth a blind retry.
const (
	CodeValidationFailed     = "validation_failed"
	CodeConflict             = "conflict"
	CodeAuthRequired         = "auth_required"
	CodeVerificationRequired = "verification_required"
	CodeForbidden            = "forbidden"
	CodeNotFound             = "not_found"
	CodeInternal             = "internal"
)

func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	c.JSON(status, gin.H{"code": code, "error": err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domainavailability.ErrRangeUnavailable),
		errors.Is(err, domainavailability.ErrConcurrentUpdate):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, bookingapp.ErrVerificationRequired):
		return http.StatusForbidden, CodeVerificationRequired
	case errors.Is(err, blocksapp.ErrNotPlotOwner),
		errors.Is(err, bookingapp.ErrNotBookingParty):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, domainplot.ErrPlotNotFound),
		errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainavailability.ErrBlockNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, middleware.ErrInvalidMessage),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, domainavailability.ErrStartInPast),
		errors.Is(err, domainavailability.ErrBelowMinimumLease),
		errors.Is(err, domainavailability.ErrWindowTooLarge),
		errors.Is(err, domainbooking.ErrStartInPast),
		errors.Is(err, domainbooking.ErrInvalidState):
		return http.StatusBadRequest, CodeValidationFailed
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
