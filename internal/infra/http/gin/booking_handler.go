package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"growshare/internal/app/commands"
	bookingapp "growshare/internal/app/handlers/booking"
)

type BookingHandler struct {
	Commands commands.Bus
}

type createBookingRequest struct {
	PlotID    string    `json:"plot_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Message   string    `json:"message"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeValidationFailed, "error": err.Error()})
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		CommandID:       uuid.NewString(),
		PlotID:          req.PlotID,
		RenterID:        user.ID,
		EmailVerified:   user.EmailVerified,
		Start:           req.StartDate,
		End:             req.EndDate,
		Message:         req.Message,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	cmd := bookingapp.CancelBookingCommand{
		BookingID: c.Param("id"),
		CallerID:  user.ID,
		Reason:    req.Reason,
	}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BookingHTTP = BookingHandler{}
