package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"growshare/internal/app/dto"
	bookingapp "growshare/internal/app/handlers/booking"
	"growshare/internal/app/queries"
)

type MeHandler struct {
	Queries queries.Bus
}

func (h MeHandler) ListBookings(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	query := bookingapp.ListRenterBookingsQuery{RenterID: user.ID}
	result, err := queries.Ask[bookingapp.ListRenterBookingsQuery, dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MeHTTP = MeHandler{}
