package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"growshare/internal/app/dto"
	availabilityapp "growshare/internal/app/handlers/availability"
	"growshare/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
}

// Window serves GET /plots/:id/availability?start=...&end=... Dates arrive as
// ISO-8601 timestamps but are compared at calendar-date granularity.
func (h AvailabilityHandler) Window(c *gin.Context) {
	plotID := c.Param("id")
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeValidationFailed, "error": "start must be an ISO-8601 timestamp"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeValidationFailed, "error": "end must be an ISO-8601 timestamp"})
		return
	}
	query := availabilityapp.GetAvailabilityQuery{PlotID: plotID, From: start, To: end}
	result, err := queries.Ask[availabilityapp.GetAvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
