package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"growshare/internal/app/commands"
	blocksapp "growshare/internal/app/handlers/blocks"
)

type BlockHandler struct {
	Commands commands.Bus
}

type createBlockRequest struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Reason    string    `json:"reason"`
}

func (h BlockHandler) Create(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req createBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeValidationFailed, "error": err.Error()})
		return
	}
	cmd := blocksapp.CreateBlockCommand{
		CommandID:       uuid.NewString(),
		PlotID:          c.Param("id"),
		OwnerID:         user.ID,
		Start:           req.StartDate,
		End:             req.EndDate,
		Reason:          req.Reason,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[blocksapp.CreateBlockCommand, *blocksapp.CreateBlockResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BlockHandler) Remove(c *gin.Context) {
	user, ok := requirePrincipal(c)
	if !ok {
		return
	}
	blockID := c.Query("id")
	if blockID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": CodeValidationFailed, "error": "block id is required"})
		return
	}
	cmd := blocksapp.RemoveBlockCommand{
		PlotID:  c.Param("id"),
		OwnerID: user.ID,
		BlockID: blockID,
	}
	result, err := commands.Dispatch[blocksapp.RemoveBlockCommand, *blocksapp.RemoveBlockResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ BlockHTTP = BlockHandler{}
