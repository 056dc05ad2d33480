package blocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"growshare/internal/app/commands"
	"growshare/internal/app/middleware"
	"growshare/internal/app/outbox"
	"growshare/internal/app/uow"
	domainplot "growshare/internal/domain/plot"
	"growshare/internal/domain/shared/daterange"
)

const createBlockKey = "blocks.create"

var (
	ErrUnitOfWorkRequired = errors.New("blocks: unit of work required")
	ErrNotPlotOwner       = errors.New("blocks: only the plot owner may manage blocked dates")
)

type CreateBlockCommand struct {
	CommandID       string
	PlotID          string
	OwnerID         string
	Start           time.Time
	End             time.Time
	Reason          string
	IdempotencyKeyV string
}

func (c CreateBlockCommand) Key() string { return createBlockKey }

func (c CreateBlockCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBlockCommand) ResultPrototype() any { return &CreateBlockResult{} }

func (c CreateBlockCommand) Validate() error {
	if c.PlotID == "" {
		return fmt.Errorf("%w: plot id required", middleware.ErrInvalidMessage)
	}
	if c.OwnerID == "" {
		return fmt.Errorf("%w: owner id required", middleware.ErrInvalidMessage)
	}
	return nil
}

type CreateBlockResult struct {
	BlockID string `json:"block_id"`
}

// CreateBlockHandler carves a blackout window out of the plot's calendar.
// The block is applied even when it overlaps an existing booking: an owner
// overriding their own calendar is not a conflict from the system's
// perspective.
type CreateBlockHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateBlockHandler) Handle(ctx context.Context, cmd CreateBlockCommand) (*CreateBlockResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	dr, err := daterange.New(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}

	p, err := unit.Plots().ByID(ctx, domainplot.PlotID(cmd.PlotID))
	if err != nil {
		return nil, err
	}
	if string(p.Owner) != cmd.OwnerID {
		return nil, ErrNotPlotOwner
	}

	cal, err := unit.Availability().Calendar(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := cal.AddBlock(cmd.CommandID, dr, cmd.Reason, now); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, cal); err != nil {
		return nil, err
	}

	pending := cal.PendingEvents()
	cal.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.encoder(), pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CreateBlockResult{BlockID: cmd.CommandID}, nil
}

func (h *CreateBlockHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[CreateBlockCommand, *CreateBlockResult] = (*CreateBlockHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBlockCommand)(nil)
