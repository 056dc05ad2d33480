package blocks

import (
	"context"
	"time"

	"growshare/internal/app/commands"
	"growshare/internal/app/outbox"
	"growshare/internal/app/uow"
	domainplot "growshare/internal/domain/plot"
)

const removeBlockKey = "blocks.remove"

type RemoveBlockCommand struct {
	PlotID  string
	OwnerID string
	BlockID string
}

func (c RemoveBlockCommand) Key() string { return removeBlockKey }

type RemoveBlockResult struct {
	BlockID string `json:"block_id"`
}

// RemoveBlockHandler deletes a blackout window, restoring availability for
// its dates.
type RemoveBlockHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *RemoveBlockHandler) Handle(ctx context.Context, cmd RemoveBlockCommand) (*RemoveBlockResult, error) {
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
	if err := cal.RemoveBlock(cmd.BlockID, time.Now().UTC()); err != nil {
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

	return &RemoveBlockResult{BlockID: cmd.BlockID}, nil
}

func (h *RemoveBlockHandler) encoder() outbox.EventEncoder {
	if h.Encoder != nil {
		return h.Encoder
	}
	return outbox.JSONEventEncoder{}
}

var _ commands.Handler[RemoveBlockCommand, *RemoveBlockResult] = (*RemoveBlockHandler)(nil)
