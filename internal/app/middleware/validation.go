package middleware

import (
	"context"
	"errors"

	"growshare/internal/app/commands"
	"growshare/internal/app/queries"
)

// ErrInvalidMessage marks shape-level rejections raised before a handler runs.
var ErrInvalidMessage = errors.New("middleware: invalid message")

type Validator interface {
	Validate(ctx context.Context, message any) error
}

// SelfValidating is implemented by messages that can check their own shape.
type SelfValidating interface {
	Validate() error
}

// MessageValidator runs Validate on messages that implement SelfValidating
// and passes everything else through.
type MessageValidator struct{}

func (MessageValidator) Validate(ctx context.Context, message any) error {
	if sv, ok := message.(SelfValidating); ok {
		return sv.Validate()
	}
	return nil
}

func Validation(v Validator) CommandMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := v.Validate(ctx, cmd); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryValidation(v Validator) QueryMiddleware {
	if v == nil {
		panic("middleware: validator required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := v.Validate(ctx, q); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
