package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growshare/internal/app/commands"
	"growshare/internal/app/middleware"
	"growshare/internal/infra/storage/memory"
)

type echoCommand struct {
	ID      string
	IdemKey string
}

func (c echoCommand) Key() string { return "test.echo" }

func (c echoCommand) IdempotencyKey() string { return c.IdemKey }

func (c echoCommand) ResultPrototype() any { return &echoResult{} }

type echoResult struct {
	Value string `json:"value"`
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	calls := 0
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, echoCommand{}.Key(), commands.HandlerFunc[echoCommand, *echoResult](
		func(ctx context.Context, cmd echoCommand) (*echoResult, error) {
			calls++
			return &echoResult{Value: cmd.ID}, nil
		}))

	wrapped := middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	first, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), wrapped, echoCommand{ID: "a", IdemKey: "key-1"})
	require.NoError(t, err)
	assert.Equal(t, "a", first.Value)
	assert.Equal(t, 1, calls)

	// Same key replays without re-executing, even with a different payload.
	second, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), wrapped, echoCommand{ID: "b", IdemKey: "key-1"})
	require.NoError(t, err)
	assert.Equal(t, "a", second.Value)
	assert.Equal(t, 1, calls)

	// A new key executes normally.
	third, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), wrapped, echoCommand{ID: "c", IdemKey: "key-2"})
	require.NoError(t, err)
	assert.Equal(t, "c", third.Value)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyReplaysErrors(t *testing.T) {
	calls := 0
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, echoCommand{}.Key(), commands.HandlerFunc[echoCommand, *echoResult](
		func(ctx context.Context, cmd echoCommand) (*echoResult, error) {
			calls++
			return nil, errors.New("boom")
		}))

	wrapped := middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), wrapped, echoCommand{IdemKey: "key-1"})
	require.EqualError(t, err, "boom")
	_, err = commands.Dispatch[echoCommand, *echoResult](context.Background(), wrapped, echoCommand{IdemKey: "key-1"})
	require.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}

func TestIdempotencyEmptyKeyPassesThrough(t *testing.T) {
	calls := 0
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, echoCommand{}.Key(), commands.HandlerFunc[echoCommand, *echoResult](
		func(ctx context.Context, cmd echoCommand) (*echoResult, error) {
			calls++
			return &echoResult{Value: cmd.ID}, nil
		}))

	wrapped := middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore(), nil))

	for i := 0; i < 2; i++ {
		_, err := commands.Dispatch[echoCommand, *echoResult](context.Background(), wrapped, echoCommand{ID: "a"})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
