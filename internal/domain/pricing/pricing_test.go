package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growshare/internal/domain/shared/daterange"
	"growshare/internal/domain/shared/money"
)

func mustRange(t *testing.T, startDay, endDay int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2026, time.June, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, startDay, 0, 0, 0, 0, time.UTC).AddDate(0, 0, endDay-startDay),
	)
	require.NoError(t, err)
	return dr
}

func TestCalculateCostExactMonth(t *testing.T) {
	monthly := money.Must(30000, "USD")
	dr := mustRange(t, 1, 30) // 30 days inclusive

	quote, err := CalculateCost(dr, monthly)
	require.NoError(t, err)
	assert.Equal(t, 1, quote.Months)
	assert.Equal(t, int64(30000), quote.Total.Amount)
	assert.Equal(t, "USD", quote.Total.Currency)
}

func TestCalculateCostPartialMonthRoundsUp(t *testing.T) {
	monthly := money.Must(30000, "USD")

	dr, err := daterange.New(
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.Equal(t, 31, dr.Days())

	quote, err := CalculateCost(dr, monthly)
	require.NoError(t, err)
	assert.Equal(t, 2, quote.Months)
	assert.Equal(t, int64(60000), quote.Total.Amount)
}

func TestCalculateCostSingleDay(t *testing.T) {
	quote, err := CalculateCost(mustRange(t, 5, 5), money.Must(9000, "USD"))
	require.NoError(t, err)
	assert.Equal(t, 1, quote.Months)
	assert.Equal(t, int64(9000), quote.Total.Amount)
}

func TestCalculateCostZeroRate(t *testing.T) {
	quote, err := CalculateCost(mustRange(t, 1, 30), money.Must(0, "USD"))
	require.NoError(t, err)
	assert.True(t, quote.Total.IsZero())
}

func TestCalculateCostRejectsMissingCurrency(t *testing.T) {
	_, err := CalculateCost(mustRange(t, 1, 30), money.Money{Amount: 100})
	assert.ErrorIs(t, err, ErrCurrencyUnset)
}

func TestCalculateCostRejectsNegativeRate(t *testing.T) {
	_, err := CalculateCost(mustRange(t, 1, 30), money.Money{Amount: -1, Currency: "USD"})
	assert.ErrorIs(t, err, ErrInvalidRate)
}
