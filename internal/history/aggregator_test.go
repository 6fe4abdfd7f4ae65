package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vehicle-ticket-service/internal/domain/ticket"
)

type MockTicketQuerier struct {
	mock.Mock
}

func (m *MockTicketQuerier) QueryTickets(ctx context.Context, filter ticket.Filter) ([]ticket.Ticket, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ticket.Ticket), args.Error(1)
}

func (m *MockTicketQuerier) CountTickets(ctx context.Context, filter ticket.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func strictFilter(plate string, loc *uuid.UUID) interface{} {
	return mock.MatchedBy(func(f ticket.Filter) bool {
		return f.PlateLike == plate && f.From == nil && f.LocationID == loc
	})
}

func relaxedFilter() interface{} {
	return mock.MatchedBy(func(f ticket.Filter) bool {
		return f.PlateLike == "" && f.From != nil
	})
}

func TestCountVisits(t *testing.T) {
	ctx := context.Background()
	loc := uuid.New()

	t.Run("short plate does not query", func(t *testing.T) {
		store := new(MockTicketQuerier)
		agg := NewAggregator(store, zerolog.Nop())
		n, err := agg.CountVisits(ctx, "ka", nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		store.AssertNotCalled(t, "QueryTickets", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "CountTickets", mock.Anything, mock.Anything)
	})

	t.Run("counts loose matches in location", func(t *testing.T) {
		store := new(MockTicketQuerier)
		store.On("CountTickets", ctx, strictFilter("AB12", &loc)).Return(int64(2), nil)
		agg := NewAggregator(store, zerolog.Nop())
		n, err := agg.CountVisits(ctx, "ab 12", &loc)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		store.AssertNotCalled(t, "QueryTickets", mock.Anything, mock.Anything)
	})

	t.Run("count is not bounded by a ticket page", func(t *testing.T) {
		store := new(MockTicketQuerier)
		store.On("CountTickets", ctx, strictFilter("KA01", nil)).Return(int64(750), nil)
		agg := NewAggregator(store, zerolog.Nop())
		n, err := agg.CountVisits(ctx, "KA01", nil)
		require.NoError(t, err)
		assert.Equal(t, 750, n)
	})

	t.Run("zero matches returns zero", func(t *testing.T) {
		store := new(MockTicketQuerier)
		store.On("CountTickets", ctx, strictFilter("ZZZ999", nil)).Return(int64(0), nil)
		store.On("QueryTickets", ctx, strictFilter("ZZZ999", nil)).Return([]ticket.Ticket{}, nil)
		store.On("QueryTickets", ctx, relaxedFilter()).Return([]ticket.Ticket{{VehiclePlate: "KA01AB1234"}}, nil)
		agg := NewAggregator(store, zerolog.Nop())
		n, err := agg.CountVisits(ctx, "zzz999", nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		store.AssertNumberOfCalls(t, "QueryTickets", 2)
	})

	t.Run("relaxed read finds a just written ticket", func(t *testing.T) {
		store := new(MockTicketQuerier)
		store.On("CountTickets", ctx, strictFilter("KA01", &loc)).Return(int64(0), nil)
		store.On("QueryTickets", ctx, strictFilter("KA01", &loc)).Return([]ticket.Ticket{}, nil)
		store.On("QueryTickets", ctx, relaxedFilter()).Return([]ticket.Ticket{{VehiclePlate: "KA01AB1234"}, {VehiclePlate: "TN09"}}, nil)
		agg := NewAggregator(store, zerolog.Nop())
		n, err := agg.CountVisits(ctx, "KA01", &loc)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("store error propagates", func(t *testing.T) {
		store := new(MockTicketQuerier)
		boom := &ticket.StoreError{Op: "count_tickets", Kind: ticket.StoreUnavailable, Err: errors.New("timeout")}
		store.On("CountTickets", ctx, mock.Anything).Return(int64(0), boom)
		agg := NewAggregator(store, zerolog.Nop())
		_, err := agg.CountVisits(ctx, "KA01", nil)
		assert.True(t, ticket.IsStoreKind(err, ticket.StoreUnavailable))
	})
}

func TestLatestProfile(t *testing.T) {
	ctx := context.Background()
	older := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	store := new(MockTicketQuerier)
	store.On("QueryTickets", ctx, strictFilter("KA01AB", nil)).Return([]ticket.Ticket{
		{VehiclePlate: "KA01AB1234", CreatedAt: older, Customer: ticket.Customer{Name: "Old Name"}},
		{
			VehiclePlate:      "KA01AB1234",
			CreatedAt:         newer,
			Customer:          ticket.Customer{Name: "Ravi", Phone: "9845012345"},
			Vehicle:           ticket.Vehicle{Brand: "Honda", Model: "City"},
			WheelCategoryCode: "4",
			Amount:            decimal.NewFromInt(350),
			Discount:          decimal.NewFromInt(50),
		},
	}, nil)
	agg := NewAggregator(store, zerolog.Nop())

	p, err := agg.LatestProfile(ctx, "ka01ab")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Ravi", p.Customer.Name)
	assert.Equal(t, "Honda", p.VehicleBrand)
	assert.Equal(t, ticket.CategoryFourWheeler, p.WheelCategory)
	assert.True(t, decimal.NewFromInt(350).Equal(p.LastAmount))
	assert.Equal(t, newer, p.LastVisit)

	p, err = agg.LatestProfile(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, p)
}
