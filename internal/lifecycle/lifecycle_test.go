package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/pricing"
)

var now = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func draft(mode ticket.PaymentMode) ticket.Draft {
	return ticket.Draft{
		EntryType:        ticket.EntryCustomer,
		VehiclePlate:     " ka01 ab 1234",
		VehicleTypeLabel: "SEDAN",
		Category:         ticket.CategoryFourWheeler,
		ServicesChosen:   []string{"Full Wash", " ", "Vacuum"},
		PaymentMode:      mode,
		LocationID:       uuid.New(),
	}
}

func priced(amount int64) pricing.Pricing {
	return pricing.Pricing{Amount: decimal.NewFromInt(amount), Discount: decimal.Zero, Payable: decimal.NewFromInt(amount)}
}

func create(t *testing.T, mode ticket.PaymentMode) ticket.Ticket {
	t.Helper()
	tk, err := Create(CreateInput{ID: uuid.New(), Draft: draft(mode), Pricing: priced(350), CreatedBy: uuid.New()}, Env{Now: now})
	require.NoError(t, err)
	return tk
}

func TestTransitionTable(t *testing.T) {
	assert.ElementsMatch(t, []ticket.Action{ticket.ActionApprove, ticket.ActionReject}, Allowed(ticket.StatePending))
	assert.Equal(t, []ticket.Action{ticket.ActionSettle}, Allowed(ticket.StateAwaitingPayment))
	assert.Empty(t, Allowed(ticket.StateSettled))
	assert.Empty(t, Allowed(ticket.StateRejected))
}

func TestCreate_Pending(t *testing.T) {
	tk := create(t, ticket.PaymentCash)
	assert.Equal(t, ticket.StatusPending, tk.ApprovalStatus)
	assert.Equal(t, ticket.StatePending, tk.State())
	assert.Equal(t, now, tk.EntryTime)
	assert.Nil(t, tk.ExitTime)
	assert.Nil(t, tk.ApprovedAt)
	assert.Equal(t, "KA01 AB 1234", tk.VehiclePlate)
	assert.Equal(t, []string{"Full Wash", "Vacuum"}, tk.ServicesChosen)
	assert.Equal(t, "4", tk.WheelCategoryCode)
}

func TestCreate_BackDated(t *testing.T) {
	yesterday := now.Add(-24 * time.Hour)
	d := draft(ticket.PaymentCash)
	d.UseCustomTime = true
	d.CustomEntryTime = &yesterday

	tk, err := Create(CreateInput{ID: uuid.New(), Draft: d, Pricing: priced(100)}, Env{Now: now})
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusApproved, tk.ApprovalStatus)
	assert.Equal(t, yesterday, tk.EntryTime)
	assert.Equal(t, yesterday, *tk.ExitTime)
	assert.Equal(t, yesterday, *tk.ApprovedAt)

	tomorrow := now.Add(24 * time.Hour)
	d.CustomEntryTime = &tomorrow
	_, err = Create(CreateInput{ID: uuid.New(), Draft: d, Pricing: priced(100)}, Env{Now: now})
	var verr *ticket.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"custom_entry_time"}, verr.Fields)

	d.CustomEntryTime = nil
	_, err = Create(CreateInput{ID: uuid.New(), Draft: d, Pricing: priced(100)}, Env{Now: now})
	require.True(t, errors.As(err, &verr))
}

func TestCreate_Validation(t *testing.T) {
	d := draft("")
	d.VehiclePlate = ""
	_, err := Create(CreateInput{Draft: d, Pricing: priced(10)}, Env{Now: now})
	var verr *ticket.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"vehicle_plate", "payment_mode"}, verr.Fields)

	d = draft(ticket.PaymentElectronicTransfer)
	_, err = Create(CreateInput{Draft: d, Pricing: priced(10)}, Env{Now: now})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"payment_account_ref"}, verr.Fields)

	acc := ticket.PaymentAccount{ID: uuid.New(), AccountName: "Main", Identifier: "main@upi", Active: true}
	d.PaymentAccountRef = &acc.ID
	tk, err := Create(CreateInput{Draft: d, Pricing: priced(10)}, Env{Now: now, Accounts: []ticket.PaymentAccount{acc}})
	require.NoError(t, err)
	assert.Equal(t, acc.ID, *tk.PaymentAccountRef)
}

func TestCheckout(t *testing.T) {
	tk, err := Checkout(CreateInput{ID: uuid.New(), Draft: draft(ticket.PaymentCash), Pricing: priced(200)}, Env{Now: now})
	require.NoError(t, err)
	assert.Equal(t, ticket.StateSettled, tk.State())
	for _, ts := range []*time.Time{tk.ExitTime, tk.ApprovedAt, tk.PaymentDate} {
		require.NotNil(t, ts)
		assert.Equal(t, now, *ts)
	}

	_, err = Checkout(CreateInput{Draft: draft(ticket.PaymentDeferred), Pricing: priced(200)}, Env{Now: now})
	var verr *ticket.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestApproveAndReject(t *testing.T) {
	later := now.Add(time.Hour)

	approved, err := Approve(create(t, ticket.PaymentCash), Env{Now: later})
	require.NoError(t, err)
	assert.Equal(t, ticket.StateSettled, approved.State())
	assert.Equal(t, later, *approved.ApprovedAt)
	assert.Equal(t, later, *approved.ExitTime)
	assert.Equal(t, later, *approved.PaymentDate)

	_, err = Approve(approved, Env{Now: later})
	var serr *ticket.StateError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, ticket.ActionApprove, serr.Action)
	assert.Equal(t, ticket.StateSettled, serr.State)

	rejected, err := Reject(create(t, ticket.PaymentCash), Env{Now: later})
	require.NoError(t, err)
	assert.Equal(t, ticket.StateRejected, rejected.State())
	assert.Nil(t, rejected.ApprovedAt)
	assert.Nil(t, rejected.ExitTime)

	_, err = Approve(rejected, Env{Now: later})
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, ticket.StateRejected, serr.State)
}

func TestDeferredSettlement(t *testing.T) {
	acc := ticket.PaymentAccount{ID: uuid.New(), AccountName: "Main", Identifier: "main@upi", QRAssetRef: "qr.png", Active: true}

	approved, err := Approve(create(t, ticket.PaymentDeferred), Env{Now: now})
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusApproved, approved.ApprovalStatus)
	assert.Nil(t, approved.PaymentDate)
	assert.Equal(t, ticket.StateAwaitingPayment, approved.State())
	assert.Equal(t, []ticket.Action{ticket.ActionSettle}, Allowed(approved.State()))

	_, err = Reject(approved, Env{Now: now})
	var serr *ticket.StateError
	require.True(t, errors.As(err, &serr))

	_, _, err = Settle(approved, ticket.PaymentElectronicTransfer, nil, Env{Now: now, Accounts: []ticket.PaymentAccount{acc}})
	var verr *ticket.ValidationError
	require.True(t, errors.As(err, &verr))

	settled, resolved, err := Settle(approved, ticket.PaymentElectronicTransfer, &acc.ID, Env{Now: now, Accounts: []ticket.PaymentAccount{acc}})
	require.NoError(t, err)
	assert.Equal(t, "qr.png", resolved.QRAssetRef)
	assert.Equal(t, ticket.StateSettled, settled.State())
	assert.Equal(t, ticket.PaymentElectronicTransfer, settled.PaymentMode)
	assert.Equal(t, now, *settled.PaymentDate)

	_, _, err = Settle(settled, ticket.PaymentCash, nil, Env{Now: now})
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, ticket.ActionSettle, serr.Action)
}

func TestSettle_RejectsDeferredMethod(t *testing.T) {
	approved, err := Approve(create(t, ticket.PaymentDeferred), Env{Now: now})
	require.NoError(t, err)
	_, _, err = Settle(approved, ticket.PaymentDeferred, nil, Env{Now: now})
	var verr *ticket.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestEdit(t *testing.T) {
	tk := create(t, ticket.PaymentCash)
	tk.Remarks = "regular"
	tk.Customer = ticket.Customer{Name: "Asha", Phone: "98450"}

	remarks := "needs wax"
	d := ticket.Patch{Remarks: &remarks}.ApplyTo(ticket.DraftFromTicket(tk))
	edited, err := Edit(tk, d, priced(350), EditOptions{}, Env{Now: now.Add(time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, "needs wax", edited.Remarks)
	assert.Equal(t, tk.Customer, edited.Customer)
	assert.Equal(t, tk.ServicesChosen, edited.ServicesChosen)
	assert.Equal(t, tk.EntryTime, edited.EntryTime)
	assert.Equal(t, tk.CreatedBy, edited.CreatedBy)
	assert.Equal(t, ticket.StatusPending, edited.ApprovalStatus)

	approved, err := Approve(tk, Env{Now: now})
	require.NoError(t, err)
	_, err = Edit(approved, d, priced(350), EditOptions{}, Env{Now: now})
	var serr *ticket.StateError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, ticket.ActionEdit, serr.Action)

	reopened, err := Edit(approved, d, priced(350), EditOptions{Reopen: true}, Env{Now: now})
	require.NoError(t, err)
	assert.Equal(t, ticket.StatusApproved, reopened.ApprovalStatus)
	assert.Equal(t, approved.PaymentDate, reopened.PaymentDate)
}

func TestEdit_ReopenKeepsPaymentMode(t *testing.T) {
	approved, err := Approve(create(t, ticket.PaymentDeferred), Env{Now: now})
	require.NoError(t, err)
	require.Equal(t, ticket.StateAwaitingPayment, approved.State())

	d := ticket.DraftFromTicket(approved)
	d.PaymentMode = ticket.PaymentCash
	got, err := Edit(approved, d, priced(350), EditOptions{Reopen: true}, Env{Now: now.Add(time.Hour)})
	var serr *ticket.StateError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, ticket.ActionEdit, serr.Action)
	assert.Equal(t, ticket.StateAwaitingPayment, serr.State)
	assert.Equal(t, ticket.StateAwaitingPayment, got.State())
	assert.Nil(t, got.PaymentDate)

	remarks := "paid later"
	d = ticket.Patch{Remarks: &remarks}.ApplyTo(ticket.DraftFromTicket(approved))
	edited, err := Edit(approved, d, priced(400), EditOptions{Reopen: true}, Env{Now: now.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, ticket.StateAwaitingPayment, edited.State())
	assert.Nil(t, edited.PaymentDate)
	assert.True(t, decimal.NewFromInt(400).Equal(edited.Amount))
}

func TestPayable(t *testing.T) {
	tk := ticket.Ticket{EntryType: ticket.EntryCustomer, WheelCategoryCode: "3", Amount: decimal.NewFromInt(400), Discount: decimal.NewFromInt(50)}
	assert.True(t, decimal.NewFromInt(350).Equal(Payable(tk)))
	tk.WheelCategoryCode = "4"
	assert.True(t, decimal.NewFromInt(400).Equal(Payable(tk)))
}
