package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"vehicle-ticket-service/internal/domain/capture"
	"vehicle-ticket-service/internal/domain/ticket"
	"vehicle-ticket-service/internal/reconcile"
	"vehicle-ticket-service/internal/service"
)

func sampleComparison() *service.Comparison {
	loc := uuid.MustParse("7f1c2d3e-0000-4000-8000-000000000001")
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	tk := ticket.Ticket{ID: uuid.New(), VehiclePlate: "KA01 AB 1234", EntryTime: at.Add(3 * time.Minute), PaymentMode: ticket.PaymentCash, ApprovalStatus: ticket.StatusPending, Amount: decimal.NewFromInt(350)}
	return &service.Comparison{
		LocationID:  loc,
		Date:        "2026-04-01",
		AutoEntries: 2,
		Tickets:     2,
		Result: reconcile.Result{
			Matched:         []reconcile.Match{{Auto: capture.Entry{ID: 1, VehicleRef: "KA01AB1234", EntryTime: at}, Ticket: tk, Gap: 3 * time.Minute, Exact: true}},
			UnmatchedAuto:   []capture.Entry{{ID: 2, VehicleRef: "DL03XY0001", EntryTime: at.Add(time.Hour)}},
			UnmatchedManual: []ticket.Ticket{tk},
		},
		Warnings: []ticket.ReconciliationWarning{{Kind: ticket.WarningUnmatchedAuto, Message: "captured DL03XY0001 has no ticket"}},
	}
}

func TestWriteComparison(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteComparison(&buf, sampleComparison()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetSummary, sheetMatched, sheetAuto, sheetManual, sheetWarnings}, f.GetSheetList())

	matched, err := f.GetRows(sheetMatched)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "Captured Plate", matched[0][0])
	assert.Equal(t, "KA01AB1234", matched[1][0])
	assert.Equal(t, "3m0s", matched[1][4])

	manual, err := f.GetRows(sheetManual)
	require.NoError(t, err)
	require.Len(t, manual, 2)
	assert.Equal(t, "pending", manual[1][3])
	assert.Equal(t, "350", manual[1][5])

	summary, err := f.GetRows(sheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "2026-04-01"}, summary[2])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "comparison_7f1c2d3e_2026-04-01.xlsx", Filename(sampleComparison()))
}
