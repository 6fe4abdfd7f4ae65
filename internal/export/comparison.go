package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"vehicle-ticket-service/internal/service"
)

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetSummary   = "Summary"
	sheetMatched   = "Matched"
	sheetAuto      = "Unmatched Auto"
	sheetManual    = "Unmatched Manual"
	sheetWarnings  = "Warnings"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Filename is the download name of the comparison workbook.
func Filename(c *service.Comparison) string {
	return fmt.Sprintf("comparison_%s_%s.xlsx", c.LocationID.String()[:8], c.Date)
}

// ComparisonWorkbook renders the comparison view, one sheet per list.
func ComparisonWorkbook(c *service.Comparison) (*excelize.File, error) {
	f := excelize.NewFile()
	b := &builder{f: f}
	if err := b.styles(); err != nil {
		return nil, err
	}

	b.table(sheetSummary, []string{"Field", "Value"}, [][]interface{}{
		{"Location", c.LocationID.String()},
		{"Date", c.Date},
		{"Auto-captured entries", c.AutoEntries},
		{"Tickets", c.Tickets},
		{"Matched", len(c.Result.Matched)},
		{"Unmatched auto", len(c.Result.UnmatchedAuto)},
		{"Unmatched manual", len(c.Result.UnmatchedManual)},
		{"Near duplicates", len(c.NearDuplicates)},
		{"Generated", time.Now().Format(dateTimeLayout)},
	})

	matched := make([][]interface{}, 0, len(c.Result.Matched))
	for _, m := range c.Result.Matched {
		matched = append(matched, []interface{}{
			m.Auto.VehicleRef, m.Auto.EntryTime.Format(dateTimeLayout),
			m.Ticket.VehiclePlate, m.Ticket.EntryTime.Format(dateTimeLayout),
			m.Gap.Round(time.Second).String(), m.Exact, m.Ticket.ID.String(),
		})
	}
	b.table(sheetMatched, []string{"Captured Plate", "Captured At", "Ticket Plate", "Ticket Entry", "Gap", "Exact", "Ticket ID"}, matched)

	auto := make([][]interface{}, 0, len(c.Result.UnmatchedAuto))
	for _, e := range c.Result.UnmatchedAuto {
		exit := ""
		if e.ExitTime != nil {
			exit = e.ExitTime.Format(dateTimeLayout)
		}
		auto = append(auto, []interface{}{e.ID, e.VehicleRef, e.EntryTime.Format(dateTimeLayout), exit, e.EntryImageRef})
	}
	b.table(sheetAuto, []string{"Entry ID", "Plate", "Entry Time", "Exit Time", "Image"}, auto)

	manual := make([][]interface{}, 0, len(c.Result.UnmatchedManual))
	for _, t := range c.Result.UnmatchedManual {
		amount, _ := t.Amount.Float64()
		manual = append(manual, []interface{}{
			t.ID.String(), t.VehiclePlate, t.EntryTime.Format(dateTimeLayout),
			string(t.State()), string(t.PaymentMode), amount,
		})
	}
	b.table(sheetManual, []string{"Ticket ID", "Plate", "Entry Time", "State", "Payment Mode", "Amount"}, manual)

	warnings := make([][]interface{}, 0, len(c.Warnings))
	for _, w := range c.Warnings {
		warnings = append(warnings, []interface{}{string(w.Kind), w.Message})
	}
	b.table(sheetWarnings, []string{"Kind", "Message"}, warnings)

	if b.err != nil {
		return nil, b.err
	}
	if idx, err := f.GetSheetIndex(sheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteComparison streams the workbook to w.
func WriteComparison(w io.Writer, c *service.Comparison) error {
	f, err := ComparisonWorkbook(c)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

type builder struct {
	f      *excelize.File
	header int
	data   int
	err    error
}

func (b *builder) styles() error {
	var err error
	b.header, err = b.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}
	b.data, err = b.f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "CCCCCC", Style: 1},
			{Type: "right", Color: "CCCCCC", Style: 1},
			{Type: "top", Color: "CCCCCC", Style: 1},
			{Type: "bottom", Color: "CCCCCC", Style: 1},
		},
	})
	return err
}

// table writes headers on row 1 and rows below. The first error sticks.
func (b *builder) table(sheet string, headers []string, rows [][]interface{}) {
	if b.err != nil {
		return
	}
	if _, err := b.f.NewSheet(sheet); err != nil {
		b.err = err
		return
	}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			b.err = err
			return
		}
		b.set(sheet, cell, h, b.header)
		name, _ := excelize.ColumnNumberToName(col + 1)
		_ = b.f.SetColWidth(sheet, name, name, 22)
	}
	for r, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				b.err = err
				return
			}
			b.set(sheet, cell, v, b.data)
		}
	}
}

func (b *builder) set(sheet, cell string, v interface{}, style int) {
	if b.err != nil {
		return
	}
	if err := b.f.SetCellValue(sheet, cell, v); err != nil {
		b.err = err
		return
	}
	b.err = b.f.SetCellStyle(sheet, cell, cell, style)
}
