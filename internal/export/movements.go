// Package export renders ledger data as spreadsheets.
package export

import (
	"bytes"
	"fmt"

	"precast-erp/internal/model"

	"github.com/xuri/excelize/v2"
)

const MovementSheet = "Movements"

var movementHeadings = []string{
	"Date", "Class", "Code", "Item", "Kind", "Requested", "Applied", "Stock after", "Reference", "Reference ID", "Actor", "Notes",
}

// Movements writes one row per movement, newest first as given, and
// returns the xlsx document.
func Movements(movements []model.StockMovement) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(MovementSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := make([]any, len(movementHeadings))
	for i, h := range movementHeadings {
		header[i] = h
	}
	if err := f.SetSheetRow(MovementSheet, "A1", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastCol, err := excelize.ColumnNumberToName(len(movementHeadings))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(MovementSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, err
	}

	for i, m := range movements {
		if err := f.SetSheetRow(MovementSheet, fmt.Sprintf("A%d", i+2), movementRow(m)); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}

func movementRow(m model.StockMovement) *[]any {
	var class, code, name, refID, actor string
	if m.StockItem != nil {
		class = string(m.StockItem.ItemClass)
		code = m.StockItem.ItemCode()
		name = m.StockItem.ItemName()
	}
	if m.ReferenceID != nil {
		refID = m.ReferenceID.String()
	}
	if m.Actor != nil {
		actor = m.Actor.Username
	}
	row := []any{
		m.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		class,
		code,
		name,
		string(m.Kind),
		m.Quantity.InexactFloat64(),
		m.AppliedQuantity.InexactFloat64(),
		m.StockAfter.InexactFloat64(),
		string(m.ReferenceKind),
		refID,
		actor,
		m.Notes,
	}
	return &row
}
