package export

import (
	"testing"
	"time"

	"precast-erp/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestMovementsWorkbook(t *testing.T) {
	ref := uuid.New()
	movements := []model.StockMovement{
		{
			StockItem: &model.StockItem{
				ItemClass: model.ItemClassRawMaterial,
				Material:  &model.Material{Code: "CIM-01", Name: "Ciment"},
			},
			Kind:            model.MovementUsage,
			Quantity:        decimal.NewFromInt(-15),
			AppliedQuantity: decimal.NewFromInt(-10),
			StockAfter:      decimal.Zero,
			ReferenceKind:   model.RefReport,
			ReferenceID:     &ref,
			Actor:           &model.User{Username: "awa"},
			CreatedAt:       time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC),
		},
	}

	buf, err := Movements(movements)
	if err != nil {
		t.Fatalf("Movements() error = %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(MovementSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][len(movementHeadings)-1] != "Notes" {
		t.Errorf("unexpected header %v", rows[0])
	}
	want := map[int]string{0: "2026-10-01 08:30:00", 1: "raw_material", 2: "CIM-01", 4: "usage", 5: "-15", 6: "-10", 8: "report", 9: ref.String(), 10: "awa"}
	for col, v := range want {
		if rows[1][col] != v {
			t.Errorf("column %d = %q, want %q", col, rows[1][col], v)
		}
	}
}
