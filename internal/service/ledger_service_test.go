package service

import (
	"context"
	"errors"
	"testing"

	"precast-erp/internal/apperror"
	"precast-erp/internal/model"
	"precast-erp/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestApplyMovementUpdatesCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	actor := env.actor(t, "chef", model.RoleProduction)
	p, stock := testutil.CreatePBAProduct(t, env.db, "PBA-01", 100, 5)

	res, err := env.ledger.ApplyMovement(ctx, MovementInput{
		ItemClass: model.ItemClassFinishedProduct,
		ItemID:    p.ID,
		Kind:      model.MovementProduction,
		Quantity:  dec("12"),
		RefKind:   model.RefManual,
		Actor:     actor,
	})
	if err != nil {
		t.Fatalf("ApplyMovement() error = %v", err)
	}
	assertDecimal(t, "StockAfter", res.Movement.StockAfter, dec("17"))
	assertDecimal(t, "AppliedQuantity", res.Movement.AppliedQuantity, dec("12"))

	got := testutil.StockOf(t, env.db, stock.ID)
	assertDecimal(t, "CurrentStock", got.CurrentStock, dec("17"))
	assertDecimal(t, "TotalProduced", got.TotalProduced, dec("12"))
	if got.LastUpdated.IsZero() {
		t.Error("LastUpdated not set")
	}
	if n := env.events.count(EventStockChanged); n != 1 {
		t.Errorf("stock events = %d, want 1", n)
	}
}

func TestApplyMovementRawMaterialFloor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m, stock := testutil.CreateMaterial(t, env.db, "CIM", 5)

	res, err := env.ledger.ApplyMovement(ctx, MovementInput{
		ItemClass: model.ItemClassRawMaterial,
		ItemID:    m.ID,
		Kind:      model.MovementUsage,
		Quantity:  dec("-8"),
		RefKind:   model.RefManual,
	})
	if err != nil {
		t.Fatalf("ApplyMovement() error = %v", err)
	}
	if !res.Movement.Clamped() {
		t.Error("movement should be marked as clamped")
	}
	assertDecimal(t, "Quantity", res.Movement.Quantity, dec("-8"))
	assertDecimal(t, "AppliedQuantity", res.Movement.AppliedQuantity, dec("-5"))

	got := testutil.StockOf(t, env.db, stock.ID)
	assertDecimal(t, "CurrentStock", got.CurrentStock, decimal.Zero)
	assertDecimal(t, "TotalUsed", got.TotalUsed, dec("5"))
}

func TestApplyMovementFinishedProductHasNoFloor(t *testing.T) {
	env := newTestEnv(t)
	p, stock := testutil.CreatePBAProduct(t, env.db, "PBA-02", 100, 1)

	_, err := env.ledger.ApplyMovement(context.Background(), MovementInput{
		ItemClass: model.ItemClassFinishedProduct,
		ItemID:    p.ID,
		Kind:      model.MovementDelivery,
		Quantity:  dec("-3"),
		RefKind:   model.RefManual,
	})
	if err != nil {
		t.Fatalf("ApplyMovement() error = %v", err)
	}
	got := testutil.StockOf(t, env.db, stock.ID)
	assertDecimal(t, "CurrentStock", got.CurrentStock, dec("-2"))
	assertDecimal(t, "TotalDelivered", got.TotalDelivered, dec("3"))
}

func TestApplyMovementRejectsMissingAndInactiveItems(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, _ := testutil.CreateArmature(t, env.db, "ARM-1", 0)
	testutil.Deactivate(t, env.db, &model.Armature{}, a.ID)

	tests := []struct {
		name string
		in   MovementInput
		want error
	}{
		{
			name: "missing",
			in:   MovementInput{ItemClass: model.ItemClassSubAssembly, ItemID: uuid.New(), Kind: model.MovementProduction, Quantity: dec("1")},
			want: apperror.ErrItemNotFound,
		},
		{
			name: "inactive",
			in:   MovementInput{ItemClass: model.ItemClassSubAssembly, ItemID: a.ID, Kind: model.MovementProduction, Quantity: dec("1")},
			want: apperror.ErrItemInactive,
		},
		{
			name: "zero quantity",
			in:   MovementInput{ItemClass: model.ItemClassSubAssembly, ItemID: a.ID, Kind: model.MovementProduction, Quantity: decimal.Zero},
			want: apperror.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.RefKind = model.RefManual
			if _, err := env.ledger.ApplyMovement(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("ApplyMovement() error = %v, want %v", err, tt.want)
			}
		})
	}

	if n := testutil.Count(t, env.db, &model.StockMovement{}, ""); n != 0 {
		t.Errorf("movements = %d, want 0", n)
	}

	in := MovementInput{ItemClass: model.ItemClassSubAssembly, ItemID: a.ID, Kind: model.MovementProduction, Quantity: dec("2"), RefKind: model.RefManual, AllowInactive: true}
	if _, err := env.ledger.ApplyMovement(ctx, in); err != nil {
		t.Errorf("ApplyMovement(AllowInactive) error = %v", err)
	}
}

func TestAdjustModes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.actor(t, "admin", model.RoleAdmin)
	m, stock := testutil.CreateMaterial(t, env.db, "FER", 10)

	steps := []struct {
		mode        string
		qty         string
		wantStock   string
		wantApplied string
	}{
		{AdjustAdd, "5", "15", "5"},
		{AdjustRemove, "20", "0", "-15"},
		{AdjustSet, "7.5", "7.5", "7.5"},
		{AdjustSet, "0", "0", "-7.5"},
	}
	for _, st := range steps {
		res, err := env.ledger.Adjust(ctx, admin, AdjustStockRequest{
			ItemClass: string(model.ItemClassRawMaterial),
			ItemID:    m.ID.String(),
			Mode:      st.mode,
			Quantity:  dec(st.qty),
		})
		if err != nil {
			t.Fatalf("Adjust(%s %s) error = %v", st.mode, st.qty, err)
		}
		assertDecimal(t, st.mode+" applied", res.Movement.AppliedQuantity, dec(st.wantApplied))
		assertDecimal(t, st.mode+" stock", testutil.StockOf(t, env.db, stock.ID).CurrentStock, dec(st.wantStock))
		if res.Movement.ReferenceKind != model.RefManual {
			t.Errorf("ReferenceKind = %s, want manual", res.Movement.ReferenceKind)
		}
	}

	if n := testutil.Count(t, env.db, &model.AuditLog{}, "action = ?", model.ActionStockAdjustment); n != int64(len(steps)) {
		t.Errorf("audit rows = %d, want %d", n, len(steps))
	}

	_, err := env.ledger.Adjust(ctx, admin, AdjustStockRequest{
		ItemClass: string(model.ItemClassRawMaterial),
		ItemID:    m.ID.String(),
		Mode:      AdjustAdd,
		Quantity:  decimal.Zero,
	})
	if !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("Adjust(add 0) error = %v, want ErrInvalidInput", err)
	}
}

func TestReconcileReplaysMovements(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	m, stock := testutil.CreateMaterial(t, env.db, "ETR", 4)

	for _, q := range []string{"10", "-20", "3"} {
		kind := model.MovementProduction
		if decimal.RequireFromString(q).IsNegative() {
			kind = model.MovementUsage
		}
		if _, err := env.ledger.ApplyMovement(ctx, MovementInput{
			ItemClass: model.ItemClassRawMaterial, ItemID: m.ID, Kind: kind, Quantity: dec(q), RefKind: model.RefManual,
		}); err != nil {
			t.Fatalf("ApplyMovement(%s) error = %v", q, err)
		}
	}

	rec, err := env.ledger.Reconcile(ctx, stock.ID)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if !rec.Consistent {
		t.Errorf("Reconcile() = %+v, want consistent", rec)
	}
	assertDecimal(t, "ReplayedStock", rec.ReplayedStock, dec("3"))
	assertDecimal(t, "ClampedDelta", rec.ClampedDelta, dec("-6"))
	if rec.Movements != 3 {
		t.Errorf("Movements = %d, want 3", rec.Movements)
	}

	// Tamper with the cached value behind the ledger's back.
	if err := env.db.Model(&model.StockItem{}).Where("id = ?", stock.ID).Update("current_stock", dec("99")).Error; err != nil {
		t.Fatalf("tamper: %v", err)
	}
	rec, err = env.ledger.Reconcile(ctx, stock.ID)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if rec.Consistent {
		t.Error("Reconcile() should report drift")
	}

	if _, err := env.ledger.Reconcile(ctx, uuid.New()); !errors.Is(err, apperror.ErrItemNotFound) {
		t.Errorf("Reconcile(unknown) error = %v, want ErrItemNotFound", err)
	}
}

func TestSummaryFlagsLowStock(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreatePBAProduct(t, env.db, "LOW", 100, 3)
	testutil.CreatePBAProduct(t, env.db, "HIGH", 100, 50)
	withdrawn, _ := testutil.CreatePBAProduct(t, env.db, "OLD", 100, 0)
	testutil.Deactivate(t, env.db, &model.PBAProduct{}, withdrawn.ID)
	testutil.CreateMaterial(t, env.db, "CIM", 2)

	summary, err := env.ledger.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if len(summary.LowStock) != 1 || summary.LowStock[0].ItemCode() != "LOW" {
		t.Errorf("LowStock = %+v, want only LOW", summary.LowStock)
	}
	if summary.Classes[0].ItemClass != model.ItemClassFinishedProduct || summary.Classes[0].Items != 3 {
		t.Errorf("finished products = %+v, want 3 items", summary.Classes[0])
	}
	assertDecimal(t, "finished total", summary.Classes[0].TotalStock, dec("53"))
}

func TestHistoryClampsDays(t *testing.T) {
	env := newTestEnv(t)
	_, stock := testutil.CreateMaterial(t, env.db, "CIM", 2)

	h, err := env.ledger.History(context.Background(), stock.ID, 5000)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if h.Days != maxHistoryDays {
		t.Errorf("Days = %d, want %d", h.Days, maxHistoryDays)
	}
	h, err = env.ledger.History(context.Background(), stock.ID, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if h.Days != defaultHistoryDays {
		t.Errorf("Days = %d, want %d", h.Days, defaultHistoryDays)
	}
}
