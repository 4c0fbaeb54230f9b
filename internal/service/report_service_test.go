package service

import (
	"context"
	"errors"
	"testing"

	"precast-erp/internal/apperror"
	"precast-erp/internal/model"
	"precast-erp/internal/testutil"

	"github.com/shopspring/decimal"
)

type reportFixture struct {
	env      *testEnv
	owner    Actor
	product  *model.PBAProduct
	material *model.Material
	armature *model.Armature
	stocks   map[model.ItemClass]*model.StockItem
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	env := newTestEnv(t)
	p, ps := testutil.CreatePBAProduct(t, env.db, "PBA-9", 15000, 20)
	m, ms := testutil.CreateMaterial(t, env.db, "CIM-50", 100)
	a, as := testutil.CreateArmature(t, env.db, "ARM-9", 0)
	return &reportFixture{
		env:      env,
		owner:    env.actor(t, "ouvrier", model.RoleProduction),
		product:  p,
		material: m,
		armature: a,
		stocks: map[model.ItemClass]*model.StockItem{
			model.ItemClassFinishedProduct: ps,
			model.ItemClassRawMaterial:     ms,
			model.ItemClassSubAssembly:     as,
		},
	}
}

func (f *reportFixture) request(date string) CreateReportRequest {
	return CreateReportRequest{
		ReportDate: date,
		FirstName:  "Moussa",
		LastName:   "Diop",
		ReportLinesRequest: ReportLinesRequest{
			Productions: []ProductionLineRequest{
				{PBAProductID: f.product.ID.String(), Quantity: 10},
			},
			MaterialUsages: []MaterialUsageLineRequest{
				{MaterialID: f.material.ID.String(), Quantity: dec("2.5"), Unit: model.UnitSac},
				{MaterialID: f.material.ID.String(), Quantity: decimal.Zero, Unit: model.UnitSac},
			},
			ArmatureProductions: []ArmatureLineRequest{
				{ArmatureID: f.armature.ID.String(), Quantity: 4},
			},
			Personnel: []PersonnelLineRequest{
				{Position: model.PositionSoudeur, Headcount: 2},
			},
		},
	}
}

func (f *reportFixture) stock(t *testing.T, class model.ItemClass) decimal.Decimal {
	t.Helper()
	return testutil.StockOf(t, f.env.db, f.stocks[class].ID).CurrentStock
}

func TestCreateReportOnePerUserPerDay(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	r, err := f.env.reports.Create(ctx, f.owner, f.request("2026-10-12"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if r.Status != model.ReportDraft {
		t.Errorf("Status = %s, want draft", r.Status)
	}
	if len(r.MaterialUsages) != 1 {
		t.Errorf("material lines = %d, want 1 (zero quantity dropped)", len(r.MaterialUsages))
	}

	if _, err := f.env.reports.Create(ctx, f.owner, f.request("2026-10-12")); !errors.Is(err, apperror.ErrReportExists) {
		t.Errorf("second Create() error = %v, want ErrReportExists", err)
	}

	other := f.env.actor(t, "autre", model.RoleProduction)
	if _, err := f.env.reports.Create(ctx, other, f.request("2026-10-12")); err != nil {
		t.Errorf("Create() by another user error = %v", err)
	}
	if _, err := f.env.reports.Create(ctx, f.owner, f.request("2026-10-13")); err != nil {
		t.Errorf("Create() next day error = %v", err)
	}
}

func TestCreateReportRejectsInactiveItem(t *testing.T) {
	f := newReportFixture(t)
	testutil.Deactivate(t, f.env.db, &model.Material{}, f.material.ID)

	_, err := f.env.reports.Create(context.Background(), f.owner, f.request("2026-10-12"))
	if !errors.Is(err, apperror.ErrReferencedItemInactive) {
		t.Errorf("Create() error = %v, want ErrReferencedItemInactive", err)
	}
	if n := testutil.Count(t, f.env.db, &model.DailyReport{}, ""); n != 0 {
		t.Errorf("reports = %d, want 0", n)
	}
}

func TestSubmitAppliesEveryLine(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	r, err := f.env.reports.Create(ctx, f.owner, f.request("2026-10-12"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	res, err := f.env.reports.Submit(ctx, f.owner, r.ID)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Status != model.ReportSubmitted || len(res.Movements) != 3 {
		t.Errorf("Submit() = %+v, want submitted with 3 movements", res)
	}

	assertDecimal(t, "product stock", f.stock(t, model.ItemClassFinishedProduct), dec("30"))
	assertDecimal(t, "material stock", f.stock(t, model.ItemClassRawMaterial), dec("97.5"))
	assertDecimal(t, "armature stock", f.stock(t, model.ItemClassSubAssembly), dec("4"))

	ms := f.env.movements(t, "reference_kind = ? AND reference_id = ?", model.RefReport, r.ID)
	if len(ms) != 3 {
		t.Fatalf("movements referencing report = %d, want 3", len(ms))
	}

	got, err := f.env.reports.Get(ctx, f.owner, r.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != model.ReportSubmitted || got.SubmittedAt == nil {
		t.Errorf("report = %s submitted_at=%v, want submitted with timestamp", got.Status, got.SubmittedAt)
	}
	if n := f.env.events.count(EventReportSubmitted); n != 1 {
		t.Errorf("report events = %d, want 1", n)
	}
	if n := f.env.events.count(EventStockChanged); n != 0 {
		t.Errorf("stock events during submit = %d, want 0", n)
	}
}

func TestSubmitTwiceIsRejected(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	r, err := f.env.reports.Create(ctx, f.owner, f.request("2026-10-12"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.env.reports.Submit(ctx, f.owner, r.ID); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if _, err := f.env.reports.Submit(ctx, f.owner, r.ID); !errors.Is(err, apperror.ErrAlreadySubmitted) {
		t.Errorf("second Submit() error = %v, want ErrAlreadySubmitted", err)
	}
	assertDecimal(t, "product stock", f.stock(t, model.ItemClassFinishedProduct), dec("30"))
	if n := testutil.Count(t, f.env.db, &model.StockMovement{}, ""); n != 3 {
		t.Errorf("movements = %d, want 3", n)
	}

	_, err = f.env.reports.UpdateDraft(ctx, f.owner, r.ID, UpdateReportRequest{FirstName: "A", LastName: "B"})
	if !errors.Is(err, apperror.ErrAlreadySubmitted) {
		t.Errorf("UpdateDraft() error = %v, want ErrAlreadySubmitted", err)
	}
	if err := f.env.reports.DeleteDraft(ctx, f.owner, r.ID); !errors.Is(err, apperror.ErrAlreadySubmitted) {
		t.Errorf("DeleteDraft() error = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSubmitRollsBackOnInactiveItem(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	r, err := f.env.reports.Create(ctx, f.owner, f.request("2026-10-12"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// The armature line is applied last, after the product and material moved.
	testutil.Deactivate(t, f.env.db, &model.Armature{}, f.armature.ID)

	_, err = f.env.reports.Submit(ctx, f.owner, r.ID)
	if !errors.Is(err, apperror.ErrReferencedItemInactive) {
		t.Fatalf("Submit() error = %v, want ErrReferencedItemInactive", err)
	}
	if apperror.KindOf(err) != apperror.KindReferentialIntegrity {
		t.Errorf("KindOf() = %s, want referential_integrity", apperror.KindOf(err))
	}

	assertDecimal(t, "product stock", f.stock(t, model.ItemClassFinishedProduct), dec("20"))
	assertDecimal(t, "material stock", f.stock(t, model.ItemClassRawMaterial), dec("100"))
	if n := testutil.Count(t, f.env.db, &model.StockMovement{}, ""); n != 0 {
		t.Errorf("movements = %d, want 0", n)
	}
	got, err := f.env.reports.Get(ctx, f.owner, r.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != model.ReportDraft {
		t.Errorf("Status = %s, want draft", got.Status)
	}
}

func TestReportVisibility(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	r, err := f.env.reports.Create(ctx, f.owner, f.request("2026-10-12"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	stranger := f.env.actor(t, "voisin", model.RoleUser)
	manager := f.env.actor(t, "gerant", model.RoleManager)

	if _, err := f.env.reports.Get(ctx, stranger, r.ID); !errors.Is(err, apperror.ErrReportNotFound) {
		t.Errorf("Get() by stranger error = %v, want ErrReportNotFound", err)
	}
	if _, err := f.env.reports.Submit(ctx, stranger, r.ID); !errors.Is(err, apperror.ErrReportNotFound) {
		t.Errorf("Submit() by stranger error = %v, want ErrReportNotFound", err)
	}
	if _, err := f.env.reports.Get(ctx, manager, r.ID); err != nil {
		t.Errorf("Get() by manager error = %v", err)
	}

	list, total, err := f.env.reports.List(ctx, stranger, ReportFilter{UserID: &f.owner.ID}, 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 0 || len(list) != 0 {
		t.Errorf("List() by stranger = %d reports, want 0", total)
	}
	_, total, err = f.env.reports.List(ctx, manager, ReportFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 {
		t.Errorf("List() by manager total = %d, want 1", total)
	}
}

func TestUpdateAndDeleteDraft(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()
	r, err := f.env.reports.Create(ctx, f.owner, f.request("2026-10-12"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := f.env.reports.UpdateDraft(ctx, f.owner, r.ID, UpdateReportRequest{
		FirstName:    "Moussa",
		LastName:     "Diop",
		Observations: "pluie",
		ReportLinesRequest: ReportLinesRequest{
			Productions: []ProductionLineRequest{{PBAProductID: f.product.ID.String(), Quantity: 3}},
		},
	})
	if err != nil {
		t.Fatalf("UpdateDraft() error = %v", err)
	}
	if updated.Observations != "pluie" || len(updated.Productions) != 1 || len(updated.MaterialUsages) != 0 {
		t.Errorf("UpdateDraft() = %+v, want replaced lines", updated)
	}
	if n := testutil.Count(t, f.env.db, &model.ReportMaterialUsage{}, "report_id = ?", r.ID); n != 0 {
		t.Errorf("material lines = %d, want 0", n)
	}

	if err := f.env.reports.DeleteDraft(ctx, f.owner, r.ID); err != nil {
		t.Fatalf("DeleteDraft() error = %v", err)
	}
	if _, err := f.env.reports.Get(ctx, f.owner, r.ID); !errors.Is(err, apperror.ErrReportNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrReportNotFound", err)
	}
}
