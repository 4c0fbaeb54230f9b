package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"precast-erp/internal/apperror"
	"precast-erp/internal/model"
	"precast-erp/internal/testutil"

	"github.com/google/uuid"
)

type orderFixture struct {
	env     *testEnv
	admin   Actor
	sales   Actor
	client  *model.Client
	product *model.PBAProduct
	stock   *model.StockItem
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	env := newTestEnv(t)
	p, s := testutil.CreatePBAProduct(t, env.db, "PBA-12", 100, 50)
	return &orderFixture{
		env:     env,
		admin:   env.actor(t, "admin", model.RoleAdmin),
		sales:   env.actor(t, "commercial", model.RoleManager),
		client:  testutil.CreateClient(t, env.db, "BTP Dakar"),
		product: p,
		stock:   s,
	}
}

// draft creates a 10 x 100 order.
func (f *orderFixture) draft(t *testing.T) *model.Order {
	t.Helper()
	o, err := f.env.orders.Create(context.Background(), f.sales, CreateOrderRequest{
		ClientID: f.client.ID.String(),
		Items:    []OrderItemRequest{{PBAProductID: f.product.ID.String(), Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return o
}

// invoiced walks a new order up to invoiced.
func (f *orderFixture) invoiced(t *testing.T) *model.Order {
	t.Helper()
	ctx := context.Background()
	o := f.draft(t)
	if _, err := f.env.orders.Confirm(ctx, f.sales, o.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if _, err := f.env.orders.CreateQuote(ctx, f.sales, o.ID, CreateQuoteRequest{ValidityDays: 30}); err != nil {
		t.Fatalf("CreateQuote() error = %v", err)
	}
	if _, err := f.env.orders.AcceptQuote(ctx, f.sales, o.ID); err != nil {
		t.Fatalf("AcceptQuote() error = %v", err)
	}
	if _, err := f.env.orders.CreateInvoice(ctx, f.sales, o.ID, CreateInvoiceRequest{DueDays: 30}); err != nil {
		t.Fatalf("CreateInvoice() error = %v", err)
	}
	return o
}

func (f *orderFixture) status(t *testing.T, id uuid.UUID) model.OrderStatus {
	t.Helper()
	o, err := f.env.orders.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	return o.Status
}

func TestCreateOrder(t *testing.T) {
	f := newOrderFixture(t)
	o := f.draft(t)

	if o.Status != model.OrderDraft {
		t.Errorf("Status = %s, want draft", o.Status)
	}
	assertDecimal(t, "TotalAmount", o.TotalAmount, dec("1000"))
	if !strings.HasPrefix(o.OrderNumber, "CMD-") || !strings.HasSuffix(o.OrderNumber, "-0001") {
		t.Errorf("OrderNumber = %s, want CMD-YYYYMM-0001", o.OrderNumber)
	}
}

func TestCreateOrderChecksClientAndProducts(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	inactiveClient := testutil.CreateClient(t, f.env.db, "Fermé")
	testutil.Deactivate(t, f.env.db, &model.Client{}, inactiveClient.ID)
	withdrawn, _ := testutil.CreatePBAProduct(t, f.env.db, "OLD", 50, 0)
	testutil.Deactivate(t, f.env.db, &model.PBAProduct{}, withdrawn.ID)

	tests := []struct {
		name     string
		clientID uuid.UUID
		product  uuid.UUID
		want     error
	}{
		{"unknown client", uuid.New(), f.product.ID, apperror.ErrClientNotFound},
		{"inactive client", inactiveClient.ID, f.product.ID, apperror.ErrClientInactive},
		{"unknown product", f.client.ID, uuid.New(), apperror.ErrProductNotFound},
		{"inactive product", f.client.ID, withdrawn.ID, apperror.ErrProductInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.env.orders.Create(ctx, f.sales, CreateOrderRequest{
				ClientID: tt.clientID.String(),
				Items:    []OrderItemRequest{{PBAProductID: tt.product.String(), Quantity: 1}},
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
	if n := testutil.Count(t, f.env.db, &model.Order{}, ""); n != 0 {
		t.Errorf("orders = %d, want 0", n)
	}
}

func TestQuoteOnDraftOrderFails(t *testing.T) {
	f := newOrderFixture(t)
	o := f.draft(t)

	_, err := f.env.orders.CreateQuote(context.Background(), f.sales, o.ID, CreateQuoteRequest{ValidityDays: 30})
	if !errors.Is(err, apperror.ErrNotConfirmed) {
		t.Fatalf("CreateQuote() error = %v, want ErrNotConfirmed", err)
	}
	if n := testutil.Count(t, f.env.db, &model.Quote{}, ""); n != 0 {
		t.Errorf("quotes = %d, want 0", n)
	}
	if got := f.status(t, o.ID); got != model.OrderDraft {
		t.Errorf("status = %s, want draft", got)
	}
}

func TestConfirmOnlyFromDraft(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.draft(t)
	if _, err := f.env.orders.Confirm(ctx, f.sales, o.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if _, err := f.env.orders.Confirm(ctx, f.sales, o.ID); !errors.Is(err, apperror.ErrNotDraft) {
		t.Errorf("second Confirm() error = %v, want ErrNotDraft", err)
	}
	if _, err := f.env.orders.Confirm(ctx, f.sales, uuid.New()); !errors.Is(err, apperror.ErrOrderNotFound) {
		t.Errorf("Confirm(unknown) error = %v, want ErrOrderNotFound", err)
	}
	if n := f.env.events.count(EventOrderStatusChanged); n != 1 {
		t.Errorf("status events = %d, want 1", n)
	}
}

func TestAcceptExpiredQuote(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.draft(t)
	if _, err := f.env.orders.Confirm(ctx, f.sales, o.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if _, err := f.env.orders.CreateQuote(ctx, f.sales, o.ID, CreateQuoteRequest{ValidityDays: 1}); err != nil {
		t.Fatalf("CreateQuote() error = %v", err)
	}

	f.env.orders.now = fixedClock(time.Now().AddDate(0, 0, 3))
	if _, err := f.env.orders.AcceptQuote(ctx, f.sales, o.ID); !errors.Is(err, apperror.ErrQuoteExpired) {
		t.Fatalf("AcceptQuote() error = %v, want ErrQuoteExpired", err)
	}
	if got := f.status(t, o.ID); got != model.OrderQuoted {
		t.Errorf("status = %s, want quoted", got)
	}

	q, err := f.env.orders.RejectQuote(ctx, f.sales, o.ID)
	if err != nil {
		t.Fatalf("RejectQuote() error = %v", err)
	}
	if q.Status != model.QuoteExpired {
		t.Errorf("quote status = %s, want expired", q.Status)
	}
	if got := f.status(t, o.ID); got != model.OrderConfirmed {
		t.Errorf("status = %s, want confirmed", got)
	}
	if _, err := f.env.orders.AcceptQuote(ctx, f.sales, o.ID); !errors.Is(err, apperror.ErrNoQuotePending) {
		t.Errorf("AcceptQuote() without quote error = %v, want ErrNoQuotePending", err)
	}
}

func TestInvoiceRequiresAcceptedQuote(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.draft(t)
	if _, err := f.env.orders.CreateInvoice(ctx, f.sales, o.ID, CreateInvoiceRequest{DueDays: 30}); !errors.Is(err, apperror.ErrQuoteNotAccepted) {
		t.Errorf("CreateInvoice() on draft error = %v, want ErrQuoteNotAccepted", err)
	}

	o = f.invoiced(t)
	if _, err := f.env.orders.CreateInvoice(ctx, f.sales, o.ID, CreateInvoiceRequest{DueDays: 30}); !errors.Is(err, apperror.ErrInvoiceExists) {
		t.Errorf("second CreateInvoice() error = %v, want ErrInvoiceExists", err)
	}
	if n := testutil.Count(t, f.env.db, &model.Invoice{}, "order_id = ?", o.ID); n != 1 {
		t.Errorf("invoices = %d, want 1", n)
	}
}

func TestPaymentCeilingAndDeliveryCascade(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.invoiced(t)

	if _, err := f.env.orders.RecordPayment(ctx, f.sales, o.ID, RecordPaymentRequest{Amount: dec("0"), Method: model.PaymentCash}); !errors.Is(err, apperror.ErrInvalidAmount) {
		t.Errorf("RecordPayment(0) error = %v, want ErrInvalidAmount", err)
	}

	res, err := f.env.orders.RecordPayment(ctx, f.sales, o.ID, RecordPaymentRequest{Amount: dec("800"), Method: model.PaymentTransfer})
	if err != nil {
		t.Fatalf("RecordPayment(800) error = %v", err)
	}
	if res.Delivered || res.Invoice.Status != model.InvoiceSent {
		t.Errorf("after 800: delivered=%v invoice=%s, want not delivered, sent", res.Delivered, res.Invoice.Status)
	}
	if got := f.status(t, o.ID); got != model.OrderInvoiced {
		t.Errorf("status after 800 = %s, want invoiced", got)
	}

	_, err = f.env.orders.RecordPayment(ctx, f.sales, o.ID, RecordPaymentRequest{Amount: dec("300"), Method: model.PaymentCash})
	if !errors.Is(err, apperror.ErrAmountExceedsRemaining) {
		t.Fatalf("RecordPayment(300) error = %v, want ErrAmountExceedsRemaining", err)
	}
	if n := testutil.Count(t, f.env.db, &model.Payment{}, ""); n != 1 {
		t.Errorf("payments = %d, want 1", n)
	}

	// Withdrawing the product must not block the delivery of goods already sold.
	testutil.Deactivate(t, f.env.db, &model.PBAProduct{}, f.product.ID)

	res, err = f.env.orders.RecordPayment(ctx, f.sales, o.ID, RecordPaymentRequest{Amount: dec("200"), Method: model.PaymentCash})
	if err != nil {
		t.Fatalf("RecordPayment(200) error = %v", err)
	}
	if !res.Delivered || res.Invoice.Status != model.InvoicePaid {
		t.Errorf("after 200: delivered=%v invoice=%s, want delivered, paid", res.Delivered, res.Invoice.Status)
	}
	assertDecimal(t, "PaidAmount", res.Invoice.PaidAmount, dec("1000"))
	if got := f.status(t, o.ID); got != model.OrderDelivered {
		t.Errorf("status = %s, want delivered", got)
	}

	stock := testutil.StockOf(t, f.env.db, f.stock.ID)
	assertDecimal(t, "CurrentStock", stock.CurrentStock, dec("40"))
	assertDecimal(t, "TotalDelivered", stock.TotalDelivered, dec("10"))
	ms := f.env.movements(t, "reference_kind = ? AND reference_id = ?", model.RefOrder, o.ID)
	if len(ms) != 1 || ms[0].Kind != model.MovementDelivery {
		t.Errorf("delivery movements = %+v, want one delivery", ms)
	}

	_, err = f.env.orders.RecordPayment(ctx, f.sales, o.ID, RecordPaymentRequest{Amount: dec("1"), Method: model.PaymentCash})
	if !errors.Is(err, apperror.ErrAmountExceedsRemaining) {
		t.Errorf("RecordPayment() on settled invoice error = %v, want ErrAmountExceedsRemaining", err)
	}
}

func TestSettlingPaymentDeliversEveryLine(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	beam, beamStock := testutil.CreatePBAProduct(t, f.env.db, "POUTRE-6", 250, 20)
	slab, slabStock := testutil.CreatePBAProduct(t, f.env.db, "DALLE-4", 80, 10)

	o, err := f.env.orders.Create(ctx, f.sales, CreateOrderRequest{
		ClientID: f.client.ID.String(),
		Items: []OrderItemRequest{
			{PBAProductID: f.product.ID.String(), Quantity: 3},
			{PBAProductID: beam.ID.String(), Quantity: 4},
			{PBAProductID: slab.ID.String(), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	assertDecimal(t, "TotalAmount", o.TotalAmount, dec("1460"))
	if _, err := f.env.orders.Confirm(ctx, f.sales, o.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if _, err := f.env.orders.CreateQuote(ctx, f.sales, o.ID, CreateQuoteRequest{ValidityDays: 30}); err != nil {
		t.Fatalf("CreateQuote() error = %v", err)
	}
	if _, err := f.env.orders.AcceptQuote(ctx, f.sales, o.ID); err != nil {
		t.Fatalf("AcceptQuote() error = %v", err)
	}
	if _, err := f.env.orders.CreateInvoice(ctx, f.sales, o.ID, CreateInvoiceRequest{DueDays: 30}); err != nil {
		t.Fatalf("CreateInvoice() error = %v", err)
	}

	res, err := f.env.orders.RecordPayment(ctx, f.sales, o.ID, RecordPaymentRequest{Amount: dec("1460.00"), Method: model.PaymentTransfer})
	if err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if !res.Delivered {
		t.Fatal("settling payment did not deliver the order")
	}

	ms := f.env.movements(t, "reference_kind = ? AND reference_id = ?", model.RefOrder, o.ID)
	if len(ms) != 3 {
		t.Fatalf("delivery movements = %d, want 3", len(ms))
	}
	want := map[string]string{
		f.stock.ID.String():   "-3",
		beamStock.ID.String(): "-4",
		slabStock.ID.String(): "-2",
	}
	for _, m := range ms {
		if m.Kind != model.MovementDelivery {
			t.Errorf("movement kind = %s, want delivery", m.Kind)
		}
		w, ok := want[m.StockItemID.String()]
		if !ok {
			t.Errorf("unexpected movement on %s", m.StockItemID)
			continue
		}
		assertDecimal(t, "Quantity", m.Quantity, dec(w))
		delete(want, m.StockItemID.String())
	}
	assertDecimal(t, "PBA-12 stock", testutil.StockOf(t, f.env.db, f.stock.ID).CurrentStock, dec("47"))
	assertDecimal(t, "POUTRE-6 stock", testutil.StockOf(t, f.env.db, beamStock.ID).CurrentStock, dec("16"))
	assertDecimal(t, "DALLE-4 stock", testutil.StockOf(t, f.env.db, slabStock.ID).CurrentStock, dec("8"))
}

func TestPaymentFinerThanACent(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.invoiced(t)

	for _, amount := range []string{"999.996", "0.001", "10.005"} {
		_, err := f.env.orders.RecordPayment(ctx, f.sales, o.ID, RecordPaymentRequest{Amount: dec(amount), Method: model.PaymentCash})
		if !errors.Is(err, apperror.ErrInvalidAmount) {
			t.Errorf("RecordPayment(%s) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if n := testutil.Count(t, f.env.db, &model.Payment{}, ""); n != 0 {
		t.Errorf("payments = %d, want 0", n)
	}

	// trailing zeros are still whole cents
	res, err := f.env.orders.RecordPayment(ctx, f.sales, o.ID, RecordPaymentRequest{Amount: dec("1000.000"), Method: model.PaymentCash})
	if err != nil {
		t.Fatalf("RecordPayment(1000.000) error = %v", err)
	}
	if !res.Delivered || res.Invoice.Status != model.InvoicePaid {
		t.Errorf("delivered=%v invoice=%s, want delivered, paid", res.Delivered, res.Invoice.Status)
	}
}

func TestPaymentWithoutInvoice(t *testing.T) {
	f := newOrderFixture(t)
	o := f.draft(t)
	_, err := f.env.orders.RecordPayment(context.Background(), f.sales, o.ID, RecordPaymentRequest{Amount: dec("10"), Method: model.PaymentCash})
	if !errors.Is(err, apperror.ErrNoInvoice) {
		t.Errorf("RecordPayment() error = %v, want ErrNoInvoice", err)
	}
}

func TestCancelOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	o := f.draft(t)
	if _, err := f.env.orders.Confirm(ctx, f.sales, o.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if _, err := f.env.orders.CreateQuote(ctx, f.sales, o.ID, CreateQuoteRequest{ValidityDays: 10}); err != nil {
		t.Fatalf("CreateQuote() error = %v", err)
	}

	if _, err := f.env.orders.Cancel(ctx, f.sales, o.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Cancel() by manager error = %v, want ErrForbidden", err)
	}
	if _, err := f.env.orders.Cancel(ctx, f.admin, o.ID); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if got := f.status(t, o.ID); got != model.OrderCancelled {
		t.Errorf("status = %s, want cancelled", got)
	}
	if n := testutil.Count(t, f.env.db, &model.Quote{}, "order_id = ? AND status = ?", o.ID, model.QuoteRejected); n != 1 {
		t.Errorf("rejected quotes = %d, want 1", n)
	}
	if _, err := f.env.orders.Cancel(ctx, f.admin, o.ID); !errors.Is(err, apperror.ErrNotCancellable) {
		t.Errorf("second Cancel() error = %v, want ErrNotCancellable", err)
	}

	paid := f.invoiced(t)
	if _, err := f.env.orders.RecordPayment(ctx, f.sales, paid.ID, RecordPaymentRequest{Amount: dec("100"), Method: model.PaymentCheck}); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}
	if _, err := f.env.orders.Cancel(ctx, f.admin, paid.ID); !errors.Is(err, apperror.ErrInvoiceHasPayments) {
		t.Errorf("Cancel() with payments error = %v, want ErrInvoiceHasPayments", err)
	}

	unpaid := f.invoiced(t)
	if _, err := f.env.orders.Cancel(ctx, f.admin, unpaid.ID); err != nil {
		t.Fatalf("Cancel() invoiced error = %v", err)
	}
	if n := testutil.Count(t, f.env.db, &model.Invoice{}, "order_id = ? AND status = ?", unpaid.ID, model.InvoiceCancelled); n != 1 {
		t.Errorf("cancelled invoices = %d, want 1", n)
	}
	_, err := f.env.orders.RecordPayment(ctx, f.sales, unpaid.ID, RecordPaymentRequest{Amount: dec("10"), Method: model.PaymentCash})
	if !errors.Is(err, apperror.ErrInvoiceCancelled) {
		t.Errorf("RecordPayment() on cancelled invoice error = %v, want ErrInvoiceCancelled", err)
	}
}

func TestDeleteDraftOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	o := f.draft(t)
	if err := f.env.orders.DeleteDraft(ctx, f.sales, o.ID); err != nil {
		t.Fatalf("DeleteDraft() error = %v", err)
	}
	if _, err := f.env.orders.Get(ctx, o.ID); !errors.Is(err, apperror.ErrOrderNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrOrderNotFound", err)
	}
	if n := testutil.Count(t, f.env.db, &model.OrderItem{}, "order_id = ?", o.ID); n != 0 {
		t.Errorf("order items = %d, want 0", n)
	}

	o = f.draft(t)
	if _, err := f.env.orders.Confirm(ctx, f.sales, o.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if err := f.env.orders.DeleteDraft(ctx, f.sales, o.ID); !errors.Is(err, apperror.ErrNotDraft) {
		t.Errorf("DeleteDraft() on confirmed error = %v, want ErrNotDraft", err)
	}
}
