package service

import (
	"sync"
	"testing"

	"precast-erp/internal/model"
	"precast-erp/internal/repository"
	"precast-erp/internal/testutil"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type publishedEvent struct {
	name string
	data any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(event string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{name: event, data: data})
}

func (p *recordingPublisher) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.name == name {
			n++
		}
	}
	return n
}

// testEnv wires every repository and service onto a fresh database.
type testEnv struct {
	db        *gorm.DB
	events    *recordingPublisher
	ledger    *ledgerService
	numbering *numberingService
	reports   *reportService
	orders    *orderService
	billing   *billingService
	catalog   CatalogService
	clients   ClientService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	events := &recordingPublisher{}

	txManager := repository.NewTransactionManager(db)
	auditRepo := repository.NewAuditRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	stockRepo := repository.NewStockRepository(db)
	clientRepo := repository.NewClientRepository(db)

	ledger := NewLedgerService(stockRepo, repository.NewMovementRepository(db), catalogRepo, auditRepo, txManager, events, decimal.NewFromInt(10)).(*ledgerService)
	numbering := NewNumberingService(repository.NewCounterRepository(db), txManager).(*numberingService)
	reports := NewReportService(repository.NewReportRepository(db), catalogRepo, auditRepo, ledger, txManager, events).(*reportService)
	quoteRepo := repository.NewQuoteRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	orders := NewOrderService(
		repository.NewOrderRepository(db),
		quoteRepo,
		invoiceRepo,
		clientRepo,
		catalogRepo,
		auditRepo,
		ledger,
		numbering,
		txManager,
		events,
	).(*orderService)

	return &testEnv{
		db:        db,
		events:    events,
		ledger:    ledger,
		numbering: numbering,
		reports:   reports,
		orders:    orders,
		billing:   NewBillingService(invoiceRepo, quoteRepo).(*billingService),
		catalog:   NewCatalogService(catalogRepo, stockRepo, auditRepo, txManager),
		clients:   NewClientService(clientRepo, auditRepo, txManager),
	}
}

func (e *testEnv) actor(t *testing.T, username, role string) Actor {
	t.Helper()
	u := testutil.CreateUser(t, e.db, username, role)
	return Actor{ID: u.ID, Role: u.Role}
}

func (e *testEnv) movements(t *testing.T, query string, args ...any) []model.StockMovement {
	t.Helper()
	var ms []model.StockMovement
	q := e.db.Order("created_at")
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Find(&ms).Error; err != nil {
		t.Fatalf("failed to load movements: %v", err)
	}
	return ms
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
