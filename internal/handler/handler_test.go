package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"precast-erp/internal/apperror"
	"precast-erp/internal/middleware"
	"precast-erp/internal/model"
	"precast-erp/internal/repository"
	"precast-erp/internal/service"
	"precast-erp/internal/testutil"
	"precast-erp/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const testSecret = "handler-test-secret"

type apiEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidators()

	db := testutil.NewTestDB(t)
	txManager := repository.NewTransactionManager(db)
	auditRepo := repository.NewAuditRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	events := service.NoopPublisher()

	ledger := service.NewLedgerService(repository.NewStockRepository(db), repository.NewMovementRepository(db), catalogRepo, auditRepo, txManager, events, decimal.NewFromInt(10))
	numbering := service.NewNumberingService(repository.NewCounterRepository(db), txManager)
	reports := service.NewReportService(repository.NewReportRepository(db), catalogRepo, auditRepo, ledger, txManager, events)
	quoteRepo := repository.NewQuoteRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	orders := service.NewOrderService(
		repository.NewOrderRepository(db),
		quoteRepo,
		invoiceRepo,
		repository.NewClientRepository(db),
		catalogRepo,
		auditRepo,
		ledger,
		numbering,
		txManager,
		events,
	)

	auth := middleware.NewAuth(testSecret, false)
	router := gin.New()
	api := router.Group("")
	NewReportHandler(reports, auth).RegisterRoutes(api)
	NewOrderHandler(orders, auth).RegisterRoutes(api)
	NewStockHandler(ledger, auth).RegisterRoutes(api)
	NewInvoiceHandler(service.NewBillingService(invoiceRepo, quoteRepo), auth).RegisterRoutes(api)
	return &apiEnv{db: db, router: router}
}

func (e *apiEnv) token(t *testing.T, user *model.User) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func (e *apiEnv) do(t *testing.T, token, method, path string, body any) (int, response.Response) {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		if payload, err = json.Marshal(b); err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var res response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response %q is not an envelope: %v", w.Body.String(), err)
	}
	return w.Code, res
}

func dataID(t *testing.T, res response.Response) string {
	t.Helper()
	m, ok := res.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %#v, want an object", res.Data)
	}
	id, _ := m["id"].(string)
	if id == "" {
		t.Fatalf("data has no id: %#v", m)
	}
	return id
}

func TestReportSubmitOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	operator := testutil.CreateUser(t, env.db, "op", model.RoleProduction)
	product, stock := testutil.CreatePBAProduct(t, env.db, "P-01", 100, 5)
	token := env.token(t, operator)

	code, _ := env.do(t, token, http.MethodPost, "/api/reports", `{"report_date":`)
	if code != http.StatusBadRequest {
		t.Fatalf("malformed payload status = %d, want 400", code)
	}

	code, res := env.do(t, token, http.MethodPost, "/api/reports", map[string]any{
		"report_date": "2026-03-02",
		"first_name":  "Awa",
		"last_name":   "Diop",
		"productions": []map[string]any{{"pba_product_id": product.ID.String(), "quantity": 7}},
	})
	if code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (%s)", code, res.Error)
	}
	reportID := dataID(t, res)

	code, res = env.do(t, token, http.MethodPut, "/api/reports/"+reportID+"/submit", nil)
	if code != http.StatusOK {
		t.Fatalf("submit status = %d, want 200 (%s)", code, res.Error)
	}
	if got := testutil.StockOf(t, env.db, stock.ID).CurrentStock; !got.Equal(decimal.NewFromInt(12)) {
		t.Errorf("stock after submit = %s, want 12", got)
	}

	code, res = env.do(t, token, http.MethodPut, "/api/reports/"+reportID+"/submit", nil)
	if code != http.StatusConflict || res.Code != apperror.ErrAlreadySubmitted.Code {
		t.Errorf("second submit = %d %q, want 409 %s", code, res.Code, apperror.ErrAlreadySubmitted.Code)
	}
}

func TestOrderErrorsOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	manager := testutil.CreateUser(t, env.db, "boss", model.RoleManager)
	operator := testutil.CreateUser(t, env.db, "op", model.RoleProduction)
	client := testutil.CreateClient(t, env.db, "Chantier Nord")
	product, _ := testutil.CreatePBAProduct(t, env.db, "P-01", 100, 5)
	token := env.token(t, manager)

	code, res := env.do(t, token, http.MethodPost, "/api/orders", map[string]any{
		"client_id": client.ID.String(),
		"items":     []map[string]any{{"pba_product_id": product.ID.String(), "quantity": 2}},
	})
	if code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (%s)", code, res.Error)
	}
	orderID := dataID(t, res)

	tests := []struct {
		name     string
		token    string
		method   string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"unknown order", token, http.MethodGet, "/api/orders/6f1c2f36-8d43-4a4f-9a43-2d8b0f0a3c11", nil, http.StatusNotFound, apperror.ErrOrderNotFound.Code},
		{"bad id", token, http.MethodGet, "/api/orders/not-a-uuid", nil, http.StatusBadRequest, ""},
		{"quote on draft", token, http.MethodPost, "/api/orders/" + orderID + "/quote", map[string]any{"validity_days": 30}, http.StatusConflict, apperror.ErrNotConfirmed.Code},
		{"invoice without quote", token, http.MethodPost, "/api/orders/" + orderID + "/invoice", map[string]any{"due_days": 30}, http.StatusConflict, apperror.ErrQuoteNotAccepted.Code},
		{"negative payment", token, http.MethodPost, "/api/orders/" + orderID + "/payment", map[string]any{"amount": "-5", "method": "cash"}, http.StatusBadRequest, apperror.ErrInvalidAmount.Code},
		{"sub-cent payment", token, http.MethodPost, "/api/orders/" + orderID + "/payment", map[string]any{"amount": "0.005", "method": "cash"}, http.StatusBadRequest, apperror.ErrInvalidAmount.Code},
		{"payment method", token, http.MethodPost, "/api/orders/" + orderID + "/payment", map[string]any{"amount": "5", "method": "barter"}, http.StatusBadRequest, ""},
		{"manager cannot cancel", token, http.MethodPut, "/api/orders/" + orderID + "/cancel", nil, http.StatusForbidden, apperror.ErrForbidden.Code},
		{"production has no orders", env.token(t, operator), http.MethodGet, "/api/orders", nil, http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, res := env.do(t, tt.token, tt.method, tt.path, tt.body)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", code, tt.wantCode, res.Error)
			}
			if res.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", res.Code, tt.wantErr)
			}
		})
	}
}

func TestBillingListsOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	manager := testutil.CreateUser(t, env.db, "boss", model.RoleManager)
	operator := testutil.CreateUser(t, env.db, "op", model.RoleProduction)
	token := env.token(t, manager)

	tests := []struct {
		name     string
		token    string
		path     string
		wantCode int
		wantErr  string
		listKey  string
	}{
		{"invoices", token, "/api/invoices?status=overdue&page=1&limit=5", http.StatusOK, "", "invoices"},
		{"quotes", token, "/api/quotes?status=pending", http.StatusOK, "", "quotes"},
		{"unknown invoice status", token, "/api/invoices?status=lost", http.StatusBadRequest, apperror.ErrInvalidInput.Code, ""},
		{"bad order id", token, "/api/quotes?order_id=nope", http.StatusBadRequest, apperror.ErrInvalidInput.Code, ""},
		{"bad date", token, "/api/invoices?from=03/02/2026", http.StatusBadRequest, apperror.ErrInvalidInput.Code, ""},
		{"production has no billing", env.token(t, operator), "/api/invoices", http.StatusForbidden, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, res := env.do(t, tt.token, http.MethodGet, tt.path, nil)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", code, tt.wantCode, res.Error)
			}
			if res.Code != tt.wantErr {
				t.Errorf("code = %q, want %q", res.Code, tt.wantErr)
			}
			if tt.listKey == "" {
				return
			}
			m, ok := res.Data.(map[string]interface{})
			if !ok {
				t.Fatalf("data = %#v, want an object", res.Data)
			}
			if _, ok := m[tt.listKey]; !ok {
				t.Errorf("data has no %q key: %#v", tt.listKey, m)
			}
			if m["limit"] == nil || m["total"] == nil {
				t.Errorf("data lacks paging: %#v", m)
			}
		})
	}
}

func TestStockAdjustOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	manager := testutil.CreateUser(t, env.db, "boss", model.RoleManager)
	material, stock := testutil.CreateMaterial(t, env.db, "CIM", 40)
	token := env.token(t, manager)

	code, res := env.do(t, token, http.MethodPost, "/api/stock/adjust", map[string]any{
		"item_class": "raw_material",
		"item_id":    material.ID.String(),
		"mode":       "set",
		"quantity":   "25.5",
	})
	if code != http.StatusOK {
		t.Fatalf("adjust status = %d, want 200 (%s)", code, res.Error)
	}
	if got := testutil.StockOf(t, env.db, stock.ID).CurrentStock; !got.Equal(decimal.RequireFromString("25.5")) {
		t.Errorf("stock = %s, want 25.5", got)
	}

	code, _ = env.do(t, token, http.MethodPost, "/api/stock/adjust", map[string]any{
		"item_class": "raw_material",
		"item_id":    material.ID.String(),
		"mode":       "add",
		"quantity":   "-1",
	})
	if code != http.StatusBadRequest {
		t.Errorf("negative adjust status = %d, want 400", code)
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperror.ErrReportNotFound, http.StatusNotFound},
		{"invalid state", apperror.ErrAlreadySubmitted, http.StatusConflict},
		{"business rule", apperror.ErrQuoteExpired, http.StatusUnprocessableEntity},
		{"referential", apperror.ErrReferencedItemInactive, http.StatusUnprocessableEntity},
		{"validation", apperror.ErrInvalidInput, http.StatusBadRequest},
		{"forbidden", apperror.ErrForbidden, http.StatusForbidden},
		{"wrapped", errors.Join(errors.New("tx"), apperror.ErrNotDraft), http.StatusConflict},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(c, "TestRespondError", tt.err)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusInternalServerError && bytes.Contains(w.Body.Bytes(), []byte("connection reset")) {
				t.Error("internal error details leaked to the client")
			}
		})
	}
}
