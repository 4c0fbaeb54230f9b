package service

import (
	"context"
	"fmt"
	"time"

	"precast-erp/internal/apperror"
	"precast-erp/internal/logger"
	"precast-erp/internal/model"
	"precast-erp/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const (
	minTermDays = 1
	maxTermDays = 365
)

// DTOs
type OrderItemRequest struct {
	PBAProductID string           `json:"pba_product_id" binding:"required,uuid"`
	Quantity     int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
}

type CreateOrderRequest struct {
	ClientID     string             `json:"client_id" binding:"required,uuid"`
	OrderDate    string             `json:"order_date"`
	DeliveryDate string             `json:"delivery_date"`
	Notes        string             `json:"notes"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateQuoteRequest struct {
	ValidityDays int    `json:"validity_days" binding:"required,min=1,max=365"`
	Notes        string `json:"notes"`
}

type CreateInvoiceRequest struct {
	DueDays int    `json:"due_days" binding:"required,min=1,max=365"`
	Notes   string `json:"notes"`
}

type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Method      string          `json:"method" binding:"required,oneof=cash check transfer card"`
	PaymentDate string          `json:"payment_date"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
}

type OrderFilter struct {
	Status   model.OrderStatus
	ClientID *uuid.UUID
	Number   string
	From     *time.Time
	To       *time.Time
}

// StatusChange is published after every committed order transition.
type StatusChange struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	From        model.OrderStatus `json:"from"`
	To          model.OrderStatus `json:"to"`
}

type PaymentResult struct {
	Payment   model.Payment         `json:"payment"`
	Invoice   model.Invoice         `json:"invoice"`
	Order     StatusChange          `json:"order"`
	Delivered bool                  `json:"delivered"`
	Movements []model.StockMovement `json:"movements,omitempty"`
}

type OrderService interface {
	Create(ctx context.Context, actor Actor, req CreateOrderRequest) (*model.Order, error)
	Confirm(ctx context.Context, actor Actor, id uuid.UUID) (*model.Order, error)
	CreateQuote(ctx context.Context, actor Actor, id uuid.UUID, req CreateQuoteRequest) (*model.Quote, error)
	AcceptQuote(ctx context.Context, actor Actor, id uuid.UUID) (*model.Quote, error)
	RejectQuote(ctx context.Context, actor Actor, id uuid.UUID) (*model.Quote, error)
	CreateInvoice(ctx context.Context, actor Actor, id uuid.UUID, req CreateInvoiceRequest) (*model.Invoice, error)
	RecordPayment(ctx context.Context, actor Actor, id uuid.UUID, req RecordPaymentRequest) (*PaymentResult, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*model.Order, error)
	DeleteDraft(ctx context.Context, actor Actor, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter, page, limit int) ([]model.Order, int64, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	quoteRepo   repository.QuoteRepository
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	catalogRepo repository.CatalogRepository
	auditRepo   repository.AuditRepository
	ledger      LedgerService
	numbering   NumberingService
	txManager   repository.TransactionManager
	events      EventPublisher
	now         func() time.Time
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	quoteRepo repository.QuoteRepository,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	catalogRepo repository.CatalogRepository,
	auditRepo repository.AuditRepository,
	ledger LedgerService,
	numbering NumberingService,
	txManager repository.TransactionManager,
	events EventPublisher,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		quoteRepo:   quoteRepo,
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		catalogRepo: catalogRepo,
		auditRepo:   auditRepo,
		ledger:      ledger,
		numbering:   numbering,
		txManager:   txManager,
		events:      publisherOrNoop(events),
		now:         time.Now,
	}
}

func (s *orderService) today() datatypes.Date {
	return dateOf(s.now())
}

func (s *orderService) Create(ctx context.Context, actor Actor, req CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, apperror.ErrInvalidInput.WithMessage("an order needs at least one item")
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apperror.ErrInvalidInput.WithMessage("invalid client_id %q", req.ClientID)
	}

	orderDate := s.today()
	if req.OrderDate != "" {
		if orderDate, err = ParseDate(req.OrderDate); err != nil {
			return nil, err
		}
	}
	var deliveryDate *datatypes.Date
	if req.DeliveryDate != "" {
		d, err := ParseDate(req.DeliveryDate)
		if err != nil {
			return nil, err
		}
		deliveryDate = &d
	}

	productIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, apperror.ErrInvalidInput.WithMessage("item quantity must be positive")
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, apperror.ErrInvalidInput.WithMessage("unit price must not be negative")
		}
		id, err := uuid.Parse(it.PBAProductID)
		if err != nil {
			return nil, apperror.ErrInvalidInput.WithMessage("invalid pba_product_id %q", it.PBAProductID)
		}
		productIDs = append(productIDs, id)
	}

	order := &model.Order{
		ClientID:     clientID,
		Status:       model.OrderDraft,
		OrderDate:    orderDate,
		DeliveryDate: deliveryDate,
		Notes:        req.Notes,
		CreatedBy:    actor.ref(),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clientRepo.FindByID(txCtx, clientID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperror.ErrClientNotFound
			}
			return fmt.Errorf("failed to load client: %w", err)
		}
		if !client.IsActive {
			return apperror.ErrClientInactive
		}

		products, err := s.catalogRepo.FindProducts(txCtx, productIDs)
		if err != nil {
			return fmt.Errorf("failed to load products: %w", err)
		}
		byID := make(map[uuid.UUID]model.PBAProduct, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		total := decimal.Zero
		for i, it := range req.Items {
			p, ok := byID[productIDs[i]]
			if !ok {
				return apperror.ErrProductNotFound.WithMessage("product %s not found", productIDs[i])
			}
			if !p.IsActive {
				return apperror.ErrProductInactive.WithMessage("product %s is inactive", p.Code)
			}
			price := p.UnitPrice
			if it.UnitPrice != nil {
				price = *it.UnitPrice
			}
			line := price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			order.Items = append(order.Items, model.OrderItem{
				PBAProductID: p.ID,
				Quantity:     it.Quantity,
				UnitPrice:    price,
				TotalPrice:   line,
			})
			total = total.Add(line)
		}
		order.TotalAmount = total

		if order.OrderNumber, err = s.numbering.Next(txCtx, model.DocOrder); err != nil {
			return err
		}
		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateOrder, order.ID.String(), order.OrderNumber, map[string]any{
			"client_id": clientID,
			"items":     len(order.Items),
			"total":     total,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// transition is the only code path that writes orders.status. The update is
// conditional on the status the caller observed.
func (s *orderService) transition(ctx context.Context, actor Actor, order *model.Order, to model.OrderStatus, details map[string]any) (StatusChange, error) {
	from := order.Status
	if !from.CanTransitionTo(to) {
		return StatusChange{}, apperror.ErrStatusConflict.WithMessage("cannot move order from %s to %s", from, to)
	}
	n, err := s.orderRepo.UpdateStatus(ctx, order.ID, from, to)
	if err != nil {
		return StatusChange{}, fmt.Errorf("failed to update order status: %w", err)
	}
	if n == 0 {
		return StatusChange{}, apperror.ErrStatusConflict
	}
	order.Status = to

	if details == nil {
		details = map[string]any{}
	}
	details["from"] = from
	details["to"] = to
	if err := writeAudit(ctx, s.auditRepo, actor, model.ActionOrderTransition, order.ID.String(), order.OrderNumber, details); err != nil {
		return StatusChange{}, err
	}
	return StatusChange{OrderID: order.ID, OrderNumber: order.OrderNumber, From: from, To: to}, nil
}

func (s *orderService) announce(change StatusChange) {
	logger.Get().WithFields(logrus.Fields{
		"order_id": change.OrderID,
		"number":   change.OrderNumber,
		"from":     change.From,
		"to":       change.To,
	}).Info("order status changed")
	s.events.Publish(EventOrderStatusChanged, change)
}

func (s *orderService) lockOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

func (s *orderService) Confirm(ctx context.Context, actor Actor, id uuid.UUID) (*model.Order, error) {
	var order *model.Order
	var change StatusChange
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		o, err := s.lockOrder(txCtx, id)
		if err != nil {
			return err
		}
		if o.Status != model.OrderDraft {
			return apperror.ErrNotDraft
		}
		order = o
		change, err = s.transition(txCtx, actor, o, model.OrderConfirmed, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announce(change)
	return order, nil
}

func (s *orderService) CreateQuote(ctx context.Context, actor Actor, id uuid.UUID, req CreateQuoteRequest) (*model.Quote, error) {
	if req.ValidityDays < minTermDays || req.ValidityDays > maxTermDays {
		return nil, apperror.ErrInvalidInput.WithMessage("validity must be between %d and %d days", minTermDays, maxTermDays)
	}

	var quote *model.Quote
	var change StatusChange
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.lockOrder(txCtx, id)
		if err != nil {
			return err
		}
		if order.Status != model.OrderConfirmed {
			return apperror.ErrNotConfirmed
		}
		accepted, err := s.quoteRepo.CountByStatus(txCtx, order.ID, model.QuoteAccepted)
		if err != nil {
			return fmt.Errorf("failed to check quotes: %w", err)
		}
		if accepted > 0 {
			return apperror.ErrQuoteAlreadyAccepted
		}

		today := s.today()
		q := &model.Quote{
			OrderID:      order.ID,
			QuoteDate:    today,
			ValidityDate: datatypes.Date(time.Time(today).AddDate(0, 0, req.ValidityDays)),
			Status:       model.QuotePending,
			TotalAmount:  order.TotalAmount,
			Notes:        req.Notes,
			CreatedBy:    actor.ref(),
		}
		if q.QuoteNumber, err = s.numbering.Next(txCtx, model.DocQuote); err != nil {
			return err
		}
		if err := s.quoteRepo.Create(txCtx, q); err != nil {
			return fmt.Errorf("failed to create quote: %w", err)
		}
		if err := writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateQuote, q.ID.String(), q.QuoteNumber, map[string]any{
			"order_id":      order.ID,
			"validity_days": req.ValidityDays,
			"total":         q.TotalAmount,
		}); err != nil {
			return err
		}
		quote = q
		change, err = s.transition(txCtx, actor, order, model.OrderQuoted, map[string]any{"quote": q.QuoteNumber})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announce(change)
	return quote, nil
}

func (s *orderService) pendingQuote(ctx context.Context, orderID uuid.UUID) (*model.Quote, error) {
	q, err := s.quoteRepo.LatestPendingForUpdate(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.ErrNoQuotePending
		}
		return nil, fmt.Errorf("failed to load quote: %w", err)
	}
	return q, nil
}

func (s *orderService) AcceptQuote(ctx context.Context, actor Actor, id uuid.UUID) (*model.Quote, error) {
	var quote *model.Quote
	var change StatusChange
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.lockOrder(txCtx, id)
		if err != nil {
			return err
		}
		q, err := s.pendingQuote(txCtx, order.ID)
		if err != nil {
			return err
		}
		if q.ExpiredOn(time.Time(s.today())) {
			return apperror.ErrQuoteExpired.WithMessage("quote %s expired on %s", q.QuoteNumber, time.Time(q.ValidityDate).Format(dateLayout))
		}
		if order.Status != model.OrderQuoted {
			return apperror.ErrNotQuoted
		}

		n, err := s.quoteRepo.UpdateStatus(txCtx, q.ID, model.QuotePending, model.QuoteAccepted)
		if err != nil {
			return fmt.Errorf("failed to accept quote: %w", err)
		}
		if n == 0 {
			return apperror.ErrStatusConflict
		}
		q.Status = model.QuoteAccepted
		quote = q
		change, err = s.transition(txCtx, actor, order, model.OrderQuoteAccepted, map[string]any{"quote": q.QuoteNumber})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announce(change)
	return quote, nil
}

// RejectQuote closes the pending quote and sends the order back to confirmed
// so a new quote can be issued.
func (s *orderService) RejectQuote(ctx context.Context, actor Actor, id uuid.UUID) (*model.Quote, error) {
	var quote *model.Quote
	var change StatusChange
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.lockOrder(txCtx, id)
		if err != nil {
			return err
		}
		q, err := s.pendingQuote(txCtx, order.ID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderQuoted {
			return apperror.ErrNotQuoted
		}

		next := model.QuoteRejected
		if q.ExpiredOn(time.Time(s.today())) {
			next = model.QuoteExpired
		}
		n, err := s.quoteRepo.UpdateStatus(txCtx, q.ID, model.QuotePending, next)
		if err != nil {
			return fmt.Errorf("failed to reject quote: %w", err)
		}
		if n == 0 {
			return apperror.ErrStatusConflict
		}
		q.Status = next
		quote = q
		change, err = s.transition(txCtx, actor, order, model.OrderConfirmed, map[string]any{"quote": q.QuoteNumber, "quote_status": next})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announce(change)
	return quote, nil
}

func (s *orderService) CreateInvoice(ctx context.Context, actor Actor, id uuid.UUID, req CreateInvoiceRequest) (*model.Invoice, error) {
	if req.DueDays < minTermDays || req.DueDays > maxTermDays {
		return nil, apperror.ErrInvalidInput.WithMessage("due term must be between %d and %d days", minTermDays, maxTermDays)
	}

	var invoice *model.Invoice
	var change StatusChange
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.lockOrder(txCtx, id)
		if err != nil {
			return err
		}
		if _, err := s.invoiceRepo.FindByOrderID(txCtx, order.ID); err == nil {
			return apperror.ErrInvoiceExists
		} else if !repository.IsNotFound(err) {
			return fmt.Errorf("failed to check invoice: %w", err)
		}
		if order.Status != model.OrderQuoteAccepted {
			return apperror.ErrQuoteNotAccepted
		}

		today := s.today()
		inv := &model.Invoice{
			OrderID:     order.ID,
			InvoiceDate: today,
			DueDate:     datatypes.Date(time.Time(today).AddDate(0, 0, req.DueDays)),
			Status:      model.InvoiceDraft,
			TotalAmount: order.TotalAmount,
			PaidAmount:  decimal.Zero,
			Notes:       req.Notes,
			CreatedBy:   actor.ref(),
		}
		if inv.InvoiceNumber, err = s.numbering.Next(txCtx, model.DocInvoice); err != nil {
			return err
		}
		if err := s.invoiceRepo.Create(txCtx, inv); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperror.ErrInvoiceExists
			}
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		if err := writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateInvoice, inv.ID.String(), inv.InvoiceNumber, map[string]any{
			"order_id": order.ID,
			"due_days": req.DueDays,
			"total":    inv.TotalAmount,
		}); err != nil {
			return err
		}
		invoice = inv
		change, err = s.transition(txCtx, actor, order, model.OrderInvoiced, map[string]any{"invoice": inv.InvoiceNumber})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announce(change)
	return invoice, nil
}

// RecordPayment books money against the order's invoice. The payment that
// settles the invoice also delivers the order and takes the goods out of
// stock, all in the same transaction.
func (s *orderService) RecordPayment(ctx context.Context, actor Actor, id uuid.UUID, req RecordPaymentRequest) (*PaymentResult, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount
	}
	if !model.IsCentAmount(req.Amount) {
		return nil, apperror.ErrInvalidAmount.WithMessage("amount %s has more than two decimal places", req.Amount)
	}
	if !model.IsValidPaymentMethod(req.Method) {
		return nil, apperror.ErrInvalidInput.WithMessage("invalid payment method %q", req.Method)
	}
	paymentDate := s.today()
	if req.PaymentDate != "" {
		d, err := ParseDate(req.PaymentDate)
		if err != nil {
			return nil, err
		}
		paymentDate = d
	}

	var result PaymentResult
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.lockOrder(txCtx, id)
		if err != nil {
			return err
		}
		inv, err := s.invoiceRepo.FindByOrderIDForUpdate(txCtx, order.ID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperror.ErrNoInvoice
			}
			return fmt.Errorf("failed to load invoice: %w", err)
		}
		if inv.Status == model.InvoiceCancelled {
			return apperror.ErrInvoiceCancelled
		}
		remaining := inv.Remaining()
		if req.Amount.GreaterThan(remaining) {
			return apperror.ErrAmountExceedsRemaining.WithMessage("payment of %s exceeds the remaining %s", req.Amount.StringFixed(2), remaining.StringFixed(2))
		}
		if order.Status != model.OrderInvoiced {
			return apperror.ErrNotInvoiced
		}

		payment := &model.Payment{
			InvoiceID:   inv.ID,
			PaymentDate: paymentDate,
			Amount:      req.Amount,
			Method:      req.Method,
			Reference:   req.Reference,
			Notes:       req.Notes,
			CreatedBy:   actor.ref(),
		}
		if err := s.invoiceRepo.CreatePayment(txCtx, payment); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		inv.PaidAmount = inv.PaidAmount.Add(req.Amount)
		settled := inv.PaidAmount.GreaterThanOrEqual(inv.TotalAmount)
		inv.Status = model.InvoiceSent
		if settled {
			inv.Status = model.InvoicePaid
		}
		if err := s.invoiceRepo.UpdatePayment(txCtx, inv.ID, inv.PaidAmount, inv.Status); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		if err := writeAudit(txCtx, s.auditRepo, actor, model.ActionRecordPayment, payment.ID.String(), inv.InvoiceNumber, map[string]any{
			"amount": req.Amount,
			"method": req.Method,
			"paid":   inv.PaidAmount,
		}); err != nil {
			return err
		}

		result.Payment = *payment
		result.Invoice = *inv
		if !settled {
			return nil
		}

		ref := order.ID
		for _, item := range order.Items {
			res, err := s.ledger.ApplyMovement(txCtx, MovementInput{
				ItemClass:     model.ItemClassFinishedProduct,
				ItemID:        item.PBAProductID,
				Kind:          model.MovementDelivery,
				Quantity:      decimal.NewFromInt(int64(item.Quantity)).Neg(),
				RefKind:       model.RefOrder,
				RefID:         &ref,
				Actor:         actor,
				Notes:         fmt.Sprintf("Delivery %s", order.OrderNumber),
				AllowInactive: true,
			})
			if err != nil {
				return err
			}
			result.Movements = append(result.Movements, res.Movement)
		}

		result.Order, err = s.transition(txCtx, actor, order, model.OrderDelivered, map[string]any{"invoice": inv.InvoiceNumber})
		if err != nil {
			return err
		}
		result.Delivered = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result.Delivered {
		s.announce(result.Order)
		s.events.Publish(EventStockChanged, result.Movements)
	}
	return &result, nil
}

// Cancel abandons an order that has not been delivered. Only an admin may do
// it, and not once money was received.
func (s *orderService) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*model.Order, error) {
	if !actor.IsAdmin() {
		return nil, apperror.ErrForbidden.WithMessage("only an admin can cancel an order")
	}

	var order *model.Order
	var change StatusChange
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		o, err := s.lockOrder(txCtx, id)
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(model.OrderCancelled) {
			return apperror.ErrNotCancellable.WithMessage("order %s is %s", o.OrderNumber, o.Status)
		}

		inv, err := s.invoiceRepo.FindByOrderIDForUpdate(txCtx, o.ID)
		switch {
		case err == nil:
			if inv.PaidAmount.IsPositive() {
				return apperror.ErrInvoiceHasPayments
			}
			if err := s.invoiceRepo.UpdateStatus(txCtx, inv.ID, model.InvoiceCancelled); err != nil {
				return fmt.Errorf("failed to cancel invoice: %w", err)
			}
		case !repository.IsNotFound(err):
			return fmt.Errorf("failed to load invoice: %w", err)
		}

		if q, err := s.quoteRepo.LatestPendingForUpdate(txCtx, o.ID); err == nil {
			if _, err := s.quoteRepo.UpdateStatus(txCtx, q.ID, model.QuotePending, model.QuoteRejected); err != nil {
				return fmt.Errorf("failed to reject quote: %w", err)
			}
		} else if !repository.IsNotFound(err) {
			return fmt.Errorf("failed to load quote: %w", err)
		}

		order = o
		change, err = s.transition(txCtx, actor, o, model.OrderCancelled, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.announce(change)
	return order, nil
}

func (s *orderService) DeleteDraft(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.lockOrder(txCtx, id)
		if err != nil {
			return err
		}
		if order.Status != model.OrderDraft {
			return apperror.ErrNotDraft
		}
		if err := s.orderRepo.Delete(txCtx, order.ID); err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionDeleteOrder, order.ID.String(), order.OrderNumber, map[string]any{
			"total": order.TotalAmount,
		})
	})
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.Invoice != nil {
		order.Invoice.MarkOverdue(time.Time(s.today()))
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, filter OrderFilter, page, limit int) ([]model.Order, int64, error) {
	f := repository.NewFilter()
	if filter.Status != "" {
		f.Eq(repository.ColOrderStatus, filter.Status)
	}
	if filter.ClientID != nil {
		f.Eq(repository.ColOrderClientID, *filter.ClientID)
	}
	if filter.Number != "" {
		f.Contains(repository.ColOrderNumber, filter.Number)
	}
	if filter.From != nil {
		f.Gte(repository.ColOrderDate, dateOf(*filter.From))
	}
	if filter.To != nil {
		f.Lte(repository.ColOrderDate, dateOf(*filter.To))
	}
	return s.orderRepo.List(ctx, f, page, limit)
}
