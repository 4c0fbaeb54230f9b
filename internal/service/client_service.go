package service

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"precast-erp/internal/apperror"
	"precast-erp/internal/model"
	"precast-erp/internal/repository"

	"github.com/google/uuid"
)

// --- Client DTOs ---

type CreateClientRequest struct {
	CompanyName   string `json:"company_name" binding:"required"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

type UpdateClientRequest struct {
	CompanyName   *string `json:"company_name"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	City          *string `json:"city"`
	PostalCode    *string `json:"postal_code"`
	Country       *string `json:"country"`
}

type ClientResponse struct {
	ID            uuid.UUID `json:"id"`
	CompanyName   string    `json:"company_name"`
	ContactPerson string    `json:"contact_person"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	PostalCode    string    `json:"postal_code"`
	Country       string    `json:"country"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, actor Actor, req CreateClientRequest) (ClientResponse, error)
	UpdateClient(ctx context.Context, actor Actor, id uuid.UUID, req UpdateClientRequest) (ClientResponse, error)
	SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) error
	GetClient(ctx context.Context, id uuid.UUID) (ClientResponse, error)
	GetClients(ctx context.Context, search string, activeOnly bool, page, limit int) ([]ClientResponse, int64, error)
}

// --- Implementation ---

type clientService struct {
	clientRepo repository.ClientRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewClientService(clientRepo repository.ClientRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) ClientService {
	return &clientService{clientRepo: clientRepo, auditRepo: auditRepo, txManager: txManager}
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperror.ErrInvalidInput.WithMessage("invalid email format")
	}
	return nil
}

// --- CRUD ---

func (s *clientService) CreateClient(ctx context.Context, actor Actor, req CreateClientRequest) (ClientResponse, error) {
	if req.CompanyName == "" {
		return ClientResponse{}, apperror.ErrInvalidInput.WithMessage("company_name is required")
	}
	if err := validateEmail(req.Email); err != nil {
		return ClientResponse{}, err
	}

	client := &model.Client{
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		City:          req.City,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		IsActive:      true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.clientRepo.Create(txCtx, client); err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateClient, client.ID.String(), client.CompanyName, map[string]any{
			"city": client.City,
		})
	})
	if err != nil {
		return ClientResponse{}, err
	}
	return toClientResponse(*client), nil
}

func (s *clientService) UpdateClient(ctx context.Context, actor Actor, id uuid.UUID, req UpdateClientRequest) (ClientResponse, error) {
	var client *model.Client
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		c, err := s.clientRepo.FindByID(txCtx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperror.ErrClientNotFound
			}
			return fmt.Errorf("failed to load client: %w", err)
		}

		if req.CompanyName != nil {
			if *req.CompanyName == "" {
				return apperror.ErrInvalidInput.WithMessage("company_name cannot be empty")
			}
			c.CompanyName = *req.CompanyName
		}
		if req.Email != nil {
			if err := validateEmail(*req.Email); err != nil {
				return err
			}
			c.Email = *req.Email
		}
		if req.ContactPerson != nil {
			c.ContactPerson = *req.ContactPerson
		}
		if req.Phone != nil {
			c.Phone = *req.Phone
		}
		if req.Address != nil {
			c.Address = *req.Address
		}
		if req.City != nil {
			c.City = *req.City
		}
		if req.PostalCode != nil {
			c.PostalCode = *req.PostalCode
		}
		if req.Country != nil && *req.Country != "" {
			c.Country = *req.Country
		}

		if err := s.clientRepo.Update(txCtx, c); err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		client = c
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateClient, c.ID.String(), c.CompanyName, req)
	})
	if err != nil {
		return ClientResponse{}, err
	}
	return toClientResponse(*client), nil
}

// SetActive toggles whether new orders may be placed for the client. Existing
// orders are untouched.
func (s *clientService) SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := s.clientRepo.SetActive(txCtx, id, active)
		if err != nil {
			return fmt.Errorf("failed to update client: %w", err)
		}
		if n == 0 {
			return apperror.ErrClientNotFound
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateClient, id.String(), "", map[string]any{
			"is_active": active,
		})
	})
}

func (s *clientService) GetClient(ctx context.Context, id uuid.UUID) (ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return ClientResponse{}, apperror.ErrClientNotFound
		}
		return ClientResponse{}, err
	}
	return toClientResponse(*c), nil
}

func (s *clientService) GetClients(ctx context.Context, search string, activeOnly bool, page, limit int) ([]ClientResponse, int64, error) {
	f := repository.NewFilter()
	if search != "" {
		f.Contains(repository.ColClientName, search)
	}
	if activeOnly {
		f.Eq(repository.ColClientActive, true)
	}

	clients, total, err := s.clientRepo.List(ctx, f, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	res := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		res = append(res, toClientResponse(c))
	}
	return res, total, nil
}

// --- Response mappers ---

func toClientResponse(c model.Client) ClientResponse {
	return ClientResponse{
		ID:            c.ID,
		CompanyName:   c.CompanyName,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		PostalCode:    c.PostalCode,
		Country:       c.Country,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
