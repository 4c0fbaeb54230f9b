package service

import (
	"context"
	"encoding/json"
	"fmt"

	"precast-erp/internal/model"
	"precast-erp/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLogResponse struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Username   string         `json:"username"`
	Action     string         `json:"action"`
	EntityID   string         `json:"entity_id"`
	EntityName string         `json:"entity_name"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  string         `json:"created_at"`
}

// AuditFilter narrows the audit log listing
type AuditFilter struct {
	Action   string
	UserID   *uuid.UUID
	EntityID string
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, filter AuditFilter, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) GetAuditLogs(ctx context.Context, filter AuditFilter, page, limit int) ([]AuditLogResponse, int64, error) {
	f := repository.NewFilter()
	if filter.Action != "" {
		f.Eq(repository.ColAuditAction, filter.Action)
	}
	if filter.UserID != nil {
		f.Eq(repository.ColAuditUserID, *filter.UserID)
	}
	if filter.EntityID != "" {
		f.Eq(repository.ColAuditEntity, filter.EntityID)
	}

	logs, total, err := s.repo.List(ctx, f, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		username := "System"
		userID := ""
		if l.User != nil {
			username = l.User.Username
		}
		if l.UserID != nil {
			userID = l.UserID.String()
		}

		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     userID,
			Username:   username,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return res, total, nil
}

// writeAudit records an audit row in whatever transaction ctx carries.
func writeAudit(ctx context.Context, repo repository.AuditRepository, actor Actor, action, entityID, entityName string, details any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}
	entry := &model.AuditLog{
		UserID:     actor.ref(),
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    datatypes.JSON(raw),
	}
	if err := repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
