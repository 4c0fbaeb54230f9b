package service

import (
	"precast-erp/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated user a workflow runs on behalf of.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Elevated reports whether the actor may see and act on other users' data.
func (a Actor) Elevated() bool {
	return model.IsElevatedRole(a.Role)
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func (a Actor) ref() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}
