// Package access decides whether a resolved identity may act on a resource
// owned by another account.
package access

import (
	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

type Operation int

const (
	OpUpdate Operation = iota
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Allow: owners may do anything; admins may additionally delete.
func Allow(id model.Identity, ownerID uuid.UUID, op Operation) bool {
	if id.ID != uuid.Nil && id.ID == ownerID {
		return true
	}
	return op == OpDelete && id.IsAdmin()
}

func Authorize(id model.Identity, ownerID uuid.UUID, op Operation) error {
	if !Allow(id, ownerID, op) {
		return customErrors.ErrForbidden
	}
	return nil
}
