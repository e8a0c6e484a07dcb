package policy

import (
	"github.com/google/uuid"

	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
)

// Actor identifies the authenticated requester a decision is evaluated for.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}
