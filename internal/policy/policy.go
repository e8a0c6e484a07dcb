package policy

import (
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
)

// Action is a coarse operation category evaluated against the policy table.
type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource names a protected surface of the API.
type Resource string

const (
	ResourceCustomer            Resource = "customer"
	ResourceJob                 Resource = "job"
	ResourceInventory           Resource = "inventory"
	ResourceReport              Resource = "report"
	ResourceTechnicianDirectory Resource = "technician_directory"
)

// Decision is the outcome of an authorization check.
//
// OwnOnly scopes list/read/update to rows assigned to the requesting
// technician. FieldWhitelist limits which payload fields a write may touch;
// nil means unrestricted.
type Decision struct {
	Allowed        bool
	OwnOnly        bool
	FieldWhitelist []string
}

var denied = Decision{}

var receptionistCustomerFields = []string{
	"name", "email", "phone", "address", "deviceType", "brand", "model", "problemDescription", "notes",
}

var technicianCustomerFields = []string{
	"status", "notes", "estimatedCompletion",
}

var technicianJobFields = []string{
	"status", "problemDescription", "actualCost",
}

// Authorize evaluates the role/resource/action triple against the policy table.
// The decision is pure: persistence-level checks (row ownership, technician
// reference validation) are enforced by the services using the decision.
func Authorize(role enums.Role, resource Resource, action Action) Decision {
	switch resource {
	case ResourceCustomer:
		return authorizeCustomer(role, action)
	case ResourceJob:
		return authorizeJob(role, action)
	case ResourceInventory:
		return authorizeInventory(role, action)
	case ResourceReport, ResourceTechnicianDirectory:
		if action == ActionList {
			return Decision{Allowed: role.IsValid()}
		}
		return denied
	}
	return denied
}

func authorizeCustomer(role enums.Role, action Action) Decision {
	switch role {
	case enums.RoleAdmin, enums.RoleManager:
		return Decision{Allowed: true}
	case enums.RoleReceptionist:
		switch action {
		case ActionList, ActionRead, ActionCreate:
			return Decision{Allowed: true}
		case ActionUpdate:
			return Decision{Allowed: true, FieldWhitelist: whitelist(receptionistCustomerFields)}
		}
		return denied
	case enums.RoleTechnician:
		switch action {
		case ActionList, ActionRead:
			return Decision{Allowed: true, OwnOnly: true}
		case ActionUpdate:
			return Decision{Allowed: true, OwnOnly: true, FieldWhitelist: whitelist(technicianCustomerFields)}
		}
		return denied
	}
	return denied
}

func authorizeJob(role enums.Role, action Action) Decision {
	switch role {
	case enums.RoleAdmin, enums.RoleManager:
		return Decision{Allowed: true}
	case enums.RoleReceptionist:
		switch action {
		case ActionList, ActionRead, ActionCreate:
			return Decision{Allowed: true}
		}
		return denied
	case enums.RoleTechnician:
		switch action {
		case ActionList, ActionRead:
			return Decision{Allowed: true, OwnOnly: true}
		case ActionUpdate:
			return Decision{Allowed: true, OwnOnly: true, FieldWhitelist: whitelist(technicianJobFields)}
		}
		return denied
	}
	return denied
}

func authorizeInventory(role enums.Role, action Action) Decision {
	switch action {
	case ActionList, ActionRead:
		return Decision{Allowed: role.IsValid()}
	case ActionCreate, ActionUpdate, ActionDelete:
		return Decision{Allowed: role == enums.RoleAdmin || role == enums.RoleManager}
	}
	return denied
}

// StatusWriteAllowed reports whether the role may set the given ticket status.
// Receptionists may only place tickets in the intake status.
func StatusWriteAllowed(role enums.Role, status enums.TicketStatus) bool {
	if role == enums.RoleReceptionist {
		return status == enums.TicketStatusNew
	}
	return role.IsValid()
}

// FieldAllowed reports whether the decision permits writing the named field.
func (d Decision) FieldAllowed(field string) bool {
	if d.FieldWhitelist == nil {
		return true
	}
	for _, allowed := range d.FieldWhitelist {
		if allowed == field {
			return true
		}
	}
	return false
}

func whitelist(fields []string) []string {
	return append([]string(nil), fields...)
}
