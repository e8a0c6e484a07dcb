package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/internal/policy"
	"github.com/rednammadhavi/laptopcare-erp/internal/users"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
	pkgerrors "github.com/rednammadhavi/laptopcare-erp/pkg/errors"
	"github.com/rednammadhavi/laptopcare-erp/pkg/pagination"
)

const (
	accessDeniedMessage      = "access denied"
	customerNotFoundMessage  = "customer not found"
	invalidTechnicianMessage = "invalid technician"
)

// Service exposes the intake ticket operations the controllers depend on.
type Service interface {
	List(ctx context.Context, actor policy.Actor, params pagination.Params) (*ListDTO, error)
	MyCustomers(ctx context.Context, actor policy.Actor, params pagination.Params) (*ListDTO, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*CustomerDTO, error)
	Create(ctx context.Context, actor policy.Actor, req CreateCustomerRequest) (*CustomerDTO, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req UpdateCustomerRequest) (*CustomerDTO, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
	ListTechnicians(ctx context.Context, actor policy.Actor) ([]users.TechnicianDTO, error)
}

// ServiceParams bundles the dependencies for the customers service.
type ServiceParams struct {
	DB *db.Client
}

type service struct {
	repo  *Repository
	users *users.Repository
}

// NewService constructs a customers service over the shared database client.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{
		repo:  NewRepository(params.DB.DB()),
		users: users.NewRepository(params.DB.DB()),
	}, nil
}

func (s *service) List(ctx context.Context, actor policy.Actor, params pagination.Params) (*ListDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceCustomer, policy.ActionList)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	var technicianID *uuid.UUID
	if decision.OwnOnly {
		technicianID = &actor.UserID
	}
	return s.listPage(ctx, technicianID, params)
}

func (s *service) MyCustomers(ctx context.Context, actor policy.Actor, params pagination.Params) (*ListDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceCustomer, policy.ActionList)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}
	return s.listPage(ctx, &actor.UserID, params)
}

func (s *service) listPage(ctx context.Context, technicianID *uuid.UUID, params pagination.Params) (*ListDTO, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.List(ctx, ListFilter{
		TechnicianID: technicianID,
		Cursor:       cursor,
		Limit:        limit + 1,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customers")
	}

	result := &ListDTO{Customers: make([]CustomerDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for i := range rows {
		result.Customers = append(result.Customers, *FromModel(&rows[i]))
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*CustomerDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceCustomer, policy.ActionRead)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	customer, err := s.loadScoped(ctx, id, decision, actor)
	if err != nil {
		return nil, err
	}
	return FromModel(customer), nil
}

func (s *service) Create(ctx context.Context, actor policy.Actor, req CreateCustomerRequest) (*CustomerDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceCustomer, policy.ActionCreate)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	status := enums.TicketStatusNew
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		parsed, err := enums.ParseTicketStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		status = parsed
	}
	if !policy.StatusWriteAllowed(actor.Role, status) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden,
			fmt.Sprintf("not permitted to set status %q", status))
	}

	deviceType := enums.DeviceTypeLaptop
	if req.DeviceType != nil && strings.TrimSpace(*req.DeviceType) != "" {
		parsed, err := enums.ParseDeviceType(*req.DeviceType)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid device type")
		}
		deviceType = parsed
	}

	priority := enums.PriorityMedium
	if req.Priority != nil && strings.TrimSpace(*req.Priority) != "" {
		parsed, err := enums.ParsePriority(*req.Priority)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
		}
		priority = parsed
	}

	var technicianID *uuid.UUID
	if req.PreferredTechnician != nil {
		resolved, err := s.resolveTechnician(ctx, *req.PreferredTechnician)
		if err != nil {
			return nil, err
		}
		technicianID = resolved
	}

	customer := &models.Customer{
		Name:                  name,
		Phone:                 req.Phone,
		Email:                 req.Email,
		Address:               req.Address,
		PreferredTechnicianID: technicianID,
		DeviceType:            deviceType,
		Brand:                 req.Brand,
		Model:                 req.Model,
		ProblemDescription:    strings.TrimSpace(req.ProblemDescription),
		Status:                status,
		Priority:              priority,
		EstimatedCompletion:   req.EstimatedCompletion,
		Notes:                 req.Notes,
		CreatedByID:           actor.UserID,
	}

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req UpdateCustomerRequest) (*CustomerDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceCustomer, policy.ActionUpdate)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	if _, err := s.loadScoped(ctx, id, decision, actor); err != nil {
		return nil, err
	}

	updates, err := s.buildUpdates(ctx, actor, decision, req)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update customer")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	decision := policy.Authorize(actor.Role, policy.ResourceCustomer, policy.ActionDelete)
	if !decision.Allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, customerNotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete customer")
	}
	return nil
}

func (s *service) ListTechnicians(ctx context.Context, actor policy.Actor) ([]users.TechnicianDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceTechnicianDirectory, policy.ActionList)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	technicians, err := s.users.ListTechnicians(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list technicians")
	}

	out := make([]users.TechnicianDTO, 0, len(technicians))
	for i := range technicians {
		out = append(out, *users.TechnicianFromModel(&technicians[i]))
	}
	return out, nil
}

// loadScoped fetches the row and hides it from technicians it is not assigned
// to, so own-only callers cannot distinguish foreign rows from missing ones.
func (s *service) loadScoped(ctx context.Context, id uuid.UUID, decision policy.Decision, actor policy.Actor) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, customerNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}

	if decision.OwnOnly {
		if customer.PreferredTechnicianID == nil || *customer.PreferredTechnicianID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, customerNotFoundMessage)
		}
	}
	return customer, nil
}

// buildUpdates converts the allowed request fields into column updates.
// Fields outside the decision's whitelist are dropped, not rejected.
func (s *service) buildUpdates(ctx context.Context, actor policy.Actor, decision policy.Decision, req UpdateCustomerRequest) (map[string]any, error) {
	updates := map[string]any{}

	if req.Name != nil && decision.FieldAllowed("name") {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Phone != nil && decision.FieldAllowed("phone") {
		updates["phone"] = req.Phone
	}
	if req.Email != nil && decision.FieldAllowed("email") {
		updates["email"] = req.Email
	}
	if req.Address != nil && decision.FieldAllowed("address") {
		updates["address"] = req.Address
	}
	if req.Brand != nil && decision.FieldAllowed("brand") {
		updates["brand"] = req.Brand
	}
	if req.Model != nil && decision.FieldAllowed("model") {
		updates["model"] = req.Model
	}
	if req.Notes != nil && decision.FieldAllowed("notes") {
		updates["notes"] = req.Notes
	}
	if req.ProblemDescription != nil && decision.FieldAllowed("problemDescription") {
		updates["problem_description"] = strings.TrimSpace(*req.ProblemDescription)
	}
	if req.EstimatedCompletion != nil && decision.FieldAllowed("estimatedCompletion") {
		updates["estimated_completion"] = req.EstimatedCompletion
	}

	if req.DeviceType != nil && decision.FieldAllowed("deviceType") {
		parsed, err := enums.ParseDeviceType(*req.DeviceType)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid device type")
		}
		updates["device_type"] = parsed
	}

	if req.Priority != nil && decision.FieldAllowed("priority") {
		parsed, err := enums.ParsePriority(*req.Priority)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
		}
		updates["priority"] = parsed
	}

	if req.Status != nil && decision.FieldAllowed("status") {
		parsed, err := enums.ParseTicketStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
		}
		if !policy.StatusWriteAllowed(actor.Role, parsed) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden,
				fmt.Sprintf("not permitted to set status %q", parsed))
		}
		updates["status"] = parsed
	}

	if req.PreferredTechnician != nil && decision.FieldAllowed("preferredTechnician") {
		resolved, err := s.resolveTechnician(ctx, *req.PreferredTechnician)
		if err != nil {
			return nil, err
		}
		if resolved == nil {
			updates["preferred_technician_id"] = nil
		} else {
			updates["preferred_technician_id"] = *resolved
		}
	}

	return updates, nil
}

// resolveTechnician maps the raw reference to a technician's id. An empty
// string clears the assignment; anything that does not resolve to a user with
// the technician role is rejected.
func (s *service) resolveTechnician(ctx context.Context, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidTechnicianMessage)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidTechnicianMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup technician")
	}
	if user.Role != enums.RoleTechnician {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidTechnicianMessage)
	}

	return &id, nil
}
