package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/internal/customers"
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
	jobNotFoundMessage       = "job not found"
	invalidTechnicianMessage = "invalid technician"
	invalidCustomerMessage   = "invalid customer"
)

// Service exposes the work order operations the controllers depend on.
type Service interface {
	List(ctx context.Context, actor policy.Actor, params pagination.Params) (*ListDTO, error)
	MyJobs(ctx context.Context, actor policy.Actor, params pagination.Params) (*ListDTO, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*JobDTO, error)
	Create(ctx context.Context, actor policy.Actor, req CreateJobRequest) (*JobDTO, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req UpdateJobRequest) (*JobDTO, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

// ServiceParams bundles the dependencies for the jobs service.
type ServiceParams struct {
	DB *db.Client
}

type service struct {
	repo      *Repository
	customers *customers.Repository
	users     *users.Repository
}

// NewService constructs a jobs service over the shared database client.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{
		repo:      NewRepository(params.DB.DB()),
		customers: customers.NewRepository(params.DB.DB()),
		users:     users.NewRepository(params.DB.DB()),
	}, nil
}

func (s *service) List(ctx context.Context, actor policy.Actor, params pagination.Params) (*ListDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceJob, policy.ActionList)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	var technicianID *uuid.UUID
	if decision.OwnOnly {
		technicianID = &actor.UserID
	}
	return s.listPage(ctx, technicianID, params)
}

func (s *service) MyJobs(ctx context.Context, actor policy.Actor, params pagination.Params) (*ListDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceJob, policy.ActionList)
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list jobs")
	}

	result := &ListDTO{Jobs: make([]JobDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for i := range rows {
		result.Jobs = append(result.Jobs, *FromModel(&rows[i]))
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*JobDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceJob, policy.ActionRead)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	job, err := s.loadScoped(ctx, id, decision, actor)
	if err != nil {
		return nil, err
	}
	return FromModel(job), nil
}

func (s *service) Create(ctx context.Context, actor policy.Actor, req CreateJobRequest) (*JobDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceJob, policy.ActionCreate)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	issue := strings.TrimSpace(req.Issue)
	if issue == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "issue is required")
	}

	customerID, err := uuid.Parse(strings.TrimSpace(req.Customer))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidCustomerMessage)
	}
	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidCustomerMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}

	technicianID, err := s.resolveTechnician(ctx, req.Technician)
	if err != nil {
		return nil, err
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

	if err := validateCost(req.EstimatedCost); err != nil {
		return nil, err
	}
	if err := validateCost(req.ActualCost); err != nil {
		return nil, err
	}

	job := &models.Job{
		CustomerID:         customerID,
		TechnicianID:       technicianID,
		DeviceType:         deviceType,
		Brand:              req.Brand,
		Model:              req.Model,
		SerialNumber:       req.SerialNumber,
		Issue:              issue,
		ProblemDescription: req.ProblemDescription,
		Priority:           priority,
		Status:             status,
		EstimatedCost:      req.EstimatedCost,
		ActualCost:         req.ActualCost,
		CreatedByID:        actor.UserID,
	}

	created, err := s.repo.Create(ctx, job)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create job")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req UpdateJobRequest) (*JobDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceJob, policy.ActionUpdate)
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update job")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	decision := policy.Authorize(actor.Role, policy.ResourceJob, policy.ActionDelete)
	if !decision.Allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, jobNotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete job")
	}
	return nil
}

func (s *service) loadScoped(ctx context.Context, id uuid.UUID, decision policy.Decision, actor policy.Actor) (*models.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, jobNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load job")
	}

	if decision.OwnOnly && job.TechnicianID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, jobNotFoundMessage)
	}
	return job, nil
}

func (s *service) buildUpdates(ctx context.Context, actor policy.Actor, decision policy.Decision, req UpdateJobRequest) (map[string]any, error) {
	updates := map[string]any{}

	if req.Brand != nil && decision.FieldAllowed("brand") {
		updates["brand"] = req.Brand
	}
	if req.Model != nil && decision.FieldAllowed("model") {
		updates["model"] = req.Model
	}
	if req.SerialNumber != nil && decision.FieldAllowed("serialNumber") {
		updates["serial_number"] = req.SerialNumber
	}
	if req.ProblemDescription != nil && decision.FieldAllowed("problemDescription") {
		updates["problem_description"] = req.ProblemDescription
	}

	if req.Issue != nil && decision.FieldAllowed("issue") {
		issue := strings.TrimSpace(*req.Issue)
		if issue == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "issue cannot be empty")
		}
		updates["issue"] = issue
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

	if req.EstimatedCost != nil && decision.FieldAllowed("estimatedCost") {
		if err := validateCost(req.EstimatedCost); err != nil {
			return nil, err
		}
		updates["estimated_cost"] = req.EstimatedCost
	}
	if req.ActualCost != nil && decision.FieldAllowed("actualCost") {
		if err := validateCost(req.ActualCost); err != nil {
			return nil, err
		}
		updates["actual_cost"] = req.ActualCost
	}

	if req.Technician != nil && decision.FieldAllowed("technician") {
		technicianID, err := s.resolveTechnician(ctx, *req.Technician)
		if err != nil {
			return nil, err
		}
		updates["technician_id"] = technicianID
	}

	return updates, nil
}

// resolveTechnician maps the raw reference to a technician's id. Jobs always
// require an assignee, so an empty reference is rejected rather than clearing.
func (s *service) resolveTechnician(ctx context.Context, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, invalidTechnicianMessage)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, invalidTechnicianMessage)
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, invalidTechnicianMessage)
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup technician")
	}
	if user.Role != enums.RoleTechnician {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, invalidTechnicianMessage)
	}
	return id, nil
}

func validateCost(cost *decimal.Decimal) error {
	if cost != nil && cost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
	}
	return nil
}
