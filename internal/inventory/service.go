package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/internal/policy"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	pkgerrors "github.com/rednammadhavi/laptopcare-erp/pkg/errors"
	"github.com/rednammadhavi/laptopcare-erp/pkg/pagination"
)

const (
	accessDeniedMessage = "access denied"
	itemNotFoundMessage = "inventory item not found"
)

// Service exposes the stock operations the controllers depend on.
type Service interface {
	List(ctx context.Context, actor policy.Actor, params pagination.Params) (*ListDTO, error)
	Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*ItemDTO, error)
	Create(ctx context.Context, actor policy.Actor, req CreateItemRequest) (*ItemDTO, error)
	Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req UpdateItemRequest) (*ItemDTO, error)
	Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

// ServiceParams bundles the dependencies for the inventory service.
type ServiceParams struct {
	DB *db.Client
}

type service struct {
	repo *Repository
}

// NewService constructs an inventory service over the shared database client.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{repo: NewRepository(params.DB.DB())}, nil
}

func (s *service) List(ctx context.Context, actor policy.Actor, params pagination.Params) (*ListDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceInventory, policy.ActionList)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.List(ctx, ListFilter{Cursor: cursor, Limit: limit + 1})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list inventory")
	}

	result := &ListDTO{Items: make([]ItemDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*ItemDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceInventory, policy.ActionRead)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inventory item")
	}
	return FromModel(item), nil
}

func (s *service) Create(ctx context.Context, actor policy.Actor, req CreateItemRequest) (*ItemDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceInventory, policy.ActionCreate)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}

	quantity := 0
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		quantity = *req.Quantity
	}

	price := decimal.Zero
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		price = *req.Price
	}

	item := &models.InventoryItem{
		Name:        name,
		Category:    category,
		Quantity:    quantity,
		Price:       price,
		Supplier:    req.Supplier,
		Description: req.Description,
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create inventory item")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceInventory, policy.ActionUpdate)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load inventory item")
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		updates["category"] = category
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		updates["quantity"] = *req.Quantity
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.Supplier != nil {
		updates["supplier"] = req.Supplier
	}
	if req.Description != nil {
		updates["description"] = req.Description
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update inventory item")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	decision := policy.Authorize(actor.Role, policy.ResourceInventory, policy.ActionDelete)
	if !decision.Allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, itemNotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete inventory item")
	}
	return nil
}
