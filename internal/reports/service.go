package reports

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rednammadhavi/laptopcare-erp/internal/policy"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
	pkgerrors "github.com/rednammadhavi/laptopcare-erp/pkg/errors"
)

// lowStockThreshold is the quantity below which an item counts as low stock.
const lowStockThreshold = 5

// SummaryDTO is the shop-wide aggregate snapshot.
type SummaryDTO struct {
	TotalJobs      int64     `json:"totalJobs"`
	CompletedJobs  int64     `json:"completedJobs"`
	PendingJobs    int64     `json:"pendingJobs"`
	TotalInventory int64     `json:"totalInventory"`
	LowStock       int64     `json:"lowStock"`
	GeneratedAt    time.Time `json:"generatedAt"`
}

// Service computes aggregate reports.
type Service interface {
	Summary(ctx context.Context, actor policy.Actor) (*SummaryDTO, error)
}

// ServiceParams bundles the dependencies for the reports service.
type ServiceParams struct {
	DB *db.Client
}

type service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService constructs a reports service over the shared database client.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{db: params.DB.DB(), now: time.Now}, nil
}

// Summary recomputes the counters on every call; there is no caching layer.
func (s *service) Summary(ctx context.Context, actor policy.Actor) (*SummaryDTO, error) {
	decision := policy.Authorize(actor.Role, policy.ResourceReport, policy.ActionList)
	if !decision.Allowed {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}

	summary := &SummaryDTO{GeneratedAt: s.now().UTC()}
	jobs := s.db.WithContext(ctx).Model(&models.Job{})

	if err := jobs.Session(&gorm.Session{}).Count(&summary.TotalJobs).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count jobs")
	}
	if err := jobs.Session(&gorm.Session{}).
		Where("status = ?", enums.TicketStatusCompleted).
		Count(&summary.CompletedJobs).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count completed jobs")
	}
	if err := jobs.Session(&gorm.Session{}).
		Where("status NOT IN ?", []enums.TicketStatus{
			enums.TicketStatusCompleted,
			enums.TicketStatusCancelled,
		}).
		Count(&summary.PendingJobs).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count pending jobs")
	}

	items := s.db.WithContext(ctx).Model(&models.InventoryItem{})
	if err := items.Session(&gorm.Session{}).Count(&summary.TotalInventory).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count inventory")
	}
	if err := items.Session(&gorm.Session{}).
		Where("quantity < ?", lowStockThreshold).
		Count(&summary.LowStock).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count low stock")
	}

	return summary, nil
}
