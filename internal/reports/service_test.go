package reports

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rednammadhavi/laptopcare-erp/internal/policy"
	"github.com/rednammadhavi/laptopcare-erp/pkg/config"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
	pkgerrors "github.com/rednammadhavi/laptopcare-erp/pkg/errors"
)

func newTestSetup(t *testing.T) (Service, *db.Client) {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(
		&models.User{}, &models.Customer{}, &models.Job{}, &models.InventoryItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(ServiceParams{DB: client})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, client
}

func seedJob(t *testing.T, client *db.Client, customerID, technicianID, creatorID uuid.UUID, status enums.TicketStatus) {
	t.Helper()
	job := &models.Job{
		CustomerID:   customerID,
		TechnicianID: technicianID,
		DeviceType:   enums.DeviceTypeLaptop,
		Issue:        "diagnostics",
		Priority:     enums.PriorityMedium,
		Status:       status,
		CreatedByID:  creatorID,
	}
	if err := client.DB().Create(job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
}

func TestSummaryScenario(t *testing.T) {
	svc, client := newTestSetup(t)
	ctx := context.Background()

	admin := &models.User{Name: "Admin", Email: "admin@laptopcare.test", PasswordHash: "x", Role: enums.RoleAdmin}
	tech := &models.User{Name: "Tech", Email: "tech@laptopcare.test", PasswordHash: "x", Role: enums.RoleTechnician}
	for _, u := range []*models.User{admin, tech} {
		if err := client.DB().Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	customer := &models.Customer{
		Name:               "Ravi Kumar",
		ProblemDescription: "does not boot",
		DeviceType:         enums.DeviceTypeLaptop,
		Status:             enums.TicketStatusNew,
		Priority:           enums.PriorityMedium,
		CreatedByID:        admin.ID,
	}
	if err := client.DB().Create(customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	for i := 0; i < 6; i++ {
		seedJob(t, client, customer.ID, tech.ID, admin.ID, enums.TicketStatusCompleted)
	}
	for i := 0; i < 2; i++ {
		seedJob(t, client, customer.ID, tech.ID, admin.ID, enums.TicketStatusCancelled)
	}
	for i := 0; i < 2; i++ {
		seedJob(t, client, customer.ID, tech.ID, admin.ID, enums.TicketStatusInProgress)
	}

	items := []models.InventoryItem{
		{Name: "SSD 1TB", Category: "storage", Quantity: 10, Price: decimal.RequireFromString("89.00")},
		{Name: "Hinge set", Category: "parts", Quantity: 7, Price: decimal.RequireFromString("15.00")},
		{Name: "Thermal paste", Category: "consumables", Quantity: 2, Price: decimal.RequireFromString("4.99")},
	}
	for i := range items {
		if err := client.DB().Create(&items[i]).Error; err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	summary, err := svc.Summary(ctx, policy.Actor{UserID: admin.ID, Role: enums.RoleAdmin})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.TotalJobs != 10 {
		t.Fatalf("totalJobs: expected 10, got %d", summary.TotalJobs)
	}
	if summary.CompletedJobs != 6 {
		t.Fatalf("completedJobs: expected 6, got %d", summary.CompletedJobs)
	}
	if summary.PendingJobs != 2 {
		t.Fatalf("pendingJobs: expected 2, got %d", summary.PendingJobs)
	}
	if summary.TotalInventory != 3 {
		t.Fatalf("totalInventory: expected 3, got %d", summary.TotalInventory)
	}
	if summary.LowStock != 1 {
		t.Fatalf("lowStock: expected 1, got %d", summary.LowStock)
	}
	if summary.GeneratedAt.IsZero() {
		t.Fatal("generatedAt must be set")
	}
}

func TestSummaryEmptyDatabase(t *testing.T) {
	svc, _ := newTestSetup(t)

	summary, err := svc.Summary(context.Background(), policy.Actor{UserID: uuid.New(), Role: enums.RoleReceptionist})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalJobs != 0 || summary.CompletedJobs != 0 || summary.PendingJobs != 0 ||
		summary.TotalInventory != 0 || summary.LowStock != 0 {
		t.Fatalf("expected zeroed summary, got %+v", summary)
	}
}

func TestSummaryRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestSetup(t)

	_, err := svc.Summary(context.Background(), policy.Actor{UserID: uuid.New(), Role: enums.Role("intruder")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}
