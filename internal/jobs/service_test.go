package jobs

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rednammadhavi/laptopcare-erp/internal/policy"
	"github.com/rednammadhavi/laptopcare-erp/pkg/config"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db"
	"github.com/rednammadhavi/laptopcare-erp/pkg/db/models"
	"github.com/rednammadhavi/laptopcare-erp/pkg/enums"
	pkgerrors "github.com/rednammadhavi/laptopcare-erp/pkg/errors"
	"github.com/rednammadhavi/laptopcare-erp/pkg/pagination"
)

type fixture struct {
	svc          Service
	client       *db.Client
	admin        policy.Actor
	receptionist policy.Actor
	techOne      policy.Actor
	techTwo      policy.Actor
	customer     *models.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.User{}, &models.Customer{}, &models.Job{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(ServiceParams{DB: client})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	f := &fixture{svc: svc, client: client}
	f.admin = f.seedUser(t, "Admin", "admin@laptopcare.test", enums.RoleAdmin)
	f.receptionist = f.seedUser(t, "Front Desk", "desk@laptopcare.test", enums.RoleReceptionist)
	f.techOne = f.seedUser(t, "Tech One", "tech1@laptopcare.test", enums.RoleTechnician)
	f.techTwo = f.seedUser(t, "Tech Two", "tech2@laptopcare.test", enums.RoleTechnician)

	customer := &models.Customer{
		Name:               "Ravi Kumar",
		ProblemDescription: "does not boot",
		DeviceType:         enums.DeviceTypeLaptop,
		Status:             enums.TicketStatusNew,
		Priority:           enums.PriorityMedium,
		CreatedByID:        f.admin.UserID,
	}
	if err := client.DB().Create(customer).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	f.customer = customer
	return f
}

func (f *fixture) seedUser(t *testing.T, name, email string, role enums.Role) policy.Actor {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
	}
	if err := f.client.DB().Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return policy.Actor{UserID: user.ID, Role: role}
}

func (f *fixture) createJob(t *testing.T, actor policy.Actor, technician policy.Actor, issue string) *JobDTO {
	t.Helper()
	dto, err := f.svc.Create(context.Background(), actor, CreateJobRequest{
		Customer:   f.customer.ID.String(),
		Technician: technician.UserID.String(),
		Issue:      issue,
	})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return dto
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateExpandsRelations(t *testing.T) {
	f := newFixture(t)

	dto := f.createJob(t, f.admin, f.techOne, "no power")
	if dto.Customer == nil || dto.Customer.ID != f.customer.ID || dto.Customer.Name != "Ravi Kumar" {
		t.Fatalf("expected customer expansion, got %+v", dto.Customer)
	}
	if dto.Technician == nil || dto.Technician.ID != f.techOne.UserID {
		t.Fatalf("expected technician expansion, got %+v", dto.Technician)
	}
	if dto.Technician.Email != "tech1@laptopcare.test" {
		t.Fatalf("technician expansion should carry email, got %q", dto.Technician.Email)
	}
	if dto.CreatedByID != f.admin.UserID {
		t.Fatal("created_by must come from the requester")
	}
}

func TestCreateRejectsNonTechnicianAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.admin, CreateJobRequest{
		Customer:   f.customer.ID.String(),
		Technician: f.receptionist.UserID.String(),
		Issue:      "no power",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if typed.Message() != "invalid technician" {
		t.Fatalf("unexpected message %q", typed.Message())
	}

	var count int64
	if err := f.client.DB().Model(&models.Job{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected create must persist nothing, found %d rows", count)
	}
}

func TestCreateRejectsUnknownCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, CreateJobRequest{
		Customer:   "3f1f9d2c-0000-0000-0000-000000000000",
		Technician: f.techOne.UserID.String(),
		Issue:      "no power",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if typed.Message() != "invalid customer" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestCreateRejectsNegativeCost(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, CreateJobRequest{
		Customer:      f.customer.ID.String(),
		Technician:    f.techOne.UserID.String(),
		Issue:         "no power",
		EstimatedCost: decPtr("-10.00"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestReceptionistMayCreateButNotMutate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.svc.Create(ctx, f.receptionist, CreateJobRequest{
		Customer:   f.customer.ID.String(),
		Technician: f.techOne.UserID.String(),
		Issue:      "cracked screen",
	})
	if err != nil {
		t.Fatalf("receptionist create: %v", err)
	}

	_, err = f.svc.Update(ctx, f.receptionist, dto.ID, UpdateJobRequest{Status: strPtr("Diagnosing")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("receptionist update should be forbidden, got %v", err)
	}

	err = f.svc.Delete(ctx, f.receptionist, dto.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("receptionist delete should be forbidden, got %v", err)
	}
}

func TestTechnicianScopedVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.createJob(t, f.admin, f.techOne, "battery swap")
	foreign := f.createJob(t, f.admin, f.techTwo, "fan cleaning")

	list, err := f.svc.List(ctx, f.techOne, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Jobs) != 1 || list.Jobs[0].ID != mine.ID {
		t.Fatalf("technician list must only contain own jobs, got %d", len(list.Jobs))
	}

	my, err := f.svc.MyJobs(ctx, f.techOne, pagination.Params{})
	if err != nil {
		t.Fatalf("my jobs: %v", err)
	}
	if len(my.Jobs) != 1 || my.Jobs[0].ID != mine.ID {
		t.Fatalf("my-jobs must only contain own jobs, got %d", len(my.Jobs))
	}

	if _, err := f.svc.Get(ctx, f.techOne, foreign.ID); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign job must read as not found, got %v", err)
	}

	if _, err := f.svc.Update(ctx, f.techOne, foreign.ID, UpdateJobRequest{
		Status: strPtr("Completed"),
	}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign job must not be updatable, got %v", err)
	}
}

func TestTechnicianUpdateWhitelist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto := f.createJob(t, f.admin, f.techOne, "no display")

	updated, err := f.svc.Update(ctx, f.techOne, dto.ID, UpdateJobRequest{
		Status:             strPtr("In Progress"),
		ProblemDescription: strPtr("backlight fuse blown"),
		ActualCost:         decPtr("42.50"),
		Technician:         strPtr(f.techTwo.UserID.String()),
		Priority:           strPtr("Urgent"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Status != enums.TicketStatusInProgress {
		t.Fatalf("status should apply, got %q", updated.Status)
	}
	if updated.ProblemDescription == nil || *updated.ProblemDescription != "backlight fuse blown" {
		t.Fatal("problemDescription should apply")
	}
	if updated.ActualCost == nil || !updated.ActualCost.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("actualCost should apply, got %v", updated.ActualCost)
	}
	if updated.Technician == nil || updated.Technician.ID != f.techOne.UserID {
		t.Fatal("reassignment must be stripped for technicians")
	}
	if updated.Priority != enums.PriorityMedium {
		t.Fatalf("priority must be stripped, got %q", updated.Priority)
	}
}

func TestAdminReassignsTechnician(t *testing.T) {
	f := newFixture(t)

	dto := f.createJob(t, f.admin, f.techOne, "water damage")

	updated, err := f.svc.Update(context.Background(), f.admin, dto.ID, UpdateJobRequest{
		Technician: strPtr(f.techTwo.UserID.String()),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Technician == nil || updated.Technician.ID != f.techTwo.UserID {
		t.Fatalf("expected reassignment, got %+v", updated.Technician)
	}
}

func TestDeleteThenNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto := f.createJob(t, f.admin, f.techOne, "bios corrupt")
	if err := f.svc.Delete(ctx, f.admin, dto.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.admin, dto.ID); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND after delete, got %v", err)
	}
}
