package customers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

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

	if err := client.DB().AutoMigrate(&models.User{}, &models.Customer{}); err != nil {
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

func (f *fixture) createTicket(t *testing.T, actor policy.Actor, req CreateCustomerRequest) *CustomerDTO {
	t.Helper()
	dto, err := f.svc.Create(context.Background(), actor, req)
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return dto
}

func strPtr(s string) *string { return &s }

func TestCreateAppliesDefaults(t *testing.T) {
	f := newFixture(t)

	dto := f.createTicket(t, f.receptionist, CreateCustomerRequest{
		Name:               "Ravi Kumar",
		ProblemDescription: "does not boot",
	})

	if dto.Status != enums.TicketStatusNew {
		t.Fatalf("expected default status New, got %q", dto.Status)
	}
	if dto.DeviceType != enums.DeviceTypeLaptop {
		t.Fatalf("expected default device type Laptop, got %q", dto.DeviceType)
	}
	if dto.Priority != enums.PriorityMedium {
		t.Fatalf("expected default priority Medium, got %q", dto.Priority)
	}
	if dto.CreatedByID != f.receptionist.UserID {
		t.Fatal("created_by must come from the requester")
	}
}

func TestReceptionistCannotCreateWithNonIntakeStatus(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.receptionist, CreateCustomerRequest{
		Name:               "Ravi Kumar",
		ProblemDescription: "cracked hinge",
		Status:             strPtr("Ready for Pickup"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}

	// nothing persisted
	list, err := f.svc.List(context.Background(), f.admin, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Customers) != 0 {
		t.Fatalf("rejected create must not persist, found %d rows", len(list.Customers))
	}
}

func TestAdminMayCreateWithAnyStatus(t *testing.T) {
	f := newFixture(t)

	dto := f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:               "Ravi Kumar",
		ProblemDescription: "screen flicker",
		Status:             strPtr("In Progress"),
	})
	if dto.Status != enums.TicketStatusInProgress {
		t.Fatalf("expected In Progress, got %q", dto.Status)
	}
}

func TestCreateRejectsNonTechnicianReference(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, CreateCustomerRequest{
		Name:                "Ravi Kumar",
		ProblemDescription:  "no wifi",
		PreferredTechnician: strPtr(f.receptionist.UserID.String()),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	if typed.Message() != "invalid technician" {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestCreateRejectsUnknownTechnicianID(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, CreateCustomerRequest{
		Name:                "Ravi Kumar",
		ProblemDescription:  "no wifi",
		PreferredTechnician: strPtr(uuid.NewString()),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestCreateExpandsPreferredTechnician(t *testing.T) {
	f := newFixture(t)

	dto := f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:                "Ravi Kumar",
		ProblemDescription:  "keyboard dead",
		PreferredTechnician: strPtr(f.techOne.UserID.String()),
	})
	if dto.PreferredTechnician == nil {
		t.Fatal("expected technician expansion")
	}
	if dto.PreferredTechnician.ID != f.techOne.UserID {
		t.Fatalf("wrong technician %s", dto.PreferredTechnician.ID)
	}
	if dto.PreferredTechnician.Name != "Tech One" {
		t.Fatalf("unexpected technician name %q", dto.PreferredTechnician.Name)
	}
}

func TestReceptionistUpdateStripsNonWhitelistedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto := f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:                "Ravi Kumar",
		ProblemDescription:  "slow boot",
		Status:              strPtr("Diagnosing"),
		Priority:            strPtr("High"),
		PreferredTechnician: strPtr(f.techOne.UserID.String()),
	})

	updated, err := f.svc.Update(ctx, f.receptionist, dto.ID, UpdateCustomerRequest{
		Name:                strPtr("Ravi K."),
		Status:              strPtr("Completed"),
		Priority:            strPtr("Urgent"),
		PreferredTechnician: strPtr(f.techTwo.UserID.String()),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Name != "Ravi K." {
		t.Fatalf("whitelisted field should apply, got %q", updated.Name)
	}
	if updated.Status != enums.TicketStatusDiagnosing {
		t.Fatalf("status must be stripped, got %q", updated.Status)
	}
	if updated.Priority != enums.PriorityHigh {
		t.Fatalf("priority must be stripped, got %q", updated.Priority)
	}
	if updated.PreferredTechnician == nil || updated.PreferredTechnician.ID != f.techOne.UserID {
		t.Fatal("preferredTechnician must be stripped")
	}
}

func TestTechnicianScopedVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:                "Mine",
		ProblemDescription:  "battery",
		PreferredTechnician: strPtr(f.techOne.UserID.String()),
	})
	foreign := f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:                "Foreign",
		ProblemDescription:  "fan noise",
		PreferredTechnician: strPtr(f.techTwo.UserID.String()),
	})
	f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:               "Unassigned",
		ProblemDescription: "no charge",
	})

	list, err := f.svc.List(ctx, f.techOne, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Customers) != 1 || list.Customers[0].ID != mine.ID {
		t.Fatalf("technician list must only contain own rows, got %d", len(list.Customers))
	}

	if _, err := f.svc.Get(ctx, f.techOne, foreign.ID); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign row must read as not found, got %v", err)
	}

	if _, err := f.svc.Update(ctx, f.techOne, foreign.ID, UpdateCustomerRequest{
		Status: strPtr("Completed"),
	}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign row must not be updatable, got %v", err)
	}
}

func TestTechnicianUpdateWhitelist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto := f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:                "Ravi Kumar",
		ProblemDescription:  "bad ram",
		PreferredTechnician: strPtr(f.techOne.UserID.String()),
	})

	updated, err := f.svc.Update(ctx, f.techOne, dto.ID, UpdateCustomerRequest{
		Status: strPtr("In Progress"),
		Notes:  strPtr("ordered replacement stick"),
		Name:   strPtr("Hijacked"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != enums.TicketStatusInProgress {
		t.Fatalf("status should apply, got %q", updated.Status)
	}
	if updated.Notes == nil || *updated.Notes != "ordered replacement stick" {
		t.Fatal("notes should apply")
	}
	if updated.Name != "Ravi Kumar" {
		t.Fatalf("name must be stripped for technicians, got %q", updated.Name)
	}
}

func TestUpdateClearsTechnicianWithEmptyString(t *testing.T) {
	f := newFixture(t)

	dto := f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:                "Ravi Kumar",
		ProblemDescription:  "hdd click",
		PreferredTechnician: strPtr(f.techOne.UserID.String()),
	})

	updated, err := f.svc.Update(context.Background(), f.admin, dto.ID, UpdateCustomerRequest{
		PreferredTechnician: strPtr(""),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PreferredTechnician != nil {
		t.Fatal("empty string should clear the assignment")
	}
}

func TestDeletePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto := f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:               "Ravi Kumar",
		ProblemDescription: "coffee spill",
	})

	err := f.svc.Delete(ctx, f.receptionist, dto.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("receptionist delete should be forbidden, got %v", err)
	}

	if err := f.svc.Delete(ctx, f.admin, dto.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, f.admin, dto.ID); pkgerrors.As(err) == nil ||
		pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND after delete, got %v", err)
	}

	err = f.svc.Delete(ctx, f.admin, dto.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("double delete should be NOT_FOUND, got %v", err)
	}
}

func TestListPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 5; i++ {
		dto := f.createTicket(t, f.admin, CreateCustomerRequest{
			Name:               fmt.Sprintf("Customer %d", i),
			ProblemDescription: "misc",
		})
		seen[dto.ID] = false
	}

	page1, err := f.svc.List(ctx, f.admin, pagination.Params{Limit: 3})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page1.Customers) != 3 || page1.NextCursor == "" {
		t.Fatalf("expected 3 rows and a cursor, got %d %q", len(page1.Customers), page1.NextCursor)
	}

	page2, err := f.svc.List(ctx, f.admin, pagination.Params{Limit: 3, Cursor: page1.NextCursor})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2.Customers) != 2 || page2.NextCursor != "" {
		t.Fatalf("expected 2 rows and no cursor, got %d %q", len(page2.Customers), page2.NextCursor)
	}

	for _, c := range append(page1.Customers, page2.Customers...) {
		if done, ok := seen[c.ID]; !ok || done {
			t.Fatalf("row %s duplicated or unknown", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestListRejectsMalformedCursor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background(), f.admin, pagination.Params{Cursor: "!!!"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
}

func TestMyCustomersFiltersToRequester(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:                "Mine",
		ProblemDescription:  "gpu artifacts",
		PreferredTechnician: strPtr(f.techOne.UserID.String()),
	})
	f.createTicket(t, f.admin, CreateCustomerRequest{
		Name:                "Foreign",
		ProblemDescription:  "dead pixel",
		PreferredTechnician: strPtr(f.techTwo.UserID.String()),
	})

	list, err := f.svc.MyCustomers(ctx, f.techOne, pagination.Params{})
	if err != nil {
		t.Fatalf("my customers: %v", err)
	}
	if len(list.Customers) != 1 || list.Customers[0].ID != mine.ID {
		t.Fatalf("expected only own rows, got %d", len(list.Customers))
	}
}

func TestListTechnicians(t *testing.T) {
	f := newFixture(t)

	technicians, err := f.svc.ListTechnicians(context.Background(), f.receptionist)
	if err != nil {
		t.Fatalf("list technicians: %v", err)
	}
	if len(technicians) != 2 {
		t.Fatalf("expected 2 technicians, got %d", len(technicians))
	}
	if technicians[0].Name != "Tech One" || technicians[1].Name != "Tech Two" {
		t.Fatalf("expected name ordering, got %q %q", technicians[0].Name, technicians[1].Name)
	}
}
