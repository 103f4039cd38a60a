package services

import (
	"errors"
	"testing"

	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

func newAdminService(gdb *gorm.DB) *AdminService {
	return NewAdminService(repositories.NewUserRepository(gdb))
}

func seedPendingDoctor(t *testing.T, gdb *gorm.DB, username string) *models.User {
	t.Helper()
	doc := seedUser(t, gdb, username, models.RoleDoctor)
	gdb.Model(&models.DoctorProfile{}).Where("user_id = ?", doc.ID).Update("is_approved", false)
	return doc
}

// TestApproveDoctor verifies the full gate: approval stamps the reviewer and
// unlocks login.
func TestApproveDoctor(t *testing.T) {
	gdb := openTestDB(t)
	adminSvc := newAdminService(gdb)
	authSvc := newAuthService(gdb)

	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	doc := seedPendingDoctor(t, gdb, "pendingdoc")

	approved, err := adminSvc.ApproveDoctor(ctx(), doc.ID, admin.ID, &ApproveDoctorInput{Notes: "credentials verified"})
	if err != nil {
		t.Fatalf("approve doctor: %v", err)
	}
	if !approved.IsApproved {
		t.Error("doctor should be approved after review")
	}

	var profile models.DoctorProfile
	gdb.Where("user_id = ?", doc.ID).First(&profile)
	if profile.ApprovedBy == nil || *profile.ApprovedBy != admin.ID {
		t.Error("approval should record the reviewing admin")
	}
	if profile.ApprovedAt == nil {
		t.Error("approval should record the review time")
	}

	// Approved doctor can now log in
	if _, err := authSvc.Login(ctx(), &LoginInput{Identifier: "pendingdoc", Password: "password123"}); err != nil {
		t.Errorf("approved doctor login: %v", err)
	}
}

// TestApproveDoctor_AlreadyApproved verifies the review is one-shot.
func TestApproveDoctor_AlreadyApproved(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAdminService(gdb)

	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	doc := seedUser(t, gdb, "approveddoc", models.RoleDoctor) // seeded approved

	_, err := svc.ApproveDoctor(ctx(), doc.ID, admin.ID, &ApproveDoctorInput{})
	if !errors.Is(err, ErrDoctorAlreadyApproved) {
		t.Errorf("re-approve: got %v, want ErrDoctorAlreadyApproved", err)
	}
}

// TestRejectDoctor verifies that rejection records the reason and deactivates
// the account so it cannot log in.
func TestRejectDoctor(t *testing.T) {
	gdb := openTestDB(t)
	adminSvc := newAdminService(gdb)
	authSvc := newAuthService(gdb)

	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	doc := seedPendingDoctor(t, gdb, "baddoc")

	rejected, err := adminSvc.RejectDoctor(ctx(), doc.ID, admin.ID, &RejectDoctorInput{Reason: "license could not be verified"})
	if err != nil {
		t.Fatalf("reject doctor: %v", err)
	}
	if rejected.IsActive {
		t.Error("rejected doctor should be deactivated")
	}

	var profile models.DoctorProfile
	gdb.Where("user_id = ?", doc.ID).First(&profile)
	if profile.RejectionReason != "license could not be verified" {
		t.Errorf("rejection reason not recorded: %q", profile.RejectionReason)
	}

	// Deactivation wins over the approval check at login
	_, err = authSvc.Login(ctx(), &LoginInput{Identifier: "baddoc", Password: "password123"})
	if !errors.Is(err, ErrAccountDeactivated) {
		t.Errorf("rejected doctor login: got %v, want ErrAccountDeactivated", err)
	}
}

// TestRejectDoctor_RequiresReason verifies the reason is mandatory.
func TestRejectDoctor_RequiresReason(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAdminService(gdb)

	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	doc := seedPendingDoctor(t, gdb, "somedoc")

	_, err := svc.RejectDoctor(ctx(), doc.ID, admin.ID, &RejectDoctorInput{})
	if !errors.Is(err, ErrRejectionReasonNeeded) {
		t.Errorf("reject without reason: got %v, want ErrRejectionReasonNeeded", err)
	}
}

// TestApproveDoctor_NotADoctor verifies role checking on review targets.
func TestApproveDoctor_NotADoctor(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAdminService(gdb)

	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	parent := seedUser(t, gdb, "justmom", models.RoleParent)

	_, err := svc.ApproveDoctor(ctx(), parent.ID, admin.ID, &ApproveDoctorInput{})
	if !errors.Is(err, ErrNotADoctor) {
		t.Errorf("approve a parent: got %v, want ErrNotADoctor", err)
	}
}

// TestListPendingDoctors verifies the review queue only contains active,
// unapproved doctors.
func TestListPendingDoctors(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAdminService(gdb)

	seedUser(t, gdb, "approved1", models.RoleDoctor)
	seedPendingDoctor(t, gdb, "waiting1")
	seedPendingDoctor(t, gdb, "waiting2")
	seedUser(t, gdb, "mom", models.RoleParent)

	pending, err := svc.ListPendingDoctors(ctx())
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending count: got %d, want 2", len(pending))
	}
}

// TestDeactivateUser covers the deactivation guards.
func TestDeactivateUser(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAdminService(gdb)

	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	parent := seedUser(t, gdb, "target", models.RoleParent)

	// Admin accounts are protected
	_, err := svc.DeactivateUser(ctx(), admin.ID, admin.ID, &DeactivateUserInput{})
	if !errors.Is(err, ErrCannotDeactivateAdmin) {
		t.Errorf("deactivate admin: got %v, want ErrCannotDeactivateAdmin", err)
	}

	deactivated, err := svc.DeactivateUser(ctx(), parent.ID, admin.ID, &DeactivateUserInput{Reason: "abuse"})
	if err != nil {
		t.Fatalf("deactivate parent: %v", err)
	}
	if deactivated.IsActive {
		t.Error("user should be inactive after deactivation")
	}

	// Double deactivation fails
	_, err = svc.DeactivateUser(ctx(), parent.ID, admin.ID, &DeactivateUserInput{})
	if !errors.Is(err, ErrUserAlreadyInactive) {
		t.Errorf("double deactivation: got %v, want ErrUserAlreadyInactive", err)
	}

	// Reactivation restores the account
	restored, err := svc.ReactivateUser(ctx(), parent.ID, admin.ID)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if !restored.IsActive {
		t.Error("user should be active after reactivation")
	}

	_, err = svc.ReactivateUser(ctx(), parent.ID, admin.ID)
	if !errors.Is(err, ErrUserAlreadyActive) {
		t.Errorf("double reactivation: got %v, want ErrUserAlreadyActive", err)
	}
}
