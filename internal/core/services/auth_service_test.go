package services

import (
	"errors"
	"testing"

	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

func newAuthService(gdb *gorm.DB) *AuthService {
	return NewAuthService(
		repositories.NewUserRepository(gdb),
		repositories.NewRefreshTokenRepository(gdb),
		testConfig(),
	)
}

// TestRegister_ParentGetsTokens verifies that parent accounts are usable
// immediately after registration.
func TestRegister_ParentGetsTokens(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAuthService(gdb)

	result, err := svc.Register(ctx(), &RegisterInput{
		Username: "mom01",
		Email:    "mom01@test.local",
		Password: "password123",
		Role:     "parent",
		Phone:    "9876543210",
	})
	if err != nil {
		t.Fatalf("register parent: %v", err)
	}

	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("parent registration should return a token pair")
	}
	if !result.User.IsApproved {
		t.Error("parent should be approved immediately")
	}
}

// TestRegister_DoctorStartsUnapproved verifies the doctor gating: no tokens
// at registration and login blocked until an admin approves.
func TestRegister_DoctorStartsUnapproved(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAuthService(gdb)

	result, err := svc.Register(ctx(), &RegisterInput{
		Username:            "drwho",
		Email:               "drwho@test.local",
		Password:            "password123",
		Role:                "doctor",
		MedicalLicense:      "LIC-2001",
		HospitalAffiliation: "General Hospital",
		Specialization:      "Immunology",
		YearsOfExperience:   5,
	})
	if err != nil {
		t.Fatalf("register doctor: %v", err)
	}

	if result.AccessToken != "" || result.RefreshToken != "" {
		t.Error("unapproved doctor should not receive tokens")
	}
	if result.User.IsApproved {
		t.Error("doctor should start unapproved")
	}

	_, err = svc.Login(ctx(), &LoginInput{Identifier: "drwho", Password: "password123"})
	if !errors.Is(err, ErrDoctorPendingApproval) {
		t.Errorf("unapproved doctor login: got %v, want ErrDoctorPendingApproval", err)
	}
}

// TestRegister_RoleFieldValidation verifies role-required field checks.
func TestRegister_RoleFieldValidation(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAuthService(gdb)

	_, err := svc.Register(ctx(), &RegisterInput{
		Username: "nophone",
		Email:    "nophone@test.local",
		Password: "password123",
		Role:     "parent",
	})
	if !errors.Is(err, ErrMissingParentFields) {
		t.Errorf("parent without phone: got %v, want ErrMissingParentFields", err)
	}

	_, err = svc.Register(ctx(), &RegisterInput{
		Username: "nolicense",
		Email:    "nolicense@test.local",
		Password: "password123",
		Role:     "doctor",
	})
	if !errors.Is(err, ErrMissingDoctorFields) {
		t.Errorf("doctor without license: got %v, want ErrMissingDoctorFields", err)
	}

	_, err = svc.Register(ctx(), &RegisterInput{
		Username: "sneaky",
		Email:    "sneaky@test.local",
		Password: "password123",
		Role:     "admin",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("self-registered admin: got %v, want ErrInvalidRole", err)
	}

	_, err = svc.Register(ctx(), &RegisterInput{
		Username: "shortpw",
		Email:    "shortpw@test.local",
		Password: "abc123",
		Role:     "parent",
		Phone:    "9876543210",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Errorf("short password: got %v, want ErrWeakPassword", err)
	}
}

// TestRegister_DuplicateIdentity verifies the uniqueness checks.
func TestRegister_DuplicateIdentity(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAuthService(gdb)
	seedUser(t, gdb, "taken", models.RoleParent)

	_, err := svc.Register(ctx(), &RegisterInput{
		Username: "taken",
		Email:    "other@test.local",
		Password: "password123",
		Role:     "parent",
		Phone:    "1112223334",
	})
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("duplicate username: got %v, want ErrUserAlreadyExists", err)
	}

	_, err = svc.Register(ctx(), &RegisterInput{
		Username: "fresh",
		Email:    "taken@test.local",
		Password: "password123",
		Role:     "parent",
		Phone:    "1112223334",
	})
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("duplicate email: got %v, want ErrUserAlreadyExists", err)
	}
}

// TestLogin_ByUsernameAndEmail verifies the identifier accepts both forms.
func TestLogin_ByUsernameAndEmail(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAuthService(gdb)
	seedUser(t, gdb, "flexible", models.RoleParent)

	if _, err := svc.Login(ctx(), &LoginInput{Identifier: "flexible", Password: "password123"}); err != nil {
		t.Errorf("login by username: %v", err)
	}
	if _, err := svc.Login(ctx(), &LoginInput{Identifier: "flexible@test.local", Password: "password123"}); err != nil {
		t.Errorf("login by email: %v", err)
	}
}

// TestLogin_ErrorDistinctions verifies that bad credentials, deactivated
// accounts and unapproved doctors produce distinct errors.
func TestLogin_ErrorDistinctions(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAuthService(gdb)

	seedUser(t, gdb, "parent1", models.RoleParent)

	deactivated := seedUser(t, gdb, "locked", models.RoleParent)
	gdb.Model(deactivated).Update("is_active", false)

	pendingDoc := seedUser(t, gdb, "newdoc", models.RoleDoctor)
	gdb.Model(&models.DoctorProfile{}).Where("user_id = ?", pendingDoc.ID).Update("is_approved", false)

	_, err := svc.Login(ctx(), &LoginInput{Identifier: "parent1", Password: "wrongpass1"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}

	_, err = svc.Login(ctx(), &LoginInput{Identifier: "ghost", Password: "password123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", err)
	}

	_, err = svc.Login(ctx(), &LoginInput{Identifier: "locked", Password: "password123"})
	if !errors.Is(err, ErrAccountDeactivated) {
		t.Errorf("deactivated account: got %v, want ErrAccountDeactivated", err)
	}

	_, err = svc.Login(ctx(), &LoginInput{Identifier: "newdoc", Password: "password123"})
	if !errors.Is(err, ErrDoctorPendingApproval) {
		t.Errorf("pending doctor: got %v, want ErrDoctorPendingApproval", err)
	}
}

// TestRefreshToken_Rotation verifies that a used refresh token is revoked and
// cannot be replayed.
func TestRefreshToken_Rotation(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAuthService(gdb)
	seedUser(t, gdb, "rotator", models.RoleParent)

	login, err := svc.Login(ctx(), &LoginInput{Identifier: "rotator", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh should rotate the token")
	}

	// Replaying the old token must fail
	if _, err := svc.RefreshToken(ctx(), login.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("replayed token: got %v, want ErrTokenRevoked", err)
	}
}

// TestLogout_RevokesToken verifies logout kills the session.
func TestLogout_RevokesToken(t *testing.T) {
	gdb := openTestDB(t)
	svc := newAuthService(gdb)
	seedUser(t, gdb, "leaver", models.RoleParent)

	login, err := svc.Login(ctx(), &LoginInput{Identifier: "leaver", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx(), login.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.RefreshToken(ctx(), login.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("refresh after logout: got %v, want ErrTokenRevoked", err)
	}
}
