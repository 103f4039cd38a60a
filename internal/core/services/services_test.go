package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/adapters/persistence/repositories"
	"vaccitrack/internal/config"
	"vaccitrack/internal/pkg/password"
)

// openTestDB returns an isolated in-file SQLite database in a temp directory.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dir := t.TempDir()
	dsn := filepath.Join(dir, "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := models.AutoMigrate(gdb); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

// testConfig returns a config with test JWT secrets and 7-day sessions.
func testConfig() *config.Config {
	return &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  10080,
			RefreshTokenDays: 7,
		},
	}
}

// seedUser creates an active user with a hashed password.
func seedUser(t *testing.T, gdb *gorm.DB, username, role string) *models.User {
	t.Helper()
	hashed, err := password.Hash("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@test.local",
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	switch role {
	case models.RoleParent:
		user.ParentProfile = &models.ParentProfile{Phone: "9876543210"}
	case models.RoleDoctor:
		user.DoctorProfile = &models.DoctorProfile{
			MedicalLicense:      "LIC-1001",
			HospitalAffiliation: "City Hospital",
			Specialization:      "Pediatrics",
			YearsOfExperience:   8,
			IsApproved:          true,
		}
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

// seedChild creates an active child with a generated schedule.
func seedChild(t *testing.T, gdb *gorm.DB, parentID uint, dob time.Time) *models.Child {
	t.Helper()
	child := &models.Child{
		Name:        "Test Child",
		DateOfBirth: dob,
		Gender:      models.GenderFemale,
		ParentID:    parentID,
		BloodGroup:  "O+",
		IsActive:    true,
		Schedule:    models.GenerateSchedule(0, dob, time.Now()),
	}
	if err := gdb.Create(child).Error; err != nil {
		t.Fatalf("seed child: %v", err)
	}
	return child
}

func newVaccinationService(gdb *gorm.DB) *VaccinationService {
	return NewVaccinationService(
		gdb,
		repositories.NewChildRepository(gdb),
		repositories.NewVaccinationRequestRepository(gdb),
	)
}

func ctx() context.Context {
	return context.Background()
}
