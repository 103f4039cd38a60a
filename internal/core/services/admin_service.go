package services

import (
	"context"
	"errors"
	"log"
	"time"

	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Admin errors
var (
	ErrNotADoctor            = errors.New("user is not a doctor")
	ErrDoctorAlreadyApproved = errors.New("doctor is already approved")
	ErrRejectionReasonNeeded = errors.New("rejection reason is required")
	ErrCannotDeactivateAdmin = errors.New("admin accounts cannot be deactivated")
	ErrUserAlreadyInactive   = errors.New("user is already deactivated")
	ErrUserAlreadyActive     = errors.New("user is already active")
)

// AdminService handles doctor review and account administration
type AdminService struct {
	userRepo repositories.UserRepository
}

// NewAdminService creates a new admin service
func NewAdminService(userRepo repositories.UserRepository) *AdminService {
	return &AdminService{userRepo: userRepo}
}

// ApproveDoctorInput carries optional notes recorded with the approval
type ApproveDoctorInput struct {
	Notes string `json:"notes,omitempty"`
}

// RejectDoctorInput carries the mandatory rejection reason
type RejectDoctorInput struct {
	Reason string `json:"reason" validate:"required"`
}

// DeactivateUserInput carries the deactivation reason
type DeactivateUserInput struct {
	Reason string `json:"reason,omitempty"`
}

// ApproveDoctor marks a doctor account as approved so it can log in
func (s *AdminService) ApproveDoctor(ctx context.Context, doctorID, adminID uint, input *ApproveDoctorInput) (*models.UserResponse, error) {
	user, err := s.getDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	if user.DoctorProfile.IsApproved {
		return nil, ErrDoctorAlreadyApproved
	}

	now := time.Now()
	profile := user.DoctorProfile
	profile.IsApproved = true
	profile.ApprovedBy = &adminID
	profile.ApprovedAt = &now
	profile.ApprovalNotes = input.Notes
	profile.RejectionReason = ""

	if err := s.userRepo.UpdateDoctorProfile(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("✅ Doctor approved: %s (by admin ID: %d)", user.Username, adminID)
	return user.ToResponse(), nil
}

// RejectDoctor records a rejection and deactivates the account. A rejected
// doctor cannot log in; the rejection reason is kept on the profile.
func (s *AdminService) RejectDoctor(ctx context.Context, doctorID, adminID uint, input *RejectDoctorInput) (*models.UserResponse, error) {
	if input.Reason == "" {
		return nil, ErrRejectionReasonNeeded
	}

	user, err := s.getDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	if user.DoctorProfile.IsApproved {
		return nil, ErrDoctorAlreadyApproved
	}

	now := time.Now()
	profile := user.DoctorProfile
	profile.IsApproved = false
	profile.ApprovedBy = &adminID
	profile.ApprovedAt = &now
	profile.RejectionReason = input.Reason

	if err := s.userRepo.UpdateDoctorProfile(ctx, profile); err != nil {
		return nil, err
	}

	user.IsActive = false
	user.DeactivationReason = input.Reason
	user.DeactivatedBy = &adminID
	user.DeactivatedAt = &now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("❌ Doctor rejected: %s (by admin ID: %d)", user.Username, adminID)
	return user.ToResponse(), nil
}

// ListDoctors lists doctor accounts, optionally filtered by approval state
func (s *AdminService) ListDoctors(ctx context.Context, approved *bool) ([]*models.UserResponse, error) {
	doctors, err := s.userRepo.ListDoctors(ctx, approved)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(doctors))
	for _, d := range doctors {
		responses = append(responses, d.ToResponse())
	}
	return responses, nil
}

// ListPendingDoctors lists doctors awaiting review
func (s *AdminService) ListPendingDoctors(ctx context.Context) ([]*models.UserResponse, error) {
	pending := false
	return s.ListDoctors(ctx, &pending)
}

// ListUsers lists all accounts with pagination
func (s *AdminService) ListUsers(ctx context.Context, offset, limit int) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, total, nil
}

// DeactivateUser disables an account. Admin accounts are protected.
func (s *AdminService) DeactivateUser(ctx context.Context, userID, adminID uint, input *DeactivateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Role == models.RoleAdmin {
		return nil, ErrCannotDeactivateAdmin
	}
	if !user.IsActive {
		return nil, ErrUserAlreadyInactive
	}

	now := time.Now()
	user.IsActive = false
	user.DeactivationReason = input.Reason
	user.DeactivatedBy = &adminID
	user.DeactivatedAt = &now

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("🔒 User deactivated: %s (by admin ID: %d)", user.Username, adminID)
	return user.ToResponse(), nil
}

// ReactivateUser re-enables a previously deactivated account
func (s *AdminService) ReactivateUser(ctx context.Context, userID, adminID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.IsActive {
		return nil, ErrUserAlreadyActive
	}

	user.IsActive = true
	user.DeactivationReason = ""
	user.DeactivatedBy = nil
	user.DeactivatedAt = nil

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("🔓 User reactivated: %s (by admin ID: %d)", user.Username, adminID)
	return user.ToResponse(), nil
}

// getDoctor loads a doctor account with its profile
func (s *AdminService) getDoctor(ctx context.Context, doctorID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Role != models.RoleDoctor || user.DoctorProfile == nil {
		return nil, ErrNotADoctor
	}

	return user, nil
}
