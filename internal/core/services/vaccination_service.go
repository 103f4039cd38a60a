package services

import (
	"context"
	"errors"
	"log"
	"time"

	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/adapters/persistence/repositories"
	"vaccitrack/internal/core/domain"

	"gorm.io/gorm"
)

// Vaccination request errors
var (
	ErrRequestNotFound      = errors.New("vaccination request not found")
	ErrEntryNotFound        = errors.New("schedule entry not found")
	ErrEntryCompleted       = errors.New("this vaccination is already completed")
	ErrDuplicateRequest     = errors.New("a completion request for this vaccination is already pending")
	ErrAlreadyReviewed      = errors.New("this request has already been reviewed")
	ErrNotRequestOwner      = errors.New("you do not have access to this request")
	ErrReviewReasonRequired = errors.New("rejection reason is required")
	ErrCompletionInFuture   = errors.New("completion date cannot be in the future")
)

// VaccinationService handles the completion request workflow: parents claim a
// dose was administered, doctors or admins confirm or reject the claim.
type VaccinationService struct {
	db          *gorm.DB
	childRepo   *repositories.ChildRepository
	requestRepo *repositories.VaccinationRequestRepository
}

// NewVaccinationService creates a new vaccination service
func NewVaccinationService(
	db *gorm.DB,
	childRepo *repositories.ChildRepository,
	requestRepo *repositories.VaccinationRequestRepository,
) *VaccinationService {
	return &VaccinationService{
		db:          db,
		childRepo:   childRepo,
		requestRepo: requestRepo,
	}
}

// RequestCompletionInput represents a parent's completion claim
type RequestCompletionInput struct {
	CompletionDate time.Time `json:"completion_date" validate:"required"`
	Notes          string    `json:"notes,omitempty"`
	Attachment     string    `json:"attachment,omitempty"`
}

// ReviewInput represents a doctor's review decision details
type ReviewInput struct {
	Notes            string     `json:"notes,omitempty"`
	Reason           string     `json:"reason,omitempty"`
	AdministeredDate *time.Time `json:"administered_date,omitempty"`
	HospitalName     string     `json:"hospital_name,omitempty"`
	AdministeredBy   string     `json:"administered_by,omitempty"`
	BatchNumber      string     `json:"batch_number,omitempty"`
	Manufacturer     string     `json:"manufacturer,omitempty"`
}

// RequestCompletion files a completion claim for a schedule entry. The entry
// moves to pending_approval so it cannot be claimed twice. The request row is
// written before the entry flip so a reviewer always sees the claim.
func (s *VaccinationService) RequestCompletion(ctx context.Context, actor Actor, childID, entryID uint, input *RequestCompletionInput) (*models.VaccinationRequest, error) {
	child, err := s.childRepo.GetByID(ctx, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		return nil, err
	}

	// Only the owning parent can file a claim
	if actor.Role != models.RoleParent || child.ParentID != actor.UserID {
		return nil, ErrNotChildOwner
	}

	entry, err := s.childRepo.GetEntry(ctx, childID, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	switch entry.Status {
	case models.EntryStatusCompleted:
		return nil, ErrEntryCompleted
	case models.EntryStatusPendingApproval:
		return nil, ErrDuplicateRequest
	}

	now := time.Now()
	if input.CompletionDate.After(now) {
		return nil, ErrCompletionInFuture
	}

	request := &models.VaccinationRequest{
		ChildID:                 childID,
		ScheduleEntryID:         entryID,
		ParentID:                actor.UserID,
		VaccineName:             entry.VaccineName,
		ScheduledDate:           entry.DueDate,
		RequestedCompletionDate: input.CompletionDate,
		ParentNotes:             input.Notes,
		Attachment:              input.Attachment,
		Status:                  models.RequestStatusPending,
		RequestedAt:             now,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	entryUpdates := map[string]interface{}{
		"status":       models.EntryStatusPendingApproval,
		"parent_notes": input.Notes,
		"requested_at": now,
	}
	if err := s.childRepo.UpdateEntry(ctx, entryID, entryUpdates); err != nil {
		return nil, domain.ErrPartialWrite
	}

	log.Printf("📋 Completion requested: %s for child ID %d (priority: %s)",
		entry.VaccineName, childID, request.Priority)

	return request, nil
}

// Approve confirms a completion claim. The request resolution and the entry
// completion are committed atomically; a failure on either side rolls back
// both writes.
func (s *VaccinationService) Approve(ctx context.Context, actor Actor, requestID uint, input *ReviewInput) (*models.VaccinationRequest, error) {
	request, err := s.getReviewable(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	administered := request.RequestedCompletionDate
	if input.AdministeredDate != nil {
		administered = *input.AdministeredDate
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requestUpdates := map[string]interface{}{
			"status":          models.RequestStatusApproved,
			"reviewed_by":     actor.UserID,
			"reviewed_at":     now,
			"completed_at":    administered,
			"doctor_notes":    input.Notes,
			"hospital_name":   input.HospitalName,
			"administered_by": input.AdministeredBy,
			"batch_number":    input.BatchNumber,
			"manufacturer":    input.Manufacturer,
		}
		if err := tx.Model(&models.VaccinationRequest{}).
			Where("id = ?", request.ID).
			Updates(requestUpdates).Error; err != nil {
			return err
		}

		entryUpdates := map[string]interface{}{
			"status":            models.EntryStatusCompleted,
			"administered_date": administered,
			"approved_by":       actor.UserID,
			"approved_at":       now,
			"doctor_notes":      input.Notes,
			"rejection_reason":  "",
		}
		if err := tx.Model(&models.ScheduleEntry{}).
			Where("id = ?", request.ScheduleEntryID).
			Updates(entryUpdates).Error; err != nil {
			return domain.ErrPartialWrite
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Request approved: %s for child ID %d (by user ID: %d)",
		request.VaccineName, request.ChildID, actor.UserID)

	return s.requestRepo.GetByID(ctx, request.ID)
}

// Reject declines a completion claim. The entry falls back to upcoming or
// overdue depending on its due date, so the dose can be claimed again.
func (s *VaccinationService) Reject(ctx context.Context, actor Actor, requestID uint, input *ReviewInput) (*models.VaccinationRequest, error) {
	if input.Reason == "" {
		return nil, ErrReviewReasonRequired
	}

	request, err := s.getReviewable(ctx, actor, requestID)
	if err != nil {
		return nil, err
	}

	entry, err := s.childRepo.GetEntry(ctx, request.ChildID, request.ScheduleEntryID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requestUpdates := map[string]interface{}{
			"status":           models.RequestStatusRejected,
			"reviewed_by":      actor.UserID,
			"reviewed_at":      now,
			"doctor_notes":     input.Notes,
			"rejection_reason": input.Reason,
		}
		if err := tx.Model(&models.VaccinationRequest{}).
			Where("id = ?", request.ID).
			Updates(requestUpdates).Error; err != nil {
			return err
		}

		entryUpdates := map[string]interface{}{
			"status":           entry.RevertedStatus(now),
			"rejection_reason": input.Reason,
			"doctor_notes":     input.Notes,
			"requested_at":     nil,
		}
		if err := tx.Model(&models.ScheduleEntry{}).
			Where("id = ?", request.ScheduleEntryID).
			Updates(entryUpdates).Error; err != nil {
			return domain.ErrPartialWrite
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("❌ Request rejected: %s for child ID %d (by user ID: %d)",
		request.VaccineName, request.ChildID, actor.UserID)

	return s.requestRepo.GetByID(ctx, request.ID)
}

// Cancel withdraws a pending claim. Only the filing parent can cancel, and
// the entry falls back to upcoming or overdue.
func (s *VaccinationService) Cancel(ctx context.Context, actor Actor, requestID uint) (*models.VaccinationRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if actor.Role != models.RoleParent || request.ParentID != actor.UserID {
		return nil, ErrNotRequestOwner
	}
	if request.IsTerminal() {
		return nil, ErrAlreadyReviewed
	}

	entry, err := s.childRepo.GetEntry(ctx, request.ChildID, request.ScheduleEntryID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VaccinationRequest{}).
			Where("id = ?", request.ID).
			Updates(map[string]interface{}{
				"status":      models.RequestStatusCancelled,
				"reviewed_at": now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ScheduleEntry{}).
			Where("id = ?", request.ScheduleEntryID).
			Updates(map[string]interface{}{
				"status":       entry.RevertedStatus(now),
				"requested_at": nil,
			}).Error; err != nil {
			return domain.ErrPartialWrite
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("↩️ Request cancelled: %s for child ID %d", request.VaccineName, request.ChildID)

	return s.requestRepo.GetByID(ctx, request.ID)
}

// GetRequest returns a single request, enforcing ownership for parents
func (s *VaccinationService) GetRequest(ctx context.Context, actor Actor, requestID uint) (*models.VaccinationRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if !actor.CanReadAllChildren() && request.ParentID != actor.UserID {
		return nil, ErrNotRequestOwner
	}

	return request, nil
}

// ListPending lists the review queue: highest priority first, then oldest
func (s *VaccinationService) ListPending(ctx context.Context) ([]*models.VaccinationRequest, error) {
	return s.requestRepo.ListPending(ctx)
}

// ListRequests lists requests with optional status/priority filters
func (s *VaccinationService) ListRequests(ctx context.Context, filter *repositories.ListFilter, offset, limit int) ([]*models.VaccinationRequest, int64, error) {
	return s.requestRepo.List(ctx, filter, offset, limit)
}

// ListParentRequests lists the calling parent's own requests
func (s *VaccinationService) ListParentRequests(ctx context.Context, actor Actor) ([]*models.VaccinationRequest, error) {
	return s.requestRepo.ListByParent(ctx, actor.UserID)
}

// ChildHistory lists all requests ever filed for a child
func (s *VaccinationService) ChildHistory(ctx context.Context, actor Actor, childID uint) ([]*models.VaccinationRequest, error) {
	child, err := s.childRepo.GetByID(ctx, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		return nil, err
	}

	if !actor.CanReadAllChildren() && child.ParentID != actor.UserID {
		return nil, ErrNotChildOwner
	}

	return s.requestRepo.ListByChild(ctx, childID)
}

// getReviewable loads a request and checks it can still be reviewed
func (s *VaccinationService) getReviewable(ctx context.Context, actor Actor, requestID uint) (*models.VaccinationRequest, error) {
	if !actor.CanReadAllChildren() {
		return nil, ErrNotRequestOwner
	}

	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if request.IsTerminal() {
		return nil, ErrAlreadyReviewed
	}

	return request, nil
}
