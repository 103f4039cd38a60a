package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Child errors
var (
	ErrChildNotFound     = errors.New("child not found")
	ErrNotChildOwner     = errors.New("you do not have access to this child")
	ErrParentsOnly       = errors.New("only parents can register children")
	ErrSearchQueryShort  = errors.New("search query must be at least 2 characters")
	ErrInvalidBirthDate  = errors.New("date of birth must be in the past")
	ErrInvalidChildInput = errors.New("name, date of birth and gender are required")
)

const searchResultLimit = 20

// Actor identifies the authenticated caller for permission checks
type Actor struct {
	UserID uint
	Role   string
}

// CanReadAllChildren reports whether the actor may read any child record
func (a Actor) CanReadAllChildren() bool {
	return a.Role == models.RoleDoctor || a.Role == models.RoleAdmin
}

// ChildService handles child records and their vaccination schedules
type ChildService struct {
	childRepo *repositories.ChildRepository
}

// NewChildService creates a new child service
func NewChildService(childRepo *repositories.ChildRepository) *ChildService {
	return &ChildService{childRepo: childRepo}
}

// CreateChildInput represents child registration input
type CreateChildInput struct {
	Name        string    `json:"name" validate:"required,min=1,max=100"`
	DateOfBirth time.Time `json:"date_of_birth" validate:"required"`
	Gender      string    `json:"gender" validate:"required,oneof=male female other"`

	BloodGroup        string  `json:"blood_group,omitempty"`
	BirthWeight       float64 `json:"birth_weight,omitempty"`
	BirthHeight       float64 `json:"birth_height,omitempty"`
	Allergies         string  `json:"allergies,omitempty"`
	MedicalConditions string  `json:"medical_conditions,omitempty"`
	SpecialNotes      string  `json:"special_notes,omitempty"`
}

// UpdateChildInput represents the mutable medical metadata of a child.
// Name, birth date and the generated schedule are immutable.
type UpdateChildInput struct {
	BloodGroup        *string `json:"blood_group,omitempty"`
	Allergies         *string `json:"allergies,omitempty"`
	MedicalConditions *string `json:"medical_conditions,omitempty"`
	SpecialNotes      *string `json:"special_notes,omitempty"`
}

// CreateChild registers a child under the calling parent and generates the
// full vaccination schedule from the fixed template. The schedule is created
// exactly once and never regenerated.
func (s *ChildService) CreateChild(ctx context.Context, actor Actor, input *CreateChildInput) (*models.Child, error) {
	if actor.Role != models.RoleParent {
		return nil, ErrParentsOnly
	}

	if strings.TrimSpace(input.Name) == "" || input.DateOfBirth.IsZero() || input.Gender == "" {
		return nil, ErrInvalidChildInput
	}

	now := time.Now()
	if input.DateOfBirth.After(now) {
		return nil, ErrInvalidBirthDate
	}

	child := &models.Child{
		Name:              strings.TrimSpace(input.Name),
		DateOfBirth:       input.DateOfBirth,
		Gender:            strings.ToLower(input.Gender),
		ParentID:          actor.UserID,
		BloodGroup:        input.BloodGroup,
		BirthWeight:       input.BirthWeight,
		BirthHeight:       input.BirthHeight,
		Allergies:         input.Allergies,
		MedicalConditions: input.MedicalConditions,
		SpecialNotes:      input.SpecialNotes,
		IsActive:          true,
	}
	if child.BloodGroup == "" {
		child.BloodGroup = "Unknown"
	}

	// Entries already past due at creation time start as overdue
	child.Schedule = models.GenerateSchedule(0, child.DateOfBirth, now)

	if err := s.childRepo.Create(ctx, child); err != nil {
		return nil, err
	}

	log.Printf("✅ Child registered: %s (parent ID: %d, %d doses scheduled)",
		child.Name, actor.UserID, len(child.Schedule))

	return child, nil
}

// GetChild returns a child with its schedule. Overdue statuses are refreshed
// lazily so callers always see current urgency, but only after the ownership
// check passes: a denied read must leave no writes behind.
func (s *ChildService) GetChild(ctx context.Context, actor Actor, childID uint) (*models.Child, error) {
	child, err := s.childRepo.GetByID(ctx, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		return nil, err
	}

	if err := s.authorize(actor, child); err != nil {
		return nil, err
	}

	if err := s.childRepo.MarkOverdue(ctx, childID, time.Now()); err != nil {
		return nil, err
	}

	child, err = s.childRepo.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}

	return child, nil
}

// ListChildren lists children visible to the actor: parents see their own,
// doctors and admins see all.
func (s *ChildService) ListChildren(ctx context.Context, actor Actor) ([]*models.Child, error) {
	if err := s.childRepo.MarkAllOverdue(ctx, time.Now()); err != nil {
		return nil, err
	}

	if actor.CanReadAllChildren() {
		return s.childRepo.ListAll(ctx)
	}
	return s.childRepo.ListByParent(ctx, actor.UserID)
}

// UpdateChild updates a child's medical metadata
func (s *ChildService) UpdateChild(ctx context.Context, actor Actor, childID uint, input *UpdateChildInput) (*models.Child, error) {
	child, err := s.GetChild(ctx, actor, childID)
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleDoctor {
		return nil, ErrNotChildOwner
	}

	if input.BloodGroup != nil {
		child.BloodGroup = *input.BloodGroup
	}
	if input.Allergies != nil {
		child.Allergies = *input.Allergies
	}
	if input.MedicalConditions != nil {
		child.MedicalConditions = *input.MedicalConditions
	}
	if input.SpecialNotes != nil {
		child.SpecialNotes = *input.SpecialNotes
	}

	if err := s.childRepo.Update(ctx, child); err != nil {
		return nil, err
	}

	return child, nil
}

// DeleteChild soft-deletes a child record. The schedule rows remain for
// history but the child disappears from all listings.
func (s *ChildService) DeleteChild(ctx context.Context, actor Actor, childID uint) error {
	child, err := s.GetChild(ctx, actor, childID)
	if err != nil {
		return err
	}

	if actor.Role == models.RoleDoctor {
		return ErrNotChildOwner
	}

	if err := s.childRepo.Deactivate(ctx, child.ID); err != nil {
		return err
	}

	log.Printf("🗑️ Child deactivated: %s (ID: %d)", child.Name, child.ID)
	return nil
}

// GetSummary returns per-status counts over a child's schedule. The counts
// always sum to the number of schedule entries.
func (s *ChildService) GetSummary(ctx context.Context, actor Actor, childID uint) (*models.VaccinationSummary, error) {
	child, err := s.GetChild(ctx, actor, childID)
	if err != nil {
		return nil, err
	}
	return models.Summarize(child.Schedule), nil
}

// SearchChildren finds children by case-insensitive name substring.
// Restricted to doctors and admins; queries shorter than 2 characters are
// rejected rather than scanning the whole table.
func (s *ChildService) SearchChildren(ctx context.Context, actor Actor, query string) ([]*models.Child, error) {
	if !actor.CanReadAllChildren() {
		return nil, ErrNotChildOwner
	}

	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, ErrSearchQueryShort
	}

	return s.childRepo.SearchByName(ctx, query, searchResultLimit)
}

// authorize enforces the ownership rule: parents only reach their own
// children, doctors and admins reach all.
func (s *ChildService) authorize(actor Actor, child *models.Child) error {
	if actor.CanReadAllChildren() {
		return nil
	}
	if child.ParentID != actor.UserID {
		return ErrNotChildOwner
	}
	return nil
}
