package repositories

import (
	"context"

	"vaccitrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// Pending listings surface the most overdue, longest-waiting requests first.
// CASE ranking keeps the ordering portable across MySQL and SQLite.
const priorityRank = "CASE priority WHEN 'overdue' THEN 2 WHEN 'urgent' THEN 1 ELSE 0 END"

// VaccinationRequestRepository handles vaccination request persistence
type VaccinationRequestRepository struct {
	db *gorm.DB
}

// NewVaccinationRequestRepository creates a new vaccination request repository
func NewVaccinationRequestRepository(db *gorm.DB) *VaccinationRequestRepository {
	return &VaccinationRequestRepository{db: db}
}

// Create creates a new vaccination request
func (r *VaccinationRequestRepository) Create(ctx context.Context, request *models.VaccinationRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID gets a request with its relations
func (r *VaccinationRequestRepository) GetByID(ctx context.Context, id uint) (*models.VaccinationRequest, error) {
	var request models.VaccinationRequest
	err := r.db.WithContext(ctx).
		Preload("Child").
		Preload("ScheduleEntry").
		Preload("Parent").
		Preload("Reviewer").
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListPending lists pending requests ordered by priority desc, then oldest first
func (r *VaccinationRequestRepository) ListPending(ctx context.Context) ([]*models.VaccinationRequest, error) {
	var requests []*models.VaccinationRequest
	err := r.db.WithContext(ctx).
		Preload("Child").
		Preload("ScheduleEntry").
		Preload("Parent").
		Where("status = ?", models.RequestStatusPending).
		Order(priorityRank + " DESC").
		Order("requested_at ASC").
		Find(&requests).Error
	return requests, err
}

// ListFilter narrows List results
type ListFilter struct {
	Status   string
	Priority string
}

// List lists requests with optional filters and pagination
func (r *VaccinationRequestRepository) List(ctx context.Context, filter *ListFilter, offset, limit int) ([]*models.VaccinationRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.VaccinationRequest{})
	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Priority != "" {
			query = query.Where("priority = ?", filter.Priority)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []*models.VaccinationRequest
	err := query.
		Preload("Child").
		Preload("Parent").
		Preload("Reviewer").
		Order(priorityRank + " DESC").
		Order("requested_at ASC").
		Offset(offset).Limit(limit).
		Find(&requests).Error
	return requests, total, err
}

// ListByParent lists a parent's requests, newest first
func (r *VaccinationRequestRepository) ListByParent(ctx context.Context, parentID uint) ([]*models.VaccinationRequest, error) {
	var requests []*models.VaccinationRequest
	err := r.db.WithContext(ctx).
		Preload("Child").
		Preload("Reviewer").
		Where("parent_id = ?", parentID).
		Order("requested_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListByChild lists all requests referencing a child, newest first
func (r *VaccinationRequestRepository) ListByChild(ctx context.Context, childID uint) ([]*models.VaccinationRequest, error) {
	var requests []*models.VaccinationRequest
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("child_id = ?", childID).
		Order("requested_at DESC").
		Find(&requests).Error
	return requests, err
}

// Count counts all requests
func (r *VaccinationRequestRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VaccinationRequest{}).Count(&count).Error
	return count, err
}

// CountByStatus counts requests with a status
func (r *VaccinationRequestRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VaccinationRequest{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// StatusBreakdown groups requests by status
func (r *VaccinationRequestRepository) StatusBreakdown(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.VaccinationRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	breakdown := map[string]int64{
		models.RequestStatusPending:   0,
		models.RequestStatusApproved:  0,
		models.RequestStatusRejected:  0,
		models.RequestStatusCancelled: 0,
	}
	for _, row := range rows {
		breakdown[row.Status] = row.Count
	}
	return breakdown, nil
}
