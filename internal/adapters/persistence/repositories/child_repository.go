package repositories

import (
	"context"
	"time"

	"vaccitrack/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ChildRepository handles child + schedule persistence
type ChildRepository struct {
	db *gorm.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *gorm.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// Create creates a child together with its generated schedule entries
func (r *ChildRepository) Create(ctx context.Context, child *models.Child) error {
	return r.db.WithContext(ctx).Create(child).Error
}

// GetByID gets an active child with its schedule ordered by due date
func (r *ChildRepository) GetByID(ctx context.Context, id uint) (*models.Child, error) {
	var child models.Child
	err := r.db.WithContext(ctx).
		Preload("Schedule", func(db *gorm.DB) *gorm.DB {
			return db.Order("schedule_entries.due_date ASC, schedule_entries.id ASC")
		}).
		Preload("Parent").
		Where("id = ? AND is_active = ?", id, true).
		First(&child).Error
	if err != nil {
		return nil, err
	}
	return &child, nil
}

// ListByParent lists a parent's active children, newest first
func (r *ChildRepository) ListByParent(ctx context.Context, parentID uint) ([]*models.Child, error) {
	var children []*models.Child
	err := r.db.WithContext(ctx).
		Preload("Schedule", func(db *gorm.DB) *gorm.DB {
			return db.Order("schedule_entries.due_date ASC, schedule_entries.id ASC")
		}).
		Where("parent_id = ? AND is_active = ?", parentID, true).
		Order("created_at DESC").
		Find(&children).Error
	return children, err
}

// ListAll lists all active children, newest first
func (r *ChildRepository) ListAll(ctx context.Context) ([]*models.Child, error) {
	var children []*models.Child
	err := r.db.WithContext(ctx).
		Preload("Schedule", func(db *gorm.DB) *gorm.DB {
			return db.Order("schedule_entries.due_date ASC, schedule_entries.id ASC")
		}).
		Preload("Parent").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&children).Error
	return children, err
}

// SearchByName finds active children whose name contains the query,
// case-insensitively
func (r *ChildRepository) SearchByName(ctx context.Context, query string, limit int) ([]*models.Child, error) {
	var children []*models.Child
	err := r.db.WithContext(ctx).
		Preload("Schedule", func(db *gorm.DB) *gorm.DB {
			return db.Order("schedule_entries.due_date ASC, schedule_entries.id ASC")
		}).
		Preload("Parent").
		Where("LOWER(name) LIKE LOWER(?) AND is_active = ?", "%"+query+"%", true).
		Limit(limit).
		Find(&children).Error
	return children, err
}

// Update updates a child record (not its schedule)
func (r *ChildRepository) Update(ctx context.Context, child *models.Child) error {
	return r.db.WithContext(ctx).Omit("Schedule", "Parent").Save(child).Error
}

// Deactivate soft-disables a child record
func (r *ChildRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Child{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// GetEntry gets one schedule entry belonging to a child
func (r *ChildRepository) GetEntry(ctx context.Context, childID, entryID uint) (*models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	err := r.db.WithContext(ctx).
		Preload("Approver").
		Where("id = ? AND child_id = ?", entryID, childID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry updates schedule entry columns
func (r *ChildRepository) UpdateEntry(ctx context.Context, entryID uint, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.ScheduleEntry{}).
		Where("id = ?", entryID).
		Updates(updates).Error
}

// MarkOverdue promotes upcoming entries whose due date passed to overdue in a
// single idempotent statement. Called lazily before reads; completed and
// pending_approval entries are never touched.
func (r *ChildRepository) MarkOverdue(ctx context.Context, childID uint, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return r.db.WithContext(ctx).
		Model(&models.ScheduleEntry{}).
		Where("child_id = ? AND status = ? AND due_date < ?", childID, models.EntryStatusUpcoming, today).
		Update("status", models.EntryStatusOverdue).Error
}

// MarkAllOverdue is the cross-child variant used by listing endpoints
func (r *ChildRepository) MarkAllOverdue(ctx context.Context, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return r.db.WithContext(ctx).
		Model(&models.ScheduleEntry{}).
		Where("status = ? AND due_date < ?", models.EntryStatusUpcoming, today).
		Update("status", models.EntryStatusOverdue).Error
}

// CountActive counts active children
func (r *ChildRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Child{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// CountActiveByParent counts a parent's active children
func (r *ChildRepository) CountActiveByParent(ctx context.Context, parentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Child{}).
		Where("parent_id = ? AND is_active = ?", parentID, true).
		Count(&count).Error
	return count, err
}

// ScheduleStatusBreakdown groups schedule entries of active children by status
func (r *ChildRepository) ScheduleStatusBreakdown(ctx context.Context) (map[string]int64, error) {
	return r.scheduleBreakdown(ctx, nil)
}

// ScheduleStatusBreakdownByParent scopes the breakdown to one parent's children
func (r *ChildRepository) ScheduleStatusBreakdownByParent(ctx context.Context, parentID uint) (map[string]int64, error) {
	return r.scheduleBreakdown(ctx, &parentID)
}

func (r *ChildRepository) scheduleBreakdown(ctx context.Context, parentID *uint) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Model(&models.ScheduleEntry{}).
		Select("schedule_entries.status AS status, COUNT(*) AS count").
		Joins("JOIN children ON children.id = schedule_entries.child_id").
		Where("children.is_active = ? AND children.deleted_at IS NULL", true)
	if parentID != nil {
		query = query.Where("children.parent_id = ?", *parentID)
	}

	if err := query.Group("schedule_entries.status").Scan(&rows).Error; err != nil {
		return nil, err
	}

	breakdown := map[string]int64{
		models.EntryStatusUpcoming:        0,
		models.EntryStatusOverdue:         0,
		models.EntryStatusCompleted:       0,
		models.EntryStatusPendingApproval: 0,
	}
	for _, row := range rows {
		breakdown[row.Status] = row.Count
	}
	return breakdown, nil
}
