package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Users & role profiles
// ============================================================

// User roles
const (
	RoleParent = "parent"
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

// User represents users table. Role-specific data lives in the
// DoctorProfile / ParentProfile variant tables.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`
	Role     string `gorm:"size:20;not null;index" json:"role"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	LastLogin          *time.Time `json:"last_login"`
	DeactivationReason string     `gorm:"type:text" json:"-"`
	DeactivatedBy      *uint      `json:"-"`
	DeactivatedAt      *time.Time `json:"-"`

	DoctorProfile *DoctorProfile `gorm:"foreignKey:UserID" json:"doctor_profile,omitempty"`
	ParentProfile *ParentProfile `gorm:"foreignKey:UserID" json:"parent_profile,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsApproved reports whether the account has passed admin review. Parents and
// admins are approved by construction; a doctor is approved only after an
// admin processes the registration.
func (u *User) IsApproved() bool {
	if u.Role != RoleDoctor {
		return true
	}
	return u.DoctorProfile != nil && u.DoctorProfile.IsApproved
}

// DoctorProfile represents doctor_profiles table (1:1 with users)
type DoctorProfile struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	UserID              uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	MedicalLicense      string `gorm:"size:100;not null" json:"medical_license"`
	HospitalAffiliation string `gorm:"size:200;not null" json:"hospital_affiliation"`
	Specialization      string `gorm:"size:100;not null" json:"specialization"`
	YearsOfExperience   int    `gorm:"not null" json:"years_of_experience"`

	IsApproved      bool       `gorm:"default:false" json:"is_approved"`
	ApprovedBy      *uint      `json:"approved_by"`
	ApprovedAt      *time.Time `json:"approved_at"`
	ApprovalNotes   string     `gorm:"type:text" json:"approval_notes,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

// ParentProfile represents parent_profiles table (1:1 with users)
type ParentProfile struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	Phone   string `gorm:"size:20;not null" json:"phone"`
	Street  string `gorm:"size:200" json:"street"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:100" json:"state"`
	Pincode string `gorm:"size:20" json:"pincode"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ParentProfile) TableName() string {
	return "parent_profiles"
}

// UserResponse DTO
type UserResponse struct {
	ID                  uint       `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	Role                string     `json:"role"`
	IsActive            bool       `json:"is_active"`
	IsApproved          bool       `json:"is_approved"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	Specialization      string     `json:"specialization,omitempty"`
	HospitalAffiliation string     `json:"hospital_affiliation,omitempty"`
	Phone               string     `json:"phone,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsApproved: u.IsApproved(),
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
	}
	if u.DoctorProfile != nil {
		resp.Specialization = u.DoctorProfile.Specialization
		resp.HospitalAffiliation = u.DoctorProfile.HospitalAffiliation
	}
	if u.ParentProfile != nil {
		resp.Phone = u.ParentProfile.Phone
	}
	return resp
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Children & vaccination schedule
// ============================================================

// Child genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Child represents children table
type Child struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;index" json:"name"`
	DateOfBirth time.Time `gorm:"not null" json:"date_of_birth"`
	Gender      string    `gorm:"size:10;not null" json:"gender"`
	ParentID    uint      `gorm:"not null;index" json:"parent_id"`

	BloodGroup        string  `gorm:"size:10;default:'Unknown'" json:"blood_group"`
	BirthWeight       float64 `json:"birth_weight,omitempty"` // kg
	BirthHeight       float64 `json:"birth_height,omitempty"` // cm
	Allergies         string  `gorm:"type:text" json:"allergies,omitempty"`
	MedicalConditions string  `gorm:"type:text" json:"medical_conditions,omitempty"`
	SpecialNotes      string  `gorm:"type:text" json:"special_notes,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	Parent   *User           `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Schedule []ScheduleEntry `gorm:"foreignKey:ChildID" json:"vaccination_schedule,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Child) TableName() string {
	return "children"
}

// Schedule entry statuses
const (
	EntryStatusUpcoming        = "upcoming"
	EntryStatusOverdue         = "overdue"
	EntryStatusCompleted       = "completed"
	EntryStatusPendingApproval = "pending_approval"
)

// ScheduleEntry represents schedule_entries table: one scheduled dose in a
// child's vaccination plan. Entries are addressed by their row id, never by
// position in the schedule.
type ScheduleEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChildID     uint      `gorm:"not null;index" json:"child_id"`
	VaccineName string    `gorm:"size:100;not null" json:"vaccine_name"`
	Description string    `gorm:"type:text" json:"description"`
	AgeInDays   int       `gorm:"not null" json:"age_in_days"`
	DueDate     time.Time `gorm:"not null;index" json:"due_date"`
	Cost        string    `gorm:"size:50;default:'Free'" json:"cost"`
	Status      string    `gorm:"size:20;not null;default:'upcoming';index" json:"status"`

	AdministeredDate *time.Time `json:"administered_date,omitempty"`
	ApprovedBy       *uint      `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	ParentNotes      string     `gorm:"type:text" json:"parent_notes,omitempty"`
	DoctorNotes      string     `gorm:"type:text" json:"doctor_notes,omitempty"`
	RejectionReason  string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	RequestedAt      *time.Time `json:"requested_at,omitempty"`

	Approver *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ScheduleEntry) TableName() string {
	return "schedule_entries"
}

// IsDue reports whether the entry's due date is strictly before today.
// Comparison is at day granularity; an entry due today is not overdue yet.
func (e *ScheduleEntry) IsDue(now time.Time) bool {
	return truncateToDay(e.DueDate).Before(truncateToDay(now))
}

// RevertedStatus returns the status a pending_approval entry falls back to
// when its completion request is rejected or cancelled.
func (e *ScheduleEntry) RevertedStatus(now time.Time) string {
	if e.IsDue(now) {
		return EntryStatusOverdue
	}
	return EntryStatusUpcoming
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// VaccinationSummary holds per-status counts over a child's schedule
type VaccinationSummary struct {
	Total           int64 `json:"total"`
	Upcoming        int64 `json:"upcoming"`
	Overdue         int64 `json:"overdue"`
	Completed       int64 `json:"completed"`
	PendingApproval int64 `json:"pending_approval"`
}

// Summarize counts schedule entries per status. The counts always sum to the
// schedule length.
func Summarize(entries []ScheduleEntry) *VaccinationSummary {
	summary := &VaccinationSummary{Total: int64(len(entries))}
	for _, e := range entries {
		switch e.Status {
		case EntryStatusUpcoming:
			summary.Upcoming++
		case EntryStatusOverdue:
			summary.Overdue++
		case EntryStatusCompleted:
			summary.Completed++
		case EntryStatusPendingApproval:
			summary.PendingApproval++
		}
	}
	return summary
}

// ============================================================
// Vaccination requests
// ============================================================

// Request statuses
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusCancelled = "cancelled"
)

// Request priorities
const (
	PriorityNormal  = "normal"
	PriorityUrgent  = "urgent"
	PriorityOverdue = "overdue"
)

// Days past the scheduled date before a pending request escalates
const (
	urgentAfterDays  = 7
	overdueAfterDays = 30
)

// VaccinationRequest represents vaccination_requests table: a parent's claim
// that a scheduled dose was administered, awaiting doctor/admin review.
type VaccinationRequest struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	ChildID         uint `gorm:"not null;index" json:"child_id"`
	ScheduleEntryID uint `gorm:"not null;index" json:"schedule_entry_id"`
	ParentID        uint `gorm:"not null;index" json:"parent_id"`

	VaccineName             string    `gorm:"size:100;not null" json:"vaccine_name"`
	ScheduledDate           time.Time `gorm:"not null" json:"scheduled_date"`
	RequestedCompletionDate time.Time `gorm:"not null" json:"requested_completion_date"`
	ParentNotes             string    `gorm:"type:text" json:"parent_notes,omitempty"`
	Attachment              string    `gorm:"size:500" json:"attachment,omitempty"`

	Status   string `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Priority string `gorm:"size:20;not null;default:'normal';index" json:"priority"`

	ReviewedBy      *uint  `json:"reviewed_by,omitempty"`
	DoctorNotes     string `gorm:"type:text" json:"doctor_notes,omitempty"`
	RejectionReason string `gorm:"type:text" json:"rejection_reason,omitempty"`

	HospitalName   string `gorm:"size:200" json:"hospital_name,omitempty"`
	AdministeredBy string `gorm:"size:100" json:"administered_by,omitempty"`
	BatchNumber    string `gorm:"size:100" json:"batch_number,omitempty"`
	Manufacturer   string `gorm:"size:100" json:"manufacturer,omitempty"`

	RequestedAt time.Time  `gorm:"not null;index" json:"requested_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Child         *Child         `gorm:"foreignKey:ChildID" json:"child,omitempty"`
	ScheduleEntry *ScheduleEntry `gorm:"foreignKey:ScheduleEntryID" json:"schedule_entry,omitempty"`
	Parent        *User          `gorm:"foreignKey:ParentID" json:"requested_by,omitempty"`
	Reviewer      *User          `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (VaccinationRequest) TableName() string {
	return "vaccination_requests"
}

// ClassifyPriority derives request urgency from how far past the scheduled
// date "now" is: more than 30 days overdue, more than 7 days urgent.
func ClassifyPriority(scheduledDate, now time.Time) string {
	days := int(now.Sub(scheduledDate).Hours() / 24)
	switch {
	case days > overdueAfterDays:
		return PriorityOverdue
	case days > urgentAfterDays:
		return PriorityUrgent
	default:
		return PriorityNormal
	}
}

// BeforeSave recomputes priority while the request is still pending. Resolved
// requests keep the priority they carried at review time.
func (r *VaccinationRequest) BeforeSave(tx *gorm.DB) error {
	if r.Status == "" || r.Status == RequestStatusPending {
		r.Priority = ClassifyPriority(r.ScheduledDate, time.Now())
	}
	return nil
}

// IsTerminal reports whether the request reached a state that forbids
// further transitions.
func (r *VaccinationRequest) IsTerminal() bool {
	return r.Status != RequestStatusPending
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&DoctorProfile{},
		&ParentProfile{},
		&RefreshToken{},
		&Child{},
		&ScheduleEntry{},
		&VaccinationRequest{},
	)
}
