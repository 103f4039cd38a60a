package services

import (
	"context"

	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/adapters/persistence/repositories"
)

// DashboardService aggregates portal statistics per role
type DashboardService struct {
	userRepo    repositories.UserRepository
	childRepo   *repositories.ChildRepository
	requestRepo *repositories.VaccinationRequestRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	userRepo repositories.UserRepository,
	childRepo *repositories.ChildRepository,
	requestRepo *repositories.VaccinationRequestRepository,
) *DashboardService {
	return &DashboardService{
		userRepo:    userRepo,
		childRepo:   childRepo,
		requestRepo: requestRepo,
	}
}

// ParentStats is the parent dashboard payload, scoped to the caller's children
type ParentStats struct {
	TotalChildren     int64            `json:"total_children"`
	ScheduleBreakdown map[string]int64 `json:"schedule_breakdown"`
	PendingRequests   int64            `json:"pending_requests"`
}

// DoctorStats is the review-queue summary for doctors
type DoctorStats struct {
	PendingRequests   int64            `json:"pending_requests"`
	RequestBreakdown  map[string]int64 `json:"request_breakdown"`
	TotalChildren     int64            `json:"total_children"`
	ScheduleBreakdown map[string]int64 `json:"schedule_breakdown"`
}

// AdminStats is the portal-wide dashboard payload
type AdminStats struct {
	TotalParents      int64                  `json:"total_parents"`
	TotalDoctors      int64                  `json:"total_doctors"`
	PendingDoctors    int64                  `json:"pending_doctors"`
	TotalChildren     int64                  `json:"total_children"`
	TotalRequests     int64                  `json:"total_requests"`
	RequestBreakdown  map[string]int64       `json:"request_breakdown"`
	ScheduleBreakdown map[string]int64       `json:"schedule_breakdown"`
	RecentUsers       []*models.UserResponse `json:"recent_users"`
}

// GetParentStats returns statistics over the caller's own children. The
// breakdowns are computed independently so a slow count never skews another.
func (s *DashboardService) GetParentStats(ctx context.Context, parentID uint) (*ParentStats, error) {
	totalChildren, err := s.childRepo.CountActiveByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.childRepo.ScheduleStatusBreakdownByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.ListByParent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	var pending int64
	for _, r := range requests {
		if r.Status == models.RequestStatusPending {
			pending++
		}
	}

	return &ParentStats{
		TotalChildren:     totalChildren,
		ScheduleBreakdown: breakdown,
		PendingRequests:   pending,
	}, nil
}

// GetDoctorStats returns the review-queue summary
func (s *DashboardService) GetDoctorStats(ctx context.Context) (*DoctorStats, error) {
	pending, err := s.requestRepo.CountByStatus(ctx, models.RequestStatusPending)
	if err != nil {
		return nil, err
	}

	requestBreakdown, err := s.requestRepo.StatusBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	totalChildren, err := s.childRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	scheduleBreakdown, err := s.childRepo.ScheduleStatusBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	return &DoctorStats{
		PendingRequests:   pending,
		RequestBreakdown:  requestBreakdown,
		TotalChildren:     totalChildren,
		ScheduleBreakdown: scheduleBreakdown,
	}, nil
}

// GetAdminStats returns portal-wide statistics
func (s *DashboardService) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	totalParents, err := s.userRepo.CountByRole(ctx, models.RoleParent)
	if err != nil {
		return nil, err
	}

	totalDoctors, err := s.userRepo.CountByRole(ctx, models.RoleDoctor)
	if err != nil {
		return nil, err
	}

	pendingDoctors, err := s.userRepo.CountPendingDoctors(ctx)
	if err != nil {
		return nil, err
	}

	totalChildren, err := s.childRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}

	totalRequests, err := s.requestRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	requestBreakdown, err := s.requestRepo.StatusBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	scheduleBreakdown, err := s.childRepo.ScheduleStatusBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.userRepo.ListRecent(ctx, 5)
	if err != nil {
		return nil, err
	}
	recentUsers := make([]*models.UserResponse, 0, len(recent))
	for _, u := range recent {
		recentUsers = append(recentUsers, u.ToResponse())
	}

	return &AdminStats{
		TotalParents:      totalParents,
		TotalDoctors:      totalDoctors,
		PendingDoctors:    pendingDoctors,
		TotalChildren:     totalChildren,
		TotalRequests:     totalRequests,
		RequestBreakdown:  requestBreakdown,
		ScheduleBreakdown: scheduleBreakdown,
		RecentUsers:       recentUsers,
	}, nil
}
