package services

import (
	"errors"
	"testing"
	"time"

	"vaccitrack/internal/adapters/persistence/models"
	"vaccitrack/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

func newChildService(gdb *gorm.DB) *ChildService {
	return NewChildService(repositories.NewChildRepository(gdb))
}

func parentActor(u *models.User) Actor { return Actor{UserID: u.ID, Role: models.RoleParent} }
func doctorActor(u *models.User) Actor { return Actor{UserID: u.ID, Role: models.RoleDoctor} }
func adminActor(u *models.User) Actor  { return Actor{UserID: u.ID, Role: models.RoleAdmin} }

// TestCreateChild verifies that registering a child generates the full
// schedule from the fixed template.
func TestCreateChild(t *testing.T) {
	gdb := openTestDB(t)
	svc := newChildService(gdb)
	parent := seedUser(t, gdb, "mom", models.RoleParent)

	child, err := svc.CreateChild(ctx(), parentActor(parent), &CreateChildInput{
		Name:        "Aarav",
		DateOfBirth: time.Now().AddDate(0, 0, -1),
		Gender:      models.GenderMale,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if len(child.Schedule) != len(models.DefaultScheduleTemplate) {
		t.Errorf("schedule size: got %d, want %d", len(child.Schedule), len(models.DefaultScheduleTemplate))
	}
	if child.BloodGroup != "Unknown" {
		t.Errorf("default blood group: got %q, want Unknown", child.BloodGroup)
	}
	for _, entry := range child.Schedule {
		if entry.Status == models.EntryStatusCompleted || entry.Status == models.EntryStatusPendingApproval {
			t.Errorf("fresh entry %s has status %s", entry.VaccineName, entry.Status)
		}
	}
}

// TestCreateChild_LateRegistration verifies that a child registered months
// after birth gets past entries marked overdue immediately.
func TestCreateChild_LateRegistration(t *testing.T) {
	gdb := openTestDB(t)
	svc := newChildService(gdb)
	parent := seedUser(t, gdb, "mom", models.RoleParent)

	child, err := svc.CreateChild(ctx(), parentActor(parent), &CreateChildInput{
		Name:        "Meera",
		DateOfBirth: time.Now().AddDate(0, 0, -100),
		Gender:      models.GenderFemale,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	var overdue, upcoming int
	for _, entry := range child.Schedule {
		switch entry.Status {
		case models.EntryStatusOverdue:
			overdue++
		case models.EntryStatusUpcoming:
			upcoming++
		}
	}
	if overdue == 0 {
		t.Error("100-day-old child should have overdue entries")
	}
	if upcoming == 0 {
		t.Error("100-day-old child should still have upcoming entries")
	}
}

// TestCreateChild_Validation covers the input guards.
func TestCreateChild_Validation(t *testing.T) {
	gdb := openTestDB(t)
	svc := newChildService(gdb)
	parent := seedUser(t, gdb, "mom", models.RoleParent)
	doctor := seedUser(t, gdb, "doc", models.RoleDoctor)

	_, err := svc.CreateChild(ctx(), doctorActor(doctor), &CreateChildInput{
		Name: "X", DateOfBirth: time.Now().AddDate(0, 0, -1), Gender: models.GenderMale,
	})
	if !errors.Is(err, ErrParentsOnly) {
		t.Errorf("doctor creating child: got %v, want ErrParentsOnly", err)
	}

	_, err = svc.CreateChild(ctx(), parentActor(parent), &CreateChildInput{
		Name: "Future Kid", DateOfBirth: time.Now().AddDate(0, 0, 7), Gender: models.GenderMale,
	})
	if !errors.Is(err, ErrInvalidBirthDate) {
		t.Errorf("future birth date: got %v, want ErrInvalidBirthDate", err)
	}

	_, err = svc.CreateChild(ctx(), parentActor(parent), &CreateChildInput{
		Name: "   ", DateOfBirth: time.Now().AddDate(0, 0, -1), Gender: models.GenderMale,
	})
	if !errors.Is(err, ErrInvalidChildInput) {
		t.Errorf("blank name: got %v, want ErrInvalidChildInput", err)
	}
}

// TestGetChild_Ownership verifies that parents only reach their own children
// while doctors and admins reach all.
func TestGetChild_Ownership(t *testing.T) {
	gdb := openTestDB(t)
	svc := newChildService(gdb)

	owner := seedUser(t, gdb, "owner", models.RoleParent)
	other := seedUser(t, gdb, "other", models.RoleParent)
	doctor := seedUser(t, gdb, "doc", models.RoleDoctor)
	admin := seedUser(t, gdb, "admin", models.RoleAdmin)
	child := seedChild(t, gdb, owner.ID, time.Now().AddDate(0, 0, -30))

	if _, err := svc.GetChild(ctx(), parentActor(owner), child.ID); err != nil {
		t.Errorf("owner access: %v", err)
	}
	if _, err := svc.GetChild(ctx(), doctorActor(doctor), child.ID); err != nil {
		t.Errorf("doctor access: %v", err)
	}
	if _, err := svc.GetChild(ctx(), adminActor(admin), child.ID); err != nil {
		t.Errorf("admin access: %v", err)
	}

	_, err := svc.GetChild(ctx(), parentActor(other), child.ID)
	if !errors.Is(err, ErrNotChildOwner) {
		t.Errorf("other parent access: got %v, want ErrNotChildOwner", err)
	}

	_, err = svc.GetChild(ctx(), parentActor(owner), 9999)
	if !errors.Is(err, ErrChildNotFound) {
		t.Errorf("unknown child: got %v, want ErrChildNotFound", err)
	}
}

// TestGetChild_LazyOverdue verifies that reading a child refreshes stale
// upcoming entries whose due date has passed.
func TestGetChild_LazyOverdue(t *testing.T) {
	gdb := openTestDB(t)
	svc := newChildService(gdb)

	parent := seedUser(t, gdb, "mom", models.RoleParent)
	child := seedChild(t, gdb, parent.ID, time.Now().AddDate(0, 0, -60))

	// Force a past-due entry back to upcoming, simulating a row written
	// before its due date elapsed.
	var stale models.ScheduleEntry
	if err := gdb.Where("child_id = ? AND status = ?", child.ID, models.EntryStatusOverdue).First(&stale).Error; err != nil {
		t.Fatalf("find overdue entry: %v", err)
	}
	gdb.Model(&models.ScheduleEntry{}).Where("id = ?", stale.ID).Update("status", models.EntryStatusUpcoming)

	got, err := svc.GetChild(ctx(), parentActor(parent), child.ID)
	if err != nil {
		t.Fatalf("get child: %v", err)
	}
	for _, entry := range got.Schedule {
		if entry.ID == stale.ID && entry.Status != models.EntryStatusOverdue {
			t.Errorf("stale entry status after read: got %s, want overdue", entry.Status)
		}
	}
}

// TestGetChild_DeniedReadHasNoSideEffects verifies a rejected read does not
// touch the schedule: the overdue refresh only runs for authorized callers.
func TestGetChild_DeniedReadHasNoSideEffects(t *testing.T) {
	gdb := openTestDB(t)
	svc := newChildService(gdb)

	owner := seedUser(t, gdb, "owner", models.RoleParent)
	other := seedUser(t, gdb, "other", models.RoleParent)
	child := seedChild(t, gdb, owner.ID, time.Now().AddDate(0, 0, -60))

	var stale models.ScheduleEntry
	if err := gdb.Where("child_id = ? AND status = ?", child.ID, models.EntryStatusOverdue).First(&stale).Error; err != nil {
		t.Fatalf("find overdue entry: %v", err)
	}
	gdb.Model(&models.ScheduleEntry{}).Where("id = ?", stale.ID).Update("status", models.EntryStatusUpcoming)

	if _, err := svc.GetChild(ctx(), parentActor(other), child.ID); !errors.Is(err, ErrNotChildOwner) {
		t.Fatalf("other parent access: got %v, want ErrNotChildOwner", err)
	}

	var after models.ScheduleEntry
	gdb.First(&after, stale.ID)
	if after.Status != models.EntryStatusUpcoming {
		t.Errorf("denied read changed entry status to %s", after.Status)
	}
}

// TestGetSummary verifies the per-status counts sum to the schedule size.
func TestGetSummary(t *testing.T) {
	gdb := openTestDB(t)
	svc := newChildService(gdb)

	parent := seedUser(t, gdb, "mom", models.RoleParent)
	child := seedChild(t, gdb, parent.ID, time.Now().AddDate(0, 0, -100))

	summary, err := svc.GetSummary(ctx(), parentActor(parent), child.ID)
	if err != nil {
		t.Fatalf("get summary: %v", err)
	}
	sum := summary.Upcoming + summary.Overdue + summary.Completed + summary.PendingApproval
	if sum != summary.Total {
		t.Errorf("summary counts sum to %d, total is %d", sum, summary.Total)
	}
	if summary.Total != int64(len(models.DefaultScheduleTemplate)) {
		t.Errorf("summary total: got %d, want %d", summary.Total, len(models.DefaultScheduleTemplate))
	}
}

// TestListChildren verifies scoping per role.
func TestListChildren(t *testing.T) {
	gdb := openTestDB(t)
	svc := newChildService(gdb)

	mom := seedUser(t, gdb, "mom", models.RoleParent)
	dad := seedUser(t, gdb, "dad", models.RoleParent)
	doctor := seedUser(t, gdb, "doc", models.RoleDoctor)
	seedChild(t, gdb, mom.ID, time.Now().AddDate(0, 0, -10))
	seedChild(t, gdb, mom.ID, time.Now().AddDate(-1, 0, 0))
	seedChild(t, gdb, dad.ID, time.Now().AddDate(0, 0, -20))

	momList, err := svc.ListChildren(ctx(), parentActor(mom))
	if err != nil {
		t.Fatalf("list for parent: %v", err)
	}
	if len(momList) != 2 {
		t.Errorf("parent list: got %d children, want 2", len(momList))
	}

	docList, err := svc.ListChildren(ctx(), doctorActor(doctor))
	if err != nil {
		t.Fatalf("list for doctor: %v", err)
	}
	if len(docList) != 3 {
		t.Errorf("doctor list: got %d children, want 3", len(docList))
	}
}

// TestDeleteChild verifies soft deletion removes the child from listings and
// that doctors cannot delete.
func TestDeleteChild(t *testing.T) {
	gdb := openTestDB(t)
	svc := newChildService(gdb)

	parent := seedUser(t, gdb, "mom", models.RoleParent)
	doctor := seedUser(t, gdb, "doc", models.RoleDoctor)
	child := seedChild(t, gdb, parent.ID, time.Now().AddDate(0, 0, -10))

	if err := svc.DeleteChild(ctx(), doctorActor(doctor), child.ID); !errors.Is(err, ErrNotChildOwner) {
		t.Errorf("doctor delete: got %v, want ErrNotChildOwner", err)
	}

	if err := svc.DeleteChild(ctx(), parentActor(parent), child.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}

	list, err := svc.ListChildren(ctx(), parentActor(parent))
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("deleted child still listed: %d records", len(list))
	}

	// Row survives in the table for audit
	var count int64
	gdb.Model(&models.Child{}).Where("id = ?", child.ID).Count(&count)
	if count != 1 {
		t.Error("soft delete should keep the row")
	}
}

// TestSearchChildren covers the search permission and query rules.
func TestSearchChildren(t *testing.T) {
	gdb := openTestDB(t)
	svc := newChildService(gdb)

	parent := seedUser(t, gdb, "mom", models.RoleParent)
	doctor := seedUser(t, gdb, "doc", models.RoleDoctor)
	child := seedChild(t, gdb, parent.ID, time.Now().AddDate(0, 0, -10))
	gdb.Model(&models.Child{}).Where("id = ?", child.ID).Update("name", "Aarav Sharma")

	_, err := svc.SearchChildren(ctx(), parentActor(parent), "Aarav")
	if !errors.Is(err, ErrNotChildOwner) {
		t.Errorf("parent search: got %v, want ErrNotChildOwner", err)
	}

	_, err = svc.SearchChildren(ctx(), doctorActor(doctor), " a ")
	if !errors.Is(err, ErrSearchQueryShort) {
		t.Errorf("1-char query: got %v, want ErrSearchQueryShort", err)
	}

	// Case-insensitive substring match
	results, err := svc.SearchChildren(ctx(), doctorActor(doctor), "aarav")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ID != child.ID {
		t.Errorf("search results: got %d, want the seeded child", len(results))
	}
}
