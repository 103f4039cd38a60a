package models

import "time"

// ScheduleTemplateItem is one row of the fixed national immunization template.
type ScheduleTemplateItem struct {
	VaccineName string
	Description string
	AgeInDays   int
	Cost        string
}

// DefaultScheduleTemplate is the standard vaccination plan applied to every
// newly registered child. Order matters; the schedule is generated once at
// registration and never regenerated.
var DefaultScheduleTemplate = []ScheduleTemplateItem{
	{VaccineName: "BCG", Description: "Bacillus Calmette–Guérin vaccine against tuberculosis", AgeInDays: 0, Cost: "Free"},
	{VaccineName: "Hepatitis B (1st dose)", Description: "First dose of Hepatitis B vaccine", AgeInDays: 0, Cost: "Free / ₹100"},
	{VaccineName: "OPV (Birth dose)", Description: "Oral Polio Vaccine - Birth dose", AgeInDays: 0, Cost: "Free"},
	{VaccineName: "DTP (1st dose)", Description: "Diphtheria, Tetanus, and Pertussis vaccine", AgeInDays: 42, Cost: "Free / ₹250"},
	{VaccineName: "Hib (1st dose)", Description: "Haemophilus influenzae type b vaccine", AgeInDays: 42, Cost: "₹400"},
	{VaccineName: "Rotavirus (1st dose)", Description: "Rotavirus vaccine", AgeInDays: 42, Cost: "₹900"},
	{VaccineName: "PCV (1st dose)", Description: "Pneumococcal Conjugate Vaccine", AgeInDays: 42, Cost: "₹1500–₹3000"},
	{VaccineName: "IPV (1st dose)", Description: "Inactivated Polio Vaccine", AgeInDays: 42, Cost: "Free / ₹500"},
	{VaccineName: "DTP (2nd dose)", Description: "Second dose of DTP vaccine", AgeInDays: 70, Cost: "Free / ₹250"},
	{VaccineName: "Hib (2nd dose)", Description: "Second dose of Hib vaccine", AgeInDays: 70, Cost: "₹400"},
	{VaccineName: "Rotavirus (2nd dose)", Description: "Second dose of Rotavirus vaccine", AgeInDays: 70, Cost: "₹900"},
	{VaccineName: "PCV (2nd dose)", Description: "Second dose of PCV vaccine", AgeInDays: 70, Cost: "₹1500–₹3000"},
	{VaccineName: "DTP (3rd dose)", Description: "Third dose of DTP vaccine", AgeInDays: 98, Cost: "Free / ₹250"},
	{VaccineName: "Hib (3rd dose)", Description: "Third dose of Hib vaccine", AgeInDays: 98, Cost: "₹400"},
	{VaccineName: "Rotavirus (3rd dose)", Description: "Third dose of Rotavirus vaccine", AgeInDays: 98, Cost: "₹900"},
	{VaccineName: "PCV (3rd dose)", Description: "Third dose of PCV vaccine", AgeInDays: 98, Cost: "₹1500–₹3000"},
	{VaccineName: "IPV (2nd dose)", Description: "Second dose of IPV vaccine", AgeInDays: 98, Cost: "Free / ₹500"},
	{VaccineName: "MMR (1st dose)", Description: "Measles, Mumps, and Rubella vaccine", AgeInDays: 270, Cost: "₹70–₹200"},
	{VaccineName: "Typhoid", Description: "Typhoid vaccine", AgeInDays: 270, Cost: "₹150–₹500"},
	{VaccineName: "Hepatitis A (1st dose)", Description: "First dose of Hepatitis A vaccine", AgeInDays: 365, Cost: "₹900–₹1400"},
	{VaccineName: "Varicella (1st dose)", Description: "Chickenpox vaccine", AgeInDays: 365, Cost: "₹1500–₹2000"},
	{VaccineName: "MMR (2nd dose)", Description: "Second dose of MMR vaccine", AgeInDays: 450, Cost: "₹70–₹200"},
	{VaccineName: "DTP Booster", Description: "DTP Booster dose", AgeInDays: 480, Cost: "Free / ₹250"},
}

// GenerateSchedule builds the full schedule for a child born on dateOfBirth.
// Entries whose due date already passed are created overdue right away so a
// late-registered child sees an honest plan.
func GenerateSchedule(childID uint, dateOfBirth, now time.Time) []ScheduleEntry {
	entries := make([]ScheduleEntry, 0, len(DefaultScheduleTemplate))
	for _, item := range DefaultScheduleTemplate {
		entry := ScheduleEntry{
			ChildID:     childID,
			VaccineName: item.VaccineName,
			Description: item.Description,
			AgeInDays:   item.AgeInDays,
			DueDate:     dateOfBirth.AddDate(0, 0, item.AgeInDays),
			Cost:        item.Cost,
			Status:      EntryStatusUpcoming,
		}
		if entry.IsDue(now) {
			entry.Status = EntryStatusOverdue
		}
		entries = append(entries, entry)
	}
	return entries
}
