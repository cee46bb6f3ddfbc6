package models

// Catalog values offered by the search and request forms.
var (
	Subjects = []string{
		"Mathematics", "Physics", "Chemistry", "Biology", "English", "Hindi",
		"Social Science", "Computer Science", "Economics", "Accountancy",
	}

	Classes = []string{
		"Class 1", "Class 2", "Class 3", "Class 4", "Class 5", "Class 6",
		"Class 7", "Class 8", "Class 9", "Class 10", "Class 11", "Class 12",
	}

	TimeSlots = []string{
		"Morning (6 AM - 12 PM)",
		"Afternoon (12 PM - 6 PM)",
		"Evening (6 PM - 10 PM)",
	}

	Durations = []string{"1-hour", "1.5-hours", "2-hours", "flexible"}
)

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func IsSubject(v string) bool  { return contains(Subjects, v) }
func IsClass(v string) bool    { return contains(Classes, v) }
func IsTimeSlot(v string) bool { return contains(TimeSlots, v) }
func IsDuration(v string) bool { return contains(Durations, v) }
