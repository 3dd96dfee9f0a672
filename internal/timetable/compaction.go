package timetable

import "github.com/noah-isme/schedulengine/internal/domain"

// CompactSchedule collects each class-day's filled lessons in period order,
// clears the day, and refills starting at period 0. It never re-checks
// teacher constraints — callers who need that should use
// CompactSchedulePreservingTeacherAvailability instead. Applying it twice
// is a no-op (P6): the second pass finds the lessons already at the front.
func (t *Timetable) CompactSchedule() {
	for _, className := range t.ClassOrder {
		grid := t.Schedule[className]
		for d := 0; d < domain.Days; d++ {
			lessons := make([]*domain.Lesson, 0, domain.PeriodsPerDay)
			for p := 0; p < domain.PeriodsPerDay; p++ {
				if grid[d][p] != nil {
					lessons = append(lessons, grid[d][p])
				}
				grid[d][p] = nil
			}
			for i, lesson := range lessons {
				grid[d][i] = lesson
			}
		}
	}
}

// DroppedLesson records a lesson that CompactSchedulePreservingTeacherAvailability
// could not place anywhere on its class-day.
type DroppedLesson struct {
	Class  string
	Day    int
	Lesson *domain.Lesson
}

// CompactSchedulePreservingTeacherAvailability behaves like CompactSchedule
// but, for each lesson in period order, advances a per-class-day cursor and
// places the lesson at the first period p >= cursor where every one of its
// teachers is available and not already placed by this same compaction
// pass at (d, p) in another class. Classes are processed in ClassOrder, so
// earlier classes win ties for a contested slot. A lesson with no such
// period is dropped (becomes unscheduled) and reported to the caller.
func (t *Timetable) CompactSchedulePreservingTeacherAvailability() []DroppedLesson {
	var dropped []DroppedLesson
	occupied := make(map[domain.Slot]map[string]bool)

	markOccupied := func(d, p int, lesson *domain.Lesson) {
		slot := domain.Slot{Day: d, Period: p}
		if occupied[slot] == nil {
			occupied[slot] = make(map[string]bool)
		}
		for _, teacher := range lesson.Teachers() {
			if teacher != nil {
				occupied[slot][teacher.Name] = true
			}
		}
	}

	canPlace := func(d, p int, lesson *domain.Lesson) bool {
		slot := domain.Slot{Day: d, Period: p}
		for _, teacher := range lesson.Teachers() {
			if teacher == nil {
				continue
			}
			if !teacher.IsAvailable(d, p) {
				return false
			}
			if occupied[slot][teacher.Name] {
				return false
			}
		}
		return true
	}

	for _, className := range t.ClassOrder {
		grid := t.Schedule[className]
		for d := 0; d < domain.Days; d++ {
			lessons := make([]*domain.Lesson, 0, domain.PeriodsPerDay)
			for p := 0; p < domain.PeriodsPerDay; p++ {
				if grid[d][p] != nil {
					lessons = append(lessons, grid[d][p])
				}
				grid[d][p] = nil
			}

			cursor := 0
			for _, lesson := range lessons {
				placed := false
				for p := cursor; p < domain.PeriodsPerDay; p++ {
					if canPlace(d, p, lesson) {
						grid[d][p] = lesson
						markOccupied(d, p, lesson)
						cursor = p + 1
						placed = true
						break
					}
				}
				if !placed {
					dropped = append(dropped, DroppedLesson{Class: className, Day: d, Lesson: lesson})
				}
			}
		}
	}
	return dropped
}
