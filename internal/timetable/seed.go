package timetable

import (
	"sort"

	"github.com/noah-isme/schedulengine/internal/domain"
)

// UnscheduledLesson records a lesson the constructive seed pass could not
// place anywhere in its class's grid.
type UnscheduledLesson struct {
	Class  string
	Lesson *domain.Lesson
}

type queuedLesson struct {
	lesson         *domain.Lesson
	constrainCount int
	order          int
}

// Construct allocates an empty grid per class, fills it via the
// constructive seed pass (§4.3.1), and compacts preserving teacher
// availability. It returns the timetable and the lessons that found no
// slot at all, which remain unscheduled.
func Construct(classes []*domain.Class) (*Timetable, []UnscheduledLesson) {
	t := NewEmpty(classes)
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

	canPlace := func(class string, d, p int, lesson *domain.Lesson) bool {
		if t.Schedule[class][d][p] != nil {
			return false
		}
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

	var unscheduled []UnscheduledLesson

	for _, c := range classes {
		queue := make([]queuedLesson, 0, c.TotalPeriodsPerWeek())
		order := 0
		for li := range c.Lessons {
			lesson := &c.Lessons[li]
			constrainCount := domain.Days * domain.PeriodsPerDay
			if teachers := lesson.Teachers(); len(teachers) > 0 && teachers[0] != nil {
				constrainCount = teachers[0].Availability.Count()
			}
			for copies := 0; copies < lesson.PeriodsPerWeek; copies++ {
				queue = append(queue, queuedLesson{lesson: lesson, constrainCount: constrainCount, order: order})
				order++
			}
		}

		sort.SliceStable(queue, func(i, j int) bool {
			return queue[i].constrainCount < queue[j].constrainCount
		})

		for _, q := range queue {
			placed := false
			for d := 0; d < domain.Days && !placed; d++ {
				for p := 0; p < domain.PeriodsPerDay && !placed; p++ {
					if canPlace(c.Name, d, p, q.lesson) {
						t.Schedule[c.Name][d][p] = q.lesson
						markOccupied(d, p, q.lesson)
						placed = true
					}
				}
			}
			if !placed {
				unscheduled = append(unscheduled, UnscheduledLesson{Class: c.Name, Lesson: q.lesson})
			}
		}
	}

	t.CompactSchedulePreservingTeacherAvailability()
	return t, unscheduled
}
