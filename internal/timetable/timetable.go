// Package timetable holds the mutable grid the scheduler search operates
// on: construction, cloning, compaction, conflict identification, and the
// local repair operators. Lessons and Teachers referenced from a grid cell
// are shared, read-only data owned elsewhere; only the grids themselves are
// copied on Clone.
package timetable

import "github.com/noah-isme/schedulengine/internal/domain"

// Grid is one class's weekly row: Days x PeriodsPerDay cells, each either a
// shared Lesson reference or nil (empty).
type Grid [domain.Days][domain.PeriodsPerDay]*domain.Lesson

// Timetable is the per-class schedule under construction or search.
type Timetable struct {
	// ClassOrder preserves input class order; it is the tie-break used by
	// seed placement and by emergency cleanup's first-class-wins policy.
	ClassOrder []string
	Schedule   map[string]*Grid
}

// NewEmpty allocates an empty grid per class, in classes' input order.
func NewEmpty(classes []*domain.Class) *Timetable {
	t := &Timetable{
		ClassOrder: make([]string, 0, len(classes)),
		Schedule:   make(map[string]*Grid, len(classes)),
	}
	for _, c := range classes {
		t.ClassOrder = append(t.ClassOrder, c.Name)
		t.Schedule[c.Name] = &Grid{}
	}
	return t
}

// Clone deep-copies the grids only; Lesson pointers inside are shared.
func (t *Timetable) Clone() *Timetable {
	clone := &Timetable{
		ClassOrder: append([]string(nil), t.ClassOrder...),
		Schedule:   make(map[string]*Grid, len(t.Schedule)),
	}
	for name, grid := range t.Schedule {
		g := *grid
		clone.Schedule[name] = &g
	}
	return clone
}

// Cell returns the lesson occupying (class, d, p), or nil if empty.
func (t *Timetable) Cell(class string, d, p int) *domain.Lesson {
	grid, ok := t.Schedule[class]
	if !ok {
		return nil
	}
	return grid[d][p]
}

// SetCell places (or clears, with lesson == nil) a lesson at (class, d, p).
func (t *Timetable) SetCell(class string, d, p int, lesson *domain.Lesson) {
	grid, ok := t.Schedule[class]
	if !ok {
		return
	}
	grid[d][p] = lesson
}
