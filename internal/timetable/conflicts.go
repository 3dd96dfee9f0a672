package timetable

import "github.com/noah-isme/schedulengine/internal/domain"

// ConflictKind distinguishes the two hard-constraint violations the engine
// repairs.
type ConflictKind int

const (
	// DoubleBooking: a teacher already placed in another class at (d, p).
	DoubleBooking ConflictKind = iota
	// AvailabilityMiss: the lesson's teacher is not available at (d, p).
	AvailabilityMiss
)

// Conflict identifies one hard-constraint violation at a specific cell.
type Conflict struct {
	Kind    ConflictKind
	Class   string
	Day     int
	Period  int
	Teacher string
}

// IdentifyConflicts returns every DoubleBooking conflict (ordered by
// encounter, at most one per teacher per (d, p), reported at its second
// occurrence; a third or later occurrence adds no entry), followed by every
// AvailabilityMiss conflict.
func (t *Timetable) IdentifyConflicts() []Conflict {
	var doubleBookings []Conflict
	var availabilityMisses []Conflict

	type occupant struct {
		class string
	}
	seenAtSlot := make(map[domain.Slot]map[string][]occupant)

	for _, className := range t.ClassOrder {
		grid := t.Schedule[className]
		for d := 0; d < domain.Days; d++ {
			for p := 0; p < domain.PeriodsPerDay; p++ {
				lesson := grid[d][p]
				if lesson == nil {
					continue
				}
				slot := domain.Slot{Day: d, Period: p}
				for _, teacher := range lesson.Teachers() {
					if teacher == nil {
						continue
					}
					if !teacher.IsAvailable(d, p) {
						availabilityMisses = append(availabilityMisses, Conflict{
							Kind:    AvailabilityMiss,
							Class:   className,
							Day:     d,
							Period:  p,
							Teacher: teacher.Name,
						})
					}

					if seenAtSlot[slot] == nil {
						seenAtSlot[slot] = make(map[string][]occupant)
					}
					occupants := seenAtSlot[slot][teacher.Name]
					if len(occupants) == 1 {
						doubleBookings = append(doubleBookings, Conflict{
							Kind:    DoubleBooking,
							Class:   className,
							Day:     d,
							Period:  p,
							Teacher: teacher.Name,
						})
					}
					seenAtSlot[slot][teacher.Name] = append(occupants, occupant{class: className})
				}
			}
		}
	}

	conflicts := make([]Conflict, 0, len(doubleBookings)+len(availabilityMisses))
	conflicts = append(conflicts, doubleBookings...)
	conflicts = append(conflicts, availabilityMisses...)
	return conflicts
}

// EmergencyCleanup is the deterministic last-resort pass the scheduler
// falls back to when the search budget is exhausted with hard conflicts
// still outstanding. Unlike ResolveConflict it never tries to relocate a
// lesson: for each (d, p) it keeps only the earliest-class occupant of a
// contested teacher (ClassOrder breaks ties) and nulls every later
// occupant, then nulls every remaining cell whose teacher turns out to be
// unavailable, then compacts. A plain compaction can slide an untouched
// lesson left into the very slot a conflicting lesson was just nulled
// from and recreate the double-booking the two passes above just
// removed, so the whole dedup/drop/compact sequence is repeated to a
// fixpoint (after the first round, which may only compact, each round
// either leaves the grid unchanged, in which case it is done, or strictly
// reduces the number of filled cells, so it always terminates). It guarantees CountTeacherConflicts() == 0 on return and
// is idempotent: running it again on its own output is a no-op.
func (t *Timetable) EmergencyCleanup() {
	maxRounds := 2*len(t.ClassOrder)*domain.Days*domain.PeriodsPerDay + 2
	for round := 0; round < maxRounds; round++ {
		before := t.snapshotGrids()

		t.dedupeDoubleBookings()
		t.dropUnavailableCells()
		t.CompactSchedule()

		if t.gridsEqual(before) {
			return
		}
	}
}

// snapshotGrids copies every class's current grid by value, for comparing
// against after a dedup/drop/compact round to detect a fixpoint.
func (t *Timetable) snapshotGrids() map[string]Grid {
	snap := make(map[string]Grid, len(t.Schedule))
	for name, grid := range t.Schedule {
		snap[name] = *grid
	}
	return snap
}

// gridsEqual reports whether every class's current grid matches snap.
func (t *Timetable) gridsEqual(snap map[string]Grid) bool {
	if len(snap) != len(t.Schedule) {
		return false
	}
	for name, grid := range t.Schedule {
		if snap[name] != *grid {
			return false
		}
	}
	return true
}

// dedupeDoubleBookings nulls every cell but the earliest-class occupant of
// a contested teacher at each (d, p), ClassOrder breaking ties.
func (t *Timetable) dedupeDoubleBookings() {
	for d := 0; d < domain.Days; d++ {
		for p := 0; p < domain.PeriodsPerDay; p++ {
			claimed := make(map[string]bool)
			for _, className := range t.ClassOrder {
				grid := t.Schedule[className]
				lesson := grid[d][p]
				if lesson == nil {
					continue
				}
				bumped := false
				for _, teacher := range lesson.Teachers() {
					if teacher != nil && claimed[teacher.Name] {
						bumped = true
					}
				}
				if bumped {
					grid[d][p] = nil
					continue
				}
				for _, teacher := range lesson.Teachers() {
					if teacher != nil {
						claimed[teacher.Name] = true
					}
				}
			}
		}
	}
}

// dropUnavailableCells nulls every filled cell whose lesson has a teacher
// unavailable at that slot.
func (t *Timetable) dropUnavailableCells() {
	for _, className := range t.ClassOrder {
		grid := t.Schedule[className]
		for d := 0; d < domain.Days; d++ {
			for p := 0; p < domain.PeriodsPerDay; p++ {
				lesson := grid[d][p]
				if lesson == nil {
					continue
				}
				for _, teacher := range lesson.Teachers() {
					if teacher != nil && !teacher.IsAvailable(d, p) {
						grid[d][p] = nil
						break
					}
				}
			}
		}
	}
}
