package timetable

import "github.com/noah-isme/schedulengine/internal/domain"

// Penalty constants for CountTeacherConflicts and CountEmptySpacePenalty.
// The ordering — double-booking strictly dominates availability misses,
// which dominate empty-space gaps — must be preserved; the exact
// magnitudes may be revisited.
const (
	AvailabilityMissPenalty = 2000
	DoubleBookingPenalty    = 10000
	EmptySpaceCellPenalty   = 5000
	UnscheduledPeriodWeight = 50
	FreeFirstPeriodTarget   = 5
	FreeFirstPeriodWeight   = 2
)

// CountTeacherConflicts sums AvailabilityMissPenalty per filled cell whose
// teacher is unavailable there, plus DoubleBookingPenalty*(k-1) per (d, p)
// where a teacher appears in k > 1 cells across classes.
func (t *Timetable) CountTeacherConflicts() int {
	penalty := 0
	occupancy := make(map[domain.Slot]map[string]int)

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
						penalty += AvailabilityMissPenalty
					}
					if occupancy[slot] == nil {
						occupancy[slot] = make(map[string]int)
					}
					occupancy[slot][teacher.Name]++
				}
			}
		}
	}

	for _, byTeacher := range occupancy {
		for _, count := range byTeacher {
			if count > 1 {
				penalty += DoubleBookingPenalty * (count - 1)
			}
		}
	}
	return penalty
}

// CountUnscheduledPeriods sums, over classes, TotalPeriodsPerWeek minus the
// number of filled cells in that class's row.
func (t *Timetable) CountUnscheduledPeriods(classes []*domain.Class) int {
	total := 0
	for _, c := range classes {
		grid := t.Schedule[c.Name]
		if grid == nil {
			total += c.TotalPeriodsPerWeek()
			continue
		}
		filled := 0
		for d := 0; d < domain.Days; d++ {
			for p := 0; p < domain.PeriodsPerDay; p++ {
				if grid[d][p] != nil {
					filled++
				}
			}
		}
		total += c.TotalPeriodsPerWeek() - filled
	}
	return total
}

// CountEmptySpacePenalty counts EmptySpaceCellPenalty per nil cell that
// falls strictly between the first and last filled period of a class-day.
func (t *Timetable) CountEmptySpacePenalty() int {
	penalty := 0
	for _, className := range t.ClassOrder {
		grid := t.Schedule[className]
		for d := 0; d < domain.Days; d++ {
			first, last := -1, -1
			for p := 0; p < domain.PeriodsPerDay; p++ {
				if grid[d][p] != nil {
					if first == -1 {
						first = p
					}
					last = p
				}
			}
			if first == -1 {
				continue
			}
			for p := first; p <= last; p++ {
				if grid[d][p] == nil {
					penalty += EmptySpaceCellPenalty
				}
			}
		}
	}
	return penalty
}

// CountFreeFirstPeriods counts class-days whose period 0 is empty.
func (t *Timetable) CountFreeFirstPeriods() int {
	count := 0
	for _, className := range t.ClassOrder {
		grid := t.Schedule[className]
		for d := 0; d < domain.Days; d++ {
			if grid[d][0] == nil {
				count++
			}
		}
	}
	return count
}

// HasGloballyFreeSlot reports whether some (d, p) is empty across every
// class in the timetable.
func (t *Timetable) HasGloballyFreeSlot() bool {
	for d := 0; d < domain.Days; d++ {
		for p := 0; p < domain.PeriodsPerDay; p++ {
			free := true
			for _, className := range t.ClassOrder {
				if t.Schedule[className][d][p] != nil {
					free = false
					break
				}
			}
			if free {
				return true
			}
		}
	}
	return false
}

// ValidateNoGaps reports whether every class-day's filled periods form a
// prefix (invariant I3).
func (t *Timetable) ValidateNoGaps() bool {
	for _, className := range t.ClassOrder {
		grid := t.Schedule[className]
		for d := 0; d < domain.Days; d++ {
			seenEmpty := false
			for p := 0; p < domain.PeriodsPerDay; p++ {
				if grid[d][p] == nil {
					seenEmpty = true
				} else if seenEmpty {
					return false
				}
			}
		}
	}
	return true
}
