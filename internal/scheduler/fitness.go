package scheduler

import (
	"github.com/noah-isme/schedulengine/internal/domain"
	"github.com/noah-isme/schedulengine/internal/timetable"
)

// hardCost sums the constraint violations that must reach zero before the
// engine is willing to call a timetable feasible: availability misses and
// double-booking excess (already weighted against each other inside
// CountTeacherConflicts) plus the empty-space gaps compaction should have
// already closed.
func hardCost(t *timetable.Timetable) int {
	return t.CountTeacherConflicts() + t.CountEmptySpacePenalty()
}

// softCost sums the quality-of-life penalties the annealing phase trades
// off once the schedule is already feasible: unscheduled periods, a
// shortfall against the target number of class-days with a free first
// period, subject-distribution spread across the week, teacher/class idle
// gaps, same-day subject overload, and the absence of a globally free slot.
func softCost(t *timetable.Timetable, classes []*domain.Class, teachers []*domain.Teacher) int {
	cost := timetable.UnscheduledPeriodWeight * t.CountUnscheduledPeriods(classes)

	freeFirst := t.CountFreeFirstPeriods()
	if shortfall := timetable.FreeFirstPeriodTarget - freeFirst; shortfall > 0 {
		cost += timetable.FreeFirstPeriodWeight * shortfall
	}

	cost += distributionPenalty(t, classes)
	cost += 3 * teacherIdlePenalty(t, teachers)
	cost += 5 * groupIdlePenalty(t, classes)
	cost += 1000 * sameDaySubjectOverload(t, classes)

	if !t.HasGloballyFreeSlot() {
		cost += 100
	}
	return cost
}

// distributionPenalty penalizes a subject bunched onto too few days: for
// each class and each primary subject it teaches, count occurrences per
// day, keep only days with at least one occurrence, and if the spread
// between the busiest and the quietest of those days exceeds 1, charge
// that excess.
func distributionPenalty(t *timetable.Timetable, classes []*domain.Class) int {
	penalty := 0
	for _, c := range classes {
		perSubjectPerDay := make(map[string][domain.Days]int)
		for d := 0; d < domain.Days; d++ {
			for p := 0; p < domain.PeriodsPerDay; p++ {
				lesson := t.Cell(c.Name, d, p)
				if lesson == nil {
					continue
				}
				subject := lesson.PrimaryName()
				counts := perSubjectPerDay[subject]
				counts[d]++
				perSubjectPerDay[subject] = counts
			}
		}
		for _, counts := range perSubjectPerDay {
			min, max := -1, -1
			for _, n := range counts {
				if n == 0 {
					continue
				}
				if min == -1 || n < min {
					min = n
				}
				if n > max {
					max = n
				}
			}
			if max-min > 1 {
				penalty += max - min - 1
			}
		}
	}
	return penalty
}

// totalFitness combines hard and soft cost with hard cost weighted so
// heavily that no amount of soft improvement can make a less-feasible
// timetable score better than a more-feasible one.
func totalFitness(t *timetable.Timetable, classes []*domain.Class, teachers []*domain.Teacher) int {
	return 1000*hardCost(t) + softCost(t, classes, teachers)
}

// gapWeight charges 1 for a single-period gap, 3 for a two-period gap, and
// 5*g for anything wider, so a solitary free period barely registers but a
// teacher or class left stranded mid-day does.
func gapWeight(g int) int {
	switch g {
	case 1:
		return 1
	case 2:
		return 3
	default:
		return 5 * g
	}
}

// penaltyFromOccupied walks a day's occupied-period markers in order and
// sums gapWeight over every run of empty periods between two occupied
// ones, ignoring anything before the first or after the last occupied
// period (those are preference, not idleness).
func penaltyFromOccupied(busy [domain.PeriodsPerDay]bool) int {
	penalty := 0
	last := -1
	for p := 0; p < domain.PeriodsPerDay; p++ {
		if !busy[p] {
			continue
		}
		if last != -1 && p-last > 1 {
			penalty += gapWeight(p - last - 1)
		}
		last = p
	}
	return penalty
}

// teacherIdlePenalty sums, per teacher per day, gapWeight over every gap
// between that teacher's occupied periods across all classes — a gap in
// one teacher's personal day, not any single class's.
func teacherIdlePenalty(t *timetable.Timetable, teachers []*domain.Teacher) int {
	penalty := 0
	for _, teacher := range teachers {
		if teacher == nil {
			continue
		}
		for d := 0; d < domain.Days; d++ {
			var busy [domain.PeriodsPerDay]bool
			for _, className := range t.ClassOrder {
				for p := 0; p < domain.PeriodsPerDay; p++ {
					if lesson := t.Cell(className, d, p); lesson != nil && lesson.HasTeacher(teacher) {
						busy[p] = true
					}
				}
			}
			penalty += penaltyFromOccupied(busy)
		}
	}
	return penalty
}

// groupIdlePenalty mirrors teacherIdlePenalty at the class level: gapWeight
// over gaps within a class's own occupied periods. Under invariant I3 this
// is normally zero once compacted; it exists to push the annealing phase
// away from any transient gap a mutation introduces before the next
// compaction.
func groupIdlePenalty(t *timetable.Timetable, classes []*domain.Class) int {
	penalty := 0
	for _, c := range classes {
		for d := 0; d < domain.Days; d++ {
			var busy [domain.PeriodsPerDay]bool
			for p := 0; p < domain.PeriodsPerDay; p++ {
				busy[p] = t.Cell(c.Name, d, p) != nil
			}
			penalty += penaltyFromOccupied(busy)
		}
	}
	return penalty
}

// sameDaySubjectOverload sums, per class per day per subject, the excess
// of that subject's occurrences that day over 2 — a class is not expected
// to sit through more than two periods of the same subject before lunch
// and after.
func sameDaySubjectOverload(t *timetable.Timetable, classes []*domain.Class) int {
	penalty := 0
	for _, c := range classes {
		for d := 0; d < domain.Days; d++ {
			counts := make(map[string]int)
			for p := 0; p < domain.PeriodsPerDay; p++ {
				lesson := t.Cell(c.Name, d, p)
				if lesson == nil {
					continue
				}
				counts[lesson.PrimaryName()]++
			}
			for _, n := range counts {
				if n > 2 {
					penalty += n - 2
				}
			}
		}
	}
	return penalty
}
