package timetable

import "github.com/noah-isme/schedulengine/internal/domain"

// RNG is the minimal random source the repair operators need. *rand.Rand
// already satisfies it; the engine is built against this interface instead
// of the concrete type so a single centralized source (see
// internal/scheduler) can be threaded through every operator.
type RNG interface {
	Intn(n int) int
	Float64() float64
}

// teachersFreeAt reports whether every teacher of lesson is available at
// (d, p) and not already occupying that slot in any class.
func (t *Timetable) teachersFreeAt(d, p int, lesson *domain.Lesson) bool {
	for _, teacher := range lesson.Teachers() {
		if teacher == nil {
			continue
		}
		if !teacher.IsAvailable(d, p) {
			return false
		}
	}
	for _, className := range t.ClassOrder {
		occupant := t.Schedule[className][d][p]
		if occupant == nil {
			continue
		}
		for _, ot := range occupant.Teachers() {
			for _, teacher := range lesson.Teachers() {
				if ot != nil && teacher != nil && ot.Name == teacher.Name {
					return false
				}
			}
		}
	}
	return true
}

// MoveLessonToValidSlot enumerates empty cells in class's row where every
// teacher of the lesson at (d, p) is available and free, scores same-day
// candidates 10 and other-day candidates 9-|d'-d|, and moves the lesson to
// the best-scoring candidate. Returns false if no candidate exists.
func (t *Timetable) MoveLessonToValidSlot(class string, d, p int) bool {
	lesson := t.Cell(class, d, p)
	if lesson == nil {
		return false
	}

	bestD, bestP, bestScore := -1, -1, -1
	for d2 := 0; d2 < domain.Days; d2++ {
		for p2 := 0; p2 < domain.PeriodsPerDay; p2++ {
			if d2 == d && p2 == p {
				continue
			}
			if t.Schedule[class][d2][p2] != nil {
				continue
			}
			if !t.teachersFreeAt(d2, p2, lesson) {
				continue
			}
			score := 9 - abs(d2-d)
			if d2 == d {
				score = 10
			}
			if score > bestScore {
				bestScore, bestD, bestP = score, d2, p2
			}
		}
	}
	if bestD == -1 {
		return false
	}
	t.Schedule[class][d][p] = nil
	t.Schedule[class][bestD][bestP] = lesson
	t.CompactSchedule()
	return true
}

// SwapWithCompatibleLesson looks for another filled cell in the same
// class's row such that swapping the two lessons leaves both sides'
// teacher constraints satisfied, scoring by proximity (10-|d-d'|-|p-p'|),
// and performs the best-scoring legal swap. Returns false if none exists.
func (t *Timetable) SwapWithCompatibleLesson(class string, d, p int) bool {
	lesson := t.Cell(class, d, p)
	if lesson == nil {
		return false
	}

	bestD, bestP, bestScore := -1, -1, -1
	for d2 := 0; d2 < domain.Days; d2++ {
		for p2 := 0; p2 < domain.PeriodsPerDay; p2++ {
			if d2 == d && p2 == p {
				continue
			}
			other := t.Schedule[class][d2][p2]
			if other == nil {
				continue
			}
			if !t.legalSwap(class, lesson, other, d, p, d2, p2) {
				continue
			}
			score := 10 - abs(d-d2) - abs(p-p2)
			if score > bestScore {
				bestScore, bestD, bestP = score, d2, p2
			}
		}
	}
	if bestD == -1 {
		return false
	}
	t.Schedule[class][d][p], t.Schedule[class][bestD][bestP] = t.Schedule[class][bestD][bestP], t.Schedule[class][d][p]
	t.CompactSchedule()
	return true
}

// legalSwap checks that moving `a` into (d2,p2) and `b` into (d,p) keeps
// each lesson's teachers both available and not busy at its new slot. Busy
// is checked against every other class — a's own class is excluded because
// (d,p)/(d2,p2) are the two cells being vacated by this very swap, not a
// third occupant.
func (t *Timetable) legalSwap(class string, a, b *domain.Lesson, d, p, d2, p2 int) bool {
	for _, teacher := range a.Teachers() {
		if teacher != nil && !teacher.IsAvailable(d2, p2) {
			return false
		}
	}
	for _, teacher := range b.Teachers() {
		if teacher != nil && !teacher.IsAvailable(d, p) {
			return false
		}
	}
	if t.otherClassHasTeacherAt(class, d2, p2, a) {
		return false
	}
	if t.otherClassHasTeacherAt(class, d, p, b) {
		return false
	}
	return true
}

// otherClassHasTeacherAt reports whether some class other than class
// already occupies (d, p) with one of lesson's teachers — the cross-class
// half of the "not busy" constraint a swap target must also satisfy,
// independent of availability.
func (t *Timetable) otherClassHasTeacherAt(class string, d, p int, lesson *domain.Lesson) bool {
	for _, className := range t.ClassOrder {
		if className == class {
			continue
		}
		occupant := t.Schedule[className][d][p]
		if occupant == nil {
			continue
		}
		for _, ot := range occupant.Teachers() {
			for _, teacher := range lesson.Teachers() {
				if ot != nil && teacher != nil && ot.Name == teacher.Name {
					return true
				}
			}
		}
	}
	return false
}

// FindAlternateTeacher looks across every class's current lessons for a
// teacher who teaches the same primary subject as the lesson at (class, d,
// p), is available and free at (d, p), and replaces the cell with a
// synthetic Normal lesson taught by that teacher, preserving
// PeriodsPerWeek. Returns false if no alternate is found.
func (t *Timetable) FindAlternateTeacher(class string, d, p int) bool {
	lesson := t.Cell(class, d, p)
	if lesson == nil {
		return false
	}
	subject := lesson.PrimaryName()

	t.Schedule[class][d][p] = nil
	var alternate *domain.Teacher
	seen := make(map[string]bool)
search:
	for _, className := range t.ClassOrder {
		grid := t.Schedule[className]
		for d2 := 0; d2 < domain.Days; d2++ {
			for p2 := 0; p2 < domain.PeriodsPerDay; p2++ {
				other := grid[d2][p2]
				if other == nil || other.PrimaryName() != subject {
					continue
				}
				for _, candidate := range other.Teachers() {
					if candidate == nil || seen[candidate.Name] {
						continue
					}
					seen[candidate.Name] = true
					if candidate.IsAvailable(d, p) && t.teachersFreeAt(d, p, singleTeacherLesson(candidate)) {
						alternate = candidate
						break search
					}
				}
			}
		}
	}
	if alternate == nil {
		t.Schedule[class][d][p] = lesson
		return false
	}

	replacement := domain.NewNormalLesson(subject, alternate, lesson.PeriodsPerWeek)
	t.Schedule[class][d][p] = &replacement
	return true
}

func singleTeacherLesson(teacher *domain.Teacher) *domain.Lesson {
	l := domain.NewNormalLesson("", teacher, 1)
	return &l
}

// RebuildClassSchedule clears a class's row, recomputes the lesson queue
// (most-constrained primary teacher first), and places lessons greedily
// into valid slots (chosen at random among equally-valid candidates via
// rng), falling back to any empty slot, and finally compacts.
func (t *Timetable) RebuildClassSchedule(rng RNG, class string, classLessons []domain.Lesson) {
	grid, ok := t.Schedule[class]
	if !ok {
		return
	}
	*grid = Grid{}

	var queue []rebuildItem
	for i := range classLessons {
		lesson := &classLessons[i]
		constrainCount := domain.Days * domain.PeriodsPerDay
		if teachers := lesson.Teachers(); len(teachers) > 0 && teachers[0] != nil {
			constrainCount = teachers[0].Availability.Count()
		}
		for c := 0; c < lesson.PeriodsPerWeek; c++ {
			queue = append(queue, rebuildItem{lesson: lesson, constrainCount: constrainCount})
		}
	}
	sortByConstraint(queue)

	for _, q := range queue {
		var valid []domain.Slot
		var anyEmpty []domain.Slot
		for d := 0; d < domain.Days; d++ {
			for p := 0; p < domain.PeriodsPerDay; p++ {
				if grid[d][p] != nil {
					continue
				}
				anyEmpty = append(anyEmpty, domain.Slot{Day: d, Period: p})
				if t.teachersFreeAt(d, p, q.lesson) {
					valid = append(valid, domain.Slot{Day: d, Period: p})
				}
			}
		}
		pool := valid
		if len(pool) == 0 {
			pool = anyEmpty
		}
		if len(pool) == 0 {
			continue
		}
		choice := pool[rng.Intn(len(pool))]
		grid[choice.Day][choice.Period] = q.lesson
	}

	t.CompactSchedule()
}

// rebuildItem is one expanded slot-copy of a lesson awaiting placement in
// RebuildClassSchedule, carrying the primary teacher's availability count
// used to place the most-constrained lessons first.
type rebuildItem struct {
	lesson         *domain.Lesson
	constrainCount int
}

func sortByConstraint(queue []rebuildItem) {
	for i := 1; i < len(queue); i++ {
		j := i
		for j > 0 && queue[j-1].constrainCount > queue[j].constrainCount {
			queue[j-1], queue[j] = queue[j], queue[j-1]
			j--
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PerformRandomMutation applies one randomly chosen structural mutation to
// a randomly chosen filled cell: with probability 0.4 it swaps two lessons
// within the same day, 0.3 it swaps two lessons across days, and 0.3 it
// reshuffles an entire class-day. It is a no-op if the timetable has no
// filled cells.
func (t *Timetable) PerformRandomMutation(rng RNG) {
	className, d, p, ok := t.randomFilledCell(rng)
	if !ok {
		return
	}

	roll := rng.Float64()
	switch {
	case roll < 0.4:
		t.swapWithinDay(rng, className, d, p)
	case roll < 0.7:
		t.SwapAcrossDays(rng, className, d, p)
	default:
		t.shuffleDay(rng, className, d)
	}
}

// RandomFilledCell returns a uniformly random occupied (class, day, period)
// cell, or ok == false if the timetable has no filled cells. Exported so
// callers outside the package (simulated annealing's softNeighbor) can
// build their own mutation mixes on top of the named single-cell moves.
func (t *Timetable) RandomFilledCell(rng RNG) (class string, day, period int, ok bool) {
	return t.randomFilledCell(rng)
}

func (t *Timetable) randomFilledCell(rng RNG) (string, int, int, bool) {
	var candidates []domain.Slot
	var candidateClasses []string
	for _, className := range t.ClassOrder {
		grid := t.Schedule[className]
		for d := 0; d < domain.Days; d++ {
			for p := 0; p < domain.PeriodsPerDay; p++ {
				if grid[d][p] != nil {
					candidates = append(candidates, domain.Slot{Day: d, Period: p})
					candidateClasses = append(candidateClasses, className)
				}
			}
		}
	}
	if len(candidates) == 0 {
		return "", 0, 0, false
	}
	i := rng.Intn(len(candidates))
	return candidateClasses[i], candidates[i].Day, candidates[i].Period, true
}

// swapWithinDay swaps (d, p) with another filled period on the same day in
// the same class, if doing so keeps both lessons' teachers available.
func (t *Timetable) swapWithinDay(rng RNG, class string, d, p int) bool {
	grid := t.Schedule[class]
	var others []int
	for p2 := 0; p2 < domain.PeriodsPerDay; p2++ {
		if p2 != p && grid[d][p2] != nil {
			others = append(others, p2)
		}
	}
	if len(others) == 0 {
		return false
	}
	p2 := others[rng.Intn(len(others))]
	a, b := grid[d][p], grid[d][p2]
	if !t.legalSwap(class, a, b, d, p, d, p2) {
		return false
	}
	grid[d][p], grid[d][p2] = b, a
	return true
}

// SwapWithinDay is the exported form of swapWithinDay, the "swap two
// periods within the same day" move named in both the (1+1) ES's random
// mutation and simulated annealing's neighbor generation.
func (t *Timetable) SwapWithinDay(rng RNG, class string, d, p int) bool {
	return t.swapWithinDay(rng, class, d, p)
}

// SwapAcrossDays swaps (d, p) with a random filled period on a different
// day in the same class, only if doing so keeps both lessons' teachers
// available at their new slot — the "swap two periods across two days"
// move.
func (t *Timetable) SwapAcrossDays(rng RNG, class string, d, p int) bool {
	grid := t.Schedule[class]
	type candidate struct{ d2, p2 int }
	var others []candidate
	for d2 := 0; d2 < domain.Days; d2++ {
		if d2 == d {
			continue
		}
		for p2 := 0; p2 < domain.PeriodsPerDay; p2++ {
			if grid[d2][p2] != nil {
				others = append(others, candidate{d2, p2})
			}
		}
	}
	if len(others) == 0 {
		return false
	}
	pick := others[rng.Intn(len(others))]
	a, b := grid[d][p], grid[pick.d2][pick.p2]
	if !t.legalSwap(class, a, b, d, p, pick.d2, pick.p2) {
		return false
	}
	grid[d][p], grid[pick.d2][pick.p2] = b, a
	return true
}

// shuffleDay randomly permutes the filled lessons of one class-day and
// recompacts, trading the slot penalties of today's arrangement for
// another arrangement of the same set of lessons.
func (t *Timetable) shuffleDay(rng RNG, class string, d int) {
	grid := t.Schedule[class]
	var lessons []*domain.Lesson
	for p := 0; p < domain.PeriodsPerDay; p++ {
		if grid[d][p] != nil {
			lessons = append(lessons, grid[d][p])
			grid[d][p] = nil
		}
	}
	for i := len(lessons) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		lessons[i], lessons[j] = lessons[j], lessons[i]
	}
	for i, lesson := range lessons {
		grid[d][i] = lesson
	}
	t.CompactSchedule()
}

// ShuffleDay is the exported form of shuffleDay, the "shuffle all lessons
// of one day in place" move.
func (t *Timetable) ShuffleDay(rng RNG, class string, d int) {
	t.shuffleDay(rng, class, d)
}

// ResolveConflict tries, in order, to move the offending lesson to a valid
// slot, swap it with a compatible lesson, find an alternate teacher for it,
// or rebuild the whole class's schedule from scratch; it stops at the first
// of these that acts. A rebuild always completes, so the lesson is dropped
// from the grid only when class is not among classes and cannot be rebuilt.
func (t *Timetable) ResolveConflict(rng RNG, conflict Conflict, classes []*domain.Class) {
	class, d, p := conflict.Class, conflict.Day, conflict.Period
	if t.Cell(class, d, p) == nil {
		return
	}

	if t.MoveLessonToValidSlot(class, d, p) {
		return
	}
	if t.SwapWithCompatibleLesson(class, d, p) {
		return
	}
	if t.FindAlternateTeacher(class, d, p) {
		return
	}
	for _, c := range classes {
		if c.Name == class {
			t.RebuildClassSchedule(rng, class, c.Lessons)
			return
		}
	}
	t.Schedule[class][d][p] = nil
	t.CompactSchedule()
}
