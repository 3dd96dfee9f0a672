// Package scheduler drives the two-phase search over internal/timetable
// grids: a (1+1) evolution strategy that hunts for a hard-constraint-free
// arrangement, followed by simulated annealing that polishes soft cost
// without ever regressing hard cost. Everything here is transport- and
// storage-agnostic; it is imported by internal/runqueue, internal/transport
// and the two commands, and imports neither of the first two itself.
package scheduler

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	mrand "math/rand"

	"go.uber.org/zap"

	"github.com/noah-isme/schedulengine/internal/domain"
	"github.com/noah-isme/schedulengine/internal/timetable"
)

// Scheduler holds one run's fixed inputs (classes, and the teachers they
// reference) plus its tuning and instrumentation. It is not safe for
// concurrent use by multiple goroutines; internal/runqueue gives every
// submitted request its own Scheduler.
type Scheduler struct {
	classes  []*domain.Class
	teachers []*domain.Teacher
	cfg      Config
	rng      *mrand.Rand
	logger   *zap.Logger
	metrics  *Metrics
}

// New builds a Scheduler over classes, deriving the distinct teacher set
// referenced by their lessons. A nil logger becomes zap.NewNop(); a nil
// metrics leaves instrumentation as a no-op.
func New(classes []*domain.Class, cfg Config, logger *zap.Logger, metrics *Metrics) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	seed := cfg.Seed
	if seed == 0 {
		seed = deriveSeed()
		logger.Sugar().Infow("derived scheduler seed", "seed", seed)
	}

	return &Scheduler{
		classes:  classes,
		teachers: distinctTeachers(classes),
		cfg:      cfg,
		rng:      mrand.New(mrand.NewSource(seed)),
		logger:   logger,
		metrics:  metrics,
	}
}

func deriveSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63))
}

func distinctTeachers(classes []*domain.Class) []*domain.Teacher {
	seen := make(map[string]bool)
	var teachers []*domain.Teacher
	for _, c := range classes {
		for _, lesson := range c.Lessons {
			for _, teacher := range lesson.Teachers() {
				if teacher == nil || seen[teacher.Name] {
					continue
				}
				seen[teacher.Name] = true
				teachers = append(teachers, teacher)
			}
		}
	}
	return teachers
}

// Result is what Generate returns: the best timetable found, its cost
// breakdown, and the lessons it could not place.
type Result struct {
	Timetable        *timetable.Timetable
	HardCost         int
	SoftCost         int
	TotalFitness     int
	UnscheduledCount int
}

// Generate runs the constructive seed pass, the (1+1) evolution strategy,
// and simulated annealing in sequence, checking ctx between outer
// iterations of each phase. On cancellation it returns the best timetable
// found so far alongside ctx.Err().
func (s *Scheduler) Generate(ctx context.Context) (*Result, error) {
	best, unscheduled := s.buildSeedPool()
	bestFitness := totalFitness(best, s.classes, s.teachers)
	s.logger.Sugar().Infow("seed pool selected", "pool_size", s.cfg.InitialPoolSize, "unscheduled", len(unscheduled), "fitness", bestFitness)

	best, bestFitness, esErr := s.runEvolutionStrategy(ctx, best, bestFitness)

	// Phase-1 step 4: hand phase 2 a board that is compacted against
	// availability and free of gaps and conflicts — SA must polish soft
	// cost over an already hard-conflict-free board, not clean one up
	// after the fact. CompactSchedulePreservingTeacherAvailability can
	// itself leave a gap when it has to skip a busy period, so the
	// cleanup pass runs whenever any class-day has a gap as well as
	// whenever hard cost is still positive; EmergencyCleanup's
	// dedup/drop/compact fixpoint is a no-op on a board that is already
	// clean.
	best = best.Clone()
	best.CompactSchedulePreservingTeacherAvailability()
	if hardCost(best) > 0 || !best.ValidateNoGaps() {
		s.logger.Sugar().Warnw("emergency cleanup engaged after evolution strategy", "hard_cost", hardCost(best))
		best = s.emergencyCleanup(best)
	}
	bestFitness = totalFitness(best, s.classes, s.teachers)

	if esErr != nil {
		return s.result(best), esErr
	}

	best, bestFitness, err := s.runSimulatedAnnealing(ctx, best, bestFitness)
	if err != nil {
		return s.result(best), err
	}

	return s.result(best), nil
}

func (s *Scheduler) result(t *timetable.Timetable) *Result {
	return &Result{
		Timetable:        t,
		HardCost:         hardCost(t),
		SoftCost:         softCost(t, s.classes, s.teachers),
		TotalFitness:     totalFitness(t, s.classes, s.teachers),
		UnscheduledCount: t.CountUnscheduledPeriods(s.classes),
	}
}

// buildSeedPool constructs InitialPoolSize candidate timetables and returns
// the one with the lowest hardCost, plus the unscheduled lessons its
// constructive pass recorded. The constructive pass itself (timetable.
// Construct) is a deterministic greedy placement given the same classes, so
// independence across pool members comes from perturbing every member but
// the first with one round of the same mutation the ES phase uses — this
// gives the pool genuinely different starting basins to pick the best of,
// rather than selecting among InitialPoolSize copies of the same grid.
func (s *Scheduler) buildSeedPool() (*timetable.Timetable, []timetable.UnscheduledLesson) {
	best, unscheduled := timetable.Construct(s.classes)
	bestHard := hardCost(best)

	for i := 1; i < s.cfg.InitialPoolSize; i++ {
		candidate, dropped := timetable.Construct(s.classes)
		candidate = s.createMutatedOffspring(candidate, s.cfg.Sigma)
		if h := hardCost(candidate); h < bestHard {
			best, bestHard, unscheduled = candidate, h, dropped
		}
	}
	return best, unscheduled
}

// runEvolutionStrategy is the (1+1) hard-constraint phase: each iteration
// mutates the current working timetable and accepts the mutation only when
// it strictly lowers hard cost. A separate all-time elite (best/bestHard) is
// tracked throughout and is what the phase actually returns, so neither a
// rejected offspring nor a restart ever loses the best board found, which
// is the elitism the (1+1) ES depends on (P7: bestCost never increases).
// Sigma grows only when a new elite is found and decays
// only every 10th stagnant iteration; a long stagnant streak restarts
// current from a clone of the elite rather than a fresh, unrelated seed.
func (s *Scheduler) runEvolutionStrategy(ctx context.Context, current *timetable.Timetable, currentFitness int) (*timetable.Timetable, int, error) {
	best := current
	bestHard := hardCost(current)
	sigma := s.cfg.Sigma
	stagnant := 0

	for i := 0; i < s.cfg.MaxESIterations; i++ {
		if err := ctx.Err(); err != nil {
			return best, totalFitness(best, s.classes, s.teachers), err
		}
		if bestHard == 0 {
			break
		}

		offspring := s.createMutatedOffspring(current, sigma)
		offspringHard := hardCost(offspring)
		s.metrics.incES()

		improvedBest := false
		if offspringHard < hardCost(current) {
			current = offspring
			if offspringHard < bestHard {
				best, bestHard = current, offspringHard
				improvedBest = true
			}
		}

		if improvedBest {
			stagnant = 0
			sigma = math.Min(sigma*1.1, 4.0)
		} else {
			stagnant++
			if stagnant%10 == 0 {
				sigma = math.Max(sigma*s.cfg.SigmaDecay, s.cfg.MinSigma)
			}
		}

		s.metrics.observeBest(bestHard, softCost(best, s.classes, s.teachers), best.CountUnscheduledPeriods(s.classes))

		if stagnant >= s.cfg.MaxStagnantIterations {
			s.logger.Sugar().Infow("evolution strategy restart", "iteration", i, "best_hard_cost", bestHard)
			current = best.Clone()
			sigma = 2.0
			stagnant = 0
		}
	}

	return best, totalFitness(best, s.classes, s.teachers), nil
}

// createMutatedOffspring clones parent and applies either a targeted
// conflict repair (when one exists, biasing the search toward feasibility)
// or round(sigma) random structural mutations.
func (s *Scheduler) createMutatedOffspring(parent *timetable.Timetable, sigma float64) *timetable.Timetable {
	offspring := parent.Clone()

	if conflicts := offspring.IdentifyConflicts(); len(conflicts) > 0 {
		pick := conflicts[s.rng.Intn(len(conflicts))]
		offspring.ResolveConflict(s.rng, pick, s.classes)
		return offspring
	}

	steps := int(math.Round(sigma))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		offspring.PerformRandomMutation(s.rng)
	}
	return offspring
}

// runSimulatedAnnealing is the soft-constraint polishing phase. A
// candidate that would raise hard cost is always rejected; among
// hard-cost-neutral candidates, an improvement is always accepted and a
// regression is accepted with probability exp(-delta/temperature).
func (s *Scheduler) runSimulatedAnnealing(ctx context.Context, current *timetable.Timetable, currentFitness int) (*timetable.Timetable, int, error) {
	best, bestFitness := current, currentFitness
	currentHard := hardCost(current)
	currentSoft := softCost(current, s.classes, s.teachers)
	temperature := s.cfg.Temperature

	for i := 0; i < s.cfg.MaxAnnealingIterations; i++ {
		if err := ctx.Err(); err != nil {
			return best, bestFitness, err
		}

		candidate := s.softNeighbor(current)
		candidateHard := hardCost(candidate)
		s.metrics.incSA()

		if candidateHard > currentHard {
			continue
		}

		candidateSoft := softCost(candidate, s.classes, s.teachers)
		delta := candidateSoft - currentSoft
		accept := delta <= 0
		if !accept && temperature > 0 {
			accept = s.rng.Float64() < math.Exp(-float64(delta)/temperature)
		}

		if accept {
			current, currentHard, currentSoft = candidate, candidateHard, candidateSoft
			fitness := totalFitness(current, s.classes, s.teachers)
			if fitness < bestFitness {
				best, bestFitness = current, fitness
			}
		}

		s.metrics.observeBest(hardCost(best), softCost(best, s.classes, s.teachers), best.CountUnscheduledPeriods(s.classes))

		temperature = math.Max(temperature*s.cfg.CoolingRate, s.cfg.MinTemperature)
	}

	return best, bestFitness, nil
}

// softNeighbor clones current and applies 1-3 random structural mutations
// — each a swap-within-day (0.4), swap-across-days (0.4), or shuffle-day
// (0.2) on a randomly chosen filled cell — then compacts once, producing
// the candidate simulated annealing accepts or rejects as a whole.
func (s *Scheduler) softNeighbor(current *timetable.Timetable) *timetable.Timetable {
	candidate := current.Clone()
	steps := 1 + s.rng.Intn(3)
	for i := 0; i < steps; i++ {
		className, d, p, ok := candidate.RandomFilledCell(s.rng)
		if !ok {
			break
		}
		roll := s.rng.Float64()
		switch {
		case roll < 0.4:
			candidate.SwapWithinDay(s.rng, className, d, p)
		case roll < 0.8:
			candidate.SwapAcrossDays(s.rng, className, d, p)
		default:
			candidate.ShuffleDay(s.rng, className, d)
		}
	}
	candidate.CompactSchedule()
	return candidate
}

// emergencyCleanup is the last-resort pass run when the search exhausts its
// iteration budget without reaching hard cost zero. Unlike the ES/SA repair
// operators it never tries to relocate a lesson elsewhere: it deterministically
// drops whichever cells are still in conflict, keeping the earliest class in
// ClassOrder on every double-booked slot, which guarantees zero teacher
// conflicts on return (P5) at the cost of a lesson becoming unscheduled.
func (s *Scheduler) emergencyCleanup(t *timetable.Timetable) *timetable.Timetable {
	cleaned := t.Clone()
	cleaned.EmergencyCleanup()
	return cleaned
}

// ValidateInvariants returns an error describing the first structural
// invariant a finished timetable violates, or nil if none do. Callers use
// it to distinguish a merely suboptimal result from a broken one. A
// timetable that still has teacher conflicts after the scheduler's own
// emergency cleanup is exactly the "internal invariant broken" condition
// §7 calls out, so it is checked here alongside the gap and class-presence
// invariants rather than left to a caller that only inspects HardCost.
func ValidateInvariants(t *timetable.Timetable, classes []*domain.Class) error {
	if !t.ValidateNoGaps() {
		return fmt.Errorf("timetable has a gap before a filled period")
	}
	for _, c := range classes {
		if _, ok := t.Schedule[c.Name]; !ok {
			return fmt.Errorf("timetable is missing class %q", c.Name)
		}
	}
	if conflicts := t.CountTeacherConflicts(); conflicts > 0 {
		return fmt.Errorf("timetable still has teacher conflicts after cleanup: %d", conflicts)
	}
	return nil
}
