package transport

import (
	"fmt"

	"github.com/noah-isme/schedulengine/internal/domain"
	"github.com/noah-isme/schedulengine/internal/scheduler"
	appErrors "github.com/noah-isme/schedulengine/pkg/errors"
)

// ToDomain resolves a GenerateRequest into the classes scheduler.New
// expects, or a validation error naming the first thing it could not
// resolve (an unknown teacher name, or a lesson whose kind doesn't match
// its subject/teacher arity).
func (r GenerateRequest) ToDomain() ([]*domain.Class, error) {
	teachers := make(map[string]*domain.Teacher, len(r.Teachers))
	for _, ti := range r.Teachers {
		buf := make([]uint32, len(ti.Availability.Days))
		for i, mask := range ti.Availability.Days {
			buf[i] = uint32(mask)
		}
		avail := domain.FromBuffer(buf)
		teacher := domain.NewTeacher(ti.Name, avail)
		teacher.Email = ti.Email
		teachers[ti.Name] = teacher
	}

	classes := make([]*domain.Class, 0, len(r.Classes))
	for _, ci := range r.Classes {
		lessons := make([]domain.Lesson, 0, len(ci.Lessons))
		for _, li := range ci.Lessons {
			lesson, err := li.toDomain(teachers)
			if err != nil {
				return nil, appErrors.Wrap(err, "VALIDATION_ERROR", 400, fmt.Sprintf("class %q: %v", ci.Name, err))
			}
			lessons = append(lessons, lesson)
		}
		classes = append(classes, domain.NewClass(ci.Name, lessons))
	}
	return classes, nil
}

func (li LessonInput) toDomain(teachers map[string]*domain.Teacher) (domain.Lesson, error) {
	resolve := func(name string) (*domain.Teacher, error) {
		teacher, ok := teachers[name]
		if !ok {
			return nil, fmt.Errorf("unknown teacher %q", name)
		}
		return teacher, nil
	}

	switch li.Kind {
	case "normal":
		if len(li.Subjects) != 1 || len(li.Teachers) != 1 {
			return domain.Lesson{}, fmt.Errorf("normal lesson needs exactly one subject and one teacher")
		}
		teacher, err := resolve(li.Teachers[0])
		if err != nil {
			return domain.Lesson{}, err
		}
		return domain.NewNormalLesson(li.Subjects[0], teacher, li.PeriodsPerWeek), nil

	case "alternating":
		if len(li.Subjects) != 2 || len(li.Teachers) != 2 {
			return domain.Lesson{}, fmt.Errorf("alternating lesson needs exactly two subjects and two teachers")
		}
		t0, err := resolve(li.Teachers[0])
		if err != nil {
			return domain.Lesson{}, err
		}
		t1, err := resolve(li.Teachers[1])
		if err != nil {
			return domain.Lesson{}, err
		}
		return domain.NewAlternatingLesson([2]string{li.Subjects[0], li.Subjects[1]}, [2]*domain.Teacher{t0, t1}, li.PeriodsPerWeek), nil

	case "group":
		if len(li.Subjects) != 1 || len(li.Teachers) != 2 {
			return domain.Lesson{}, fmt.Errorf("group lesson needs exactly one subject and two teachers")
		}
		t0, err := resolve(li.Teachers[0])
		if err != nil {
			return domain.Lesson{}, err
		}
		t1, err := resolve(li.Teachers[1])
		if err != nil {
			return domain.Lesson{}, err
		}
		return domain.NewGroupLesson(li.Subjects[0], [2]*domain.Teacher{t0, t1}, li.PeriodsPerWeek), nil

	default:
		return domain.Lesson{}, fmt.Errorf("unknown lesson kind %q", li.Kind)
	}
}

// ToConfig maps an optional SchedulerConfigInput onto scheduler.Config,
// leaving every unset field at its zero value so Config.withDefaults
// fills it in.
func (c *SchedulerConfigInput) ToConfig() scheduler.Config {
	if c == nil {
		return scheduler.Config{}
	}
	return scheduler.Config{
		InitialPoolSize:        c.InitialPoolSize,
		MaxESIterations:        c.MaxESIterations,
		Sigma:                  c.Sigma,
		SigmaDecay:             c.SigmaDecay,
		MinSigma:               c.MinSigma,
		MaxStagnantIterations:  c.MaxStagnantIterations,
		MaxAnnealingIterations: c.MaxAnnealingIterations,
		Temperature:            c.Temperature,
		CoolingRate:            c.CoolingRate,
		MinTemperature:         c.MinTemperature,
		Seed:                   c.Seed,
	}
}

// FromResult flattens a scheduler.Result into the wire response shape.
func FromResult(result *scheduler.Result) GenerateResponse {
	resp := GenerateResponse{
		HardCost:         result.HardCost,
		SoftCost:         result.SoftCost,
		TotalFitness:     result.TotalFitness,
		UnscheduledCount: result.UnscheduledCount,
	}
	t := result.Timetable
	for _, className := range t.ClassOrder {
		for d := 0; d < domain.Days; d++ {
			for p := 0; p < domain.PeriodsPerDay; p++ {
				lesson := t.Cell(className, d, p)
				if lesson == nil {
					continue
				}
				resp.Slots = append(resp.Slots, SlotView{
					Class:    className,
					Day:      d,
					Period:   p,
					Subjects: append([]string(nil), lesson.Subjects...),
					Teachers: teacherNames(lesson),
				})
			}
		}
	}
	return resp
}

func teacherNames(lesson *domain.Lesson) []string {
	names := make([]string, 0, len(lesson.Teachers()))
	for _, teacher := range lesson.Teachers() {
		if teacher != nil {
			names = append(names, teacher.Name)
		}
	}
	return names
}
