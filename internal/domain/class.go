package domain

// Class is a group of students sharing one weekly timetable row, identified
// by a name unique within a run.
type Class struct {
	Name    string
	Lessons []Lesson
}

// NewClass builds a class from its name and lessons.
func NewClass(name string, lessons []Lesson) *Class {
	return &Class{Name: name, Lessons: lessons}
}

// TotalPeriodsPerWeek sums PeriodsPerWeek across every lesson. If this
// exceeds Days*PeriodsPerDay the class is infeasible: the seed step will
// record unscheduled lessons for it rather than erroring.
func (c *Class) TotalPeriodsPerWeek() int {
	total := 0
	for _, l := range c.Lessons {
		total += l.PeriodsPerWeek
	}
	return total
}
