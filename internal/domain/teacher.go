package domain

import "github.com/google/uuid"

// Teacher is a scheduling participant with its own availability. Equality
// used throughout conflict detection is by Name, not ID: two Teacher values
// sharing a Name are treated as the same teacher for double-booking and
// idle-penalty purposes.
type Teacher struct {
	ID           string
	Name         string
	Availability *Availability
	Email        *string
}

// NewTeacher builds a teacher with a stable generated ID.
func NewTeacher(name string, availability *Availability) *Teacher {
	return &Teacher{
		ID:           uuid.NewString(),
		Name:         name,
		Availability: availability,
	}
}

// IsAvailable reports whether the teacher is free at (d, p).
func (t *Teacher) IsAvailable(d, p int) bool {
	return t.Availability.Get(d, p)
}
