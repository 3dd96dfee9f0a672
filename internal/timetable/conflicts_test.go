package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedulengine/internal/domain"
)

func TestIdentifyConflictsDetectsAvailabilityMiss(t *testing.T) {
	avail := domain.NewAvailability()
	teacher := domain.NewTeacher("Ada", avail)
	class := domain.NewClass("5A", nil)
	lesson := domain.NewNormalLesson("Math", teacher, 1)

	tt := NewEmpty([]*domain.Class{class})
	tt.SetCell("5A", 0, 0, &lesson)

	conflicts := tt.IdentifyConflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, AvailabilityMiss, conflicts[0].Kind)
	assert.Equal(t, "Ada", conflicts[0].Teacher)
}

func TestIdentifyConflictsDetectsDoubleBooking(t *testing.T) {
	teacher := domain.NewTeacher("Ada", domain.FullAvailability())
	classA := domain.NewClass("5A", nil)
	classB := domain.NewClass("5B", nil)
	lessonA := domain.NewNormalLesson("Math", teacher, 1)
	lessonB := domain.NewNormalLesson("Science", teacher, 1)

	tt := NewEmpty([]*domain.Class{classA, classB})
	tt.SetCell("5A", 0, 0, &lessonA)
	tt.SetCell("5B", 0, 0, &lessonB)

	conflicts := tt.IdentifyConflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, DoubleBooking, conflicts[0].Kind)
	assert.Equal(t, "5B", conflicts[0].Class)
}

func TestIdentifyConflictsReturnsNoneOnCleanGrid(t *testing.T) {
	teacher := domain.NewTeacher("Ada", domain.FullAvailability())
	class := domain.NewClass("5A", nil)
	lesson := domain.NewNormalLesson("Math", teacher, 1)

	tt := NewEmpty([]*domain.Class{class})
	tt.SetCell("5A", 0, 0, &lesson)

	assert.Empty(t, tt.IdentifyConflicts())
}

func TestCountTeacherConflictsWeighsDoubleBookingAboveAvailabilityMiss(t *testing.T) {
	unavailable := domain.NewAvailability()
	teacher := domain.NewTeacher("Ada", unavailable)
	class := domain.NewClass("5A", nil)
	lesson := domain.NewNormalLesson("Math", teacher, 1)

	tt := NewEmpty([]*domain.Class{class})
	tt.SetCell("5A", 0, 0, &lesson)

	assert.Equal(t, AvailabilityMissPenalty, tt.CountTeacherConflicts())

	free := domain.NewTeacher("Grace", domain.FullAvailability())
	classB := domain.NewClass("5B", nil)
	classC := domain.NewClass("5C", nil)
	lessonB := domain.NewNormalLesson("Math", free, 1)
	lessonC := domain.NewNormalLesson("Science", free, 1)

	doubled := NewEmpty([]*domain.Class{classB, classC})
	doubled.SetCell("5B", 0, 0, &lessonB)
	doubled.SetCell("5C", 0, 0, &lessonC)

	assert.Equal(t, DoubleBookingPenalty, doubled.CountTeacherConflicts())
	assert.Greater(t, doubled.CountTeacherConflicts(), tt.CountTeacherConflicts())
}

func TestEmergencyCleanupResolvesDoubleBookingKeepingEarliestClass(t *testing.T) {
	teacher := domain.NewTeacher("Ada", domain.FullAvailability())
	classA := domain.NewClass("5A", nil)
	classB := domain.NewClass("5B", nil)
	lessonA := domain.NewNormalLesson("Math", teacher, 1)
	lessonB := domain.NewNormalLesson("Science", teacher, 1)

	tt := NewEmpty([]*domain.Class{classA, classB})
	tt.SetCell("5A", 0, 0, &lessonA)
	tt.SetCell("5B", 0, 0, &lessonB)

	tt.EmergencyCleanup()

	assert.Equal(t, 0, tt.CountTeacherConflicts())
	assert.NotNil(t, tt.Cell("5A", 0, 0))
	assert.Nil(t, tt.Cell("5B", 0, 0))
}

func TestEmergencyCleanupDropsUnavailableCell(t *testing.T) {
	unavailable := domain.NewAvailability()
	teacher := domain.NewTeacher("Ada", unavailable)
	class := domain.NewClass("5A", nil)
	lesson := domain.NewNormalLesson("Math", teacher, 1)

	tt := NewEmpty([]*domain.Class{class})
	tt.SetCell("5A", 0, 0, &lesson)

	tt.EmergencyCleanup()

	assert.Equal(t, 0, tt.CountTeacherConflicts())
	assert.Nil(t, tt.Cell("5A", 0, 0))
}

func TestEmergencyCleanupDoesNotReintroduceConflictWhileCompacting(t *testing.T) {
	teacher := domain.NewTeacher("Ada", domain.FullAvailability())
	classA := domain.NewClass("5A", nil)
	classB := domain.NewClass("5B", nil)
	lessonA := domain.NewNormalLesson("Math", teacher, 1)
	lessonB0 := domain.NewNormalLesson("Science", teacher, 1)
	lessonB1 := domain.NewNormalLesson("Art", teacher, 1)

	// 5A claims Ada at (0,0). 5B also claims Ada at (0,0) (the conflict
	// EmergencyCleanup must null) and, separately, at (0,1) — a lesson a
	// naive CompactSchedule would slide left into the freshly-nulled (0,0)
	// and silently recreate the double-booking with 5A.
	tt := NewEmpty([]*domain.Class{classA, classB})
	tt.SetCell("5A", 0, 0, &lessonA)
	tt.SetCell("5B", 0, 0, &lessonB0)
	tt.SetCell("5B", 0, 1, &lessonB1)

	tt.EmergencyCleanup()

	require.Equal(t, 0, tt.CountTeacherConflicts())
	assert.True(t, tt.ValidateNoGaps())

	after := tt.Clone()
	after.EmergencyCleanup()
	assert.Equal(t, tt.Schedule, after.Schedule)
}

func TestEmergencyCleanupIsIdempotent(t *testing.T) {
	teacher1 := domain.NewTeacher("Ada", domain.FullAvailability())
	unavailable := domain.NewAvailability()
	teacher2 := domain.NewTeacher("Grace", unavailable)
	classA := domain.NewClass("5A", nil)
	classB := domain.NewClass("5B", nil)
	lessonA := domain.NewNormalLesson("Math", teacher1, 1)
	lessonB := domain.NewNormalLesson("Math", teacher1, 1)
	lessonC := domain.NewNormalLesson("Science", teacher2, 1)

	tt := NewEmpty([]*domain.Class{classA, classB})
	tt.SetCell("5A", 0, 0, &lessonA)
	tt.SetCell("5B", 0, 0, &lessonB)
	tt.SetCell("5A", 0, 1, &lessonC)

	tt.EmergencyCleanup()
	require.Equal(t, 0, tt.CountTeacherConflicts())

	after := tt.Clone()
	after.EmergencyCleanup()

	assert.Equal(t, tt.Schedule, after.Schedule)
}
