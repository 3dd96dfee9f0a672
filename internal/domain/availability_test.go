package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityGetSetRoundTrip(t *testing.T) {
	a := NewAvailability()
	assert.False(t, a.Get(0, 0))

	a.Set(2, 3, true)
	assert.True(t, a.Get(2, 3))
	assert.False(t, a.Get(2, 4))

	a.Set(2, 3, false)
	assert.False(t, a.Get(2, 3))
}

func TestAvailabilitySetDay(t *testing.T) {
	a := NewAvailability()
	a.SetDay(1, true)
	for p := 0; p < PeriodsPerDay; p++ {
		assert.True(t, a.Get(1, p))
	}
	assert.Equal(t, PeriodsPerDay, a.Count())

	a.SetDay(1, false)
	assert.Equal(t, 0, a.Count())
}

func TestAvailabilityToggle(t *testing.T) {
	a := NewAvailability()
	a.Toggle(0, 0)
	assert.True(t, a.Get(0, 0))
	a.Toggle(0, 0)
	assert.False(t, a.Get(0, 0))
}

func TestAvailabilityOutOfBoundsPanics(t *testing.T) {
	a := NewAvailability()
	assert.Panics(t, func() { a.Get(Days, 0) })
	assert.Panics(t, func() { a.Set(0, PeriodsPerDay, true) })
	assert.Panics(t, func() { a.SetDay(-1, true) })
}

func TestFullAvailabilityCoversEverySlot(t *testing.T) {
	a := FullAvailability()
	assert.Equal(t, Days*PeriodsPerDay, a.Count())
	assert.Len(t, a.AvailableSlots(), Days*PeriodsPerDay)
}

func TestAvailableSlotsOrdering(t *testing.T) {
	a := NewAvailability()
	a.Set(1, 2, true)
	a.Set(0, 5, true)
	slots := a.AvailableSlots()
	require.Len(t, slots, 2)
	assert.Equal(t, Slot{Day: 0, Period: 5}, slots[0])
	assert.Equal(t, Slot{Day: 1, Period: 2}, slots[1])
}

func TestAvailabilityCloneIsIndependent(t *testing.T) {
	a := NewAvailability()
	a.Set(0, 0, true)
	clone := a.Clone()
	clone.Set(0, 1, true)

	assert.False(t, a.Get(0, 1))
	assert.True(t, clone.Get(0, 0))
}

func TestAvailabilityBufferRoundTrip(t *testing.T) {
	a := NewAvailability()
	a.Set(0, 0, true)
	a.Set(4, 6, true)

	buf := a.Buffer()
	require.Len(t, buf, Days)

	rebuilt := FromBuffer(buf)
	assert.True(t, rebuilt.Get(0, 0))
	assert.True(t, rebuilt.Get(4, 6))
	assert.Equal(t, a.Count(), rebuilt.Count())
}

func TestFromBufferMasksHighBits(t *testing.T) {
	buf := []uint32{0xFFFFFFFF, 0, 0, 0, 0}
	a := FromBuffer(buf)
	assert.Equal(t, PeriodsPerDay, a.Count())
	for p := 0; p < PeriodsPerDay; p++ {
		assert.True(t, a.Get(0, p))
	}
}

func TestFromBufferShorterThanDaysLeavesRestUnavailable(t *testing.T) {
	a := FromBuffer([]uint32{1})
	assert.True(t, a.Get(0, 0))
	assert.Equal(t, 1, a.Count())
}
