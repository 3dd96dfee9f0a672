// Package domain holds the leaf data model for the scheduling engine:
// availability bitsets, teachers, lessons, and classes. Nothing in this
// package depends on the timetable grid or the search that fills it.
package domain

// Days and PeriodsPerDay fix the weekly horizon every Availability and
// Timetable grid is built against. PeriodsPerDay must stay within the bit
// width of the Availability storage word (see Availability).
const (
	Days          = 5
	PeriodsPerDay = 7
)
