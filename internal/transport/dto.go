// Package transport holds the wire contracts for cmd/schedulerd's HTTP
// surface and cmd/schedulegen's scenario files. Keeping these structs
// separate from internal/domain and internal/timetable lets the core
// engine stay free of json/validate tags it has no business carrying.
package transport

// AvailabilityInput is a teacher's weekly availability as 5 seven-bit day
// masks (bit p set means period p is free), matching the bitset layout
// internal/domain.Availability.Buffer serializes to.
type AvailabilityInput struct {
	Days [5]uint8 `json:"days" validate:"required"`
}

// TeacherInput names a teacher and their weekly availability.
type TeacherInput struct {
	Name         string            `json:"name" validate:"required"`
	Email        *string           `json:"email,omitempty" validate:"omitempty,email"`
	Availability AvailabilityInput `json:"availability" validate:"required"`
}

// LessonInput describes one of a class's weekly lesson blocks. Kind is
// "normal", "alternating", or "group"; "normal" carries one subject and one
// teacher, "alternating" two subjects and two teachers, and "group" one
// subject and two teachers, teacher names resolved against the request's
// Teachers list.
type LessonInput struct {
	Kind           string   `json:"kind" validate:"required,oneof=normal alternating group"`
	Subjects       []string `json:"subjects" validate:"required,min=1,max=2"`
	Teachers       []string `json:"teachers" validate:"required,min=1,max=2"`
	PeriodsPerWeek int      `json:"periodsPerWeek" validate:"required,min=1,max=35"`
}

// ClassInput names a class and its weekly lesson demand.
type ClassInput struct {
	Name    string        `json:"name" validate:"required"`
	Lessons []LessonInput `json:"lessons" validate:"required,min=1,dive"`
}

// SchedulerConfigInput overrides the engine's default tuning. Every field
// is optional; zero values fall back to scheduler.DefaultConfig.
type SchedulerConfigInput struct {
	InitialPoolSize        int     `json:"initialPoolSize,omitempty" validate:"omitempty,min=1"`
	MaxESIterations        int     `json:"maxEsIterations,omitempty" validate:"omitempty,min=1"`
	Sigma                  float64 `json:"sigma,omitempty" validate:"omitempty,gt=0"`
	SigmaDecay             float64 `json:"sigmaDecay,omitempty" validate:"omitempty,gt=0,lt=1"`
	MinSigma               float64 `json:"minSigma,omitempty" validate:"omitempty,gt=0"`
	MaxStagnantIterations  int     `json:"maxStagnantIterations,omitempty" validate:"omitempty,min=1"`
	MaxAnnealingIterations int     `json:"maxAnnealingIterations,omitempty" validate:"omitempty,min=1"`
	Temperature            float64 `json:"temperature,omitempty" validate:"omitempty,gt=0"`
	CoolingRate            float64 `json:"coolingRate,omitempty" validate:"omitempty,gt=0,lt=1"`
	MinTemperature         float64 `json:"minTemperature,omitempty" validate:"omitempty,gt=0"`
	Seed                   int64   `json:"seed,omitempty"`
}

// GenerateRequest is the full input to one scheduling run.
type GenerateRequest struct {
	Teachers []TeacherInput        `json:"teachers" validate:"required,min=1,dive"`
	Classes  []ClassInput          `json:"classes" validate:"required,min=1,dive"`
	Config   *SchedulerConfigInput `json:"config,omitempty"`
}

// SlotView is one filled cell of the resulting timetable.
type SlotView struct {
	Class    string   `json:"class"`
	Day      int      `json:"day"`
	Period   int      `json:"period"`
	Subjects []string `json:"subjects"`
	Teachers []string `json:"teachers"`
}

// GenerateResponse is the full output of one scheduling run.
type GenerateResponse struct {
	Slots            []SlotView `json:"slots"`
	HardCost         int        `json:"hardCost"`
	SoftCost         int        `json:"softCost"`
	TotalFitness     int        `json:"totalFitness"`
	UnscheduledCount int        `json:"unscheduledCount"`
}
