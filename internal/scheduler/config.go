package scheduler

// Config governs the two-phase search: a (1+1) evolution strategy that
// drives hard-constraint cost to zero, followed by simulated annealing
// that polishes soft-constraint cost without ever letting hard cost rise.
// Zero-valued fields are filled in by DefaultConfig's values at
// construction time via New.
type Config struct {
	InitialPoolSize       int
	MaxESIterations       int
	Sigma                 float64
	SigmaDecay            float64
	MinSigma              float64
	MaxStagnantIterations int

	MaxAnnealingIterations int
	Temperature            float64
	CoolingRate            float64
	MinTemperature         float64

	// Seed fixes the run's random source for reproducibility (P4). A zero
	// value means "derive one and log it" rather than "use zero".
	Seed int64
}

// DefaultConfig returns the engine's baseline tuning.
func DefaultConfig() Config {
	return Config{
		InitialPoolSize:       10,
		MaxESIterations:       10000,
		Sigma:                 2.0,
		SigmaDecay:            0.98,
		MinSigma:              0.1,
		MaxStagnantIterations: 500,

		MaxAnnealingIterations: 2500,
		Temperature:            0.5,
		CoolingRate:            0.99,
		MinTemperature:         1e-5,
	}
}

// withDefaults fills any zero or negative tunable with DefaultConfig's value,
// leaving an explicitly-set Seed (including 0, handled by the caller)
// untouched.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InitialPoolSize <= 0 {
		c.InitialPoolSize = d.InitialPoolSize
	}
	if c.MaxESIterations <= 0 {
		c.MaxESIterations = d.MaxESIterations
	}
	if c.Sigma <= 0 {
		c.Sigma = d.Sigma
	}
	if c.SigmaDecay <= 0 {
		c.SigmaDecay = d.SigmaDecay
	}
	if c.MinSigma <= 0 {
		c.MinSigma = d.MinSigma
	}
	if c.MaxStagnantIterations <= 0 {
		c.MaxStagnantIterations = d.MaxStagnantIterations
	}
	if c.MaxAnnealingIterations <= 0 {
		c.MaxAnnealingIterations = d.MaxAnnealingIterations
	}
	if c.Temperature <= 0 {
		c.Temperature = d.Temperature
	}
	if c.CoolingRate <= 0 {
		c.CoolingRate = d.CoolingRate
	}
	if c.MinTemperature <= 0 {
		c.MinTemperature = d.MinTemperature
	}
	return c
}
