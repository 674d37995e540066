package texload

// ProgressSnapshot is an immutable progress report for one load.
//
// A fresh value is constructed for every report, so a listener may retain
// snapshots without observing later mutations. Fraction is not monotonic
// across attempt boundaries: it resets to 0 at the start of each attempt.
type ProgressSnapshot struct {
	// Fraction is the completion estimate of the current attempt in [0, 1].
	Fraction float64

	// Attempt is the 1-based attempt counter.
	Attempt int

	// MaxAttemptsReached is set on the final snapshot of a load whose
	// attempt budget was exhausted.
	MaxAttemptsReached bool
}

// clampFraction bounds a reported fraction to [0, 1]. Transports computing
// bytes/total against an inaccurate Content-Length may overshoot.
func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
