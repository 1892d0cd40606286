package filter

import "time"

// Defaults for a platform without explicit policy.
const (
	DefaultMinScore    = 4
	DefaultCap         = 15
	DefaultConcurrency = 5
	DefaultTimeout     = 8 * time.Second
)

// Policy holds the acceptance thresholds for one platform.
type Policy struct {
	// MinScore rejects items scoring below it.
	MinScore float64
	// MinPopularity rejects items whose popularity metric is below it. Zero disables the floor.
	MinPopularity float64
	// Grace exempts items younger than this from the popularity floor. Zero disables it.
	Grace time.Duration
	// Cap bounds how many items the source contributes.
	Cap int
}

// DefaultPolicy returns the policy used for platforms with no configuration.
func DefaultPolicy() Policy {
	return Policy{MinScore: DefaultMinScore, Cap: DefaultCap}
}

func (p Policy) capOrDefault() int {
	if p.Cap <= 0 {
		return DefaultCap
	}
	return p.Cap
}
