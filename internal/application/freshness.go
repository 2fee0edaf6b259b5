package application

import "fmt"

// FreshnessPolicy decides how the age of a record is computed when the host clock
// reads earlier than the record's timestamp.
type FreshnessPolicy int

const (
	// FreshnessClamped treats a future-dated record as age 0.
	FreshnessClamped FreshnessPolicy = iota
	// FreshnessWrapping keeps plain unsigned subtraction, so a future-dated
	// record wraps to a huge age and reads as stale.
	FreshnessWrapping
)

func ParseFreshnessPolicy(s string) (FreshnessPolicy, error) {
	switch s {
	case "", "clamp":
		return FreshnessClamped, nil
	case "wrap":
		return FreshnessWrapping, nil
	default:
		return 0, fmt.Errorf("unknown freshness policy %q", s)
	}
}

func (p FreshnessPolicy) Age(now, ts uint64) uint64 {
	if p == FreshnessClamped && now < ts {
		return 0
	}
	return now - ts
}

func (p FreshnessPolicy) String() string {
	if p == FreshnessWrapping {
		return "wrap"
	}
	return "clamp"
}
