// Package keyframe implements adaptive keyframe selection: a frame is
// retained once its overlap with the current keyframe drops to the target,
// and the sharpest frame of a short lookahead window is committed in its place.
package keyframe

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ayusman/videostrip/internal/overlap"
)

// ForcedMargin is added to the floor to obtain the overlap recorded for a
// frame whose overlap could not be measured.
const ForcedMargin = 0.01

// Comparison selects how a measured overlap is compared with the target.
type Comparison int

const (
	// Inclusive triggers when overlap <= target.
	Inclusive Comparison = iota
	// Exclusive triggers when overlap < target.
	Exclusive
)

func (c Comparison) String() string {
	switch c {
	case Inclusive:
		return "inclusive"
	case Exclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("comparison(%d)", int(c))
	}
}

// ParseComparison parses "inclusive" or "exclusive".
func ParseComparison(s string) (Comparison, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inclusive", "<=":
		return Inclusive, nil
	case "exclusive", "<":
		return Exclusive, nil
	default:
		return Inclusive, errors.Newf("unknown comparison %q (want inclusive or exclusive)", s)
	}
}

// Rule decides whether an overlap measurement triggers a new keyframe.
//
// A frame triggers when Floor < overlap and overlap is at (Inclusive) or
// below the MinOverlap target. A failed estimate, or a measured value at or
// below Floor, is replaced by Floor+ForcedMargin and always triggers.
type Rule struct {
	MinOverlap float64
	Floor      float64
	Comparison Comparison
}

// DefaultRule returns the rule used when nothing is configured.
func DefaultRule() Rule {
	return Rule{MinOverlap: 0.4, Floor: 0, Comparison: Inclusive}
}

// Validate checks that the thresholds are ordered so a forced value triggers.
func (r Rule) Validate() error {
	switch {
	case r.MinOverlap <= 0 || r.MinOverlap > 1:
		return errors.Newf("overlap target %v must be in (0, 1]", r.MinOverlap)
	case r.Floor < 0:
		return errors.Newf("overlap floor %v must not be negative", r.Floor)
	case r.Forced() >= r.MinOverlap:
		return errors.Newf("overlap floor %v must be below target %v by more than %v",
			r.Floor, r.MinOverlap, ForcedMargin)
	case r.Comparison != Inclusive && r.Comparison != Exclusive:
		return errors.Newf("invalid comparison %v", r.Comparison)
	}
	return nil
}

// Forced returns the overlap substituted for a failed estimate.
func (r Rule) Forced() float64 {
	return r.Floor + ForcedMargin
}

// Decision is the outcome of applying a Rule to one frame.
type Decision struct {
	// Overlap is the measured value, or the forced substitute.
	Overlap float64
	Trigger bool
	Forced  bool
	Result  overlap.Result
}

// Decide applies the rule to an estimate.
func (r Rule) Decide(res overlap.Result) Decision {
	if !res.OK() || res.Value <= r.Floor {
		return Decision{Overlap: r.Forced(), Trigger: true, Forced: true, Result: res}
	}

	d := Decision{Overlap: res.Value, Result: res}
	switch r.Comparison {
	case Exclusive:
		d.Trigger = res.Value < r.MinOverlap
	default:
		d.Trigger = res.Value <= r.MinOverlap
	}
	return d
}
