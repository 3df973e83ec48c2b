// Package overlap estimates how much of a reference frame is still visible
// in a new frame, using feature matching and a RANSAC-fitted homography.
package overlap

import "fmt"

// Failure names why an overlap could not be measured.
type Failure int

const (
	// FailureNone means the overlap was measured.
	FailureNone Failure = iota
	// FailureEmptyInput means one of the frames could not be processed.
	FailureEmptyInput
	// FailureTooFewMatches means fewer than MinMatches correspondences survived the ratio test.
	FailureTooFewMatches
	// FailureDegenerate means no usable homography could be fitted.
	FailureDegenerate
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureEmptyInput:
		return "empty input"
	case FailureTooFewMatches:
		return "too few matches"
	case FailureDegenerate:
		return "degenerate homography"
	default:
		return fmt.Sprintf("failure(%d)", int(f))
	}
}

// Result is either a measured overlap in [0, 1] or a Failure.
// Value is meaningless unless OK reports true.
type Result struct {
	Value   float64
	Failure Failure
	Matches int
	Inliers int
}

// Measured returns a successful Result.
func Measured(value float64, matches, inliers int) Result {
	return Result{Value: value, Matches: matches, Inliers: inliers}
}

// Failed returns an unsuccessful Result.
func Failed(reason Failure, matches int) Result {
	return Result{Failure: reason, Matches: matches}
}

// OK reports whether the overlap was measured.
func (r Result) OK() bool {
	return r.Failure == FailureNone
}

func (r Result) String() string {
	if !r.OK() {
		return fmt.Sprintf("failed (%s, %d matches)", r.Failure, r.Matches)
	}
	return fmt.Sprintf("%.4f (%d/%d inliers)", r.Value, r.Inliers, r.Matches)
}
