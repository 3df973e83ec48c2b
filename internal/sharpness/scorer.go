// Package sharpness scores frame focus as the standard deviation of the
// Laplacian of the grayscale image. Scores are relative: they are only
// comparable between frames of the same working resolution.
package sharpness

import (
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"
)

// Strategy names accepted by New.
const (
	StrategyLaplacian = "laplacian"
	StrategyParallel  = "parallel"
)

// ErrUnknownStrategy is returned by New for an unsupported strategy name.
var ErrUnknownStrategy = errors.New("unknown sharpness strategy")

// Scorer defines the interface for focus measures.
type Scorer interface {
	// Score returns the focus measure of frame; larger is sharper.
	Score(frame gocv.Mat) (float64, error)

	// Name returns the strategy name.
	Name() string
}

// New creates the scorer named by strategy. workers bounds the parallel
// strategy and defaults to the number of CPUs.
func New(strategy string, workers int) (Scorer, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	switch strings.ToLower(strategy) {
	case "", StrategyLaplacian:
		return NewLaplacian(), nil
	case StrategyParallel:
		return NewParallel(workers), nil
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", strategy)
	}
}
