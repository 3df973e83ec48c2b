// Package features detects ORB keypoints and computes their binary
// descriptors on grayscale working frames.
package features

import (
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"
)

// Strategy names accepted by New.
const (
	StrategyCPU      = "cpu"
	StrategyParallel = "parallel"
)

// DescriptorSize is the width in bytes of an ORB descriptor row.
const DescriptorSize = 32

var (
	// ErrUnknownStrategy is returned by New for an unsupported strategy name.
	ErrUnknownStrategy = errors.New("unknown feature extractor strategy")

	// ErrNotGray is returned when Extract receives a multi-channel image.
	ErrNotGray = errors.New("feature extraction needs a single-channel image")

	// ErrEmptyImage is returned when Extract receives an empty image.
	ErrEmptyImage = errors.New("feature extraction needs a non-empty image")
)

// Set is the output of one extraction: keypoints and a descriptor matrix
// whose row i describes Keypoints[i].
type Set struct {
	Keypoints   []gocv.KeyPoint
	Descriptors gocv.Mat
}

// Len returns the number of keypoints.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Keypoints)
}

// Close releases the descriptor matrix.
func (s *Set) Close() error {
	if s == nil {
		return nil
	}
	return s.Descriptors.Close()
}

// Extractor defines the interface for keypoint/descriptor strategies.
// All strategies produce sets that can be matched against each other.
type Extractor interface {
	// Extract detects keypoints in gray and computes their descriptors.
	// An image without structure yields an empty Set, not an error.
	// The caller owns the returned Set.
	Extract(gray gocv.Mat) (*Set, error)

	// Name returns the strategy name.
	Name() string

	// Close releases any resources held by the extractor.
	Close() error
}

// Config holds options shared by all strategies.
type Config struct {
	// MaxFeatures bounds the number of keypoints retained per image.
	MaxFeatures int

	// Workers bounds the number of concurrent bands in the parallel strategy.
	Workers int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxFeatures: 1000,
		Workers:     runtime.NumCPU(),
	}
}

// New creates the extractor named by strategy.
func New(strategy string, cfg Config) (Extractor, error) {
	def := DefaultConfig()
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = def.MaxFeatures
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}

	switch strings.ToLower(strategy) {
	case "", StrategyCPU:
		return NewORB(cfg), nil
	case StrategyParallel:
		return NewParallel(cfg), nil
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", strategy)
	}
}

func checkInput(gray gocv.Mat) error {
	if gray.Empty() {
		return ErrEmptyImage
	}
	if gray.Channels() != 1 {
		return errors.Wrapf(ErrNotGray, "got %d channels", gray.Channels())
	}
	return nil
}

// emptySet returns a Set with no keypoints.
func emptySet() *Set {
	return &Set{Descriptors: gocv.NewMat()}
}
