package config

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ayusman/videostrip/internal/features"
	"github.com/ayusman/videostrip/internal/keyframe"
	"github.com/ayusman/videostrip/internal/sharpness"
	"github.com/ayusman/videostrip/internal/sink"
)

// UsageHint is appended to configuration errors shown to the user.
const UsageHint = "Use -h, --help command to see usage"

var (
	// ErrInvalidConfig marks every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingInput is returned when no video path or URI was given.
	ErrMissingInput = errors.New("input video is required")

	// ErrMissingOutput is returned when no output prefix was given.
	ErrMissingOutput = errors.New("output prefix is required")
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return errors.Mark(errors.WithHint(err, UsageHint), ErrInvalidConfig)
	}
	return nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Input) == "" {
		return ErrMissingInput
	}
	if strings.TrimSpace(c.OutputPrefix) == "" {
		return ErrMissingOutput
	}

	if _, err := keyframe.ParseComparison(c.Rule); err != nil {
		return err
	}
	if err := c.Selection().Validate(); err != nil {
		return err
	}
	if c.Skip < 0 {
		return errors.Newf("skip must be >= 0, got %v", c.Skip)
	}

	if c.WorkWidth <= 0 || c.WorkHeight <= 0 {
		return errors.Newf("working resolution must be positive, got %dx%d", c.WorkWidth, c.WorkHeight)
	}

	switch strings.ToLower(c.Extractor) {
	case features.StrategyCPU, features.StrategyParallel:
	default:
		return errors.Wrapf(features.ErrUnknownStrategy, "%q", c.Extractor)
	}
	if c.Features <= 0 {
		return errors.Newf("features must be > 0, got %d", c.Features)
	}
	switch strings.ToLower(c.Scorer) {
	case sharpness.StrategyLaplacian, sharpness.StrategyParallel:
	default:
		return errors.Wrapf(sharpness.ErrUnknownStrategy, "%q", c.Scorer)
	}
	if c.Workers < 0 {
		return errors.Newf("workers must be >= 0, got %d", c.Workers)
	}

	switch sink.NormalizeFormat(c.Format) {
	case sink.FormatJPEG, sink.FormatPNG, sink.FormatWebP:
	default:
		return errors.Wrapf(sink.ErrUnknownFormat, "%q", c.Format)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return errors.Newf("quality must be in [1, 100], got %d", c.Quality)
	}

	return nil
}
