package config

import (
	"runtime"

	"github.com/spf13/viper"

	"github.com/ayusman/videostrip/internal/capture"
	"github.com/ayusman/videostrip/internal/features"
	"github.com/ayusman/videostrip/internal/keyframe"
	"github.com/ayusman/videostrip/internal/sharpness"
	"github.com/ayusman/videostrip/internal/sink"
)

// DefaultWorkers leaves a quarter of the CPUs free, but never goes below one.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()*3/4)
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	rule := keyframe.DefaultRule()

	// Selection
	v.SetDefault(KeyOverlap, rule.MinOverlap)
	v.SetDefault(KeyFloor, rule.Floor)
	v.SetDefault(KeyRule, rule.Comparison.String())
	v.SetDefault(KeyWindow, keyframe.DefaultWindow)
	v.SetDefault(KeySkip, 0.0)

	// Working resolution
	v.SetDefault(KeyWorkWidth, capture.DefaultWorkWidth)
	v.SetDefault(KeyWorkHeight, capture.DefaultWorkHeight)

	// Strategies
	v.SetDefault(KeyExtractor, features.StrategyCPU)
	v.SetDefault(KeyFeatures, features.DefaultConfig().MaxFeatures)
	v.SetDefault(KeyScorer, sharpness.StrategyLaplacian)
	v.SetDefault(KeyWorkers, DefaultWorkers())

	// Outputs
	v.SetDefault(KeyFormat, sink.FormatJPEG)
	v.SetDefault(KeyQuality, sink.DefaultQuality)
	v.SetDefault(KeyReport, "")
	v.SetDefault(KeyDatabase, "")

	// Logging
	v.SetDefault(KeyVerbose, 0)
	v.SetDefault(KeyJSONLog, false)
}

// Default returns the configuration produced by the defaults alone.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, _ := fromViper(v)
	return cfg
}
