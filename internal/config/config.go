// Package config holds the videostrip run configuration, layered by viper
// from defaults, an optional config file, VIDEOSTRIP_* environment
// variables and command-line flags.
package config

import (
	"time"

	"github.com/ayusman/videostrip/internal/keyframe"
)

// Configuration keys. Flags use the same names.
const (
	KeyOverlap    = "overlap"
	KeyFloor      = "floor"
	KeyRule       = "rule"
	KeyWindow     = "window"
	KeySkip       = "skip"
	KeyWorkWidth  = "work-width"
	KeyWorkHeight = "work-height"
	KeyExtractor  = "extractor"
	KeyFeatures   = "features"
	KeyScorer     = "scorer"
	KeyWorkers    = "workers"
	KeyFormat     = "format"
	KeyQuality    = "quality"
	KeyReport     = "report"
	KeyDatabase   = "database"
	KeyVerbose    = "verbose"
	KeyJSONLog    = "json-log"
)

// ReportAuto is the --report value meaning "next to the output frames".
const ReportAuto = "auto"

// EnvPrefix prefixes environment overrides, e.g. VIDEOSTRIP_OVERLAP.
const EnvPrefix = "VIDEOSTRIP"

// Config is the immutable configuration of one run.
type Config struct {
	Input        string `mapstructure:"-"`
	OutputPrefix string `mapstructure:"-"`

	Overlap float64 `mapstructure:"overlap"`
	Floor   float64 `mapstructure:"floor"`
	Rule    string  `mapstructure:"rule"`
	Window  int     `mapstructure:"window"`
	// Skip is in seconds.
	Skip float64 `mapstructure:"skip"`

	WorkWidth  int `mapstructure:"work-width"`
	WorkHeight int `mapstructure:"work-height"`

	Extractor string `mapstructure:"extractor"`
	Features  int    `mapstructure:"features"`
	Scorer    string `mapstructure:"scorer"`
	Workers   int    `mapstructure:"workers"`

	Format   string `mapstructure:"format"`
	Quality  int    `mapstructure:"quality"`
	Report   string `mapstructure:"report"`
	Database string `mapstructure:"database"`

	Verbose int  `mapstructure:"verbose"`
	JSONLog bool `mapstructure:"json-log"`
}

// SkipDuration returns Skip as a duration.
func (c *Config) SkipDuration() time.Duration {
	return time.Duration(c.Skip * float64(time.Second))
}

// ReportPath returns the TSV path, or "" when no report was requested.
func (c *Config) ReportPath() string {
	if c.Report == ReportAuto {
		return c.OutputPrefix + "report.tsv"
	}
	return c.Report
}

// Selection returns the keyframe selection parameters.
// It assumes Validate has passed.
func (c *Config) Selection() keyframe.Config {
	cmp, _ := keyframe.ParseComparison(c.Rule)
	return keyframe.Config{
		Rule: keyframe.Rule{
			MinOverlap: c.Overlap,
			Floor:      c.Floor,
			Comparison: cmp,
		},
		Window: c.Window,
	}
}
