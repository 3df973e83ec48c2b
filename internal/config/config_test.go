package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/videostrip/internal/keyframe"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0.4, cfg.Overlap)
	assert.Equal(t, 0.0, cfg.Floor)
	assert.Equal(t, "inclusive", cfg.Rule)
	assert.Equal(t, keyframe.DefaultWindow, cfg.Window)
	assert.Equal(t, 640, cfg.WorkWidth)
	assert.Equal(t, 480, cfg.WorkHeight)
	assert.Equal(t, "cpu", cfg.Extractor)
	assert.Equal(t, 1000, cfg.Features)
	assert.Equal(t, "laplacian", cfg.Scorer)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, "jpg", cfg.Format)
	assert.Equal(t, 95, cfg.Quality)
	assert.Empty(t, cfg.Report)
	assert.Empty(t, cfg.Database)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "videostrip.toml")
	require.NoError(t, os.WriteFile(file, []byte("overlap = 0.5\nwindow = 3\nformat = \"png\"\n"), 0o644))

	t.Setenv("VIDEOSTRIP_WINDOW", "5")
	t.Setenv("VIDEOSTRIP_WORK_WIDTH", "320")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64(KeyOverlap, 0.4, "")
	flags.String(KeyFormat, "jpg", "")
	require.NoError(t, flags.Parse([]string{"--overlap", "0.3"}))

	cfg, err := Load(flags, file, "in.mp4", "out/frame_")
	require.NoError(t, err)

	assert.Equal(t, "in.mp4", cfg.Input)
	assert.Equal(t, "out/frame_", cfg.OutputPrefix)
	assert.Equal(t, 0.3, cfg.Overlap, "changed flag wins")
	assert.Equal(t, "png", cfg.Format, "file wins over unchanged flag default")
	assert.Equal(t, 5, cfg.Window, "env wins over file")
	assert.Equal(t, 320, cfg.WorkWidth)
	assert.Equal(t, 480, cfg.WorkHeight)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.toml"), "in.mp4", "out_")
	assert.Error(t, err)
}

func TestConfig_Selection(t *testing.T) {
	cfg := Default()
	cfg.Overlap = 0.6
	cfg.Floor = 0.1
	cfg.Rule = "exclusive"
	cfg.Window = 4

	sel := cfg.Selection()
	assert.Equal(t, 0.6, sel.Rule.MinOverlap)
	assert.Equal(t, 0.1, sel.Rule.Floor)
	assert.Equal(t, keyframe.Exclusive, sel.Rule.Comparison)
	assert.Equal(t, 4, sel.Window)
}

func TestConfig_ReportPath(t *testing.T) {
	cfg := Default()
	cfg.OutputPrefix = "out/frame_"
	assert.Empty(t, cfg.ReportPath())

	cfg.Report = ReportAuto
	assert.Equal(t, "out/frame_report.tsv", cfg.ReportPath())

	cfg.Report = "stats.tsv"
	assert.Equal(t, "stats.tsv", cfg.ReportPath())
}

func TestConfig_SkipDuration(t *testing.T) {
	cfg := Default()
	cfg.Skip = 1.5
	assert.Equal(t, 1500*time.Millisecond, cfg.SkipDuration())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Input = "in.mp4"
		cfg.OutputPrefix = "out_"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing input", func(c *Config) { c.Input = "" }, ErrMissingInput},
		{"missing output", func(c *Config) { c.OutputPrefix = " " }, ErrMissingOutput},
		{"overlap zero", func(c *Config) { c.Overlap = 0 }, nil},
		{"overlap above one", func(c *Config) { c.Overlap = 1.5 }, nil},
		{"floor too close", func(c *Config) { c.Floor = 0.395 }, nil},
		{"negative window", func(c *Config) { c.Window = -1 }, nil},
		{"unknown rule", func(c *Config) { c.Rule = "sometimes" }, nil},
		{"negative skip", func(c *Config) { c.Skip = -2 }, nil},
		{"zero work width", func(c *Config) { c.WorkWidth = 0 }, nil},
		{"unknown extractor", func(c *Config) { c.Extractor = "gpu" }, nil},
		{"zero features", func(c *Config) { c.Features = 0 }, nil},
		{"unknown scorer", func(c *Config) { c.Scorer = "tenengrad" }, nil},
		{"negative workers", func(c *Config) { c.Workers = -1 }, nil},
		{"unknown format", func(c *Config) { c.Format = "bmp" }, nil},
		{"quality zero", func(c *Config) { c.Quality = 0 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
			assert.Contains(t, errors.FlattenHints(err), UsageHint)
		})
	}
}

func TestConfig_ValidateAcceptsAliases(t *testing.T) {
	cfg := Default()
	cfg.Input = "in.mp4"
	cfg.OutputPrefix = "out_"
	cfg.Rule = "<"
	cfg.Format = "JPEG"
	cfg.Extractor = "parallel"
	cfg.Scorer = "parallel"
	cfg.Window = 0

	assert.NoError(t, cfg.Validate())
}
