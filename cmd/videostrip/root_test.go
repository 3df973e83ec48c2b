package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/videostrip/internal/config"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExecute_Help(t *testing.T) {
	code, out, _ := runCLI(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "videostrip <input> <output-prefix>")
	assert.Contains(t, out, "--overlap")
	assert.Contains(t, out, "--window")
}

func TestExecute_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no arguments", []string{}, "expected <input> <output-prefix>"},
		{"one argument", []string{"walk.mp4"}, "expected <input> <output-prefix>"},
		{"unknown flag", []string{"--frobnicate", "walk.mp4", "out_"}, "unknown flag"},
		{"bad overlap", []string{"-p", "1.5", "walk.mp4", "out_"}, "overlap target"},
		{"floor too high", []string{"-p", "0.3", "--floor", "0.3", "walk.mp4", "out_"}, "overlap floor"},
		{"bad rule", []string{"--rule", "maybe", "walk.mp4", "out_"}, "unknown comparison"},
		{"bad format", []string{"--format", "gif", "walk.mp4", "out_"}, "unknown output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, errOut, tt.want)
			assert.Contains(t, errOut, config.UsageHint)
		})
	}
}

func TestExecute_OpenFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.mp4")
	code, _, errOut := runCLI(t, missing, filepath.Join(t.TempDir(), "kf_"))
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "failed to open frame source")
}

func TestExecute_Version(t *testing.T) {
	code, out, _ := runCLI(t, "version", "--json")
	require.Equal(t, 0, code)

	var info versionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info.Version)
	assert.NotEmpty(t, info.OpenCV)
}

func TestReportFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"off", []string{"walk.mp4", "out/kf_"}, ""},
		{"bare", []string{"--report", "walk.mp4", "out/kf_"}, "out/kf_report.tsv"},
		{"explicit", []string{"--report=stats.tsv", "walk.mp4", "out/kf_"}, "stats.tsv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
			require.NoError(t, cmd.ParseFlags(tt.args))
			args := cmd.Flags().Args()
			require.Len(t, args, 2)

			cfg, err := config.Load(cmd.Flags(), "", args[0], args[1])
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.ReportPath())
		})
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("VIDEOSTRIP_OVERLAP", "0.7")
	t.Setenv("VIDEOSTRIP_WINDOW", "3")

	cmd := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags([]string{"-k", "7", "-vv", "walk.mp4", "out_"}))

	cfg, err := config.Load(cmd.Flags(), "", "walk.mp4", "out_")
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.Overlap)
	assert.Equal(t, 7, cfg.Window)
	assert.Equal(t, 2, cfg.Verbose)
}
