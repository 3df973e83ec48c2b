package main

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ayusman/videostrip/internal/app"
	"github.com/ayusman/videostrip/internal/config"
	"github.com/ayusman/videostrip/internal/logger"
	"github.com/ayusman/videostrip/internal/progress"
)

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "videostrip <input> <output-prefix>",
		Short: "videostrip - adaptive keyframe extraction from video",
		Long: `videostrip - adaptive keyframe extraction from video.

Frames are read in order and measured against the current keyframe. Once
the estimated overlap drops to the target, the sharpest frame of a short
lookahead window is written as the next keyframe:

  <output-prefix>0000.jpg, <output-prefix>0001.jpg, ...

Settings come from flags, VIDEOSTRIP_* environment variables and an optional
--config file (TOML or YAML), in that order of precedence.

Examples:
  videostrip walk.mp4 out/walk_                 # defaults: -p 0.4 -k 11
  videostrip -p 0.6 -k 5 --report walk.mp4 out/ # also write out/report.tsv
  videostrip -s 30 --format webp rtsp://cam/1 cam_
  videostrip --database runs.db walk.mp4 out/walk_`,
		Args:          positionalArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, configFile, args[0], args[1], stdout, stderr)
		},
	}

	def := config.Default()
	f := cmd.Flags()
	f.Float64P(config.KeyOverlap, "p", def.Overlap, "Minimum overlap with the current keyframe before a new one is taken")
	f.Float64(config.KeyFloor, def.Floor, "Overlap floor; failed or lower estimates count as floor+0.01")
	f.String(config.KeyRule, def.Rule, "Trigger comparison: inclusive (<=) or exclusive (<)")
	f.IntP(config.KeyWindow, "k", def.Window, "Number of frames searched for a sharper keyframe after a trigger")
	f.Float64P(config.KeySkip, "s", def.Skip, "Seconds to skip at the start of the stream")
	f.Int(config.KeyWorkWidth, def.WorkWidth, "Working resolution width")
	f.Int(config.KeyWorkHeight, def.WorkHeight, "Working resolution height")
	f.String(config.KeyExtractor, def.Extractor, "Feature extractor: cpu or parallel")
	f.Int(config.KeyFeatures, def.Features, "Maximum keypoints per frame")
	f.String(config.KeyScorer, def.Scorer, "Sharpness scorer: laplacian or parallel")
	f.Int(config.KeyWorkers, def.Workers, "Worker bound of the parallel strategies")
	f.String(config.KeyFormat, def.Format, "Keyframe image format: jpg, png or webp")
	f.Int(config.KeyQuality, def.Quality, "JPEG/WebP quality (1-100)")
	f.String(config.KeyReport, def.Report, "Write a TSV report; without a value it goes to <output-prefix>report.tsv")
	f.Lookup(config.KeyReport).NoOptDefVal = config.ReportAuto
	f.String(config.KeyDatabase, def.Database, "Record the run in this SQLite database")
	f.CountP(config.KeyVerbose, "v", "Increase log verbosity (-v for debug)")
	f.Bool(config.KeyJSONLog, def.JSONLog, "Emit JSON logs and JSON progress events")
	f.StringVar(&configFile, "config", "", "Config file (TOML or YAML)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.AddCommand(newVersionCmd(stdout))
	return cmd
}

func positionalArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(2)(cmd, args); err != nil {
		return usageError(errors.Wrap(err, "expected <input> <output-prefix>"))
	}
	return nil
}

func usageError(err error) error {
	return errors.Mark(errors.WithHint(err, config.UsageHint), config.ErrInvalidConfig)
}

func run(cmd *cobra.Command, configFile, input, prefix string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(cmd.Flags(), configFile, input, prefix)
	if err != nil {
		return usageError(err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(logger.Options{Verbosity: cfg.Verbose, JSON: cfg.JSONLog, Output: stderr})
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer func() { _ = log.Sync() }()

	var reporter progress.Reporter
	if cfg.JSONLog {
		reporter = progress.NewJSON(stdout)
	} else {
		f, _ := stdout.(*os.File)
		reporter = progress.NewTerminal(stdout, progress.IsTerminal(f))
	}

	a, err := app.New(cfg, app.WithReporter(reporter), app.WithLogger(log))
	if err != nil {
		return err
	}

	sum, err := a.Run(cmd.Context())
	if err != nil {
		return err
	}
	if sum.Canceled {
		log.Warnw("Interrupted", "keyframes", sum.Keyframes)
	}
	return nil
}
