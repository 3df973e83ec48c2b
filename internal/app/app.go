// Package app provides the main application logic for videostrip: it wires
// the frame source, overlap estimator, sharpness scorer, keyframe sink,
// reports and run catalog around a keyframe.Selector.
package app

import (
	"context"
	"image"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ayusman/videostrip/internal/capture"
	"github.com/ayusman/videostrip/internal/config"
	"github.com/ayusman/videostrip/internal/keyframe"
	"github.com/ayusman/videostrip/internal/progress"
	"github.com/ayusman/videostrip/internal/store"
)

// Option customizes an App.
type Option func(*App)

// WithSource replaces the video source built from the input path.
func WithSource(src capture.Source) Option {
	return func(a *App) { a.source = src }
}

// WithReporter sets the progress reporter.
func WithReporter(r progress.Reporter) Option {
	return func(a *App) { a.reporter = r }
}

// WithLogger sets the logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(a *App) { a.log = log }
}

// App runs one keyframe extraction.
type App struct {
	config   *config.Config
	source   capture.Source
	reporter progress.Reporter
	log      *zap.SugaredLogger
	runID    string
}

// New validates cfg and creates an App.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app needs a configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.source == nil {
		a.source = capture.NewVideoSource(cfg.Input)
	}
	if a.reporter == nil {
		a.reporter = progress.Discard
	}
	if a.log == nil {
		a.log = zap.NewNop().Sugar()
	}
	return a, nil
}

// RunID returns the catalog identifier of the last run, or "" when no
// database was configured.
func (a *App) RunID() string {
	return a.runID
}

// Run extracts keyframes until the stream ends, ctx is canceled or a fatal
// error occurs. Keyframes written before an error are kept.
func (a *App) Run(ctx context.Context) (sum keyframe.Summary, err error) {
	cfg := a.config

	if err := a.source.Open(); err != nil {
		return sum, err
	}
	defer func() {
		if cerr := a.source.Close(); cerr != nil {
			a.log.Warnw("Error closing source", "error", cerr)
		}
	}()

	if skip := cfg.SkipDuration(); skip > 0 {
		if err := a.source.Skip(skip); err != nil {
			return sum, errors.Wrapf(err, "skip %v", skip)
		}
	}

	down := capture.NewDownscaler(cfg.WorkWidth, cfg.WorkHeight)
	info := a.source.Info()
	work := image.Point{}
	if info.Width > 0 && info.Height > 0 {
		work = down.Size(info.Width, info.Height)
	}
	a.log.Infow("Stream opened",
		"input", cfg.Input,
		"width", info.Width,
		"height", info.Height,
		"fps", info.FPS,
		"frames", info.FrameCount,
		"resize", down.Factor(info.Width, info.Height),
		"overlap", cfg.Overlap,
		"window", cfg.Window,
		"skip", cfg.SkipDuration())
	a.reporter.Banner(cfg.Input, info, work)

	p, err := buildPipeline(cfg, a.log)
	if err != nil {
		return sum, err
	}
	defer func() {
		err = errors.CombineErrors(err, p.close())
	}()

	if err := a.openCatalog(p); err != nil {
		return sum, err
	}
	defer func() {
		a.finishCatalog(p.catalog, sum, err)
	}()

	sel, err := keyframe.NewSelector(cfg.Selection(), keyframe.Deps{
		Source:     a.source,
		Downscaler: down,
		Estimator:  p.estimator,
		Scorer:     p.scorer,
		Sink:       p.sink,
		Report:     p.report(),
		Observer:   a.reporter,
		Logger:     a.log,
	})
	if err != nil {
		return sum, err
	}
	defer sel.Close()

	sum, err = sel.Run(ctx)
	a.reporter.Summary(sum)
	a.log.Infow("Run finished",
		"frames", sum.FramesRead,
		"keyframes", sum.Keyframes,
		"forced", sum.Forced,
		"canceled", sum.Canceled,
		"elapsed", sum.Elapsed)
	return sum, err
}

// openCatalog opens the run database, if configured, and registers the run.
func (a *App) openCatalog(p *pipeline) error {
	cfg := a.config
	if cfg.Database == "" {
		return nil
	}

	s, err := store.New(cfg.Database)
	if err != nil {
		return errors.Wrapf(err, "open run database %s", cfg.Database)
	}
	p.catalog = s

	sel := cfg.Selection()
	run := &store.Run{
		Input:        cfg.Input,
		OutputPrefix: cfg.OutputPrefix,
		MinOverlap:   sel.Rule.MinOverlap,
		OverlapFloor: sel.Rule.Floor,
		Comparison:   sel.Rule.Comparison.String(),
		Window:       sel.Window,
		Extractor:    p.extractor.Name(),
		Scorer:       p.scorer.Name(),
	}
	if err := s.Runs().Create(run); err != nil {
		return err
	}
	a.runID = run.ID
	p.recorder = store.NewRecorder(s, run.ID)
	a.log.Debugw("Run registered", "run", run.ID, "database", cfg.Database)
	return nil
}

func (a *App) finishCatalog(s *store.Store, sum keyframe.Summary, runErr error) {
	if s == nil || a.runID == "" {
		return
	}

	status := store.RunStatusCompleted
	switch {
	case runErr != nil:
		status = store.RunStatusFailed
	case sum.Canceled:
		status = store.RunStatusCanceled
	}
	stats := store.RunStats{FramesRead: sum.FramesRead, Keyframes: sum.Keyframes, Forced: sum.Forced}
	if err := s.Runs().Finish(a.runID, status, stats, runErr); err != nil {
		a.log.Warnw("Failed to finish run", "run", a.runID, "error", err)
	}
}
