package keyframe

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/videostrip/internal/capture"
	"github.com/ayusman/videostrip/internal/overlap"
	"github.com/ayusman/videostrip/internal/report"
	"github.com/ayusman/videostrip/internal/sharpness"
	"github.com/ayusman/videostrip/internal/sink"
)

// DefaultWindow is the default lookahead length K.
const DefaultWindow = 11

var (
	// ErrEmptyStream is returned when the stream has no first frame.
	ErrEmptyStream = errors.New("stream contains no frames")

	// ErrWindowTruncated is returned when the stream ends inside a lookahead window.
	ErrWindowTruncated = errors.New("stream ended inside the lookahead window")
)

// OverlapEstimator measures the overlap of a working frame with a reference.
type OverlapEstimator interface {
	Estimate(ref *overlap.Reference, frame gocv.Mat) overlap.Result
}

// Observer receives progress callbacks from the Selector. Calls happen on
// the goroutine running Run.
type Observer interface {
	// Frame is called for every frame measured while streaming.
	Frame(index int, d Decision)
	// Refine is called for every lookahead frame; step runs from 1 to window.
	Refine(index, step, window int, score, best float64)
	// Committed is called after a keyframe is stored and recorded.
	Committed(rec report.FrameRecord)
}

type nopObserver struct{}

func (nopObserver) Frame(int, Decision)                    {}
func (nopObserver) Refine(int, int, int, float64, float64) {}
func (nopObserver) Committed(report.FrameRecord)           {}

// Config holds the selection parameters. It is immutable once Run starts.
type Config struct {
	Rule Rule
	// Window is the number of frames read after a trigger frame.
	Window int
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{Rule: DefaultRule(), Window: DefaultWindow}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Window < 0 {
		return errors.Newf("lookahead window %d must not be negative", c.Window)
	}
	return c.Rule.Validate()
}

// Deps are the collaborators of a Selector. Report, Observer and Logger
// are optional.
type Deps struct {
	Source     capture.Source
	Downscaler capture.Downscaler
	Estimator  OverlapEstimator
	Scorer     sharpness.Scorer
	Sink       sink.Sink
	Report     report.Writer
	Observer   Observer
	Logger     *zap.SugaredLogger
}

// Summary describes a finished run.
type Summary struct {
	FramesRead int
	Keyframes  int
	Forced     int
	Canceled   bool
	Elapsed    time.Duration
}

// Selector owns the current keyframe and drives the stream through the
// streaming, searching and commit states.
type Selector struct {
	cfg  Config
	deps Deps
	log  *zap.SugaredLogger

	current   *Keyframe
	nextIndex int
	read      int
	forced    int
}

// NewSelector creates a Selector. The source must already be open.
func NewSelector(cfg Config, deps Deps) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Source == nil:
		return nil, errors.New("selector needs a frame source")
	case deps.Estimator == nil:
		return nil, errors.New("selector needs an overlap estimator")
	case deps.Scorer == nil:
		return nil, errors.New("selector needs a sharpness scorer")
	case deps.Sink == nil:
		return nil, errors.New("selector needs a frame sink")
	}
	if deps.Downscaler.Width <= 0 || deps.Downscaler.Height <= 0 {
		deps.Downscaler = capture.NewDownscaler(0, 0)
	}
	if deps.Report == nil {
		deps.Report = report.Discard
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop().Sugar()
	}

	return &Selector{cfg: cfg, deps: deps, log: deps.Logger}, nil
}

// Current returns the active keyframe, or nil before Run.
func (s *Selector) Current() *Keyframe {
	return s.current
}

// Run consumes the stream until it is exhausted, ctx is canceled or a
// fatal error occurs. Keyframes committed before an error stay committed.
//
// Selection logic:
// 1. Commit the first frame as keyframe 0
// 2. STREAMING: measure each frame against the keyframe; stay while the rule does not trigger
// 3. SEARCHING: starting at the trigger frame, read Window more frames and keep the strictly sharpest
// 4. COMMIT: store the best frame, make it the keyframe and record it, then back to 2
func (s *Selector) Run(ctx context.Context) (sum Summary, err error) {
	start := time.Now()
	defer func() {
		sum.FramesRead = s.read
		sum.Keyframes = s.nextIndex
		sum.Forced = s.forced
		sum.Elapsed = time.Since(start)
	}()

	frame := gocv.NewMat()
	defer frame.Close()
	work := gocv.NewMat()
	defer work.Close()
	bestFull := gocv.NewMat()
	defer bestFull.Close()
	bestWork := gocv.NewMat()
	defer bestWork.Close()

	if err := s.next(&frame, &work); err != nil {
		if errors.Is(err, capture.ErrEndOfStream) {
			return sum, ErrEmptyStream
		}
		return sum, errors.Wrap(err, "read first frame")
	}
	if err := s.commit(0, frame, work, Decision{}, 0); err != nil {
		return sum, err
	}

	for {
		if ctx.Err() != nil {
			s.log.Infow("Selection canceled", "frames", s.read, "keyframes", s.nextIndex)
			sum.Canceled = true
			return sum, nil
		}

		index := s.read
		if err := s.next(&frame, &work); err != nil {
			if errors.Is(err, capture.ErrEndOfStream) {
				return sum, nil
			}
			return sum, errors.Wrapf(err, "read frame %d", index)
		}

		d := s.cfg.Rule.Decide(s.deps.Estimator.Estimate(s.current.Ref, work))
		s.deps.Observer.Frame(index, d)
		if d.Forced {
			s.log.Debugw("Overlap forced", "frame", index, "result", d.Result.String())
		}
		if !d.Trigger {
			continue
		}
		if d.Forced {
			s.forced++
		}

		bestIndex, best, err := s.search(index, &frame, &work, &bestFull, &bestWork)
		if err != nil {
			return sum, err
		}
		if err := s.commit(bestIndex, bestFull, bestWork, d, best); err != nil {
			return sum, err
		}
	}
}

// search scans the lookahead window that opens at the trigger frame held in
// frame/work and leaves the sharpest frame in bestFull/bestWork. Ties keep
// the earlier frame.
func (s *Selector) search(trigger int, frame, work, bestFull, bestWork *gocv.Mat) (int, float64, error) {
	best, err := s.deps.Scorer.Score(*work)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "score frame %d", trigger)
	}
	bestIndex := trigger
	frame.CopyTo(bestFull)
	work.CopyTo(bestWork)

	for step := 1; step <= s.cfg.Window; step++ {
		index := s.read
		if err := s.next(frame, work); err != nil {
			if errors.Is(err, capture.ErrEndOfStream) {
				return 0, 0, errors.Wrapf(ErrWindowTruncated,
					"window opened at frame %d ended after %d of %d frames", trigger, step-1, s.cfg.Window)
			}
			return 0, 0, errors.Wrapf(err, "read frame %d", index)
		}

		score, err := s.deps.Scorer.Score(*work)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "score frame %d", index)
		}
		s.deps.Observer.Refine(index, step, s.cfg.Window, score, best)

		if score > best {
			best = score
			bestIndex = index
			frame.CopyTo(bestFull)
			work.CopyTo(bestWork)
		}
	}

	return bestIndex, best, nil
}

// next reads one frame and its working-resolution copy.
func (s *Selector) next(frame, work *gocv.Mat) error {
	if err := s.deps.Source.Read(frame); err != nil {
		return err
	}
	s.read++
	return s.deps.Downscaler.Scale(*frame, work)
}

// commit makes the frame the new keyframe, stores it and records it.
func (s *Selector) commit(frameIndex int, full, work gocv.Mat, d Decision, blur float64) error {
	index := s.nextIndex

	name, err := s.deps.Sink.Write(index, full)
	if err != nil {
		return errors.Wrapf(err, "store keyframe %d", index)
	}

	kf := newKeyframe(index, frameIndex, full, work)
	if s.current != nil {
		s.current.Close()
	}
	s.current = kf
	s.nextIndex++

	rec := report.FrameRecord{
		ID:       index,
		Frame:    frameIndex,
		Filename: name,
		Overlap:  d.Overlap,
		Blur:     blur,
		Forced:   d.Forced,
	}
	if err := s.deps.Report.Write(rec); err != nil {
		return errors.Wrapf(err, "record keyframe %d", index)
	}

	s.deps.Observer.Committed(rec)
	s.log.Infow("Keyframe committed",
		"id", rec.ID,
		"frame", rec.Frame,
		"file", rec.Filename,
		"overlap", rec.Overlap,
		"blur", rec.Blur,
		"forced", rec.Forced)
	return nil
}

// Close releases the current keyframe.
func (s *Selector) Close() error {
	err := s.current.Close()
	s.current = nil
	return err
}
