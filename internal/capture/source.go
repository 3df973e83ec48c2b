// Package capture provides sequential frame sources and working-resolution
// downscaling using GoCV (OpenCV).
package capture

import (
	"time"

	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"
)

// Default working resolution.
const (
	DefaultWorkWidth  = 640
	DefaultWorkHeight = 480
)

var (
	// ErrSourceNotOpen is returned when reading from a source that is not open.
	ErrSourceNotOpen = errors.New("frame source is not open")

	// ErrOpenFailed is returned when the underlying stream cannot be opened.
	ErrOpenFailed = errors.New("failed to open frame source")

	// ErrEndOfStream is returned by Read once the stream is exhausted.
	ErrEndOfStream = errors.New("end of stream")

	// ErrEmptyFrame is returned when the decoder hands back an empty frame.
	ErrEmptyFrame = errors.New("decoded frame is empty")

	// ErrSkipAfterRead is returned when Skip is called after frames were consumed.
	ErrSkipAfterRead = errors.New("skip must happen before the first read")
)

// StreamInfo describes the stream as reported by the container.
// FrameCount and FPS may be zero when the container does not know them.
type StreamInfo struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int
}

// Source is a finite, strictly sequential stream of frames.
type Source interface {
	Open() error
	Close() error

	// Read decodes the next frame into dst, reusing its buffer.
	// It returns ErrEndOfStream once no frames remain.
	Read(dst *gocv.Mat) error

	// Skip advances the stream by d. It is only valid before the first Read.
	Skip(d time.Duration) error

	Info() StreamInfo
	IsOpen() bool
}
