package capture

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"
)

// videoSource reads frames from a video file or stream URI using GoCV.
type videoSource struct {
	uri     string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	info    StreamInfo
	reads   int
}

// NewVideoSource creates a Source for the given file path or stream URI.
func NewVideoSource(uri string) Source {
	return &videoSource{uri: uri}
}

// Open opens the stream and records its metadata.
func (v *videoSource) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.running {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(v.uri)
	if err != nil {
		if capture != nil {
			capture.Close()
		}
		return errors.Wrapf(ErrOpenFailed, "%s: %v", v.uri, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return errors.Wrapf(ErrOpenFailed, "%s", v.uri)
	}

	v.info = StreamInfo{
		Width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
		Height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
		FPS:        capture.Get(gocv.VideoCaptureFPS),
		FrameCount: int(capture.Get(gocv.VideoCaptureFrameCount)),
	}
	v.capture = capture
	v.running = true
	v.reads = 0

	return nil
}

// Close releases the decoder.
func (v *videoSource) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		v.running = false
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	v.running = false

	return err
}

// Read decodes the next frame into dst.
func (v *videoSource) Read(dst *gocv.Mat) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		return ErrSourceNotOpen
	}

	if ok := v.capture.Read(dst); !ok {
		return ErrEndOfStream
	}
	if dst.Empty() {
		return ErrEmptyFrame
	}

	v.reads++
	return nil
}

// Skip seeks forward by d using the container's millisecond position.
func (v *videoSource) Skip(d time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		return ErrSourceNotOpen
	}
	if v.reads > 0 {
		return ErrSkipAfterRead
	}
	if d <= 0 {
		return nil
	}

	v.capture.Set(gocv.VideoCapturePosMsec, float64(d.Milliseconds()))
	return nil
}

// Info returns the metadata captured at Open.
func (v *videoSource) Info() StreamInfo {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.info
}

// IsOpen returns true if the stream is open.
func (v *videoSource) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.running
}
