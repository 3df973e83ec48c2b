package capture

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockSource plays back in-memory frames for testing.
type MockSource struct {
	frames  []gocv.Mat
	index   int
	fps     float64
	failAt  int
	failErr error
	skipped time.Duration
	mu      sync.Mutex
	running bool
}

// NewMockSource creates a MockSource over frames. The frames stay owned by the caller.
func NewMockSource(frames []gocv.Mat, fps float64) *MockSource {
	return &MockSource{
		frames: frames,
		fps:    fps,
		failAt: -1,
	}
}

// FailAt makes the read at index return err instead of a frame.
func (m *MockSource) FailAt(index int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAt = index
	m.failErr = err
}

func (m *MockSource) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	m.index = 0
	return nil
}

func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	return nil
}

func (m *MockSource) Read(dst *gocv.Mat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return ErrSourceNotOpen
	}
	if m.index == m.failAt {
		m.index++
		return m.failErr
	}
	if m.index >= len(m.frames) {
		return ErrEndOfStream
	}

	// Copy so the caller's buffer never aliases the fixture
	m.frames[m.index].CopyTo(dst)
	m.index++

	return nil
}

// Skip drops whole frames covering d at the mock's frame rate.
func (m *MockSource) Skip(d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return ErrSourceNotOpen
	}
	if m.index > 0 {
		return ErrSkipAfterRead
	}

	m.skipped = d
	if m.fps > 0 {
		m.index = min(int(d.Seconds()*m.fps), len(m.frames))
	}
	return nil
}

func (m *MockSource) Info() StreamInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := StreamInfo{FPS: m.fps, FrameCount: len(m.frames)}
	if len(m.frames) > 0 {
		info.Width = m.frames[0].Cols()
		info.Height = m.frames[0].Rows()
	}
	return info
}

func (m *MockSource) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Consumed returns how many frames have been handed out or skipped.
func (m *MockSource) Consumed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}
