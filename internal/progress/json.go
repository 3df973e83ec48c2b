package progress

import (
	"encoding/json"
	"image"
	"io"
	"time"

	"github.com/ayusman/videostrip/internal/capture"
	"github.com/ayusman/videostrip/internal/keyframe"
	"github.com/ayusman/videostrip/internal/report"
)

// Event is one structured progress event.
type Event struct {
	Type      string         `json:"type"` // "stream", "keyframe", "complete"
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// JSON writes progress events as JSON lines. Per-frame and refine
// callbacks are not emitted.
type JSON struct {
	encoder *json.Encoder
}

// NewJSON creates a JSON reporter writing to out.
func NewJSON(out io.Writer) *JSON {
	return &JSON{encoder: json.NewEncoder(out)}
}

func (j *JSON) emit(typ string, data map[string]any) {
	_ = j.encoder.Encode(Event{Type: typ, Timestamp: time.Now(), Data: data})
}

// Banner emits a stream event.
func (j *JSON) Banner(input string, info capture.StreamInfo, work image.Point) {
	j.emit("stream", map[string]any{
		"input":       input,
		"width":       info.Width,
		"height":      info.Height,
		"fps":         info.FPS,
		"frames":      info.FrameCount,
		"work_width":  work.X,
		"work_height": work.Y,
	})
}

func (j *JSON) Frame(int, keyframe.Decision)           {}
func (j *JSON) Refine(int, int, int, float64, float64) {}

// Committed emits a keyframe event.
func (j *JSON) Committed(rec report.FrameRecord) {
	j.emit("keyframe", map[string]any{
		"id":       rec.ID,
		"frame":    rec.Frame,
		"filename": rec.Filename,
		"overlap":  rec.Overlap,
		"blur":     rec.Blur,
		"forced":   rec.Forced,
	})
}

// Summary emits a complete event.
func (j *JSON) Summary(sum keyframe.Summary) {
	j.emit("complete", map[string]any{
		"frames_read": sum.FramesRead,
		"keyframes":   sum.Keyframes,
		"forced":      sum.Forced,
		"canceled":    sum.Canceled,
		"elapsed_ms":  sum.Elapsed.Milliseconds(),
	})
}
