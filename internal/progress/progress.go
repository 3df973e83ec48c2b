// Package progress reports selection progress to the user.
//
// Implementations include:
//   - Terminal: pterm output with a live status line on interactive terminals
//   - JSON: one structured event per line for machine consumption
package progress

import (
	"image"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/ayusman/videostrip/internal/capture"
	"github.com/ayusman/videostrip/internal/keyframe"
	"github.com/ayusman/videostrip/internal/report"
)

// Reporter extends keyframe.Observer with the run-level announcements.
type Reporter interface {
	keyframe.Observer

	// Banner announces the stream before the first frame is read.
	Banner(input string, info capture.StreamInfo, work image.Point)

	// Summary is printed once the run is over, including after cancellation.
	Summary(sum keyframe.Summary)
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type discard struct{}

func (discard) Banner(string, capture.StreamInfo, image.Point) {}
func (discard) Frame(int, keyframe.Decision)                   {}
func (discard) Refine(int, int, int, float64, float64)         {}
func (discard) Committed(report.FrameRecord)                   {}
func (discard) Summary(keyframe.Summary)                       {}

// Discard is a Reporter that prints nothing.
var Discard Reporter = discard{}
