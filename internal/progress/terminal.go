package progress

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/ayusman/videostrip/internal/capture"
	"github.com/ayusman/videostrip/internal/keyframe"
	"github.com/ayusman/videostrip/internal/report"
)

// liveInterval throttles status line redraws.
const liveInterval = 50 * time.Millisecond

// Terminal prints pretty progress using pterm.
type Terminal struct {
	out  io.Writer
	live bool

	lastDraw time.Time
	drawn    bool
	width    int
	now      func() time.Time
}

// NewTerminal creates a terminal reporter writing to out. With live set the
// current frame is shown on a status line that is redrawn in place.
func NewTerminal(out io.Writer, live bool) *Terminal {
	return &Terminal{out: out, live: live, now: time.Now}
}

// Banner prints the stream metadata table.
func (t *Terminal) Banner(input string, info capture.StreamInfo, work image.Point) {
	frames := "unknown"
	duration := "unknown"
	if info.FrameCount > 0 {
		frames = humanize.Comma(int64(info.FrameCount))
		if info.FPS > 0 {
			secs := float64(info.FrameCount) / info.FPS
			duration = (time.Duration(secs * float64(time.Second))).Round(time.Second).String()
		}
	}
	fps := "unknown"
	if info.FPS > 0 {
		fps = strconv.FormatFloat(info.FPS, 'f', 2, 64)
	}

	data := [][]string{
		{"Input", input},
		{"Resolution", fmt.Sprintf("%dx%d", info.Width, info.Height)},
		{"Working resolution", fmt.Sprintf("%dx%d", work.X, work.Y)},
		{"FPS", fps},
		{"Frames", frames},
		{"Duration", duration},
	}
	t.table(data)
}

// Frame redraws the status line for a streamed frame.
func (t *Terminal) Frame(index int, d keyframe.Decision) {
	if !t.live || !t.due(d.Trigger) {
		return
	}
	value := strconv.FormatFloat(d.Overlap, 'f', 4, 64)
	if d.Forced {
		value += " (forced)"
	}
	t.status(fmt.Sprintf("Frame: %s  Overlap: %s", humanize.Comma(int64(index)), value))
}

// Refine redraws the status line for a lookahead frame.
func (t *Terminal) Refine(index, step, window int, score, best float64) {
	if !t.live || !t.due(step == window) {
		return
	}
	t.status(fmt.Sprintf("Refining for Blur [%d/%d]  Frame: %s  Best: %.2f",
		step, window, humanize.Comma(int64(index)), best))
}

// Committed prints one line per stored keyframe.
func (t *Terminal) Committed(rec report.FrameRecord) {
	t.clearLine()
	msg := fmt.Sprintf("Keyframe %d: frame %s -> %s (overlap %.4f, blur %.2f)",
		rec.ID, humanize.Comma(int64(rec.Frame)), rec.Filename, rec.Overlap, rec.Blur)
	if rec.Forced {
		fmt.Fprint(t.out, pterm.Warning.Sprintfln("%s, overlap forced", msg))
		return
	}
	fmt.Fprint(t.out, pterm.Success.Sprintln(msg))
}

// Summary prints the run totals.
func (t *Terminal) Summary(sum keyframe.Summary) {
	t.clearLine()

	rate := "n/a"
	if secs := sum.Elapsed.Seconds(); secs > 0 {
		rate = humanize.FormatFloat("#,###.##", float64(sum.FramesRead)/secs) + " frames/s"
	}
	data := [][]string{
		{"Frames read", humanize.Comma(int64(sum.FramesRead))},
		{"Keyframes", humanize.Comma(int64(sum.Keyframes))},
		{"Forced overlaps", humanize.Comma(int64(sum.Forced))},
		{"Elapsed", sum.Elapsed.Round(time.Millisecond).String()},
		{"Throughput", rate},
	}
	if sum.Canceled {
		fmt.Fprint(t.out, pterm.Warning.Sprintln("Interrupted, keyframes written so far are kept"))
	}
	t.table(data)
}

func (t *Terminal) table(data [][]string) {
	s, err := pterm.DefaultTable.WithData(data).Srender()
	if err != nil {
		return
	}
	fmt.Fprintln(t.out, s)
}

// due reports whether the status line should be redrawn now.
func (t *Terminal) due(force bool) bool {
	now := t.now()
	if !force && t.drawn && now.Sub(t.lastDraw) < liveInterval {
		return false
	}
	t.lastDraw = now
	t.drawn = true
	return true
}

// status redraws the status line, padding over a longer previous one.
func (t *Terminal) status(line string) {
	pad := t.width - len(line)
	t.width = len(line)
	if pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	pterm.Fprinto(t.out, line)
}

func (t *Terminal) clearLine() {
	if t.live && t.drawn {
		pterm.Fprinto(t.out, strings.Repeat(" ", t.width))
		fmt.Fprint(t.out, "\r")
		t.drawn = false
		t.width = 0
	}
}
