package sharpness

import (
	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"

	"github.com/ayusman/videostrip/internal/capture"
)

// Laplacian scores frames with OpenCV's 3x3 aperture Laplacian.
type Laplacian struct{}

// NewLaplacian creates the OpenCV-backed scorer.
func NewLaplacian() *Laplacian {
	return &Laplacian{}
}

func (l *Laplacian) Name() string { return StrategyLaplacian }

// Score converts frame to gray, filters it with a signed 16-bit Laplacian
// and returns the standard deviation of the response.
func (l *Laplacian) Score(frame gocv.Mat) (float64, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if err := capture.ToGray(frame, &gray); err != nil {
		return 0, errors.Wrap(err, "sharpness")
	}

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV16S, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(lap, &mean, &stddev)

	if stddev.Empty() {
		return 0, errors.New("sharpness: empty standard deviation")
	}
	return stddev.GetDoubleAt(0, 0), nil
}
