package sharpness

import (
	"math"

	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/videostrip/internal/capture"
)

// Parallel computes the same measure as Laplacian by filtering row bands
// concurrently. Sums are accumulated as integers, so the result does not
// depend on how rows are split.
type Parallel struct {
	workers int
}

// NewParallel creates a banded scorer using at most workers goroutines.
func NewParallel(workers int) *Parallel {
	return &Parallel{workers: max(1, workers)}
}

func (p *Parallel) Name() string { return StrategyParallel }

type moments struct {
	sum   int64
	sumSq int64
}

// Score converts frame to gray and returns the standard deviation of its
// 4-neighbour Laplacian, with edges reflected as OpenCV's default border does.
func (p *Parallel) Score(frame gocv.Mat) (float64, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if err := capture.ToGray(frame, &gray); err != nil {
		return 0, errors.Wrap(err, "sharpness")
	}

	rows, cols := gray.Rows(), gray.Cols()
	if rows < 2 || cols < 2 {
		return 0, nil
	}
	pix := gray.ToBytes()

	n := min(p.workers, rows)
	parts := make([]moments, n)

	var g errgroup.Group
	for i := range parts {
		y0, y1 := rows*i/n, rows*(i+1)/n
		g.Go(func() error {
			parts[i] = laplacianMoments(pix, rows, cols, y0, y1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var total moments
	for _, m := range parts {
		total.sum += m.sum
		total.sumSq += m.sumSq
	}

	count := float64(rows * cols)
	mean := float64(total.sum) / count
	variance := float64(total.sumSq)/count - mean*mean
	return math.Sqrt(math.Max(variance, 0)), nil
}

// reflect101 mirrors an out-of-range index without repeating the edge.
func reflect101(i, n int) int {
	switch {
	case i < 0:
		return -i
	case i >= n:
		return 2*n - i - 2
	default:
		return i
	}
}

// laplacianMoments accumulates the Laplacian response over rows [y0, y1).
func laplacianMoments(pix []byte, rows, cols, y0, y1 int) moments {
	var m moments
	for y := y0; y < y1; y++ {
		up := reflect101(y-1, rows) * cols
		row := y * cols
		down := reflect101(y+1, rows) * cols
		for x := 0; x < cols; x++ {
			left := reflect101(x-1, cols)
			right := reflect101(x+1, cols)
			v := int64(pix[up+x]) + int64(pix[down+x]) +
				int64(pix[row+left]) + int64(pix[row+right]) -
				4*int64(pix[row+x])
			m.sum += v
			m.sumSq += v * v
		}
	}
	return m
}
