package features

import (
	"image"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

const (
	// bandMargin is the context kept above and below each band. It covers the
	// ORB patch at the coarsest pyramid level (31 * 1.2^7 ≈ 112px).
	bandMargin = 112

	// minBandHeight keeps bands tall enough to be worth a goroutine.
	minBandHeight = 96
)

// parallelExtractor splits the frame into horizontal bands, runs one ORB
// detector per band concurrently and merges the results in band order.
type parallelExtractor struct {
	cfg  Config
	orbs []gocv.ORB
	mu   sync.Mutex
}

// NewParallel creates the banded multi-goroutine ORB strategy.
func NewParallel(cfg Config) Extractor {
	return &parallelExtractor{cfg: cfg}
}

func (e *parallelExtractor) Name() string { return StrategyParallel }

type bandResult struct {
	keypoints []gocv.KeyPoint
	rows      []byte
}

// bands returns the core row ranges for an image of the given height.
func (e *parallelExtractor) bands(rows int) [][2]int {
	n := min(e.cfg.Workers, max(1, rows/minBandHeight))
	out := make([][2]int, n)
	for i := range out {
		out[i] = [2]int{rows * i / n, rows * (i + 1) / n}
	}
	return out
}

// detectors lazily grows the per-band detector pool. Callers hold e.mu.
func (e *parallelExtractor) detectors(n int) []gocv.ORB {
	perBand := max(1, (e.cfg.MaxFeatures+n-1)/n)
	for len(e.orbs) < n {
		e.orbs = append(e.orbs, newORB(perBand))
	}
	return e.orbs[:n]
}

// Extract detects and describes keypoints band by band.
func (e *parallelExtractor) Extract(gray gocv.Mat) (*Set, error) {
	if err := checkInput(gray); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	bands := e.bands(gray.Rows())
	orbs := e.detectors(len(bands))
	results := make([]bandResult, len(bands))

	g := new(errgroup.Group)
	g.SetLimit(max(1, min(e.cfg.Workers, runtime.NumCPU())))

	for i, band := range bands {
		g.Go(func() error {
			res, err := extractBand(orbs[i], gray, band[0], band[1])
			if err != nil {
				return errors.Wrapf(err, "band %d", i)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var (
		kps  []gocv.KeyPoint
		data []byte
	)
	for _, r := range results {
		kps = append(kps, r.keypoints...)
		data = append(data, r.rows...)
	}
	if len(kps) == 0 {
		return emptySet(), nil
	}

	shared, err := gocv.NewMatFromBytes(len(kps), DescriptorSize, gocv.MatTypeCV8U, data)
	if err != nil {
		return nil, errors.Wrap(err, "assemble descriptors")
	}
	defer shared.Close()
	desc := shared.Clone()
	runtime.KeepAlive(data)

	return &Set{Keypoints: kps, Descriptors: desc}, nil
}

// extractBand runs orb over rows [y0, y1) plus margin and keeps the
// keypoints whose centres fall in the core rows.
func extractBand(orb gocv.ORB, gray gocv.Mat, y0, y1 int) (bandResult, error) {
	top := max(0, y0-bandMargin)
	bottom := min(gray.Rows(), y1+bandMargin)

	roi := gray.Region(image.Rect(0, top, gray.Cols(), bottom))
	defer roi.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := orb.DetectAndCompute(roi, mask)
	defer desc.Close()

	if len(kps) == 0 || desc.Empty() {
		return bandResult{}, nil
	}
	if desc.Rows() != len(kps) || desc.Cols() != DescriptorSize {
		return bandResult{}, errors.Newf("unexpected descriptor shape %dx%d for %d keypoints",
			desc.Rows(), desc.Cols(), len(kps))
	}

	all := desc.ToBytes()
	var res bandResult
	for i, kp := range kps {
		y := kp.Y + float64(top)
		if y < float64(y0) || y >= float64(y1) {
			continue
		}
		kp.Y = y
		res.keypoints = append(res.keypoints, kp)
		res.rows = append(res.rows, all[i*DescriptorSize:(i+1)*DescriptorSize]...)
	}
	return res, nil
}

// Close releases every band detector.
func (e *parallelExtractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var errs error
	for _, orb := range e.orbs {
		if err := orb.Close(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	e.orbs = nil
	return errs
}
