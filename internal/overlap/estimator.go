package overlap

import (
	"sync"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/videostrip/internal/capture"
	"github.com/ayusman/videostrip/internal/features"
)

// Matching and fitting parameters.
const (
	// RatioThreshold accepts a match when nearest < RatioThreshold * second nearest.
	RatioThreshold = 0.8
	// MinMatches is the fewest ratio-test survivors a homography is fitted from.
	MinMatches = 4
	// RansacReprojThreshold is the inlier distance in working-resolution pixels.
	RansacReprojThreshold = 3.0

	ransacMaxIters   = 2000
	ransacConfidence = 0.995
)

// Estimator measures the overlap between a Reference and new frames.
type Estimator struct {
	extractor features.Extractor
	matcher   gocv.BFMatcher
	log       *zap.SugaredLogger
	mu        sync.Mutex
}

// NewEstimator creates an Estimator that extracts features with ext.
// A nil logger disables logging.
func NewEstimator(ext features.Extractor, log *zap.SugaredLogger) *Estimator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Estimator{
		extractor: ext,
		matcher:   gocv.NewBFMatcherWithParams(gocv.NormHamming, false),
		log:       log,
	}
}

// Estimate returns the intersection-over-union of the reference frame
// rectangle and the current frame's rectangle mapped into reference
// coordinates.
//
// Pipeline:
// 1. Load (or lazily extract once) the reference features
// 2. Extract features of the current frame
// 3. 2-nearest-neighbour Hamming matching, filtered by the ratio test
// 4. Fit a current -> reference homography with RANSAC
// 5. Project the current frame's corners and rasterize the intersection
func (e *Estimator) Estimate(ref *Reference, frame gocv.Mat) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ref == nil || ref.Image().Empty() || frame.Empty() {
		return Failed(FailureEmptyInput, 0)
	}

	refSet, err := ref.Features(e.extractor)
	if err != nil {
		e.log.Debugw("Reference extraction failed", "error", err)
		return Failed(FailureEmptyInput, 0)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if err := capture.ToGray(frame, &gray); err != nil {
		return Failed(FailureEmptyInput, 0)
	}

	cur, err := e.extractor.Extract(gray)
	if err != nil {
		e.log.Debugw("Frame extraction failed", "error", err)
		return Failed(FailureEmptyInput, 0)
	}
	defer cur.Close()

	if refSet.Len() < 2 || cur.Len() < MinMatches {
		return Failed(FailureTooFewMatches, 0)
	}

	src, dst := e.match(cur, refSet)
	if len(src) < MinMatches {
		return Failed(FailureTooFewMatches, len(src))
	}

	h, inliers, ok := fitHomography(src, dst)
	if !ok {
		return Failed(FailureDegenerate, len(src))
	}

	refW, refH := ref.Image().Cols(), ref.Image().Rows()
	var quad [4]point
	for i, c := range corners(frame.Cols(), frame.Rows()) {
		p, ok := h.project(c)
		if !ok {
			return Failed(FailureDegenerate, len(src))
		}
		quad[i] = p
	}
	if !convex(quad) {
		return Failed(FailureDegenerate, len(src))
	}

	inter := rasterIntersection(quad, refW, refH)
	value, ok := iou(float64(refW*refH), shoelaceArea(quad), inter)
	if !ok {
		return Failed(FailureDegenerate, len(src))
	}

	return Measured(value, len(src), inliers)
}

// match pairs current keypoints with reference keypoints using the ratio test.
func (e *Estimator) match(cur, ref *features.Set) (src, dst []point) {
	knn := e.matcher.KnnMatch(cur.Descriptors, ref.Descriptors, 2)
	for _, m := range knn {
		if len(m) < 2 {
			continue
		}
		if m[0].Distance < RatioThreshold*m[1].Distance {
			q, t := cur.Keypoints[m[0].QueryIdx], ref.Keypoints[m[0].TrainIdx]
			src = append(src, point{q.X, q.Y})
			dst = append(dst, point{t.X, t.Y})
		}
	}
	return src, dst
}

// fitHomography fits dst ~ H * src with RANSAC.
func fitHomography(src, dst []point) (homography, int, bool) {
	srcMat := pointsMat(src)
	defer srcMat.Close()
	dstMat := pointsMat(dst)
	defer dstMat.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	hm := gocv.FindHomography(srcMat, &dstMat, gocv.HomograpyMethodRANSAC,
		RansacReprojThreshold, &mask, ransacMaxIters, ransacConfidence)
	defer hm.Close()

	h, ok := homographyFromMat(hm)
	if !ok {
		return h, 0, false
	}

	inliers := len(src)
	if !mask.Empty() {
		inliers = gocv.CountNonZero(mask)
	}
	if inliers < MinMatches {
		return h, inliers, false
	}
	return h, inliers, true
}

// pointsMat packs points into an Nx2 float32 matrix.
func pointsMat(pts []point) gocv.Mat {
	m := gocv.NewMatWithSize(len(pts), 2, gocv.MatTypeCV32F)
	for i, p := range pts {
		m.SetFloatAt(i, 0, float32(p.X))
		m.SetFloatAt(i, 1, float32(p.Y))
	}
	return m
}

// Close releases the matcher.
func (e *Estimator) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matcher.Close()
}
