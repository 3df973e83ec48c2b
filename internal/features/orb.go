package features

import (
	"sync"

	"gocv.io/x/gocv"
)

// ORB pyramid parameters shared by both strategies.
const (
	orbScaleFactor   = 1.2
	orbLevels        = 8
	orbEdgeThreshold = 31
	orbPatchSize     = 31
	orbFastThreshold = 20
)

func newORB(maxFeatures int) gocv.ORB {
	return gocv.NewORBWithParams(
		maxFeatures,
		orbScaleFactor,
		orbLevels,
		orbEdgeThreshold,
		0,
		2,
		gocv.ORBScoreTypeHarris,
		orbPatchSize,
		orbFastThreshold,
	)
}

// orbExtractor runs a single ORB detector over the whole frame.
type orbExtractor struct {
	orb gocv.ORB
	mu  sync.Mutex
}

// NewORB creates the single-threaded ORB strategy.
func NewORB(cfg Config) Extractor {
	return &orbExtractor{orb: newORB(cfg.MaxFeatures)}
}

func (e *orbExtractor) Name() string { return StrategyCPU }

// Extract detects and describes keypoints over the whole image.
func (e *orbExtractor) Extract(gray gocv.Mat) (*Set, error) {
	if err := checkInput(gray); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := e.orb.DetectAndCompute(gray, mask)
	if len(kps) == 0 || desc.Empty() {
		desc.Close()
		return emptySet(), nil
	}

	return &Set{Keypoints: kps, Descriptors: desc}, nil
}

// Close releases the detector.
func (e *orbExtractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orb.Close()
}
