package overlap

import (
	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"

	"github.com/ayusman/videostrip/internal/capture"
	"github.com/ayusman/videostrip/internal/features"
)

// Reference is the working-resolution image of the current keyframe with its
// lazily computed features. Features are extracted at most once.
type Reference struct {
	image gocv.Mat
	fresh bool
	set   *features.Set
}

// NewReference creates a fresh Reference from a copy of work.
func NewReference(work gocv.Mat) *Reference {
	return &Reference{image: work.Clone(), fresh: true}
}

// Image returns the working-resolution image. It stays owned by the Reference.
func (r *Reference) Image() gocv.Mat {
	return r.image
}

// Fresh reports whether features have not been computed yet.
func (r *Reference) Fresh() bool {
	return r.fresh
}

// Features returns the cached feature set, extracting it on first use.
func (r *Reference) Features(ext features.Extractor) (*features.Set, error) {
	if !r.fresh {
		return r.set, nil
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if err := capture.ToGray(r.image, &gray); err != nil {
		return nil, errors.Wrap(err, "reference to gray")
	}

	set, err := ext.Extract(gray)
	if err != nil {
		return nil, errors.Wrap(err, "reference features")
	}

	r.set = set
	r.fresh = false
	return r.set, nil
}

// Close releases the image and cached features.
func (r *Reference) Close() error {
	if r == nil {
		return nil
	}
	err := r.image.Close()
	if r.set != nil {
		err = errors.CombineErrors(err, r.set.Close())
		r.set = nil
	}
	return err
}
