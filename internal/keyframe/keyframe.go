package keyframe

import (
	"github.com/cockroachdb/errors"
	"gocv.io/x/gocv"

	"github.com/ayusman/videostrip/internal/overlap"
)

// Keyframe is the frame new frames are measured against. It is owned by
// the Selector and replaced wholesale on every commit.
type Keyframe struct {
	// Index is the output index.
	Index int
	// Frame is the read index in the stream.
	Frame int
	// Image is the full-resolution frame.
	Image gocv.Mat
	// Ref holds the working-resolution copy and its cached features.
	Ref *overlap.Reference
}

func newKeyframe(index, frame int, full, work gocv.Mat) *Keyframe {
	return &Keyframe{
		Index: index,
		Frame: frame,
		Image: full.Clone(),
		Ref:   overlap.NewReference(work),
	}
}

// Close releases the images and features.
func (k *Keyframe) Close() error {
	if k == nil {
		return nil
	}
	return errors.CombineErrors(k.Image.Close(), k.Ref.Close())
}
