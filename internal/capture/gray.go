package capture

import "gocv.io/x/gocv"

// ToGray writes a single-channel copy of frame into dst.
func ToGray(frame gocv.Mat, dst *gocv.Mat) error {
	if frame.Empty() {
		return ErrEmptyFrame
	}

	switch frame.Channels() {
	case 1:
		frame.CopyTo(dst)
	case 4:
		gocv.CvtColor(frame, dst, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(frame, dst, gocv.ColorBGRToGray)
	}
	return nil
}
