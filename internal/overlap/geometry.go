package overlap

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// coordLimit bounds projected corners; anything beyond is treated as a
// homography that sends the frame towards infinity.
const coordLimit = 1 << 20

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

type point struct{ X, Y float64 }

// homography is a row-major 3x3 projective transform.
type homography [9]float64

func homographyFromMat(h gocv.Mat) (homography, bool) {
	var out homography
	if h.Empty() || h.Rows() != 3 || h.Cols() != 3 {
		return out, false
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			v := h.GetDoubleAt(r, c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return out, false
			}
			out[r*3+c] = v
		}
	}
	return out, true
}

// project maps p through h. It fails when p lands on or behind the
// projective horizon or too far away to rasterize.
func (h homography) project(p point) (point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if w <= 1e-9 {
		return point{}, false
	}
	x := (h[0]*p.X + h[1]*p.Y + h[2]) / w
	y := (h[3]*p.X + h[4]*p.Y + h[5]) / w
	if math.Abs(x) > coordLimit || math.Abs(y) > coordLimit {
		return point{}, false
	}
	return point{x, y}, true
}

// corners returns the four corners of a w x h rectangle in clockwise order.
func corners(w, h int) [4]point {
	fw, fh := float64(w), float64(h)
	return [4]point{{0, 0}, {fw, 0}, {fw, fh}, {0, fh}}
}

// shoelaceArea returns the absolute area of a simple polygon.
func shoelaceArea(q [4]point) float64 {
	var sum float64
	for i := range q {
		j := (i + 1) % len(q)
		sum += q[i].X*q[j].Y - q[j].X*q[i].Y
	}
	return math.Abs(sum) / 2
}

// convex reports whether q is a strictly convex quadrilateral.
// A homography of a rectangle that is not convex folded the plane.
func convex(q [4]point) bool {
	var sign float64
	for i := range q {
		a, b, c := q[i], q[(i+1)%4], q[(i+2)%4]
		cross := (b.X-a.X)*(c.Y-b.Y) - (b.Y-a.Y)*(c.X-b.X)
		if math.Abs(cross) < 1e-9 {
			return false
		}
		if sign == 0 {
			sign = math.Copysign(1, cross)
		} else if math.Copysign(1, cross) != sign {
			return false
		}
	}
	return true
}

// rasterIntersection counts the pixels of a w x h rectangle covered by q.
func rasterIntersection(q [4]point, w, h int) int {
	mask := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	defer mask.Close()
	mask.SetTo(gocv.NewScalar(0, 0, 0, 0))

	poly := make([]image.Point, len(q))
	for i, p := range q {
		poly[i] = image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{poly})
	defer pv.Close()

	gocv.FillPoly(&mask, pv, white)
	return gocv.CountNonZero(mask)
}

// iou combines the reference area, the projected quad area and their
// rasterized intersection into an intersection-over-union in [0, 1].
func iou(refArea, quadArea float64, inter int) (float64, bool) {
	i := math.Min(float64(inter), math.Min(refArea, quadArea))
	union := refArea + quadArea - i
	if union <= 0 || math.IsNaN(union) {
		return 0, false
	}
	return i / union, true
}
