// Package framegen renders deterministic synthetic scenes for tests.
//
// A Scene is a wide "world" image whose left part is covered with random
// shapes (rich in corners for feature detection) and whose right part is
// flat. Views cropped from the world simulate a camera panning across it.
package framegen

import (
	"image"
	"image/color"
	"math/rand"

	"gocv.io/x/gocv"
)

// Flat is the gray level of the untextured part of a scene.
const Flat = 128

// Scene is a rendered world image.
type Scene struct {
	world    gocv.Mat
	textured image.Rectangle
}

// NewScene renders a width x height world whose first texturedWidth columns
// are covered with shapes drawn from seed.
func NewScene(width, height, texturedWidth int, seed int64) *Scene {
	world := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	world.SetTo(gocv.NewScalar(Flat, Flat, Flat, 0))

	textured := image.Rect(0, 0, min(texturedWidth, width), height)
	rng := rand.New(rand.NewSource(seed))

	// Area-proportional density keeps every view busy
	shapes := textured.Dx() * textured.Dy() / 700
	for i := 0; i < shapes; i++ {
		size := 8 + rng.Intn(48)
		x := rng.Intn(max(1, textured.Dx()-size))
		y := rng.Intn(max(1, textured.Dy()-size))
		c := randomColor(rng)

		switch rng.Intn(3) {
		case 0:
			gocv.Rectangle(&world, image.Rect(x, y, x+size, y+size/2+4), c, -1)
		case 1:
			gocv.Circle(&world, image.Pt(x+size/2, y+size/2), size/2, c, 2)
		default:
			gocv.Line(&world, image.Pt(x, y), image.Pt(x+size, y+rng.Intn(size)), c, 2)
		}
	}

	return &Scene{world: world, textured: textured}
}

func randomColor(rng *rand.Rand) color.RGBA {
	// Keep clear of the flat background level
	level := func() uint8 {
		v := rng.Intn(200)
		if v >= Flat-20 {
			v += 40
		}
		return uint8(min(v, 255))
	}
	return color.RGBA{R: level(), G: level(), B: level(), A: 255}
}

// Bounds returns the size of the world.
func (s *Scene) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.world.Cols(), s.world.Rows())
}

// Textured returns the region that carries features.
func (s *Scene) Textured() image.Rectangle {
	return s.textured
}

// View returns an owned copy of the w x h window whose top-left corner is (x, y).
func (s *Scene) View(x, y, w, h int) gocv.Mat {
	region := s.world.Region(image.Rect(x, y, x+w, y+h))
	defer region.Close()
	return region.Clone()
}

// Pan returns n views of size w x h starting at x0 and moving dx pixels per frame.
func (s *Scene) Pan(n, x0, dx, w, h int) []gocv.Mat {
	views := make([]gocv.Mat, n)
	for i := range views {
		views[i] = s.View(x0+i*dx, 0, w, h)
	}
	return views
}

// Close releases the world image.
func (s *Scene) Close() error {
	return s.world.Close()
}

// Blur returns a Gaussian-blurred copy of frame.
func Blur(frame gocv.Mat, ksize int) gocv.Mat {
	if ksize%2 == 0 {
		ksize++
	}
	out := gocv.NewMat()
	gocv.GaussianBlur(frame, &out, image.Pt(ksize, ksize), 0, 0, gocv.BorderDefault)
	return out
}

// Uniform returns a w x h BGR frame filled with level in every channel.
func Uniform(w, h int, level uint8) gocv.Mat {
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	v := float64(level)
	m.SetTo(gocv.NewScalar(v, v, v, 0))
	return m
}

// CloseAll releases every frame in frames.
func CloseAll(frames []gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
