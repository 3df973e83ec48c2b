// Package sink persists committed keyframes as numbered image files.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/cockroachdb/errors"
	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

// Supported output formats.
const (
	FormatJPEG = "jpg"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// DefaultQuality is the JPEG/WebP quality used when none is configured.
const DefaultQuality = 95

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Sink stores keyframe images.
type Sink interface {
	// Write stores frame as keyframe number index and returns its identifier.
	Write(index int, frame gocv.Mat) (string, error)
}

// FileSink writes <Prefix><NNNN>.<Format> files.
type FileSink struct {
	Prefix  string
	Format  string
	Quality int
}

// NewFileSink validates format and creates the parent directory of prefix.
func NewFileSink(prefix, format string, quality int) (*FileSink, error) {
	format = NormalizeFormat(format)
	switch format {
	case FormatJPEG, FormatPNG, FormatWebP:
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	if dir := filepath.Dir(prefix + "x"); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create output directory %s", dir)
		}
	}

	return &FileSink{Prefix: prefix, Format: format, Quality: quality}, nil
}

// NormalizeFormat maps format aliases to their canonical names.
func NormalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimPrefix(format, ".")); f {
	case "", "jpeg", FormatJPEG:
		return FormatJPEG
	default:
		return f
	}
}

// Name returns the file name for keyframe number index.
func (s *FileSink) Name(index int) string {
	return fmt.Sprintf("%s%04d.%s", s.Prefix, index, s.Format)
}

// Write encodes frame to the file for index.
func (s *FileSink) Write(index int, frame gocv.Mat) (string, error) {
	if frame.Empty() {
		return "", errors.Newf("keyframe %d is empty", index)
	}

	name := s.Name(index)
	var err error
	switch s.Format {
	case FormatJPEG:
		if ok := gocv.IMWriteWithParams(name, frame, []int{int(gocv.IMWriteJpegQuality), s.Quality}); !ok {
			err = errors.New("encoder refused the frame")
		}
	case FormatPNG:
		err = s.writePNG(name, frame)
	case FormatWebP:
		err = s.writeWebP(name, frame)
	}
	if err != nil {
		return "", errors.Wrapf(err, "write %s", name)
	}
	return name, nil
}

func (s *FileSink) writePNG(name string, frame gocv.Mat) error {
	img, err := frame.ToImage()
	if err != nil {
		return errors.Wrap(err, "convert frame")
	}
	return imaging.Save(img, name)
}

func (s *FileSink) writeWebP(name string, frame gocv.Mat) error {
	img, err := frame.ToImage()
	if err != nil {
		return errors.Wrap(err, "convert frame")
	}

	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := webp.Encode(f, img, &webp.Options{Lossless: false, Quality: float32(s.Quality)}); err != nil {
		return err
	}
	return f.Close()
}
