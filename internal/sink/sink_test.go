package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/videostrip/internal/framegen"
)

func TestFileSink_Name(t *testing.T) {
	tests := []struct {
		prefix string
		format string
		index  int
		want   string
	}{
		{prefix: "out/kf", format: "", index: 0, want: "out/kf0000.jpg"},
		{prefix: "out/kf", format: "jpeg", index: 12, want: "out/kf0012.jpg"},
		{prefix: "frame_", format: "png", index: 9999, want: "frame_9999.png"},
		{prefix: "frame_", format: ".webp", index: 12345, want: "frame_12345.webp"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			dir := t.TempDir()
			s, err := NewFileSink(filepath.Join(dir, tt.prefix), tt.format, 0)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.want), s.Name(tt.index))
			assert.Equal(t, DefaultQuality, s.Quality)
		})
	}
}

func TestNewFileSink_UnknownFormat(t *testing.T) {
	_, err := NewFileSink(filepath.Join(t.TempDir(), "kf"), "gif", 90)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestNewFileSink_CreatesDirectory(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "nested", "deeper", "kf")
	_, err := NewFileSink(prefix, FormatJPEG, 90)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(prefix))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileSink_Write(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping encoder test in short mode")
	}

	frame := framegen.Uniform(64, 48, 200)
	defer frame.Close()

	for _, format := range []string{FormatJPEG, FormatPNG, FormatWebP} {
		t.Run(format, func(t *testing.T) {
			s, err := NewFileSink(filepath.Join(t.TempDir(), "kf"), format, 90)
			require.NoError(t, err)

			name, err := s.Write(3, frame)
			require.NoError(t, err)
			assert.Equal(t, s.Name(3), name)

			info, err := os.Stat(name)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))

			if format != FormatWebP {
				back := gocv.IMRead(name, gocv.IMReadColor)
				defer back.Close()
				assert.Equal(t, 64, back.Cols())
				assert.Equal(t, 48, back.Rows())
			}
		})
	}
}

func TestFileSink_WriteEmpty(t *testing.T) {
	s, err := NewFileSink(filepath.Join(t.TempDir(), "kf"), FormatJPEG, 90)
	require.NoError(t, err)

	empty := gocv.NewMat()
	defer empty.Close()

	_, err = s.Write(0, empty)
	assert.Error(t, err)
}
