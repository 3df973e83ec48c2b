package sharpness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/videostrip/internal/framegen"
)

func TestNew(t *testing.T) {
	tests := []struct {
		strategy string
		wantName string
		wantErr  bool
	}{
		{strategy: "", wantName: StrategyLaplacian},
		{strategy: "laplacian", wantName: StrategyLaplacian},
		{strategy: "Parallel", wantName: StrategyParallel},
		{strategy: "tenengrad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			s, err := New(tt.strategy, 4)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownStrategy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name())
		})
	}
}

func TestReflect101(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{i: -1, n: 5, want: 1},
		{i: 0, n: 5, want: 0},
		{i: 4, n: 5, want: 4},
		{i: 5, n: 5, want: 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reflect101(tt.i, tt.n), "reflect101(%d, %d)", tt.i, tt.n)
	}
}

func TestScore_FlatFrameIsZero(t *testing.T) {
	flat := framegen.Uniform(64, 48, 90)
	defer flat.Close()

	for _, s := range []Scorer{NewLaplacian(), NewParallel(4)} {
		t.Run(s.Name(), func(t *testing.T) {
			score, err := s.Score(flat)
			require.NoError(t, err)
			assert.InDelta(t, 0.0, score, 1e-9)
		})
	}
}

func TestScore_EmptyFrame(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	for _, s := range []Scorer{NewLaplacian(), NewParallel(4)} {
		_, err := s.Score(empty)
		assert.Error(t, err, s.Name())
	}
}

func TestScore_SharpBeatsBlurred(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sharpness test in short mode")
	}

	scene := framegen.NewScene(640, 480, 640, 3)
	defer scene.Close()

	sharp := scene.View(0, 0, 640, 480)
	defer sharp.Close()
	soft := framegen.Blur(sharp, 5)
	defer soft.Close()
	softer := framegen.Blur(sharp, 15)
	defer softer.Close()

	for _, s := range []Scorer{NewLaplacian(), NewParallel(4)} {
		t.Run(s.Name(), func(t *testing.T) {
			a, err := s.Score(sharp)
			require.NoError(t, err)
			b, err := s.Score(soft)
			require.NoError(t, err)
			c, err := s.Score(softer)
			require.NoError(t, err)

			assert.Greater(t, a, b)
			assert.Greater(t, b, c)
		})
	}
}

func TestScore_StrategiesAgree(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sharpness test in short mode")
	}

	scene := framegen.NewScene(800, 480, 600, 11)
	defer scene.Close()

	for _, x := range []int{0, 80, 160} {
		view := scene.View(x, 0, 640, 480)
		want, err := NewLaplacian().Score(view)
		require.NoError(t, err)

		for _, workers := range []int{1, 3, 8} {
			got, err := NewParallel(workers).Score(view)
			require.NoError(t, err)
			assert.InEpsilon(t, want, got, 1e-6, "x=%d workers=%d", x, workers)
		}
		view.Close()
	}
}
