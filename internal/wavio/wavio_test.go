package wavio

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecording(t *testing.T, path string, rate, bitDepth int, fullScale float64, values []float32) {
	t.Helper()
	w, err := Create(path, rate, bitDepth, fullScale)
	require.NoError(t, err)
	require.NoError(t, w.Write(values))
	require.NoError(t, w.Close())
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		bitDepth  int
		fullScale float64
		tolerance float64
	}{
		{"16-bit", 16, 4, 4.0 / maxInt16},
		{"24-bit", 24, 4, 4.0 / maxInt24},
		{"32-bit default scale", 32, 0, 1e-4},
	}

	values := []float32{0, 1.5, -2.25, 3.125, -0.5, 0.001}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bvp.wav")
			writeRecording(t, path, 64, tt.bitDepth, tt.fullScale, values)

			rec, err := ReadAll(path, tt.fullScale)
			require.NoError(t, err)
			assert.Equal(t, 64, rec.SampleRate)
			require.Len(t, rec.Values, len(values))
			for i := range values {
				assert.InDelta(t, values[i], rec.Values[i], tt.tolerance, "sample %d", i)
			}
		})
	}
}

func TestWriter_Clips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	writeRecording(t, path, 64, 16, 1, []float32{5, -5})

	rec, err := ReadAll(path, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1, rec.Values[0], 1e-6)
	assert.InDelta(t, -1, rec.Values[1], 1e-6)
}

func TestReader_Chunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.wav")
	values := make([]float32, chunkFrames+100)
	for i := range values {
		values[i] = float32(i%64) / 64
	}
	writeRecording(t, path, 64, 16, 1, values)

	r, err := Open(path, 1)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	assert.Equal(t, 1, r.Channels())
	assert.Equal(t, 16, r.BitDepth())

	total := 0
	buf := make([]float32, 1000)
	for {
		n, err := r.Read(buf)
		total += n
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, len(values), total)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open("/nonexistent/file.wav", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")

	invalid := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(invalid, []byte("not a wav file"), 0o644))
	_, err = Open(invalid, 0)
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestCreate_Errors(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "x.wav"), 64, 12, 0)
	require.Error(t, err)

	_, err = Create(filepath.Join(t.TempDir(), "x.wav"), 0, 16, 0)
	require.Error(t, err)

	_, err = Create("/nonexistent/dir/out.wav", 64, 16, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}
