package download

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFraction(t *testing.T) {
	assert.Equal(t, 0.0, fraction(10, 0))
	assert.Equal(t, 0.0, fraction(10, -1))
	assert.Equal(t, 0.5, fraction(5, 10))
	assert.Equal(t, 1.0, fraction(15, 10), "clamped")
}

func TestProgressWriter_ClampsAndNeverDecreases(t *testing.T) {
	var got []float64
	pw := &progressWriter{w: &bytes.Buffer{}, expected: 10, fn: func(f float64) { got = append(got, f) }}

	for _, chunk := range []string{"abc", "", "defg", "hij", "overflow"} {
		_, err := pw.Write([]byte(chunk))
		require.NoError(t, err)
	}
	pw.finish()

	assert.Equal(t, []float64{0.3, 0.7, 1.0}, got)
}

func TestProgressWriter_FinishReportsOne(t *testing.T) {
	var got []float64
	pw := &progressWriter{w: &bytes.Buffer{}, expected: 100, fn: func(f float64) { got = append(got, f) }}
	_, _ = pw.Write(make([]byte, 40))
	pw.finish()

	assert.Equal(t, []float64{0.4, 1.0}, got)
}

func TestProgressWriter_UnknownLengthSilent(t *testing.T) {
	called := false
	pw := &progressWriter{w: &bytes.Buffer{}, expected: -1, fn: func(float64) { called = true }}
	_, _ = pw.Write([]byte("data"))
	pw.finish()
	assert.False(t, called)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestProgressWriter_MarksWriteErrors(t *testing.T) {
	pw := &progressWriter{w: failingWriter{}, expected: 4}
	_, err := pw.Write([]byte("data"))

	var we *writeError
	require.ErrorAs(t, err, &we)
	assert.EqualError(t, err, "disk full")
}
