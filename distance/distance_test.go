package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManhattan(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{name: "identical", a: []float32{1, 2, 3}, b: []float32{1, 2, 3}, want: 0},
		{name: "simple", a: []float32{0, 0}, b: []float32{3, 4}, want: 7},
		{name: "negative components", a: []float32{-1, -2}, b: []float32{1, 2}, want: 6},
		{name: "empty", a: nil, b: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Manhattan(tt.a, tt.b))
			// L1 is symmetric
			assert.Equal(t, tt.want, Manhattan(tt.b, tt.a))
		})
	}
}

func TestSquaredL2(t *testing.T) {
	assert.Equal(t, float32(25), SquaredL2([]float32{0, 0}, []float32{3, 4}))
	assert.Equal(t, float32(0), SquaredL2([]float32{1, 1}, []float32{1, 1}))
}

func TestProvider(t *testing.T) {
	fn, err := Provider(MetricManhattan)
	require.NoError(t, err)
	assert.Equal(t, float32(7), fn([]float32{0, 0}, []float32{3, 4}))

	fn, err = Provider(MetricSquaredL2)
	require.NoError(t, err)
	assert.Equal(t, float32(25), fn([]float32{0, 0}, []float32{3, 4}))

	_, err = Provider(Metric(999))
	assert.Error(t, err)
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "Manhattan", MetricManhattan.String())
	assert.Equal(t, "SquaredL2", MetricSquaredL2.String())
	assert.Contains(t, Metric(42).String(), "Unknown")
}
