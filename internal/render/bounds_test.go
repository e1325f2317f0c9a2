package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutoBounds_TooFewSamples(t *testing.T) {
	values := make([]float64, 0, minimumSampleCount)
	for i := 0; i < minimumSampleCount-1; i++ {
		values = append(values, -60)
	}
	values = append(values, math.NaN())

	assert.Equal(t, DefaultBounds(), AutoBounds(values))
	assert.Equal(t, DefaultBounds(), AutoBounds(nil))
}

func TestAutoBounds_Percentiles(t *testing.T) {
	// two samples per 1 dB bin from -80 to -31
	values := make([]float64, 100)
	for i := range values {
		values[i] = -80 + float64(i)*0.5
	}

	assert.Equal(t, Bounds{Min: -82, Max: -28}, AutoBounds(values))
}

func TestAutoBounds_MinimumSpan(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = -50
	}

	b := AutoBounds(values)
	assert.Equal(t, Bounds{Min: -61, Max: -37}, b)
	assert.GreaterOrEqual(t, b.Max-b.Min, float64(minimumSpan))
}

func TestNiceTicks(t *testing.T) {
	assert.Equal(t, []float64{-80, -70, -60, -50, -40, -30}, niceTicks(-85, -25, 7))
	assert.Equal(t, []float64{0, 0.5, 1}, niceTicks(0, 1, 3))
	assert.Equal(t, []float64{5}, niceTicks(5, 5, 4))
	assert.Equal(t, []float64{-90, -80, -70, -60, -50, -40, -30, -20}, niceTicks(-90, -20, 10))
}

func TestNiceTicks_NoRoundValueInRange(t *testing.T) {
	assert.Equal(t, []float64{-85, -25}, niceTicks(-85, -25, 2))
	assert.Equal(t, []float64{-10, 0, 10}, niceTicks(-10, 10, 3))
}
