package render

import "math"

const (
	DefaultVMin = -85.0 // dBm, unusable signal
	DefaultVMax = -25.0 // dBm, next to the access point

	// For 20 samples:
	// - 5% percentile  = 1 sample
	// - 95% percentile = 19th sample
	minimumSampleCount = 20

	minimumSpan = 20 // dB
)

// Bounds is the value range of the color scale.
type Bounds struct {
	Min float64
	Max float64
}

// DefaultBounds returns the fixed signal band used unless configured.
func DefaultBounds() Bounds {
	return Bounds{Min: DefaultVMin, Max: DefaultVMax}
}

// histogram counts values in 1 dB bins.
type histogram struct {
	bins       map[int]uint64
	totalCount uint64
	minBin     int
	maxBin     int
}

func newHistogram() *histogram {
	return &histogram{
		bins:   make(map[int]uint64),
		minBin: math.MaxInt32,
		maxBin: math.MinInt32,
	}
}

func (h *histogram) update(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}

	bin := int(math.Floor(v))
	h.bins[bin]++
	h.totalCount++

	h.minBin = min(h.minBin, bin)
	h.maxBin = max(h.maxBin, bin)
}

// percentileBounds returns the 5th and 95th percentile bins widened to
// minimumSpan and padded by a 10% margin.
func (h *histogram) percentileBounds() Bounds {
	if h.totalCount < minimumSampleCount {
		return DefaultBounds()
	}

	target := h.totalCount * 5 / 100

	var count uint64
	lo := h.minBin
	for bin := h.minBin; bin <= h.maxBin; bin++ {
		count += h.bins[bin]
		if count >= target {
			lo = bin
			break
		}
	}

	count = 0
	hi := h.maxBin
	for bin := h.maxBin; bin >= h.minBin; bin-- {
		count += h.bins[bin]
		if count >= target {
			hi = bin + 1 // upper edge of the bin
			break
		}
	}

	if hi-lo < minimumSpan {
		center := (hi + lo) / 2
		lo = center - minimumSpan/2
		hi = center + minimumSpan/2
	}

	margin := (hi - lo) / 10
	return Bounds{
		Min: float64(lo - margin),
		Max: float64(hi + margin),
	}
}

// AutoBounds derives a color scale from the distribution of values, ignoring
// the outer 5% on each side. Too few values yield DefaultBounds.
func AutoBounds(values []float64) Bounds {
	h := newHistogram()
	for _, v := range values {
		h.update(v)
	}
	return h.percentileBounds()
}
