package util

import (
	"math"
)

// ----------------------------------------------------------------------------
// Helper functions
// ----------------------------------------------------------------------------

type Stats struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
}

// NewStats computes mean, standard deviation, minimum and maximum of values.
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	lo, hi := values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	mean := sum / float64(len(values))

	// population variance
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}

	ratio := 1.0
	if hi > 0 {
		ratio = lo / hi
	}

	return Stats{
		StdDeviation: math.Sqrt(sq / float64(len(values))),
		Min:          lo,
		Max:          hi,
		Mean:         mean,
		MinMaxRatio:  ratio,
	}
}

// DistributionStats describes how evenly a set of lengths is spread.
type DistributionStats struct {
	Stats
	// Quality is 1 for a perfectly even spread and approaches 0 for a skewed one.
	Quality float64 `json:"quality"`
}

// NewDistributionStats computes the spread of values, e.g. the probe lengths of a hash table.
func NewDistributionStats(values []float64) DistributionStats {
	stats := NewStats(values)

	// coefficient of variation
	var cv float64
	if stats.Mean > 0 {
		cv = stats.StdDeviation / stats.Mean
	}

	return DistributionStats{
		Stats:   stats,
		Quality: (1.0-math.Min(1.0, cv))*0.5 + stats.MinMaxRatio*0.5,
	}
}

// ----------------------------------------------------------------------------
// SizeHistogram
// ----------------------------------------------------------------------------

// SizeHistogram counts samples of a bounded size, one bucket per size.
// Sizes above the bound are counted as the bound. It is not safe for concurrent use.
type SizeHistogram struct {
	buckets []int64
	count   int64
	sum     int64
}

// NewSizeHistogram creates a histogram for sizes 0..maxSize.
func NewSizeHistogram(maxSize int) *SizeHistogram {
	return &SizeHistogram{buckets: make([]int64, max(maxSize, 0)+1)}
}

// AddSample adds one size.
func (h *SizeHistogram) AddSample(size int) {
	size = min(max(size, 0), len(h.buckets)-1)
	h.buckets[size]++
	h.count++
	h.sum += int64(size)
}

// Count returns the number of samples.
func (h *SizeHistogram) Count() int64 {
	return h.count
}

// Mean returns the average size, 0 without samples.
func (h *SizeHistogram) Mean() float64 {
	if h.count == 0 {
		return 0
	}
	return float64(h.sum) / float64(h.count)
}

// Median returns the 50th percentile.
func (h *SizeHistogram) Median() int {
	return h.Percentile(50)
}

// Percentile returns the smallest size s such that at least p percent of the samples are <= s.
// Returns 0 without samples or for p outside 0..100.
func (h *SizeHistogram) Percentile(p int) int {
	if h.count == 0 || p < 0 || p > 100 {
		return 0
	}

	target := max(int64(math.Ceil(float64(h.count)*float64(p)/100.0)), 1)
	var cumulative int64
	for size, n := range h.buckets {
		cumulative += n
		if cumulative >= target {
			return size
		}
	}
	return len(h.buckets) - 1
}
