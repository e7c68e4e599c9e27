package aggregator

import (
	"math"
	"sort"
)

// TimerStats contains the values rendered for a timer on flush
type TimerStats struct {
	Lower    float64
	Upper    float64
	Mean     float64
	UpperPct float64
	// Count is the number of the lowest values within the percentile
	Count int
}

// ComputeTimerStats calculates timer statistics for the given percentile.
// The input slice is not modified.
func ComputeTimerStats(values []float64, percentile int) TimerStats {
	n := len(values)

	if n == 0 {
		return TimerStats{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n == 1 {
		v := sorted[0]
		return TimerStats{Lower: v, Upper: v, Mean: v, UpperPct: v, Count: 1}
	}

	thresholdIndex := (float64(100-percentile) / 100) * float64(n)
	count := n - int(math.Round(thresholdIndex))

	if count < 1 {
		count = 1
	} else if count > n {
		count = n
	}

	var sum float64

	for _, v := range sorted[:count] {
		sum += v
	}

	return TimerStats{
		Lower:    sorted[0],
		Upper:    sorted[n-1],
		Mean:     sum / float64(count),
		UpperPct: sorted[count-1],
		Count:    count,
	}
}
