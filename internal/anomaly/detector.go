// Package anomaly flags price points that sit far outside a series' robust
// spread. The detector is pure arithmetic over the input series, so identical
// inputs always produce identical output.
package anomaly

import (
	"math"
	"sort"

	"solsniper/models"
)

// DefaultContamination is the expected share of outliers in a series.
const DefaultContamination = 0.10

// minOutlierScore is the floor a point's score must clear to count as an
// outlier. It suppresses flat and near-flat series where the top quantile is
// just ordinary spread.
const minOutlierScore = 1.0

// madScale converts a median absolute deviation into a consistent estimate
// of the standard deviation (the usual 0.6745 modified z-score factor).
const madScale = 0.6745

// Detector scores each price against the series median, normalized by the
// median absolute deviation, and flags the points whose score lands in the
// top contamination quantile. Series shorter than two points carry no signal
// and produce no flags.
type Detector struct {
	contamination float64
}

// New returns a detector expecting the given share of outliers. Values
// outside (0, 1) fall back to DefaultContamination.
func New(contamination float64) *Detector {
	if contamination <= 0 || contamination >= 1 {
		contamination = DefaultContamination
	}
	return &Detector{contamination: contamination}
}

// Result holds per-point outlier flags aligned with the input series.
type Result struct {
	Flags  []bool
	Scores []float64
}

// Any reports whether at least one point was flagged.
func (r Result) Any() bool {
	for _, f := range r.Flags {
		if f {
			return true
		}
	}
	return false
}

// Count returns the number of flagged points.
func (r Result) Count() int {
	n := 0
	for _, f := range r.Flags {
		if f {
			n++
		}
	}
	return n
}

// Detect scores the series and flags its outliers.
func (d *Detector) Detect(prices []models.PricePoint) Result {
	n := len(prices)
	res := Result{
		Flags:  make([]bool, n),
		Scores: make([]float64, n),
	}
	if n < 2 {
		return res
	}

	values := make([]float64, n)
	for i, p := range prices {
		values[i] = p.Price
	}

	med := median(values)

	devs := make([]float64, n)
	for i, v := range values {
		devs[i] = math.Abs(v - med)
	}

	// MAD is the primary spread estimate; when more than half the series
	// sits exactly on the median it degenerates to zero and the mean
	// absolute deviation takes over.
	scale := median(devs)
	if scale == 0 {
		scale = mean(devs)
	}
	if scale == 0 {
		return res // constant series
	}

	for i, dev := range devs {
		res.Scores[i] = madScale * dev / scale
	}

	cut := quantile(res.Scores, 1-d.contamination)
	for i, score := range res.Scores {
		res.Flags[i] = score >= cut && score > minOutlierScore
	}
	return res
}

// median returns the middle value of the series without mutating it.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile returns the q-th quantile with linear interpolation between ranks.
func quantile(values []float64, q float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	rank := q * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
