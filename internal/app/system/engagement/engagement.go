// Package engagement derives qualitative engagement bands from observed
// activity density (activities per active student) so heatmap cells can
// be colored and labeled relative to the dataset itself rather than
// fixed cutoffs.
package engagement

import "sort"

// Level labels one heatmap cell's activity density.
type Level string

const (
	LevelHigh     Level = "high"
	LevelModerate Level = "moderate"
	LevelLight    Level = "light"
	LevelBrief    Level = "brief"
	LevelMinimal  Level = "minimal"
)

// Sample is one (activity count, student count) observation, typically a
// single hour-of-day on a single date.
type Sample struct {
	Activities int64
	Students   int64
}

// Thresholds are the percentile-derived boundaries between bands.
type Thresholds struct {
	High     float64 `json:"high"`     // 75th percentile
	Moderate float64 `json:"moderate"` // 50th percentile
	Light    float64 `json:"light"`    // 25th percentile
	Brief    float64 `json:"brief"`    // min(light/2, smallest positive ratio)
}

// DefaultThresholds are used when no usable samples exist.
func DefaultThresholds() Thresholds {
	return Thresholds{High: 10, Moderate: 5, Light: 1, Brief: 0.1}
}

// Compute derives thresholds from the order statistics of the per-sample
// ratios. Samples with a zero activity or student count carry no density
// signal and are excluded. Percentile indexes use floor(n*p); for small n
// this can repeat boundary values, which is accepted behavior.
func Compute(samples []Sample) Thresholds {
	ratios := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Activities > 0 && s.Students > 0 {
			ratios = append(ratios, float64(s.Activities)/float64(s.Students))
		}
	}
	if len(ratios) == 0 {
		return DefaultThresholds()
	}
	sort.Float64s(ratios)

	n := len(ratios)
	light := ratios[n*25/100]
	moderate := ratios[n*50/100]
	high := ratios[n*75/100]

	minPositive := ratios[0]
	if minPositive <= 0 {
		minPositive = 0.1
	}
	brief := light / 2
	if minPositive < brief {
		brief = minPositive
	}

	return Thresholds{High: high, Moderate: moderate, Light: light, Brief: brief}
}

// Classify assigns a band to a single activities-per-student ratio,
// comparing against the thresholds in descending order.
func (t Thresholds) Classify(ratio float64) Level {
	switch {
	case ratio >= t.High:
		return LevelHigh
	case ratio >= t.Moderate:
		return LevelModerate
	case ratio >= t.Light:
		return LevelLight
	case ratio >= t.Brief:
		return LevelBrief
	default:
		return LevelMinimal
	}
}
