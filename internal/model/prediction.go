package model

// ConfidenceBand groups a confidence score for presentation. Bands are
// cosmetic only; the review gate uses the single configured threshold.
type ConfidenceBand string

const (
	// BandHigh marks predictions the classifier is confident about.
	BandHigh ConfidenceBand = "high"
	// BandMedium marks middling predictions.
	BandMedium ConfidenceBand = "medium"
	// BandLow marks predictions barely above chance.
	BandLow ConfidenceBand = "low"
)

// Band thresholds. The high cutoff follows the original app's
// highlight behavior; both exist purely for display severity.
const (
	highBandMin   = 0.80
	mediumBandMin = 0.50
)

// BandFor maps a confidence score to its presentation band.
func BandFor(confidence float64) ConfidenceBand {
	switch {
	case confidence >= highBandMin:
		return BandHigh
	case confidence >= mediumBandMin:
		return BandMedium
	default:
		return BandLow
	}
}

// Prediction is the classifier's answer for one expense.
type Prediction struct {
	Category    string
	Band        ConfidenceBand
	Confidence  float64
	NeedsReview bool
}
