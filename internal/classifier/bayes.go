package classifier

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"grosz/internal/encoder"
)

// Laplace smoothing strength for feature likelihoods.
const smoothingAlpha = 1.0

// Train fits a multinomial naive Bayes model over TF-IDF vectors and
// packages it with the fitted encoder into a new artifact.
//
// docs and labels run in parallel; labelOrder fixes the artifact's
// class order and must contain every label that appears in labels.
// The order should be the category registry's insertion order so that
// prediction ties stay deterministic.
func Train(enc *encoder.Encoder, docs [][]string, labels []string, labelOrder []string) (*Artifact, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("empty training corpus")
	}
	if len(docs) != len(labels) {
		return nil, fmt.Errorf("corpus size mismatch: %d docs, %d labels", len(docs), len(labels))
	}

	classIndex := make(map[string]int, len(labelOrder))
	for i, label := range labelOrder {
		classIndex[label] = i
	}
	for _, label := range labels {
		if _, ok := classIndex[label]; !ok {
			return nil, fmt.Errorf("label %q missing from label order", label)
		}
	}

	nClasses := len(labelOrder)
	nFeatures := enc.Dimension()

	classCount := make([]float64, nClasses)
	featureSum := make([][]float64, nClasses)
	featureTotal := make([]float64, nClasses)
	for c := range featureSum {
		featureSum[c] = make([]float64, nFeatures)
	}

	for i, tokens := range docs {
		c := classIndex[labels[i]]
		classCount[c]++
		for j, x := range enc.Transform(tokens) {
			featureSum[c][j] += x
			featureTotal[c] += x
		}
	}

	// Classes with no samples keep a floor prior instead of -Inf so
	// the math stays finite; they can never win over a seen class.
	total := float64(len(docs))
	classLogPrior := make([]float64, nClasses)
	for c := range classLogPrior {
		if classCount[c] == 0 {
			classLogPrior[c] = math.Log(smoothingAlpha / (total + smoothingAlpha*float64(nClasses)))
			continue
		}
		classLogPrior[c] = math.Log(classCount[c] / total)
	}

	featureLogProb := make([][]float64, nClasses)
	for c := range featureLogProb {
		featureLogProb[c] = make([]float64, nFeatures)
		denom := featureTotal[c] + smoothingAlpha*float64(nFeatures)
		for j := range featureLogProb[c] {
			featureLogProb[c][j] = math.Log((featureSum[c][j] + smoothingAlpha) / denom)
		}
	}

	artifact := &Artifact{
		ID:             uuid.NewString(),
		TrainedAt:      time.Now(),
		Labels:         append([]string(nil), labelOrder...),
		Encoder:        enc.State(),
		ClassLogPrior:  classLogPrior,
		FeatureLogProb: featureLogProb,
		SampleCount:    len(docs),
		enc:            enc,
	}
	return artifact, nil
}
