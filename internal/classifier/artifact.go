// Package classifier implements the multinomial naive Bayes model used
// to categorize expenses, packaged as immutable, versioned artifacts.
package classifier

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"time"

	"grosz/internal/encoder"
)

// Artifact is one trained encoder+model pair. Artifacts are immutable
// once built: retraining produces a new artifact and the holder swaps
// the current pointer, so in-flight predictions keep a self-consistent
// snapshot.
type Artifact struct {
	TrainedAt      time.Time
	ID             string
	Labels         []string
	Encoder        encoder.State
	ClassLogPrior  []float64
	FeatureLogProb [][]float64
	SampleCount    int

	enc *encoder.Encoder
}

// Predict returns the most likely label for a token sequence and a
// calibrated probability for that label. Ties resolve to the label
// earliest in the artifact's label order, which mirrors the category
// registry's insertion order at training time.
func (a *Artifact) Predict(tokens []string) (string, float64) {
	vec := a.enc.Transform(tokens)

	joint := make([]float64, len(a.Labels))
	for c := range a.Labels {
		score := a.ClassLogPrior[c]
		for j, x := range vec {
			if x != 0 {
				score += x * a.FeatureLogProb[c][j]
			}
		}
		joint[c] = score
	}

	probs := softmax(joint)

	best := 0
	for c := 1; c < len(probs); c++ {
		if probs[c] > probs[best] {
			best = c
		}
	}
	return a.Labels[best], probs[best]
}

// Encode serializes the artifact for durable storage.
func (a *Artifact) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a); err != nil {
		return nil, fmt.Errorf("failed to encode artifact: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode restores an artifact from its serialized form.
func Decode(blob []byte) (*Artifact, error) {
	var artifact Artifact
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if len(artifact.Labels) == 0 {
		return nil, fmt.Errorf("decoded artifact has no labels")
	}
	// Rebuild the unexported encoder instance; gob only carries state.
	// Predictions share artifacts across goroutines, so this happens
	// here rather than lazily.
	artifact.enc = encoder.FromState(artifact.Encoder)
	return &artifact, nil
}

// softmax converts log-space joint scores into probabilities using the
// log-sum-exp shift for numerical stability.
func softmax(logs []float64) []float64 {
	if len(logs) == 0 {
		return nil
	}
	maxLog := logs[0]
	for _, l := range logs[1:] {
		if l > maxLog {
			maxLog = l
		}
	}

	probs := make([]float64, len(logs))
	sum := 0.0
	for i, l := range logs {
		probs[i] = math.Exp(l - maxLog)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
