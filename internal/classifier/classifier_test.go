package classifier

import (
	"math"
	"testing"

	"grosz/internal/encoder"
)

func trainTestArtifact(t *testing.T) *Artifact {
	t.Helper()

	docs := [][]string{
		{"paliwo", "orlen"},
		{"tankowanie", "shell"},
		{"diesel", "bp"},
		{"paliwo", "stacja"},
		{"benzyna", "orlen"},
		{"zakupy", "biedronka"},
		{"zakupy", "lidl"},
		{"warzywa", "rynek"},
		{"mleko", "chleb"},
		{"bilet", "kino"},
	}
	labels := []string{
		"Fuel", "Fuel", "Fuel", "Fuel", "Fuel",
		"Groceries", "Groceries", "Groceries", "Groceries",
		"Entertainment",
	}
	labelOrder := []string{"Fuel", "Groceries", "Entertainment"}

	enc := encoder.Fit(docs)
	artifact, err := Train(enc, docs, labels, labelOrder)
	if err != nil {
		t.Fatalf("Failed to train: %v", err)
	}
	return artifact
}

func TestTrain_PredictsDominantClass(t *testing.T) {
	artifact := trainTestArtifact(t)

	label, confidence := artifact.Predict([]string{"paliwo", "orlen"})
	if label != "Fuel" {
		t.Errorf("Expected Fuel, got %s (confidence %f)", label, confidence)
	}
	if confidence <= 1.0/3.0 {
		t.Errorf("Expected confidence above chance, got %f", confidence)
	}
	if confidence > 1.0 {
		t.Errorf("Confidence out of range: %f", confidence)
	}
}

func TestTrain_UnseenTokensFallToPrior(t *testing.T) {
	artifact := trainTestArtifact(t)

	// Nothing in the vocabulary matches, so the priors decide: Fuel
	// has the most samples.
	label, confidence := artifact.Predict([]string{"xyzzy"})
	if label != "Fuel" {
		t.Errorf("Expected prior class Fuel, got %s", label)
	}
	if confidence <= 0 || confidence > 1 {
		t.Errorf("Confidence out of range: %f", confidence)
	}
}

func TestPredict_TieBreaksToEarliestLabel(t *testing.T) {
	docs := [][]string{{"x"}, {"x"}}
	labels := []string{"Beta", "Alpha"}
	labelOrder := []string{"Alpha", "Beta"}

	enc := encoder.Fit(docs)
	artifact, err := Train(enc, docs, labels, labelOrder)
	if err != nil {
		t.Fatalf("Failed to train: %v", err)
	}

	// Both classes saw the identical document, so the scores tie and
	// the first label in the order must win.
	label, confidence := artifact.Predict([]string{"x"})
	if label != "Alpha" {
		t.Errorf("Expected tie to resolve to Alpha, got %s", label)
	}
	if math.Abs(confidence-0.5) > 1e-9 {
		t.Errorf("Expected confidence 0.5 on a two-way tie, got %f", confidence)
	}
}

func TestPredict_RepeatedEvidenceReachesHighConfidence(t *testing.T) {
	var (
		docs   [][]string
		labels []string
	)
	add := func(tokens []string, label string, count int) {
		for i := 0; i < count; i++ {
			docs = append(docs, tokens)
			labels = append(labels, label)
		}
	}
	add([]string{"paliwo", "orlen"}, "Fuel", 12)
	add([]string{"zakupy", "lidl"}, "Groceries", 10)
	add([]string{"bilet", "kino"}, "Entertainment", 5)

	enc := encoder.Fit(docs)
	artifact, err := Train(enc, docs, labels, []string{"Fuel", "Groceries", "Entertainment"})
	if err != nil {
		t.Fatalf("Failed to train: %v", err)
	}

	// A query matching phrasing the corpus has confirmed many times
	// must land in the high band, not just above chance.
	label, confidence := artifact.Predict([]string{"paliwo", "orlen"})
	if label != "Fuel" {
		t.Errorf("Expected Fuel, got %s", label)
	}
	if confidence < 0.80 {
		t.Errorf("Expected high-band confidence >= 0.80, got %f", confidence)
	}
}

func TestTrain_InputValidation(t *testing.T) {
	enc := encoder.Fit([][]string{{"a"}})

	tests := []struct {
		name       string
		docs       [][]string
		labels     []string
		labelOrder []string
	}{
		{name: "empty corpus", docs: nil, labels: nil, labelOrder: []string{"A"}},
		{name: "size mismatch", docs: [][]string{{"a"}}, labels: []string{"A", "B"}, labelOrder: []string{"A", "B"}},
		{name: "label missing from order", docs: [][]string{{"a"}}, labels: []string{"A"}, labelOrder: []string{"B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Train(enc, tt.docs, tt.labels, tt.labelOrder); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestArtifact_EncodeDecodeRoundTrip(t *testing.T) {
	artifact := trainTestArtifact(t)

	blob, err := artifact.Encode()
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	decoded, err := Decode(blob)
	if err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if decoded.ID != artifact.ID {
		t.Errorf("ID changed on round trip: %s != %s", decoded.ID, artifact.ID)
	}
	if decoded.SampleCount != artifact.SampleCount {
		t.Errorf("Sample count changed: %d != %d", decoded.SampleCount, artifact.SampleCount)
	}

	query := []string{"zakupy", "lidl"}
	wantLabel, wantConfidence := artifact.Predict(query)
	gotLabel, gotConfidence := decoded.Predict(query)
	if gotLabel != wantLabel {
		t.Errorf("Prediction changed on round trip: %s != %s", gotLabel, wantLabel)
	}
	if math.Abs(gotConfidence-wantConfidence) > 1e-9 {
		t.Errorf("Confidence changed on round trip: %f != %f", gotConfidence, wantConfidence)
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a gob stream")); err == nil {
		t.Error("Expected error decoding garbage")
	}
}

func TestHolder_SwapAndCurrent(t *testing.T) {
	holder := NewHolder()
	if holder.Current() != nil {
		t.Error("Expected empty holder to return nil")
	}

	artifact := trainTestArtifact(t)
	holder.Swap(artifact)
	if holder.Current() != artifact {
		t.Error("Expected swapped artifact to be current")
	}

	replacement := trainTestArtifact(t)
	holder.Swap(replacement)
	if holder.Current() != replacement {
		t.Error("Expected replacement artifact after second swap")
	}
}
