// Package encoder turns normalized expense tokens into fixed-width
// TF-IDF feature vectors. An encoder's vocabulary is fitted inside a
// training run and travels with the classifier artifact it was fitted
// for; the two are never mixed across runs.
package encoder

import (
	"math"
	"sort"
)

// State is the fitted encoder vocabulary in serializable form. Terms
// are stored in their column order.
type State struct {
	Terms []string
	IDF   []float64
}

// Encoder computes TF-IDF vectors over unigram and bigram terms.
type Encoder struct {
	vocab map[string]int
	idf   []float64
	terms []string
}

// Fit builds an encoder from a corpus of normalized token sequences.
// An empty corpus or a corpus with no tokens yields a zero-dimension
// encoder; Transform then returns empty vectors.
func Fit(docs [][]string) *Encoder {
	df := make(map[string]int)
	for _, tokens := range docs {
		seen := make(map[string]struct{})
		for _, term := range terms(tokens) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	// Sort for a stable column order regardless of corpus order.
	sorted := make([]string, 0, len(df))
	for term := range df {
		sorted = append(sorted, term)
	}
	sort.Strings(sorted)

	enc := &Encoder{
		vocab: make(map[string]int, len(sorted)),
		idf:   make([]float64, len(sorted)),
		terms: sorted,
	}

	n := float64(len(docs))
	for i, term := range sorted {
		enc.vocab[term] = i
		// Smoothed IDF
		enc.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return enc
}

// FromState restores a fitted encoder from its serialized state.
func FromState(state State) *Encoder {
	enc := &Encoder{
		vocab: make(map[string]int, len(state.Terms)),
		idf:   append([]float64(nil), state.IDF...),
		terms: append([]string(nil), state.Terms...),
	}
	for i, term := range enc.terms {
		enc.vocab[term] = i
	}
	return enc
}

// State returns the serializable form of the fitted vocabulary.
func (e *Encoder) State() State {
	return State{
		Terms: append([]string(nil), e.terms...),
		IDF:   append([]float64(nil), e.idf...),
	}
}

// Dimension returns the width of produced vectors.
func (e *Encoder) Dimension() int {
	return len(e.terms)
}

// Transform computes the L2-normalized TF-IDF vector for one token
// sequence. Terms never seen during fitting contribute nothing.
func (e *Encoder) Transform(tokens []string) []float64 {
	vec := make([]float64, len(e.terms))

	tf := make(map[int]int)
	total := 0
	for _, term := range terms(tokens) {
		if idx, ok := e.vocab[term]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}

	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// terms expands a token sequence into unigram and bigram terms.
func terms(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, 2*len(tokens)-1)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}
