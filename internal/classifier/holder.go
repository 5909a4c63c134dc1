package classifier

import "sync/atomic"

// Holder is the single indirection point between the serving path and
// the current artifact. Readers take a snapshot pointer; the trainer
// replaces the whole artifact in one atomic store, so a reader sees
// either the fully-old or fully-new model, never a mix.
type Holder struct {
	current atomic.Pointer[Artifact]
}

// NewHolder creates an empty holder. Current returns nil until the
// first artifact is swapped in.
func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the active artifact snapshot, or nil when no model
// has been trained yet.
func (h *Holder) Current() *Artifact {
	return h.current.Load()
}

// Swap atomically replaces the active artifact.
func (h *Holder) Swap(artifact *Artifact) {
	h.current.Store(artifact)
}
