package model

import "time"

// ArtifactRecord is the durable envelope for a serialized classifier
// artifact. The newest record by TrainedAt is the current model; older
// records are kept for history.
type ArtifactRecord struct {
	TrainedAt   time.Time
	CreatedAt   time.Time
	ID          string
	Blob        []byte
	SampleCount int
}
