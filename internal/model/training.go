package model

import "time"

// TrainingStatus is the lifecycle state of the process-wide training job.
type TrainingStatus string

// Training job states. At most one run may be in TrainingRunning at a
// time; terminal states re-arm to idle once observed.
const (
	TrainingIdle      TrainingStatus = "idle"
	TrainingRunning   TrainingStatus = "running"
	TrainingCompleted TrainingStatus = "completed"
	TrainingFailed    TrainingStatus = "failed"
)

// Terminal reports whether the status will not change without a new
// training request.
func (s TrainingStatus) Terminal() bool {
	return s == TrainingCompleted || s == TrainingFailed
}

// TrainingJob is a snapshot of the training job state machine.
type TrainingJob struct {
	StartedAt time.Time
	Status    TrainingStatus
	Error     string
}
