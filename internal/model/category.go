package model

import "time"

// Category represents a valid expense category. Categories form an
// open set: new names arrive through manual entry and corrections and
// are never deleted by the engine.
type Category struct {
	CreatedAt time.Time
	Name      string
	ID        int64
}
