package delivery

import "time"

// Result classifies a completed delivery stop.
type Result string

const (
	ResultDone   Result = "DONE"
	ResultFailed Result = "FAILED"
)

// Outcome is the immutable record of one completed or failed delivery stop.
// Outcomes are append-only: they are never mutated or deleted and remain the
// audit source of truth even when the denormalized user counters drift.
type Outcome struct {
	ID        string    `bson:"_id" json:"id"`
	DriverID  string    `bson:"driverId" json:"driverId"`
	Address   string    `bson:"address,omitempty" json:"address,omitempty"`
	Lat       float64   `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng       float64   `bson:"lng,omitempty" json:"lng,omitempty"`
	Result    Result    `bson:"result" json:"result"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
