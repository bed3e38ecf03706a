package models

import (
	"time"
)

// VisitKind names the transition a visit caused on a driver's counter.
type VisitKind string

const (
	VisitCreated     VisitKind = "created"
	VisitIncremented VisitKind = "incremented"
	VisitPaid        VisitKind = "paid"
)

// VisitEvent is the append-only history of processed visits.
type VisitEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time `json:"created_at"`
	DriverRef  uint      `json:"driver_ref" gorm:"index;not null"` // Driver.ID
	Kind       VisitKind `json:"kind"`
	VisitCount int       `json:"visit_count"` // count after the transition
	RecordedBy string    `json:"recorded_by"` // admin username

	// Service location as WKB (SRID 4326), empty when the client sent none.
	Location []byte `json:"-" gorm:"type:bytea"`
}
