// internal/models/driver.go
package models

import (
	"time"
)

// Driver is a driver/vehicle pair whose visits to the service location are counted.
// VisitCount lives in [0, threshold) between visits; LastPaidAt is set only when a
// visit triggers the payment reset.
type Driver struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DriverID      string     `json:"driver_id" gorm:"uniqueIndex;not null"` // assigned once, never updated
	Name          string     `json:"name"`
	PhoneNumber   string     `json:"phone_number"`
	DLNumber      string     `json:"dl_number" gorm:"index"`
	VehicleNumber string     `json:"vehicle_number" gorm:"index"`
	VisitCount    int        `json:"visit_count" gorm:"not null;check:visit_count >= 0"`
	LastPaidAt    *time.Time `json:"last_paid_at"`
}
