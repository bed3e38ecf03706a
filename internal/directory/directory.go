// Package directory is the persistence boundary for driver records.
package directory

import (
	"context"
	"fmt"
	"strings"

	"visit_tracker/internal/apperrors"
	"visit_tracker/internal/models"
)

// Field is a driver column that can be used as a lookup key.
type Field string

const (
	FieldVehicleNumber Field = "vehicle_number"
	FieldDriverID      Field = "driver_id"
	FieldDLNumber      Field = "dl_number"
)

// ParseField accepts only the columns the directory is willing to filter on.
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldVehicleNumber, FieldDriverID, FieldDLNumber:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown lookup field %q", apperrors.ErrInvalidField, s)
}

// Match is one (field, value) pair of a disjunctive lookup.
type Match struct {
	Field Field
	Value string
}

// Directory stores driver records and their visit history.
//
// Lookups return apperrors.ErrNotFound when nothing matches and
// apperrors.ErrConflict when more than one record does.
type Directory interface {
	FindByField(ctx context.Context, field Field, value string) (*models.Driver, error)
	FindByAny(ctx context.Context, matches []Match) (*models.Driver, error)
	Create(ctx context.Context, driver *models.Driver) error
	Update(ctx context.Context, id uint, fields map[string]any) (*models.Driver, error)
	ListAll(ctx context.Context) ([]models.Driver, error)

	AppendEvent(ctx context.Context, event *models.VisitEvent) error
	ListEvents(ctx context.Context, driverRef uint) ([]models.VisitEvent, error)

	// WithinIdentity runs fn against a transaction-scoped Directory. Calls
	// sharing the same key are serialized with respect to each other.
	WithinIdentity(ctx context.Context, key string, fn func(Directory) error) error
}
