// Package visits holds the visit-counting and payment cycle and the identity
// resolution it depends on.
package visits

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"visit_tracker/internal/apperrors"
	"visit_tracker/internal/directory"
	"visit_tracker/internal/models"
)

// Submission is one visit as entered by an admin. Fields are expected to be
// validated by the caller.
type Submission struct {
	Name          string
	PhoneNumber   string
	DLNumber      string
	VehicleNumber string
	DriverID      string

	Location   []byte // WKB point, optional
	RecordedBy string
}

func (s Submission) value(f directory.Field) string {
	switch f {
	case directory.FieldVehicleNumber:
		return s.VehicleNumber
	case directory.FieldDriverID:
		return s.DriverID
	case directory.FieldDLNumber:
		return s.DLNumber
	}
	return ""
}

// IdentityPolicy lists the fields a submission is matched on, in priority
// order. A record matching any of them is the same driver.
type IdentityPolicy []directory.Field

var (
	VehicleOrDriverID = IdentityPolicy{directory.FieldVehicleNumber, directory.FieldDriverID}
	LicenseOnly       = IdentityPolicy{directory.FieldDLNumber}
)

func ParsePolicy(fields []string) (IdentityPolicy, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: identity policy needs at least one field", apperrors.ErrInvalidField)
	}
	policy := make(IdentityPolicy, 0, len(fields))
	seen := make(map[directory.Field]bool)
	for _, raw := range fields {
		f, err := directory.ParseField(raw)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			policy = append(policy, f)
		}
	}
	return policy, nil
}

func (p IdentityPolicy) String() string {
	names := make([]string, len(p))
	for i, f := range p {
		names[i] = string(f)
	}
	return strings.Join(names, ",")
}

// Matches returns the non-empty submitted values for the policy's fields.
func (p IdentityPolicy) Matches(s Submission) []directory.Match {
	var out []directory.Match
	for _, f := range p {
		if v := strings.TrimSpace(s.value(f)); v != "" {
			out = append(out, directory.Match{Field: f, Value: v})
		}
	}
	return out
}

// Key is the lock key for a submission: its highest-priority non-empty field.
func (p IdentityPolicy) Key(s Submission) (string, bool) {
	m := p.Matches(s)
	if len(m) == 0 {
		return "", false
	}
	return string(m[0].Field) + ":" + m[0].Value, true
}

// Resolver maps submitted identifying fields to at most one stored driver.
type Resolver struct {
	Policy IdentityPolicy
}

// Resolve looks the submission up in dir. found is false when no record
// matches; that is not an error.
func (r Resolver) Resolve(ctx context.Context, dir directory.Directory, s Submission) (*models.Driver, bool, error) {
	matches := r.Policy.Matches(s)
	if len(matches) == 0 {
		return nil, false, apperrors.ErrNoIdentity
	}
	return lookup(ctx, dir, matches)
}

// Search resolves a free-text query against vehicle number or driver id.
func Search(ctx context.Context, dir directory.Directory, query string) (*models.Driver, bool, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false, apperrors.ErrNoIdentity
	}
	return lookup(ctx, dir, []directory.Match{
		{Field: directory.FieldVehicleNumber, Value: query},
		{Field: directory.FieldDriverID, Value: query},
	})
}

func lookup(ctx context.Context, dir directory.Directory, matches []directory.Match) (*models.Driver, bool, error) {
	driver, err := dir.FindByAny(ctx, matches)
	switch {
	case err == nil:
		return driver, true, nil
	case errors.Is(err, apperrors.ErrNotFound):
		return nil, false, nil
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrInvalidField):
		return nil, false, err
	}
	return nil, false, &apperrors.LookupError{Err: err}
}
