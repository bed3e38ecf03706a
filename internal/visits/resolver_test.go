package visits

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"visit_tracker/internal/apperrors"
	"visit_tracker/internal/directory"
	"visit_tracker/internal/models"
)

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy([]string{"vehicle_number", "DRIVER_ID", "vehicle_number"})
	require.NoError(t, err)
	assert.Equal(t, VehicleOrDriverID, p)
	assert.Equal(t, "vehicle_number,driver_id", p.String())

	_, err = ParsePolicy(nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidField)

	_, err = ParsePolicy([]string{"phone_number"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidField)
}

func TestPolicy_MatchesSkipsEmptyValues(t *testing.T) {
	s := Submission{VehicleNumber: "  ", DriverID: "DRIVER-1", DLNumber: "MH12 2001 1234567"}

	assert.Equal(t, []directory.Match{{Field: directory.FieldDriverID, Value: "DRIVER-1"}}, VehicleOrDriverID.Matches(s))

	key, ok := VehicleOrDriverID.Key(s)
	assert.True(t, ok)
	assert.Equal(t, "driver_id:DRIVER-1", key)

	key, ok = LicenseOnly.Key(s)
	assert.True(t, ok)
	assert.Equal(t, "dl_number:MH12 2001 1234567", key)

	_, ok = LicenseOnly.Key(Submission{VehicleNumber: "MH12AB1234"})
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	existing := &models.Driver{ID: 3, DriverID: "DRIVER-1", VehicleNumber: "MH12AB1234"}
	r := Resolver{Policy: VehicleOrDriverID}
	s := Submission{VehicleNumber: "MH12AB1234", DriverID: "DRIVER-1"}
	matches := []directory.Match{
		{Field: directory.FieldVehicleNumber, Value: "MH12AB1234"},
		{Field: directory.FieldDriverID, Value: "DRIVER-1"},
	}

	t.Run("found", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("FindByAny", mock.Anything, matches).Return(existing, nil)

		got, found, err := r.Resolve(context.Background(), dir, s)

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, existing, got)
	})

	t.Run("not found is not an error", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("FindByAny", mock.Anything, matches).Return(nil, apperrors.ErrNotFound)

		got, found, err := r.Resolve(context.Background(), dir, s)

		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	})

	t.Run("several matches conflict", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("FindByAny", mock.Anything, matches).Return(nil, apperrors.ErrConflict)

		_, _, err := r.Resolve(context.Background(), dir, s)

		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("storage failure", func(t *testing.T) {
		dir := &mockDirectory{}
		dir.On("FindByAny", mock.Anything, matches).Return(nil, errors.New("malformed row"))

		_, _, err := r.Resolve(context.Background(), dir, s)

		var lookupErr *apperrors.LookupError
		assert.ErrorAs(t, err, &lookupErr)
	})

	t.Run("nothing to match on", func(t *testing.T) {
		dir := &mockDirectory{}

		_, _, err := r.Resolve(context.Background(), dir, Submission{Name: "x"})

		assert.ErrorIs(t, err, apperrors.ErrNoIdentity)
		dir.AssertNotCalled(t, "FindByAny", mock.Anything, mock.Anything)
	})
}

func TestSearch(t *testing.T) {
	dir := &mockDirectory{}
	dir.On("FindByAny", mock.Anything, []directory.Match{
		{Field: directory.FieldVehicleNumber, Value: "DRIVER-404"},
		{Field: directory.FieldDriverID, Value: "DRIVER-404"},
	}).Return(nil, apperrors.ErrNotFound)

	got, found, err := Search(context.Background(), dir, " DRIVER-404 ")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)

	_, _, err = Search(context.Background(), dir, "")
	assert.ErrorIs(t, err, apperrors.ErrNoIdentity)
}

func TestNewDriverID(t *testing.T) {
	format := regexp.MustCompile(`^DRIVER-[0-9A-Z]{9}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewDriverID()
		assert.Regexp(t, format, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 95)
}
