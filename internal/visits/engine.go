package visits

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"visit_tracker/internal/apperrors"
	"visit_tracker/internal/directory"
	"visit_tracker/internal/models"
)

const (
	DefaultThreshold = 4
	PayMessage       = "Pay the driver"
)

// Result is the outcome of one processed visit.
type Result struct {
	Kind       models.VisitKind
	VisitCount int
	Message    string
	Driver     models.Driver
}

// Notifier is told about every committed visit.
type Notifier interface {
	PublishVisit(Result)
}

// Engine advances a driver's visit counter. The counter restarts at zero on
// the visit that completes a cycle of Threshold visits, and that visit is
// answered with PayMessage.
type Engine struct {
	Directory directory.Directory
	Resolver  Resolver
	Threshold int
	Now       func() time.Time
	NewID     func() string
	Notifier  Notifier
}

func NewEngine(dir directory.Directory, policy IdentityPolicy, threshold int) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{
		Directory: dir,
		Resolver:  Resolver{Policy: policy},
		Threshold: threshold,
		Now:       time.Now,
		NewID:     NewDriverID,
	}
}

// RecordVisit resolves the submitting driver and creates, increments or
// resets their counter. Lookup and mutation run in one transaction keyed by
// the submission's identity.
func (e *Engine) RecordVisit(ctx context.Context, s Submission) (Result, error) {
	key, ok := e.Resolver.Policy.Key(s)
	if !ok {
		return Result{}, apperrors.ErrNoIdentity
	}

	var res Result
	err := e.Directory.WithinIdentity(ctx, key, func(dir directory.Directory) error {
		driver, found, err := e.Resolver.Resolve(ctx, dir, s)
		if err != nil {
			return err
		}
		if found {
			res, err = e.advance(ctx, dir, driver)
		} else {
			res, err = e.create(ctx, dir, s)
		}
		if err != nil {
			return err
		}

		event := &models.VisitEvent{
			DriverRef:  res.Driver.ID,
			Kind:       res.Kind,
			VisitCount: res.VisitCount,
			RecordedBy: s.RecordedBy,
			Location:   s.Location,
		}
		if err := dir.AppendEvent(ctx, event); err != nil {
			return &apperrors.WriteError{Op: "record visit for", Err: err}
		}
		return nil
	})
	if err != nil {
		return Result{}, asVisitError(err)
	}

	logrus.WithFields(logrus.Fields{
		"driver_id":   res.Driver.DriverID,
		"kind":        res.Kind,
		"visit_count": res.VisitCount,
		"recorded_by": s.RecordedBy,
	}).Info("Visit recorded")

	if e.Notifier != nil {
		e.Notifier.PublishVisit(res)
	}
	return res, nil
}

func (e *Engine) create(ctx context.Context, dir directory.Directory, s Submission) (Result, error) {
	driverID := s.DriverID
	if driverID == "" {
		driverID = e.NewID()
	}
	driver := models.Driver{
		DriverID:      driverID,
		Name:          s.Name,
		PhoneNumber:   s.PhoneNumber,
		DLNumber:      s.DLNumber,
		VehicleNumber: s.VehicleNumber,
		VisitCount:    1,
	}
	if err := dir.Create(ctx, &driver); err != nil {
		return Result{}, &apperrors.WriteError{Op: "create", Err: err}
	}
	return Result{Kind: models.VisitCreated, VisitCount: 1, Driver: driver}, nil
}

func (e *Engine) advance(ctx context.Context, dir directory.Directory, driver *models.Driver) (Result, error) {
	kind, next := e.next(driver.VisitCount)

	fields := map[string]any{"visit_count": next}
	op := "increment"
	if kind == models.VisitPaid {
		fields["last_paid_at"] = e.Now()
		op = "reset"
	}

	updated, err := dir.Update(ctx, driver.ID, fields)
	if err != nil {
		return Result{}, &apperrors.WriteError{Op: op, Err: err}
	}

	res := Result{Kind: kind, VisitCount: updated.VisitCount, Driver: *updated}
	if kind == models.VisitPaid {
		res.Message = PayMessage
	}
	return res, nil
}

// next computes the transition for a stored count. The check is made
// against the count this visit would reach, so the Threshold-th visit of a
// cycle is the paying one.
func (e *Engine) next(count int) (models.VisitKind, int) {
	if count < 0 {
		count = 0
	}
	if count+1 >= e.Threshold {
		return models.VisitPaid, 0
	}
	return models.VisitIncremented, count + 1
}

// asVisitError keeps typed errors and reports anything else (a failed
// commit, a lost lock) as a write failure.
func asVisitError(err error) error {
	var lookupErr *apperrors.LookupError
	var writeErr *apperrors.WriteError
	switch {
	case errors.As(err, &lookupErr), errors.As(err, &writeErr),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrNoIdentity),
		errors.Is(err, apperrors.ErrInvalidField):
		return err
	}
	return &apperrors.WriteError{Op: "commit visit for", Err: err}
}
