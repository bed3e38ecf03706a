package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"visit_tracker/internal/apperrors"
	"visit_tracker/internal/models"
)

const uniqueViolation = "23505"

// GormDirectory is the Directory backed by the relational drivers table.
type GormDirectory struct {
	db      *gorm.DB
	locking bool // set inside WithinIdentity
}

func New(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

// query returns a session that takes row locks on Postgres when running
// inside WithinIdentity. SQLite serializes writers on its own.
func (d *GormDirectory) query(ctx context.Context) *gorm.DB {
	q := d.db.WithContext(ctx)
	if d.locking && d.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (d *GormDirectory) FindByField(ctx context.Context, field Field, value string) (*models.Driver, error) {
	return d.FindByAny(ctx, []Match{{Field: field, Value: value}})
}

func (d *GormDirectory) FindByAny(ctx context.Context, matches []Match) (*models.Driver, error) {
	if len(matches) == 0 {
		return nil, apperrors.ErrNoIdentity
	}

	conds := make([]string, 0, len(matches))
	args := make([]any, 0, len(matches))
	for _, m := range matches {
		field, err := ParseField(string(m.Field))
		if err != nil {
			return nil, err
		}
		conds = append(conds, string(field)+" = ?")
		args = append(args, m.Value)
	}

	var drivers []models.Driver
	err := d.query(ctx).
		Where(strings.Join(conds, " OR "), args...).
		Order("id").
		Limit(2).
		Find(&drivers).Error
	if err != nil {
		return nil, classify(err)
	}

	switch len(drivers) {
	case 0:
		return nil, apperrors.ErrNotFound
	case 1:
		return &drivers[0], nil
	}
	return nil, fmt.Errorf("%w: drivers %d and %d both match", apperrors.ErrConflict, drivers[0].ID, drivers[1].ID)
}

func (d *GormDirectory) Create(ctx context.Context, driver *models.Driver) error {
	if err := d.db.WithContext(ctx).Create(driver).Error; err != nil {
		return classify(err)
	}
	return nil
}

// Update applies a partial update by column name. id and driver_id are immutable.
func (d *GormDirectory) Update(ctx context.Context, id uint, fields map[string]any) (*models.Driver, error) {
	for col := range fields {
		if col == "id" || col == "driver_id" {
			return nil, fmt.Errorf("%w: %s cannot be updated", apperrors.ErrInvalidField, col)
		}
	}

	var driver models.Driver
	if err := d.query(ctx).First(&driver, id).Error; err != nil {
		return nil, classify(err)
	}
	if err := d.db.WithContext(ctx).Model(&driver).Updates(fields).Error; err != nil {
		return nil, classify(err)
	}

	var updated models.Driver
	if err := d.db.WithContext(ctx).First(&updated, id).Error; err != nil {
		return nil, classify(err)
	}
	return &updated, nil
}

func (d *GormDirectory) ListAll(ctx context.Context) ([]models.Driver, error) {
	var drivers []models.Driver
	if err := d.db.WithContext(ctx).Order("id").Find(&drivers).Error; err != nil {
		return nil, classify(err)
	}
	return drivers, nil
}

func (d *GormDirectory) AppendEvent(ctx context.Context, event *models.VisitEvent) error {
	if err := d.db.WithContext(ctx).Create(event).Error; err != nil {
		return classify(err)
	}
	return nil
}

func (d *GormDirectory) ListEvents(ctx context.Context, driverRef uint) ([]models.VisitEvent, error) {
	var events []models.VisitEvent
	err := d.db.WithContext(ctx).
		Where("driver_ref = ?", driverRef).
		Order("id").
		Find(&events).Error
	if err != nil {
		return nil, classify(err)
	}
	return events, nil
}

// WithinIdentity wraps fn in a transaction. On Postgres it also takes a
// transaction-scoped advisory lock on key so that two first visits for the
// same unseen driver cannot both insert.
func (d *GormDirectory) WithinIdentity(ctx context.Context, key string, fn func(Directory) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
				return fmt.Errorf("lock identity %q: %w", key, err)
			}
		}
		return fn(&GormDirectory{db: tx, locking: true})
	})
}

func classify(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", apperrors.ErrNotFound, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return true
	}
	return false
}
