package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/car-service-concierge/internal/model"
)

// CarRepo provides persistence for customer vehicles.
type CarRepo struct{ DB *sql.DB }

func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{DB: db} }

// ErrPlateExists is returned when a plate is already registered to the
// same owner.
var ErrPlateExists = errors.New("license plate already registered")

const carColumns = "id, owner_id, model, year, license_plate"

func scanCar(sc interface{ Scan(...any) error }) (model.Car, error) {
	var (
		c    model.Car
		year sql.NullInt32
	)
	err := sc.Scan(&c.ID, &c.OwnerID, &c.Model, &year, &c.LicensePlate)
	if year.Valid {
		y := uint16(year.Int32)
		c.Year = &y
	}
	return c, err
}

// Create inserts a car for the owner and returns its ID.
func (r *CarRepo) Create(ctx context.Context, c model.Car) (uint64, error) {
	var year any
	if c.Year != nil {
		year = *c.Year
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO cars (owner_id, model, year, license_plate) VALUES (?,?,?,?)",
		c.OwnerID, c.Model, year, c.LicensePlate)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrPlateExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one car.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (model.Car, error) {
	c, err := scanCar(r.DB.QueryRowContext(ctx,
		"SELECT "+carColumns+" FROM cars WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return c, ErrCarNotFound
	}
	return c, err
}

// ListByOwner returns all cars of one customer.
func (r *CarRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Car, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+carColumns+" FROM cars WHERE owner_id=? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cars := make([]model.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

// Update changes the mutable fields of a car owned by ownerID.  The
// ownership check and the write happen in one statement so a customer
// can never edit someone else's vehicle.
func (r *CarRepo) Update(ctx context.Context, id, ownerID uint64, carModel string, year *uint16, plate string) error {
	var y any
	if year != nil {
		y = *year
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE cars SET model=?, year=?, license_plate=? WHERE id=? AND owner_id=?",
		carModel, y, plate, id, ownerID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrPlateExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.ownershipError(ctx, id, ownerID)
	}
	return nil
}

// Delete removes a car.  Cars referenced by service requests cannot be
// deleted; the FK restriction surfaces as ErrConflict.
func (r *CarRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM cars WHERE id=? AND owner_id=?", id, ownerID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1451") {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.ownershipError(ctx, id, ownerID)
	}
	return nil
}

// ownershipError distinguishes "no such car" from "not yours" after a
// zero-row write.
func (r *CarRepo) ownershipError(ctx context.Context, id, ownerID uint64) error {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c.OwnerID != ownerID {
		return ErrForbidden
	}
	return nil
}
