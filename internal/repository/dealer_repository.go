package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/car-service-concierge/internal/model"
)

// DealerRepo provides persistence for dealer organisations.
type DealerRepo struct{ DB *sql.DB }

func NewDealerRepo(db *sql.DB) *DealerRepo { return &DealerRepo{DB: db} }

const dealerColumns = "id, user_id, name, phone, address, job_specialty"

func scanDealer(sc interface{ Scan(...any) error }) (model.Dealer, error) {
	var (
		d      model.Dealer
		userID sql.NullInt64
	)
	err := sc.Scan(&d.ID, &userID, &d.Name, &d.Phone, &d.Address, &d.JobSpecialty)
	if userID.Valid {
		u := uint64(userID.Int64)
		d.UserID = &u
	}
	return d, err
}

// Create inserts a dealer organisation and returns its ID.
func (r *DealerRepo) Create(ctx context.Context, d model.Dealer) (uint64, error) {
	var userID any
	if d.UserID != nil {
		userID = *d.UserID
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO dealers (user_id, name, phone, address, job_specialty) VALUES (?,?,?,?,?)",
		userID, d.Name, d.Phone, d.Address, d.JobSpecialty)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one dealer organisation.
func (r *DealerRepo) GetByID(ctx context.Context, id uint64) (model.Dealer, error) {
	d, err := scanDealer(r.DB.QueryRowContext(ctx,
		"SELECT "+dealerColumns+" FROM dealers WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return d, ErrDealerNotFound
	}
	return d, err
}

// GetByUserID resolves the organisation a dealer-role account belongs
// to.  Used when a dealer takes a request into service, so the request
// records their org automatically.
func (r *DealerRepo) GetByUserID(ctx context.Context, userID uint64) (model.Dealer, error) {
	d, err := scanDealer(r.DB.QueryRowContext(ctx,
		"SELECT "+dealerColumns+" FROM dealers WHERE user_id=? LIMIT 1", userID))
	if err == sql.ErrNoRows {
		return d, ErrDealerNotFound
	}
	return d, err
}

// List returns all dealer organisations ordered by name.  This backs
// the public directory endpoint, which is served through the response
// cache.
func (r *DealerRepo) List(ctx context.Context) ([]model.Dealer, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+dealerColumns+" FROM dealers ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dealers := make([]model.Dealer, 0)
	for rows.Next() {
		d, err := scanDealer(rows)
		if err != nil {
			return nil, err
		}
		dealers = append(dealers, d)
	}
	return dealers, rows.Err()
}

// Update changes the mutable fields of a dealer organisation.
func (r *DealerRepo) Update(ctx context.Context, id uint64, d model.Dealer) error {
	var userID any
	if d.UserID != nil {
		userID = *d.UserID
	}
	res, err := r.DB.ExecContext(ctx,
		"UPDATE dealers SET user_id=?, name=?, phone=?, address=?, job_specialty=? WHERE id=?",
		userID, d.Name, d.Phone, d.Address, d.JobSpecialty, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a dealer organisation.  Requests keep their
// assigned_dealer history through ON DELETE SET NULL, so this never
// conflicts.
func (r *DealerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM dealers WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDealerNotFound
	}
	return nil
}
