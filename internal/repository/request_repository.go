package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/car-service-concierge/internal/model"
	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// RequestRepo provides persistence for service requests.  Status,
// assignment and location writes go through StateTx + ApplyTx inside
// one transaction so the row is locked with SELECT ... FOR UPDATE for
// the whole decide-then-write sequence.
type RequestRepo struct{ DB *sql.DB }

func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{DB: db} }

const requestColumns = `id, customer_id, car_id, job_type, description, pickup_location,
 dropoff_location, status, assigned_to, assigned_dealer, share_location,
 concierge_latitude, concierge_longitude, requested_at, last_updated`

func scanRequest(sc interface{ Scan(...any) error }) (model.ServiceRequest, error) {
	var (
		sr       model.ServiceRequest
		assigned sql.NullInt64
		dealer   sql.NullInt64
		lat, lng sql.NullFloat64
	)
	err := sc.Scan(&sr.ID, &sr.CustomerID, &sr.CarID, &sr.JobType, &sr.Description,
		&sr.PickupLocation, &sr.DropoffLocation, &sr.Status, &assigned, &dealer,
		&sr.ShareLocation, &lat, &lng, &sr.RequestedAt, &sr.LastUpdated)
	if assigned.Valid {
		v := uint64(assigned.Int64)
		sr.AssignedTo = &v
	}
	if dealer.Valid {
		v := uint64(dealer.Int64)
		sr.AssignedDealer = &v
	}
	if lat.Valid {
		v := lat.Float64
		sr.ConciergeLatitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		sr.ConciergeLongitude = &v
	}
	return sr, err
}

// Create inserts a request in "Waiting for Payment" together with its
// Unpaid invoice in one transaction.  The car must belong to the
// customer; otherwise ErrForbidden is returned and nothing is written.
// Billing details on the invoice are copied from the customer account.
func (r *RequestRepo) Create(ctx context.Context, sr model.ServiceRequest, billing model.User) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var ownerID uint64
	err = tx.QueryRowContext(ctx,
		"SELECT owner_id FROM cars WHERE id=? LIMIT 1", sr.CarID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return 0, ErrCarNotFound
	}
	if err != nil {
		return 0, err
	}
	if ownerID != sr.CustomerID {
		return 0, ErrForbidden
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO service_requests
		 (customer_id, car_id, job_type, description, pickup_location, dropoff_location, status)
		 VALUES (?,?,?,?,?,?,?)`,
		sr.CustomerID, sr.CarID, sr.JobType, sr.Description,
		sr.PickupLocation, sr.DropoffLocation, string(workflow.StatusWaitingForPayment))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO invoices
		 (service_request_id, first_name, last_name, address, email, phone, payment_status)
		 VALUES (?,?,?,?,?,?,?)`,
		id, billing.FirstName, billing.LastName, billing.Address,
		billing.Email, billing.Phone, model.PaymentStatusUnpaid); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByID fetches one request without locking.
func (r *RequestRepo) GetByID(ctx context.Context, id uint64) (model.ServiceRequest, error) {
	sr, err := scanRequest(r.DB.QueryRowContext(ctx,
		"SELECT "+requestColumns+" FROM service_requests WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return sr, ErrRequestNotFound
	}
	return sr, err
}

// StateTx loads the workflow snapshot of a request with a row lock
// held until the surrounding transaction ends.  The assignee's role is
// resolved through a join so the transition authority can check the
// self-assignment rule without a second round trip.
func (r *RequestRepo) StateTx(ctx context.Context, tx *sql.Tx, id uint64) (*workflow.RequestState, error) {
	var (
		st       workflow.RequestState
		status   string
		assigned sql.NullInt64
		role     sql.NullString
		dealer   sql.NullInt64
		lat, lng sql.NullFloat64
	)
	err := tx.QueryRowContext(ctx,
		`SELECT sr.id, sr.customer_id, sr.status, sr.assigned_to, u.role, sr.assigned_dealer,
		        sr.share_location, sr.concierge_latitude, sr.concierge_longitude
		 FROM service_requests sr
		 LEFT JOIN users u ON u.id = sr.assigned_to
		 WHERE sr.id=? FOR UPDATE`, id).
		Scan(&st.ID, &st.CustomerID, &status, &assigned, &role, &dealer,
			&st.ShareLocation, &lat, &lng)
	if err == sql.ErrNoRows {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	st.Status = workflow.Status(status)
	if assigned.Valid {
		v := uint64(assigned.Int64)
		st.AssignedTo = &v
	}
	if role.Valid {
		st.AssignedToRole = workflow.Role(role.String)
	}
	if dealer.Valid {
		v := uint64(dealer.Int64)
		st.AssignedDealer = &v
	}
	if lat.Valid {
		v := lat.Float64
		st.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		st.Longitude = &v
	}
	return &st, nil
}

// RequestUpdate is the single-row write of one edit submission: the
// committed transition outcome plus whichever scalar fields the actor's
// policy allowed.  Nil pointers leave the column untouched.
type RequestUpdate struct {
	Result          *workflow.TransitionResult
	JobType         *string
	Description     *string
	PickupLocation  *string
	DropoffLocation *string
}

// ApplyTx writes a RequestUpdate against the row locked by StateTx.
// Every workflow-owned column is written from the result so no stale
// value can survive a transition; last_updated is bumped.
func (r *RequestRepo) ApplyTx(ctx context.Context, tx *sql.Tx, id uint64, up RequestUpdate) error {
	set := []string{
		"status=?", "assigned_to=?", "assigned_dealer=?",
		"share_location=?", "concierge_latitude=?", "concierge_longitude=?",
		"last_updated=NOW()",
	}
	args := []any{
		string(up.Result.Status),
		nullableU64(up.Result.AssignedTo),
		nullableU64(up.Result.AssignedDealer),
		up.Result.ShareLocation,
		nullableF64(up.Result.Latitude),
		nullableF64(up.Result.Longitude),
	}
	if up.JobType != nil {
		set = append(set, "job_type=?")
		args = append(args, *up.JobType)
	}
	if up.Description != nil {
		set = append(set, "description=?")
		args = append(args, *up.Description)
	}
	if up.PickupLocation != nil {
		set = append(set, "pickup_location=?")
		args = append(args, *up.PickupLocation)
	}
	if up.DropoffLocation != nil {
		set = append(set, "dropoff_location=?")
		args = append(args, *up.DropoffLocation)
	}
	args = append(args, id)
	_, err := tx.ExecContext(ctx,
		"UPDATE service_requests SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	return err
}

// UpdateLocation commits one concierge position ping.  The gate
// conditions are revalidated under the row lock so a ping racing a
// transition out of a trackable status loses cleanly.
func (r *RequestRepo) UpdateLocation(ctx context.Context, id uint64, actor workflow.Actor, c workflow.Coordinates) error {
	if !c.Valid() {
		return workflow.ErrLocationUpdateDenied
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	st, err := r.StateTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := workflow.CanUpdateLocation(st, actor); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE service_requests
		 SET concierge_latitude=?, concierge_longitude=?, last_updated=NOW()
		 WHERE id=?`, c.Lat, c.Lng, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByCustomer returns a customer's requests, newest first, with an
// optional exact status filter.
func (r *RequestRepo) ListByCustomer(ctx context.Context, customerID uint64, status string) ([]model.ServiceRequest, error) {
	q := "SELECT " + requestColumns + " FROM service_requests WHERE customer_id=?"
	args := []any{customerID}
	if status != "" {
		q += " AND status=?"
		args = append(args, status)
	}
	return r.list(ctx, q+" ORDER BY requested_at DESC", args...)
}

// ListAll returns every request, newest first, with an optional exact
// status filter.  Backs the staff dashboard.
func (r *RequestRepo) ListAll(ctx context.Context, status string) ([]model.ServiceRequest, error) {
	q := "SELECT " + requestColumns + " FROM service_requests"
	args := []any{}
	if status != "" {
		q += " WHERE status=?"
		args = append(args, status)
	}
	return r.list(ctx, q+" ORDER BY requested_at DESC", args...)
}

func (r *RequestRepo) list(ctx context.Context, query string, args ...any) ([]model.ServiceRequest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ServiceRequest, 0)
	for rows.Next() {
		sr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

// Delete removes a customer's own request together with its invoice.
func (r *RequestRepo) Delete(ctx context.Context, id, customerID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var owner uint64
	err = tx.QueryRowContext(ctx,
		"SELECT customer_id FROM service_requests WHERE id=? FOR UPDATE", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	if owner != customerID {
		return ErrForbidden
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM invoices WHERE service_request_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM repair_notes WHERE service_request_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM service_requests WHERE id=?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func nullableU64(p *uint64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
