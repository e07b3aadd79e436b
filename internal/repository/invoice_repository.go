package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/car-service-concierge/internal/model"
	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// InvoiceRepo provides persistence for invoices.
type InvoiceRepo struct{ DB *sql.DB }

func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{DB: db} }

const invoiceColumns = `id, service_request_id, first_name, last_name, address, email, phone,
 invoice_date, price, currency, payment_status, updated_at`

func scanInvoice(sc interface{ Scan(...any) error }) (model.Invoice, error) {
	var (
		inv   model.Invoice
		reqID sql.NullInt64
		upd   sql.NullTime
	)
	err := sc.Scan(&inv.ID, &reqID, &inv.FirstName, &inv.LastName, &inv.Address,
		&inv.Email, &inv.Phone, &inv.InvoiceDate, &inv.Price, &inv.Currency,
		&inv.PaymentStatus, &upd)
	if reqID.Valid {
		v := uint64(reqID.Int64)
		inv.ServiceRequestID = &v
	}
	if upd.Valid {
		t := upd.Time
		inv.UpdatedAt = &t
	}
	return inv, err
}

// GetByID fetches one invoice.
func (r *InvoiceRepo) GetByID(ctx context.Context, id uint64) (model.Invoice, error) {
	inv, err := scanInvoice(r.DB.QueryRowContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return inv, ErrInvoiceNotFound
	}
	return inv, err
}

// GetByRequest fetches the invoice billing a request.
func (r *InvoiceRepo) GetByRequest(ctx context.Context, requestID uint64) (model.Invoice, error) {
	inv, err := scanInvoice(r.DB.QueryRowContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE service_request_id=? LIMIT 1", requestID))
	if err == sql.ErrNoRows {
		return inv, ErrInvoiceNotFound
	}
	return inv, err
}

// List returns all invoices, newest first.
func (r *InvoiceRepo) List(ctx context.Context) ([]model.Invoice, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices ORDER BY invoice_date DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Update edits an invoice's billing fields, price, currency and payment
// status.  When the payment status flips to Paid and the billed request
// is still in "Waiting for Payment", the request advances to "Pending"
// in the same transaction; the advanced request id is returned so the
// caller can publish a status event after commit.
func (r *InvoiceRepo) Update(ctx context.Context, id uint64, inv model.Invoice) (*uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		prevStatus string
		reqID      sql.NullInt64
	)
	err = tx.QueryRowContext(ctx,
		"SELECT payment_status, service_request_id FROM invoices WHERE id=? FOR UPDATE",
		id).Scan(&prevStatus, &reqID)
	if err == sql.ErrNoRows {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE invoices
		 SET first_name=?, last_name=?, address=?, email=?, phone=?,
		     price=?, currency=?, payment_status=?, updated_at=NOW()
		 WHERE id=?`,
		inv.FirstName, inv.LastName, inv.Address, inv.Email, inv.Phone,
		inv.Price, inv.Currency, inv.PaymentStatus, id); err != nil {
		return nil, err
	}

	var advanced *uint64
	if inv.PaymentStatus == model.PaymentStatusPaid &&
		prevStatus != model.PaymentStatusPaid && reqID.Valid {
		res, err := tx.ExecContext(ctx,
			"UPDATE service_requests SET status=?, last_updated=NOW() WHERE id=? AND status=?",
			string(workflow.StatusPending), reqID.Int64, string(workflow.StatusWaitingForPayment))
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			v := uint64(reqID.Int64)
			advanced = &v
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return advanced, nil
}
