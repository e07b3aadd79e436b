package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/car-service-concierge/internal/model"
)

// NoteRepo provides persistence for dealer repair notes.
type NoteRepo struct{ DB *sql.DB }

func NewNoteRepo(db *sql.DB) *NoteRepo { return &NoteRepo{DB: db} }

// Create appends a repair note to a request and returns its ID.  The
// request must exist; the FK failure surfaces as ErrRequestNotFound.
func (r *NoteRepo) Create(ctx context.Context, requestID, mechanicID uint64, note string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO repair_notes (service_request_id, mechanic_id, note) VALUES (?,?,?)",
		requestID, mechanicID, note)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByRequest returns a request's notes, oldest first.
func (r *NoteRepo) ListByRequest(ctx context.Context, requestID uint64) ([]model.RepairNote, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, service_request_id, mechanic_id, note, created_at
		 FROM repair_notes WHERE service_request_id=? ORDER BY created_at, id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	notes := make([]model.RepairNote, 0)
	for rows.Next() {
		var (
			n        model.RepairNote
			mechanic sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.ServiceRequestID, &mechanic, &n.Note, &n.CreatedAt); err != nil {
			return nil, err
		}
		if mechanic.Valid {
			v := uint64(mechanic.Int64)
			n.MechanicID = &v
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
