package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/car-service-concierge/internal/model"
	"github.com/iliyamo/car-service-concierge/internal/utils"
)

// UserRepo provides persistence for application accounts. Login is by
// username (a license plate for customers, compared case-insensitively)
// or email.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrUsernameExists = errors.New("username already exists")
)

const userColumns = "id, username, email, password_hash, role, first_name, last_name, phone, address, is_active, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.FirstName, &u.LastName, &u.Phone, &u.Address, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID. The password is hashed
// with bcrypt at the given cost; the username is stored as provided
// (callers normalize plates before calling).
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) (uint64, error) {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role, first_name, last_name, phone, address)
		 VALUES (?,?,?,?,?,?,?,?)`,
		u.Username, strings.ToLower(strings.TrimSpace(u.Email)), hash, u.Role,
		u.FirstName, u.LastName, u.Phone, u.Address)
	if err != nil {
		low := strings.ToLower(err.Error())
		if strings.Contains(low, "1062") {
			if strings.Contains(low, "email") {
				return 0, ErrEmailExists
			}
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByLogin fetches a user by username (case-insensitive) or email.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	login = strings.TrimSpace(login)
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE UPPER(username)=UPPER(?) OR email=LOWER(?) LIMIT 1",
		login, login))
	if err == sql.ErrNoRows {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return u, ErrUserNotFound
	}
	return u, err
}

// ListByRole returns active users with the given role, ordered by
// name. Used for the assignee picker and the owner's staff pages.
func (r *UserRepo) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role=? AND is_active=1 ORDER BY first_name, last_name",
		role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
			&u.FirstName, &u.LastName, &u.Phone, &u.Address, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateProfile updates the editable account fields of a user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, firstName, lastName, email, phone, address string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, email=?, phone=?, address=? WHERE id=?",
		firstName, lastName, strings.ToLower(strings.TrimSpace(email)), phone, address, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the user does not exist or nothing changed; re-check
		// existence so callers get a clean not-found.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Deactivate soft-deletes an account so historic requests keep their
// references. Requests currently assigned to the user are unassigned
// first (with sharing stopped), matching the terminal-state rules.
func (r *UserRepo) Deactivate(ctx context.Context, id uint64) error {
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
	if _, err := tx.ExecContext(ctx,
		`UPDATE service_requests
		 SET assigned_to=NULL, share_location=0, concierge_latitude=NULL, concierge_longitude=NULL, last_updated=NOW()
		 WHERE assigned_to=?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "UPDATE users SET is_active=0 WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
