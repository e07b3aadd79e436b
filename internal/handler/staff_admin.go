package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-service-concierge/internal/config"
	"github.com/iliyamo/car-service-concierge/internal/model"
	"github.com/iliyamo/car-service-concierge/internal/repository"
	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// StaffAdminHandler serves the owner's account management endpoints:
// creating and maintaining concierge, dealer and owner accounts.
// Customers register themselves; staff accounts only ever come from
// here.
type StaffAdminHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewStaffAdminHandler(cfg config.Config, u *repository.UserRepo) *StaffAdminHandler {
	if u == nil {
		panic("nil repository passed to NewStaffAdminHandler")
	}
	return &StaffAdminHandler{Cfg: cfg, Users: u}
}

type staffCreateReq struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Role      string `json:"role"` // concierge | dealer | owner
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type staffUpdateReq struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type staffResp struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	IsActive  bool   `json:"is_active"`
}

func toStaffResp(u model.User) staffResp {
	return staffResp{
		ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role,
		FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone, IsActive: u.IsActive,
	}
}

// Create handles POST /v1/admin/staff.
func (h *StaffAdminHandler) Create(c echo.Context) error {
	var req staffCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role, ok := workflow.ParseRole(req.Role)
	if !ok || !role.Staff() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be concierge, dealer or owner"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, model.User{
		Username:  req.Username,
		Email:     req.Email,
		Role:      string(role),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
	}, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		switch err {
		case repository.ErrUsernameExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusCreated, toStaffResp(u))
}

// List handles GET /v1/admin/staff?role=concierge|dealer|owner.  It
// also backs the concierge assignee picker through ?role=concierge.
func (h *StaffAdminHandler) List(c echo.Context) error {
	role, ok := workflow.ParseRole(c.QueryParam("role"))
	if !ok || !role.Staff() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role query must be concierge, dealer or owner"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListByRole(ctx, string(role))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]staffResp, 0, len(users))
	for _, u := range users {
		out = append(out, toStaffResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/admin/staff/:id.
func (h *StaffAdminHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toStaffResp(u))
}

// Update handles PUT /v1/admin/staff/:id, editing profile fields.
func (h *StaffAdminHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req staffUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, id,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName),
		req.Email, strings.TrimSpace(req.Phone), strings.TrimSpace(req.Address)); err != nil {
		switch err {
		case repository.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, toStaffResp(u))
}

// Deactivate handles DELETE /v1/admin/staff/:id.  Accounts are soft
// deleted; requests currently assigned to the user are unassigned.
func (h *StaffAdminHandler) Deactivate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	self, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if id == self {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot deactivate own account"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Deactivate(ctx, id); err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
