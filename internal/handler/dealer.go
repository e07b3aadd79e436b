package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-service-concierge/internal/model"
	"github.com/iliyamo/car-service-concierge/internal/repository"
	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// DealerHandler serves the dealer organisation endpoints: a public,
// cached directory plus owner-only CRUD.
type DealerHandler struct {
	Dealers *repository.DealerRepo
	Users   *repository.UserRepo
}

func NewDealerHandler(d *repository.DealerRepo, u *repository.UserRepo) *DealerHandler {
	if d == nil || u == nil {
		panic("nil repository passed to NewDealerHandler")
	}
	return &DealerHandler{Dealers: d, Users: u}
}

type dealerReq struct {
	UserID       *uint64 `json:"user_id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	JobSpecialty string  `json:"job_specialty"`
}

type dealerResp struct {
	ID           uint64  `json:"id"`
	UserID       *uint64 `json:"user_id,omitempty"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	JobSpecialty string  `json:"job_specialty"`
}

func toDealerResp(d model.Dealer) dealerResp {
	return dealerResp{ID: d.ID, UserID: d.UserID, Name: d.Name, Phone: d.Phone, Address: d.Address, JobSpecialty: d.JobSpecialty}
}

// publicDealer hides the linked account id from guests.
type publicDealer struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	JobSpecialty string `json:"job_specialty"`
}

// Directory handles GET /v1/dealers, the public dealer directory.  It
// is registered behind the Redis response cache.
func (h *DealerHandler) Directory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dealers, err := h.Dealers.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]publicDealer, 0, len(dealers))
	for _, d := range dealers {
		out = append(out, publicDealer{ID: d.ID, Name: d.Name, Phone: d.Phone, Address: d.Address, JobSpecialty: d.JobSpecialty})
	}
	return c.JSON(http.StatusOK, out)
}

// List handles GET /v1/admin/dealers (owner).
func (h *DealerHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dealers, err := h.Dealers.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]dealerResp, 0, len(dealers))
	for _, d := range dealers {
		out = append(out, toDealerResp(d))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/admin/dealers/:id (owner).
func (h *DealerHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dealer id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Dealers.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrDealerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dealer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toDealerResp(d))
}

// Create handles POST /v1/admin/dealers (owner).  A linked user, when
// given, must exist and carry the dealer role.
func (h *DealerHandler) Create(c echo.Context) error {
	var req dealerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.checkLinkedUser(ctx, req.UserID); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	id, err := h.Dealers.Create(ctx, model.Dealer{
		UserID:       req.UserID,
		Name:         req.Name,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		JobSpecialty: strings.TrimSpace(req.JobSpecialty),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create dealer failed"})
	}
	d, err := h.Dealers.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load dealer failed"})
	}
	return c.JSON(http.StatusCreated, toDealerResp(d))
}

// Update handles PUT /v1/admin/dealers/:id (owner).
func (h *DealerHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dealer id"})
	}
	var req dealerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.checkLinkedUser(ctx, req.UserID); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	if err := h.Dealers.Update(ctx, id, model.Dealer{
		UserID:       req.UserID,
		Name:         req.Name,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		JobSpecialty: strings.TrimSpace(req.JobSpecialty),
	}); err != nil {
		if err == repository.ErrDealerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dealer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	d, err := h.Dealers.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load dealer failed"})
	}
	return c.JSON(http.StatusOK, toDealerResp(d))
}

// Delete handles DELETE /v1/admin/dealers/:id (owner).
func (h *DealerHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid dealer id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Dealers.Delete(ctx, id); err != nil {
		if err == repository.ErrDealerNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dealer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DealerHandler) checkLinkedUser(ctx context.Context, userID *uint64) error {
	if userID == nil {
		return nil
	}
	u, err := h.Users.GetByID(ctx, *userID)
	if err != nil {
		return errors.New("linked user not found")
	}
	if u.Role != string(workflow.RoleDealer) {
		return errors.New("linked user must have the dealer role")
	}
	return nil
}
