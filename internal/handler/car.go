package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-service-concierge/internal/model"
	"github.com/iliyamo/car-service-concierge/internal/repository"
	"github.com/iliyamo/car-service-concierge/internal/utils"
)

// CarHandler serves the customer's vehicle endpoints.
type CarHandler struct {
	Cars *repository.CarRepo
}

func NewCarHandler(cars *repository.CarRepo) *CarHandler {
	if cars == nil {
		panic("nil repository passed to NewCarHandler")
	}
	return &CarHandler{Cars: cars}
}

type carReq struct {
	Model        string  `json:"model"`
	Year         *uint16 `json:"year"`
	LicensePlate string  `json:"license_plate"`
}

type carResp struct {
	ID           uint64  `json:"id"`
	Model        string  `json:"model"`
	Year         *uint16 `json:"year"`
	LicensePlate string  `json:"license_plate"`
}

func toCarResp(c model.Car) carResp {
	return carResp{ID: c.ID, Model: c.Model, Year: c.Year, LicensePlate: c.LicensePlate}
}

// ListMine handles GET /v1/my-cars.
func (h *CarHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cars, err := h.Cars.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]carResp, 0, len(cars))
	for _, car := range cars {
		out = append(out, toCarResp(car))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/cars, registering an additional vehicle.
func (h *CarHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req carReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	plate := utils.NormalizePlate(req.LicensePlate)
	if !utils.ValidPlate(plate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "license plate must match AA-123-BB"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Cars.Create(ctx, model.Car{
		OwnerID:      uid,
		Model:        strings.TrimSpace(req.Model),
		Year:         req.Year,
		LicensePlate: plate,
	})
	if err != nil {
		if err == repository.ErrPlateExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "license plate already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create car failed"})
	}
	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load car failed"})
	}
	return c.JSON(http.StatusCreated, toCarResp(car))
}

// Update handles PUT /v1/cars/:id.
func (h *CarHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}
	var req carReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	plate := utils.NormalizePlate(req.LicensePlate)
	if !utils.ValidPlate(plate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "license plate must match AA-123-BB"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cars.Update(ctx, id, uid, strings.TrimSpace(req.Model), req.Year, plate); err != nil {
		switch err {
		case repository.ErrCarNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case repository.ErrPlateExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "license plate already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load car failed"})
	}
	return c.JSON(http.StatusOK, toCarResp(car))
}

// Delete handles DELETE /v1/cars/:id.  Cars with service requests
// cannot be removed.
func (h *CarHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid car id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cars.Delete(ctx, id, uid); err != nil {
		switch err {
		case repository.ErrCarNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "car has service requests"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
