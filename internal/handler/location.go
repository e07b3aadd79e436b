package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-service-concierge/internal/repository"
	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// LocationHandler serves the polled location side channel: the assigned
// concierge pings positions in, and the customer (or staff) polls them
// back.  Both directions re-check the workflow gates on every call, so
// a closed sharing session answers "not available" instead of serving
// stale coordinates.
type LocationHandler struct {
	Requests *repository.RequestRepo
}

func NewLocationHandler(rq *repository.RequestRepo) *LocationHandler {
	if rq == nil {
		panic("nil repository passed to NewLocationHandler")
	}
	return &LocationHandler{Requests: rq}
}

type locationPingReq struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Update handles POST /v1/requests/:id/location/update.  The route is
// rate limited; the repository revalidates the gates under the row
// lock.
func (h *LocationHandler) Update(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	var req locationPingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Latitude == nil || req.Longitude == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "latitude and longitude are required"})
	}
	coords := workflow.Coordinates{Lat: *req.Latitude, Lng: *req.Longitude}
	if !coords.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "coordinates out of range"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Requests.UpdateLocation(ctx, id, actor, coords); err != nil {
		if err == repository.ErrRequestNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return workflowError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Get handles GET /v1/requests/:id/location.  Customers see their own
// requests only; availability requires an active sharing session in a
// trackable status.
func (h *LocationHandler) Get(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRequestNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	st := snapshot(sr)
	if !workflow.CanViewLocation(st, actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if !workflow.LocationAvailable(st) {
		return c.JSON(http.StatusNotFound, echo.Map{
			"available": false,
			"error":     "location not available",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"available": true,
		"latitude":  *st.Latitude,
		"longitude": *st.Longitude,
		"status":    string(st.Status),
		"as_of":     sr.LastUpdated,
	})
}
