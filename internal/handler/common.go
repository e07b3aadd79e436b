package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64.  JWTAuth stores it as uint64 already; the other cases cover
// tests and older token formats.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getActor builds the workflow actor for the authenticated principal.
func getActor(c echo.Context) (workflow.Actor, error) {
	id, err := getUserID(c)
	if err != nil {
		return workflow.Actor{}, err
	}
	s, _ := c.Get("role").(string)
	role, ok := workflow.ParseRole(s)
	if !ok {
		return workflow.Actor{}, errors.New("invalid role in context")
	}
	return workflow.Actor{ID: id, Role: role}, nil
}

// pathID parses the :id (or another named) path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// workflowError maps workflow errors onto HTTP responses.  Transition
// rejections are 422 with the offending statuses spelled out; standing
// failures are 403.
func workflowError(c echo.Context, err error) error {
	var itErr *workflow.InvalidTransitionError
	switch {
	case errors.Is(err, workflow.ErrPermissionDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, workflow.ErrLocationUpdateDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "location update not allowed"})
	case errors.Is(err, workflow.ErrLocationNotAvailable):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "location not available"})
	case errors.Is(err, workflow.ErrInvalidAssignment):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "assignee must be a concierge or dealer", "field": string(workflow.FieldAssignedTo),
		})
	case errors.Is(err, workflow.ErrDescriptionRequired):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "description is required for job type Other", "field": string(workflow.FieldDescription),
		})
	case errors.As(err, &itErr):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": itErr.Error(), "field": string(workflow.FieldStatus),
			"from": string(itErr.From), "to": string(itErr.To),
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
