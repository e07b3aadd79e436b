package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/car-service-concierge/internal/model"
	"github.com/iliyamo/car-service-concierge/internal/queue"
	"github.com/iliyamo/car-service-concierge/internal/repository"
	"github.com/iliyamo/car-service-concierge/internal/service"
	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// RequestHandler serves the service-request endpoints for customers and
// staff.  Both edit routes funnel into the same flow: lock the row,
// compute the actor's field policy, run the transition authority, and
// commit the outcome in one UPDATE.  All authorization beyond the role
// group happens inside that flow, so a customer hitting the staff route
// (or vice versa) is still decided correctly.
type RequestHandler struct {
	Log      *logrus.Logger
	Requests *repository.RequestRepo
	Users    *repository.UserRepo
	Cars     *repository.CarRepo
	Dealers  *repository.DealerRepo
	Invoices *repository.InvoiceRepo
}

func NewRequestHandler(log *logrus.Logger, rq *repository.RequestRepo, u *repository.UserRepo, cars *repository.CarRepo, d *repository.DealerRepo, inv *repository.InvoiceRepo) *RequestHandler {
	if rq == nil || u == nil || cars == nil || d == nil || inv == nil {
		panic("nil repository passed to NewRequestHandler")
	}
	return &RequestHandler{Log: log, Requests: rq, Users: u, Cars: cars, Dealers: d, Invoices: inv}
}

// ----- DTOs -----

type createRequestReq struct {
	CarID           uint64 `json:"car_id"`
	JobType         string `json:"job_type"`
	Description     string `json:"description"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
}

// editRequestReq carries one edit submission.  Pointers distinguish
// "absent" from "set to zero value"; fields the actor's policy marks
// read-only are ignored rather than rejected, mirroring disabled form
// inputs.
type editRequestReq struct {
	Status          *string  `json:"status"`
	AssignedTo      *uint64  `json:"assigned_to"`
	ClearAssignment bool     `json:"clear_assignment"`
	AssignedDealer  *uint64  `json:"assigned_dealer"`
	JobType         *string  `json:"job_type"`
	Description     *string  `json:"description"`
	PickupLocation  *string  `json:"pickup_location"`
	DropoffLocation *string  `json:"dropoff_location"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
}

type requestResp struct {
	ID              uint64    `json:"id"`
	CustomerID      uint64    `json:"customer_id"`
	CarID           uint64    `json:"car_id"`
	JobType         string    `json:"job_type"`
	Description     string    `json:"description"`
	PickupLocation  string    `json:"pickup_location"`
	DropoffLocation string    `json:"dropoff_location"`
	Status          string    `json:"status"`
	AssignedTo      *uint64   `json:"assigned_to"`
	AssignedDealer  *uint64   `json:"assigned_dealer"`
	ShareLocation   bool      `json:"share_location"`
	RequestedAt     time.Time `json:"requested_at"`
	LastUpdated     time.Time `json:"last_updated"`
}

func toRequestResp(sr model.ServiceRequest) requestResp {
	return requestResp{
		ID:              sr.ID,
		CustomerID:      sr.CustomerID,
		CarID:           sr.CarID,
		JobType:         sr.JobType,
		Description:     sr.Description,
		PickupLocation:  sr.PickupLocation,
		DropoffLocation: sr.DropoffLocation,
		Status:          sr.Status,
		AssignedTo:      sr.AssignedTo,
		AssignedDealer:  sr.AssignedDealer,
		ShareLocation:   sr.ShareLocation,
		RequestedAt:     sr.RequestedAt,
		LastUpdated:     sr.LastUpdated,
	}
}

// Create handles POST /v1/requests.  The request starts in "Waiting for
// Payment" with an Unpaid invoice created in the same transaction.
func (h *RequestHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.JobType = strings.TrimSpace(req.JobType)
	req.Description = strings.TrimSpace(req.Description)
	if req.CarID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "car_id is required"})
	}
	if !model.ValidJobType(req.JobType) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error": "unknown job type", "field": string(workflow.FieldJobType), "choices": model.JobTypes,
		})
	}
	if err := workflow.ValidateDescription(req.JobType, req.Description, true); err != nil {
		return workflowError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	id, err := h.Requests.Create(ctx, model.ServiceRequest{
		CustomerID:      uid,
		CarID:           req.CarID,
		JobType:         req.JobType,
		Description:     req.Description,
		PickupLocation:  strings.TrimSpace(req.PickupLocation),
		DropoffLocation: strings.TrimSpace(req.DropoffLocation),
	}, u)
	if err != nil {
		switch err {
		case repository.ErrCarNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "car belongs to another customer"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
	}

	sr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load request failed"})
	}
	return c.JSON(http.StatusCreated, toRequestResp(sr))
}

// ListMine handles GET /v1/my-requests with an optional ?status= filter.
func (h *RequestHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	status, ok := statusFilter(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Requests.ListByCustomer(ctx, uid, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]requestResp, 0, len(list))
	for _, sr := range list {
		out = append(out, toRequestResp(sr))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/requests/:id and GET /v1/staff/requests/:id.
// View standing is decided by the workflow policy, so staff see every
// request and customers only their own.
func (h *RequestHandler) Get(c echo.Context) error {
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
	if !workflow.CanView(st, actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	policy := workflow.EditableFields(st, actor)
	editable := make([]string, 0, len(policy.Editable))
	for f, ok := range policy.Editable {
		if ok {
			editable = append(editable, string(f))
		}
	}
	choices := make([]string, 0, len(policy.StatusChoices))
	for _, s := range policy.StatusChoices {
		choices = append(choices, string(s))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"request":         toRequestResp(sr),
		"editable_fields": editable,
		"status_choices":  choices,
	})
}

// StaffList handles GET /v1/staff/requests with an optional ?status=
// filter.  It backs the concierge/dealer/owner dashboard.
func (h *RequestHandler) StaffList(c echo.Context) error {
	status, ok := statusFilter(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Requests.ListAll(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]requestResp, 0, len(list))
	for _, sr := range list {
		out = append(out, toRequestResp(sr))
	}
	return c.JSON(http.StatusOK, out)
}

// Edit handles POST /v1/requests/:id/edit and
// POST /v1/staff/requests/:id/edit.
func (h *RequestHandler) Edit(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	var req editRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "latitude and longitude must be sent together"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Current scalar values serve as defaults for the Other-description
	// rule; the workflow-owned columns are re-read under the lock below.
	current, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRequestNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	in := workflow.TransitionInput{ClearAssignment: req.ClearAssignment}
	if req.Status != nil {
		in.Status = workflow.Status(strings.TrimSpace(*req.Status))
	}
	if req.AssignedTo != nil {
		assignee, err := h.Users.GetByID(ctx, *req.AssignedTo)
		if err != nil {
			if err == repository.ErrUserNotFound {
				return workflowError(c, workflow.ErrInvalidAssignment)
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		role, _ := workflow.ParseRole(assignee.Role)
		in.AssignedTo = req.AssignedTo
		in.AssignedToRole = role
	}
	if req.AssignedDealer != nil {
		if _, err := h.Dealers.GetByID(ctx, *req.AssignedDealer); err != nil {
			if err == repository.ErrDealerNotFound {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{
					"error": "unknown dealer", "field": string(workflow.FieldAssignedDealer),
				})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		in.AssignedDealer = req.AssignedDealer
	} else if actor.Role == workflow.RoleDealer {
		// A dealer moving a request into service records their own org.
		if org, err := h.Dealers.GetByUserID(ctx, actor.ID); err == nil {
			orgID := org.ID
			in.AssignedDealer = &orgID
		}
	}
	if req.Latitude != nil && req.Longitude != nil {
		in.Location = &workflow.Coordinates{Lat: *req.Latitude, Lng: *req.Longitude}
	}

	tx, err := h.Requests.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	st, err := h.Requests.StateTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrRequestNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	policy := workflow.EditableFields(st, actor)

	res, err := workflow.ApplyTransition(st, actor, in)
	if err != nil {
		return workflowError(c, err)
	}

	// Scalar fields: apply only what the policy allows, silently
	// dropping the rest like a disabled form input would.
	up := repository.RequestUpdate{Result: res}
	jobType := current.JobType
	if req.JobType != nil && policy.Can(workflow.FieldJobType) {
		jt := strings.TrimSpace(*req.JobType)
		if !model.ValidJobType(jt) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"error": "unknown job type", "field": string(workflow.FieldJobType), "choices": model.JobTypes,
			})
		}
		up.JobType = &jt
		jobType = jt
	}
	description := current.Description
	if req.Description != nil && policy.Can(workflow.FieldDescription) {
		d := strings.TrimSpace(*req.Description)
		up.Description = &d
		description = d
	}
	if err := workflow.ValidateDescription(jobType, description, policy.Can(workflow.FieldDescription)); err != nil {
		return workflowError(c, err)
	}
	if req.PickupLocation != nil && policy.Can(workflow.FieldPickupLocation) {
		p := strings.TrimSpace(*req.PickupLocation)
		up.PickupLocation = &p
	}
	if req.DropoffLocation != nil && policy.Can(workflow.FieldDropoffLocation) {
		d := strings.TrimSpace(*req.DropoffLocation)
		up.DropoffLocation = &d
	}

	if err := h.Requests.ApplyTx(ctx, tx, id, up); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	if res.Status != st.Status {
		h.publishStatusChange(current, st.Status, res, actor)
	}

	sr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load request failed"})
	}
	out := echo.Map{"request": toRequestResp(sr)}
	if res.LocationWarning {
		out["warning"] = "delivery started without a usable location; sharing disabled"
	}
	return c.JSON(http.StatusOK, out)
}

// SetDelivery handles POST /v1/dealer/requests/:id/set-delivery, the
// dealer hand-back shortcut: In service -> Delivery with a forced
// unassign so a concierge can claim the car.
func (h *RequestHandler) SetDelivery(c echo.Context) error {
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

	current, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRequestNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	tx, err := h.Requests.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	st, err := h.Requests.StateTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrRequestNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	res, err := workflow.ApplyTransition(st, actor, workflow.TransitionInput{Status: workflow.StatusDelivery})
	if err != nil {
		return workflowError(c, err)
	}
	if err := h.Requests.ApplyTx(ctx, tx, id, repository.RequestUpdate{Result: res}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	h.publishStatusChange(current, st.Status, res, actor)

	sr, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load request failed"})
	}
	return c.JSON(http.StatusOK, toRequestResp(sr))
}

// Delete handles DELETE /v1/requests/:id (customer deletes own
// request; the invoice and notes go with it).
func (h *RequestHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Requests.Delete(ctx, id, uid); err != nil {
		switch err {
		case repository.ErrRequestNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Invoice handles GET /v1/requests/:id/invoice: the owning customer
// (or staff) views the invoice billing a request.
func (h *RequestHandler) Invoice(c echo.Context) error {
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
	if !workflow.CanView(snapshot(sr), actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	inv, err := h.Invoices.GetByRequest(ctx, id)
	if err != nil {
		if err == repository.ErrInvoiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toInvoiceResp(inv))
}

// publishStatusChange emits a request.status event.  Failures are
// logged and swallowed; the transition has already committed.
func (h *RequestHandler) publishStatusChange(current model.ServiceRequest, from workflow.Status, res *workflow.TransitionResult, actor workflow.Actor) {
	plate := ""
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if car, err := h.Cars.GetByID(ctx, current.CarID); err == nil {
		plate = car.LicensePlate
	}
	_ = service.PublishStatusChanged(ctx, h.Log, queue.RequestStatusChangedEvent{
		RequestID:    current.ID,
		CustomerID:   current.CustomerID,
		JobType:      current.JobType,
		LicensePlate: plate,
		FromStatus:   string(from),
		ToStatus:     string(res.Status),
		ActorID:      actor.ID,
		ActorRole:    string(actor.Role),
		AssignedTo:   res.AssignedTo,
		ChangedAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

// snapshot converts a loaded row into the workflow view of it.  The
// assignee role is left empty; read-side checks never need it.
func snapshot(sr model.ServiceRequest) *workflow.RequestState {
	return &workflow.RequestState{
		ID:             sr.ID,
		CustomerID:     sr.CustomerID,
		Status:         workflow.Status(sr.Status),
		AssignedTo:     sr.AssignedTo,
		AssignedDealer: sr.AssignedDealer,
		ShareLocation:  sr.ShareLocation,
		Latitude:       sr.ConciergeLatitude,
		Longitude:      sr.ConciergeLongitude,
	}
}

// statusFilter validates the optional ?status= query parameter.
func statusFilter(c echo.Context) (string, bool) {
	raw := strings.TrimSpace(c.QueryParam("status"))
	if raw == "" {
		return "", true
	}
	s, ok := workflow.ParseStatus(raw)
	if !ok {
		return "", false
	}
	return string(s), true
}
