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

// InvoiceHandler serves the owner's billing endpoints.  Marking an
// invoice Paid while its request still waits for payment advances the
// request to Pending inside the repository transaction.
type InvoiceHandler struct {
	Log      *logrus.Logger
	Invoices *repository.InvoiceRepo
	Requests *repository.RequestRepo
	Cars     *repository.CarRepo
}

func NewInvoiceHandler(log *logrus.Logger, inv *repository.InvoiceRepo, rq *repository.RequestRepo, cars *repository.CarRepo) *InvoiceHandler {
	if inv == nil || rq == nil || cars == nil {
		panic("nil repository passed to NewInvoiceHandler")
	}
	return &InvoiceHandler{Log: log, Invoices: inv, Requests: rq, Cars: cars}
}

type invoiceUpdateReq struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Address       string `json:"address"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Price         string `json:"price"`
	Currency      string `json:"currency"`
	PaymentStatus string `json:"payment_status"`
}

type invoiceResp struct {
	ID               uint64     `json:"id"`
	ServiceRequestID *uint64    `json:"service_request_id,omitempty"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Address          string     `json:"address"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	InvoiceDate      time.Time  `json:"invoice_date"`
	Price            string     `json:"price"`
	Currency         string     `json:"currency"`
	PaymentStatus    string     `json:"payment_status"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

func toInvoiceResp(inv model.Invoice) invoiceResp {
	return invoiceResp{
		ID:               inv.ID,
		ServiceRequestID: inv.ServiceRequestID,
		FirstName:        inv.FirstName,
		LastName:         inv.LastName,
		Address:          inv.Address,
		Email:            inv.Email,
		Phone:            inv.Phone,
		InvoiceDate:      inv.InvoiceDate,
		Price:            inv.Price,
		Currency:         inv.Currency,
		PaymentStatus:    inv.PaymentStatus,
		UpdatedAt:        inv.UpdatedAt,
	}
}

// List handles GET /v1/admin/invoices.
func (h *InvoiceHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	invoices, err := h.Invoices.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]invoiceResp, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResp(inv))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/admin/invoices/:id.
func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	inv, err := h.Invoices.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrInvoiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toInvoiceResp(inv))
}

// Update handles PUT /v1/admin/invoices/:id.  When the update marks the
// invoice Paid and the billed request was still waiting for payment,
// the repository advances the request and a status event is published.
func (h *InvoiceHandler) Update(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}
	var req invoiceUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.PaymentStatus = strings.TrimSpace(req.PaymentStatus)
	if req.PaymentStatus != model.PaymentStatusUnpaid && req.PaymentStatus != model.PaymentStatusPaid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_status must be Unpaid or Paid"})
	}
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency != "" && !model.ValidCurrency(req.Currency) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown currency", "choices": model.Currencies})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	advanced, err := h.Invoices.Update(ctx, id, model.Invoice{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Address:       strings.TrimSpace(req.Address),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         strings.TrimSpace(req.Phone),
		Price:         strings.TrimSpace(req.Price),
		Currency:      req.Currency,
		PaymentStatus: req.PaymentStatus,
	})
	if err != nil {
		if err == repository.ErrInvoiceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invoice not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if advanced != nil {
		h.publishPaymentAdvance(*advanced, actor)
	}

	inv, err := h.Invoices.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load invoice failed"})
	}
	out := echo.Map{"invoice": toInvoiceResp(inv)}
	if advanced != nil {
		out["request_advanced"] = *advanced
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InvoiceHandler) publishPaymentAdvance(requestID uint64, actor workflow.Actor) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sr, err := h.Requests.GetByID(ctx, requestID)
	if err != nil {
		h.Log.WithError(err).Warn("load request for payment event failed")
		return
	}
	plate := ""
	if car, err := h.Cars.GetByID(ctx, sr.CarID); err == nil {
		plate = car.LicensePlate
	}
	_ = service.PublishStatusChanged(ctx, h.Log, queue.RequestStatusChangedEvent{
		RequestID:    sr.ID,
		CustomerID:   sr.CustomerID,
		JobType:      sr.JobType,
		LicensePlate: plate,
		FromStatus:   string(workflow.StatusWaitingForPayment),
		ToStatus:     string(workflow.StatusPending),
		ActorID:      actor.ID,
		ActorRole:    string(actor.Role),
		AssignedTo:   sr.AssignedTo,
		ChangedAt:    time.Now().UTC().Format(time.RFC3339),
	})
}
