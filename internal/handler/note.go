package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-service-concierge/internal/model"
	"github.com/iliyamo/car-service-concierge/internal/repository"
	"github.com/iliyamo/car-service-concierge/internal/workflow"
)

// NoteHandler serves dealer repair notes on a request.  Writing is
// dealer/owner only; any staff member with view standing can read.
type NoteHandler struct {
	Notes    *repository.NoteRepo
	Requests *repository.RequestRepo
}

func NewNoteHandler(n *repository.NoteRepo, rq *repository.RequestRepo) *NoteHandler {
	if n == nil || rq == nil {
		panic("nil repository passed to NewNoteHandler")
	}
	return &NoteHandler{Notes: n, Requests: rq}
}

type noteReq struct {
	Note string `json:"note"`
}

type noteResp struct {
	ID         uint64    `json:"id"`
	RequestID  uint64    `json:"request_id"`
	MechanicID *uint64   `json:"mechanic_id,omitempty"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

func toNoteResp(n model.RepairNote) noteResp {
	return noteResp{ID: n.ID, RequestID: n.ServiceRequestID, MechanicID: n.MechanicID, Note: n.Note, CreatedAt: n.CreatedAt}
}

// Create handles POST /v1/staff/requests/:id/notes.
func (h *NoteHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if actor.Role != workflow.RoleDealer && actor.Role != workflow.RoleOwner {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only dealers record repair notes"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	var req noteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Note = strings.TrimSpace(req.Note)
	if req.Note == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "note is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Requests.GetByID(ctx, id); err != nil {
		if err == repository.ErrRequestNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	noteID, err := h.Notes.Create(ctx, id, actor.ID, req.Note)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create note failed"})
	}
	mechanicID := actor.ID
	return c.JSON(http.StatusCreated, noteResp{
		ID: noteID, RequestID: id, MechanicID: &mechanicID, Note: req.Note, CreatedAt: time.Now().UTC(),
	})
}

// List handles GET /v1/staff/requests/:id/notes.
func (h *NoteHandler) List(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Requests.GetByID(ctx, id); err != nil {
		if err == repository.ErrRequestNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	notes, err := h.Notes.ListByRequest(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]noteResp, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResp(n))
	}
	return c.JSON(http.StatusOK, out)
}
