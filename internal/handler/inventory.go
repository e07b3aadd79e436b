package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/car-service-concierge/internal/model"
	"github.com/iliyamo/car-service-concierge/internal/repository"
)

// InventoryHandler serves the owner's spare-part stock endpoints.
type InventoryHandler struct {
	Items *repository.InventoryRepo
}

func NewInventoryHandler(items *repository.InventoryRepo) *InventoryHandler {
	if items == nil {
		panic("nil repository passed to NewInventoryHandler")
	}
	return &InventoryHandler{Items: items}
}

type inventoryReq struct {
	ItemNumber   string `json:"item_number"`
	ItemName     string `json:"item_name"`
	ItemQuantity uint32 `json:"item_quantity"`
	ItemPrice    string `json:"item_price"`
}

func (r *inventoryReq) normalize() {
	r.ItemNumber = strings.TrimSpace(r.ItemNumber)
	r.ItemName = strings.TrimSpace(r.ItemName)
	r.ItemPrice = strings.TrimSpace(r.ItemPrice)
}

func (r *inventoryReq) valid() bool {
	return r.ItemNumber != "" && r.ItemName != ""
}

type inventoryResp struct {
	ID           uint64 `json:"id"`
	ItemNumber   string `json:"item_number"`
	ItemName     string `json:"item_name"`
	ItemQuantity uint32 `json:"item_quantity"`
	ItemPrice    string `json:"item_price"`
}

func toInventoryResp(it model.Inventory) inventoryResp {
	return inventoryResp{ID: it.ID, ItemNumber: it.ItemNumber, ItemName: it.ItemName, ItemQuantity: it.ItemQuantity, ItemPrice: it.ItemPrice}
}

// List handles GET /v1/admin/inventory.
func (h *InventoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]inventoryResp, 0, len(items))
	for _, it := range items {
		out = append(out, toInventoryResp(it))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/admin/inventory/:id.
func (h *InventoryHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toInventoryResp(it))
}

// Create handles POST /v1/admin/inventory.
func (h *InventoryHandler) Create(c echo.Context) error {
	var req inventoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.normalize()
	if !req.valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_number and item_name are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Items.Create(ctx, model.Inventory{
		ItemNumber:   req.ItemNumber,
		ItemName:     req.ItemName,
		ItemQuantity: req.ItemQuantity,
		ItemPrice:    req.ItemPrice,
	})
	if err != nil {
		if err == repository.ErrItemNumberExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "item number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create item failed"})
	}
	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load item failed"})
	}
	return c.JSON(http.StatusCreated, toInventoryResp(it))
}

// Update handles PUT /v1/admin/inventory/:id.
func (h *InventoryHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req inventoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.normalize()
	if !req.valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_number and item_name are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Update(ctx, id, model.Inventory{
		ItemNumber:   req.ItemNumber,
		ItemName:     req.ItemName,
		ItemQuantity: req.ItemQuantity,
		ItemPrice:    req.ItemPrice,
	}); err != nil {
		switch err {
		case repository.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		case repository.ErrItemNumberExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "item number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	it, err := h.Items.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load item failed"})
	}
	return c.JSON(http.StatusOK, toInventoryResp(it))
}

// Delete handles DELETE /v1/admin/inventory/:id.
func (h *InventoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Items.Delete(ctx, id); err != nil {
		if err == repository.ErrItemNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
