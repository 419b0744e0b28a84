package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/purchasing"
)

// PurchasingHandler maneja las órdenes de compra a proveedor (ADMIN/MANAGER).
type PurchasingHandler struct {
	uc *purchasing.PurchasingUseCase
}

// NewPurchasingHandler construye el handler.
func NewPurchasingHandler(uc *purchasing.PurchasingUseCase) *PurchasingHandler {
	return &PurchasingHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra a proveedor
// @Tags         purchasing
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseOrderRequest  true  "supplier_id, items"
// @Success      201  {object}  dto.PurchaseOrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/purchasing [post]
func (h *PurchasingHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	po, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromPurchaseOrder(po))
}

// List godoc
// @Summary      Órdenes de compra
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PurchaseOrderResponse
// @Router       /api/purchasing [get]
func (h *PurchasingHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválido"})
	}
	list, err := h.uc.List(c.Context(), page)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PurchaseOrderResponse, 0, len(list))
	for _, po := range list {
		out = append(out, dto.FromPurchaseOrder(po))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de una orden de compra
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden de compra"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchasing/{id} [get]
func (h *PurchasingHandler) GetByID(c *fiber.Ctx) error {
	po, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromPurchaseOrder(po))
}

// Receive godoc
// @Summary      Recepcionar la orden de compra (entra stock)
// @Tags         purchasing
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden de compra"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchasing/{id}/receive [post]
func (h *PurchasingHandler) Receive(c *fiber.Ctx) error {
	po, err := h.uc.Receive(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromPurchaseOrder(po))
}
