package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/orders"
)

// OrderHandler maneja las peticiones HTTP del ciclo de vida de la orden.
type OrderHandler struct {
	uc *orders.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "fulfillment_type, items, delivery_address_id (DELIVERY), coupon_code?"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	o, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOrder(o))
}

// ListMine godoc
// @Summary      Mis órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máx 100"
// @Param        offset  query  int  false  "offset"
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders/my-orders [get]
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválido"})
	}
	list, err := h.uc.ListMine(c.Context(), GetUserID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, dto.FromOrder(o))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de la orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.uc.GetByID(c.Context(), c.Params("id"), GetUserID(c), GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}

// Tracking godoc
// @Summary      Tracking de la orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.TrackingResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/tracking [get]
func (h *OrderHandler) Tracking(c *fiber.Ctx) error {
	t, err := h.uc.Tracking(c.Context(), c.Params("id"), GetUserID(c), GetRole(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}

// UpdateStatus godoc
// @Summary      Avanzar el estado de la orden (staff)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "status, notes?"
// @Success      200  {object}  dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	o, err := h.uc.UpdateStatus(c.Context(), c.Params("id"), in.Status, GetUserID(c), in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}

// Cancel godoc
// @Summary      Cancelar la orden (cliente dueño)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.CancelOrderRequest  false  "reason?"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelOrderRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	o, err := h.uc.Cancel(c.Context(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromOrder(o))
}
