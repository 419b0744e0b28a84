package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pedidos-api/internal/application/delivery"
	"github.com/tu-usuario/pedidos-api/internal/application/dto"
)

// DeliveryHandler maneja las peticiones HTTP del flujo de domicilios.
type DeliveryHandler struct {
	uc *delivery.DeliveryUseCase
}

// NewDeliveryHandler construye el handler.
func NewDeliveryHandler(uc *delivery.DeliveryUseCase) *DeliveryHandler {
	return &DeliveryHandler{uc: uc}
}

// Assign godoc
// @Summary      Asignar un repartidor a una orden (staff)
// @Description  Una orden solo puede tener un domicilio: el segundo intento recibe 409.
// @Tags         delivery
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignDeliveryRequest  true  "order_id, delivery_person_id"
// @Success      201  {object}  dto.DeliveryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/delivery/assign [post]
func (h *DeliveryHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	d, err := h.uc.Assign(c.Context(), in.OrderID, in.DeliveryPersonID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromDelivery(d))
}

// ListActive godoc
// @Summary      Domicilios activos del repartidor autenticado
// @Tags         delivery
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.DeliveryResponse
// @Router       /api/delivery/active [get]
func (h *DeliveryHandler) ListActive(c *fiber.Ctx) error {
	list, err := h.uc.ListActive(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.DeliveryResponse, 0, len(list))
	for _, d := range list {
		out = append(out, dto.FromDelivery(d))
	}
	return c.JSON(out)
}

// UpdateLocation godoc
// @Summary      Ping de posición del repartidor
// @Tags         delivery
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del domicilio"
// @Param        body  body  dto.UpdateLocationRequest  true  "lat, lng"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/delivery/{id}/location [patch]
func (h *DeliveryHandler) UpdateLocation(c *fiber.Ctx) error {
	var in dto.UpdateLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.uc.UpdateLocation(c.Context(), c.Params("id"), in.Latitude, in.Longitude, GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "posición actualizada"})
}

// Locations godoc
// @Summary      Historial de posiciones de un domicilio
// @Description  Los repartidores solo ven sus propios domicilios; el staff, cualquiera.
// @Tags         delivery
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del domicilio"
// @Param        limit  query  int     false  "máximo de pings (default 100)"
// @Success      200  {array}   dto.DeliveryLocationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/delivery/{id}/locations [get]
func (h *DeliveryHandler) Locations(c *fiber.Ctx) error {
	list, err := h.uc.Locations(c.Context(), c.Params("id"), GetUserID(c), GetRole(c), c.QueryInt("limit"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.DeliveryLocationResponse, 0, len(list))
	for _, l := range list {
		out = append(out, dto.FromDeliveryLocation(l))
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Avanzar el estado del domicilio (repartidor asignado)
// @Tags         delivery
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del domicilio"
// @Param        body  body  dto.UpdateDeliveryStatusRequest  true  "status, failure_reason (FAILED)"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/delivery/{id}/status [patch]
func (h *DeliveryHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateDeliveryStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	d, err := h.uc.UpdateStatus(c.Context(), c.Params("id"), in.Status, GetUserID(c), in.FailureReason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromDelivery(d))
}

// Rate godoc
// @Summary      Calificar una entrega completada (cliente dueño)
// @Tags         delivery
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del domicilio"
// @Param        body  body  dto.RateDeliveryRequest  true  "rating 1..5, comment?"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/delivery/{id}/rate [post]
func (h *DeliveryHandler) Rate(c *fiber.Ctx) error {
	var in dto.RateDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	d, err := h.uc.Rate(c.Context(), c.Params("id"), in.Rating, in.Comment, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromDelivery(d))
}
