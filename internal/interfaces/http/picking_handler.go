package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/picking"
)

// PickingHandler maneja las peticiones HTTP del flujo de picking (SELLER).
type PickingHandler struct {
	uc *picking.PickingUseCase
}

// NewPickingHandler construye el handler.
func NewPickingHandler(uc *picking.PickingUseCase) *PickingHandler {
	return &PickingHandler{uc: uc}
}

// Accept godoc
// @Summary      Aceptar (reclamar) una orden para picking
// @Description  Reclamo de un solo ganador: con dos vendedores concurrentes exactamente
//
//	uno gana; el otro recibe 409 ALREADY_CLAIMED.
//
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        orderId  path  string  true  "ID de la orden de venta"
// @Success      200  {object}  dto.PickingOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/seller/orders/{orderId}/accept [post]
func (h *PickingHandler) Accept(c *fiber.Ctx) error {
	p, err := h.uc.Accept(c.Context(), c.Params("orderId"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromPickingOrder(p))
}

// Queue godoc
// @Summary      Cola de picking del vendedor
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.PickingOrderResponse
// @Router       /api/seller/picking [get]
func (h *PickingHandler) Queue(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválido"})
	}
	list, err := h.uc.Queue(c.Context(), GetUserID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PickingOrderResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.FromPickingOrder(p))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de una orden de picking
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden de picking"
// @Success      200  {object}  dto.PickingOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/seller/picking/{id} [get]
func (h *PickingHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromPickingOrder(p))
}

// Scan godoc
// @Summary      Escanear un código de barras
// @Description  Código ya recolectado o sin coincidencia devuelven 200 con success:false
//
//	y guía para el operario, nunca un error HTTP.
//
// @Tags         picking
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden de picking"
// @Param        body  body  dto.ScanItemRequest  true  "barcode"
// @Success      200  {object}  dto.ScanResult
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/seller/picking/{id}/scan [post]
func (h *PickingHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.Scan(c.Context(), c.Params("id"), in.Barcode, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// ManualPick godoc
// @Summary      Confirmar una línea manualmente (sin escáner)
// @Tags         picking
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        itemId  path  string  true  "ID de la línea de picking"
// @Param        body    body  dto.ManualPickRequest  false  "notes?"
// @Success      200  {object}  dto.PickingOrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/seller/picking/{itemId}/manual-pick [post]
func (h *PickingHandler) ManualPick(c *fiber.Ctx) error {
	var in dto.ManualPickRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	p, err := h.uc.MarkItemPicked(c.Context(), c.Params("itemId"), GetUserID(c), in.Notes)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromPickingOrder(p))
}

// Complete godoc
// @Summary      Completar el picking (orden lista)
// @Tags         picking
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden de picking"
// @Success      200  {object}  dto.PickingOrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/seller/picking/{id}/complete [post]
func (h *PickingHandler) Complete(c *fiber.Ctx) error {
	p, err := h.uc.Complete(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromPickingOrder(p))
}
