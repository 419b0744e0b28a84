package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP del libro de stock (ADMIN/MANAGER).
type InventoryHandler struct {
	uc *inventory.StockUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type, quantity (ADJUSTMENT: total absoluto), reason?"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.RegisterMovement(c.Context(), inventory.MovementInput{
		ProductID:   in.ProductID,
		Type:        in.Type,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		ReferenceID: in.ReferenceID,
		ActorID:     GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(mov))
}

// AdjustStock godoc
// @Summary      Ajustar stock con un delta con signo
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, delta, reason?"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.uc.AdjustStock(c.Context(), in.ProductID, in.Delta, in.Reason, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMovement(mov))
}

// LowStock godoc
// @Summary      Productos bajo el stock mínimo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.uc.LowStock(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LowStockResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.LowStockResponse{
			ProductID: p.ID,
			SKU:       p.SKU,
			Name:      p.Name,
			Unit:      p.Unit,
			Stock:     p.Stock,
			MinStock:  p.MinStock,
			Deficit:   p.Deficit,
		})
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Movimientos del libro de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "filtrar por producto"
// @Param        from        query  string  false  "RFC 3339"
// @Param        to          query  string  false  "RFC 3339"
// @Success      200  {array}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query inválido"})
	}
	var from, to *time.Time
	if q.From != "" {
		t, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC 3339"})
		}
		from = &t
	}
	if q.To != "" {
		t, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC 3339"})
		}
		to = &t
	}
	list, err := h.uc.ListMovements(c.Context(), q.ProductID, from, to, q.PageRequest)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.FromMovement(m))
	}
	return c.JSON(out)
}
