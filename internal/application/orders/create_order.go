package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pedidos-api/internal/application/dto"
	"github.com/tu-usuario/pedidos-api/internal/application/inventory"
	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/repository"
)

// Create valida dirección, stock y cupón, calcula totales y persiste en una sola
// transacción: orden + items + historial inicial, descuento de stock por línea,
// contador del cupón, orden de picking compañera y vaciado del carrito.
// Después del Commit dispara el fan-out a staff (best-effort).
func (uc *OrderUseCase) Create(ctx context.Context, customerID string, in dto.CreateOrderRequest) (*entity.Order, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la orden necesita al menos un item", domain.ErrInvalidInput)
	}
	for _, it := range in.Items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item con producto vacío o cantidad no positiva", domain.ErrInvalidInput)
		}
	}
	if in.FulfillmentType != entity.FulfillmentDelivery && in.FulfillmentType != entity.FulfillmentPickup {
		return nil, fmt.Errorf("%w: fulfillment_type debe ser DELIVERY o PICKUP", domain.ErrInvalidInput)
	}

	var addressID *string
	if in.FulfillmentType == entity.FulfillmentDelivery {
		if in.DeliveryAddressID == "" {
			return nil, fmt.Errorf("%w: una orden DELIVERY requiere dirección", domain.ErrInvalidInput)
		}
		addr, err := uc.addresses.GetByID(in.DeliveryAddressID)
		if err != nil {
			return nil, err
		}
		if addr == nil {
			return nil, fmt.Errorf("%w: dirección", domain.ErrNotFound)
		}
		if addr.UserID != customerID {
			return nil, fmt.Errorf("%w: la dirección no pertenece al cliente", domain.ErrForbidden)
		}
		addressID = &addr.ID
	}

	// Orden estable de bloqueo por product_id: dos órdenes concurrentes sobre los
	// mismos productos toman los locks en el mismo orden.
	lines := make([]dto.OrderItemRequest, len(in.Items))
	copy(lines, in.Items)
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	now := time.Now()
	order := &entity.Order{
		ID:                uuid.New().String(),
		OrderNumber:       uc.newOrderNumber(now),
		CustomerID:        customerID,
		Status:            entity.OrderStatusPending,
		FulfillmentType:   in.FulfillmentType,
		DeliveryAddressID: addressID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.OrderRepository,
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		pickingRepo repository.PickingRepository,
		couponRepo repository.CouponRepository,
		cartRepo repository.CartRepository,
	) error {
		subtotal := decimal.Zero
		tax := decimal.Zero
		products := make([]*entity.Product, 0, len(lines))

		for _, line := range lines {
			product, err := productRepo.GetForUpdate(line.ProductID)
			if err != nil {
				return err
			}
			if product == nil || !product.IsActive {
				return fmt.Errorf("%w: producto %s", domain.ErrNotFound, line.ProductID)
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: producto %s: disponible %d, solicitado %d",
					domain.ErrInsufficientStock, product.Name, product.Stock, line.Quantity)
			}
			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			tax = tax.Add(lineTotal.Mul(product.TaxRate))
			order.Items = append(order.Items, &entity.OrderItem{
				ID:          uuid.New().String(),
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   product.Price,
				LineTotal:   lineTotal,
			})
			products = append(products, product)
		}

		discount := decimal.Zero
		if in.CouponCode != "" {
			coupon, err := couponRepo.GetByCodeForUpdate(in.CouponCode)
			if err != nil {
				return err
			}
			discount, err = validateCoupon(coupon, subtotal, now)
			if err != nil {
				return err
			}
			order.CouponID = &coupon.ID
			if err := couponRepo.IncrementUsage(coupon.ID); err != nil {
				return err
			}
		}

		deliveryFee := decimal.Zero
		if in.FulfillmentType == entity.FulfillmentDelivery {
			deliveryFee = uc.cfg.DeliveryFee
		}

		order.Subtotal = subtotal
		order.Tax = tax.Round(2)
		order.DeliveryFee = deliveryFee
		order.Discount = discount
		order.Total = subtotal.Add(order.Tax).Add(deliveryFee).Sub(discount).Round(2)

		if err := orderRepo.Create(order); err != nil {
			return err
		}
		if err := orderRepo.AppendHistory(&entity.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    entity.OrderStatusPending,
			ChangedBy: customerID,
			Notes:     "orden creada",
			CreatedAt: now,
		}); err != nil {
			return err
		}

		// Descuento de stock por línea, con su movimiento OUT en el libro
		for i, line := range lines {
			_, err := inventory.ApplyInTx(movRepo, productRepo, products[i],
				entity.MovementTypeOUT, line.Quantity, "venta", customerID, order.ID)
			if err != nil {
				return err
			}
		}

		picking := &entity.PickingOrder{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Status:      entity.PickingStatusPending,
			TotalItems:  len(order.Items),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for i, it := range order.Items {
			picking.Items = append(picking.Items, &entity.PickingItem{
				ID:             uuid.New().String(),
				PickingOrderID: picking.ID,
				ProductID:      it.ProductID,
				ProductName:    it.ProductName,
				ProductBarcode: products[i].Barcode,
				Quantity:       it.Quantity,
			})
		}
		if err := pickingRepo.Create(picking); err != nil {
			return err
		}

		return cartRepo.ClearByCustomer(customerID)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.NewOrder(ctx, order)
	return order, nil
}

// validateCoupon aplica las reglas del cupón y devuelve el descuento.
// Cupón vencido/inactivo/agotado o bajo el mínimo de orden rechaza la creación.
func validateCoupon(coupon *entity.Coupon, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	if coupon == nil {
		return decimal.Zero, fmt.Errorf("%w: cupón", domain.ErrNotFound)
	}
	if !coupon.IsActive {
		return decimal.Zero, fmt.Errorf("%w: cupón %s inactivo", domain.ErrInvalidInput, coupon.Code)
	}
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return decimal.Zero, fmt.Errorf("%w: cupón %s vencido", domain.ErrInvalidInput, coupon.Code)
	}
	if coupon.UsageLimit != nil && coupon.UsedCount >= *coupon.UsageLimit {
		return decimal.Zero, fmt.Errorf("%w: cupón %s agotado", domain.ErrInvalidInput, coupon.Code)
	}
	if coupon.MinOrderValue != nil && subtotal.LessThan(*coupon.MinOrderValue) {
		return decimal.Zero, fmt.Errorf("%w: cupón %s requiere orden mínima de %s, subtotal %s",
			domain.ErrInvalidInput, coupon.Code, coupon.MinOrderValue.StringFixed(2), subtotal.StringFixed(2))
	}

	var discount decimal.Decimal
	switch coupon.Type {
	case entity.CouponTypePercentage:
		discount = subtotal.Mul(coupon.Value).Div(decimal.NewFromInt(100))
		if coupon.MaxDiscount != nil && discount.GreaterThan(*coupon.MaxDiscount) {
			discount = *coupon.MaxDiscount
		}
	case entity.CouponTypeFixed:
		discount = coupon.Value
	default:
		return decimal.Zero, fmt.Errorf("%w: tipo de cupón desconocido %q", domain.ErrInvalidInput, coupon.Type)
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount.Round(2), nil
}

// newOrderNumber genera un consecutivo legible: <prefijo>-<fecha>-<8 hex>.
func (uc *OrderUseCase) newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", uc.cfg.OrderPrefix, now.Format("20060102"), suffix)
}
