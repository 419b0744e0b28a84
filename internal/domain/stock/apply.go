package stock

import (
	"fmt"

	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
)

// Apply calcula el nuevo stock según el tipo de movimiento (servicio de dominio).
// IN/RETURN suman; OUT/DAMAGE/TRANSFER restan y fallan si el resultado es negativo;
// ADJUSTMENT fija el valor absoluto (quantity es el nuevo total, nunca negativo).
// Invariante del libro: stock >= 0 después de cualquier secuencia de movimientos.
func Apply(movType string, current, quantity int) (int, error) {
	if quantity < 0 {
		return 0, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrInvalidInput)
	}
	switch movType {
	case entity.MovementTypeIN, entity.MovementTypeRETURN:
		return current + quantity, nil
	case entity.MovementTypeOUT, entity.MovementTypeDAMAGE, entity.MovementTypeTRANSFER:
		if current < quantity {
			return 0, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, current, quantity)
		}
		return current - quantity, nil
	case entity.MovementTypeADJUSTMENT:
		return quantity, nil
	default:
		return 0, fmt.Errorf("%w: tipo de movimiento desconocido %q", domain.ErrInvalidInput, movType)
	}
}

// Delta cantidad absoluta a registrar en el movimiento para un antes/después dado.
func Delta(previous, next int) int {
	if next >= previous {
		return next - previous
	}
	return previous - next
}
