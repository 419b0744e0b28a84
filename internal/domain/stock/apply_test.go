package stock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pedidos-api/internal/domain"
	"github.com/tu-usuario/pedidos-api/internal/domain/entity"
	"github.com/tu-usuario/pedidos-api/internal/domain/stock"
)

func TestApply_TiposQueSuman(t *testing.T) {
	cases := []struct {
		tipo     string
		current  int
		qty      int
		expected int
	}{
		{entity.MovementTypeIN, 5, 3, 8},
		{entity.MovementTypeIN, 0, 10, 10},
		{entity.MovementTypeRETURN, 3, 2, 5},
	}
	for _, tc := range cases {
		got, err := stock.Apply(tc.tipo, tc.current, tc.qty)
		require.NoError(t, err, tc.tipo)
		assert.Equal(t, tc.expected, got, tc.tipo)
	}
}

func TestApply_TiposQueRestan(t *testing.T) {
	for _, tipo := range []string{entity.MovementTypeOUT, entity.MovementTypeDAMAGE, entity.MovementTypeTRANSFER} {
		got, err := stock.Apply(tipo, 5, 2)
		require.NoError(t, err, tipo)
		assert.Equal(t, 3, got, tipo)
	}
}

// El stock nunca queda negativo: una salida mayor al disponible falla y no cambia nada.
func TestApply_SalidaMayorAlDisponible(t *testing.T) {
	_, err := stock.Apply(entity.MovementTypeOUT, 5, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "disponible 5")
	assert.Contains(t, err.Error(), "solicitado 10")
}

// ADJUSTMENT fija el valor absoluto, hacia arriba o hacia abajo.
func TestApply_Ajuste(t *testing.T) {
	got, err := stock.Apply(entity.MovementTypeADJUSTMENT, 5, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, got)

	got, err = stock.Apply(entity.MovementTypeADJUSTMENT, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestApply_CantidadNegativaOTipoDesconocido(t *testing.T) {
	_, err := stock.Apply(entity.MovementTypeIN, 5, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = stock.Apply("VENTA", 5, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelta(t *testing.T) {
	assert.Equal(t, 7, stock.Delta(5, 12))
	assert.Equal(t, 5, stock.Delta(5, 0))
	assert.Equal(t, 0, stock.Delta(3, 3))
}
