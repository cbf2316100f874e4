package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
	"github.com/dikaproject/dk-mandiri-backend/internal/services"
)

func TestCheckAvailability(t *testing.T) {
	inv := &services.InventoryService{}
	p := domain.Product{
		Name:           "Ikan Tenggiri",
		WeightInStock:  d("10000"),
		MinOrderWeight: d("500"),
		IsAvailable:    true,
	}

	require.NoError(t, inv.CheckAvailability(p, d("500")), "exactly the minimum is allowed")
	require.NoError(t, inv.CheckAvailability(p, d("10000")), "exactly the full stock is allowed")

	var ve *domain.ValidationError
	err := inv.CheckAvailability(p, d("499"))
	require.True(t, errors.As(err, &ve), "below minimum order weight: %v", err)

	var ce *domain.ConflictError
	err = inv.CheckAvailability(p, d("10001"))
	require.True(t, errors.As(err, &ce), "above stock: %v", err)

	p.IsAvailable = false
	err = inv.CheckAvailability(p, d("1000"))
	require.True(t, errors.As(err, &ve), "unavailable product: %v", err)
}
