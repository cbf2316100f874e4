package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
)

func TestCartAddAndView(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.cartSvc.Add("u-buyer", "ikan-tenggiri", d("2000")))
	require.NoError(t, e.cartSvc.Add("u-buyer", "udang-vaname", d("500")))
	// Adding the same product again merges into one line
	require.NoError(t, e.cartSvc.Add("u-buyer", "ikan-tenggiri", d("1000")))

	view, err := e.cartSvc.View("u-buyer")
	require.NoError(t, err)
	require.Equal(t, 2, view.TotalItems)
	// 3000 g tenggiri (255,000) + 500 g udang (47,500)
	require.True(t, view.Subtotal.Equal(d("302500")), "subtotal %s", view.Subtotal)
}

func TestCartAdd_Errors(t *testing.T) {
	e := newEnv(t)

	err := e.cartSvc.Add("u-buyer", "no-such-fish", d("1000"))
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)

	err = e.cartSvc.Add("u-buyer", "ikan-tenggiri", d("100"))
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve), "below minimum: %v", err)

	err = e.cartSvc.Add("u-buyer", "ikan-tenggiri", d("20000"))
	var ce *domain.ConflictError
	require.True(t, errors.As(err, &ce), "above stock: %v", err)
}

func TestCartUpdateAndRemove(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.cartSvc.Add("u-buyer", "ikan-tenggiri", d("2000")))

	view, err := e.cartSvc.View("u-buyer")
	require.NoError(t, err)
	itemID := view.Items[0].ID

	require.NoError(t, e.cartSvc.UpdateWeight("u-buyer", itemID, d("1500")))

	// Another user cannot touch the line
	err = e.cartSvc.UpdateWeight("u-other", itemID, d("9999"))
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)

	require.NoError(t, e.cartSvc.Remove("u-buyer", itemID))
	view, err = e.cartSvc.View("u-buyer")
	require.NoError(t, err)
	require.Empty(t, view.Items)
}
