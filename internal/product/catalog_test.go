package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/jersey-shop-backend/internal/apperr"
)

func TestCatalogVariant_UsesSalePriceAndCover(t *testing.T) {
	c := NewCatalog(NewInMemoryRepository(seedProducts()))

	snap, err := c.Variant(context.Background(), "v-ars-s")
	require.NoError(t, err)
	assert.Equal(t, "p1", snap.ProductID)
	assert.Equal(t, "S", snap.Size)
	assert.Equal(t, "arsenal-24-25-home", snap.Slug)
	assert.Equal(t, "/img/ars-front.jpg", snap.Image)
	assert.True(t, snap.UnitPrice.Equal(d("59.99")))
	assert.Equal(t, 3, snap.Stock)
	assert.Equal(t, 0, snap.Quantity)
}

func TestCatalogVariant_Unavailable(t *testing.T) {
	c := NewCatalog(NewInMemoryRepository(seedProducts()))

	_, err := c.Variant(context.Background(), "v-bra-m")
	assert.Equal(t, "VARIANT_NOT_FOUND", apperr.CodeOf(err), "inactive product")

	_, err = c.Variant(context.Background(), "nope")
	assert.Equal(t, "VARIANT_NOT_FOUND", apperr.CodeOf(err))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
