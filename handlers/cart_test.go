package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"magazin-backend/models"
)

func TestMergeCartItemsSumsExistingLine(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{{Product: productID, Quantity: 2}}

	merged := mergeCartItems(items, productID, 3)

	require.Len(t, merged, 1, "re-adding a product must never create a duplicate line")
	assert.Equal(t, 5, merged[0].Quantity)
}

func TestMergeCartItemsAppendsNewLine(t *testing.T) {
	existing := primitive.NewObjectID()
	added := primitive.NewObjectID()
	items := []models.CartItem{{Product: existing, Quantity: 1}}

	merged := mergeCartItems(items, added, 2)

	require.Len(t, merged, 2)
	assert.Equal(t, existing, merged[0].Product)
	assert.Equal(t, added, merged[1].Product)
	assert.Equal(t, 2, merged[1].Quantity)
}

func TestMergeCartItemsIntoEmptyCart(t *testing.T) {
	productID := primitive.NewObjectID()
	merged := mergeCartItems(nil, productID, 1)

	require.Len(t, merged, 1)
	assert.Equal(t, 1, merged[0].Quantity)
}

func TestSetCartItemQuantity(t *testing.T) {
	productID := primitive.NewObjectID()
	items := []models.CartItem{
		{Product: primitive.NewObjectID(), Quantity: 1},
		{Product: productID, Quantity: 2},
	}

	updated, found := setCartItemQuantity(items, productID, 7)
	require.True(t, found)
	assert.Equal(t, 7, updated[1].Quantity)
	assert.Equal(t, 1, updated[0].Quantity)

	_, found = setCartItemQuantity(items, primitive.NewObjectID(), 3)
	assert.False(t, found)
}

func TestCartTotal(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	items := []models.CartItem{
		{Product: a, Quantity: 2},
		{Product: b, Quantity: 3},
	}
	prices := map[primitive.ObjectID]float64{a: 10.5, b: 4}

	assert.InDelta(t, 33.0, cartTotal(items, prices), 1e-9)
}

func TestCartTotalSkipsMissingProducts(t *testing.T) {
	a := primitive.NewObjectID()
	items := []models.CartItem{
		{Product: a, Quantity: 2},
		{Product: primitive.NewObjectID(), Quantity: 5},
	}
	prices := map[primitive.ObjectID]float64{a: 3}

	assert.InDelta(t, 6.0, cartTotal(items, prices), 1e-9)
}

func TestCartTotalEmpty(t *testing.T) {
	assert.Zero(t, cartTotal(nil, nil))
}
