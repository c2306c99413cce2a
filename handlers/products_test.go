package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestProductFilterEmpty(t *testing.T) {
	filter, err := productFilter("", "", "", "")
	require.NoError(t, err)
	assert.Empty(t, filter)
}

func TestProductFilterSearch(t *testing.T) {
	filter, err := productFilter("iphone", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"$regex": "iphone", "$options": "i"}, filter["name"])
}

func TestProductFilterPriceRange(t *testing.T) {
	filter, err := productFilter("", "100", "1000", "")
	require.NoError(t, err)

	price, ok := filter["price"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, 100.0, price["$gte"])
	assert.Equal(t, 1000.0, price["$lte"])
}

func TestProductFilterMinPriceOnly(t *testing.T) {
	filter, err := productFilter("", "50", "", "")
	require.NoError(t, err)

	price := filter["price"].(bson.M)
	assert.Equal(t, 50.0, price["$gte"])
	assert.NotContains(t, price, "$lte")
}

func TestProductFilterCategory(t *testing.T) {
	categoryID := primitive.NewObjectID()
	filter, err := productFilter("", "", "", categoryID.Hex())
	require.NoError(t, err)
	assert.Equal(t, categoryID, filter["category"])
}

func TestProductFilterRejectsBadInput(t *testing.T) {
	_, err := productFilter("", "abc", "", "")
	assert.Error(t, err)

	_, err = productFilter("", "", "xyz", "")
	assert.Error(t, err)

	_, err = productFilter("", "", "", "not-an-object-id")
	assert.Error(t, err)
}

func TestProductSortDefault(t *testing.T) {
	sort := productSort("")
	require.Len(t, sort, 1)
	assert.Equal(t, "createdAt", sort[0].Key)
	assert.Equal(t, -1, sort[0].Value)
}

func TestProductSortMultiField(t *testing.T) {
	sort := productSort("price,-rating")
	require.Len(t, sort, 2)
	assert.Equal(t, bson.E{Key: "price", Value: 1}, sort[0])
	assert.Equal(t, bson.E{Key: "rating", Value: -1}, sort[1])
}

func TestProductSortIgnoresEmptyFields(t *testing.T) {
	sort := productSort(" , ,")
	require.Len(t, sort, 1)
	assert.Equal(t, "createdAt", sort[0].Key)
}

func TestPageParams(t *testing.T) {
	page, limit := pageParams("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 12, limit)

	page, limit = pageParams("3", "5")
	assert.Equal(t, 3, page)
	assert.Equal(t, 5, limit)

	// Nonsense falls back to defaults rather than failing the request.
	page, limit = pageParams("-1", "zero")
	assert.Equal(t, 1, page)
	assert.Equal(t, 12, limit)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 12))
	assert.Equal(t, 1, totalPages(12, 12))
	assert.Equal(t, 2, totalPages(13, 12))
	assert.Equal(t, 5, totalPages(25, 5))
}
