package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"magazin-backend/models"
)

func TestAverageRating(t *testing.T) {
	reviews := []models.Review{{Rating: 5}, {Rating: 4}, {Rating: 4}}
	assert.InDelta(t, 4.3, averageRating(reviews), 1e-9)
}

func TestAverageRatingRoundsToOneDecimal(t *testing.T) {
	reviews := []models.Review{{Rating: 5}, {Rating: 4}}
	assert.InDelta(t, 4.5, averageRating(reviews), 1e-9)

	reviews = []models.Review{{Rating: 1}, {Rating: 1}, {Rating: 2}}
	assert.InDelta(t, 1.3, averageRating(reviews), 1e-9)
}

func TestAverageRatingNoReviews(t *testing.T) {
	assert.Zero(t, averageRating(nil))
	assert.Zero(t, averageRating([]models.Review{}))
}
