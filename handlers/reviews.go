package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"magazin-backend/middleware"
	"magazin-backend/models"
)

// reviewResponse pairs a review with the author's display name.
type reviewResponse struct {
	models.Review
	UserName string `json:"userName,omitempty"`
}

// CreateReview stores a review; a user may review each product once.
func (h *Handler) CreateReview(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	var req struct {
		ProductID string `json:"productId"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "Rating must be between 1 and 5")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	reviews := h.DB.Collection("reviews")
	err = reviews.FindOne(ctx, bson.M{"user": userID, "product": productID}).Err()
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "You have already reviewed this product")
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	now := time.Now()
	review := models.Review{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Product:   productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := reviews.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, "You have already reviewed this product")
		}
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Review added",
		"review":  review,
	})
}

func (h *Handler) GetProductReviews(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	cursor, err := h.DB.Collection("reviews").Find(ctx, bson.M{"product": productID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return err
	}

	withNames, err := h.attachUserNames(c, reviews)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(reviews),
		"reviews": withNames,
	})
}

// GetProductRating returns the average rating rounded to one decimal;
// a product without reviews rates 0.
func (h *Handler) GetProductRating(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	cursor, err := h.DB.Collection("reviews").Find(ctx, bson.M{"product": productID})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err := cursor.All(ctx, &reviews); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"averageRating": averageRating(reviews),
	})
}

// DeleteReview removes a review; only its author or an admin may.
func (h *Handler) DeleteReview(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)
	isAdmin, _ := c.Get(middleware.IsAdminKey).(bool)

	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid review ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	reviews := h.DB.Collection("reviews")

	var review models.Review
	err = reviews.FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "Review not found")
	}
	if err != nil {
		return err
	}

	if review.User != userID && !isAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Not allowed")
	}

	if _, err := reviews.DeleteOne(ctx, bson.M{"_id": reviewID}); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Review deleted"})
}

// attachUserNames resolves reviewer names with one users query.
func (h *Handler) attachUserNames(c echo.Context, reviews []models.Review) ([]reviewResponse, error) {
	out := make([]reviewResponse, 0, len(reviews))
	if len(reviews) == 0 {
		return out, nil
	}

	ids := make([]primitive.ObjectID, 0, len(reviews))
	seen := map[primitive.ObjectID]bool{}
	for _, review := range reviews {
		if !seen[review.User] {
			seen[review.User] = true
			ids = append(ids, review.User)
		}
	}

	ctx, cancel := opContext(c)
	defer cancel()

	cursor, err := h.DB.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	names := make(map[primitive.ObjectID]string, len(users))
	for _, user := range users {
		names[user.ID] = user.UserName
	}

	for _, review := range reviews {
		out = append(out, reviewResponse{Review: review, UserName: names[review.User]})
	}
	return out, nil
}

// averageRating rounds to one decimal, matching how the rating is shown.
func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return math.Round(avg*10) / 10
}
