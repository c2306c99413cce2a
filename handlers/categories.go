package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"magazin-backend/models"
)

func (h *Handler) GetCategories(c echo.Context) error {
	ctx, cancel := opContext(c)
	defer cancel()

	cursor, err := h.DB.Collection("categories").Find(ctx, bson.M{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"message":    "Category list",
		"count":      len(categories),
		"categories": categories,
	})
}

func (h *Handler) AddCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	name := normalizeCategoryName(req.Name)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Category name must not be empty")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	categories := h.DB.Collection("categories")
	if err := categories.FindOne(ctx, bson.M{"name": name}).Err(); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A category with this name already exists")
	} else if err != mongo.ErrNoDocuments {
		return err
	}

	now := time.Now()
	category := models.Category{
		ID:        primitive.NewObjectID(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := categories.InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, "A category with this name already exists")
		}
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":  true,
		"message":  "Category created",
		"category": category,
	})
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	categoryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	name := normalizeCategoryName(req.Name)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Category name must not be empty")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	categories := h.DB.Collection("categories")

	// Duplicate check must exclude the category being renamed.
	err = categories.FindOne(ctx, bson.M{"_id": bson.M{"$ne": categoryID}, "name": name}).Err()
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A category with this name already exists")
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	var updated models.Category
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = categories.FindOneAndUpdate(ctx, bson.M{"_id": categoryID}, bson.M{
		"$set": bson.M{"name": name, "updatedAt": time.Now()},
	}, after).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"message":  "Category updated",
		"category": updated,
	})
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	categoryID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	err = h.DB.Collection("categories").FindOneAndDelete(ctx, bson.M{"_id": categoryID}).Err()
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "Category not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Category deleted"})
}

// normalizeCategoryName makes duplicate checks case-insensitive; names
// are persisted lowercased.
func normalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
