package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"magazin-backend/models"
	"magazin-backend/utils"
)

const maxProductImages = 3

// productResponse pairs a product with the name of its category, the
// way list and detail endpoints return it.
type productResponse struct {
	models.Product
	CategoryName string `json:"categoryName,omitempty"`
}

// AddProduct creates a product from a multipart form with up to three
// image files under the "images" field.
func (h *Handler) AddProduct(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	description := strings.TrimSpace(c.FormValue("description"))
	priceStr := c.FormValue("price")
	stockStr := c.FormValue("countInStock")
	categoryStr := c.FormValue("category")
	brand := strings.TrimSpace(c.FormValue("brand"))

	if name == "" || description == "" || priceStr == "" || stockStr == "" || categoryStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Required fields are missing")
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Price must be a non-negative number")
	}
	stock, err := strconv.Atoi(stockStr)
	if err != nil || stock < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Stock count must be a non-negative number")
	}
	categoryID, err := primitive.ObjectIDFromHex(categoryStr)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Multipart form is required")
	}
	files := form.File["images"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one image is required")
	}
	if len(files) > maxProductImages {
		return echo.NewHTTPError(http.StatusBadRequest, "At most 3 images are allowed")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	if err := h.DB.Collection("categories").FindOne(ctx, bson.M{"_id": categoryID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return echo.NewHTTPError(http.StatusBadRequest, "Category does not exist")
		}
		return err
	}

	images := make([]string, 0, len(files))
	for _, file := range files {
		stored, err := utils.SaveImage(file, h.UploadDir)
		if err != nil {
			utils.RemoveImages(h.UploadDir, images...)
			return err
		}
		images = append(images, stored)
	}

	now := time.Now()
	product := models.Product{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Description:  description,
		Price:        price,
		CountInStock: stock,
		Category:     categoryID,
		Images:       images,
		Brand:        brand,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := h.DB.Collection("products").InsertOne(ctx, product); err != nil {
		utils.RemoveImages(h.UploadDir, images...)
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Product created",
		"product": product,
	})
}

// GetAllProducts lists products with name search, price range, category
// filter, multi-field sort and pagination, e.g.
// /product/products?search=iphone&minPrice=100&maxPrice=1000&category=<id>&sort=price,-rating&page=2&limit=5
func (h *Handler) GetAllProducts(c echo.Context) error {
	filter, err := productFilter(
		c.QueryParam("search"),
		c.QueryParam("minPrice"),
		c.QueryParam("maxPrice"),
		c.QueryParam("category"),
	)
	if err != nil {
		return err
	}

	page, limit := pageParams(c.QueryParam("page"), c.QueryParam("limit"))
	sort := productSort(c.QueryParam("sort"))

	ctx, cancel := opContext(c)
	defer cancel()

	products := h.DB.Collection("products")
	total, err := products.CountDocuments(ctx, filter)
	if err != nil {
		return err
	}

	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := products.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var list []models.Product
	if err := cursor.All(ctx, &list); err != nil {
		return err
	}

	withNames, err := h.attachCategoryNames(c, list)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"total":    total,
		"count":    len(list),
		"page":     page,
		"pages":    totalPages(total, limit),
		"products": withNames,
	})
}

func (h *Handler) GetOneProduct(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var product models.Product
	err = h.DB.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return err
	}

	withNames, err := h.attachCategoryNames(c, []models.Product{product})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": withNames[0]})
}

// UpdateProduct replaces the fields present in the form. New images
// replace the old set, whose files are deleted from storage.
func (h *Handler) UpdateProduct(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	products := h.DB.Collection("products")

	var existing models.Product
	err = products.FindOne(ctx, bson.M{"_id": productID}).Decode(&existing)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return err
	}

	set := bson.M{"updatedAt": time.Now()}
	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		set["name"] = name
	}
	if description := strings.TrimSpace(c.FormValue("description")); description != "" {
		set["description"] = description
	}
	if priceStr := c.FormValue("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Price must be a non-negative number")
		}
		set["price"] = price
	}
	if stockStr := c.FormValue("countInStock"); stockStr != "" {
		stock, err := strconv.Atoi(stockStr)
		if err != nil || stock < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Stock count must be a non-negative number")
		}
		set["countInStock"] = stock
	}
	if categoryStr := c.FormValue("category"); categoryStr != "" {
		categoryID, err := primitive.ObjectIDFromHex(categoryStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
		}
		set["category"] = categoryID
	}
	if brand := strings.TrimSpace(c.FormValue("brand")); brand != "" {
		set["brand"] = brand
	}

	var newImages []string
	if form, err := c.MultipartForm(); err == nil {
		files := form.File["images"]
		if len(files) > maxProductImages {
			return echo.NewHTTPError(http.StatusBadRequest, "At most 3 images are allowed")
		}
		for _, file := range files {
			stored, err := utils.SaveImage(file, h.UploadDir)
			if err != nil {
				utils.RemoveImages(h.UploadDir, newImages...)
				return err
			}
			newImages = append(newImages, stored)
		}
	}
	if len(newImages) > 0 {
		set["images"] = newImages
	}

	var updated models.Product
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = products.FindOneAndUpdate(ctx, bson.M{"_id": productID}, bson.M{"$set": set}, after).Decode(&updated)
	if err != nil {
		utils.RemoveImages(h.UploadDir, newImages...)
		return err
	}

	// Old files only go away once the replacement is persisted.
	if len(newImages) > 0 {
		utils.RemoveImages(h.UploadDir, existing.Images...)
	}

	withNames, err := h.attachCategoryNames(c, []models.Product{updated})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Product updated",
		"product": withNames[0],
	})
}

// DeleteProduct removes the record and its image files. File removal is
// idempotent, so re-running after a partial failure is safe.
func (h *Handler) DeleteProduct(c echo.Context) error {
	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var product models.Product
	err = h.DB.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	}
	if err != nil {
		return err
	}

	if _, err := h.DB.Collection("products").DeleteOne(ctx, bson.M{"_id": productID}); err != nil {
		return err
	}

	utils.RemoveImages(h.UploadDir, product.Images...)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Product deleted"})
}

// attachCategoryNames resolves the category references of a product batch
// with a single categories query.
func (h *Handler) attachCategoryNames(c echo.Context, products []models.Product) ([]productResponse, error) {
	out := make([]productResponse, 0, len(products))
	if len(products) == 0 {
		return out, nil
	}

	ids := make([]primitive.ObjectID, 0, len(products))
	seen := map[primitive.ObjectID]bool{}
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			ids = append(ids, p.Category)
		}
	}

	ctx, cancel := opContext(c)
	defer cancel()

	cursor, err := h.DB.Collection("categories").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}

	names := make(map[primitive.ObjectID]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	for _, p := range products {
		out = append(out, productResponse{Product: p, CategoryName: names[p.Category]})
	}
	return out, nil
}

// productFilter builds the query document for the list endpoint.
func productFilter(search, minPrice, maxPrice, category string) (bson.M, error) {
	filter := bson.M{}

	if search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}

	price := bson.M{}
	if minPrice != "" {
		min, err := strconv.ParseFloat(minPrice, 64)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "minPrice must be a number")
		}
		price["$gte"] = min
	}
	if maxPrice != "" {
		max, err := strconv.ParseFloat(maxPrice, 64)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "maxPrice must be a number")
		}
		price["$lte"] = max
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if category != "" {
		categoryID, err := primitive.ObjectIDFromHex(category)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid category ID")
		}
		filter["category"] = categoryID
	}

	return filter, nil
}

// productSort parses the sort parameter: a comma-separated field list
// where a leading '-' means descending. Defaults to newest first.
func productSort(sort string) bson.D {
	if sort == "" {
		return bson.D{{Key: "createdAt", Value: -1}}
	}

	var out bson.D
	for _, field := range strings.Split(sort, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if strings.HasPrefix(field, "-") {
			out = append(out, bson.E{Key: field[1:], Value: -1})
		} else {
			out = append(out, bson.E{Key: field, Value: 1})
		}
	}
	if len(out) == 0 {
		return bson.D{{Key: "createdAt", Value: -1}}
	}
	return out
}

func pageParams(pageStr, limitStr string) (page, limit int) {
	page, limit = 1, 12
	if n, err := strconv.Atoi(pageStr); err == nil && n > 0 {
		page = n
	}
	if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
		limit = n
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	return int(math.Ceil(float64(total) / float64(limit)))
}
