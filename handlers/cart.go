package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"magazin-backend/middleware"
	"magazin-backend/models"
)

// populatedCartItem is a cart line with the product reference resolved.
type populatedCartItem struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// AddToCart upserts the user's cart. Re-adding a product merges into the
// existing line by summing quantities, never creating a duplicate entry.
func (h *Handler) AddToCart(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "Quantity must be at least 1")
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	if err := h.DB.Collection("products").FindOne(ctx, bson.M{"_id": productID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return err
	}

	carts := h.DB.Collection("carts")

	var cart models.Cart
	err = carts.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	switch err {
	case mongo.ErrNoDocuments:
		now := time.Now()
		cart = models.Cart{
			ID:        primitive.NewObjectID(),
			User:      userID,
			Items:     []models.CartItem{{Product: productID, Quantity: req.Quantity}},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := carts.InsertOne(ctx, cart); err != nil {
			return err
		}
	case nil:
		items := mergeCartItems(cart.Items, productID, req.Quantity)
		_, err = carts.UpdateOne(ctx, bson.M{"_id": cart.ID}, bson.M{
			"$set": bson.M{"items": items, "updatedAt": time.Now()},
		})
		if err != nil {
			return err
		}
	default:
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Product added to cart"})
}

func (h *Handler) RemoveFromCart(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	var req struct {
		ProductID string `json:"productId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	_, err = h.DB.Collection("carts").UpdateOne(ctx, bson.M{"user": userID}, bson.M{
		"$pull": bson.M{"items": bson.M{"product": productID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Product removed from cart"})
}

// GetCart returns the cart with product references resolved. A user
// without a cart gets an empty one rather than a 404.
func (h *Handler) GetCart(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	ctx, cancel := opContext(c)
	defer cancel()

	var cart models.Cart
	err := h.DB.Collection("carts").FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"cart":    echo.Map{"items": []populatedCartItem{}},
		})
	}
	if err != nil {
		return err
	}

	products, err := h.cartProducts(c, cart.Items)
	if err != nil {
		return err
	}

	items := make([]populatedCartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, ok := products[item.Product]
		if !ok {
			continue // product was deleted since it was added
		}
		items = append(items, populatedCartItem{Product: product, Quantity: item.Quantity})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"cart": echo.Map{
			"id":    cart.ID,
			"user":  cart.User,
			"items": items,
		},
	})
}

func (h *Handler) ClearCart(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	ctx, cancel := opContext(c)
	defer cancel()

	_, err := h.DB.Collection("carts").UpdateOne(ctx, bson.M{"user": userID}, bson.M{
		"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Cart cleared"})
}

func (h *Handler) UpdateCartItem(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "Quantity must be at least 1")
	}

	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	carts := h.DB.Collection("carts")

	var cart models.Cart
	err = carts.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "Cart not found")
	}
	if err != nil {
		return err
	}

	items, found := setCartItemQuantity(cart.Items, productID, req.Quantity)
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "Product not found in cart")
	}

	_, err = carts.UpdateOne(ctx, bson.M{"_id": cart.ID}, bson.M{
		"$set": bson.M{"items": items, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Quantity updated"})
}

// GetCartTotalAmount sums unit price times quantity over the cart.
func (h *Handler) GetCartTotalAmount(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	ctx, cancel := opContext(c)
	defer cancel()

	var cart models.Cart
	err := h.DB.Collection("carts").FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments || (err == nil && len(cart.Items) == 0) {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "totalAmount": 0})
	}
	if err != nil {
		return err
	}

	products, err := h.cartProducts(c, cart.Items)
	if err != nil {
		return err
	}

	prices := make(map[primitive.ObjectID]float64, len(products))
	for id, product := range products {
		prices[id] = product.Price
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"totalAmount": cartTotal(cart.Items, prices),
	})
}

// cartProducts fetches the products referenced by cart items in one query.
func (h *Handler) cartProducts(c echo.Context, items []models.CartItem) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(items))
	if len(items) == 0 {
		return out, nil
	}

	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Product)
	}

	ctx, cancel := opContext(c)
	defer cancel()

	cursor, err := h.DB.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	for _, product := range products {
		out[product.ID] = product
	}
	return out, nil
}

// mergeCartItems adds quantity to an existing line or appends a new one.
func mergeCartItems(items []models.CartItem, productID primitive.ObjectID, quantity int) []models.CartItem {
	for i := range items {
		if items[i].Product == productID {
			items[i].Quantity += quantity
			return items
		}
	}
	return append(items, models.CartItem{Product: productID, Quantity: quantity})
}

// setCartItemQuantity replaces the quantity of an existing line. The
// second return value reports whether the product was in the cart.
func setCartItemQuantity(items []models.CartItem, productID primitive.ObjectID, quantity int) ([]models.CartItem, bool) {
	for i := range items {
		if items[i].Product == productID {
			items[i].Quantity = quantity
			return items, true
		}
	}
	return items, false
}

// cartTotal sums price times quantity; items whose product is missing
// from the price map contribute nothing.
func cartTotal(items []models.CartItem, prices map[primitive.ObjectID]float64) float64 {
	total := 0.0
	for _, item := range items {
		total += prices[item.Product] * float64(item.Quantity)
	}
	return total
}
