package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"magazin-backend/middleware"
	"magazin-backend/models"
)

type checkoutRequest struct {
	FullName      string `json:"fullName"`
	Address       string `json:"address"`
	City          string `json:"city"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
	PaymentMethod string `json:"paymentMethod"`
}

// Checkout snapshots the user's cart into an immutable order and clears
// the cart. Order insert and cart clear run inside one transaction so a
// crash cannot create an order while leaving the cart full.
func (h *Handler) Checkout(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.FullName == "" || req.Address == "" || req.City == "" ||
		req.PostalCode == "" || req.Country == "" || req.PaymentMethod == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Full shipping address and payment method are required")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var cart models.Cart
	err := h.DB.Collection("carts").FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments || (err == nil && len(cart.Items) == 0) {
		return echo.NewHTTPError(http.StatusBadRequest, "Cart is empty")
	}
	if err != nil {
		return err
	}

	products, err := h.cartProducts(c, cart.Items)
	if err != nil {
		return err
	}

	orderItems, err := buildOrderItems(cart.Items, products)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	now := time.Now()
	order := models.Order{
		ID:         primitive.NewObjectID(),
		User:       userID,
		OrderItems: orderItems,
		ShippingAddress: models.ShippingAddress{
			FullName:   req.FullName,
			Address:    req.Address,
			City:       req.City,
			PostalCode: req.PostalCode,
			Country:    req.Country,
		},
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: models.PaymentPending,
		TotalPrice:    orderTotal(orderItems),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.placeOrder(c, order, cart.ID); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Order created",
		"order":   order,
	})
}

// placeOrder inserts the order and empties the cart in one transaction.
// Transactions need a replica set; a standalone server accepts the
// session but rejects the first transactional write, so the replica-set
// check happens on the transaction error, not on StartSession. In that
// case the two writes run sequentially as the pre-transactional
// behavior did.
func (h *Handler) placeOrder(c echo.Context, order models.Order, cartID primitive.ObjectID) error {
	ctx, cancel := opContext(c)
	defer cancel()

	clearCart := bson.M{"$set": bson.M{"items": []models.CartItem{}, "updatedAt": time.Now()}}

	session, err := h.Client.StartSession()
	if err != nil {
		log.Printf("Sessions unavailable, placing order without a transaction: %v", err)
		return h.placeOrderSequential(ctx, order, cartID, clearCart)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := h.DB.Collection("orders").InsertOne(sc, order); err != nil {
			return nil, err
		}
		if _, err := h.DB.Collection("carts").UpdateOne(sc, bson.M{"_id": cartID}, clearCart); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if transactionsUnsupported(err) {
		log.Printf("Transactions unsupported, placing order without one: %v", err)
		return h.placeOrderSequential(ctx, order, cartID, clearCart)
	}
	return err
}

func (h *Handler) placeOrderSequential(ctx context.Context, order models.Order, cartID primitive.ObjectID, clearCart bson.M) error {
	if _, err := h.DB.Collection("orders").InsertOne(ctx, order); err != nil {
		return err
	}
	_, err := h.DB.Collection("carts").UpdateOne(ctx, bson.M{"_id": cartID}, clearCart)
	return err
}

// transactionsUnsupported recognizes the IllegalOperation error a
// standalone mongod returns for the first write inside a transaction.
func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	return cmdErr.Code == 20 && strings.Contains(cmdErr.Message, "Transaction numbers")
}

func (h *Handler) GetUserOrders(c echo.Context) error {
	userID := c.Get(middleware.UserIDKey).(primitive.ObjectID)

	ctx, cancel := opContext(c)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("orders").Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"total":   len(orders),
		"orders":  orders,
	})
}

func (h *Handler) GetSingleOrder(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var order models.Order
	err = h.DB.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "order": order})
}

func (h *Handler) MarkAsDelivered(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order ID")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	now := time.Now()
	var order models.Order
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = h.DB.Collection("orders").FindOneAndUpdate(ctx, bson.M{"_id": orderID}, bson.M{
		"$set": bson.M{"isDelivered": true, "deliveredAt": now, "updatedAt": now},
	}, after).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Order marked as delivered",
		"order":   order,
	})
}

// UpdatePaymentStatus transitions the payment status to paid or failed,
// e.g. when a payment provider notification arrives.
func (h *Handler) UpdatePaymentStatus(c echo.Context) error {
	orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid order ID")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if !validPaymentStatus(req.Status) {
		return echo.NewHTTPError(http.StatusBadRequest, "Payment status must be 'paid' or 'failed'")
	}

	ctx, cancel := opContext(c)
	defer cancel()

	var order models.Order
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = h.DB.Collection("orders").FindOneAndUpdate(ctx, bson.M{"_id": orderID}, bson.M{
		"$set": bson.M{"paymentStatus": req.Status, "updatedAt": time.Now()},
	}, after).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return echo.NewHTTPError(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Payment status updated",
		"order":   order,
	})
}

// buildOrderItems snapshots cart lines with the current unit price. An
// empty cart or a cart line whose product no longer exists aborts the
// checkout.
func buildOrderItems(items []models.CartItem, products map[primitive.ObjectID]models.Product) ([]models.OrderItem, error) {
	if len(items) == 0 {
		return nil, errors.New("cart is empty")
	}
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product, ok := products[item.Product]
		if !ok {
			return nil, fmt.Errorf("product %s is no longer available", item.Product.Hex())
		}
		out = append(out, models.OrderItem{
			Product: product.ID,
			Qty:     item.Quantity,
			Price:   product.Price,
		})
	}
	return out, nil
}

// orderTotal sums qty times the snapshotted unit price.
func orderTotal(items []models.OrderItem) float64 {
	total := 0.0
	for _, item := range items {
		total += float64(item.Qty) * item.Price
	}
	return total
}

// validPaymentStatus only allows the two terminal transitions.
func validPaymentStatus(status string) bool {
	return status == string(models.PaymentPaid) || status == string(models.PaymentFailed)
}
