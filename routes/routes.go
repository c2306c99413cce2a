package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"magazin-backend/handlers"
	customMiddleware "magazin-backend/middleware"
)

// SetupRoutes binds every endpoint to its handler. Paths mirror the
// public API exactly, including the historical spellings
// (create-reivew, request-delete-accaunt) clients depend on.
func SetupRoutes(e *echo.Echo, h *handlers.Handler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.Static("/uploads", h.UploadDir)

	user := e.Group("/user")
	user.POST("/register", h.Register)
	user.POST("/login", h.Login)
	user.POST("/refresh-token", h.RefreshToken)
	user.POST("/forgot-password", h.ForgotPassword)
	user.POST("/reset-password", h.ResetPassword)
	user.GET("/profile", h.Profile, customMiddleware.Auth)
	user.GET("/logout", h.Logout, customMiddleware.Auth)
	user.PUT("/update-user", h.UpdateUser, customMiddleware.Auth)
	user.PUT("/update-user-image", h.UpdateUserImage, customMiddleware.Auth)
	user.POST("/request-delete-accaunt", h.RequestDeleteAccount, customMiddleware.Auth)
	user.POST("/confirm-delete-accaunt", h.ConfirmDeleteAccount, customMiddleware.Auth)

	category := e.Group("/category")
	category.GET("/categories", h.GetCategories)
	category.POST("/add-category", h.AddCategory, customMiddleware.Auth, customMiddleware.AdminOnly)
	category.PUT("/update-category/:id", h.UpdateCategory, customMiddleware.Auth, customMiddleware.AdminOnly)
	category.DELETE("/delete-category/:id", h.DeleteCategory, customMiddleware.Auth, customMiddleware.AdminOnly)

	product := e.Group("/product")
	product.POST("/add-product", h.AddProduct, customMiddleware.Auth)
	product.GET("/products", h.GetAllProducts)
	product.GET("/one-product/:id", h.GetOneProduct)
	product.PUT("/update-product/:id", h.UpdateProduct, customMiddleware.Auth)
	product.DELETE("/delete-product/:id", h.DeleteProduct, customMiddleware.Auth)

	cart := e.Group("/cart", customMiddleware.Auth)
	cart.POST("/add-cart", h.AddToCart)
	cart.PUT("/remove-cart", h.RemoveFromCart)
	cart.GET("/get-cart", h.GetCart)
	cart.PUT("/clear-cart", h.ClearCart)
	cart.PUT("/update-cart", h.UpdateCartItem)
	cart.GET("/all-price", h.GetCartTotalAmount)

	order := e.Group("/order", customMiddleware.Auth)
	order.POST("/checkout", h.Checkout)
	order.GET("/user-orders", h.GetUserOrders)
	order.GET("/single-order/:id", h.GetSingleOrder)
	order.PUT("/delivered-order/:id", h.MarkAsDelivered, customMiddleware.AdminOnly)
	order.PUT("/order-status/:id", h.UpdatePaymentStatus)

	review := e.Group("/review")
	review.POST("/create-reivew", h.CreateReview, customMiddleware.Auth)
	review.GET("/product-all-reviews/:id", h.GetProductReviews)
	review.GET("/rating/:id", h.GetProductRating)
	review.DELETE("/delete-review/:id", h.DeleteReview, customMiddleware.Auth)
}
