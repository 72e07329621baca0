// Package app wires every endpoint to its handler
package app

import (
	"bitwise74/shop-api/app/auth"
	"bitwise74/shop-api/app/cart"
	"bitwise74/shop-api/app/category"
	"bitwise74/shop-api/app/order"
	"bitwise74/shop-api/app/product"
	"bitwise74/shop-api/app/root"
	"bitwise74/shop-api/app/user"
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/metrics"
	"bitwise74/shop-api/pkg/middleware"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// handler adapts the handlers of this module to gin
type handler func(c *gin.Context, d *internal.Deps)

// NewRouter builds the engine. The returned function releases what the
// router started and must be called once the server stopped.
func NewRouter(d *internal.Deps) (*gin.Engine, func()) {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     d.Config.Host.CORSOrigins,
			AllowMethods:     []string{"GET", "HEAD", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetUint("userID"); v != 0 {
					fields = append(fields, zap.Uint("user_id", v))
				}

				return fields
			},
		}),
		metrics.Middleware(),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = d.Config.Storage.MaxSize

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: d.Config.Security.RateLimit,
		Burst:             d.Config.Security.RateLimit * 2,
	})
	turnstile := middleware.NewTurnstileMiddleware(middleware.TurnstileConfig{
		Enabled: d.Config.Turnstile.Enabled,
		Secret:  d.Config.Turnstile.Secret,
	})
	authz := middleware.NewAuth(d.Tokens, d.DB)
	requireUser := authz.RequireUser()
	requireAdmin := authz.RequireAdmin()
	jsonBody := middleware.BodySizeLimiter(1 << 20)

	with := func(h handler) gin.HandlerFunc {
		return func(c *gin.Context) { h(c, d) }
	}

	cached, fresh, closeCache := catalogCache(d)

	// HEAD /heartbeat			-> Used to check if the server and database are alive
	router.HEAD("/heartbeat", with(root.Heartbeat))

	// GET /metrics			-> Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	a := router.Group("/auth", rateLimiter.Middleware(), jsonBody)
	{
		// POST /auth/registration	-> Registers a new user and mails a verification code
		a.POST("/registration", turnstile, with(auth.UserRegister))

		// POST /auth/authentication	-> Returns an access and refresh token pair
		a.POST("/authentication", with(auth.UserLogin))

		// POST /auth/access		-> Returns a new access token for a refresh token
		a.POST("/access", with(auth.TokenAccess))

		// POST /auth/refresh		-> Returns a new token pair for a refresh token
		a.POST("/refresh", with(auth.TokenRefresh))

		// POST /auth/verification	-> Checks the verification code of the caller
		a.POST("/verification", requireUser, with(auth.UserVerify))
	}

	m := router.Group("", rateLimiter.Middleware())

	// GET /categories			-> Lists categories
	m.GET("/categories", cached, with(category.CategoryList))

	cc := m.Group("/category")
	{
		// POST /category		-> Creates a category
		cc.POST("", jsonBody, requireAdmin, fresh, with(category.CategoryCreate))

		// GET /category/:id		-> Returns a category
		cc.GET("/:id", cached, with(category.CategoryFetch))

		// PUT /category/:id		-> Replaces every field of a category
		cc.PUT("/:id", jsonBody, requireAdmin, fresh, with(category.CategoryReplace))

		// PATCH /category/:id		-> Updates the provided fields of a category
		cc.PATCH("/:id", jsonBody, requireAdmin, fresh, with(category.CategoryPatch))

		// DELETE /category/:id		-> Deletes a category and its products
		cc.DELETE("/:id", requireAdmin, fresh, with(category.CategoryDelete))
	}

	// GET /products			-> Lists products
	m.GET("/products", cached, with(product.ProductList))

	p := m.Group("/product")
	{
		// POST /product		-> Creates a product
		p.POST("", jsonBody, requireAdmin, fresh, with(product.ProductCreate))

		// GET /product/:id		-> Returns a product
		p.GET("/:id", cached, with(product.ProductFetch))

		// PUT /product/:id		-> Replaces every field of a product
		p.PUT("/:id", jsonBody, requireAdmin, fresh, with(product.ProductReplace))

		// PATCH /product/:id		-> Updates the provided fields of a product
		p.PATCH("/:id", jsonBody, requireAdmin, fresh, with(product.ProductPatch))

		// DELETE /product/:id		-> Deletes a product
		p.DELETE("/:id", requireAdmin, fresh, with(product.ProductDelete))

		// POST /product/:id/image	-> Uploads the product image
		p.POST("/:id/image", middleware.BodySizeLimiter(d.Config.Storage.MaxSize+1<<20), requireAdmin, fresh, with(product.ProductImage))
	}

	ct := m.Group("/cart", requireUser)
	{
		// GET /cart			-> Returns the caller's cart
		ct.GET("", with(cart.CartList))

		// POST /cart			-> Adds a product to the cart
		ct.POST("", jsonBody, with(cart.CartAdd))

		// DELETE /cart			-> Empties the cart
		ct.DELETE("", with(cart.CartClear))

		// DELETE /cart/:id		-> Removes one cart item
		ct.DELETE("/:id", with(cart.CartDeleteItem))
	}

	// GET /orders			-> Lists every order
	m.GET("/orders", requireAdmin, with(order.OrderList))

	o := m.Group("/order")
	{
		// POST /order			-> Places an order from the cart
		o.POST("", requireUser, with(order.OrderCreate))

		// GET /order/:id		-> Returns one of the caller's orders
		o.GET("/:id", requireUser, with(order.OrderFetch))

		// PUT /order/:id		-> Sets the order status
		o.PUT("/:id", jsonBody, requireAdmin, with(order.OrderReplace))

		// PATCH /order/:id		-> Sets the order status
		o.PATCH("/:id", jsonBody, requireAdmin, with(order.OrderPatch))

		// DELETE /order/:id		-> Deletes an order and its items
		o.DELETE("/:id", requireAdmin, with(order.OrderDelete))
	}

	// GET /me				-> Returns the caller with their cart and orders
	m.GET("/me", requireUser, with(user.UserMe))

	// GET /users			-> Lists users
	m.GET("/users", requireAdmin, with(user.UserList))

	u := m.Group("/user")
	{
		// GET /user/:id		-> Returns a user with their cart and orders
		u.GET("/:id", requireAdmin, with(user.UserFetch))

		// PUT /user/:id		-> Replaces the profile of a user
		u.PUT("/:id", jsonBody, requireUser, with(user.UserReplace))

		// PATCH /user/:id		-> Updates the provided profile fields of a user
		u.PATCH("/:id", jsonBody, requireUser, with(user.UserPatch))

		// DELETE /user/:id		-> Deletes a user with everything they own
		u.DELETE("/:id", requireAdmin, with(user.UserDelete))
	}

	return router, func() {
		rateLimiter.Close()
		closeCache()
	}
}
