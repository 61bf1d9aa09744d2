package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

const requestIDHeader = "X-Request-Id"

type accountService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
}

type catalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

type cartService interface {
	Get(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*domain.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID int64) error
	Merge(ctx context.Context, userID int64, items []cartsvc.MergeInput) (*domain.Cart, error)
}

type orderService interface {
	Create(ctx context.Context, userID int64, deliveryAddress, phone string) (*domain.Order, error)
	List(ctx context.Context, userID int64) ([]domain.Order, error)
	Get(ctx context.Context, userID, id int64) (*domain.Order, error)
	SetStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

// Deps carries the services the router dispatches to.
type Deps struct {
	AccountSvc accountService
	CatalogSvc catalogService
	CartSvc    cartService
	OrderSvc   orderService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if deps.AccountSvc == nil || deps.CatalogSvc == nil || deps.CartSvc == nil || deps.OrderSvc == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}

	router := gin.New()
	router.RedirectTrailingSlash = false
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), requestIDMiddleware())
	router.Use(cors.New(corsConfig(corsOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/auth/register", registerHandler(deps.AccountSvc))
	router.POST("/auth/jwt/login", loginHandler(deps.AccountSvc))

	router.GET("/products", listProductsHandler(deps.CatalogSvc))
	router.GET("/products/", listProductsHandler(deps.CatalogSvc))
	router.GET("/products/:id", getProductHandler(deps.CatalogSvc))

	authed := router.Group("/", authMiddleware(deps.AccountSvc))
	authed.GET("/users/me", profileHandler())

	authed.GET("/cart", getCartHandler(deps.CartSvc))
	authed.GET("/cart/", getCartHandler(deps.CartSvc))
	authed.POST("/cart/items", addCartItemHandler(deps.CartSvc))
	authed.PATCH("/cart/items/:id", updateCartItemHandler(deps.CartSvc))
	authed.DELETE("/cart/items/:id", removeCartItemHandler(deps.CartSvc))
	authed.POST("/cart/merge", mergeCartHandler(deps.CartSvc))

	authed.POST("/orders", createOrderHandler(deps.OrderSvc))
	authed.POST("/orders/", createOrderHandler(deps.OrderSvc))
	authed.GET("/orders", listOrdersHandler(deps.OrderSvc))
	authed.GET("/orders/", listOrdersHandler(deps.OrderSvc))
	authed.GET("/orders/:id", getOrderHandler(deps.OrderSvc))
	authed.PATCH("/orders/:id/status", setOrderStatusHandler(deps.OrderSvc))

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

const userCtxKey = "currentUser"

// authMiddleware resolves the bearer token into a user and aborts with
// 401 otherwise. Handlers behind it can rely on currentUser being set.
func authMiddleware(accounts accountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		user, err := accounts.LookupByToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		c.Set(userCtxKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}
