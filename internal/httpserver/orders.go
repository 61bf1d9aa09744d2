package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	ordersvc "storefront/internal/service/order"
)

type createOrderRequest struct {
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	Phone           string `json:"phone"`
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func createOrderHandler(orders orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		order, err := orders.Create(c.Request.Context(), currentUser(c).ID, req.DeliveryAddress, req.Phone)
		if err != nil {
			if errors.Is(err, ordersvc.ErrEmptyCart) {
				c.JSON(http.StatusBadRequest, gin.H{"detail": "Cart is empty"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

func listOrdersHandler(orders orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.List(c.Request.Context(), currentUser(c).ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func getOrderHandler(orders orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid order id"})
			return
		}
		order, err := orders.Get(c.Request.Context(), currentUser(c).ID, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"detail": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func setOrderStatusHandler(orders orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsSuperuser {
			c.JSON(http.StatusForbidden, gin.H{"detail": "Forbidden"})
			return
		}
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid order id"})
			return
		}
		var req setStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		order, err := orders.SetStatus(c.Request.Context(), id, domain.OrderStatus(req.Status))
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"detail": "Order not found"})
			case errors.Is(err, ordersvc.ErrInvalidTransition):
				c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
			}
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
