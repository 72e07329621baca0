// Package order contains the checkout and order management endpoints
package order

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/internal/service"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// view is an order together with its items and their product names
type view struct {
	model.Order
	Items []service.PlacedItem `json:"items"`
}

// OrderCreate checks out the caller's cart and notifies an admin
func OrderCreate(c *gin.Context, d *internal.Deps) {
	requestID := util.RequestID(c)

	placed, err := service.PlaceOrder(c.Request.Context(), d.DB, util.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			util.Abort(c, http.StatusBadRequest, "Cart is empty or products unavailable")
			return
		}

		util.Internal(c, err, "Failed to place order")
		return
	}

	if placed.AdminEmail == "" {
		zap.L().Warn("No admin account to notify about new order", zap.Uint("order_id", placed.Order.ID), zap.String("requestID", requestID))
	} else {
		d.Notifier.Dispatch(c.Request.Context(), service.NewOrderMail(placed.AdminEmail, &placed.Customer, &placed.Order, placed.Items))
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    true,
		"new_order": view{Order: placed.Order, Items: placed.Items},
	})
}
