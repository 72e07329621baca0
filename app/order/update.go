package order

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errTransition = errors.New("status transition not allowed")

// Only the status of an order can change, prices are fixed at checkout
type updateBody struct {
	Status *string `json:"status"`
}

func OrderReplace(c *gin.Context, d *internal.Deps) {
	orderUpdate(c, d, true)
}

func OrderPatch(c *gin.Context, d *internal.Deps) {
	orderUpdate(c, d, false)
}

func orderUpdate(c *gin.Context, d *internal.Deps, full bool) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	var data updateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		util.Abort(c, http.StatusBadRequest, "Malformed or invalid JSON request body")
		return
	}

	if data.Status == nil {
		if full {
			util.Abort(c, http.StatusBadRequest, "status is required")
		} else {
			util.Abort(c, http.StatusBadRequest, "No fields to update")
		}
		return
	}

	status := *data.Status
	if !model.ValidOrderStatus(status) {
		util.Abort(c, http.StatusBadRequest, fmt.Sprintf("Unknown order status %q", status))
		return
	}

	var o model.Order
	var from string

	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&o, id).Error; err != nil {
			return err
		}

		from = o.Status
		if !model.CanTransition(from, status) {
			return errTransition
		}

		if from == status {
			return nil
		}

		if err := tx.Model(&o).Update("status", status).Error; err != nil {
			return err
		}

		o.Status = status
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.Abort(c, http.StatusNotFound, "Order not found")
		case errors.Is(err, errTransition):
			util.Abort(c, http.StatusBadRequest, fmt.Sprintf("Order can't move from %s to %s", from, status))
		default:
			util.Internal(c, err, "Failed to update order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"data":   o,
	})
}
