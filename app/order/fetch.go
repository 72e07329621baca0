package order

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/internal/service"
	"bitwise74/shop-api/pkg/query"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OrderList accepts an exact total_price on top of the usual list parameters
func OrderList(c *gin.Context, d *internal.Deps) {
	p, ok := util.BindList(c)
	if !ok {
		return
	}

	db := d.DB.WithContext(c.Request.Context())

	if raw, ok := c.GetQuery("total_price"); ok {
		total, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			util.Abort(c, http.StatusBadRequest, "Invalid total_price")
			return
		}
		db = db.Where("total_price = ?", total)
	}

	orders, err := query.Find[model.Order](db, d.Lists.Orders, p, d.Lists.Limits)
	if err != nil {
		util.AbortList(c, err, "Failed to list orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

// OrderFetch answers the owner of the order or an admin. Anyone else gets 404.
func OrderFetch(c *gin.Context, d *internal.Deps) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	userID := util.UserID(c)
	db := d.DB.WithContext(c.Request.Context())

	var o view
	if err := db.First(&o.Order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Abort(c, http.StatusNotFound, "Order not found")
			return
		}

		util.Internal(c, err, "Failed to fetch order")
		return
	}

	if o.UserID != userID {
		admin, err := service.IsAdmin(db, userID)
		if err != nil {
			util.Internal(c, err, "Failed to read user role")
			return
		}
		if !admin {
			util.Abort(c, http.StatusNotFound, "Order not found")
			return
		}
	}

	items, err := service.OrderItems(db, o.ID)
	if err != nil {
		util.Internal(c, err, "Failed to fetch order items")
		return
	}
	o.Items = items

	c.JSON(http.StatusOK, o)
}
