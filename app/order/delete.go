package order

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func OrderDelete(c *gin.Context, d *internal.Deps) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	var deleted int64

	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Order{})
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		util.Internal(c, err, "Failed to delete order")
		return
	}

	if deleted == 0 {
		util.Abort(c, http.StatusNotFound, "Order not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Order deleted",
	})
}
