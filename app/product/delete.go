package product

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/service"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func ProductDelete(c *gin.Context, d *internal.Deps) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	var keys []string
	var found bool

	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Table("products").Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		found = true

		var err error
		keys, err = service.DeleteProducts(tx, func(db *gorm.DB) *gorm.DB {
			return db.Where("id = ?", id)
		})
		return err
	})
	if err != nil {
		if errors.Is(err, service.ErrProductOrdered) {
			util.Abort(c, http.StatusConflict, "Product appears in orders and can't be deleted")
			return
		}

		util.Internal(c, err, "Failed to delete product")
		return
	}

	if !found {
		util.Abort(c, http.StatusNotFound, "Product not found")
		return
	}

	d.RemoveImages(c.Request.Context(), keys)

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Product deleted",
	})
}
