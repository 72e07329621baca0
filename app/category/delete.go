package category

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/internal/service"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryDelete removes the category and every product in it
func CategoryDelete(c *gin.Context, d *internal.Deps) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	var keys []string

	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model.Category{}, id).Error; err != nil {
			return err
		}

		var err error
		keys, err = service.DeleteProducts(tx, func(db *gorm.DB) *gorm.DB {
			return db.Where("category_id = ?", id)
		})
		if err != nil {
			return err
		}

		return tx.Delete(&model.Category{}, id).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.Abort(c, http.StatusNotFound, "Category not found")
		case errors.Is(err, service.ErrProductOrdered):
			util.Abort(c, http.StatusConflict, "Category has products that appear in orders")
		default:
			util.Internal(c, err, "Failed to delete category")
		}
		return
	}

	d.RemoveImages(c.Request.Context(), keys)

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Category deleted",
	})
}
