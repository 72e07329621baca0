// Package product contains the catalog product endpoints
package product

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/util"
	"bitwise74/shop-api/pkg/validators"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createBody struct {
	Name        string `json:"name" validate:"required,max=255"`
	Price       *int64 `json:"price" validate:"required,gte=0"`
	CategoryID  uint   `json:"category_id" validate:"required"`
	Description string `json:"description"`
	IsAvailable *bool  `json:"is_available"`
}

// ProductCreate leaves the category check to the foreign key
func ProductCreate(c *gin.Context, d *internal.Deps) {
	var data createBody
	if err := c.ShouldBindJSON(&data); err != nil {
		util.Abort(c, http.StatusBadRequest, "Malformed or invalid JSON request body")
		return
	}

	if err := validators.Struct(data); err != nil {
		util.Abort(c, http.StatusBadRequest, err.Error())
		return
	}

	product := model.Product{
		Name:        data.Name,
		Price:       *data.Price,
		CategoryID:  data.CategoryID,
		Description: data.Description,
		IsAvailable: data.IsAvailable == nil || *data.IsAvailable,
	}

	if err := d.DB.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			util.Abort(c, http.StatusNotFound, fmt.Sprintf("Category with id %d not found", data.CategoryID))
			return
		}

		util.Internal(c, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      true,
		"new_product": product,
	})
}
