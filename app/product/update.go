package product

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

var errNoCategory = errors.New("category not found")

type updateBody struct {
	Name        *string `json:"name"`
	Price       *int64  `json:"price"`
	CategoryID  *uint   `json:"category_id"`
	Description *string `json:"description"`
	IsAvailable *bool   `json:"is_available"`
}

func (b *updateBody) complete() bool {
	return b.Name != nil && b.Price != nil && b.CategoryID != nil && b.Description != nil && b.IsAvailable != nil
}

func (b *updateBody) changes() map[string]any {
	m := map[string]any{}
	if b.Name != nil {
		m["name"] = *b.Name
	}
	if b.Price != nil {
		m["price"] = *b.Price
	}
	if b.CategoryID != nil {
		m["category_id"] = *b.CategoryID
	}
	if b.Description != nil {
		m["description"] = *b.Description
	}
	if b.IsAvailable != nil {
		m["is_available"] = *b.IsAvailable
	}
	return m
}

// ProductReplace handles PUT and needs every field
func ProductReplace(c *gin.Context, d *internal.Deps) {
	productUpdate(c, d, true)
}

// ProductPatch handles PATCH and changes only the provided fields
func ProductPatch(c *gin.Context, d *internal.Deps) {
	productUpdate(c, d, false)
}

func productUpdate(c *gin.Context, d *internal.Deps, full bool) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	var data updateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		util.Abort(c, http.StatusBadRequest, "Malformed or invalid JSON request body")
		return
	}

	if full && !data.complete() {
		util.Abort(c, http.StatusBadRequest, "name, price, category_id, description and is_available are required")
		return
	}

	changes := data.changes()
	if len(changes) == 0 {
		util.Abort(c, http.StatusBadRequest, "No fields to update")
		return
	}

	if data.Name != nil && *data.Name == "" {
		util.Abort(c, http.StatusBadRequest, "Empty name")
		return
	}

	if data.Price != nil && *data.Price < 0 {
		util.Abort(c, http.StatusBadRequest, "Price can't be negative")
		return
	}

	var product model.Product

	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			return err
		}

		if data.CategoryID != nil {
			var n int64
			if err := tx.Model(&model.Category{}).Where("id = ?", *data.CategoryID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return errNoCategory
			}
		}

		if err := tx.Model(&product).Updates(changes).Error; err != nil {
			return err
		}

		return tx.First(&product, id).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, errNoCategory):
			util.Abort(c, http.StatusNotFound, fmt.Sprintf("Category with id %d not found", *data.CategoryID))
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.Abort(c, http.StatusNotFound, "Product not found")
		default:
			util.Internal(c, err, "Failed to update product")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"data":   product,
	})
}
