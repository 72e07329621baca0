package category

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type updateBody struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (b *updateBody) changes() map[string]any {
	m := map[string]any{}
	if b.Name != nil {
		m["name"] = *b.Name
	}
	if b.Description != nil {
		m["description"] = *b.Description
	}
	if b.IsActive != nil {
		m["is_active"] = *b.IsActive
	}
	return m
}

// CategoryReplace handles PUT and needs every field
func CategoryReplace(c *gin.Context, d *internal.Deps) {
	categoryUpdate(c, d, true)
}

// CategoryPatch handles PATCH and changes only the provided fields
func CategoryPatch(c *gin.Context, d *internal.Deps) {
	categoryUpdate(c, d, false)
}

func categoryUpdate(c *gin.Context, d *internal.Deps, full bool) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	var data updateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		util.Abort(c, http.StatusBadRequest, "Malformed or invalid JSON request body")
		return
	}

	if full && (data.Name == nil || data.Description == nil || data.IsActive == nil) {
		util.Abort(c, http.StatusBadRequest, "name, description and is_active are required")
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

	var category model.Category

	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&category).Updates(changes).Error; err != nil {
			return err
		}

		return tx.First(&category, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Abort(c, http.StatusNotFound, "Category not found")
			return
		}

		util.Internal(c, err, "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"data":   category,
	})
}
