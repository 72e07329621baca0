// Package category contains the catalog category endpoints
package category

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/util"
	"bitwise74/shop-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createBody struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func CategoryCreate(c *gin.Context, d *internal.Deps) {
	var data createBody
	if err := c.ShouldBindJSON(&data); err != nil {
		util.Abort(c, http.StatusBadRequest, "Malformed or invalid JSON request body")
		return
	}

	if err := validators.Struct(data); err != nil {
		util.Abort(c, http.StatusBadRequest, err.Error())
		return
	}

	category := model.Category{
		Name:        data.Name,
		Description: data.Description,
		IsActive:    data.IsActive == nil || *data.IsActive,
	}

	if err := d.DB.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
		util.Internal(c, err, "Failed to create category")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       true,
		"new_category": category,
	})
}
