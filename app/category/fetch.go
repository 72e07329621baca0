package category

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/query"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GET /categories supports filter, search, sort_by, order, page and page_size
func CategoryList(c *gin.Context, d *internal.Deps) {
	p, ok := util.BindList(c)
	if !ok {
		return
	}

	categories, err := query.Find[model.Category](d.DB.WithContext(c.Request.Context()), d.Lists.Categories, p, d.Lists.Limits)
	if err != nil {
		util.AbortList(c, err, "Failed to list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func CategoryFetch(c *gin.Context, d *internal.Deps) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	var category model.Category
	if err := d.DB.WithContext(c.Request.Context()).First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Abort(c, http.StatusNotFound, "Category not found")
			return
		}

		util.Internal(c, err, "Failed to fetch category")
		return
	}

	c.JSON(http.StatusOK, category)
}
