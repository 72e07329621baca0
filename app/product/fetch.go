package product

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

// GET /products supports filter, search, sort_by, order, page and page_size
func ProductList(c *gin.Context, d *internal.Deps) {
	p, ok := util.BindList(c)
	if !ok {
		return
	}

	products, err := query.Find[model.Product](d.DB.WithContext(c.Request.Context()), d.Lists.Products, p, d.Lists.Limits)
	if err != nil {
		util.AbortList(c, err, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": products})
}

func ProductFetch(c *gin.Context, d *internal.Deps) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	var product model.Product
	if err := d.DB.WithContext(c.Request.Context()).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Abort(c, http.StatusNotFound, "Product not found")
			return
		}

		util.Internal(c, err, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, product)
}
