// Package cart contains the shopping cart endpoints of the current user
package cart

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/util"
	"bitwise74/shop-api/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errUnavailable = errors.New("product not found or unavailable")

type addBody struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// CartAdd puts a product in the cart. Adding a product that is already there
// increases its quantity.
func CartAdd(c *gin.Context, d *internal.Deps) {
	var data addBody
	if err := c.ShouldBindJSON(&data); err != nil {
		util.Abort(c, http.StatusBadRequest, "Malformed or invalid JSON request body")
		return
	}

	if err := validators.Struct(data); err != nil {
		util.Abort(c, http.StatusBadRequest, err.Error())
		return
	}

	userID := util.UserID(c)
	var item model.Cart

	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var n int64
		err := tx.Model(&model.Product{}).
			Where("id = ? AND is_available = ?", data.ProductID, true).
			Count(&n).
			Error
		if err != nil {
			return err
		}
		if n == 0 {
			return errUnavailable
		}

		row := model.Cart{UserID: userID, ProductID: data.ProductID, Quantity: data.Quantity}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("carts.quantity + excluded.quantity"),
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		return tx.Where("user_id = ? AND product_id = ?", userID, data.ProductID).First(&item).Error
	})
	if err != nil {
		if errors.Is(err, errUnavailable) {
			util.Abort(c, http.StatusNotFound, "Product not found or unavailable")
			return
		}

		util.Internal(c, err, "Failed to add product to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    true,
		"cart_item": item,
	})
}
