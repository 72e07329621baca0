package cart

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CartDeleteItem removes one row of the caller's cart. Rows of other users
// look the same as missing ones.
func CartDeleteItem(c *gin.Context, d *internal.Deps) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	res := d.DB.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, util.UserID(c)).
		Delete(&model.Cart{})
	if res.Error != nil {
		util.Internal(c, res.Error, "Failed to delete cart item")
		return
	}

	if res.RowsAffected == 0 {
		util.Abort(c, http.StatusNotFound, "Cart item not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Item removed from cart",
	})
}

func CartClear(c *gin.Context, d *internal.Deps) {
	res := d.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", util.UserID(c)).
		Delete(&model.Cart{})
	if res.Error != nil {
		util.Internal(c, res.Error, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"removed": res.RowsAffected,
	})
}
