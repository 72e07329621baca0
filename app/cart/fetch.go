package cart

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/pkg/util"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Line is a cart row with the current product name and price
type Line struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
	IsAvailable bool   `json:"is_available"`
}

// Lines returns the cart of userID in insertion order
func Lines(db *gorm.DB, userID uint) ([]Line, error) {
	lines := []Line{}
	err := db.Table("carts").
		Select("carts.id, carts.product_id, products.name AS product_name, products.price, carts.quantity, products.is_available").
		Joins("JOIN products ON products.id = carts.product_id").
		Where("carts.user_id = ?", userID).
		Order("carts.id").
		Scan(&lines).
		Error

	return lines, err
}

func CartList(c *gin.Context, d *internal.Deps) {
	lines, err := Lines(d.DB.WithContext(c.Request.Context()), util.UserID(c))
	if err != nil {
		util.Internal(c, err, "Failed to fetch cart")
		return
	}

	var total int64
	for _, l := range lines {
		if l.IsAvailable {
			total += l.Price * int64(l.Quantity)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        lines,
		"total_price": total,
	})
}
