// Package user contains the account endpoints
package user

import (
	"bitwise74/shop-api/app/cart"
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/query"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserMe returns the caller with their cart and orders
func UserMe(c *gin.Context, d *internal.Deps) {
	profile(c, d, util.UserID(c))
}

// profile answers with the user, their cart and their orders
func profile(c *gin.Context, d *internal.Deps, userID uint) {
	db := d.DB.WithContext(c.Request.Context())

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Abort(c, http.StatusNotFound, "User not found")
			return
		}

		util.Internal(c, err, "Failed to fetch user")
		return
	}

	lines, err := cart.Lines(db, userID)
	if err != nil {
		util.Internal(c, err, "Failed to fetch cart")
		return
	}

	orders := []model.Order{}
	if err := db.Where("user_id = ?", userID).Order("id").Find(&orders).Error; err != nil {
		util.Internal(c, err, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":   user,
		"cart":   lines,
		"orders": orders,
	})
}

func UserList(c *gin.Context, d *internal.Deps) {
	p, ok := util.BindList(c)
	if !ok {
		return
	}

	users, err := query.Find[model.User](d.DB.WithContext(c.Request.Context()), d.Lists.Users, p, d.Lists.Limits)
	if err != nil {
		util.AbortList(c, err, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users})
}

// UserFetch returns any user the same way UserMe does
func UserFetch(c *gin.Context, d *internal.Deps) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	profile(c, d, id)
}
