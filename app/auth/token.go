package auth

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/security"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshUser validates the refresh token from the query string or JSON body
// and makes sure its user still exists
func refreshUser(c *gin.Context, d *internal.Deps) (uint, bool) {
	token := c.Query("refresh_token")
	if token == "" {
		var data refreshBody
		_ = c.ShouldBindJSON(&data)
		token = data.RefreshToken
	}

	if token == "" {
		util.Abort(c, http.StatusUnauthorized, "Invalid token")
		return 0, false
	}

	claims, err := d.Tokens.Verify(token, security.RefreshToken)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			util.Abort(c, http.StatusUnauthorized, "Token expired")
			return 0, false
		}

		util.Abort(c, http.StatusUnauthorized, "Invalid token")
		return 0, false
	}

	userID, _ := claims.UserID()

	var n int64
	err = d.DB.WithContext(c.Request.Context()).
		Model(&model.User{}).
		Where("id = ?", userID).
		Count(&n).
		Error
	if err != nil {
		util.Internal(c, err, "Failed to check if user exists")
		return 0, false
	}

	if n == 0 {
		util.Abort(c, http.StatusUnauthorized, "User not found")
		return 0, false
	}

	return userID, true
}

// TokenAccess mints a new access token from a refresh token
func TokenAccess(c *gin.Context, d *internal.Deps) {
	userID, ok := refreshUser(c, d)
	if !ok {
		return
	}

	access, err := d.Tokens.Access(userID)
	if err != nil {
		util.Internal(c, err, "Failed to sign access token")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": access,
		"token_type":   "bearer",
	})
}

// TokenRefresh rotates both tokens
func TokenRefresh(c *gin.Context, d *internal.Deps) {
	userID, ok := refreshUser(c, d)
	if !ok {
		return
	}

	pair, err := d.Tokens.Pair(userID)
	if err != nil {
		util.Internal(c, err, "Failed to sign tokens")
		return
	}

	c.JSON(http.StatusOK, pair)
}
