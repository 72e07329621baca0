package auth

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// loginBody also accepts the OAuth2 password form, where the email travels
// in the username field
type loginBody struct {
	Email    string `json:"email" form:"username"`
	Password string `json:"password" form:"password"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	var data loginBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" || data.Password == "" {
		util.Abort(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	var user model.User
	err := d.DB.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(strings.TrimSpace(data.Email))).
		Select("id", "hashed_password").
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Abort(c, http.StatusUnauthorized, "Incorrect email or password")
			return
		}

		util.Internal(c, err, "Failed to look up user")
		return
	}

	ok, err := d.Argon.Verify(data.Password, user.HashedPassword)
	if err != nil {
		util.Internal(c, err, "Failed to verify password hash")
		return
	}

	if !ok {
		util.Abort(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	pair, err := d.Tokens.Pair(user.ID)
	if err != nil {
		util.Internal(c, err, "Failed to sign tokens")
		return
	}

	c.JSON(http.StatusOK, pair)
}
