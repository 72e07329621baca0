package middleware

import (
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/security"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Auth guards routes with bearer access tokens
type Auth struct {
	tokens *security.Tokens
	db     *gorm.DB
}

func NewAuth(tokens *security.Tokens, db *gorm.DB) *Auth {
	return &Auth{tokens: tokens, db: db}
}

// RequireUser accepts any valid access token and stores the user ID as userID
func (a *Auth) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := a.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireAdmin additionally reads the role from the database on every request,
// so a demoted admin loses access immediately
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := a.authenticate(c)
		if !ok {
			return
		}

		var user model.User
		err := a.db.WithContext(c.Request.Context()).
			Select("id", "role_id").
			Where("id = ?", userID).
			Limit(1).
			Find(&user).
			Error
		if err != nil {
			util.Internal(c, err, "Failed to read user role")
			return
		}

		if user.ID == 0 {
			unauthorized(c, "User not found")
			return
		}

		if !user.IsAdmin() {
			util.Abort(c, http.StatusForbidden, "Admin privileges required")
			return
		}

		c.Next()
	}
}

func (a *Auth) authenticate(c *gin.Context) (uint, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		unauthorized(c, "Not authenticated")
		return 0, false
	}

	claims, err := a.tokens.Verify(token, security.AccessToken)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			unauthorized(c, "Token expired")
			return 0, false
		}

		unauthorized(c, "Invalid token")
		return 0, false
	}

	userID, _ := claims.UserID()
	c.Set("userID", userID)

	return userID, true
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	util.Abort(c, http.StatusUnauthorized, msg)
}
