package user

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/internal/service"
	"bitwise74/shop-api/pkg/util"
	"bitwise74/shop-api/pkg/validators"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	errForbidden  = errors.New("not allowed to edit this user")
	errEmailTaken = errors.New("email already registered")
)

// Role and password are not part of the body on purpose
type updateBody struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

func (b *updateBody) complete() bool {
	return b.Email != nil && b.Username != nil && b.FirstName != nil && b.LastName != nil && b.Phone != nil
}

func (b *updateBody) changes() map[string]any {
	m := map[string]any{}
	if b.Email != nil {
		m["email"] = *b.Email
	}
	if b.Username != nil {
		m["username"] = *b.Username
	}
	if b.FirstName != nil {
		m["first_name"] = *b.FirstName
	}
	if b.LastName != nil {
		m["last_name"] = *b.LastName
	}
	if b.Phone != nil {
		m["phone"] = *b.Phone
	}
	return m
}

// UserReplace handles PUT, allowed for the user themself or an admin
func UserReplace(c *gin.Context, d *internal.Deps) {
	userUpdate(c, d, true)
}

func UserPatch(c *gin.Context, d *internal.Deps) {
	userUpdate(c, d, false)
}

func userUpdate(c *gin.Context, d *internal.Deps, full bool) {
	id, ok := util.ParamID(c, "id")
	if !ok {
		return
	}

	var data updateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		util.Abort(c, http.StatusBadRequest, "Malformed or invalid JSON request body")
		return
	}

	if full && !data.complete() {
		util.Abort(c, http.StatusBadRequest, "email, username, first_name, last_name and phone are required")
		return
	}

	if data.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*data.Email))
		if err := validators.EmailValidator(e); err != nil {
			util.Abort(c, http.StatusBadRequest, err.Error())
			return
		}
		data.Email = &e
	}

	changes := data.changes()
	if len(changes) == 0 {
		util.Abort(c, http.StatusBadRequest, "No fields to update")
		return
	}

	callerID := util.UserID(c)
	var user model.User

	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if callerID != id {
			admin, err := service.IsAdmin(tx, callerID)
			if err != nil {
				return err
			}
			if !admin {
				return errForbidden
			}
		}

		if err := tx.First(&user, id).Error; err != nil {
			return err
		}

		if data.Email != nil && *data.Email != user.Email {
			var n int64
			if err := tx.Model(&model.User{}).Where("email = ? AND id <> ?", *data.Email, id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return errEmailTaken
			}
		}

		if err := tx.Model(&user).Updates(changes).Error; err != nil {
			return err
		}

		return tx.First(&user, id).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, errForbidden):
			util.Abort(c, http.StatusForbidden, "You can only edit your own account")
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.Abort(c, http.StatusNotFound, "User not found")
		case errors.Is(err, errEmailTaken), errors.Is(err, gorm.ErrDuplicatedKey):
			util.Abort(c, http.StatusConflict, "This email is already registered")
		default:
			util.Internal(c, err, "Failed to update user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"data":   user,
	})
}
