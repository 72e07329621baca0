// Package auth contains the registration, login, token and email
// verification endpoints
package auth

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/internal/service"
	"bitwise74/shop-api/pkg/security"
	"bitwise74/shop-api/pkg/util"
	"bitwise74/shop-api/pkg/validators"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errEmailTaken = errors.New("email already registered")

type registerBody struct {
	Email     string `json:"email"`
	Username  string `json:"username" validate:"required,max=64"`
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" validate:"required,max=64"`
	Password  string `json:"password"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		util.Abort(c, http.StatusBadRequest, "Malformed or invalid JSON request body")
		return
	}

	data.Email = strings.ToLower(strings.TrimSpace(data.Email))

	if err := validators.EmailValidator(data.Email); err != nil {
		zap.L().Debug("Invalid email", zap.Error(err), zap.String("requestID", requestID))
		util.Abort(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		zap.L().Debug("Invalid password", zap.Error(err), zap.String("requestID", requestID))
		util.Abort(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validators.Struct(data); err != nil {
		util.Abort(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := d.Argon.Hash(data.Password)
	if err != nil {
		util.Internal(c, err, "Failed to hash password")
		return
	}

	code, err := security.NewVerificationCode()
	if err != nil {
		util.Internal(c, err, "Failed to generate verification code")
		return
	}

	user := model.User{
		Email:          data.Email,
		RoleID:         model.RoleUser,
		HashedPassword: hash,
		Username:       data.Username,
		FirstName:      data.FirstName,
		LastName:       data.LastName,
	}

	err = d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var found bool

		err := tx.Model(&model.User{}).
			Select("count(*) > 0").
			Where("email = ?", data.Email).
			Find(&found).
			Error
		if err != nil {
			return err
		}

		if found {
			return errEmailTaken
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		return tx.Create(&model.VerificationCode{UserID: user.ID, Code: code}).Error
	})
	if err != nil {
		if errors.Is(err, errEmailTaken) || errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Abort(c, http.StatusConflict, "This email is already registered. Please login or use a different email")
			return
		}

		util.Internal(c, err, "Failed to create user")
		return
	}

	d.Notifier.Dispatch(c.Request.Context(), service.VerificationMail(user.Email, code))

	c.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}
