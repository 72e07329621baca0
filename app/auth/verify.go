package auth

import (
	"bitwise74/shop-api/internal"
	"bitwise74/shop-api/internal/model"
	"bitwise74/shop-api/pkg/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errNoCode = errors.New("no verification code")

type verifyBody struct {
	VerificationCode int `json:"verification_code" binding:"required"`
}

// UserVerify checks the code mailed at registration. A wrong code keeps the
// pending code so the user can try again.
func UserVerify(c *gin.Context, d *internal.Deps) {
	userID := util.UserID(c)

	var data verifyBody
	if err := c.ShouldBindJSON(&data); err != nil {
		util.Abort(c, http.StatusBadRequest, "verification_code is required")
		return
	}

	var matched bool

	err := d.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var code model.VerificationCode
		if err := tx.Where("user_id = ?", userID).First(&code).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNoCode
			}
			return err
		}

		if code.Code != data.VerificationCode {
			return nil
		}

		// a concurrent request may have consumed the code already
		r := tx.Delete(&code)
		if r.Error != nil {
			return r.Error
		}
		if r.RowsAffected == 0 {
			return errNoCode
		}

		if err := tx.Model(&model.User{}).Where("id = ?", userID).Update("is_verified", true).Error; err != nil {
			return err
		}

		matched = true
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoCode) {
			util.Abort(c, http.StatusNotFound, "No pending verification for this user")
			return
		}

		util.Internal(c, err, "Failed to verify user")
		return
	}

	if !matched {
		c.JSON(http.StatusOK, gin.H{
			"status":  false,
			"message": "Invalid verification code",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "User verified successfully",
	})
}
