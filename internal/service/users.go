package service

import (
	"bitwise74/shop-api/internal/model"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Hasher turns a plain password into its stored form
type Hasher interface {
	Hash(p string) (string, error)
}

// DeleteUsers removes the users in ids together with their order items,
// orders, cart rows and verification codes, children first. Run it inside a
// transaction.
func DeleteUsers(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	orders := tx.Model(&model.Order{}).Select("id").Where("user_id IN ?", ids)

	if err := tx.Where("order_id IN (?)", orders).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}

	if err := tx.Where("user_id IN ?", ids).Delete(&model.Order{}).Error; err != nil {
		return err
	}

	if err := tx.Where("user_id IN ?", ids).Delete(&model.Cart{}).Error; err != nil {
		return err
	}

	if err := tx.Where("user_id IN ?", ids).Delete(&model.VerificationCode{}).Error; err != nil {
		return err
	}

	return tx.Where("id IN ?", ids).Delete(&model.User{}).Error
}

// IsAdmin reads the role of userID. A missing user is not an admin.
func IsAdmin(tx *gorm.DB, userID uint) (bool, error) {
	var user model.User
	err := tx.Select("id", "role_id").
		Where("id = ?", userID).
		Limit(1).
		Find(&user).
		Error

	return user.IsAdmin(), err
}

// EnsureAdmin makes the account with email a verified admin. A missing account
// is created with password, an existing one keeps its password unless a new
// one is given. It reports whether the account was created.
func EnsureAdmin(ctx context.Context, db *gorm.DB, h Hasher, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var created bool

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		changes := map[string]any{
			"role_id":     model.RoleAdmin,
			"is_verified": true,
		}

		if password != "" {
			hash, err := h.Hash(password)
			if err != nil {
				return err
			}
			changes["hashed_password"] = hash
		}

		var user model.User
		err := tx.Where("email = ?", email).First(&user).Error
		if err == nil {
			return tx.Model(&user).Updates(changes).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if password == "" {
			return errors.New("a password is required to create a new admin")
		}

		user = model.User{
			Email:          email,
			RoleID:         model.RoleAdmin,
			HashedPassword: changes["hashed_password"].(string),
			Username:       strings.SplitN(email, "@", 2)[0],
			IsVerified:     true,
		}
		created = true
		return tx.Create(&user).Error
	})

	return created, err
}
