package service

import (
	"bitwise74/shop-api/internal/model"
	"errors"

	"gorm.io/gorm"
)

var ErrProductOrdered = errors.New("product is referenced by an order")

// DeleteProducts removes the products matched by scope together with the cart
// rows pointing at them and returns their image keys for cleanup. Products
// that already appear in an order are kept and ErrProductOrdered is returned.
// Run it inside a transaction.
func DeleteProducts(tx *gorm.DB, scope func(*gorm.DB) *gorm.DB) ([]string, error) {
	var products []model.Product
	if err := tx.Scopes(scope).Select("id", "image_key").Find(&products).Error; err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(products))
	var keys []string
	for i, p := range products {
		ids[i] = p.ID
		if p.ImageKey != nil {
			keys = append(keys, *p.ImageKey)
		}
	}

	var ordered int64
	if err := tx.Model(&model.OrderItem{}).Where("product_id IN ?", ids).Count(&ordered).Error; err != nil {
		return nil, err
	}

	if ordered > 0 {
		return nil, ErrProductOrdered
	}

	if err := tx.Where("product_id IN ?", ids).Delete(&model.Cart{}).Error; err != nil {
		return nil, err
	}

	if err := tx.Where("id IN ?", ids).Delete(&model.Product{}).Error; err != nil {
		return nil, err
	}

	return keys, nil
}
