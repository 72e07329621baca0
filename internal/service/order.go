package service

import (
	"bitwise74/shop-api/internal/metrics"
	"bitwise74/shop-api/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEmptyCart = errors.New("cart is empty or products unavailable")

// PlacedItem is a cart row joined with its product at checkout time
type PlacedItem struct {
	CartID      uint   `json:"-"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       int64  `json:"price"`
}

type PlacedOrder struct {
	Order    model.Order
	Items    []PlacedItem
	Customer model.User
	// AdminEmail is empty when no admin account exists
	AdminEmail string
}

// PlaceOrder turns the available items of userID's cart into a pending order
// and empties the cart, all in one transaction. Unavailable products are left
// out of the order but still removed from the cart.
func PlaceOrder(ctx context.Context, db *gorm.DB, userID uint) (*PlacedOrder, error) {
	var out PlacedOrder

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Table("carts").
			Select("carts.id AS cart_id, carts.product_id, products.name AS product_name, carts.quantity, products.price").
			Joins("JOIN products ON products.id = carts.product_id").
			Where("carts.user_id = ? AND products.is_available = ?", userID, true).
			Order("carts.id")

		// Two concurrent checkouts of the same cart serialize here; the second
		// one finds the cart already emptied
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "carts"}})
		}

		if err := q.Scan(&out.Items).Error; err != nil {
			return err
		}

		if len(out.Items) == 0 {
			return ErrEmptyCart
		}

		if err := tx.First(&out.Customer, userID).Error; err != nil {
			return err
		}

		var total int64
		for _, it := range out.Items {
			total += it.Price * int64(it.Quantity)
		}

		out.Order = model.Order{
			UserID:     userID,
			TotalPrice: total,
			Status:     model.OrderPending,
		}
		if err := tx.Create(&out.Order).Error; err != nil {
			return err
		}

		items := make([]model.OrderItem, len(out.Items))
		for i, it := range out.Items {
			items[i] = model.OrderItem{
				OrderID:   out.Order.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
			}
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&model.Cart{}).Error; err != nil {
			return err
		}

		var emails []string
		err := tx.Model(&model.User{}).
			Where("role_id = ?", model.RoleAdmin).
			Order("id").
			Limit(1).
			Pluck("email", &emails).
			Error
		if err != nil {
			return err
		}

		if len(emails) > 0 {
			out.AdminEmail = emails[0]
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordOrderPlaced()
	return &out, nil
}

// OrderItems returns the items of orderID with their product names
func OrderItems(db *gorm.DB, orderID uint) ([]PlacedItem, error) {
	items := []PlacedItem{}
	err := db.Table("order_items").
		Select("order_items.product_id, products.name AS product_name, order_items.quantity, order_items.price").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ?", orderID).
		Order("order_items.id").
		Scan(&items).
		Error

	return items, err
}
