package service

import (
	"bitwise74/shop-api/internal/model"
	"fmt"
	"strings"
)

func VerificationMail(to string, code int) Notification {
	return Notification{
		To:      to,
		Subject: "Verify your email",
		Body:    fmt.Sprintf("Your verification code is %06d.\n\nEnter it in the app to activate your account.", code),
	}
}

// NewOrderMail tells an admin that customer placed o. items must carry product names.
func NewOrderMail(to string, customer *model.User, o *model.Order, items []PlacedItem) Notification {
	var b strings.Builder

	fmt.Fprintf(&b, "Order #%d was placed by %s (%s).\n\n", o.ID, customer.Username, customer.Email)
	for _, it := range items {
		fmt.Fprintf(&b, "  %d x %s @ %d\n", it.Quantity, it.ProductName, it.Price)
	}
	fmt.Fprintf(&b, "\nTotal: %d\nStatus: %s\n", o.TotalPrice, o.Status)

	return Notification{
		To:      to,
		Subject: fmt.Sprintf("New order #%d", o.ID),
		Body:    b.String(),
	}
}
