package model

// All lists every table in migration order
func All() []any {
	return []any{
		&Role{},
		&User{},
		&VerificationCode{},
		&Category{},
		&Product{},
		&Cart{},
		&Order{},
		&OrderItem{},
	}
}
