package model

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Price       int64   `gorm:"not null" json:"price"`
	CategoryID  uint    `gorm:"index;not null" json:"category_id"`
	Description string  `json:"description"`
	IsAvailable bool    `gorm:"not null" json:"is_available"`
	ImageKey    *string `json:"image_key"`

	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}
