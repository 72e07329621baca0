package model

// VerificationCode is the 6 digit code mailed to a freshly registered user.
// It lives until the user verifies or is purged.
type VerificationCode struct {
	ID     uint `gorm:"primaryKey;autoIncrement"`
	UserID uint `gorm:"index;not null"`
	Code   int  `gorm:"not null"`

	User User `gorm:"foreignKey:UserID"`
}
