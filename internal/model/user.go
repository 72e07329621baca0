package model

import "time"

type User struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	RoleID         uint      `gorm:"not null" json:"role_id"`
	HashedPassword string    `gorm:"not null" json:"-"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Phone          string    `json:"phone"`
	IsVerified     bool      `gorm:"not null" json:"is_verified"`
	CreatedAt      time.Time `json:"created_at"`

	Role Role `gorm:"foreignKey:RoleID" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}
