// Package model defines database models
package model

const (
	RoleUser  uint = 1
	RoleAdmin uint = 2
)

type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
}

// Roles are seeded on startup and never change at runtime
var Roles = []Role{
	{ID: RoleUser, Name: "user"},
	{ID: RoleAdmin, Name: "admin"},
}
