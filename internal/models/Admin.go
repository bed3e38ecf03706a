package models

import "gorm.io/gorm"

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

type Admin struct {
	gorm.Model
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	FullName     string `json:"full_name"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"` // "admin", "superadmin"
}
