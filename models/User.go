package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email" gorm:"uniqueIndex"`
	Password       string `json:"-"`
	SocialLogin    bool   `json:"socialLogin"`
	SocialProvider string `json:"socialProvider"`
	Role           string `json:"role" gorm:"type:varchar(20);default:user;index"` // user, admin, super_admin
}
