package models

import "gorm.io/gorm"

// Customer is owned by the auth collaborator. Checkout only needs the id,
// and the stored Address is never used as a silent fallback.
type Customer struct {
	gorm.Model
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" gorm:"size:191;uniqueIndex"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Password  string `json:"-"`
	Role      string `json:"role"`
}
