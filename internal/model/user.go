package model

import (
	"time"
)

// swagger:model User
type User struct {
	BaseModel
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	IsDev     bool      `gorm:"default:false" json:"-"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
