package site

import (
	"time"
)

// Site represents one operating site (depot) of the waste operator.
// Every core entity and every core operation is scoped to a site.
type Site struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Code     string  `gorm:"type:varchar(20);not null;unique" json:"code"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name"`
	Address  string  `gorm:"type:text" json:"address"`
	City     *string `gorm:"type:varchar(255)" json:"city,omitempty"`
	IsActive bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
