package driver

import (
	"time"
)

// Driver represents a field driver who can be assigned to routes.
type Driver struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteID uint `gorm:"not null;index" json:"site_id"`

	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	Phone         string  `gorm:"type:varchar(20);not null" json:"phone"`
	LicenseNumber *string `gorm:"type:varchar(50)" json:"license_number,omitempty"`
	IsActive      bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
