package vehicle

import (
	"time"
)

// Vehicle represents a collection truck that can be assigned to routes.
type Vehicle struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteID uint `gorm:"not null;index" json:"site_id"`

	PlateNumber string   `gorm:"type:varchar(20);not null;unique" json:"plate_number"`
	Model       string   `gorm:"type:varchar(255)" json:"model"`
	CapacityKg  *float64 `json:"capacity_kg,omitempty"`
	IsActive    bool     `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
