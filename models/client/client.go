package client

import (
	"time"
)

// Client represents a waste supplier whose collection requests enter the
// planning pool. AvgQualityIndex is the historical quality of material
// received from this client on a 0-5 scale; the scoring engine treats a
// missing value as 2.5.
type Client struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteID uint `gorm:"not null;index" json:"site_id"`

	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	ContactPhone  *string `gorm:"type:varchar(20)" json:"contact_phone,omitempty"`
	Address       string  `gorm:"type:text" json:"address"`
	City          *string `gorm:"type:varchar(255)" json:"city,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`

	AvgQualityIndex *float64 `gorm:"type:decimal(3,2)" json:"avg_quality_index,omitempty"`
	IsActive        bool     `gorm:"default:true" json:"is_active"`

	CreatedBy string     `gorm:"type:varchar(255)" json:"created_by,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
