package route

import (
	"time"
)

// RouteStatusEvent represents a status change event for a route
type RouteStatusEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for route relationship
	RouteID uint  `gorm:"not null;index" json:"route_id"`
	Route   Route `gorm:"foreignKey:RouteID" json:"route"`

	Status    RouteStatus `gorm:"type:varchar(20);not null" json:"status"`
	EventType string      `gorm:"type:varchar(50);not null" json:"event_type"`

	CreatedBy string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the RouteStatusEvent model
func (RouteStatusEvent) TableName() string {
	return "route_status_events"
}
