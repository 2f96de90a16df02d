package route

import (
	"time"

	"waste-logistics/models/order"
)

// Stop binds exactly one order to exactly one position within exactly one
// route. Position values are unique per route (enforced by a composite
// unique index) and define the visiting order. A stop is deleted only while
// the owning route is still draft/confirmed and the stop itself is pending,
// which also reverts the linked order to pending.
type Stop struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	RouteID uint `gorm:"not null;uniqueIndex:idx_stops_route_position" json:"route_id"`

	// Foreign key for order relationship
	OrderID uint         `gorm:"not null;index" json:"order_id"`
	Order   *order.Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`

	Position int        `gorm:"not null;uniqueIndex:idx_stops_route_position" json:"position"`
	Status   StopStatus `gorm:"type:varchar(20);not null" json:"status"`

	EstimatedArrival *time.Time `json:"estimated_arrival,omitempty"`
	ActualArrival    *time.Time `json:"actual_arrival,omitempty"`
	ActualDeparture  *time.Time `json:"actual_departure,omitempty"`
	ActualWeightKg   *float64   `json:"actual_weight_kg,omitempty"`

	Notes         *string `gorm:"type:text" json:"notes,omitempty"`
	FailureReason *string `gorm:"type:text" json:"failure_reason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
