package order

import (
	"time"

	"waste-logistics/models/client"
)

// Order represents a single waste-collection request. An order is never
// physically deleted; it only moves through the status machine in enums.go
// until it reaches a terminal state.
type Order struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteID uint `gorm:"not null;index" json:"site_id"`

	// Foreign key for client (supplier) relationship
	ClientID *uint          `gorm:"index" json:"client_id,omitempty"`
	Client   *client.Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	WasteType   string  `gorm:"type:varchar(100);not null" json:"waste_type"`
	Description string  `gorm:"type:text" json:"description"`
	Address     string  `gorm:"type:text;not null" json:"address"`
	City        *string `gorm:"type:varchar(255)" json:"city,omitempty"`

	// Geocoder output; stays null when the lookup fails (best-effort).
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Priority          OrderPriority `gorm:"type:varchar(20);not null;default:'normal'" json:"priority"`
	Status            OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	EstimatedWeightKg *float64      `json:"estimated_weight_kg,omitempty"`
	SLADeadline       *time.Time    `gorm:"column:sla_deadline" json:"sla_deadline,omitempty"`

	// RouteID is non-null iff an active stop references this order.
	RouteID *uint `gorm:"index" json:"route_id,omitempty"`

	ApprovedBy *string    `gorm:"type:varchar(255)" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`

	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	ActualWeightKg     *float64   `json:"actual_weight_kg,omitempty"`
	FailureReason      *string    `gorm:"type:text" json:"failure_reason,omitempty"`
	CancellationReason *string    `gorm:"type:text" json:"cancellation_reason,omitempty"`

	CreatedBy string     `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
