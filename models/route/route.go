package route

import (
	"time"

	"waste-logistics/models/driver"
	"waste-logistics/models/vehicle"
)

// Route represents one vehicle/driver/day work unit owning an ordered
// sequence of stops. Vehicle and driver stay null until the assignment is
// finalized; the route number is generated sequentially per site and day.
type Route struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteID uint `gorm:"not null;index;uniqueIndex:idx_routes_site_number" json:"site_id"`

	// RouteNumber is sequential per site and day, so uniqueness is scoped
	// to the site.
	RouteNumber string      `gorm:"type:varchar(30);not null;uniqueIndex:idx_routes_site_number" json:"route_number"`
	Status      RouteStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	VehicleID *uint            `gorm:"index" json:"vehicle_id,omitempty"`
	Vehicle   *vehicle.Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	DriverID  *uint            `gorm:"index" json:"driver_id,omitempty"`
	Driver    *driver.Driver   `gorm:"foreignKey:DriverID" json:"driver,omitempty"`

	ScheduledDate time.Time  `gorm:"not null;index" json:"scheduled_date"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	ConcludedAt   *time.Time `json:"concluded_at,omitempty"`

	Stops []Stop `gorm:"foreignKey:RouteID" json:"stops,omitempty"`

	CreatedBy string    `gorm:"type:varchar(255);not null" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
