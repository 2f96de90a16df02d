package route

import (
	"fmt"
)

// RouteCreateRequest represents the request payload for creating a route (draft)
type RouteCreateRequest struct {
	SiteID        uint    `json:"site_id"`
	VehicleID     *uint   `json:"vehicle_id,omitempty"`
	DriverID      *uint   `json:"driver_id,omitempty"`
	ScheduledDate string  `json:"scheduled_date"`           // 2006-01-02
	DepartureTime *string `json:"departure_time,omitempty"` // 15:04
}

func (r RouteCreateRequest) Validate() error {
	if r.SiteID == 0 {
		return fmt.Errorf("site_id is required")
	}
	if r.ScheduledDate == "" {
		return fmt.Errorf("scheduled_date is required")
	}
	return nil
}

type AddStopRequest struct {
	RouteID  uint `json:"route_id"`
	OrderID  uint `json:"order_id"`
	Position int  `json:"position"`
}

func (r AddStopRequest) Validate() error {
	if r.RouteID == 0 {
		return fmt.Errorf("route_id is required")
	}
	if r.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if r.Position <= 0 {
		return fmt.Errorf("position must be a positive integer")
	}
	return nil
}

type RemoveStopRequest struct {
	StopID uint `json:"stop_id"`
}

func (r RemoveStopRequest) Validate() error {
	if r.StopID == 0 {
		return fmt.Errorf("stop_id is required")
	}
	return nil
}

type ReorderStopsRequest struct {
	RouteID        uint   `json:"route_id"`
	OrderedStopIDs []uint `json:"ordered_stop_ids"`
}

func (r ReorderStopsRequest) Validate() error {
	if r.RouteID == 0 {
		return fmt.Errorf("route_id is required")
	}
	if len(r.OrderedStopIDs) == 0 {
		return fmt.Errorf("ordered_stop_ids is required")
	}
	seen := make(map[uint]bool, len(r.OrderedStopIDs))
	for _, id := range r.OrderedStopIDs {
		if seen[id] {
			return fmt.Errorf("ordered_stop_ids contains duplicate id %d", id)
		}
		seen[id] = true
	}
	return nil
}

type ConfirmRouteRequest struct {
	RouteID uint `json:"route_id"`
}

func (r ConfirmRouteRequest) Validate() error {
	if r.RouteID == 0 {
		return fmt.Errorf("route_id is required")
	}
	return nil
}

// UpdateAssignmentRequest mutates vehicle/driver/date/departure of a route
// that has not started executing yet.
type UpdateAssignmentRequest struct {
	RouteID       uint    `json:"route_id"`
	VehicleID     *uint   `json:"vehicle_id,omitempty"`
	DriverID      *uint   `json:"driver_id,omitempty"`
	ScheduledDate *string `json:"scheduled_date,omitempty"`
	DepartureTime *string `json:"departure_time,omitempty"`
}

func (r UpdateAssignmentRequest) Validate() error {
	if r.RouteID == 0 {
		return fmt.Errorf("route_id is required")
	}
	if r.VehicleID == nil && r.DriverID == nil && r.ScheduledDate == nil && r.DepartureTime == nil {
		return fmt.Errorf("at least one assignment field is required")
	}
	return nil
}
