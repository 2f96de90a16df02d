package route_event

import (
	routeModel "waste-logistics/models/route"

	"gorm.io/gorm"
)

// Snapshot writes the route's current status into route_status_events with
// the given event type, inside the caller's transaction.
func Snapshot(tx *gorm.DB, rt *routeModel.Route, eventType string, createdBy string) error {
	ev := routeModel.RouteStatusEvent{
		RouteID:   rt.ID,
		Status:    rt.Status,
		EventType: eventType,
		CreatedBy: createdBy,
	}
	return tx.Create(&ev).Error
}
