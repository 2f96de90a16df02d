package order_event

import (
	orderModel "waste-logistics/models/order"

	"gorm.io/gorm"
)

// Snapshot writes the order's current status into order_status_events with
// the given event type. Called inside the same transaction as the status
// change itself so history and state commit together.
func Snapshot(tx *gorm.DB, o *orderModel.Order, eventType string, createdBy string) error {
	if err := tx.First(o, o.ID).Error; err != nil {
		return err
	}

	ev := orderModel.OrderStatusEvent{
		OrderID:   o.ID,
		Status:    o.Status,
		EventType: eventType,
		RouteID:   o.RouteID,
		CreatedBy: createdBy,
	}

	switch o.Status {
	case orderModel.OrderStatusFailed:
		ev.Reason = o.FailureReason
	case orderModel.OrderStatusCancelled:
		ev.Reason = o.CancellationReason
	}

	return tx.Create(&ev).Error
}
