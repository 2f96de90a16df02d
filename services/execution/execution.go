package execution

import (
	"errors"
	"fmt"
	"time"

	"waste-logistics/errs"
	orderModel "waste-logistics/models/order"
	routeModel "waste-logistics/models/route"
	"waste-logistics/services/order_event"
	"waste-logistics/services/route_event"
	executionTypes "waste-logistics/types/execution"

	"gorm.io/gorm"
)

// Service drives the field-execution state machine: start route, arrive at
// stop, complete/fail/skip stop, conclude route, plus explicit order
// cancellation. Every event that touches a stop and its linked order writes
// both in one transaction, so a crash between the two writes cannot leave
// them disagreeing.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// StartRoute moves a confirmed route to on_execution and every planned
// order on it to on_route.
func (s *Service) StartRoute(req executionTypes.StartRouteRequest, createdBy string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var rt routeModel.Route
		if err := tx.First(&rt, req.RouteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("route", req.RouteID)
			}
			return err
		}
		if !routeModel.ValidTransition(rt.Status, routeModel.RouteStatusOnExecution) {
			return errs.InvalidTransition("route", rt.Status.String(), routeModel.RouteStatusOnExecution.String())
		}

		startedAt := time.Now()
		res := tx.Model(&routeModel.Route{}).
			Where("id = ? AND status = ?", rt.ID, rt.Status).
			Updates(map[string]interface{}{
				"status":     routeModel.RouteStatusOnExecution,
				"started_at": startedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Status changed between the read and the guarded write.
			return errs.InvalidTransition("route", rt.Status.String(), routeModel.RouteStatusOnExecution.String())
		}

		// The truck is rolling: planned orders become on_route until their
		// stop is reached.
		if err := tx.Model(&orderModel.Order{}).
			Where("route_id = ? AND status IN ?", rt.ID, orderModel.TransitionSources(orderModel.OrderStatusOnRoute)).
			Update("status", orderModel.OrderStatusOnRoute).Error; err != nil {
			return err
		}

		rt.Status = routeModel.RouteStatusOnExecution
		rt.StartedAt = &startedAt
		return route_event.Snapshot(tx, &rt, "route_started", createdBy)
	})
}

// ConcludeRoute moves an on_execution route to completed. Rejected with a
// stops-pending error unless every stop has reached a terminal state.
func (s *Service) ConcludeRoute(req executionTypes.ConcludeRouteRequest, createdBy string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var rt routeModel.Route
		if err := tx.First(&rt, req.RouteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("route", req.RouteID)
			}
			return err
		}
		if !routeModel.ValidTransition(rt.Status, routeModel.RouteStatusCompleted) {
			return errs.InvalidTransition("route", rt.Status.String(), routeModel.RouteStatusCompleted.String())
		}

		var open int64
		if err := tx.Model(&routeModel.Stop{}).
			Where("route_id = ? AND status NOT IN ?", req.RouteID, routeModel.TerminalStopStatuses()).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return fmt.Errorf("route %s still has %d non-terminal stop(s): %w", rt.RouteNumber, open, errs.ErrStopsPending)
		}

		concludedAt := time.Now()
		res := tx.Model(&routeModel.Route{}).
			Where("id = ? AND status = ?", rt.ID, rt.Status).
			Updates(map[string]interface{}{
				"status":       routeModel.RouteStatusCompleted,
				"concluded_at": concludedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.InvalidTransition("route", rt.Status.String(), routeModel.RouteStatusCompleted.String())
		}

		rt.Status = routeModel.RouteStatusCompleted
		return route_event.Snapshot(tx, &rt, "route_concluded", createdBy)
	})
}

// Arrive records arrival at a stop: stop pending -> at_client, order ->
// at_client, actual_arrival = now.
func (s *Service) Arrive(req executionTypes.ArriveRequest, createdBy string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		stop, err := s.loadStopForEvent(tx, req.StopID)
		if err != nil {
			return err
		}
		if !routeModel.ValidStopTransition(stop.Status, routeModel.StopStatusAtClient) {
			return errs.InvalidTransition("stop", stop.Status.String(), routeModel.StopStatusAtClient.String())
		}

		res := tx.Model(&routeModel.Stop{}).
			Where("id = ? AND status = ?", stop.ID, stop.Status).
			Updates(map[string]interface{}{
				"status":         routeModel.StopStatusAtClient,
				"actual_arrival": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.InvalidTransition("stop", stop.Status.String(), routeModel.StopStatusAtClient.String())
		}

		// A stop added mid-execution may still carry a planned order, so the
		// guard covers every status the table lets reach at_client.
		res = tx.Model(&orderModel.Order{}).
			Where("id = ? AND status IN ?", stop.OrderID, orderModel.TransitionSources(orderModel.OrderStatusAtClient)).
			Update("status", orderModel.OrderStatusAtClient)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d out of sync with its stop", stop.OrderID)
		}

		ord := orderModel.Order{ID: stop.OrderID}
		return order_event.Snapshot(tx, &ord, "stop_arrived", createdBy)
	})
}

// Complete finishes a stop the driver has arrived at, recording the actual
// collected weight. Propagates completion into the order.
func (s *Service) Complete(req executionTypes.CompleteStopRequest, createdBy string) error {
	if req.ActualWeightKg <= 0 {
		return errs.InvalidInput("actual_weight_kg must be greater than zero, got %v", req.ActualWeightKg)
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		stop, err := s.loadStopForEvent(tx, req.StopID)
		if err != nil {
			return err
		}
		if !routeModel.ValidStopTransition(stop.Status, routeModel.StopStatusCompleted) {
			return errs.InvalidTransition("stop", stop.Status.String(), routeModel.StopStatusCompleted.String())
		}

		completedAt := time.Now()
		updates := map[string]interface{}{
			"status":           routeModel.StopStatusCompleted,
			"actual_departure": completedAt,
			"actual_weight_kg": req.ActualWeightKg,
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}

		res := tx.Model(&routeModel.Stop{}).
			Where("id = ? AND status = ?", stop.ID, stop.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.InvalidTransition("stop", stop.Status.String(), routeModel.StopStatusCompleted.String())
		}

		// A terminal order no longer rides a route, so route_id clears with it.
		res = tx.Model(&orderModel.Order{}).
			Where("id = ? AND status IN ?", stop.OrderID, orderModel.TransitionSources(orderModel.OrderStatusCompleted)).
			Updates(map[string]interface{}{
				"status":           orderModel.OrderStatusCompleted,
				"completed_at":     completedAt,
				"actual_weight_kg": req.ActualWeightKg,
				"route_id":         nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d out of sync with its stop", stop.OrderID)
		}

		ord := orderModel.Order{ID: stop.OrderID}
		return order_event.Snapshot(tx, &ord, "stop_completed", createdBy)
	})
}

// Fail marks a stop as failed, from pending (no-show) or at_client.
// Propagates the failure and its reason into the order.
func (s *Service) Fail(req executionTypes.FailStopRequest, createdBy string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		stop, err := s.loadStopForEvent(tx, req.StopID)
		if err != nil {
			return err
		}
		if !routeModel.ValidStopTransition(stop.Status, routeModel.StopStatusFailed) {
			return errs.InvalidTransition("stop", stop.Status.String(), routeModel.StopStatusFailed.String())
		}

		res := tx.Model(&routeModel.Stop{}).
			Where("id = ? AND status = ?", stop.ID, stop.Status).
			Updates(map[string]interface{}{
				"status":         routeModel.StopStatusFailed,
				"failure_reason": req.Reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.InvalidTransition("stop", stop.Status.String(), routeModel.StopStatusFailed.String())
		}

		// A terminal order no longer rides a route, so route_id clears with it.
		res = tx.Model(&orderModel.Order{}).
			Where("id = ? AND status IN ?", stop.OrderID, orderModel.TransitionSources(orderModel.OrderStatusFailed)).
			Updates(map[string]interface{}{
				"status":         orderModel.OrderStatusFailed,
				"failure_reason": req.Reason,
				"route_id":       nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d out of sync with its stop", stop.OrderID)
		}

		ord := orderModel.Order{ID: stop.OrderID}
		return order_event.Snapshot(tx, &ord, "stop_failed", createdBy)
	})
}

// Skip marks a stop irrelevant without visiting it. The stop terminates as
// skipped and the order reverts to pending so it re-enters the planning pool.
func (s *Service) Skip(req executionTypes.SkipStopRequest, createdBy string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		stop, err := s.loadStopForEvent(tx, req.StopID)
		if err != nil {
			return err
		}
		if !routeModel.ValidStopTransition(stop.Status, routeModel.StopStatusSkipped) {
			return errs.InvalidTransition("stop", stop.Status.String(), routeModel.StopStatusSkipped.String())
		}

		res := tx.Model(&routeModel.Stop{}).
			Where("id = ? AND status = ?", stop.ID, stop.Status).
			Updates(map[string]interface{}{
				"status":         routeModel.StopStatusSkipped,
				"failure_reason": req.Reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.InvalidTransition("stop", stop.Status.String(), routeModel.StopStatusSkipped.String())
		}

		res = tx.Model(&orderModel.Order{}).
			Where("id = ? AND status IN ?", stop.OrderID, orderModel.TransitionSources(orderModel.OrderStatusPending)).
			Updates(map[string]interface{}{
				"status":   orderModel.OrderStatusPending,
				"route_id": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order %d out of sync with its stop", stop.OrderID)
		}

		ord := orderModel.Order{ID: stop.OrderID}
		return order_event.Snapshot(tx, &ord, "stop_skipped", createdBy)
	})
}

// CancelOrder transitions an order to the terminal cancelled state. Allowed
// from draft, pending and planned only; the restriction lives here at the
// mutation boundary, not in the calling UI. A planned order's pending stop
// is deleted in the same transaction.
func (s *Service) CancelOrder(orderID uint, reason string, createdBy string) error {
	if reason == "" {
		return errs.InvalidInput("cancellation reason is required")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var ord orderModel.Order
		if err := tx.First(&ord, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("order", orderID)
			}
			return err
		}
		if !ord.Status.Cancellable() {
			return errs.InvalidTransition("order", ord.Status.String(), orderModel.OrderStatusCancelled.String())
		}

		if ord.Status == orderModel.OrderStatusPlanned {
			res := tx.Where("order_id = ? AND status = ?", ord.ID, routeModel.StopStatusPending).
				Delete(&routeModel.Stop{})
			if res.Error != nil {
				return res.Error
			}
		}

		res := tx.Model(&orderModel.Order{}).
			Where("id = ? AND status = ?", orderID, ord.Status).
			Updates(map[string]interface{}{
				"status":              orderModel.OrderStatusCancelled,
				"cancellation_reason": reason,
				"route_id":            nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Status changed between the read and the guarded write.
			return errs.InvalidTransition("order", ord.Status.String(), orderModel.OrderStatusCancelled.String())
		}

		return order_event.Snapshot(tx, &ord, "order_cancelled", createdBy)
	})
}

// loadStopForEvent loads a stop and verifies its owning route is executing.
// All stop-level events are valid only while the route is on_execution.
func (s *Service) loadStopForEvent(tx *gorm.DB, stopID uint) (*routeModel.Stop, error) {
	var stop routeModel.Stop
	if err := tx.First(&stop, stopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("stop", stopID)
		}
		return nil, err
	}

	var rt routeModel.Route
	if err := tx.First(&rt, stop.RouteID).Error; err != nil {
		return nil, err
	}
	if rt.Status != routeModel.RouteStatusOnExecution {
		return nil, errs.InvalidState("route %s is %s, stop events require an executing route", rt.RouteNumber, rt.Status)
	}

	return &stop, nil
}
