package planner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"waste-logistics/errs"
	orderModel "waste-logistics/models/order"
	routeModel "waste-logistics/models/route"
	"waste-logistics/services/order_event"
	"waste-logistics/services/route_event"
	routeTypes "waste-logistics/types/route"
	"waste-logistics/utils"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// Service is the route planner: it orchestrates route creation and stop
// membership, keeping order status synchronized with stop membership. Every
// operation that touches more than one row runs in a single transaction.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// CreateRoute creates a draft route with a route number sequential per site
// and day (WR-YYYYMMDD-NNN).
func (s *Service) CreateRoute(req routeTypes.RouteCreateRequest, createdBy string) (*routeModel.Route, error) {
	date, err := utils.ParseDate(req.ScheduledDate)
	if err != nil {
		return nil, errs.InvalidInput("scheduled_date %q is not a valid date", req.ScheduledDate)
	}
	// Routes are day work units; the date snaps to beginning of day.
	date = now.With(date).BeginningOfDay()

	var departure *time.Time
	if req.DepartureTime != nil {
		dep, err := utils.ParseTimeOfDay(*req.DepartureTime, date)
		if err != nil {
			return nil, errs.InvalidInput("departure_time %q is not a valid time", *req.DepartureTime)
		}
		departure = &dep
	}

	// Two dispatchers creating routes for the same site and day can race to
	// the same number; the loser hits the unique index and retries with a
	// fresh sequence read.
	var rt routeModel.Route
	for attempt := 0; attempt < routeNumberAttempts; attempt++ {
		rt = routeModel.Route{
			SiteID:        req.SiteID,
			Status:        routeModel.RouteStatusDraft,
			VehicleID:     req.VehicleID,
			DriverID:      req.DriverID,
			ScheduledDate: date,
			DepartureTime: departure,
			CreatedBy:     createdBy,
		}

		err = s.DB.Transaction(func(tx *gorm.DB) error {
			number, err := nextRouteNumber(tx, req.SiteID, date)
			if err != nil {
				return err
			}
			rt.RouteNumber = number

			if err := tx.Create(&rt).Error; err != nil {
				return fmt.Errorf("create route: %w", err)
			}
			return route_event.Snapshot(tx, &rt, "route_created", createdBy)
		})
		if err == nil {
			return &rt, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("allocate route number for site %d: %w", req.SiteID, err)
}

const routeNumberAttempts = 3

// nextRouteNumber continues the WR-YYYYMMDD-NNN sequence from the highest
// number already taken for the site and day. Keyed on the number prefix
// rather than scheduled_date so rows with a mismatched date cannot stall
// the sequence.
func nextRouteNumber(tx *gorm.DB, siteID uint, date time.Time) (string, error) {
	prefix := "WR-" + date.Format("20060102") + "-"

	var taken []string
	if err := tx.Model(&routeModel.Route{}).
		Where("site_id = ? AND route_number LIKE ?", siteID, prefix+"%").
		Order("route_number DESC").
		Limit(1).
		Pluck("route_number", &taken).Error; err != nil {
		return "", fmt.Errorf("read route sequence for site %d: %w", siteID, err)
	}

	seq := 0
	if len(taken) > 0 {
		if n, err := strconv.Atoi(strings.TrimPrefix(taken[0], prefix)); err == nil {
			seq = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq+1), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// AddStop binds a pending order to a position on a plannable route. The
// order precondition and its status flip commit in one guarded update, so
// two concurrent assignments of the same order can never both succeed: the
// loser sees zero affected rows and gets an invalid-state error.
func (s *Service) AddStop(req routeTypes.AddStopRequest, createdBy string) (*routeModel.Stop, error) {
	var stop routeModel.Stop

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var rt routeModel.Route
		if err := tx.First(&rt, req.RouteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("route", req.RouteID)
			}
			return err
		}
		if !rt.Status.Plannable() {
			return errs.InvalidState("route %s is %s, stops can no longer be added", rt.RouteNumber, rt.Status)
		}

		var ord orderModel.Order
		if err := tx.First(&ord, req.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("order", req.OrderID)
			}
			return err
		}
		if ord.SiteID != rt.SiteID {
			return errs.InvalidInput("order %d belongs to site %d, route %s to site %d", ord.ID, ord.SiteID, rt.RouteNumber, rt.SiteID)
		}
		if !orderModel.ValidTransition(ord.Status, orderModel.OrderStatusPlanned) {
			return errs.InvalidTransition("order", ord.Status.String(), orderModel.OrderStatusPlanned.String())
		}

		var used int64
		if err := tx.Model(&routeModel.Stop{}).
			Where("route_id = ? AND position = ?", req.RouteID, req.Position).
			Count(&used).Error; err != nil {
			return err
		}
		if used > 0 {
			return errs.InvalidInput("position %d is already used in route %s", req.Position, rt.RouteNumber)
		}

		res := tx.Model(&orderModel.Order{}).
			Where("id = ? AND status = ?", req.OrderID, ord.Status).
			Updates(map[string]interface{}{
				"status":   orderModel.OrderStatusPlanned,
				"route_id": req.RouteID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost a race: the order moved on between the read and the write.
			return errs.InvalidTransition("order", ord.Status.String(), orderModel.OrderStatusPlanned.String())
		}

		stop = routeModel.Stop{
			RouteID:  req.RouteID,
			OrderID:  req.OrderID,
			Position: req.Position,
			Status:   routeModel.StopStatusPending,
		}
		if err := tx.Create(&stop).Error; err != nil {
			return fmt.Errorf("create stop: %w", err)
		}

		return order_event.Snapshot(tx, &ord, "stop_added", createdBy)
	})
	if err != nil {
		return nil, err
	}
	return &stop, nil
}

// RemoveStop detaches a still-pending stop from a plannable route and
// reverts the linked order to pending.
func (s *Service) RemoveStop(req routeTypes.RemoveStopRequest, createdBy string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var stop routeModel.Stop
		if err := tx.First(&stop, req.StopID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("stop", req.StopID)
			}
			return err
		}

		var rt routeModel.Route
		if err := tx.First(&rt, stop.RouteID).Error; err != nil {
			return err
		}
		if !rt.Status.Plannable() {
			return errs.InvalidState("route %s is %s, stops can no longer be removed", rt.RouteNumber, rt.Status)
		}

		res := tx.Where("id = ? AND status = ?", req.StopID, routeModel.StopStatusPending).
			Delete(&routeModel.Stop{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.InvalidState("stop %d is %s, only pending stops can be removed", stop.ID, stop.Status)
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
		return order_event.Snapshot(tx, &ord, "stop_removed", createdBy)
	})
}

// ReorderStops reassigns position = index+1 for each stop id in the given
// order, all-or-nothing. The id list must name exactly the route's stops.
func (s *Service) ReorderStops(req routeTypes.ReorderStopsRequest, createdBy string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var rt routeModel.Route
		if err := tx.First(&rt, req.RouteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("route", req.RouteID)
			}
			return err
		}
		if !rt.Status.Plannable() {
			return errs.InvalidState("route %s is %s, stops can no longer be reordered", rt.RouteNumber, rt.Status)
		}

		var stops []routeModel.Stop
		if err := tx.Where("route_id = ?", req.RouteID).Find(&stops).Error; err != nil {
			return err
		}
		if len(stops) != len(req.OrderedStopIDs) {
			return errs.InvalidInput("route %s has %d stops, %d ids given", rt.RouteNumber, len(stops), len(req.OrderedStopIDs))
		}
		belongs := make(map[uint]bool, len(stops))
		for _, st := range stops {
			belongs[st.ID] = true
		}
		for _, id := range req.OrderedStopIDs {
			if !belongs[id] {
				return errs.InvalidInput("stop %d does not belong to route %s", id, rt.RouteNumber)
			}
		}

		// Two passes keep the (route_id, position) unique index satisfied
		// at every statement.
		for i, id := range req.OrderedStopIDs {
			if err := tx.Model(&routeModel.Stop{}).
				Where("id = ?", id).
				Update("position", -(i + 1)).Error; err != nil {
				return err
			}
		}
		for i, id := range req.OrderedStopIDs {
			if err := tx.Model(&routeModel.Stop{}).
				Where("id = ?", id).
				Update("position", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ConfirmRoute moves a draft route to confirmed, making it executable.
func (s *Service) ConfirmRoute(req routeTypes.ConfirmRouteRequest, createdBy string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var rt routeModel.Route
		if err := tx.First(&rt, req.RouteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("route", req.RouteID)
			}
			return err
		}
		if !routeModel.ValidTransition(rt.Status, routeModel.RouteStatusConfirmed) {
			return errs.InvalidTransition("route", rt.Status.String(), routeModel.RouteStatusConfirmed.String())
		}

		res := tx.Model(&routeModel.Route{}).
			Where("id = ? AND status = ?", rt.ID, rt.Status).
			Update("status", routeModel.RouteStatusConfirmed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Status changed between the read and the guarded write.
			return errs.InvalidTransition("route", rt.Status.String(), routeModel.RouteStatusConfirmed.String())
		}

		rt.Status = routeModel.RouteStatusConfirmed
		return route_event.Snapshot(tx, &rt, "route_confirmed", createdBy)
	})
}

// UpdateAssignment mutates route assignment fields. Allowed only while the
// route is still draft or confirmed.
func (s *Service) UpdateAssignment(req routeTypes.UpdateAssignmentRequest, createdBy string) (*routeModel.Route, error) {
	var rt routeModel.Route

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&rt, req.RouteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("route", req.RouteID)
			}
			return err
		}
		if !rt.Status.Plannable() {
			return errs.InvalidState("route %s is %s, assignment can no longer change", rt.RouteNumber, rt.Status)
		}

		updates := make(map[string]interface{})
		date := rt.ScheduledDate
		if req.ScheduledDate != nil {
			parsed, err := utils.ParseDate(*req.ScheduledDate)
			if err != nil {
				return errs.InvalidInput("scheduled_date %q is not a valid date", *req.ScheduledDate)
			}
			date = now.With(parsed).BeginningOfDay()
			updates["scheduled_date"] = date
		}
		if req.DepartureTime != nil {
			dep, err := utils.ParseTimeOfDay(*req.DepartureTime, date)
			if err != nil {
				return errs.InvalidInput("departure_time %q is not a valid time", *req.DepartureTime)
			}
			updates["departure_time"] = dep
		}
		if req.VehicleID != nil {
			updates["vehicle_id"] = *req.VehicleID
		}
		if req.DriverID != nil {
			updates["driver_id"] = *req.DriverID
		}

		if err := tx.Model(&rt).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&rt, req.RouteID).Error
	})
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// GetRoute loads a route with its stops ordered by position.
func (s *Service) GetRoute(routeID uint) (*routeModel.Route, error) {
	var rt routeModel.Route
	err := s.DB.
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Stops.Order").
		First(&rt, routeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("route", routeID)
		}
		return nil, err
	}
	return &rt, nil
}
