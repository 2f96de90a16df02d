package execution

import (
	"errors"
	"testing"

	"waste-logistics/errs"
	clientModel "waste-logistics/models/client"
	orderModel "waste-logistics/models/order"
	routeModel "waste-logistics/models/route"
	siteModel "waste-logistics/models/site"
	plannerService "waste-logistics/services/planner"
	executionTypes "waste-logistics/types/execution"
	routeTypes "waste-logistics/types/route"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	models := []interface{}{
		&siteModel.Site{},
		&clientModel.Client{},
		&orderModel.Order{},
		&orderModel.OrderStatusEvent{},
		&routeModel.Route{},
		&routeModel.Stop{},
		&routeModel.RouteStatusEvent{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			t.Fatalf("failed to migrate %T: %v", model, err)
		}
	}
	return db
}

type fixture struct {
	db      *gorm.DB
	exec    *Service
	planner *plannerService.Service
	site    *siteModel.Site
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	s := siteModel.Site{Code: "VAL", Name: "Valinhos", IsActive: true}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("failed to create site: %v", err)
	}

	return &fixture{
		db:      db,
		exec:    NewService(db),
		planner: plannerService.NewService(db),
		site:    &s,
	}
}

func (f *fixture) pendingOrder(t *testing.T) *orderModel.Order {
	t.Helper()
	o := orderModel.Order{
		SiteID:    f.site.ID,
		WasteType: "mixed",
		Address:   "Rua A 100",
		Priority:  orderModel.OrderPriorityNormal,
		Status:    orderModel.OrderStatusPending,
		CreatedBy: "tester",
	}
	if err := f.db.Create(&o).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	return &o
}

// confirmedRoute builds a confirmed route with one pending stop per order.
func (f *fixture) confirmedRoute(t *testing.T, orders ...*orderModel.Order) (*routeModel.Route, []*routeModel.Stop) {
	t.Helper()

	rt, err := f.planner.CreateRoute(routeTypes.RouteCreateRequest{
		SiteID:        f.site.ID,
		ScheduledDate: "2025-07-01",
	}, "dispatcher")
	if err != nil {
		t.Fatalf("CreateRoute failed: %v", err)
	}

	stops := make([]*routeModel.Stop, 0, len(orders))
	for i, ord := range orders {
		stop, err := f.planner.AddStop(routeTypes.AddStopRequest{
			RouteID:  rt.ID,
			OrderID:  ord.ID,
			Position: i + 1,
		}, "dispatcher")
		if err != nil {
			t.Fatalf("AddStop failed: %v", err)
		}
		stops = append(stops, stop)
	}

	if err := f.planner.ConfirmRoute(routeTypes.ConfirmRouteRequest{RouteID: rt.ID}, "dispatcher"); err != nil {
		t.Fatalf("ConfirmRoute failed: %v", err)
	}
	return rt, stops
}

func (f *fixture) reloadOrder(t *testing.T, id uint) *orderModel.Order {
	t.Helper()
	var o orderModel.Order
	if err := f.db.First(&o, id).Error; err != nil {
		t.Fatalf("reload order %d: %v", id, err)
	}
	return &o
}

func (f *fixture) reloadStop(t *testing.T, id uint) *routeModel.Stop {
	t.Helper()
	var s routeModel.Stop
	if err := f.db.First(&s, id).Error; err != nil {
		t.Fatalf("reload stop %d: %v", id, err)
	}
	return &s
}

func (f *fixture) reloadRoute(t *testing.T, id uint) *routeModel.Route {
	t.Helper()
	var r routeModel.Route
	if err := f.db.First(&r, id).Error; err != nil {
		t.Fatalf("reload route %d: %v", id, err)
	}
	return &r
}

func TestFullExecutionFlow(t *testing.T) {
	f := newFixture(t)
	ord := f.pendingOrder(t)
	rt, stops := f.confirmedRoute(t, ord)
	stop := stops[0]

	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: rt.ID}, "driver"); err != nil {
		t.Fatalf("StartRoute failed: %v", err)
	}
	if got := f.reloadRoute(t, rt.ID); got.Status != routeModel.RouteStatusOnExecution || got.StartedAt == nil {
		t.Errorf("expected on_execution with started_at, got %s / %v", got.Status, got.StartedAt)
	}
	if got := f.reloadOrder(t, ord.ID); got.Status != orderModel.OrderStatusOnRoute {
		t.Errorf("expected order on_route, got %s", got.Status)
	}

	if err := f.exec.Arrive(executionTypes.ArriveRequest{StopID: stop.ID}, "driver"); err != nil {
		t.Fatalf("Arrive failed: %v", err)
	}
	if got := f.reloadStop(t, stop.ID); got.Status != routeModel.StopStatusAtClient || got.ActualArrival == nil {
		t.Errorf("expected at_client with actual_arrival, got %s / %v", got.Status, got.ActualArrival)
	}
	if got := f.reloadOrder(t, ord.ID); got.Status != orderModel.OrderStatusAtClient {
		t.Errorf("expected order at_client, got %s", got.Status)
	}

	if err := f.exec.Complete(executionTypes.CompleteStopRequest{StopID: stop.ID, ActualWeightKg: 42.5}, "driver"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	gotStop := f.reloadStop(t, stop.ID)
	if gotStop.Status != routeModel.StopStatusCompleted {
		t.Errorf("expected stop completed, got %s", gotStop.Status)
	}
	if gotStop.ActualWeightKg == nil || *gotStop.ActualWeightKg != 42.5 {
		t.Errorf("expected actual weight 42.5, got %v", gotStop.ActualWeightKg)
	}
	gotOrder := f.reloadOrder(t, ord.ID)
	if gotOrder.Status != orderModel.OrderStatusCompleted || gotOrder.CompletedAt == nil {
		t.Errorf("expected order completed with completed_at, got %s / %v", gotOrder.Status, gotOrder.CompletedAt)
	}
	if gotOrder.ActualWeightKg == nil || *gotOrder.ActualWeightKg != 42.5 {
		t.Errorf("expected order actual weight 42.5, got %v", gotOrder.ActualWeightKg)
	}
	// Terminal orders carry no route binding.
	if gotOrder.RouteID != nil {
		t.Errorf("expected route_id cleared on completion, got %v", *gotOrder.RouteID)
	}

	if err := f.exec.ConcludeRoute(executionTypes.ConcludeRouteRequest{RouteID: rt.ID}, "driver"); err != nil {
		t.Fatalf("ConcludeRoute failed: %v", err)
	}
	if got := f.reloadRoute(t, rt.ID); got.Status != routeModel.RouteStatusCompleted || got.ConcludedAt == nil {
		t.Errorf("expected completed with concluded_at, got %s / %v", got.Status, got.ConcludedAt)
	}
}

func TestConcludeRouteRejectedWhileStopsPending(t *testing.T) {
	f := newFixture(t)
	done := f.pendingOrder(t)
	open := f.pendingOrder(t)
	rt, stops := f.confirmedRoute(t, done, open)

	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: rt.ID}, "driver"); err != nil {
		t.Fatalf("StartRoute failed: %v", err)
	}
	if err := f.exec.Arrive(executionTypes.ArriveRequest{StopID: stops[0].ID}, "driver"); err != nil {
		t.Fatalf("Arrive failed: %v", err)
	}
	if err := f.exec.Complete(executionTypes.CompleteStopRequest{StopID: stops[0].ID, ActualWeightKg: 10}, "driver"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	err := f.exec.ConcludeRoute(executionTypes.ConcludeRouteRequest{RouteID: rt.ID}, "driver")
	if !errors.Is(err, errs.ErrStopsPending) {
		t.Fatalf("expected stops pending error, got %v", err)
	}

	// Close the second stop as a no-show and conclude again.
	if err := f.exec.Fail(executionTypes.FailStopRequest{StopID: stops[1].ID, Reason: "client closed"}, "driver"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	if err := f.exec.ConcludeRoute(executionTypes.ConcludeRouteRequest{RouteID: rt.ID}, "driver"); err != nil {
		t.Fatalf("ConcludeRoute after closing stops failed: %v", err)
	}
}

func TestStartRouteRequiresConfirmed(t *testing.T) {
	f := newFixture(t)

	rt, err := f.planner.CreateRoute(routeTypes.RouteCreateRequest{SiteID: f.site.ID, ScheduledDate: "2025-07-01"}, "dispatcher")
	if err != nil {
		t.Fatalf("CreateRoute failed: %v", err)
	}

	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: rt.ID}, "driver"); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("starting a draft route: expected invalid state error, got %v", err)
	}
	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: 999}, "driver"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown route: expected not found error, got %v", err)
	}

	ord := f.pendingOrder(t)
	started, _ := f.confirmedRoute(t, ord)
	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: started.ID}, "driver"); err != nil {
		t.Fatalf("StartRoute failed: %v", err)
	}
	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: started.ID}, "driver"); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("starting twice: expected invalid state error, got %v", err)
	}
}

func TestStopEventsRequireExecutingRoute(t *testing.T) {
	f := newFixture(t)
	ord := f.pendingOrder(t)
	_, stops := f.confirmedRoute(t, ord)

	// Route is confirmed but not started.
	if err := f.exec.Arrive(executionTypes.ArriveRequest{StopID: stops[0].ID}, "driver"); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("expected invalid state error, got %v", err)
	}
	if err := f.exec.Arrive(executionTypes.ArriveRequest{StopID: 999}, "driver"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("unknown stop: expected not found error, got %v", err)
	}
}

func TestCompleteRejectsNonPositiveWeight(t *testing.T) {
	f := newFixture(t)

	for _, weight := range []float64{0, -5} {
		err := f.exec.Complete(executionTypes.CompleteStopRequest{StopID: 1, ActualWeightKg: weight}, "driver")
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("weight %v: expected invalid input error, got %v", weight, err)
		}
	}
}

func TestCompleteRequiresArrival(t *testing.T) {
	f := newFixture(t)
	ord := f.pendingOrder(t)
	rt, stops := f.confirmedRoute(t, ord)

	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: rt.ID}, "driver"); err != nil {
		t.Fatalf("StartRoute failed: %v", err)
	}

	// The stop is still pending, completion needs at_client first.
	err := f.exec.Complete(executionTypes.CompleteStopRequest{StopID: stops[0].ID, ActualWeightKg: 12}, "driver")
	if !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("expected invalid state error, got %v", err)
	}
}

func TestFailFromPendingNoShow(t *testing.T) {
	f := newFixture(t)
	ord := f.pendingOrder(t)
	rt, stops := f.confirmedRoute(t, ord)

	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: rt.ID}, "driver"); err != nil {
		t.Fatalf("StartRoute failed: %v", err)
	}
	if err := f.exec.Fail(executionTypes.FailStopRequest{StopID: stops[0].ID, Reason: "gate locked"}, "driver"); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	gotStop := f.reloadStop(t, stops[0].ID)
	if gotStop.Status != routeModel.StopStatusFailed {
		t.Errorf("expected stop failed, got %s", gotStop.Status)
	}
	if gotStop.FailureReason == nil || *gotStop.FailureReason != "gate locked" {
		t.Errorf("expected failure reason recorded, got %v", gotStop.FailureReason)
	}

	gotOrder := f.reloadOrder(t, ord.ID)
	if gotOrder.Status != orderModel.OrderStatusFailed {
		t.Errorf("expected order failed, got %s", gotOrder.Status)
	}
	if gotOrder.FailureReason == nil || *gotOrder.FailureReason != "gate locked" {
		t.Errorf("expected order failure reason recorded, got %v", gotOrder.FailureReason)
	}
	// Terminal orders carry no route binding.
	if gotOrder.RouteID != nil {
		t.Errorf("expected route_id cleared on failure, got %v", *gotOrder.RouteID)
	}
}

func TestSkipRevertsOrderToPool(t *testing.T) {
	f := newFixture(t)
	ord := f.pendingOrder(t)
	rt, stops := f.confirmedRoute(t, ord)

	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: rt.ID}, "driver"); err != nil {
		t.Fatalf("StartRoute failed: %v", err)
	}
	if err := f.exec.Skip(executionTypes.SkipStopRequest{StopID: stops[0].ID, Reason: "rescheduled by client"}, "driver"); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}

	if got := f.reloadStop(t, stops[0].ID); got.Status != routeModel.StopStatusSkipped {
		t.Errorf("expected stop skipped, got %s", got.Status)
	}

	gotOrder := f.reloadOrder(t, ord.ID)
	if gotOrder.Status != orderModel.OrderStatusPending {
		t.Errorf("expected order back to pending, got %s", gotOrder.Status)
	}
	if gotOrder.RouteID != nil {
		t.Errorf("expected route_id cleared, got %v", *gotOrder.RouteID)
	}

	// A skipped stop cannot be visited later.
	if err := f.exec.Arrive(executionTypes.ArriveRequest{StopID: stops[0].ID}, "driver"); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("expected invalid state error, got %v", err)
	}
}

func TestTerminalStopIsWriteOnce(t *testing.T) {
	f := newFixture(t)
	ord := f.pendingOrder(t)
	rt, stops := f.confirmedRoute(t, ord)
	stop := stops[0]

	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: rt.ID}, "driver"); err != nil {
		t.Fatalf("StartRoute failed: %v", err)
	}
	if err := f.exec.Arrive(executionTypes.ArriveRequest{StopID: stop.ID}, "driver"); err != nil {
		t.Fatalf("Arrive failed: %v", err)
	}
	if err := f.exec.Complete(executionTypes.CompleteStopRequest{StopID: stop.ID, ActualWeightKg: 30}, "driver"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if err := f.exec.Arrive(executionTypes.ArriveRequest{StopID: stop.ID}, "driver"); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("arrive after completion: expected invalid state error, got %v", err)
	}
	if err := f.exec.Fail(executionTypes.FailStopRequest{StopID: stop.ID, Reason: "oops"}, "driver"); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("fail after completion: expected invalid state error, got %v", err)
	}
	if err := f.exec.Skip(executionTypes.SkipStopRequest{StopID: stop.ID, Reason: "oops"}, "driver"); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("skip after completion: expected invalid state error, got %v", err)
	}
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)

	t.Run("requires a reason", func(t *testing.T) {
		ord := f.pendingOrder(t)
		if err := f.exec.CancelOrder(ord.ID, "", "dispatcher"); !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("expected invalid input error, got %v", err)
		}
	})

	t.Run("pending order", func(t *testing.T) {
		ord := f.pendingOrder(t)
		if err := f.exec.CancelOrder(ord.ID, "client gave up", "dispatcher"); err != nil {
			t.Fatalf("CancelOrder failed: %v", err)
		}
		got := f.reloadOrder(t, ord.ID)
		if got.Status != orderModel.OrderStatusCancelled {
			t.Errorf("expected cancelled, got %s", got.Status)
		}
		if got.CancellationReason == nil || *got.CancellationReason != "client gave up" {
			t.Errorf("expected cancellation reason recorded, got %v", got.CancellationReason)
		}
	})

	t.Run("planned order drops its stop", func(t *testing.T) {
		ord := f.pendingOrder(t)
		rt, err := f.planner.CreateRoute(routeTypes.RouteCreateRequest{SiteID: f.site.ID, ScheduledDate: "2025-07-05"}, "dispatcher")
		if err != nil {
			t.Fatalf("CreateRoute failed: %v", err)
		}
		stop, err := f.planner.AddStop(routeTypes.AddStopRequest{RouteID: rt.ID, OrderID: ord.ID, Position: 1}, "dispatcher")
		if err != nil {
			t.Fatalf("AddStop failed: %v", err)
		}

		if err := f.exec.CancelOrder(ord.ID, "duplicate request", "dispatcher"); err != nil {
			t.Fatalf("CancelOrder failed: %v", err)
		}

		got := f.reloadOrder(t, ord.ID)
		if got.Status != orderModel.OrderStatusCancelled {
			t.Errorf("expected cancelled, got %s", got.Status)
		}
		if got.RouteID != nil {
			t.Errorf("expected route_id cleared, got %v", *got.RouteID)
		}

		var count int64
		f.db.Model(&routeModel.Stop{}).Where("id = ?", stop.ID).Count(&count)
		if count != 0 {
			t.Error("expected the pending stop deleted")
		}
	})

	t.Run("rejected once the truck is rolling", func(t *testing.T) {
		ord := f.pendingOrder(t)
		rt, _ := f.confirmedRoute(t, ord)
		if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: rt.ID}, "driver"); err != nil {
			t.Fatalf("StartRoute failed: %v", err)
		}

		if err := f.exec.CancelOrder(ord.ID, "too late", "dispatcher"); !errors.Is(err, errs.ErrInvalidState) {
			t.Errorf("expected invalid state error, got %v", err)
		}
	})

	t.Run("cancelling twice", func(t *testing.T) {
		ord := f.pendingOrder(t)
		if err := f.exec.CancelOrder(ord.ID, "first", "dispatcher"); err != nil {
			t.Fatalf("CancelOrder failed: %v", err)
		}
		if err := f.exec.CancelOrder(ord.ID, "second", "dispatcher"); !errors.Is(err, errs.ErrInvalidState) {
			t.Errorf("expected invalid state error, got %v", err)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		if err := f.exec.CancelOrder(9999, "reason", "dispatcher"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected not found error, got %v", err)
		}
	})
}

func TestOrderEventsRecordFullFlow(t *testing.T) {
	f := newFixture(t)
	ord := f.pendingOrder(t)
	rt, stops := f.confirmedRoute(t, ord)

	if err := f.exec.StartRoute(executionTypes.StartRouteRequest{RouteID: rt.ID}, "driver"); err != nil {
		t.Fatalf("StartRoute failed: %v", err)
	}
	if err := f.exec.Arrive(executionTypes.ArriveRequest{StopID: stops[0].ID}, "driver"); err != nil {
		t.Fatalf("Arrive failed: %v", err)
	}
	if err := f.exec.Complete(executionTypes.CompleteStopRequest{StopID: stops[0].ID, ActualWeightKg: 18}, "driver"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	var events []orderModel.OrderStatusEvent
	if err := f.db.Where("order_id = ?", ord.ID).Order("id").Find(&events).Error; err != nil {
		t.Fatalf("load events: %v", err)
	}

	want := []string{"stop_added", "stop_arrived", "stop_completed"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, eventType := range want {
		if events[i].EventType != eventType {
			t.Errorf("event %d: expected %s, got %s", i, eventType, events[i].EventType)
		}
	}
	if events[len(events)-1].Status != orderModel.OrderStatusCompleted {
		t.Errorf("final event status: expected completed, got %s", events[len(events)-1].Status)
	}
}
