package route

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appLogger "waste-logistics/logger"
	clientModel "waste-logistics/models/client"
	orderModel "waste-logistics/models/order"
	routeModel "waste-logistics/models/route"
	siteModel "waste-logistics/models/site"
	routeTypes "waste-logistics/types/route"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupControllerDB(t *testing.T) *gorm.DB {
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

func newRouteApp(db *gorm.DB, claims jwt.MapClaims) *fiber.App {
	rc := NewRouteController(db, appLogger.NewAsyncLogger(db))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", claims)
		return c.Next()
	})
	app.Post("/api/routes/remove-stop", rc.RemoveStop)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", path, err)
	}
	return resp
}

func TestRemoveStopRejectsForeignSiteToken(t *testing.T) {
	db := setupControllerDB(t)

	home := siteModel.Site{Code: "VAL", Name: "Valinhos", IsActive: true}
	other := siteModel.Site{Code: "CPQ", Name: "Campinas", IsActive: true}
	for _, s := range []*siteModel.Site{&home, &other} {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("failed to create site: %v", err)
		}
	}

	ord := orderModel.Order{
		SiteID:    home.ID,
		WasteType: "mixed",
		Address:   "Rua A 100",
		Priority:  orderModel.OrderPriorityNormal,
		Status:    orderModel.OrderStatusPending,
		CreatedBy: "tester",
	}
	if err := db.Create(&ord).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	rc := NewRouteController(db, appLogger.NewAsyncLogger(db))
	rt, err := rc.Planner.CreateRoute(routeTypes.RouteCreateRequest{SiteID: home.ID, ScheduledDate: "2025-07-01"}, "dispatcher")
	if err != nil {
		t.Fatalf("CreateRoute failed: %v", err)
	}
	stop, err := rc.Planner.AddStop(routeTypes.AddStopRequest{RouteID: rt.ID, OrderID: ord.ID, Position: 1}, "dispatcher")
	if err != nil {
		t.Fatalf("AddStop failed: %v", err)
	}

	foreign := newRouteApp(db, jwt.MapClaims{"username": "dispatcher-b", "site_id": float64(other.ID)})
	resp := postJSON(t, foreign, "/api/routes/remove-stop", map[string]interface{}{"stop_id": stop.ID})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("remove-stop with a foreign site token: expected 403, got %d", resp.StatusCode)
	}

	var count int64
	db.Model(&routeModel.Stop{}).Where("id = ?", stop.ID).Count(&count)
	if count != 1 {
		t.Error("stop must survive a rejected remove")
	}

	local := newRouteApp(db, jwt.MapClaims{"username": "dispatcher-a", "site_id": float64(home.ID)})
	resp = postJSON(t, local, "/api/routes/remove-stop", map[string]interface{}{"stop_id": stop.ID})
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("remove-stop for the home site: expected 200, got %d", resp.StatusCode)
	}
}
