package routes

import (
	"os"

	"waste-logistics/constants"
	"waste-logistics/controllers/catalog"
	"waste-logistics/controllers/execution"
	"waste-logistics/controllers/order"
	"waste-logistics/controllers/planning"
	"waste-logistics/controllers/route"
	httpServices "waste-logistics/httpServices/geocode"
	"waste-logistics/logger"
	"waste-logistics/middleware"
	"waste-logistics/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	geocodeClient := httpServices.NewClient(os.Getenv("GEOCODER_BASE_URL"))
	asyncLogger := logger.NewAsyncLogger(db)
	orderController := order.NewOrderController(db, asyncLogger, geocodeClient)
	planningController := planning.NewPlanningController(db, asyncLogger)
	routeController := route.NewRouteController(db, asyncLogger)
	executionController := execution.NewExecutionController(db, asyncLogger)
	catalogController := catalog.NewCatalogController(db, asyncLogger)

	// Start the async logger processing goroutine
	go asyncLogger.ProcessLog()

	// Index route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(types.ApiResponse{
			Status:  fiber.StatusOK,
			Message: "Waste logistics API",
		})
	})

	/*=============================================================================
	| Order Routes
	===============================================================================*/
	api := app.Group("/api")

	orderGroup := api.Group("/orders")

	orderGroup.Post("/create", middleware.RequirePermissions(
		constants.PermIntake,
	), orderController.Store)

	orderGroup.Post("/parse-note", middleware.RequirePermissions(
		constants.PermIntake,
	), orderController.ParseIntakeNote)

	orderGroup.Post("/approve", middleware.RequirePermissions(
		constants.PermDispatch,
	), orderController.Approve)

	orderGroup.Post("/cancel", middleware.RequirePermissions(
		constants.PermDispatch,
	), orderController.Cancel)

	orderGroup.Get("/pending", middleware.RequirePermissions(
		constants.PermDispatch,
	), orderController.ListPending)

	/*=============================================================================
	| Planning Routes
	===============================================================================*/
	planningGroup := api.Group("/planning")

	planningGroup.Get("/score", middleware.RequirePermissions(
		constants.PermDispatch,
	), planningController.ScorePendingOrders)

	/*=============================================================================
	| Route Planner Routes
	===============================================================================*/
	routeGroup := api.Group("/routes")

	routeGroup.Post("/create", middleware.RequirePermissions(
		constants.PermDispatch,
	), routeController.Store)

	routeGroup.Post("/add-stop", middleware.RequirePermissions(
		constants.PermDispatch,
	), routeController.AddStop)

	routeGroup.Post("/remove-stop", middleware.RequirePermissions(
		constants.PermDispatch,
	), routeController.RemoveStop)

	routeGroup.Post("/reorder-stops", middleware.RequirePermissions(
		constants.PermDispatch,
	), routeController.ReorderStops)

	routeGroup.Post("/confirm", middleware.RequirePermissions(
		constants.PermDispatch,
	), routeController.Confirm)

	routeGroup.Post("/assignment", middleware.RequirePermissions(
		constants.PermDispatch,
	), routeController.UpdateAssignment)

	routeGroup.Get("/:id", middleware.RequireAnyPermission(), routeController.Show)

	/*=============================================================================
	| Execution Routes
	===============================================================================*/
	executionGroup := api.Group("/execution")

	executionGroup.Post("/start-route", middleware.RequirePermissions(
		constants.PermExecute,
	), executionController.StartRoute)

	executionGroup.Post("/conclude-route", middleware.RequirePermissions(
		constants.PermExecute,
	), executionController.ConcludeRoute)

	executionGroup.Post("/arrive", middleware.RequirePermissions(
		constants.PermExecute,
	), executionController.Arrive)

	executionGroup.Post("/complete", middleware.RequirePermissions(
		constants.PermExecute,
	), executionController.Complete)

	executionGroup.Post("/fail", middleware.RequirePermissions(
		constants.PermExecute,
	), executionController.Fail)

	executionGroup.Post("/skip", middleware.RequirePermissions(
		constants.PermExecute,
	), executionController.Skip)

	/*=============================================================================
	| Catalog Routes
	===============================================================================*/
	catalogGroup := api.Group("/catalog")

	catalogGroup.Post("/sites", middleware.RequirePermissions(
		constants.PermManage,
	), catalogController.StoreSite)
	catalogGroup.Get("/sites", middleware.RequireAnyPermission(), catalogController.ListSites)

	catalogGroup.Post("/clients", middleware.RequirePermissions(
		constants.PermManage,
	), catalogController.StoreClient)
	catalogGroup.Get("/clients", middleware.RequireAnyPermission(), catalogController.ListClients)

	catalogGroup.Post("/vehicles", middleware.RequirePermissions(
		constants.PermManage,
	), catalogController.StoreVehicle)
	catalogGroup.Get("/vehicles", middleware.RequireAnyPermission(), catalogController.ListVehicles)

	catalogGroup.Post("/drivers", middleware.RequirePermissions(
		constants.PermManage,
	), catalogController.StoreDriver)
	catalogGroup.Get("/drivers", middleware.RequireAnyPermission(), catalogController.ListDrivers)
}
