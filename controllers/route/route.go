package route

import (
	"errors"
	"strconv"

	"waste-logistics/errs"
	"waste-logistics/logger"
	routeModel "waste-logistics/models/route"
	plannerService "waste-logistics/services/planner"
	"waste-logistics/types"
	routeTypes "waste-logistics/types/route"
	"waste-logistics/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RouteController handles route planning HTTP requests
type RouteController struct {
	DB      *gorm.DB
	Logger  *logger.AsyncLogger
	Planner *plannerService.Service
}

// NewRouteController creates a new route controller
func NewRouteController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *RouteController {
	return &RouteController{
		DB:      db,
		Logger:  asyncLogger,
		Planner: plannerService.NewService(db),
	}
}

func (rc *RouteController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	rc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (rc *RouteController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	rc.logAPIRequest(c)
	return result
}

func (rc *RouteController) respondError(c *fiber.Ctx, err error) error {
	status := errs.HTTPStatus(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.Error("Route operation failed", err)
		message = "Internal server error"
	}
	return rc.sendResponseWithLog(c, status, types.ApiResponse{
		Status:  status,
		Message: message,
	})
}

// Store creates a new draft route for a site and scheduled date.
func (rc *RouteController) Store(c *fiber.Ctx) error {
	var req routeTypes.RouteCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if err := utils.CheckSiteAccess(c, req.SiteID); err != nil {
		return rc.respondError(c, err)
	}

	rt, err := rc.Planner.CreateRoute(req, utils.ActorFromClaims(c))
	if err != nil {
		return rc.respondError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Route created",
		Data:    rt,
	})
}

// AddStop appends an order to a plannable route at the given position.
func (rc *RouteController) AddStop(c *fiber.Ctx) error {
	var req routeTypes.AddStopRequest
	if err := c.BodyParser(&req); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if err := rc.checkRouteSiteAccess(c, req.RouteID); err != nil {
		return rc.respondError(c, err)
	}

	stop, err := rc.Planner.AddStop(req, utils.ActorFromClaims(c))
	if err != nil {
		return rc.respondError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Stop added",
		Data:    stop,
	})
}

// RemoveStop detaches a pending stop and returns its order to the pool.
func (rc *RouteController) RemoveStop(c *fiber.Ctx) error {
	var req routeTypes.RemoveStopRequest
	if err := c.BodyParser(&req); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if err := rc.checkStopSiteAccess(c, req.StopID); err != nil {
		return rc.respondError(c, err)
	}

	if err := rc.Planner.RemoveStop(req, utils.ActorFromClaims(c)); err != nil {
		return rc.respondError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Stop removed",
	})
}

// ReorderStops rewrites the visit sequence of a plannable route.
func (rc *RouteController) ReorderStops(c *fiber.Ctx) error {
	var req routeTypes.ReorderStopsRequest
	if err := c.BodyParser(&req); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if err := rc.checkRouteSiteAccess(c, req.RouteID); err != nil {
		return rc.respondError(c, err)
	}

	if err := rc.Planner.ReorderStops(req, utils.ActorFromClaims(c)); err != nil {
		return rc.respondError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Stops reordered",
	})
}

// Confirm locks a draft route for execution.
func (rc *RouteController) Confirm(c *fiber.Ctx) error {
	var req routeTypes.ConfirmRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if err := rc.checkRouteSiteAccess(c, req.RouteID); err != nil {
		return rc.respondError(c, err)
	}

	if err := rc.Planner.ConfirmRoute(req, utils.ActorFromClaims(c)); err != nil {
		return rc.respondError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Route confirmed",
	})
}

// UpdateAssignment changes vehicle, driver or schedule of a plannable route.
func (rc *RouteController) UpdateAssignment(c *fiber.Ctx) error {
	var req routeTypes.UpdateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if err := rc.checkRouteSiteAccess(c, req.RouteID); err != nil {
		return rc.respondError(c, err)
	}

	rt, err := rc.Planner.UpdateAssignment(req, utils.ActorFromClaims(c))
	if err != nil {
		return rc.respondError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Route assignment updated",
		Data:    rt,
	})
}

// Show returns a route with its stops ordered by position.
func (rc *RouteController) Show(c *fiber.Ctx) error {
	routeID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || routeID == 0 {
		return rc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid route id",
		})
	}

	rt, err := rc.Planner.GetRoute(uint(routeID))
	if err != nil {
		return rc.respondError(c, err)
	}
	if err := utils.CheckSiteAccess(c, rt.SiteID); err != nil {
		return rc.respondError(c, err)
	}

	return rc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Route details",
		Data:    rt,
	})
}

// checkRouteSiteAccess verifies the caller may act on the route's site.
func (rc *RouteController) checkRouteSiteAccess(c *fiber.Ctx, routeID uint) error {
	rt, err := rc.Planner.GetRoute(routeID)
	if err != nil {
		return err
	}
	return utils.CheckSiteAccess(c, rt.SiteID)
}

// checkStopSiteAccess resolves a stop to its route's site and verifies the
// caller may act on it.
func (rc *RouteController) checkStopSiteAccess(c *fiber.Ctx, stopID uint) error {
	var stop routeModel.Stop
	if err := rc.DB.First(&stop, stopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("stop", stopID)
		}
		return err
	}
	return rc.checkRouteSiteAccess(c, stop.RouteID)
}
