package execution

import (
	"errors"

	"waste-logistics/errs"
	"waste-logistics/logger"
	routeModel "waste-logistics/models/route"
	executionService "waste-logistics/services/execution"
	"waste-logistics/types"
	executionTypes "waste-logistics/types/execution"
	"waste-logistics/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ExecutionController handles route execution HTTP requests
type ExecutionController struct {
	DB        *gorm.DB
	Logger    *logger.AsyncLogger
	Execution *executionService.Service
}

// NewExecutionController creates a new execution controller
func NewExecutionController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *ExecutionController {
	return &ExecutionController{
		DB:        db,
		Logger:    asyncLogger,
		Execution: executionService.NewService(db),
	}
}

func (ec *ExecutionController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	ec.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (ec *ExecutionController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	ec.logAPIRequest(c)
	return result
}

func (ec *ExecutionController) respondError(c *fiber.Ctx, err error) error {
	status := errs.HTTPStatus(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.Error("Execution operation failed", err)
		message = "Internal server error"
	}
	return ec.sendResponseWithLog(c, status, types.ApiResponse{
		Status:  status,
		Message: message,
	})
}

func (ec *ExecutionController) badRequest(c *fiber.Ctx, message string) error {
	return ec.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
	})
}

// checkRouteSiteAccess verifies the caller may act on the route's site.
func (ec *ExecutionController) checkRouteSiteAccess(c *fiber.Ctx, routeID uint) error {
	var rt routeModel.Route
	if err := ec.DB.First(&rt, routeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("route", routeID)
		}
		return err
	}
	return utils.CheckSiteAccess(c, rt.SiteID)
}

// checkStopSiteAccess resolves a stop to its route's site and verifies the
// caller may act on it.
func (ec *ExecutionController) checkStopSiteAccess(c *fiber.Ctx, stopID uint) error {
	var stop routeModel.Stop
	if err := ec.DB.First(&stop, stopID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFound("stop", stopID)
		}
		return err
	}
	return ec.checkRouteSiteAccess(c, stop.RouteID)
}

// StartRoute begins execution of a confirmed route. Its planned orders
// move to on_route in the same transaction.
func (ec *ExecutionController) StartRoute(c *fiber.Ctx) error {
	var req executionTypes.StartRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return ec.badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return ec.badRequest(c, err.Error())
	}
	if err := ec.checkRouteSiteAccess(c, req.RouteID); err != nil {
		return ec.respondError(c, err)
	}

	if err := ec.Execution.StartRoute(req, utils.ActorFromClaims(c)); err != nil {
		return ec.respondError(c, err)
	}

	return ec.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Route started",
	})
}

// ConcludeRoute closes a route whose stops have all reached a terminal
// state.
func (ec *ExecutionController) ConcludeRoute(c *fiber.Ctx) error {
	var req executionTypes.ConcludeRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return ec.badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return ec.badRequest(c, err.Error())
	}
	if err := ec.checkRouteSiteAccess(c, req.RouteID); err != nil {
		return ec.respondError(c, err)
	}

	if err := ec.Execution.ConcludeRoute(req, utils.ActorFromClaims(c)); err != nil {
		return ec.respondError(c, err)
	}

	return ec.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Route concluded",
	})
}

// Arrive records the crew's arrival at a stop.
func (ec *ExecutionController) Arrive(c *fiber.Ctx) error {
	var req executionTypes.ArriveRequest
	if err := c.BodyParser(&req); err != nil {
		return ec.badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return ec.badRequest(c, err.Error())
	}
	if err := ec.checkStopSiteAccess(c, req.StopID); err != nil {
		return ec.respondError(c, err)
	}

	if err := ec.Execution.Arrive(req, utils.ActorFromClaims(c)); err != nil {
		return ec.respondError(c, err)
	}

	return ec.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Arrival recorded",
	})
}

// Complete records a successful collection with the actual weight.
func (ec *ExecutionController) Complete(c *fiber.Ctx) error {
	var req executionTypes.CompleteStopRequest
	if err := c.BodyParser(&req); err != nil {
		return ec.badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return ec.badRequest(c, err.Error())
	}
	if err := ec.checkStopSiteAccess(c, req.StopID); err != nil {
		return ec.respondError(c, err)
	}

	if err := ec.Execution.Complete(req, utils.ActorFromClaims(c)); err != nil {
		return ec.respondError(c, err)
	}

	return ec.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Stop completed",
	})
}

// Fail records a failed collection attempt with its reason.
func (ec *ExecutionController) Fail(c *fiber.Ctx) error {
	var req executionTypes.FailStopRequest
	if err := c.BodyParser(&req); err != nil {
		return ec.badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return ec.badRequest(c, err.Error())
	}
	if err := ec.checkStopSiteAccess(c, req.StopID); err != nil {
		return ec.respondError(c, err)
	}

	if err := ec.Execution.Fail(req, utils.ActorFromClaims(c)); err != nil {
		return ec.respondError(c, err)
	}

	return ec.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Stop marked as failed",
	})
}

// Skip bypasses an unvisited stop and returns its order to the pool.
func (ec *ExecutionController) Skip(c *fiber.Ctx) error {
	var req executionTypes.SkipStopRequest
	if err := c.BodyParser(&req); err != nil {
		return ec.badRequest(c, "Invalid request body")
	}
	if err := req.Validate(); err != nil {
		return ec.badRequest(c, err.Error())
	}
	if err := ec.checkStopSiteAccess(c, req.StopID); err != nil {
		return ec.respondError(c, err)
	}

	if err := ec.Execution.Skip(req, utils.ActorFromClaims(c)); err != nil {
		return ec.respondError(c, err)
	}

	return ec.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Stop skipped",
	})
}
