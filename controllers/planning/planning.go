package planning

import (
	"strconv"

	"waste-logistics/logger"
	"waste-logistics/services/scoring"
	"waste-logistics/types"
	"waste-logistics/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PlanningController serves the dispatcher's ranked view of pending orders
type PlanningController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewPlanningController creates a new planning controller
func NewPlanningController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *PlanningController {
	return &PlanningController{
		DB:     db,
		Logger: asyncLogger,
	}
}

func (pc *PlanningController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	pc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (pc *PlanningController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	pc.logAPIRequest(c)
	return result
}

// ScorePendingOrders ranks a site's pending orders by planning score,
// highest first. The ranking is computed on demand and never persisted.
func (pc *PlanningController) ScorePendingOrders(c *fiber.Ctx) error {
	siteID, err := strconv.ParseUint(c.Query("site_id"), 10, 32)
	if err != nil || siteID == 0 {
		return pc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "site_id query parameter is required",
		})
	}

	if err := utils.CheckSiteAccess(c, uint(siteID)); err != nil {
		return pc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Caller is not allowed to act on this site",
		})
	}

	ranked, err := scoring.ScorePendingOrders(pc.DB, uint(siteID))
	if err != nil {
		logger.Error("Failed to score pending orders", err)
		return pc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to score pending orders",
		})
	}

	return pc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Pending orders ranked",
		Data:    ranked,
	})
}
