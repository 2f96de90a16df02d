package order

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"waste-logistics/errs"
	geocode "waste-logistics/httpServices/geocode"
	"waste-logistics/logger"
	orderModel "waste-logistics/models/order"
	executionService "waste-logistics/services/execution"
	"waste-logistics/services/order_event"
	"waste-logistics/types"
	orderTypes "waste-logistics/types/order"
	"waste-logistics/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// OrderController handles order intake and lifecycle HTTP requests
type OrderController struct {
	DB        *gorm.DB
	Logger    *logger.AsyncLogger
	Geocoder  *geocode.GeocodeClient
	Execution *executionService.Service
}

// NewOrderController creates a new order controller
func NewOrderController(db *gorm.DB, asyncLogger *logger.AsyncLogger, geocoder *geocode.GeocodeClient) *OrderController {
	return &OrderController{
		DB:        db,
		Logger:    asyncLogger,
		Geocoder:  geocoder,
		Execution: executionService.NewService(db),
	}
}

func (oc *OrderController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	oc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (oc *OrderController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	oc.logAPIRequest(c)
	return result
}

// Store creates a new collection order in draft. Geocoding is best-effort:
// a failed lookup only leaves the coordinates null.
func (oc *OrderController) Store(c *fiber.Ctx) error {
	var req orderTypes.OrderCreateRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", err)
		return oc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if err := req.Validate(); err != nil {
		return oc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if err := utils.CheckSiteAccess(c, req.SiteID); err != nil {
		return oc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Caller is not allowed to act on this site",
		})
	}

	var slaDeadline *time.Time
	if req.SLADeadline != nil {
		parsed, err := time.Parse(time.RFC3339, *req.SLADeadline)
		if err != nil {
			return oc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
				Status:  fiber.StatusBadRequest,
				Message: "sla_deadline must be RFC3339",
			})
		}
		slaDeadline = &parsed
	}

	priority := orderModel.OrderPriorityNormal
	if req.Priority != "" {
		priority = orderModel.OrderPriority(req.Priority)
	}

	ord := orderModel.Order{
		SiteID:            req.SiteID,
		ClientID:          req.ClientID,
		WasteType:         req.WasteType,
		Description:       req.Description,
		Address:           req.Address,
		City:              req.City,
		Priority:          priority,
		Status:            orderModel.OrderStatusDraft,
		EstimatedWeightKg: req.EstimatedWeightKg,
		SLADeadline:       slaDeadline,
		CreatedBy:         utils.ActorFromClaims(c),
	}

	city := ""
	if req.City != nil {
		city = *req.City
	}
	if result, err := oc.Geocoder.Lookup(req.Address, city); err != nil {
		logger.Warning(fmt.Sprintf("Geocoding failed for order address %q: %v", req.Address, err))
	} else {
		ord.Latitude = &result.Lat
		ord.Longitude = &result.Lng
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ord).Error; err != nil {
			return err
		}
		return order_event.Snapshot(tx, &ord, "order_created", ord.CreatedBy)
	})
	if err != nil {
		logger.Error("Failed to create order", err)
		return oc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create order",
		})
	}

	return oc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Order created",
		Data:    ord,
	})
}

// Approve moves a draft order into the planning pool, recording approver
// and timestamp.
func (oc *OrderController) Approve(c *fiber.Ctx) error {
	var req orderTypes.OrderApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return oc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return oc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ord, err := oc.loadSiteCheckedOrder(c, req.OrderID)
	if err != nil {
		return oc.respondError(c, err)
	}

	actor := utils.ActorFromClaims(c)
	err = oc.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderModel.Order{}).
			Where("id = ? AND status = ?", req.OrderID, orderModel.OrderStatusDraft).
			Updates(map[string]interface{}{
				"status":      orderModel.OrderStatusPending,
				"approved_by": actor,
				"approved_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.InvalidTransition("order", ord.Status.String(), orderModel.OrderStatusPending.String())
		}
		return order_event.Snapshot(tx, ord, "order_approved", actor)
	})
	if err != nil {
		return oc.respondError(c, err)
	}

	return oc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Order approved",
		Data:    ord,
	})
}

// Cancel transitions an order to the terminal cancelled state. The status
// precondition is enforced by the execution service, not here.
func (oc *OrderController) Cancel(c *fiber.Ctx) error {
	var req orderTypes.OrderCancelRequest
	if err := c.BodyParser(&req); err != nil {
		return oc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return oc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if _, err := oc.loadSiteCheckedOrder(c, req.OrderID); err != nil {
		return oc.respondError(c, err)
	}

	if err := oc.Execution.CancelOrder(req.OrderID, req.Reason, utils.ActorFromClaims(c)); err != nil {
		return oc.respondError(c, err)
	}

	return oc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Order cancelled",
	})
}

// ListPending returns the site's pending orders, oldest first.
func (oc *OrderController) ListPending(c *fiber.Ctx) error {
	siteID, err := strconv.ParseUint(c.Query("site_id"), 10, 32)
	if err != nil || siteID == 0 {
		return oc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
			Status:  fiber.StatusBadRequest,
			Message: "site_id query parameter is required",
		})
	}
	if err := utils.CheckSiteAccess(c, uint(siteID)); err != nil {
		return oc.respondError(c, err)
	}

	var orders []orderModel.Order
	if err := oc.DB.
		Where("site_id = ? AND status = ?", uint(siteID), orderModel.OrderStatusPending).
		Order("created_at").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to list pending orders", err)
		return oc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list pending orders",
		})
	}

	return oc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Pending orders",
		Data:    orders,
	})
}

func (oc *OrderController) loadSiteCheckedOrder(c *fiber.Ctx, orderID uint) (*orderModel.Order, error) {
	var ord orderModel.Order
	if err := oc.DB.First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("order", orderID)
		}
		return nil, err
	}
	if err := utils.CheckSiteAccess(c, ord.SiteID); err != nil {
		return nil, err
	}
	return &ord, nil
}

func (oc *OrderController) respondError(c *fiber.Ctx, err error) error {
	status := errs.HTTPStatus(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		logger.Error("Order operation failed", err)
		message = "Internal server error"
	}
	return oc.sendResponseWithLog(c, status, types.ApiResponse{
		Status:  status,
		Message: message,
	})
}
