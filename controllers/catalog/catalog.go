package catalog

import (
	"strconv"
	"strings"

	"waste-logistics/logger"
	clientModel "waste-logistics/models/client"
	driverModel "waste-logistics/models/driver"
	siteModel "waste-logistics/models/site"
	vehicleModel "waste-logistics/models/vehicle"
	"waste-logistics/types"
	catalogTypes "waste-logistics/types/catalog"
	"waste-logistics/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CatalogController handles sites, clients, vehicles and drivers
type CatalogController struct {
	DB     *gorm.DB
	Logger *logger.AsyncLogger
}

// NewCatalogController creates a new catalog controller
func NewCatalogController(db *gorm.DB, asyncLogger *logger.AsyncLogger) *CatalogController {
	return &CatalogController{
		DB:     db,
		Logger: asyncLogger,
	}
}

func (cc *CatalogController) logAPIRequest(c *fiber.Ctx) {
	logEntry := utils.CreateSanitizedLogEntry(c)
	cc.Logger.Log(logEntry)
}

// Helper function to send response and log in one call
func (cc *CatalogController) sendResponseWithLog(c *fiber.Ctx, status int, response types.ApiResponse) error {
	result := c.Status(status).JSON(response)
	cc.logAPIRequest(c)
	return result
}

func (cc *CatalogController) badRequest(c *fiber.Ctx, message string) error {
	return cc.sendResponseWithLog(c, fiber.StatusBadRequest, types.ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
	})
}

func isDuplicateError(err error) bool {
	return strings.Contains(err.Error(), "Duplicate entry") ||
		strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// siteIDQuery reads and authorizes the site_id query parameter.
func (cc *CatalogController) siteIDQuery(c *fiber.Ctx) (uint, error) {
	siteID, err := strconv.ParseUint(c.Query("site_id"), 10, 32)
	if err != nil || siteID == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "site_id query parameter is required")
	}
	if err := utils.CheckSiteAccess(c, uint(siteID)); err != nil {
		return 0, fiber.NewError(fiber.StatusForbidden, "Caller is not allowed to act on this site")
	}
	return uint(siteID), nil
}

// StoreSite creates a new operating site
func (cc *CatalogController) StoreSite(c *fiber.Ctx) error {
	var request catalogTypes.SiteStoreRequest
	if err := c.BodyParser(&request); err != nil {
		return cc.badRequest(c, "Invalid request body")
	}
	if err := request.Validate(); err != nil {
		return cc.badRequest(c, err.Error())
	}

	site := siteModel.Site{
		Code:     request.Code,
		Name:     request.Name,
		Address:  request.Address,
		City:     request.City,
		IsActive: true,
	}

	if result := cc.DB.Create(&site); result.Error != nil {
		if isDuplicateError(result.Error) {
			return cc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
				Status:  fiber.StatusConflict,
				Message: "A site with this code already exists.",
			})
		}
		logger.Error("Failed to create site", result.Error)
		return cc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create site",
		})
	}

	return cc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Site created successfully",
		Data:    site,
	})
}

// ListSites returns all active sites
func (cc *CatalogController) ListSites(c *fiber.Ctx) error {
	var sites []siteModel.Site
	if err := cc.DB.Where("is_active = ?", true).Order("code").Find(&sites).Error; err != nil {
		logger.Error("Failed to list sites", err)
		return cc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list sites",
		})
	}

	return cc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Sites",
		Data:    sites,
	})
}

// StoreClient creates a new waste supplier
func (cc *CatalogController) StoreClient(c *fiber.Ctx) error {
	var request catalogTypes.ClientStoreRequest
	if err := c.BodyParser(&request); err != nil {
		return cc.badRequest(c, "Invalid request body")
	}
	if err := request.Validate(); err != nil {
		return cc.badRequest(c, err.Error())
	}
	if err := utils.CheckSiteAccess(c, request.SiteID); err != nil {
		return cc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Caller is not allowed to act on this site",
		})
	}

	client := clientModel.Client{
		SiteID:          request.SiteID,
		Name:            request.Name,
		ContactPhone:    request.ContactPhone,
		Address:         request.Address,
		City:            request.City,
		AvgQualityIndex: request.AvgQualityIndex,
		IsActive:        true,
		CreatedBy:       utils.ActorFromClaims(c),
	}

	if result := cc.DB.Create(&client); result.Error != nil {
		logger.Error("Failed to create client", result.Error)
		return cc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create client",
		})
	}

	return cc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Client created successfully",
		Data:    client,
	})
}

// ListClients returns a site's active clients
func (cc *CatalogController) ListClients(c *fiber.Ctx) error {
	siteID, err := cc.siteIDQuery(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return cc.sendResponseWithLog(c, fe.Code, types.ApiResponse{
			Status:  fe.Code,
			Message: fe.Message,
		})
	}

	var clients []clientModel.Client
	if err := cc.DB.
		Where("site_id = ? AND is_active = ? AND deleted_at IS NULL", siteID, true).
		Order("name").
		Find(&clients).Error; err != nil {
		logger.Error("Failed to list clients", err)
		return cc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list clients",
		})
	}

	return cc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Clients",
		Data:    clients,
	})
}

// StoreVehicle registers a collection truck
func (cc *CatalogController) StoreVehicle(c *fiber.Ctx) error {
	var request catalogTypes.VehicleStoreRequest
	if err := c.BodyParser(&request); err != nil {
		return cc.badRequest(c, "Invalid request body")
	}
	if err := request.Validate(); err != nil {
		return cc.badRequest(c, err.Error())
	}
	if err := utils.CheckSiteAccess(c, request.SiteID); err != nil {
		return cc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Caller is not allowed to act on this site",
		})
	}

	vehicle := vehicleModel.Vehicle{
		SiteID:      request.SiteID,
		PlateNumber: request.PlateNumber,
		Model:       request.Model,
		CapacityKg:  request.CapacityKg,
		IsActive:    true,
	}

	if result := cc.DB.Create(&vehicle); result.Error != nil {
		if isDuplicateError(result.Error) {
			return cc.sendResponseWithLog(c, fiber.StatusConflict, types.ApiResponse{
				Status:  fiber.StatusConflict,
				Message: "A vehicle with this plate number already exists.",
			})
		}
		logger.Error("Failed to create vehicle", result.Error)
		return cc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create vehicle",
		})
	}

	return cc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Vehicle created successfully",
		Data:    vehicle,
	})
}

// ListVehicles returns a site's active vehicles
func (cc *CatalogController) ListVehicles(c *fiber.Ctx) error {
	siteID, err := cc.siteIDQuery(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return cc.sendResponseWithLog(c, fe.Code, types.ApiResponse{
			Status:  fe.Code,
			Message: fe.Message,
		})
	}

	var vehicles []vehicleModel.Vehicle
	if err := cc.DB.
		Where("site_id = ? AND is_active = ? AND deleted_at IS NULL", siteID, true).
		Order("plate_number").
		Find(&vehicles).Error; err != nil {
		logger.Error("Failed to list vehicles", err)
		return cc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list vehicles",
		})
	}

	return cc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Vehicles",
		Data:    vehicles,
	})
}

// StoreDriver registers a field driver
func (cc *CatalogController) StoreDriver(c *fiber.Ctx) error {
	var request catalogTypes.DriverStoreRequest
	if err := c.BodyParser(&request); err != nil {
		return cc.badRequest(c, "Invalid request body")
	}
	if err := request.Validate(); err != nil {
		return cc.badRequest(c, err.Error())
	}
	if err := utils.CheckSiteAccess(c, request.SiteID); err != nil {
		return cc.sendResponseWithLog(c, fiber.StatusForbidden, types.ApiResponse{
			Status:  fiber.StatusForbidden,
			Message: "Caller is not allowed to act on this site",
		})
	}

	driver := driverModel.Driver{
		SiteID:        request.SiteID,
		Name:          request.Name,
		Phone:         request.Phone,
		LicenseNumber: request.LicenseNumber,
		IsActive:      true,
	}

	if result := cc.DB.Create(&driver); result.Error != nil {
		logger.Error("Failed to create driver", result.Error)
		return cc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to create driver",
		})
	}

	return cc.sendResponseWithLog(c, fiber.StatusCreated, types.ApiResponse{
		Status:  fiber.StatusCreated,
		Message: "Driver created successfully",
		Data:    driver,
	})
}

// ListDrivers returns a site's active drivers
func (cc *CatalogController) ListDrivers(c *fiber.Ctx) error {
	siteID, err := cc.siteIDQuery(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return cc.sendResponseWithLog(c, fe.Code, types.ApiResponse{
			Status:  fe.Code,
			Message: fe.Message,
		})
	}

	var drivers []driverModel.Driver
	if err := cc.DB.
		Where("site_id = ? AND is_active = ? AND deleted_at IS NULL", siteID, true).
		Order("name").
		Find(&drivers).Error; err != nil {
		logger.Error("Failed to list drivers", err)
		return cc.sendResponseWithLog(c, fiber.StatusInternalServerError, types.ApiResponse{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to list drivers",
		})
	}

	return cc.sendResponseWithLog(c, fiber.StatusOK, types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Drivers",
		Data:    drivers,
	})
}
