package intake

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"waste-logistics/logger"
	intakeModel "waste-logistics/models/intake"

	"gorm.io/gorm"
)

// IntakeService persists intake-parse requests and their outcomes.
type IntakeService struct {
	DB *gorm.DB
}

func NewIntakeService(db *gorm.DB) *IntakeService {
	return &IntakeService{DB: db}
}

// GenerateRequestID generates a 24 character unique request ID
func (s *IntakeService) GenerateRequestID() string {
	bytes := make([]byte, 12)
	rand.Read(bytes)

	requestID := hex.EncodeToString(bytes)
	timestamp := time.Now().Unix()

	// Last 6 characters of timestamp + 18 characters of random hex
	return fmt.Sprintf("%06x%s", timestamp&0xffffff, requestID[:18])
}

// CreateInitialRequest creates an initial request record in the database
func (s *IntakeService) CreateInitialRequest(requestID string, siteID uint, note, ipAddress, createdBy string) (*intakeModel.IntakeParseRequest, error) {
	request := &intakeModel.IntakeParseRequest{
		RequestID: requestID,
		SiteID:    siteID,
		Note:      note,
		Status:    "processing",
		IPAddress: ipAddress,
		CreatedBy: createdBy,
	}

	if err := s.DB.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create initial request: %w", err)
	}

	return request, nil
}

// SaveSuccessResult stores the extracted fields for a request.
func (s *IntakeService) SaveSuccessResult(requestID string, result *intakeModel.IntakeParseResponse, processingTimeMs int64) {
	updates := map[string]interface{}{
		"status":              "completed",
		"waste_type":          result.WasteType,
		"estimated_weight_kg": result.EstimatedWeightKg,
		"urgency_hint":        result.UrgencyHint,
		"processing_time_ms":  processingTimeMs,
	}

	if err := s.DB.Model(&intakeModel.IntakeParseRequest{}).
		Where("request_id = ?", requestID).
		Updates(updates).Error; err != nil {
		logger.Error(fmt.Sprintf("Failed to save intake result for request %s", requestID), err)
	}
}

// SaveError marks a request as failed with its error message.
func (s *IntakeService) SaveError(requestID string, errMsg string) {
	updates := map[string]interface{}{
		"status":        "failed",
		"error_message": errMsg,
	}

	if err := s.DB.Model(&intakeModel.IntakeParseRequest{}).
		Where("request_id = ?", requestID).
		Updates(updates).Error; err != nil {
		logger.Error(fmt.Sprintf("Failed to save intake error for request %s", requestID), err)
	}
}
