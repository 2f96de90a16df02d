package intake

import (
	"time"
)

// IntakeParseRequest records one attempt to turn a free-text pickup note
// into structured order fields. Kept for audit regardless of outcome.
type IntakeParseRequest struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID string `gorm:"type:varchar(64);not null;unique" json:"request_id"`
	SiteID    uint   `gorm:"not null;index" json:"site_id"`

	Note   string `gorm:"type:text;not null" json:"note"`
	Status string `gorm:"type:varchar(20);not null" json:"status"` // processing, completed, failed

	// Extracted fields, filled on success.
	WasteType         *string  `gorm:"type:varchar(100)" json:"waste_type,omitempty"`
	EstimatedWeightKg *float64 `json:"estimated_weight_kg,omitempty"`
	UrgencyHint       *string  `gorm:"type:varchar(20)" json:"urgency_hint,omitempty"`

	ErrorMessage     *string `gorm:"type:text" json:"error_message,omitempty"`
	ProcessingTimeMs *int64  `json:"processing_time_ms,omitempty"`

	IPAddress string    `gorm:"type:varchar(45)" json:"ip_address"`
	CreatedBy string    `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IntakeParseResponse is the structured result returned to the caller.
type IntakeParseResponse struct {
	WasteType         string   `json:"waste_type"`
	EstimatedWeightKg *float64 `json:"estimated_weight_kg"`
	UrgencyHint       string   `json:"urgency_hint"`
}
