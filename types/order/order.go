package order

import (
	"fmt"

	orderModel "waste-logistics/models/order"
)

// OrderCreateRequest represents the request payload for creating an order (draft)
type OrderCreateRequest struct {
	SiteID            uint     `json:"site_id"`
	ClientID          *uint    `json:"client_id,omitempty"`
	WasteType         string   `json:"waste_type"`
	Description       string   `json:"description,omitempty"`
	Address           string   `json:"address"`
	City              *string  `json:"city,omitempty"`
	Priority          string   `json:"priority,omitempty"`
	EstimatedWeightKg *float64 `json:"estimated_weight_kg,omitempty"`
	SLADeadline       *string  `json:"sla_deadline,omitempty"` // RFC3339
}

func (r OrderCreateRequest) Validate() error {
	if r.SiteID == 0 {
		return fmt.Errorf("site_id is required")
	}
	if r.WasteType == "" {
		return fmt.Errorf("waste_type is required")
	}
	if r.Address == "" {
		return fmt.Errorf("address is required")
	}
	if r.Priority != "" && !orderModel.OrderPriority(r.Priority).IsValid() {
		return fmt.Errorf("priority must be one of 'normal', 'urgent', 'critical'")
	}
	if r.EstimatedWeightKg != nil && *r.EstimatedWeightKg < 0 {
		return fmt.Errorf("estimated_weight_kg must not be negative")
	}
	return nil
}

// OrderApproveRequest moves a draft order into the planning pool.
type OrderApproveRequest struct {
	OrderID uint `json:"order_id"`
}

func (r OrderApproveRequest) Validate() error {
	if r.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	return nil
}

// OrderCancelRequest represents an explicit cancellation with its reason.
type OrderCancelRequest struct {
	OrderID uint   `json:"order_id"`
	Reason  string `json:"reason"`
}

func (r OrderCancelRequest) Validate() error {
	if r.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if r.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	return nil
}

// IntakeParseNoteRequest carries a free-text pickup note for extraction.
type IntakeParseNoteRequest struct {
	SiteID uint   `json:"site_id"`
	Note   string `json:"note"`
}

func (r IntakeParseNoteRequest) Validate() error {
	if r.SiteID == 0 {
		return fmt.Errorf("site_id is required")
	}
	if r.Note == "" {
		return fmt.Errorf("note is required")
	}
	return nil
}
