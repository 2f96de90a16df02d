package catalog

import "fmt"

// ClientStoreRequest creates a waste supplier for a site.
type ClientStoreRequest struct {
	SiteID          uint     `json:"site_id"`
	Name            string   `json:"name"`
	ContactPhone    *string  `json:"contact_phone"`
	Address         string   `json:"address"`
	City            *string  `json:"city"`
	AvgQualityIndex *float64 `json:"avg_quality_index"`
}

func (r ClientStoreRequest) Validate() error {
	if r.SiteID == 0 {
		return fmt.Errorf("site_id is required")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.AvgQualityIndex != nil && (*r.AvgQualityIndex < 0 || *r.AvgQualityIndex > 5) {
		return fmt.Errorf("avg_quality_index must be between 0 and 5")
	}
	return nil
}

// VehicleStoreRequest registers a collection truck for a site.
type VehicleStoreRequest struct {
	SiteID      uint     `json:"site_id"`
	PlateNumber string   `json:"plate_number"`
	Model       string   `json:"model"`
	CapacityKg  *float64 `json:"capacity_kg"`
}

func (r VehicleStoreRequest) Validate() error {
	if r.SiteID == 0 {
		return fmt.Errorf("site_id is required")
	}
	if r.PlateNumber == "" {
		return fmt.Errorf("plate_number is required")
	}
	if r.CapacityKg != nil && *r.CapacityKg <= 0 {
		return fmt.Errorf("capacity_kg must be greater than zero")
	}
	return nil
}

// DriverStoreRequest registers a field driver for a site.
type DriverStoreRequest struct {
	SiteID        uint    `json:"site_id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	LicenseNumber *string `json:"license_number"`
}

func (r DriverStoreRequest) Validate() error {
	if r.SiteID == 0 {
		return fmt.Errorf("site_id is required")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	return nil
}

// SiteStoreRequest creates an operating site.
type SiteStoreRequest struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    *string `json:"city"`
}

func (r SiteStoreRequest) Validate() error {
	if r.Code == "" {
		return fmt.Errorf("code is required")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
