package execution

import (
	"fmt"
)

type StartRouteRequest struct {
	RouteID uint `json:"route_id"`
}

func (r StartRouteRequest) Validate() error {
	if r.RouteID == 0 {
		return fmt.Errorf("route_id is required")
	}
	return nil
}

type ConcludeRouteRequest struct {
	RouteID uint `json:"route_id"`
}

func (r ConcludeRouteRequest) Validate() error {
	if r.RouteID == 0 {
		return fmt.Errorf("route_id is required")
	}
	return nil
}

type ArriveRequest struct {
	StopID uint `json:"stop_id"`
}

func (r ArriveRequest) Validate() error {
	if r.StopID == 0 {
		return fmt.Errorf("stop_id is required")
	}
	return nil
}

type CompleteStopRequest struct {
	StopID         uint    `json:"stop_id"`
	ActualWeightKg float64 `json:"actual_weight_kg"`
	Notes          *string `json:"notes,omitempty"`
}

func (r CompleteStopRequest) Validate() error {
	if r.StopID == 0 {
		return fmt.Errorf("stop_id is required")
	}
	// The > 0 rule lives in the execution service; here only a missing
	// field is rejected.
	if r.ActualWeightKg == 0 {
		return fmt.Errorf("actual_weight_kg is required")
	}
	return nil
}

type FailStopRequest struct {
	StopID uint   `json:"stop_id"`
	Reason string `json:"reason"`
}

func (r FailStopRequest) Validate() error {
	if r.StopID == 0 {
		return fmt.Errorf("stop_id is required")
	}
	if r.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	return nil
}

type SkipStopRequest struct {
	StopID uint   `json:"stop_id"`
	Reason string `json:"reason"`
}

func (r SkipStopRequest) Validate() error {
	if r.StopID == 0 {
		return fmt.Errorf("stop_id is required")
	}
	if r.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	return nil
}
