package scoring

import (
	"math"
	"sort"
	"time"

	orderModel "waste-logistics/models/order"
)

// Component weights. They sum to 0.90; the residual 0.10 is reserved for a
// vehicle-capacity-fit term that is not computed when no candidate vehicle
// is supplied, so the composite is renormalized by weightTotal.
const (
	weightPriority   = 0.30
	weightSLAUrgency = 0.20
	weightSupplier   = 0.15
	weightWaitTime   = 0.15
	weightWasteValue = 0.10

	weightTotal = weightPriority + weightSLAUrgency + weightSupplier + weightWaitTime + weightWasteValue
)

// DefaultQualityIndex is assumed for clients with no recorded history.
const DefaultQualityIndex = 2.5

// slaHorizonDays is where SLA urgency decays to zero.
const slaHorizonDays = 30.0

const secondsPerDay = 86400.0

// OrderInput is the scoring snapshot of one pending order.
type OrderInput struct {
	OrderID           uint
	ClientID          *uint
	Priority          orderModel.OrderPriority
	SLADeadline       *time.Time
	EstimatedWeightKg *float64
	CreatedAt         time.Time
}

// Breakdown reports each component on a 0-100 scale for display/audit.
type Breakdown struct {
	PriorityScore   int `json:"priority_score"`
	SLAUrgencyScore int `json:"sla_urgency_score"`
	SupplierScore   int `json:"supplier_score"`
	WaitTimeScore   int `json:"wait_time_score"`
	WasteValueScore int `json:"waste_value_score"`
}

// RankedOrder is one entry of the ranking result.
type RankedOrder struct {
	OrderID       uint      `json:"order_id"`
	PlanningScore int       `json:"planning_score"`
	Breakdown     Breakdown `json:"breakdown"`
}

// Rank computes the composite planning score for a batch of pending orders.
// It is a pure function: identical inputs always produce identical output
// and it performs no writes. The result is sorted descending by score; ties
// keep input order (stable sort).
func Rank(orders []OrderInput, quality map[uint]float64, now time.Time) []RankedOrder {
	if len(orders) == 0 {
		return []RankedOrder{}
	}

	// Batch maxima for wait-time and waste-value normalization, with a
	// floor of 1 to avoid division by zero.
	maxWaitDays := 1.0
	maxWeightKg := 1.0
	for _, o := range orders {
		if wait := daysSince(o.CreatedAt, now); wait > maxWaitDays {
			maxWaitDays = wait
		}
		if o.EstimatedWeightKg != nil && *o.EstimatedWeightKg > maxWeightKg {
			maxWeightKg = *o.EstimatedWeightKg
		}
	}

	ranked := make([]RankedOrder, 0, len(orders))
	for _, o := range orders {
		priority := priorityScore(o.Priority)
		slaUrgency := slaUrgencyScore(o.SLADeadline, now)
		supplier := supplierScore(o.ClientID, quality)
		waitTime := math.Min(daysSince(o.CreatedAt, now)/maxWaitDays, 1)

		wasteValue := 0.0
		if o.EstimatedWeightKg != nil {
			wasteValue = math.Min(*o.EstimatedWeightKg/maxWeightKg, 1)
		}

		raw := priority*weightPriority +
			slaUrgency*weightSLAUrgency +
			supplier*weightSupplier +
			waitTime*weightWaitTime +
			wasteValue*weightWasteValue

		ranked = append(ranked, RankedOrder{
			OrderID:       o.OrderID,
			PlanningScore: int(math.Round(raw / weightTotal * 100)),
			Breakdown: Breakdown{
				PriorityScore:   int(math.Round(priority * 100)),
				SLAUrgencyScore: int(math.Round(slaUrgency * 100)),
				SupplierScore:   int(math.Round(supplier * 100)),
				WaitTimeScore:   int(math.Round(waitTime * 100)),
				WasteValueScore: int(math.Round(wasteValue * 100)),
			},
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PlanningScore > ranked[j].PlanningScore
	})

	return ranked
}

func priorityScore(p orderModel.OrderPriority) float64 {
	switch p {
	case orderModel.OrderPriorityCritical:
		return 1.0
	case orderModel.OrderPriorityUrgent:
		return 0.6
	default:
		return 0.2
	}
}

// slaUrgencyScore is 1.0 once the deadline has passed and decays linearly
// to 0 at slaHorizonDays out. No deadline means no urgency.
func slaUrgencyScore(deadline *time.Time, now time.Time) float64 {
	if deadline == nil {
		return 0
	}
	daysUntil := deadline.Sub(now).Seconds() / secondsPerDay
	if daysUntil <= 0 {
		return 1.0
	}
	return math.Max(0, 1-daysUntil/slaHorizonDays)
}

// supplierScore compensates for historically poor suppliers: lower incoming
// material quality raises collection priority.
func supplierScore(clientID *uint, quality map[uint]float64) float64 {
	q := DefaultQualityIndex
	if clientID != nil {
		if idx, ok := quality[*clientID]; ok {
			q = idx
		}
	}
	return 1 - q/5
}

func daysSince(t, now time.Time) float64 {
	d := now.Sub(t).Seconds() / secondsPerDay
	if d < 0 {
		return 0
	}
	return d
}
