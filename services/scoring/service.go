package scoring

import (
	"fmt"
	"time"

	clientModel "waste-logistics/models/client"
	orderModel "waste-logistics/models/order"

	"gorm.io/gorm"
)

// ScorePendingOrders reads the site's pending orders plus the supplier
// quality map and ranks them. Read-only: it may run concurrently with any
// mutation, and callers accept that the ranking reflects a snapshot.
func ScorePendingOrders(db *gorm.DB, siteID uint) ([]RankedOrder, error) {
	var orders []orderModel.Order
	if err := db.
		Where("site_id = ? AND status = ?", siteID, orderModel.OrderStatusPending).
		Order("id").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("load pending orders for site %d: %w", siteID, err)
	}

	inputs := make([]OrderInput, 0, len(orders))
	clientIDs := make([]uint, 0, len(orders))
	seen := make(map[uint]bool)
	for _, o := range orders {
		inputs = append(inputs, OrderInput{
			OrderID:           o.ID,
			ClientID:          o.ClientID,
			Priority:          o.Priority,
			SLADeadline:       o.SLADeadline,
			EstimatedWeightKg: o.EstimatedWeightKg,
			CreatedAt:         o.CreatedAt,
		})
		if o.ClientID != nil && !seen[*o.ClientID] {
			seen[*o.ClientID] = true
			clientIDs = append(clientIDs, *o.ClientID)
		}
	}

	quality, err := lookupSupplierQuality(db, clientIDs)
	if err != nil {
		return nil, err
	}

	return Rank(inputs, quality, time.Now()), nil
}

// lookupSupplierQuality returns client_id -> avg_quality_index for the
// clients that have one recorded; missing entries fall back to
// DefaultQualityIndex inside Rank.
func lookupSupplierQuality(db *gorm.DB, clientIDs []uint) (map[uint]float64, error) {
	quality := make(map[uint]float64, len(clientIDs))
	if len(clientIDs) == 0 {
		return quality, nil
	}

	var clients []clientModel.Client
	if err := db.
		Select("id", "avg_quality_index").
		Where("id IN ?", clientIDs).
		Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("load supplier quality: %w", err)
	}

	for _, cl := range clients {
		if cl.AvgQualityIndex != nil {
			quality[cl.ID] = *cl.AvgQualityIndex
		}
	}
	return quality, nil
}
