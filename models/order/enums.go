package order

type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPlanned   OrderStatus = "planned"
	OrderStatusOnRoute   OrderStatus = "on_route"
	OrderStatusAtClient  OrderStatus = "at_client"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type OrderPriority string

const (
	OrderPriorityNormal   OrderPriority = "normal"
	OrderPriorityUrgent   OrderPriority = "urgent"
	OrderPriorityCritical OrderPriority = "critical"
)

// orderTransitions is the single source of truth for order status changes.
// Every mutation in the services layer consults this table; there are no
// scattered ad hoc status checks.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:     {OrderStatusPending, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusPending:   {OrderStatusPlanned, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusPlanned:   {OrderStatusPending, OrderStatusOnRoute, OrderStatusAtClient, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusOnRoute:   {OrderStatusAtClient, OrderStatusPending, OrderStatusFailed},
	OrderStatusAtClient:  {OrderStatusCompleted, OrderStatusFailed},
	OrderStatusCompleted: {},
	OrderStatusFailed:    {},
	OrderStatusCancelled: {},
}

// ValidTransition reports whether an order may move from one status to another.
func ValidTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionSources returns every status the transition table allows to move
// into the target. Guarded bulk updates build their WHERE status IN clause
// from this, so the table stays the only place transitions are encoded.
func TransitionSources(to OrderStatus) []OrderStatus {
	var sources []OrderStatus
	for _, from := range GetAllOrderStatuses() {
		if ValidTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

func (os OrderStatus) String() string {
	return string(os)
}

func (os OrderStatus) IsValid() bool {
	_, ok := orderTransitions[os]
	return ok
}

// IsTerminal returns true once the order can never change status again.
func (os OrderStatus) IsTerminal() bool {
	switch os {
	case OrderStatusCompleted, OrderStatusFailed, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Cancellable returns true if an explicit cancellation is still allowed.
// Enforced here at the mutation boundary, not in the calling UI.
func (os OrderStatus) Cancellable() bool {
	return ValidTransition(os, OrderStatusCancelled)
}

func (op OrderPriority) String() string {
	return string(op)
}

func (op OrderPriority) IsValid() bool {
	switch op {
	case OrderPriorityNormal, OrderPriorityUrgent, OrderPriorityCritical:
		return true
	default:
		return false
	}
}

// GetAllOrderStatuses returns all valid order statuses
func GetAllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusDraft,
		OrderStatusPending,
		OrderStatusPlanned,
		OrderStatusOnRoute,
		OrderStatusAtClient,
		OrderStatusCompleted,
		OrderStatusFailed,
		OrderStatusCancelled,
	}
}
