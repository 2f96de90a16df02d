package route

type RouteStatus string

const (
	RouteStatusDraft       RouteStatus = "draft"
	RouteStatusConfirmed   RouteStatus = "confirmed"
	RouteStatusOnExecution RouteStatus = "on_execution"
	RouteStatusCompleted   RouteStatus = "completed"
)

type StopStatus string

const (
	StopStatusPending   StopStatus = "pending"
	StopStatusAtClient  StopStatus = "at_client"
	StopStatusCompleted StopStatus = "completed"
	StopStatusFailed    StopStatus = "failed"
	StopStatusSkipped   StopStatus = "skipped"
)

var routeTransitions = map[RouteStatus][]RouteStatus{
	RouteStatusDraft:       {RouteStatusConfirmed},
	RouteStatusConfirmed:   {RouteStatusOnExecution},
	RouteStatusOnExecution: {RouteStatusCompleted},
	RouteStatusCompleted:   {},
}

// Stop terminal states are write-once: completed, failed and skipped have no
// outgoing transitions. Failing straight from pending covers the no-show
// case; skipping is only possible before arrival.
var stopTransitions = map[StopStatus][]StopStatus{
	StopStatusPending:   {StopStatusAtClient, StopStatusFailed, StopStatusSkipped},
	StopStatusAtClient:  {StopStatusCompleted, StopStatusFailed},
	StopStatusCompleted: {},
	StopStatusFailed:    {},
	StopStatusSkipped:   {},
}

// ValidTransition reports whether a route may move from one status to another.
func ValidTransition(from, to RouteStatus) bool {
	for _, next := range routeTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStopTransition reports whether a stop may move from one status to another.
func ValidStopTransition(from, to StopStatus) bool {
	for _, next := range stopTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GetAllStopStatuses returns all valid stop statuses
func GetAllStopStatuses() []StopStatus {
	return []StopStatus{
		StopStatusPending,
		StopStatusAtClient,
		StopStatusCompleted,
		StopStatusFailed,
		StopStatusSkipped,
	}
}

// TerminalStopStatuses returns the stop statuses with no outgoing
// transitions. A route may only conclude once every stop is in one of these.
func TerminalStopStatuses() []StopStatus {
	var terminal []StopStatus
	for _, ss := range GetAllStopStatuses() {
		if ss.IsTerminal() {
			terminal = append(terminal, ss)
		}
	}
	return terminal
}

func (rs RouteStatus) String() string {
	return string(rs)
}

func (rs RouteStatus) IsValid() bool {
	_, ok := routeTransitions[rs]
	return ok
}

// Plannable returns true while the stop list may still be edited
// (add/remove/reorder) and the assignment changed.
func (rs RouteStatus) Plannable() bool {
	return rs == RouteStatusDraft || rs == RouteStatusConfirmed
}

func (ss StopStatus) String() string {
	return string(ss)
}

func (ss StopStatus) IsValid() bool {
	_, ok := stopTransitions[ss]
	return ok
}

// IsTerminal returns true once the stop can never change status again.
func (ss StopStatus) IsTerminal() bool {
	switch ss {
	case StopStatusCompleted, StopStatusFailed, StopStatusSkipped:
		return true
	default:
		return false
	}
}
