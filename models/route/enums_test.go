package route

import "testing"

func TestRouteValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from RouteStatus
		to   RouteStatus
		want bool
	}{
		{"draft to confirmed", RouteStatusDraft, RouteStatusConfirmed, true},
		{"draft to on_execution", RouteStatusDraft, RouteStatusOnExecution, false},
		{"confirmed to on_execution", RouteStatusConfirmed, RouteStatusOnExecution, true},
		{"confirmed back to draft", RouteStatusConfirmed, RouteStatusDraft, false},
		{"on_execution to completed", RouteStatusOnExecution, RouteStatusCompleted, true},
		{"completed is terminal", RouteStatusCompleted, RouteStatusDraft, false},
		{"unknown status", RouteStatus("bogus"), RouteStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("ValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStopValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from StopStatus
		to   StopStatus
		want bool
	}{
		{"pending to at_client", StopStatusPending, StopStatusAtClient, true},
		{"pending to failed no-show", StopStatusPending, StopStatusFailed, true},
		{"pending to skipped", StopStatusPending, StopStatusSkipped, true},
		{"pending to completed", StopStatusPending, StopStatusCompleted, false},
		{"at_client to completed", StopStatusAtClient, StopStatusCompleted, true},
		{"at_client to failed", StopStatusAtClient, StopStatusFailed, true},
		{"at_client to skipped", StopStatusAtClient, StopStatusSkipped, false},
		{"completed is terminal", StopStatusCompleted, StopStatusPending, false},
		{"failed is terminal", StopStatusFailed, StopStatusAtClient, false},
		{"skipped is terminal", StopStatusSkipped, StopStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidStopTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("ValidStopTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPlannable(t *testing.T) {
	plannable := map[RouteStatus]bool{
		RouteStatusDraft:       true,
		RouteStatusConfirmed:   true,
		RouteStatusOnExecution: false,
		RouteStatusCompleted:   false,
	}

	for status, want := range plannable {
		if got := status.Plannable(); got != want {
			t.Errorf("%s.Plannable() = %v, want %v", status, got, want)
		}
	}
}

func TestTerminalStopStatuses(t *testing.T) {
	got := TerminalStopStatuses()
	want := []StopStatus{StopStatusCompleted, StopStatusFailed, StopStatusSkipped}

	if len(got) != len(want) {
		t.Fatalf("TerminalStopStatuses() = %v, want %v", got, want)
	}
	for i, status := range want {
		if got[i] != status {
			t.Errorf("TerminalStopStatuses()[%d] = %s, want %s", i, got[i], status)
		}
	}
}

func TestStopIsTerminal(t *testing.T) {
	terminal := map[StopStatus]bool{
		StopStatusPending:   false,
		StopStatusAtClient:  false,
		StopStatusCompleted: true,
		StopStatusFailed:    true,
		StopStatusSkipped:   true,
	}

	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}
