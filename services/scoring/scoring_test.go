package scoring

import (
	"testing"
	"time"

	orderModel "waste-logistics/models/order"
)

func floatPtr(f float64) *float64 { return &f }
func uintPtr(u uint) *uint        { return &u }
func timePtr(t time.Time) *time.Time {
	return &t
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestRankEmptyBatch(t *testing.T) {
	ranked := Rank(nil, nil, testNow)
	if ranked == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(ranked) != 0 {
		t.Fatalf("expected 0 results, got %d", len(ranked))
	}
}

func TestRankMaxedComponents(t *testing.T) {
	// Critical priority, overdue deadline, worst supplier quality, and the
	// batch maximum for both wait time and weight hit 100 exactly.
	quality := map[uint]float64{7: 0}
	orders := []OrderInput{
		{
			OrderID:           1,
			ClientID:          uintPtr(7),
			Priority:          orderModel.OrderPriorityCritical,
			SLADeadline:       timePtr(testNow.Add(-24 * time.Hour)),
			EstimatedWeightKg: floatPtr(500),
			CreatedAt:         testNow.Add(-10 * 24 * time.Hour),
		},
	}

	ranked := Rank(orders, quality, testNow)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 result, got %d", len(ranked))
	}
	if ranked[0].PlanningScore != 100 {
		t.Errorf("expected planning score 100, got %d", ranked[0].PlanningScore)
	}

	b := ranked[0].Breakdown
	if b.PriorityScore != 100 || b.SLAUrgencyScore != 100 || b.SupplierScore != 100 ||
		b.WaitTimeScore != 100 || b.WasteValueScore != 100 {
		t.Errorf("expected all components at 100, got %+v", b)
	}
}

func TestRankComponentBreakdown(t *testing.T) {
	// Normal priority, no deadline, no client history, created just now,
	// no weight estimate: only priority (0.2) and the default supplier
	// compensation (0.5) contribute.
	orders := []OrderInput{
		{
			OrderID:   1,
			Priority:  orderModel.OrderPriorityNormal,
			CreatedAt: testNow,
		},
	}

	ranked := Rank(orders, nil, testNow)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 result, got %d", len(ranked))
	}

	b := ranked[0].Breakdown
	if b.PriorityScore != 20 {
		t.Errorf("expected priority score 20, got %d", b.PriorityScore)
	}
	if b.SLAUrgencyScore != 0 {
		t.Errorf("expected sla urgency score 0, got %d", b.SLAUrgencyScore)
	}
	if b.SupplierScore != 50 {
		t.Errorf("expected supplier score 50, got %d", b.SupplierScore)
	}
	if b.WaitTimeScore != 0 {
		t.Errorf("expected wait time score 0, got %d", b.WaitTimeScore)
	}
	if b.WasteValueScore != 0 {
		t.Errorf("expected waste value score 0, got %d", b.WasteValueScore)
	}

	// (0.2*0.30 + 0.5*0.15) / 0.90 * 100 = 15
	if ranked[0].PlanningScore != 15 {
		t.Errorf("expected planning score 15, got %d", ranked[0].PlanningScore)
	}
}

func TestRankScoresBounded(t *testing.T) {
	orders := []OrderInput{
		{OrderID: 1, Priority: orderModel.OrderPriorityCritical, SLADeadline: timePtr(testNow.Add(-100 * 24 * time.Hour)), EstimatedWeightKg: floatPtr(10000), CreatedAt: testNow.Add(-365 * 24 * time.Hour)},
		{OrderID: 2, Priority: orderModel.OrderPriorityNormal, CreatedAt: testNow.Add(24 * time.Hour)},
		{OrderID: 3, Priority: orderModel.OrderPriority("bogus"), CreatedAt: testNow},
		{OrderID: 4, Priority: orderModel.OrderPriorityUrgent, SLADeadline: timePtr(testNow.Add(500 * 24 * time.Hour)), EstimatedWeightKg: floatPtr(0.001), CreatedAt: testNow},
	}

	for _, r := range Rank(orders, nil, testNow) {
		if r.PlanningScore < 0 || r.PlanningScore > 100 {
			t.Errorf("order %d: planning score %d out of [0,100]", r.OrderID, r.PlanningScore)
		}
	}
}

func TestRankSortedDescendingStableTies(t *testing.T) {
	// Orders 2 and 3 are identical and must keep their input order.
	orders := []OrderInput{
		{OrderID: 1, Priority: orderModel.OrderPriorityNormal, CreatedAt: testNow},
		{OrderID: 2, Priority: orderModel.OrderPriorityCritical, CreatedAt: testNow},
		{OrderID: 3, Priority: orderModel.OrderPriorityCritical, CreatedAt: testNow},
		{OrderID: 4, Priority: orderModel.OrderPriorityUrgent, CreatedAt: testNow},
	}

	ranked := Rank(orders, nil, testNow)
	for i := 1; i < len(ranked); i++ {
		if ranked[i].PlanningScore > ranked[i-1].PlanningScore {
			t.Fatalf("ranking not descending at index %d", i)
		}
	}

	wantOrder := []uint{2, 3, 4, 1}
	for i, want := range wantOrder {
		if ranked[i].OrderID != want {
			t.Errorf("position %d: expected order %d, got %d", i, want, ranked[i].OrderID)
		}
	}
}

func TestRankMonotonicity(t *testing.T) {
	// Holding everything else fixed, raising the priority never lowers the
	// score, and an overdue deadline never scores below no deadline.
	base := OrderInput{OrderID: 1, CreatedAt: testNow.Add(-24 * time.Hour), EstimatedWeightKg: floatPtr(100)}

	score := func(o OrderInput) int {
		return Rank([]OrderInput{o}, nil, testNow)[0].PlanningScore
	}

	normal, urgent, critical := base, base, base
	normal.Priority = orderModel.OrderPriorityNormal
	urgent.Priority = orderModel.OrderPriorityUrgent
	critical.Priority = orderModel.OrderPriorityCritical
	if score(urgent) < score(normal) || score(critical) < score(urgent) {
		t.Errorf("priority not monotonic: normal=%d urgent=%d critical=%d",
			score(normal), score(urgent), score(critical))
	}

	noDeadline, overdue := base, base
	noDeadline.Priority = orderModel.OrderPriorityNormal
	overdue.Priority = orderModel.OrderPriorityNormal
	overdue.SLADeadline = timePtr(testNow.Add(-24 * time.Hour))
	if score(overdue) < score(noDeadline) {
		t.Errorf("overdue order %d scored below deadline-free order %d",
			score(overdue), score(noDeadline))
	}
}

func TestRankDeterministic(t *testing.T) {
	quality := map[uint]float64{1: 3.2, 2: 1.1}
	orders := []OrderInput{
		{OrderID: 1, ClientID: uintPtr(1), Priority: orderModel.OrderPriorityUrgent, SLADeadline: timePtr(testNow.Add(72 * time.Hour)), EstimatedWeightKg: floatPtr(120), CreatedAt: testNow.Add(-48 * time.Hour)},
		{OrderID: 2, ClientID: uintPtr(2), Priority: orderModel.OrderPriorityNormal, EstimatedWeightKg: floatPtr(80), CreatedAt: testNow.Add(-96 * time.Hour)},
	}

	first := Rank(orders, quality, testNow)
	second := Rank(orders, quality, testNow)
	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("index %d: results differ: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSLAUrgencyScore(t *testing.T) {
	tests := []struct {
		name     string
		deadline *time.Time
		want     float64
	}{
		{"no deadline", nil, 0},
		{"overdue", timePtr(testNow.Add(-time.Hour)), 1.0},
		{"due now", timePtr(testNow), 1.0},
		{"half horizon", timePtr(testNow.Add(15 * 24 * time.Hour)), 0.5},
		{"at horizon", timePtr(testNow.Add(30 * 24 * time.Hour)), 0},
		{"beyond horizon", timePtr(testNow.Add(90 * 24 * time.Hour)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slaUrgencyScore(tt.deadline, testNow)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("slaUrgencyScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSupplierScoreDefaultsForUnknownClients(t *testing.T) {
	quality := map[uint]float64{1: 5.0}

	if got := supplierScore(uintPtr(1), quality); got != 0 {
		t.Errorf("top quality supplier: expected 0, got %v", got)
	}
	// 1 - 2.5/5 for a client with no history and for a walk-in order.
	if got := supplierScore(uintPtr(99), quality); got != 0.5 {
		t.Errorf("unknown client: expected 0.5, got %v", got)
	}
	if got := supplierScore(nil, quality); got != 0.5 {
		t.Errorf("nil client: expected 0.5, got %v", got)
	}
}
