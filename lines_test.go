package tramnet

import (
	"math"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
)

// buildRing creates the directed cycle 1 -> 2 -> 3 -> 4 -> 1 with 500 meter
// edges, a terminus stop at node 1 and demand on the remaining nodes.
func buildRing(t *testing.T) *Network {
	t.Helper()
	net := NewNetwork()
	net.AddNode(1, orb.Point{0.000, 0.0}, ROLE_ORDINARY)
	net.AddNode(2, orb.Point{0.005, 0.0}, ROLE_ORDINARY)
	net.AddNode(3, orb.Point{0.010, 0.0}, ROLE_ORDINARY)
	net.AddNode(4, orb.Point{0.015, 0.0}, ROLE_ORDINARY)
	mustAddEdge(t, net, 1, 2, 500.0, nil)
	mustAddEdge(t, net, 2, 3, 500.0, nil)
	mustAddEdge(t, net, 3, 4, 500.0, nil)
	mustAddEdge(t, net, 4, 1, 500.0, nil)

	SnapStops(net, []StopRecord{
		{Name: "Depot Loop", ID: 1, Category: STOP_TERMINUS, Demand: 0.0, Geom: orb.Point{0.000, 0.0}},
		{Name: "Market", ID: 2, Category: STOP_ORDINARY, Demand: 5.0, Geom: orb.Point{0.005, 0.0}},
		{Name: "Station", ID: 3, Category: STOP_ORDINARY, Demand: 8.0, Geom: orb.Point{0.010, 0.0}},
		{Name: "Park", ID: 4, Category: STOP_ORDINARY, Demand: 3.0, Geom: orb.Point{0.015, 0.0}},
	})
	return net
}

func TestGenerateLinesClosedLoop(t *testing.T) {
	net := buildRing(t)
	planner := NewLinePlanner(net, WithRand(rand.New(rand.NewSource(1))))
	lines, err := planner.GenerateLines(1)
	if err != nil {
		t.Fatalf("Line generation must succeed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Exactly 1 line must be generated, but got %d", len(lines))
	}
	line := lines[0]
	if line.LineNumber != 1 {
		t.Errorf("Line number must be 1, but got %d", line.LineNumber)
	}
	if line.StartStopName != "Depot Loop" {
		t.Errorf("Line must start at 'Depot Loop', but got '%s'", line.StartStopName)
	}
	if !line.Closed {
		t.Errorf("Line over the ring must be closed")
	}
	if line.Route[0] != 1 || line.Route[len(line.Route)-1] != 1 {
		t.Errorf("Closed line must start and end at the terminus, but got %v", line.Route)
	}

	totalLength := 0.0
	for i := 0; i+1 < len(line.Route); i++ {
		edge := net.EdgeBetween(line.Route[i], line.Route[i+1])
		if edge == nil {
			t.Fatalf("Route hop '%d->%d' must be an existing edge", line.Route[i], line.Route[i+1])
		}
		totalLength += edge.LengthMeters()
	}
	if math.Abs(line.LengthKm-totalLength/1000.0) > 1e-12 {
		t.Errorf("Line length must be %f km, but got %f", totalLength/1000.0, line.LengthKm)
	}

	totalDemand := 0.0
	stopCount := 0
	for _, nodeID := range line.Route {
		node, err := net.Node(nodeID)
		if err != nil {
			t.Fatalf("Route node '%d' must exist: %v", nodeID, err)
		}
		totalDemand += node.TotalDemand()
		if node.TotalDemand() > 0 {
			stopCount++
		}
	}
	if math.Abs(line.TotalDemand-totalDemand) > 1e-12 {
		t.Errorf("Line demand must be %f, but got %f", totalDemand, line.TotalDemand)
	}
	if line.StopCount != stopCount {
		t.Errorf("Line stop count must be %d, but got %d", stopCount, line.StopCount)
	}
}

func TestGenerateLinesDeterministicWithSeed(t *testing.T) {
	first := NewLinePlanner(buildRing(t), WithRand(rand.New(rand.NewSource(7))))
	second := NewLinePlanner(buildRing(t), WithRand(rand.New(rand.NewSource(7))))

	linesA, err := first.GenerateLines(1)
	if err != nil {
		t.Fatalf("Line generation must succeed: %v", err)
	}
	linesB, err := second.GenerateLines(1)
	if err != nil {
		t.Fatalf("Line generation must succeed: %v", err)
	}
	if len(linesA) != len(linesB) {
		t.Fatalf("Same seed must give the same number of lines")
	}
	for i := range linesA {
		if len(linesA[i].Route) != len(linesB[i].Route) {
			t.Fatalf("Same seed must give identical routes")
		}
		for j := range linesA[i].Route {
			if linesA[i].Route[j] != linesB[i].Route[j] {
				t.Errorf("Route node %d must be '%d', but got '%d'", j, linesA[i].Route[j], linesB[i].Route[j])
			}
		}
	}
}

func TestGenerateLinesOpenLoop(t *testing.T) {
	// Directed chain with no way back to the terminus.
	net := NewNetwork()
	net.AddNode(1, orb.Point{0.000, 0.0}, ROLE_ORDINARY)
	net.AddNode(2, orb.Point{0.005, 0.0}, ROLE_ORDINARY)
	net.AddNode(3, orb.Point{0.010, 0.0}, ROLE_ORDINARY)
	net.AddNode(4, orb.Point{0.015, 0.0}, ROLE_ORDINARY)
	mustAddEdge(t, net, 1, 2, 500.0, nil)
	mustAddEdge(t, net, 2, 3, 500.0, nil)
	mustAddEdge(t, net, 3, 4, 500.0, nil)
	SnapStops(net, []StopRecord{
		{Name: "Head Loop", ID: 1, Category: STOP_TERMINUS, Geom: orb.Point{0.000, 0.0}},
		{Name: "A", ID: 2, Demand: 1.0, Geom: orb.Point{0.005, 0.0}},
		{Name: "B", ID: 3, Demand: 2.0, Geom: orb.Point{0.010, 0.0}},
		{Name: "C", ID: 4, Demand: 3.0, Geom: orb.Point{0.015, 0.0}},
	})

	planner := NewLinePlanner(net, WithRand(rand.New(rand.NewSource(3))))
	lines, err := planner.GenerateLines(1)
	if err != nil {
		t.Fatalf("Line generation must succeed: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Open line must still be emitted, but got %d lines", len(lines))
	}
	if lines[0].Closed {
		t.Errorf("Line without a closing path must be marked open")
	}
	want := []NetworkNodeID{1, 2, 3, 4}
	if len(lines[0].Route) != len(want) {
		t.Fatalf("Open route must have %d nodes, but got %d", len(want), len(lines[0].Route))
	}
	for i := range want {
		if lines[0].Route[i] != want[i] {
			t.Errorf("Route node %d must be '%d', but got '%d'", i, want[i], lines[0].Route[i])
		}
	}
}

func TestGenerateLinesTooShort(t *testing.T) {
	// Two-node shuttle: every route collapses below the minimum node count.
	net := NewNetwork()
	net.AddNode(1, orb.Point{0.000, 0.0}, ROLE_ORDINARY)
	net.AddNode(2, orb.Point{0.005, 0.0}, ROLE_ORDINARY)
	mustAddEdge(t, net, 1, 2, 500.0, nil)
	mustAddEdge(t, net, 2, 1, 500.0, nil)
	SnapStops(net, []StopRecord{
		{Name: "Stub Loop", ID: 1, Category: STOP_TERMINUS, Geom: orb.Point{0.000, 0.0}},
		{Name: "Only", ID: 2, Demand: 1.0, Geom: orb.Point{0.005, 0.0}},
	})

	planner := NewLinePlanner(net, WithRand(rand.New(rand.NewSource(5))))
	lines, err := planner.GenerateLines(1)
	if err != nil {
		t.Fatalf("Line generation must succeed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Too short routes must be dropped, but got %d lines", len(lines))
	}
}

func TestGenerateLinesNoTerminus(t *testing.T) {
	net := NewNetwork()
	net.AddNode(1, orb.Point{0.000, 0.0}, ROLE_ORDINARY)
	planner := NewLinePlanner(net, WithRand(rand.New(rand.NewSource(5))))
	lines, err := planner.GenerateLines(3)
	if err != nil {
		t.Fatalf("Line generation must succeed: %v", err)
	}
	if lines != nil {
		t.Errorf("Graph without termini must yield no lines, but got %d", len(lines))
	}
}

func TestPickTargetsPoolLimit(t *testing.T) {
	net := NewNetwork()
	net.AddNode(1, orb.Point{0.0, 0.0}, ROLE_ORDINARY)
	for i := 2; i <= 11; i++ {
		net.AddNode(NetworkNodeID(i), orb.Point{float64(i) * 0.001, 0.0}, ROLE_ORDINARY)
		node, _ := net.Node(NetworkNodeID(i))
		node.totalDemand = float64(12 - i)
	}
	anchor, _ := net.Node(1)
	anchor.hasTerminus = true

	planner := NewLinePlanner(net,
		WithRand(rand.New(rand.NewSource(11))),
		WithCandidatePool(2),
		WithTargetRange(2, 2),
	)
	targets := planner.pickTargets(anchor)
	if len(targets) != 2 {
		t.Fatalf("Exactly 2 targets must be drawn, but got %d", len(targets))
	}
	// Nodes 2 and 3 carry the highest demand and form the whole pool.
	for _, target := range targets {
		if target != 2 && target != 3 {
			t.Errorf("Target '%d' must come from the top-demand pool", target)
		}
	}
}
