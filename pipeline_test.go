package tramnet

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestRunPipeline(t *testing.T) {
	// Ring 1 -> 2 -> 3 -> 4 -> 1 with a crossing in the middle of the first
	// leg: 1 -> 5 -> 2, both halves on way 1.
	net := NewNetwork()
	net.AddNode(1, orb.Point{19.900, 50.000}, ROLE_ORDINARY)
	net.AddNode(2, orb.Point{19.910, 50.000}, ROLE_ORDINARY)
	net.AddNode(3, orb.Point{19.910, 50.010}, ROLE_ORDINARY)
	net.AddNode(4, orb.Point{19.900, 50.010}, ROLE_ORDINARY)
	net.AddNode(5, orb.Point{19.905, 50.000}, ROLE_CROSSING)
	mustAddEdge(t, net, 1, 5, 350.0, []WayID{1})
	mustAddEdge(t, net, 5, 2, 350.0, []WayID{1})
	mustAddEdge(t, net, 2, 3, 700.0, []WayID{2})
	mustAddEdge(t, net, 3, 4, 700.0, []WayID{3})
	mustAddEdge(t, net, 4, 1, 700.0, []WayID{4})

	stops := []StopRecord{
		{Name: "Depot Loop", ID: 1, Category: STOP_TERMINUS, Geom: orb.Point{19.900, 50.000}},
		{Name: "Market", ID: 2, Category: STOP_ORDINARY, Geom: orb.Point{19.910, 50.000}},
		{Name: "Station", ID: 3, Category: STOP_ORDINARY, Geom: orb.Point{19.910, 50.010}},
		{Name: "Park", ID: 4, Category: STOP_ORDINARY, Geom: orb.Point{19.900, 50.010}},
	}
	pois := []POIRecord{
		{ID: 1, Category: "shops", Geom: orb.Point{19.910, 50.000}},
		{ID: 2, Category: "schools", Geom: orb.Point{19.910, 50.010}},
		{ID: 3, Category: "parks", Geom: orb.Point{19.900, 50.010}},
	}

	cfg := DefaultConfig()
	cfg.Lines.Count = 1
	cfg.Lines.Seed = 9

	result, err := RunPipeline(net, stops, pois, 12, cfg)
	if err != nil {
		t.Fatalf("Pipeline must succeed: %v", err)
	}
	if result.RemovedNodes != 1 {
		t.Errorf("Crossing node must be removed, but removed count is %d", result.RemovedNodes)
	}
	if net.HasNode(5) {
		t.Errorf("Node '5' must be gone after simplification")
	}
	if net.EdgeBetween(1, 2) == nil {
		t.Errorf("Bypass edge '1->2' must exist after simplification")
	}

	for hour := 0; hour < HoursPerDay; hour++ {
		if len(result.Layers[hour]) == 0 {
			t.Errorf("Hour %d layer must not be empty", hour)
		}
		if len(result.StopSnapshots[hour]) != len(stops) {
			t.Errorf("Hour %d snapshot must cover all stops, but got %d records", hour, len(result.StopSnapshots[hour]))
		}
	}

	// The whole demand of the noon layer lands on the stops.
	layerDemand := 0.0
	for _, cell := range result.Layers[12] {
		layerDemand += cell.Demand
	}
	snapshotDemand := 0.0
	for _, record := range result.StopSnapshots[12] {
		snapshotDemand += record.Demand
	}
	if diff := layerDemand - snapshotDemand; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Snapshot demand must equal layer demand %f, but got %f", layerDemand, snapshotDemand)
	}

	if len(result.Lines) != 1 {
		t.Fatalf("1 line must be synthesized, but got %d", len(result.Lines))
	}
	if result.Lines[0].StartStopName != "Depot Loop" {
		t.Errorf("Line must start at 'Depot Loop', but got '%s'", result.Lines[0].StartStopName)
	}
}

func TestRunPipelineHourOutOfRange(t *testing.T) {
	net := NewNetwork()
	if _, err := RunPipeline(net, nil, nil, 24, nil); err == nil {
		t.Errorf("Hour 24 must be rejected")
	}
	if _, err := RunPipeline(net, nil, nil, -1, nil); err == nil {
		t.Errorf("Hour -1 must be rejected")
	}
}
