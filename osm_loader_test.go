package tramnet

import (
	"os"
	"path/filepath"
	"testing"
)

var testOSM = []byte(`<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="handmade">
  <node id="1" lat="50.0600" lon="19.9300"></node>
  <node id="2" lat="50.0605" lon="19.9310"></node>
  <node id="3" lat="50.0610" lon="19.9320">
    <tag k="railway" v="crossing"></tag>
  </node>
  <node id="4" lat="50.0615" lon="19.9330"></node>
  <node id="5" lat="50.0620" lon="19.9340"></node>
  <way id="100">
    <nd ref="1"></nd>
    <nd ref="2"></nd>
    <nd ref="3"></nd>
    <tag k="railway" v="tram"></tag>
  </way>
  <way id="200">
    <nd ref="3"></nd>
    <nd ref="4"></nd>
    <tag k="railway" v="tram"></tag>
    <tag k="oneway" v="yes"></tag>
  </way>
  <way id="300">
    <nd ref="4"></nd>
    <nd ref="5"></nd>
    <tag k="railway" v="subway"></tag>
  </way>
</osm>
`)

func writeTestOSM(t *testing.T) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "test_network.osm")
	if err := os.WriteFile(fname, testOSM, 0644); err != nil {
		t.Fatalf("OSM fixture must be written: %v", err)
	}
	return fname
}

func TestReadOSMNetwork(t *testing.T) {
	fname := writeTestOSM(t)
	rawNodes, rawEdges, err := ReadOSMNetwork(fname, []string{"tram"})
	if err != nil {
		t.Fatalf("OSM file must be read: %v", err)
	}

	// Node 2 is a pure shape point of way 100 and must be folded into the edge
	// geometry; way 300 is not a tram way and node 5 must not appear at all.
	if len(rawNodes) != 3 {
		t.Fatalf("3 graph nodes must survive, but got %d", len(rawNodes))
	}
	roles := map[NetworkNodeID]GraphRole{}
	for _, node := range rawNodes {
		roles[node.ID] = node.Role
	}
	if roles[3] != ROLE_CROSSING {
		t.Errorf("Node '3' must be a crossing, but got %s", roles[3])
	}
	if roles[1] != ROLE_ORDINARY || roles[4] != ROLE_ORDINARY {
		t.Errorf("Way endpoints must be ordinary nodes, but got %s and %s", roles[1], roles[4])
	}

	// Way 100 is bidirectional, way 200 is oneway.
	if len(rawEdges) != 3 {
		t.Fatalf("3 edges must be produced, but got %d", len(rawEdges))
	}
	directed := map[[2]NetworkNodeID]RawEdge{}
	for _, edge := range rawEdges {
		directed[[2]NetworkNodeID{edge.From, edge.To}] = edge
	}
	forward, ok := directed[[2]NetworkNodeID{1, 3}]
	if !ok {
		t.Fatalf("Edge '1->3' must exist")
	}
	backward, ok := directed[[2]NetworkNodeID{3, 1}]
	if !ok {
		t.Fatalf("Reverse edge '3->1' must exist")
	}
	if _, ok := directed[[2]NetworkNodeID{4, 3}]; ok {
		t.Errorf("Oneway way must not produce a reverse edge")
	}
	if len(forward.Geom) != 3 {
		t.Errorf("Edge '1->3' must carry 3 shape points, but got %d", len(forward.Geom))
	}
	if forward.LengthMeters <= 0 {
		t.Errorf("Edge length must be positive, but got %f", forward.LengthMeters)
	}
	if forward.LengthMeters != backward.LengthMeters {
		t.Errorf("Reverse edge must have the same length, but got %f and %f", forward.LengthMeters, backward.LengthMeters)
	}
	if len(forward.WayIDs) != 1 || forward.WayIDs[0] != 100 {
		t.Errorf("Edge '1->3' must belong to way 100, but got %v", forward.WayIDs)
	}
}

func TestImportNetworkFromOSM(t *testing.T) {
	fname := writeTestOSM(t)
	net, err := ImportNetworkFromOSM(fname, []string{"tram"})
	if err != nil {
		t.Fatalf("Network must be imported: %v", err)
	}
	if net.NumNodes() != 3 {
		t.Errorf("Graph must have 3 nodes, but got %d", net.NumNodes())
	}
	if net.NumEdges() != 3 {
		t.Errorf("Graph must have 3 edges, but got %d", net.NumEdges())
	}

	// Simplification removes the crossing and reconnects way-matched pairs.
	removed, err := SimplifyTopology(net)
	if err != nil {
		t.Fatalf("Simplification must succeed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Crossing node must be removed, but removed count is %d", removed)
	}
	if net.HasNode(3) {
		t.Errorf("Crossing node '3' must be gone")
	}
}

func TestReadOSMNetworkUnknownExtension(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "network.gpx")
	if err := os.WriteFile(fname, []byte("whatever"), 0644); err != nil {
		t.Fatalf("Fixture must be written: %v", err)
	}
	if _, _, err := ReadOSMNetwork(fname, nil); err == nil {
		t.Errorf("Unknown file extension must yield an error")
	}
}
