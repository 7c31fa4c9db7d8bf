package tramnet

import (
	"github.com/paulmach/orb"
)

/* Edges stuff */

// WayID identifies the physical way an edge was extracted from. Edges sharing
// a way identifier are parts of the same real-world track segment.
type WayID int64

// EdgeID addresses one edge of the multigraph. Key disambiguates parallel
// edges between the same ordered node pair.
type EdgeID struct {
	Source NetworkNodeID
	Target NetworkNodeID
	Key    int
}

type NetworkEdge struct {
	ID           EdgeID
	lengthMeters float64
	weightedCost float64
	wayIDs       map[WayID]struct{}
	geom         orb.LineString
}

// LengthMeters returns the physical length of the edge.
func (edge *NetworkEdge) LengthMeters() float64 {
	return edge.lengthMeters
}

// WeightedCost returns the routing cost computed by the last RecomputeWeights
// call. It is derived data, never ground truth.
func (edge *NetworkEdge) WeightedCost() float64 {
	return edge.weightedCost
}

// Geom returns the polyline shape of the edge, nil when the edge carries no
// geometry.
func (edge *NetworkEdge) Geom() orb.LineString {
	return edge.geom
}

// WayIDs returns the identifiers of source ways the edge was extracted from.
func (edge *NetworkEdge) WayIDs() []WayID {
	out := make([]WayID, 0, len(edge.wayIDs))
	for id := range edge.wayIDs {
		out = append(out, id)
	}
	return out
}

func (edge *NetworkEdge) hasWayID(id WayID) bool {
	_, ok := edge.wayIDs[id]
	return ok
}

// sharedWayIDs returns the intersection of way-identifier sets of two edges.
func sharedWayIDs(a, b *NetworkEdge) []WayID {
	shared := []WayID{}
	for id := range a.wayIDs {
		if b.hasWayID(id) {
			shared = append(shared, id)
		}
	}
	return shared
}
