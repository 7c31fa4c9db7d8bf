package tramnet

import (
	"github.com/paulmach/orb"
)

/* Nodes stuff */

type NetworkNodeID int64

type NetworkNode struct {
	incomingEdges    []EdgeID
	outcomingEdges   []EdgeID
	stops            []*Stop
	ID               NetworkNodeID
	insertionIdx     int
	role             GraphRole
	wayIDs           map[WayID]struct{}
	importanceWeight float64
	totalDemand      float64
	hasTerminus      bool
	geom             orb.Point
	geomEuclidean    orb.Point
}

// Role returns the topology-derived role of the node.
func (node *NetworkNode) Role() GraphRole {
	return node.role
}

// Geom returns node position as longitude/latitude.
func (node *NetworkNode) Geom() orb.Point {
	return node.geom
}

// GeomEuclidean returns node position in the projected plane (EPSG:3857).
func (node *NetworkNode) GeomEuclidean() orb.Point {
	return node.geomEuclidean
}

// Stops returns stops attached to the node by the snapper.
func (node *NetworkNode) Stops() []*Stop {
	return node.stops
}

// TotalDemand returns demand accumulated over all attached stops.
func (node *NetworkNode) TotalDemand() float64 {
	return node.totalDemand
}

// ImportanceWeight returns the POI proximity count of the node.
func (node *NetworkNode) ImportanceWeight() float64 {
	return node.importanceWeight
}

// HasTerminus reports whether any attached stop is a terminus (loop anchor).
func (node *NetworkNode) HasTerminus() bool {
	return node.hasTerminus
}
