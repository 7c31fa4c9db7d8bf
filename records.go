package tramnet

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Raw record shapes consumed from collaborators. File format parsing belongs
// to the I/O boundary; the engine only sees materialized records.

// RawNode is one node of the raw network topology.
type RawNode struct {
	ID     NetworkNodeID
	Lon    float64
	Lat    float64
	Role   GraphRole
	WayIDs []WayID
}

// RawEdge is one edge of the raw network topology.
type RawEdge struct {
	From         NetworkNodeID
	To           NetworkNodeID
	Key          int
	LengthMeters float64
	WayIDs       []WayID
	Geom         orb.LineString
}

// StopRecord is one entry of the stop/terminus registry.
type StopRecord struct {
	Name     string
	ID       int64
	Category StopCategory
	Demand   float64
	Geom     orb.Geometry
}

// POIRecord is one category-labeled point of interest.
type POIRecord struct {
	ID       int64
	Category string
	Geom     orb.Geometry
}

// PopulationRecord is one row of the population spreadsheet: a hexagon cell
// center in the projected plane plus its resident count.
type PopulationRecord struct {
	X         float64
	Y         float64
	Residents int
}

// BuildNetwork assembles the multigraph from raw topology records. Nodes are
// inserted first in record order, then edges; an edge referencing an unknown
// node is a structural failure and aborts the build.
func BuildNetwork(nodes []RawNode, edges []RawEdge) (*Network, error) {
	net := NewNetwork()
	for _, raw := range nodes {
		role := raw.Role
		if role == 0 {
			role = ROLE_ORDINARY
		}
		node := net.AddNode(raw.ID, orb.Point{raw.Lon, raw.Lat}, role)
		for _, wayID := range raw.WayIDs {
			node.wayIDs[wayID] = struct{}{}
		}
	}
	for _, raw := range edges {
		id := EdgeID{Source: raw.From, Target: raw.To, Key: raw.Key}
		err := net.AddEdgeWithKey(id, raw.LengthMeters, raw.WayIDs, raw.Geom)
		if err != nil {
			return nil, errors.Wrap(err, "build network")
		}
	}
	return net, nil
}
