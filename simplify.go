package tramnet

import (
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// synthesizedEdge is a reconnection bypassing a removed crossing node.
type synthesizedEdge struct {
	source       NetworkNodeID
	target       NetworkNodeID
	lengthMeters float64
	wayIDs       []WayID
	geom         orb.LineString
}

// SimplifyTopology removes every railway-crossing node from the graph and
// reconnects its incident edges, so paths crossing the node stay continuous.
//
// For each (in-edge, out-edge) pair sharing at least one way identifier a new
// edge is synthesized from the in-edge source to the out-edge target with the
// summed length. The reconnections of a node are computed in full before the
// node is removed, which keeps the final edge set independent of removal
// order. A crossing node with no way-matched pair is still removed; the
// orphaned branch is logged and the run continues.
//
// Running the pass on an already-simplified graph is a no-op.
// Returns the number of removed nodes.
func SimplifyTopology(net *Network) (int, error) {
	crossings := []NetworkNodeID{}
	for _, node := range net.Nodes() {
		if node.role == ROLE_CROSSING {
			crossings = append(crossings, node.ID)
		}
	}
	log.WithFields(logrus.Fields{"crossing_nodes": len(crossings)}).Info("simplifying topology")

	removed := 0
	for _, nodeID := range crossings {
		// A previous removal in the same pass may have taken the node out
		// already.
		if !net.HasNode(nodeID) {
			continue
		}
		inEdges, err := net.IncomingEdges(nodeID)
		if err != nil {
			return removed, err
		}
		outEdges, err := net.OutcomingEdges(nodeID)
		if err != nil {
			return removed, err
		}

		connections := []synthesizedEdge{}
		for _, in := range inEdges {
			for _, out := range outEdges {
				if len(sharedWayIDs(in, out)) == 0 {
					continue
				}
				connections = append(connections, synthesizedEdge{
					source:       in.ID.Source,
					target:       out.ID.Target,
					lengthMeters: in.lengthMeters + out.lengthMeters,
					wayIDs:       in.WayIDs(),
					geom:         mergeEdgeGeometries(nodeID, in.geom, out.geom),
				})
			}
		}
		if len(connections) == 0 && (len(inEdges) > 0 || len(outEdges) > 0) {
			log.WithFields(logrus.Fields{
				"node":      nodeID,
				"in_edges":  len(inEdges),
				"out_edges": len(outEdges),
			}).Warn("crossing node has no way-matched edge pair, branch orphaned")
		}
		for _, connection := range connections {
			_, err := net.AddEdge(connection.source, connection.target, connection.lengthMeters, connection.wayIDs, connection.geom)
			if err != nil {
				return removed, err
			}
		}
		if err := net.RemoveNode(nodeID); err != nil {
			return removed, err
		}
		removed++
	}
	log.WithFields(logrus.Fields{"removed": removed}).Info("topology simplified")
	return removed, nil
}

// mergeEdgeGeometries concatenates two polylines when the first one ends
// exactly where the second one starts. On any mismatch the synthesized edge
// carries no geometry: a length-correct edge without a shape is preferred
// over a wrong shape.
func mergeEdgeGeometries(nodeID NetworkNodeID, in, out orb.LineString) orb.LineString {
	if len(in) == 0 || len(out) == 0 {
		return nil
	}
	if in[len(in)-1] != out[0] {
		log.WithFields(logrus.Fields{"node": nodeID}).Warn("edge geometries do not meet at crossing node, dropping shape of synthesized edge")
		return nil
	}
	merged := make(orb.LineString, 0, len(in)+len(out)-1)
	merged = append(merged, in...)
	merged = append(merged, out[1:]...)
	return merged
}
