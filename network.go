package tramnet

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Network is an in-memory directed multigraph of the tram network. Node and
// edge iteration follows insertion order, so repeated runs over the same
// input produce identical output.
type Network struct {
	nodes      map[NetworkNodeID]*NetworkNode
	edges      map[EdgeID]*NetworkEdge
	nodesOrder []NetworkNodeID
	edgesOrder []EdgeID
}

func NewNetwork() *Network {
	return &Network{
		nodes: make(map[NetworkNodeID]*NetworkNode),
		edges: make(map[EdgeID]*NetworkEdge),
	}
}

// AddNode inserts a node with the given geographic position and role.
// Reinserting an existing identifier overwrites attributes but keeps the
// original insertion index.
func (net *Network) AddNode(id NetworkNodeID, geom orb.Point, role GraphRole) *NetworkNode {
	if existing, ok := net.nodes[id]; ok {
		existing.geom = geom
		existing.geomEuclidean = pointToEuclidean(geom)
		existing.role = role
		return existing
	}
	node := &NetworkNode{
		ID:             id,
		insertionIdx:   len(net.nodesOrder),
		role:           role,
		geom:           geom,
		geomEuclidean:  pointToEuclidean(geom),
		wayIDs:         make(map[WayID]struct{}),
		incomingEdges:  make([]EdgeID, 0),
		outcomingEdges: make([]EdgeID, 0),
	}
	net.nodes[id] = node
	net.nodesOrder = append(net.nodesOrder, id)
	return node
}

// Node returns the node for the given identifier.
func (net *Network) Node(id NetworkNodeID) (*NetworkNode, error) {
	node, ok := net.nodes[id]
	if !ok {
		return nil, errors.Wrapf(ErrNodeNotFound, "node '%d'", id)
	}
	return node, nil
}

// HasNode reports whether the node is present in the graph.
func (net *Network) HasNode(id NetworkNodeID) bool {
	_, ok := net.nodes[id]
	return ok
}

// AddEdge inserts an edge between two existing nodes. The disambiguating key
// is picked as the lowest key not yet used by the (source, target) pair.
func (net *Network) AddEdge(source, target NetworkNodeID, lengthMeters float64, wayIDs []WayID, geom orb.LineString) (EdgeID, error) {
	sourceNode, err := net.Node(source)
	if err != nil {
		return EdgeID{}, errors.Wrap(err, "add edge: source")
	}
	targetNode, err := net.Node(target)
	if err != nil {
		return EdgeID{}, errors.Wrap(err, "add edge: target")
	}
	id := EdgeID{Source: source, Target: target}
	for {
		if _, ok := net.edges[id]; !ok {
			break
		}
		id.Key++
	}
	edge := &NetworkEdge{
		ID:           id,
		lengthMeters: lengthMeters,
		wayIDs:       make(map[WayID]struct{}, len(wayIDs)),
		geom:         geom,
	}
	for _, wayID := range wayIDs {
		edge.wayIDs[wayID] = struct{}{}
	}
	net.edges[id] = edge
	net.edgesOrder = append(net.edgesOrder, id)
	sourceNode.outcomingEdges = append(sourceNode.outcomingEdges, id)
	targetNode.incomingEdges = append(targetNode.incomingEdges, id)
	return id, nil
}

// AddEdgeWithKey inserts an edge under an explicit disambiguating key, as
// supplied by an external raw record.
func (net *Network) AddEdgeWithKey(id EdgeID, lengthMeters float64, wayIDs []WayID, geom orb.LineString) error {
	sourceNode, err := net.Node(id.Source)
	if err != nil {
		return errors.Wrap(err, "add edge: source")
	}
	targetNode, err := net.Node(id.Target)
	if err != nil {
		return errors.Wrap(err, "add edge: target")
	}
	if _, ok := net.edges[id]; ok {
		return errors.Errorf("edge '%d->%d' key '%d' already exists", id.Source, id.Target, id.Key)
	}
	edge := &NetworkEdge{
		ID:           id,
		lengthMeters: lengthMeters,
		wayIDs:       make(map[WayID]struct{}, len(wayIDs)),
		geom:         geom,
	}
	for _, wayID := range wayIDs {
		edge.wayIDs[wayID] = struct{}{}
	}
	net.edges[id] = edge
	net.edgesOrder = append(net.edgesOrder, id)
	sourceNode.outcomingEdges = append(sourceNode.outcomingEdges, id)
	targetNode.incomingEdges = append(targetNode.incomingEdges, id)
	return nil
}

// Edge returns the edge for the given identifier.
func (net *Network) Edge(id EdgeID) (*NetworkEdge, error) {
	edge, ok := net.edges[id]
	if !ok {
		return nil, errors.Wrapf(ErrEdgeNotFound, "edge '%d->%d' key '%d'", id.Source, id.Target, id.Key)
	}
	return edge, nil
}

// EdgeBetween returns the parallel edge with the lowest key for the ordered
// node pair, or nil when the pair is not connected directly.
func (net *Network) EdgeBetween(source, target NetworkNodeID) *NetworkEdge {
	best := (*NetworkEdge)(nil)
	for id, edge := range net.edges {
		if id.Source != source || id.Target != target {
			continue
		}
		if best == nil || id.Key < best.ID.Key {
			best = edge
		}
	}
	return best
}

// IncomingEdges returns edges ending at the node, in insertion order.
func (net *Network) IncomingEdges(id NetworkNodeID) ([]*NetworkEdge, error) {
	node, err := net.Node(id)
	if err != nil {
		return nil, err
	}
	incoming := make([]*NetworkEdge, 0, len(node.incomingEdges))
	for _, edgeID := range node.incomingEdges {
		incoming = append(incoming, net.edges[edgeID])
	}
	return incoming, nil
}

// OutcomingEdges returns edges starting at the node, in insertion order.
func (net *Network) OutcomingEdges(id NetworkNodeID) ([]*NetworkEdge, error) {
	node, err := net.Node(id)
	if err != nil {
		return nil, err
	}
	outcoming := make([]*NetworkEdge, 0, len(node.outcomingEdges))
	for _, edgeID := range node.outcomingEdges {
		outcoming = append(outcoming, net.edges[edgeID])
	}
	return outcoming, nil
}

// RemoveNode removes the node together with all its incident edges.
func (net *Network) RemoveNode(id NetworkNodeID) error {
	node, err := net.Node(id)
	if err != nil {
		return err
	}
	incident := make([]EdgeID, 0, len(node.incomingEdges)+len(node.outcomingEdges))
	incident = append(incident, node.incomingEdges...)
	incident = append(incident, node.outcomingEdges...)
	for _, edgeID := range incident {
		net.removeEdge(edgeID)
	}
	delete(net.nodes, id)
	for i, nodeID := range net.nodesOrder {
		if nodeID == id {
			net.nodesOrder = append(net.nodesOrder[:i], net.nodesOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (net *Network) removeEdge(id EdgeID) {
	if _, ok := net.edges[id]; !ok {
		return
	}
	delete(net.edges, id)
	for i, edgeID := range net.edgesOrder {
		if edgeID == id {
			net.edgesOrder = append(net.edgesOrder[:i], net.edgesOrder[i+1:]...)
			break
		}
	}
	if source, ok := net.nodes[id.Source]; ok {
		source.outcomingEdges = dropEdgeID(source.outcomingEdges, id)
	}
	if target, ok := net.nodes[id.Target]; ok {
		target.incomingEdges = dropEdgeID(target.incomingEdges, id)
	}
}

func dropEdgeID(ids []EdgeID, id EdgeID) []EdgeID {
	for i, candidate := range ids {
		if candidate == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Nodes returns all nodes in insertion order.
func (net *Network) Nodes() []*NetworkNode {
	nodes := make([]*NetworkNode, 0, len(net.nodes))
	for _, id := range net.nodesOrder {
		nodes = append(nodes, net.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion order.
func (net *Network) Edges() []*NetworkEdge {
	edges := make([]*NetworkEdge, 0, len(net.edges))
	for _, id := range net.edgesOrder {
		edges = append(edges, net.edges[id])
	}
	return edges
}

// NumNodes returns the number of nodes in the graph.
func (net *Network) NumNodes() int {
	return len(net.nodes)
}

// NumEdges returns the number of edges in the graph.
func (net *Network) NumEdges() int {
	return len(net.edges)
}
