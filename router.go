package tramnet

import (
	"container/heap"

	"github.com/pkg/errors"
)

// WeightMode selects the node importance signal biasing the routing cost.
type WeightMode uint16

const (
	// WEIGHT_IMPORTANCE biases towards nodes with a high POI proximity count.
	WEIGHT_IMPORTANCE = WeightMode(iota + 1)
	// WEIGHT_DEMAND biases towards nodes with high aggregated demand.
	WEIGHT_DEMAND
)

func (iotaIdx WeightMode) String() string {
	return [...]string{"importance", "demand"}[iotaIdx-1]
}

// RecomputeWeights derives the routing cost of every edge from its physical
// length and the importance of its target node:
//
//	weightedCost = lengthMeters / (importance + 1)
//
// The whole edge set is recomputed in one pass so a following search runs
// against a stable cost function. Costs stay non-negative since lengths are
// non-negative and the denominator is at least one.
func RecomputeWeights(net *Network, mode WeightMode) error {
	for _, edge := range net.Edges() {
		target, err := net.Node(edge.ID.Target)
		if err != nil {
			return errors.Wrap(err, "recompute weights")
		}
		importance := target.importanceWeight
		if mode == WEIGHT_DEMAND {
			importance = target.totalDemand
		}
		edge.weightedCost = edge.lengthMeters / (importance + 1.0)
	}
	return nil
}

// ShortestPath returns the least-cost path between two nodes under the
// demand-biased cost function of the given mode, together with its total
// cost. Edge weights are recomputed before the search. A disconnected pair
// yields ErrNoPathFound.
func ShortestPath(net *Network, source, target NetworkNodeID, mode WeightMode) ([]NetworkNodeID, float64, error) {
	if err := RecomputeWeights(net, mode); err != nil {
		return nil, 0, err
	}
	return dijkstra(net, source, target, func(edge *NetworkEdge) float64 {
		return edge.weightedCost
	})
}

// ShortestPathByLength returns the physically shortest path between two
// nodes, ignoring demand.
func ShortestPathByLength(net *Network, source, target NetworkNodeID) ([]NetworkNodeID, float64, error) {
	return dijkstra(net, source, target, func(edge *NetworkEdge) float64 {
		return edge.lengthMeters
	})
}

// TerminusRoute is the physically shortest path between two terminus nodes.
type TerminusRoute struct {
	From     NetworkNodeID
	To       NetworkNodeID
	FromName string
	ToName   string
	Path     []NetworkNodeID
	LengthKm float64
}

// TerminusRoutes computes the length-shortest path for every ordered pair of
// distinct terminus nodes, in insertion order. Unreachable pairs are skipped.
func TerminusRoutes(net *Network) ([]TerminusRoute, error) {
	termini := []*NetworkNode{}
	for _, node := range net.Nodes() {
		if node.hasTerminus {
			termini = append(termini, node)
		}
	}
	routes := []TerminusRoute{}
	for _, from := range termini {
		for _, to := range termini {
			if from.ID == to.ID {
				continue
			}
			path, lengthMeters, err := ShortestPathByLength(net, from.ID, to.ID)
			if err != nil {
				if errors.Cause(err) == ErrNoPathFound {
					continue
				}
				return nil, err
			}
			routes = append(routes, TerminusRoute{
				From:     from.ID,
				To:       to.ID,
				FromName: terminusStopName(from),
				ToName:   terminusStopName(to),
				Path:     path,
				LengthKm: lengthMeters / 1000.0,
			})
		}
	}
	return routes, nil
}

type pqItem struct {
	node  NetworkNodeID
	cost  float64
	order int
	index int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	// Equal costs resolve by node insertion order to keep searches
	// reproducible.
	return pq[i].order < pq[j].order
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// dijkstra runs a textbook non-negative-weight search over the multigraph.
func dijkstra(net *Network, source, target NetworkNodeID, cost func(*NetworkEdge) float64) ([]NetworkNodeID, float64, error) {
	sourceNode, err := net.Node(source)
	if err != nil {
		return nil, 0, errors.Wrap(err, "routing: source")
	}
	if _, err := net.Node(target); err != nil {
		return nil, 0, errors.Wrap(err, "routing: target")
	}

	dist := map[NetworkNodeID]float64{source: 0}
	prev := map[NetworkNodeID]NetworkNodeID{}
	done := map[NetworkNodeID]struct{}{}

	pq := priorityQueue{}
	heap.Init(&pq)
	heap.Push(&pq, &pqItem{node: source, cost: 0, order: sourceNode.insertionIdx})

	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*pqItem)
		if _, ok := done[current.node]; ok {
			continue
		}
		done[current.node] = struct{}{}
		if current.node == target {
			break
		}
		outcoming, err := net.OutcomingEdges(current.node)
		if err != nil {
			return nil, 0, err
		}
		for _, edge := range outcoming {
			next := edge.ID.Target
			if _, ok := done[next]; ok {
				continue
			}
			candidate := current.cost + cost(edge)
			known, seen := dist[next]
			if !seen || candidate < known {
				dist[next] = candidate
				prev[next] = current.node
				nextNode, err := net.Node(next)
				if err != nil {
					return nil, 0, err
				}
				heap.Push(&pq, &pqItem{node: next, cost: candidate, order: nextNode.insertionIdx})
			}
		}
	}

	totalCost, reached := dist[target]
	if _, ok := done[target]; !ok || !reached {
		return nil, 0, errors.Wrapf(ErrNoPathFound, "from '%d' to '%d'", source, target)
	}

	path := []NetworkNodeID{target}
	for path[0] != source {
		path = append([]NetworkNodeID{prev[path[0]]}, path...)
	}
	return path, totalCost, nil
}
