package tramnet

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	defaultCandidatePool = 8
	defaultMinTargets    = 3
	defaultMaxTargets    = 5
	defaultMinRouteNodes = 3
)

// LoopLine is one synthesized tram line anchored at a terminus. A line whose
// closing path back to the anchor was unreachable is still emitted with
// Closed set to false.
type LoopLine struct {
	Route         []NetworkNodeID
	StartStopName string
	LineNumber    int
	TotalDemand   float64
	LengthKm      float64
	StopCount     int
	Closed        bool
}

// LinePlanner builds closed candidate routes threading through high-demand
// stops. Route variety is intentional: the planner draws targets from an
// injectable randomness source.
type LinePlanner struct {
	net           *Network
	rng           *rand.Rand
	candidatePool int
	minTargets    int
	maxTargets    int
	minRouteNodes int
}

func NewLinePlanner(net *Network, options ...func(*LinePlanner)) *LinePlanner {
	planner := &LinePlanner{
		net:           net,
		rng:           rand.New(rand.NewSource(rand.Int63())),
		candidatePool: defaultCandidatePool,
		minTargets:    defaultMinTargets,
		maxTargets:    defaultMaxTargets,
		minRouteNodes: defaultMinRouteNodes,
	}
	for _, option := range options {
		option(planner)
	}
	return planner
}

func WithRand(rng *rand.Rand) func(*LinePlanner) {
	return func(planner *LinePlanner) {
		planner.rng = rng
	}
}

func WithCandidatePool(candidatePool int) func(*LinePlanner) {
	return func(planner *LinePlanner) {
		planner.candidatePool = candidatePool
	}
}

func WithTargetRange(minTargets, maxTargets int) func(*LinePlanner) {
	return func(planner *LinePlanner) {
		planner.minTargets = minTargets
		planner.maxTargets = maxTargets
	}
}

func WithMinRouteNodes(minRouteNodes int) func(*LinePlanner) {
	return func(planner *LinePlanner) {
		planner.minRouteNodes = minRouteNodes
	}
}

// GenerateLines synthesizes up to count loop lines, each anchored at a
// distinct terminus node. Lines shorter than the minimum node count are
// dropped.
func (planner *LinePlanner) GenerateLines(count int) ([]*LoopLine, error) {
	termini := []*NetworkNode{}
	for _, node := range planner.net.Nodes() {
		if node.hasTerminus {
			termini = append(termini, node)
		}
	}
	if len(termini) == 0 {
		log.Warn("no terminus nodes found, no lines generated")
		return nil, nil
	}
	if count > len(termini) {
		count = len(termini)
	}

	lines := []*LoopLine{}
	for i := 0; i < count; i++ {
		line, err := planner.generateLine(termini[i], i+1)
		if err != nil {
			return lines, err
		}
		if line == nil {
			continue
		}
		lines = append(lines, line)
		log.WithFields(logrus.Fields{
			"line":      line.LineNumber,
			"start":     line.StartStopName,
			"length_km": line.LengthKm,
			"stops":     line.StopCount,
			"demand":    line.TotalDemand,
			"closed":    line.Closed,
		}).Info("loop line generated")
	}
	return lines, nil
}

func (planner *LinePlanner) generateLine(anchor *NetworkNode, lineNumber int) (*LoopLine, error) {
	targets := planner.pickTargets(anchor)

	route := []NetworkNodeID{anchor.ID}
	current := anchor.ID
	for _, target := range targets {
		path, _, err := ShortestPathByLength(planner.net, current, target)
		if err != nil {
			if errors.Cause(err) == ErrNoPathFound {
				continue
			}
			return nil, err
		}
		route = append(route, path[1:]...)
		current = target
	}

	closed := true
	if current != anchor.ID {
		path, _, err := ShortestPathByLength(planner.net, current, anchor.ID)
		switch {
		case err == nil:
			route = append(route, path[1:]...)
		case errors.Cause(err) == ErrNoPathFound:
			closed = false
			log.WithFields(logrus.Fields{"line": lineNumber, "tail": current}).Warn("no closing path back to terminus, emitting open line")
		default:
			return nil, err
		}
	}

	if len(route) <= planner.minRouteNodes {
		return nil, nil
	}

	line := &LoopLine{
		Route:         route,
		StartStopName: terminusStopName(anchor),
		LineNumber:    lineNumber,
		Closed:        closed,
	}
	totalLength := 0.0
	for i := 0; i+1 < len(route); i++ {
		// A multigraph lookup can miss when consecutive route nodes were
		// connected through an edge removed since; such hops count as zero.
		if edge := planner.net.EdgeBetween(route[i], route[i+1]); edge != nil {
			totalLength += edge.lengthMeters
		}
	}
	line.LengthKm = totalLength / 1000.0
	for _, nodeID := range route {
		node, err := planner.net.Node(nodeID)
		if err != nil {
			return nil, errors.Wrap(err, "line statistics")
		}
		line.TotalDemand += node.totalDemand
		if node.totalDemand > 0 {
			line.StopCount++
		}
	}
	return line, nil
}

// pickTargets ranks all non-terminus positive-demand nodes by demand, takes a
// bounded candidate pool and draws a random number of them in random order.
func (planner *LinePlanner) pickTargets(anchor *NetworkNode) []NetworkNodeID {
	candidates := []*NetworkNode{}
	for _, node := range planner.net.Nodes() {
		if node.ID == anchor.ID || node.hasTerminus {
			continue
		}
		if node.totalDemand > 0 {
			candidates = append(candidates, node)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].totalDemand > candidates[j].totalDemand
	})
	if len(candidates) > planner.candidatePool {
		candidates = candidates[:planner.candidatePool]
	}

	pool := make([]NetworkNodeID, len(candidates))
	for i, node := range candidates {
		pool[i] = node.ID
	}
	planner.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	want := planner.minTargets
	if planner.maxTargets > planner.minTargets {
		want += planner.rng.Intn(planner.maxTargets - planner.minTargets + 1)
	}
	if want > len(pool) {
		want = len(pool)
	}
	return pool[:want]
}

func terminusStopName(node *NetworkNode) string {
	for _, stop := range node.stops {
		if stop.Category == STOP_TERMINUS {
			return stop.Name
		}
	}
	if len(node.stops) > 0 {
		return node.stops[0].Name
	}
	return "unknown"
}
