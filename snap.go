package tramnet

import (
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

// nearestNode returns the graph node closest to the given projected-plane
// point. When two nodes are exactly equidistant the one with the lower
// insertion-order index wins, so an ambiguous match resolves the same way on
// every run.
func (net *Network) nearestNode(ptEuclidean orb.Point) *NetworkNode {
	var nearest *NetworkNode
	bestDistance := 0.0
	for _, node := range net.Nodes() {
		distance := euclideanDistance(ptEuclidean, node.geomEuclidean)
		if nearest == nil || distance < bestDistance {
			nearest = node
			bestDistance = distance
		}
	}
	return nearest
}

// SnapStops assigns each stop record to its nearest graph node. Demand values
// of co-located records accumulate additively on the shared node; a terminus
// record marks the node as a loop anchor. Records without a usable point
// geometry are skipped and logged, the batch continues.
// Returns the number of snapped and skipped records.
func SnapStops(net *Network, records []StopRecord) (int, int) {
	snapped, skipped := 0, 0
	for _, record := range records {
		pt, ok := reduceToPoint(record.Geom)
		if !ok {
			log.WithFields(logrus.Fields{"stop": record.ID, "name": record.Name}).Warn("stop record has no usable geometry, skipping")
			skipped++
			continue
		}
		node := net.nearestNode(pointToEuclidean(pt))
		if node == nil {
			log.WithFields(logrus.Fields{"stop": record.ID}).Warn("empty graph, stop record dropped")
			skipped++
			continue
		}
		category := record.Category
		if category == 0 {
			category = STOP_ORDINARY
		}
		node.stops = append(node.stops, &Stop{
			ID:       record.ID,
			Name:     record.Name,
			Category: category,
			Demand:   record.Demand,
		})
		total := 0.0
		for _, stop := range node.stops {
			total += stop.Demand
		}
		node.totalDemand = total
		if record.Category == STOP_TERMINUS {
			node.hasTerminus = true
			if node.role == ROLE_ORDINARY {
				node.role = ROLE_TERMINUS
			}
		}
		snapped++
	}
	log.WithFields(logrus.Fields{"snapped": snapped, "skipped": skipped}).Info("stop records snapped")
	return snapped, skipped
}

// SnapPOIs increments the importance weight of the node nearest to each POI
// record. The resulting per-node counter is the POI proximity count used by
// the importance-weighted router.
func SnapPOIs(net *Network, records []POIRecord) (int, int) {
	snapped, skipped := 0, 0
	for _, record := range records {
		pt, ok := reduceToPoint(record.Geom)
		if !ok {
			log.WithFields(logrus.Fields{"poi": record.ID, "category": record.Category}).Warn("poi record has no usable geometry, skipping")
			skipped++
			continue
		}
		node := net.nearestNode(pointToEuclidean(pt))
		if node == nil {
			skipped++
			continue
		}
		node.importanceWeight++
		snapped++
	}
	log.WithFields(logrus.Fields{"snapped": snapped, "skipped": skipped}).Info("poi records snapped")
	return snapped, skipped
}
