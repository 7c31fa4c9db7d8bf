package tramnet

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	crossingRailwayTags = map[string]struct{}{
		"railway_crossing": {},
		"level_crossing":   {},
		"crossing":         {},
	}
	switchRailwayTags = map[string]struct{}{
		"switch": {},
	}
)

type OSMScanner interface {
	Scan() bool
	Close() error
	Err() error
	Object() osm.Object
}

type osmWay struct {
	id     WayID
	nodes  []osm.NodeID
	oneway bool
}

type osmNode struct {
	lon      float64
	lat      float64
	railway  string
	useCount int
}

func nodeRole(railway string) GraphRole {
	if _, ok := crossingRailwayTags[railway]; ok {
		return ROLE_CROSSING
	}
	if _, ok := switchRailwayTags[railway]; ok {
		return ROLE_SWITCH
	}
	return ROLE_ORDINARY
}

// ReadOSMNetwork extracts the raw tram topology from a local OSM file. Ways
// are filtered by the `railway` tag against the given set (defaults to tram
// only), then split into edges at every node shared by two or more way
// segments. Supported file extensions: .osm / .xml / .pbf.
func ReadOSMNetwork(filename string, railwayTags []string) ([]RawNode, []RawEdge, error) {
	if len(railwayTags) == 0 {
		railwayTags = []string{"tram"}
	}
	wanted := make(map[string]struct{}, len(railwayTags))
	for _, tag := range railwayTags {
		wanted[strings.TrimSpace(tag)] = struct{}{}
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open OSM file")
	}
	defer file.Close()

	newScanner := func() (OSMScanner, error) {
		ext := filepath.Ext(filename)
		switch ext {
		case ".osm", ".xml":
			return osmxml.New(context.Background(), file), nil
		case ".pbf":
			return osmpbf.New(context.Background(), file, 4), nil
		}
		return nil, errors.Errorf("file extension '%s' for file '%s' is not handled", ext, filename)
	}

	/* Process ways */
	st := time.Now()
	ways := []osmWay{}
	nodes := make(map[osm.NodeID]*osmNode)
	{
		scannerWays, err := newScanner()
		if err != nil {
			return nil, nil, err
		}
		defer scannerWays.Close()
		for scannerWays.Scan() {
			obj := scannerWays.Object()
			if obj.ObjectID().Type() != "way" {
				continue
			}
			way := obj.(*osm.Way)
			railway := way.Tags.Find("railway")
			if _, ok := wanted[railway]; !ok {
				continue
			}
			oneway := false
			onewayText := way.Tags.Find("oneway")
			if onewayText == "yes" || onewayText == "1" {
				oneway = true
			}
			prepared := osmWay{id: WayID(way.ID), oneway: oneway, nodes: make([]osm.NodeID, 0, len(way.Nodes))}
			for _, wayNode := range way.Nodes {
				prepared.nodes = append(prepared.nodes, wayNode.ID)
				nodes[wayNode.ID] = nil // mark as seen
			}
			ways = append(ways, prepared)
		}
		if scannerWays.Err() != nil {
			return nil, nil, errors.Wrap(scannerWays.Err(), "scanner error on ways")
		}
	}
	log.WithFields(logrus.Fields{"ways": len(ways), "elapsed": time.Since(st)}).Info("ways scanned")

	/* Process nodes */
	if _, err := file.Seek(0, 0); err != nil {
		return nil, nil, errors.Wrap(err, "can't repeat seeking")
	}
	st = time.Now()
	{
		scannerNodes, err := newScanner()
		if err != nil {
			return nil, nil, err
		}
		defer scannerNodes.Close()
		for scannerNodes.Scan() {
			obj := scannerNodes.Object()
			if obj.ObjectID().Type() != "node" {
				continue
			}
			node := obj.(*osm.Node)
			if _, ok := nodes[node.ID]; !ok {
				continue
			}
			nodes[node.ID] = &osmNode{
				lon:     node.Lon,
				lat:     node.Lat,
				railway: node.Tags.Find("railway"),
			}
		}
		if scannerNodes.Err() != nil {
			return nil, nil, errors.Wrap(scannerNodes.Err(), "scanner error on nodes")
		}
	}
	log.WithFields(logrus.Fields{"nodes": len(nodes), "elapsed": time.Since(st)}).Info("nodes scanned")

	/* Count node use cases: way endpoints always become graph nodes */
	for _, way := range ways {
		for i, nodeID := range way.nodes {
			node := nodes[nodeID]
			if node == nil {
				return nil, nil, errors.Errorf("missing node with id: %d", nodeID)
			}
			if i == 0 || i == len(way.nodes)-1 {
				node.useCount += 2
			} else {
				node.useCount++
			}
		}
	}

	/* Split ways into edges at shared nodes */
	rawEdges := []RawEdge{}
	keyByPair := map[[2]NetworkNodeID]int{}
	nextKey := func(from, to NetworkNodeID) int {
		pair := [2]NetworkNodeID{from, to}
		key := keyByPair[pair]
		keyByPair[pair] = key + 1
		return key
	}
	emit := func(from, to osm.NodeID, wayID WayID, geom orb.LineString) {
		lengthMeters := geo.LengthHaversign(geom)
		source := NetworkNodeID(from)
		target := NetworkNodeID(to)
		rawEdges = append(rawEdges, RawEdge{
			From:         source,
			To:           target,
			Key:          nextKey(source, target),
			LengthMeters: lengthMeters,
			WayIDs:       []WayID{wayID},
			Geom:         geom,
		})
	}
	for _, way := range ways {
		var source osm.NodeID
		geometry := orb.LineString{}
		for i, nodeID := range way.nodes {
			node := nodes[nodeID]
			pt := orb.Point{node.lon, node.lat}
			if i == 0 {
				source = nodeID
				geometry = append(geometry, pt)
				continue
			}
			geometry = append(geometry, pt)
			if node.useCount > 1 {
				emit(source, nodeID, way.id, geometry)
				if !way.oneway {
					reversed := make(orb.LineString, len(geometry))
					for j, gpt := range geometry {
						reversed[len(geometry)-1-j] = gpt
					}
					emit(nodeID, source, way.id, reversed)
				}
				source = nodeID
				geometry = orb.LineString{pt}
			}
		}
	}

	/* Keep only nodes that survived splitting */
	rawNodes := []RawNode{}
	nodeWayIDs := map[osm.NodeID][]WayID{}
	for _, way := range ways {
		for _, nodeID := range way.nodes {
			nodeWayIDs[nodeID] = append(nodeWayIDs[nodeID], way.id)
		}
	}
	for _, way := range ways {
		for _, nodeID := range way.nodes {
			node := nodes[nodeID]
			if node == nil || node.useCount <= 1 {
				continue
			}
			rawNodes = append(rawNodes, RawNode{
				ID:     NetworkNodeID(nodeID),
				Lon:    node.lon,
				Lat:    node.lat,
				Role:   nodeRole(node.railway),
				WayIDs: nodeWayIDs[nodeID],
			})
			nodes[nodeID] = nil // emit each node once
		}
	}
	log.WithFields(logrus.Fields{"nodes": len(rawNodes), "edges": len(rawEdges)}).Info("raw network prepared")
	return rawNodes, rawEdges, nil
}

// ImportNetworkFromOSM reads an OSM file and assembles the multigraph.
func ImportNetworkFromOSM(filename string, railwayTags []string) (*Network, error) {
	rawNodes, rawEdges, err := ReadOSMNetwork(filename, railwayTags)
	if err != nil {
		return nil, err
	}
	return BuildNetwork(rawNodes, rawEdges)
}
