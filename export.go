package tramnet

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// ExportToCSV writes the network snapshot into two semicolon separated files:
// '<name>_nodes.csv' and '<name>_edges.csv'.
func (net *Network) ExportToCSV(fname string) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameNodes := fmt.Sprintf(fnameParts[0] + "_nodes.csv")
	fnameEdges := fmt.Sprintf(fnameParts[0] + "_edges.csv")

	err := net.exportNodesToCSV(fnameNodes)
	if err != nil {
		return errors.Wrap(err, "Can't export nodes")
	}

	err = net.exportEdgesToCSV(fnameEdges)
	if err != nil {
		return errors.Wrap(err, "Can't export edges")
	}
	return nil
}

func (net *Network) exportNodesToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "role", "has_terminus", "importance_weight", "total_demand", "stops", "longitude", "latitude"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, node := range net.Nodes() {
		stopNames := make([]string, len(node.stops))
		for i, stop := range node.stops {
			stopNames[i] = stop.Name
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", node.ID),
			node.role.String(),
			fmt.Sprintf("%t", node.hasTerminus),
			fmt.Sprintf("%f", node.importanceWeight),
			fmt.Sprintf("%f", node.totalDemand),
			strings.Join(stopNames, ","),
			fmt.Sprintf("%f", node.geom[0]),
			fmt.Sprintf("%f", node.geom[1]),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write node")
		}
	}
	return nil
}

func (net *Network) exportEdgesToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"source_node", "target_node", "key", "length_meters", "weighted_cost", "way_ids", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, edge := range net.Edges() {
		wayIDs := edge.WayIDs()
		wayIDsStr := make([]string, len(wayIDs))
		for i, wayID := range wayIDs {
			wayIDsStr[i] = fmt.Sprintf("%d", wayID)
		}
		geomStr := ""
		if len(edge.geom) > 0 {
			geomStr = wkt.MarshalString(edge.geom)
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", edge.ID.Source),
			fmt.Sprintf("%d", edge.ID.Target),
			fmt.Sprintf("%d", edge.ID.Key),
			fmt.Sprintf("%f", edge.lengthMeters),
			fmt.Sprintf("%f", edge.weightedCost),
			strings.Join(wayIDsStr, ","),
			geomStr,
		})
		if err != nil {
			return errors.Wrap(err, "Can't write edge")
		}
	}
	return nil
}

// demandCellRecord is the flat snapshot shape of one demand cell.
type demandCellRecord struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Demand    float64 `json:"demand"`
}

// WriteDemandLayers writes every hourly layer into its own
// 'hexbin_hour_NN.json' file under the given directory.
func WriteDemandLayers(dir string, layers [HoursPerDay][]DemandCell) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "Can't create output directory")
	}
	for hour, layer := range layers {
		records := make([]demandCellRecord, 0, len(layer))
		for _, cell := range layer {
			records = append(records, demandCellRecord{
				Longitude: cell.Centroid.Lon(),
				Latitude:  cell.Centroid.Lat(),
				Demand:    cell.Demand,
			})
		}
		content, err := json.Marshal(records)
		if err != nil {
			return errors.Wrapf(err, "Can't marshal layer for hour %d", hour)
		}
		fname := filepath.Join(dir, fmt.Sprintf("hexbin_hour_%02d.json", hour))
		if err := os.WriteFile(fname, content, 0644); err != nil {
			return errors.Wrapf(err, "Can't write layer for hour %d", hour)
		}
	}
	return nil
}

// WriteStopSnapshot writes one hourly demand-annotated stop snapshot as
// 'stops_demand_hour_NN.geojson' under the given directory.
func WriteStopSnapshot(dir string, hour int, records []StopRecord) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "Can't create output directory")
	}
	collection := geojson.NewFeatureCollection()
	for _, record := range records {
		pt, ok := reduceToPoint(record.Geom)
		if !ok {
			continue
		}
		category := record.Category
		if category == 0 {
			category = STOP_ORDINARY
		}
		feature := geojson.NewPointFeature([]float64{pt.Lon(), pt.Lat()})
		feature.SetProperty("id", record.ID)
		feature.SetProperty("name", record.Name)
		feature.SetProperty("category", category.String())
		feature.SetProperty("demand", record.Demand)
		collection.AddFeature(feature)
	}
	content, err := collection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal stop snapshot")
	}
	fname := filepath.Join(dir, fmt.Sprintf("stops_demand_hour_%02d.geojson", hour))
	return errors.Wrap(os.WriteFile(fname, content, 0644), "Can't write stop snapshot")
}

// lineSummary is the human-readable record of a synthesized line.
type lineSummary struct {
	LineNumber    int     `json:"line_number"`
	StartStopName string  `json:"start_stop_name"`
	TotalDemand   float64 `json:"total_demand"`
	LengthKm      float64 `json:"length_km"`
	StopCount     int     `json:"stop_count"`
	Closed        bool    `json:"closed"`
}

// WriteLineSummaries writes the loop line summary file.
func WriteLineSummaries(fname string, lines []*LoopLine) error {
	summaries := make([]lineSummary, 0, len(lines))
	for _, line := range lines {
		summaries = append(summaries, lineSummary{
			LineNumber:    line.LineNumber,
			StartStopName: line.StartStopName,
			TotalDemand:   line.TotalDemand,
			LengthKm:      line.LengthKm,
			StopCount:     line.StopCount,
			Closed:        line.Closed,
		})
	}
	content, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "Can't marshal line summaries")
	}
	return errors.Wrap(os.WriteFile(fname, content, 0644), "Can't write line summaries")
}

// WritePopulationCells writes the population hexagon overlay as GeoJSON.
func WritePopulationCells(fname string, cells []PopulationCell) error {
	collection := geojson.NewFeatureCollection()
	for _, cell := range cells {
		ring := make([][]float64, 0, len(cell.Ring))
		for _, pt := range cell.Ring {
			ring = append(ring, []float64{pt.Lon(), pt.Lat()})
		}
		feature := geojson.NewPolygonFeature([][][]float64{ring})
		feature.SetProperty("residents", cell.Residents)
		collection.AddFeature(feature)
	}
	content, err := collection.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal population cells")
	}
	return errors.Wrap(os.WriteFile(fname, content, 0644), "Can't write population cells")
}
