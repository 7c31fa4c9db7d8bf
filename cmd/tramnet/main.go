package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LdDl/ch"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tramsim/tramnet"
)

var (
	logger = logrus.New()

	osmFileName   string
	configName    string
	stopsFileName string
	poiFileName   string
	out           string
	outDir        string
	hour          int
	tagStr        string
	doContraction bool
	linesCount    int
	seed          int64

	populationFileName string
)

func main() {
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	tramnet.SetLogger(logger)

	rootCmd := &cobra.Command{
		Use:   "tramnet",
		Short: "Demand-weighted tram network toolkit",
	}
	rootCmd.PersistentFlags().StringVar(&osmFileName, "file", "my_graph.osm", "Filename of *.osm or *.pbf file with the tram network")
	rootCmd.PersistentFlags().StringVar(&configName, "config", "", "Optional YAML config file")
	rootCmd.PersistentFlags().StringVar(&tagStr, "tags", "tram", "Set of needed railway tags (separated by commas)")
	rootCmd.PersistentFlags().StringVar(&stopsFileName, "stops", "stops.geojson", "Filename of the GeoJSON stop registry")
	rootCmd.PersistentFlags().StringVar(&poiFileName, "poi", "poi.geojson", "Filename of the GeoJSON POI collection")

	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Build and simplify the tram graph, export CSV snapshot",
		RunE:  runGraph,
	}
	graphCmd.Flags().StringVar(&out, "out", "tram_graph.csv", "Base filename for CSV output")
	graphCmd.Flags().BoolVar(&doContraction, "contract", false, "Prepare contraction hierarchies for the weighted edge set?")

	demandCmd := &cobra.Command{
		Use:   "demand",
		Short: "Aggregate hourly POI demand layers and stop snapshots",
		RunE:  runDemand,
	}
	demandCmd.Flags().StringVar(&outDir, "out-dir", "poi_demand_time", "Directory for hourly demand layers")

	linesCmd := &cobra.Command{
		Use:   "lines",
		Short: "Run the full pipeline and synthesize loop lines",
		RunE:  runLines,
	}
	linesCmd.Flags().StringVar(&out, "out", "tram_lines_summary.json", "Filename for the line summary")
	linesCmd.Flags().IntVar(&hour, "hour", 8, "Hour of day for the demand snapshot")
	linesCmd.Flags().IntVar(&linesCount, "count", 5, "Number of loop lines to synthesize")
	linesCmd.Flags().Int64Var(&seed, "seed", 0, "Randomness seed for route variety (0 keeps it random)")

	populationCmd := &cobra.Command{
		Use:   "population",
		Short: "Build the population hexagon overlay from spreadsheet rows",
		RunE:  runPopulation,
	}
	populationCmd.Flags().StringVar(&out, "out", "population_hexagons.geojson", "Filename for the population overlay")
	populationCmd.Flags().StringVar(&populationFileName, "data", "population.csv", "Filename of the population CSV (x;y;residents)")

	rootCmd.AddCommand(graphCmd, demandCmd, linesCmd, populationCmd)
	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Fatal("failed to run command")
	}
}

func loadConfig() (*tramnet.Config, error) {
	if configName == "" {
		cfg := tramnet.DefaultConfig()
		cfg.RailwayTags = strings.Split(tagStr, ",")
		return cfg, nil
	}
	cfg, err := tramnet.LoadConfig(configName)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func runGraph(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	net, err := tramnet.ImportNetworkFromOSM(osmFileName, cfg.RailwayTags)
	if err != nil {
		return err
	}
	if _, err := tramnet.SimplifyTopology(net); err != nil {
		return err
	}
	if err := net.ExportToCSV(out); err != nil {
		return err
	}
	if doContraction {
		return contractNetwork(net, out)
	}
	return nil
}

// contractNetwork feeds the weighted edge set into contraction hierarchies
// preparation, so downstream routers can consume the prepared graph.
func contractNetwork(net *tramnet.Network, fname string) error {
	if err := tramnet.RecomputeWeights(net, tramnet.WEIGHT_IMPORTANCE); err != nil {
		return err
	}
	graph := ch.Graph{}
	for _, node := range net.Nodes() {
		if err := graph.CreateVertex(int64(node.ID)); err != nil {
			return err
		}
	}
	for _, edge := range net.Edges() {
		if err := graph.AddEdge(int64(edge.ID.Source), int64(edge.ID.Target), edge.WeightedCost()); err != nil {
			return err
		}
	}
	logger.Info("starting contraction process")
	st := time.Now()
	graph.PrepareContractionHierarchies()
	logger.WithField("elapsed", time.Since(st)).Info("done contraction process")

	fnameParts := strings.Split(fname, ".csv")
	fnameVertices := fmt.Sprintf(fnameParts[0] + "_vertices.csv")
	fnameShortcuts := fmt.Sprintf(fnameParts[0] + "_shortcuts.csv")

	fileVertices, err := os.Create(fnameVertices)
	if err != nil {
		return err
	}
	defer fileVertices.Close()
	writerVertices := csv.NewWriter(fileVertices)
	defer writerVertices.Flush()
	writerVertices.Comma = ';'
	if err := writerVertices.Write([]string{"vertex_id", "order_pos", "importance"}); err != nil {
		return err
	}
	vertices := graph.Vertices
	for i := 0; i < len(vertices); i++ {
		err := writerVertices.Write([]string{
			fmt.Sprintf("%d", vertices[i].Label),
			fmt.Sprintf("%d", vertices[i].OrderPos()),
			fmt.Sprintf("%d", vertices[i].Importance()),
		})
		if err != nil {
			return err
		}
	}
	return graph.ExportShortcutsToFile(fnameShortcuts)
}

func readStopRecords() ([]tramnet.StopRecord, error) {
	return tramnet.ReadStopsGeoJSON(stopsFileName)
}

func readPOIRecords() ([]tramnet.POIRecord, error) {
	return tramnet.ReadPOIsGeoJSON(poiFileName, "")
}

func runPopulation(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rows, err := tramnet.ReadPopulationCSV(populationFileName)
	if err != nil {
		return err
	}
	cells := tramnet.BuildPopulationCells(rows, cfg.Population.HexRadiusMeters)
	return tramnet.WritePopulationCells(out, cells)
}

func runDemand(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pois, err := readPOIRecords()
	if err != nil {
		return err
	}
	stops, err := readStopRecords()
	if err != nil {
		return err
	}
	aggregator := cfg.Aggregator()
	layers := aggregator.AggregateDay(pois)
	if err := tramnet.WriteDemandLayers(outDir, layers); err != nil {
		return err
	}
	for h := 0; h < tramnet.HoursPerDay; h++ {
		snapshot := tramnet.AccumulateStopDemand(stops, layers[h])
		if err := tramnet.WriteStopSnapshot(outDir, h, snapshot); err != nil {
			return err
		}
	}
	return nil
}

func runLines(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if linesCount > 0 {
		cfg.Lines.Count = linesCount
	}
	if seed != 0 {
		cfg.Lines.Seed = seed
	}
	net, err := tramnet.ImportNetworkFromOSM(osmFileName, cfg.RailwayTags)
	if err != nil {
		return err
	}
	pois, err := readPOIRecords()
	if err != nil {
		return err
	}
	stops, err := readStopRecords()
	if err != nil {
		return err
	}
	result, err := tramnet.RunPipeline(net, stops, pois, hour, cfg)
	if err != nil {
		return err
	}
	routes, err := tramnet.TerminusRoutes(net)
	if err != nil {
		return err
	}
	for _, route := range routes {
		logger.WithFields(logrus.Fields{
			"from":      route.FromName,
			"to":        route.ToName,
			"length_km": route.LengthKm,
			"nodes":     len(route.Path),
		}).Info("terminus to terminus route")
	}
	return tramnet.WriteLineSummaries(out, result.Lines)
}
