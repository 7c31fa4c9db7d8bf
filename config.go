package tramnet

import (
	"math/rand"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config carries run parameters for the whole pipeline. Zero or missing
// fields fall back to the engine defaults.
type Config struct {
	RailwayTags []string `yaml:"railway_tags"`
	Demand      struct {
		CellRadiusMeters float64            `yaml:"cell_radius_meters"`
		Epsilon          float64            `yaml:"epsilon"`
		DefaultWeight    float64            `yaml:"default_weight"`
		CategoryWeights  map[string]float64 `yaml:"category_weights"`
		NightCategories  []string           `yaml:"night_categories"`
	} `yaml:"demand"`
	Lines struct {
		Count         int   `yaml:"count"`
		CandidatePool int   `yaml:"candidate_pool"`
		MinTargets    int   `yaml:"min_targets"`
		MaxTargets    int   `yaml:"max_targets"`
		MinRouteNodes int   `yaml:"min_route_nodes"`
		Seed          int64 `yaml:"seed"`
	} `yaml:"lines"`
	Population struct {
		HexRadiusMeters float64 `yaml:"hex_radius_meters"`
	} `yaml:"population"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		RailwayTags: []string{"tram"},
	}
	cfg.Demand.CellRadiusMeters = defaultCellRadius
	cfg.Demand.Epsilon = defaultEpsilon
	cfg.Demand.DefaultWeight = defaultUnknownWeight
	cfg.Lines.Count = 5
	cfg.Lines.CandidatePool = defaultCandidatePool
	cfg.Lines.MinTargets = defaultMinTargets
	cfg.Lines.MaxTargets = defaultMaxTargets
	cfg.Lines.MinRouteNodes = defaultMinRouteNodes
	cfg.Population.HexRadiusMeters = defaultPopulationHexRadius
	return cfg
}

// LoadConfig reads a YAML config file on top of the defaults.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config file")
	}
	return cfg, nil
}

// Aggregator builds a demand aggregator from the config.
func (cfg *Config) Aggregator() *DemandAggregator {
	options := []func(*DemandAggregator){}
	if cfg.Demand.CellRadiusMeters > 0 {
		options = append(options, WithCellRadius(cfg.Demand.CellRadiusMeters))
	}
	if cfg.Demand.Epsilon > 0 {
		options = append(options, WithEpsilon(cfg.Demand.Epsilon))
	}
	if cfg.Demand.DefaultWeight > 0 {
		options = append(options, WithDefaultWeight(cfg.Demand.DefaultWeight))
	}
	if len(cfg.Demand.CategoryWeights) > 0 {
		options = append(options, WithCategoryWeights(cfg.Demand.CategoryWeights))
	}
	if len(cfg.Demand.NightCategories) > 0 {
		options = append(options, WithNightCategories(cfg.Demand.NightCategories))
	}
	return NewDemandAggregator(options...)
}

// Planner builds a loop line planner for the given network from the config.
func (cfg *Config) Planner(net *Network) *LinePlanner {
	options := []func(*LinePlanner){}
	if cfg.Lines.Seed != 0 {
		options = append(options, WithRand(rand.New(rand.NewSource(cfg.Lines.Seed))))
	}
	if cfg.Lines.CandidatePool > 0 {
		options = append(options, WithCandidatePool(cfg.Lines.CandidatePool))
	}
	if cfg.Lines.MinTargets > 0 && cfg.Lines.MaxTargets >= cfg.Lines.MinTargets {
		options = append(options, WithTargetRange(cfg.Lines.MinTargets, cfg.Lines.MaxTargets))
	}
	if cfg.Lines.MinRouteNodes > 0 {
		options = append(options, WithMinRouteNodes(cfg.Lines.MinRouteNodes))
	}
	return NewLinePlanner(net, options...)
}
