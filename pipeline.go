package tramnet

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// PipelineResult is the fully materialized output of one batch run.
type PipelineResult struct {
	Network       *Network
	Layers        [HoursPerDay][]DemandCell
	StopSnapshots [HoursPerDay][]StopRecord
	Lines         []*LoopLine
	RemovedNodes  int
}

// RunPipeline executes the batch stages in their fixed order: topology
// simplification, hourly demand aggregation, stop snapping for the selected
// hour, loop line synthesis. Each stage runs to completion before the next
// one starts; a structural failure aborts the run.
func RunPipeline(net *Network, stops []StopRecord, pois []POIRecord, hour int, cfg *Config) (*PipelineResult, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if hour < 0 || hour >= HoursPerDay {
		return nil, errors.Errorf("hour %d out of range [0..23]", hour)
	}
	result := &PipelineResult{Network: net}

	removed, err := SimplifyTopology(net)
	if err != nil {
		return nil, errors.Wrap(err, "simplify stage")
	}
	result.RemovedNodes = removed

	aggregator := cfg.Aggregator()
	result.Layers = aggregator.AggregateDay(pois)
	for h := 0; h < HoursPerDay; h++ {
		result.StopSnapshots[h] = AccumulateStopDemand(stops, result.Layers[h])
	}

	SnapStops(net, result.StopSnapshots[hour])
	SnapPOIs(net, pois)

	if err := RecomputeWeights(net, WEIGHT_DEMAND); err != nil {
		return nil, errors.Wrap(err, "weighting stage")
	}

	planner := cfg.Planner(net)
	lines, err := planner.GenerateLines(cfg.Lines.Count)
	if err != nil {
		return nil, errors.Wrap(err, "line synthesis stage")
	}
	result.Lines = lines

	log.WithFields(logrus.Fields{
		"hour":          hour,
		"removed_nodes": removed,
		"lines":         len(lines),
	}).Info("pipeline finished")
	return result, nil
}
