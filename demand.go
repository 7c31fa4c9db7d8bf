package tramnet

import (
	"sort"
	"sync"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
)

const (
	// HoursPerDay is the number of independent hourly demand layers.
	HoursPerDay = 24

	defaultCellRadius    = 200.0
	defaultEpsilon       = 0.001
	defaultUnknownWeight = 0.5
)

// Base weight per POI category. Categories missing from the table fall back
// to the aggregator's default weight and are not scaled by hour-of-day.
var baseCategoryWeights = map[string]float64{
	"schools":         1.5,
	"universities":    2.0,
	"museums":         1.8,
	"theaters":        1.8,
	"shops":           1.0,
	"bars":            1.4,
	"train_stations":  4.5,
	"bus_stations":    1.5,
	"hospitals":       3.0,
	"restaurants":     1.3,
	"pharmacies":      1.0,
	"libraries":       1.2,
	"churches":        1.0,
	"parks":           1.8,
	"cinemas":         1.5,
	"post_offices":    4.0,
	"police_stations": 1.6,
}

// Categories whose activity peaks at night.
var nightActiveCategories = map[string]struct{}{
	"bars": {},
}

// DemandCell is one hexagonal spatial bin holding aggregated demand for one
// hour of day. The centroid is longitude/latitude. Cells are immutable once
// produced.
type DemandCell struct {
	Centroid orb.Point
	Demand   float64
}

// DemandAggregator buckets POI-derived demand into a hexagonal grid per hour
// of day using a parametric day/night weighting curve.
type DemandAggregator struct {
	cellRadius      float64
	epsilon         float64
	defaultWeight   float64
	categoryWeights map[string]float64
	nightCategories map[string]struct{}
}

func NewDemandAggregator(options ...func(*DemandAggregator)) *DemandAggregator {
	aggregator := &DemandAggregator{
		cellRadius:      defaultCellRadius,
		epsilon:         defaultEpsilon,
		defaultWeight:   defaultUnknownWeight,
		categoryWeights: baseCategoryWeights,
		nightCategories: nightActiveCategories,
	}
	for _, option := range options {
		option(aggregator)
	}
	return aggregator
}

func WithCellRadius(cellRadius float64) func(*DemandAggregator) {
	return func(aggregator *DemandAggregator) {
		aggregator.cellRadius = cellRadius
	}
}

func WithEpsilon(epsilon float64) func(*DemandAggregator) {
	return func(aggregator *DemandAggregator) {
		aggregator.epsilon = epsilon
	}
}

func WithDefaultWeight(defaultWeight float64) func(*DemandAggregator) {
	return func(aggregator *DemandAggregator) {
		aggregator.defaultWeight = defaultWeight
	}
}

func WithCategoryWeights(categoryWeights map[string]float64) func(*DemandAggregator) {
	return func(aggregator *DemandAggregator) {
		aggregator.categoryWeights = categoryWeights
	}
}

func WithNightCategories(categories []string) func(*DemandAggregator) {
	return func(aggregator *DemandAggregator) {
		aggregator.nightCategories = make(map[string]struct{}, len(categories))
		for _, category := range categories {
			aggregator.nightCategories[category] = struct{}{}
		}
	}
}

// DayMultiplier evaluates the daytime demand curve for the given hour:
// -0.5*(x^2-1.5)*(x^2+0.8) with x running from -1.2 at hour 0 to 1.2 at
// hour 23. Values below the epsilon floor are clamped to it.
func (aggregator *DemandAggregator) DayMultiplier(hour int) float64 {
	x := -1.2 + 2.4*float64(hour)/23.0
	value := -0.5 * (x*x - 1.5) * (x*x + 0.8)
	if value < aggregator.epsilon {
		value = aggregator.epsilon
	}
	return value
}

// NightMultiplier evaluates the nighttime demand curve for the given hour:
// (x'/2)^2 with x' shifted by 0.4 against the daytime curve. Values below the
// epsilon floor are clamped to it.
func (aggregator *DemandAggregator) NightMultiplier(hour int) float64 {
	x := -1.2 + 2.4*float64(hour)/23.0 + 0.4
	value := (x / 2.0) * (x / 2.0)
	if value < aggregator.epsilon {
		value = aggregator.epsilon
	}
	return value
}

// FeatureWeight returns the hourly demand contribution of a single feature of
// the given category. Night-active categories follow the night curve, other
// known categories the day curve; unknown categories contribute the default
// weight unscaled.
func (aggregator *DemandAggregator) FeatureWeight(category string, hour int) float64 {
	baseWeight, known := aggregator.categoryWeights[category]
	if !known {
		return aggregator.defaultWeight
	}
	if _, night := aggregator.nightCategories[category]; night {
		return baseWeight * aggregator.NightMultiplier(hour)
	}
	return baseWeight * aggregator.DayMultiplier(hour)
}

// AggregateHour bins the weighted POI features into the hexagonal grid for a
// single hour. Cells are returned in deterministic grid order. Features
// without a usable point geometry are skipped.
func (aggregator *DemandAggregator) AggregateHour(pois []POIRecord, hour int) []DemandCell {
	bins := make(map[hexCell]float64)
	for _, poi := range pois {
		pt, ok := reduceToPoint(poi.Geom)
		if !ok {
			continue
		}
		cell := hexCellAt(pointToEuclidean(pt), aggregator.cellRadius)
		bins[cell] += aggregator.FeatureWeight(poi.Category, hour)
	}
	cells := make([]hexCell, 0, len(bins))
	for cell := range bins {
		cells = append(cells, cell)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].q != cells[j].q {
			return cells[i].q < cells[j].q
		}
		return cells[i].r < cells[j].r
	})
	layer := make([]DemandCell, 0, len(cells))
	for _, cell := range cells {
		layer = append(layer, DemandCell{
			Centroid: pointToSpherical(hexCellCenter(cell, aggregator.cellRadius)),
			Demand:   bins[cell],
		})
	}
	return layer
}

// AggregateDay produces all 24 hourly demand layers. The hours are computed
// concurrently; every hour reads the same immutable inputs and owns its own
// output slot.
func (aggregator *DemandAggregator) AggregateDay(pois []POIRecord) [HoursPerDay][]DemandCell {
	var layers [HoursPerDay][]DemandCell
	var wg sync.WaitGroup
	for hour := 0; hour < HoursPerDay; hour++ {
		wg.Add(1)
		go func(hour int) {
			defer wg.Done()
			layers[hour] = aggregator.AggregateHour(pois, hour)
		}(hour)
	}
	wg.Wait()
	log.WithFields(logrus.Fields{"pois": len(pois)}).Info("hourly demand layers aggregated")
	return layers
}

// AccumulateStopDemand folds one hourly demand layer onto the stop registry:
// each cell's demand is added to the nearest stop by projected-plane distance
// (an exact tie resolves to the earlier record). The input records are not
// modified; the returned snapshot is a copy. Records without a usable
// geometry keep zero demand and never attract cells.
func AccumulateStopDemand(records []StopRecord, layer []DemandCell) []StopRecord {
	snapshot := make([]StopRecord, len(records))
	copy(snapshot, records)

	positions := make([]orb.Point, len(records))
	usable := make([]bool, len(records))
	for i, record := range records {
		pt, ok := reduceToPoint(record.Geom)
		if ok {
			positions[i] = pointToEuclidean(pt)
		}
		usable[i] = ok
	}

	for _, cell := range layer {
		cellPt := pointToEuclidean(cell.Centroid)
		nearest := -1
		bestDistance := 0.0
		for i := range snapshot {
			if !usable[i] {
				continue
			}
			distance := euclideanDistance(cellPt, positions[i])
			if nearest < 0 || distance < bestDistance {
				nearest = i
				bestDistance = distance
			}
		}
		if nearest < 0 {
			continue
		}
		snapshot[nearest].Demand += cell.Demand
	}
	return snapshot
}
