package tramnet

import (
	"os"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ReadStopsGeoJSON reads the stop registry from a GeoJSON feature collection.
// Each feature carries "name" and optional "id", "type" and "demand"
// properties; a "type" of "terminus" marks a loop end point.
func ReadStopsGeoJSON(filename string) ([]StopRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open stops file")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse stops file")
	}
	records := make([]StopRecord, 0, len(fc.Features))
	for i, feature := range fc.Features {
		geom, err := geometryFromGeoJSON(feature.Geometry)
		if err != nil {
			log.WithFields(map[string]interface{}{
				"feature": i,
			}).Warn("skipping stop with unsupported geometry")
			continue
		}
		record := StopRecord{
			Name:     propString(feature, "name"),
			ID:       int64(propFloat(feature, "id")),
			Category: STOP_ORDINARY,
			Demand:   propFloat(feature, "demand"),
			Geom:     geom,
		}
		if strings.EqualFold(propString(feature, "type"), "terminus") {
			record.Category = STOP_TERMINUS
		}
		records = append(records, record)
	}
	return records, nil
}

// ReadPOIsGeoJSON reads category-labeled points of interest from a GeoJSON
// feature collection. The category comes from the "category" property, or
// falls back to the given one when the property is absent.
func ReadPOIsGeoJSON(filename string, fallbackCategory string) ([]POIRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open POI file")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse POI file")
	}
	records := make([]POIRecord, 0, len(fc.Features))
	for i, feature := range fc.Features {
		geom, err := geometryFromGeoJSON(feature.Geometry)
		if err != nil {
			log.WithFields(map[string]interface{}{
				"feature": i,
			}).Warn("skipping POI with unsupported geometry")
			continue
		}
		category := propString(feature, "category")
		if category == "" {
			category = fallbackCategory
		}
		records = append(records, POIRecord{
			ID:       int64(propFloat(feature, "id")),
			Category: category,
			Geom:     geom,
		})
	}
	return records, nil
}

func geometryFromGeoJSON(geometry *geojson.Geometry) (orb.Geometry, error) {
	if geometry == nil {
		return nil, errors.Wrap(ErrMalformedRecord, "empty geometry")
	}
	switch {
	case geometry.IsPoint():
		if len(geometry.Point) < 2 {
			return nil, errors.Wrap(ErrMalformedRecord, "degenerate point")
		}
		return orb.Point{geometry.Point[0], geometry.Point[1]}, nil
	case geometry.IsLineString():
		line := make(orb.LineString, 0, len(geometry.LineString))
		for _, pt := range geometry.LineString {
			if len(pt) < 2 {
				return nil, errors.Wrap(ErrMalformedRecord, "degenerate line point")
			}
			line = append(line, orb.Point{pt[0], pt[1]})
		}
		return line, nil
	case geometry.IsPolygon():
		polygon := make(orb.Polygon, 0, len(geometry.Polygon))
		for _, ring := range geometry.Polygon {
			orbRing := make(orb.Ring, 0, len(ring))
			for _, pt := range ring {
				if len(pt) < 2 {
					return nil, errors.Wrap(ErrMalformedRecord, "degenerate ring point")
				}
				orbRing = append(orbRing, orb.Point{pt[0], pt[1]})
			}
			polygon = append(polygon, orbRing)
		}
		return polygon, nil
	default:
		return nil, errors.Wrapf(ErrMalformedRecord, "geometry type '%s'", geometry.Type)
	}
}

func propString(feature *geojson.Feature, key string) string {
	value, err := feature.PropertyString(key)
	if err != nil {
		return ""
	}
	return value
}

func propFloat(feature *geojson.Feature, key string) float64 {
	value, err := feature.PropertyFloat64(key)
	if err != nil {
		return 0
	}
	return value
}
