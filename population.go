package tramnet

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

const defaultPopulationHexRadius = 250.0

// PopulationCell is one hexagon of the population overlay: the cell polygon
// in longitude/latitude plus its resident count.
type PopulationCell struct {
	Ring      orb.Ring
	Centroid  orb.Point
	Residents int
}

// BuildPopulationCells turns spreadsheet rows into hexagonal overlay cells.
// Row coordinates are cell centers in the projected plane; each center gets a
// regular hexagon of the given vertex radius (meters), reprojected to WGS84.
// A non-positive radius falls back to the default.
func BuildPopulationCells(rows []PopulationRecord, radius float64) []PopulationCell {
	if radius <= 0 {
		radius = defaultPopulationHexRadius
	}
	cells := make([]PopulationCell, 0, len(rows))
	for _, row := range rows {
		center := orb.Point{row.X, row.Y}
		ring := createHexagon(center, radius)
		spherical := make(orb.Ring, len(ring))
		for i, pt := range ring {
			spherical[i] = pointToSpherical(pt)
		}
		cells = append(cells, PopulationCell{
			Ring:      spherical,
			Centroid:  pointToSpherical(center),
			Residents: row.Residents,
		})
	}
	return cells
}

// ReadPopulationCSV reads population rows from a CSV file with the header
// "x;y;residents". Coordinates are cell centers in the projected plane.
func ReadPopulationCSV(filename string) ([]PopulationRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open population file")
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read population file")
	}
	records := make([]PopulationRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 3 {
			return nil, errors.Wrapf(ErrMalformedRecord, "population row %d", i)
		}
		x, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse X in population row %d", i)
		}
		y, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse Y in population row %d", i)
		}
		residents, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse residents in population row %d", i)
		}
		records = append(records, PopulationRecord{X: x, Y: y, Residents: residents})
	}
	return records, nil
}
