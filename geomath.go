package tramnet

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	earthR = 20037508.34
)

func epsg3857To4326(x, y float64) (float64, float64) {
	lon := x * 180 / earthR
	lat := math.Atan(math.Exp(y*math.Pi/earthR))*360/math.Pi - 90
	return lon, lat
}

func epsg4326To3857(lon, lat float64) (float64, float64) {
	x := lon * earthR / 180
	y := math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180)
	y = y * earthR / 180
	return x, y
}

func pointToEuclidean(pt orb.Point) orb.Point {
	euclideanX, euclideanY := epsg4326To3857(pt.Lon(), pt.Lat())
	return orb.Point{euclideanX, euclideanY}
}

func pointToSpherical(pt orb.Point) orb.Point {
	lon, lat := epsg3857To4326(pt.X(), pt.Y())
	return orb.Point{lon, lat}
}

// euclideanDistance returns distance between two points of the projected plane
func euclideanDistance(p, q orb.Point) float64 {
	dx := p.X() - q.X()
	dy := p.Y() - q.Y()
	return math.Sqrt(dx*dx + dy*dy)
}

// euclideanLength returns length of a polyline in the projected plane
func euclideanLength(line orb.LineString) float64 {
	total := 0.0
	for i := 0; i+1 < len(line); i++ {
		total += euclideanDistance(line[i], line[i+1])
	}
	return total
}

// reduceToPoint collapses any geometry to a single representative point.
// Points pass through as is, everything else is reduced to its planar centroid.
func reduceToPoint(geom orb.Geometry) (orb.Point, bool) {
	if geom == nil {
		return orb.Point{}, false
	}
	if pt, ok := geom.(orb.Point); ok {
		return pt, true
	}
	centroid, _ := planar.CentroidArea(geom)
	if math.IsNaN(centroid.X()) || math.IsNaN(centroid.Y()) {
		return orb.Point{}, false
	}
	return centroid, true
}

// createHexagon builds a closed regular hexagon around the given center.
// Radius is the distance from the center to each vertex, in units of the
// center's reference frame.
func createHexagon(center orb.Point, radius float64) orb.Ring {
	ring := make(orb.Ring, 0, 7)
	for i := 0; i < 6; i++ {
		angle := float64(i) * math.Pi / 3.0
		ring = append(ring, orb.Point{
			center.X() + radius*math.Cos(angle),
			center.Y() + radius*math.Sin(angle),
		})
	}
	ring = append(ring, ring[0])
	return ring
}

// hexCell is an axial coordinate of a pointy-top hexagonal grid cell.
type hexCell struct {
	q int
	r int
}

// hexCellAt maps a planar point to its grid cell for the given cell radius.
func hexCellAt(pt orb.Point, radius float64) hexCell {
	q := (math.Sqrt(3.0)/3.0*pt.X() - 1.0/3.0*pt.Y()) / radius
	r := (2.0 / 3.0 * pt.Y()) / radius
	return hexCellRound(q, r)
}

// hexCellCenter recovers the planar center of a grid cell.
func hexCellCenter(cell hexCell, radius float64) orb.Point {
	x := radius * math.Sqrt(3.0) * (float64(cell.q) + float64(cell.r)/2.0)
	y := radius * 3.0 / 2.0 * float64(cell.r)
	return orb.Point{x, y}
}

// hexCellRound rounds fractional axial coordinates using cube rounding, so
// every point lands in exactly one cell.
func hexCellRound(q, r float64) hexCell {
	x := q
	z := r
	y := -x - z

	rx := math.Round(x)
	ry := math.Round(y)
	rz := math.Round(z)

	dx := math.Abs(rx - x)
	dy := math.Abs(ry - y)
	dz := math.Abs(rz - z)

	if dx > dy && dx > dz {
		rx = -ry - rz
	} else if dy <= dz {
		rz = -rx - ry
	}
	return hexCell{q: int(rx), r: int(rz)}
}
