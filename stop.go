package tramnet

// Stop is a single passenger-facing stop attached to a network node. A node
// may host several stops, e.g. both platform directions of the same station.
type Stop struct {
	Name     string
	ID       int64
	Category StopCategory
	Demand   float64
}
