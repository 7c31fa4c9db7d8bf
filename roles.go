package tramnet

// GraphRole is a topology-derived role of a network node. A node carries
// exactly one role at a time.
type GraphRole uint16

const (
	ROLE_ORDINARY = GraphRole(iota + 1)
	ROLE_CROSSING
	ROLE_SWITCH
	ROLE_TERMINUS
)

func (iotaIdx GraphRole) String() string {
	return [...]string{"ordinary", "crossing", "switch", "terminus"}[iotaIdx-1]
}

// StopCategory describes a passenger-facing stop kind.
type StopCategory uint16

const (
	STOP_ORDINARY = StopCategory(iota + 1)
	STOP_TERMINUS
)

func (iotaIdx StopCategory) String() string {
	return [...]string{"stop", "terminus"}[iotaIdx-1]
}
