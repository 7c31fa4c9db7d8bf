package tramnet

import (
	"github.com/pkg/errors"
)

var (
	// ErrNodeNotFound is returned on any reference to an unknown node.
	ErrNodeNotFound = errors.New("node not found")
	// ErrEdgeNotFound is returned on any reference to an unknown edge.
	ErrEdgeNotFound = errors.New("edge not found")
	// ErrNoPathFound is returned when source and target are not connected.
	// It is a normal routing outcome, not a structural failure.
	ErrNoPathFound = errors.New("no path found")
	// ErrMalformedRecord marks an input record which can not be reduced to a
	// usable point. Such records are skipped, the batch continues.
	ErrMalformedRecord = errors.New("malformed record")
)
