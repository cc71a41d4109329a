package graph

import "errors"

var (
	// ErrInvalidState is returned when a source is started twice or stopped
	// before it was started.
	ErrInvalidState = errors.New("graph: invalid state")

	// ErrInvalidPort is returned when a port index is out of range.
	ErrInvalidPort = errors.New("graph: invalid port")

	// ErrForeignNode is returned when nodes from different contexts are wired.
	ErrForeignNode = errors.New("graph: node belongs to another context")

	// ErrInvalidArgument is returned for out-of-range constructor or
	// parameter arguments.
	ErrInvalidArgument = errors.New("graph: invalid argument")
)
