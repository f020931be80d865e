package cluster

import "errors"

var (
	// ErrInvalidConfiguration is returned when k, the point set or the
	// initial centroids cannot describe a valid clustering run.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnknownMetric is returned for an unrecognised metric selector.
	ErrUnknownMetric = errors.New("unknown metric")

	// ErrUnknownStrategy is returned for an unrecognised centroid strategy selector.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
