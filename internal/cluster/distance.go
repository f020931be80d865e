// Package cluster implements Lloyd's algorithm over n-dimensional points with
// pluggable distance metrics and centroid update strategies.
package cluster

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Point is an n-dimensional numeric vector.
type Point []float64

// Metric selects the distance function used to compare points.
type Metric string

const (
	// MetricEuclidean is the L2 norm of the difference between two points.
	MetricEuclidean Metric = "euclidean"

	// MetricManhattan is the L1 norm of the difference between two points.
	MetricManhattan Metric = "manhattan"
)

// ValidMetrics returns the supported metrics in their canonical order.
func ValidMetrics() []Metric {
	return []Metric{MetricEuclidean, MetricManhattan}
}

// ParseMetric converts a selector string into a Metric.
// Matching is case-insensitive and ignores surrounding whitespace.
// "l2" and "l1" are accepted as aliases of "euclidean" and "manhattan".
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(MetricEuclidean), "l2":
		return MetricEuclidean, nil
	case string(MetricManhattan), "l1":
		return MetricManhattan, nil
	default:
		return "", fmt.Errorf("%w: %q (valid metrics: %v)", ErrUnknownMetric, s, ValidMetrics())
	}
}

// Valid reports whether m is a supported metric.
func (m Metric) Valid() bool {
	return m.norm() != 0
}

// String returns the selector name of the metric.
func (m Metric) String() string {
	return string(m)
}

// Distance returns the distance between p and q.
// It panics if m is not a valid metric.
func (m Metric) Distance(p, q Point) float64 {
	l := m.norm()
	if l == 0 {
		panic(fmt.Sprintf("cluster: distance with unknown metric %q", string(m)))
	}
	return floats.Distance(p, q, l)
}

// Distances returns the distance from p to every point in qs, in order.
func (m Metric) Distances(p Point, qs []Point) []float64 {
	out := make([]float64, len(qs))
	for i, q := range qs {
		out[i] = m.Distance(p, q)
	}
	return out
}

func (m Metric) norm() float64 {
	switch m {
	case MetricEuclidean:
		return 2
	case MetricManhattan:
		return 1
	default:
		return 0
	}
}

// Euclidean returns the square root of the summed squared differences.
func Euclidean(p, q Point) float64 {
	return MetricEuclidean.Distance(p, q)
}

// Manhattan returns the sum of absolute differences.
func Manhattan(p, q Point) float64 {
	return MetricManhattan.Distance(p, q)
}

// nearest returns the index of the closest centroid to p and its distance.
// Ties resolve to the lowest index.
func nearest(m Metric, p Point, centroids []Point) (int, float64) {
	d := m.Distances(p, centroids)
	idx := floats.MinIdx(d)
	return idx, d[idx]
}
