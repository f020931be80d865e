package cluster

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Strategy selects how a cluster's representative point is recomputed.
type Strategy string

const (
	// StrategyMeans uses the per-dimension arithmetic mean of the cluster.
	StrategyMeans Strategy = "means"

	// StrategyMedoids picks the member with the smallest summed distance to
	// the rest of its cluster. The selector keeps the historical spelling.
	StrategyMedoids Strategy = "mediods"
)

// ValidStrategies returns the supported strategies in their canonical order.
func ValidStrategies() []Strategy {
	return []Strategy{StrategyMeans, StrategyMedoids}
}

// ParseStrategy converts a selector string into a Strategy.
// "medoids" is accepted as an alias of "mediods".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(StrategyMeans):
		return StrategyMeans, nil
	case string(StrategyMedoids), "medoids":
		return StrategyMedoids, nil
	default:
		return "", fmt.Errorf("%w: %q (valid strategies: %v)", ErrUnknownStrategy, s, ValidStrategies())
	}
}

// Valid reports whether s is a supported strategy.
func (s Strategy) Valid() bool {
	return s == StrategyMeans || s == StrategyMedoids
}

// String returns the selector name of the strategy.
func (s Strategy) String() string {
	return string(s)
}

// meanCentroids divides the accumulated per-cluster sums by their counts.
// A cluster without members keeps its previous centroid.
func meanCentroids(prev, sums []Point, counts []int) []Point {
	next := make([]Point, len(prev))
	for i := range prev {
		if counts[i] == 0 {
			next[i] = slices.Clone(prev[i])
			continue
		}
		c := make(Point, len(sums[i]))
		floats.ScaleTo(c, 1/float64(counts[i]), sums[i])
		next[i] = c
	}
	return next
}

// medoidCentroids selects, for every cluster, the member minimising the sum of
// distances to the other members. Ties keep the member seen first in point
// order. A cluster without members keeps its previous centroid.
func medoidCentroids(prev, points []Point, assignments []int, m Metric) []Point {
	members := make([][]Point, len(prev))
	for i, c := range assignments {
		members[c] = append(members[c], points[i])
	}

	next := make([]Point, len(prev))
	for c, group := range members {
		if len(group) == 0 {
			next[c] = slices.Clone(prev[c])
			continue
		}
		best := math.Inf(1)
		medoid := group[0]
		for _, candidate := range group {
			sum := floats.Sum(m.Distances(candidate, group))
			if sum < best {
				best = sum
				medoid = candidate
			}
		}
		next[c] = slices.Clone(medoid)
	}
	return next
}
