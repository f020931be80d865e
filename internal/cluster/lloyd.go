package cluster

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Result is the terminal state of a clustering run.
type Result struct {
	// Centroids holds exactly k representative points, indexed by cluster.
	Centroids []Point

	// Assignments maps every point index to its cluster index.
	Assignments []int

	// Distances holds each point's distance to its assigned centroid.
	Distances []float64

	// Error is the sum of Distances.
	Error float64
}

// Lloyd runs Lloyd's algorithm over a fixed point set.
//
// The point set is never modified. Each call to Run continues from the
// current centroids; callers wanting an independent run construct a new
// Lloyd.
type Lloyd struct {
	points   []Point
	dim      int
	metric   Metric
	strategy Strategy

	centroids   []Point
	assignments []int
	distances   []float64
}

// New creates a clusterer whose k initial centroids are sampled uniformly
// without replacement from points using rng. A nil rng uses a randomly seeded
// source.
func New(points []Point, k int, metric Metric, strategy Strategy, rng *rand.Rand) (*Lloyd, error) {
	dim, err := validatePoints(points)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidConfiguration, k)
	}
	if k > len(points) {
		return nil, fmt.Errorf("%w: k (%d) exceeds number of points (%d)", ErrInvalidConfiguration, k, len(points))
	}
	if err := validateSelectors(metric, strategy); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	centroids := make([]Point, k)
	for i, idx := range sampleIndices(rng, len(points), k) {
		centroids[i] = slices.Clone(points[idx])
	}
	return newLloyd(points, dim, centroids, metric, strategy), nil
}

// NewWithCentroids creates a clusterer starting from the given centroids
// instead of a random sample. The centroids are copied.
func NewWithCentroids(points, centroids []Point, metric Metric, strategy Strategy) (*Lloyd, error) {
	dim, err := validatePoints(points)
	if err != nil {
		return nil, err
	}
	if len(centroids) == 0 || len(centroids) > len(points) {
		return nil, fmt.Errorf("%w: need between 1 and %d centroids, got %d",
			ErrInvalidConfiguration, len(points), len(centroids))
	}
	if err := validateSelectors(metric, strategy); err != nil {
		return nil, err
	}

	cloned := make([]Point, len(centroids))
	for i, c := range centroids {
		if len(c) != dim {
			return nil, fmt.Errorf("%w: centroid %d has dimension %d, want %d",
				ErrInvalidConfiguration, i, len(c), dim)
		}
		cloned[i] = slices.Clone(c)
	}
	return newLloyd(points, dim, cloned, metric, strategy), nil
}

func newLloyd(points []Point, dim int, centroids []Point, metric Metric, strategy Strategy) *Lloyd {
	distances := make([]float64, len(points))
	for i := range distances {
		distances[i] = math.Inf(1)
	}
	return &Lloyd{
		points:      points,
		dim:         dim,
		metric:      metric,
		strategy:    strategy,
		centroids:   centroids,
		assignments: make([]int, len(points)),
		distances:   distances,
	}
}

// Run performs exactly iterations assign/update passes, then measures every
// point against its assigned centroid and returns the total error. There is
// no early stop on convergence. A non-positive iterations only measures.
func (l *Lloyd) Run(iterations int) float64 {
	for range max(iterations, 0) {
		l.iterate()
	}

	for i, p := range l.points {
		l.distances[i] = l.metric.Distance(p, l.centroids[l.assignments[i]])
	}
	return Error(l.distances)
}

// iterate assigns every point to its nearest centroid and recomputes the
// centroid set. Means sums are accumulated during the assignment pass.
func (l *Lloyd) iterate() {
	k := len(l.centroids)
	means := l.strategy != StrategyMedoids

	var sums []Point
	var counts []int
	if means {
		sums = make([]Point, k)
		for i := range sums {
			sums[i] = make(Point, l.dim)
		}
		counts = make([]int, k)
	}

	for i, p := range l.points {
		c, _ := nearest(l.metric, p, l.centroids)
		l.assignments[i] = c
		if means {
			floats.Add(sums[c], p)
			counts[c]++
		}
	}

	if means {
		l.centroids = meanCentroids(l.centroids, sums, counts)
	} else {
		l.centroids = medoidCentroids(l.centroids, l.points, l.assignments, l.metric)
	}
}

// Error returns the clustering error for a set of point-to-centroid distances.
func Error(distances []float64) float64 {
	return floats.Sum(distances)
}

// K returns the number of clusters.
func (l *Lloyd) K() int { return len(l.centroids) }

// Dim returns the dimensionality of the points.
func (l *Lloyd) Dim() int { return l.dim }

// Metric returns the configured distance metric.
func (l *Lloyd) Metric() Metric { return l.metric }

// Strategy returns the configured centroid strategy.
func (l *Lloyd) Strategy() Strategy { return l.strategy }

// Centroids returns a copy of the current centroid set.
func (l *Lloyd) Centroids() []Point {
	out := make([]Point, len(l.centroids))
	for i, c := range l.centroids {
		out[i] = slices.Clone(c)
	}
	return out
}

// Assignments returns a copy of the current point-to-cluster mapping.
func (l *Lloyd) Assignments() []int {
	return slices.Clone(l.assignments)
}

// Distances returns a copy of the per-point distances measured by the last Run.
func (l *Lloyd) Distances() []float64 {
	return slices.Clone(l.distances)
}

// Result snapshots the current state.
func (l *Lloyd) Result() Result {
	return Result{
		Centroids:   l.Centroids(),
		Assignments: l.Assignments(),
		Distances:   l.Distances(),
		Error:       Error(l.distances),
	}
}

func validatePoints(points []Point) (int, error) {
	if len(points) == 0 {
		return 0, fmt.Errorf("%w: point set is empty", ErrInvalidConfiguration)
	}
	dim := len(points[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: points must have at least one dimension", ErrInvalidConfiguration)
	}
	for i, p := range points {
		if len(p) != dim {
			return 0, fmt.Errorf("%w: point %d has dimension %d, want %d", ErrInvalidConfiguration, i, len(p), dim)
		}
	}
	return dim, nil
}

func validateSelectors(metric Metric, strategy Strategy) error {
	if !metric.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	if !strategy.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	return nil
}

// sampleIndices draws k distinct indices from [0, n) with a partial
// Fisher-Yates shuffle that only tracks displaced entries.
func sampleIndices(rng *rand.Rand, n, k int) []int {
	displaced := make(map[int]int, k)
	at := func(i int) int {
		if v, ok := displaced[i]; ok {
			return v
		}
		return i
	}

	out := make([]int, k)
	for i := range k {
		j := i + rng.IntN(n-i)
		out[i] = at(j)
		displaced[j] = at(i)
	}
	return out
}
