package cluster

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestMetricDistance(t *testing.T) {
	tests := []struct {
		name   string
		metric Metric
		p, q   Point
		want   float64
	}{
		{
			name:   "manhattan 3-4-0",
			metric: MetricManhattan,
			p:      Point{0, 0, 0},
			q:      Point{3, 4, 0},
			want:   7,
		},
		{
			name:   "euclidean 3-4-0",
			metric: MetricEuclidean,
			p:      Point{0, 0, 0},
			q:      Point{3, 4, 0},
			want:   5,
		},
		{
			name:   "manhattan negative coordinates",
			metric: MetricManhattan,
			p:      Point{-1, 2},
			q:      Point{1, -2},
			want:   6,
		},
		{
			name:   "euclidean single dimension",
			metric: MetricEuclidean,
			p:      Point{-2},
			q:      Point{3},
			want:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.metric.Distance(tt.p, tt.q); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Distance() = %v, want %v", got, tt.want)
			}
			if got := tt.metric.Distance(tt.q, tt.p); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Distance() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNamedDistanceFunctions(t *testing.T) {
	p, q := Point{0, 0, 0}, Point{3, 4, 0}
	if got := Manhattan(p, q); got != 7 {
		t.Errorf("Manhattan() = %v, want 7", got)
	}
	if got := Euclidean(p, q); got != 5 {
		t.Errorf("Euclidean() = %v, want 5", got)
	}
}

func TestDistancesPreservesOrder(t *testing.T) {
	p := Point{0, 0}
	qs := []Point{{3, 4}, {0, 0}, {1, 0}}

	for _, m := range ValidMetrics() {
		t.Run(m.String(), func(t *testing.T) {
			got := m.Distances(p, qs)
			if len(got) != len(qs) {
				t.Fatalf("Distances() returned %d values, want %d", len(got), len(qs))
			}
			for i, q := range qs {
				if want := m.Distance(p, q); got[i] != want {
					t.Errorf("Distances()[%d] = %v, want %v", i, got[i], want)
				}
			}
		})
	}
}

func TestDistancesSingleRow(t *testing.T) {
	got := MetricManhattan.Distances(Point{1, 1}, []Point{{2, 3}})
	if len(got) != 1 || got[0] != 3 {
		t.Errorf("Distances() = %v, want [3]", got)
	}
}

func TestMetricIdentityAndTriangleInequality(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	randomPoint := func() Point {
		p := make(Point, 3)
		for i := range p {
			p[i] = rng.Float64()*510 - 255
		}
		return p
	}

	for _, m := range ValidMetrics() {
		t.Run(m.String(), func(t *testing.T) {
			for range 500 {
				a, b, c := randomPoint(), randomPoint(), randomPoint()

				if d := m.Distance(a, a); d != 0 {
					t.Fatalf("Distance(a, a) = %v, want 0", d)
				}
				if d := m.Distance(a, b); d < 0 {
					t.Fatalf("Distance() = %v, want non-negative", d)
				}
				ab, bc, ac := m.Distance(a, b), m.Distance(b, c), m.Distance(a, c)
				if ac > ab+bc+1e-9 {
					t.Fatalf("triangle inequality violated: d(a,c)=%v > d(a,b)+d(b,c)=%v", ac, ab+bc)
				}
			}
		})
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		input   string
		want    Metric
		wantErr bool
	}{
		{input: "euclidean", want: MetricEuclidean},
		{input: "Manhattan", want: MetricManhattan},
		{input: "  EUCLIDEAN ", want: MetricEuclidean},
		{input: "l2", want: MetricEuclidean},
		{input: "L1", want: MetricManhattan},
		{input: "cosine", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMetric(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMetric) {
					t.Errorf("ParseMetric(%q) error = %v, want ErrUnknownMetric", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMetric(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMetric(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDistanceUnknownMetricPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Distance() with an unknown metric should panic")
		}
	}()
	Metric("cosine").Distance(Point{0, 0}, Point{1, 1})
}

func TestNearestTieBreaksToFirstIndex(t *testing.T) {
	centroids := []Point{{-1, 0}, {1, 0}, {0, 5}}

	for _, m := range ValidMetrics() {
		t.Run(m.String(), func(t *testing.T) {
			idx, d := nearest(m, Point{0, 0}, centroids)
			if idx != 0 {
				t.Errorf("nearest() index = %d, want 0", idx)
			}
			if d != 1 {
				t.Errorf("nearest() distance = %v, want 1", d)
			}
		})
	}
}

func TestNearestPicksMinimum(t *testing.T) {
	centroids := []Point{{10, 10}, {0, 1}, {0, 0.5}}
	idx, d := nearest(MetricEuclidean, Point{0, 0}, centroids)
	if idx != 2 || d != 0.5 {
		t.Errorf("nearest() = (%d, %v), want (2, 0.5)", idx, d)
	}
}
