package cluster

import (
	"errors"
	"slices"
	"testing"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{input: "means", want: StrategyMeans},
		{input: "mediods", want: StrategyMedoids},
		{input: "medoids", want: StrategyMedoids},
		{input: " Means ", want: StrategyMeans},
		{input: "kmodes", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownStrategy) {
					t.Errorf("ParseStrategy(%q) error = %v, want ErrUnknownStrategy", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStrategy(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMeanCentroids(t *testing.T) {
	prev := []Point{{1, 1}, {7, 7}}
	sums := []Point{{4, 6}, {0, 0}}
	counts := []int{2, 0}

	got := meanCentroids(prev, sums, counts)
	if !slices.Equal(got[0], Point{2, 3}) {
		t.Errorf("meanCentroids()[0] = %v, want [2 3]", got[0])
	}
	if !slices.Equal(got[1], Point{7, 7}) {
		t.Errorf("meanCentroids()[1] = %v, want previous centroid [7 7]", got[1])
	}

	got[1][0] = 99
	if prev[1][0] != 7 {
		t.Errorf("meanCentroids() aliased the previous centroid")
	}
}

func TestMedoidCentroids(t *testing.T) {
	points := []Point{{0, 0}, {1, 0}, {5, 0}, {20, 20}}
	assignments := []int{0, 0, 0, 2}
	prev := []Point{{0, 0}, {-3, -3}, {20, 20}}

	got := medoidCentroids(prev, points, assignments, MetricManhattan)
	if !slices.Equal(got[0], Point{1, 0}) {
		t.Errorf("medoid of cluster 0 = %v, want [1 0]", got[0])
	}
	if !slices.Equal(got[1], Point{-3, -3}) {
		t.Errorf("empty cluster medoid = %v, want previous [-3 -3]", got[1])
	}
	if !slices.Equal(got[2], Point{20, 20}) {
		t.Errorf("singleton medoid = %v, want [20 20]", got[2])
	}
}

func TestMedoidTieKeepsFirstMember(t *testing.T) {
	points := []Point{{3, 0}, {1, 0}}
	got := medoidCentroids([]Point{{0, 0}}, points, []int{0, 0}, MetricEuclidean)
	if !slices.Equal(got[0], Point{3, 0}) {
		t.Errorf("medoid = %v, want first member [3 0]", got[0])
	}
}
