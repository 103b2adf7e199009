package palette

import (
	"math"
	"reflect"
	"testing"
)

func sumCounts(cs []Centroid) int {
	n := 0
	for _, c := range cs {
		n += c.Count
	}
	return n
}

func TestKMeans_CountsSumToSamples(t *testing.T) {
	tests := []struct {
		name string
		n, k int
	}{
		{"more samples than clusters", 400, 5},
		{"single cluster", 50, 1},
		{"more clusters than samples", 3, 8},
		{"one sample", 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := createNoise(tt.n, 13)
			got := KMeans(samples, tt.k, seeded(17))
			if n := sumCounts(got); n != tt.n {
				t.Errorf("counts sum to %d, want %d", n, tt.n)
			}
			if len(got) > tt.k {
				t.Errorf("got %d centroids, want at most %d", len(got), tt.k)
			}
			for _, c := range got {
				if c.Count == 0 {
					t.Errorf("centroid %v has no members", c)
				}
			}
		})
	}
}

func TestKMeans_SingleClusterIsMean(t *testing.T) {
	samples := []Sample{{0, 0, 0}, {10, 20, 30}, {20, 40, 61}}

	got := KMeans(samples, 1, seeded(2))

	want := []Centroid{{R: 10, G: 20, B: 30, Count: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestKMeans_Reproducible(t *testing.T) {
	samples := createNoise(250, 29)

	a := KMeans(samples, 6, seeded(42))
	b := KMeans(samples, 6, seeded(42))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed gave different results:\n%v\n%v", a, b)
	}
}

func TestKMeans_NilRand(t *testing.T) {
	samples := createNoise(100, 31)

	got := KMeans(samples, 4, nil)
	if n := sumCounts(got); n != 100 {
		t.Errorf("counts sum to %d, want 100", n)
	}
}

func TestKMeans_SeparatedGroups(t *testing.T) {
	// Two identical colours only: whatever the seeds, every surviving
	// centroid sits exactly on one of them.
	samples := append(createSamples(30, Sample{R: 250, G: 10, B: 10}), createSamples(70, Sample{R: 10, G: 10, B: 250})...)

	got := KMeans(samples, 2, seeded(8))
	for _, c := range got {
		s := c.sample()
		if s != (Sample{250, 10, 10}) && s != (Sample{10, 10, 250}) {
			t.Errorf("unexpected centroid %v", c)
		}
	}
	if n := sumCounts(got); n != 100 {
		t.Errorf("counts sum to %d, want 100", n)
	}
}

func TestKMeans_EmptyInputs(t *testing.T) {
	if got := KMeans(nil, 3, seeded(1)); got != nil {
		t.Errorf("nil samples: got %v, want nil", got)
	}
	if got := KMeans(createSamples(3, Sample{}), 0, seeded(1)); got != nil {
		t.Errorf("k=0: got %v, want nil", got)
	}
}

func TestKMeans_HugeK(t *testing.T) {
	samples := createNoise(20, 5)

	got := KMeans(samples, math.MaxInt, seeded(9))
	if len(got) > len(samples) {
		t.Errorf("got %d centroids, want at most %d", len(got), len(samples))
	}
	if n := sumCounts(got); n != len(samples) {
		t.Errorf("counts sum to %d, want %d", n, len(samples))
	}
}
