package palette

import "math/rand/v2"

// kmeansIterations is fixed; there is no convergence check.
const kmeansIterations = 10

// KMeans clusters samples into at most k groups.
//
// Centroids are seeded by drawing k samples uniformly at random (with
// replacement) from rng, or from a freshly seeded generator when rng is nil.
// Each of the 10 iterations assigns every sample to its nearest centroid by
// Euclidean RGB distance, the first centroid winning ties, and moves every
// non-empty centroid to the rounded mean of its members. A final assignment
// pass produces the member counts; centroids left without members are
// dropped, so the counts of the result always sum to len(samples).
//
// k is capped at len(samples): more seeds than samples can only produce
// duplicates, which end up empty and are dropped.
func KMeans(samples []Sample, k int, rng *rand.Rand) []Centroid {
	if len(samples) == 0 || k < 1 {
		return nil
	}
	k = min(k, len(samples))
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	centers := make([]Sample, k)
	for i := range centers {
		centers[i] = samples[rng.IntN(len(samples))]
	}

	assign := make([]int, len(samples))
	sums := make([][3]int, k)
	counts := make([]int, k)

	for iter := 0; iter < kmeansIterations; iter++ {
		assignNearest(samples, centers, assign)

		for i := range sums {
			sums[i] = [3]int{}
			counts[i] = 0
		}
		for i, s := range samples {
			c := assign[i]
			sums[c][0] += int(s.R)
			sums[c][1] += int(s.G)
			sums[c][2] += int(s.B)
			counts[c]++
		}
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			centers[c] = Sample{
				R: roundDiv(sums[c][0], counts[c]),
				G: roundDiv(sums[c][1], counts[c]),
				B: roundDiv(sums[c][2], counts[c]),
			}
		}
	}

	assignNearest(samples, centers, assign)
	for i := range counts {
		counts[i] = 0
	}
	for _, c := range assign {
		counts[c]++
	}

	result := make([]Centroid, 0, k)
	for c, s := range centers {
		if counts[c] == 0 {
			continue
		}
		result = append(result, Centroid{R: s.R, G: s.G, B: s.B, Count: counts[c]})
	}
	return result
}

// assignNearest stores in assign[i] the index of the centre closest to
// samples[i].
func assignNearest(samples, centers []Sample, assign []int) {
	for i, s := range samples {
		best := 0
		bestDist := distanceSq(s, centers[0])
		for c := 1; c < len(centers); c++ {
			if d := distanceSq(s, centers[c]); d < bestDist {
				best = c
				bestDist = d
			}
		}
		assign[i] = best
	}
}

// distanceSq is the squared Euclidean distance in RGB space.
func distanceSq(a, b Sample) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
