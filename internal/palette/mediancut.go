package palette

import (
	"slices"
	"sort"
)

// maxMedianCutBuckets caps median-cut output regardless of the requested count.
const maxMedianCutBuckets = 8

// MedianCut splits samples into at most min(count, 8) buckets.
//
// Starting from a single bucket holding every sample, it repeatedly takes
// the largest bucket (the first one on ties), finds the channel with the
// widest value range (R, then G, then B on ties), sorts the bucket by that
// channel and splits it at index len/2. It stops once the target is reached
// or the largest bucket has a single sample left. Each bucket becomes one
// centroid: the rounded mean of its members, weighted by its size.
func MedianCut(samples []Sample, count int) []Centroid {
	if len(samples) == 0 {
		return nil
	}
	target := min(count, maxMedianCutBuckets)
	if target < 1 {
		target = 1
	}

	buckets := [][]Sample{slices.Clone(samples)}
	for len(buckets) < target {
		idx := largestBucket(buckets)
		bucket := buckets[idx]
		if len(bucket) <= 1 {
			break
		}

		ch := widestChannel(bucket)
		sort.SliceStable(bucket, func(i, j int) bool {
			return channel(bucket[i], ch) < channel(bucket[j], ch)
		})
		mid := len(bucket) / 2
		buckets = slices.Replace(buckets, idx, idx+1, bucket[:mid:mid], bucket[mid:])
	}

	result := make([]Centroid, 0, len(buckets))
	for _, b := range buckets {
		m := meanOf(b)
		result = append(result, Centroid{R: m.R, G: m.G, B: m.B, Count: len(b)})
	}
	return result
}

func largestBucket(buckets [][]Sample) int {
	best := 0
	for i := 1; i < len(buckets); i++ {
		if len(buckets[i]) > len(buckets[best]) {
			best = i
		}
	}
	return best
}

// widestChannel returns 0, 1 or 2 for R, G or B.
func widestChannel(bucket []Sample) int {
	lo := [3]uint8{255, 255, 255}
	hi := [3]uint8{0, 0, 0}
	for _, s := range bucket {
		for ch := 0; ch < 3; ch++ {
			v := channel(s, ch)
			lo[ch] = min(lo[ch], v)
			hi[ch] = max(hi[ch], v)
		}
	}
	widest := 0
	for ch := 1; ch < 3; ch++ {
		if hi[ch]-lo[ch] > hi[widest]-lo[widest] {
			widest = ch
		}
	}
	return widest
}

func channel(s Sample, ch int) uint8 {
	switch ch {
	case 0:
		return s.R
	case 1:
		return s.G
	default:
		return s.B
	}
}
