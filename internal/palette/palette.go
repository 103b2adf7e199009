// Package palette extracts representative colours from a set of RGB samples.
//
// Two clustering strategies are available: k-means, which refines randomly
// seeded centroids for a fixed number of iterations, and median-cut, which
// recursively splits the most populous bucket along its widest channel. The
// "octree" method name is accepted and runs k-means.
//
// K-means seeding is random. Pass Options.Rand to make a run reproducible;
// without it every call draws a fresh seed and results may differ between
// runs on identical input.
package palette

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

var (
	// ErrEmptySampleSet is returned when there is nothing to cluster.
	ErrEmptySampleSet = errors.New("empty sample set")

	// ErrUnknownMethod is returned for a clustering method this package does
	// not implement.
	ErrUnknownMethod = errors.New("unknown palette method")

	// ErrUnknownFormat is returned for an unsupported colour format.
	ErrUnknownFormat = errors.New("unknown color format")
)

// Method selects the clustering strategy.
type Method string

const (
	MethodKMeans    Method = "kmeans"
	MethodMedianCut Method = "median-cut"
	// MethodOctree is an alias of MethodKMeans.
	MethodOctree Method = "octree"
)

// Defaults applied by Extract to zero-valued Options fields.
const (
	DefaultCount  = 10
	DefaultMethod = MethodKMeans
	DefaultFormat = FormatHex
)

// Sample is one RGB colour drawn from an image. Alpha is not considered.
type Sample struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Centroid is a cluster representative together with its member count.
type Centroid struct {
	R     uint8
	G     uint8
	B     uint8
	Count int
}

func (c Centroid) sample() Sample {
	return Sample{R: c.R, G: c.G, B: c.B}
}

// Swatch is one entry of an extracted palette.
type Swatch struct {
	Color      string  `json:"color"`      // formatted per Options.Format
	Percentage float64 `json:"percentage"` // share of the input samples, 0-100
	RGB        Sample  `json:"rgb"`
	Count      int     `json:"count"`
}

// Options controls Extract. The zero value selects 10 colours, k-means and
// hex output.
type Options struct {
	Count  int
	Method Method
	Format Format

	// Rand drives k-means seeding. Nil means a freshly seeded generator.
	Rand *rand.Rand
}

func (o Options) withDefaults() Options {
	if o.Count <= 0 {
		o.Count = DefaultCount
	}
	if o.Method == "" {
		o.Method = DefaultMethod
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	return o
}

// Samples collects the RGB part of every pixel in buf.
func Samples(buf *pixel.Buffer) []Sample {
	out := make([]Sample, 0, buf.Width*buf.Height)
	for i := 0; i+2 < len(buf.Pix); i += pixel.Channels {
		out = append(out, Sample{R: buf.Pix[i], G: buf.Pix[i+1], B: buf.Pix[i+2]})
	}
	return out
}

// Extract clusters samples and returns the palette sorted by descending
// percentage. Each percentage is the cluster's member count divided by
// len(samples), times 100.
//
// Returns ErrEmptySampleSet for an empty input, ErrUnknownMethod or
// ErrUnknownFormat for unsupported option values.
func Extract(samples []Sample, opts Options) ([]Swatch, error) {
	opts = opts.withDefaults()
	if len(samples) == 0 {
		return nil, ErrEmptySampleSet
	}
	if !opts.Format.valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}

	var centroids []Centroid
	switch opts.Method {
	case MethodKMeans, MethodOctree:
		centroids = KMeans(samples, opts.Count, opts.Rand)
	case MethodMedianCut:
		centroids = MedianCut(samples, opts.Count)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, opts.Method)
	}

	total := float64(len(samples))
	swatches := make([]Swatch, 0, len(centroids))
	for _, c := range centroids {
		s := c.sample()
		formatted, err := FormatColor(s, opts.Format)
		if err != nil {
			return nil, err
		}
		swatches = append(swatches, Swatch{
			Color:      formatted,
			Percentage: float64(c.Count) / total * 100,
			RGB:        s,
			Count:      c.Count,
		})
	}

	sort.SliceStable(swatches, func(i, j int) bool {
		return swatches[i].Percentage > swatches[j].Percentage
	})
	return swatches, nil
}

// meanOf returns the channel-wise rounded mean of samples.
// samples must not be empty.
func meanOf(samples []Sample) Sample {
	var r, g, b int
	for _, s := range samples {
		r += int(s.R)
		g += int(s.G)
		b += int(s.B)
	}
	n := len(samples)
	return Sample{R: roundDiv(r, n), G: roundDiv(g, n), B: roundDiv(b, n)}
}

// roundDiv is sum/n rounded half up, for non-negative sums.
func roundDiv(sum, n int) uint8 {
	return uint8((2*sum + n) / (2 * n))
}
