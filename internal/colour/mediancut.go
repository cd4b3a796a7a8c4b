// Package colour provides palette extraction and colour harmony analysis.
package colour

import (
	"context"
	"fmt"
	"sort"
)

// labChannel identifies one axis of Lab space. The ordering doubles as the
// tie-break priority when two channels span the same range.
type labChannel int

const (
	channelL labChannel = iota
	channelA
	channelB
)

func channelValue(s Lab, ch labChannel) float64 {
	switch ch {
	case channelL:
		return s.L
	case channelA:
		return s.A
	default:
		return s.B
	}
}

// MedianCutExtractor implements palette extraction by recursive median
// partitioning: the bucket with the widest channel range is split at its
// median sample until the requested colour count is reached. The
// algorithm is fully deterministic and uses no random source.
type MedianCutExtractor struct{}

// bucket is a working set of samples plus its cached widest channel.
type bucket struct {
	samples []Lab
	channel labChannel
	span    float64
}

// analyse recomputes the bucket's widest channel and its range.
// Ties between channels resolve in L, a, b priority order.
func (b *bucket) analyse() {
	b.span = -1
	for _, ch := range []labChannel{channelL, channelA, channelB} {
		lo := channelValue(b.samples[0], ch)
		hi := lo
		for _, s := range b.samples[1:] {
			v := channelValue(s, ch)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if hi-lo > b.span {
			b.span = hi - lo
			b.channel = ch
		}
	}
}

// Extract reduces the samples to cfg.ColourCount bucket means. Each
// output weight is the bucket's share of the total sample count.
//
// Fallback behaviour matches the other strategies: when fewer distinct
// colours exist than requested, the distinct colours are returned with a
// wrapped ErrInsufficientSamples.
func (e *MedianCutExtractor) Extract(ctx context.Context, samples []Lab, cfg ExtractorConfig) ([]WeightedColour, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInsufficientSamples)
	}

	k := cfg.ColourCount
	distinct := countDistinct(samples)
	if k >= distinct {
		out := distinctColours(samples)
		if k > distinct {
			return out, fmt.Errorf("%w: requested %d, have %d distinct", ErrInsufficientSamples, k, distinct)
		}
		return out, nil
	}

	initial := &bucket{samples: append([]Lab(nil), samples...)}
	initial.analyse()
	buckets := []*bucket{initial}

	for len(buckets) < k {
		// Cooperative cancellation, checked between splits only.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Pick the bucket with the largest range; ties keep the earliest.
		best := -1
		for i, b := range buckets {
			if b.span <= 0 {
				continue
			}
			if best == -1 || b.span > buckets[best].span {
				best = i
			}
		}
		if best == -1 {
			// No bucket has two distinct values left to separate. The
			// distinct-colour guard makes this unreachable, but stopping
			// here simply yields a shorter result.
			break
		}

		left, right := splitAtMedian(buckets[best])
		buckets[best] = left
		buckets = append(buckets, right)
	}

	total := float64(len(samples))
	out := make([]WeightedColour, 0, len(buckets))
	for _, b := range buckets {
		col, _ := ColourFromLab(averageLab(b.samples))
		out = append(out, WeightedColour{
			Colour: col,
			Weight: float64(len(b.samples)) / total,
		})
	}
	return out, nil
}

// splitAtMedian sorts the bucket along its widest channel and splits it at
// the median sample into two non-empty buckets.
func splitAtMedian(b *bucket) (*bucket, *bucket) {
	ch := b.channel
	sort.SliceStable(b.samples, func(i, j int) bool {
		return channelValue(b.samples[i], ch) < channelValue(b.samples[j], ch)
	})

	mid := len(b.samples) / 2
	left := &bucket{samples: b.samples[:mid]}
	right := &bucket{samples: b.samples[mid:]}
	left.analyse()
	right.analyse()
	return left, right
}
