package display

import (
	"fmt"

	"github.com/dgraph-io/ristretto/z"
	"github.com/dustin/go-humanize"
)

// Stats accumulates throughput counters and the distribution of queue
// depth observed at every snapshot. Owned by a single DisplayActor.
type Stats struct {
	Produced int64
	Consumed int64
	Evicted  int64
	depth    *z.HistogramData
}

// NewStats sizes the depth histogram for queues up to capacity items.
func NewStats(capacity int) *Stats {
	return &Stats{depth: z.NewHistogramData(depthBounds(capacity))}
}

// depthBounds returns bucket bounds 1, 2, 4, ... covering capacity.
func depthBounds(capacity int) []float64 {
	exp := uint32(0)
	for (1 << exp) < capacity {
		exp++
	}
	return z.HistogramBounds(0, exp)
}

func (s *Stats) RecordDepth(depth int) { s.depth.Update(int64(depth)) }

// StatsSummary is an immutable copy of Stats for rendering.
type StatsSummary struct {
	Produced  int64
	Consumed  int64
	Evicted   int64
	Samples   int64
	MinDepth  int64
	MaxDepth  int64
	MeanDepth float64
}

func (s *Stats) Summary() StatsSummary {
	sum := StatsSummary{
		Produced: s.Produced,
		Consumed: s.Consumed,
		Evicted:  s.Evicted,
		Samples:  s.depth.Count,
		MaxDepth: s.depth.Max,
	}
	if s.depth.Count > 0 {
		sum.MinDepth = s.depth.Min
		sum.MeanDepth = float64(s.depth.Sum) / float64(s.depth.Count)
	}
	return sum
}

// String renders the counters for the status line.
func (s StatsSummary) String() string {
	return fmt.Sprintf("produced %s  consumed %s  evicted %s  depth avg %.1f max %d",
		humanize.Comma(s.Produced),
		humanize.Comma(s.Consumed),
		humanize.Comma(s.Evicted),
		s.MeanDepth,
		s.MaxDepth,
	)
}
