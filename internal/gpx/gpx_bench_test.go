package gpx

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// Benchmark incremental metrics with different segment sizes
func BenchmarkAppendPoint(b *testing.B) {
	sizes := []int{1000, 10000, 50000}

	for _, size := range sizes {
		pts := northbound(size, time.Second)
		b.Run(fmt.Sprintf("points_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				seg := NewSegment()
				for _, p := range pts {
					seg.AppendPoint(p)
				}
			}
		})
	}
}

func BenchmarkClosestPoint(b *testing.B) {
	seg := NewSegment(northbound(100000, time.Second)...)
	span := seg.LatestPoint().Time.Sub(seg.EarliestPoint().Time)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		at := t0.Add(time.Duration(i) * time.Second % span)
		if seg.ClosestPoint(at) == nil {
			b.Fatal("no point found")
		}
	}
}

func BenchmarkSmoothLocationByAverage(b *testing.B) {
	pts := northbound(2000, time.Second)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seg := NewSegment(pts...)
		if err := seg.SmoothLocationByAverage(SmoothOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRoundTrip(b *testing.B) {
	f := NewFile([]*Track{NewTrack("bench", NewSegment(northbound(5000, time.Second)...))}, nil, nil)
	var buf strings.Builder
	if err := f.WriteToWriter(&buf); err != nil {
		b.Fatal(err)
	}
	doc := buf.String()

	b.SetBytes(int64(len(doc)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseReader(strings.NewReader(doc)); err != nil {
			b.Fatal(err)
		}
	}
}
