package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.0},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistribution(t *testing.T) {
	values := []float64{10, 2, 8, 4, 6}
	d := ComputeDistribution(values)

	if math.Abs(d.Mean-6) > 0.001 {
		t.Errorf("mean = %v, want 6", d.Mean)
	}
	// Population std of {2,4,6,8,10} is sqrt(8).
	if math.Abs(d.Std-math.Sqrt(8)) > 0.001 {
		t.Errorf("std = %v, want %v", d.Std, math.Sqrt(8))
	}
	if d.P50 != 6 {
		t.Errorf("p50 = %v, want 6", d.P50)
	}
	if d.P90 < d.P50 || d.P10 > d.P50 {
		t.Errorf("percentiles out of order: %+v", d)
	}

	// Input must not be reordered.
	if values[0] != 10 {
		t.Error("ComputeDistribution sorted its input in place")
	}
}

func TestComputeDistributionEmpty(t *testing.T) {
	if d := ComputeDistribution(nil); d != (Distribution{}) {
		t.Errorf("empty input = %+v, want zero", d)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(5, "run-1")

	if c.ShouldFlush(4.9) {
		t.Fatal("flush before window end")
	}
	if !c.ShouldFlush(5.0) {
		t.Fatal("no flush at window end")
	}

	c.RecordStartle()
	c.RecordStartle()
	c.RecordSeedsDropped(12)
	c.RecordSeedEaten()
	c.RecordCoopArrival()

	snap := Snapshot{Agents: 3, Seeds: 11, Speeds: []float64{10, 20, 30}}
	snap.Directives[2] = 1
	stats := c.Flush(300, 5.0, snap)

	if stats.RunID != "run-1" {
		t.Errorf("run id = %q", stats.RunID)
	}
	if stats.Startles != 2 || stats.SeedsDropped != 12 || stats.SeedsEaten != 1 || stats.CoopArrivals != 1 {
		t.Errorf("event counts wrong: %+v", stats)
	}
	if stats.Panicking != 1 {
		t.Errorf("panicking = %d, want 1", stats.Panicking)
	}
	if math.Abs(stats.SpeedMean-20) > 1e-9 {
		t.Errorf("speed mean = %v, want 20", stats.SpeedMean)
	}

	// Counters reset and the next window starts at the flush time.
	if c.ShouldFlush(9.9) {
		t.Error("flush before second window end")
	}
	next := c.Flush(600, 10.0, Snapshot{})
	if next.Startles != 0 || next.SeedsDropped != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
	if next.WindowStartTick != 300 {
		t.Errorf("window start = %d, want 300", next.WindowStartTick)
	}
}
