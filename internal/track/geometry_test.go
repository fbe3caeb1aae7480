package track

import (
	"math"
	"testing"
)

func TestSectorAtWraparound(t *testing.T) {
	cfg := Default()

	for _, p := range []float64{0, 0.1, 0.37, 0.5, 0.72, 0.999} {
		base := cfg.SectorAt(p)
		for _, add := range []float64{1, 2, -1, -3, 7} {
			got := cfg.SectorAt(p + add)
			if got != base {
				t.Fatalf("sector at %v+%v = %d, want %d", p, add, got, base)
			}
		}
	}
}

func TestSectorAtNegativeProgress(t *testing.T) {
	cfg := Default()
	if got := cfg.SectorAt(-0.1); got != cfg.SectorAt(0.9) {
		t.Fatalf("negative progress did not wrap: %d", got)
	}
}

func TestSectorsOrdered(t *testing.T) {
	cfg := Default()

	// Sector tags must be non-decreasing along the centerline (the wrap
	// boundary is the final point back at sector 3 → sector 1 at index 0).
	prev := cfg.Points[0].Sector
	for i, pt := range cfg.Points {
		if pt.Sector < prev {
			t.Fatalf("sector decreased at point %d: %d -> %d", i, prev, pt.Sector)
		}
		prev = pt.Sector
	}
	if cfg.Points[0].Sector != 1 {
		t.Fatalf("expected sector 1 at start line")
	}
}

func TestPositionAtInterpolates(t *testing.T) {
	cfg := Default()
	n := float64(len(cfg.Points))

	// Halfway between points 0 and 1 on the start straight.
	pos := cfg.PositionAt(0.5 / n)
	p0, p1 := cfg.Points[0], cfg.Points[1]
	wantX := p0.X + (p1.X-p0.X)*0.5
	wantY := p0.Y + (p1.Y-p0.Y)*0.5
	if math.Abs(pos.X-wantX) > 1e-9 || math.Abs(pos.Y-wantY) > 1e-9 {
		t.Fatalf("position = %+v, want (%v,%v)", pos, wantX, wantY)
	}
}

func TestPositionAtContinuity(t *testing.T) {
	cfg := Default()

	// Adjacent progress samples must stay close: no stepped jumps.
	const step = 0.0005
	prev := cfg.PositionAt(0)
	for p := step; p <= 1.0; p += step {
		cur := cfg.PositionAt(p)
		dist := math.Hypot(cur.X-prev.X, cur.Y-prev.Y)
		if dist > 30 {
			t.Fatalf("discontinuity at progress %v: jump of %v", p, dist)
		}
		prev = cur
	}
}

func TestPositionAtWrapsLap(t *testing.T) {
	cfg := Default()
	a := cfg.PositionAt(0.25)
	b := cfg.PositionAt(1.25)
	if a != b {
		t.Fatalf("position not invariant under lap wrap: %+v vs %+v", a, b)
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default track invalid: %v", err)
	}

	bad := &Config{TotalLengthM: 5000, Sectors: []Sector{{ID: 1}}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for empty point sequence")
	}

	bad = &Config{Points: []Point{{Sector: 1}}, Sectors: []Sector{{ID: 1}}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for non-positive length")
	}

	bad = &Config{Points: []Point{{Sector: 1}}, TotalLengthM: 5000}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for missing sectors")
	}
}
