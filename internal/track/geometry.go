package track

import (
	"errors"
	"math"
)

// wrap normalizes progress into [0,1). Negative values wrap from the top.
func wrap(progress float64) float64 {
	p := math.Mod(progress, 1)
	if p < 0 {
		p += 1
	}
	return p
}

// PositionAt converts track progress to x,y coordinates, interpolating
// between centerline points so motion stays continuous.
func (c *Config) PositionAt(progress float64) Position {
	p := wrap(progress)
	n := len(c.Points)

	idx := int(p * float64(n))
	if idx >= n {
		idx = n - 1
	}
	next := (idx + 1) % n

	point := c.Points[idx]
	nextPoint := c.Points[next]

	local := math.Mod(p*float64(n), 1)

	return Position{
		X: point.X + (nextPoint.X-point.X)*local,
		Y: point.Y + (nextPoint.Y-point.Y)*local,
	}
}

// SectorAt returns the sector id at the given track progress.
func (c *Config) SectorAt(progress float64) int {
	p := wrap(progress)

	idx := int(p * float64(len(c.Points)))
	if idx >= 0 && idx < len(c.Points) {
		return c.Points[idx].Sector
	}
	return 1
}

// Validate rejects circuit configurations the simulator cannot run on.
func (c *Config) Validate() error {
	if len(c.Points) == 0 {
		return errors.New("track: empty point sequence")
	}
	if c.TotalLengthM <= 0 {
		return errors.New("track: total length must be positive")
	}
	if len(c.Sectors) == 0 {
		return errors.New("track: at least one sector required")
	}
	return nil
}
