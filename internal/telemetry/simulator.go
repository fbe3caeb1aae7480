package telemetry

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"backend-racepulse/internal/track"
)

const (
	minSpeed       = 50.0
	maxSpeed       = 340.0
	maxSpeedChange = 15.0

	pitEntryProbability = 0.0001
	pitCooldownTicks    = 100

	drsProbability = 0.3
	drsMinSpeed    = 250.0
)

// carState is the mutable per-vehicle kinematic state. It is owned by the
// Simulator and only touched during a tick.
type carState struct {
	id          string
	progress    float64
	speed       float64
	pitCooldown int
	lastUpdate  time.Time
}

// Options tunes the simulator. Zero values fall back to defaults.
type Options struct {
	NumCars        int
	FuelBurnPerLap float64 // fuel % consumed per lap
	TireAgeWindow  int     // laps before tire age wraps
}

func (o Options) withDefaults() Options {
	if o.NumCars <= 0 {
		o.NumCars = 20
	}
	if o.FuelBurnPerLap <= 0 {
		o.FuelBurnPerLap = 1.5
	}
	if o.TireAgeWindow <= 0 {
		o.TireAgeWindow = 20
	}
	return o
}

// Simulator advances per-vehicle kinematic state along the circuit and
// derives telemetry snapshots. All randomness flows through the injected
// source so runs are reproducible under a fixed seed.
type Simulator struct {
	track *track.Config
	rng   *rand.Rand
	opts  Options
	now   func() time.Time

	cars  map[string]*carState
	order []string

	currentLap   int
	sessionStart time.Time
}

func NewSimulator(trackCfg *track.Config, rng *rand.Rand, opts Options) *Simulator {
	s := &Simulator{
		track: trackCfg,
		rng:   rng,
		opts:  opts.withDefaults(),
		now:   time.Now,
	}
	s.initCars()
	return s
}

func (s *Simulator) initCars() {
	s.cars = make(map[string]*carState, s.opts.NumCars)
	s.order = make([]string, 0, s.opts.NumCars)
	s.currentLap = 1
	s.sessionStart = s.now()

	for i := 0; i < s.opts.NumCars; i++ {
		id := fmt.Sprintf("CAR_%d", i+1)
		s.cars[id] = &carState{
			id:         id,
			progress:   -0.002 * float64(i), // staggered grid
			speed:      80 + s.rng.Float64()*20,
			lastUpdate: s.now(),
		}
		s.order = append(s.order, id)
	}
}

// targetSpeed picks the sector speed profile for the car's position. Each
// sector contributes an independent 0-1 phase.
func (s *Simulator) targetSpeed(progress float64) float64 {
	sector := s.track.SectorAt(progress)
	phase := math.Mod(wrap(progress), 1.0/3) * 3

	switch sector {
	case 1:
		// Long straight, then hard braking.
		if phase < 0.4 {
			return 320
		}
		return 180 - phase*200
	case 2:
		// Technical section with medium speed corners.
		return 220 + math.Sin(phase*math.Pi*4)*50
	default:
		// Slow chicane and acceleration zone.
		return 160 + phase*140
	}
}

func (s *Simulator) nextSpeed(progress, current float64) float64 {
	target := s.targetSpeed(progress)
	target += (s.rng.Float64() - 0.5) * 20

	change := clamp(target-current, -maxSpeedChange, maxSpeedChange)
	return clamp(current+change, minSpeed, maxSpeed)
}

// UpdateTelemetry runs one simulation tick over every car and returns the
// snapshots in grid order.
func (s *Simulator) UpdateTelemetry() []CarTelemetry {
	now := s.now()
	out := make([]CarTelemetry, 0, len(s.order))

	for i, id := range s.order {
		car := s.cars[id]

		dt := now.Sub(car.lastUpdate).Seconds()
		car.lastUpdate = now

		car.speed = s.nextSpeed(car.progress, car.speed)

		car.progress += (car.speed / 3.6) * dt / s.track.TotalLengthM
		if car.progress >= 1 {
			car.progress -= 1
			// Shared lap counter: any car completing a lap advances the
			// session lap.
			s.currentLap++
		}

		inPit := car.pitCooldown > 0
		if inPit {
			car.pitCooldown--
		} else if s.rng.Float64() < pitEntryProbability {
			car.pitCooldown = pitCooldownTicks
		}

		drsAvailable := s.rng.Float64() < drsProbability

		teams := track.Teams()
		drivers := track.DriverNames()

		out = append(out, CarTelemetry{
			ID:           id,
			DriverName:   drivers[i%len(drivers)],
			TeamID:       teams[i%len(teams)].ID,
			Position:     s.track.PositionAt(car.progress),
			Speed:        math.Round(car.speed),
			Tire:         compoundForLap(s.currentLap),
			TireLaps:     s.currentLap % s.opts.TireAgeWindow,
			Fuel:         math.Max(10, 100-float64(s.currentLap)*s.opts.FuelBurnPerLap),
			LapTime:      math.Round(80000 + s.rng.Float64()*15000),
			CurrentLap:   s.currentLap,
			Sector:       s.track.SectorAt(car.progress),
			InPit:        inPit,
			DRSEnabled:   drsAvailable && car.speed > drsMinSpeed,
			DRSAvailable: drsAvailable,
			Timestamp:    float64(now.UnixNano()) / 1e9,
		})
	}

	return out
}

// Info reports the aggregate session counters.
func (s *Simulator) Info() SessionInfo {
	return SessionInfo{
		CurrentLap:  s.currentLap,
		SessionTime: int64(s.now().Sub(s.sessionStart).Seconds()),
		TotalCars:   len(s.cars),
	}
}

// Reset returns every car to the grid and rewinds the session counters.
func (s *Simulator) Reset() {
	s.initCars()
}

func compoundForLap(lap int) TireCompound {
	switch {
	case lap < 15:
		return TireSoft
	case lap < 35:
		return TireMedium
	default:
		return TireHard
	}
}

func wrap(progress float64) float64 {
	p := math.Mod(progress, 1)
	if p < 0 {
		p += 1
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
