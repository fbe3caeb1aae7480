package tuning

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"backend-racepulse/internal/telemetry"
)

// DegradationModel describes how a compound falls off with age.
type DegradationModel struct {
	Compound          telemetry.TireCompound `json:"compound"`
	DegradationPerLap float64                `json:"degradationPerLap"`
	OptimalLife       int                    `json:"optimalLife"`
	CliffLap          int                    `json:"cliffLap"`
}

// PitWindow is a lap range in which a stop is recommended.
type PitWindow struct {
	LapStart int `json:"lapStart"`
	LapEnd   int `json:"lapEnd"`
}

// StrategyPlan is a pit-strategy recommendation.
type StrategyPlan struct {
	RecommendedStops int                      `json:"recommendedStops"`
	PitWindows       []PitWindow              `json:"pitWindows"`
	CompoundSequence []telemetry.TireCompound `json:"compoundSequence"`
	Confidence       float64                  `json:"confidence"`
}

// Service supplies historically derived coefficients. Models are cached in
// redis when available; without redis, or on any cache failure, the
// built-in defaults apply so callers never see an error from this layer.
type Service struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewService(redisClient *redis.Client) *Service {
	return &Service{redis: redisClient, ttl: time.Hour}
}

// DegradationFor returns the tuned model for a compound, falling back to
// the default model when nothing tuned is cached.
func (s *Service) DegradationFor(ctx context.Context, compound telemetry.TireCompound) DegradationModel {
	if s.redis != nil {
		raw, err := s.redis.Get(ctx, degradationKey(compound)).Result()
		if err == nil {
			var model DegradationModel
			if err := json.Unmarshal([]byte(raw), &model); err == nil {
				return model
			}
			log.Printf("tuning: bad cached model for %s", compound)
		}
	}
	return defaultDegradationModel(compound)
}

// StoreDegradation caches a tuned model. Failures are logged and absorbed.
func (s *Service) StoreDegradation(ctx context.Context, model DegradationModel) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(model)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, degradationKey(model.Compound), raw, s.ttl).Err(); err != nil {
		log.Printf("tuning: cache model: %v", err)
	}
}

// PredictLapTime estimates a lap time in seconds from compound, tire age
// and remaining fuel percentage.
func (s *Service) PredictLapTime(ctx context.Context, compound telemetry.TireCompound, tireAge int, fuel float64) float64 {
	model := s.DegradationFor(ctx, compound)

	const baseLapTime = 90.0
	degradation := float64(tireAge) * model.DegradationPerLap
	fuelEffect := (100 - fuel) * 0.03 // lighter car, quicker lap

	return baseLapTime + degradation - fuelEffect
}

// PlanStrategy recommends pit windows over the remaining laps.
func (s *Service) PlanStrategy(currentLap, lapsRemaining int) StrategyPlan {
	if lapsRemaining <= 0 {
		return StrategyPlan{
			RecommendedStops: 0,
			CompoundSequence: []telemetry.TireCompound{telemetry.TireHard},
			Confidence:       0.5,
		}
	}

	window1 := lapsRemaining / 3
	window2 := lapsRemaining * 2 / 3

	return StrategyPlan{
		RecommendedStops: 2,
		PitWindows: []PitWindow{
			{LapStart: currentLap + window1 - 2, LapEnd: currentLap + window1 + 2},
			{LapStart: currentLap + window2 - 2, LapEnd: currentLap + window2 + 2},
		},
		CompoundSequence: []telemetry.TireCompound{telemetry.TireMedium, telemetry.TireHard},
		Confidence:       0.75,
	}
}

func defaultDegradationModel(compound telemetry.TireCompound) DegradationModel {
	model := DegradationModel{
		Compound:          compound,
		DegradationPerLap: 0.05,
		OptimalLife:       20,
		CliffLap:          15,
	}
	switch compound {
	case telemetry.TireSoft:
		model.DegradationPerLap = 0.08
		model.OptimalLife = 15
		model.CliffLap = 12
	case telemetry.TireHard:
		model.DegradationPerLap = 0.03
		model.OptimalLife = 30
		model.CliffLap = 25
	}
	return model
}

func degradationKey(compound telemetry.TireCompound) string {
	return fmt.Sprintf("tuning:degradation:%s", compound)
}
