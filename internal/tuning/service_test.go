package tuning

import (
	"context"
	"math"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"backend-racepulse/internal/telemetry"
)

func TestDegradationDefaultsWithoutRedis(t *testing.T) {
	svc := NewService(nil)

	model := svc.DegradationFor(context.Background(), telemetry.TireMedium)
	if model.DegradationPerLap != 0.05 || model.OptimalLife != 20 {
		t.Fatalf("unexpected default model: %+v", model)
	}

	soft := svc.DegradationFor(context.Background(), telemetry.TireSoft)
	hard := svc.DegradationFor(context.Background(), telemetry.TireHard)
	if soft.DegradationPerLap <= hard.DegradationPerLap {
		t.Fatalf("soft should degrade faster than hard")
	}
}

func TestDegradationRoundTripThroughCache(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	svc := NewService(rdb)
	ctx := context.Background()

	tuned := DegradationModel{
		Compound:          telemetry.TireSoft,
		DegradationPerLap: 0.11,
		OptimalLife:       13,
		CliffLap:          10,
	}
	svc.StoreDegradation(ctx, tuned)

	got := svc.DegradationFor(ctx, telemetry.TireSoft)
	if got != tuned {
		t.Fatalf("cache round trip: got %+v", got)
	}
}

func TestDegradationFallsBackOnCacheMiss(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rdb.Close()

	svc := NewService(rdb)
	model := svc.DegradationFor(context.Background(), telemetry.TireHard)
	if model.DegradationPerLap != 0.03 {
		t.Fatalf("expected default hard model, got %+v", model)
	}
}

func TestDegradationFallsBackOnRedisDown(t *testing.T) {
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	s.Close()
	defer rdb.Close()

	svc := NewService(rdb)
	model := svc.DegradationFor(context.Background(), telemetry.TireMedium)
	if model.DegradationPerLap != 0.05 {
		t.Fatalf("expected default model when redis is down, got %+v", model)
	}
	// Writes must also absorb the failure.
	svc.StoreDegradation(context.Background(), model)
}

func TestPredictLapTime(t *testing.T) {
	svc := NewService(nil)
	ctx := context.Background()

	fresh := svc.PredictLapTime(ctx, telemetry.TireMedium, 0, 100)
	if fresh != 90 {
		t.Fatalf("fresh tires full tank = %v, want 90", fresh)
	}

	aged := svc.PredictLapTime(ctx, telemetry.TireMedium, 10, 100)
	if math.Abs(aged-90.5) > 1e-9 {
		t.Fatalf("aged prediction = %v, want 90.5", aged)
	}

	light := svc.PredictLapTime(ctx, telemetry.TireMedium, 0, 40)
	if light >= fresh {
		t.Fatalf("lighter car should be faster: %v vs %v", light, fresh)
	}
}

func TestPlanStrategy(t *testing.T) {
	svc := NewService(nil)

	plan := svc.PlanStrategy(10, 30)
	if plan.RecommendedStops != 2 || len(plan.PitWindows) != 2 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if plan.PitWindows[0].LapStart != 18 || plan.PitWindows[0].LapEnd != 22 {
		t.Fatalf("first window: %+v", plan.PitWindows[0])
	}
	if plan.PitWindows[1].LapStart >= plan.PitWindows[1].LapEnd {
		t.Fatalf("second window inverted: %+v", plan.PitWindows[1])
	}

	done := svc.PlanStrategy(50, 0)
	if done.RecommendedStops != 0 {
		t.Fatalf("expected no stops at race end: %+v", done)
	}
}
