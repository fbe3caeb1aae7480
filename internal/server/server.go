package server

import (
	"log"
	"math/rand"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"backend-racepulse/internal/auth"
	"backend-racepulse/internal/config"
	"backend-racepulse/internal/detection"
	"backend-racepulse/internal/history"
	"backend-racepulse/internal/session"
	"backend-racepulse/internal/stream"
	"backend-racepulse/internal/telemetry"
	"backend-racepulse/internal/track"
	"backend-racepulse/internal/tuning"
	"backend-racepulse/internal/weather"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub

	orchestrator *session.Orchestrator
	history      *history.Store
	tuning       *tuning.Service
	track        *track.Config
}

func NewServer(cfg config.Config, pool *pgxpool.Pool, redisClient *redis.Client) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	trackCfg := track.Default()
	seed := time.Now().UnixNano()

	sim := telemetry.NewSimulator(trackCfg, rand.New(rand.NewSource(seed)), telemetry.Options{
		NumCars: cfg.NumCars,
	})
	engine := detection.NewEngine(detection.Config{
		SlowdownThreshold:      cfg.SlowdownThreshold,
		PitCongestionThreshold: cfg.PitCongestionThreshold,
		AlertCooldown:          cfg.AlertCooldown(),
	})
	weatherGen := weather.NewGenerator(rand.New(rand.NewSource(seed + 1)))

	hub := stream.NewHub(redisClient)

	var store *history.Store
	if pool != nil {
		store = history.NewStore(pool)
	}

	orchestrator, err := session.NewOrchestrator(trackCfg, sim, engine, weatherGen, hub, recorderOrNil(store), session.Options{
		TelemetryTick: cfg.TelemetryTick(),
		WeatherTick:   cfg.WeatherTick(),
		TotalLaps:     cfg.TotalLaps,
	})
	if err != nil {
		return nil, err
	}

	s := &Server{
		App:          app,
		Cfg:          cfg,
		DB:           pool,
		Redis:        redisClient,
		Stream:       hub,
		orchestrator: orchestrator,
		history:      store,
		tuning:       tuning.NewService(redisClient),
		track:        trackCfg,
	}

	registerRoutes(s)
	return s, nil
}

// recorderOrNil avoids handing the orchestrator a typed-nil interface when
// retention is disabled.
func recorderOrNil(store *history.Store) session.Recorder {
	if store == nil {
		return nil
	}
	return store
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "activeSession": s.orchestrator.Info().IsActive})
	})

	api := s.App.Group("/api")

	api.Get("/track", func(c *fiber.Ctx) error {
		return c.JSON(s.track)
	})
	api.Get("/teams", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"teams": track.Teams(), "drivers": track.DriverNames()})
	})

	guard := auth.Guard(s.Cfg.ControlJWTSecret)
	session.RegisterRoutes(api.Group("/session"), s.orchestrator, guard)

	api.Get("/strategy/:carID", s.strategyHandler)

	if s.history != nil {
		history.RegisterRoutes(api, s.history)
	}

	stream.RegisterRoutes(s.App, s.Stream, s.welcomeFrames)
}

// strategyHandler combines the live car state with the tuned degradation
// model into a pit-strategy recommendation.
func (s *Server) strategyHandler(c *fiber.Ctx) error {
	carID := c.Params("carID")

	car, ok := s.orchestrator.CarTelemetry(carID)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown car or no telemetry yet")
	}

	snapshot := s.orchestrator.Snapshot()
	plan := s.tuning.PlanStrategy(snapshot.CurrentLap, snapshot.TotalLaps-snapshot.CurrentLap)
	model := s.tuning.DegradationFor(c.Context(), car.Tire)
	predicted := s.tuning.PredictLapTime(c.Context(), car.Tire, car.TireLaps, car.Fuel)

	return c.JSON(fiber.Map{
		"carId":            car.ID,
		"currentCompound":  car.Tire,
		"tireLaps":         car.TireLaps,
		"degradation":      model,
		"predictedLapTime": predicted,
		"plan":             plan,
	})
}

// welcomeFrames is sent to every websocket client right after the upgrade:
// the current session snapshot and the track layout.
func (s *Server) welcomeFrames() [][]byte {
	var frames [][]byte

	snapshot, err := stream.Encode(stream.TopicSessionUpdate, s.orchestrator.Snapshot())
	if err != nil {
		log.Printf("encode session welcome: %v", err)
	} else {
		frames = append(frames, snapshot)
	}

	trackFrame, err := stream.Encode(stream.TopicTrackConfig, s.track)
	if err != nil {
		log.Printf("encode track welcome: %v", err)
	} else {
		frames = append(frames, trackFrame)
	}

	return frames
}
