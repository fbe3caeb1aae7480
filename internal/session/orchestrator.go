package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"backend-racepulse/internal/detection"
	"backend-racepulse/internal/telemetry"
	"backend-racepulse/internal/track"
	"backend-racepulse/internal/weather"
)

// Publisher is the broadcast sink. Delivery, retry and backpressure are the
// sink's concern; publishing never blocks a tick.
type Publisher interface {
	Publish(topic string, data interface{})
}

// Recorder persists alerts and incidents. Implementations must tolerate
// being called concurrently and absorb their own failures.
type Recorder interface {
	RecordAlert(ctx context.Context, alert detection.Alert)
	RecordIncident(ctx context.Context, incident detection.Incident)
}

// Topic names mirrored here so the orchestrator does not depend on the hub
// implementation.
const (
	topicSessionUpdate   = "session_update"
	topicTelemetryUpdate = "telemetry_update"
	topicWeatherUpdate   = "weather_update"
	topicAlert           = "alert"
	topicIncident        = "incident"
)

// Options tunes the scheduler. Zero values fall back to defaults.
type Options struct {
	TelemetryTick time.Duration
	WeatherTick   time.Duration
	TotalLaps     int
	SessionType   Type
}

func (o Options) withDefaults() Options {
	if o.TelemetryTick <= 0 {
		o.TelemetryTick = 50 * time.Millisecond
	}
	if o.WeatherTick <= 0 {
		o.WeatherTick = 10 * time.Second
	}
	if o.TotalLaps <= 0 {
		o.TotalLaps = 50
	}
	if o.SessionType == "" {
		o.SessionType = TypeRace
	}
	return o
}

// Orchestrator owns the session aggregate, schedules the telemetry and
// weather tasks, and is the sole mutator of shared session state. All state
// writes happen under the mutex; the two periodic tasks therefore never
// interleave partial updates.
type Orchestrator struct {
	mu sync.Mutex

	sim        *telemetry.Simulator
	engine     *detection.Engine
	weatherGen *weather.Generator
	trackCfg   *track.Config
	publisher  Publisher
	recorder   Recorder
	opts       Options

	session  Session
	lastCars []telemetry.CarTelemetry
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewOrchestrator(
	trackCfg *track.Config,
	sim *telemetry.Simulator,
	engine *detection.Engine,
	weatherGen *weather.Generator,
	publisher Publisher,
	recorder Recorder,
	opts Options,
) (*Orchestrator, error) {
	if err := trackCfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		sim:        sim,
		engine:     engine,
		weatherGen: weatherGen,
		trackCfg:   trackCfg,
		publisher:  publisher,
		recorder:   recorder,
		opts:       opts.withDefaults(),
	}

	o.session = Session{
		SessionID:     "session_" + uuid.NewString(),
		SessionType:   o.opts.SessionType,
		TrackConfig:   trackCfg,
		TotalLaps:     o.opts.TotalLaps,
		CurrentLap:    1,
		SessionStatus: StatusNotStarted,
		Weather:       weatherGen.Generate(trackCfg.Sectors),
		Flags:         []RaceFlag{{Type: FlagGreen, Active: true, Timestamp: unix(time.Now())}},
	}

	return o, nil
}

// Start moves the session to in_progress and spawns the periodic tasks.
// Returns false without side effects when the session is already running or
// finished.
func (o *Orchestrator) Start() bool {
	o.mu.Lock()
	switch o.session.SessionStatus {
	case StatusNotStarted, StatusPaused:
	default:
		o.mu.Unlock()
		return false
	}

	o.session.SessionStatus = StatusInProgress

	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel

	o.wg.Add(2)
	go o.telemetryLoop(ctx)
	go o.weatherLoop(ctx)

	snapshot := o.session
	o.mu.Unlock()

	log.Printf("session %s started", snapshot.SessionID)
	o.publisher.Publish(topicSessionUpdate, snapshot)
	return true
}

// Stop pauses an in-progress session and cancels both tasks. Returns false
// without side effects otherwise.
func (o *Orchestrator) Stop() bool {
	o.mu.Lock()
	if o.session.SessionStatus != StatusInProgress {
		o.mu.Unlock()
		return false
	}

	o.session.SessionStatus = StatusPaused
	o.cancelTasksLocked()

	snapshot := o.session
	o.mu.Unlock()

	o.wg.Wait()

	log.Printf("session %s stopped", snapshot.SessionID)
	o.publisher.Publish(topicSessionUpdate, snapshot)
	return true
}

// Reset forces a stop, reinitializes the simulator and detection state, and
// returns the session to not_started. A session that never started is left
// untouched.
func (o *Orchestrator) Reset() bool {
	o.mu.Lock()
	if o.session.SessionStatus == StatusNotStarted {
		o.mu.Unlock()
		return false
	}

	running := o.session.SessionStatus == StatusInProgress
	o.cancelTasksLocked()

	o.sim.Reset()
	o.engine.Reset()
	o.lastCars = nil
	o.session.CurrentLap = 1
	o.session.SessionTime = 0
	o.session.SessionStatus = StatusNotStarted
	o.session.Weather = o.weatherGen.Generate(o.trackCfg.Sectors)
	o.session.Flags = []RaceFlag{{Type: FlagGreen, Active: true, Timestamp: unix(time.Now())}}

	snapshot := o.session
	o.mu.Unlock()

	if running {
		o.wg.Wait()
	}

	log.Printf("session %s reset", snapshot.SessionID)
	o.publisher.Publish(topicSessionUpdate, snapshot)
	return true
}

// Finish marks the session terminally finished. It is driven externally,
// never by the periodic tasks.
func (o *Orchestrator) Finish() bool {
	o.mu.Lock()
	if o.session.SessionStatus == StatusFinished {
		o.mu.Unlock()
		return false
	}

	running := o.session.SessionStatus == StatusInProgress
	o.cancelTasksLocked()
	o.session.SessionStatus = StatusFinished

	snapshot := o.session
	o.mu.Unlock()

	if running {
		o.wg.Wait()
	}

	o.publisher.Publish(topicSessionUpdate, snapshot)
	return true
}

func (o *Orchestrator) cancelTasksLocked() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
}

// Info reports the control-surface summary.
func (o *Orchestrator) Info() Info {
	o.mu.Lock()
	defer o.mu.Unlock()

	simInfo := o.sim.Info()
	return Info{
		CurrentLap:   simInfo.CurrentLap,
		ElapsedTime:  simInfo.SessionTime,
		VehicleCount: simInfo.TotalCars,
		IsActive:     o.session.SessionStatus == StatusInProgress,
	}
}

// Snapshot returns a copy of the session aggregate.
func (o *Orchestrator) Snapshot() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// CarTelemetry returns the most recent telemetry frame for one car. The
// second return is false until the first tick has run or when the car id is
// unknown.
func (o *Orchestrator) CarTelemetry(carID string) (telemetry.CarTelemetry, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, car := range o.lastCars {
		if car.ID == carID {
			return car, true
		}
	}
	return telemetry.CarTelemetry{}, false
}

func (o *Orchestrator) telemetryLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.opts.TelemetryTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.telemetryTick()
		}
	}
}

func (o *Orchestrator) weatherLoop(ctx context.Context) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.opts.WeatherTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.weatherTick()
		}
	}
}

// telemetryTick runs one full simulate/detect/publish cycle. Any panic is
// absorbed so the loop survives to its next schedule.
func (o *Orchestrator) telemetryTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("telemetry tick error: %v", r)
		}
	}()

	o.mu.Lock()
	if o.session.SessionStatus != StatusInProgress {
		o.mu.Unlock()
		return
	}

	cars := o.sim.UpdateTelemetry()
	info := o.sim.Info()
	o.session.CurrentLap = info.CurrentLap
	o.session.SessionTime = float64(info.SessionTime)
	o.lastCars = cars

	alerts, incidents := o.engine.Evaluate(cars, o.session.Weather)
	o.mu.Unlock()

	o.publisher.Publish(topicTelemetryUpdate, cars)

	// Retention is fire-and-forget: the recorder owns its own timeouts and
	// failure handling, a tick never waits on it.
	for _, alert := range alerts {
		o.publisher.Publish(topicAlert, alert)
		if o.recorder != nil {
			go o.recorder.RecordAlert(context.Background(), alert)
		}
	}
	for _, incident := range incidents {
		o.publisher.Publish(topicIncident, incident)
		if o.recorder != nil {
			go o.recorder.RecordIncident(context.Background(), incident)
		}
	}
}

// weatherTick regenerates the weather zones wholesale and publishes them.
func (o *Orchestrator) weatherTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("weather tick error: %v", r)
		}
	}()

	o.mu.Lock()
	if o.session.SessionStatus != StatusInProgress {
		o.mu.Unlock()
		return
	}

	zones := o.weatherGen.Generate(o.trackCfg.Sectors)
	o.session.Weather = zones
	o.mu.Unlock()

	o.publisher.Publish(topicWeatherUpdate, zones)
}

func unix(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}
