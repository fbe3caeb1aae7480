package session

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"backend-racepulse/internal/detection"
	"backend-racepulse/internal/telemetry"
	"backend-racepulse/internal/track"
	"backend-racepulse/internal/weather"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

type publishedMessage struct {
	topic string
	data  interface{}
}

func (p *fakePublisher) Publish(topic string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, publishedMessage{topic: topic, data: data})
}

func (p *fakePublisher) byTopic(topic string) []publishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedMessage
	for _, m := range p.messages {
		if m.topic == topic {
			out = append(out, m)
		}
	}
	return out
}

type fakeRecorder struct {
	mu        sync.Mutex
	alerts    int
	incidents int
}

func (r *fakeRecorder) RecordAlert(ctx context.Context, alert detection.Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts++
}

func (r *fakeRecorder) RecordIncident(ctx context.Context, incident detection.Incident) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.incidents++
}

func newTestOrchestrator(t *testing.T, pub Publisher, rec Recorder, opts Options) *Orchestrator {
	t.Helper()

	trackCfg := track.Default()
	sim := telemetry.NewSimulator(trackCfg, rand.New(rand.NewSource(1)), telemetry.Options{NumCars: 3})
	engine := detection.NewEngine(detection.Config{})
	gen := weather.NewGenerator(rand.New(rand.NewSource(2)))

	o, err := NewOrchestrator(trackCfg, sim, engine, gen, pub, rec, opts)
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}
	return o
}

func TestNewOrchestratorRejectsInvalidTrack(t *testing.T) {
	sim := telemetry.NewSimulator(track.Default(), rand.New(rand.NewSource(1)), telemetry.Options{})
	engine := detection.NewEngine(detection.Config{})
	gen := weather.NewGenerator(rand.New(rand.NewSource(2)))

	_, err := NewOrchestrator(&track.Config{}, sim, engine, gen, &fakePublisher{}, nil, Options{})
	if err == nil {
		t.Fatalf("expected validation error for empty track")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, nil, Options{TelemetryTick: 5 * time.Millisecond, WeatherTick: time.Hour})

	if o.Snapshot().SessionStatus != StatusNotStarted {
		t.Fatalf("expected not_started")
	}

	if !o.Start() {
		t.Fatalf("start failed")
	}
	if o.Start() {
		t.Fatalf("second start should be a no-op")
	}
	if o.Snapshot().SessionStatus != StatusInProgress {
		t.Fatalf("expected in_progress")
	}

	time.Sleep(50 * time.Millisecond)

	if !o.Stop() {
		t.Fatalf("stop failed")
	}
	if o.Stop() {
		t.Fatalf("second stop should be a no-op")
	}
	if o.Snapshot().SessionStatus != StatusPaused {
		t.Fatalf("expected paused")
	}

	// Exactly one transition per successful call, none for the no-ops.
	updates := pub.byTopic(topicSessionUpdate)
	if len(updates) != 2 {
		t.Fatalf("expected 2 session updates, got %d", len(updates))
	}

	if len(pub.byTopic(topicTelemetryUpdate)) == 0 {
		t.Fatalf("expected telemetry publishes while running")
	}
}

func TestStopHaltsPublishing(t *testing.T) {
	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, nil, Options{TelemetryTick: 5 * time.Millisecond, WeatherTick: time.Hour})

	o.Start()
	time.Sleep(30 * time.Millisecond)
	o.Stop()

	before := len(pub.byTopic(topicTelemetryUpdate))
	time.Sleep(30 * time.Millisecond)
	after := len(pub.byTopic(topicTelemetryUpdate))

	if after != before {
		t.Fatalf("telemetry still publishing after stop: %d -> %d", before, after)
	}
}

func TestRestartResumes(t *testing.T) {
	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, nil, Options{TelemetryTick: 5 * time.Millisecond, WeatherTick: time.Hour})

	o.Start()
	time.Sleep(20 * time.Millisecond)
	o.Stop()

	stopped := len(pub.byTopic(topicTelemetryUpdate))

	if !o.Start() {
		t.Fatalf("restart from paused failed")
	}
	time.Sleep(30 * time.Millisecond)
	o.Stop()

	if len(pub.byTopic(topicTelemetryUpdate)) <= stopped {
		t.Fatalf("telemetry did not resume after restart")
	}

	if len(pub.byTopic(topicSessionUpdate)) != 4 {
		t.Fatalf("expected 4 lifecycle transitions, got %d", len(pub.byTopic(topicSessionUpdate)))
	}
}

func TestResetFromNotStartedIsNoOp(t *testing.T) {
	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, nil, Options{})

	if o.Reset() {
		t.Fatalf("reset before start should be a no-op")
	}
	if len(pub.byTopic(topicSessionUpdate)) != 0 {
		t.Fatalf("no-op reset published a transition")
	}
}

func TestResetReturnsToNotStarted(t *testing.T) {
	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, nil, Options{TelemetryTick: 5 * time.Millisecond, WeatherTick: time.Hour})

	o.Start()
	time.Sleep(30 * time.Millisecond)

	if !o.Reset() {
		t.Fatalf("reset failed")
	}

	snap := o.Snapshot()
	if snap.SessionStatus != StatusNotStarted {
		t.Fatalf("status after reset = %s", snap.SessionStatus)
	}
	if snap.CurrentLap != 1 || snap.SessionTime != 0 {
		t.Fatalf("counters not rewound: lap=%d time=%v", snap.CurrentLap, snap.SessionTime)
	}

	info := o.Info()
	if info.IsActive {
		t.Fatalf("session active after reset")
	}
}

func TestWeatherTickPublishes(t *testing.T) {
	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, nil, Options{TelemetryTick: time.Hour, WeatherTick: 5 * time.Millisecond})

	o.Start()
	time.Sleep(40 * time.Millisecond)
	o.Stop()

	updates := pub.byTopic(topicWeatherUpdate)
	if len(updates) == 0 {
		t.Fatalf("expected weather updates")
	}
	zones, ok := updates[0].data.([]weather.Zone)
	if !ok || len(zones) != 3 {
		t.Fatalf("unexpected weather payload: %+v", updates[0].data)
	}
	if snap := o.Snapshot(); len(snap.Weather) != 3 {
		t.Fatalf("session weather not updated")
	}
}

func TestRecorderReceivesAlerts(t *testing.T) {
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	o := newTestOrchestrator(t, pub, rec, Options{TelemetryTick: time.Hour, WeatherTick: time.Hour})

	o.Start()
	defer o.Stop()

	// Force adverse weather so the detection pass produces alerts on the
	// next tick.
	o.mu.Lock()
	o.session.Weather = []weather.Zone{{SectorID: 1, Condition: weather.HeavyRain, GripLevel: 30}}
	o.mu.Unlock()

	o.telemetryTick()
	time.Sleep(50 * time.Millisecond)

	rec.mu.Lock()
	recorded := rec.alerts
	rec.mu.Unlock()
	if recorded == 0 {
		t.Fatalf("recorder never received the weather alerts")
	}

	if len(pub.byTopic(topicAlert)) == 0 {
		t.Fatalf("alerts not published")
	}
}

func TestTickPanicDoesNotKillLoop(t *testing.T) {
	pub := &panicOncePublisher{}
	o := newTestOrchestrator(t, pub, nil, Options{TelemetryTick: 5 * time.Millisecond, WeatherTick: time.Hour})

	o.Start()
	time.Sleep(60 * time.Millisecond)
	o.Stop()

	if pub.count() < 3 {
		t.Fatalf("loop died after publisher panic: %d publishes", pub.count())
	}
}

type panicOncePublisher struct {
	mu       sync.Mutex
	panicked bool
	n        int
}

func (p *panicOncePublisher) Publish(topic string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	if !p.panicked && topic == topicTelemetryUpdate {
		p.panicked = true
		panic("publisher failure")
	}
}

func (p *panicOncePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}

func TestInfoReportsVehicleCount(t *testing.T) {
	o := newTestOrchestrator(t, &fakePublisher{}, nil, Options{})

	info := o.Info()
	if info.VehicleCount != 3 {
		t.Fatalf("vehicle count = %d", info.VehicleCount)
	}
	if info.CurrentLap != 1 {
		t.Fatalf("current lap = %d", info.CurrentLap)
	}
	if info.IsActive {
		t.Fatalf("inactive session reported active")
	}
}

func TestFinishIsTerminal(t *testing.T) {
	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, nil, Options{TelemetryTick: 5 * time.Millisecond, WeatherTick: time.Hour})

	o.Start()
	if !o.Finish() {
		t.Fatalf("finish failed")
	}
	if o.Finish() {
		t.Fatalf("double finish should be a no-op")
	}
	if o.Start() {
		t.Fatalf("start after finish should be a no-op")
	}
	if o.Snapshot().SessionStatus != StatusFinished {
		t.Fatalf("expected finished status")
	}
}

func TestCarTelemetryLookup(t *testing.T) {
	pub := &fakePublisher{}
	o := newTestOrchestrator(t, pub, nil, Options{TelemetryTick: time.Hour, WeatherTick: time.Hour})

	if _, ok := o.CarTelemetry("CAR_1"); ok {
		t.Fatalf("expected no telemetry before the first tick")
	}

	o.mu.Lock()
	o.session.SessionStatus = StatusInProgress
	o.mu.Unlock()
	o.telemetryTick()

	car, ok := o.CarTelemetry("CAR_1")
	if !ok {
		t.Fatalf("expected telemetry for CAR_1 after a tick")
	}
	if car.ID != "CAR_1" || car.Speed <= 0 {
		t.Fatalf("unexpected frame: %+v", car)
	}

	if _, ok := o.CarTelemetry("CAR_99"); ok {
		t.Fatalf("unknown car should not resolve")
	}

	if !o.Reset() {
		t.Fatalf("reset failed")
	}
	if _, ok := o.CarTelemetry("CAR_1"); ok {
		t.Fatalf("reset should clear telemetry")
	}
}
