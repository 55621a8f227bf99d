package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fleetsight/compressor-telemetry/internal/engine"
	"github.com/fleetsight/compressor-telemetry/internal/events"
	"github.com/fleetsight/compressor-telemetry/internal/logger"
	"github.com/fleetsight/compressor-telemetry/internal/sink"
	"github.com/fleetsight/compressor-telemetry/pkg/config"
	"github.com/fleetsight/compressor-telemetry/pkg/database"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

var ErrUnitNotFound = errors.New("unit not found")

// Orchestrator drives the generator: one loop evaluates the fleet each tick,
// refreshes the in-memory read cache, publishes events and pushes the batch
// to the sink. Read traffic never touches the engine or the sink.
type Orchestrator struct {
	config    *config.Config
	engine    *engine.Engine
	sink      sink.Sink
	eventBus  *events.EventBus
	publisher *events.Publisher

	// eventLogger is nil when no database is attached (offline runs).
	eventLogger *events.EventLogger

	cacheMu sync.RWMutex
	latest  []models.OutputRecord
	byID    map[string]models.OutputRecord

	prev         map[string]models.OutputRecord
	lastSnapshot time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func New(cfg *config.Config, eng *engine.Engine, s sink.Sink, db *database.DB) *Orchestrator {
	eventBus := events.NewEventBus(cfg.Events.BufferSize)

	var eventLogger *events.EventLogger
	if db != nil {
		// Subscribe event logger to all events
		allEvents := eventBus.SubscribeAll()
		eventLogger = events.NewEventLogger(db, allEvents)
	}

	return &Orchestrator{
		config:      cfg,
		engine:      eng,
		sink:        s,
		eventBus:    eventBus,
		publisher:   events.NewPublisher(eventBus),
		eventLogger: eventLogger,
		byID:        make(map[string]models.OutputRecord),
		prev:        make(map[string]models.OutputRecord),
	}
}

func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.running {
		return nil
	}
	o.running = true
	o.ctx, o.cancel = context.WithCancel(context.Background())

	logger.Info("Orchestrator starting")

	if o.eventLogger != nil {
		o.eventLogger.Start()
	}

	o.wg.Add(1)
	go o.run()

	return nil
}

func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return
	}
	o.running = false
	o.mu.Unlock()

	logger.Info("Orchestrator stopping")

	o.cancel()
	o.wg.Wait()

	// Best effort: leave the store paused so a restart does not race a
	// consumer that already walked away.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := o.sink.SetRunFlag(ctx, false); err != nil {
		logger.Warnf("Failed to clear run flag on shutdown: %v", err)
	}

	if o.eventLogger != nil {
		o.eventLogger.Stop()
	}
	o.eventBus.Close()

	logger.Info("Orchestrator stopped")
}

func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running
}

// Wake records consumer activity and re-arms the run flag. Called by the
// read API whenever a consumer shows up.
func (o *Orchestrator) Wake(ctx context.Context) error {
	if err := o.sink.TouchActivity(ctx); err != nil {
		return err
	}
	return o.sink.SetRunFlag(ctx, true)
}

// Latest returns the cached batch from the most recent completed tick, in
// fleet order.
func (o *Orchestrator) Latest() []models.OutputRecord {
	o.cacheMu.RLock()
	defer o.cacheMu.RUnlock()
	return append([]models.OutputRecord(nil), o.latest...)
}

// Unit returns the cached record for one unit.
func (o *Orchestrator) Unit(id string) (models.OutputRecord, error) {
	o.cacheMu.RLock()
	defer o.cacheMu.RUnlock()

	rec, ok := o.byID[id]
	if !ok {
		return models.OutputRecord{}, ErrUnitNotFound
	}
	return rec, nil
}

func (o *Orchestrator) SubscribeEvents(eventType models.BusEventType) <-chan *models.Event {
	return o.eventBus.Subscribe(eventType)
}

func (o *Orchestrator) SubscribeAllEvents() <-chan *models.Event {
	return o.eventBus.SubscribeAll()
}
