package orchestrator

import (
	"context"
	"time"

	"github.com/fleetsight/compressor-telemetry/internal/logger"
	"github.com/fleetsight/compressor-telemetry/internal/metrics"
	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

func (o *Orchestrator) tickInterval() time.Duration {
	if interval := o.config.Telemetry.TickInterval; interval > 0 {
		return interval
	}
	return 2 * time.Second
}

func (o *Orchestrator) run() {
	defer o.wg.Done()

	ticker := time.NewTicker(o.tickInterval())
	defer ticker.Stop()

	// Run immediately on start
	o.tick(time.Now())

	for {
		select {
		case <-o.ctx.Done():
			return
		case now := <-ticker.C:
			o.tick(now)
		}
	}
}

// tick runs one generator cycle. A failed run-flag read skips the cycle
// rather than guessing; the next tick retries.
func (o *Orchestrator) tick(now time.Time) {
	ctx, cancel := context.WithTimeout(o.ctx, o.tickInterval())
	defer cancel()

	started := time.Now()

	running, err := o.sink.RunFlag(ctx)
	if err != nil {
		logger.Errorf("Run flag read failed, skipping tick: %v", err)
		o.publisher.Error("", "Run flag read failed", err)
		metrics.Get().IncTicksSkipped()
		return
	}

	if !running {
		metrics.Get().SetGeneratorRunning(false)
		metrics.Get().IncTicksSkipped()
		return
	}
	metrics.Get().SetGeneratorRunning(true)

	if o.pauseIfIdle(ctx, now) {
		metrics.Get().IncTicksSkipped()
		return
	}

	batch := o.engine.Tick(now)
	metrics.Get().IncTicks()
	metrics.Get().SetTickLatency(time.Since(started))

	o.publishChanges(batch)
	o.updateCache(batch)
	o.publisher.TickCompleted(batch)

	o.push(ctx, now, batch)
}

// pauseIfIdle clears the run flag when no consumer activity has been seen
// within the inactivity window.
func (o *Orchestrator) pauseIfIdle(ctx context.Context, now time.Time) bool {
	timeout := o.config.Telemetry.InactivityTimeout
	if timeout <= 0 {
		return false
	}

	last, err := o.sink.LastActivity(ctx)
	if err != nil {
		logger.Warnf("Last activity read failed: %v", err)
		return false
	}

	if now.Sub(last) <= timeout {
		return false
	}

	logger.Infof("No consumer activity for %s, pausing generator", timeout)
	if err := o.sink.SetRunFlag(ctx, false); err != nil {
		logger.Errorf("Failed to pause generator: %v", err)
		return false
	}
	metrics.Get().SetGeneratorRunning(false)
	return true
}

// publishChanges diffs the new batch against the previous one and emits
// events for status transitions, warning edges and fresh AI alerts.
func (o *Orchestrator) publishChanges(batch []models.OutputRecord) {
	m := metrics.Get()

	for _, rec := range batch {
		prev, seen := o.prev[rec.UnitID]

		if seen && prev.Status != rec.Status {
			o.publisher.StatusChanged(rec.UnitID, prev.Status, rec.Status)
			m.IncStatusChange(rec.UnitID)
		}

		raised := rec.Warning.Rank() > models.SeverityNormal.Rank()
		wasRaised := seen && prev.Warning.Rank() > models.SeverityNormal.Rank()

		switch {
		case raised && (!wasRaised || prev.Warning != rec.Warning || prev.EventType != rec.EventType):
			o.publisher.WarningRaised(rec)
			m.IncWarning(rec.UnitID, string(rec.Warning))
		case !raised && wasRaised:
			o.publisher.WarningCleared(rec.UnitID)
		}

		if rec.AIAlert && (!seen || !prev.AIAlert) {
			o.publisher.AIAlert(rec)
			m.IncAlert(rec.UnitID)
		}

		m.SetUnitStatus(rec.UnitID, string(rec.Status))
		m.SetUnitRisk(rec.UnitID, rec.RiskScore)

		o.prev[rec.UnitID] = rec
	}
}

func (o *Orchestrator) updateCache(batch []models.OutputRecord) {
	o.cacheMu.Lock()
	defer o.cacheMu.Unlock()

	o.latest = batch
	for _, rec := range batch {
		o.byID[rec.UnitID] = rec
	}
}

// push writes the batch to the sink. A failed push never rolls back the
// cache; consumers keep reading the freshest evaluated state.
func (o *Orchestrator) push(ctx context.Context, now time.Time, batch []models.OutputRecord) {
	started := time.Now()

	if err := o.sink.PushLatest(ctx, batch); err != nil {
		logger.Errorf("Push latest failed: %v", err)
		o.publisher.Error("", "Push latest failed", err)
		metrics.Get().IncPushErrors()
	}
	metrics.Get().SetPushLatency(time.Since(started))

	snapInterval := o.config.Telemetry.SnapshotInterval
	if snapInterval <= 0 || now.Sub(o.lastSnapshot) < snapInterval {
		return
	}

	if err := o.sink.AppendSnapshot(ctx, batch); err != nil {
		logger.Errorf("Append snapshot failed: %v", err)
		o.publisher.Error("", "Append snapshot failed", err)
		metrics.Get().IncPushErrors()
		return
	}

	o.lastSnapshot = now
	o.publisher.SnapshotSaved(len(batch))
	metrics.Get().IncSnapshots()
}
