package sink

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fleetsight/compressor-telemetry/pkg/models"
)

var ErrSinkClosed = errors.New("sink is closed")

// MemorySink keeps everything in process memory. Used by the offline
// simulate command and by tests; supports failure injection on the write and
// flag paths.
type MemorySink struct {
	mu           sync.Mutex
	latest       []models.OutputRecord
	snapshots    [][]models.OutputRecord
	runFlag      bool
	lastActivity time.Time
	closed       bool

	FailWrites   bool
	FailFlagRead bool
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		runFlag:      true,
		lastActivity: time.Now(),
	}
}

func (s *MemorySink) PushLatest(_ context.Context, batch []models.OutputRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if s.FailWrites {
		return errors.New("injected write failure")
	}

	s.latest = append([]models.OutputRecord(nil), batch...)
	return nil
}

func (s *MemorySink) AppendSnapshot(_ context.Context, batch []models.OutputRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	if s.FailWrites {
		return errors.New("injected write failure")
	}

	s.snapshots = append(s.snapshots, append([]models.OutputRecord(nil), batch...))
	return nil
}

func (s *MemorySink) RunFlag(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailFlagRead {
		return false, errors.New("injected flag read failure")
	}
	return s.runFlag, nil
}

func (s *MemorySink) SetRunFlag(_ context.Context, running bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runFlag = running
	return nil
}

func (s *MemorySink) LastActivity(_ context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity, nil
}

func (s *MemorySink) TouchActivity(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActivity = time.Now()
	return nil
}

// SetLastActivity backdates the activity timestamp; test hook.
func (s *MemorySink) SetLastActivity(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = t
}

// Latest returns a copy of the most recently pushed batch.
func (s *MemorySink) Latest() []models.OutputRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.OutputRecord(nil), s.latest...)
}

// SnapshotCount reports how many snapshot batches were appended.
func (s *MemorySink) SnapshotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

func (s *MemorySink) HealthCheck(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	return nil
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
