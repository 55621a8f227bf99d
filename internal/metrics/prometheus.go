package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/fleetsight/compressor-telemetry/internal/logger"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ticksTotal      int64
	ticksSkipped    int64
	pushErrors      int64
	snapshotsTotal  int64
	alertsTotal     map[string]int64 // unit -> count
	warningsTotal   map[string]map[string]int64 // unit -> severity -> count
	statusChanges   map[string]int64 // unit -> count

	// Gauges
	unitStatus          map[string]string
	unitRisk            map[string]float64
	circuitBreakerState map[string]int // 0=closed, 1=open, 2=half-open
	generatorRunning    int

	// Histograms (simplified - just track last values)
	tickLatency time.Duration
	pushLatency time.Duration
}

var (
	instance *Metrics
	once     sync.Once
)

func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			alertsTotal:         make(map[string]int64),
			warningsTotal:       make(map[string]map[string]int64),
			statusChanges:       make(map[string]int64),
			unitStatus:          make(map[string]string),
			unitRisk:            make(map[string]float64),
			circuitBreakerState: make(map[string]int),
			generatorRunning:    1,
		}
	})
	return instance
}

func (m *Metrics) IncTicks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticksTotal++
}

func (m *Metrics) IncTicksSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticksSkipped++
}

func (m *Metrics) IncPushErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushErrors++
}

func (m *Metrics) IncSnapshots() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotsTotal++
}

func (m *Metrics) IncAlert(unitID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alertsTotal[unitID]++
}

func (m *Metrics) IncWarning(unitID, severity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.warningsTotal[unitID] == nil {
		m.warningsTotal[unitID] = make(map[string]int64)
	}
	m.warningsTotal[unitID][severity]++
}

func (m *Metrics) IncStatusChange(unitID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusChanges[unitID]++
}

func (m *Metrics) SetUnitStatus(unitID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unitStatus[unitID] = status
}

func (m *Metrics) SetUnitRisk(unitID string, risk float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unitRisk[unitID] = risk
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circuitBreakerState[name] = state
}

func (m *Metrics) SetGeneratorRunning(running bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if running {
		m.generatorRunning = 1
	} else {
		m.generatorRunning = 0
	}
}

func (m *Metrics) SetTickLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickLatency = d
}

func (m *Metrics) SetPushLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushLatency = d
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		writeMetric(w, "telemetry_ticks_total", nil, float64(m.ticksTotal))
		writeMetric(w, "telemetry_ticks_skipped_total", nil, float64(m.ticksSkipped))
		writeMetric(w, "telemetry_push_errors_total", nil, float64(m.pushErrors))
		writeMetric(w, "telemetry_snapshots_total", nil, float64(m.snapshotsTotal))
		writeMetric(w, "telemetry_generator_running", nil, float64(m.generatorRunning))

		for unit, count := range m.alertsTotal {
			writeMetric(w, "telemetry_ai_alerts_total", map[string]string{"unit_id": unit}, float64(count))
		}

		for unit, severities := range m.warningsTotal {
			for severity, count := range severities {
				writeMetric(w, "telemetry_warnings_total", map[string]string{"unit_id": unit, "severity": severity}, float64(count))
			}
		}

		for unit, count := range m.statusChanges {
			writeMetric(w, "telemetry_status_changes_total", map[string]string{"unit_id": unit}, float64(count))
		}

		for unit, status := range m.unitStatus {
			writeMetric(w, "telemetry_unit_status", map[string]string{"unit_id": unit, "status": status}, 1)
		}

		for unit, risk := range m.unitRisk {
			writeMetric(w, "telemetry_unit_risk_score", map[string]string{"unit_id": unit}, risk)
		}

		// Circuit breaker state
		for name, state := range m.circuitBreakerState {
			writeMetric(w, "telemetry_circuit_breaker_state", map[string]string{"name": name}, float64(state))
		}

		writeMetric(w, "telemetry_tick_latency_ms", nil, float64(m.tickLatency.Milliseconds()))
		writeMetric(w, "telemetry_push_latency_ms", nil, float64(m.pushLatency.Milliseconds()))
	})
}

func writeMetric(w http.ResponseWriter, name string, labels map[string]string, value float64) {
	labelStr := ""
	if len(labels) > 0 {
		labelStr = "{"
		first := true
		for k, v := range labels {
			if !first {
				labelStr += ","
			}
			labelStr += k + `="` + v + `"`
			first = false
		}
		labelStr += "}"
	}
	w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(value, 'f', -1, 64) + "\n"))
}

func StartServer(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Get().Handler())

	addr := ":" + strconv.Itoa(port)
	logger.Infof("Prometheus metrics server listening on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("Prometheus server error: %v", err)
		}
	}()
}
