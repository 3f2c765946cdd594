package metrics

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mfreeman451/zserve/pkg/models"
)

// Config controls the Manager.
type Config struct {
	Enabled   bool
	Retention int // points kept per class
}

type classMetrics struct {
	mu     sync.RWMutex
	buffer RequestStore
}

// Manager keeps one ring buffer per route class.
type Manager struct {
	classes sync.Map // class -> *classMetrics
	config  Config
}

// NewManager creates a Collector. A disabled config yields a Manager whose
// methods do nothing.
func NewManager(cfg Config) *Manager {
	return &Manager{config: cfg}
}

// Record adds a point to the buffer of class.
func (m *Manager) Record(class string, point models.RequestPoint) {
	if !m.config.Enabled {
		return
	}

	v, _ := m.classes.LoadOrStore(class, &classMetrics{
		buffer: NewBuffer(m.config.Retention),
	})

	cm := v.(*classMetrics)

	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.buffer.Add(point)
}

// Points returns the points held for class, newest first.
func (m *Manager) Points(class string) []models.RequestPoint {
	v, ok := m.classes.Load(class)
	if !ok {
		return nil
	}

	cm := v.(*classMetrics)

	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.buffer.GetPoints()
}

// Snapshot summarizes every class, sorted by class name.
func (m *Manager) Snapshot() []models.ClassStats {
	if !m.config.Enabled {
		return nil
	}

	var classes []string

	m.classes.Range(func(k, _ interface{}) bool {
		classes = append(classes, k.(string))
		return true
	})

	sort.Strings(classes)

	stats := make([]models.ClassStats, 0, len(classes))
	for _, class := range classes {
		stats = append(stats, summarize(class, m.Points(class)))
	}

	return stats
}

func summarize(class string, points []models.RequestPoint) models.ClassStats {
	st := models.ClassStats{
		Class:    class,
		Count:    len(points),
		Statuses: make(map[string]int),
	}

	if len(points) == 0 {
		return st
	}

	durations := make([]time.Duration, len(points))

	for i, p := range points {
		durations[i] = p.Duration
		st.Bytes += p.Bytes
		st.Statuses[fmt.Sprintf("%dxx", p.Status/100)]++
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	st.P50 = percentile(durations, 50)
	st.P95 = percentile(durations, 95)
	st.Max = durations[len(durations)-1]

	return st
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}

	return sorted[rank-1]
}
