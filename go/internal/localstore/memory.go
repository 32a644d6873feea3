package localstore

import (
	"sort"
	"sync"
	"time"

	"github.com/mcdev12/reckoning/go/internal/models"
	"github.com/mcdev12/reckoning/go/internal/progress"
)

// Memory is an in-process replica holding the encoded record in memory
type Memory struct {
	mu     sync.Mutex
	raw    []byte
	days   map[string]struct{}
	writes int
}

// NewMemory creates an empty in-memory replica
func NewMemory() *Memory {
	return &Memory{days: make(map[string]struct{})}
}

// NewMemoryWith creates an in-memory replica holding state
func NewMemoryWith(state models.ProgressState) *Memory {
	m := NewMemory()
	m.raw, _ = progress.EncodeLocalRecord(state)
	return m
}

func (m *Memory) Read() models.ProgressState {
	m.mu.Lock()
	raw := m.raw
	m.mu.Unlock()

	if raw == nil {
		return models.ProgressState{CompletedItems: []string{}}
	}
	state, err := progress.DecodeLocalRecord(raw)
	if err != nil {
		return models.ProgressState{CompletedItems: []string{}}
	}
	return state
}

func (m *Memory) Write(state models.ProgressState) error {
	raw, err := progress.EncodeLocalRecord(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
	m.writes++
	return nil
}

// SetRaw replaces the stored bytes verbatim
func (m *Memory) SetRaw(raw []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
}

// Raw returns the stored bytes
func (m *Memory) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.raw
}

// Writes returns how many times Write succeeded
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *Memory) MarkDailyActivity(day time.Time) (bool, error) {
	key := day.Format(DayLayout)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.days[key]; ok {
		return false, nil
	}
	m.days[key] = struct{}{}
	return true, nil
}

func (m *Memory) ActiveDays() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	days := make([]string, 0, len(m.days))
	for d := range m.days {
		days = append(days, d)
	}
	sort.Strings(days)
	return days, nil
}
