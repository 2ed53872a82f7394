package storage

import (
	"context"
	"sort"
	"sync"

	"snnmeter/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	summaries   map[string]model.SummaryRecord
	profiles    map[string]model.DeviceProfileRecord
	layerTotals map[string][]model.LayerTotalsRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.summaries = make(map[string]model.SummaryRecord)
	s.profiles = make(map[string]model.DeviceProfileRecord)
	s.layerTotals = make(map[string][]model.LayerTotalsRecord)
	return nil
}

func (s *MemoryStore) SaveSummary(_ context.Context, record model.SummaryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.InputSize = append([]int(nil), record.InputSize...)
	record.DeviceNames = append([]string(nil), record.DeviceNames...)
	record.TotalEnergies = append([]float64(nil), record.TotalEnergies...)
	s.summaries[record.ID] = record
	return nil
}

func (s *MemoryStore) GetSummary(_ context.Context, id string) (model.SummaryRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.summaries[id]
	if !ok {
		return model.SummaryRecord{}, false, nil
	}
	record.InputSize = append([]int(nil), record.InputSize...)
	record.DeviceNames = append([]string(nil), record.DeviceNames...)
	record.TotalEnergies = append([]float64(nil), record.TotalEnergies...)
	return record, true, nil
}

func (s *MemoryStore) ListSummaryIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.summaries))
	for id := range s.summaries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) SaveDeviceProfile(_ context.Context, record model.DeviceProfileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[record.Name] = record
	return nil
}

func (s *MemoryStore) GetDeviceProfile(_ context.Context, name string) (model.DeviceProfileRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.profiles[name]
	return record, ok, nil
}

func (s *MemoryStore) SaveLayerTotals(_ context.Context, summaryID string, rows []model.LayerTotalsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]model.LayerTotalsRecord, len(rows))
	copy(copied, rows)
	s.layerTotals[summaryID] = copied
	return nil
}

func (s *MemoryStore) GetLayerTotals(_ context.Context, summaryID string) ([]model.LayerTotalsRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.layerTotals[summaryID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.LayerTotalsRecord, len(rows))
	copy(copied, rows)
	return copied, true, nil
}
