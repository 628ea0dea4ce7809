package service

import (
	"context"
	"sync"

	"change-audit/internal/domain"
)

type fakeConfigurationStore struct {
	mu      sync.Mutex
	configs map[string]domain.AuditConfiguration
	err     error
	calls   int
}

func newFakeConfigurationStore(configs ...domain.AuditConfiguration) *fakeConfigurationStore {
	s := &fakeConfigurationStore{configs: make(map[string]domain.AuditConfiguration)}
	for _, c := range configs {
		s.configs[c.LogicalName] = c
	}
	return s
}

func (s *fakeConfigurationStore) FindByEntity(_ context.Context, logicalName string) (*domain.AuditConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.configs[logicalName]
	if !ok {
		return nil, domain.ErrConfigurationNotFound
	}
	return &c, nil
}

type fakeSink struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	failOn  map[string]error
	calls   int
}

func (s *fakeSink) Insert(_ context.Context, entry domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.failOn[entry.FieldName]; ok {
		return err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeSink) fields() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.FieldName)
	}
	return out
}

type fakeBatchSink struct {
	fakeSink
	batches  [][]domain.AuditEntry
	batchErr error
}

func (s *fakeBatchSink) InsertBatch(_ context.Context, entries []domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batchErr != nil {
		return s.batchErr
	}
	s.batches = append(s.batches, entries)
	s.entries = append(s.entries, entries...)
	return nil
}

type countingRecorder struct {
	mu        sync.Mutex
	outcomes  []string
	changes   int
	writesOK  int
	writesErr int
	cached    int
	stored    int
}

func (r *countingRecorder) ObserveMutation(_ string, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *countingRecorder) ObserveChange() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes++
}

func (r *countingRecorder) ObserveWrite(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.writesErr++
		return
	}
	r.writesOK++
}

func (r *countingRecorder) ObservePolicyLookup(cached bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached {
		r.cached++
		return
	}
	r.stored++
}
