package memory

import (
	"context"
	"sync"

	"bonitx-quiz-service/internal/domain"
)

// LeadStore keeps submission records in process, grouped by collection path.
type LeadStore struct {
	mu      sync.RWMutex
	records map[string][]domain.SubmissionRecord
}

func NewLeadStore() *LeadStore {
	return &LeadStore{records: make(map[string][]domain.SubmissionRecord)}
}

func (s *LeadStore) Append(_ context.Context, collectionPath string, record domain.SubmissionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[collectionPath] = append(s.records[collectionPath], record)
	return nil
}

// Records returns a copy of what was appended under collectionPath.
func (s *LeadStore) Records(collectionPath string) []domain.SubmissionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SubmissionRecord, len(s.records[collectionPath]))
	copy(out, s.records[collectionPath])
	return out
}
