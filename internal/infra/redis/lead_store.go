package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"bonitx-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// LeadStore appends submission records as JSON to a Redis list per collection.
// Records are stored as: RPUSH leads:{collectionPath} {json}
type LeadStore struct {
	client *redis.Client
}

func NewLeadStore(client *redis.Client) *LeadStore {
	return &LeadStore{client: client}
}

func (s *LeadStore) Append(ctx context.Context, collectionPath string, record domain.SubmissionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := s.client.RPush(ctx, s.key(collectionPath), data).Err(); err != nil {
		return fmt.Errorf("rpush lead: %w", err)
	}
	return nil
}

// Records reads back every record stored under collectionPath.
func (s *LeadStore) Records(ctx context.Context, collectionPath string) ([]domain.SubmissionRecord, error) {
	raw, err := s.client.LRange(ctx, s.key(collectionPath), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.SubmissionRecord, 0, len(raw))
	for _, item := range raw {
		var record domain.SubmissionRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("unmarshal lead: %w", err)
		}
		out = append(out, record)
	}
	return out, nil
}

func (s *LeadStore) key(collectionPath string) string {
	return "leads:" + collectionPath
}
