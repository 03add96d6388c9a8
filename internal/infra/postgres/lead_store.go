package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"bonitx-quiz-service/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// OpenDB opens a bun handle over the pgdriver connector.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

type leadRow struct {
	bun.BaseModel `bun:"table:test_leads"`

	ID             int64             `bun:"id,pk,autoincrement"`
	CollectionPath string            `bun:"collection_path,notnull"`
	Email          string            `bun:"email,notnull"`
	Answers        map[string]string `bun:"test_answers,type:jsonb,notnull"`
	ResultMode     string            `bun:"result_mode,notnull"`
	UserID         *string           `bun:"user_id"`
	SubmittedAt    time.Time         `bun:"submitted_at,notnull"`
}

// LeadStore writes submission records to the test_leads table.
type LeadStore struct {
	db *bun.DB
}

func NewLeadStore(db *bun.DB) *LeadStore {
	return &LeadStore{db: db}
}

func (s *LeadStore) Append(ctx context.Context, collectionPath string, record domain.SubmissionRecord) error {
	row := leadRow{
		CollectionPath: collectionPath,
		Email:          record.Email,
		Answers:        make(map[string]string, len(record.TestAnswers)),
		ResultMode:     string(record.ResultMode),
		UserID:         record.UserID,
		SubmittedAt:    record.Timestamp,
	}
	for id, category := range record.TestAnswers {
		row.Answers[strconv.Itoa(id)] = category
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// Records lists the records stored under collectionPath in insertion order.
func (s *LeadStore) Records(ctx context.Context, collectionPath string) ([]domain.SubmissionRecord, error) {
	var rows []leadRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("collection_path = ?", collectionPath).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select leads: %w", err)
	}

	out := make([]domain.SubmissionRecord, 0, len(rows))
	for _, row := range rows {
		answers := make(map[int]string, len(row.Answers))
		for key, category := range row.Answers {
			id, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("lead %d: bad question id %q", row.ID, key)
			}
			answers[id] = category
		}
		out = append(out, domain.SubmissionRecord{
			Email:       row.Email,
			Timestamp:   row.SubmittedAt,
			TestAnswers: answers,
			ResultMode:  domain.Mode(row.ResultMode),
			UserID:      row.UserID,
		})
	}
	return out, nil
}
