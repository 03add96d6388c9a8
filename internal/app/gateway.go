package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bonitx-quiz-service/internal/domain"
	"go.uber.org/zap"
)

// LeadStore is the external persistence collaborator. Implementations write
// record under collectionPath exactly once per call.
type LeadStore interface {
	Append(ctx context.Context, collectionPath string, record domain.SubmissionRecord) error
}

// SubmitRequest carries everything a submission needs from the session.
type SubmitRequest struct {
	Email    string
	Ledger   domain.Ledger
	Identity domain.Identity
	Ready    bool
}

// Gateway validates, scores and forwards submissions to the lead store.
type Gateway struct {
	store      LeadStore
	collection string
	now        func() time.Time
	logger     *zap.Logger
}

func NewGateway(store LeadStore, tenantID string, logger *zap.Logger) *Gateway {
	return NewGatewayWithClock(store, tenantID, logger, time.Now)
}

// NewGatewayWithClock is test-only for deterministic timestamps.
func NewGatewayWithClock(store LeadStore, tenantID string, logger *zap.Logger, now func() time.Time) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		store:      store,
		collection: domain.CollectionPath(tenantID),
		now:        now,
		logger:     logger,
	}
}

// CollectionPath is where records are appended.
func (g *Gateway) CollectionPath() string {
	return g.collection
}

// ValidateEmail applies the deliberately loose check: non-empty, contains '@' and '.'.
func ValidateEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return domain.ErrInvalidEmail
	}
	return nil
}

// Submit validates req, scores the ledger and appends the record. Nothing is
// retried; a failed append returns an error wrapping domain.ErrPersistence.
// A nil Gateway reports domain.ErrNotReady.
func (g *Gateway) Submit(ctx context.Context, req SubmitRequest) (domain.SubmissionRecord, error) {
	if err := ValidateEmail(req.Email); err != nil {
		return domain.SubmissionRecord{}, err
	}
	if g == nil {
		return domain.SubmissionRecord{}, fmt.Errorf("%w: no gateway configured", domain.ErrNotReady)
	}
	if !req.Ready || g.store == nil {
		return domain.SubmissionRecord{}, domain.ErrNotReady
	}

	record := domain.SubmissionRecord{
		Email:       req.Email,
		Timestamp:   g.now().UTC(),
		TestAnswers: req.Ledger.Answers(),
		ResultMode:  Score(req.Ledger),
	}
	if req.Identity.Present() {
		uid := req.Identity.UserID
		record.UserID = &uid
	}

	ctx = domain.WithIdentity(ctx, req.Identity)
	if err := g.store.Append(ctx, g.collection, record); err != nil {
		g.logger.Error("persist submission failed",
			zap.String("collection", g.collection),
			zap.Error(err))
		return domain.SubmissionRecord{}, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return record, nil
}
