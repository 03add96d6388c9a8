package memory

import (
	"context"

	"bonitx-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// AnonymousIdentity hands every visit a fresh random user id without
// contacting an auth service.
type AnonymousIdentity struct{}

func NewAnonymousIdentity() AnonymousIdentity {
	return AnonymousIdentity{}
}

func (AnonymousIdentity) Initialize(ctx context.Context) (domain.Identity, error) {
	if err := ctx.Err(); err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{UserID: uuid.NewString(), Anonymous: true}, nil
}
