package app

import (
	"context"
	"fmt"
	"time"

	"bonitx-quiz-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionRepository loads question banks (from cache/backing store).
type QuestionRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// IdentityProvider is the identity bootstrap collaborator. Initialize is
// called once per session.
type IdentityProvider interface {
	Initialize(ctx context.Context) (domain.Identity, error)
}

// IdentityProviderFunc adapts a function to IdentityProvider.
type IdentityProviderFunc func(ctx context.Context) (domain.Identity, error)

func (f IdentityProviderFunc) Initialize(ctx context.Context) (domain.Identity, error) {
	return f(ctx)
}

// Options tunes QuizService.
type Options struct {
	BankID           string
	PitchURL         string
	BootstrapTimeout time.Duration
	Logger           *zap.Logger
}

// QuizService contains the quiz use cases.
type QuizService struct {
	sessions SessionRepository
	banks    QuestionRepository
	identity IdentityProvider
	gateway  *Gateway
	logger   *zap.Logger

	bankID           string
	pitch            domain.Pitch
	bootstrapTimeout time.Duration
	newID            func() string
}

func NewQuizService(store SessionRepository, banks QuestionRepository, identity IdentityProvider, gateway *Gateway, opts Options) *QuizService {
	if opts.BankID == "" {
		opts.BankID = domain.DefaultBankID
	}
	if opts.BootstrapTimeout <= 0 {
		opts.BootstrapTimeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &QuizService{
		sessions:         store,
		banks:            banks,
		identity:         identity,
		gateway:          gateway,
		logger:           opts.Logger,
		bankID:           opts.BankID,
		pitch:            domain.DefaultPitch(opts.PitchURL),
		bootstrapTimeout: opts.BootstrapTimeout,
		newID:            uuid.NewString,
	}
}

// NewSession is exported for infrastructure layers and tests that need to seed sessions.
func NewSession(id string, bank domain.QuestionBank, pitch domain.Pitch) *Session {
	return newSession(id, bank, pitch)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, bank domain.QuestionBank, pitch domain.Pitch, now func() time.Time) *Session {
	return newSessionWithClock(id, bank, pitch, now)
}

// Start opens a new visit at the intro stage and begins the identity
// bootstrap in the background.
func (s *QuizService) Start(ctx context.Context) (*Session, error) {
	bank, err := s.banks.GetBank(ctx, s.bankID)
	if err != nil {
		return nil, err
	}

	session := newSession(s.newID(), bank, s.pitch)
	s.sessions.Save(session)
	s.logger.Info("session started", zap.String("session", session.ID()), zap.String("bank", bank.ID))

	go s.bootstrap(session)
	return session, nil
}

// bootstrap runs the identity collaborator once. Any failure, including a
// panic or a provider that outlives the timeout, leaves the session ready
// without an identity.
func (s *QuizService) bootstrap(session *Session) {
	log := s.logger.With(zap.String("session", session.ID()))
	if s.identity == nil {
		session.markReady(domain.Identity{}, true)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.bootstrapTimeout)
	defer cancel()

	type outcome struct {
		identity domain.Identity
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("identity bootstrap panicked", zap.Any("panic", r))
				done <- outcome{err: fmt.Errorf("identity bootstrap panicked: %v", r)}
			}
		}()
		identity, err := s.identity.Initialize(ctx)
		done <- outcome{identity: identity, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			log.Warn("identity bootstrap failed, continuing without identity", zap.Error(res.err))
			session.markReady(domain.Identity{}, true)
			return
		}
		log.Debug("identity ready", zap.String("user", res.identity.UserID), zap.Bool("anonymous", res.identity.Anonymous))
		session.markReady(res.identity, false)
	case <-ctx.Done():
		log.Warn("identity bootstrap timed out, continuing without identity", zap.Duration("timeout", s.bootstrapTimeout))
		session.markReady(domain.Identity{}, true)
	}
}

// Session returns a live session by id.
func (s *QuizService) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Select records an answer and returns the updated view.
func (s *QuizService) Select(_ context.Context, sessionID string, questionID int, category domain.Category) (View, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return View{}, err
	}
	err = session.Select(questionID, category)
	return session.View(), err
}

// Advance moves the session forward.
func (s *QuizService) Advance(_ context.Context, sessionID string) (View, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return View{}, err
	}
	err = session.Advance()
	return session.View(), err
}

// Retreat moves the session back.
func (s *QuizService) Retreat(_ context.Context, sessionID string) (View, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return View{}, err
	}
	err = session.Retreat()
	return session.View(), err
}

// SetEmail stores the pending email.
func (s *QuizService) SetEmail(_ context.Context, sessionID, email string) (View, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return View{}, err
	}
	session.SetEmail(email)
	return session.View(), nil
}

// Submit persists the visit and moves it to results.
func (s *QuizService) Submit(ctx context.Context, sessionID string) (View, domain.SubmissionRecord, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return View{}, domain.SubmissionRecord{}, err
	}
	record, err := session.Submit(ctx, s.gateway)
	if err != nil {
		return session.View(), domain.SubmissionRecord{}, err
	}
	s.logger.Info("submission saved",
		zap.String("session", sessionID),
		zap.String("mode", string(record.ResultMode)),
		zap.String("collection", s.gateway.CollectionPath()))
	return session.View(), record, nil
}

// Subscribe returns a channel that receives a view after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan View, func(), error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// End drops the session.
func (s *QuizService) End(_ context.Context, sessionID string) {
	if _, ok := s.sessions.Get(sessionID); !ok {
		return
	}
	s.sessions.Delete(sessionID)
	s.logger.Info("session ended", zap.String("session", sessionID))
}
