package app

import (
	"context"
	"sync"
	"time"

	"bonitx-quiz-service/internal/domain"
)

// View is what the presentation layer renders for a session.
type View struct {
	SessionID string        `json:"sessionId"`
	Stage     domain.Stage  `json:"stage"`
	Question  *QuestionView `json:"question,omitempty"`
	Email     string        `json:"email"`
	Message   string        `json:"message,omitempty"`
	Ready     bool          `json:"ready"`
	Degraded  bool          `json:"degraded"`
	UserID    string        `json:"userId,omitempty"`
	Result    *ResultView   `json:"result,omitempty"`
}

// QuestionView is the question on screen plus the visitor's current pick.
type QuestionView struct {
	ID       int             `json:"id"`
	Position int             `json:"position"`
	Total    int             `json:"total"`
	Prompt   string          `json:"prompt"`
	Options  []domain.Option `json:"options"`
	Selected domain.Category `json:"selected,omitempty"`
}

// ResultView is the results screen.
type ResultView struct {
	Mode      domain.Mode      `json:"mode"`
	Narrative domain.Narrative `json:"narrative"`
	Pitch     domain.Pitch     `json:"pitch"`
}

// Session is the in-memory state of one visit.
type Session struct {
	id        string
	createdAt time.Time
	now       func() time.Time
	bank      domain.QuestionBank
	pitch     domain.Pitch

	readyOnce sync.Once
	ready     chan struct{}

	mu          sync.RWMutex
	nav         *Navigator
	ledger      domain.Ledger
	email       string
	message     string
	mode        domain.Mode
	identity    domain.Identity
	degraded    bool
	subscribers map[chan View]struct{}
}

func newSession(id string, bank domain.QuestionBank, pitch domain.Pitch) *Session {
	return newSessionWithClock(id, bank, pitch, time.Now)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(id string, bank domain.QuestionBank, pitch domain.Pitch, now func() time.Time) *Session {
	return &Session{
		id:          id,
		createdAt:   now(),
		now:         now,
		bank:        bank,
		pitch:       pitch,
		ready:       make(chan struct{}),
		nav:         NewNavigator(bank),
		ledger:      make(domain.Ledger),
		subscribers: make(map[chan View]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the visit started.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Stage returns the current stage.
func (s *Session) Stage() domain.Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nav.Stage()
}

// Ledger returns a snapshot of the answers given so far.
func (s *Session) Ledger() domain.Ledger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Clone()
}

// Mode returns the computed mode; empty until a submission succeeded.
func (s *Session) Mode() domain.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Select records category as the answer to questionID, replacing any earlier pick.
func (s *Session) Select(questionID int, category domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.selectLocked(questionID, category)
	s.noteLocked(err)
	return err
}

func (s *Session) selectLocked(questionID int, category domain.Category) error {
	if s.nav.Stage().Kind == domain.StageResults {
		return domain.ErrQuizCompleted
	}
	if _, ok := s.bank.Lookup(questionID); !ok {
		return domain.ErrQuestionNotFound
	}
	if !category.Valid() {
		return domain.ErrInvalidCategory
	}
	s.ledger[questionID] = category
	return nil
}

// Advance moves to the next stage.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.nav.Advance(s.ledger)
	s.noteLocked(err)
	return err
}

// Retreat moves to the previous stage.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.nav.Retreat()
	s.noteLocked(err)
	return err
}

// SetEmail stores the pending email text.
func (s *Session) SetEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = email
	s.broadcastLocked()
}

// Submit sends the pending email and answers through g and, on success,
// jumps to the results stage. The lock is held for the whole call so
// navigation cannot interleave with an in-flight write.
func (s *Session) Submit(ctx context.Context, g *Gateway) (domain.SubmissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.nav.Stage().Kind {
	case domain.StageResults:
		s.noteLocked(domain.ErrQuizCompleted)
		return domain.SubmissionRecord{}, domain.ErrQuizCompleted
	case domain.StageEmailCapture:
	default:
		s.noteLocked(domain.ErrSubmissionRequired)
		return domain.SubmissionRecord{}, domain.ErrSubmissionRequired
	}

	record, err := g.Submit(ctx, SubmitRequest{
		Email:    s.email,
		Ledger:   s.ledger.Clone(),
		Identity: s.identity,
		Ready:    s.isReady(),
	})
	if err != nil {
		s.noteLocked(err)
		return domain.SubmissionRecord{}, err
	}

	if err := s.nav.JumpToResults(); err != nil {
		s.noteLocked(err)
		return domain.SubmissionRecord{}, err
	}
	s.mode = record.ResultMode
	s.message = domain.MessageSaved
	s.broadcastLocked()
	return record, nil
}

// markReady records the bootstrap outcome. Only the first call has effect.
func (s *Session) markReady(identity domain.Identity, degraded bool) {
	s.readyOnce.Do(func() {
		s.mu.Lock()
		s.identity = identity
		s.degraded = degraded
		close(s.ready)
		s.broadcastLocked()
		s.mu.Unlock()
	})
}

func (s *Session) isReady() bool {
	select {
	case <-s.ready:
		return true
	default:
		return false
	}
}

// Ready reports whether the identity bootstrap has finished.
func (s *Session) Ready() bool {
	return s.isReady()
}

// WaitReady blocks until bootstrap finishes or ctx is done.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View returns the current presentation snapshot.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

func (s *Session) noteLocked(err error) {
	s.message = domain.UserMessage(err)
	s.broadcastLocked()
}

func (s *Session) subscribe() (<-chan View, func()) {
	ch := make(chan View, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.viewLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	v := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- v:
		default:
			// Drop the oldest pending view so a slow reader never blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

func (s *Session) viewLocked() View {
	stage := s.nav.Stage()
	v := View{
		SessionID: s.id,
		Stage:     stage,
		Email:     s.email,
		Message:   s.message,
		Ready:     s.isReady(),
		Degraded:  s.degraded,
		UserID:    s.identity.UserID,
	}
	if q, ok := s.nav.Current(); ok {
		v.Question = &QuestionView{
			ID:       q.ID,
			Position: stage.Question,
			Total:    s.bank.Len(),
			Prompt:   q.Prompt,
			Options:  q.Options,
			Selected: s.ledger[q.ID],
		}
	}
	if stage.Kind == domain.StageResults {
		narrative, _ := domain.NarrativeFor(s.mode)
		v.Result = &ResultView{Mode: s.mode, Narrative: narrative, Pitch: s.pitch}
	}
	return v
}
