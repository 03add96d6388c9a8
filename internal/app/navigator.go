package app

import "bonitx-quiz-service/internal/domain"

// Navigator walks the fixed sequence intro -> questions -> email -> results.
// Position 0 is the intro, 1..N the questions, N+1 email capture and N+2 results.
// It is not safe for concurrent use; Session serializes access.
type Navigator struct {
	bank domain.QuestionBank
	pos  int
}

func NewNavigator(bank domain.QuestionBank) *Navigator {
	return &Navigator{bank: bank}
}

func (n *Navigator) emailPos() int   { return n.bank.Len() + 1 }
func (n *Navigator) resultsPos() int { return n.bank.Len() + 2 }

// Stage reports the current named position.
func (n *Navigator) Stage() domain.Stage {
	switch {
	case n.pos <= 0:
		return domain.Stage{Kind: domain.StageIntro}
	case n.pos <= n.bank.Len():
		return domain.Stage{Kind: domain.StageQuestion, Question: n.pos}
	case n.pos == n.emailPos():
		return domain.Stage{Kind: domain.StageEmailCapture}
	default:
		return domain.Stage{Kind: domain.StageResults}
	}
}

// Current returns the question on screen, if the stage is a question.
func (n *Navigator) Current() (domain.Question, bool) {
	return n.bank.At(n.pos)
}

// Advance moves forward one stage. A question stage only advances once
// ledger holds an answer for it.
func (n *Navigator) Advance(ledger domain.Ledger) error {
	switch n.Stage().Kind {
	case domain.StageResults:
		return domain.ErrQuizCompleted
	case domain.StageEmailCapture:
		return domain.ErrSubmissionRequired
	case domain.StageQuestion:
		q, _ := n.Current()
		if _, ok := ledger[q.ID]; !ok {
			return domain.ErrSelectionRequired
		}
	}
	n.pos++
	return nil
}

// Retreat moves back one stage. It is a no-op at the intro.
func (n *Navigator) Retreat() error {
	if n.Stage().Kind == domain.StageResults {
		return domain.ErrQuizCompleted
	}
	if n.pos > 0 {
		n.pos--
	}
	return nil
}

// JumpToResults completes the visit. Only valid from email capture.
func (n *Navigator) JumpToResults() error {
	if n.Stage().Kind != domain.StageEmailCapture {
		return domain.ErrSubmissionRequired
	}
	n.pos = n.resultsPos()
	return nil
}
