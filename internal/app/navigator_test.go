package app_test

import (
	"errors"
	"testing"

	"bonitx-quiz-service/internal/app"
	"bonitx-quiz-service/internal/domain"
)

func TestNavigatorRequiresSelection(t *testing.T) {
	nav := app.NewNavigator(domain.DefaultBank())
	ledger := domain.Ledger{}

	if err := nav.Advance(ledger); err != nil {
		t.Fatalf("advance from intro: %v", err)
	}
	if got := nav.Stage(); got != (domain.Stage{Kind: domain.StageQuestion, Question: 1}) {
		t.Fatalf("expected question(1), got %s", got)
	}

	if err := nav.Advance(ledger); !errors.Is(err, domain.ErrSelectionRequired) {
		t.Fatalf("expected selection required, got %v", err)
	}
	if got := nav.Stage(); got.Question != 1 {
		t.Fatalf("stage moved on rejected advance: %s", got)
	}

	ledger[1] = domain.CategoryB
	if err := nav.Advance(ledger); err != nil {
		t.Fatalf("advance after selection: %v", err)
	}
	if got := nav.Stage(); got != (domain.Stage{Kind: domain.StageQuestion, Question: 2}) {
		t.Fatalf("expected question(2), got %s", got)
	}
}

func TestNavigatorRetreatNeverGoesBelowIntro(t *testing.T) {
	nav := app.NewNavigator(domain.DefaultBank())

	if err := nav.Retreat(); err != nil {
		t.Fatalf("retreat at intro: %v", err)
	}
	if got := nav.Stage().Kind; got != domain.StageIntro {
		t.Fatalf("expected intro, got %s", got)
	}

	_ = nav.Advance(nil)
	if err := nav.Retreat(); err != nil {
		t.Fatalf("retreat from question(1): %v", err)
	}
	if err := nav.Retreat(); err != nil {
		t.Fatalf("second retreat: %v", err)
	}
	if got := nav.Stage().Kind; got != domain.StageIntro {
		t.Fatalf("expected intro, got %s", got)
	}
}

func TestNavigatorEmailCaptureOnlyLeavesThroughSubmission(t *testing.T) {
	bank := domain.DefaultBank()
	nav := app.NewNavigator(bank)
	ledger := domain.Ledger{}

	if err := nav.JumpToResults(); !errors.Is(err, domain.ErrSubmissionRequired) {
		t.Fatalf("expected jump rejected at intro, got %v", err)
	}

	_ = nav.Advance(ledger)
	for _, q := range bank.Questions {
		ledger[q.ID] = domain.CategoryA
		if err := nav.Advance(ledger); err != nil {
			t.Fatalf("advance question %d: %v", q.ID, err)
		}
	}
	if got := nav.Stage().Kind; got != domain.StageEmailCapture {
		t.Fatalf("expected email capture, got %s", got)
	}
	if err := nav.Advance(ledger); !errors.Is(err, domain.ErrSubmissionRequired) {
		t.Fatalf("expected advance rejected at email capture, got %v", err)
	}

	if err := nav.JumpToResults(); err != nil {
		t.Fatalf("jump: %v", err)
	}
	if got := nav.Stage().Kind; got != domain.StageResults {
		t.Fatalf("expected results, got %s", got)
	}
	if err := nav.Retreat(); !errors.Is(err, domain.ErrQuizCompleted) {
		t.Fatalf("expected results to be terminal, got %v", err)
	}
	if err := nav.Advance(ledger); !errors.Is(err, domain.ErrQuizCompleted) {
		t.Fatalf("expected results to be terminal, got %v", err)
	}
}

func TestNavigatorRetreatFromEmailCaptureReturnsToLastQuestion(t *testing.T) {
	bank := domain.DefaultBank()
	nav := app.NewNavigator(bank)
	ledger := ledgerOf(domain.CategoryA, domain.CategoryA, domain.CategoryA, domain.CategoryA, domain.CategoryA)
	for i := 0; i <= bank.Len(); i++ {
		if err := nav.Advance(ledger); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if err := nav.Retreat(); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	q, ok := nav.Current()
	if !ok || q.ID != bank.Len() {
		t.Fatalf("expected last question, got %+v ok=%v", q, ok)
	}
}
