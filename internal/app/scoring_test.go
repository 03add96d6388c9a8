package app_test

import (
	"testing"

	"bonitx-quiz-service/internal/app"
	"bonitx-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ledgerOf(categories ...domain.Category) domain.Ledger {
	l := make(domain.Ledger, len(categories))
	for i, c := range categories {
		l[i+1] = c
	}
	return l
}

func TestScore(t *testing.T) {
	a, b, c := domain.CategoryA, domain.CategoryB, domain.CategoryC

	tests := []struct {
		name   string
		ledger domain.Ledger
		want   domain.Mode
	}{
		{"majority A", ledgerOf(a, a, a, b, c), domain.ModeExigencia},
		{"majority B", ledgerOf(b, b, b, a, c), domain.ModeTransicion},
		{"majority C", ledgerOf(c, c, a, b, c), domain.ModeConexion},
		{"all C", ledgerOf(c, c, c, c, c), domain.ModeConexion},
		{"three-way tie goes to C", ledgerOf(a, b, c), domain.ModeConexion},
		{"A and B tie goes to B", ledgerOf(a, a, b, b), domain.ModeTransicion},
		{"A and C tie goes to C", ledgerOf(a, a, c, c, b), domain.ModeConexion},
		{"only A answered", ledgerOf(a, a), domain.ModeExigencia},
		{"empty ledger resolves to C", domain.Ledger{}, domain.ModeConexion},
		{"nil ledger resolves to C", nil, domain.ModeConexion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, app.Score(tt.ledger))
		})
	}
}

func TestScoreIgnoresQuestionIDs(t *testing.T) {
	ledger := domain.Ledger{7: domain.CategoryB, 42: domain.CategoryB, 3: domain.CategoryA}
	assert.Equal(t, domain.ModeTransicion, app.Score(ledger))
}

func TestTally(t *testing.T) {
	counts := app.Tally(ledgerOf(domain.CategoryA, domain.CategoryC, domain.CategoryC))
	assert.Equal(t, app.Counts{domain.CategoryA: 1, domain.CategoryB: 0, domain.CategoryC: 2}, counts)
}
