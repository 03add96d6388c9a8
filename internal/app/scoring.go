package app

import (
	"slices"

	"bonitx-quiz-service/internal/domain"
)

// tieBreakOrder resolves ties in favour of the more self-compassionate answers.
var tieBreakOrder = []domain.Category{domain.CategoryC, domain.CategoryB, domain.CategoryA}

// Counts holds how many answers fell in each category.
type Counts map[domain.Category]int

// Tally counts the categories selected in ledger.
func Tally(ledger domain.Ledger) Counts {
	counts := Counts{domain.CategoryA: 0, domain.CategoryB: 0, domain.CategoryC: 0}
	for _, category := range ledger {
		counts[category]++
	}
	return counts
}

// Score returns the dominant mode of ledger.
//
// The category with the highest count wins; ties go to C, then B, then A.
// An empty ledger ties every category at zero and therefore yields
// ModeConexion.
func Score(ledger domain.Ledger) domain.Mode {
	counts := Tally(ledger)

	highest := 0
	for _, c := range domain.Categories {
		if counts[c] > highest {
			highest = counts[c]
		}
	}

	tied := make([]domain.Category, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		if counts[c] == highest {
			tied = append(tied, c)
		}
	}
	if len(tied) == 1 {
		return domain.ModeFor(tied[0])
	}

	for _, c := range tieBreakOrder {
		if slices.Contains(tied, c) {
			return domain.ModeFor(c)
		}
	}
	return domain.ModeFor(domain.CategoryA)
}
