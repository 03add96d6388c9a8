package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"bonitx-quiz-service/internal/domain"
	"github.com/uptrace/bun"
)

type bankRow struct {
	bun.BaseModel `bun:"table:question_banks"`

	ID   string          `bun:"id,pk"`
	Data json.RawMessage `bun:"data,type:jsonb,notnull"`
}

// SeedBank upserts bank into question_banks.
func SeedBank(ctx context.Context, db *bun.DB, bank domain.QuestionBank) error {
	if err := bank.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(bank)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	row := bankRow{ID: bank.ID, Data: data}
	_, err = db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("seed bank: %w", err)
	}
	return nil
}
