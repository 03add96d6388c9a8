package redis

import (
	"context"
	"testing"
	"time"

	"bonitx-quiz-service/internal/domain"
	"bonitx-quiz-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{BankLoader: memory.DefaultBankLoader()}
	repo := NewQuestionRepository(client, loader, time.Minute)

	bank, err := repo.GetBank(context.Background(), domain.DefaultBankID)
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:bank:" + domain.DefaultBankID) {
		t.Fatalf("expected bank cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetBank(context.Background(), domain.DefaultBankID)
	if err != nil {
		t.Fatalf("get cached bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Len() != bank.Len() || cached.Questions[4].Prompt != bank.Questions[4].Prompt {
		t.Fatalf("cached bank differs from loaded bank")
	}
}

func TestQuestionRepositoryIgnoresCorruptCache(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	_ = mr.Set("quiz:bank:"+domain.DefaultBankID, "{not json")
	loader := &countingLoader{BankLoader: memory.DefaultBankLoader()}
	repo := NewQuestionRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.GetBank(context.Background(), domain.DefaultBankID); err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader fallback, got %d calls", loader.calls)
	}
}

type countingLoader struct {
	memory.BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, bankID)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
