package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bonitx-quiz-service/internal/app"
	"bonitx-quiz-service/internal/config"
	"bonitx-quiz-service/internal/domain"
	"bonitx-quiz-service/internal/infra/firebase"
	"bonitx-quiz-service/internal/infra/memory"
	pgstore "bonitx-quiz-service/internal/infra/postgres"
	redisstore "bonitx-quiz-service/internal/infra/redis"
	"bonitx-quiz-service/internal/infra/sqlite"
	transport "bonitx-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	applyLogLevel(cfg.Log.Level)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, cfg.Postgres.Seed); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.BankLoader = memory.DefaultBankLoader()
	if pool != nil {
		loader = pgstore.NewBankLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var banks app.QuestionRepository
	if redisClient != nil {
		banks = redisstore.NewQuestionRepository(redisClient, loader, quizTTL)
	} else {
		banks = memory.NewQuestionRepository(loader, quizTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	leads, closeLeads, err := newLeadStore(cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeLeads()

	identity := newIdentityProvider(cfg)
	gateway := app.NewGateway(leads, cfg.Firebase.TenantID, logger)
	service := app.NewQuizService(sessions, banks, identity, gateway, app.Options{
		BankID:           defaultBankID(cfg.Quiz.BankID),
		PitchURL:         cfg.Quiz.PitchURL,
		BootstrapTimeout: config.TTLDuration(cfg.Identity.Timeout, 10*time.Second),
		Logger:           logger,
	})

	bankID := defaultBankID(cfg.Quiz.BankID)
	if _, err := banks.GetBank(ctx, bankID); err != nil {
		return fmt.Errorf("load question bank %q: %w", bankID, err)
	}

	wsHandler := transport.NewWSHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting quiz service",
			zap.String("port", finalPort),
			zap.String("store", cfg.Store.Backend),
			zap.String("identity", cfg.Identity.Provider),
			zap.String("collection", gateway.CollectionPath()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newLeadStore(cfg config.Config, redisClient *redis.Client) (app.LeadStore, func(), error) {
	noop := func() {}
	switch cfg.Store.Backend {
	case config.StoreRedis:
		return redisstore.NewLeadStore(redisClient), noop, nil
	case config.StorePostgres:
		db := pgstore.OpenDB(cfg.Postgres.URL)
		return pgstore.NewLeadStore(db), func() { _ = db.Close() }, nil
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.StoreFirestore:
		store, err := firebase.NewFirestore(nil, firebase.FirestoreConfig{
			ProjectID: cfg.Firebase.ProjectID,
			APIKey:    cfg.Firebase.APIKey,
			Endpoint:  cfg.Firebase.FirestoreEndpoint,
		})
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	default:
		logger.Warn("using in-memory lead store; submissions are lost on restart")
		return memory.NewLeadStore(), noop, nil
	}
}

func newIdentityProvider(cfg config.Config) app.IdentityProvider {
	switch cfg.Identity.Provider {
	case config.IdentityFirebase:
		return firebase.NewAuth(nil, firebase.AuthConfig{
			APIKey:      cfg.Firebase.APIKey,
			CustomToken: cfg.Firebase.AuthToken,
			Endpoint:    cfg.Firebase.AuthEndpoint,
		})
	case config.IdentityNone:
		return nil
	default:
		return memory.NewAnonymousIdentity()
	}
}

// defaultBankID keeps the built-in bank when none is configured.
func defaultBankID(id string) string {
	if id == "" {
		return domain.DefaultBankID
	}
	return id
}
