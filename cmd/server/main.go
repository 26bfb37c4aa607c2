// Command server runs the FaceSign identity resolution service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"facesign/internal/facetec"
	facetechandler "facesign/internal/facetec/handler"
	"facesign/internal/ledger"
	"facesign/internal/platform/config"
	"facesign/internal/platform/httpserver"
	"facesign/internal/platform/logger"
	"facesign/internal/platform/metrics"
	platformredis "facesign/internal/platform/redis"
	"facesign/internal/resolve"
	resolvehandler "facesign/internal/resolve/handler"
	"facesign/internal/resolve/lock"
	resolvemetrics "facesign/internal/resolve/metrics"
	"facesign/internal/resolve/ports"
	"facesign/internal/telemetry"
	"facesign/internal/token"
	httptransport "facesign/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies and owns process lifecycle; business logic lives
// in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Membership ledger. Postgres in deployment, in-memory when no DSN is
	// configured (local development).
	var store ledger.Store
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		pg := ledger.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
	} else {
		log.Warn("no postgres DSN configured, using in-memory ledger")
		store = ledger.NewInMemoryStore()
	}

	// Enrollment lock. Redis serializes across processes; the local lock
	// only covers a single process.
	var enrollmentLock ports.EnrollmentLock = lock.NewLocal()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		enrollmentLock = lock.NewRedis(redisClient.Client)
	} else {
		log.Warn("no redis configured, enrollment serialization is process-local")
	}

	// Telemetry relay. Kafka when brokers are configured, structured log
	// otherwise.
	var publisher telemetry.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err = telemetry.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic,
			telemetry.WithKafkaLogger(log))
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
	} else {
		publisher = telemetry.NewSlogPublisher(log)
	}
	relay := telemetry.NewRelay(publisher, telemetry.WithRelayLogger(log))

	issuer, err := token.NewIssuerFromFile(cfg.JWTPrivateKeyPath,
		token.WithIssuerName(cfg.Host))
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}

	provider := facetec.New(cfg.Provider.BaseURL,
		facetec.WithHTTPClient(&http.Client{Timeout: cfg.Provider.Timeout}),
		facetec.WithEarliestLookup(store),
		facetec.WithLogger(log),
	)

	resolver := resolve.New(provider, provider, store,
		resolve.WithTelemetry(relay),
		resolve.WithTokenIssuer(issuer),
		resolve.WithEnrollmentLock(enrollmentLock),
		resolve.WithMinMatchScore(cfg.Provider.MinMatchScore),
		resolve.WithMetrics(resolvemetrics.New()),
		resolve.WithLogger(log),
	)

	sdkPublicKey, err := os.ReadFile(cfg.SDKPublicKeyPath)
	if err != nil {
		return fmt.Errorf("read SDK public key: %w", err)
	}
	issuerKey, err := os.ReadFile(cfg.IssuerKeyPath)
	if err != nil {
		return fmt.Errorf("read issuer key: %w", err)
	}

	router := httptransport.NewRouter(log, metrics.New(),
		httptransport.Config{
			Host:               cfg.Host,
			SDKPublicKeyPEM:    sdkPublicKey,
			IssuerKeyMultibase: issuerKey,
		},
		resolvehandler.New(resolver, log, cfg.DefaultGroup, cfg.PinocchioGroup, cfg.TieBreak),
		facetechandler.New(provider, log, relay),
	)

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return relay.Run(ctx)
	})

	group.Go(func() error {
		log.Info("starting facesign server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
