package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"trustgraph/internal/accesspolicy"
	accesspolicyAdapters "trustgraph/internal/accesspolicy/adapters"
	"trustgraph/internal/credential"
	"trustgraph/internal/identity"
	"trustgraph/internal/platform/config"
	"trustgraph/internal/platform/httpserver"
	"trustgraph/internal/platform/kafka"
	"trustgraph/internal/platform/logger"
	"trustgraph/internal/platform/metrics"
	"trustgraph/internal/platform/middleware"
	platformpostgres "trustgraph/internal/platform/postgres"
	platformredis "trustgraph/internal/platform/redis"
	httptransport "trustgraph/internal/transport/http"
	"trustgraph/internal/verification"
	verificationAdapters "trustgraph/internal/verification/adapters"
	"trustgraph/pkg/domain"
	"trustgraph/pkg/platform/audit"
	"trustgraph/pkg/platform/clock"
	"trustgraph/pkg/platform/tx"
)

// main wires the four stores, their audit logs, and the shared platform
// pieces. Business rules live in the internal service packages; everything
// here is assembly and lifecycle.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	clk := clock.NewSystem()

	var db *sql.DB
	if cfg.Postgres.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			log.Error("open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("ping postgres", "error", err)
			os.Exit(1)
		}
		if err := platformpostgres.EnsureSchema(ctx, db); err != nil {
			log.Error("ensure postgres schema", "error", err)
			os.Exit(1)
		}
	}

	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	producer, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		log.Error("connect kafka", "error", err)
		os.Exit(1)
	}

	var mirror *audit.Mirror
	if producer != nil {
		defer producer.Close()
		mirror = audit.NewMirror(producer, 256, log)
	}

	// An audit log shares its store's backend. Pairing them keeps each
	// operation's record write and event append in one atomic unit; the
	// memory-backed stores rely on the Kafka mirror for a durable trail.
	identityOpts := []identity.Option{identity.WithLogger(log), identity.WithMetrics(m)}
	if rdb != nil {
		identityOpts = append(identityOpts, identity.WithCache(identity.NewResolveCache(rdb.Client, cfg.Redis.IdentityCacheTTL)))
	}
	if mirror != nil {
		identityOpts = append(identityOpts, identity.WithMirror(mirror))
	}
	identitySvc := identity.NewService(
		identity.NewInMemoryStore(),
		audit.NewInMemoryLog(),
		clk,
		domain.Account(cfg.Admin.Identity),
		identityOpts...,
	)

	var (
		credentialStore credential.Store
		credentialLog   audit.Log
	)
	credentialOpts := []credential.Option{credential.WithLogger(log), credential.WithMetrics(m)}
	if db != nil {
		credentialStore = credential.NewPostgresStore(db)
		credentialLog = audit.NewPostgresLog(db, credential.StoreName)
		credentialOpts = append(credentialOpts, credential.WithTxRunner(tx.NewSQLRunner(db)))
	} else {
		credentialStore = credential.NewInMemoryStore()
		credentialLog = audit.NewInMemoryLog()
	}
	if mirror != nil {
		credentialOpts = append(credentialOpts, credential.WithMirror(mirror))
	}
	credentialSvc := credential.NewService(
		credentialStore,
		credentialLog,
		clk,
		domain.Account(cfg.Admin.Credential),
		credentialOpts...,
	)

	credentialOracle := verificationAdapters.NewCredentialStoreAdapter(
		domain.Account(cfg.CredentialContract), credentialSvc)

	verificationOpts := []verification.Option{
		verification.WithLogger(log),
		verification.WithMetrics(m),
		verification.WithCredentialOracle(credentialOracle),
	}
	if mirror != nil {
		verificationOpts = append(verificationOpts, verification.WithMirror(mirror))
	}
	verificationSvc := verification.NewService(
		verification.NewInMemoryStore(),
		audit.NewInMemoryLog(),
		clk,
		domain.Account(cfg.Admin.Verification),
		verificationOpts...,
	)

	policyOpts := []accesspolicy.Option{
		accesspolicy.WithLogger(log),
		accesspolicy.WithMetrics(m),
		accesspolicy.WithOracles(
			accesspolicyAdapters.NewCredentialAdapter(credentialSvc),
			accesspolicyAdapters.NewVerificationAdapter(verificationSvc),
		),
	}
	if mirror != nil {
		policyOpts = append(policyOpts, accesspolicy.WithMirror(mirror))
	}
	policySvc := accesspolicy.NewService(
		accesspolicy.NewInMemoryStore(),
		audit.NewInMemoryLog(),
		clk,
		domain.Account(cfg.Admin.AccessPolicy),
		policyOpts...,
	)

	routerCfg := httptransport.RouterConfig{
		Logger:    log,
		Metrics:   m,
		Validator: middleware.NewHMACValidator(cfg.JWTSigningKey),
		Handlers: []httptransport.Registrar{
			httptransport.NewIdentityHandler(identitySvc, log),
			httptransport.NewCredentialHandler(credentialSvc, log),
			httptransport.NewVerificationHandler(verificationSvc, log),
			httptransport.NewAccessPolicyHandler(policySvc, log),
		},
	}
	if rdb != nil {
		routerCfg.Health = append(routerCfg.Health, rdb)
	}

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(routerCfg))

	g, gctx := errgroup.WithContext(ctx)
	if mirror != nil {
		g.Go(func() error {
			return mirror.Run(gctx)
		})
	}
	g.Go(func() error {
		log.Info("starting trustgraph server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return httpserver.Shutdown(srv, 10*time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
