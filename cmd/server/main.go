package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"pocket-signal-pro/internal/access"
	"pocket-signal-pro/internal/advisor"
	"pocket-signal-pro/internal/bot"
	"pocket-signal-pro/internal/cache"
	"pocket-signal-pro/internal/chart"
	"pocket-signal-pro/internal/config"
	"pocket-signal-pro/internal/db"
	"pocket-signal-pro/internal/domain"
	"pocket-signal-pro/internal/handler"
	"pocket-signal-pro/internal/job"
	"pocket-signal-pro/internal/repository"
	"pocket-signal-pro/internal/router"
	"pocket-signal-pro/internal/session"
	"pocket-signal-pro/internal/signalgen"
	"pocket-signal-pro/internal/store"
	"pocket-signal-pro/internal/tui"
	"pocket-signal-pro/internal/verify"
	"pocket-signal-pro/pkg/tracing"

	"github.com/charmbracelet/ssh"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "pocket-signal-pro/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initPostgresFunc       = db.InitPostgres
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newUserRepoFunc        = repository.NewUserRepository
	newAdvisorFunc         = advisor.New
	startTelegramBotFunc   = bot.StartTelegramBot
	startPollerFunc        = func(p *job.SuggestionPoller, ctx context.Context) { go p.Start(ctx) }
	newRouterFunc          = gin.Default
	newSSHServerFunc       = tui.NewSSHServer
	startSSHServerFunc     = func(srv *ssh.Server) error { return srv.ListenAndServe() }
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Pocket Signal Pro API
// @version         1.0
// @description     Admin control surface for the signal bot, with OpenTelemetry tracing.

// @host      localhost:8080
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// User registry, mirrored to Postgres when a pool is available
	var mirror store.Mirror
	userRepo := newUserRepoFunc(db.Pool, tracer)
	if db.Pool != nil {
		mirror = userRepo
	}
	users := store.NewUserStore(mirror)
	if db.Pool != nil {
		seed, err := userRepo.ListUsers(ctx)
		if err != nil {
			log.Printf("failed to load users from Postgres: %v", err)
		} else {
			users.Seed(seed)
			log.Printf("Loaded %d users from Postgres", len(seed))
		}
	}

	// Selection state lives in Redis when available
	var sessions session.Store = session.NewMemoryStore()
	if cache.Client != nil {
		sessions = session.NewRedisStore(cache.Client, time.Duration(cfg.SessionTTLSecs)*time.Second)
	}

	admins := access.NewAdminSet(cfg.AdminChatIDs)
	flags := store.NewFeatureFlags(false)
	catalog := domain.DefaultCatalog()
	generator := signalgen.NewGenerator(cfg.MinConfidence, cfg.MaxConfidence, time.Now)

	policy, err := verify.ParsePolicy(cfg.VerifyPolicy)
	if err != nil {
		log.Printf("unsupported verify policy, using manual: %v", err)
		policy = verify.PolicyManual
	}

	dispatcher := bot.NewDispatcher(users)
	broker := verify.NewBroker()
	workflow := verify.NewWorkflow(users, admins, dispatcher, policy, broker, tracer)
	rt := router.New(users, sessions, admins, workflow, generator, catalog, flags, dispatcher, tracer)

	// Telegram transport
	renderer := bot.NewRenderer(cfg.RegisterLink, cfg.PromoCode, cfg.SupportUsername)
	charts := chart.NewRenderer()
	var botAdvisor bot.Advisor
	var tuiAdvisor tui.AdvisorQuerier
	if svc := newAdvisorFunc(); svc != nil {
		botAdvisor = svc
		tuiAdvisor = svc
	}

	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	b := startTelegramBotFunc(rt, renderer, charts, botAdvisor, dispatcher)
	defer func() {
		if b != nil {
			b.Stop()
		}
	}()

	// Background suggestion job (stopped by ctx cancel)
	poller := job.NewSuggestionPoller(tracer, flags, users, generator, catalog, dispatcher,
		time.Duration(cfg.SuggestionPollSecs)*time.Second)
	startPollerFunc(poller, ctx)

	// Admin HTTP API
	var httpSrv *http.Server
	if cfg.HTTPEnabled {
		h := handler.New(tracer, users, admins, workflow, flags, dispatcher, broker, cfg.APIAuthToken)

		r := newRouterFunc()
		r.Use(otelgin.Middleware("pocket-signal-pro"))
		r.Use(cors.Default())

		h.RegisterRoutes(r)
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

		httpSrv = &http.Server{
			Addr:    net.JoinHostPort(cfg.HTTPBind, fmt.Sprintf("%d", cfg.HTTPPort)),
			Handler: r,
		}
		go func() {
			if err := startHTTPServerFunc(httpSrv); err != nil && err != http.ErrServerClosed {
				log.Fatalf("listen: %s\n", err)
			}
		}()
	}

	// SSH admin terminal
	var sshSrv *ssh.Server
	if cfg.SSHEnabled {
		sshSrv, err = newSSHServerFunc(tui.SSHConfig{
			Bind:               cfg.SSHBind,
			Port:               cfg.SSHPort,
			HostKeyPath:        cfg.SSHHostKeyPath,
			AuthorizedKeysPath: cfg.SSHAuthorizedKeys,
		}, tui.Services{
			Users:     users,
			Promoter:  workflow,
			Advisor:   tuiAdvisor,
			Flags:     flags,
			Suggester: generator,
			Catalog:   catalog,
		})
		if err != nil {
			log.Fatalf("failed to build SSH server: %v", err)
		}
		go func() {
			if err := startSSHServerFunc(sshSrv); err != nil && err != ssh.ErrServerClosed {
				log.Printf("ssh server failed: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if sshSrv != nil {
		if err := sshSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("ssh server forced to shutdown: %v", err)
		}
	}
	if httpSrv != nil {
		if err := shutdownHTTPServerFunc(httpSrv, shutdownCtx); err != nil {
			log.Fatal("Server forced to shutdown:", err)
		}
	}

	log.Println("Server exiting")
}
