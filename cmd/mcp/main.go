package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"pocket-signal-pro/internal/access"
	"pocket-signal-pro/internal/bot"
	"pocket-signal-pro/internal/cache"
	"pocket-signal-pro/internal/chart"
	"pocket-signal-pro/internal/config"
	"pocket-signal-pro/internal/db"
	"pocket-signal-pro/internal/domain"
	mcpserver "pocket-signal-pro/internal/mcp"
	"pocket-signal-pro/internal/repository"
	"pocket-signal-pro/internal/router"
	"pocket-signal-pro/internal/session"
	"pocket-signal-pro/internal/signalgen"
	"pocket-signal-pro/internal/store"
	"pocket-signal-pro/internal/verify"
	"pocket-signal-pro/pkg/tracing"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultMCPHTTPMaxBodyBytes int64 = 1 << 20 // 1MiB

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	initPostgresFunc     = db.InitPostgres
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	newUserRepoFunc      = repository.NewUserRepository
	newMCPServerFunc     = mcpserver.NewServer
	newMCPHandlerFunc    = mcpserver.NewHTTPTransportHandler
	startTelegramBotFunc = bot.StartTelegramBot
	runStdioFunc         = func(ctx context.Context, server *sdkmcp.Server) error {
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	}
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFn = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

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
		}
	}

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

	// The MCP process runs its own bot connection so user notifications
	// and broadcasts triggered by tools are actually delivered.
	dispatcher := bot.NewDispatcher(users)
	broker := verify.NewBroker()
	workflow := verify.NewWorkflow(users, admins, dispatcher, policy, broker, tracer)
	rt := router.New(users, sessions, admins, workflow, generator, catalog, flags, dispatcher, tracer)

	renderer := bot.NewRenderer(cfg.RegisterLink, cfg.PromoCode, cfg.SupportUsername)
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	b := startTelegramBotFunc(rt, renderer, chart.NewRenderer(), nil, dispatcher)
	defer func() {
		if b != nil {
			b.Stop()
		}
	}()

	mcpSrv := newMCPServerFunc(tracer, mcpserver.Deps{
		Users:       users,
		Promoter:    workflow,
		Broadcaster: dispatcher,
		Suggester:   generator,
		Flags:       flags,
		Catalog:     catalog,
	}, mcpserver.ServerConfig{
		RequestTimeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
	})

	transport := strings.ToLower(strings.TrimSpace(cfg.MCPTransport))
	switch transport {
	case "", "stdio":
		if err := runStdioFunc(ctx, mcpSrv); err != nil {
			log.Fatalf("mcp stdio server failed: %v", err)
		}
	case "http":
		if err := runHTTPMode(ctx, cancel, cfg, mcpSrv); err != nil {
			log.Fatalf("mcp http server failed: %v", err)
		}
	default:
		log.Fatalf("unsupported MCP_TRANSPORT: %s", cfg.MCPTransport)
	}
}

func runHTTPMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, mcpSrv *sdkmcp.Server) error {
	if !cfg.MCPHTTPEnabled {
		return fmt.Errorf("MCP_HTTP_ENABLED must be true when MCP_TRANSPORT=http")
	}
	if strings.TrimSpace(cfg.MCPAuthToken) == "" {
		return fmt.Errorf("MCP_AUTH_TOKEN is required when MCP_TRANSPORT=http")
	}

	handler := newMCPHandlerFunc(mcpSrv, mcpserver.HTTPHandlerConfig{
		AuthToken:       cfg.MCPAuthToken,
		RateLimitPerMin: cfg.MCPRateLimitPerMin,
		MaxBodyBytes:    defaultMCPHTTPMaxBodyBytes,
	})

	addr := net.JoinHostPort(cfg.MCPHTTPBind, fmt.Sprintf("%d", cfg.MCPHTTPPort))
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Printf("mcp http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFn(srv, shutdownCtx); err != nil {
		return fmt.Errorf("mcp server forced to shutdown: %w", err)
	}
	return nil
}
