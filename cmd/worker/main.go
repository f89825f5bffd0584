package main // entry point of the reservation worker and its task API

import (
    "context"
    "errors"
    "log"
    "log/slog"
    "net/http"
    "os"
    "os/signal"
    "syscall"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    "go.temporal.io/sdk/client"
    tlog "go.temporal.io/sdk/log"

    "github.com/iliyamo/bus-seat-reservation/internal/config"
    "github.com/iliyamo/bus-seat-reservation/internal/database"
    "github.com/iliyamo/bus-seat-reservation/internal/handler"
    "github.com/iliyamo/bus-seat-reservation/internal/middleware"
    "github.com/iliyamo/bus-seat-reservation/internal/queue"
    "github.com/iliyamo/bus-seat-reservation/internal/repository"
    "github.com/iliyamo/bus-seat-reservation/internal/router"
    "github.com/iliyamo/bus-seat-reservation/internal/service"
    "github.com/iliyamo/bus-seat-reservation/internal/sheets"
    "github.com/iliyamo/bus-seat-reservation/internal/tasks"
    "github.com/iliyamo/bus-seat-reservation/internal/worker"
)

func main() {
    // .env is optional; real environment variables win.
    _ = godotenv.Load()
    cfg := config.Load()

    level := slog.LevelInfo
    if cfg.Env == "dev" {
        level = slog.LevelDebug
    }
    logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
    slog.SetDefault(logger)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    c, err := client.Dial(client.Options{
        HostPort:  cfg.Temporal.Address,
        Namespace: cfg.Temporal.Namespace,
        Logger:    tlog.NewStructuredLogger(logger),
    })
    if err != nil {
        log.Fatalf("temporal dial: %v", err)
    }
    defer c.Close()

    gw, err := sheets.NewGateway(sheets.Config{
        SpreadsheetID: cfg.Sheets.SpreadsheetID,
        TableRange:    cfg.Sheets.TableRange,
        AppendRange:   cfg.Sheets.AppendRange,
        SeatsCell:     cfg.Sheets.SeatsCell,
        SeatNoRange:   cfg.Sheets.SeatNoRange,
    }, sheets.ServiceDialer(credentialProvider(cfg.Sheets, logger), cfg.Sheets.ApplicationName), logger)
    if err != nil {
        log.Fatalf("sheets gateway: %v", err)
    }

    store, closeStore := openStore(ctx, cfg)
    defer closeStore()

    var publisher tasks.Publisher = tasks.NopPublisher{}
    if cfg.RabbitURL != "" {
        qp := service.NewQueuePublisher(cfg.RabbitURL)
        defer qp.Close()
        publisher = qp
        go func() {
            if err := queue.StartEventConsumer(ctx, cfg.RabbitURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
                log.Printf("event consumer stopped: %v", err)
            }
        }()
    } else {
        log.Printf("RABBITMQ_URL not set; events are not published")
    }

    b := worker.New(c, cfg.Temporal, &sheets.Activities{Gateway: gw}, tasks.NewActivities(store, publisher, logger), logger)
    if err := b.Start(); err != nil {
        log.Fatalf("worker start: %v", err)
    }

    rdb := config.NewRedisClient(config.LoadRedisConfig())
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting disabled")
    } else {
        defer rdb.Close()
    }

    e := echo.New()
    e.HideBanner = true
    router.RegisterRoutes(e)
    router.RegisterTasks(e,
        handler.NewTaskHandler(tasks.NewService(store, c, publisher, logger)),
        handler.NewProcessHandler(c, cfg.Temporal.TaskQueue),
        cfg.JWTSecret,
        middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
    )

    addr := ":" + cfg.Port
    go func() {
        log.Printf("listening on %s (env=%s)", addr, cfg.Env)
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Printf("http server: %v", err)
            stop()
        }
    }()

    <-ctx.Done()
    log.Printf("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Temporal.ShutdownGrace)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Printf("http shutdown: %v", err)
    }
    b.Stop()
}

func credentialProvider(cfg config.SheetsConfig, logger *slog.Logger) sheets.CredentialProvider {
    switch cfg.Auth {
    case "default":
        return sheets.DefaultProvider{}
    case "installed":
        return &sheets.InstalledAppProvider{
            CredentialsFile: cfg.CredentialsFile,
            TokensDir:       cfg.TokensDir,
            Port:            cfg.OAuthPort,
            Logger:          logger,
        }
    default:
        log.Fatalf("invalid SHEETS_AUTH: %q", cfg.Auth)
        return nil
    }
}

// openStore returns the configured task store and a function releasing it.
func openStore(ctx context.Context, cfg config.Config) (tasks.Store, func()) {
    if cfg.TaskStore == config.TaskStoreMemory {
        log.Printf("using in-memory task store; tasks are lost on restart")
        return tasks.NewMemoryStore(), func() {}
    }
    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    if err := database.EnsureSchema(ctx, db); err != nil {
        _ = db.Close()
        log.Fatalf("database schema: %v", err)
    }
    return repository.NewTaskRepo(db), func() { _ = db.Close() }
}
