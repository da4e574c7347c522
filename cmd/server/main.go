package main // Entry point package

import (
	"context"
	"errors"
	"io/fs"
	"log" // Logging library
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"

	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/config" // Internal config loader
	"github.com/iliyamo/railway-ticketing/internal/database"
	"github.com/iliyamo/railway-ticketing/internal/handler"
	"github.com/iliyamo/railway-ticketing/internal/middleware"
	"github.com/iliyamo/railway-ticketing/internal/queue"
	"github.com/iliyamo/railway-ticketing/internal/repository"
	"github.com/iliyamo/railway-ticketing/internal/repository/memstore"
	"github.com/iliyamo/railway-ticketing/internal/repository/sqlitestore"
	"github.com/iliyamo/railway-ticketing/internal/router" // Internal router setup
	"github.com/iliyamo/railway-ticketing/internal/service"
	"github.com/iliyamo/railway-ticketing/internal/station"
)

func main() {
	envFile := pflag.String("env-file", ".env", "file with environment variables to load before reading config")
	backend := pflag.String("backend", "", "storage backend: memory, sqlite or mysql (overrides STORE_BACKEND)")
	stations := pflag.String("stations", "", "station directory YAML (overrides STATIONS_FILE)")
	pflag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: loading %s: %v", *envFile, err)
	}
	cfg := config.Load(*backend) // Load environment config
	if *stations != "" {
		cfg.StationsFile = *stations
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	engineCfg := config.LoadEngineConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer func() {
		if store.Close != nil {
			_ = store.Close()
		}
	}()

	dir, err := station.Load(cfg.StationsFile, engineCfg.MaxStations)
	if err != nil {
		log.Fatalf("stations: %v", err)
	}

	users := service.NewUserService(store.Users, cfg.BcryptCost, engineCfg.AdminPrivilege)
	if err := users.EnsureAdmin(ctx, cfg.AdminPassword); err != nil {
		log.Fatalf("users: %v", err)
	}

	engine := booking.NewEngine(engineCfg, store, service.NewPublisher(cfg.AMQPURL))
	if err := engine.Restore(ctx); err != nil {
		log.Fatalf("booking: restore: %v", err)
	}

	rdb := config.NewRedisClient()
	cacheCfg := config.LoadCacheConfig()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover(), echomw.Logger())

	trains := &handler.TrainHandler{
		Engine: engine,
		Dir:    dir,
		OnTrainAdded: func(ctx context.Context) {
			n, err := middleware.PurgeCache(ctx, rdb, cacheCfg.Prefix)
			if err != nil {
				log.Printf("cache: purge after new train: %v", err)
				return
			}
			if n > 0 {
				log.Printf("cache: purged %d route answer(s)", n)
			}
		},
	}
	tickets := &handler.TicketHandler{Engine: engine, Dir: dir}

	router.RegisterRoutes(e, &handler.HealthHandler{Engine: engine})
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, store.Tokens), cfg.JWTSecret)
	router.RegisterPublic(e, tickets, &handler.RouteHandler{Engine: engine, Dir: dir},
		&handler.StationHandler{Dir: dir}, middleware.NewRouteCache(cacheCfg, rdb))
	router.RegisterCustomer(e, tickets, &handler.UserHandler{Users: users}, cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterAdmin(e, trains, cfg.JWTSecret, engineCfg.AdminPrivilege)

	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartTripConsumer(ctx, cfg.AMQPURL, cfg.TripLogPath); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("trip-consumer: stopped: %v", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, backend=%s)", addr, cfg.Env, cfg.Backend)
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err) // Log and exit if server fails
	}
}

// openBackend opens the configured store.  The mysql schema is created on
// first start; the sqlite schema is applied by OpenSQLite.
func openBackend(ctx context.Context, cfg config.Config) (*repository.Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, err
		}
		pool, err := database.OpenSQLite(ctx, cfg.SQLitePath, 4)
		if err != nil {
			return nil, err
		}
		return sqlitestore.New(pool), nil
	case config.BackendMySQL:
		db, err := database.OpenMySQL(ctx, database.MySQLOptions{
			User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		})
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return repository.NewMySQLBackend(db), nil
	}
	log.Printf("store: using in-memory backend; data is lost on exit")
	return memstore.New(), nil
}
