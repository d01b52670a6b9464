package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/Saloni021-kashyap/Tripkart/internal/auth"
	"github.com/Saloni021-kashyap/Tripkart/internal/cache"
	"github.com/Saloni021-kashyap/Tripkart/internal/config"
	"github.com/Saloni021-kashyap/Tripkart/internal/handler"
	"github.com/Saloni021-kashyap/Tripkart/internal/middleware"
	"github.com/Saloni021-kashyap/Tripkart/internal/notification"
	"github.com/Saloni021-kashyap/Tripkart/internal/repository"
	"github.com/Saloni021-kashyap/Tripkart/internal/repository/memstore"
	"github.com/Saloni021-kashyap/Tripkart/internal/repository/mongostore"
	"github.com/Saloni021-kashyap/Tripkart/internal/router"
	"github.com/Saloni021-kashyap/Tripkart/internal/scheduler"
	"github.com/Saloni021-kashyap/Tripkart/internal/service"
	"github.com/Saloni021-kashyap/Tripkart/internal/service/ports"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/logger"
	"go.mongodb.org/mongo-driver/mongo"
)

const migrationsDir = "migrations"

type App struct {
	cfg         *config.Config
	log         logger.Logger
	db          *dbpg.DB
	mongoClient *mongo.Client
	rdb         *redis.Client
	httpServer  *http.Server
	scheduler   *scheduler.Scheduler
}

type repos struct {
	listings ports.ListingRepo
	bookings ports.BookingRepo
	users    ports.UserRepo
}

func New(cfg *config.Config) (*App, error) {
	app := &App{cfg: cfg}

	log, err := logger.InitLogger(
		cfg.Logger.LogEngine(),
		"Tripkart",
		cfg.Gin.Mode,
		logger.WithLevel(cfg.Logger.LogLevel()),
	)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	app.log = log

	r, err := app.initStorage()
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	if err = app.initCache(&r); err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}

	if err = app.initServices(r); err != nil {
		return nil, fmt.Errorf("init services: %w", err)
	}

	return app, nil
}

func (a *App) initStorage() (repos, error) {
	switch a.cfg.Storage.Driver {
	case config.StoragePostgres:
		if err := a.runMigrations(); err != nil {
			return repos{}, fmt.Errorf("migrations: %w", err)
		}
		if err := a.initDB(); err != nil {
			return repos{}, err
		}
		return repos{
			listings: repository.NewListingRepo(a.db),
			bookings: repository.NewBookingRepo(a.db),
			users:    repository.NewUserRepo(a.db),
		}, nil

	case config.StorageMongo:
		ctx := context.Background()
		client, db, err := mongostore.Connect(ctx, a.cfg.Mongo.URI, a.cfg.Mongo.Database, a.cfg.Mongo.Timeout)
		if err != nil {
			return repos{}, fmt.Errorf("connecting to mongo: %w", err)
		}
		a.mongoClient = client

		if err = mongostore.EnsureIndexes(ctx, db); err != nil {
			return repos{}, fmt.Errorf("mongo indexes: %w", err)
		}

		a.log.LogAttrs(ctx, logger.InfoLevel, "mongo connected",
			logger.String("database", a.cfg.Mongo.Database),
		)
		return repos{
			listings: mongostore.NewListingRepo(db),
			bookings: mongostore.NewBookingRepo(db),
			users:    mongostore.NewUserRepo(db),
		}, nil

	case config.StorageMemory:
		a.log.Warn("using in-memory storage, data is lost on restart")
		return repos{
			listings: memstore.NewListingRepo(),
			bookings: memstore.NewBookingRepo(),
			users:    memstore.NewUserRepo(),
		}, nil
	}

	return repos{}, fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
}

func (a *App) initDB() error {
	db, err := dbpg.New(
		a.cfg.Postgres.DSN(),
		nil,
		&dbpg.Options{
			MaxOpenConns: a.cfg.Postgres.MaxOpenConns,
			MaxIdleConns: a.cfg.Postgres.MaxIdleConns,
		},
	)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.Master.PingContext(context.Background()); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	db.Master.SetConnMaxLifetime(a.cfg.Postgres.ConnMaxLifetime)

	a.db = db
	a.log.LogAttrs(context.Background(), logger.InfoLevel, "database connected",
		logger.String("host", a.cfg.Postgres.Host),
		logger.Int("port", a.cfg.Postgres.Port),
		logger.String("database", a.cfg.Postgres.Database),
	)

	return nil
}

// initCache puts the redis read-through cache in front of the listing
// repository when enabled.
func (a *App) initCache(r *repos) error {
	if !a.cfg.Redis.Enabled {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("pinging redis: %w", err)
	}

	a.rdb = rdb
	r.listings = cache.NewListingRepo(r.listings, rdb, a.cfg.Redis.ListingTTL, a.log)
	a.log.LogAttrs(context.Background(), logger.InfoLevel, "listing cache enabled",
		logger.String("addr", a.cfg.Redis.Addr),
		logger.Duration("ttl", a.cfg.Redis.ListingTTL),
	)
	return nil
}

func (a *App) initServices(r repos) error {
	n, err := notification.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.log)
	if err != nil {
		return fmt.Errorf("init notifier: %w", err)
	}

	tokens := auth.NewTokenManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)
	hasher := auth.NewHasher(a.cfg.Auth.BcryptCost)

	listingService := service.NewListingService(
		r.listings,
		r.bookings,
		service.DeletePolicy(a.cfg.Listing.OnDelete),
		a.log,
	)
	userService := service.NewUserService(r.users, hasher, tokens, a.cfg.Auth.AdminSecret)
	bookingService := service.NewBookingService(
		r.bookings,
		r.listings,
		r.users,
		n,
		service.BookingPolicy{AllowGuest: a.cfg.Booking.AllowGuest},
		a.log,
	)

	a.scheduler = scheduler.New(
		listingService,
		a.cfg.Scheduler.AuditInterval,
		a.log,
	)

	h := handler.NewHandler(listingService, bookingService, userService)
	engine := router.InitRouter(
		a.cfg.Gin.Mode,
		h,
		tokens,
		middleware.RequestID(),
		middleware.RequestLogger(a.log),
		middleware.Recovery(a.log),
	)

	a.httpServer = &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	return nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.scheduler.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.log.LogAttrs(ctx, logger.InfoLevel, "HTTP server starting",
			logger.String("addr", a.httpServer.Addr),
			logger.String("storage", a.cfg.Storage.Driver),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.log.LogAttrs(context.Background(), logger.InfoLevel, "shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	a.log.LogAttrs(context.Background(), logger.InfoLevel, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		a.cfg.Server.WriteTimeout,
	)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	a.log.LogAttrs(context.Background(), logger.InfoLevel, "HTTP server stopped")

	var errs []error
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongo: %w", err))
		}
	}
	if a.db != nil {
		if err := a.db.Master.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.log.LogAttrs(context.Background(), logger.InfoLevel, "storage connections closed")

	a.log.LogAttrs(context.Background(), logger.InfoLevel, "app stopped")

	return nil
}

func (a *App) runMigrations() error {
	db, err := sql.Open("postgres", a.cfg.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	a.log.Info("migrations applied successfully")
	return nil
}
