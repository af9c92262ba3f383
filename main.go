package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wavvly/internal/config"
	"wavvly/internal/db"
	"wavvly/internal/repositories"
	"wavvly/internal/server"
	"wavvly/pkg/logger"
	"wavvly/pkg/rabbitmq"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const VERSION = "1.0.0"

const shutdownTimeout = 10 * time.Second

var cfg config.Config

var debugFlag = &cli.BoolFlag{
	Name:    "debug",
	Usage:   "Log every SQL statement",
	Sources: cli.EnvVars("DB_DEBUG"),
}

var cmd = &cli.Command{
	Name:    "wavvly",
	Usage:   "Wavvly social network API",
	Version: VERSION,
	Flags:   []cli.Flag{debugFlag},
	Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
		loaded, err := config.Load()
		if err != nil {
			return ctx, err
		}
		cfg = loaded
		if err := cfg.Validate(); err != nil {
			return ctx, err
		}
		if err := logger.Init(cfg.Env); err != nil {
			return ctx, err
		}
		return ctx, nil
	},
	After: func(ctx context.Context, c *cli.Command) error {
		logger.Sync()
		return nil
	},
	Commands: []*cli.Command{
		{
			Name:   "serve",
			Usage:  "Run the HTTP API",
			Action: serve,
		},
		{
			Name:  "migrate",
			Usage: "Create tables or indexes for the configured store",
			Action: func(ctx context.Context, c *cli.Command) error {
				_, closeStore, err := openStore(ctx, c.Bool("debug"))
				if err != nil {
					return err
				}
				defer closeStore()
				logger.Get().Info("store migrated", zap.String("driver", cfg.StoreDriver))
				return nil
			},
		},
		{
			Name:  "seed",
			Usage: "Create demo users, follows and posts",
			Action: func(ctx context.Context, c *cli.Command) error {
				store, closeStore, err := openStore(ctx, c.Bool("debug"))
				if err != nil {
					return err
				}
				defer closeStore()
				return seed(ctx, store)
			},
		},
	},
	DefaultCommand: "serve",
}

func main() {
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore connects the configured backend and brings its schema up to
// date. The returned func releases every connection.
func openStore(ctx context.Context, debug bool) (*repositories.Store, func(), error) {
	log := logger.Get()

	switch cfg.StoreDriver {
	case config.DriverPostgres, config.DriverSQLite:
		database, err := db.OpenGorm(cfg.StoreDriver, cfg.DatabaseDSN, debug)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(database); err != nil {
			_ = db.CloseGorm(database)
			return nil, nil, err
		}
		log.Info("connected to SQL store", zap.String("driver", cfg.StoreDriver))
		return repositories.NewGORMStore(database), func() {
			if err := db.CloseGorm(database); err != nil {
				log.Warn("failed to close database", zap.Error(err))
			}
		}, nil

	case config.DriverMongo:
		client, database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.EnsureMongoIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}

		redisClient, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		var locker repositories.PairLocker = repositories.NewLocalPairLocker()
		if redisClient != nil {
			locker = repositories.NewRedisPairLocker(redisClient)
		} else {
			log.Warn("REDIS_ADDR not set, follow locks are local to this process")
		}

		log.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))
		return repositories.NewMongoStore(database, locker), func() {
			if redisClient != nil {
				_ = redisClient.Close()
			}
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn("failed to disconnect MongoDB", zap.Error(err))
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func serve(ctx context.Context, c *cli.Command) error {
	log := logger.Get()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, c.Bool("debug"))
	if err != nil {
		return err
	}
	defer closeStore()

	deps := server.Deps{Store: store}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return err
		}
		defer mqClient.Close()

		if err := mqClient.ConsumeNotificationEvents(rabbitmq.LogNotificationMessage(logger.Named("notifications"))); err != nil {
			log.Error("failed to start RabbitMQ consumer", zap.Error(err))
		}
		deps.Publisher = mqClient
	} else {
		log.Info("RABBITMQ_URL not set, notification events are not published")
	}

	s := server.NewServer(cfg, deps)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		listenErr <- s.App.Listen(cfg.Port)
	}()

	// Wait for interrupt signal to gracefully shut down the server
	select {
	case err := <-listenErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := s.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
	return nil
}
