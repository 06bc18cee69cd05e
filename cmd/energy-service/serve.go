package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"energy-service/internal/analytics"
	"energy-service/internal/cache"
	"energy-service/internal/config"
	"energy-service/internal/publisher"
	"energy-service/internal/report"
	"energy-service/internal/server"
	"energy-service/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API. The result cache (Redis) and the MQTT and AMQP
publishers are connected when configured.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	opts := service.Options{
		Repo:     db,
		Engine:   analytics.NewEngine(cfg.Policy, nil),
		Tracker:  analytics.NewTracker(cfg.Analytics.WindowSize),
		Accounts: accounts(cfg),
		Logger:   logger,
	}

	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cache.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			TTL:         cfg.Redis.ResultTTL,
			RecentLimit: cfg.Redis.RecentLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisClient.Close()
		opts.Cache = redisClient
		logger.Info("Result cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	pub, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	if pub != nil {
		defer pub.Close()
		opts.Publisher = pub
	}

	srv := server.NewServer(server.Options{
		Service:         service.New(opts),
		Charts:          report.NewChartGenerator(),
		Logger:          logger,
		CORSOrigins:     cfg.Server.CORSOrigins,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	return srv.Run(ctx, cfg.Server.Addr)
}

// newPublisher returns nil when no broker is configured.
func newPublisher(cfg *config.Config, logger *zap.Logger) (publisher.Publisher, error) {
	var fanout publisher.Fanout

	if cfg.MQTT.Enabled {
		p, err := publisher.NewMQTT(publisher.MQTTConfig{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			QoS:         cfg.MQTT.QoS,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		fanout = append(fanout, p)
		logger.Info("MQTT publishing enabled", zap.String("broker", cfg.MQTT.Broker))
	}

	if cfg.AMQP.Enabled {
		p, err := publisher.NewAMQP(publisher.AMQPConfig{
			URL:      cfg.AMQP.URL,
			Exchange: cfg.AMQP.Exchange,
		})
		if err != nil {
			fanout.Close()
			return nil, fmt.Errorf("connecting to AMQP: %w", err)
		}
		fanout = append(fanout, p)
		logger.Info("AMQP publishing enabled", zap.String("exchange", cfg.AMQP.Exchange))
	}

	if len(fanout) == 0 {
		return nil, nil
	}
	return fanout, nil
}

func accounts(cfg *config.Config) []service.Account {
	out := make([]service.Account, 0, len(cfg.Users))
	for _, u := range cfg.Users {
		out = append(out, service.Account{Username: u.Username, Password: u.Password, OwnerID: u.OwnerID})
	}
	return out
}
