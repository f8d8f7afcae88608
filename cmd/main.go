package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pezu/servio/internal/adapter/logger"
	"github.com/Pezu/servio/internal/adapter/postgres"
	"github.com/Pezu/servio/internal/adapter/rabbitmq"
	"github.com/Pezu/servio/internal/app/kitchen"
	"github.com/Pezu/servio/internal/app/notify"
	"github.com/Pezu/servio/internal/app/order"
	"github.com/Pezu/servio/internal/app/tracking"
	"github.com/Pezu/servio/internal/config"
	"github.com/Pezu/servio/internal/interfaces"
	"golang.org/x/sync/errgroup"

	amqpAdapter "github.com/Pezu/servio/internal/adapter/amqp"
	httpAdapter "github.com/Pezu/servio/internal/adapter/http"
	sqsAdapter "github.com/Pezu/servio/internal/adapter/sqs"
)

func main() {
	// Parse command-line flags
	mode := flag.String("mode", "api", "Service mode: api, cancel-listener, notification-subscriber")
	configPath := flag.String("config", "config.yaml", "Path to the YAML config")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	// Initialize logger
	lgr := logger.NewWithWriter(*mode, cfg.Log.Level, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Route to appropriate service
	switch *mode {
	case "api":
		err = runAPI(ctx, cfg, lgr)
	case "cancel-listener":
		err = runCancelListener(ctx, cfg, lgr)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, lgr)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		lgr.Error("service_failed", "Service stopped with error", "runtime", nil, err)
		os.Exit(1)
	}
	lgr.Info("service_stopped", "Service stopped", "shutdown", nil)
}

func connectPostgres(ctx context.Context, cfg *config.Config, lgr logger.Logger) (postgres.DB, error) {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})
	return db, nil
}

func connectRabbitMQ(cfg *config.Config, lgr logger.Logger) (rabbitmq.Connection, error) {
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return nil, err
	}

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})
	return mqConn, nil
}

// newFanout picks the item-cancellation transport configured in fanout.driver.
func newFanout(ctx context.Context, cfg *config.Config, mqConn rabbitmq.Connection, lgr logger.Logger) (interfaces.CancellationPublisher, interfaces.CancellationConsumer, error) {
	if cfg.Fanout.Driver == config.FanoutDriverSQS {
		client, err := sqsAdapter.NewClient(ctx, cfg.Fanout.Region)
		if err != nil {
			return nil, nil, err
		}
		lgr.Info("fanout_selected", "Item cancellations go through SQS", "startup", map[string]interface{}{
			"queue_url": cfg.Fanout.QueueURL,
		})
		return sqsAdapter.NewPublisher(client, cfg.Fanout.QueueURL), sqsAdapter.NewConsumer(client, cfg.Fanout.QueueURL, lgr), nil
	}

	lgr.Info("fanout_selected", "Item cancellations go through RabbitMQ", "startup", map[string]interface{}{
		"exchange": cfg.Fanout.Topic,
	})
	return rabbitmq.NewCancellationPublisher(mqConn, cfg.Fanout.Topic),
		rabbitmq.NewConsumer(mqConn, cfg.RabbitMQ.Prefetch, cfg.Fanout.Topic, lgr), nil
}

func runAPI(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	db, err := connectPostgres(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer db.Close()

	mqConn, err := connectRabbitMQ(cfg, lgr)
	if err != nil {
		return err
	}
	defer mqConn.Close()

	cancellations, cancelConsumer, err := newFanout(ctx, cfg, mqConn, lgr)
	if err != nil {
		return err
	}

	// Initialize repositories and services
	orderRepo := postgres.NewOrderRepository(db)
	dispatcher := notify.NewDispatcher(rabbitmq.NewNotificationPublisher(mqConn), cancellations, lgr)

	router := httpAdapter.NewRouter(
		order.NewService(orderRepo, dispatcher, lgr),
		kitchen.NewService(orderRepo, dispatcher, lgr),
		tracking.NewService(orderRepo, lgr),
		lgr,
	)
	cancelHandler := amqpAdapter.NewCancelHandler(orderRepo, lgr)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lgr.Info("service_started", fmt.Sprintf("API started on port %d", cfg.HTTP.Port), "startup", map[string]interface{}{
			"port": cfg.HTTP.Port,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		lgr.Info("shutdown_initiated", "Shutting down API", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return cancelConsumer.ConsumeCancellations(gctx, cancelHandler.HandleCancellation)
	})

	return g.Wait()
}

func runCancelListener(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	db, err := connectPostgres(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer db.Close()

	mqConn, err := connectRabbitMQ(cfg, lgr)
	if err != nil {
		return err
	}
	defer mqConn.Close()

	_, consumer, err := newFanout(ctx, cfg, mqConn, lgr)
	if err != nil {
		return err
	}

	handler := amqpAdapter.NewCancelHandler(postgres.NewOrderRepository(db), lgr)

	lgr.Info("service_started", "Cancel listener started", "startup", nil)
	return consumer.ConsumeCancellations(ctx, handler.HandleCancellation)
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	mqConn, err := connectRabbitMQ(cfg, lgr)
	if err != nil {
		return err
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, cfg.RabbitMQ.Prefetch, cfg.Fanout.Topic, lgr)
	handler := amqpAdapter.NewNotificationHandler(lgr, os.Stdout)

	lgr.Info("service_started", "Notification Subscriber started", "startup", nil)
	return consumer.ConsumeNotifications(ctx, handler.HandleNotification)
}
