package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samims/sitepulse/internal/config"
	"github.com/samims/sitepulse/internal/handler"
	"github.com/samims/sitepulse/internal/kafka"
	"github.com/samims/sitepulse/internal/metrics"
	"github.com/samims/sitepulse/internal/notify"
	"github.com/samims/sitepulse/internal/router"
	"github.com/samims/sitepulse/internal/service"
	"github.com/samims/sitepulse/pkg/observability"
	"github.com/samims/sitepulse/pkg/tracing"
)

// serve runs the HTTP API and, with Kafka configured, the alert consumer
// until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, l *slog.Logger) error {
	metrics.Init()

	// ---- OpenTelemetry Tracing Setup ----
	observability.SetPropagator()
	if cfg.OTLPEndpoint != "" {
		tracerShutdown, err := observability.NewTracerProvider(ctx, observability.TracingConfig{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Environment:    cfg.Environment,
			Endpoint:       cfg.OTLPEndpoint,
			SampleRatio:    cfg.OTLPSampleRatio,
		}, l)
		if err != nil {
			return err
		}
		defer tracerShutdown()
	}

	deps, err := openCore(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer deps.close()
	store, settingsSvc, api := deps.store, deps.settings, deps.api

	var deliverer notify.Deliverer = notify.NewLogDeliverer(l)
	if cfg.SMTPAddr != "" {
		deliverer = notify.NewSMTPDeliverer(notify.SMTPConfig{
			Addr:     cfg.SMTPAddr,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, nil, l)
	}
	alertSvc := service.NewAlertService(settingsSvc, deliverer, cfg.AlertWorkers, cfg.AlertCooldown, l)

	// failed checks reach the alert service through Kafka when brokers are
	// configured, in-process otherwise
	var publisher kafka.EventPublisher
	var consumer *kafka.Consumer
	if cfg.KafkaEnabled() {
		asyncProducer, err := kafka.NewAsyncProducer(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		publisher = kafka.NewProducer(asyncProducer, cfg.KafkaCheckTopic, l, tracing.NewTracer(tracing.GetTracer("check-events")))

		group, err := kafka.NewConsumerGroup(cfg.KafkaBrokers, cfg.KafkaConsumerGroup)
		if err != nil {
			return err
		}
		consumer = kafka.NewConsumer(cfg.KafkaCheckTopic, group, alertSvc, l)
		l.Info("Publishing check events", slog.String("topic", cfg.KafkaCheckTopic))
	} else {
		publisher = kafka.NewInlinePublisher(alertSvc, l)
	}
	publisher.Start(ctx)

	monitorSvc := service.NewMonitorService(api, l)
	handlers := router.Handlers{
		Checks:      handler.NewCheckHandler(service.NewHealthCheckService(api, settingsSvc, publisher, cfg.MonitoringURLOverride, l), l),
		Monitors:    handler.NewMonitorHandler(monitorSvc, l),
		Channels:    handler.NewChannelHandler(service.NewChannelService(api, l), l),
		StatusPages: handler.NewStatusPageHandler(service.NewStatusPageService(api, l), l),
		Regions:     handler.NewRegionHandler(service.NewRegionService(api, l), l),
		Settings:    handler.NewSettingsHandler(settingsSvc, monitorSvc, cfg.MonitoringURLOverride, l),
		Health:      handler.NewHealthHandler(service.NewHealthService(store, l), l),
	}

	r := router.NewRouter(handlers, router.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AdminJWTSecret: cfg.AdminJWTSecret,
		// leave room for the upstream call to time out first
		RequestTimeout: cfg.UpstreamTimeout + 5*time.Second,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		l.Info("Server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if consumer != nil {
		eg.Go(func() error {
			return consumer.Start(egCtx)
		})
	}
	eg.Go(func() error {
		<-egCtx.Done()
		l.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		publisher.Close(shutdownCtx)
		if err != nil {
			l.Error("Shutdown failed", "err", err)
			return err
		}
		l.Info("Server exited cleanly")
		return nil
	})

	return eg.Wait()
}
