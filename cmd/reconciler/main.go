// Package main provides the reconciler CLI entry point. It runs the three
// pipeline stages (ingest, validate, finalize) against workbook files using
// the configured Postgres, Redis, MQTT, PI Web API and Kafka backends.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/cerebulb/jjm-asset-reconciler/config"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing/exporters"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := setupTracing(ctx, cfg)
	if err != nil {
		logger.WithError(err).Warn("tracing setup failed, continuing without tracing")
	} else {
		defer shutdownTracing(context.Background())
	}

	rootCmd := &cobra.Command{
		Use:           "reconciler",
		Short:         "Reservoir asset reconciliation pipeline",
		Long:          "Runs the reservoir asset reconciliation stages: ingest master metadata,\nvalidate a verification upload, and finalize statuses from live telemetry.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newIngestCmd(cfg, logger))
	rootCmd.AddCommand(newValidateCmd(cfg, logger))
	rootCmd.AddCommand(newFinalizeCmd(cfg, logger))
	rootCmd.AddCommand(newMigrateCmd(cfg, logger))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		zapLogger = zap.NewNop()
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func setupTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.TracingEnabled {
		tp := sdktrace.NewTracerProvider()
		tracing.SetTracer(tp.Tracer(cfg.AppName))
		return tp.Shutdown, nil
	}

	var exporter sdktrace.SpanExporter
	switch cfg.TracingExporter {
	case "console":
		exporter = exporters.NewConsoleExporter(os.Stdout)
	default:
		var err error
		exporter, err = exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.OTLPEndpoint,
			Protocol: cfg.OTLPProtocol,
			Insecure: cfg.OTLPInsecure,
		})
		if err != nil {
			return nil, err
		}
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))
	return tp.Shutdown, nil
}
