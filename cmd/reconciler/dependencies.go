package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/cerebulb/jjm-asset-reconciler/config"
	"github.com/cerebulb/jjm-asset-reconciler/internal/repositories/asset"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/artifacts"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/database"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/events"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/historian"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/reconcile"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/sessioncache"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/startup"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/telemetry"
)

// app owns the wired backends for one command invocation.
type app struct {
	cfg    *config.Config
	logger ectologger.Logger

	startup  *startup.Startup
	postgres *postgresDependency
	redis    *redisDependency
	mqtt     *mqttDependency
	producer *events.Producer
	engine   *reconcile.Engine
}

// bootstrap brings up every backend the requested stage needs and builds the
// engine. needsTelemetry is false for stages that never touch the broker.
func bootstrap(ctx context.Context, cfg *config.Config, logger ectologger.Logger, needsTelemetry bool) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		startup:  startup.NewStartup(logger, cfg.StartupMaxAttempts),
		postgres: &postgresDependency{cfg: cfg, logger: logger},
		redis:    &redisDependency{cfg: cfg, logger: logger},
	}
	a.startup.AddDependency(a.postgres)
	a.startup.AddDependency(a.redis)

	if needsTelemetry {
		a.mqtt = &mqttDependency{cfg: cfg, logger: logger}
		a.startup.AddDependency(a.mqtt)
	}

	if err := a.startup.Start(ctx); err != nil {
		return nil, err
	}

	var checker reconcile.TopicChecker
	if a.mqtt != nil {
		checker = telemetry.NewChecker(
			a.mqtt.subscriber,
			time.Duration(cfg.TopicCheckTimeoutSecond)*time.Second,
			logger,
		)
	}

	var emitter events.Emitter
	if cfg.KafkaProducerEnabled {
		a.producer = events.NewProducer(events.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		emitter = a.producer
	}

	tags := historian.NewClient(historian.Config{
		BaseURL:    cfg.PIWebAPIBaseURL,
		ServerName: cfg.PIServerName,
		Username:   cfg.PIWebAPIUsername,
		Password:   cfg.PIWebAPIPassword,
		Timeout:    time.Duration(cfg.PIWebAPITimeoutSeconds) * time.Second,
	}, logger)

	builder := artifacts.NewBuilder(artifacts.NewFilesystemStore(logger), artifacts.Paths{
		PunePressure: cfg.PunePressureDocPath,
		Pressure:     cfg.PressureDocPath,
		PuneTags:     cfg.PuneTagsDocPath,
		Tags:         cfg.TagsDocPath,
	}, logger)

	a.engine = reconcile.NewEngine(
		asset.NewRepository(a.postgres.db, logger),
		a.redis.store,
		checker,
		tags,
		builder,
		emitter,
		reconcile.Config{SessionTTL: cfg.SessionTTL},
		logger,
	)
	return a, nil
}

func (a *app) shutdown(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.WithError(err).Warn("kafka producer close failed")
		}
	}
	if err := a.startup.Stop(ctx); err != nil {
		a.logger.WithError(err).Warn("shutdown incomplete")
	}
}

type postgresDependency struct {
	cfg    *config.Config
	logger ectologger.Logger
	sqlxDB *sqlx.DB
	db     database.DB
}

func (d *postgresDependency) GetName() string { return "postgres" }
func (d *postgresDependency) DependsOn() []string { return nil }

func (d *postgresDependency) Start(ctx context.Context) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.cfg.DatabaseHost, d.cfg.DatabasePort, d.cfg.DatabaseUserName,
		d.cfg.DatabasePassword, d.cfg.DatabaseName, d.cfg.DatabaseSSLMode)

	sqlxDB, err := sqlx.ConnectContext(ctx, d.cfg.DatabaseDriver, dsn)
	if err != nil {
		return err
	}
	sqlxDB.SetMaxOpenConns(d.cfg.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(d.cfg.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(d.cfg.DatabaseConnMaxLifetime)

	d.sqlxDB = sqlxDB
	d.db = database.NewDatabaseInstance(sqlxDB, d.logger)
	return nil
}

func (d *postgresDependency) Stop(ctx context.Context) error {
	if d.sqlxDB == nil {
		return nil
	}
	return d.sqlxDB.Close()
}

// migrate applies pending schema migrations. Split out of Start so the
// pipeline commands connect without racing a concurrent migrate run.
func (d *postgresDependency) migrate() error {
	driver, err := migratepg.WithInstance(d.sqlxDB.DB, &migratepg.Config{})
	if err != nil {
		return err
	}
	service := database.NewMigrationService(d.logger, &database.MigrationConfig{
		MigrationFolderPath: d.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.cfg.DatabaseMigrationVersion),
	})
	return service.Migrate(d.cfg.DatabaseName, driver)
}

type redisDependency struct {
	cfg    *config.Config
	logger ectologger.Logger
	store  *sessioncache.RedisStore
}

func (d *redisDependency) GetName() string { return "redis" }
func (d *redisDependency) DependsOn() []string { return nil }

func (d *redisDependency) Start(ctx context.Context) error {
	store, err := sessioncache.NewRedisStore(sessioncache.RedisConfig{
		Host:     d.cfg.RedisHost,
		Port:     d.cfg.RedisPort,
		Password: d.cfg.RedisPassword,
		DB:       d.cfg.RedisDB,
	}, d.logger)
	if err != nil {
		return err
	}
	d.store = store
	return nil
}

func (d *redisDependency) Stop(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	return d.store.Close()
}

type mqttDependency struct {
	cfg        *config.Config
	logger     ectologger.Logger
	subscriber *telemetry.MQTTSubscriber
}

func (d *mqttDependency) GetName() string { return "mqtt" }
func (d *mqttDependency) DependsOn() []string { return nil }

func (d *mqttDependency) Start(ctx context.Context) error {
	subscriber, err := telemetry.NewMQTTSubscriber(telemetry.MQTTConfig{
		BrokerURL: d.cfg.MQTTBrokerURL,
		Username:  d.cfg.MQTTUsername,
		Password:  d.cfg.MQTTPassword,
		ClientID:  d.cfg.MQTTClientID,
	}, d.logger)
	if err != nil {
		return err
	}
	d.subscriber = subscriber
	return nil
}

func (d *mqttDependency) Stop(ctx context.Context) error {
	if d.subscriber != nil {
		d.subscriber.Close()
	}
	return nil
}
