package config

import (
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	AppName            string `env:"APP_NAME" env-default:"jjm-asset-reconciler"`
	LogLevel           string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs         bool   `env:"PRETTY_LOGS" env-default:"false"`
	StartupMaxAttempts int    `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// PostgreSQL (Asset Store)
	DatabaseDriver              string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                string        `env:"DB_HOST" env-default:"" validate:"required"`
	DatabasePort                string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:"" validate:"required"`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"jjm_assets"`
	DatabaseSSLMode             string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion    int           `env:"DB_MIGRATION_VERSION" env-default:"0"`

	// Redis (Session Cache)
	RedisHost     string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	// Session uploads expire after this long; finalize needs the validation
	// file uploaded within the window.
	SessionTTL time.Duration `env:"SESSION_TTL" env-default:"2h"`

	// MQTT (Topic Communication Check)
	MQTTBrokerURL           string `env:"MQTT_BROKER_URL" env-default:"tcp://localhost:1883" validate:"required"`
	MQTTUsername            string `env:"MQTT_USERNAME" env-default:""`
	MQTTPassword            string `env:"MQTT_PASSWORD" env-default:""`
	MQTTClientID            string `env:"MQTT_CLIENT_ID" env-default:""`
	TopicCheckTimeoutSecond int    `env:"TOPIC_CHECK_TIMEOUT_SECONDS" env-default:"60"`

	// PI Web API (Tag Provisioning)
	PIWebAPIBaseURL        string `env:"PI_WEB_API_BASE_URL" env-default:"" validate:"required,url"`
	PIServerName           string `env:"PI_SERVER_NAME" env-default:"" validate:"required"`
	PIWebAPIUsername       string `env:"PI_WEB_API_USERNAME" env-default:""`
	PIWebAPIPassword       string `env:"PI_WEB_API_PASSWORD" env-default:""`
	PIWebAPITimeoutSeconds int    `env:"PI_WEB_API_TIMEOUT_SECONDS" env-default:"30"`

	// Region mapping documents
	PunePressureDocPath string `env:"PUNE_PRESSURE_DOC_PATH" env-default:"artifacts/pune_pressure_topics.json"`
	PressureDocPath     string `env:"PRESSURE_DOC_PATH" env-default:"artifacts/pressure_topics.json"`
	PuneTagsDocPath     string `env:"PUNE_TAGS_DOC_PATH" env-default:"artifacts/pune_topic_tags.json"`
	TagsDocPath         string `env:"TAGS_DOC_PATH" env-default:"artifacts/topic_tags.json"`

	// Kafka Producer (status events)
	KafkaProducerEnabled bool     `env:"KAFKA_PRODUCER_ENABLED" env-default:"false"`
	KafkaBrokers         []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaOutputTopic     string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"asset-status-events"`
	KafkaBatchSize       int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout    int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks    int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression     string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Tracing
	TracingEnabled  bool   `env:"TRACING_ENABLED" env-default:"false"`
	TracingExporter string `env:"TRACING_EXPORTER" env-default:"otlp"`
	OTLPEndpoint    string `env:"OTLP_ENDPOINT" env-default:"localhost:4317"`
	OTLPProtocol    string `env:"OTLP_PROTOCOL" env-default:"grpc"`
	OTLPInsecure    bool   `env:"OTLP_INSECURE" env-default:"true"`
}

// Load binds environment variables onto a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := ectoenv.BindEnv(cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
