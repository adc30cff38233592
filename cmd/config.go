package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const defaultEnvFile = ".env"

type Config struct {
	HTTPPort   string `env:"HTTP_PORT" envDefault:"8080"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"fleet"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaEventsTopic string   `env:"KAFKA_EVENTS_TOPIC" envDefault:"fleet.events"`

	AssignmentTTL       time.Duration `env:"ASSIGNMENT_TTL" envDefault:"24h"`
	ExpirySweepSchedule string        `env:"EXPIRY_SWEEP_SCHEDULE" envDefault:"@every 5m"`
	ExpirySweepBatch    int           `env:"EXPIRY_SWEEP_BATCH" envDefault:"100"`
	SideEffectsAsync    bool          `env:"SIDE_EFFECTS_ASYNC" envDefault:"true"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"`
}

// LoadConfig reads configuration in order: env file, process environment,
// then flags. A missing default .env is fine; a missing --env-file is not.
func LoadConfig(args []string) (Config, error) {
	flags := pflag.NewFlagSet("fleet", pflag.ContinueOnError)
	envFile := flags.String("env-file", defaultEnvFile, "dotenv file to load before reading the environment")
	port := flags.StringP("port", "p", "", "HTTP port, overrides HTTP_PORT")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(*envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("env-file") {
			return Config{}, fmt.Errorf("load %s: %w", *envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if *port != "" {
		cfg.HTTPPort = *port
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var problems []error
	if c.HTTPPort == "" {
		problems = append(problems, errors.New("HTTP_PORT is empty"))
	}
	if c.AssignmentTTL <= 0 {
		problems = append(problems, fmt.Errorf("ASSIGNMENT_TTL must be positive, got %s", c.AssignmentTTL))
	}
	if c.ExpirySweepBatch <= 0 {
		problems = append(problems, fmt.Errorf("EXPIRY_SWEEP_BATCH must be positive, got %d", c.ExpirySweepBatch))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaEventsTopic == "" {
		problems = append(problems, errors.New("KAFKA_EVENTS_TOPIC is required with KAFKA_BROKERS"))
	}
	if _, err := c.SlogLevel(); err != nil {
		problems = append(problems, err)
	}
	return errors.Join(problems...)
}

// DSN builds the postgres connection string for gorm.
func (c Config) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSslMode}}.Encode(),
	}
	return dsn.String()
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

// NewLogger builds the process logger: JSON unless LOG_FORMAT is "text".
func (c Config) NewLogger() *slog.Logger {
	level, _ := c.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
