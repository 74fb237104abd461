// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/amal-sh/Blockchain-supplychain/store"

	"github.com/joho/godotenv"
)

const (
	defaultPort          = "8080"
	defaultStoreDriver   = store.DriverMongo
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "signup"
	defaultSQLitePath    = "data/farmchain.db"
	defaultUploadDir     = "public/uploads"
	defaultRPCURL        = "http://localhost:8545"
	defaultClaimTimeout  = 2 * time.Minute
	defaultMQTTTopic     = "farms/+/sensors"
	defaultMQTTClientID  = "farmchain-server"
	defaultLogLevel      = "info"
)

// Config lists everything the server and the commands read from the environment.
type Config struct {
	Port string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string
	SQLitePath    string
	UploadDir     string

	ContractAddress         string
	RPCURL                  string
	SensorServicePrivateKey string
	OwnerPrivateKey         string
	ClaimSubmitTimeout      time.Duration
	VerifyFarmRole          bool

	JWTSecret   string
	CORSOrigins []string

	MQTTBrokerURL string
	MQTTTopic     string
	MQTTClientID  string

	LogLevel string
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:                    getenvDefault("PORT", defaultPort),
		StoreDriver:             strings.ToLower(getenvDefault("STORE_DRIVER", defaultStoreDriver)),
		MongoURI:                getenvDefault("MONGO_URI", defaultMongoURI),
		MongoDatabase:           getenvDefault("MONGO_DATABASE", defaultMongoDatabase),
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		SQLitePath:              getenvDefault("SQLITE_PATH", defaultSQLitePath),
		UploadDir:               getenvDefault("UPLOAD_DIR", defaultUploadDir),
		ContractAddress:         strings.TrimSpace(os.Getenv("CONTRACT_ADDRESS")),
		RPCURL:                  getenvDefault("BLOCKCHAIN_RPC_URL", defaultRPCURL),
		SensorServicePrivateKey: strings.TrimSpace(os.Getenv("SENSOR_SERVICE_PRIVATE_KEY")),
		OwnerPrivateKey:         strings.TrimSpace(os.Getenv("OWNER_PRIVATE_KEY")),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		CORSOrigins:             splitList(os.Getenv("CORS_ORIGINS")),
		MQTTBrokerURL:           os.Getenv("MQTT_BROKER_URL"),
		MQTTTopic:               getenvDefault("MQTT_TOPIC", defaultMQTTTopic),
		MQTTClientID:            getenvDefault("MQTT_CLIENT_ID", defaultMQTTClientID),
		LogLevel:                getenvDefault("LOG_LEVEL", defaultLogLevel),
	}

	timeout, err := getenvDuration("CLAIM_SUBMIT_TIMEOUT", defaultClaimTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ClaimSubmitTimeout = timeout

	verify, err := getenvBool("CLAIM_VERIFY_FARM_ROLE", true)
	if err != nil {
		return Config{}, err
	}
	cfg.VerifyFarmRole = verify

	switch cfg.StoreDriver {
	case store.DriverMongo, store.DriverMemory, store.DriverSQLite:
	case store.DriverPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q", cfg.StoreDriver)
	}

	return cfg, nil
}

// ChainEnabled reports whether a contract address was configured.
func (c Config) ChainEnabled() bool { return c.ContractAddress != "" }

// RequireChain checks the settings needed to sign with the sensor service key.
func (c Config) RequireChain() error {
	return requireAll(
		envVar{"CONTRACT_ADDRESS", c.ContractAddress},
		envVar{"BLOCKCHAIN_RPC_URL", c.RPCURL},
		envVar{"SENSOR_SERVICE_PRIVATE_KEY", c.SensorServicePrivateKey},
	)
}

// RequireOwner checks the settings needed by the provisioning command.
func (c Config) RequireOwner() error {
	return requireAll(
		envVar{"CONTRACT_ADDRESS", c.ContractAddress},
		envVar{"BLOCKCHAIN_RPC_URL", c.RPCURL},
		envVar{"OWNER_PRIVATE_KEY", c.OwnerPrivateKey},
		envVar{"SENSOR_SERVICE_PRIVATE_KEY", c.SensorServicePrivateKey},
	)
}

// StoreOptions addresses the configured storage backend.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Driver:        c.StoreDriver,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		DatabaseURL:   c.DatabaseURL,
		SQLitePath:    c.SQLitePath,
	}
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type envVar struct {
	name  string
	value string
}

func requireAll(vars ...envVar) error {
	for _, v := range vars {
		if v.value == "" {
			return fmt.Errorf("missing required environment variable %s", v.name)
		}
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
