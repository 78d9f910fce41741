package config

import (
	"errors"
	"fmt"

	"github.com/pdcommons/service/internal/db"
	"github.com/pdcommons/service/internal/storage"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	ServerAddress string
	JWTSecret     string
	QueueWorkers  int
	Database      db.Config
	ObjectStore   storage.Config
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		ServerAddress: ":8080",
		QueueWorkers:  4,
		Database:      db.DefaultConfig(),
		ObjectStore: storage.Config{
			Endpoint: "localhost:9000",
			Bucket:   "pdc",
		},
	}
}

// Load reads config.yaml from configPath, applying environment overrides
// with the PDC_ prefix (PDC_DATABASE_HOST, PDC_OBJECTSTORE_ENDPOINT, ...).
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.SetEnvPrefix("PDC")
	v.AutomaticEnv()

	for _, key := range []string{
		"server.address",
		"auth.jwt_secret",
		"queue.workers",
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"objectstore.endpoint",
		"objectstore.access_key",
		"objectstore.secret_key",
		"objectstore.bucket",
		"objectstore.use_ssl",
	} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config.yaml; defaults plus environment overrides apply.
	}

	if v.IsSet("server.address") {
		cfg.ServerAddress = v.GetString("server.address")
	}
	if v.IsSet("auth.jwt_secret") {
		cfg.JWTSecret = v.GetString("auth.jwt_secret")
	}
	if v.IsSet("queue.workers") {
		cfg.QueueWorkers = v.GetInt("queue.workers")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("objectstore.endpoint") {
		cfg.ObjectStore.Endpoint = v.GetString("objectstore.endpoint")
	}
	if v.IsSet("objectstore.access_key") {
		cfg.ObjectStore.AccessKeyID = v.GetString("objectstore.access_key")
	}
	if v.IsSet("objectstore.secret_key") {
		cfg.ObjectStore.SecretAccessKey = v.GetString("objectstore.secret_key")
	}
	if v.IsSet("objectstore.bucket") {
		cfg.ObjectStore.Bucket = v.GetString("objectstore.bucket")
	}
	if v.IsSet("objectstore.use_ssl") {
		cfg.ObjectStore.UseSSL = v.GetBool("objectstore.use_ssl")
	}

	return cfg, nil
}
