package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	"github.com/kelseyhightower/envconfig"

	"github.com/kazz187/inspectguild/pkg/clog"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"5050"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
}

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageLocal    = "local"
	StorageS3       = "s3"
)

type StorageEnv struct {
	Type       string `envconfig:"STORAGE_TYPE" default:"sqlite"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:".inspectguild/inspectguild.db"`
	BaseDir    string `envconfig:"STORAGE_BASE_DIR" default:".inspectguild/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"inspectguild/"`
	S3Region string `envconfig:"S3_REGION" default:"eu-west-1"`
}

// PostgresEnv is used when StorageEnv.Type == "postgres". DatabaseURL wins
// over the individual parts when set.
type PostgresEnv struct {
	DatabaseURL string `envconfig:"DATABASE_URL"`
	Host        string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port        int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User        string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password    string `envconfig:"POSTGRES_PASSWORD"`
	DB          string `envconfig:"POSTGRES_DB" default:"inspectguild"`
	SSLMode     string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	Driver      string `envconfig:"POSTGRES_DRIVER" default:"pgx"`
}

type Env struct {
	BaseEnv
	StorageEnv
	PostgresEnv
}

const namespace = "INSPECTGUILD"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	switch env.StorageEnv.Type {
	case StorageSQLite, StoragePostgres, StorageLocal, StorageS3:
	default:
		return nil, fmt.Errorf("unknown storage type %q", env.StorageEnv.Type)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	return clog.ParseLevel(e.LogLevel)
}

func (e *BaseEnv) Addr() string {
	return net.JoinHostPort(e.HTTPHost, e.HTTPPort)
}

// DSN returns a postgres connection URL accepted by both pgx and lib/pq.
func (e *PostgresEnv) DSN() string {
	if e.DatabaseURL != "" {
		return e.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(e.Host, strconv.Itoa(e.Port)),
		Path:   "/" + e.DB,
	}
	if e.Password != "" {
		u.User = url.UserPassword(e.User, e.Password)
	} else if e.User != "" {
		u.User = url.User(e.User)
	}
	if e.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {e.SSLMode}}.Encode()
	}
	return u.String()
}

func BaseEnvFromEnv(env *Env) *BaseEnv {
	return &env.BaseEnv
}

func StorageEnvFromEnv(env *Env) *StorageEnv {
	return &env.StorageEnv
}

func PostgresEnvFromEnv(env *Env) *PostgresEnv {
	return &env.PostgresEnv
}
