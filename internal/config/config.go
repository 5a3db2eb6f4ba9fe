package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds every tunable knob the engine, its storage adapters, and the
// illustrative transport read at startup.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Engine   EngineConfig
	CORS     CORSConfig
}

// ServerConfig holds the HTTP/WS listener's settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// CORSConfig holds the allowed-origins list for the illustrative transport's
// gin-contrib/cors middleware, trimmed from the reference repo's CORSConfig
// to the one knob this deployment shape needs.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig holds the Postgres connection and pool settings.
type DatabaseConfig struct {
	Host                  string
	Port                  string
	User                  string
	Password              string
	DBName                string
	SSLMode               string
	PoolSize              int `mapstructure:"pool_size"`
	PoolRecycleSeconds    int `mapstructure:"pool_recycle_seconds"`
	ConnectTimeoutSeconds int `mapstructure:"connect_timeout_seconds"`
}

// RedisConfig holds unified Redis connection settings, supporting single,
// sentinel, and cluster modes — used only by the optional presence cache
// and the optional Redis-backed ticket store; a deployment that doesn't
// wire either never touches it.
type RedisConfig struct {
	// Mode selects the client topology: "single", "sentinel", or
	// "cluster". Defaults to "single".
	Mode string `mapstructure:"mode"`

	// Addrs lists Redis host:port pairs, used by every mode. For
	// "single", the first address is used if set.
	Addrs []string `mapstructure:"addrs"`

	// Addr is a single-address shorthand for "single" mode, used when
	// Addrs is empty.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName names the Sentinel master set (sentinel mode only).
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// EngineConfig holds the game-session engine's own knobs.
type EngineConfig struct {
	// PresenceTTLSeconds is how long a participation is considered
	// present after its last heartbeat.
	PresenceTTLSeconds int `mapstructure:"presence_ttl_seconds"`
	// TicketTTLSeconds is how long an event ticket remains redeemable.
	TicketTTLSeconds int `mapstructure:"ticket_ttl_seconds"`
	// DefaultQuestionTimeLimitSeconds is the default per-question time
	// limit, handed to the engine as Config.DefaultQuestionTimeLimit; no
	// engine command reads it.
	DefaultQuestionTimeLimitSeconds int `mapstructure:"default_question_time_limit"`
	// PointsForEasy/Medium/Hard are the score policy's payout-per-correct-
	// answer at each difficulty.
	PointsForEasy   int `mapstructure:"points_for_easy"`
	PointsForMedium int `mapstructure:"points_for_medium"`
	PointsForHard   int `mapstructure:"points_for_hard"`
}

func (e EngineConfig) PresenceTTL() time.Duration {
	return time.Duration(e.PresenceTTLSeconds) * time.Second
}

func (e EngineConfig) TicketTTL() time.Duration {
	return time.Duration(e.TicketTTLSeconds) * time.Second
}

func (e EngineConfig) DefaultQuestionTimeLimit() time.Duration {
	return time.Duration(e.DefaultQuestionTimeLimitSeconds) * time.Second
}

// PostgresConnectionString builds a libpq connection string from the
// Database section.
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from configPath (if it exists) layered under
// explicit environment variable bindings, the same precedence the
// reference repo's config loader uses.
func Load(configPath string) (*Config, error) {
	vip := viper.New() // fresh instance per Load call, to avoid global Viper state

	vip.SetDefault("server.port", "8080")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("engine.presence_ttl_seconds", 15)
	vip.SetDefault("engine.ticket_ttl_seconds", 60)
	vip.SetDefault("engine.default_question_time_limit", 30)
	vip.SetDefault("engine.points_for_easy", 1)
	vip.SetDefault("engine.points_for_medium", 2)
	vip.SetDefault("engine.points_for_hard", 3)
	vip.SetDefault("database.pool_size", 5)
	vip.SetDefault("database.pool_recycle_seconds", 1800)
	vip.SetDefault("database.connect_timeout_seconds", 5)

	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.readtimeout", "SERVER_READ_TIMEOUT")
	vip.BindEnv("server.writetimeout", "SERVER_WRITE_TIMEOUT")

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.pool_size", "DB_POOL_SIZE")
	vip.BindEnv("database.pool_recycle_seconds", "DB_POOL_RECYCLE_SECONDS")
	vip.BindEnv("database.connect_timeout_seconds", "DB_CONNECT_TIMEOUT_SECONDS")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("engine.presence_ttl_seconds", "PRESENCE_TTL_SECONDS")
	vip.BindEnv("engine.ticket_ttl_seconds", "TICKET_TTL_SECONDS")
	vip.BindEnv("engine.default_question_time_limit", "DEFAULT_QUESTION_TIME_LIMIT")
	vip.BindEnv("engine.points_for_easy", "POINTS_FOR_EASY")
	vip.BindEnv("engine.points_for_medium", "POINTS_FOR_MEDIUM")
	vip.BindEnv("engine.points_for_hard", "POINTS_FOR_HARD")

	vip.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("[config] file %q not found, using environment variables/defaults", configPath)
			} else {
				log.Printf("[config] warning: could not read %q: %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("[config] database: %s:%s/%s (sslmode=%s, pool=%d)", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, cfg.Database.SSLMode, cfg.Database.PoolSize)
		log.Printf("[config] redis: mode=%s addr=%s", cfg.Redis.Mode, cfg.Redis.Addr)
		log.Printf("[config] server port: %s", cfg.Server.Port)
		log.Printf("[config] presence_ttl=%ds ticket_ttl=%ds default_question_time_limit=%ds", cfg.Engine.PresenceTTLSeconds, cfg.Engine.TicketTTLSeconds, cfg.Engine.DefaultQuestionTimeLimitSeconds)
	}

	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER)")
	}
	if cfg.Engine.PresenceTTLSeconds <= 0 {
		return nil, fmt.Errorf("engine.presence_ttl_seconds must be positive")
	}
	if cfg.Engine.TicketTTLSeconds <= 0 {
		return nil, fmt.Errorf("engine.ticket_ttl_seconds must be positive")
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("cors.allowed_origins is empty, which would block every browser client")
	}

	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "" {
		ginMode = "debug"
	}
	if ginMode != "debug" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD)")
	}

	return &cfg, nil
}
