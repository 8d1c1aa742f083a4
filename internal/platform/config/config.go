package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Visit store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string         `yaml:"addr"`
	Environment string         `yaml:"environment"`
	TopN        int            `yaml:"top_n"`
	RandomUser  RandomUser     `yaml:"randomuser"`
	Visits      Visits         `yaml:"visits"`
	Redis       RedisConfig    `yaml:"redis"`
	Database    DatabaseConfig `yaml:"database"`
	SQLite      SQLiteConfig   `yaml:"sqlite"`
}

// RandomUser configures the upstream person source.
// A zero Timeout means the fetch is bound only by the caller's context.
type RandomUser struct {
	BaseURL     string        `yaml:"base_url"`
	Results     int           `yaml:"results"`
	Gender      string        `yaml:"gender"`
	Nationality string        `yaml:"nat"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Visits configures the page-load counter.
type Visits struct {
	Backend string `yaml:"backend"`
	Key     string `yaml:"key"`
	Period  int    `yaml:"period"`
}

// RedisConfig holds the Redis connection settings used by the redis visit store.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig holds the PostgreSQL settings used by the postgres visit store.
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// SQLiteConfig holds the file path used by the sqlite visit store.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Default returns the stock configuration:
// a thousand French men, ten oldest, counter key "refreshCounter".
func Default() Server {
	return Server{
		Addr:        ":8080",
		Environment: "dev",
		TopN:        10,
		RandomUser: RandomUser{
			BaseURL:     "https://randomuser.me",
			Results:     1000,
			Gender:      "male",
			Nationality: "fr",
		},
		Visits: Visits{
			Backend: BackendMemory,
			Key:     "refreshCounter",
			Period:  5,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		SQLite: SQLiteConfig{
			Path: "agedist.db",
		},
	}
}

// Load builds a Server config from the optional YAML file named by
// AGEDIST_CONFIG, then applies environment overrides so main stays lean.
func Load() (Server, error) {
	cfg := Default()
	if path := os.Getenv("AGEDIST_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Server{}, err
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// FromEnv is Load without a config file; it never fails.
func FromEnv() Server {
	cfg := Default()
	cfg.applyEnv()
	cfg.normalize()
	return cfg
}

func (c *Server) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Server) applyEnv() {
	setString(&c.Addr, "AGEDIST_ADDR")
	setString(&c.Environment, "AGEDIST_ENV")
	setInt(&c.TopN, "TOP_N")

	setString(&c.RandomUser.BaseURL, "RANDOMUSER_BASE_URL")
	setInt(&c.RandomUser.Results, "RANDOMUSER_RESULTS")
	setString(&c.RandomUser.Gender, "RANDOMUSER_GENDER")
	setString(&c.RandomUser.Nationality, "RANDOMUSER_NAT")
	setDuration(&c.RandomUser.Timeout, "RANDOMUSER_TIMEOUT")

	setString(&c.Visits.Backend, "VISITS_BACKEND")
	setString(&c.Visits.Key, "VISITS_KEY")
	setInt(&c.Visits.Period, "VISITS_PERIOD")

	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.SQLite.Path, "SQLITE_PATH")
}

// normalize replaces out-of-range values with defaults instead of failing startup.
func (c *Server) normalize() {
	def := Default()
	if c.TopN <= 0 {
		c.TopN = def.TopN
	}
	if c.RandomUser.Results <= 0 {
		c.RandomUser.Results = def.RandomUser.Results
	}
	if c.RandomUser.Timeout < 0 {
		c.RandomUser.Timeout = 0
	}
	if c.Visits.Period <= 0 {
		c.Visits.Period = def.Visits.Period
	}
	if c.Visits.Key == "" {
		c.Visits.Key = def.Visits.Key
	}
	switch c.Visits.Backend {
	case BackendMemory, BackendRedis, BackendPostgres, BackendSQLite:
	default:
		c.Visits.Backend = BackendMemory
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
