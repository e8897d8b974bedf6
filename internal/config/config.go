package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

const (
	PolicyDrop     = "drop"
	PolicyPenalize = "penalize"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is built once at startup and passed by value into every component.
type Config struct {
	Sources   []string           `yaml:"sources"`
	Remark    string             `yaml:"remark"`
	MaxOutput int                `yaml:"max_output"`
	Fetch     Fetch              `yaml:"fetch"`
	Probe     Probe              `yaml:"probe"`
	Artifact  Artifact           `yaml:"artifact"`
	Scoring   descriptor.Weights `yaml:"scoring"`
	Redis     Redis              `yaml:"redis"`
	API       API                `yaml:"api"`
	Schedule  Schedule           `yaml:"schedule"`
	Log       Log                `yaml:"log"`
}

type Fetch struct {
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	MaxBytes    int64         `yaml:"max_bytes"`
	UserAgent   string        `yaml:"user_agent"`
	GitHubAPI   string        `yaml:"github_api"`
}

type Probe struct {
	Enabled       bool          `yaml:"enabled"`
	Policy        string        `yaml:"policy"`
	Timeout       time.Duration `yaml:"timeout"`
	Concurrency   int           `yaml:"concurrency"`
	Penalty       int           `yaml:"penalty"`
	RatePerSecond float64       `yaml:"rate_per_second"`
}

type Artifact struct {
	Path          string   `yaml:"path"`
	ListPath      string   `yaml:"list_path"`
	DefaultHeader []string `yaml:"default_header"`
	TailMarkers   []string `yaml:"tail_markers"`
}

type Redis struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	TTL       time.Duration `yaml:"ttl"`
	KeyPrefix string        `yaml:"key_prefix"`
	Topic     string        `yaml:"topic"`
}

type API struct {
	Port string `yaml:"port"`
}

type Schedule struct {
	Interval time.Duration `yaml:"interval"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const DefaultRemark = "config-aggregator"

func Default() Config {
	return Config{
		Sources: []string{
			"https://raw.githubusercontent.com/MatinGhanbari/v2ray-configs/main/subscriptions/v2ray/all_sub.txt",
			"https://raw.githubusercontent.com/MatinGhanbari/v2ray-configs/main/subscriptions/v2ray/super-sub.txt",
		},
		Remark:    DefaultRemark,
		MaxOutput: 200,
		Fetch: Fetch{
			Timeout:     30 * time.Second,
			Concurrency: 8,
			MaxBytes:    10 * 1024 * 1024,
			UserAgent:   "Mozilla/5.0 (compatible; ConfigAggregator/1.0)",
			GitHubAPI:   "https://api.github.com",
		},
		Probe: Probe{
			Enabled:     true,
			Policy:      PolicyDrop,
			Timeout:     3 * time.Second,
			Concurrency: 40,
			Penalty:     100,
		},
		Artifact: Artifact{
			Path:        "Index.html",
			TailMarkers: []string{"<script"},
		},
		Scoring: descriptor.DefaultWeights(),
		Redis: Redis{
			TTL:       2 * time.Hour,
			KeyPrefix: "configs",
			Topic:     "configs:published",
		},
		API:      API{Port: "8080"},
		Schedule: Schedule{Interval: 60 * time.Minute},
		Log:      Log{Level: "info", Format: "text"},
	}
}

// DefaultHeader is the header written when no previous artifact exists.
func DefaultHeader(remark string) []string {
	return []string{
		"#profile-title: base64:" + base64.StdEncoding.EncodeToString([]byte(remark)),
		"#profile-update-interval: 1",
		"#subscription-userinfo: upload=0; download=0; total=0; expire=0",
	}
}

// Load layers defaults, the optional YAML file and the environment (including
// a .env file), in that order. An empty path falls back to CONFIG_FILE.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	cfg.Sources = normalizeSources(cfg.Sources)
	cfg.Probe.Policy = strings.ToLower(strings.TrimSpace(cfg.Probe.Policy))
	if len(cfg.Artifact.DefaultHeader) == 0 {
		cfg.Artifact.DefaultHeader = DefaultHeader(cfg.Remark)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := getEnv("SOURCES", ""); v != "" {
		cfg.Sources = strings.Split(v, ",")
	}
	cfg.Remark = getEnv("REMARK", cfg.Remark)
	cfg.MaxOutput = getEnvInt("MAX_OUTPUT", cfg.MaxOutput)

	cfg.Fetch.Timeout = getEnvSeconds("FETCH_TIMEOUT_SECONDS", cfg.Fetch.Timeout)
	cfg.Fetch.Concurrency = getEnvInt("FETCH_CONCURRENCY", cfg.Fetch.Concurrency)
	cfg.Fetch.UserAgent = getEnv("FETCH_USER_AGENT", cfg.Fetch.UserAgent)

	cfg.Probe.Enabled = getEnvBool("PROBE_ENABLED", cfg.Probe.Enabled)
	cfg.Probe.Policy = getEnv("PROBE_POLICY", cfg.Probe.Policy)
	cfg.Probe.Timeout = getEnvSeconds("PROBE_TIMEOUT_SECONDS", cfg.Probe.Timeout)
	cfg.Probe.Concurrency = getEnvInt("PROBE_CONCURRENCY", cfg.Probe.Concurrency)
	cfg.Probe.Penalty = getEnvInt("PROBE_PENALTY", cfg.Probe.Penalty)
	cfg.Probe.RatePerSecond = getEnvFloat("PROBE_RATE_PER_SECOND", cfg.Probe.RatePerSecond)

	cfg.Artifact.Path = getEnv("ARTIFACT_PATH", cfg.Artifact.Path)
	cfg.Artifact.ListPath = getEnv("LIST_PATH", cfg.Artifact.ListPath)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	if v := getEnvInt("SNAPSHOT_TTL_MINUTES", 0); v > 0 {
		cfg.Redis.TTL = time.Duration(v) * time.Minute
	}
	cfg.Redis.Topic = getEnv("REDIS_TOPIC_PUBLISHED", cfg.Redis.Topic)

	cfg.API.Port = getEnv("API_PORT", cfg.API.Port)
	if v := getEnvInt("SCHEDULE_INTERVAL_MINUTES", 0); v > 0 {
		cfg.Schedule.Interval = time.Duration(v) * time.Minute
	}

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
}

func normalizeSources(sources []string) []string {
	trimmed := lo.Map(sources, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(trimmed))
}

func (c Config) Validate() error {
	var errs []error

	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("no sources configured"))
	}
	if c.MaxOutput <= 0 {
		errs = append(errs, errors.New("max output must be positive"))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Fetch.Concurrency <= 0 {
		errs = append(errs, errors.New("fetch concurrency must be positive"))
	}
	if c.Fetch.MaxBytes <= 0 {
		errs = append(errs, errors.New("fetch max bytes must be positive"))
	}
	if c.Probe.Enabled {
		if c.Probe.Policy != PolicyDrop && c.Probe.Policy != PolicyPenalize {
			errs = append(errs, fmt.Errorf("unknown probe policy %q", c.Probe.Policy))
		}
		if c.Probe.Timeout <= 0 {
			errs = append(errs, errors.New("probe timeout must be positive"))
		}
		if c.Probe.Concurrency <= 0 {
			errs = append(errs, errors.New("probe concurrency must be positive"))
		}
		if c.Probe.RatePerSecond < 0 {
			errs = append(errs, errors.New("probe rate must not be negative"))
		}
	}
	if c.Artifact.Path == "" {
		errs = append(errs, errors.New("artifact path is required"))
	}
	if c.Schedule.Interval <= 0 {
		errs = append(errs, errors.New("schedule interval must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil && i > 0 {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
