// Package config reads craftyd and crafty settings from flags, the environment
// and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is the daemon configuration.
type Config struct {
	Addr        string `validate:"required"`
	MetricsAddr string
	TLSCert     string `validate:"required_with=TLSKey"`
	TLSKey      string `validate:"required_with=TLSCert"`
	Dev         bool

	Backend    string `validate:"oneof=memory file postgres redis"`
	DataDir    string `validate:"required_if=Backend file"`
	DSN        string `validate:"required_if=Backend postgres"`
	RedisURL   string `validate:"required_if=Backend redis"`
	Passphrase string

	SessionKey string        `validate:"required,min=16"`
	SessionTTL time.Duration `validate:"gt=0"`
	// SessionIdle is how long an unused profile stays in memory.
	SessionIdle time.Duration `validate:"gt=0"`
	ConfirmTTL  time.Duration `validate:"gt=0"`
	AITimeout   time.Duration `validate:"gt=0"`
	Timezone    string

	UnlockWindow   time.Duration `validate:"gt=0"`
	UnlockMaxFails int           `validate:"min=1"`
	UnlockBlock    time.Duration `validate:"gt=0"`

	Log Log
}

// Log configures the logger.
type Log struct {
	File  string
	Level string `validate:"oneof=debug info warn error"`
	JSON  bool
}

// CLI is the configuration of the crafty command-line client.
type CLI struct {
	Addr      string `validate:"required"`
	CACert    string
	Insecure  bool
	Plaintext bool
	// ConfigDir keeps the session token between invocations.
	ConfigDir string        `validate:"required"`
	Timeout   time.Duration `validate:"gt=0"`
	Log       Log
}

var validate = validator.New()

// Load parses args (without the program name) over environment defaults.
func Load(args []string) (Config, error) {
	loadDotenv()
	var c Config
	set := flag.NewFlagSet("craftyd", flag.ContinueOnError)
	set.SetOutput(io.Discard)

	set.StringVar(&c.Addr, "addr", getEnv("CRAFTY_ADDR", ":8443"), "gRPC listen address")
	set.StringVar(&c.MetricsAddr, "metrics-addr", getEnv("CRAFTY_METRICS_ADDR", ""), "Prometheus listen address (empty disables)")
	set.StringVar(&c.TLSCert, "tls-cert", getEnv("CRAFTY_TLS_CERT", ""), "TLS certificate (PEM)")
	set.StringVar(&c.TLSKey, "tls-key", getEnv("CRAFTY_TLS_KEY", ""), "TLS private key (PEM)")
	set.BoolVar(&c.Dev, "dev", getEnvBool("CRAFTY_DEV", false), "enable server reflection (dev only)")

	set.StringVar(&c.Backend, "backend", getEnv("CRAFTY_BACKEND", BackendFile), "storage: memory, file, postgres or redis")
	set.StringVar(&c.DataDir, "data", getEnv("CRAFTY_DATA_DIR", "./data"), "data directory of the file backend")
	set.StringVar(&c.DSN, "dsn", getEnv("CRAFTY_DSN", ""), "PostgreSQL DSN")
	set.StringVar(&c.RedisURL, "redis-url", getEnv("CRAFTY_REDIS_URL", ""), "Redis URL")
	set.StringVar(&c.Passphrase, "passphrase", getEnv("CRAFTY_PASSPHRASE", ""), "encrypt stored records with this passphrase")

	set.StringVar(&c.SessionKey, "session-key", getEnv("CRAFTY_SESSION_KEY", ""), "HS256 signing key (required)")
	set.DurationVar(&c.SessionTTL, "session-ttl", getEnvDuration("CRAFTY_SESSION_TTL", 24*time.Hour), "session token TTL")
	set.DurationVar(&c.SessionIdle, "session-idle", getEnvDuration("CRAFTY_SESSION_IDLE", 30*time.Minute), "drop in-memory profile state after this idle time")
	set.DurationVar(&c.ConfirmTTL, "confirm-ttl", getEnvDuration("CRAFTY_CONFIRM_TTL", 2*time.Minute), "purge confirmation TTL")
	set.DurationVar(&c.AITimeout, "ai-timeout", getEnvDuration("CRAFTY_AI_TIMEOUT", 10*time.Second), "text processor timeout")
	set.StringVar(&c.Timezone, "tz", getEnv("CRAFTY_TZ", ""), "IANA zone deciding streak days (empty = local)")

	set.DurationVar(&c.UnlockWindow, "unlock-window", getEnvDuration("CRAFTY_UNLOCK_WINDOW", 15*time.Minute), "failed unlock counting window")
	set.IntVar(&c.UnlockMaxFails, "unlock-max-fails", getEnvInt("CRAFTY_UNLOCK_MAX_FAILS", 5), "failed unlocks before blocking")
	set.DurationVar(&c.UnlockBlock, "unlock-block", getEnvDuration("CRAFTY_UNLOCK_BLOCK", 15*time.Minute), "block duration")

	bindLog(set, &c.Log, "info")

	if err := set.Parse(args); err != nil {
		return Config{}, fmt.Errorf("validation: %v: %w", err, errs.ErrInvalid)
	}
	if err := check(c, c.Timezone); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadCLI parses the global flags of the CLI and returns the remaining arguments.
func LoadCLI(args []string) (CLI, []string, error) {
	loadDotenv()
	var c CLI
	set := flag.NewFlagSet("crafty", flag.ContinueOnError)
	set.SetOutput(io.Discard)

	set.StringVar(&c.Addr, "addr", getEnv("CRAFTY_ADDR", "localhost:8443"), "server address")
	set.StringVar(&c.CACert, "cacert", getEnv("CRAFTY_CACERT", ""), "CA certificate (PEM)")
	set.BoolVar(&c.Insecure, "insecure", getEnvBool("CRAFTY_INSECURE", false), "skip certificate verification (dev)")
	set.BoolVar(&c.Plaintext, "plaintext", getEnvBool("CRAFTY_PLAINTEXT", false), "connect without TLS (dev)")
	set.StringVar(&c.ConfigDir, "config-dir", getEnv("CRAFTY_CONFIG_DIR", defaultConfigDir()), "where the session token is kept")
	set.DurationVar(&c.Timeout, "timeout", getEnvDuration("CRAFTY_TIMEOUT", 30*time.Second), "per-command deadline")
	bindLog(set, &c.Log, "warn")

	if err := set.Parse(args); err != nil {
		return CLI{}, nil, fmt.Errorf("validation: %v: %w", err, errs.ErrInvalid)
	}
	if err := check(c, ""); err != nil {
		return CLI{}, nil, err
	}
	return c, set.Args(), nil
}

// Location resolves a timezone name. Empty means time.Local.
func Location(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("validation: timezone %q: %w", name, errs.ErrInvalid)
	}
	return loc, nil
}

func bindLog(set *flag.FlagSet, l *Log, level string) {
	set.StringVar(&l.File, "log-file", getEnv("CRAFTY_LOG_FILE", ""), "rotated JSON log file (empty = console only)")
	set.StringVar(&l.Level, "log-level", getEnv("CRAFTY_LOG_LEVEL", level), "debug, info, warn or error")
	set.BoolVar(&l.JSON, "log-json", getEnvBool("CRAFTY_LOG_JSON", false), "JSON console output")
}

func check(v any, tz string) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation: %v: %w", err, errs.ErrInvalid)
	}
	_, err := Location(tz)
	return err
}

func loadDotenv() {
	// a missing .env is normal
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "config: .env: %v\n", err)
	}
}

func defaultConfigDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "crafty")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "crafty")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
