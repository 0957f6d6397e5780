// Package config loads the intake bot settings from an optional .env file, an optional
// YAML file and the process environment, in increasing order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendMemory    = "memory"
	BackendRedis     = "redis"
	BackendFile      = "file"
	BackendXLSX      = "xlsx"
	BackendDynamoDB  = "dynamodb"
	BackendClickSend = "clicksend"
	BackendLog       = "log"
)

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig      `mapstructure:"server" yaml:"server"`
	Log      LogConfig         `mapstructure:"log" yaml:"log"`
	Session  SessionConfig     `mapstructure:"session" yaml:"session"`
	Redis    RedisConfig       `mapstructure:"redis" yaml:"redis"`
	Sink     SinkConfig        `mapstructure:"sink" yaml:"sink"`
	SMS      SMSConfig         `mapstructure:"sms" yaml:"sms"`
	Messages map[string]string `mapstructure:"messages" yaml:"messages"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type SessionConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Timeout discards sessions idle for longer. Zero disables expiry.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	LockTTL time.Duration `mapstructure:"lock_ttl" yaml:"lock_ttl"`
	Dir     string        `mapstructure:"dir" yaml:"dir"`
	// EncryptionKey is a base64 AES-256 key. Empty stores sessions in plain JSON.
	EncryptionKey string   `mapstructure:"encryption_key" yaml:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys" yaml:"fallback_keys"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host" yaml:"host"`
	Port     int           `mapstructure:"port" yaml:"port"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Password string        `mapstructure:"password" yaml:"password"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type SinkConfig struct {
	Backend       string `mapstructure:"backend" yaml:"backend"`
	ExcelFile     string `mapstructure:"excel_file" yaml:"excel_file"`
	Sheet         string `mapstructure:"sheet" yaml:"sheet"`
	DynamoDBTable string `mapstructure:"dynamodb_table" yaml:"dynamodb_table"`
	AWSRegion     string `mapstructure:"aws_region" yaml:"aws_region"`
}

type SMSConfig struct {
	Backend  string `mapstructure:"backend" yaml:"backend"`
	Username string `mapstructure:"username" yaml:"username"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key"`
	URL      string `mapstructure:"url" yaml:"url"`
	From     string `mapstructure:"from" yaml:"from"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Session: SessionConfig{
			Backend: BackendMemory,
			LockTTL: 30 * time.Second,
		},
		Redis: RedisConfig{
			Host:   "",
			Port:   6379,
			Prefix: "intake:session:",
		},
		Sink: SinkConfig{
			Backend:   BackendXLSX,
			ExcelFile: "user_data.xlsx",
			Sheet:     "Sheet1",
		},
		SMS: SMSConfig{
			Backend: BackendClickSend,
		},
	}
}

// envBinding maps an environment variable to a dotted config key.
type envBinding struct {
	env    string
	key    string
	format func(string) string
}

func seconds(v string) string { return strings.TrimSpace(v) + "s" }

var envBindings = []envBinding{
	{env: "CLICKSEND_USERNAME", key: "sms.username"},
	{env: "CLICKSEND_API_KEY", key: "sms.api_key"},
	{env: "CLICKSEND_SMS_URL", key: "sms.url"},
	{env: "DEDICATED_NUMBER", key: "sms.from"},
	{env: "REDIS_HOST", key: "redis.host"},
	{env: "REDIS_PORT", key: "redis.port"},
	{env: "REDIS_DB", key: "redis.db"},
	{env: "REDIS_PASSWORD", key: "redis.password"},
	{env: "EXCEL_FILE", key: "sink.excel_file"},
	{env: "TIMEOUT_SECONDS", key: "session.timeout", format: seconds},
	{env: "AWS_REGION", key: "sink.aws_region"},
	{env: "INTAKE_ADDR", key: "server.addr"},
	{env: "INTAKE_LOG_LEVEL", key: "log.level"},
	{env: "INTAKE_LOG_FORMAT", key: "log.format"},
	{env: "INTAKE_SESSION_BACKEND", key: "session.backend"},
	{env: "INTAKE_SESSION_DIR", key: "session.dir"},
	{env: "INTAKE_SESSION_KEY", key: "session.encryption_key"},
	{env: "INTAKE_SESSION_FALLBACK_KEYS", key: "session.fallback_keys"},
	{env: "INTAKE_SINK_BACKEND", key: "sink.backend"},
	{env: "INTAKE_DYNAMODB_TABLE", key: "sink.dynamodb_table"},
	{env: "INTAKE_SMS_BACKEND", key: "sms.backend"},
}

// Load builds the configuration. envFile and path are optional; a missing default
// .env file is ignored, but an explicitly named one must exist.
func Load(path, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(raw, os.LookupEnv)

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}

	// A Redis host from the environment selects Redis unless a backend was chosen.
	if !hasKey(raw, "session.backend") && cfg.Redis.Host != "" {
		cfg.Session.Backend = BackendRedis
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw map[string]any, cfg *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func applyEnv(raw map[string]any, lookup func(string) (string, bool)) {
	for _, b := range envBindings {
		v, ok := lookup(b.env)
		if !ok || v == "" {
			continue
		}
		if b.format != nil {
			v = b.format(v)
		}
		setKey(raw, b.key, v)
	}
}

func setKey(raw map[string]any, dotted, value string) {
	parts := strings.Split(dotted, ".")
	m := raw
	for _, p := range parts[:len(parts)-1] {
		next, ok := m[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func hasKey(raw map[string]any, dotted string) bool {
	parts := strings.Split(dotted, ".")
	m := raw
	for i, p := range parts {
		v, ok := m[p]
		if !ok {
			return false
		}
		if i == len(parts)-1 {
			return true
		}
		if m, ok = v.(map[string]any); !ok {
			return false
		}
	}
	return false
}

// Validate checks backend names, required credentials and keys.
func (c Config) Validate() error {
	var errs []error

	switch c.Session.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("redis.host is required for the redis session backend"))
		}
		if c.Redis.Port <= 0 {
			errs = append(errs, fmt.Errorf("redis.port must be positive, got %d", c.Redis.Port))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.Session.Backend))
	}
	if c.Session.Timeout < 0 {
		errs = append(errs, errors.New("session.timeout must not be negative"))
	}
	if _, _, err := c.EncryptionKeys(); err != nil {
		errs = append(errs, err)
	}

	switch c.Sink.Backend {
	case BackendMemory:
	case BackendXLSX:
		if c.Sink.ExcelFile == "" {
			errs = append(errs, errors.New("sink.excel_file is required for the xlsx sink"))
		}
	case BackendDynamoDB:
		if c.Sink.DynamoDBTable == "" {
			errs = append(errs, errors.New("sink.dynamodb_table is required for the dynamodb sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sink backend %q", c.Sink.Backend))
	}

	switch c.SMS.Backend {
	case BackendLog:
	case BackendClickSend:
		if c.SMS.Username == "" || c.SMS.APIKey == "" {
			errs = append(errs, errors.New("CLICKSEND_USERNAME and CLICKSEND_API_KEY are required for the clicksend sender"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sms backend %q", c.SMS.Backend))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	known := make(map[string]bool)
	for _, k := range domain.MessageKeys() {
		known[string(k)] = true
	}
	for k := range c.Messages {
		if !known[k] {
			errs = append(errs, fmt.Errorf("unknown message key %q", k))
		}
	}

	return errors.Join(errs...)
}

// RedisAddr returns host:port.
func (c Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port))
}

// Catalog returns the default prompts with the configured overrides applied.
func (c Config) Catalog() domain.Catalog {
	return domain.DefaultCatalog().With(c.Messages)
}

// EncryptionKeys decodes the session keys. active is nil when encryption is off.
func (c Config) EncryptionKeys() (active []byte, fallback [][]byte, err error) {
	if c.Session.EncryptionKey == "" {
		if len(c.Session.FallbackKeys) > 0 {
			return nil, nil, errors.New("session.fallback_keys requires session.encryption_key")
		}
		return nil, nil, nil
	}
	active, err = decodeKey(c.Session.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("session.encryption_key: %w", err)
	}
	for i, k := range c.Session.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("session.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
