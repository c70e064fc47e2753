// File: utils/config.go
package utils

import (
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the environment variable selecting the YAML config file.
const ConfigPathEnv = "FLOWLINE_CONFIG"

// Config holds all configurable pipeline parameters.
type Config struct {
	// Timing
	GeneratorTickIntervalMs  int `yaml:"generatorTickIntervalMs" json:"generatorTickIntervalMs"`   // Period of the generator trigger
	ConsumerTickIntervalMs   int `yaml:"consumerTickIntervalMs" json:"consumerTickIntervalMs"`     // Period of the consumer trigger
	DisplayRefreshIntervalMs int `yaml:"displayRefreshIntervalMs" json:"displayRefreshIntervalMs"` // Only used by the display

	// Buffers
	QueueCapacity int `yaml:"queueCapacity" json:"queueCapacity"` // Max items held by the queue before eviction
	HistorySize   int `yaml:"historySize" json:"historySize"`     // Entries kept per display history
	MailboxSize   int `yaml:"mailboxSize" json:"mailboxSize"`     // Buffered capacity of each actor mailbox

	// Lifecycle
	ShutdownTimeoutMs int `yaml:"shutdownTimeoutMs" json:"shutdownTimeoutMs"` // Per-actor drain budget on shutdown

	LogLevel string `yaml:"logLevel" json:"logLevel"`
}

// DefaultConfig returns a Config struct with default values.
func DefaultConfig() Config {
	return Config{
		GeneratorTickIntervalMs:  100,
		ConsumerTickIntervalMs:   200,
		DisplayRefreshIntervalMs: 300,

		QueueCapacity: 20,
		HistorySize:   50,
		MailboxSize:   1024,

		ShutdownTimeoutMs: 2000,

		LogLevel: "info",
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// LoadConfigFromEnv loads the file named by FLOWLINE_CONFIG, or returns the
// defaults when the variable is unset. LOG_LEVEL overrides logLevel.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if path := ReadEnvVar(ConfigPathEnv); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg.LogLevel = ReadEnvVarWithDefault(LogLevelEnv, cfg.LogLevel)
	return cfg, cfg.Validate()
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var result *multierror.Error
	positive := func(name string, v int) {
		if v <= 0 {
			result = multierror.Append(result, errors.Errorf("%s must be positive, got %d", name, v))
		}
	}
	positive("generatorTickIntervalMs", c.GeneratorTickIntervalMs)
	positive("consumerTickIntervalMs", c.ConsumerTickIntervalMs)
	positive("displayRefreshIntervalMs", c.DisplayRefreshIntervalMs)
	positive("queueCapacity", c.QueueCapacity)
	positive("historySize", c.HistorySize)
	positive("mailboxSize", c.MailboxSize)
	positive("shutdownTimeoutMs", c.ShutdownTimeoutMs)
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (c Config) GeneratorTickPeriod() time.Duration {
	return time.Duration(c.GeneratorTickIntervalMs) * time.Millisecond
}

func (c Config) ConsumerTickPeriod() time.Duration {
	return time.Duration(c.ConsumerTickIntervalMs) * time.Millisecond
}

func (c Config) DisplayRefreshPeriod() time.Duration {
	return time.Duration(c.DisplayRefreshIntervalMs) * time.Millisecond
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMs) * time.Millisecond
}
