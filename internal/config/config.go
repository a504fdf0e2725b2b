package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"recolector/internal/utils"
)

// EnvPrefix prefixes every environment override, e.g. RECOLECTOR_API_BASE_URL.
const EnvPrefix = "RECOLECTOR"

// Config holds the client settings.
type Config struct {
	API     API     `mapstructure:"api"`
	Session Session `mapstructure:"session"`
	Notify  Notify  `mapstructure:"notify"`
	Shell   Shell   `mapstructure:"shell"`
	Log     Log     `mapstructure:"log"`
}

// API configures the remote service connection.
type API struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	CADir   string        `mapstructure:"ca_dir"`
}

// Session configures where and how the session record is persisted.
type Session struct {
	Dir           string `mapstructure:"dir"`
	Encrypt       bool   `mapstructure:"encrypt"`
	MasterKeyFile string `mapstructure:"master_key_file"`
}

type Notify struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type Shell struct {
	Addr string `mapstructure:"addr"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

var (
	config     *Config
	configErr  error
	configOnce sync.Once
)

// LoadConfig reads the configuration once per process. Later calls return the
// first result regardless of path.
func LoadConfig(path string) (*Config, error) {
	configOnce.Do(func() {
		config, configErr = Load(path)
	})
	return config, configErr
}

// Load builds a Config from defaults, an optional file and the environment.
// With an empty path it looks for config.{json,yaml} in the working directory
// and in ~/.recolector; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(utils.GetDataDir(""))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.ca_dir", "")
	v.SetDefault("session.dir", "")
	v.SetDefault("session.encrypt", true)
	v.SetDefault("session.master_key_file", "")
	v.SetDefault("notify.ttl", 4*time.Second)
	v.SetDefault("shell.addr", ":8081")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	c.Session.Dir = utils.GetDataDir(c.Session.Dir)
	if c.Session.MasterKeyFile == "" {
		c.Session.MasterKeyFile = filepath.Join(c.Session.Dir, "master.key")
	}
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if c.Notify.TTL <= 0 {
		return errors.New("notify.ttl must be positive")
	}
	return nil
}
