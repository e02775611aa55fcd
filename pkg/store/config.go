package store

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	DefaultServer         = "http://127.0.0.1:8000"
	DefaultReconnectDelay = 2 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultPrefsPath      = "~/.nodewatch.d"
)

// Config is the resolved client configuration.
type Config interface {
	Server() string
	ReconnectDelay() time.Duration
	RequestTimeout() time.Duration
	LogFile() string
	LogLevel() string
	PrefsPath() string
}

// LoadConfig resolves configuration from defaults, a .nodewatch config file,
// NODEWATCH_* environment variables and any flags bound to the global viper.
func LoadConfig() (Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (Config, error) {
	v.SetDefault("server", DefaultServer)
	v.SetDefault("reconnect_delay", DefaultReconnectDelay)
	v.SetDefault("request_timeout", DefaultRequestTimeout)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("prefs_path", DefaultPrefsPath)
	v.SetConfigName(".nodewatch") // .yaml is implicit
	v.SetEnvPrefix("NODEWATCH")
	v.AutomaticEnv()

	if override := os.Getenv("NODEWATCH_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	prefs, err := homedir.Expand(v.GetString("prefs_path"))
	if err != nil {
		return nil, fmt.Errorf("expand prefs_path: %w", err)
	}

	delay := v.GetDuration("reconnect_delay")
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	timeout := v.GetDuration("request_timeout")
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &fileConfig{
		ServerURL:   v.GetString("server"),
		Reconnect:   delay,
		Timeout:     timeout,
		Log:         v.GetString("log_file"),
		Level:       v.GetString("log_level"),
		Preferences: prefs,
		Source:      v.ConfigFileUsed(),
	}, nil
}

type fileConfig struct {
	ServerURL   string        `json:"server"`
	Reconnect   time.Duration `json:"reconnect_delay"`
	Timeout     time.Duration `json:"request_timeout"`
	Log         string        `json:"log_file"`
	Level       string        `json:"log_level"`
	Preferences string        `json:"prefs_path"`
	Source      string        `json:"-"`
}

func (f *fileConfig) Server() string                { return f.ServerURL }
func (f *fileConfig) ReconnectDelay() time.Duration { return f.Reconnect }
func (f *fileConfig) RequestTimeout() time.Duration { return f.Timeout }
func (f *fileConfig) LogFile() string               { return f.Log }
func (f *fileConfig) LogLevel() string              { return f.Level }
func (f *fileConfig) PrefsPath() string             { return f.Preferences }

// ConfigFile returns the config file that was read, if any.
func ConfigFile(cfg Config) string {
	if fc, ok := cfg.(*fileConfig); ok {
		return fc.Source
	}
	return ""
}
