// Package config resolves assistant settings from .assistant.yaml, ASSISTANT_*
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

const (
	StoreFS     = "fs"
	StoreMemory = "memory"
)

type Chat struct {
	Mode     string        `json:"mode" yaml:"mode"`
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

type Config struct {
	Root     string `json:"root" yaml:"root"`
	Store    string `json:"store" yaml:"store"`
	Chat     Chat   `json:"chat" yaml:"chat"`
	LogLevel string `json:"log_level" yaml:"log_level"`
	Watch    bool   `json:"watch" yaml:"watch"`
	// File is the config file that was read, empty when none was found.
	File string `json:"file,omitempty" yaml:"-"`
}

// New returns a viper instance with the assistant's defaults and search paths.
// explicit, when set, names a config file and disables the search.
func New(explicit string) *viper.Viper {
	v := viper.New()
	v.SetDefault("root", "~/.assistant")
	v.SetDefault("store", StoreFS)
	v.SetDefault("chat.mode", "agent")
	v.SetDefault("chat.endpoint", "")
	v.SetDefault("chat.timeout", 30*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("watch", false)

	v.SetEnvPrefix("ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicit != "" {
		v.SetConfigFile(explicit)
		return v
	}
	v.SetConfigName(".assistant") // .yaml is implicit
	if override := os.Getenv("ASSISTANT_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	return v
}

// Load reads the config file if there is one and returns the resolved settings.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}
	cfg := Config{
		Root:     store.ExpandHome(v.GetString("root")),
		Store:    strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		LogLevel: v.GetString("log.level"),
		Watch:    v.GetBool("watch"),
		File:     v.ConfigFileUsed(),
		Chat: Chat{
			Mode:     strings.ToLower(strings.TrimSpace(v.GetString("chat.mode"))),
			Endpoint: v.GetString("chat.endpoint"),
			Timeout:  v.GetDuration("chat.timeout"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreFS, StoreMemory:
	default:
		return fmt.Errorf("%w: store must be %q or %q, got %q", store.ErrInvalid, StoreFS, StoreMemory, c.Store)
	}
	if c.Store == StoreFS && strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("%w: root is required for the %s store", store.ErrInvalid, StoreFS)
	}
	if c.Chat.Timeout <= 0 {
		return fmt.Errorf("%w: chat.timeout must be positive", store.ErrInvalid)
	}
	return nil
}
