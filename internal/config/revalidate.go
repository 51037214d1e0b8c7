package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RevalidateConfig controls outbound cache revalidation requests.
type RevalidateConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Scheme         string `mapstructure:"scheme"`
	RootDomain     string `mapstructure:"rootDomain"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

func DefaultRevalidateConfig() RevalidateConfig {
	return RevalidateConfig{
		Enabled:        true,
		Scheme:         "https",
		RootDomain:     "vercel.pub",
		TimeoutSeconds: 10,
	}
}

func (c RevalidateConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type RevalidateConfigHolder struct {
	current atomic.Value // holds RevalidateConfig
}

// NewStaticRevalidateConfig returns a holder that never reloads.
func NewStaticRevalidateConfig(cfg RevalidateConfig) *RevalidateConfigHolder {
	holder := &RevalidateConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewRevalidateConfigHolder(log *zap.Logger) (*RevalidateConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.revalidate")

	v := viper.New()

	v.SetConfigName("revalidate")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/campaignhub")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CAMPAIGNHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRevalidateConfig()
	v.SetDefault("revalidate.enabled", defaults.Enabled)
	v.SetDefault("revalidate.scheme", defaults.Scheme)
	v.SetDefault("revalidate.rootDomain", defaults.RootDomain)
	v.SetDefault("revalidate.timeoutSeconds", defaults.TimeoutSeconds)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg RevalidateConfig
	if err := v.UnmarshalKey("revalidate", &cfg); err != nil {
		return nil, err
	}
	if err := validateRevalidateConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticRevalidateConfig(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated RevalidateConfig
		if err := v.UnmarshalKey("revalidate", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateRevalidateConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *RevalidateConfigHolder) Get() RevalidateConfig {
	return h.current.Load().(RevalidateConfig)
}

func validateRevalidateConfig(cfg RevalidateConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Scheme)) {
	case "http", "https":
	default:
		return errors.New("revalidate.scheme must be http or https")
	}
	if strings.TrimSpace(cfg.RootDomain) == "" {
		return errors.New("revalidate.rootDomain cannot be empty")
	}
	return nil
}
