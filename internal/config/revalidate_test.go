package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateRevalidateConfig(t *testing.T) {
	assert.NoError(t, validateRevalidateConfig(DefaultRevalidateConfig()))

	cfg := DefaultRevalidateConfig()
	cfg.Scheme = "ftp"
	assert.Error(t, validateRevalidateConfig(cfg))

	cfg = DefaultRevalidateConfig()
	cfg.RootDomain = "  "
	assert.Error(t, validateRevalidateConfig(cfg))
}

func TestRevalidateTimeoutDefaults(t *testing.T) {
	cfg := RevalidateConfig{}
	assert.Equal(t, 10*time.Second, cfg.Timeout())

	cfg.TimeoutSeconds = 3
	assert.Equal(t, 3*time.Second, cfg.Timeout())
}

func TestStaticRevalidateConfig(t *testing.T) {
	cfg := DefaultRevalidateConfig()
	cfg.RootDomain = "example.test"
	holder := NewStaticRevalidateConfig(cfg)
	assert.Equal(t, "example.test", holder.Get().RootDomain)
}
