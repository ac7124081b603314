package photos

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config carries the environment-tunable defaults applied in New. Functional
// options override these per Library.
type Config struct {
	// PageSize is the logical album page size (PHOTOS_PAGE_SIZE).
	PageSize int `envconfig:"PAGE_SIZE" default:"100"`

	// HTTPTimeout bounds a single HTTP request when New builds its own
	// http.Client (PHOTOS_HTTP_TIMEOUT).
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// MaxAttempts, when > 0, installs an ExponentialRetryPolicy with that
	// attempt cap (PHOTOS_MAX_ATTEMPTS). Zero leaves failures propagating
	// immediately.
	MaxAttempts int `envconfig:"MAX_ATTEMPTS" default:"0"`

	// Debug enables HTTP request/response logging (PHOTOS_DEBUG).
	Debug bool `envconfig:"DEBUG" default:"false"`
}

// LoadConfig reads Config from PHOTOS_* environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("photos", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
