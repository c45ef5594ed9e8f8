// Package config loads service configuration. Precedence: built-in
// defaults, then an optional YAML file, then environment variables
// (ONDEESTOU_*). Bounds are validated here so the rest of the program
// can trust the values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andrevmm/ondeestou/internal/domain"
)

// Defaults. The distance/window/queue numbers mirror the documented
// pipeline defaults; everything is overridable.
const (
	DefaultHTTPAddr        = ":8765"
	DefaultMinDistanceM    = 20.0
	DefaultImmediateWindow = 50 * time.Second
	DefaultQueueMaxSize    = 100
	DefaultQueueTTL        = 30 * time.Second
	DefaultSweepInterval   = 5 * time.Second
	DefaultGeocodeTimeout  = 10 * time.Second
	DefaultGeocoderBaseURL = "https://nominatim.openstreetmap.org"
	DefaultH3Resolution    = 10

	minQueueSize = 1
	maxQueueSize = 1024
	minQueueTTL  = time.Second
	maxQueueTTL  = 10 * time.Minute
)

// Config holds everything the composition root needs to wire the
// pipeline.
type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	MinDistanceM    float64       `yaml:"min_distance_m"`
	ImmediateWindow time.Duration `yaml:"immediate_window"`
	StrictAccuracy  bool          `yaml:"strict_accuracy"`
	QueueMaxSize    int           `yaml:"queue_max_size"`
	QueueTTL        time.Duration `yaml:"queue_ttl"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	GeocodeTimeout  time.Duration `yaml:"geocode_timeout"`
	GeocoderBaseURL string        `yaml:"geocoder_base_url"`
	H3Resolution    int           `yaml:"h3_resolution"`
}

// Load builds a Config from defaults, the optional YAML file at path
// (empty path skips the file) and environment overrides, then validates
// bounds.
func Load(path string) (Config, error) {
	cfg := Config{
		HTTPAddr:        DefaultHTTPAddr,
		MinDistanceM:    DefaultMinDistanceM,
		ImmediateWindow: DefaultImmediateWindow,
		QueueMaxSize:    DefaultQueueMaxSize,
		QueueTTL:        DefaultQueueTTL,
		SweepInterval:   DefaultSweepInterval,
		GeocodeTimeout:  DefaultGeocodeTimeout,
		GeocoderBaseURL: DefaultGeocoderBaseURL,
		H3Resolution:    DefaultH3Resolution,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("ONDEESTOU_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("ONDEESTOU_MIN_DISTANCE_M"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.MinDistanceM = f
		}
	}
	if v := os.Getenv("ONDEESTOU_IMMEDIATE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ImmediateWindow = d
		}
	}
	if v := os.Getenv("ONDEESTOU_STRICT_ACCURACY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StrictAccuracy = b
		}
	}
	if v := os.Getenv("ONDEESTOU_QUEUE_MAX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueMaxSize = n
		}
	}
	if v := os.Getenv("ONDEESTOU_QUEUE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.QueueTTL = d
		}
	}
	if v := os.Getenv("ONDEESTOU_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SweepInterval = d
		}
	}
	if v := os.Getenv("ONDEESTOU_GEOCODE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.GeocodeTimeout = d
		}
	}
	if v := os.Getenv("ONDEESTOU_GEOCODER_BASE_URL"); v != "" {
		cfg.GeocoderBaseURL = v
	}
	if v := os.Getenv("ONDEESTOU_H3_RESOLUTION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.H3Resolution = n
		}
	}
}

func (c Config) validate() error {
	if c.QueueMaxSize < minQueueSize || c.QueueMaxSize > maxQueueSize {
		return fmt.Errorf("%w: queue_max_size %d not in [%d, %d]", domain.ErrOutOfRange, c.QueueMaxSize, minQueueSize, maxQueueSize)
	}
	if c.QueueTTL < minQueueTTL || c.QueueTTL > maxQueueTTL {
		return fmt.Errorf("%w: queue_ttl %s not in [%s, %s]", domain.ErrOutOfRange, c.QueueTTL, minQueueTTL, maxQueueTTL)
	}
	if c.MinDistanceM < 0 {
		return fmt.Errorf("%w: min_distance_m must not be negative", domain.ErrOutOfRange)
	}
	if c.ImmediateWindow <= 0 {
		return fmt.Errorf("%w: immediate_window must be positive", domain.ErrOutOfRange)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("%w: sweep_interval must be positive", domain.ErrOutOfRange)
	}
	if c.GeocodeTimeout <= 0 {
		return fmt.Errorf("%w: geocode_timeout must be positive", domain.ErrOutOfRange)
	}
	if c.H3Resolution < 0 || c.H3Resolution > 15 {
		return fmt.Errorf("%w: h3_resolution %d not in [0, 15]", domain.ErrOutOfRange, c.H3Resolution)
	}
	return nil
}
