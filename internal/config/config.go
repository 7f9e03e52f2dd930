// Package config loads the settings shared by the labelmask commands.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"seehuhn.de/go/labelmask"
	"seehuhn.de/go/labelmask/labelme"
	"seehuhn.de/go/labelmask/maskio"
)

// EnvPrefix is the prefix of environment variables overriding settings,
// e.g. LABELMASK_REDIS_ADDR for redis.addr.
const EnvPrefix = "LABELMASK"

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Mask   MaskConfig   `mapstructure:"mask"`
	Server ServerConfig `mapstructure:"server"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

type MaskConfig struct {
	LineWidth        int    `mapstructure:"line_width"`
	PointRadius      int    `mapstructure:"point_radius"`
	FillRule         string `mapstructure:"fill_rule"`
	UnknownAsPolygon bool   `mapstructure:"unknown_as_polygon"`
	Invert           bool   `mapstructure:"invert"`
	Format           string `mapstructure:"format"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodySize  int64         `mapstructure:"max_body_size"`
	MaxPixels    int           `mapstructure:"max_pixels"` // per uploaded image
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// NewViper returns a viper instance with defaults and environment
// overrides, but without a config file.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the YAML file at path on top of the defaults.
// An empty path uses the defaults and environment only.
func Load(path string) (*Config, error) {
	v := NewViper()
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return FromViper(v)
}

// ReadFile merges the YAML file at path into v.
// An empty path leaves v unchanged.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// BindFlags lets the command line flags in fs override the mask settings.
// Flags which are not defined in fs are ignored.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range maskFlags {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

var maskFlags = map[string]string{
	"mask.line_width":         "line-width",
	"mask.point_radius":       "point-radius",
	"mask.fill_rule":          "fill-rule",
	"mask.unknown_as_polygon": "unknown-as-polygon",
	"mask.invert":             "invert",
	"mask.format":             "format",
	"log.mode":                "log-mode",
	"server.port":             "port",
}

// New loads config.yaml from the working directory, falling back to the
// defaults if the file cannot be read.
func New() *Config {
	cfg, err := Load("config.yaml")
	if err != nil {
		cfg, _ = FromViper(NewViper())
	}
	return cfg
}

// FromViper decodes and checks the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.mode", "debug")

	v.SetDefault("mask.line_width", labelmask.DefaultLineWidth)
	v.SetDefault("mask.point_radius", labelmask.DefaultPointRadius)
	v.SetDefault("mask.fill_rule", "evenodd")
	v.SetDefault("mask.unknown_as_polygon", false)
	v.SetDefault("mask.invert", false)
	v.SetDefault("mask.format", "png")

	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.max_body_size", 32*1024*1024)
	v.SetDefault("server.max_pixels", 8192*8192)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
}

// Validate checks the values which the libraries would reject later.
func (c *Config) Validate() error {
	var errs []error
	if c.Mask.LineWidth < 0 {
		errs = append(errs, fmt.Errorf("mask.line_width must not be negative, got %d", c.Mask.LineWidth))
	}
	if c.Mask.PointRadius < 0 {
		errs = append(errs, fmt.Errorf("mask.point_radius must not be negative, got %d", c.Mask.PointRadius))
	}
	if _, err := ParseFillRule(c.Mask.FillRule); err != nil {
		errs = append(errs, err)
	}
	if _, err := maskio.ParseFormat(c.Mask.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be positive, got %d", c.Server.MaxBodySize))
	}
	if c.Server.MaxPixels <= 0 || c.Server.MaxPixels > labelmask.MaxPixels {
		errs = append(errs, fmt.Errorf("server.max_pixels must be in 1..%d, got %d",
			labelmask.MaxPixels, c.Server.MaxPixels))
	}
	return errors.Join(errs...)
}

// ParseFillRule maps "evenodd" and "nonzero" to fill rules.
func ParseFillRule(name string) (labelmask.FillRule, error) {
	switch strings.ToLower(name) {
	case "", "evenodd", "even-odd":
		return labelmask.EvenOdd, nil
	case "nonzero", "non-zero":
		return labelmask.NonZero, nil
	default:
		return 0, fmt.Errorf("unknown fill rule %q", name)
	}
}

// LabelmeOptions returns the shape conversion settings.
// The config must have passed Validate.
func (c *Config) LabelmeOptions() labelme.Options {
	rule, _ := ParseFillRule(c.Mask.FillRule)
	return labelme.Options{
		LineWidth:        c.Mask.LineWidth,
		PointRadius:      c.Mask.PointRadius,
		Rule:             rule,
		UnknownAsPolygon: c.Mask.UnknownAsPolygon,
	}
}

// MaskioOptions returns the image encoding settings.
// The config must have passed Validate.
func (c *Config) MaskioOptions() maskio.Options {
	format, _ := maskio.ParseFormat(c.Mask.Format)
	return maskio.Options{Format: format, Invert: c.Mask.Invert}
}
