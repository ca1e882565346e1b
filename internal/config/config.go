package config

import (
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AccessKeyHash  string `envconfig:"ACCESS_KEY_HASH"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	CenteredScaling    bool    `envconfig:"CENTERED_SCALING" default:"false"`
	MinClipSize        float64 `envconfig:"MIN_CLIP_SIZE" default:"1"`
	RotateHandleOffset float64 `envconfig:"ROTATE_HANDLE_OFFSET" default:"30"`
	PreviewScale       float64 `envconfig:"PREVIEW_SCALE" default:"1"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// OriginHosts returns the origins without their scheme, the form the
// websocket origin check expects.
func (c *Config) OriginHosts() []string {
	origins := c.Origins()
	hosts := make([]string, len(origins))
	for i, o := range origins {
		if _, rest, ok := strings.Cut(o, "://"); ok {
			o = rest
		}
		hosts[i] = o
	}
	return hosts
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
