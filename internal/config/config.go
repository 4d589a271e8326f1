package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from config.yml. IdleTTL is how long an untouched session stays in memory; its
// checkpoint lives for SessionTTL.
type Config struct {
	LogLevel      string        `yaml:"log-level" env-default:"info"`
	HTTPPort      string        `yaml:"http-port" env-default:"9090"`
	SessionTTL    time.Duration `yaml:"session-ttl" env-default:"24h"`
	IdleTTL       time.Duration `yaml:"idle-ttl" env-default:"30m"`
	EvictInterval time.Duration `yaml:"evict-interval" env-default:"1m"`
	Redis         Redis         `yaml:"redis"`
	Authority     Authority     `yaml:"authority"`
	Board         Board         `yaml:"board"`
	TUI           TUI           `yaml:"tui"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Authority points at the service that owns the game rules.
type Authority struct {
	BaseURL string        `yaml:"base-url" env-default:"http://localhost:5000"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

// Board is the pixel geometry shared by the click mapper and the PNG renderer.
type Board struct {
	CellSize int `yaml:"cell-size" env-default:"60"`
	OffsetX  int `yaml:"offset-x" env-default:"20"`
	OffsetY  int `yaml:"offset-y" env-default:"20"`
}

// TUI is the character geometry of the terminal client.
type TUI struct {
	CellWidth  int `yaml:"cell-width" env-default:"4"`
	CellHeight int `yaml:"cell-height" env-default:"2"`
	PadLeft    int `yaml:"pad-left" env-default:"3"`
	PadTop     int `yaml:"pad-top" env-default:"2"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// ParseLevel maps the log-level setting to a slog level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
