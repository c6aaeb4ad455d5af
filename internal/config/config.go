package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Cryborg/sugoroku/internal/game"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "SUGOROKU_"

// 存储驱动
const (
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config 服务端配置
type Config struct {
	Server  ServerConfig  `yaml:"server" envPrefix:"SERVER_"`
	Redis   RedisConfig   `yaml:"redis" envPrefix:"REDIS_"`
	Storage StorageConfig `yaml:"storage" envPrefix:"STORAGE_"`
	Game    GameConfig    `yaml:"game" envPrefix:"GAME_"`
	Log     LogConfig     `yaml:"log" envPrefix:"LOG_"`
}

// ServerConfig HTTP / WebSocket 服务器配置
type ServerConfig struct {
	Host           string   `yaml:"host" env:"HOST"`
	Port           int      `yaml:"port" env:"PORT"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      float64  `yaml:"rate_limit" env:"RATE_LIMIT"` // 每个 IP 每秒请求数
	RateBurst      int      `yaml:"rate_burst" env:"RATE_BURST"`
}

// Addr returns host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Driver     string `yaml:"driver" env:"DRIVER"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
}

// GameConfig 游戏配置
type GameConfig struct {
	TurnTimer      int    `yaml:"turn_timer" env:"TURN_TIMER"` // 每回合时长（秒）
	MaxTurns       int    `yaml:"max_turns" env:"MAX_TURNS"`
	StartingPoints int    `yaml:"starting_points" env:"STARTING_POINTS"`
	FreeRooms      bool   `yaml:"free_rooms" env:"FREE_ROOMS"`
	Resolution     string `yaml:"resolution" env:"RESOLUTION"`
	SweepInterval  int    `yaml:"sweep_interval" env:"SWEEP_INTERVAL"` // 超时轮询间隔（秒）
}

// TurnTimerDuration 返回回合时长
func (c *GameConfig) TurnTimerDuration() time.Duration {
	return time.Duration(c.TurnTimer) * time.Second
}

// SweepIntervalDuration 返回超时轮询间隔
func (c *GameConfig) SweepIntervalDuration() time.Duration {
	return time.Duration(c.SweepInterval) * time.Second
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // console | json
}

// Load 加载配置文件，再用 SUGOROKU_* 环境变量覆盖。path 为空时只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 设置默认值
func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = d.Server.AllowedOrigins
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = d.Server.RateLimit
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = d.Server.RateBurst
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = d.Redis.Addr
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = d.Storage.SQLitePath
	}
	if c.Game.TurnTimer == 0 {
		c.Game.TurnTimer = d.Game.TurnTimer
	}
	if c.Game.MaxTurns == 0 {
		c.Game.MaxTurns = d.Game.MaxTurns
	}
	if c.Game.StartingPoints == 0 {
		c.Game.StartingPoints = d.Game.StartingPoints
	}
	if c.Game.Resolution == "" {
		c.Game.Resolution = d.Game.Resolution
	}
	if c.Game.SweepInterval == 0 {
		c.Game.SweepInterval = d.Game.SweepInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverRedis, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if !game.Resolution(c.Game.Resolution).Valid() {
		return fmt.Errorf("unknown resolution mode %q", c.Game.Resolution)
	}
	if c.Game.StartingPoints < 1 || c.Game.StartingPoints > game.MaxStartingPoints {
		return fmt.Errorf("starting_points must be between 1 and %d", game.MaxStartingPoints)
	}
	if c.Game.MaxTurns < 1 {
		return fmt.Errorf("max_turns must be positive")
	}
	if c.Game.TurnTimer < 1 {
		return fmt.Errorf("turn_timer must be positive")
	}
	return nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"*"},
			RateLimit:      20,
			RateBurst:      40,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Storage: StorageConfig{
			Driver:     DriverRedis,
			SQLitePath: "sugoroku.db",
		},
		Game: GameConfig{
			TurnTimer:      game.DefaultTurnTimer,
			MaxTurns:       game.DefaultMaxTurns,
			StartingPoints: game.DefaultStartingPoints,
			Resolution:     string(game.ResolutionImmediate),
			SweepInterval:  5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
