package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Host     string          `mapstructure:"host"`
	Port     int             `mapstructure:"port"`
	LogLevel string          `mapstructure:"log_level"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	Session  SessionConfig   `mapstructure:"session"`
	Socket   WebSocketConfig `mapstructure:"websocket"`
	Game     GameConfig      `mapstructure:"game"`
	Room     RoomConfig      `mapstructure:"room"`
}

type LoggingConfig struct {
	// json 或 console
	Format string `mapstructure:"format"`
}

type SessionConfig struct {
	Cookie  string        `mapstructure:"cookie"`
	Expires time.Duration `mapstructure:"expires"`
}

type WebSocketConfig struct {
	ReadLimit         int64         `mapstructure:"read_limit"`
	SendBuffer        int           `mapstructure:"send_buffer"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	HeartbeatTimeout  time.Duration `mapstructure:"heartbeat_timeout"`
	// 每个连接每秒允许的入站消息数，以及突发上限
	MessageRate  float64 `mapstructure:"message_rate"`
	MessageBurst int     `mapstructure:"message_burst"`
}

type GameConfig struct {
	WordList       string `mapstructure:"word_list"`
	MinPlayers     int    `mapstructure:"min_players"`
	MaxPlayers     int    `mapstructure:"max_players"`
	CandidateWords int    `mapstructure:"candidate_words"`

	Tick            time.Duration `mapstructure:"tick"`
	WaitingForStart time.Duration `mapstructure:"waiting_for_start"`
	NewRound        time.Duration `mapstructure:"new_round"`
	GameRunning     time.Duration `mapstructure:"game_running"`
	ShowWord        time.Duration `mapstructure:"show_word"`

	GuessScore       int `mapstructure:"guess_score"`
	SpeedMultiplier  int `mapstructure:"speed_multiplier"`
	DrawerBonus      int `mapstructure:"drawer_bonus"`
	UnguessedPenalty int `mapstructure:"unguessed_penalty"`
}

type RoomConfig struct {
	// 为 0 时不自动清理空房间
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// InitConfig 加载配置，失败直接 panic，仅用于进程启动
func InitConfig(path string) *AppConfig {
	c, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("加载配置失败: %w", err))
	}

	return c
}

// Load 依次应用默认值、配置文件（存在时）和 DRAWING_ 前缀的环境变量
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.SetEnvPrefix("DRAWING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8001)
	v.SetDefault("log_level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("session.cookie", "SESSION")
	v.SetDefault("session.expires", "24h")

	v.SetDefault("websocket.read_limit", 64*1024)
	v.SetDefault("websocket.send_buffer", 64)
	v.SetDefault("websocket.write_timeout", "5s")
	v.SetDefault("websocket.heartbeat_interval", "30s")
	v.SetDefault("websocket.heartbeat_timeout", "45s")
	v.SetDefault("websocket.message_rate", 60)
	v.SetDefault("websocket.message_burst", 120)

	v.SetDefault("game.word_list", "word_list.txt")
	v.SetDefault("game.min_players", 2)
	v.SetDefault("game.max_players", 8)
	v.SetDefault("game.candidate_words", 3)
	v.SetDefault("game.tick", "1s")
	v.SetDefault("game.waiting_for_start", "10s")
	v.SetDefault("game.new_round", "20s")
	v.SetDefault("game.game_running", "60s")
	v.SetDefault("game.show_word", "10s")
	v.SetDefault("game.guess_score", 50)
	v.SetDefault("game.speed_multiplier", 50)
	v.SetDefault("game.drawer_bonus", 50)
	v.SetDefault("game.unguessed_penalty", 50)

	v.SetDefault("room.idle_ttl", "0s")
}

// Validate 收集所有不合法的配置项，一次性返回
func (c *AppConfig) Validate() error {
	var errs []string

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be 1-65535, got %d", c.Port))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.LogLevel] {
		errs = append(errs, fmt.Sprintf("log_level must be one of [debug, info, warn, error], got %q", c.LogLevel))
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", c.Logging.Format))
	}

	if c.Session.Cookie == "" {
		errs = append(errs, "session.cookie must not be empty")
	}

	if c.Socket.SendBuffer < 1 {
		errs = append(errs, fmt.Sprintf("websocket.send_buffer must be >= 1, got %d", c.Socket.SendBuffer))
	}
	if c.Socket.WriteTimeout <= 0 {
		errs = append(errs, "websocket.write_timeout must be positive")
	}
	if c.Socket.HeartbeatInterval <= 0 || c.Socket.HeartbeatTimeout <= c.Socket.HeartbeatInterval {
		errs = append(errs, "websocket.heartbeat_timeout must exceed a positive websocket.heartbeat_interval")
	}
	if c.Socket.MessageRate <= 0 || c.Socket.MessageBurst < 1 {
		errs = append(errs, "websocket.message_rate and websocket.message_burst must be positive")
	}

	g := c.Game
	if g.MinPlayers < 2 {
		errs = append(errs, fmt.Sprintf("game.min_players must be >= 2, got %d", g.MinPlayers))
	}
	if g.MaxPlayers < g.MinPlayers {
		errs = append(errs, "game.max_players must not be below game.min_players")
	}
	if g.CandidateWords < 1 {
		errs = append(errs, fmt.Sprintf("game.candidate_words must be >= 1, got %d", g.CandidateWords))
	}
	if g.Tick <= 0 {
		errs = append(errs, "game.tick must be positive")
	}
	for name, d := range map[string]time.Duration{
		"game.waiting_for_start": g.WaitingForStart,
		"game.new_round":         g.NewRound,
		"game.game_running":      g.GameRunning,
		"game.show_word":         g.ShowWord,
	} {
		if d <= 0 {
			errs = append(errs, name+" must be positive")
		}
	}

	if c.Room.IdleTTL < 0 {
		errs = append(errs, "room.idle_ttl must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
