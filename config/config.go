package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address  string `mapstructure:"address"`
	HTTPPort string `mapstructure:"http_port"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "mysql" | "postgres" | "" (без БД)
	DSN    string `mapstructure:"dsn"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" | "json"
	File   string `mapstructure:"file"`
}

type MediaConfig struct {
	Root    string `mapstructure:"root"`
	APKPath string `mapstructure:"apk_path"` // необязательный публичный APK
}

type AdminConfig struct {
	// PasswordHash имеет приоритет; Password — запасной вариант для дев-окружения.
	PasswordHash      string `mapstructure:"password_hash"`
	Password          string `mapstructure:"password"`
	SessionSecret     string `mapstructure:"session_secret"`
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	Burst     int `mapstructure:"burst"`
}

type DeviceConfig struct {
	SharedSecret string `mapstructure:"shared_secret"`
}

type HotelConfig struct {
	Name       string `mapstructure:"name"`
	AppVersion string `mapstructure:"app_version"`
	Rooms      []int  `mapstructure:"rooms"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Media     MediaConfig     `mapstructure:"media"`
	Admin     AdminConfig     `mapstructure:"admin"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Device    DeviceConfig    `mapstructure:"device"`
	Hotel     HotelConfig     `mapstructure:"hotel"`
}

// RoomAllowed — номер должен быть из фиксированного списка отеля.
func (h HotelConfig) RoomAllowed(room int) bool {
	for _, r := range h.Rooms {
		if r == room {
			return true
		}
	}
	return false
}

func defaultRooms() []int {
	rooms := make([]int, 0, 29)
	for r := 101; r <= 109; r++ {
		rooms = append(rooms, r)
	}
	for r := 201; r <= 210; r++ {
		rooms = append(rooms, r)
	}
	for r := 301; r <= 310; r++ {
		rooms = append(rooms, r)
	}
	return rooms
}

// Load читает конфиг из файла (если задан) и переменных окружения INNKEEP_*.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("media.root", "./media")
	v.SetDefault("media.apk_path", "")
	v.SetDefault("admin.password_hash", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.session_secret", "")
	v.SetDefault("admin.session_ttl_minutes", 60)
	v.SetDefault("rate_limit.per_minute", 30)
	v.SetDefault("rate_limit.burst", 10)
	v.SetDefault("device.shared_secret", "")
	v.SetDefault("hotel.name", "ASC Hotel Chodov")
	v.SetDefault("hotel.app_version", "dev")
	v.SetDefault("hotel.rooms", defaultRooms())

	v.SetEnvPrefix("INNKEEP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Hotel.Rooms) == 0 {
		cfg.Hotel.Rooms = defaultRooms()
	}
	return &cfg, nil
}
