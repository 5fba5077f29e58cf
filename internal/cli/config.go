package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the TOML configuration for the serve command.
//
// Example (~/.config/histvet/config.toml):
//
//	[server]
//	addr = ":8080"
//
//	[cache]
//	backend = "redis"   # "file", "redis", or "none"
//	namespace = "prod:" # optional key prefix
//
//	[redis]
//	addr = "localhost:6379"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//	database = "histvet"
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Redis  RedisConfig  `toml:"redis"`
	Mongo  MongoConfig  `toml:"mongo"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects and namespaces the verdict cache backend.
type CacheConfig struct {
	Backend   string `toml:"backend"` // "file" (default), "redis", "none"
	Dir       string `toml:"dir"`     // file backend root; defaults to the XDG cache dir
	Namespace string `toml:"namespace"`
}

// RedisConfig holds connection settings for the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig holds connection settings for the report store.
// An empty URI disables report persistence.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// defaultConfig returns the configuration used when no file is present.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Cache:  CacheConfig{Backend: "file"},
	}
}

// loadConfig reads a TOML config file. With an empty path the default
// location (~/.config/histvet/config.toml) is tried; a missing default
// file is not an error, a missing explicit one is.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, ".config", appName, "config.toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "file"
	}
	return cfg, nil
}
