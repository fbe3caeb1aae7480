package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort             string  `mapstructure:"SERVER_PORT"`
	PostgresURL            string  `mapstructure:"POSTGRES_URL"`
	RedisAddr              string  `mapstructure:"REDIS_ADDR"`
	RedisPassword          string  `mapstructure:"REDIS_PASSWORD"`
	ControlJWTSecret       string  `mapstructure:"CONTROL_JWT_SECRET"`
	TelemetryTickMS        int     `mapstructure:"TELEMETRY_TICK_MS"`
	WeatherTickSec         int     `mapstructure:"WEATHER_TICK_SEC"`
	TotalLaps              int     `mapstructure:"TOTAL_LAPS"`
	NumCars                int     `mapstructure:"NUM_CARS"`
	SlowdownThreshold      float64 `mapstructure:"SLOWDOWN_THRESHOLD"`
	PitCongestionThreshold int     `mapstructure:"PIT_CONGESTION_THRESHOLD"`
	AlertCooldownSec       int     `mapstructure:"ALERT_COOLDOWN_SEC"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("POSTGRES_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("CONTROL_JWT_SECRET", "")
	viper.SetDefault("TELEMETRY_TICK_MS", 50)
	viper.SetDefault("WEATHER_TICK_SEC", 10)
	viper.SetDefault("TOTAL_LAPS", 50)
	viper.SetDefault("NUM_CARS", 20)
	viper.SetDefault("SLOWDOWN_THRESHOLD", 0.3)
	viper.SetDefault("PIT_CONGESTION_THRESHOLD", 3)
	viper.SetDefault("ALERT_COOLDOWN_SEC", 5)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// Validate rejects settings the simulator cannot run with.
func (c Config) Validate() error {
	if c.TelemetryTickMS <= 0 {
		return fmt.Errorf("TELEMETRY_TICK_MS must be positive, got %d", c.TelemetryTickMS)
	}
	if c.WeatherTickSec <= 0 {
		return fmt.Errorf("WEATHER_TICK_SEC must be positive, got %d", c.WeatherTickSec)
	}
	if c.TotalLaps <= 0 {
		return fmt.Errorf("TOTAL_LAPS must be positive, got %d", c.TotalLaps)
	}
	if c.NumCars <= 0 {
		return fmt.Errorf("NUM_CARS must be positive, got %d", c.NumCars)
	}
	if c.SlowdownThreshold <= 0 || c.SlowdownThreshold >= 1 {
		return fmt.Errorf("SLOWDOWN_THRESHOLD must be in (0,1), got %v", c.SlowdownThreshold)
	}
	if c.PitCongestionThreshold <= 0 {
		return fmt.Errorf("PIT_CONGESTION_THRESHOLD must be positive, got %d", c.PitCongestionThreshold)
	}
	if c.AlertCooldownSec <= 0 {
		return fmt.Errorf("ALERT_COOLDOWN_SEC must be positive, got %d", c.AlertCooldownSec)
	}
	return nil
}

func (c Config) TelemetryTick() time.Duration {
	return time.Duration(c.TelemetryTickMS) * time.Millisecond
}

func (c Config) WeatherTick() time.Duration {
	return time.Duration(c.WeatherTickSec) * time.Second
}

func (c Config) AlertCooldown() time.Duration {
	return time.Duration(c.AlertCooldownSec) * time.Second
}
