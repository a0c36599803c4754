package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Provider    ProviderConfig    `yaml:"provider"`
	Reservation ReservationConfig `yaml:"reservation"`
	Worker      WorkerConfig      `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	ReservationTopic   string   `yaml:"reservation_topic"`
	ConfirmationsTopic string   `yaml:"confirmations_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type ProviderConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Currency       string `yaml:"currency"`
}

type ReservationConfig struct {
	SlotLockTTLSeconds int `yaml:"slot_lock_ttl_seconds"`
	AreasCacheTTL      int `yaml:"areas_cache_ttl_seconds"`
	ChargeDueDays      int `yaml:"charge_due_days"`
	SessionTTLHours    int `yaml:"session_ttl_hours"`
}

type WorkerConfig struct {
	OverdueSweepMinutes int `yaml:"overdue_sweep_minutes"`
}

// SweepInterval never returns zero: a ticker with a zero period panics,
// so an omitted setting falls back to half an hour.
func (w WorkerConfig) SweepInterval() time.Duration {
	if w.OverdueSweepMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(w.OverdueSweepMinutes) * time.Minute
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
