package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultConfigPath = "config.json"
	defaultDotEnvPath = ".env"
	defaultListenAddr = ":5000"
	defaultAMQPQueue  = "expense_events"
)

// DBConfig holds the PostgreSQL connection settings read from the environment.
type DBConfig struct {
	Name     string
	User     string
	Password string
	Host     string
	Port     string
}

// Config is built once at start-up and passed to the components that need it.
type Config struct {
	DB DBConfig `json:"-"`

	ListenAddr     string   `json:"listen_addr"`
	LogLevel       string   `json:"log_level"`
	AllowedOrigins []string `json:"allowed_origins"`
	AMQPURL        string   `json:"amqp_url"`
	AMQPQueue      string   `json:"amqp_queue"`
}

// loadConfig reads the database settings from the environment and overlays
// the optional JSON file at path. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := &Config{
		DB:         dbConfigFromEnv(),
		ListenAddr: defaultListenAddr,
		LogLevel:   "info",
		AMQPQueue:  defaultAMQPQueue,
	}

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("No config file found, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("open config file: %w", err)
	default:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("No .env file found, relying on the process environment", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func dbConfigFromEnv() DBConfig {
	return DBConfig{
		Name:     os.Getenv("DB_NAME"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
	}
}

// Validate checks the settings that would otherwise only fail on first use.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.DB.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid DB_PORT '%s': must be a number", c.DB.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid DB_PORT %d: must be between 1 and 65535", port))
	}

	if c.ListenAddr == "" {
		problems = append(problems, "listen_addr cannot be empty")
	}

	if _, err := parseLogLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid amqp_url: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid amqp_url scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "amqp_queue cannot be empty when amqp_url is set")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ConnString renders the settings as a postgres:// URL with escaped credentials.
func (c DBConfig) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	switch {
	case c.User != "" && c.Password != "":
		u.User = url.UserPassword(c.User, c.Password)
	case c.User != "":
		u.User = url.User(c.User)
	}
	return u.String()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
