// Package config merges defaults, an optional .env file, environment
// variables and command-line flags into one Config.
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/database"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Config is the runtime configuration of the service.
type Config struct {
	Port        string
	Environment string

	StorageDriver     string
	DataDir           string
	ScheduleFile      string
	RegistrationsFile string

	Database database.Config

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
	WebDir         string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("storage_driver", DriverFile)
	v.SetDefault("data_dir", ".")
	v.SetDefault("schedule_file", "schedule.json")
	v.SetDefault("registrations_file", "users.txt")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "fitness")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("rate_limit_rps", 20.0)
	v.SetDefault("rate_limit_burst", 40)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("web_dir", "")
}

// Load reads .env (if present) and resolves the configuration from v.
// Keys are looked up as upper-case environment variables, e.g. SCHEDULE_FILE.
func Load(v *viper.Viper) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Port:              v.GetString("port"),
		Environment:       v.GetString("env"),
		StorageDriver:     strings.ToLower(strings.TrimSpace(v.GetString("storage_driver"))),
		DataDir:           v.GetString("data_dir"),
		ScheduleFile:      v.GetString("schedule_file"),
		RegistrationsFile: v.GetString("registrations_file"),
		Database: database.Config{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
		CORSOrigins:    parseCSV(v.GetString("cors_origins")),
		WebDir:         v.GetString("web_dir"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverFile, DriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver %q (want %q or %q)", c.StorageDriver, DriverFile, DriverPostgres)
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	return nil
}

// SchedulePath resolves the schedule document location against DataDir.
func (c *Config) SchedulePath() string {
	return c.resolve(c.ScheduleFile)
}

// RegistrationsPath resolves the registration log location against DataDir.
func (c *Config) RegistrationsPath() string {
	return c.resolve(c.RegistrationsFile)
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) || c.DataDir == "" {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
