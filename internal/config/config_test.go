package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverFile, cfg.StorageDriver)
	assert.Equal(t, "schedule.json", cfg.SchedulePath())
	assert.Equal(t, "users.txt", cfg.RegistrationsPath())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.InDelta(t, 20.0, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, "fitness", cfg.Database.DBName)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", " Postgres ")
	t.Setenv("DATA_DIR", dir)
	t.Setenv("REGISTRATIONS_FILE", "/var/lib/fitbook/users.txt")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DB_NAME", "bookings")
	t.Setenv("RATE_LIMIT_RPS", "0")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, filepath.Join(dir, "schedule.json"), cfg.SchedulePath())
	assert.Equal(t, "/var/lib/fitbook/users.txt", cfg.RegistrationsPath(), "absolute paths ignore data_dir")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "bookings", cfg.Database.DBName)
	assert.Zero(t, cfg.RateLimitRPS)
}

func TestLoad_FlagValuesWin(t *testing.T) {
	t.Setenv("SCHEDULE_FILE", "from-env.json")
	v := viper.New()
	v.Set("schedule_file", "from-flag.json")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.json", cfg.ScheduleFile)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"file driver", Config{Port: "8080", StorageDriver: DriverFile}, false},
		{"postgres driver", Config{Port: "8080", StorageDriver: DriverPostgres}, false},
		{"missing port", Config{StorageDriver: DriverFile}, true},
		{"negative burst", Config{Port: "8080", StorageDriver: DriverFile, RateLimitBurst: -1}, true},
		{"empty driver", Config{Port: "8080"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
