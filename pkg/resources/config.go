package resources

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Name         string
	Version      string
	Env          string
	LogLevel     string
	HTTPHost     string
	HTTPPort     string
	DebugPort    string
	DayStart     string
	DayEnd       string
	IDMax        int
	OtelEnabled  bool
	OtelEndpoint string
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "event-scheduler")
	viper.SetDefault("APP_VERSION", "1.0")
	viper.SetDefault("APP_ENV", "local")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_HOST", "localhost")
	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("DEBUG_PORT", "6060")
	viper.SetDefault("DAY_START", "00:00")
	viper.SetDefault("DAY_END", "24:00")
	viper.SetDefault("ID_MAX", 10000)
	viper.SetDefault("OTEL_ENABLED", false)
	viper.SetDefault("OTEL_ENDPOINT", "localhost:4317")
}

// LoadConfig reads the environment, optionally seeded from a .env file in the
// working directory.
func LoadConfig() (*Config, error) {
	// .env is optional when the variables come from the environment.
	_ = godotenv.Load()

	setDefaults()
	viper.AutomaticEnv()

	cfg := &Config{
		Name:         viper.GetString("APP_NAME"),
		Version:      viper.GetString("APP_VERSION"),
		Env:          viper.GetString("APP_ENV"),
		LogLevel:     viper.GetString("LOG_LEVEL"),
		HTTPHost:     viper.GetString("HTTP_HOST"),
		HTTPPort:     viper.GetString("HTTP_PORT"),
		DebugPort:    viper.GetString("DEBUG_PORT"),
		DayStart:     viper.GetString("DAY_START"),
		DayEnd:       viper.GetString("DAY_END"),
		IDMax:        viper.GetInt("ID_MAX"),
		OtelEnabled:  viper.GetBool("OTEL_ENABLED"),
		OtelEndpoint: viper.GetString("OTEL_ENDPOINT"),
	}

	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("config: APP_NAME is required"))
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: LOG_LEVEL %q: %w", c.LogLevel, err))
	}

	for key, port := range map[string]string{"HTTP_PORT": c.HTTPPort, "DEBUG_PORT": c.DebugPort} {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			errs = append(errs, fmt.Errorf("config: %s %q is not a valid port", key, port))
		}
	}

	if c.IDMax <= 0 {
		errs = append(errs, fmt.Errorf("config: ID_MAX must be positive, got %d", c.IDMax))
	}

	if c.OtelEnabled && strings.TrimSpace(c.OtelEndpoint) == "" {
		errs = append(errs, errors.New("config: OTEL_ENDPOINT is required when OTEL_ENABLED is set"))
	}

	return errors.Join(errs...)
}
