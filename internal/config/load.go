package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PETDECK"

// Load reads configuration from defaults, an optional config.yaml in the
// working directory (or the file named by PETDECK_CONFIG_FILE) and
// PETDECK_* environment variables, in increasing order of precedence. The
// result is validated before it is returned.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to Unmarshal unless bound.
	for _, key := range []string{"database.url", "auth.jwt_secret"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.RegisterValidation("clocktime", validateClockTime); err != nil {
		return fmt.Errorf("failed to register validation: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func validateClockTime(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func readConfigFile(v *viper.Viper) error {
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("schedule.session_times", []string{"09:00", "18:00"})
	v.SetDefault("schedule.reminder_lead_minutes", 30)
	v.SetDefault("schedule.deadline_grace_minutes", 90)
	v.SetDefault("schedule.timezone", "Europe/Helsinki")
	v.SetDefault("schedule.tick_interval", time.Minute)
	v.SetDefault("schedule.tick_concurrency", 8)

	v.SetDefault("learning.graduation_threshold", 2)
	v.SetDefault("learning.review_interval_days", []int{1, 3, 7, 16, 35})
	v.SetDefault("learning.demote_by", 2)
	v.SetDefault("learning.correctness_threshold", 80)
	v.SetDefault("learning.session_capacity", 10)
	v.SetDefault("learning.max_sessions_per_day", 2)
	v.SetDefault("learning.max_retries", 1)
	v.SetDefault("learning.reward_milestones", []int{3, 5, 10})
	v.SetDefault("learning.care_gates", []int{5})

	v.SetDefault("pet.initial_vital", 100)
	for _, vital := range []string{"hunger", "thirst", "hygiene", "energy", "mood", "health"} {
		v.SetDefault("pet.decay."+vital, 10)
	}
	v.SetDefault("pet.recovery_bonus", 10)
	v.SetDefault("pet.mercy_window", 3)
	v.SetDefault("pet.low_water_mark", 30)
	v.SetDefault("pet.care_amount", 30)
	v.SetDefault("pet.revival_baseline", 50)
	v.SetDefault("pet.revival_token_ttl", 30*time.Minute)
	v.SetDefault("pet.reward_mood_bonus", 5)
	v.SetDefault("pet.missed_session_penalty", 10)

	v.SetDefault("content.path", "content/levels.csv")

	v.SetDefault("oracle.timeout", 2*time.Second)
	v.SetDefault("oracle.retries", 1)

	v.SetDefault("notify.workers", 2)
	v.SetDefault("notify.queue_size", 100)

	v.SetDefault("config_file", "")
}
