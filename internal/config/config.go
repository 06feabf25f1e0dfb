package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule" validate:"required"`
	Learning LearningConfig `mapstructure:"learning" validate:"required"`
	Pet      PetConfig      `mapstructure:"pet"      validate:"required"`
	Content  ContentConfig  `mapstructure:"content"  validate:"required"`
	Oracle   OracleConfig   `mapstructure:"oracle"   validate:"required"`
	Notify   NotifyConfig   `mapstructure:"notify"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error fatal"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
// Driver selects the SQL dialect: "pgx" for PostgreSQL, "sqlite3" for SQLite.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"         validate:"required,oneof=pgx sqlite3"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// AuthConfig contains the bearer-token settings of the HTTP surface.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// ScheduleConfig contains the daily session plan and the periodic driver settings.
type ScheduleConfig struct {
	SessionTimes         []string      `mapstructure:"session_times"          validate:"required,min=1,dive,clocktime"`
	ReminderLeadMinutes  int           `mapstructure:"reminder_lead_minutes"  validate:"gte=0"`
	DeadlineGraceMinutes int           `mapstructure:"deadline_grace_minutes" validate:"gt=0"`
	Timezone             string        `mapstructure:"timezone"               validate:"required,timezone"`
	TickInterval         time.Duration `mapstructure:"tick_interval"          validate:"gt=0"`
	TickConcurrency      int           `mapstructure:"tick_concurrency"       validate:"gt=0"`
}

// LearningConfig contains the item scheduler and session policy settings.
type LearningConfig struct {
	GraduationThreshold  int   `mapstructure:"graduation_threshold"  validate:"gt=0"`
	ReviewIntervalDays   []int `mapstructure:"review_interval_days"  validate:"required,min=1,dive,gt=0"`
	DemoteBy             int   `mapstructure:"demote_by"             validate:"gt=0"`
	CorrectnessThreshold int   `mapstructure:"correctness_threshold" validate:"gte=0,lte=100"`
	SessionCapacity      int   `mapstructure:"session_capacity"      validate:"gt=0"`
	MaxSessionsPerDay    int   `mapstructure:"max_sessions_per_day"  validate:"gte=0"`
	MaxRetries           int   `mapstructure:"max_retries"           validate:"gte=0"`
	RewardMilestones     []int `mapstructure:"reward_milestones"     validate:"dive,gt=0"`
	CareGates            []int `mapstructure:"care_gates"            validate:"dive,gte=0"`
}

// DecayConfig is the per-day decay of each vital.
type DecayConfig struct {
	Hunger  int `mapstructure:"hunger"  validate:"gte=0,lte=100"`
	Thirst  int `mapstructure:"thirst"  validate:"gte=0,lte=100"`
	Hygiene int `mapstructure:"hygiene" validate:"gte=0,lte=100"`
	Energy  int `mapstructure:"energy"  validate:"gte=0,lte=100"`
	Mood    int `mapstructure:"mood"    validate:"gte=0,lte=100"`
	Health  int `mapstructure:"health"  validate:"gte=0,lte=100"`
}

// PetConfig contains the vitality simulation settings.
type PetConfig struct {
	InitialVital         int           `mapstructure:"initial_vital"          validate:"gt=0,lte=100"`
	Decay                DecayConfig   `mapstructure:"decay"`
	RecoveryBonus        int           `mapstructure:"recovery_bonus"         validate:"gte=0,lte=100"`
	MercyWindow          int           `mapstructure:"mercy_window"           validate:"gt=0"`
	LowWaterMark         int           `mapstructure:"low_water_mark"         validate:"gte=0,lte=100"`
	CareAmount           int           `mapstructure:"care_amount"            validate:"gt=0,lte=100"`
	RevivalBaseline      int           `mapstructure:"revival_baseline"       validate:"gt=0,lte=100"`
	RevivalTokenTTL      time.Duration `mapstructure:"revival_token_ttl"      validate:"gt=0"`
	RewardMoodBonus      int           `mapstructure:"reward_mood_bonus"      validate:"gte=0,lte=100"`
	MissedSessionPenalty int           `mapstructure:"missed_session_penalty" validate:"gte=0,lte=100"`
}

// ContentConfig locates the level catalog (.csv or .xlsx).
type ContentConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// OracleConfig bounds calls to the similarity oracle.
type OracleConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Retries int           `mapstructure:"retries" validate:"gte=0,lte=5"`
}

// NotifyConfig sizes the notification worker pool.
type NotifyConfig struct {
	Workers   int `mapstructure:"workers"    validate:"gt=0"`
	QueueSize int `mapstructure:"queue_size" validate:"gt=0"`
}
