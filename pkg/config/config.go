package config

import (
	"time"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Engine    EngineConfig    `mapstructure:"engine"`
	API       APIConfig       `mapstructure:"api"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Events    EventsConfig    `mapstructure:"events"`
	Users     []UserConfig    `mapstructure:"users"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	MaxConnections  int           `mapstructure:"max_connections"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

// TelemetryConfig drives the tick orchestrator and the engine toggles.
type TelemetryConfig struct {
	TickInterval      time.Duration `mapstructure:"tick_interval"`
	SnapshotInterval  time.Duration `mapstructure:"snapshot_interval"`
	InactivityTimeout time.Duration `mapstructure:"inactivity_timeout"`
	Seed              int64         `mapstructure:"seed"`
	Predictive        bool          `mapstructure:"predictive"`
	ExposePredictive  bool          `mapstructure:"expose_predictive"`
	Units             []UnitConfig  `mapstructure:"units"`
}

type UnitConfig struct {
	ID     string `mapstructure:"id"`
	Name   string `mapstructure:"name"`
	Pinned string `mapstructure:"pinned"`
}

// EngineConfig overrides selected entries of the engine's default tuning
// preset; zero values keep the preset.
type EngineConfig struct {
	LockWindow    time.Duration `mapstructure:"lock_window"`
	BiasInterval  time.Duration `mapstructure:"bias_interval"`
	DwellActive   time.Duration `mapstructure:"dwell_active"`
	DwellInactive time.Duration `mapstructure:"dwell_inactive"`
	DwellOffline  time.Duration `mapstructure:"dwell_offline"`
}

type APIConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	RateLimit    int           `mapstructure:"rate_limit"`
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTDuration  time.Duration `mapstructure:"jwt_duration"`
}

type WebSocketConfig struct {
	BroadcastBuffer int `mapstructure:"broadcast_buffer"`
	ClientBuffer    int `mapstructure:"client_buffer"`
}

type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// UserConfig declares one dashboard user; the password is stored as a
// bcrypt hash.
type UserConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}
