package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ChaitanyaJhindal/AI-Hospital-Managment/internal/platform/floorplan"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`

	GridSize    int    `mapstructure:"GRID_SIZE"`
	MaxGridSize int    `mapstructure:"MAX_GRID_SIZE"`
	GridWalls   string `mapstructure:"GRID_WALLS"`
	BedStrategy string `mapstructure:"BED_STRATEGY"`

	ScheduleCandidates int      `mapstructure:"SCHEDULE_CANDIDATES"`
	ScheduleMaxNodes   int      `mapstructure:"SCHEDULE_MAX_NODES"`
	ScheduleDoctors    []string `mapstructure:"SCHEDULE_DOCTORS"`
	ScheduleRooms      []string `mapstructure:"SCHEDULE_ROOMS"`
	ScheduleTimeslots  []string `mapstructure:"SCHEDULE_TIMESLOTS"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	VitalsTable string `mapstructure:"VITALS_TABLE"`

	AuthSigningKey string `mapstructure:"AUTH_SIGNING_KEY"`
	AuthIssuer     string `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string `mapstructure:"AUTH_AUDIENCE"`

	NarrativeURL     string        `mapstructure:"NARRATIVE_URL"`
	NarrativeAPIKey  string        `mapstructure:"NARRATIVE_API_KEY"`
	NarrativeModel   string        `mapstructure:"NARRATIVE_MODEL"`
	NarrativeTimeout time.Duration `mapstructure:"NARRATIVE_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "REQUEST_TIMEOUT", "BODY_LIMIT", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"GRID_SIZE", "MAX_GRID_SIZE", "GRID_WALLS", "BED_STRATEGY",
	"SCHEDULE_CANDIDATES", "SCHEDULE_MAX_NODES", "SCHEDULE_DOCTORS", "SCHEDULE_ROOMS", "SCHEDULE_TIMESLOTS",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "VITALS_TABLE",
	"AUTH_SIGNING_KEY", "AUTH_ISSUER", "AUTH_AUDIENCE",
	"NARRATIVE_URL", "NARRATIVE_API_KEY", "NARRATIVE_MODEL", "NARRATIVE_TIMEOUT",
}

// Load reads an optional .env file and the environment. Environment wins.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("GRID_SIZE", 6)
	v.SetDefault("MAX_GRID_SIZE", floorplan.DefaultMaxSize)
	v.SetDefault("BED_STRATEGY", "greedy")
	v.SetDefault("SCHEDULE_CANDIDATES", 5)
	v.SetDefault("SCHEDULE_MAX_NODES", 100000)
	v.SetDefault("SCHEDULE_DOCTORS", "Dr. A,Dr. B,Dr. C")
	v.SetDefault("SCHEDULE_ROOMS", "Room 1,Room 2")
	v.SetDefault("SCHEDULE_TIMESLOTS", "9 AM,10 AM,11 AM,12 PM")
	v.SetDefault("DB_MAX_CONNS", 5)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("VITALS_TABLE", "patient_vitals")
	v.SetDefault("NARRATIVE_MODEL", "llama-3.3-70b-versatile")
	v.SetDefault("NARRATIVE_TIMEOUT", "30s")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = trimList(cfg.CORSOrigins)
	cfg.ScheduleDoctors = trimList(cfg.ScheduleDoctors)
	cfg.ScheduleRooms = trimList(cfg.ScheduleRooms)
	cfg.ScheduleTimeslots = trimList(cfg.ScheduleTimeslots)

	return cfg, nil
}

func trimList(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Walls parses GRID_WALLS, a comma list of x-y cells.
func (c *Config) Walls() ([]floorplan.Bed, error) {
	return floorplan.ParseCells(c.GridWalls)
}

// Validate fails fast on settings the engines cannot run with. Outside
// development a signing key is mandatory so the API is never left open.
func (c *Config) Validate() error {
	var errs []error
	if c.GridSize <= 0 {
		errs = append(errs, fmt.Errorf("GRID_SIZE must be positive, got %d", c.GridSize))
	}
	if c.MaxGridSize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_GRID_SIZE must be positive, got %d", c.MaxGridSize))
	} else if c.GridSize > c.MaxGridSize {
		errs = append(errs, fmt.Errorf("GRID_SIZE %d exceeds MAX_GRID_SIZE %d", c.GridSize, c.MaxGridSize))
	}
	if _, err := c.Walls(); err != nil {
		errs = append(errs, fmt.Errorf("GRID_WALLS: %w", err))
	}
	switch strings.ToLower(strings.TrimSpace(c.BedStrategy)) {
	case "", "greedy", "optimal":
	default:
		errs = append(errs, fmt.Errorf("BED_STRATEGY must be \"greedy\" or \"optimal\", got %q", c.BedStrategy))
	}
	if c.ScheduleCandidates <= 0 {
		errs = append(errs, fmt.Errorf("SCHEDULE_CANDIDATES must be positive, got %d", c.ScheduleCandidates))
	}
	if c.ScheduleMaxNodes <= 0 {
		errs = append(errs, fmt.Errorf("SCHEDULE_MAX_NODES must be positive, got %d", c.ScheduleMaxNodes))
	}
	if len(c.ScheduleDoctors) == 0 || len(c.ScheduleRooms) == 0 || len(c.ScheduleTimeslots) == 0 {
		errs = append(errs, errors.New("SCHEDULE_DOCTORS, SCHEDULE_ROOMS and SCHEDULE_TIMESLOTS must not be empty"))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is on, got %d", c.RateLimitBurst))
	}
	if c.DBMaxConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns))
	}
	if !c.IsDev() && c.AuthSigningKey == "" {
		errs = append(errs, fmt.Errorf("AUTH_SIGNING_KEY is required outside development (ENV=%q)", c.Env))
	}
	return errors.Join(errs...)
}
