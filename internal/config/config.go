package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // Timezones resolve on hosts without a zoneinfo database

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/jakechorley/weekend-duty/pkg/core/model"
)

const (
	DefaultListenAddr = ":8080"
	DefaultTimezone   = "UTC"
	DefaultMaxDBConns = 5
)

// TeamMemberConfig defines a member of the duty team
type TeamMemberConfig struct {
	Name      string `yaml:"name" validate:"required"`
	Priority  int    `yaml:"priority" validate:"min=0"` // Lower value wins conflicts
	Color     string `yaml:"color,omitempty" validate:"omitempty,hexcolor"`
	AccessKey string `yaml:"accessKey" validate:"required,min=8"`
	Email     string `yaml:"email,omitempty" validate:"omitempty,email"`
	Active    *bool  `yaml:"active,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Team            []TeamMemberConfig `yaml:"team" validate:"required,min=1,dive"`
	DatabaseURL     string             `yaml:"databaseURL,omitempty"`
	MaxDBConns      int32              `yaml:"maxDBConns,omitempty" validate:"omitempty,min=1"`
	ListenAddr      string             `yaml:"listenAddr,omitempty"`
	Timezone        string             `yaml:"timezone,omitempty" validate:"omitempty,timezone"`
	Blackouts       []string           `yaml:"blackouts,omitempty" validate:"dive,required"`
	RotaSheetID     string             `yaml:"rotaSheetID,omitempty"`
	NotifyConflicts bool               `yaml:"notifyConflicts,omitempty"`
	GmailSender     string             `yaml:"gmailSender,omitempty" validate:"omitempty,email"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from duty_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix
// For example, env="test" will look for "duty_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.MaxDBConns == 0 {
		c.MaxDBConns = DefaultMaxDBConns
	}
}

// Validate validates the configuration struct, team uniqueness and rrule syntax
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	names := make(map[string]bool, len(cfg.Team))
	keys := make(map[string]bool, len(cfg.Team))
	for i, member := range cfg.Team {
		if names[member.Name] {
			return fmt.Errorf("duplicate team member name in team[%d]: %s", i, member.Name)
		}
		names[member.Name] = true

		if keys[member.AccessKey] {
			return fmt.Errorf("duplicate access key in team[%d] (%s)", i, member.Name)
		}
		keys[member.AccessKey] = true
	}

	// Validate rrule syntax for each blackout
	for i, rule := range cfg.Blackouts {
		if _, err := rrule.StrToROption(rule); err != nil {
			return fmt.Errorf("invalid rrule in blackouts[%d]: %w", i, err)
		}
	}

	if cfg.NotifyConflicts && cfg.GmailSender == "" {
		return fmt.Errorf("gmailSender is required when notifyConflicts is enabled")
	}

	return nil
}

// Location returns the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TeamMembers converts the configured team into model team members, numbered in configuration order
func (c *Config) TeamMembers() []model.TeamMember {
	members := make([]model.TeamMember, 0, len(c.Team))
	for i, m := range c.Team {
		active := true
		if m.Active != nil {
			active = *m.Active
		}
		members = append(members, model.TeamMember{
			ID:        i + 1,
			Name:      m.Name,
			Priority:  m.Priority,
			Color:     m.Color,
			IsActive:  active,
			Email:     m.Email,
			AccessKey: m.AccessKey,
		})
	}
	return members
}

// findConfigFile locates duty_config.yaml, or duty_config.<env>.yaml when env is set
func findConfigFile(env string) (string, error) {
	return findFile(withEnv("duty_config", env, "yaml"))
}

func withEnv(base, env, ext string) string {
	if env == "" {
		return base + "." + ext
	}
	return base + "." + env + "." + ext
}

// findFile searches for name in the current directory and then the user's home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
