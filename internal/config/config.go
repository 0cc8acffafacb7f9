package config

import (
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"tasktracker/internal/errs"
)

const (
	DefaultPath = "config/config.yaml"
	envPrefix   = "TRACKER"
)

type ServerConfig struct {
	Port int    `yaml:"port" envconfig:"PORT"`
	Mode string `yaml:"mode" envconfig:"MODE"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" envconfig:"DRIVER"`
	DSN    string `yaml:"url" envconfig:"URL"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" envconfig:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" envconfig:"SMTP_PORT"`
	SMTPUser     string `yaml:"smtp_user" envconfig:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" envconfig:"SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" envconfig:"FROM_EMAIL"`
}

// Enabled reports whether an SMTP relay is configured.
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != ""
}

type RemindersConfig struct {
	Interval time.Duration `yaml:"interval" envconfig:"INTERVAL"`
	Window   time.Duration `yaml:"window" envconfig:"WINDOW"`
	Disabled bool          `yaml:"disabled" envconfig:"DISABLED"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret" envconfig:"SECRET"`
	TTL    time.Duration `yaml:"ttl" envconfig:"TTL"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
}

type MobizonConfig struct {
	APIKey   string `yaml:"api_key" envconfig:"API_KEY"`
	SenderID string `yaml:"sender_id" envconfig:"SENDER_ID"`
	DryRun   bool   `yaml:"dry_run" envconfig:"DRY_RUN"`
}

// Enabled reports whether the SMS channel should be wired at all.
func (m MobizonConfig) Enabled() bool {
	return m.APIKey != "" || m.DryRun
}

type ReportsConfig struct {
	FontPath string `yaml:"font_path" envconfig:"FONT_PATH"`
}

type LogConfig struct {
	Level          string `yaml:"level" envconfig:"LEVEL"`
	TimeZone       string `yaml:"time_zone" envconfig:"TIME_ZONE"`
	TimeZoneOffset int    `yaml:"time_zone_offset" envconfig:"TIME_ZONE_OFFSET"`
	TimeFormat     string `yaml:"time_format" envconfig:"TIME_FORMAT"`
}

type CORSConfig struct {
	AllowOrigins     []string      `yaml:"allow_origins" envconfig:"ALLOW_ORIGINS"`
	AllowMethods     []string      `yaml:"allow_methods" envconfig:"ALLOW_METHODS"`
	AllowHeaders     []string      `yaml:"allow_headers" envconfig:"ALLOW_HEADERS"`
	AllowCredentials bool          `yaml:"allow_credentials" envconfig:"ALLOW_CREDENTIALS"`
	MaxAge           time.Duration `yaml:"max_age" envconfig:"MAX_AGE"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	Email     EmailConfig     `yaml:"email" envconfig:"EMAIL"`
	Reminders RemindersConfig `yaml:"reminders" envconfig:"REMINDERS"`
	JWT       JWTConfig       `yaml:"jwt" envconfig:"JWT"`
	Telegram  TelegramConfig  `yaml:"telegram" envconfig:"TELEGRAM"`
	Mobizon   MobizonConfig   `yaml:"mobizon" envconfig:"MOBIZON"`
	Reports   ReportsConfig   `yaml:"reports" envconfig:"REPORTS"`
	Log       LogConfig       `yaml:"log" envconfig:"LOG"`
	CORS      CORSConfig      `yaml:"cors" envconfig:"CORS"`
}

// LoadConfig reads the YAML file named by TRACKER_CONFIG (or config/config.yaml)
// and applies TRACKER_* environment overrides on top of it.
func LoadConfig() (Config, error) {
	path := os.Getenv(envPrefix + "_CONFIG")
	if path == "" {
		path = DefaultPath
	}
	return Load(path)
}

func Load(path string) (Config, error) {
	cfg := Defaults()

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return Config{}, errs.Wrapf(err, "parse %s", path)
		}
	case os.IsNotExist(err):
		// environment-only configuration
	default:
		return Config{}, errs.Wrapf(err, "open %s", path)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, errs.Wrap(err, "process env config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		Server:   ServerConfig{Port: 8080, Mode: "release"},
		Database: DatabaseConfig{Driver: "postgres"},
		Email:    EmailConfig{SMTPPort: 587},
		Reminders: RemindersConfig{
			Interval: 6 * time.Hour,
			Window:   24 * time.Hour,
		},
		JWT: JWTConfig{TTL: 24 * time.Hour},
		Log: LogConfig{
			Level:      "info",
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
			MaxAge:       12 * time.Hour,
		},
		Reports: ReportsConfig{FontPath: "assets/fonts/DejaVuSans.ttf"},
	}
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "sqlite":
	default:
		return errs.Invalid("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errs.Invalid("database.url is required")
	}
	if c.Reminders.Interval <= 0 {
		return errs.Invalid("reminders.interval must be positive")
	}
	if c.Reminders.Window <= 0 {
		return errs.Invalid("reminders.window must be positive")
	}
	if c.JWT.Secret == "" {
		return errs.Invalid("jwt.secret is required")
	}
	return nil
}

func NewTestConfig() Config {
	cfg := Defaults()
	cfg.Server.Port = 8889
	cfg.Server.Mode = "test"
	cfg.Database = DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}
	cfg.JWT.Secret = "test-secret"
	cfg.Log.Level = "error"
	cfg.Reminders.Disabled = true
	return cfg
}
