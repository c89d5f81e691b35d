package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ordertracker/internal/pkg/errs"
)

type Config struct {
	HTTPPort      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	DBAutoMigrate bool

	LogLevel  string
	LogFormat string

	TransitionPolicy      string
	ForwardOnlyExitStages []string

	CourierAPIURL          string
	CourierAPIKey          string
	CourierPushTimeout     time.Duration
	CourierPushMaxAttempts int
	CourierPushLease       time.Duration
	CourierPushSchedule    string
	ReconcileSchedule      string

	WebhookTokens  []string
	WebhookTimeout time.Duration

	NotifyTimeout time.Duration
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	SMTPFrom      string

	CatalogFile string
}

// ParseConfig reads the configuration through getenv, applying defaults for
// unset variables. All malformed values are reported together.
func ParseConfig(getenv func(string) string) (Config, error) {
	p := envParser{getenv: getenv}

	config := Config{
		HTTPPort:      p.str("HTTP_PORT", "8080"),
		DBHost:        p.str("DB_HOST", "localhost"),
		DBPort:        p.str("DB_PORT", "5432"),
		DBUser:        p.str("DB_USER", "postgres"),
		DBPassword:    p.str("DB_PASSWORD", ""),
		DBName:        p.str("DB_NAME", "ordertracker"),
		DBSslMode:     p.str("DB_SSLMODE", "disable"),
		DBAutoMigrate: p.boolean("DB_AUTO_MIGRATE", false),

		LogLevel:  p.str("LOG_LEVEL", "info"),
		LogFormat: p.str("LOG_FORMAT", "json"),

		TransitionPolicy:      p.str("TRANSITION_POLICY", "permissive"),
		ForwardOnlyExitStages: p.list("FORWARD_ONLY_EXIT_STAGES", []string{"cancelled", "returned"}),

		CourierAPIURL:          p.str("COURIER_API_URL", ""),
		CourierAPIKey:          p.str("COURIER_API_KEY", ""),
		CourierPushTimeout:     p.duration("COURIER_PUSH_TIMEOUT", 10*time.Second),
		CourierPushMaxAttempts: p.integer("COURIER_PUSH_MAX_ATTEMPTS", 8),
		CourierPushLease:       p.duration("COURIER_PUSH_LEASE", 15*time.Second),
		CourierPushSchedule:    p.str("COURIER_PUSH_SCHEDULE", "*/5 * * * * *"),
		ReconcileSchedule:      p.str("RECONCILE_SCHEDULE", "0 */5 * * * *"),

		WebhookTokens:  p.list("WEBHOOK_TOKENS", nil),
		WebhookTimeout: p.duration("WEBHOOK_TIMEOUT", 5*time.Second),

		NotifyTimeout: p.duration("NOTIFY_TIMEOUT", 10*time.Second),
		SMTPHost:      p.str("SMTP_HOST", ""),
		SMTPPort:      p.integer("SMTP_PORT", 587),
		SMTPUser:      p.str("SMTP_USER", ""),
		SMTPPassword:  p.str("SMTP_PASSWORD", ""),
		SMTPFrom:      p.str("SMTP_FROM", ""),

		CatalogFile: p.str("CATALOG_FILE", ""),
	}

	if config.CourierPushMaxAttempts <= 0 {
		p.fail(errs.NewValueIsOutOfRangeError("COURIER_PUSH_MAX_ATTEMPTS", config.CourierPushMaxAttempts, 1, "unbounded"))
	}
	if config.SMTPHost != "" && config.SMTPFrom == "" {
		p.fail(errs.NewValueIsRequiredErrorWithCause("SMTP_FROM", errors.New("SMTP_HOST is set")))
	}

	return config, errors.Join(p.errs...)
}

// DSN is the PostgreSQL connection string in key=value form.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

type envParser struct {
	getenv func(string) string
	errs   []error
}

func (p *envParser) fail(err error) {
	p.errs = append(p.errs, err)
}

func (p *envParser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *envParser) boolean(key string, def bool) bool {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(errs.NewValueIsInvalidErrorWithCause(key, err))
		return def
	}
	return v
}

func (p *envParser) integer(key string, def int) int {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(errs.NewValueIsInvalidErrorWithCause(key, err))
		return def
	}
	return v
}

func (p *envParser) duration(key string, def time.Duration) time.Duration {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(errs.NewValueIsInvalidErrorWithCause(key, err))
		return def
	}
	if v <= 0 {
		p.fail(errs.NewValueIsOutOfRangeError(key, v, "1ns", "unbounded"))
		return def
	}
	return v
}

// list splits a comma separated value, dropping blanks.
func (p *envParser) list(key string, def []string) []string {
	raw := p.str(key, "")
	if raw == "" {
		return def
	}

	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
