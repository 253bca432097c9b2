// Package config loads runtime settings from the environment. JWT_SECRET is
// the only hard requirement, everything else has a development default.
package config

import (
	"os"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/kavyakala/kavyakala/auth"
)

type Config struct {
	HTTPAddr string
	Debug    bool

	// DSN is the sqlite data source, "file::memory:?cache=shared" works for
	// local runs.
	DSN string

	SigningKey      string
	TokenExpiration int
	Issuer          string
	Audience        []string
	ContextKey      string
	TokenLookup     string
	AuthScheme      string

	// APIBaseURL is the externally reachable base for verification links.
	// AppBaseURL is the frontend base the verify endpoint redirects to.
	APIBaseURL string
	AppBaseURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	SMTPFromName string

	SeedAdminName     string
	SeedAdminEmail    string
	SeedAdminHandle   string
	SeedAdminPassword string
}

var _ auth.Config = (*Config)(nil)

func Load() (*Config, error) {
	signingKey := os.Getenv("JWT_SECRET")
	if signingKey == "" {
		return nil, goerrors.New("JWT_SECRET is required", goerrors.CategoryValidation)
	}

	cfg := &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":5000"),
		Debug:    getEnvBool("DEBUG", false),

		DSN: getEnv("DATABASE_DSN", "file:kavyakala.db?cache=shared"),

		SigningKey:      signingKey,
		TokenExpiration: getEnvInt("JWT_TTL_HOURS", auth.DefaultTokenExpiration),
		Issuer:          getEnv("JWT_ISSUER", "kavyakala"),
		Audience:        getEnvList("JWT_AUDIENCE", nil),
		ContextKey:      getEnv("AUTH_CONTEXT_KEY", "user"),
		TokenLookup:     getEnv("AUTH_TOKEN_LOOKUP", "header:Authorization"),
		AuthScheme:      getEnv("AUTH_SCHEME", "Bearer"),

		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:5000"),
		AppBaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 465),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Kavyakala"),

		SeedAdminName:     getEnv("SEED_ADMIN_NAME", "Site Admin"),
		SeedAdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@kavyakala.app"),
		SeedAdminHandle:   getEnv("SEED_ADMIN_HANDLE", "admin"),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
	}

	return cfg, nil
}

// MailConfigured reports whether enough SMTP settings exist to send real
// email.
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != ""
}

func (c *Config) GetSigningKey() string    { return c.SigningKey }
func (c *Config) GetSigningMethod() string { return "HS256" }
func (c *Config) GetContextKey() string    { return c.ContextKey }
func (c *Config) GetTokenExpiration() int  { return c.TokenExpiration }
func (c *Config) GetTokenLookup() string   { return c.TokenLookup }
func (c *Config) GetAuthScheme() string    { return c.AuthScheme }
func (c *Config) GetIssuer() string        { return c.Issuer }
func (c *Config) GetAudience() []string    { return c.Audience }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
