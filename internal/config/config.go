package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Strings for identifiers and secrets, ints for
// durations, percentages and costs.
type Config struct {
	Env            string   // application environment (e.g. "dev", "prod")
	Port           string   // HTTP port to listen on
	DBUser         string   // database username
	DBPass         string   // database password (optional)
	DBHost         string   // database host address
	DBPort         string   // database port number
	DBName         string   // database name
	JWTSecret      string   // secret used to sign JWTs
	AccessTTLMin   int      // access token time-to-live in minutes
	BcryptCost     int      // bcrypt cost for password hashing
	AdminEmails    []string // user emails granted the ADMIN kind at login
	AdvancePercent int      // percentage of the booking total charged up front
	UploadRoot     string   // directory where uploaded media is stored

	// Outbound delivery. Empty keys switch the senders into mock mode so the
	// API remains usable in local development.
	EmailAPIKey string // key for the transactional email API
	EmailFrom   string // From header used on outgoing mail
	SMSAPIKey   string // key for the SMS gateway
	SMSSender   string // sender id used on outgoing SMS

	// Payment provider.
	PaymentKeyID     string // provider API key id
	PaymentKeySecret string // provider API secret
	WebhookSecret    string // secret for webhook signature verification
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values cause
// the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		AdminEmails:    splitList(os.Getenv("ADMIN_EMAILS")),
		AdvancePercent: intOr("ADVANCE_PERCENT", 30),
		UploadRoot:     envStr("UPLOAD_ROOT", "uploads"),

		EmailAPIKey: os.Getenv("EMAIL_API_KEY"),
		EmailFrom:   envStr("EMAIL_FROM", "Eventra <noreply@eventra.example>"),
		SMSAPIKey:   os.Getenv("SMS_API_KEY"),
		SMSSender:   envStr("SMS_SENDER", "EVENTRA"),

		PaymentKeyID:     os.Getenv("PAYMENT_KEY_ID"),
		PaymentKeySecret: os.Getenv("PAYMENT_KEY_SECRET"),
		WebhookSecret:    os.Getenv("PAYMENT_WEBHOOK_SECRET"),
	}
}

// IsAdmin reports whether the given (normalized) email is configured as an
// administrator account.
func (c Config) IsAdmin(email string) bool {
	for _, a := range c.AdminEmails {
		if strings.EqualFold(a, email) {
			return true
		}
	}
	return false
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intOr reads an optional integer env var, falling back to def when unset
// or unparsable.
func intOr(key string, def int) int {
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

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
