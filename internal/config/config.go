package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/evbridge/meetingd/internal/meeting"
)

type Config struct {
	EnabledCalendarUIDs []string
	AdditionalEmails    []string
	MeetingURLPatterns  []string
	UpcomingCount       int

	Lookback time.Duration
	Horizon  time.Duration

	AutoRefresh     bool
	RefreshInterval time.Duration
	SettleDelay     time.Duration

	DisableDiscovery bool

	BindAddress        string
	UnixSocketPath     string
	RequireBearerToken bool
	BearerToken        string
	RequestTimeout     time.Duration
	LogLevel           string
}

func Load() (Config, error) {
	cfg := Config{
		EnabledCalendarUIDs: getenvList("MEETINGD_ENABLED_CALENDARS"),
		AdditionalEmails:    getenvList("MEETINGD_ADDITIONAL_EMAILS"),
		MeetingURLPatterns:  getenvListDefault("MEETINGD_URL_PATTERNS", meeting.DefaultURLPatterns()),
		UpcomingCount:       getenvInt("MEETINGD_UPCOMING_COUNT", 5),
		Lookback:            getenvDuration("MEETINGD_LOOKBACK", 30*time.Minute),
		Horizon:             getenvDuration("MEETINGD_HORIZON", 30*24*time.Hour),
		AutoRefresh:         getenvBool("MEETINGD_AUTO_REFRESH", true),
		RefreshInterval:     getenvDuration("MEETINGD_REFRESH_INTERVAL", 5*time.Minute),
		SettleDelay:         getenvDuration("MEETINGD_SETTLE_DELAY", 500*time.Millisecond),
		DisableDiscovery:    getenvBool("MEETINGD_DISABLE_DISCOVERY", false),
		BindAddress:         getenvDefault("MEETINGD_BIND_ADDRESS", "127.0.0.1:9843"),
		UnixSocketPath:      strings.TrimSpace(os.Getenv("MEETINGD_UNIX_SOCKET")),
		RequireBearerToken:  getenvBool("MEETINGD_REQUIRE_TOKEN", false),
		BearerToken:         strings.TrimSpace(os.Getenv("MEETINGD_BEARER_TOKEN")),
		RequestTimeout:      getenvDuration("MEETINGD_REQUEST_TIMEOUT", 10*time.Second),
		LogLevel:            getenvDefault("MEETINGD_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.UpcomingCount < 1 {
		return errors.New("upcoming count must be >= 1")
	}
	if c.Lookback < 0 {
		return errors.New("lookback must be >= 0")
	}
	if c.Horizon <= 0 {
		return errors.New("horizon must be > 0")
	}
	if c.AutoRefresh && c.RefreshInterval <= 0 {
		return errors.New("refresh interval must be > 0 when auto refresh is enabled")
	}
	if c.SettleDelay < 0 {
		return errors.New("settle delay must be >= 0")
	}
	if c.BindAddress == "" && c.UnixSocketPath == "" {
		return errors.New("either bind address or unix socket path must be configured")
	}
	if c.RequireBearerToken && c.BearerToken == "" {
		return errors.New("MEETINGD_BEARER_TOKEN is required when token auth is enabled")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be > 0")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

// getenvDuration accepts day and week units on top of the standard ones,
// so horizons like "30d" work.
func getenvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := str2duration.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getenvList(key string) []string {
	return getenvListDefault(key, nil)
}

func getenvListDefault(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
