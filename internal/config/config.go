package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort           = "8080"
	DefaultDBPath         = "listify.db"
	DefaultBackupSchedule = "0 3 * * *"
	DefaultRateLimit      = 120
	DefaultBackupKeep     = 30 * 24 * time.Hour
)

type Config struct {
	Port           string
	DBPath         string
	LogLevel       string
	LogFormat      string
	AutoCategorize bool
	// RateLimit caps mutating API requests per client per minute; 0 disables.
	RateLimit int
	// AllowedOrigins lists host patterns allowed to open the live-view socket
	// from another origin.
	AllowedOrigins []string
	// TrustedProxies are the peers whose X-Forwarded-For and X-Real-IP
	// headers are believed. Empty means forwarding headers are ignored.
	TrustedProxies []netip.Prefix
	Backup         BackupConfig
}

type BackupConfig struct {
	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	Passphrase  string
	Schedule    string
	Retention   time.Duration
}

// Enabled reports whether enough is configured to upload backups.
func (b BackupConfig) Enabled() bool {
	return b.S3Bucket != "" && b.Passphrase != ""
}

// Persistent reports whether the list should be stored on disk.
func (c Config) Persistent() bool {
	return c.DBPath != "" && c.DBPath != ":memory:"
}

// Load reads LISTIFY_* environment variables, applying defaults.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:      envOr(getenv, "LISTIFY_PORT", DefaultPort),
		DBPath:    envOr(getenv, "LISTIFY_DB_PATH", DefaultDBPath),
		LogLevel:  envOr(getenv, "LISTIFY_LOG_LEVEL", "info"),
		LogFormat: envOr(getenv, "LISTIFY_LOG_FORMAT", "text"),
		RateLimit: DefaultRateLimit,
		Backup: BackupConfig{
			S3Endpoint:  getenv("LISTIFY_BACKUP_S3_ENDPOINT"),
			S3Bucket:    getenv("LISTIFY_BACKUP_S3_BUCKET"),
			S3Region:    envOr(getenv, "LISTIFY_BACKUP_S3_REGION", "us-east-1"),
			S3AccessKey: getenv("LISTIFY_BACKUP_S3_ACCESS_KEY"),
			S3SecretKey: getenv("LISTIFY_BACKUP_S3_SECRET_KEY"),
			Passphrase:  getenv("LISTIFY_BACKUP_PASSPHRASE"),
			Schedule:    envOr(getenv, "LISTIFY_BACKUP_SCHEDULE", DefaultBackupSchedule),
			Retention:   DefaultBackupKeep,
		},
	}

	if v := getenv("LISTIFY_AUTO_CATEGORIZE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("LISTIFY_AUTO_CATEGORIZE: %w", err)
		}
		cfg.AutoCategorize = b
	}

	if v := getenv("LISTIFY_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("LISTIFY_RATE_LIMIT: invalid value %q", v)
		}
		cfg.RateLimit = n
	}

	for _, o := range strings.Split(getenv("LISTIFY_WS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	proxies, err := parseProxies(getenv("LISTIFY_TRUSTED_PROXIES"))
	if err != nil {
		return Config{}, fmt.Errorf("LISTIFY_TRUSTED_PROXIES: %w", err)
	}
	cfg.TrustedProxies = proxies

	if v := getenv("LISTIFY_BACKUP_RETENTION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("LISTIFY_BACKUP_RETENTION: %w", err)
		}
		cfg.Backup.Retention = d
	}

	return cfg, nil
}

// ValidatePort checks a listen port. Only serve listens, so the port is
// checked there rather than in Load.
func ValidatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

// parseProxies reads a comma list of IPs and CIDR prefixes.
func parseProxies(v string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, e := range strings.Split(v, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, err
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}
