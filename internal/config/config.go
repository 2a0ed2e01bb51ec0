package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Credential is one accepted (identity, secret) pair for a credential scheme.
type Credential struct {
	Identity string
	Secret   string
}

// Config contains runtime configuration required by the service. Loaded once
// at startup and read-only afterwards; components receive it by reference.
type Config struct {
	Port  string
	DBURL string

	// BasicCredentials are accepted by the Authorization: Basic scheme.
	BasicCredentials []Credential

	// HeaderCredentials are accepted by the raw header-pair scheme, carried in
	// the IdentityHeader/SecretHeader request headers.
	HeaderCredentials []Credential
	IdentityHeader    string
	SecretHeader      string

	// IPNPaths are the mount paths for the notification endpoint. The bank's
	// deployments disagree on /ipn vs /, so the path is configuration.
	IPNPaths []string

	KeepaliveURL      string
	KeepaliveSchedule string
}

// Load reads required values from environment variables.
//
// BASIC_CREDENTIALS / HEADER_CREDENTIALS format: "identity:secret,identity:secret"
//
// Startup fails when DB_URL is missing or when neither credential list yields
// at least one pair — the service must never come up accepting
// unauthenticated traffic.
func Load() (Config, error) {
	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return Config{}, errors.New("DB_URL required")
	}

	basic, err := parseCredentials(os.Getenv("BASIC_CREDENTIALS"))
	if err != nil {
		return Config{}, fmt.Errorf("BASIC_CREDENTIALS: %w", err)
	}
	header, err := parseCredentials(os.Getenv("HEADER_CREDENTIALS"))
	if err != nil {
		return Config{}, fmt.Errorf("HEADER_CREDENTIALS: %w", err)
	}
	if len(basic) == 0 && len(header) == 0 {
		return Config{}, errors.New("at least one credential pair required in BASIC_CREDENTIALS or HEADER_CREDENTIALS")
	}

	paths, err := parsePaths(getenvDefault("IPN_PATHS", "/ipn"))
	if err != nil {
		return Config{}, fmt.Errorf("IPN_PATHS: %w", err)
	}

	return Config{
		Port:              getenvDefault("PORT", "8080"),
		DBURL:             dbURL,
		BasicCredentials:  basic,
		HeaderCredentials: header,
		IdentityHeader:    getenvDefault("IDENTITY_HEADER", "X-Client-Id"),
		SecretHeader:      getenvDefault("SECRET_HEADER", "X-Client-Secret"),
		IPNPaths:          paths,
		KeepaliveURL:      strings.TrimSpace(os.Getenv("KEEPALIVE_URL")),
		KeepaliveSchedule: getenvDefault("KEEPALIVE_SCHEDULE", "@every 10m"),
	}, nil
}

// parseCredentials parses "identity:secret,identity:secret". A malformed pair
// is a startup error, not a skipped entry: a typo must not silently shrink the
// accepted credential set.
func parseCredentials(raw string) ([]Credential, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var creds []Credential
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`must be "identity:secret,identity:secret"`)
		}
		identity := strings.TrimSpace(parts[0])
		secret := strings.TrimSpace(parts[1])
		if identity == "" || secret == "" {
			return nil, errors.New(`must be "identity:secret,identity:secret"`)
		}
		creds = append(creds, Credential{Identity: identity, Secret: secret})
	}
	return creds, nil
}

func parsePaths(raw string) ([]string, error) {
	var paths []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			return nil, fmt.Errorf("path %q must start with /", p)
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil, errors.New("at least one path required")
	}
	return paths, nil
}

func getenvDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
