package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr         string
	DatabasePath string
	MasterSecret string
	// DelineatorCmd is the external delineation command and its leading
	// fixed arguments.
	DelineatorCmd []string
	// DelineatorTimeout bounds a single delineation run.
	DelineatorTimeout time.Duration
	Debug             bool
	AllowedOrigins    []string
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr          *string
	DatabasePath  *string
	MasterSecret  *string
	DelineatorCmd *string
	Debug         *bool
}

// Load loads server configuration from environment variables and applies any
// explicit overrides.
func Load(overrides Overrides) (*Config, error) {
	port := 3005
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	addr := fmt.Sprintf(":%d", port)
	if overrides.Addr != nil {
		addr = *overrides.Addr
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./basinview.db"
	}
	if overrides.DatabasePath != nil {
		dbPath = *overrides.DatabasePath
	}

	masterSecret := os.Getenv("BASINVIEW_MASTER_SECRET")
	if overrides.MasterSecret != nil {
		masterSecret = *overrides.MasterSecret
	}
	if masterSecret == "" {
		return nil, fmt.Errorf("BASINVIEW_MASTER_SECRET environment variable is required")
	}

	delineatorCmd := os.Getenv("DELINEATOR_CMD")
	if overrides.DelineatorCmd != nil {
		delineatorCmd = *overrides.DelineatorCmd
	}
	if delineatorCmd == "" {
		return nil, fmt.Errorf("DELINEATOR_CMD environment variable is required")
	}

	timeout := 15 * time.Minute
	if raw := os.Getenv("DELINEATOR_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid DELINEATOR_TIMEOUT %q: %w", raw, err)
		}
		timeout = d
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	return &Config{
		Addr:              addr,
		DatabasePath:      dbPath,
		MasterSecret:      masterSecret,
		DelineatorCmd:     strings.Fields(delineatorCmd),
		DelineatorTimeout: timeout,
		Debug:             debug,
		AllowedOrigins:    []string{"*"}, // For self-hosted, allow all origins
	}, nil
}
