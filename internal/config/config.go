package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory    = "memory"
	StoreRedis     = "redis"
	StorePostgres  = "postgres"
	StoreSQLite    = "sqlite"
	StoreFirestore = "firestore"
)

// Identity providers.
const (
	IdentityAnonymous = "anonymous"
	IdentityFirebase  = "firebase"
	IdentityNone      = "none"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Firebase struct {
		APIKey            string `yaml:"apiKey"`
		ProjectID         string `yaml:"projectId"`
		TenantID          string `yaml:"tenantId"`
		AuthToken         string `yaml:"authToken"`
		AuthEndpoint      string `yaml:"authEndpoint"`
		FirestoreEndpoint string `yaml:"firestoreEndpoint"`
	} `yaml:"firebase"`
	Identity struct {
		Provider string `yaml:"provider"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"identity"`
	Store struct {
		Backend string `yaml:"backend"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL  string `yaml:"url"`
		Seed bool   `yaml:"seed"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Quiz struct {
		BankID   string `yaml:"bankId"`
		TTL      string `yaml:"ttl"`
		PitchURL string `yaml:"pitchUrl"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path, applies environment overrides and defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnvOverrides lets deployments inject credentials without editing the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("QUIZ_API_KEY"); v != "" {
		c.Firebase.APIKey = v
	}
	if v := os.Getenv("QUIZ_PROJECT_ID"); v != "" {
		c.Firebase.ProjectID = v
	}
	if v := os.Getenv("QUIZ_TENANT_ID"); v != "" {
		c.Firebase.TenantID = v
	}
	if v := os.Getenv("QUIZ_AUTH_TOKEN"); v != "" {
		c.Firebase.AuthToken = v
	}
	if v := os.Getenv("QUIZ_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("QUIZ_IDENTITY"); v != "" {
		c.Identity.Provider = v
	}
}

func (c *Config) applyDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = StoreMemory
	}
	if c.Identity.Provider == "" {
		c.Identity.Provider = IdentityAnonymous
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("store %q requires redis.addr", c.Store.Backend)
		}
	case StorePostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("store %q requires postgres.url", c.Store.Backend)
		}
	case StoreSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("store %q requires sqlite.path", c.Store.Backend)
		}
	case StoreFirestore:
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("store %q requires firebase.projectId", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.Identity.Provider {
	case IdentityAnonymous, IdentityNone:
	case IdentityFirebase:
		if c.Firebase.APIKey == "" {
			return fmt.Errorf("identity %q requires firebase.apiKey", c.Identity.Provider)
		}
	default:
		return fmt.Errorf("unknown identity provider %q", c.Identity.Provider)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
