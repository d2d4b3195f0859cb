package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr        string        `yaml:"addr"`
	DatabaseURL string        `yaml:"database_url"`
	Session     SessionConfig `yaml:"session"`
	Chat        ChatConfig    `yaml:"chat"`
	Limits      LimitsConfig  `yaml:"limits"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
	SameSite   string        `yaml:"same_site"`
}

// ChatConfig points the completion proxy at an OpenAI-compatible API.
type ChatConfig struct {
	APIKey      string        `yaml:"api_key"`
	UpstreamURL string        `yaml:"upstream_url"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
}

// LimitsConfig holds per-client request rates (per minute) and bursts.
type LimitsConfig struct {
	AuthPerMinute int `yaml:"auth_per_minute"`
	AuthBurst     int `yaml:"auth_burst"`
	ChatPerMinute int `yaml:"chat_per_minute"`
	ChatBurst     int `yaml:"chat_burst"`
}

func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		DatabaseURL: "postgres://postgres:postgres@db:5432/hackpulse?sslmode=disable",
		Session: SessionConfig{
			CookieName: "hackpulse_sess",
			TTL:        14 * 24 * time.Hour,
			SameSite:   "lax",
		},
		Chat: ChatConfig{
			UpstreamURL: "https://api.groq.com/openai/v1/chat/completions",
			Model:       "llama-3.3-70b-versatile",
			Timeout:     60 * time.Second,
		},
		Limits: LimitsConfig{
			AuthPerMinute: 30,
			AuthBurst:     10,
			ChatPerMinute: 20,
			ChatBurst:     5,
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults, rejecting
// unknown keys, then applies environment overrides. An empty path
// skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = getenv("ADDR", c.Addr)
	c.DatabaseURL = getenv("DATABASE_URL", c.DatabaseURL)
	c.Session.CookieName = getenv("SESSION_COOKIE_NAME", c.Session.CookieName)
	if v := getenv("SESSION_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		c.Session.TTL = d
	}
	if v := getenv("COOKIE_SECURE", ""); v != "" {
		c.Session.Secure = v == "true"
	}
	c.Session.SameSite = getenv("COOKIE_SAMESITE", c.Session.SameSite)
	c.Chat.APIKey = getenv("GROQ_API_KEY", c.Chat.APIKey)
	c.Chat.UpstreamURL = getenv("CHAT_UPSTREAM_URL", c.Chat.UpstreamURL)
	c.Chat.Model = getenv("CHAT_MODEL", c.Chat.Model)
	return nil
}

func (c SessionConfig) sameSite() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
