// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values and validate

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go-jobalert/internal/dedup"
	"go-jobalert/internal/filter"
	"go-jobalert/internal/query"
	"go-jobalert/internal/roster"
	"go-jobalert/internal/search"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "configs/config.yaml"
	PathEnv     = "JOBALERT_CONFIG"

	FetcherHTTP    = "http"
	FetcherBrowser = "browser"
)

type Config struct {
	//Recipients
	ToAddress   string `yaml:"to_address" env:"TO_EMAIL"`
	FromAddress string `yaml:"from_address" env:"FROM_EMAIL"`

	//Search
	RecencyWindow   string        `yaml:"recency_window"`
	RequestDelay    time.Duration `yaml:"request_delay"`
	RequestJitter   time.Duration `yaml:"request_jitter"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ResultCap       int           `yaml:"result_cap"`
	Fetcher         string        `yaml:"fetcher"`
	SearchEndpoint  string        `yaml:"search_endpoint"`
	UserAgent       string        `yaml:"user_agent"`
	Aggregators     []string      `yaml:"aggregators"`
	Keywords        []string      `yaml:"keywords"`
	FallbackKeyword string        `yaml:"fallback_keyword"`
	Country         string        `yaml:"country"`
	Filter          filter.Rules  `yaml:"filter"`

	//Paths
	RosterPath   string `yaml:"roster_path"`
	RosterColumn string `yaml:"roster_column"`
	SeenPath     string `yaml:"seen_path"`
	ReportDir    string `yaml:"report_dir"`
	CookiesPath  string `yaml:"cookies_path"`

	//Credentials
	MailgunAPIKey  string `yaml:"mailgun_api_key" env:"MAILGUN_API_KEY"`
	MailgunDomain  string `yaml:"mailgun_domain" env:"MAILGUN_DOMAIN"`
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
	DatabaseURL    string `yaml:"database_url" env:"DATABASE_URL"`

	ServerAddr string `yaml:"server_addr"`
}

// Load reads .env, then the YAML file at path ($JOBALERT_CONFIG or
// configs/config.yaml when empty), then applies env overrides and defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️ Warning: Could not read %s: %v", path, err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"TO_EMAIL":           &c.ToAddress,
		"FROM_EMAIL":         &c.FromAddress,
		"MAILGUN_API_KEY":    &c.MailgunAPIKey,
		"MAILGUN_DOMAIN":     &c.MailgunDomain,
		"TELEGRAM_BOT_TOKEN": &c.TelegramToken,
		"DATABASE_URL":       &c.DatabaseURL,
	}
	for key, field := range overrides {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.RecencyWindow == "" {
		c.RecencyWindow = search.DefaultRecency
	}
	if c.RequestDelay == 0 {
		c.RequestDelay = time.Second
	}
	if c.RequestJitter == 0 {
		c.RequestJitter = 500 * time.Millisecond
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.ResultCap == 0 {
		c.ResultCap = filter.DefaultCap
	}
	if c.Fetcher == "" {
		c.Fetcher = FetcherHTTP
	}
	c.Fetcher = strings.ToLower(c.Fetcher)
	if c.SearchEndpoint == "" {
		c.SearchEndpoint = search.DefaultEndpoint
	}
	if c.UserAgent == "" {
		c.UserAgent = search.DefaultUserAgent
	}
	if len(c.Aggregators) == 0 {
		c.Aggregators = query.DefaultAggregators
	}
	if len(c.Keywords) == 0 {
		c.Keywords = query.DefaultKeywords
	}
	if c.FallbackKeyword == "" {
		c.FallbackKeyword = query.DefaultFallbackKeyword
	}
	if c.Country == "" {
		c.Country = query.DefaultCountry
	}
	if c.RosterPath == "" {
		c.RosterPath = "company_data.csv"
	}
	if c.RosterColumn == "" {
		c.RosterColumn = roster.DefaultColumn
	}
	if c.SeenPath == "" {
		c.SeenPath = dedup.DefaultSeenFile
	}
	if c.ReportDir == "" {
		c.ReportDir = "logs"
	}
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
}

func (c *Config) Validate() error {
	if c.Fetcher != FetcherHTTP && c.Fetcher != FetcherBrowser {
		return fmt.Errorf("invalid fetcher %q: want %s or %s", c.Fetcher, FetcherHTTP, FetcherBrowser)
	}
	if _, err := search.RecencyParam(c.RecencyWindow); err != nil {
		return err
	}
	if c.ResultCap < 0 {
		return fmt.Errorf("invalid result_cap %d", c.ResultCap)
	}
	if c.RequestDelay < 0 || c.RequestJitter < 0 {
		return fmt.Errorf("request_delay and request_jitter must not be negative")
	}
	return nil
}
