package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Data directory and file names shared by the pipeline stages
	Data DataConfig `mapstructure:"data"`

	// Page fetching configuration
	Crawler CrawlerConfig `mapstructure:"crawler"`

	// Search API configuration
	Search SearchConfig `mapstructure:"search"`

	// Topic aggregation configuration
	Topics TopicsConfig `mapstructure:"topics"`

	// Dashboard server configuration
	Dashboard DashboardConfig `mapstructure:"dashboard"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// DataConfig holds the location of the CSV files
type DataConfig struct {
	Dir          string `mapstructure:"dir"`
	TopURLs      string `mapstructure:"top_urls"`
	SEOAudit     string `mapstructure:"seo_audit"`
	BlogMetadata string `mapstructure:"blog_metadata"`
	ScrapedData  string `mapstructure:"scraped_data"`
	CTAAnalysis  string `mapstructure:"cta_analysis"`
}

// CrawlerConfig holds page fetching configuration
type CrawlerConfig struct {
	UserAgent         string        `mapstructure:"user_agent"`
	PageTimeout       time.Duration `mapstructure:"page_timeout"`
	ScrapeTimeout     time.Duration `mapstructure:"scrape_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	FollowRobotsTxt   bool          `mapstructure:"follow_robots_txt"`
}

// SearchConfig holds search API configuration
type SearchConfig struct {
	Endpoint         string        `mapstructure:"endpoint"`
	Engine           string        `mapstructure:"engine"`
	APIKey           string        `mapstructure:"api_key"`
	Timeout          time.Duration `mapstructure:"timeout"`
	Retries          int           `mapstructure:"retries"`
	RetryWait        time.Duration `mapstructure:"retry_wait"`
	RetryMaxWait     time.Duration `mapstructure:"retry_max_wait"`
	RetryStatusCodes []int         `mapstructure:"retry_status_codes"`
	SERPResults      int           `mapstructure:"serp_results"`
	TopArticles      int           `mapstructure:"top_articles"`
}

// TopicsConfig holds blog topic aggregation configuration
type TopicsConfig struct {
	TopN  int    `mapstructure:"top_n"`
	Dedup string `mapstructure:"dedup"` // "host" or "site"
}

// DashboardConfig holds dashboard server configuration
type DashboardConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Keyword string `mapstructure:"keyword"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text", "json" or "logfmt"
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	// A missing .env file is fine; the key may come from the real environment.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.seoscout")
	}

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults and env
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	loadFromEnv(&config)

	return &config, nil
}

// Default returns the configuration built from defaults only.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always decode.
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	// Data defaults
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.top_urls", "top_urls.csv")
	v.SetDefault("data.seo_audit", "seo_audit_serpapi.csv")
	v.SetDefault("data.blog_metadata", "blog_metadata.csv")
	v.SetDefault("data.scraped_data", "scraped_data.csv")
	v.SetDefault("data.cta_analysis", "cta_analysis.csv")

	// Crawler defaults
	v.SetDefault("crawler.user_agent", "Mozilla/5.0")
	v.SetDefault("crawler.page_timeout", "5s")
	v.SetDefault("crawler.scrape_timeout", "10s")
	v.SetDefault("crawler.requests_per_second", 0)
	v.SetDefault("crawler.follow_robots_txt", false)

	// Search defaults
	v.SetDefault("search.endpoint", "https://serpapi.com/search.json")
	v.SetDefault("search.engine", "google")
	v.SetDefault("search.timeout", "10s")
	v.SetDefault("search.retries", 3)
	v.SetDefault("search.retry_wait", "1s")
	v.SetDefault("search.retry_max_wait", "4s")
	v.SetDefault("search.serp_results", 10)
	v.SetDefault("search.top_articles", 5)
	v.SetDefault("search.retry_status_codes", []int{403, 500, 502, 503, 504})

	// Topics defaults
	v.SetDefault("topics.top_n", 10)
	v.SetDefault("topics.dedup", "host")

	// Dashboard defaults
	v.SetDefault("dashboard.host", "127.0.0.1")
	v.SetDefault("dashboard.port", 5000)
	v.SetDefault("dashboard.keyword", "Sample Keyword")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("SEOSCOUT")
	v.AutomaticEnv()

	v.BindEnv("search.api_key", "SERP_API_KEY", "SERPAPI_API_KEY")
}

// loadFromEnv applies variables that must win over the config file
func loadFromEnv(config *Config) {
	if apiKey := os.Getenv("SERP_API_KEY"); apiKey != "" {
		config.Search.APIKey = apiKey
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir must be set")
	}
	if c.Crawler.PageTimeout <= 0 || c.Crawler.ScrapeTimeout <= 0 {
		return fmt.Errorf("crawler timeouts must be positive")
	}
	if c.Crawler.RequestsPerSecond < 0 {
		return fmt.Errorf("crawler.requests_per_second must not be negative")
	}
	if c.Search.Retries < 0 {
		return fmt.Errorf("search.retries must not be negative")
	}
	if c.Search.SERPResults <= 0 || c.Search.TopArticles <= 0 {
		return fmt.Errorf("search result counts must be positive")
	}
	if c.Topics.TopN <= 0 {
		return fmt.Errorf("topics.top_n must be positive")
	}
	switch c.Topics.Dedup {
	case "host", "site":
	default:
		return fmt.Errorf("topics.dedup must be host or site, got %q", c.Topics.Dedup)
	}
	switch c.Logging.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("logging.format must be text, json or logfmt, got %q", c.Logging.Format)
	}
	return nil
}
