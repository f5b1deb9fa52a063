package store

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Exchange     string `yaml:"exchange"`
	UniverseFile string `yaml:"universe_file"`
	Prices       struct {
		Source            string  `yaml:"source"`
		ModelPeriod       string  `yaml:"model_period"`
		ModelInterval     string  `yaml:"model_interval"`
		CacheDir          string  `yaml:"cache_dir"`
		CacheTTLMinutes   int     `yaml:"cache_ttl_minutes"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
	} `yaml:"prices"`
	Model struct {
		Lags        int `yaml:"lags"`
		HorizonDays int `yaml:"horizon_days"`
	} `yaml:"model"`
	News struct {
		Source         string `yaml:"source"`
		MaxArticles    int    `yaml:"max_articles"`
		DisplayCount   int    `yaml:"display_count"`
		CacheMinutes   int    `yaml:"cache_minutes"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"news"`
	Sentiment struct {
		Classifier string `yaml:"classifier"`
		Endpoint   string `yaml:"endpoint"`
		Model      string `yaml:"model"`
		MaxTokens  int    `yaml:"max_tokens"`
		System     string `yaml:"system"`
	} `yaml:"sentiment"`
	Watch struct {
		Schedule string   `yaml:"schedule"`
		Symbols  []string `yaml:"symbols"`
	} `yaml:"watch"`
}

func (c *Config) Validate() error {
	if c.Exchange != "NSE" && c.Exchange != "BSE" {
		return fmt.Errorf("invalid exchange '%s': must be 'NSE' or 'BSE'", c.Exchange)
	}
	switch c.Prices.Source {
	case "YAHOO", "KITE", "STATIC":
	default:
		return fmt.Errorf("invalid prices.source '%s': must be 'YAHOO', 'KITE', or 'STATIC'", c.Prices.Source)
	}
	if c.Prices.RequestsPerSecond < 0 {
		return fmt.Errorf("prices.requests_per_second must be >= 0, got %.2f", c.Prices.RequestsPerSecond)
	}
	if c.Model.Lags < 1 {
		return fmt.Errorf("model.lags must be positive, got %d", c.Model.Lags)
	}
	if c.Model.HorizonDays < 1 {
		return fmt.Errorf("model.horizon_days must be positive, got %d", c.Model.HorizonDays)
	}
	switch c.News.Source {
	case "YAHOO", "SCRAPER", "NONE":
	default:
		return fmt.Errorf("invalid news.source '%s': must be 'YAHOO', 'SCRAPER', or 'NONE'", c.News.Source)
	}
	if c.News.MaxArticles < 1 {
		return fmt.Errorf("news.max_articles must be positive, got %d", c.News.MaxArticles)
	}
	if c.News.DisplayCount < 0 {
		return fmt.Errorf("news.display_count must be >= 0, got %d", c.News.DisplayCount)
	}
	switch c.Sentiment.Classifier {
	case "LEXICON", "NONE":
	case "HTTP":
		if c.Sentiment.Endpoint == "" {
			return errors.New("sentiment.endpoint is required for the HTTP classifier")
		}
	case "CLAUDE":
		if c.Sentiment.Model == "" {
			return errors.New("sentiment.model is required for the CLAUDE classifier")
		}
	default:
		return fmt.Errorf("invalid sentiment.classifier '%s': must be 'LEXICON', 'HTTP', 'CLAUDE', or 'NONE'", c.Sentiment.Classifier)
	}
	if c.Watch.Schedule != "" {
		if _, err := cron.ParseStandard(c.Watch.Schedule); err != nil {
			return fmt.Errorf("invalid watch.schedule '%s': %w", c.Watch.Schedule, err)
		}
	}
	return nil
}

// Defaults returns a config with every default applied.
func Defaults() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Exchange == "" {
		c.Exchange = "NSE"
	}
	c.Exchange = strings.ToUpper(c.Exchange)
	if c.Prices.Source == "" {
		c.Prices.Source = "YAHOO"
	}
	if c.Prices.ModelPeriod == "" {
		c.Prices.ModelPeriod = "2y"
	}
	if c.Prices.ModelInterval == "" {
		c.Prices.ModelInterval = "1d"
	}
	if c.Prices.CacheTTLMinutes == 0 {
		c.Prices.CacheTTLMinutes = 60
	}
	if c.Prices.TimeoutSeconds == 0 {
		c.Prices.TimeoutSeconds = 30
	}
	if c.Model.Lags == 0 {
		c.Model.Lags = 250
	}
	if c.Model.HorizonDays == 0 {
		c.Model.HorizonDays = 90
	}
	if c.News.Source == "" {
		c.News.Source = "YAHOO"
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 10
	}
	if c.News.DisplayCount == 0 {
		c.News.DisplayCount = 5
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 30
	}
	if c.Sentiment.Classifier == "" {
		c.Sentiment.Classifier = "LEXICON"
	}
	if c.Sentiment.Endpoint == "" {
		c.Sentiment.Endpoint = os.Getenv("SENTIMENT_API_URL")
	}
	if c.Sentiment.MaxTokens == 0 {
		c.Sentiment.MaxTokens = 256
	}
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
