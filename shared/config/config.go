package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube"`
	AI         AIConfig         `yaml:"ai"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Cache      CacheConfig      `yaml:"cache"`
	Export     ExportConfig     `yaml:"export"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Schedule   string           `yaml:"schedule"`
}

type YouTubeConfig struct {
	APIKey     string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	DailyQuota int    `yaml:"daily_quota"`
}

type AIConfig struct {
	GeminiAPIKey      string  `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model             string  `yaml:"model"`
	EmbeddingModel    string  `yaml:"embedding_model"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type AnalysisConfig struct {
	Query               string       `yaml:"query"`
	DaysBack            int          `yaml:"days_back"`
	MaxResults          int64        `yaml:"max_results"`
	Order               string       `yaml:"order"`
	SimilarityThreshold float64      `yaml:"similarity_threshold"`
	ExtractionAttempts  int          `yaml:"extraction_attempts"`
	ExtractionWorkers   int          `yaml:"extraction_workers"`
	TopTrends           int          `yaml:"top_trends"`
	Weights             ScoreWeights `yaml:"weights"`
}

// ScoreWeights are the tunable trend-score coefficients. They apply to
// max-normalized metrics, so they need not sum to 1.
type ScoreWeights struct {
	Views      float64 `yaml:"views"`
	Engagement float64 `yaml:"engagement"`
	Comments   float64 `yaml:"comments"`
	Size       float64 `yaml:"size"`
}

type CacheConfig struct {
	Directory string `yaml:"directory"`
	MaxAgeHrs int    `yaml:"max_age_hours"`
}

type ExportConfig struct {
	Directory string `yaml:"directory"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
	}

	if cfg.YouTube.APIKey == "" {
		cfg.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if cfg.AI.GeminiAPIKey == "" {
		cfg.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	cfg.ApplyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.YouTube.DailyQuota == 0 {
		c.YouTube.DailyQuota = 10000
	}
	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.EmbeddingModel == "" {
		c.AI.EmbeddingModel = "gemini-embedding-001"
	}
	if c.AI.RequestsPerSecond == 0 {
		c.AI.RequestsPerSecond = 1.0
	}
	if c.Analysis.DaysBack == 0 {
		c.Analysis.DaysBack = 7
	}
	if c.Analysis.MaxResults == 0 {
		c.Analysis.MaxResults = 50
	}
	if c.Analysis.Order == "" {
		c.Analysis.Order = "relevance"
	}
	if c.Analysis.SimilarityThreshold == 0 {
		c.Analysis.SimilarityThreshold = 0.80
	}
	if c.Analysis.ExtractionAttempts == 0 {
		c.Analysis.ExtractionAttempts = 3
	}
	if c.Analysis.ExtractionWorkers == 0 {
		c.Analysis.ExtractionWorkers = 4
	}
	// The text-generation throttle assumes a small pool; cap rather than reject.
	if c.Analysis.ExtractionWorkers > 5 {
		c.Analysis.ExtractionWorkers = 5
	}
	if c.Analysis.TopTrends == 0 {
		c.Analysis.TopTrends = 10
	}
	if c.Analysis.Weights == (ScoreWeights{}) {
		c.Analysis.Weights = ScoreWeights{Views: 0.40, Engagement: 0.30, Comments: 0.20, Size: 0.10}
	}
	if c.Cache.Directory == "" {
		c.Cache.Directory = "data"
	}
	if c.Cache.MaxAgeHrs == 0 {
		c.Cache.MaxAgeHrs = 7 * 24
	}
	if c.Export.Directory == "" {
		c.Export.Directory = "exports"
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Schedule == "" {
		c.Schedule = "0 9 * * *" // Daily at 9 AM
	}
}

func (c *Config) validate() error {
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("YouTube API key is required (set YOUTUBE_API_KEY or youtube.api_key)")
	}
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
	}
	if c.Analysis.SimilarityThreshold <= 0 || c.Analysis.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got %v", c.Analysis.SimilarityThreshold)
	}
	if c.Analysis.MaxResults < 1 {
		return fmt.Errorf("max_results must be at least 1")
	}
	return nil
}
