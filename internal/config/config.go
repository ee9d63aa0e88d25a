package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath  string
	CorpusCSVPath string // CSV imported on first run when the corpus is empty

	// Images
	ImageDir     string // Normalized portraits, one subdirectory per author
	SourceDir    string // Raw source photos for the preprocessor
	OutputDir    string // Rendered cards
	PortraitSize int
	JPEGQuality  int

	// Fonts
	FontDir    string
	QuoteFont  string
	AuthorFont string

	// Logging
	LogDir   string
	LogLevel string

	// Workspace permissions applied by `prepare`
	DirMode fs.FileMode

	// Instagram Graph API
	InstagramAccessToken string
	InstagramAccountID   string
	InstagramAPIVersion  string

	// Content API
	BaseURL         string
	ContentCategory string
	ContentWriter   string

	// Bluesky (optional second platform)
	BlueskyHandle      string
	BlueskyAppPassword string

	// Image URL reachability probe
	ImageCheckAttempts int
	ImageCheckDelay    time.Duration

	// Scheduler settings
	PostInterval   time.Duration
	MaxPostsPerDay int

	// Notification settings
	NotifyHandle string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:         getEnv("DATABASE_PATH", "data/sqlite.db"),
		CorpusCSVPath:        getEnv("CORPUS_CSV_PATH", "wisdom.csv"),
		ImageDir:             getEnv("IMAGE_DIR", "img"),
		SourceDir:            getEnv("SOURCE_DIR", filepath.Join("img", "source")),
		OutputDir:            getEnv("OUTPUT_DIR", "output"),
		FontDir:              getEnv("FONT_DIR", "fonts"),
		QuoteFont:            getEnv("QUOTE_FONT", "NanumGothicBold.ttf"),
		AuthorFont:           getEnv("AUTHOR_FONT", "MaruBuri-Bold.ttf"),
		LogDir:               getEnv("LOG_DIR", "log"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		InstagramAccessToken: getEnv("INSTAGRAM_ACCESS_TOKEN", ""),
		InstagramAccountID:   getEnv("INSTAGRAM_ACCOUNT_ID", ""),
		InstagramAPIVersion:  getEnv("INSTAGRAM_API_VERSION", "v18.0"),
		BaseURL:              getEnv("BASE_URL", ""),
		ContentCategory:      getEnv("CONTENT_CATEGORY", "투자명언"),
		ContentWriter:        getEnv("CONTENT_WRITER", "admin"),
		BlueskyHandle:        getEnv("BLUESKY_HANDLE", ""),
		BlueskyAppPassword:   getEnv("BLUESKY_APP_PASSWORD", ""),
		NotifyHandle:         getEnv("NOTIFY_HANDLE", ""),
	}

	// Parse durations
	var err error
	cfg.ImageCheckDelay, err = time.ParseDuration(getEnv("IMAGE_CHECK_DELAY", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid IMAGE_CHECK_DELAY: %w", err)
	}

	cfg.PostInterval, err = time.ParseDuration(getEnv("POST_INTERVAL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid POST_INTERVAL: %w", err)
	}

	// Parse integers
	if cfg.PortraitSize, err = getInt("PORTRAIT_SIZE", "600"); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality, err = getInt("JPEG_QUALITY", "95"); err != nil {
		return nil, err
	}
	if cfg.ImageCheckAttempts, err = getInt("IMAGE_CHECK_ATTEMPTS", "5"); err != nil {
		return nil, err
	}
	if cfg.MaxPostsPerDay, err = getInt("MAX_POSTS_PER_DAY", "1"); err != nil {
		return nil, err
	}

	mode, err := strconv.ParseUint(getEnv("DIR_MODE", "0755"), 8, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DIR_MODE: %w", err)
	}
	cfg.DirMode = fs.FileMode(mode)

	return cfg, nil
}

// QuoteFontPath returns the full path of the quote font file.
func (c *Config) QuoteFontPath() string {
	return filepath.Join(c.FontDir, c.QuoteFont)
}

// AuthorFontPath returns the full path of the author font file.
func (c *Config) AuthorFontPath() string {
	return filepath.Join(c.FontDir, c.AuthorFont)
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateForPreprocess checks configuration needed for portrait normalization.
func (c *Config) ValidateForPreprocess() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.SourceDir == "" {
		return fmt.Errorf("SOURCE_DIR is required")
	}
	if c.ImageDir == "" {
		return fmt.Errorf("IMAGE_DIR is required")
	}
	if c.PortraitSize <= 0 {
		return fmt.Errorf("PORTRAIT_SIZE must be positive, got %d", c.PortraitSize)
	}
	return nil
}

// ValidateForRender checks configuration needed for card rendering.
func (c *Config) ValidateForRender() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ImageDir == "" {
		return fmt.Errorf("IMAGE_DIR is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.QuoteFont == "" || c.AuthorFont == "" {
		return fmt.Errorf("QUOTE_FONT and AUTHOR_FONT are required")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("JPEG_QUALITY must be between 1 and 100, got %d", c.JPEGQuality)
	}
	return nil
}

// ValidateForPosting checks configuration needed for publishing.
func (c *Config) ValidateForPosting() error {
	if err := c.ValidateForRender(); err != nil {
		return err
	}
	if c.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required for posting")
	}
	if c.InstagramAccessToken == "" {
		return fmt.Errorf("INSTAGRAM_ACCESS_TOKEN is required for posting")
	}
	if c.InstagramAccountID == "" {
		return fmt.Errorf("INSTAGRAM_ACCOUNT_ID is required for posting")
	}
	if c.ImageCheckAttempts < 1 {
		return fmt.Errorf("IMAGE_CHECK_ATTEMPTS must be at least 1")
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateForPosting(); err != nil {
		return err
	}
	if c.PostInterval <= 0 {
		return fmt.Errorf("POST_INTERVAL must be positive")
	}
	return nil
}

// BlueskyEnabled reports whether Bluesky credentials are configured.
func (c *Config) BlueskyEnabled() bool {
	return c.BlueskyHandle != "" && c.BlueskyAppPassword != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getInt(key, defaultVal string) (int, error) {
	n, err := strconv.Atoi(getEnv(key, defaultVal))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
