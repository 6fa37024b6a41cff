package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Download backends
const (
	BackendNative = "native"
	BackendYtDlp  = "ytdlp"
)

// Transcription backends
const (
	TranscriptionOpenAI = "openai"
	TranscriptionLocal  = "local"
)

// DefaultSystemPrompt is the instruction given to the language model for every summary
const DefaultSystemPrompt = "Summarize the YouTube video transcript in bullet points with a short conclusion."

// Config holds all configuration options for ytdigest
type Config struct {
	// YouTube Data API access and the watched channel
	YouTube YouTubeConfig `yaml:"youtube" json:"youtube"`

	// OpenAI credentials and models
	OpenAI OpenAIConfig `yaml:"openai" json:"openai"`

	// Summary delivery
	Email EmailConfig `yaml:"email" json:"email"`

	// Last-seen video bookkeeping
	Checkpoint CheckpointConfig `yaml:"checkpoint" json:"checkpoint"`

	// Audio download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Speech-to-text settings
	Transcription TranscriptionConfig `yaml:"transcription" json:"transcription"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// YouTubeConfig holds YouTube-specific configuration
type YouTubeConfig struct {
	APIKey           string `yaml:"api_key" json:"api_key"`
	ChannelID        string `yaml:"channel_id" json:"channel_id"`
	SearchMaxResults int64  `yaml:"search_max_results" json:"search_max_results"`
}

// OpenAIConfig holds language-model and speech-to-text API configuration
type OpenAIConfig struct {
	APIKey             string `yaml:"api_key" json:"api_key"`
	BaseURL            string `yaml:"base_url" json:"base_url"`
	SummaryModel       string `yaml:"summary_model" json:"summary_model"`
	TranscriptionModel string `yaml:"transcription_model" json:"transcription_model"`
	SystemPrompt       string `yaml:"system_prompt" json:"system_prompt"`
}

// EmailConfig holds SMTP delivery configuration
type EmailConfig struct {
	From     string        `yaml:"from" json:"from"`
	To       string        `yaml:"to" json:"to"`
	Password string        `yaml:"password" json:"password"`
	SMTPHost string        `yaml:"smtp_host" json:"smtp_host"`
	SMTPPort int           `yaml:"smtp_port" json:"smtp_port"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// CheckpointConfig holds the location of the last-seen video file
type CheckpointConfig struct {
	File string `yaml:"file" json:"file"`
	// LockFile defaults to File + ".lock" when empty
	LockFile string `yaml:"lock_file" json:"lock_file"`
}

// DownloadConfig holds audio download configuration
type DownloadConfig struct {
	Backend        string `yaml:"backend" json:"backend"`
	AudioDirectory string `yaml:"audio_directory" json:"audio_directory"`
	YtDlpPath      string `yaml:"ytdlp_path" json:"ytdlp_path"`
	InstallYtDlp   bool   `yaml:"install_ytdlp" json:"install_ytdlp"`
	KeepAudio      bool   `yaml:"keep_audio" json:"keep_audio"`
}

// TranscriptionConfig selects and configures the speech-to-text backend
type TranscriptionConfig struct {
	Backend      string `yaml:"backend" json:"backend"`
	LocalCommand string `yaml:"local_command" json:"local_command"`
	LocalModel   string `yaml:"local_model" json:"local_model"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
	// Console mirrors log lines to stderr
	Console bool `yaml:"console" json:"console"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		YouTube: YouTubeConfig{
			SearchMaxResults: 5,
		},
		OpenAI: OpenAIConfig{
			SummaryModel:       "gpt-4",
			TranscriptionModel: "whisper-1",
			SystemPrompt:       DefaultSystemPrompt,
		},
		Email: EmailConfig{
			SMTPHost: "smtp.gmail.com",
			SMTPPort: 465,
			Timeout:  30 * time.Second,
		},
		Checkpoint: CheckpointConfig{
			File: "last_video_id.txt",
		},
		Download: DownloadConfig{
			Backend:        BackendNative,
			AudioDirectory: ".",
			YtDlpPath:      "",
			InstallYtDlp:   false,
			KeepAudio:      false,
		},
		Transcription: TranscriptionConfig{
			Backend:      TranscriptionOpenAI,
			LocalCommand: "whisper",
			LocalModel:   "base",
		},
		Logging: LoggingConfig{
			Level:   "info",
			File:    "youtube_summarizer.log",
			Console: true,
		},
	}
}

// LoadFromEnv loads configuration from environment variables.
// Credentials use the plain names the scripts have always used; everything else is YTDIGEST_ prefixed.
func (c *Config) LoadFromEnv() error {
	setString := func(target *string, keys ...string) {
		for _, key := range keys {
			if v := os.Getenv(key); v != "" {
				*target = v
				return
			}
		}
	}

	setString(&c.YouTube.APIKey, "YOUTUBE_API_KEY", "YTDIGEST_YOUTUBE_API_KEY")
	setString(&c.YouTube.ChannelID, "CHANNEL_ID", "YTDIGEST_CHANNEL_ID")
	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY", "YTDIGEST_OPENAI_API_KEY")
	setString(&c.OpenAI.BaseURL, "YTDIGEST_OPENAI_BASE_URL")
	setString(&c.OpenAI.SummaryModel, "YTDIGEST_SUMMARY_MODEL")
	setString(&c.Email.From, "EMAIL_FROM")
	setString(&c.Email.To, "EMAIL_TO")
	setString(&c.Email.Password, "EMAIL_PASSWORD")
	setString(&c.Email.SMTPHost, "YTDIGEST_SMTP_HOST")
	setString(&c.Checkpoint.File, "YTDIGEST_CHECKPOINT_FILE")
	setString(&c.Download.AudioDirectory, "YTDIGEST_AUDIO_DIR")
	setString(&c.Download.Backend, "YTDIGEST_DOWNLOAD_BACKEND")
	setString(&c.Transcription.Backend, "YTDIGEST_TRANSCRIPTION_BACKEND")
	setString(&c.Logging.Level, "YTDIGEST_LOG_LEVEL")
	setString(&c.Logging.File, "YTDIGEST_LOG_FILE")

	if port := os.Getenv("YTDIGEST_SMTP_PORT"); port != "" {
		val, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid YTDIGEST_SMTP_PORT %q: %w", port, err)
		}
		c.Email.SMTPPort = val
	}

	if keep := os.Getenv("YTDIGEST_KEEP_AUDIO"); keep != "" {
		c.Download.KeepAudio = strings.ToLower(keep) == "true"
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".ytdigest.yaml",
		".ytdigest.yml",
		filepath.Join(home, ".config", "ytdigest", "config.yaml"),
		filepath.Join(home, ".config", "ytdigest", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// validateSettings checks values that every command depends on
func (c *Config) validateSettings() []error {
	var errs []error

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	switch c.Download.Backend {
	case BackendNative, BackendYtDlp:
	default:
		errs = append(errs, fmt.Errorf("invalid download backend %q", c.Download.Backend))
	}

	switch c.Transcription.Backend {
	case TranscriptionOpenAI, TranscriptionLocal:
	default:
		errs = append(errs, fmt.Errorf("invalid transcription backend %q", c.Transcription.Backend))
	}

	if c.YouTube.SearchMaxResults < 1 || c.YouTube.SearchMaxResults > 50 {
		errs = append(errs, errors.New("search max results must be between 1 and 50"))
	}

	return errs
}

// ValidateSearch checks the configuration needed by the search command
func (c *Config) ValidateSearch() error {
	errs := c.validateSettings()
	if c.YouTube.APIKey == "" {
		errs = append(errs, errors.New("YouTube API key is required"))
	}
	return errors.Join(errs...)
}

// Validate checks the configuration needed by the watch command
func (c *Config) Validate() error {
	errs := c.validateSettings()

	if c.YouTube.APIKey == "" {
		errs = append(errs, errors.New("YouTube API key is required"))
	}
	if c.YouTube.ChannelID == "" {
		errs = append(errs, errors.New("channel ID is required"))
	}
	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("OpenAI API key is required"))
	}
	if c.OpenAI.SummaryModel == "" {
		errs = append(errs, errors.New("summary model is required"))
	}
	if c.Transcription.Backend == TranscriptionLocal && c.Transcription.LocalCommand == "" {
		errs = append(errs, errors.New("local transcription command is required"))
	}

	if c.Email.From == "" {
		errs = append(errs, errors.New("sender email address is required"))
	}
	if c.Email.To == "" {
		errs = append(errs, errors.New("recipient email address is required"))
	}
	if c.Email.Password == "" {
		errs = append(errs, errors.New("sender email password is required"))
	}
	if c.Email.SMTPHost == "" {
		errs = append(errs, errors.New("SMTP host is required"))
	}
	if c.Email.SMTPPort <= 0 || c.Email.SMTPPort > 65535 {
		errs = append(errs, errors.New("SMTP port must be between 1 and 65535"))
	}

	if c.Checkpoint.File == "" {
		errs = append(errs, errors.New("checkpoint file is required"))
	}
	if c.Download.AudioDirectory == "" {
		errs = append(errs, errors.New("audio directory is required"))
	}

	return errors.Join(errs...)
}

// LockFile returns the path of the run lock guarding the checkpoint
func (c *Config) LockFile() string {
	if c.Checkpoint.LockFile != "" {
		return c.Checkpoint.LockFile
	}
	return c.Checkpoint.File + ".lock"
}

// Masked returns a copy of the configuration with secrets hidden
func (c *Config) Masked() *Config {
	masked := *c
	masked.YouTube.APIKey = maskSecret(c.YouTube.APIKey)
	masked.OpenAI.APIKey = maskSecret(c.OpenAI.APIKey)
	masked.Email.Password = maskSecret(c.Email.Password)
	return &masked
}

// WithoutSecrets returns a copy of the configuration with credentials cleared
func (c *Config) WithoutSecrets() *Config {
	clean := *c
	clean.YouTube.APIKey = ""
	clean.OpenAI.APIKey = ""
	clean.Email.Password = ""
	return &clean
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if channel, ok := flags["channel"].(string); ok && channel != "" {
		c.YouTube.ChannelID = channel
	}
	if maxResults, ok := flags["max-results"].(int64); ok && maxResults > 0 {
		c.YouTube.SearchMaxResults = maxResults
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
	if console, ok := flags["console"].(bool); ok {
		c.Logging.Console = console
	}
	if checkpointFile, ok := flags["checkpoint"].(string); ok && checkpointFile != "" {
		c.Checkpoint.File = checkpointFile
	}
	if backend, ok := flags["download-backend"].(string); ok && backend != "" {
		c.Download.Backend = backend
	}
	if backend, ok := flags["transcription-backend"].(string); ok && backend != "" {
		c.Transcription.Backend = backend
	}
	if keep, ok := flags["keep-audio"].(bool); ok && keep {
		c.Download.KeepAudio = true
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".ytdigest.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if errs := config.validateSettings(); len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return config, nil
}
