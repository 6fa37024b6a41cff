package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"ytdigest/pkg/config"
	"ytdigest/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage ytdigest configuration.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables and .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is written to '.ytdigest.yaml' unless a different path is given
with the --config flag. Existing files are never overwritten.

With --from-current the effective configuration from the environment, .env
files and flags is written instead, with API keys and the password left empty.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.

API keys and the email password are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that a watch run has everything it needs",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var initFromCurrent bool

func init() {
	initCmd.Flags().BoolVar(&initFromCurrent, "from-current", false, "write the effective configuration (without credentials) instead of the example")

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# ytdigest configuration file
#
# Credentials are best kept in the environment or a .env file:
#   YOUTUBE_API_KEY, OPENAI_API_KEY, CHANNEL_ID,
#   EMAIL_FROM, EMAIL_TO, EMAIL_PASSWORD
# Other settings can be overridden with YTDIGEST_* variables.

youtube:
  # Channel to watch (UC...)
  channel_id: ""
  # Results printed by "ytdigest search" (1-50)
  search_max_results: 5

openai:
  # Optional API-compatible endpoint
  base_url: ""
  summary_model: "gpt-4"
  transcription_model: "whisper-1"
  system_prompt: "Summarize the YouTube video transcript in bullet points with a short conclusion."

email:
  from: ""
  to: ""
  # Implicit TLS (SMTPS)
  smtp_host: "smtp.gmail.com"
  smtp_port: 465
  timeout: 30s

checkpoint:
  # Single line "video_id,<TAB>title"
  file: "last_video_id.txt"
  # Defaults to <file>.lock
  lock_file: ""

download:
  # native or ytdlp
  backend: "native"
  audio_directory: "."
  # yt-dlp binary, looked up on PATH when empty
  ytdlp_path: ""
  # Download a managed yt-dlp binary on first use
  install_ytdlp: false
  keep_audio: false

transcription:
  # openai or local
  backend: "openai"
  # Used by the local backend
  local_command: "whisper"
  local_model: "base"

logging:
  # debug, info, warn, error
  level: "info"
  file: "youtube_summarizer.log"
  console: true
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".ytdigest.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if initFromCurrent {
		// The target file does not exist yet, so resolve the other sources only
		cfg, err := config.Load("", globalFlags())
		if err != nil {
			return err
		}
		if err := writeCurrentConfig(configPath, cfg); err != nil {
			return err
		}
	} else if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	ui.PrintList([]string{
		"Put your credentials in .env or the environment",
		"Run 'ytdigest config validate' to check the configuration",
		"Schedule 'ytdigest watch' with cron",
	})
	return nil
}

// writeCurrentConfig saves the effective configuration without credentials
func writeCurrentConfig(path string, cfg *config.Config) error {
	if err := cfg.WithoutSecrets().Save(path); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		ui.PrintError("Configuration has errors:")
		ui.PrintList(problems(err))
		return errors.New("configuration is not valid for watch runs")
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Channel", cfg.YouTube.ChannelID)
	ui.PrintInfo("Checkpoint", cfg.Checkpoint.File)
	ui.PrintInfo("Download backend", cfg.Download.Backend)
	ui.PrintInfo("Transcription backend", cfg.Transcription.Backend)
	ui.PrintInfo("Summary model", cfg.OpenAI.SummaryModel)
	ui.PrintInfo("Deliver to", cfg.Email.To)
	return nil
}

// problems splits an errors.Join result back into its lines
func problems(err error) []string {
	var out []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
