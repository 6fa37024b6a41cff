package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"
	"ytdigest/pkg/config"
	"ytdigest/pkg/logger"
	"ytdigest/pkg/youtube"
)

var searchMax int64

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Search YouTube videos by keyword",
	Long: `Search YouTube for videos matching a keyword query and print one
"title: url" line per result, in the order the API returns them.`,
	Example: `  # Five most relevant videos
  ytdigest search IoT in healthcare

  # Up to 20 results
  ytdigest search --max 20 "home automation"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := map[string]interface{}{"console": false}
		if searchMax > 0 {
			flags["max-results"] = searchMax
		}

		cfg, err := loadConfig(flags)
		if err != nil {
			return err
		}
		if err := cfg.ValidateSearch(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log, err := initLogger(cfg)
		if err != nil {
			return err
		}

		return runSearch(cmd.Context(), cfg, strings.Join(args, " "), cmd.OutOrStdout(), log)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().Int64VarP(&searchMax, "max", "n", 0, "maximum number of results, 1-50 (default 5)")
}

func runSearch(ctx context.Context, cfg *config.Config, query string, out io.Writer, log logger.Logger, opts ...option.ClientOption) error {
	client, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, log, opts...)
	if err != nil {
		return err
	}

	results, err := client.Search(ctx, query, cfg.YouTube.SearchMaxResults)
	if err != nil {
		log.WithError(err).WithField("query", query).Error("Search failed")
		return err
	}

	return youtube.WriteResults(out, results)
}
