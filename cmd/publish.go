package cmd

import (
	"context"
	"errors"
	"fmt"

	"viral-scout/internal/config"
	"viral-scout/internal/quaily"

	"github.com/spf13/cobra"
)

var publishDeliver bool

var publishCmd = &cobra.Command{
	Use:   "publish <markdown_path> [channel_slug]",
	Short: "Publish a digest markdown file to Quaily",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 || len(args) > 2 {
			return errors.New("requires <markdown_path> and an optional <channel_slug>")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Quaily.BaseURL == "" || cfg.Quaily.APIKey == "" {
			return fmt.Errorf("quaily config missing: set quaily.base_url and quaily.api_key in config.yaml")
		}
		channel := cfg.Quaily.Channel
		if len(args) == 2 {
			channel = args[1]
		}
		if channel == "" {
			return errors.New("no channel: pass <channel_slug> or set quaily.channel")
		}
		tm := config.Duration(cfg.Quaily.Timeout)
		cli := quaily.New(cfg.Quaily.BaseURL, cfg.Quaily.APIKey, tm)
		ctx, cancel := context.WithTimeout(context.Background(), tm)
		defer cancel()
		mdPath := args[0]
		if err := quaily.PublishMarkdownFile(ctx, cli, mdPath, channel, publishDeliver || cfg.Quaily.Deliver); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published %s to Quaily channel %s\n", mdPath, channel)
		return nil
	},
}

func init() {
	publishCmd.Flags().BoolVar(&publishDeliver, "deliver", false, "also deliver the post to subscribers")
	rootCmd.AddCommand(publishCmd)
}
