package cmd

import (
	"context"
	"fmt"
	"time"

	"viral-scout/internal/storage"

	"github.com/spf13/cobra"
)

// keywordsCmd manages the search terms kept in the settings table.
var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List or add search keywords",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sheet, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer sheet.Close()

		kws, err := sheet.Keywords(ctx, cfg.Storage.SettingsTable)
		if err != nil {
			return err
		}
		if len(kws) == 0 {
			kws = cfg.Scan.Keywords
			fmt.Fprintln(cmd.ErrOrStderr(), "settings table is empty, showing scan.keywords from config")
		}
		for _, k := range kws {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

var keywordsAddCmd = &cobra.Command{
	Use:   "add <keyword>...",
	Short: "Append keywords to the settings table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sheet, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		defer sheet.Close()

		for _, k := range args {
			if err := sheet.AddKeyword(ctx, cfg.Storage.SettingsTable, k); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %d keyword(s) to %s\n", len(args), cfg.Storage.SettingsTable)
		return nil
	},
}

func init() {
	keywordsCmd.AddCommand(keywordsAddCmd)
	rootCmd.AddCommand(keywordsCmd)
}
