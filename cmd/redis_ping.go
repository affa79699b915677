package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"viral-scout/internal/config"
	"viral-scout/internal/redisclient"
	"viral-scout/internal/storage"

	"github.com/spf13/cobra"
)

// pingCmd pings the configured Redis server.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping Redis and print how many hashes each table remembers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Redis.Addr == "" {
			return errors.New("redis.addr is not set")
		}

		store := storage.NewRedisStore(redisclient.New(cfg.Redis), config.Duration(cfg.Redis.Retention))
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "PONG")
		for _, table := range []string{cfg.Storage.BlogTable, cfg.Storage.CafeTable} {
			hs, err := store.SeenHashes(ctx, table, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d hashes\n", table, len(hs))
		}
		return nil
	},
}

func init() {
	redisCmd.AddCommand(pingCmd)
}
