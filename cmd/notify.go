package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"viral-scout/internal/notify"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify [message]",
	Short: "Send a test message to the configured Telegram chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Telegram.BotToken == "" {
			return errors.New("telegram.bot_token is not set")
		}
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			return err
		}
		msg := strings.Join(args, " ")
		if msg == "" {
			msg = "viral-scout 연결 테스트"
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tg.Send(ctx, msg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sent")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}
