package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"viral-scout/internal/ai"
	"viral-scout/internal/config"
	"viral-scout/internal/digest"
	"viral-scout/internal/feed"
	"viral-scout/internal/model"
	"viral-scout/internal/naver"
	"viral-scout/internal/notify"
	"viral-scout/internal/pipeline"
	"viral-scout/internal/quaily"
	"viral-scout/internal/redisclient"
	"viral-scout/internal/scrape"
	"viral-scout/internal/storage"
	"viral-scout/worker"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and report the digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, closeAll, err := buildScanner(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer closeAll()

		rep, err := s.Run(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d candidates, %d new (blog %d, cafe %d)\n",
			rep.RunID, rep.Candidates, rep.Digest.Total,
			rep.Accepted[model.SourceBlog], rep.Accepted[model.SourceCafe])
		if rep.Output != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "digest written to %s\n", rep.Output)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// buildScanner wires every collaborator from cfg. Failures here are setup
// failures; optional collaborators that are not configured are left nil.
func buildScanner(ctx context.Context, cfg config.Config) (*worker.Scanner, func(), error) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	sheet, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	closers = append(closers, sheet.Close)

	var seen worker.SeenStore
	if cfg.Redis.Addr != "" {
		rs := storage.NewRedisStore(redisclient.New(cfg.Redis), config.Duration(cfg.Redis.Retention))
		closers = append(closers, rs.Close)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rs.Ping(pctx)
		cancel()
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		seen = rs
	}

	completer, err := ai.New(ctx, cfg.AI)
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("ai provider: %w", err)
	}
	if completer == nil {
		slog.Warn("scan: no AI credential, using dictionary fallbacks", "provider", cfg.AI.Provider)
	}

	var searchers []worker.Searcher
	if cfg.Naver.ClientID != "" && cfg.Naver.ClientSecret != "" {
		searchers = append(searchers, naver.NewClient(naver.Options{
			BaseURL:      cfg.Naver.BaseURL,
			ClientID:     cfg.Naver.ClientID,
			ClientSecret: cfg.Naver.ClientSecret,
			Display:      cfg.Naver.Display,
			Sort:         cfg.Naver.Sort,
			Timeout:      config.Duration(cfg.Naver.Timeout),
		}))
	}
	if len(cfg.Scan.Feeds) > 0 {
		searchers = append(searchers, feed.NewSearcher(cfg.Scan.Feeds, config.Duration(cfg.Naver.Timeout)))
	}
	if len(searchers) == 0 {
		closeAll()
		return nil, nil, fmt.Errorf("no search source: set naver.client_id/client_secret or scan.feeds")
	}

	timeout := config.Duration(cfg.Scrape.Timeout)
	router := scrape.Router{Blog: scrape.NewHTTPFetcher(timeout, cfg.Scrape.UserAgent)}
	if cfg.Cloudflare.AccountID != "" && cfg.Cloudflare.APIToken != "" {
		router.Cafe = scrape.NewCloudflare(cfg.Cloudflare.AccountID, cfg.Cloudflare.APIToken, timeout)
	}

	var notifier notify.Notifier
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			// delivery problems never stop collection
			slog.Warn("scan: telegram disabled", "err", err)
		} else {
			notifier = tg
		}
	}

	var publisher worker.Publisher
	if cfg.Quaily.Enabled() {
		publisher = worker.QuailyPublisher{
			Client:  quaily.New(cfg.Quaily.BaseURL, cfg.Quaily.APIKey, config.Duration(cfg.Quaily.Timeout)),
			Channel: cfg.Quaily.Channel,
			Deliver: cfg.Quaily.Deliver,
			Timeout: config.Duration(cfg.Quaily.Timeout),
		}
	}

	s := &worker.Scanner{
		Searchers: searchers,
		Fetcher: scrape.Retrying{
			Fetcher:  router,
			Attempts: cfg.Scrape.Attempts,
			Backoff:  config.Duration(cfg.Scrape.Backoff),
		},
		Sheet:     sheet,
		Seen:      seen,
		AI:        completer,
		Notifier:  notifier,
		Publisher: publisher,
		Settings:  pipeline.SettingsFromConfig(cfg),
		Options: worker.Options{
			Keywords:      cfg.Scan.Keywords,
			BlogTable:     cfg.Storage.BlogTable,
			CafeTable:     cfg.Storage.CafeTable,
			SettingsTable: cfg.Storage.SettingsTable,
			EnableBlog:    cfg.Scan.EnableBlog,
			EnableCafe:    cfg.Scan.EnableCafe,
			BlogContent:   cfg.Scrape.BlogContent,
			CafeMaxPosts:  cfg.Scan.CafeMaxPosts,
			PostDelay:     config.Duration(cfg.Scan.PostDelay),
			KeywordDelay:  config.Duration(cfg.Scan.KeywordDelay),
			WritePace:     config.Duration(cfg.Storage.WritePace),
			Location:      cfg.Location(),
			SheetURL:      cfg.App.SheetURL,
			OutputDir:     cfg.Scan.OutputDir,
			Digest: digest.Options{
				PreviewPerKind: cfg.Scan.PreviewPerKind,
				TitleWidth:     cfg.Scan.TitleWidth,
			},
			Title:      cfg.Quaily.Title,
			Preface:    cfg.Quaily.Preface,
			Postscript: cfg.Quaily.Postscript,
		},
	}
	return s, closeAll, nil
}
