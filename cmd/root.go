package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"viral-scout/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "viral-scout",
	Short: "Pet-food mention scanner for Naver blogs and cafes",
	Long: "Searches blogs and cafes for configured keywords, filters sponsored and duplicate posts,\n" +
		"summarizes what is left and reports a digest to Telegram and Quaily.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

// envAliases keeps the variable names of existing .env files working.
var envAliases = map[string]string{
	"naver.client_id":      "NAVER_CLIENT_ID",
	"naver.client_secret":  "NAVER_CLIENT_SECRET",
	"telegram.bot_token":   "TELEGRAM_BOT_TOKEN",
	"telegram.chat_id":     "TELEGRAM_CHAT_ID",
	"ai.provider":          "AI_PROVIDER",
	"ai.gemini.api_key":    "GEMINI_API_KEY",
	"ai.openai.api_key":    "OPENAI_API_KEY",
	"cloudflare.api_token": "CLOUDFLARE_API_TOKEN",
	"quaily.api_key":       "QUAILY_API_KEY",
}

func initConfig() {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.GetViper()
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, alias := range envAliases {
		_ = v.BindEnv(key, "SCOUT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), alias)
	}
	v.SetDefault("scan.enable_blog", true)
	v.SetDefault("scan.enable_cafe", true)
	v.SetDefault("ai.analyze_comments", true)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/viral-scout")
		v.AddConfigPath("configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}

	appCfg.FillDefaults()
	if err := appCfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	setupLogging(appCfg.App.LogLevel, appCfg.App.LogFormat)
}

func setupLogging(level, format string) {
	var lv slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lv = slog.LevelDebug
	case "warn", "warning":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		lv = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lv}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}
