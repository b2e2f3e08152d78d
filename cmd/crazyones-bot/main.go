// CrazyOnes bot — the Telegram front end. Serves subscription commands and
// announces whatever the monitor's trigger file says is new.
//
// Usage:
//
//	crazyones-bot             # serve until interrupted
//	crazyones-bot --log       # print the last 100 log lines
//	crazyones-bot --version   # show version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"crazyones/internal/bot"
	"crazyones/internal/config"
	"crazyones/internal/i18n"
	"crazyones/internal/logging"
	"crazyones/internal/store"
	"crazyones/internal/telegram"
)

var version = "dev"

var errInterrupted = errors.New("interrupted")

type flags struct {
	configPath string
	token      string
	dataDir    string
	localesDir string
	showLog    bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "crazyones-bot:", err)
		if errors.Is(err, errInterrupted) {
			return 130
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var fl flags
	cmd := &cobra.Command{
		Use:     "crazyones-bot",
		Short:   "Telegram bot announcing Apple security releases",
		Long:    "The bot half of CrazyOnes: manages per-chat subscriptions, serves the\nrecent-updates commands, and fans the monitor's new findings out to subscribers.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context(), fl)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringVarP(&fl.configPath, "config", "c", "config.json", "configuration file")
	cmd.Flags().StringVarP(&fl.token, "token", "t", "", "telegram bot token (overrides config)")
	cmd.Flags().StringVar(&fl.dataDir, "data-dir", "", "shared data directory (overrides config)")
	cmd.Flags().StringVar(&fl.localesDir, "locales", "locales", "directory of translation files")
	cmd.Flags().BoolVar(&fl.showLog, "log", false, fmt.Sprintf("print the last %d log lines and exit", logging.TailLines))
	return cmd
}

func runBot(ctx context.Context, fl flags) error {
	cfg, err := config.Load(fl.configPath)
	if err != nil {
		return err
	}
	if fl.token != "" {
		cfg.TelegramBotToken = fl.token
	}
	if fl.dataDir != "" {
		cfg.DataDir = fl.dataDir
	}

	if fl.showLog {
		return printLog(cfg.DataDir, "crazyones-bot")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer, err := logging.Setup(cfg.DataDir, "crazyones-bot")
	if err != nil {
		return err
	}
	defer closer.Close()

	translations, err := i18n.Load(fl.localesDir)
	if err != nil {
		return err
	}

	transport, err := telegram.Dial(cfg.TelegramBotToken)
	if err != nil {
		return err
	}

	svc, err := bot.New(bot.Config{
		Transport: transport,
		Paths:     store.Paths{DataDir: cfg.DataDir},
		Catalog:   translations,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("bot starting",
		"version", version,
		"username", transport.Username(),
		"data_dir", cfg.DataDir,
		"languages", translations.Langs())

	if err := svc.Run(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		log.Info("bot stopped")
		return errInterrupted
	}
	return nil
}

func printLog(dataDir, binary string) error {
	path := logging.FilePath(dataDir, binary)
	lines, err := logging.Tail(path, logging.TailLines)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Fprintf(os.Stderr, "no log output yet (%s)\n", path)
		return nil
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}
