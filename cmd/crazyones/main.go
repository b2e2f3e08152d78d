// CrazyOnes monitor — watches Apple's security-releases pages across every
// published locale and records what changed for the bot to announce.
//
// Usage:
//
//	crazyones                 # one check, then exit
//	crazyones --daemon        # keep checking every interval
//	crazyones --log           # print the last 100 log lines
//	crazyones --version       # show version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"crazyones/internal/config"
	"crazyones/internal/logging"
	"crazyones/internal/monitor"
	"crazyones/internal/store"
	"crazyones/pkg/scrape"
)

var version = "dev"

// errInterrupted marks a shutdown requested by signal; it maps to exit 130.
var errInterrupted = errors.New("interrupted")

type flags struct {
	configPath string
	token      string
	url        string
	dataDir    string
	daemon     bool
	interval   int
	truncate   bool
	showLog    bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "crazyones:", err)
		switch {
		case errors.Is(err, errInterrupted):
			return 130
		case errors.Is(err, monitor.ErrNetwork):
			return 2
		default:
			return 1
		}
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var fl flags
	cmd := &cobra.Command{
		Use:     "crazyones",
		Short:   "Monitor Apple security releases across all locales",
		Long:    "CrazyOnes fetches Apple's security-releases page for every published locale,\ndetects new entries, and leaves a trigger file for the Telegram bot to announce.",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(cmd.Context(), fl)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().StringVarP(&fl.configPath, "config", "c", "config.json", "configuration file")
	cmd.Flags().StringVarP(&fl.token, "token", "t", "", "telegram bot token (overrides config)")
	cmd.Flags().StringVarP(&fl.url, "url", "u", "", "security releases page to monitor (overrides config)")
	cmd.Flags().StringVar(&fl.dataDir, "data-dir", "", "shared data directory (overrides config)")
	cmd.Flags().BoolVarP(&fl.daemon, "daemon", "d", false, "keep running, checking every interval")
	cmd.Flags().IntVarP(&fl.interval, "interval", "i", config.DefaultIntervalSeconds, "seconds between checks in daemon mode")
	cmd.Flags().BoolVar(&fl.truncate, "truncate", false, "drop stored records no longer on the page")
	cmd.Flags().BoolVar(&fl.showLog, "log", false, fmt.Sprintf("print the last %d log lines and exit", logging.TailLines))
	return cmd
}

func runMonitor(ctx context.Context, fl flags) error {
	cfg, err := config.Load(fl.configPath)
	if err != nil {
		return err
	}
	if fl.token != "" {
		cfg.TelegramBotToken = fl.token
	}
	if fl.url != "" {
		cfg.AppleUpdatesURL = fl.url
	}
	if fl.dataDir != "" {
		cfg.DataDir = fl.dataDir
	}

	if fl.showLog {
		return printLog(cfg.DataDir, "crazyones")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, closer, err := logging.Setup(cfg.DataDir, "crazyones")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths := store.Paths{DataDir: cfg.DataDir}
	lock := monitor.NewPIDLock(paths.PIDFile())
	if err := lock.Acquire(ctx); err != nil {
		if ctx.Err() != nil {
			return errInterrupted
		}
		return err
	}
	defer lock.Release()

	pipeline := monitor.NewPipeline(scrape.NewHTTPFetcher(nil), paths, monitor.Options{
		IndexURL: cfg.AppleUpdatesURL,
		Truncate: fl.truncate,
	})

	log.Info("monitor starting",
		"version", version,
		"url", cfg.AppleUpdatesURL,
		"data_dir", cfg.DataDir,
		"daemon", fl.daemon)

	if !fl.daemon {
		if _, err := pipeline.Tick(ctx); err != nil {
			if ctx.Err() != nil {
				return errInterrupted
			}
			return err
		}
		return nil
	}

	sched := monitor.NewScheduler(time.Duration(fl.interval)*time.Second, func(tctx context.Context) error {
		_, err := pipeline.Tick(tctx)
		return err
	})
	sched.Run(ctx)
	log.Info("monitor stopped")
	return errInterrupted
}

// printLog tails the rotating log file; a monitor that has never run is
// reported, not an error.
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
