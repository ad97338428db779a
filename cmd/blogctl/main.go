package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Checker-Finance/blogctl/internal/articles"
	"github.com/Checker-Finance/blogctl/internal/cli"
	"github.com/Checker-Finance/blogctl/internal/config"
	"github.com/Checker-Finance/blogctl/internal/cookie"
	"github.com/Checker-Finance/blogctl/internal/credstore"
	"github.com/Checker-Finance/blogctl/internal/dispatch"
	"github.com/Checker-Finance/blogctl/internal/httpclient"
	"github.com/Checker-Finance/blogctl/internal/metrics"
	"github.com/Checker-Finance/blogctl/internal/rate"
	"github.com/Checker-Finance/blogctl/internal/ui"
	"github.com/Checker-Finance/blogctl/pkg/logger"
	"github.com/Checker-Finance/blogctl/pkg/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, cli.ErrUsage)
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Debugw("blogctl.starting",
		"command", args.Command,
		"base_url", utils.MaskURL(cfg.BaseURL),
		"cred_backend", cfg.CredBackend)

	// --- Credential storage (local storage + cookie jar) ---
	store, err := credstore.Open(ctx, cfg, logger.Named("credstore"))
	if err != nil {
		logg.Errorw("credstore.open_failed", "backend", cfg.CredBackend, "error", err)
		return 1
	}
	if c, ok := store.(interface{ Close() error }); ok {
		defer func() {
			if err := c.Close(); err != nil {
				logg.Warnw("credstore.close_failed", "error", err)
			}
		}()
	}
	jar := cookie.NewJar(store)

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RateRPS,
		Burst:             cfg.RateBurst,
	})

	// --- HTTP executor + dispatcher ---
	exec := httpclient.New(logger.Named("http"), rateMgr,
		&http.Client{Timeout: cfg.HTTPTimeout}, cfg.HTTPRetryMax, "blog")

	disp, err := dispatch.New(logger.Named("dispatch"), exec, cfg.BaseURL, store, jar, cfg.MaxRefreshes)
	if err != nil {
		logg.Errorw("dispatch.init_failed", "error", err)
		return 1
	}

	// --- Page bindings ---
	bindings := ui.NewBindings(
		logger.Named("ui"),
		articles.NewClient(disp),
		ui.NewTerminalPrompter(os.Stdin, os.Stdout, args.Yes),
		&ui.PrintNavigator{Out: os.Stdout},
		ui.WithConfirmCreate(cfg.ConfirmCreate),
		ui.WithPrinter(ui.NewPrinter(cfg.Lang)),
	)

	app := &cli.App{
		Logger:  logger.Named("cli"),
		Actions: bindings,
		Store:   store,
		Cookies: jar,
		Out:     os.Stdout,
	}

	code := 0
	if err := app.Run(ctx, args); err != nil {
		logg.Debugw("blogctl.command_failed", "command", args.Command, "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		code = 1
	}

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, cfg.ServiceName); err != nil {
			logg.Warnw("metrics.push_failed", "error", err)
		}
	}
	return code
}
