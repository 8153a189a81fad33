package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"sheetcal/internal/config"
	"sheetcal/internal/feed"
	appLog "sheetcal/internal/log"
	"sheetcal/internal/program"
	"sheetcal/internal/sheet"
	"sheetcal/internal/web"
)

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	debug      bool
}

func main() {
	appLog.Info("sheetcal starting", "version", "0.1.0")

	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if conf.SheetID == "" {
		appLog.Error("sheet_id is not configured", errors.New("missing sheet_id"), "config_path", flags.configPath)
		os.Exit(1)
	}

	loc := resolveLocationOrLocal(conf.Timezone)

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"sheet_id", conf.SheetID,
		"refresh", conf.RefreshCron,
		"sample_fallback", conf.SampleFallback,
		"once", flags.once,
	)

	fetcher := sheet.NewFetcher()
	resolver := program.NewResolver(fetcher)
	svc := feed.NewService(fetcher, resolver, feed.Options{
		SheetID:             conf.SheetID,
		FeedGID:             conf.FeedGID,
		ColorGIDs:           conf.ColorGIDs,
		Location:            loc,
		ProgramFetchTimeout: time.Duration(conf.ProgramFetchTimeoutSeconds) * time.Second,
		SampleFallback:      conf.SampleFallback,
	})

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		runOnce(ctx, svc, loc)
		return
	}

	server := web.NewServer(conf, svc, loc)
	server.Refresh(ctx)

	// Periodic feed reloads.
	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, func() { server.Refresh(ctx) }); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:              conf.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLog.Error("http shutdown failed", err)
		}
	}()

	appLog.Info("serving HTTP", "listen", "http://"+conf.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Error("http server failed", err)
		os.Exit(1)
	}

	appLog.Info("sheetcal exiting")
}

// runOnce performs a single feed load, enriches the current month, and
// dumps the result as JSON to stdout.
func runOnce(ctx context.Context, svc *feed.Service, loc *time.Location) {
	now := time.Now().In(loc)

	events, fromSample := svc.LoadFeed(ctx)
	events = svc.EnrichProgramsForMonth(ctx, events, now.Year(), now.Month())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]any{
		"events":     events,
		"sampleData": fromSample,
	}); err != nil {
		appLog.Error("failed to encode events", err)
		os.Exit(1)
	}
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/sheetcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Load the feed once, print JSON to stdout, and exit")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
