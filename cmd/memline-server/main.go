// main.go: process entry point for memline-server.
//
// Grounded on SPEC_FULL.md §4.6: flag parsing via the pack's
// github.com/agilira/flash-flags (a teacher sibling dependency, listed in
// agilira-balios's go.mod though not exercised by any retrieved source —
// usage here is kept to flash-flags' documented, conservative surface;
// see DESIGN.md), wiring a production memline.Clock, *memline.Store, and
// server.Listener, and blocking until SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	flashflags "github.com/agilira/flash-flags"

	"github.com/agilira/memline"
	"github.com/agilira/memline/config"
	"github.com/agilira/memline/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "memline-server:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := flashflags.New("memline-server")
	addr := flags.String("addr", memline.DefaultListenAddr, "TCP address to listen on")
	readTimeout := flags.Duration("read-timeout", 0, "per-read deadline (0 disables)")
	writeTimeout := flags.Duration("write-timeout", 0, "per-write deadline (0 disables)")
	configPath := flags.String("config", "", "optional path to a hot-reloadable config file")
	logLevel := flags.String("log-level", "info", "debug, info, warn, or error")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	logger := server.NewTextLogger(os.Stdout, *logLevel)
	clock := memline.NewSystemClock()
	store := memline.NewStore(clock)
	store.SetLogger(logger)

	opts := server.Options{
		ReadTimeout:  *readTimeout,
		WriteTimeout: *writeTimeout,
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", *addr, err)
	}
	listener := server.NewListener(ln, store, clock, logger, opts)
	logger.Info("listening", "addr", ln.Addr().String())

	if *configPath != "" {
		reloader, err := config.NewHotReloader(config.HotReloaderOptions{
			ConfigPath: *configPath,
			OnReload: func(oldCfg, newCfg config.ServerConfig) {
				if newCfg.LogLevel != oldCfg.LogLevel {
					logger.SetLevel(newCfg.LogLevel)
				}
				listener.SetOptions(server.Options{
					ReadTimeout:  newCfg.ReadTimeout,
					WriteTimeout: newCfg.WriteTimeout,
				})
			},
		})
		if err != nil {
			return fmt.Errorf("starting config watcher: %w", err)
		}
		if err := reloader.Start(); err != nil {
			return fmt.Errorf("starting config watcher: %w", err)
		}
		defer reloader.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		cancel()
	}()

	return listener.Serve(ctx)
}
