// Command pregen pre-generates the terrain of a dimension and stores it in a
// chunk store. Its settings are read from a TOML file that is created with the
// default settings if it does not exist.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dm-vev/adamant-worldgen/server"
)

func main() {
	configPath := flag.String("config", "config.toml", "path of the TOML configuration file")
	debug := flag.Bool("debug", false, "log debug messages")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if err := run(*configPath, log); err != nil {
		log.Error("Pre-generation failed.", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, log *slog.Logger) error {
	uc, err := server.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	conf, err := uc.Config(log)
	if err != nil {
		return err
	}
	p, err := conf.New()
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Error("Could not close chunk store.", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = p.Run(ctx)
	return err
}
