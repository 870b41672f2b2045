package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/Leganyst/interview-slots/internal/cli"
	"github.com/Leganyst/interview-slots/internal/config"
	"github.com/Leganyst/interview-slots/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	EnvFile string `help:"Path to .env file." type:"path" default:".env"`
	Debug   bool   `help:"Enable debug logging."`

	Serve   cli.ServeCmd   `cmd:"" help:"Run the gRPC booking service."`
	Seed    cli.SeedCmd    `cmd:"" help:"Populate an empty catalog with slots."`
	Dates   cli.DatesCmd   `cmd:"" help:"List dates that have slots."`
	Slots   cli.SlotsCmd   `cmd:"" help:"List free slots on a date."`
	Book    cli.BookCmd    `cmd:"" help:"Book a slot."`
	Cancel  cli.CancelCmd  `cmd:"" help:"Cancel the active reservation."`
	My      cli.MyCmd      `cmd:"" help:"Show the active reservation."`
	History cli.HistoryCmd `cmd:"" help:"Show booking events of a user (database storage only)."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Check catalog invariants."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("slotbook"),
		kong.Description("Interview slot booking service"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	if err := run(kctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(kctx *kong.Context) error {
	// 1. Конфиг из env (+ .env, если есть).
	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Логгер: serve пишет и в stderr, остальные команды только в файл.
	if err := logger.Init(logger.Config{
		Debug:  cfg.LogDebug || CLI.Debug,
		Dir:    cfg.LogDir,
		Stderr: kctx.Command() == "serve",
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	// 3. Хранилище и движок.
	appCtx, err := cli.Open(context.Background(), cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer appCtx.Close()

	return kctx.Run(appCtx)
}
