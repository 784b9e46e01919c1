package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/micromata/projectforge-sub017/internal/cli"
	"github.com/micromata/projectforge-sub017/internal/config"
	"github.com/micromata/projectforge-sub017/internal/db"
	"github.com/micromata/projectforge-sub017/internal/events"
	"github.com/micromata/projectforge-sub017/internal/repository"
	"github.com/micromata/projectforge-sub017/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Plain output when piped, e.g. "pfgantt chart xml gc-xxxx > chart.xml".
	if !isTerminal(os.Stdout) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		nats, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		publisher = nats
	}
	defer publisher.Close()

	var observer service.UseCaseObserver
	if cfg.LogUseCases {
		observer = service.NewLogUseCaseObserver(os.Stderr)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// Wire repositories
	taskRepo := repository.NewSQLiteTaskRepo(database)
	chartRepo := repository.NewSQLiteChartRepo(database)
	holidayRepo := repository.NewSQLiteHolidayRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	// Wire services
	holidaySvc := service.NewHolidayService(holidayRepo, cfg.Weekend, cfg.Holidays...)
	app := &cli.App{
		Tasks:    service.NewTaskService(taskRepo, holidaySvc, uow, publisher, observer),
		Holidays: holidaySvc,
		Charts:   service.NewChartService(chartRepo, taskRepo, holidaySvc, publisher, logger, observer),
	}
	app.IsInteractive = func() bool {
		return isTerminal(os.Stdin)
	}

	return cli.NewRootCmd(app).Execute()
}

func isTerminal(f interface{ Fd() uintptr }) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

