package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/urfave/cli/v2"

	"remindd/internal/export"
	"remindd/internal/reminders"
	"remindd/internal/scheduler"
	"remindd/internal/storage"
	"remindd/internal/update"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "remindd",
		Usage: "terminal reminders with recurring series and local notifications",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "path to the sqlite database",
				EnvVars: []string{"REMINDD_DB_PATH"},
			},
		},
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "write all reminders as an iCalendar file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Value: "-",
						Usage: "output path, - for stdout",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "remindd: %v\n", err)
		os.Exit(1)
	}
}

type appStack struct {
	db       *sql.DB
	notifier *scheduler.LocalNotifier
	service  *reminders.Service
	config   update.RuntimeConfig
}

func buildStack(c *cli.Context) (*appStack, error) {
	cfg := update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig())
	if path := c.String("db"); path != "" {
		cfg.DBPath = path
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}
	if err := storage.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	var sender scheduler.Sender = scheduler.NoopSender{}
	if cfg.DesktopNotifications {
		sender = scheduler.ExecSender{}
	}
	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	notifier := scheduler.NewLocalNotifier(engine, sender)
	rec := scheduler.NewReconciler(notifier)

	svc := reminders.NewService(repo, rec, reminders.SystemClock(), reminders.Config{
		Window:  time.Duration(cfg.WindowDays) * 24 * time.Hour,
		Horizon: time.Duration(cfg.HorizonDays) * 24 * time.Hour,
	})

	return &appStack{db: db, notifier: notifier, service: svc, config: cfg}, nil
}

func (s *appStack) close() {
	s.notifier.Close()
	s.db.Close()
}

func runTUI(c *cli.Context) error {
	stack, err := buildStack(c)
	if err != nil {
		return err
	}
	defer stack.close()

	program := tea.NewProgram(update.NewModel(stack.service, stack.config))
	_, err = program.Run()
	return err
}

func runExport(c *cli.Context) error {
	stack, err := buildStack(c)
	if err != nil {
		return err
	}
	defer stack.close()

	templates, err := stack.service.Templates(c.Context)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path := c.String("out"); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}
	return export.Write(out, templates)
}
