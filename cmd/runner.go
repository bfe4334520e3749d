package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thornwolf/navigram/internal/catalog"
	"github.com/thornwolf/navigram/internal/repositories"
	"github.com/thornwolf/navigram/internal/shared"
	"github.com/thornwolf/navigram/internal/tasks"
	"github.com/thornwolf/navigram/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	source   tasks.AlbumSource
	annivs   tasks.AnniversaryQuerier
	cache    *catalog.Cache
	store    catalog.SnapshotStore
	notifier tasks.Notifier
	logbook  tasks.NotificationLog
	db       *sql.DB
	logger   *log.Logger
	output   io.Writer
	palette  *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Source   tasks.AlbumSource
	Cache    *catalog.Cache
	Store    catalog.SnapshotStore
	Notifier tasks.Notifier
	DB       *sql.DB
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:   opts.Config,
		source:   opts.Source,
		cache:    opts.Cache,
		store:    opts.Store,
		notifier: opts.Notifier,
		db:       opts.DB,
		logger:   opts.Logger,
		output:   opts.Output,
		palette:  ui.DefaultPalette(),
	}

	if opts.Cache != nil {
		r.annivs = opts.Cache
	}
	if opts.DB != nil {
		r.logbook = repositories.NewNotificationRepository(opts.DB)
	}

	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		checkCommand, albumsCommand, cacheCommand, watchCommand, notifyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// newEngine builds a CheckEngine for one invocation, with per-command
// window/cache/dry-run knobs applied on top of the configured defaults.
func (r *Runner) newEngine(window time.Duration, useCache, dryRun bool) *tasks.CheckEngine {
	if window <= 0 {
		window = r.config.Schedule.Window()
	}

	return tasks.NewCheckEngine(tasks.CheckEngineOpts{
		Source:        r.source,
		Anniversaries: r.annivs,
		Notifier:      r.notifier,
		Logbook:       r.logbook,
		Logger:        r.logger,
		Window:        window,
		UseCache:      useCache,
		DryRun:        dryRun,
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeHeader(title string) {
	r.writePlainln("%s", r.palette.Title(title))
}
