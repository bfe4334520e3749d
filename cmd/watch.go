package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/thornwolf/navigram/internal/shared"
	"github.com/urfave/cli/v3"
)

// Watch schedules the daily check and blocks until interrupted.
//
// The schedule trigger and any on-demand `check` invocation from another
// process are not serialized against each other; they may race on the
// snapshot file, which the atomic rename write keeps readable.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	at := cmd.String("at")
	if at == "" {
		at = r.config.Schedule.Time
	}

	hour, minute, err := parseClock(at)
	if err != nil {
		return err
	}

	engine := r.newEngine(r.config.Schedule.Window(), true, cmd.Bool("dry-run"))

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	defer scheduler.Shutdown()

	_, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0))),
		gocron.NewTask(func() {
			engine.RunDailyCheck(context.Background())
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule daily check: %w", err)
	}

	if cmd.Bool("run-on-startup") || r.config.Schedule.RunOnStartup {
		r.logger.Info("running startup check")
		engine.RunDailyCheck(ctx)
	}

	r.logger.Info("scheduler started", "at", at)
	scheduler.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case s := <-sig:
		r.logger.Info("shutting down", "signal", s)
	}

	return nil
}

// parseClock parses "HH:MM" into hour and minute.
func parseClock(s string) (int, int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: schedule time %q, want HH:MM", shared.ErrInvalidFlag, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: schedule hour %q", shared.ErrInvalidFlag, parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: schedule minute %q", shared.ErrInvalidFlag, parts[1])
	}

	return hour, minute, nil
}
