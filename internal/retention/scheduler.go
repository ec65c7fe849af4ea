package retention

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// ValidCron reports whether expr is a parseable 5-field cron expression.
func ValidCron(expr string) bool {
	_, err := cronParser.Parse(expr)
	return err == nil
}

// Scheduler fires retention sweeps on a cron schedule.
type Scheduler struct {
	sweeper *Sweeper
	expr    string
	out     io.Writer
}

// SchedulerOpts holds parameters for creating a Scheduler.
type SchedulerOpts struct {
	Sweeper *Sweeper
	Cron    string    // 5-field cron expression
	Out     io.Writer // defaults to os.Stdout
}

// NewScheduler creates a Scheduler.
func NewScheduler(opts SchedulerOpts) (*Scheduler, error) {
	if opts.Sweeper == nil {
		return nil, fmt.Errorf("retention: scheduler: sweeper is required")
	}
	if !ValidCron(opts.Cron) {
		return nil, fmt.Errorf("retention: scheduler: invalid cron expression %q", opts.Cron)
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Scheduler{
		sweeper: opts.Sweeper,
		expr:    opts.Cron,
		out:     out,
	}, nil
}

// Run blocks, sweeping at every cron fire time, until the context is
// cancelled. Sweep errors are logged, never fatal.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(nextCronDuration(s.expr))
	defer timer.Stop()

	fmt.Fprintf(s.out, "retention: scheduler online (cron %q)\n", s.expr)
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(s.out, "retention: scheduler stopped\n")
			return
		case <-timer.C:
			res, err := s.sweeper.Sweep(ctx)
			if err != nil {
				log.Printf("retention: sweep: %v", err)
			} else if res.Cleaned > 0 || res.Failed > 0 {
				fmt.Fprintf(s.out, "retention: swept %d tickets (%d files removed, %d failed)\n",
					res.Cleaned, res.FilesRemoved, res.Failed)
			}
			timer.Reset(nextCronDuration(s.expr))
		}
	}
}
