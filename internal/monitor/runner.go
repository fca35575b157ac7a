// Package monitor owns the logger run loop: it spawns the bus monitor
// subprocess, streams its transcript through the lexer and correlator,
// and appends every resolved lifecycle record to the log store.
package monitor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"
	"golang.org/x/time/rate"

	"notilog/internal/clock"
	"notilog/internal/correlate"
	"notilog/internal/logstore"
	"notilog/internal/transcript"
	"notilog/pkg/logx"
)

// pruneSchedule runs the optional age prune during the quiet hours.
const pruneSchedule = "30 3 * * *"

// Runner consumes one live monitor stream. The correlator tables need no
// synchronization: everything runs on the single loop goroutine.
type Runner struct {
	store      *logstore.Store
	correlator *correlate.Correlator

	// pruneAfterDays > 0 schedules a daily line-age prune while the
	// logger runs.
	pruneAfterDays int

	log logx.Logger

	// skipped bounds the chatter from blocks that yield no record; a
	// noisy desktop produces a lot of them.
	skipped *rate.Limiter
}

func New(store *logstore.Store, resolver clock.Resolver, pruneAfterDays int, log logx.Logger) *Runner {
	return &Runner{
		store:          store,
		correlator:     correlate.New(resolver),
		pruneAfterDays: pruneAfterDays,
		log:            log.With(logx.String("component", "monitor")),
		skipped:        rate.NewLimiter(rate.Limit(1), 3),
	}
}

// Run spawns `busctl --user monitor org.freedesktop.Notifications` and
// consumes its stdout until the stream closes or ctx is cancelled. The
// final partial block is flushed through the correlator before return.
// A non-zero monitor exit is fatal; ctx cancellation is a clean stop.
func (r *Runner) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "busctl", "--user", "monitor", "org.freedesktop.Notifications")
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("capture monitor stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start busctl monitor: %w", err)
	}

	// Harmless outside systemd: SdNotify is a no-op without NOTIFY_SOCKET.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	if r.pruneAfterDays > 0 {
		c := cron.New()
		days := int64(r.pruneAfterDays)
		_, err := c.AddFunc(pruneSchedule, func() {
			removed, remaining, err := r.store.PruneOlderThan(days, clock.NowEpoch())
			if err != nil {
				r.log.Error("scheduled prune failed", logx.Err(err))
				return
			}
			r.log.Info("scheduled prune done",
				logx.Int("removed", removed), logx.Int("remaining", remaining))
		})
		if err != nil {
			return fmt.Errorf("schedule prune job: %w", err)
		}
		c.Start()
		defer c.Stop()
	}

	r.log.Info("logger started",
		logx.String("log_file", r.store.Path()),
		logx.Int("prune_after_days", r.pruneAfterDays))

	sc := transcript.NewScanner(stdout)
	for sc.Scan() {
		rec, ok := r.correlator.Step(sc.Block())
		if !ok {
			if r.skipped.Allow() {
				r.log.Trace("block yielded no record")
			}
			continue
		}
		if err := r.store.Append(rec); err != nil {
			return err
		}
		r.log.Debug("recorded lifecycle event",
			logx.Uint32("id", rec.ID),
			logx.String("event_uid", rec.EventUID),
			logx.Bool("close", rec.CloseReasonCode != nil))
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read monitor output: %w", err)
	}

	err = cmd.Wait()
	if ctx.Err() != nil {
		// Interrupted by the user or the service manager.
		return nil
	}
	if err != nil {
		return fmt.Errorf("busctl monitor exited: %w", err)
	}
	return nil
}
