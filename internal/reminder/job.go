// Package reminder emails the configured recipients the day before a bid
// closes.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	biddomain "github.com/rutujak-bora/crm/internal/bid/domain"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/internal/config"
	obscontext "github.com/rutujak-bora/crm/internal/observability/context"
	obslogger "github.com/rutujak-bora/crm/internal/observability/logger"
	obsmetrics "github.com/rutujak-bora/crm/internal/observability/metrics"
	"github.com/rutujak-bora/crm/internal/providers/email"
	"github.com/rutujak-bora/crm/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	JobID       = "bid_reminder_check"
	JobName     = "Check bids ending tomorrow and send reminders"
	StartupID   = "startup_check"
	StartupName = "Initial bid reminder check on startup"

	templateName = "bid_reminder"
	lockTTL      = 10 * time.Minute
	runTimeout   = 5 * time.Minute
	startupDelay = 30 * time.Second
	dateLayout   = "2006-01-02"
	displayDate  = "January 02, 2006"
)

var ErrLocked = errors.New("reminder_locked")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Bids     biddomain.Repository
	Email    email.Provider
	Settings *config.ReminderSettingsHolder
	Locker   *ratelimit.Locker   `optional:"true"`
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

// Summary describes one run.
type Summary struct {
	RunID  string
	Date   string
	Found  int
	Sent   int
	Failed int
}

type Job struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	bids     biddomain.Repository
	email    email.Provider
	settings *config.ReminderSettingsHolder
	locker   *ratelimit.Locker
	metrics  *obsmetrics.Metrics
	jobs     *obsmetrics.JobMetrics

	mu      sync.Mutex
	running bool
	daily   clock.Timer
	nextRun *time.Time
	startup clock.Timer
	startAt *time.Time
}

func New(p Params) *Job {
	return &Job{
		db:       p.DB,
		log:      p.Log.Named("reminder").With(zap.String("component", "scheduler")),
		clock:    p.Clock,
		bids:     p.Bids,
		email:    p.Email,
		settings: p.Settings,
		locker:   p.Locker,
		metrics:  p.Metrics,
		jobs:     obsmetrics.Jobs(),
	}
}

// RunOnce sends reminders for bids ending DaysAhead days after the current
// UTC date. Bids already reminded are never selected again; a failed send
// leaves the bid for the next run.
func (j *Job) RunOnce(parent context.Context) (Summary, error) {
	settings := j.settings.Get()
	today := truncateDay(j.clock.Now())
	target := today.AddDate(0, 0, settings.DaysAhead)
	summary := Summary{RunID: ulid.Make().String(), Date: target.Format(dateLayout)}

	ctx, cancel := context.WithTimeout(parent, runTimeout)
	defer cancel()
	ctx = obscontext.WithActor(ctx, "system", "scheduler")
	log := obslogger.WithContext(ctx, j.log).With(
		zap.String("job", JobID),
		zap.String("run_id", summary.RunID),
	)

	if !settings.Enabled {
		j.jobs.IncSkipped(JobID, "disabled")
		log.Info("reminder.job.skipped", zap.String("reason", "disabled"))
		return summary, nil
	}

	if j.locker != nil {
		lease, err := j.locker.Acquire(ctx, "reminder:"+summary.Date, lockTTL)
		if errors.Is(err, ratelimit.ErrLockHeld) {
			j.jobs.IncSkipped(JobID, "locked")
			log.Info("reminder.job.skipped", zap.String("reason", "locked"))
			return summary, ErrLocked
		}
		if err != nil {
			j.jobs.IncError(JobID, err)
			return summary, fmt.Errorf("acquire lock: %w", err)
		}
		defer func() {
			if err := lease.Release(context.Background()); err != nil {
				log.Warn("release lock", zap.Error(err))
			}
		}()
	}

	start := j.clock.Now()
	j.jobs.IncRun(JobID)
	log.Info("reminder.job.start", zap.String("end_date", summary.Date))

	bids, err := j.bids.ListDueForReminder(ctx, j.db, summary.Date, target.AddDate(0, 0, 1).Format(dateLayout))
	if err != nil {
		j.jobs.IncError(JobID, err)
		log.Error("list bids", zap.Error(err))
		return summary, err
	}
	summary.Found = len(bids)

	for _, bid := range bids {
		if err := ctx.Err(); err != nil {
			j.jobs.IncError(JobID, err)
			break
		}
		if err := j.remind(ctx, settings, bid); err != nil {
			summary.Failed++
			j.jobs.IncError(JobID, err)
			j.metrics.RecordReminder(ctx, "failed")
			log.Warn("reminder failed", zap.String("gem_bid_no", bid.GemBidNo), zap.Error(err))
			continue
		}
		summary.Sent++
		j.metrics.RecordReminder(ctx, "sent")
	}

	j.jobs.AddProcessed(JobID, summary.Sent)
	j.jobs.ObserveDuration(JobID, j.clock.Now().Sub(start))

	fields := []zap.Field{
		zap.Int("found", summary.Found),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
	}
	if summary.Failed > 0 {
		log.Warn("reminder.job.finish", fields...)
	} else {
		log.Info("reminder.job.finish", fields...)
	}
	return summary, nil
}

func (j *Job) remind(ctx context.Context, settings config.ReminderSettings, bid *biddomain.Bid) error {
	endDate := FormatEndDate(bid.EndDate)
	data := struct {
		GemBidNo string
		Details  string
		EndDate  string
	}{bid.GemBidNo, bid.Details(), endDate}

	if err := j.email.SendTemplate(ctx, settings.Recipients, Subject(settings.SubjectPrefix, bid.GemBidNo, endDate), templateName, data); err != nil {
		return fmt.Errorf("%w: %v", obsmetrics.ErrDelivery, err)
	}
	if _, err := j.bids.MarkReminderSent(ctx, j.db, bid.ID, j.clock.Now()); err != nil {
		return err
	}
	return nil
}

// Subject builds "This GEM/.. has been end on May 11, 2024", with an
// optional prefix.
func Subject(prefix, gemBidNo, endDate string) string {
	subject := fmt.Sprintf("This %s has been end on %s", gemBidNo, endDate)
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		subject = prefix + " " + subject
	}
	return subject
}

// FormatEndDate renders an ISO end date as "May 11, 2024". Values that do not
// parse are returned unchanged.
func FormatEndDate(value string) string {
	if t, ok := biddomain.ParseDate(value); ok {
		return t.Format(displayDate)
	}
	return value
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
