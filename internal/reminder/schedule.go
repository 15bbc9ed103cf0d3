package reminder

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type JobStatus struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	NextRun *time.Time `json:"next_run"`
}

type Status struct {
	Status string      `json:"status"`
	Jobs   []JobStatus `json:"jobs"`
}

// Start arms the daily timer and a one-off check shortly after startup.
func (j *Job) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return
	}
	j.running = true

	at := j.clock.Now().Add(startupDelay)
	j.startAt = &at
	j.startup = j.clock.AfterFunc(startupDelay, func() {
		j.mu.Lock()
		j.startup, j.startAt = nil, nil
		j.mu.Unlock()
		j.run(ctx)
	})
	j.scheduleLocked(ctx)
	j.log.Info("reminder scheduler started", zap.Timep("next_run", j.nextRun))
}

func (j *Job) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.running = false
	if j.daily != nil {
		j.daily.Stop()
	}
	if j.startup != nil {
		j.startup.Stop()
	}
	j.daily, j.startup = nil, nil
	j.nextRun, j.startAt = nil, nil
}

func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.running {
		return Status{Status: "stopped", Jobs: []JobStatus{}}
	}
	jobs := []JobStatus{{ID: JobID, Name: JobName, NextRun: j.nextRun}}
	if j.startAt != nil {
		jobs = append(jobs, JobStatus{ID: StartupID, Name: StartupName, NextRun: j.startAt})
	}
	return Status{Status: "running", Jobs: jobs}
}

// NextRun returns the first hour:minute UTC strictly after now.
func NextRun(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (j *Job) fire(ctx context.Context) {
	j.run(ctx)

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		j.scheduleLocked(ctx)
	}
}

func (j *Job) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := j.RunOnce(ctx); err != nil && !errors.Is(err, ErrLocked) {
		j.log.Error("reminder run failed", zap.Error(err))
	}
}

// scheduleLocked reads the settings on every call so a reloaded hour or
// minute applies from the next run on.
func (j *Job) scheduleLocked(ctx context.Context) {
	settings := j.settings.Get()
	now := j.clock.Now()
	next := NextRun(now, settings.Hour, settings.Minute)
	j.nextRun = &next
	j.daily = j.clock.AfterFunc(next.Sub(now), func() { j.fire(ctx) })
}
