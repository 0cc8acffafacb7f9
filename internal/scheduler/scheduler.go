package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tasktracker/internal/clock"
	"tasktracker/internal/errs"
	"tasktracker/internal/models"
	"tasktracker/internal/notify"
)

const (
	DefaultInterval = 6 * time.Hour
	DefaultWindow   = 24 * time.Hour
)

var errNoAssignee = errs.New("task has no assignee")

type TaskLister interface {
	ListAll(ctx context.Context) ([]models.Task, error)
}

type Options struct {
	Interval time.Duration
	Window   time.Duration
}

// Report summarizes one scan.
type Report struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Checked   int           `json:"checked"`
	Eligible  int           `json:"eligible"`
	Sent      int           `json:"sent"`
	Failed    int           `json:"failed"`
}

// Scheduler periodically scans all tasks and sends a reminder for every open
// task due inside the window. The zero value is not usable; use New.
type Scheduler struct {
	tasks  TaskLister
	users  notify.UserLookup
	sender notify.RecipientSender
	clock  clock.Clock
	logger *slog.Logger

	interval time.Duration
	window   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	ticker clock.Ticker
	done   chan struct{}

	// held for the duration of a scan
	scanMu sync.Mutex
}

func New(tasks TaskLister, users notify.UserLookup, sender notify.RecipientSender, clk clock.Clock, logger *slog.Logger, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	return &Scheduler{
		tasks:    tasks,
		users:    users,
		sender:   sender,
		clock:    clk,
		logger:   logger,
		interval: opts.Interval,
		window:   opts.Window,
	}
}

// Start runs a scan right away and then once per interval on a background
// goroutine. Calling Start again replaces the running schedule.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.logger.Info("[scheduler][start] restarting, previous schedule cancelled")
		s.stopLocked()
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticker := s.clock.NewTicker(s.interval)
	done := make(chan struct{})
	s.cancel = cancel
	s.ticker = ticker
	s.done = done

	go s.loop(ctx, ticker, done)
	s.logger.Info("[scheduler][start] reminders scheduled", "interval", s.interval, "window", s.window)
}

// Stop cancels the schedule. A scan already running finishes normally.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.stopLocked()
	s.logger.Info("[scheduler][stop] reminders stopped")
}

func (s *Scheduler) stopLocked() {
	s.cancel()
	s.ticker.Stop()
	s.cancel = nil
	s.ticker = nil
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Wait blocks until the most recently started loop has exited, which happens
// after Stop once any in-flight scan completes.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context, ticker clock.Ticker, done chan struct{}) {
	defer close(done)

	if ctx.Err() != nil {
		return
	}
	s.Scan(context.WithoutCancel(ctx))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			s.Scan(context.WithoutCancel(ctx))
		}
	}
}

// Scan runs one reminder pass. Scans never overlap; a failure on one task is
// logged and counted, and the pass moves on to the next task.
func (s *Scheduler) Scan(ctx context.Context) Report {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	now := s.clock.Now()
	report := Report{StartedAt: now}
	threshold := now.Add(s.window)

	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		s.logger.Error("[scheduler][scan][err] loading tasks", "error", err)
		return report
	}
	report.Checked = len(tasks)

	for i := range tasks {
		task := &tasks[i]
		if !task.DueWithin(now, threshold) {
			continue
		}
		report.Eligible++
		if err := s.remind(ctx, task, now); err != nil {
			report.Failed++
			s.logger.Warn("[scheduler][task][err] reminder not sent", "task_id", task.ID, "error", err)
			continue
		}
		report.Sent++
	}

	report.Duration = s.clock.Now().Sub(now)
	s.logger.Info("[scheduler][scan] done",
		"checked", report.Checked,
		"eligible", report.Eligible,
		"sent", report.Sent,
		"failed", report.Failed,
	)
	return report
}

func (s *Scheduler) remind(ctx context.Context, task *models.Task, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while sending reminder: %v", r)
		}
	}()

	if task.AssigneeID == 0 {
		return errNoAssignee
	}
	assignee, err := s.users.FindByID(ctx, task.AssigneeID)
	if err != nil {
		return errs.Wrapf(err, "resolve assignee %d", task.AssigneeID)
	}
	if assignee == nil {
		return errs.NotFound("user", task.AssigneeID)
	}

	to := notify.Recipient{UserID: task.AssigneeID, User: assignee}
	res := s.sender.DispatchTo(ctx, to, notify.ReminderMessage(task, assignee, now))
	s.logger.Debug("[scheduler][task] reminder dispatched",
		"task_id", task.ID,
		"user_id", task.AssigneeID,
		"delivered", res.Delivered(),
	)
	return nil
}
