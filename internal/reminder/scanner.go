package reminder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/yukikurage/task-analytics-api/internal/clock"
	"github.com/yukikurage/task-analytics-api/internal/constants"
	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/notification"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskNoDueDate = errors.New("task has no due date")
)

// TaskStore is the task persistence the scanner needs.
type TaskStore interface {
	FindByID(ctx context.Context, id uint64) (*models.Task, error)
	FindDueWithinWindow(ctx context.Context, notBefore, notAfter time.Time) ([]models.Task, error)
	MarkReminderSent(ctx context.Context, taskID uint64, sentAt time.Time) (bool, error)
}

// Notifier records in-app reminders.
type Notifier interface {
	DueDateReminder(ctx context.Context, user models.User, task models.Task) error
}

// Config controls the scan cadence and dispatch limits. Schedule, when set,
// is a cron spec with seconds that replaces the fixed Interval cadence.
type Config struct {
	Interval           time.Duration
	Schedule           string
	StartupDelay       time.Duration
	Window             time.Duration
	EmailTimeout       time.Duration
	MaxConcurrentSends int
	AppBaseURL         string
}

// ScanResult summarizes one scan pass.
type ScanResult struct {
	RunID          string `json:"run_id"`
	TasksScanned   int    `json:"tasks_scanned"`
	TasksProcessed int    `json:"tasks_processed"`
	EmailsSent     int    `json:"emails_sent"`
	EmailsFailed   int    `json:"emails_failed"`
	Conflicts      int    `json:"conflicts"`
	Skipped        bool   `json:"skipped"`
}

// Scanner finds tasks due within the reminder window and notifies their
// assignees once. The persisted reminder flag, set with a conditional write,
// guarantees at most one committed reminder per task.
type Scanner struct {
	tasks    TaskStore
	notifier Notifier
	mailer   notification.Mailer
	locker   Locker
	clock    clock.Clock
	logger   *zap.Logger
	cfg      Config
	cron     *cron.Cron

	// running is held for the duration of a scan in this process.
	running sync.Mutex

	baseCtx context.Context
	cancel  context.CancelFunc

	startMu    sync.Mutex
	startTimer *time.Timer
	startup    sync.WaitGroup
}

func NewScanner(
	tasks TaskStore,
	notifier Notifier,
	mailer notification.Mailer,
	locker Locker,
	c clock.Clock,
	logger *zap.Logger,
	cfg Config,
) *Scanner {
	if cfg.Interval <= 0 {
		cfg.Interval = constants.DefaultReminderInterval
	}
	if cfg.StartupDelay < 0 {
		cfg.StartupDelay = constants.DefaultReminderStartupDelay
	}
	if cfg.Window <= 0 {
		cfg.Window = constants.DefaultReminderWindow
	}
	if cfg.EmailTimeout <= 0 {
		cfg.EmailTimeout = constants.DefaultEmailTimeout
	}
	if cfg.MaxConcurrentSends <= 0 {
		cfg.MaxConcurrentSends = constants.DefaultMaxConcurrentSends
	}
	if locker == nil {
		locker = LocalLocker{}
	}
	if c == nil {
		c = clock.System(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scanner{
		tasks:    tasks,
		notifier: notifier,
		mailer:   mailer,
		locker:   locker,
		clock:    c,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())

	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "@every " + cfg.Interval.String()
	}
	if _, err := s.cron.AddFunc(schedule, s.runScheduled); err != nil {
		logger.Error("invalid reminder schedule, only the startup scan will run",
			zap.String("schedule", schedule),
			zap.Error(err))
	}

	return s
}

// Start launches the schedule. The first scan runs after the startup delay,
// then every interval.
func (s *Scanner) Start() {
	if s == nil || s.cron == nil {
		return
	}

	s.startMu.Lock()
	s.startup.Add(1)
	s.startTimer = time.AfterFunc(s.cfg.StartupDelay, func() {
		defer s.startup.Done()
		s.runScheduled()
	})
	s.startMu.Unlock()

	s.cron.Start()
	s.logger.Info("reminder scanner started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("window", s.cfg.Window))
}

// Stop halts the schedule and waits for a running scan to finish, or for
// ctx to expire, whichever comes first. In-flight work is then cancelled.
func (s *Scanner) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	defer s.cancel()

	s.startMu.Lock()
	if s.startTimer != nil && s.startTimer.Stop() {
		s.startup.Done()
	}
	s.startTimer = nil
	s.startMu.Unlock()

	stopCtx := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-stopCtx.Done()
		s.startup.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("reminder scanner stop timed out")
	}
	s.logger.Info("reminder scanner stopped")
}

// TriggerOnce runs a scan now, waiting for any scan already running in this
// process to finish first.
func (s *Scanner) TriggerOnce(ctx context.Context) (ScanResult, error) {
	s.running.Lock()
	defer s.running.Unlock()
	return s.scan(ctx)
}

func (s *Scanner) runScheduled() {
	if !s.running.TryLock() {
		s.logger.Info("previous reminder scan still running, skipping")
		return
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(s.baseCtx, s.cfg.Interval)
	defer cancel()
	if _, err := s.scan(ctx); err != nil {
		s.logger.Error("reminder scan failed", zap.Error(err))
	}
}

func (s *Scanner) scan(ctx context.Context) (ScanResult, error) {
	result := ScanResult{RunID: uuid.NewString()}
	log := s.logger.With(zap.String("scan_id", result.RunID))

	release, acquired, err := s.locker.Acquire(ctx)
	if err != nil {
		return result, err
	}
	if !acquired {
		result.Skipped = true
		log.Info("reminder scan skipped, lock held by another instance")
		return result, nil
	}
	defer release()

	now := s.clock.Now()
	tasks, err := s.tasks.FindDueWithinWindow(ctx, now, now.Add(s.cfg.Window))
	if err != nil {
		return result, fmt.Errorf("failed to load tasks due for reminder: %w", err)
	}
	result.TasksScanned = len(tasks)

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sent, failed := s.dispatch(ctx, task, now, log)
		result.EmailsSent += sent
		result.EmailsFailed += failed
		if sent == 0 {
			log.Warn("no reminder delivered, task will be retried",
				zap.Uint64("task_id", task.ID),
				zap.Int("failed", failed))
			continue
		}

		won, err := s.tasks.MarkReminderSent(ctx, task.ID, now)
		if err != nil {
			log.Error("failed to record reminder", zap.Uint64("task_id", task.ID), zap.Error(err))
			continue
		}
		if !won {
			result.Conflicts++
			log.Info("reminder already recorded by another scan", zap.Uint64("task_id", task.ID))
			continue
		}
		result.TasksProcessed++
	}

	log.Info("reminder scan completed",
		zap.Int("tasks_scanned", result.TasksScanned),
		zap.Int("tasks_processed", result.TasksProcessed),
		zap.Int("emails_sent", result.EmailsSent),
		zap.Int("emails_failed", result.EmailsFailed),
		zap.Int("conflicts", result.Conflicts))
	return result, nil
}

// SendReminderForTask notifies all current assignees of one task right now,
// without checking or setting the reminder flag. It returns the number of
// emails delivered.
func (s *Scanner) SendReminderForTask(ctx context.Context, taskID uint64) (int, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTaskNotFound
		}
		return 0, fmt.Errorf("failed to load task: %w", err)
	}
	if task.DueDate == nil {
		return 0, ErrTaskNoDueDate
	}

	log := s.logger.With(zap.Uint64("task_id", taskID))
	sent, failed := s.dispatch(ctx, *task, s.clock.Now(), log)
	log.Info("manual reminder sent", zap.Int("sent", sent), zap.Int("failed", failed))
	return sent, nil
}

// dispatch notifies every assignee that has an email address. Each assignee
// is independent: a failure is logged and counted, never propagated.
func (s *Scanner) dispatch(ctx context.Context, task models.Task, now time.Time, log *zap.Logger) (sent, failed int) {
	var sentCount, failedCount atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrentSends)
	for _, user := range task.Assignees() {
		if user.Email == "" {
			continue
		}
		g.Go(func() error {
			if err := s.notifier.DueDateReminder(ctx, user, task); err != nil {
				log.Warn("failed to store in-app reminder",
					zap.Uint64("task_id", task.ID),
					zap.Uint64("user_id", user.ID),
					zap.Error(err))
			}

			sendCtx, cancel := context.WithTimeout(ctx, s.cfg.EmailTimeout)
			defer cancel()
			if err := s.mailer.SendDueDateReminder(sendCtx, s.reminderFor(user, task, now)); err != nil {
				failedCount.Add(1)
				log.Warn("failed to send reminder email",
					zap.Uint64("task_id", task.ID),
					zap.Uint64("user_id", user.ID),
					zap.Error(err))
				return nil
			}
			sentCount.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(sentCount.Load()), int(failedCount.Load())
}

func (s *Scanner) reminderFor(user models.User, task models.Task, now time.Time) notification.DueDateReminder {
	r := notification.DueDateReminder{
		Email:     user.Email,
		Name:      user.Name,
		TaskTitle: task.Title,
		Priority:  task.Priority,
		TaskURL:   s.taskURL(task.ID),
	}
	if task.DueDate != nil {
		r.DueDate = task.DueDate.In(now.Location())
	}
	return r
}

func (s *Scanner) taskURL(id uint64) string {
	if s.cfg.AppBaseURL == "" {
		return ""
	}
	return strings.TrimRight(s.cfg.AppBaseURL, "/") + "/tasks/" + strconv.FormatUint(id, 10)
}
