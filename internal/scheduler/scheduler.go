// Package scheduler decides when reminder notifications fire. A cron
// entry ticks the daily scheduler, a startup timer runs the specific-date
// check, and all of it executes on a single Loop.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/remindly/internal/errors"
	"github.com/manav03panchal/remindly/internal/logging"
	"github.com/manav03panchal/remindly/internal/notify"
	"github.com/manav03panchal/remindly/internal/storage"
)

// Defaults for Options.
const (
	DefaultTickInterval = time.Hour
	DefaultStartupDelay = time.Second
)

// Options configures a Service.
type Options struct {
	Store *storage.Store
	Sink  notify.Sink
	// Loop defaults to a new queue-backed loop, which Run then drives.
	Loop  *Loop
	Clock Clock
	// Timer defaults to a LoopTimer on Loop.
	Timer        Timer
	Rand         Rand
	Window       Window
	TickInterval time.Duration
	// StartupDelay of zero runs the specific-date check immediately.
	StartupDelay time.Duration
	// Watch reloads the store when its document changes on disk.
	Watch bool
	// OnReload is called on the loop after every reload.
	OnReload func(err error)
	// OnTick is called on the loop with every tick's decision.
	OnTick func(TickResult)
}

// Service owns the cron tick, the startup check and the reload watcher.
type Service struct {
	cron     *cron.Cron
	loop     *Loop
	timer    Timer
	store    *storage.Store
	daily    *DailyScheduler
	specific *SpecificChecker

	tickInterval time.Duration
	startupDelay time.Duration
	watch        bool
	onReload     func(err error)
	onTick       func(TickResult)

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	tickID   cron.EntryID
	lastTick time.Time
}

// New creates a Service. Nothing runs until Start or Run.
func New(opts Options) *Service {
	s := &Service{
		cron:         cron.New(cron.WithSeconds()),
		loop:         opts.Loop,
		timer:        opts.Timer,
		store:        opts.Store,
		tickInterval: opts.TickInterval,
		startupDelay: opts.StartupDelay,
		watch:        opts.Watch,
		onReload:     opts.OnReload,
		onTick:       opts.OnTick,
	}
	if s.loop == nil {
		s.loop = NewLoop()
	}
	if s.timer == nil {
		s.timer = LoopTimer{Loop: s.loop}
	}
	if s.tickInterval <= 0 {
		s.tickInterval = DefaultTickInterval
	}
	if s.startupDelay < 0 {
		s.startupDelay = DefaultStartupDelay
	}

	s.daily = NewDailyScheduler(DailyOptions{
		Clock:  opts.Clock,
		Timer:  s.timer,
		Rand:   opts.Rand,
		Source: opts.Store,
		Sink:   opts.Sink,
		Window: opts.Window,
	})
	s.specific = NewSpecificChecker(opts.Clock, opts.Store, opts.Sink)
	return s
}

// Loop returns the loop the service posts to.
func (s *Service) Loop() *Loop {
	return s.loop
}

// Daily returns the daily scheduler. Only touch it from the loop.
func (s *Service) Daily() *DailyScheduler {
	return s.daily
}

// Start registers the tick, arms the startup check and starts watching the
// document. The first tick comes one interval after Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.tickInterval), func() {
		s.loop.Post(s.tick)
	})
	if err != nil {
		return fmt.Errorf("failed to add tick: %w", err)
	}
	s.tickID = id

	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.watch && s.store != nil {
		w, err := storage.NewWatcher(s.store.Path(), storage.DefaultWatchDebounce, func() {
			s.loop.Post(s.Reload)
		})
		if err != nil {
			logging.Warn("reminder file watch disabled", logging.KeyError, err)
		} else {
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				if err := w.Run(s.ctx); err != nil {
					logging.Warn("reminder file watcher stopped", logging.KeyError, err)
				}
			}()
		}
	}

	s.timer.AfterFunc(s.startupDelay, s.startupCheck)
	s.cron.Start()
	s.running = true
	s.lastTick = time.Now()

	logging.Info("scheduler started",
		"tick_interval", s.tickInterval.String(),
		"window_start", s.daily.window.Start,
		"window_end", s.daily.window.End)
	return nil
}

// Stop stops the tick and the watcher. Already-armed one-shot notifications
// still fire if the loop keeps running.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.cron.Remove(s.tickID)
	s.cancel()
	s.wg.Wait()
	logging.Info("scheduler stopped")
}

// Run starts the service, processes the loop until ctx is done and stops.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Stop()
	return s.loop.Run(ctx)
}

// Reload re-reads the document into the store. Call it on the loop.
func (s *Service) Reload() {
	err := s.store.Load()
	if err != nil {
		if le, ok := errors.AsLoadError(err); ok {
			logging.Warn("reminder file unreadable, continuing with empty reminders",
				logging.KeyPath, le.Path, logging.KeyError, le.Cause)
		} else {
			logging.Warn("reminder reload failed", logging.KeyError, err)
		}
	} else {
		logging.DebugLog("reminders reloaded", logging.KeyPath, s.store.Path())
	}
	if s.onReload != nil {
		s.onReload(err)
	}
}

func (s *Service) tick() {
	ctx := logging.NewRunContext(context.Background())
	log := logging.FromContext(ctx).With(logging.KeyOperation, "tick")

	now := time.Now()
	s.mu.Lock()
	elapsed := now.Sub(s.lastTick)
	s.lastTick = now
	s.mu.Unlock()

	// A tick that arrives long after the previous one means the machine slept.
	if elapsed > 2*s.tickInterval {
		log.Info("tick resumed after sleep", "gap", elapsed.Round(time.Second).String())
	}

	result := s.daily.Tick()
	if s.onTick != nil {
		s.onTick(result)
	}
	if result.Scheduled {
		log.Info("daily reminder armed",
			logging.KeyFireAt, result.FireAt.Format(time.Kitchen),
			"reminder", result.Reminder)
		return
	}
	log.Debug("tick", "armed", result.Armed, logging.KeyStatus, result.Reason)
}

func (s *Service) startupCheck() {
	if s.specific.Check() {
		logging.LogOperation("specific_check", logging.KeyStatus, "announced")
	}
}

// Entries returns the cron entries.
func (s *Service) Entries() []cron.Entry {
	return s.cron.Entries()
}

// NextTick returns the next scheduled tick, or the zero time before Start.
func (s *Service) NextTick() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}

	next := entries[0].Next
	for _, e := range entries[1:] {
		if e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}
