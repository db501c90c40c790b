package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Deliverer receives reminders when they fire.
type Deliverer interface {
	Dispatch(r Reminder)
}

// Dispatcher fires pending reminders: daily triggers through cron entries,
// interval triggers once through a timer, after which they are cancelled.
// The pending set is re-read on every Reload call and once a minute.
type Dispatcher struct {
	gateway   Gateway
	deliverer Deliverer
	log       *zap.Logger
	cron      *cron.Cron
	now       func() time.Time
	// runCtx bounds the work done when a reminder fires.
	runCtx context.Context

	mu     sync.Mutex
	daily  map[string]cron.EntryID
	timers map[string]*time.Timer
}

// NewDispatcher creates a dispatcher evaluating daily triggers in loc.
func NewDispatcher(gateway Gateway, deliverer Deliverer, log *zap.Logger, loc *time.Location) *Dispatcher {
	return &Dispatcher{
		gateway:   gateway,
		deliverer: deliverer,
		log:       log.Named("dispatcher"),
		cron:      cron.New(cron.WithLocation(loc)),
		now:       time.Now,
		runCtx:    context.Background(),
		daily:     make(map[string]cron.EntryID),
		timers:    make(map[string]*time.Timer),
	}
}

// Start begins firing reminders until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	d.runCtx = ctx
	d.mu.Unlock()

	if _, err := d.cron.AddFunc("@every 1m", func() {
		if err := d.Reload(ctx); err != nil {
			d.log.Error("periodic reload failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("failed to register reload job: %w", err)
	}
	if err := d.Reload(ctx); err != nil {
		return err
	}
	d.cron.Start()

	go func() {
		<-ctx.Done()
		d.Stop()
	}()
	return nil
}

// Stop halts cron and pending timers, waiting for running jobs.
func (d *Dispatcher) Stop() {
	<-d.cron.Stop().Done()

	d.mu.Lock()
	defer d.mu.Unlock()
	for id, t := range d.timers {
		t.Stop()
		delete(d.timers, id)
	}
}

// Reload brings the armed triggers in line with the gateway's pending set.
// Triggers that are already armed are left untouched. ctx only bounds the
// read of the pending set, which happens under the lock so that a fired
// reminder is never re-armed from a stale listing.
func (d *Dispatcher) Reload(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	reminders, err := d.gateway.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending reminders: %w", err)
	}
	runCtx := d.runCtx

	seen := make(map[string]bool, len(reminders))
	for _, r := range reminders {
		r := r
		seen[r.ID] = true
		switch r.Trigger.Kind {
		case TriggerDaily, TriggerCalendar:
			if _, armed := d.daily[r.ID]; armed {
				continue
			}
			entry, err := d.cron.AddFunc(cronSpec(r.Trigger), func() { d.fire(runCtx, r) })
			if err != nil {
				d.log.Warn("cannot arm reminder", zap.String("id", r.ID), zap.Error(err))
				continue
			}
			d.daily[r.ID] = entry
		case TriggerInterval:
			if _, armed := d.timers[r.ID]; armed {
				continue
			}
			delay := r.CreatedAt.Add(time.Duration(r.Trigger.Seconds) * time.Second).Sub(d.now())
			if delay < 0 {
				delay = 0
			}
			d.timers[r.ID] = time.AfterFunc(delay, func() { d.fire(runCtx, r) })
		}
	}

	for id, entry := range d.daily {
		if !seen[id] {
			d.cron.Remove(entry)
			delete(d.daily, id)
		}
	}
	for id, t := range d.timers {
		if !seen[id] {
			t.Stop()
			delete(d.timers, id)
		}
	}

	d.log.Debug("reminders armed", zap.Int("daily", len(d.daily)), zap.Int("one_shot", len(d.timers)))
	return nil
}

// Armed returns the number of daily and one-shot triggers currently armed.
func (d *Dispatcher) Armed() (daily, oneShot int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.daily), len(d.timers)
}

func (d *Dispatcher) fire(ctx context.Context, r Reminder) {
	d.log.Info("reminder fired", zap.String("id", r.ID), zap.String("title", r.Title))
	d.deliverer.Dispatch(r)

	if r.Trigger.Kind != TriggerInterval || r.Trigger.Repeats {
		return
	}
	// The timer stays registered until the row is gone, so a reload in
	// between sees it as armed.
	if err := d.gateway.Cancel(ctx, r.ID); err != nil {
		d.log.Error("failed to remove fired reminder", zap.String("id", r.ID), zap.Error(err))
		return
	}
	d.mu.Lock()
	delete(d.timers, r.ID)
	d.mu.Unlock()
}

func cronSpec(t Trigger) string {
	return fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
}

// NextRun returns when r fires next after now.
func NextRun(r Reminder, now time.Time) (time.Time, bool) {
	switch r.Trigger.Kind {
	case TriggerDaily, TriggerCalendar:
		schedule, err := cron.ParseStandard(cronSpec(r.Trigger))
		if err != nil {
			return time.Time{}, false
		}
		return schedule.Next(now), true
	case TriggerInterval:
		return r.CreatedAt.Add(time.Duration(r.Trigger.Seconds) * time.Second), true
	}
	return time.Time{}, false
}
