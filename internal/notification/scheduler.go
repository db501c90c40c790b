package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"officehours-backend/internal/clock"
	"officehours-backend/internal/device"
	"officehours-backend/internal/model"
	"officehours-backend/internal/parse"
	"officehours-backend/internal/store"
)

// Planned is one daily reminder that should exist on the device.
type Planned struct {
	OfficeID string
	Event    store.Event
	Hour     int
	Minute   int
	Title    string
	Body     string
}

// Summary is a read-only view of the reminders pending on the device.
type Summary struct {
	Count     int
	Lines     []string
	Reminders []device.Reminder
}

// Scheduler keeps the device's pending reminders equal to the projection of
// the catalog, enablement and time preferences. It is the only writer of the
// device schedule.
type Scheduler struct {
	gateway device.Gateway
	log     *zap.Logger

	mu sync.Mutex
}

// NewScheduler creates a scheduler writing through gateway.
func NewScheduler(gateway device.Gateway, log *zap.Logger) *Scheduler {
	return &Scheduler{gateway: gateway, log: log.Named("scheduler")}
}

// Project computes the reminders that should be installed, in catalog order.
// Disabled offices, unparseable schedules and unconfigured times contribute nothing.
func (s *Scheduler) Project(offices []model.Office, enablement store.Enablement, prefs store.TimePreferences) []Planned {
	var planned []Planned
	for _, office := range offices {
		if !store.IsEnabled(office.ID, enablement) {
			s.log.Debug("skipping disabled office", zap.String("office", office.Title))
			continue
		}

		schedule, ok := parse.ParseSchedule(office.Subtitle)
		if !ok {
			s.log.Warn("could not parse office schedule", zap.String("office", office.Title), zap.String("subtitle", office.Subtitle))
			continue
		}
		openAt, err := clock.To24Hour(schedule.OpenTime)
		if err != nil {
			s.log.Warn("invalid opening time", zap.String("office", office.Title), zap.Error(err))
			continue
		}
		closeAt, err := clock.To24Hour(schedule.CloseTime)
		if err != nil {
			s.log.Warn("invalid closing time", zap.String("office", office.Title), zap.Error(err))
			continue
		}

		pref := store.GetPreference(office.ID, prefs)
		if clock.IsConfigured(pref.Open) {
			planned = append(planned, Planned{
				OfficeID: office.ID,
				Event:    store.EventOpen,
				Hour:     pref.Open.Hour,
				Minute:   pref.Open.Minute,
				Title:    fmt.Sprintf("📢 %s opens soon", office.Title),
				Body:     fmt.Sprintf("Opening time: %s", clock.Format(openAt.Hour, openAt.Minute)),
			})
		}
		if clock.IsConfigured(pref.Close) {
			planned = append(planned, Planned{
				OfficeID: office.ID,
				Event:    store.EventClose,
				Hour:     pref.Close.Hour,
				Minute:   pref.Close.Minute,
				Title:    fmt.Sprintf("⏰ %s closes soon", office.Title),
				Body:     fmt.Sprintf("Closing time: %s", clock.Format(closeAt.Hour, closeAt.Minute)),
			})
		}
	}
	return planned
}

// Resync cancels every pending reminder and installs the projection. It
// returns the number of reminders installed. If clearing the device fails
// nothing is scheduled. A reminder the device rejects skips the rest of its
// office; the other offices are still scheduled and the failures are
// returned joined together with the partial count.
func (s *Scheduler) Resync(ctx context.Context, offices []model.Office, enablement store.Enablement, prefs store.TimePreferences) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gateway.CancelAll(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear scheduled reminders: %w", err)
	}

	var (
		count  int
		errs   []error
		failed = make(map[string]bool)
	)
	for _, p := range s.Project(offices, enablement, prefs) {
		if failed[p.OfficeID] {
			continue
		}
		if _, err := s.gateway.ScheduleDaily(ctx, p.Hour, p.Minute, p.Title, p.Body); err != nil {
			failed[p.OfficeID] = true
			s.log.Error("failed to schedule reminder", zap.String("office", p.OfficeID), zap.String("event", string(p.Event)), zap.Error(err))
			errs = append(errs, fmt.Errorf("office %s: %w", p.OfficeID, err))
			continue
		}
		s.log.Debug("reminder scheduled",
			zap.String("office", p.OfficeID),
			zap.String("event", string(p.Event)),
			zap.String("at", clock.Format(p.Hour, p.Minute)))
		count++
	}

	active := 0
	for _, o := range offices {
		if store.IsEnabled(o.ID, enablement) {
			active++
		}
	}
	s.log.Info("reminders resynced", zap.Int("scheduled", count), zap.Int("active_offices", active))
	return count, errors.Join(errs...)
}

// ScheduleTest installs a one-shot reminder firing after seconds.
func (s *Scheduler) ScheduleTest(ctx context.Context, seconds int, title, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.gateway.ScheduleInterval(ctx, seconds, title, body)
	if err != nil {
		return "", fmt.Errorf("failed to schedule test notification: %w", err)
	}
	s.log.Info("test notification scheduled", zap.String("id", id), zap.Int("seconds", seconds))
	return id, nil
}

// ScheduleTestDaily installs a reminder repeating every day at hour:minute.
// Like the office reminders it is replaced on the next resync.
func (s *Scheduler) ScheduleTestDaily(ctx context.Context, hour, minute int, title, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.gateway.ScheduleDaily(ctx, hour, minute, title, body)
	if err != nil {
		return "", fmt.Errorf("failed to schedule daily test notification: %w", err)
	}
	s.log.Info("daily test notification scheduled",
		zap.String("id", id), zap.Int("hour", hour), zap.Int("minute", minute))
	return id, nil
}

// Summary lists the pending reminders with a display line for each.
func (s *Scheduler) Summary(ctx context.Context) (Summary, error) {
	reminders, err := s.gateway.ListAll(ctx)
	if err != nil {
		return Summary{}, err
	}

	lines := make([]string, 0, len(reminders))
	for _, r := range reminders {
		if at, ok := r.Trigger.Clock(); ok {
			lines = append(lines, fmt.Sprintf("📅 %s - %s", r.Title, clock.Format(at.Hour, at.Minute)))
		} else {
			lines = append(lines, "📅 "+r.Title)
		}
	}
	return Summary{Count: len(reminders), Lines: lines, Reminders: reminders}, nil
}
