// Package reminder implements the user flows over the office catalog: toggling
// offices, editing reminder times, and keeping the device schedule in sync.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"officehours-backend/internal/catalog"
	"officehours-backend/internal/clock"
	"officehours-backend/internal/device"
	"officehours-backend/internal/notification"
	"officehours-backend/internal/parse"
	"officehours-backend/internal/store"
)

var (
	ErrUnknownOffice = errors.New("unknown office")
	ErrInvalidTime   = errors.New("invalid time of day")
	// ErrUnavailable is returned by Start when the gateway cannot be configured.
	ErrUnavailable = errors.New("notifications unavailable")
)

// DefaultTestDelay is used by SendTest when no positive delay is given.
const DefaultTestDelay = 5

type testNotification struct {
	seconds     int
	title, body string
}

// testSeries walks through an open and a close reminder in a minute.
var testSeries = []testNotification{
	{10, "Test 1 - Opening", "Test opening notification (10 seconds)"},
	{30, "Test 2 - Closing", "Test closing notification (30 seconds)"},
	{60, "Test 3 - Final", "Last test notification (1 minute)"},
}

// Reloader is told to re-read the device schedule after it changes.
type Reloader interface {
	Reload(ctx context.Context) error
}

// OfficeView is an office as presented to clients.
type OfficeView struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Enabled  bool   `json:"enabled"`
	// OpenTime and CloseTime are empty when the subtitle cannot be parsed.
	OpenTime          string      `json:"openTime"`
	CloseTime         string      `json:"closeTime"`
	OpenNotification  string      `json:"openNotification"`
	CloseNotification string      `json:"closeNotification"`
	OpenAt            *clock.Time `json:"openAt"`
	CloseAt           *clock.Time `json:"closeAt"`
}

// ReminderView is a pending reminder as presented to clients.
type ReminderView struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Body    string     `json:"body"`
	Kind    string     `json:"kind"`
	Line    string     `json:"line"`
	NextRun *time.Time `json:"nextRun,omitempty"`
}

// ReminderList is the summary of the device schedule.
type ReminderList struct {
	Count int            `json:"count"`
	Items []ReminderView `json:"items"`
}

// Service serializes every flow that reads, mutates and resyncs the stores.
type Service struct {
	catalog    *catalog.Catalog
	prefs      *store.PreferenceStore
	enablement *store.EnablementStore
	scheduler  *notification.Scheduler
	gateway    device.Gateway
	reloader   Reloader
	log        *zap.Logger
	now        func() time.Time

	mu sync.Mutex
}

// NewService creates the service. reloader may be nil.
func NewService(
	cat *catalog.Catalog,
	prefs *store.PreferenceStore,
	enablement *store.EnablementStore,
	scheduler *notification.Scheduler,
	gateway device.Gateway,
	reloader Reloader,
	log *zap.Logger,
) *Service {
	return &Service{
		catalog:    cat,
		prefs:      prefs,
		enablement: enablement,
		scheduler:  scheduler,
		gateway:    gateway,
		reloader:   reloader,
		log:        log.Named("reminder"),
		now:        time.Now,
	}
}

// Start configures the gateway, asks for permission and performs the first
// resync. A denied permission does not stop scheduling.
func (s *Service) Start(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gateway.Configure(ctx); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	granted, err := s.gateway.RequestPermission(ctx)
	if err != nil {
		s.log.Warn("permission request failed", zap.Error(err))
	}
	s.log.Info("notification permission", zap.Bool("granted", granted))

	return s.resync(ctx)
}

// Refresh recomputes the device schedule from the stored state.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resync(ctx)
}

// SetEnabled turns the reminders of one office on or off and resyncs.
func (s *Service) SetEnabled(ctx context.Context, officeID string, enabled bool) (int, error) {
	if _, ok := s.catalog.Lookup(officeID); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOffice, officeID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.enablement.Toggle(ctx, officeID, enabled, s.enablement.Load(ctx))
	return s.resync(ctx)
}

// SetNotificationTime sets the time of day at which the open or close
// reminder of an office fires. A nil time clears it.
func (s *Service) SetNotificationTime(ctx context.Context, officeID string, event store.Event, at *clock.Time) (int, error) {
	if _, ok := s.catalog.Lookup(officeID); !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOffice, officeID)
	}
	if at != nil && !at.Valid() {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, at.Hour, at.Minute)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.prefs.Load(ctx)
	pref := store.GetPreference(officeID, prefs).With(event, at)
	s.prefs.Update(ctx, officeID, pref, prefs)
	s.log.Info("notification time changed",
		zap.String("office", officeID),
		zap.String("event", string(event)),
		zap.String("at", clock.FormatPreference(at)))
	return s.resync(ctx)
}

func (s *Service) resync(ctx context.Context) (int, error) {
	count, err := s.scheduler.Resync(ctx, s.catalog.Offices(), s.enablement.Load(ctx), s.prefs.Load(ctx))
	s.reload(ctx)
	return count, err
}

func (s *Service) reload(ctx context.Context) {
	if s.reloader == nil {
		return
	}
	if err := s.reloader.Reload(ctx); err != nil {
		s.log.Error("failed to reload dispatcher", zap.Error(err))
	}
}

// Offices returns the catalog with the enablement and reminder times of
// each office.
func (s *Service) Offices(ctx context.Context) []OfficeView {
	s.mu.Lock()
	enablement := s.enablement.Load(ctx)
	prefs := s.prefs.Load(ctx)
	s.mu.Unlock()

	offices := s.catalog.Offices()
	views := make([]OfficeView, 0, len(offices))
	for _, o := range offices {
		pref := store.GetPreference(o.ID, prefs)
		v := OfficeView{
			ID:                o.ID,
			Title:             o.Title,
			Subtitle:          o.Subtitle,
			Enabled:           store.IsEnabled(o.ID, enablement),
			OpenNotification:  clock.FormatPreference(pref.Open),
			CloseNotification: clock.FormatPreference(pref.Close),
			OpenAt:            pref.Open,
			CloseAt:           pref.Close,
		}
		if schedule, ok := parse.ParseSchedule(o.Subtitle); ok {
			if t, err := clock.To24Hour(schedule.OpenTime); err == nil {
				v.OpenTime = clock.Format(t.Hour, t.Minute)
			}
			if t, err := clock.To24Hour(schedule.CloseTime); err == nil {
				v.CloseTime = clock.Format(t.Hour, t.Minute)
			}
		}
		views = append(views, v)
	}
	return views
}

// Reminders lists the pending reminders with their next run time.
func (s *Service) Reminders(ctx context.Context) (ReminderList, error) {
	summary, err := s.scheduler.Summary(ctx)
	if err != nil {
		return ReminderList{}, err
	}

	now := s.now()
	items := make([]ReminderView, 0, summary.Count)
	for i, r := range summary.Reminders {
		item := ReminderView{
			ID:    r.ID,
			Title: r.Title,
			Body:  r.Body,
			Kind:  string(r.Trigger.Kind),
			Line:  summary.Lines[i],
		}
		if next, ok := device.NextRun(r, now); ok {
			item.NextRun = &next
		}
		items = append(items, item)
	}
	return ReminderList{Count: summary.Count, Items: items}, nil
}

// SendTest schedules a one-shot notification after seconds.
func (s *Service) SendTest(ctx context.Context, seconds int) (string, error) {
	if seconds <= 0 {
		seconds = DefaultTestDelay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	body := fmt.Sprintf("Scheduled at %s, arrives in %d seconds", s.now().Format("15:04:05"), seconds)
	id, err := s.scheduler.ScheduleTest(ctx, seconds, "Test notification", body)
	if err != nil {
		return "", err
	}
	s.reload(ctx)
	return id, nil
}

// SendTestDaily schedules a reminder repeating every day at hour:minute. It
// stays pending until the next resync.
func (s *Service) SendTestDaily(ctx context.Context, hour, minute int) (string, error) {
	at := clock.Time{Hour: hour, Minute: minute}
	if !at.Valid() {
		return "", fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	body := fmt.Sprintf("Scheduled for %d:%02d", hour, minute)
	id, err := s.scheduler.ScheduleTestDaily(ctx, hour, minute, "Daily test", body)
	if err != nil {
		return "", err
	}
	s.reload(ctx)
	return id, nil
}

// SendTestSeries schedules a short series of one-shot notifications next to
// the office reminders and returns their ids.
func (s *Service) SendTestSeries(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(testSeries))
	for _, n := range testSeries {
		id, err := s.scheduler.ScheduleTest(ctx, n.seconds, n.title, n.body)
		if err != nil {
			s.reload(ctx)
			return ids, err
		}
		ids = append(ids, id)
	}
	s.reload(ctx)
	return ids, nil
}
