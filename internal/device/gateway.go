package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"officehours-backend/internal/clock"
	"officehours-backend/internal/model"
)

// DefaultChannelID is the channel every reminder is posted to.
const DefaultChannelID = "default"

// ErrNotConfigured is returned when the gateway is used before Configure.
var ErrNotConfigured = errors.New("notification gateway is not configured")

// TriggerKind tags the shape of a Trigger.
type TriggerKind string

const (
	TriggerDaily    TriggerKind = "daily"
	TriggerCalendar TriggerKind = "calendar"
	TriggerInterval TriggerKind = "interval"
)

// Trigger describes when a reminder fires. Hour and Minute are meaningful for
// daily and calendar triggers, Seconds for interval triggers.
type Trigger struct {
	Kind    TriggerKind
	Hour    int
	Minute  int
	Seconds int
	Repeats bool
}

// Clock returns the time of day of a daily or calendar trigger.
func (t Trigger) Clock() (clock.Time, bool) {
	switch t.Kind {
	case TriggerDaily, TriggerCalendar:
		return clock.Time{Hour: t.Hour, Minute: t.Minute}, true
	}
	return clock.Time{}, false
}

// Reminder is a notification pending on the device.
type Reminder struct {
	ID        string
	Title     string
	Body      string
	Trigger   Trigger
	CreatedAt time.Time
}

// Gateway is the boundary over the local notification subsystem.
type Gateway interface {
	// Configure sets up the delivery channel. It is safe to call more than once.
	Configure(ctx context.Context) error
	RequestPermission(ctx context.Context) (bool, error)
	CancelAll(ctx context.Context) error
	Cancel(ctx context.Context, id string) error
	ScheduleDaily(ctx context.Context, hour, minute int, title, body string) (string, error)
	ScheduleInterval(ctx context.Context, seconds int, title, body string) (string, error)
	ListAll(ctx context.Context) ([]Reminder, error)
}

// LocalGateway keeps the pending reminder set in the database.
type LocalGateway struct {
	db        *gorm.DB
	log       *zap.Logger
	canNotify bool

	mu         sync.Mutex
	configured bool
}

// NewLocalGateway creates a gateway. canNotify tells whether fired reminders
// can actually be delivered; it is reported by RequestPermission.
func NewLocalGateway(db *gorm.DB, log *zap.Logger, canNotify bool) *LocalGateway {
	return &LocalGateway{db: db, log: log.Named("gateway"), canNotify: canNotify}
}

// Configure upserts the default notification channel.
func (g *LocalGateway) Configure(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.configured {
		return nil
	}

	channel := model.NotificationChannel{
		ID:               DefaultChannelID,
		Name:             "default",
		Importance:       5,
		VibrationPattern: "0,250,250,250",
		LightColor:       "#FF231F7C",
	}
	if err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "importance", "vibration_pattern", "light_color", "updated_at"}),
	}).Create(&channel).Error; err != nil {
		return fmt.Errorf("failed to set up notification channel: %w", err)
	}

	g.configured = true
	g.log.Info("notification channel configured", zap.String("channel", DefaultChannelID))
	return nil
}

func (g *LocalGateway) ready() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.configured {
		return ErrNotConfigured
	}
	return nil
}

// RequestPermission reports whether fired reminders can be delivered.
func (g *LocalGateway) RequestPermission(ctx context.Context) (bool, error) {
	if !g.canNotify {
		g.log.Warn("notification permission not granted; reminders will be scheduled but not delivered")
		return false, nil
	}
	return true, nil
}

// CancelAll removes every pending reminder.
func (g *LocalGateway) CancelAll(ctx context.Context) error {
	if err := g.ready(); err != nil {
		return err
	}
	res := g.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.ScheduledReminder{})
	if res.Error != nil {
		return fmt.Errorf("failed to cancel reminders: %w", res.Error)
	}
	g.log.Debug("cancelled all reminders", zap.Int64("count", res.RowsAffected))
	return nil
}

// Cancel removes one pending reminder. Unknown ids are ignored.
func (g *LocalGateway) Cancel(ctx context.Context, id string) error {
	if err := g.ready(); err != nil {
		return err
	}
	if err := g.db.WithContext(ctx).Delete(&model.ScheduledReminder{ID: id}).Error; err != nil {
		return fmt.Errorf("failed to cancel reminder %s: %w", id, err)
	}
	return nil
}

// ScheduleDaily installs a reminder that repeats every day at hour:minute.
func (g *LocalGateway) ScheduleDaily(ctx context.Context, hour, minute int, title, body string) (string, error) {
	if err := g.ready(); err != nil {
		return "", err
	}
	if !(clock.Time{Hour: hour, Minute: minute}).Valid() {
		return "", fmt.Errorf("invalid daily trigger %02d:%02d", hour, minute)
	}
	return g.insert(ctx, model.ScheduledReminder{
		Title:   title,
		Body:    body,
		Kind:    string(TriggerDaily),
		Hour:    &hour,
		Minute:  &minute,
		Repeats: true,
	})
}

// ScheduleInterval installs a one-shot reminder firing after seconds.
func (g *LocalGateway) ScheduleInterval(ctx context.Context, seconds int, title, body string) (string, error) {
	if err := g.ready(); err != nil {
		return "", err
	}
	if seconds <= 0 {
		return "", fmt.Errorf("invalid interval trigger: %d seconds", seconds)
	}
	return g.insert(ctx, model.ScheduledReminder{
		Title:   title,
		Body:    body,
		Kind:    string(TriggerInterval),
		Seconds: &seconds,
	})
}

func (g *LocalGateway) insert(ctx context.Context, r model.ScheduledReminder) (string, error) {
	r.ID = uuid.NewString()
	r.ChannelID = DefaultChannelID
	if err := g.db.WithContext(ctx).Create(&r).Error; err != nil {
		return "", fmt.Errorf("failed to schedule reminder %q: %w", r.Title, err)
	}
	return r.ID, nil
}

// ListAll returns the pending reminders in scheduling order. Rows whose
// trigger cannot be decoded are skipped.
func (g *LocalGateway) ListAll(ctx context.Context) ([]Reminder, error) {
	var rows []model.ScheduledReminder
	if err := g.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	reminders := make([]Reminder, 0, len(rows))
	for _, row := range rows {
		r, err := decode(row)
		if err != nil {
			g.log.Warn("skipping undecodable reminder", zap.String("id", row.ID), zap.Error(err))
			continue
		}
		reminders = append(reminders, r)
	}
	return reminders, nil
}

func decode(row model.ScheduledReminder) (Reminder, error) {
	r := Reminder{ID: row.ID, Title: row.Title, Body: row.Body, CreatedAt: row.CreatedAt}
	switch kind := TriggerKind(row.Kind); kind {
	case TriggerDaily, TriggerCalendar:
		if row.Hour == nil || row.Minute == nil {
			return Reminder{}, fmt.Errorf("%s trigger without hour and minute", kind)
		}
		r.Trigger = Trigger{Kind: kind, Hour: *row.Hour, Minute: *row.Minute, Repeats: row.Repeats || kind == TriggerDaily}
	case TriggerInterval:
		if row.Seconds == nil {
			return Reminder{}, errors.New("interval trigger without seconds")
		}
		r.Trigger = Trigger{Kind: kind, Seconds: *row.Seconds, Repeats: row.Repeats}
	default:
		return Reminder{}, fmt.Errorf("unknown trigger kind %q", row.Kind)
	}
	return r, nil
}
