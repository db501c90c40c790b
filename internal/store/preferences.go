package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"officehours-backend/internal/clock"
	"officehours-backend/internal/kv"
)

// PreferencesKey is the storage key of the TimePreferences blob.
const PreferencesKey = "@notification_time_preferences"

// Event selects the opening or closing reminder of an office.
type Event string

const (
	EventOpen  Event = "open"
	EventClose Event = "close"
)

// ParseEvent converts "open" or "close" into an Event.
func ParseEvent(s string) (Event, error) {
	switch Event(s) {
	case EventOpen, EventClose:
		return Event(s), nil
	}
	return "", fmt.Errorf("unknown event %q", s)
}

// TimePreference holds the exact times of day at which an office's open and
// close reminders fire. A nil time means the reminder is not configured.
type TimePreference struct {
	Open  *clock.Time
	Close *clock.Time
}

// Time returns the configured time for e.
func (p TimePreference) Time(e Event) *clock.Time {
	if e == EventClose {
		return p.Close
	}
	return p.Open
}

// With returns a copy of p with the time for e replaced.
func (p TimePreference) With(e Event, t *clock.Time) TimePreference {
	if t != nil {
		c := *t
		t = &c
	}
	if e == EventClose {
		p.Close = t
	} else {
		p.Open = t
	}
	return p
}

// TimePreferences maps office id to its preference.
type TimePreferences map[string]TimePreference

// LegacyPreference is the superseded schema: offsets relative to the parsed
// open and close times. It is only ever read, to detect entries to migrate.
type LegacyPreference struct {
	OpenMinutesBefore  int `json:"openMinutesBefore"`
	CloseMinutesBefore int `json:"closeMinutesBefore"`
}

// DefaultLegacyPreference was applied to offices without a stored entry.
var DefaultLegacyPreference = LegacyPreference{OpenMinutesBefore: 60, CloseMinutesBefore: 30}

// wirePreference is the persisted shape of one entry, covering both schema
// versions. Unset times are written as {-1,-1}.
type wirePreference struct {
	OpenNotificationTime  *clock.Time `json:"openNotificationTime,omitempty"`
	CloseNotificationTime *clock.Time `json:"closeNotificationTime,omitempty"`
	OpenMinutesBefore     *int        `json:"openMinutesBefore,omitempty"`
	CloseMinutesBefore    *int        `json:"closeMinutesBefore,omitempty"`
}

func (w wirePreference) legacy() bool {
	return w.OpenMinutesBefore != nil || w.CloseMinutesBefore != nil
}

func toWire(t *clock.Time) *clock.Time {
	if !clock.IsConfigured(t) {
		s := clock.Sentinel()
		return &s
	}
	c := *t
	return &c
}

func fromWire(t *clock.Time) *clock.Time {
	if !clock.IsConfigured(t) || !t.Valid() {
		return nil
	}
	c := *t
	return &c
}

// MarshalJSON writes the current schema.
func (p TimePreference) MarshalJSON() ([]byte, error) {
	return json.Marshal(wirePreference{
		OpenNotificationTime:  toWire(p.Open),
		CloseNotificationTime: toWire(p.Close),
	})
}

// GetPreference returns the stored preference for officeID, or the unconfigured default.
func GetPreference(officeID string, prefs TimePreferences) TimePreference {
	return prefs[officeID]
}

// PreferenceStore persists TimePreferences in a kv.Storage.
type PreferenceStore struct {
	kv  kv.Storage
	log *zap.Logger
}

// NewPreferenceStore creates a store on top of s.
func NewPreferenceStore(s kv.Storage, log *zap.Logger) *PreferenceStore {
	return &PreferenceStore{kv: s, log: log.Named("preferences")}
}

// Load reads the stored preferences. It never fails: missing or unreadable
// state yields an empty map. Entries in the legacy minutes-before schema are
// reset to unconfigured and the migrated map is written back immediately.
func (s *PreferenceStore) Load(ctx context.Context) TimePreferences {
	raw, ok, err := s.kv.GetString(ctx, PreferencesKey)
	if err != nil {
		s.log.Error("failed to read time preferences, using defaults", zap.Error(err))
		return TimePreferences{}
	}
	if !ok {
		s.log.Debug("no stored time preferences, using defaults")
		return TimePreferences{}
	}

	prefs, migrated, err := decodePreferences(raw)
	if err != nil {
		s.log.Error("failed to decode time preferences, using defaults", zap.Error(err))
		return TimePreferences{}
	}

	if len(migrated) > 0 {
		s.log.Info("migrated legacy time preferences", zap.Strings("offices", migrated))
		s.Save(ctx, prefs)
	}
	return prefs
}

func decodePreferences(raw string) (TimePreferences, []string, error) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, nil, err
	}

	prefs := make(TimePreferences, len(entries))
	var migrated []string
	for id, entry := range entries {
		var w wirePreference
		if err := json.Unmarshal(entry, &w); err != nil || w.legacy() {
			// Offsets are not converted; the office must be configured again.
			prefs[id] = TimePreference{}
			migrated = append(migrated, id)
			continue
		}
		prefs[id] = TimePreference{
			Open:  fromWire(w.OpenNotificationTime),
			Close: fromWire(w.CloseNotificationTime),
		}
	}
	return prefs, migrated, nil
}

// Save persists prefs. A failure is logged and otherwise ignored; the
// caller's in-memory map stays authoritative.
func (s *PreferenceStore) Save(ctx context.Context, prefs TimePreferences) {
	data, err := json.Marshal(prefs)
	if err != nil {
		s.log.Error("failed to encode time preferences", zap.Error(err))
		return
	}
	if err := s.kv.SetString(ctx, PreferencesKey, string(data)); err != nil {
		s.log.Error("failed to save time preferences", zap.Error(err))
		return
	}
	s.log.Debug("time preferences saved", zap.Int("offices", len(prefs)))
}

// Update stores pref for officeID and returns the new map. prefs is not modified.
func (s *PreferenceStore) Update(ctx context.Context, officeID string, pref TimePreference, prefs TimePreferences) TimePreferences {
	next := make(TimePreferences, len(prefs)+1)
	for id, p := range prefs {
		next[id] = p
	}
	next[officeID] = pref
	s.Save(ctx, next)
	return next
}
