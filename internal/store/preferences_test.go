package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"officehours-backend/internal/clock"
)

func TestPreferenceStore_LoadEmpty(t *testing.T) {
	s := NewPreferenceStore(newMemStorage(), zap.NewNop())
	prefs := s.Load(context.Background())
	assert.NotNil(t, prefs)
	assert.Empty(t, prefs)
}

func TestPreferenceStore_LoadReadFailure(t *testing.T) {
	mem := newMemStorage()
	mem.failGet = true
	core, logs := observer.New(zapcore.ErrorLevel)
	s := NewPreferenceStore(mem, zap.New(core))

	prefs := s.Load(context.Background())
	assert.Empty(t, prefs)
	assert.Equal(t, 1, logs.Len())
}

func TestPreferenceStore_LoadCorrupt(t *testing.T) {
	mem := newMemStorage()
	mem.values[PreferencesKey] = "not json"
	s := NewPreferenceStore(mem, zap.NewNop())

	assert.Empty(t, s.Load(context.Background()))
	assert.Equal(t, 0, mem.writes)
}

func TestPreferenceStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	mem := newMemStorage()
	s := NewPreferenceStore(mem, zap.NewNop())

	s.Save(ctx, TimePreferences{
		"1": {Open: &clock.Time{Hour: 8, Minute: 30}},
	})
	assert.JSONEq(t,
		`{"1":{"openNotificationTime":{"hour":8,"minute":30},"closeNotificationTime":{"hour":-1,"minute":-1}}}`,
		mem.values[PreferencesKey])

	prefs := s.Load(ctx)
	require.Contains(t, prefs, "1")
	assert.Equal(t, &clock.Time{Hour: 8, Minute: 30}, prefs["1"].Open)
	assert.Nil(t, prefs["1"].Close)
	assert.Equal(t, 1, mem.writes, "loading current-schema data must not rewrite it")
}

func TestPreferenceStore_Migration(t *testing.T) {
	ctx := context.Background()
	mem := newMemStorage()
	mem.values[PreferencesKey] = `{
		"1": {"openMinutesBefore": 60, "closeMinutesBefore": 30},
		"2": {"openNotificationTime": {"hour": 7, "minute": 45}, "closeNotificationTime": {"hour": -1, "minute": -1}}
	}`
	s := NewPreferenceStore(mem, zap.NewNop())

	prefs := s.Load(ctx)
	assert.Equal(t, TimePreference{}, prefs["1"])
	assert.Equal(t, &clock.Time{Hour: 7, Minute: 45}, prefs["2"].Open)
	assert.Equal(t, 1, mem.writes, "migrated map should be persisted once")
	assert.JSONEq(t, `{
		"1": {"openNotificationTime": {"hour": -1, "minute": -1}, "closeNotificationTime": {"hour": -1, "minute": -1}},
		"2": {"openNotificationTime": {"hour": 7, "minute": 45}, "closeNotificationTime": {"hour": -1, "minute": -1}}
	}`, mem.values[PreferencesKey])

	again := s.Load(ctx)
	assert.Equal(t, prefs, again)
	assert.Equal(t, 1, mem.writes, "second load must not migrate again")
}

func TestPreferenceStore_MigrationPartialLegacyEntry(t *testing.T) {
	mem := newMemStorage()
	mem.values[PreferencesKey] = `{"4": {"closeMinutesBefore": 15}, "5": 42}`
	s := NewPreferenceStore(mem, zap.NewNop())

	prefs := s.Load(context.Background())
	assert.Equal(t, TimePreferences{"4": {}, "5": {}}, prefs)
	assert.Equal(t, 1, mem.writes)
}

func TestPreferenceStore_OutOfRangeTimeIsUnconfigured(t *testing.T) {
	mem := newMemStorage()
	mem.values[PreferencesKey] = `{"1": {"openNotificationTime": {"hour": 25, "minute": 0}}}`
	s := NewPreferenceStore(mem, zap.NewNop())

	prefs := s.Load(context.Background())
	assert.Nil(t, prefs["1"].Open)
	assert.Nil(t, prefs["1"].Close)
}

func TestPreferenceStore_SaveFailureIsSwallowed(t *testing.T) {
	mem := newMemStorage()
	mem.failSet = true
	core, logs := observer.New(zapcore.ErrorLevel)
	s := NewPreferenceStore(mem, zap.New(core))

	current := TimePreferences{}
	next := s.Update(context.Background(), "1", TimePreference{Open: &clock.Time{Hour: 9}}, current)

	assert.Equal(t, &clock.Time{Hour: 9}, next["1"].Open)
	assert.Equal(t, 1, logs.FilterMessage("failed to save time preferences").Len())
}

func TestPreferenceStore_Update(t *testing.T) {
	ctx := context.Background()
	mem := newMemStorage()
	s := NewPreferenceStore(mem, zap.NewNop())

	original := TimePreferences{"1": {Open: &clock.Time{Hour: 8}}}
	next := s.Update(ctx, "2", TimePreference{Close: &clock.Time{Hour: 14, Minute: 15}}, original)

	assert.Len(t, original, 1, "input map must not be modified")
	assert.Len(t, next, 2)
	assert.Equal(t, next, s.Load(ctx))
}

func TestGetPreference(t *testing.T) {
	prefs := TimePreferences{"1": {Open: &clock.Time{Hour: 8}}}

	assert.Equal(t, &clock.Time{Hour: 8}, GetPreference("1", prefs).Open)
	def := GetPreference("9", prefs)
	assert.False(t, clock.IsConfigured(def.Open))
	assert.False(t, clock.IsConfigured(def.Close))
}

func TestTimePreference_With(t *testing.T) {
	in := &clock.Time{Hour: 10, Minute: 5}
	p := TimePreference{}.With(EventOpen, in).With(EventClose, &clock.Time{Hour: 16})
	in.Hour = 11

	assert.Equal(t, &clock.Time{Hour: 10, Minute: 5}, p.Time(EventOpen))
	assert.Equal(t, &clock.Time{Hour: 16}, p.Time(EventClose))
	assert.Nil(t, p.With(EventOpen, nil).Open)
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent("close")
	require.NoError(t, err)
	assert.Equal(t, EventClose, e)

	_, err = ParseEvent("lunch")
	assert.Error(t, err)
}
