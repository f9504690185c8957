package expand

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priya-anand/egroupware/event"
	"github.com/priya-anand/egroupware/recurrence"
)

func berlin(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	return loc
}

// Mon/Wed/Fri 09:00-09:30 from 2021-06-07, June 9 skipped, ends Dec 31.
func weeklyStandup(t *testing.T) *event.Event {
	t.Helper()
	loc := berlin(t)
	ev := event.New("Standup",
		time.Date(2021, time.June, 7, 9, 0, 0, 0, loc),
		time.Date(2021, time.June, 7, 9, 30, 0, 0, loc))
	ev.Recurrence = event.Recurrence{
		Type:       int(recurrence.Weekly),
		Interval:   1,
		End:        mo.Some(time.Date(2021, time.December, 31, 9, 0, 0, 0, loc)),
		Weekdays:   int(recurrence.Monday | recurrence.Wednesday | recurrence.Friday),
		Exceptions: []time.Time{time.Date(2021, time.June, 9, 0, 0, 0, 0, loc)},
	}
	return ev
}

func TestBetween_MonthView(t *testing.T) {
	engine := New(WithConfig(DisabledCacheConfig))
	defer engine.Close()

	loc := berlin(t)
	rangeStart := time.Date(2021, time.June, 1, 0, 0, 0, 0, loc)
	rangeEnd := time.Date(2021, time.June, 30, 23, 59, 59, 0, loc)

	occurrences, err := engine.Between(weeklyStandup(t), rangeStart, rangeEnd)
	require.NoError(t, err)

	wantDays := []int{7, 11, 14, 16, 18, 21, 23, 25, 28, 30}
	require.Len(t, occurrences, len(wantDays))
	for i, occ := range occurrences {
		assert.Equal(t, wantDays[i], occ.Start.Day())
		assert.Equal(t, 9, occ.Start.Hour())
		assert.Contains(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, occ.Start.Weekday())
		assert.Equal(t, occ.Start.Add(30*time.Minute), occ.End)
	}
}

func TestBetween_RangeEdges(t *testing.T) {
	engine := New(WithConfig(DisabledCacheConfig))
	defer engine.Close()

	loc := berlin(t)
	appointment := func(startHour, endHour int) *event.Event {
		return event.New("Checkup",
			time.Date(2021, time.June, 15, startHour, 0, 0, 0, loc),
			time.Date(2021, time.June, 15, endHour, 0, 0, 0, loc))
	}
	rangeStart := time.Date(2021, time.June, 15, 9, 0, 0, 0, loc)
	rangeEnd := time.Date(2021, time.June, 15, 10, 0, 0, 0, loc)

	tests := []struct {
		name string
		ev   *event.Event
		want int
	}{
		{name: "entirely before range", ev: appointment(6, 7), want: 0},
		{name: "entirely after range", ev: appointment(11, 12), want: 0},
		{name: "inside range", ev: appointment(9, 10), want: 1},
		{name: "straddles range start", ev: appointment(8, 9), want: 1},
		{name: "starts at range end", ev: appointment(10, 11), want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occurrences, err := engine.Between(tt.ev, rangeStart, rangeEnd)
			require.NoError(t, err)
			assert.Len(t, occurrences, tt.want)
		})
	}

	t.Run("inverted range", func(t *testing.T) {
		_, err := engine.Between(appointment(9, 10), rangeEnd, rangeStart)
		assert.ErrorContains(t, err, "before range start")
	})
}

func TestBetween_InvalidRecord(t *testing.T) {
	engine := New(WithConfig(DisabledCacheConfig))
	defer engine.Close()

	ev := weeklyStandup(t)
	ev.Recurrence.Type = 9

	_, err := engine.Between(ev, ev.Start, ev.Start.AddDate(0, 1, 0))
	assert.ErrorIs(t, err, recurrence.ErrInvalidType)
}

func TestBetween_CapsOccurrences(t *testing.T) {
	engine := New(WithConfig(Config{MaxOccurrences: 5}))
	defer engine.Close()

	loc := berlin(t)
	ev := event.New("Backup window",
		time.Date(2021, time.June, 1, 2, 0, 0, 0, loc),
		time.Date(2021, time.June, 1, 3, 0, 0, 0, loc))
	ev.Recurrence = event.Recurrence{Type: int(recurrence.Daily), Interval: 1}

	occurrences, err := engine.Between(ev,
		time.Date(2021, time.June, 1, 0, 0, 0, 0, loc),
		time.Date(2021, time.June, 30, 23, 59, 59, 0, loc))
	require.NoError(t, err)
	assert.Len(t, occurrences, 5)
}

func TestBetween_SharedCache(t *testing.T) {
	cache := NewCache(DefaultCacheConfig)
	defer cache.Close()

	engine := New(WithCache(cache))
	loc := berlin(t)
	rangeStart := time.Date(2021, time.June, 1, 0, 0, 0, 0, loc)
	rangeEnd := time.Date(2021, time.June, 30, 23, 59, 59, 0, loc)

	ev := weeklyStandup(t)
	first, err := engine.Between(ev, rangeStart, rangeEnd)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Stats().TotalEntries)

	second, err := engine.Between(ev, rangeStart, rangeEnd)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Stats().TotalEntries)

	// A different query adds its own entry.
	_, err = engine.HasOccurrenceInRange(ev, rangeStart, rangeEnd)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Stats().TotalEntries)

	// Closing the engine leaves the injected cache running.
	engine.Close()
	_, err = engine.Between(ev, rangeStart, rangeEnd)
	require.NoError(t, err)
}

func TestHasOccurrenceInRange(t *testing.T) {
	engine := New()
	defer engine.Close()

	loc := berlin(t)
	ev := weeklyStandup(t)

	tests := []struct {
		name       string
		rangeStart time.Time
		rangeEnd   time.Time
		want       bool
	}{
		{
			name:       "week with occurrences",
			rangeStart: time.Date(2021, time.June, 14, 0, 0, 0, 0, loc),
			rangeEnd:   time.Date(2021, time.June, 20, 23, 59, 59, 0, loc),
			want:       true,
		},
		{
			name:       "weekend between occurrences",
			rangeStart: time.Date(2021, time.June, 12, 0, 0, 0, 0, loc),
			rangeEnd:   time.Date(2021, time.June, 13, 23, 59, 59, 0, loc),
			want:       false,
		},
		{
			name:       "before the series starts",
			rangeStart: time.Date(2021, time.May, 1, 0, 0, 0, 0, loc),
			rangeEnd:   time.Date(2021, time.May, 31, 23, 59, 59, 0, loc),
			want:       false,
		},
		{
			name:       "after the series ends",
			rangeStart: time.Date(2022, time.January, 1, 0, 0, 0, 0, loc),
			rangeEnd:   time.Date(2022, time.January, 31, 23, 59, 59, 0, loc),
			want:       false,
		},
		{
			name:       "moment inside one occurrence",
			rangeStart: time.Date(2021, time.June, 7, 9, 15, 0, 0, loc),
			rangeEnd:   time.Date(2021, time.June, 7, 9, 20, 0, 0, loc),
			want:       true,
		},
		{
			name:       "skipped day only",
			rangeStart: time.Date(2021, time.June, 9, 0, 0, 0, 0, loc),
			rangeEnd:   time.Date(2021, time.June, 9, 23, 59, 59, 0, loc),
			want:       false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			has, err := engine.HasOccurrenceInRange(ev, tt.rangeStart, tt.rangeEnd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, has)
		})
	}
}

func TestConflicts(t *testing.T) {
	engine := New(WithConfig(DisabledCacheConfig))
	defer engine.Close()

	loc := berlin(t)
	standup := weeklyStandup(t)
	rangeStart := time.Date(2021, time.June, 1, 0, 0, 0, 0, loc)
	rangeEnd := time.Date(2021, time.June, 30, 23, 59, 59, 0, loc)

	t.Run("overlapping one-off", func(t *testing.T) {
		review := event.New("Design review",
			time.Date(2021, time.June, 14, 9, 15, 0, 0, loc),
			time.Date(2021, time.June, 14, 10, 0, 0, 0, loc))

		conflicts, err := engine.Conflicts(standup, review, rangeStart, rangeEnd)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, 14, conflicts[0].A.Start.Day())
		assert.True(t, conflicts[0].B.Start.Equal(review.Start))
	})

	t.Run("back to back is not a conflict", func(t *testing.T) {
		followup := event.New("Followup",
			time.Date(2021, time.June, 16, 9, 30, 0, 0, loc),
			time.Date(2021, time.June, 16, 10, 0, 0, 0, loc))

		conflicts, err := engine.Conflicts(standup, followup, rangeStart, rangeEnd)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("free day", func(t *testing.T) {
		lunch := event.New("Lunch",
			time.Date(2021, time.June, 15, 12, 0, 0, 0, loc),
			time.Date(2021, time.June, 15, 13, 0, 0, 0, loc))

		conflicts, err := engine.Conflicts(standup, lunch, rangeStart, rangeEnd)
		require.NoError(t, err)
		assert.Empty(t, conflicts)
	})

	t.Run("two series", func(t *testing.T) {
		triage := event.New("Bug triage",
			time.Date(2021, time.June, 7, 9, 15, 0, 0, loc),
			time.Date(2021, time.June, 7, 9, 45, 0, 0, loc))
		triage.Recurrence = event.Recurrence{
			Type:     int(recurrence.Weekly),
			Interval: 1,
			Weekdays: int(recurrence.Monday),
		}

		conflicts, err := engine.Conflicts(standup, triage, rangeStart, rangeEnd)
		require.NoError(t, err)
		// Standup runs Mondays June 7, 14, 21, 28; triage overlaps each.
		require.Len(t, conflicts, 4)
		for _, c := range conflicts {
			assert.Equal(t, time.Monday, c.A.Start.Weekday())
			assert.True(t, c.A.Start.Before(c.B.End))
			assert.True(t, c.B.Start.Before(c.A.End))
		}
	})

	t.Run("invalid record names the event", func(t *testing.T) {
		bad := weeklyStandup(t)
		bad.UID = "bad-record"
		bad.Recurrence.Type = 9

		_, err := engine.Conflicts(standup, bad, rangeStart, rangeEnd)
		assert.ErrorIs(t, err, recurrence.ErrInvalidType)
		assert.ErrorContains(t, err, "bad-record")
	})
}

func TestEngine_Options(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		engine := New()
		defer engine.Close()
		assert.Equal(t, DefaultConfig.MaxOccurrences, engine.config.MaxOccurrences)
		assert.NotNil(t, engine.cache)
		assert.NotNil(t, engine.logger)
	})

	t.Run("disabled cache", func(t *testing.T) {
		engine := New(WithConfig(DisabledCacheConfig))
		defer engine.Close()
		assert.Nil(t, engine.cache)
	})

	t.Run("zero cap falls back to default", func(t *testing.T) {
		engine := New(WithConfig(Config{}))
		defer engine.Close()
		assert.Equal(t, DefaultConfig.MaxOccurrences, engine.config.MaxOccurrences)
	})

	t.Run("zero cache config falls back to defaults", func(t *testing.T) {
		engine := New(WithConfig(Config{CacheEnabled: true}))
		defer engine.Close()
		require.NotNil(t, engine.cache)
		assert.Equal(t, DefaultCacheConfig.TTL, engine.cache.ttl)

		// Results must be held, not expired on the spot.
		ev := weeklyStandup(t)
		occurrences, err := engine.Between(ev, ev.Start, ev.Start.AddDate(0, 1, 0))
		require.NoError(t, err)
		assert.NotEmpty(t, occurrences)
		assert.Equal(t, 1, engine.cache.Stats().ActiveEntries)
	})

	t.Run("logger receives expansion records", func(t *testing.T) {
		var buf strings.Builder
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		engine := New(WithConfig(DisabledCacheConfig), WithLogger(logger))
		defer engine.Close()

		ev := weeklyStandup(t)
		_, err := engine.Between(ev, ev.Start, ev.Start.AddDate(0, 1, 0))
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "expanded series")
		assert.Contains(t, buf.String(), ev.UID)
	})
}
