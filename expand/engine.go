// Package expand turns recurring event records into concrete occurrences:
// range queries for calendar views and pairwise conflict detection. Results
// are cached per query; the cache can be disabled or shared via options.
package expand

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/priya-anand/egroupware/event"
	"github.com/priya-anand/egroupware/recurrence"
)

// Cache operation names; part of the cache key.
const (
	opBetween       = "between"
	opHasOccurrence = "has-occurrence"
)

// Occurrence is one concrete instance of an event series.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Conflict pairs two occurrences whose times overlap.
type Conflict struct {
	A Occurrence
	B Occurrence
}

// Engine expands event records into occurrences.
type Engine struct {
	config   Config
	cache    *Cache
	ownCache bool
	logger   *slog.Logger
}

// Option represents a configuration option for the Engine
type Option func(*Engine)

// WithLogger sets the logger for the engine
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConfig replaces the engine configuration
func WithConfig(config Config) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithCache injects a result cache, typically shared between engines. The
// caller keeps ownership; Close will not stop an injected cache.
func WithCache(cache *Cache) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// New creates an expansion engine. Without options it uses DefaultConfig
// and its own cache.
func New(opts ...Option) *Engine {
	e := &Engine{
		config: DefaultConfig,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.config.MaxOccurrences <= 0 {
		e.config.MaxOccurrences = DefaultConfig.MaxOccurrences
	}
	if e.cache == nil && e.config.CacheEnabled {
		e.cache = NewCache(e.config.Cache)
		e.ownCache = true
	}

	return e
}

// Close stops the cache the engine created itself.
func (e *Engine) Close() {
	if e.ownCache && e.cache != nil {
		e.cache.Close()
	}
}

// Between returns the occurrences of ev that overlap [rangeStart, rangeEnd],
// in order. An occurrence overlaps when it starts no later than rangeEnd and
// ends no earlier than rangeStart. The result is capped at
// Config.MaxOccurrences.
func (e *Engine) Between(ev *event.Event, rangeStart, rangeEnd time.Time) ([]Occurrence, error) {
	if rangeEnd.Before(rangeStart) {
		return nil, fmt.Errorf("expand: range end %s before range start %s",
			rangeEnd.Format(time.RFC3339), rangeStart.Format(time.RFC3339))
	}

	if e.cache != nil {
		if cached, found := e.cache.Get(opBetween, ev, rangeStart, rangeEnd); found {
			if occurrences, ok := cached.([]Occurrence); ok {
				return occurrences, nil
			}
		}
	}

	rule, err := recurrence.FromEvent(ev)
	if err != nil {
		return nil, err
	}

	duration := ev.Duration()
	var occurrences []Occurrence
	for cursor := rule.Cursor(); cursor.Valid(); cursor.Next() {
		start := cursor.Current()
		if start.After(rangeEnd) {
			break
		}
		end := start.Add(duration)
		if end.Before(rangeStart) {
			continue
		}
		occurrences = append(occurrences, Occurrence{Start: start, End: end})
		if len(occurrences) >= e.config.MaxOccurrences {
			e.logger.Warn("occurrence cap reached",
				"uid", ev.UID,
				"cap", e.config.MaxOccurrences)
			break
		}
	}

	e.logger.Debug("expanded series",
		"uid", ev.UID,
		"occurrences", len(occurrences))

	if e.cache != nil {
		e.cache.Set(opBetween, ev, rangeStart, rangeEnd, occurrences)
	}

	return occurrences, nil
}

// HasOccurrenceInRange reports whether ev has at least one occurrence
// overlapping the range, without collecting all of them.
func (e *Engine) HasOccurrenceInRange(ev *event.Event, rangeStart, rangeEnd time.Time) (bool, error) {
	if rangeEnd.Before(rangeStart) {
		return false, fmt.Errorf("expand: range end %s before range start %s",
			rangeEnd.Format(time.RFC3339), rangeStart.Format(time.RFC3339))
	}

	if e.cache != nil {
		if cached, found := e.cache.Get(opHasOccurrence, ev, rangeStart, rangeEnd); found {
			if has, ok := cached.(bool); ok {
				return has, nil
			}
		}
	}

	rule, err := recurrence.FromEvent(ev)
	if err != nil {
		return false, err
	}

	duration := ev.Duration()
	has := false
	for cursor := rule.Cursor(); cursor.Valid(); cursor.Next() {
		start := cursor.Current()
		if start.After(rangeEnd) {
			break
		}
		if !start.Add(duration).Before(rangeStart) {
			has = true
			break
		}
	}

	if e.cache != nil {
		e.cache.Set(opHasOccurrence, ev, rangeStart, rangeEnd, has)
	}

	return has, nil
}

// Conflicts expands both events over the range and reports every pair of
// occurrences that overlap in time. Touching occurrences, where one ends
// exactly when the other starts, do not conflict.
func (e *Engine) Conflicts(a, b *event.Event, rangeStart, rangeEnd time.Time) ([]Conflict, error) {
	occurrencesA, err := e.Between(a, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("expand: event %q: %w", a.UID, err)
	}
	occurrencesB, err := e.Between(b, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("expand: event %q: %w", b.UID, err)
	}

	var conflicts []Conflict
	for _, oa := range occurrencesA {
		for _, ob := range occurrencesB {
			// Occurrences are sorted by start, so nothing after this
			// can overlap oa either.
			if !ob.Start.Before(oa.End) {
				break
			}
			if oa.Start.Before(ob.End) {
				conflicts = append(conflicts, Conflict{A: oa, B: ob})
			}
		}
	}

	if len(conflicts) > 0 {
		e.logger.Debug("found conflicts",
			"a", a.UID,
			"b", b.UID,
			"count", len(conflicts))
	}

	return conflicts, nil
}
