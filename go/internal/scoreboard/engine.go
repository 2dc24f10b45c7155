// Package scoreboard runs a match: it owns the countdown, the key interpreter and the
// scoring state, and serializes every key press, tick and prompt answer through one loop.
package scoreboard

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/feed"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/match"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/match/keys"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/match/timer"
	"github.com/ktbartholomew/karate-scoreboard/go/internal/schedule"
	"github.com/rs/zerolog/log"
)

const inboxBufferSize = 16

// InputSource delivers key presses from the host UI.
type InputSource interface {
	Keys() <-chan keys.KeyEvent
}

// Presenter receives every new snapshot. Present is called from the engine loop and must
// not block.
type Presenter interface {
	Present(snap Snapshot)
}

// Prompter asks the operator for a new match duration in seconds. It may block; the engine
// calls it off the loop. An empty answer or an error means no change.
type Prompter interface {
	PromptDuration(ctx context.Context, current string) (string, error)
}

// Config holds the match settings.
type Config struct {
	MatchDuration          time.Duration
	TickInterval           time.Duration
	PrefixWindow           time.Duration
	WarningThreshold       time.Duration
	ConsumePrefixOnResolve bool
}

// DefaultConfig mirrors the classic scoreboard: one minute, 17ms ticks, 2s key window and a
// warning during the last 15 seconds.
func DefaultConfig() Config {
	return Config{
		MatchDuration:    time.Minute,
		TickInterval:     17 * time.Millisecond,
		PrefixWindow:     keys.DefaultPrefixWindow,
		WarningThreshold: 15 * time.Second,
	}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPresenters adds snapshot consumers.
func WithPresenters(p ...Presenter) Option {
	return func(e *Engine) { e.presenters = append(e.presenters, p...) }
}

// WithPrompter sets the duration prompt collaborator.
func WithPrompter(p Prompter) Option {
	return func(e *Engine) { e.prompter = p }
}

// WithPublisher sets where resolved commands are published.
func WithPublisher(p feed.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithMatchID overrides the generated match id.
func WithMatchID(id uuid.UUID) Option {
	return func(e *Engine) { e.id = id }
}

// Engine is the single owner of the match state.
type Engine struct {
	id        uuid.UUID
	cfg       Config
	clock     schedule.Clock
	input     InputSource
	countdown *timer.Countdown
	keys      *keys.Interpreter
	state     match.State

	presenters []Presenter
	prompter   Prompter
	publisher  feed.Publisher

	inbox     chan func(context.Context)
	ticker    clockwork.Ticker
	prompting bool
	version   uint64

	snapMu   sync.RWMutex
	snapshot Snapshot
}

// NewEngine creates an engine with a stopped countdown at the configured duration.
func NewEngine(cfg Config, clock schedule.Clock, input InputSource, opts ...Option) *Engine {
	defaults := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaults.TickInterval
	}
	if cfg.PrefixWindow <= 0 {
		cfg.PrefixWindow = defaults.PrefixWindow
	}
	if cfg.MatchDuration < 0 {
		cfg.MatchDuration = 0
	}

	e := &Engine{
		id:        uuid.New(),
		cfg:       cfg,
		clock:     clock,
		input:     input,
		countdown: timer.New(clock, cfg.MatchDuration),
		inbox:     make(chan func(context.Context), inboxBufferSize),
	}
	e.keys = keys.NewInterpreter(clock, keys.Options{
		PrefixWindow:     cfg.PrefixWindow,
		ConsumeOnResolve: cfg.ConsumePrefixOnResolve,
		OnExpire:         e.refreshLater,
	})
	for _, opt := range opts {
		opt(e)
	}
	if e.publisher == nil {
		e.publisher = feed.NewLogPublisher()
	}

	e.snapshot = buildSnapshot(e)
	return e
}

// ID returns the match id.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Snapshot returns the latest published snapshot. Safe for concurrent use.
func (e *Engine) Snapshot() Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snapshot
}

// Run processes key presses, ticks and prompt answers until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	log.Info().
		Str("match_id", e.id.String()).
		Dur("duration", e.countdown.Total()).
		Dur("tick_interval", e.cfg.TickInterval).
		Msg("scoreboard engine started")

	defer func() {
		e.stopTicker()
		e.keys.Close()
		log.Info().Str("match_id", e.id.String()).Msg("scoreboard engine stopped")
	}()

	e.present()

	keyCh := e.input.Keys()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-keyCh:
			if !ok {
				log.Warn().Msg("input source closed; no more key events")
				keyCh = nil
				continue
			}
			e.handleKey(ctx, ev)
		case fn := <-e.inbox:
			fn(ctx)
		case <-e.tickChan():
			e.handleTick(ctx)
		}
	}
}

func (e *Engine) handleKey(ctx context.Context, ev keys.KeyEvent) {
	cmd, ok := e.keys.Handle(ev)
	if !ok {
		log.Debug().
			Str("code", ev.Code).
			Bool("alt", ev.Alt).
			Bool("ctrl", ev.Ctrl).
			Bool("meta", ev.Meta).
			Bool("shift", ev.Shift).
			Msg("key ignored")
		// a prefix key still changes the pending prefix shown on the display
		e.present()
		return
	}
	e.apply(ctx, cmd)
}

func (e *Engine) apply(ctx context.Context, cmd match.Command) {
	log.Debug().Str("command", cmd.String()).Msg("applying command")

	switch cmd.Kind {
	case match.CmdStartStopTimer:
		e.countdown.Toggle()
		e.syncTicker()
	case match.CmdResetAll:
		e.state = e.state.Apply(cmd)
		e.countdown.ResetToConfigured()
		e.syncTicker()
	case match.CmdSetMatchDuration:
		e.requestDuration(ctx)
		return
	default:
		e.state = e.state.Apply(cmd)
	}

	e.publish(ctx, cmd.Kind.String(), cmd)
	e.present()
}

// requestDuration asks the prompter off-loop and posts the answer back into the loop.
func (e *Engine) requestDuration(ctx context.Context) {
	if e.prompter == nil {
		log.Warn().Msg("no duration prompter configured; ignoring change-duration key")
		return
	}
	if e.prompting {
		log.Debug().Msg("duration prompt already open")
		return
	}
	e.prompting = true

	current := strconv.Itoa(int(math.Round(e.countdown.Total().Seconds())))
	go func() {
		answer, err := e.prompter.PromptDuration(ctx, current)
		e.post(ctx, func(ctx context.Context) {
			e.prompting = false
			if err != nil {
				log.Debug().Err(err).Msg("duration prompt ended without an answer")
				return
			}
			e.configureDuration(ctx, answer)
		})
	}()
}

func (e *Engine) configureDuration(ctx context.Context, answer string) {
	d, ok := match.ParseDurationAnswer(answer)
	if !ok {
		log.Debug().Str("answer", answer).Msg("ignoring invalid match duration")
		return
	}

	e.countdown.Configure(d)
	e.syncTicker()

	cmd := match.SetMatchDuration()
	cmd.Seconds = strconv.Itoa(int(d / time.Second))
	e.publish(ctx, cmd.Kind.String(), cmd)
	e.present()
}

func (e *Engine) handleTick(ctx context.Context) {
	if !e.countdown.Tick() {
		e.syncTicker()
		if e.countdown.State().Expired() {
			e.publish(ctx, feed.EventTypeTimerExpired, struct {
				DurationSec int `json:"duration_sec"`
			}{DurationSec: int(e.countdown.Total() / time.Second)})
		}
	}
	e.present()
}

// syncTicker keeps exactly one ticker alive while the countdown runs.
func (e *Engine) syncTicker() {
	running := e.countdown.Running()
	switch {
	case running && e.ticker == nil:
		e.ticker = e.clock.NewTicker(e.cfg.TickInterval)
	case !running && e.ticker != nil:
		e.stopTicker()
	}
}

func (e *Engine) stopTicker() {
	if e.ticker == nil {
		return
	}
	e.ticker.Stop()
	e.ticker = nil
}

func (e *Engine) tickChan() <-chan time.Time {
	if e.ticker == nil {
		return nil
	}
	return e.ticker.Chan()
}

// post hands fn to the loop, giving up when ctx ends.
func (e *Engine) post(ctx context.Context, fn func(context.Context)) {
	select {
	case e.inbox <- fn:
	case <-ctx.Done():
	}
}

// refreshLater re-renders after a prefix expires. Dropping it when the inbox is full is fine;
// the next event renders anyway.
func (e *Engine) refreshLater() {
	select {
	case e.inbox <- func(context.Context) { e.present() }:
	default:
	}
}

func (e *Engine) present() {
	e.version++
	snap := buildSnapshot(e)

	e.snapMu.Lock()
	e.snapshot = snap
	e.snapMu.Unlock()

	for _, p := range e.presenters {
		p.Present(snap)
	}
}

func (e *Engine) publish(ctx context.Context, eventType string, payload any) {
	event, err := feed.NewMatchEvent(e.id, eventType, e.clock.Now(), payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to build match event")
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to publish match event")
	}
}
