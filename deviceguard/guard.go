package deviceguard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NehaTanti-afk/Neha-Notes/services/logging"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const DefaultInterval = 15 * time.Second

var (
	ErrAuthRequired    = errors.New("guard requires an auth provider")
	ErrRecordsRequired = errors.New("guard requires a record store")
	ErrCacheRequired   = errors.New("guard requires a local cache")
)

type State int

const (
	StateIdle State = iota
	StateArmed
	StateKicked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateKicked:
		return "kicked"
	default:
		return "unknown"
	}
}

type Outcome string

const (
	OutcomeKeep         Outcome = "keep"
	OutcomeKick         Outcome = "kick"
	OutcomeInconclusive Outcome = "inconclusive"
	OutcomeSkipped      Outcome = "skipped"
)

type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

const (
	triggerMount      = "mount"
	triggerInterval   = "interval"
	triggerVisibility = "visibility"
	triggerManual     = "manual"
)

type Options struct {
	Auth    AuthProvider
	Records RecordStore
	Cache   Cache
	Notes   Notes
	// Clock defaults to the real clock.
	Clock clockwork.Clock
	// Interval defaults to DefaultInterval.
	Interval time.Duration
	// Visibility delivers foreground/background changes of the tab. Optional.
	Visibility <-chan Visibility
	Logger     *logging.Service
	Metrics    *Metrics
}

// Guard drives the validator for one tab. It is armed while the auth provider
// reports a loaded identity, checks on mount, every Interval and whenever the
// tab becomes visible, and kicks at most once per mount.
type Guard struct {
	auth       AuthProvider
	records    RecordStore
	cache      Cache
	notes      Notes
	clock      clockwork.Clock
	interval   time.Duration
	visibility <-chan Visibility
	logger     *logging.Service
	metrics    *Metrics

	mu      sync.Mutex
	current *mount
	wg      sync.WaitGroup
}

// mount is one armed lifetime for a single identity.
type mount struct {
	accountID string
	kickout   *Kickout
	ticker    clockwork.Ticker
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(opts Options) (*Guard, error) {
	if opts.Auth == nil {
		return nil, ErrAuthRequired
	}
	if opts.Records == nil {
		return nil, ErrRecordsRequired
	}
	if opts.Cache == nil {
		return nil, ErrCacheRequired
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Guard{
		auth:       opts.Auth,
		records:    opts.Records,
		cache:      opts.Cache,
		notes:      opts.Notes,
		clock:      clock,
		interval:   interval,
		visibility: opts.Visibility,
		logger:     opts.Logger.Named("device_guard"),
		metrics:    opts.Metrics,
	}, nil
}

// Run processes identity changes and triggers until ctx is cancelled or the
// identity channel closes. In-flight checks are waited for before returning.
func (g *Guard) Run(ctx context.Context) error {
	identities := g.auth.Identities()
	visibility := g.visibility

	defer func() {
		g.disarm()
		g.wg.Wait()
	}()

	for {
		var tick <-chan time.Time
		if m := g.mounted(); m != nil {
			tick = m.ticker.Chan()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case id, ok := <-identities:
			if !ok {
				return nil
			}
			g.apply(ctx, id)

		case <-tick:
			g.trigger(triggerInterval)

		case v, ok := <-visibility:
			if !ok {
				visibility = nil
				continue
			}
			if v == Visible {
				g.trigger(triggerVisibility)
			}
		}
	}
}

// Check runs one fetch and validate cycle synchronously for the current mount.
func (g *Guard) Check(ctx context.Context) Outcome {
	m := g.mounted()
	if m == nil {
		g.metrics.check(triggerManual, OutcomeSkipped)
		return OutcomeSkipped
	}
	return g.check(ctx, m, triggerManual)
}

func (g *Guard) State() State {
	m := g.mounted()
	switch {
	case m == nil:
		return StateIdle
	case m.kickout.Fired():
		return StateKicked
	default:
		return StateArmed
	}
}

func (g *Guard) mounted() *mount {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *Guard) apply(ctx context.Context, id Identity) {
	if !id.ready() {
		if g.disarm() {
			g.logger.Debug("guard disarmed", zap.Bool("loading", id.Loading))
		}
		return
	}

	if m := g.mounted(); m != nil && m.accountID == id.ID {
		return
	}

	g.disarm()
	g.arm(ctx, id.ID)
	g.trigger(triggerMount)
}

func (g *Guard) arm(ctx context.Context, accountID string) {
	mctx, cancel := context.WithCancel(ctx)
	logger := g.logger.With(zap.String("account_id", accountID))

	m := &mount{
		accountID: accountID,
		kickout:   NewKickout(g.cache, g.notes, g.auth, logger, g.metrics),
		ticker:    g.clock.NewTicker(g.interval),
		ctx:       mctx,
		cancel:    cancel,
	}

	g.mu.Lock()
	g.current = m
	g.mu.Unlock()

	logger.Debug("guard armed", zap.Duration("interval", g.interval))
}

// disarm tears down the current mount. Results of its in-flight checks are
// discarded once they complete.
func (g *Guard) disarm() bool {
	g.mu.Lock()
	m := g.current
	g.current = nil
	g.mu.Unlock()

	if m == nil {
		return false
	}
	m.ticker.Stop()
	m.cancel()
	return true
}

func (g *Guard) trigger(source string) {
	m := g.mounted()
	if m == nil {
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.check(m.ctx, m, source)
	}()
}

func (g *Guard) check(ctx context.Context, m *mount, source string) Outcome {
	outcome := g.cycle(ctx, m, source)
	g.metrics.check(source, outcome)
	return outcome
}

func (g *Guard) cycle(ctx context.Context, m *mount, source string) Outcome {
	if m.kickout.Fired() {
		return OutcomeSkipped
	}

	remote, err := g.records.GetActiveDeviceToken(ctx, m.accountID)
	if err != nil {
		if m.ctx.Err() != nil {
			return OutcomeSkipped
		}
		g.logger.Warn("device token fetch failed, retrying next cycle",
			zap.String("account_id", m.accountID),
			zap.String("trigger", source),
			zap.Error(err))
		return OutcomeInconclusive
	}

	if m.ctx.Err() != nil || m.kickout.Fired() {
		return OutcomeSkipped
	}

	local, _ := g.cache.Get(ctx, DeviceTokenKey)

	if Validate(remote, local) == Keep {
		g.logger.Debug("device token valid",
			zap.String("account_id", m.accountID),
			zap.String("trigger", source))
		return OutcomeKeep
	}

	if m.kickout.Fire(ctx) {
		g.logger.Info("session superseded by another device, signed out",
			zap.String("account_id", m.accountID),
			zap.String("trigger", source),
			zap.Bool("token_cleared", remote == nil || *remote == ""))
	}
	return OutcomeKick
}
