// Package refresh implements the singleton background process that keeps
// the cache warm. It discovers a working set (clubs, then their players)
// and republishes refreshed records through the cache service under a
// strict pacing policy: every provider call is followed by a fixed delay,
// and the crawl is strictly sequential, which bounds the request rate
// regardless of working-set size.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lbsports/transfermarkt-cache/pkg/cache"
	"github.com/lbsports/transfermarkt-cache/pkg/logging"
	"github.com/lbsports/transfermarkt-cache/pkg/provider"
	"github.com/lbsports/transfermarkt-cache/pkg/store"
)

// State is the scheduler lifecycle state.
type State int

const (
	// StateStopped is the initial and terminal state.
	StateStopped State = iota

	// StateRunning means the refresh loop is active.
	StateRunning

	// StateStopping means cancellation was requested and the loop is draining.
	StateStopping
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultSeedLeagues are the well-known league identifiers used to seed
// the working set when the clubs collection is empty.
var DefaultSeedLeagues = []string{"GB1", "ES1", "L1", "IT1", "FR1"}

// Config holds scheduler pacing configuration.
type Config struct {
	// ScrapeDelay is the fixed delay after every provider request.
	ScrapeDelay time.Duration

	// CycleDelay is the delay between refresh cycles.
	CycleDelay time.Duration

	// SeedLeagues are queried once each when no clubs are cached.
	SeedLeagues []string
}

// DefaultConfig returns the default pacing configuration.
func DefaultConfig() Config {
	return Config{
		ScrapeDelay: 10 * time.Second,
		CycleDelay:  60 * time.Second,
		SeedLeagues: DefaultSeedLeagues,
	}
}

// Scheduler is the background refresh worker. Exactly one instance must
// run per process: two concurrent crawls would double the request rate
// against the provider. Start while running is a no-op, as is Stop while
// stopped.
type Scheduler struct {
	cache    *cache.Service
	provider provider.Client
	config   Config
	logger   zerolog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler in the Stopped state.
func NewScheduler(cacheSvc *cache.Service, providerClient provider.Client, cfg Config) *Scheduler {
	if cacheSvc == nil {
		panic("cache service cannot be nil")
	}
	if providerClient == nil {
		panic("provider client cannot be nil")
	}
	if cfg.ScrapeDelay <= 0 {
		cfg.ScrapeDelay = DefaultConfig().ScrapeDelay
	}
	if cfg.CycleDelay <= 0 {
		cfg.CycleDelay = DefaultConfig().CycleDelay
	}
	if len(cfg.SeedLeagues) == 0 {
		cfg.SeedLeagues = DefaultSeedLeagues
	}

	return &Scheduler{
		cache:    cacheSvc,
		provider: providerClient,
		config:   cfg,
		logger:   logging.NewLogger("refresh"),
		state:    StateStopped,
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start moves Stopped→Running and spawns the refresh loop. Calling Start
// while the scheduler is not stopped is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStopped {
		s.logger.Info().Stringer("state", s.state).Msg("Refresh scheduler already running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateRunning

	go s.run(ctx, s.done)
	s.logger.Info().
		Dur("scrape_delay", s.config.ScrapeDelay).
		Dur("cycle_delay", s.config.CycleDelay).
		Msg("Started refresh scheduler")
}

// Stop moves Running→Stopping, cancels the loop, and blocks until it has
// exited, then moves to Stopped. Cancellation is an expected shutdown, not
// an error. Calling Stop while stopped is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.state = StateStopping
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	s.logger.Info().Msg("Stopped refresh scheduler")
}

// run is the refresh loop: one cycle, log outcome, wait, repeat. A cycle
// failure never aborts the loop; the next cycle runs after the delay.
func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		s.logger.Info().Msg("Starting refresh cycle")
		start := time.Now()

		err := s.refreshCycle(ctx)

		if ctx.Err() != nil {
			s.logger.Info().Msg("Refresh loop cancelled")
			return
		}

		cycleDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			cyclesTotal.WithLabelValues("error").Inc()
			s.logger.Error().Err(err).Msg("Refresh cycle failed")
		} else {
			cyclesTotal.WithLabelValues("ok").Inc()
			s.logger.Info().Dur("duration", time.Since(start)).Msg("Completed refresh cycle")
		}

		if !s.wait(ctx, s.config.CycleDelay) {
			s.logger.Info().Msg("Refresh loop cancelled")
			return
		}
	}
}

// refreshCycle runs one full discovery-and-refresh pass. Per-club failures
// are logged and skipped; a store failure during discovery fails the cycle.
func (s *Scheduler) refreshCycle(ctx context.Context) error {
	clubs, err := s.discoverClubs(ctx)
	if err != nil {
		return fmt.Errorf("discover clubs: %w", err)
	}
	if len(clubs) == 0 {
		s.logger.Warn().Msg("No clubs found to refresh players from")
		return nil
	}

	s.logger.Info().Int("clubs", len(clubs)).Msg("Processing working set")

	for _, club := range clubs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		clubID := club.ID()
		if clubID == "" {
			s.logger.Warn().Msg("Skipping club record without id")
			continue
		}

		if err := s.refreshClubPlayers(ctx, clubID); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			itemFailures.WithLabelValues("club").Inc()
			s.logger.Error().Err(err).Str("club_id", clubID).Msg("Error refreshing club players")
		}
	}

	return nil
}

// discoverClubs returns the working set: all cached club records, or, when
// the clubs collection is empty, candidates seeded from well-known league
// identifiers. Seeded clubs are cached so later cycles skip the seed pass.
func (s *Scheduler) discoverClubs(ctx context.Context) ([]store.Record, error) {
	clubs, err := s.cache.GetAllCachedResponses(ctx, "clubs", 0, 0)
	if err != nil {
		return nil, err
	}
	if len(clubs) > 0 {
		s.logger.Info().Int("clubs", len(clubs)).Msg("Found clubs in the store")
		return clubs, nil
	}

	s.logger.Info().Strs("leagues", s.config.SeedLeagues).Msg("No clubs cached, seeding from leagues")

	var seeded []store.Record
	for _, league := range s.config.SeedLeagues {
		result, err := s.provider.SearchClubs(ctx, league, 1)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			itemFailures.WithLabelValues("league").Inc()
			s.logger.Error().Err(err).Str("league", league).Msg("Error seeding clubs from league")
		} else {
			for _, club := range result.Results {
				rec := store.Record{"id": club.ID, "name": club.Name}
				if _, err := s.cache.CacheResponse(ctx, "clubs", rec); err != nil {
					s.logger.Error().Err(err).Str("club_id", club.ID).Msg("Error caching seeded club")
				}
				seeded = append(seeded, rec)
			}
			clubsSeeded.Add(float64(len(result.Results)))
		}

		if !s.wait(ctx, s.config.ScrapeDelay) {
			return nil, ctx.Err()
		}
	}

	return seeded, nil
}

// refreshClubPlayers fetches one club's roster and refreshes each player's
// profile, pacing every provider call with ScrapeDelay.
func (s *Scheduler) refreshClubPlayers(ctx context.Context, clubID string) error {
	s.logger.Info().Str("club_id", clubID).Msg("Refreshing club players")

	roster, err := s.provider.GetClubPlayers(ctx, clubID)
	if err != nil {
		return fmt.Errorf("get club players: %w", err)
	}

	if !s.wait(ctx, s.config.ScrapeDelay) {
		return ctx.Err()
	}

	if roster == nil || len(roster.Players) == 0 {
		s.logger.Warn().Str("club_id", clubID).Msg("No players found for club")
		return nil
	}

	s.logger.Info().Str("club_id", clubID).Int("players", len(roster.Players)).Msg("Found players for club")

	for _, player := range roster.Players {
		s.refreshPlayerProfile(ctx, player.ID)

		if !s.wait(ctx, s.config.ScrapeDelay) {
			return ctx.Err()
		}
	}

	return nil
}

// refreshPlayerProfile refreshes one player's cached profile. Failures are
// logged and never propagate: a bad player must not abort the club or the
// cycle. An empty fetch leaves the existing cached record untouched, and
// the isLbPlayer flag is sticky: once true it survives refreshes whose
// fresh payload omits it.
func (s *Scheduler) refreshPlayerProfile(ctx context.Context, playerID string) {
	if playerID == "" {
		s.logger.Warn().Msg("Skipping roster entry without id")
		return
	}

	s.logger.Debug().Str("player_id", playerID).Msg("Refreshing player profile")

	cached, err := s.cache.GetCachedResponse(ctx, "players", playerID)
	if err != nil {
		itemFailures.WithLabelValues("player").Inc()
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("Error reading cached player")
		return
	}

	isLbPlayer := false
	if cached != nil {
		if flag, ok := cached["isLbPlayer"].(bool); ok {
			isLbPlayer = flag
		}
	}

	fresh, err := s.provider.GetPlayerProfile(ctx, playerID)
	if err != nil {
		itemFailures.WithLabelValues("player").Inc()
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("Error fetching player profile")
		return
	}
	if fresh == nil {
		s.logger.Warn().Str("player_id", playerID).Msg("No data for player, keeping cached record")
		return
	}

	if isLbPlayer {
		fresh = fresh.Clone()
		fresh["isLbPlayer"] = true
	}

	if _, err := s.cache.CacheResponse(ctx, "players", fresh); err != nil {
		itemFailures.WithLabelValues("player").Inc()
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("Error caching player profile")
		return
	}

	playersRefreshed.Inc()
	s.logger.Debug().Str("player_id", playerID).Msg("Refreshed player profile")
}

// wait suspends for d or until cancellation, reporting whether the full
// delay elapsed. It holds no locks while suspended.
func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
