package testutil

import (
	"context"
	"sync"

	"github.com/lbsports/transfermarkt-cache/pkg/provider"
	"github.com/lbsports/transfermarkt-cache/pkg/store"
)

// FakeProvider is a scripted provider.Client with call tracking.
type FakeProvider struct {
	mu sync.Mutex

	// ClubsByQuery maps a search query (league id) to club candidates.
	ClubsByQuery map[string][]provider.Club

	// Rosters maps a club id to its players.
	Rosters map[string][]provider.Player

	// Profiles maps a player id to its profile. A missing entry means the
	// provider has no data (nil, nil).
	Profiles map[string]store.Record

	// SearchErr, RosterErrs, and ProfileErrs inject fetch failures.
	SearchErr   error
	RosterErrs  map[string]error
	ProfileErrs map[string]error

	// Call counters.
	SearchCalls  int
	RosterCalls  int
	ProfileCalls int
}

var _ provider.Client = (*FakeProvider)(nil)

// NewFakeProvider creates an empty scripted provider.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		ClubsByQuery: make(map[string][]provider.Club),
		Rosters:      make(map[string][]provider.Player),
		Profiles:     make(map[string]store.Record),
		RosterErrs:   make(map[string]error),
		ProfileErrs:  make(map[string]error),
	}
}

// SearchClubs returns the scripted candidates for query.
func (p *FakeProvider) SearchClubs(_ context.Context, query string, _ int) (*provider.ClubSearchResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.SearchCalls++
	if p.SearchErr != nil {
		return nil, p.SearchErr
	}
	return &provider.ClubSearchResult{Results: p.ClubsByQuery[query]}, nil
}

// GetClubPlayers returns the scripted roster for clubID.
func (p *FakeProvider) GetClubPlayers(_ context.Context, clubID string) (*provider.Roster, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.RosterCalls++
	if err := p.RosterErrs[clubID]; err != nil {
		return nil, err
	}
	return &provider.Roster{Players: p.Rosters[clubID]}, nil
}

// GetPlayerProfile returns a copy of the scripted profile, or (nil, nil)
// when none is scripted.
func (p *FakeProvider) GetPlayerProfile(_ context.Context, playerID string) (store.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ProfileCalls++
	if err := p.ProfileErrs[playerID]; err != nil {
		return nil, err
	}
	rec, ok := p.Profiles[playerID]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// Calls returns the total number of provider requests issued.
func (p *FakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.SearchCalls + p.RosterCalls + p.ProfileCalls
}
