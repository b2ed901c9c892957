// Package provider implements the client for the scraping backend that
// serves sports-entity records. The backend is slow and rate-limited;
// callers (the cache-aside handlers and the background refresh scheduler)
// are responsible for pacing, while this package handles transport
// concerns: error classification and per-class retry.
package provider

import (
	"context"

	"github.com/lbsports/transfermarkt-cache/pkg/store"
)

// Club is a club candidate returned by a search.
type Club struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClubSearchResult is one page of club search results.
type ClubSearchResult struct {
	Results []Club `json:"results"`
}

// Player is a roster entry. Only the id is guaranteed; the full profile is
// fetched separately.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Roster is the player list of one club.
type Roster struct {
	Players []Player `json:"players"`
}

// Client is the data provider contract consumed by the scheduler and the
// request-path handlers.
type Client interface {
	// SearchClubs returns one page of club candidates for a query
	// (typically a league identifier).
	SearchClubs(ctx context.Context, query string, page int) (*ClubSearchResult, error)

	// GetClubPlayers returns the roster of a club.
	GetClubPlayers(ctx context.Context, clubID string) (*Roster, error)

	// GetPlayerProfile returns a player's profile as an opaque record, or
	// (nil, nil) if the provider has no data for the player.
	GetPlayerProfile(ctx context.Context, playerID string) (store.Record, error)
}
