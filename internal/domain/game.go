package domain

import (
	"fmt"
	"strings"
)

// Game identifies one of the supported titles whose items trade on the
// aggregated marketplaces.
type Game string

const (
	GameCS2   Game = "cs2"
	GameDota2 Game = "dota2"
	GamePUBG  Game = "pubg"
)

// steamAppIDs maps each game to its Steam application ID.
var steamAppIDs = map[Game]string{
	GameCS2:   "730",
	GameDota2: "570",
	GamePUBG:  "578080",
}

// gameAliases accepts the human-facing spellings the old frontend sent.
var gameAliases = map[string]Game{
	"cs2":    GameCS2,
	"csgo":   GameCS2,
	"cs:go":  GameCS2,
	"dota2":  GameDota2,
	"dota 2": GameDota2,
	"pubg":   GamePUBG,
}

// ParseGame resolves a caller-supplied game name to a known Game. Unknown
// names are an ErrInvalidRequest so handlers can answer 400 without touching
// any upstream.
func ParseGame(s string) (Game, error) {
	g, ok := gameAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unknown game %q", ErrInvalidRequest, s)
	}
	return g, nil
}

// SteamAppID returns the Steam application ID for the game.
func (g Game) SteamAppID() string {
	return steamAppIDs[g]
}

// Valid reports whether g is one of the supported games.
func (g Game) Valid() bool {
	_, ok := steamAppIDs[g]
	return ok
}
