package models

import "time"

// Game statuses. Transitions only move forward:
// waiting -> playing -> finished.
const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

// Game is the full record shared between the admin and player clients.
// It is persisted as a single JSON snapshot keyed by PIN, and every
// write replaces the whole record.
type Game struct {
	Pin             string             `json:"pin"`
	Name            string             `json:"name"`
	Status          string             `json:"status"`
	CurrentQuestion int                `json:"currentQuestion"`
	Players         map[string]*Player `json:"players"`
	Questions       []Question         `json:"questions"`
	CreatedAt       time.Time          `json:"createdAt"`
	StartedAt       *time.Time         `json:"startedAt,omitempty"`
	EndedAt         *time.Time         `json:"endedAt,omitempty"`
	Settings        Settings           `json:"settings"`
}

// Settings holds the per-game configuration chosen at creation time.
type Settings struct {
	TimeLimit int         `json:"timeLimit"`
	Points    BonusPoints `json:"points"`
}

// BonusPoints are the positional awards applied once when a game
// finishes: first/second/third place, everyone else gets participation.
type BonusPoints struct {
	First         int `json:"first"`
	Second        int `json:"second"`
	Third         int `json:"third"`
	Participation int `json:"participation"`
}

// Clone returns a deep copy of the game so callers can hand out
// snapshots without aliasing the stored record.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	clone := *g
	clone.Players = make(map[string]*Player, len(g.Players))
	for id, p := range g.Players {
		clone.Players[id] = p.Clone()
	}
	clone.Questions = make([]Question, len(g.Questions))
	for i, q := range g.Questions {
		clone.Questions[i] = q.Clone()
	}
	if g.StartedAt != nil {
		t := *g.StartedAt
		clone.StartedAt = &t
	}
	if g.EndedAt != nil {
		t := *g.EndedAt
		clone.EndedAt = &t
	}
	return &clone
}
